package notify

import (
	"context"
	"fmt"
	"time"

	"upnext/internal/event"
)

// Notification is one reminder to be delivered at an absolute instant.
type Notification struct {
	EventID string
	Title   string
	Body    string
	FireAt  time.Time
}

// Scheduler is the delivery backend: it accepts a notification for a
// future instant and returns an opaque handle that can later cancel it.
type Scheduler interface {
	Schedule(ctx context.Context, n Notification) (handle string, err error)
	// Cancel is best-effort: canceling a handle that already fired,
	// expired or never existed must not be an error.
	Cancel(ctx context.Context, handle string) error
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}

func titleFor(typ event.ReminderType, name string) string {
	if typ == event.ReminderOneHourBefore {
		return "Upcoming Event: " + name
	}
	return "Event Starting Now: " + name
}

func bodyFor(typ event.ReminderType, name string) string {
	if typ == event.ReminderOneHourBefore {
		return fmt.Sprintf(`Your event "%s" is starting in one hour!`, name)
	}
	return fmt.Sprintf(`Your event "%s" is starting now!`, name)
}
