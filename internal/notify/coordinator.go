package notify

import (
	"context"
	"log"
	"sync"
	"time"

	"upnext/internal/clock"
	"upnext/internal/event"
)

// Coordinator decides which reminders an event still needs and drives
// the scheduler accordingly. Per event it schedules up to two
// notifications: one an hour before the start, one at start time.
// Candidates already in the past are skipped silently.
type Coordinator struct {
	Scheduler Scheduler
	Clock     clock.Clock

	readyOnce sync.Once
	ready     bool
}

// ScheduleFor schedules every still-future reminder for ev and returns
// the handles in fixed order: oneHourBefore first (when present), then
// eventStart. A failed schedule call is logged and skipped; the event
// itself must remain creatable without its reminder.
func (c *Coordinator) ScheduleFor(ctx context.Context, ev event.Event) []event.NotificationRef {
	now := c.Clock.Now()

	candidates := []struct {
		typ    event.ReminderType
		fireAt time.Time
	}{
		{event.ReminderOneHourBefore, ev.Date.Add(-time.Hour)},
		{event.ReminderEventStart, ev.Date},
	}

	var refs []event.NotificationRef
	for _, cand := range candidates {
		if !cand.fireAt.After(now) {
			continue
		}
		handle, err := c.Scheduler.Schedule(ctx, Notification{
			EventID: ev.ID,
			Title:   titleFor(cand.typ, ev.Name),
			Body:    bodyFor(cand.typ, ev.Name),
			FireAt:  cand.fireAt,
		})
		if err != nil {
			log.Printf("notify: schedule %s for event %s: %v\n", cand.typ, ev.ID, err)
			continue
		}
		refs = append(refs, event.NotificationRef{ID: handle, Type: cand.typ})
	}
	return refs
}

// CancelFor cancels every handle recorded on ev. Handles that already
// fired or expired cancel as no-ops; individual failures are logged and
// the rest still get canceled.
func (c *Coordinator) CancelFor(ctx context.Context, ev event.Event) {
	for _, ref := range ev.NotificationIDs {
		if err := c.Scheduler.Cancel(ctx, ref.ID); err != nil {
			log.Printf("notify: cancel %s for event %s: %v\n", ref.ID, ev.ID, err)
		}
	}
}

// Reschedule is the one mutation entry point the event store uses:
// cancel old's reminders (when old is non-nil), then schedule fresh ones
// for updated. Running it twice with the same arguments converges on the
// same observable state, just with new handles.
func (c *Coordinator) Reschedule(ctx context.Context, old *event.Event, updated event.Event) []event.NotificationRef {
	if old != nil {
		c.CancelFor(ctx, *old)
	}
	return c.ScheduleFor(ctx, updated)
}

// Cancel implements the store's delete path.
func (c *Coordinator) Cancel(ctx context.Context, ev event.Event) {
	c.CancelFor(ctx, ev)
}

// EnsureReady checks the scheduler once per process. An unavailable
// backend is an advisory, not a hard error: events stay creatable and
// later schedule calls simply fail at the scheduler boundary.
func (c *Coordinator) EnsureReady(ctx context.Context) bool {
	c.readyOnce.Do(func() {
		if err := c.Scheduler.Ping(ctx); err != nil {
			log.Printf("notify: reminder delivery unavailable, events will be saved without reminders: %v\n", err)
			return
		}
		c.ready = true
	})
	return c.ready
}
