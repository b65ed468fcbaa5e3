package event

import "time"

// Category is the fixed set of event kinds.
type Category string

const (
	CategoryEvent  Category = "event"
	CategoryFood   Category = "food"
	CategorySports Category = "sports"
	CategoryMusic  Category = "music"
	CategoryOther  Category = "other"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryEvent, CategoryFood, CategorySports, CategoryMusic, CategoryOther:
		return true
	}
	return false
}

// ReminderType identifies which of the two reminders a handle belongs to.
type ReminderType string

const (
	ReminderOneHourBefore ReminderType = "oneHourBefore"
	ReminderEventStart    ReminderType = "eventStart"
)

// NotificationRef pairs a scheduler handle with its reminder type.
// Entries are written by the notification coordinator only; the store
// carries them through persistence untouched.
type NotificationRef struct {
	ID   string       `json:"id"`
	Type ReminderType `json:"type"`
}

// Event is the sole persisted entity. The JSON field names are a
// compatibility contract with previously persisted data and must not
// change. Date marshals as RFC3339.
type Event struct {
	ID              string            `json:"id"`
	Name            string            `json:"name"`
	Description     string            `json:"description,omitempty"`
	Date            time.Time         `json:"date"`
	Image           string            `json:"image,omitempty"`
	Category        Category          `json:"category"`
	NotificationIDs []NotificationRef `json:"notificationIds,omitempty"`
}

// Draft is the user-supplied field set for add/update. Name and Date are
// always authoritative; nil optional fields mean "leave unchanged" on
// update and "use the default" on add.
type Draft struct {
	Name        string
	Description *string
	Date        time.Time
	Image       *string
	Category    *Category
}
