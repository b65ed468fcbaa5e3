package event_test

import (
	"encoding/json"
	"testing"
	"time"

	"upnext/internal/event"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The persisted document layout is a compatibility contract: field names
// and the RFC3339 date encoding must round-trip against data written by
// earlier versions.
func TestPersistedLayout(t *testing.T) {
	ev := event.Event{
		ID:          "1770000000000",
		Name:        "Launch",
		Description: "Pier 3",
		Date:        time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
		Image:       "file:///pictures/rocket.png",
		Category:    event.CategoryMusic,
		NotificationIDs: []event.NotificationRef{
			{ID: "a1", Type: event.ReminderOneHourBefore},
			{ID: "a2", Type: event.ReminderEventStart},
		},
	}

	b, err := json.Marshal(ev)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	for _, key := range []string{"id", "name", "description", "date", "image", "category", "notificationIds"} {
		assert.Contains(t, doc, key)
	}
	assert.Equal(t, "2026-03-14T18:30:00Z", doc["date"])

	refs := doc["notificationIds"].([]any)
	require.Len(t, refs, 2)
	first := refs[0].(map[string]any)
	assert.Equal(t, "a1", first["id"])
	assert.Equal(t, "oneHourBefore", first["type"])
}

func TestOptionalFieldsOmitted(t *testing.T) {
	ev := event.Event{
		ID:       "1",
		Name:     "Bare",
		Date:     time.Date(2026, 3, 14, 18, 30, 0, 0, time.UTC),
		Category: event.CategoryEvent,
	}

	b, err := json.Marshal(ev)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.NotContains(t, doc, "description")
	assert.NotContains(t, doc, "image")
	assert.NotContains(t, doc, "notificationIds")
}

func TestUnmarshalPreviouslyPersistedRecord(t *testing.T) {
	raw := `{
		"id": "1765432100000",
		"name": "Five-a-side",
		"description": "Riverside pitch",
		"date": "2026-04-01T19:00:00Z",
		"category": "sports",
		"notificationIds": [{"id": "h-9", "type": "eventStart"}]
	}`

	var ev event.Event
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	assert.Equal(t, "1765432100000", ev.ID)
	assert.Equal(t, event.CategorySports, ev.Category)
	assert.Equal(t, "", ev.Image)
	require.Len(t, ev.NotificationIDs, 1)
	assert.Equal(t, event.ReminderEventStart, ev.NotificationIDs[0].Type)
}
