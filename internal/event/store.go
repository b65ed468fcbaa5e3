package event

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"upnext/internal/clock"
	"upnext/internal/kv"
)

// eventsKey is the fixed key the full collection is persisted under.
const eventsKey = "events"

var (
	ErrNotFound    = errors.New("event not found")
	ErrInvalidName = errors.New("event name is empty")
)

// Reminders is what the store needs from the notification coordinator.
// Reschedule cancels old's handles (when old is non-nil) and schedules
// fresh ones for updated; Cancel clears an event's handles on delete.
type Reminders interface {
	Reschedule(ctx context.Context, old *Event, updated Event) []NotificationRef
	Cancel(ctx context.Context, ev Event)
}

// Store owns the canonical event collection: persistence round-trips,
// load-time pruning and date ordering. Mutations serialize on a mutex,
// run cancel-old -> schedule-new -> persist -> commit, and only swap the
// in-memory collection after the write landed.
type Store struct {
	kv        kv.Store
	reminders Reminders
	clock     clock.Clock

	mu     sync.Mutex
	events []Event
}

func New(store kv.Store, reminders Reminders, clk clock.Clock) *Store {
	return &Store{kv: store, reminders: reminders, clock: clk}
}

// Load reads the persisted collection, drops every event whose date is
// at or before now, sorts ascending by date and makes the result the
// authoritative in-memory collection. A malformed document is an error,
// not a silent reset: the store only ever writes well-formed JSON here.
func (s *Store) Load(ctx context.Context) ([]Event, error) {
	raw, err := s.kv.Get(ctx, eventsKey)
	if errors.Is(err, kv.ErrNotFound) {
		s.commit(nil)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}

	var all []Event
	if err := json.Unmarshal([]byte(raw), &all); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	now := s.clock.Now()
	upcoming := make([]Event, 0, len(all))
	for _, ev := range all {
		if ev.Date.After(now) {
			upcoming = append(upcoming, ev)
		}
	}
	sortByDate(upcoming)

	s.commit(upcoming)
	return slices.Clone(upcoming), nil
}

// Events returns a copy of the current in-memory collection, already
// sorted ascending by date. Events that became overdue since the last
// Load stay visible until the next Load.
func (s *Store) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.events)
}

// Get returns the event with the given id.
func (s *Store) Get(id string) (Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ev := range s.events {
		if ev.ID == id {
			return ev, nil
		}
	}
	return Event{}, ErrNotFound
}

// Add validates the draft, assigns a fresh id, schedules reminders,
// inserts and persists. On a failed persist the collection is left at
// its last durable state and the error is returned.
func (s *Store) Add(ctx context.Context, d Draft) (Event, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Event{}, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev := Event{
		ID:       s.nextID(),
		Name:     name,
		Date:     d.Date,
		Category: CategoryEvent,
	}
	applyDraft(&ev, d)

	ev.NotificationIDs = s.reminders.Reschedule(ctx, nil, ev)

	next := append(slices.Clone(s.events), ev)
	sortByDate(next)
	if err := s.persist(ctx, next); err != nil {
		return Event{}, err
	}
	s.events = next
	return ev, nil
}

// Update merges the draft over the existing record, cancels the old
// reminders and schedules fresh ones unconditionally (name and category
// appear in notification text, so a date comparison is not enough).
func (s *Store) Update(ctx context.Context, id string, d Draft) (Event, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Event{}, ErrInvalidName
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.events, func(ev Event) bool { return ev.ID == id })
	if idx < 0 {
		return Event{}, ErrNotFound
	}
	old := s.events[idx]

	merged := old
	merged.Name = name
	merged.Date = d.Date
	applyDraft(&merged, d)

	merged.NotificationIDs = s.reminders.Reschedule(ctx, &old, merged)

	next := slices.Clone(s.events)
	next[idx] = merged
	sortByDate(next)
	if err := s.persist(ctx, next); err != nil {
		return Event{}, err
	}
	s.events = next
	return merged, nil
}

// Remove cancels the event's reminders and drops it from the collection.
// Removing an id that is already gone is a no-op, so a double delete
// never fails.
func (s *Store) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.events, func(ev Event) bool { return ev.ID == id })
	if idx < 0 {
		return nil
	}

	s.reminders.Cancel(ctx, s.events[idx])

	next := slices.Delete(slices.Clone(s.events), idx, idx+1)
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.events = next
	return nil
}

// persist writes the full collection under the fixed key. Callers commit
// to memory only after it succeeds.
func (s *Store) persist(ctx context.Context, events []Event) error {
	b, err := json.Marshal(events)
	if err != nil {
		return fmt.Errorf("encode events: %w", err)
	}
	if err := s.kv.Set(ctx, eventsKey, string(b)); err != nil {
		return fmt.Errorf("write events: %w", err)
	}
	return nil
}

func (s *Store) commit(events []Event) {
	s.mu.Lock()
	s.events = events
	s.mu.Unlock()
}

// nextID derives an id from the creation instant in unix milliseconds.
// Two adds inside the same millisecond bump past the current maximum so
// ids stay unique and roughly monotonic.
func (s *Store) nextID() string {
	id := s.clock.Now().UnixMilli()
	for _, ev := range s.events {
		if n, err := strconv.ParseInt(ev.ID, 10, 64); err == nil && n >= id {
			id = n + 1
		}
	}
	return strconv.FormatInt(id, 10)
}

func applyDraft(ev *Event, d Draft) {
	if d.Description != nil {
		ev.Description = *d.Description
	}
	if d.Image != nil {
		ev.Image = *d.Image
	}
	if d.Category != nil && d.Category.Valid() {
		ev.Category = *d.Category
	}
}

func sortByDate(events []Event) {
	slices.SortStableFunc(events, func(a, b Event) int {
		return a.Date.Compare(b.Date)
	})
}

// Search filters events whose name or description contains the query,
// case-insensitively. Order is preserved from the input. Pure function,
// no store state involved.
func Search(query string, events []Event) []Event {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return events
	}
	out := make([]Event, 0, len(events))
	for _, ev := range events {
		if strings.Contains(strings.ToLower(ev.Name), q) ||
			(ev.Description != "" && strings.Contains(strings.ToLower(ev.Description), q)) {
			out = append(out, ev)
		}
	}
	return out
}

// TimeRemaining renders the gap between now and the event as whole days,
// hours or minutes. An event at or past its time renders as "Now": an
// event loaded as future can become overdue mid-session and a negative
// count would be worse than a slightly stale label.
func TimeRemaining(ev Event, now time.Time) string {
	d := ev.Date.Sub(now)
	switch {
	case d <= 0:
		return "Now"
	case d >= 24*time.Hour:
		return fmt.Sprintf("%dD", int(d.Hours())/24)
	case d >= time.Hour:
		return fmt.Sprintf("%dH", int(d.Hours()))
	default:
		return fmt.Sprintf("%dM", int(d.Minutes()))
	}
}
