package event_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"upnext/internal/clock"
	"upnext/internal/event"
	"upnext/internal/kv"
	"upnext/internal/notify"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

type fakeScheduler struct {
	mu        sync.Mutex
	seq       int
	scheduled map[string]notify.Notification
	canceled  []string
}

func newFakeScheduler() *fakeScheduler {
	return &fakeScheduler{scheduled: make(map[string]notify.Notification)}
}

func (f *fakeScheduler) Schedule(_ context.Context, n notify.Notification) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	h := fmt.Sprintf("handle-%d", f.seq)
	f.scheduled[h] = n
	return h, nil
}

func (f *fakeScheduler) Cancel(_ context.Context, handle string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.canceled = append(f.canceled, handle)
	delete(f.scheduled, handle)
	return nil
}

func (f *fakeScheduler) Ping(context.Context) error { return nil }

type failingKV struct {
	kv.Store
}

func (failingKV) Set(context.Context, string, string) error {
	return errors.New("store unavailable")
}

func newStore(backing kv.Store) (*event.Store, *fakeScheduler) {
	sched := newFakeScheduler()
	co := &notify.Coordinator{Scheduler: sched, Clock: clock.Fixed(base)}
	return event.New(backing, co, clock.Fixed(base)), sched
}

func draft(name string, date time.Time) event.Draft {
	return event.Draft{Name: name, Date: date}
}

func strp(s string) *string { return &s }

func TestAddThenLoadRoundTrip(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	store, _ := newStore(mem)

	cat := event.CategoryFood
	d := event.Draft{
		Name:        "Dinner",
		Description: strp("Corner Bistro\nbring cash"),
		Date:        base.Add(26 * time.Hour),
		Image:       strp("file:///pictures/dinner.png"),
		Category:    &cat,
	}
	created, err := store.Add(ctx, d)
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	// a fresh store over the same backing data sees the same record
	reopened, _ := newStore(mem)
	events, err := reopened.Load(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)

	got := events[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Dinner", got.Name)
	assert.Equal(t, "Corner Bistro\nbring cash", got.Description)
	assert.True(t, got.Date.Equal(base.Add(26*time.Hour)))
	assert.Equal(t, "file:///pictures/dinner.png", got.Image)
	assert.Equal(t, event.CategoryFood, got.Category)
	assert.Equal(t, created.NotificationIDs, got.NotificationIDs)
}

func TestCollectionSortedByDate(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	store, _ := newStore(mem)

	_, err := store.Add(ctx, draft("third", base.Add(72*time.Hour)))
	require.NoError(t, err)
	_, err = store.Add(ctx, draft("first", base.Add(2*time.Hour)))
	require.NoError(t, err)
	_, err = store.Add(ctx, draft("second", base.Add(24*time.Hour)))
	require.NoError(t, err)

	events := store.Events()
	require.Len(t, events, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{events[0].Name, events[1].Name, events[2].Name})

	// ordering survives the persistence round-trip
	reopened, _ := newStore(mem)
	events, err = reopened.Load(ctx)
	require.NoError(t, err)
	for i := 1; i < len(events); i++ {
		assert.True(t, events[i-1].Date.Before(events[i].Date))
	}
}

func TestLoadPrunesPastEvents(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()

	doc := fmt.Sprintf(`[
		{"id":"1","name":"long gone","date":%q,"category":"event"},
		{"id":"2","name":"right now","date":%q,"category":"event"},
		{"id":"3","name":"still ahead","date":%q,"category":"event"}
	]`,
		base.Add(-48*time.Hour).Format(time.RFC3339),
		base.Format(time.RFC3339),
		base.Add(time.Minute).Format(time.RFC3339),
	)
	require.NoError(t, mem.Set(ctx, "events", doc))

	store, _ := newStore(mem)
	events, err := store.Load(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "still ahead", events[0].Name)
}

func TestLoadMissingKey(t *testing.T) {
	store, _ := newStore(kv.NewMemory())
	events, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestLoadMalformedDocument(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	require.NoError(t, mem.Set(ctx, "events", `{"not":"a list"`))

	store, _ := newStore(mem)
	_, err := store.Load(ctx)
	require.Error(t, err)
}

func TestAddRejectsBlankName(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	store, sched := newStore(mem)

	_, err := store.Add(ctx, draft("   ", base.Add(2*time.Hour)))
	require.ErrorIs(t, err, event.ErrInvalidName)

	// no side effects: nothing scheduled, nothing persisted
	assert.Empty(t, sched.scheduled)
	_, err = mem.Get(ctx, "events")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestAddTrimsNameAndDefaultsCategory(t *testing.T) {
	store, _ := newStore(kv.NewMemory())

	ev, err := store.Add(context.Background(), draft("  Picnic  ", base.Add(2*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "Picnic", ev.Name)
	assert.Equal(t, event.CategoryEvent, ev.Category)
}

func TestUpdateReschedulesEvenWhenDateUnchanged(t *testing.T) {
	ctx := context.Background()
	store, sched := newStore(kv.NewMemory())

	created, err := store.Add(ctx, draft("Standup", base.Add(2*time.Hour)))
	require.NoError(t, err)
	require.Len(t, created.NotificationIDs, 2)

	oldHandles := []string{created.NotificationIDs[0].ID, created.NotificationIDs[1].ID}

	cat := event.CategorySports
	updated, err := store.Update(ctx, created.ID, event.Draft{
		Name:     "Standup",
		Date:     created.Date,
		Category: &cat,
	})
	require.NoError(t, err)
	assert.Equal(t, event.CategorySports, updated.Category)

	// old handles canceled, fresh ones issued
	assert.ElementsMatch(t, oldHandles, sched.canceled)
	require.Len(t, updated.NotificationIDs, 2)
	for _, ref := range updated.NotificationIDs {
		assert.NotContains(t, oldHandles, ref.ID)
	}
}

func TestUpdateRetainsUnspecifiedFields(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(kv.NewMemory())

	cat := event.CategoryMusic
	created, err := store.Add(ctx, event.Draft{
		Name:        "Concert",
		Description: strp("Town Hall"),
		Date:        base.Add(48 * time.Hour),
		Image:       strp("file:///pictures/band.png"),
		Category:    &cat,
	})
	require.NoError(t, err)

	updated, err := store.Update(ctx, created.ID, draft("Concert (moved)", base.Add(72*time.Hour)))
	require.NoError(t, err)
	assert.Equal(t, "Town Hall", updated.Description)
	assert.Equal(t, "file:///pictures/band.png", updated.Image)
	assert.Equal(t, event.CategoryMusic, updated.Category)
}

func TestUpdateUnknownID(t *testing.T) {
	store, _ := newStore(kv.NewMemory())
	_, err := store.Update(context.Background(), "nope", draft("x", base.Add(time.Hour)))
	require.ErrorIs(t, err, event.ErrNotFound)
}

func TestUpdateRejectsBlankNameBeforeSideEffects(t *testing.T) {
	ctx := context.Background()
	store, sched := newStore(kv.NewMemory())

	created, err := store.Add(ctx, draft("Run", base.Add(3*time.Hour)))
	require.NoError(t, err)

	_, err = store.Update(ctx, created.ID, draft("  ", base.Add(4*time.Hour)))
	require.ErrorIs(t, err, event.ErrInvalidName)
	assert.Empty(t, sched.canceled)
}

func TestRemoveCancelsAndForgets(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	store, sched := newStore(mem)

	created, err := store.Add(ctx, draft("Dentist", base.Add(5*time.Hour)))
	require.NoError(t, err)
	require.Len(t, created.NotificationIDs, 2)

	require.NoError(t, store.Remove(ctx, created.ID))
	assert.Empty(t, store.Events())
	assert.Len(t, sched.canceled, 2)

	reopened, _ := newStore(mem)
	events, err := reopened.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, events)

	// double delete is a no-op
	require.NoError(t, store.Remove(ctx, created.ID))
	assert.Len(t, sched.canceled, 2)
}

func TestSearch(t *testing.T) {
	events := []event.Event{
		{ID: "1", Name: "Team Sync", Date: base.Add(1 * time.Hour)},
		{ID: "2", Name: "Lunch", Date: base.Add(2 * time.Hour)},
		{ID: "3", Name: "Team Offsite", Date: base.Add(3 * time.Hour)},
		{ID: "4", Name: "Dinner", Description: "with the team", Date: base.Add(4 * time.Hour)},
	}

	got := event.Search("team", events)
	require.Len(t, got, 3)
	assert.Equal(t, "Team Sync", got[0].Name)
	assert.Equal(t, "Team Offsite", got[1].Name)
	assert.Equal(t, "Dinner", got[2].Name) // matched on description

	assert.Len(t, event.Search("LUNCH", events), 1)
	assert.Empty(t, event.Search("yoga", events))
	assert.Len(t, event.Search("", events), 4)
}

func TestTimeRemaining(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want string
	}{
		{73 * time.Hour, "3D"},
		{24 * time.Hour, "1D"},
		{5 * time.Hour, "5H"},
		{90 * time.Minute, "1H"},
		{59 * time.Minute, "59M"},
		{30 * time.Second, "0M"},
		{0, "Now"},
		{-10 * time.Minute, "Now"},
	}
	for _, tc := range cases {
		ev := event.Event{Date: base.Add(tc.in)}
		assert.Equal(t, tc.want, event.TimeRemaining(ev, base), "offset %v", tc.in)
	}
}

func TestPersistFailureKeepsLastDurableState(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	store, _ := newStore(mem)

	created, err := store.Add(ctx, draft("Keeper", base.Add(2*time.Hour)))
	require.NoError(t, err)

	// swap the backing store for one that refuses writes
	broken, _ := newStore(failingKV{Store: mem})
	_, err = broken.Load(ctx)
	require.NoError(t, err)

	_, err = broken.Add(ctx, draft("Doomed", base.Add(3*time.Hour)))
	require.Error(t, err)

	events := broken.Events()
	require.Len(t, events, 1)
	assert.Equal(t, created.ID, events[0].ID)
}

func TestMonotonicIDsWithinSameInstant(t *testing.T) {
	ctx := context.Background()
	store, _ := newStore(kv.NewMemory())

	a, err := store.Add(ctx, draft("one", base.Add(2*time.Hour)))
	require.NoError(t, err)
	b, err := store.Add(ctx, draft("two", base.Add(3*time.Hour)))
	require.NoError(t, err)

	// the clock is frozen, so the second id must be bumped past the first
	assert.NotEqual(t, a.ID, b.ID)
	assert.Greater(t, b.ID, a.ID)
}

func TestEndToEndLaunch(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	store, sched := newStore(mem)

	cat := event.CategoryMusic
	created, err := store.Add(ctx, event.Draft{
		Name:     "Launch",
		Date:     base.Add(2 * time.Hour),
		Category: &cat,
	})
	require.NoError(t, err)
	require.Len(t, store.Events(), 1)
	require.Len(t, created.NotificationIDs, 2)

	originals := []string{created.NotificationIDs[0].ID, created.NotificationIDs[1].ID}

	updated, err := store.Update(ctx, created.ID, event.Draft{
		Name: "Launch",
		Date: base.Add(30 * time.Minute),
	})
	require.NoError(t, err)
	require.Len(t, updated.NotificationIDs, 1)
	assert.Equal(t, event.ReminderEventStart, updated.NotificationIDs[0].Type)
	assert.ElementsMatch(t, originals, sched.canceled)

	require.NoError(t, store.Remove(ctx, created.ID))
	assert.Empty(t, store.Events())
	assert.Len(t, sched.canceled, 3)
}
