package kv_test

import (
	"context"
	"testing"

	"upnext/internal/kv"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := kv.NewMemory()

	_, err := s.Get(ctx, "events")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	require.NoError(t, s.Set(ctx, "events", "[]"))
	v, err := s.Get(ctx, "events")
	require.NoError(t, err)
	assert.Equal(t, "[]", v)

	require.NoError(t, s.Set(ctx, "events", `[{"id":"1"}]`))
	v, _ = s.Get(ctx, "events")
	assert.Equal(t, `[{"id":"1"}]`, v)

	require.NoError(t, s.Clear(ctx, "events"))
	_, err = s.Get(ctx, "events")
	assert.ErrorIs(t, err, kv.ErrNotFound)

	// clearing an absent key is fine
	require.NoError(t, s.Clear(ctx, "events"))
}
