package store

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupStoreTest opens an in-memory store for testing.
func setupStoreTest(t *testing.T) *Store {
	t.Helper()

	s, err := New("", slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

func TestNotInterested_AddAndContains(t *testing.T) {
	ctx := context.Background()
	s := setupStoreTest(t)
	ni := s.NotInterestedForSession("sess-1")

	ok, err := ni.Contains(ctx, "vol-1")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ni.Add(ctx, "vol-1"))
	require.NoError(t, ni.Add(ctx, "vol-1")) // idempotent

	ok, err = ni.Contains(ctx, "vol-1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNotInterested_IDs(t *testing.T) {
	ctx := context.Background()
	s := setupStoreTest(t)
	ni := s.NotInterestedForSession("sess-1")

	ids, err := ni.IDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, ni.Add(ctx, "vol-1"))
	require.NoError(t, ni.Add(ctx, "vol-2"))

	ids, err = ni.IDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"vol-1", "vol-2"}, ids)
}

func TestNotInterested_SessionIsolation(t *testing.T) {
	ctx := context.Background()
	s := setupStoreTest(t)

	first := s.NotInterestedForSession("sess-1")
	second := s.NotInterestedForSession("sess-2")

	require.NoError(t, first.Add(ctx, "vol-1"))

	ok, err := second.Contains(ctx, "vol-1")
	require.NoError(t, err)
	assert.False(t, ok)

	ids, err := second.IDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestDeleteSession(t *testing.T) {
	ctx := context.Background()
	s := setupStoreTest(t)

	doomed := s.NotInterestedForSession("sess-1")
	survivor := s.NotInterestedForSession("sess-2")

	require.NoError(t, doomed.Add(ctx, "vol-1"))
	require.NoError(t, doomed.Add(ctx, "vol-2"))
	require.NoError(t, survivor.Add(ctx, "vol-3"))

	require.NoError(t, s.DeleteSession(ctx, "sess-1"))

	ids, err := doomed.IDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	ids, err = survivor.IDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"vol-3"}, ids)
}

func TestDeleteSession_NoDismissals(t *testing.T) {
	s := setupStoreTest(t)
	assert.NoError(t, s.DeleteSession(context.Background(), "sess-unknown"))
}
