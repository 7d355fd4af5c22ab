package store_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/eladw917/cookbook-creator/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct{ now time.Time }

func (c *clock) Now() time.Time { return c.now }

func openStore(t *testing.T) (*store.Store, *clock) {
	t.Helper()
	c := &clock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	s, err := store.Open(filepath.Join(t.TempDir(), "cache", "artifacts.db"), store.WithClock(c.Now))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, c
}

func TestPutGetRoundTrip(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "recipe/abc", []byte("%PDF-1.4"), "application/pdf", time.Hour))
	a, err := s.Get(ctx, "recipe/abc")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4"), a.Data)
	assert.Equal(t, "application/pdf", a.ContentType)
	assert.False(t, a.ExpiresAt.IsZero())
}

func TestGetExpiredIsNotFound(t *testing.T) {
	s, c := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("v"), "", time.Minute))
	c.now = c.now.Add(time.Minute)

	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestGetMissingIsNotFound(t *testing.T) {
	s, _ := openStore(t)
	_, err := s.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestPutReplacesAndZeroTTLNeverExpires(t *testing.T) {
	s, c := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("old"), "", time.Second))
	require.NoError(t, s.Put(ctx, "k", []byte("new"), "text/plain", 0))
	c.now = c.now.Add(24 * 365 * time.Hour)

	a, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", string(a.Data))
	assert.True(t, a.ExpiresAt.IsZero())
}

func TestPutRejectsEmptyKey(t *testing.T) {
	s, _ := openStore(t)
	assert.Error(t, s.Put(context.Background(), " ", []byte("v"), "", 0))
}

func TestPurgeAndList(t *testing.T) {
	s, c := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "a", []byte("1"), "", time.Minute))
	require.NoError(t, s.Put(ctx, "b", []byte("22"), "", time.Hour))
	require.NoError(t, s.Put(ctx, "c", []byte("333"), "", 0))
	c.now = c.now.Add(2 * time.Minute)

	entries, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "b", entries[0].Key)
	assert.Equal(t, 2, entries[0].Size)
	assert.Equal(t, "c", entries[1].Key)

	removed, err := s.Purge(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)
}

func TestDelete(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "k", []byte("v"), "", 0))
	require.NoError(t, s.Delete(ctx, "k"))
	require.NoError(t, s.Delete(ctx, "k"))
	_, err := s.Get(ctx, "k")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestReopenKeepsEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "artifacts.db")
	s, err := store.Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Put(context.Background(), "k", []byte("v"), "", 0))
	require.NoError(t, s.Close())

	s, err = store.Open(path)
	require.NoError(t, err)
	defer s.Close()
	a, err := s.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(a.Data))
}
