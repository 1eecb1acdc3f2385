package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_IsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twice.db")
	s, err := Open(context.Background(), path)
	require.NoError(t, err)
	require.NoError(t, s.SaveDarkMode(context.Background(), "v1", false))
	require.NoError(t, s.Close())

	s, err = Open(context.Background(), path)
	require.NoError(t, err)
	defer s.Close()
	dark, ok, err := s.LoadDarkMode(context.Background(), "v1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, dark)
}

func TestDarkMode(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, ok, err := s.LoadDarkMode(ctx, "visitor")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.SaveDarkMode(ctx, "visitor", true))
	dark, ok, err := s.LoadDarkMode(ctx, "visitor")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, dark)

	require.NoError(t, s.SaveDarkMode(ctx, "visitor", false))
	dark, _, err = s.LoadDarkMode(ctx, "visitor")
	require.NoError(t, err)
	assert.False(t, dark)
}

func TestVisitsAndStats(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)

	visits := []Visit{
		{HashedIP: "aaa", Path: "/", Timestamp: now.Add(-time.Hour)},
		{HashedIP: "aaa", Path: "/projects", Timestamp: now.Add(-30 * time.Minute)},
		{HashedIP: "bbb", Path: "/", Timestamp: now.Add(-3 * 24 * time.Hour)},
		{HashedIP: "ccc", Path: "/contact", Timestamp: now.Add(-30 * 24 * time.Hour)},
	}
	for _, v := range visits {
		require.NoError(t, s.RecordVisit(ctx, v))
	}
	for _, cmd := range []string{"help", "sudo", "help", "whoami", "help"} {
		require.NoError(t, s.RecordCommand(ctx, cmd, cmd == "whoami", now))
	}

	stats, err := s.Stats(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 4, stats.TotalVisitors)
	assert.EqualValues(t, 3, stats.UniqueVisitors)
	assert.EqualValues(t, 2, stats.VisitorsToday)
	assert.EqualValues(t, 3, stats.VisitorsThisWeek)
	assert.EqualValues(t, 5, stats.TotalCommands)
	assert.EqualValues(t, 1, stats.ElevatedCommands)
	require.NotEmpty(t, stats.TopCommands)
	assert.Equal(t, CommandStat{Command: "help", Count: 3}, stats.TopCommands[0])

	require.Len(t, stats.RecentVisitors, 4)
	assert.Equal(t, "/projects", stats.RecentVisitors[0].Path)
	assert.True(t, stats.RecentVisitors[0].Timestamp.Equal(now.Add(-30*time.Minute)))
}

func TestDeleteVisitor(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now()
	require.NoError(t, s.RecordVisit(ctx, Visit{HashedIP: "aaa", Timestamp: now}))
	require.NoError(t, s.RecordVisit(ctx, Visit{HashedIP: "aaa", Timestamp: now}))
	require.NoError(t, s.RecordVisit(ctx, Visit{HashedIP: "bbb", Timestamp: now}))

	n, err := s.DeleteVisitor(ctx, "aaa")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	_, err = s.DeleteVisitor(ctx, "aaa")
	assert.ErrorIs(t, err, ErrNotFound)

	left, err := s.RecentVisitors(ctx, 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "bbb", left[0].HashedIP)
}

func TestPurgeVisitorsBefore(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	now := time.Now()
	require.NoError(t, s.RecordVisit(ctx, Visit{HashedIP: "old", Timestamp: now.AddDate(-2, 0, 0)}))
	require.NoError(t, s.RecordVisit(ctx, Visit{HashedIP: "new", Timestamp: now}))

	n, err := s.PurgeVisitorsBefore(ctx, now.AddDate(-1, 0, 0))
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	left, err := s.RecentVisitors(ctx, 10)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "new", left[0].HashedIP)
}
