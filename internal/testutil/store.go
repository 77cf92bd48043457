// Package testutil opens throwaway databases for package tests.
package testutil

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/config"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/database"
	"github.com/jarmanbot/Indoor-Jungle-sub000/internal/repository"
)

// NewDB opens a migrated SQLite database in a temp dir. It is closed when
// the test finishes.
func NewDB(t testing.TB) *database.DB {
	t.Helper()

	db, err := database.Open(context.Background(), config.DatabaseConfig{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "jungle.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// NewStore returns a repository backed by NewDB.
func NewStore(t testing.TB) *repository.SQLStore {
	t.Helper()
	return repository.NewSQLStore(NewDB(t).DB)
}

// EqualTimes compares time.Time values by instant, ignoring location.
var EqualTimes = cmp.Comparer(func(a, b time.Time) bool { return a.Equal(b) })

// Clock is a settable time source.
type Clock struct {
	T time.Time
}

func (c *Clock) Now() time.Time { return c.T }

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) { c.T = c.T.Add(d) }
