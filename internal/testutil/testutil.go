// Package testutil holds fixtures shared by the tests of several packages.
package testutil

import (
	"context"
	"testing"
	"time"

	"cricstats/internal/components/chrono"
	"cricstats/internal/components/telemetry"
	"cricstats/internal/db"
	"cricstats/internal/store"

	"github.com/stretchr/testify/require"
)

// Epoch is the instant reported by Clock.
var Epoch = time.Date(2019, time.July, 14, 10, 30, 0, 0, time.UTC)

// Clock is a fixed clock at Epoch.
var Clock = chrono.FixedImpl{At: Epoch}

// NewStore returns a store over a fresh in-memory database that is closed
// when the test ends.
func NewStore(t testing.TB, tel telemetry.API) *store.Store {
	t.Helper()

	database, err := db.OpenFile(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		database.Close()
	})

	s, err := store.New(context.Background(), database, Clock, tel)
	require.NoError(t, err)
	return s
}
