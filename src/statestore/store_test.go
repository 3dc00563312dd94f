package statestore

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradeconsole/src/model"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "runtime", "session.json")
	store := New(stateFile)

	openedAt := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC)
	in := model.SessionState{
		Cash:        92500.50,
		RealizedPnL: -1250.25,
		Positions: []model.PositionState{
			{Symbol: "RELIANCE", Side: model.PositionSideLong, Quantity: 50, EntryPrice: 100, OpenedAt: openedAt},
			{Symbol: "TCS", Side: model.PositionSideShort, Quantity: 10, EntryPrice: 3500, OpenedAt: openedAt},
		},
		EventLog:      []string{"[10:30:00] RELIANCE: BUY 50 @ 100.00 [FILLED]"},
		EquityHistory: []float64{100000, 99500, 99800},
		Watchlist:     []string{"RELIANCE", "TCS"},
		RouterMode:    model.ModePaper,
		RiskConfig:    model.RiskConfigState{InitialCapital: 100000, StopLossPct: 0.02, MaxOrdersPerDay: 40, BuyEnabled: true},
	}

	require.NoError(t, store.Save(in))

	out := store.Load()
	require.NotNil(t, out)
	assert.Equal(t, model.SessionStateVersion, out.Version)
	assert.Equal(t, in.Cash, out.Cash)
	assert.Equal(t, in.RealizedPnL, out.RealizedPnL)
	assert.Equal(t, in.Positions, out.Positions)
	assert.Equal(t, in.Watchlist, out.Watchlist)
	assert.Equal(t, in.RiskConfig, out.RiskConfig)
	assert.False(t, out.SavedAt.IsZero())
}

func TestLoadMissingFile(t *testing.T) {
	store := New(filepath.Join(t.TempDir(), "absent.json"))
	assert.Nil(t, store.Load())
}

func TestLoadCorruptFile(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(stateFile, []byte("{not json"), 0o644))

	store := New(stateFile)
	assert.Nil(t, store.Load())
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store := New(filepath.Join(dir, "session.json"))

	require.NoError(t, store.Save(model.SessionState{Cash: 1}))
	require.NoError(t, store.Save(model.SessionState{Cash: 2}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "session.json", entries[0].Name())

	out := store.Load()
	require.NotNil(t, out)
	assert.Equal(t, 2.0, out.Cash)
}

func TestClear(t *testing.T) {
	stateFile := filepath.Join(t.TempDir(), "session.json")
	store := New(stateFile)

	require.NoError(t, store.Save(model.SessionState{}))
	assert.True(t, store.Clear())
	assert.Nil(t, store.Load())

	// Clearing an absent file is still success.
	assert.True(t, store.Clear())
}
