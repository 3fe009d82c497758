package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradetrack/internal/journal"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func fp(v float64) *float64 { return &v }

func tp(s string) *time.Time {
	ts, err := time.Parse("2006-01-02 15:04:05", s)
	if err != nil {
		panic(err)
	}
	ts = ts.UTC()
	return &ts
}

func sampleTrade(userID string) journal.TradeRecord {
	return journal.TradeRecord{
		UserID:     userID,
		Symbol:     "btcusdt",
		Side:       journal.SideBuy,
		Quantity:   0.5,
		EntryPrice: 42000,
		EntryTime:  tp("2024-03-01 09:30:00"),
		Status:     journal.StatusOpen,
		Setup:      "breakout",
	}
}

func TestInsertAndGet(t *testing.T) {
	s := openTestStore(t)
	trades := s.Trades()
	ctx := context.Background()

	rec, err := trades.Insert(ctx, sampleTrade("u1"))
	require.NoError(t, err)
	require.NotEmpty(t, rec.ID)
	assert.Equal(t, "BTCUSDT", rec.Symbol)

	got, err := trades.Get(ctx, "u1", rec.ID)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.Equal(t, "breakout", got.Setup)

	_, err = trades.Get(ctx, "someone-else", rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = trades.Get(ctx, "u1", "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFindFilters(t *testing.T) {
	s := openTestStore(t)
	trades := s.Trades()
	ctx := context.Background()

	mk := func(symbol string, side journal.TradeSide, status journal.TradeStatus, day string) {
		rec := sampleTrade("u1")
		rec.Symbol = symbol
		rec.Side = side
		rec.Status = status
		rec.EntryTime = tp(day + " 12:00:00")
		_, err := trades.Insert(ctx, rec)
		require.NoError(t, err)
	}
	mk("BTCUSDT", journal.SideBuy, journal.StatusOpen, "2024-03-01")
	mk("BTCUSDT", journal.SideSell, journal.StatusClosed, "2024-03-02")
	mk("ETHUSDT", journal.SideBuy, journal.StatusClosed, "2024-03-03")

	filter := &journal.TradeFilter{Symbol: "btcusdt"}
	require.NoError(t, filter.Normalize())
	got, err := trades.Find(ctx, "u1", filter, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	filter = &journal.TradeFilter{Side: journal.SideSell}
	require.NoError(t, filter.Normalize())
	got, err = trades.Find(ctx, "u1", filter, 0)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "BTCUSDT", got[0].Symbol)

	filter = &journal.TradeFilter{StartDate: "2024-03-02", EndDate: "2024-03-03T23:59:59"}
	require.NoError(t, filter.Normalize())
	got, err = trades.Find(ctx, "u1", filter, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	// Newest entry first.
	filter = &journal.TradeFilter{}
	require.NoError(t, filter.Normalize())
	got, err = trades.Find(ctx, "u1", filter, 0)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "ETHUSDT", got[0].Symbol)

	got, err = trades.Find(ctx, "u1", filter, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	got, err = trades.Find(ctx, "other", nil, 0)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUpdatePartial(t *testing.T) {
	s := openTestStore(t)
	trades := s.Trades()
	ctx := context.Background()

	rec, err := trades.Insert(ctx, sampleTrade("u1"))
	require.NoError(t, err)

	status := journal.StatusClosed
	notes := "took profit early"
	got, err := trades.UpdatePartial(ctx, "u1", rec.ID, journal.TradeUpdate{
		Status:    &status,
		PnL:       fp(125.5),
		ExitPrice: fp(42500),
		ExitTime:  tp("2024-03-01 15:00:00"),
		Notes:     &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, journal.StatusClosed, got.Status)
	require.NotNil(t, got.PnL)
	assert.InDelta(t, 125.5, *got.PnL, 1e-9)
	assert.Equal(t, notes, got.Notes)
	// Untouched fields survive.
	assert.Equal(t, "BTCUSDT", got.Symbol)
	assert.Equal(t, "breakout", got.Setup)

	_, err = trades.UpdatePartial(ctx, "someone-else", rec.ID, journal.TradeUpdate{Notes: &notes})
	assert.ErrorIs(t, err, ErrNotFound)

	// Empty update is a no-op, not an error.
	same, err := trades.UpdatePartial(ctx, "u1", rec.ID, journal.TradeUpdate{})
	require.NoError(t, err)
	assert.Equal(t, got.Notes, same.Notes)
}

func TestDelete(t *testing.T) {
	s := openTestStore(t)
	trades := s.Trades()
	ctx := context.Background()

	rec, err := trades.Insert(ctx, sampleTrade("u1"))
	require.NoError(t, err)

	assert.ErrorIs(t, trades.Delete(ctx, "someone-else", rec.ID), ErrNotFound)
	require.NoError(t, trades.Delete(ctx, "u1", rec.ID))
	_, err = trades.Get(ctx, "u1", rec.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDedupKeyUniqueness(t *testing.T) {
	s := openTestStore(t)
	trades := s.Trades()
	ctx := context.Background()

	synced := sampleTrade("u1")
	synced.Source = "binance"
	synced.ExternalID = "BTCUSDT-100"
	_, err := trades.Insert(ctx, synced)
	require.NoError(t, err)

	dup := sampleTrade("u1")
	dup.Source = "binance"
	dup.ExternalID = "BTCUSDT-100"
	_, err = trades.Insert(ctx, dup)
	assert.Error(t, err)

	// Same external id under a different owner or source is fine.
	other := sampleTrade("u2")
	other.Source = "binance"
	other.ExternalID = "BTCUSDT-100"
	_, err = trades.Insert(ctx, other)
	assert.NoError(t, err)

	exists, err := trades.ExistsByDedupKey(ctx, "u1", "binance", "BTCUSDT-100")
	require.NoError(t, err)
	assert.True(t, exists)
	exists, err = trades.ExistsByDedupKey(ctx, "u1", "binance", "BTCUSDT-999")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestManualTradesExemptFromDedup(t *testing.T) {
	s := openTestStore(t)
	trades := s.Trades()
	ctx := context.Background()

	// Two identical manual entries: no source, no external id, both kept.
	_, err := trades.Insert(ctx, sampleTrade("u1"))
	require.NoError(t, err)
	_, err = trades.Insert(ctx, sampleTrade("u1"))
	require.NoError(t, err)

	got, err := trades.Find(ctx, "u1", nil, 0)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestLatestEntryTime(t *testing.T) {
	s := openTestStore(t)
	trades := s.Trades()
	ctx := context.Background()

	latest, err := trades.LatestEntryTime(ctx, "u1", "binance")
	require.NoError(t, err)
	assert.Nil(t, latest)

	for _, day := range []string{"2024-03-01", "2024-03-05", "2024-03-03"} {
		rec := sampleTrade("u1")
		rec.Source = "binance"
		rec.ExternalID = "ext-" + day
		rec.EntryTime = tp(day + " 10:00:00")
		_, err := trades.Insert(ctx, rec)
		require.NoError(t, err)
	}

	latest, err = trades.LatestEntryTime(ctx, "u1", "binance")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.WithinDuration(t, *tp("2024-03-05 10:00:00"), *latest, time.Second)

	latest, err = trades.LatestEntryTime(ctx, "u1", "bybit")
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func sampleConnection(userID string) journal.ExchangeConnection {
	return journal.ExchangeConnection{
		UserID:       userID,
		Source:       "binance",
		Label:        "main",
		APIKeyEnc:    "enc-key",
		APISecretEnc: "enc-secret",
		ConnectedAt:  time.Now().UTC(),
	}
}

func TestConnectionLifecycle(t *testing.T) {
	s := openTestStore(t)
	conns := s.Connections()
	ctx := context.Background()

	conn, err := conns.Create(ctx, sampleConnection("u1"))
	require.NoError(t, err)
	require.NotEmpty(t, conn.ID)
	assert.Equal(t, journal.ConnActive, conn.Status)

	got, err := conns.GetOwned(ctx, "u1", conn.ID)
	require.NoError(t, err)
	assert.Equal(t, "enc-key", got.APIKeyEnc)

	_, err = conns.GetOwned(ctx, "someone-else", conn.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	list, err := conns.ListByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	assert.ErrorIs(t, conns.Delete(ctx, "someone-else", conn.ID), ErrNotFound)
	require.NoError(t, conns.Delete(ctx, "u1", conn.ID))
	_, err = conns.Get(ctx, conn.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClaimSyncing(t *testing.T) {
	s := openTestStore(t)
	conns := s.Connections()
	ctx := context.Background()

	conn, err := conns.Create(ctx, sampleConnection("u1"))
	require.NoError(t, err)

	claimed, err := conns.ClaimSyncing(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, journal.ConnSyncing, claimed.Status)

	// Second claim loses: the flag is already held.
	_, err = conns.ClaimSyncing(ctx, conn.ID)
	assert.ErrorIs(t, err, ErrClaimConflict)

	_, err = conns.ClaimSyncing(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	at := time.Now().UTC().Truncate(time.Second)
	require.NoError(t, conns.MarkSynced(ctx, conn.ID, at))
	got, err := conns.Get(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, journal.ConnActive, got.Status)
	require.NotNil(t, got.LastSync)
	assert.WithinDuration(t, at, *got.LastSync, time.Second)
	assert.Empty(t, got.LastError)
}

func TestClaimableFromErrorState(t *testing.T) {
	s := openTestStore(t)
	conns := s.Connections()
	ctx := context.Background()

	conn, err := conns.Create(ctx, sampleConnection("u1"))
	require.NoError(t, err)

	_, err = conns.ClaimSyncing(ctx, conn.ID)
	require.NoError(t, err)
	require.NoError(t, conns.MarkError(ctx, conn.ID, "venue timeout"))

	got, err := conns.Get(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, journal.ConnError, got.Status)
	assert.Equal(t, "venue timeout", got.LastError)

	// Error state stays claimable so the next pass can retry.
	claimed, err := conns.ClaimSyncing(ctx, conn.ID)
	require.NoError(t, err)
	assert.Equal(t, journal.ConnSyncing, claimed.Status)
}

func TestListActiveSkipsSyncing(t *testing.T) {
	s := openTestStore(t)
	conns := s.Connections()
	ctx := context.Background()

	a, err := conns.Create(ctx, sampleConnection("u1"))
	require.NoError(t, err)
	b, err := conns.Create(ctx, sampleConnection("u2"))
	require.NoError(t, err)

	_, err = conns.ClaimSyncing(ctx, a.ID)
	require.NoError(t, err)

	active, err := conns.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, b.ID, active[0].ID)
}
