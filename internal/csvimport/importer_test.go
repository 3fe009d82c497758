package csvimport

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tradetrack/internal/journal"
)

func TestParseStandardExport(t *testing.T) {
	csv := strings.Join([]string{
		"symbol,side,quantity,price,time",
		"btcusdt,BUY,0.5,42000,2024-03-01 09:30:00",
		"ethusdt,SELL,2,2500.50,2024-03-02",
	}, "\n")

	records, res, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 0, res.Skipped)
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, "BTCUSDT", first.Symbol)
	assert.Equal(t, journal.SideBuy, first.Side)
	assert.InDelta(t, 0.5, first.Quantity, 1e-9)
	assert.InDelta(t, 42000.0, first.EntryPrice, 1e-9)
	assert.Equal(t, journal.StatusOpen, first.Status)
	require.NotNil(t, first.EntryTime)
	assert.Equal(t, time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC), *first.EntryTime)

	assert.Equal(t, journal.SideSell, records[1].Side)
}

func TestParseAliasHeaders(t *testing.T) {
	csv := strings.Join([]string{
		"Ticker, Action, Qty, Fill Price, Open Time",
		"AAPL, SHORT, 100, $185.20, 2024-03-01 10:00:00",
	}, "\n")

	records, res, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Equal(t, 1, res.Imported)
	rec := records[0]
	assert.Equal(t, "AAPL", rec.Symbol)
	assert.Equal(t, journal.SideSell, rec.Side)
	assert.InDelta(t, 185.20, rec.EntryPrice, 1e-9)
}

func TestParseCleansNumberFormatting(t *testing.T) {
	csv := strings.Join([]string{
		"symbol,side,amount,price,date",
		"BTCUSDT,S,\"1,500\",\"$42,000.50\",2024-03-01",
	}, "\n")

	records, _, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 1500.0, records[0].Quantity, 1e-9)
	assert.InDelta(t, 42000.50, records[0].EntryPrice, 1e-9)
}

func TestParseNegativeValuesBecomeAbsolute(t *testing.T) {
	csv := strings.Join([]string{
		"symbol,side,quantity,price,time",
		"BTCUSDT,SELL,-2,-100,2024-03-01",
	}, "\n")

	records, _, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.InDelta(t, 2.0, records[0].Quantity, 1e-9)
	assert.InDelta(t, 100.0, records[0].EntryPrice, 1e-9)
}

func TestParseSkipsIncompleteRows(t *testing.T) {
	csv := strings.Join([]string{
		"symbol,side,quantity,price,time",
		",BUY,1,100,2024-03-01",
		"BTCUSDT,BUY,,100,2024-03-01",
		"BTCUSDT,BUY,1,100,not-a-date",
		"BTCUSDT,BUY,1,100,2024-03-01",
	}, "\n")

	records, res, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 3, res.Skipped)
	require.Len(t, records, 1)
}

func TestParseDefaultsUnknownSideToBuy(t *testing.T) {
	csv := strings.Join([]string{
		"symbol,quantity,price,time",
		"BTCUSDT,1,100,2024-03-01",
	}, "\n")

	records, _, err := Parse(strings.NewReader(csv))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, journal.SideBuy, records[0].Side)
}

func TestParseEmptyFile(t *testing.T) {
	_, _, err := Parse(strings.NewReader(""))
	assert.ErrorIs(t, err, ErrNoRows)

	_, _, err = Parse(strings.NewReader("symbol,side,quantity,price,time\n"))
	assert.ErrorIs(t, err, ErrNoRows)
}
