package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeUppercasesSymbol(t *testing.T) {
	f := &TradeFilter{Symbol: "  btcusdt "}
	require.NoError(t, f.Normalize())
	assert.Equal(t, "BTCUSDT", f.Symbol)
}

func TestNormalizeRejectsBadEnums(t *testing.T) {
	assert.ErrorIs(t, (&TradeFilter{Side: "HOLD"}).Normalize(), ErrValidation)
	assert.ErrorIs(t, (&TradeFilter{Status: "PENDING"}).Normalize(), ErrValidation)
	assert.NoError(t, (&TradeFilter{Side: SideSell, Status: StatusClosed}).Normalize())
}

func TestNormalizeParsesDateLayouts(t *testing.T) {
	cases := map[string]time.Time{
		"2024-03-01":           time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"2024-03-01T09:30:00":  time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		"2024-03-01 09:30:00":  time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
		"2024-03-01T09:30:00Z": time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC),
	}
	for raw, want := range cases {
		f := &TradeFilter{StartDate: raw}
		require.NoError(t, f.Normalize(), raw)
		require.NotNil(t, f.StartTime(), raw)
		assert.Equal(t, want, *f.StartTime(), raw)
	}
}

func TestNormalizeRejectsUnparseableDates(t *testing.T) {
	f := &TradeFilter{EndDate: "March 1st"}
	assert.ErrorIs(t, f.Normalize(), ErrValidation)
}

func TestNormalizeClearsStaleBounds(t *testing.T) {
	f := &TradeFilter{StartDate: "2024-03-01"}
	require.NoError(t, f.Normalize())
	require.NotNil(t, f.StartTime())

	f.StartDate = ""
	require.NoError(t, f.Normalize())
	assert.Nil(t, f.StartTime())
}

func TestNormalizeNilFilter(t *testing.T) {
	var f *TradeFilter
	assert.NoError(t, f.Normalize())
	assert.Nil(t, f.StartTime())
	assert.Nil(t, f.EndTime())
}
