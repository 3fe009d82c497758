package exchange

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupNormalizesCase(t *testing.T) {
	info, err := Lookup("  Binance ")
	require.NoError(t, err)
	assert.Equal(t, "binance", info.ID)
	assert.True(t, info.HasFutures)
}

func TestLookupUnknownSource(t *testing.T) {
	_, err := Lookup("carrier-pigeon")
	assert.ErrorIs(t, err, ErrUnsupportedSource)
	_, err = Lookup("")
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}

func TestPassphraseVenues(t *testing.T) {
	for _, id := range []string{"okx", "kucoin", "bitget"} {
		info, err := Lookup(id)
		require.NoError(t, err)
		assert.True(t, info.RequiresPassphrase, id)
	}
	info, err := Lookup("binance")
	require.NoError(t, err)
	assert.False(t, info.RequiresPassphrase)
}

func TestSupportedIsSortedAndComplete(t *testing.T) {
	list := Supported()
	require.Len(t, list, 18)
	assert.True(t, sort.SliceIsSorted(list, func(i, j int) bool {
		return list[i].ID < list[j].ID
	}))
	for _, info := range list {
		assert.NotEmpty(t, info.Name, info.ID)
		assert.NotEmpty(t, info.AssetTypes, info.ID)
	}
}

func TestAlpacaIsStocksVenue(t *testing.T) {
	info, err := Lookup("alpaca")
	require.NoError(t, err)
	assert.Equal(t, "stocks", info.Category)
	assert.False(t, info.HasFutures)
	assert.Contains(t, info.AssetTypes, "options")
}
