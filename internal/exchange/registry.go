package exchange

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnsupportedSource rejects source ids outside the registry. Raised before
// any network interaction is attempted.
var ErrUnsupportedSource = errors.New("exchange: unsupported source")

// SourceInfo describes the static capabilities of one supported venue. The
// registry is a closed set: adding a venue means adding a row here, not a new
// type.
type SourceInfo struct {
	ID                 string   `json:"id"`
	Name               string   `json:"name"`
	HasFutures         bool     `json:"has_futures"`
	RequiresPassphrase bool     `json:"requires_passphrase"`
	Category           string   `json:"category"`
	AssetTypes         []string `json:"asset_types"`
}

var supportedSources = map[string]SourceInfo{
	// crypto spot & futures (CEX)
	"binance":   {ID: "binance", HasFutures: true, Category: "crypto"},
	"bybit":     {ID: "bybit", HasFutures: true, Category: "crypto"},
	"okx":       {ID: "okx", HasFutures: true, RequiresPassphrase: true, Category: "crypto"},
	"coinbase":  {ID: "coinbase", Category: "crypto"},
	"kraken":    {ID: "kraken", HasFutures: true, Category: "crypto"},
	"kucoin":    {ID: "kucoin", HasFutures: true, RequiresPassphrase: true, Category: "crypto"},
	"bitget":    {ID: "bitget", HasFutures: true, RequiresPassphrase: true, Category: "crypto"},
	"gate":      {ID: "gate", HasFutures: true, Category: "crypto"},
	"mexc":      {ID: "mexc", HasFutures: true, Category: "crypto"},
	"cryptocom": {ID: "cryptocom", HasFutures: true, Category: "crypto"},
	"htx":       {ID: "htx", HasFutures: true, Category: "crypto"},
	"woo":       {ID: "woo", HasFutures: true, Category: "crypto"},

	// crypto derivatives (DEX)
	"hyperliquid": {ID: "hyperliquid", HasFutures: true, Category: "crypto-derivatives"},
	"dydx":        {ID: "dydx", HasFutures: true, Category: "crypto-derivatives"},
	"phemex":      {ID: "phemex", HasFutures: true, Category: "crypto-derivatives"},
	"bitmex":      {ID: "bitmex", HasFutures: true, Category: "crypto-derivatives"},
	"apex":        {ID: "apex", HasFutures: true, Category: "crypto-derivatives"},

	// stock market
	"alpaca": {ID: "alpaca", Category: "stocks", AssetTypes: []string{"stocks", "options"}},
}

// Lookup validates a source id and returns its capability row.
func Lookup(id string) (SourceInfo, error) {
	id = strings.ToLower(strings.TrimSpace(id))
	info, ok := supportedSources[id]
	if !ok {
		return SourceInfo{}, fmt.Errorf("%w: %q", ErrUnsupportedSource, id)
	}
	return fillDefaults(info), nil
}

// Supported returns the registry sorted by id for stable API output.
func Supported() []SourceInfo {
	out := make([]SourceInfo, 0, len(supportedSources))
	for _, info := range supportedSources {
		out = append(out, fillDefaults(info))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func fillDefaults(info SourceInfo) SourceInfo {
	if info.Name == "" {
		info.Name = strings.ToUpper(info.ID[:1]) + info.ID[1:]
	}
	if len(info.AssetTypes) == 0 {
		info.AssetTypes = []string{"crypto"}
	}
	return info
}
