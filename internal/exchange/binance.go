package exchange

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/adshao/go-binance/v2"
	"github.com/shopspring/decimal"
)

// binanceClient adapts the go-binance spot SDK to the Client interface.
// Binance has no account-wide trade history endpoint, so trades are fetched
// per symbol for every asset the account actually holds.
type binanceClient struct {
	api *binance.Client
}

func newBinanceClient(creds Credentials, cfg ClientConfig) *binanceClient {
	api := binance.NewClient(creds.APIKey, creds.APISecret)
	api.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	if cfg.Testnet {
		binance.UseTestnet = true
	}
	return &binanceClient{api: api}
}

func parseDecimal(raw string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

func (b *binanceClient) TestConnection(ctx context.Context) (TestResult, error) {
	account, err := b.api.NewGetAccountService().Do(ctx)
	if err != nil {
		return TestResult{Source: "binance", Error: err.Error()}, fmt.Errorf("binance account: %w", err)
	}
	result := TestResult{Success: true, Source: "binance"}
	for _, bal := range account.Balances {
		total := parseDecimal(bal.Free) + parseDecimal(bal.Locked)
		if total <= 0 {
			continue
		}
		result.Currencies++
		switch strings.ToUpper(bal.Asset) {
		case "USDT", "USD", "USDC":
			if result.TotalBalanceUSD == 0 {
				result.TotalBalanceUSD = total
			}
		}
	}
	return result, nil
}

func (b *binanceClient) FetchBalances(ctx context.Context) ([]Balance, error) {
	account, err := b.api.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("binance balances: %w", err)
	}
	out := make([]Balance, 0, len(account.Balances))
	for _, bal := range account.Balances {
		free := parseDecimal(bal.Free)
		used := parseDecimal(bal.Locked)
		if free+used <= 0 {
			continue
		}
		out = append(out, Balance{
			Currency: strings.ToUpper(bal.Asset),
			Total:    free + used,
			Free:     free,
			Used:     used,
		})
	}
	return out, nil
}

func (b *binanceClient) FetchTrades(ctx context.Context, since time.Time, limit int) ([]TradeDescriptor, error) {
	if limit <= 0 {
		limit = 100
	}
	balances, err := b.FetchBalances(ctx)
	if err != nil {
		return nil, err
	}
	var sinceMillis int64
	if !since.IsZero() {
		sinceMillis = since.UnixMilli()
	}
	out := make([]TradeDescriptor, 0, limit)
	for _, symbol := range candidatePairs(balances) {
		svc := b.api.NewListTradesService().Symbol(symbol).Limit(limit)
		if sinceMillis > 0 {
			svc = svc.StartTime(sinceMillis)
		}
		trades, err := svc.Do(ctx)
		if err != nil {
			// A held asset without a USDT pair yields "invalid symbol"; skip
			// it and keep going, but give up on context cancellation.
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			continue
		}
		for _, t := range trades {
			out = append(out, descriptorFromBinance(t))
			if len(out) >= limit {
				return out, nil
			}
		}
	}
	return out, nil
}

// FetchPositions returns nothing: the spot API has no position concept, and
// derivative accounts are synced through the gateway adapter instead.
func (b *binanceClient) FetchPositions(ctx context.Context) ([]Position, error) {
	return nil, nil
}

func descriptorFromBinance(t *binance.TradeV3) TradeDescriptor {
	side := "SELL"
	if t.IsBuyer {
		side = "BUY"
	}
	desc := TradeDescriptor{
		// Binance trade ids are only unique per symbol; prefix to make the
		// dedup key account-wide.
		ID:        fmt.Sprintf("%s-%d", t.Symbol, t.ID),
		Symbol:    strings.ToUpper(t.Symbol),
		Side:      side,
		Price:     parseDecimal(t.Price),
		Amount:    parseDecimal(t.Quantity),
		Cost:      parseDecimal(t.QuoteQuantity),
		Timestamp: time.UnixMilli(t.Time).UTC(),
	}
	if fee := parseDecimal(t.Commission); fee > 0 {
		desc.Fee = &fee
		desc.FeeCCY = strings.ToUpper(t.CommissionAsset)
	}
	return desc
}

// candidatePairs maps held assets to their USDT spot pairs, the only markets
// the adapter scans for fills.
func candidatePairs(balances []Balance) []string {
	seen := make(map[string]struct{}, len(balances))
	pairs := make([]string, 0, len(balances))
	for _, bal := range balances {
		asset := strings.ToUpper(bal.Currency)
		if asset == "" || asset == "USDT" || asset == "USD" {
			continue
		}
		pair := asset + "USDT"
		if _, ok := seen[pair]; ok {
			continue
		}
		seen[pair] = struct{}{}
		pairs = append(pairs, pair)
	}
	return pairs
}
