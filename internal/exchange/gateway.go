package exchange

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

// gatewayClient talks to the ccxt sidecar, which fronts every venue that has
// no native Go SDK. The sidecar exposes a uniform REST surface per source and
// keeps the credentials out of its own state: they travel per request.
type gatewayClient struct {
	info SourceInfo
	http *resty.Client
}

func newGatewayClient(info SourceInfo, creds Credentials, cfg ClientConfig) *gatewayClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.GatewayURL, "/")).
		SetTimeout(cfg.Timeout).
		SetHeader("X-Api-Key", creds.APIKey).
		SetHeader("X-Api-Secret", creds.APISecret)
	if creds.Passphrase != "" {
		client.SetHeader("X-Api-Passphrase", creds.Passphrase)
	}
	if cfg.Testnet {
		client.SetHeader("X-Testnet", "1")
	}
	return &gatewayClient{info: info, http: client}
}

func (g *gatewayClient) get(ctx context.Context, path string, params map[string]string) ([]byte, error) {
	resp, err := g.http.R().
		SetContext(ctx).
		SetQueryParams(params).
		Get(fmt.Sprintf("/exchanges/%s%s", g.info.ID, path))
	if err != nil {
		return nil, fmt.Errorf("gateway %s%s: %w", g.info.ID, path, err)
	}
	switch {
	case resp.StatusCode() == http.StatusUnauthorized || resp.StatusCode() == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", ErrAuth, strings.TrimSpace(resp.String()))
	case resp.IsError():
		return nil, fmt.Errorf("gateway %s%s: status %d: %s", g.info.ID, path, resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return resp.Body(), nil
}

// looseFloat reads a gjson value that venues report either as a number or a
// string with separators.
func looseFloat(v gjson.Result) float64 {
	if v.Type == gjson.Number {
		return v.Num
	}
	raw := strings.ReplaceAll(strings.TrimSpace(v.String()), ",", "")
	if raw == "" {
		return 0
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

func (g *gatewayClient) TestConnection(ctx context.Context) (TestResult, error) {
	body, err := g.get(ctx, "/test", nil)
	if err != nil {
		return TestResult{Source: g.info.ID, Error: err.Error()}, err
	}
	doc := gjson.ParseBytes(body)
	return TestResult{
		Success:         doc.Get("success").Bool(),
		Source:          g.info.ID,
		TotalBalanceUSD: looseFloat(doc.Get("total_balance_usd")),
		Currencies:      int(doc.Get("currencies").Int()),
	}, nil
}

func (g *gatewayClient) FetchTrades(ctx context.Context, since time.Time, limit int) ([]TradeDescriptor, error) {
	if limit <= 0 {
		limit = 100
	}
	params := map[string]string{"limit": strconv.Itoa(limit)}
	if !since.IsZero() {
		params["since"] = strconv.FormatInt(since.UnixMilli(), 10)
	}
	body, err := g.get(ctx, "/trades", params)
	if err != nil {
		return nil, err
	}
	items := gjson.GetBytes(body, "trades").Array()
	out := make([]TradeDescriptor, 0, len(items))
	for _, item := range items {
		id := strings.TrimSpace(item.Get("id").String())
		if id == "" {
			continue
		}
		desc := TradeDescriptor{
			ID:        id,
			Symbol:    strings.ToUpper(strings.TrimSpace(item.Get("symbol").String())),
			Side:      strings.ToUpper(strings.TrimSpace(item.Get("side").String())),
			Price:     looseFloat(item.Get("price")),
			Amount:    looseFloat(item.Get("amount")),
			Cost:      looseFloat(item.Get("cost")),
			Timestamp: time.UnixMilli(item.Get("timestamp").Int()).UTC(),
		}
		if fee := item.Get("fee.cost"); fee.Exists() {
			val := looseFloat(fee)
			desc.Fee = &val
			desc.FeeCCY = strings.ToUpper(item.Get("fee.currency").String())
		}
		out = append(out, desc)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (g *gatewayClient) FetchBalances(ctx context.Context) ([]Balance, error) {
	body, err := g.get(ctx, "/balances", nil)
	if err != nil {
		return nil, err
	}
	items := gjson.GetBytes(body, "balances").Array()
	out := make([]Balance, 0, len(items))
	for _, item := range items {
		total := looseFloat(item.Get("total"))
		if total <= 0 {
			continue
		}
		out = append(out, Balance{
			Currency: strings.ToUpper(item.Get("currency").String()),
			Total:    total,
			Free:     looseFloat(item.Get("free")),
			Used:     looseFloat(item.Get("used")),
		})
	}
	return out, nil
}

func (g *gatewayClient) FetchPositions(ctx context.Context) ([]Position, error) {
	// Venues without derivative support never hold positions; skip the call.
	if !g.info.HasFutures {
		return nil, nil
	}
	body, err := g.get(ctx, "/positions", nil)
	if err != nil {
		return nil, err
	}
	items := gjson.GetBytes(body, "positions").Array()
	out := make([]Position, 0, len(items))
	for _, item := range items {
		size := looseFloat(item.Get("contracts"))
		if size == 0 {
			continue
		}
		if size < 0 {
			size = -size
		}
		pos := Position{
			Symbol:        strings.ToUpper(item.Get("symbol").String()),
			Side:          strings.ToUpper(item.Get("side").String()),
			Size:          size,
			EntryPrice:    looseFloat(item.Get("entryPrice")),
			MarkPrice:     looseFloat(item.Get("markPrice")),
			UnrealizedPnL: looseFloat(item.Get("unrealizedPnl")),
		}
		if lev := item.Get("leverage"); lev.Exists() && lev.Int() > 0 {
			v := int(lev.Int())
			pos.Leverage = &v
		}
		out = append(out, pos)
	}
	return out, nil
}
