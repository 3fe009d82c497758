package exchange

import (
	"context"
	"errors"
	"time"
)

// ErrAuth marks a venue-side credential rejection, distinct from transport
// failures so callers can demand a reconnect instead of retrying.
var ErrAuth = errors.New("exchange: authentication rejected")

// Credentials are the decrypted API credentials for one connection.
type Credentials struct {
	APIKey     string
	APISecret  string
	Passphrase string
}

// TradeDescriptor is the uniform shape every source adapter maps venue
// trades into (ccxt-style fields).
type TradeDescriptor struct {
	ID        string    `json:"id"`
	Symbol    string    `json:"symbol"`
	Side      string    `json:"side"`
	Price     float64   `json:"price"`
	Amount    float64   `json:"amount"`
	Cost      float64   `json:"cost"`
	Timestamp time.Time `json:"timestamp"`
	Fee       *float64  `json:"fee,omitempty"`
	FeeCCY    string    `json:"fee_currency,omitempty"`
}

type Balance struct {
	Currency string  `json:"currency"`
	Total    float64 `json:"total"`
	Free     float64 `json:"free"`
	Used     float64 `json:"used"`
}

type Position struct {
	Symbol        string   `json:"symbol"`
	Side          string   `json:"side"`
	Size          float64  `json:"size"`
	EntryPrice    float64  `json:"entry_price"`
	MarkPrice     float64  `json:"mark_price"`
	UnrealizedPnL float64  `json:"unrealized_pnl"`
	Leverage      *int     `json:"leverage,omitempty"`
}

// TestResult reports whether freshly supplied credentials work.
type TestResult struct {
	Success         bool    `json:"success"`
	Source          string  `json:"exchange"`
	TotalBalanceUSD float64 `json:"total_balance_usd"`
	Currencies      int     `json:"currencies"`
	Error           string  `json:"error,omitempty"`
}

// Client is the fetch capability one connection talks through. Every method
// honours ctx cancellation; adapters never retry on their own.
type Client interface {
	TestConnection(ctx context.Context) (TestResult, error)
	FetchTrades(ctx context.Context, since time.Time, limit int) ([]TradeDescriptor, error)
	FetchBalances(ctx context.Context) ([]Balance, error)
	FetchPositions(ctx context.Context) ([]Position, error)
}
