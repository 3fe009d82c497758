package journal

// Derived aggregates. None of these are persisted; they are recomputed from
// the trade set on every request.

type DashboardStats struct {
	TotalPnL        float64 `json:"total_pnl"`
	WinRate         float64 `json:"win_rate"`
	ProfitFactor    float64 `json:"profit_factor"`
	TotalTrades     int     `json:"total_trades"`
	WinningTrades   int     `json:"winning_trades"`
	LosingTrades    int     `json:"losing_trades"`
	BreakevenTrades int     `json:"breakeven_trades"`
}

// DailyStat is one journal bucket, keyed by the YYYY-MM-DD of entry_time.
type DailyStat struct {
	Date         string  `json:"date"`
	Count        int     `json:"count"`
	PnL          float64 `json:"pnl"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	Breakeven    int     `json:"breakeven"`
	WinRate      float64 `json:"win_rate"`
	ProfitFactor float64 `json:"profit_factor"`
}

// EquityPoint is one step of the cumulative equity curve. Equity is the
// running total after adding that day's pnl.
type EquityPoint struct {
	Date   string  `json:"date"`
	Equity float64 `json:"equity"`
	PnL    float64 `json:"pnl"`
}

// SyncReport summarizes one reconciliation pass.
type SyncReport struct {
	Source       string `json:"source"`
	Inserted     int    `json:"synced_trades"`
	TotalFetched int    `json:"total_fetched"`
}
