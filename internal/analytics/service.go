package analytics

import (
	"context"
	"math"
	"sort"

	"tradetrack/internal/journal"
)

// TradeSource is the slice of the trade store the aggregator needs. It is
// read-only; none of the operations here mutate anything.
type TradeSource interface {
	Find(ctx context.Context, userID string, filter *journal.TradeFilter, limit int) ([]journal.TradeRecord, error)
}

// Service computes dashboard stats, per-day journal buckets and the equity
// curve from a filtered trade set. All numeric edge rules live here: an empty
// matching set yields zeroed structures, never an error.
type Service struct {
	trades TradeSource
}

func NewService(trades TradeSource) *Service {
	return &Service{trades: trades}
}

// profitFactorCap substitutes for +Inf when there are profits but no losses,
// keeping the value JSON-serializable. The gross_loss check deliberately runs
// first: with both profits and losses present the real ratio wins even when
// it exceeds the cap.
const profitFactorCap = 99.0

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func profitFactor(grossProfit, grossLoss float64) float64 {
	if grossLoss > 0 {
		return grossProfit / grossLoss
	}
	if grossProfit > 0 {
		return profitFactorCap
	}
	return 0
}

// Dashboard aggregates the full matching set. total_trades counts every
// match; the remaining fields only look at rows with a resolved pnl.
func (s *Service) Dashboard(ctx context.Context, userID string, filter *journal.TradeFilter) (journal.DashboardStats, error) {
	if err := filter.Normalize(); err != nil {
		return journal.DashboardStats{}, err
	}
	records, err := s.trades.Find(ctx, userID, filter, 0)
	if err != nil {
		return journal.DashboardStats{}, err
	}

	stats := journal.DashboardStats{TotalTrades: len(records)}
	var grossProfit, grossLoss float64
	for _, rec := range records {
		if rec.PnL == nil {
			continue
		}
		pnl := *rec.PnL
		stats.TotalPnL += pnl
		switch {
		case pnl > 0:
			stats.WinningTrades++
			grossProfit += pnl
		case pnl < 0:
			stats.LosingTrades++
			grossLoss += -pnl
		default:
			stats.BreakevenTrades++
		}
	}

	resolved := stats.WinningTrades + stats.LosingTrades + stats.BreakevenTrades
	if resolved > 0 {
		stats.WinRate = round2(float64(stats.WinningTrades) / float64(resolved) * 100)
	}
	stats.ProfitFactor = round2(profitFactor(grossProfit, grossLoss))
	return stats, nil
}

// Journal buckets the matching set by the UTC calendar date of entry_time.
// Rows without an entry_time are dropped before anything else; rows without a
// pnl still count toward the bucket size and contribute 0 to its pnl sum.
func (s *Service) Journal(ctx context.Context, userID string, filter *journal.TradeFilter) (map[string]journal.DailyStat, error) {
	if err := filter.Normalize(); err != nil {
		return nil, err
	}
	records, err := s.trades.Find(ctx, userID, filter, 0)
	if err != nil {
		return nil, err
	}

	type bucketAcc struct {
		stat        journal.DailyStat
		grossProfit float64
		grossLoss   float64
	}
	buckets := make(map[string]*bucketAcc)
	for _, rec := range records {
		if rec.EntryTime == nil {
			continue
		}
		date := rec.EntryTime.UTC().Format("2006-01-02")
		acc := buckets[date]
		if acc == nil {
			acc = &bucketAcc{stat: journal.DailyStat{Date: date}}
			buckets[date] = acc
		}
		acc.stat.Count++
		if rec.PnL == nil {
			continue
		}
		pnl := *rec.PnL
		acc.stat.PnL += pnl
		switch {
		case pnl > 0:
			acc.stat.Wins++
			acc.grossProfit += pnl
		case pnl < 0:
			acc.stat.Losses++
			acc.grossLoss += -pnl
		default:
			acc.stat.Breakeven++
		}
	}

	out := make(map[string]journal.DailyStat, len(buckets))
	for date, acc := range buckets {
		resolved := acc.stat.Wins + acc.stat.Losses + acc.stat.Breakeven
		if resolved > 0 {
			acc.stat.WinRate = round2(float64(acc.stat.Wins) / float64(resolved) * 100)
		}
		acc.stat.ProfitFactor = round2(profitFactor(acc.grossProfit, acc.grossLoss))
		out[date] = acc.stat
	}
	return out, nil
}

// EquityCurve walks the per-day pnl sums in date order, maintaining a running
// total that starts at 0. Only rows with both an entry_time and a resolved
// pnl participate, so the final equity equals Dashboard total_pnl for the
// same filter.
func (s *Service) EquityCurve(ctx context.Context, userID string, filter *journal.TradeFilter) ([]journal.EquityPoint, error) {
	if err := filter.Normalize(); err != nil {
		return nil, err
	}
	records, err := s.trades.Find(ctx, userID, filter, 0)
	if err != nil {
		return nil, err
	}

	daily := make(map[string]float64)
	for _, rec := range records {
		if rec.EntryTime == nil || rec.PnL == nil {
			continue
		}
		date := rec.EntryTime.UTC().Format("2006-01-02")
		daily[date] += *rec.PnL
	}

	dates := make([]string, 0, len(daily))
	for date := range daily {
		dates = append(dates, date)
	}
	sort.Strings(dates)

	curve := make([]journal.EquityPoint, 0, len(dates))
	equity := 0.0
	for _, date := range dates {
		pnl := daily[date]
		equity += pnl
		curve = append(curve, journal.EquityPoint{Date: date, Equity: equity, PnL: pnl})
	}
	return curve, nil
}
