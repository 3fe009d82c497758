package journal

import "time"

type TradeSide string

const (
	SideBuy  TradeSide = "BUY"
	SideSell TradeSide = "SELL"
)

func (s TradeSide) Valid() bool {
	return s == SideBuy || s == SideSell
}

type TradeStatus string

const (
	StatusOpen   TradeStatus = "OPEN"
	StatusClosed TradeStatus = "CLOSED"
)

func (s TradeStatus) Valid() bool {
	return s == StatusOpen || s == StatusClosed
}

// TradeRecord is a single trade in a user's journal. PnL is nil until a
// realized profit is known: manually entered trades may carry one from the
// start, trades ingested from an exchange stay nil until an external matcher
// resolves them.
type TradeRecord struct {
	ID         string      `json:"id"`
	UserID     string      `json:"user_id"`
	Symbol     string      `json:"symbol"`
	Side       TradeSide   `json:"side"`
	Quantity   float64     `json:"quantity"`
	EntryPrice float64     `json:"entry_price"`
	ExitPrice  *float64    `json:"exit_price,omitempty"`
	EntryTime  *time.Time  `json:"entry_time"`
	ExitTime   *time.Time  `json:"exit_time,omitempty"`
	Status     TradeStatus `json:"status"`
	PnL        *float64    `json:"pnl,omitempty"`
	Setup      string      `json:"setup,omitempty"`
	Notes      string      `json:"notes,omitempty"`

	// Source is empty for manual entries, otherwise the exchange/broker id the
	// trade was synced from. ExternalID is the venue-side trade id; together
	// with UserID and Source it forms the dedup key.
	Source     string     `json:"source,omitempty"`
	ExternalID string     `json:"external_id,omitempty"`
	Fee        *float64   `json:"fee,omitempty"`
	FeeCCY     string     `json:"fee_currency,omitempty"`
	SyncedAt   *time.Time `json:"synced_at,omitempty"`
	// Raw keeps the venue-side payload a synced trade was built from, for
	// debugging mis-mapped fills. Never serialized to API responses.
	Raw []byte `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TradeUpdate carries a partial edit; nil fields are left untouched.
type TradeUpdate struct {
	Symbol     *string      `json:"symbol,omitempty"`
	Side       *TradeSide   `json:"side,omitempty"`
	Quantity   *float64     `json:"quantity,omitempty"`
	EntryPrice *float64     `json:"entry_price,omitempty"`
	ExitPrice  *float64     `json:"exit_price,omitempty"`
	EntryTime  *time.Time   `json:"entry_time,omitempty"`
	ExitTime   *time.Time   `json:"exit_time,omitempty"`
	Status     *TradeStatus `json:"status,omitempty"`
	PnL        *float64     `json:"pnl,omitempty"`
	Setup      *string      `json:"setup,omitempty"`
	Notes      *string      `json:"notes,omitempty"`
}

// Empty reports whether the update would change nothing.
func (u TradeUpdate) Empty() bool {
	return u.Symbol == nil && u.Side == nil && u.Quantity == nil &&
		u.EntryPrice == nil && u.ExitPrice == nil && u.EntryTime == nil &&
		u.ExitTime == nil && u.Status == nil && u.PnL == nil &&
		u.Setup == nil && u.Notes == nil
}
