package store

import (
	"strings"
	"time"

	"gorm.io/datatypes"

	"tradetrack/internal/journal"
)

type tradeModel struct {
	ID         string     `gorm:"column:id;primaryKey"`
	UserID     string     `gorm:"column:user_id;index:idx_trades_user;uniqueIndex:idx_trades_dedup,priority:1"`
	Symbol     string     `gorm:"column:symbol;index"`
	Side       string     `gorm:"column:side"`
	Quantity   float64    `gorm:"column:quantity"`
	EntryPrice float64    `gorm:"column:entry_price"`
	ExitPrice  *float64   `gorm:"column:exit_price"`
	EntryTime  *time.Time `gorm:"column:entry_time;index"`
	ExitTime   *time.Time `gorm:"column:exit_time"`
	Status     string     `gorm:"column:status"`
	PnL        *float64   `gorm:"column:pnl"`
	Setup      string     `gorm:"column:setup"`
	Notes      string     `gorm:"column:notes"`
	// Source/ExternalID stay NULL for manual entries so the composite unique
	// index only bites for synced rows (SQLite never collides NULLs).
	Source      *string        `gorm:"column:source;uniqueIndex:idx_trades_dedup,priority:2"`
	ExternalID  *string        `gorm:"column:external_id;uniqueIndex:idx_trades_dedup,priority:3"`
	Fee         *float64       `gorm:"column:fee"`
	FeeCurrency string         `gorm:"column:fee_currency"`
	SyncedAt    *time.Time     `gorm:"column:synced_at"`
	Raw         datatypes.JSON `gorm:"column:raw_data"`
	CreatedAt   int64          `gorm:"column:created_at"`
	UpdatedAt   int64          `gorm:"column:updated_at"`
}

func (tradeModel) TableName() string { return "trades" }

type connectionModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	UserID       string     `gorm:"column:user_id;index:idx_connections_user"`
	Source       string     `gorm:"column:source"`
	Label        string     `gorm:"column:label"`
	APIKeyEnc    string     `gorm:"column:api_key_enc"`
	APISecretEnc string     `gorm:"column:api_secret_enc"`
	PassphrEnc   string     `gorm:"column:passphrase_enc"`
	Status       string     `gorm:"column:status;index"`
	LastError    string     `gorm:"column:last_error"`
	ConnectedAt  int64      `gorm:"column:connected_at"`
	LastSync     *time.Time `gorm:"column:last_sync"`
	UpdatedAt    int64      `gorm:"column:updated_at"`
}

func (connectionModel) TableName() string { return "exchange_connections" }

// --------------------------- converters ------------------------------------

func newTradeModel(rec journal.TradeRecord) tradeModel {
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = now
	}
	m := tradeModel{
		ID:          rec.ID,
		UserID:      rec.UserID,
		Symbol:      strings.ToUpper(strings.TrimSpace(rec.Symbol)),
		Side:        string(rec.Side),
		Quantity:    rec.Quantity,
		EntryPrice:  rec.EntryPrice,
		ExitPrice:   rec.ExitPrice,
		EntryTime:   rec.EntryTime,
		ExitTime:    rec.ExitTime,
		Status:      string(rec.Status),
		PnL:         rec.PnL,
		Setup:       rec.Setup,
		Notes:       rec.Notes,
		Fee:         rec.Fee,
		FeeCurrency: rec.FeeCCY,
		SyncedAt:    rec.SyncedAt,
		CreatedAt:   rec.CreatedAt.UnixMilli(),
		UpdatedAt:   rec.UpdatedAt.UnixMilli(),
	}
	if src := strings.TrimSpace(rec.Source); src != "" {
		m.Source = &src
	}
	if ext := strings.TrimSpace(rec.ExternalID); ext != "" {
		m.ExternalID = &ext
	}
	if len(rec.Raw) > 0 {
		m.Raw = datatypes.JSON(rec.Raw)
	}
	return m
}

func tradeModelToRecord(m tradeModel) journal.TradeRecord {
	rec := journal.TradeRecord{
		ID:         m.ID,
		UserID:     m.UserID,
		Symbol:     strings.ToUpper(strings.TrimSpace(m.Symbol)),
		Side:       journal.TradeSide(m.Side),
		Quantity:   m.Quantity,
		EntryPrice: m.EntryPrice,
		ExitPrice:  m.ExitPrice,
		EntryTime:  m.EntryTime,
		ExitTime:   m.ExitTime,
		Status:     journal.TradeStatus(m.Status),
		PnL:        m.PnL,
		Setup:      m.Setup,
		Notes:      m.Notes,
		Fee:        m.Fee,
		FeeCCY:     m.FeeCurrency,
		SyncedAt:   m.SyncedAt,
		CreatedAt:  time.UnixMilli(m.CreatedAt),
		UpdatedAt:  time.UnixMilli(m.UpdatedAt),
	}
	if m.Source != nil {
		rec.Source = *m.Source
	}
	if m.ExternalID != nil {
		rec.ExternalID = *m.ExternalID
	}
	if len(m.Raw) > 0 {
		rec.Raw = []byte(m.Raw)
	}
	return rec
}

func newConnectionModel(conn journal.ExchangeConnection) connectionModel {
	now := time.Now()
	if conn.ConnectedAt.IsZero() {
		conn.ConnectedAt = now
	}
	return connectionModel{
		ID:           conn.ID,
		UserID:       conn.UserID,
		Source:       strings.ToLower(strings.TrimSpace(conn.Source)),
		Label:        strings.TrimSpace(conn.Label),
		APIKeyEnc:    conn.APIKeyEnc,
		APISecretEnc: conn.APISecretEnc,
		PassphrEnc:   conn.PassphrEnc,
		Status:       string(conn.Status),
		LastError:    conn.LastError,
		ConnectedAt:  conn.ConnectedAt.UnixMilli(),
		LastSync:     conn.LastSync,
		UpdatedAt:    now.UnixMilli(),
	}
}

func connectionModelToRecord(m connectionModel) journal.ExchangeConnection {
	return journal.ExchangeConnection{
		ID:           m.ID,
		UserID:       m.UserID,
		Source:       m.Source,
		Label:        m.Label,
		APIKeyEnc:    m.APIKeyEnc,
		APISecretEnc: m.APISecretEnc,
		PassphrEnc:   m.PassphrEnc,
		Status:       journal.ConnectionStatus(m.Status),
		LastError:    m.LastError,
		ConnectedAt:  time.UnixMilli(m.ConnectedAt),
		LastSync:     m.LastSync,
	}
}
