package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"tradetrack/internal/journal"
)

// TradeStore persists journal.TradeRecord rows. Every query carries the
// user_id predicate so a user can never see or touch another user's rows.
type TradeStore struct {
	db *gorm.DB
}

// Insert stores a new trade, assigning an id when the record has none.
func (s *TradeStore) Insert(ctx context.Context, rec journal.TradeRecord) (journal.TradeRecord, error) {
	if s == nil || s.db == nil {
		return journal.TradeRecord{}, fmt.Errorf("trade store not initialized")
	}
	if strings.TrimSpace(rec.UserID) == "" {
		return journal.TradeRecord{}, fmt.Errorf("user_id is required")
	}
	if strings.TrimSpace(rec.ID) == "" {
		rec.ID = uuid.NewString()
	}
	model := newTradeModel(rec)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return journal.TradeRecord{}, err
	}
	return tradeModelToRecord(model), nil
}

// InsertBatch stores many trades in one transaction (CSV import path).
func (s *TradeStore) InsertBatch(ctx context.Context, recs []journal.TradeRecord) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("trade store not initialized")
	}
	if len(recs) == 0 {
		return 0, nil
	}
	models := make([]tradeModel, 0, len(recs))
	for _, rec := range recs {
		if strings.TrimSpace(rec.ID) == "" {
			rec.ID = uuid.NewString()
		}
		models = append(models, newTradeModel(rec))
	}
	if err := s.db.WithContext(ctx).Create(&models).Error; err != nil {
		return 0, err
	}
	return len(models), nil
}

// Get returns one trade owned by userID.
func (s *TradeStore) Get(ctx context.Context, userID, id string) (journal.TradeRecord, error) {
	if s == nil || s.db == nil {
		return journal.TradeRecord{}, fmt.Errorf("trade store not initialized")
	}
	var model tradeModel
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return journal.TradeRecord{}, ErrNotFound
		}
		return journal.TradeRecord{}, err
	}
	return tradeModelToRecord(model), nil
}

func (s *TradeStore) filtered(ctx context.Context, userID string, filter *journal.TradeFilter) *gorm.DB {
	query := s.db.WithContext(ctx).Model(&tradeModel{}).Where("user_id = ?", userID)
	if filter == nil {
		return query
	}
	if filter.Symbol != "" {
		query = query.Where("symbol = ?", filter.Symbol)
	}
	if filter.Side != "" {
		query = query.Where("side = ?", string(filter.Side))
	}
	if filter.Status != "" {
		query = query.Where("status = ?", string(filter.Status))
	}
	if start := filter.StartTime(); start != nil {
		query = query.Where("entry_time >= ?", *start)
	}
	if end := filter.EndTime(); end != nil {
		query = query.Where("entry_time <= ?", *end)
	}
	return query
}

// Find lists trades matching the filter, newest entry first. limit <= 0 means
// unbounded (the aggregator needs the full matching set).
func (s *TradeStore) Find(ctx context.Context, userID string, filter *journal.TradeFilter, limit int) ([]journal.TradeRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("trade store not initialized")
	}
	query := s.filtered(ctx, userID, filter).Order("entry_time DESC, id DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var models []tradeModel
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]journal.TradeRecord, 0, len(models))
	for _, m := range models {
		out = append(out, tradeModelToRecord(m))
	}
	return out, nil
}

// UpdatePartial applies the non-nil fields of upd to one owned trade and
// returns the updated record. An empty update returns the record untouched.
func (s *TradeStore) UpdatePartial(ctx context.Context, userID, id string, upd journal.TradeUpdate) (journal.TradeRecord, error) {
	if s == nil || s.db == nil {
		return journal.TradeRecord{}, fmt.Errorf("trade store not initialized")
	}
	if upd.Empty() {
		return s.Get(ctx, userID, id)
	}
	payload := map[string]interface{}{
		"updated_at": time.Now().UnixMilli(),
	}
	if upd.Symbol != nil {
		payload["symbol"] = strings.ToUpper(strings.TrimSpace(*upd.Symbol))
	}
	if upd.Side != nil {
		payload["side"] = string(*upd.Side)
	}
	if upd.Quantity != nil {
		payload["quantity"] = *upd.Quantity
	}
	if upd.EntryPrice != nil {
		payload["entry_price"] = *upd.EntryPrice
	}
	if upd.ExitPrice != nil {
		payload["exit_price"] = *upd.ExitPrice
	}
	if upd.EntryTime != nil {
		payload["entry_time"] = *upd.EntryTime
	}
	if upd.ExitTime != nil {
		payload["exit_time"] = *upd.ExitTime
	}
	if upd.Status != nil {
		payload["status"] = string(*upd.Status)
	}
	if upd.PnL != nil {
		payload["pnl"] = *upd.PnL
	}
	if upd.Setup != nil {
		payload["setup"] = *upd.Setup
	}
	if upd.Notes != nil {
		payload["notes"] = *upd.Notes
	}
	res := s.db.WithContext(ctx).Model(&tradeModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(payload)
	if res.Error != nil {
		return journal.TradeRecord{}, res.Error
	}
	if res.RowsAffected == 0 {
		return journal.TradeRecord{}, ErrNotFound
	}
	return s.Get(ctx, userID, id)
}

// Delete removes one owned trade.
func (s *TradeStore) Delete(ctx context.Context, userID, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("trade store not initialized")
	}
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&tradeModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ExistsByDedupKey reports whether a synced trade with the given
// (user, source, external id) tuple is already stored.
func (s *TradeStore) ExistsByDedupKey(ctx context.Context, userID, source, externalID string) (bool, error) {
	if s == nil || s.db == nil {
		return false, fmt.Errorf("trade store not initialized")
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&tradeModel{}).
		Where("user_id = ? AND source = ? AND external_id = ?", userID, source, externalID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// LatestEntryTime returns the max entry_time among a user's trades from one
// source, or nil when none exist. The reconciler uses it as the incremental
// window start.
func (s *TradeStore) LatestEntryTime(ctx context.Context, userID, source string) (*time.Time, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("trade store not initialized")
	}
	var model tradeModel
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND source = ? AND entry_time IS NOT NULL", userID, source).
		Order("entry_time DESC").
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.EntryTime, nil
}
