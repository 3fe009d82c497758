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

// ConnectionStore persists exchange connections and owns the persisted
// syncing flag that serializes reconciliation passes.
type ConnectionStore struct {
	db *gorm.DB
}

// Create stores a new connection with status active.
func (s *ConnectionStore) Create(ctx context.Context, conn journal.ExchangeConnection) (journal.ExchangeConnection, error) {
	if s == nil || s.db == nil {
		return journal.ExchangeConnection{}, fmt.Errorf("connection store not initialized")
	}
	if strings.TrimSpace(conn.UserID) == "" {
		return journal.ExchangeConnection{}, fmt.Errorf("user_id is required")
	}
	if strings.TrimSpace(conn.ID) == "" {
		conn.ID = uuid.NewString()
	}
	if conn.Status == "" {
		conn.Status = journal.ConnActive
	}
	model := newConnectionModel(conn)
	if err := s.db.WithContext(ctx).Create(&model).Error; err != nil {
		return journal.ExchangeConnection{}, err
	}
	return connectionModelToRecord(model), nil
}

// Get returns one connection by id regardless of owner (internal use by the
// reconciler, which is triggered by connection id).
func (s *ConnectionStore) Get(ctx context.Context, id string) (journal.ExchangeConnection, error) {
	if s == nil || s.db == nil {
		return journal.ExchangeConnection{}, fmt.Errorf("connection store not initialized")
	}
	var model connectionModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return journal.ExchangeConnection{}, ErrNotFound
		}
		return journal.ExchangeConnection{}, err
	}
	return connectionModelToRecord(model), nil
}

// GetOwned returns one connection only when it belongs to userID.
func (s *ConnectionStore) GetOwned(ctx context.Context, userID, id string) (journal.ExchangeConnection, error) {
	conn, err := s.Get(ctx, id)
	if err != nil {
		return journal.ExchangeConnection{}, err
	}
	if conn.UserID != userID {
		return journal.ExchangeConnection{}, ErrNotFound
	}
	return conn, nil
}

// ListByUser returns a user's connections, newest first.
func (s *ConnectionStore) ListByUser(ctx context.Context, userID string) ([]journal.ExchangeConnection, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("connection store not initialized")
	}
	var models []connectionModel
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("connected_at DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]journal.ExchangeConnection, 0, len(models))
	for _, m := range models {
		out = append(out, connectionModelToRecord(m))
	}
	return out, nil
}

// ListActive returns every connection currently claimable for sync, across
// all users (scheduler input).
func (s *ConnectionStore) ListActive(ctx context.Context) ([]journal.ExchangeConnection, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("connection store not initialized")
	}
	var models []connectionModel
	err := s.db.WithContext(ctx).
		Where("status IN ?", []string{string(journal.ConnActive), string(journal.ConnError)}).
		Order("connected_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	out := make([]journal.ExchangeConnection, 0, len(models))
	for _, m := range models {
		out = append(out, connectionModelToRecord(m))
	}
	return out, nil
}

// Delete removes an owned connection. Trades already synced from it survive.
func (s *ConnectionStore) Delete(ctx context.Context, userID, id string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("connection store not initialized")
	}
	res := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&connectionModel{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ClaimSyncing performs the atomic active/error -> syncing transition and
// returns the claimed connection. This is a single conditional UPDATE against
// the persisted row, not an in-process lock, so exactly one of N concurrent
// claimants wins even across service replicas. Losing claimants get
// ErrClaimConflict; a missing row gets ErrNotFound.
func (s *ConnectionStore) ClaimSyncing(ctx context.Context, id string) (journal.ExchangeConnection, error) {
	if s == nil || s.db == nil {
		return journal.ExchangeConnection{}, fmt.Errorf("connection store not initialized")
	}
	res := s.db.WithContext(ctx).Model(&connectionModel{}).
		Where("id = ? AND status IN ?", id, []string{string(journal.ConnActive), string(journal.ConnError)}).
		Updates(map[string]interface{}{
			"status":     string(journal.ConnSyncing),
			"updated_at": time.Now().UnixMilli(),
		})
	if res.Error != nil {
		return journal.ExchangeConnection{}, res.Error
	}
	if res.RowsAffected == 0 {
		if _, err := s.Get(ctx, id); err != nil {
			return journal.ExchangeConnection{}, err
		}
		return journal.ExchangeConnection{}, ErrClaimConflict
	}
	return s.Get(ctx, id)
}

// MarkSynced releases the syncing flag after a successful pass, recording
// last_sync and clearing any stale error message.
func (s *ConnectionStore) MarkSynced(ctx context.Context, id string, at time.Time) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("connection store not initialized")
	}
	return s.db.WithContext(ctx).Model(&connectionModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(journal.ConnActive),
			"last_sync":  at,
			"last_error": "",
			"updated_at": time.Now().UnixMilli(),
		}).Error
}

// MarkError releases the syncing flag after a failed pass. The connection
// stays claimable so the next manual or scheduled sync can retry.
func (s *ConnectionStore) MarkError(ctx context.Context, id, msg string) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("connection store not initialized")
	}
	return s.db.WithContext(ctx).Model(&connectionModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(journal.ConnError),
			"last_error": strings.TrimSpace(msg),
			"updated_at": time.Now().UnixMilli(),
		}).Error
}

