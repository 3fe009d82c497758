package journal

import "time"

type ConnectionStatus string

const (
	// ConnActive means the connection is idle and ready to sync.
	ConnActive ConnectionStatus = "active"
	// ConnSyncing is the mutual-exclusion flag: while set, no other sync pass
	// may claim the connection. It is persisted so the guard holds across
	// service replicas sharing one database.
	ConnSyncing ConnectionStatus = "syncing"
	// ConnError marks a failed pass; the connection stays claimable for retry.
	ConnError ConnectionStatus = "error"
)

// ExchangeConnection binds a user to one external trading venue. Credential
// fields hold vault ciphertext and are opaque everywhere outside the vault.
type ExchangeConnection struct {
	ID           string           `json:"id"`
	UserID       string           `json:"user_id"`
	Source       string           `json:"source"`
	Label        string           `json:"label"`
	APIKeyEnc    string           `json:"-"`
	APISecretEnc string           `json:"-"`
	PassphrEnc   string           `json:"-"`
	Status       ConnectionStatus `json:"status"`
	LastError    string           `json:"last_error,omitempty"`
	ConnectedAt  time.Time        `json:"connected_at"`
	LastSync     *time.Time       `json:"last_sync,omitempty"`
}
