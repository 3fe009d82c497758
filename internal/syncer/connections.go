package syncer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tradetrack/internal/exchange"
	"tradetrack/internal/journal"
)

// ErrPassphraseRequired is returned when a venue demands a passphrase and the
// request carries none.
var ErrPassphraseRequired = errors.New("passphrase required for this exchange")

// ConnectRequest carries the plaintext credentials for a new connection.
// They exist in memory only for the duration of Connect.
type ConnectRequest struct {
	Source     string `json:"exchange" binding:"required"`
	Label      string `json:"label"`
	APIKey     string `json:"api_key" binding:"required"`
	APISecret  string `json:"api_secret" binding:"required"`
	Passphrase string `json:"passphrase"`
}

func (r ConnectRequest) credentials() exchange.Credentials {
	return exchange.Credentials{
		APIKey:     strings.TrimSpace(r.APIKey),
		APISecret:  strings.TrimSpace(r.APISecret),
		Passphrase: strings.TrimSpace(r.Passphrase),
	}
}

func (r ConnectRequest) validate() (exchange.SourceInfo, error) {
	info, err := exchange.Lookup(r.Source)
	if err != nil {
		return exchange.SourceInfo{}, err
	}
	if info.RequiresPassphrase && strings.TrimSpace(r.Passphrase) == "" {
		return info, fmt.Errorf("%w: %s", ErrPassphraseRequired, info.ID)
	}
	return info, nil
}

// TestCredentials checks a credential bundle against the venue without
// persisting anything.
func (s *Service) TestCredentials(ctx context.Context, req ConnectRequest) (exchange.TestResult, error) {
	info, err := req.validate()
	if err != nil {
		return exchange.TestResult{}, err
	}
	client, err := s.newClient(info.ID, req.credentials(), s.opts.Client)
	if err != nil {
		return exchange.TestResult{}, err
	}
	testCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()
	return client.TestConnection(testCtx)
}

// Connect verifies the credentials against the venue, encrypts them and
// stores the connection in the active state.
func (s *Service) Connect(ctx context.Context, userID string, req ConnectRequest) (journal.ExchangeConnection, error) {
	info, err := req.validate()
	if err != nil {
		return journal.ExchangeConnection{}, err
	}
	creds := req.credentials()

	client, err := s.newClient(info.ID, creds, s.opts.Client)
	if err != nil {
		return journal.ExchangeConnection{}, err
	}
	testCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	result, err := client.TestConnection(testCtx)
	cancel()
	if err != nil {
		return journal.ExchangeConnection{}, fmt.Errorf("verify credentials with %s: %w", info.ID, err)
	}
	if !result.Success {
		return journal.ExchangeConnection{}, fmt.Errorf("%w: %s rejected the credentials", exchange.ErrAuth, info.ID)
	}

	conn := journal.ExchangeConnection{
		UserID:      userID,
		Source:      info.ID,
		Label:       strings.TrimSpace(req.Label),
		ConnectedAt: s.now().UTC(),
	}
	if conn.Label == "" {
		conn.Label = info.Name
	}
	if conn.APIKeyEnc, err = s.vault.Encrypt(creds.APIKey); err != nil {
		return journal.ExchangeConnection{}, err
	}
	if conn.APISecretEnc, err = s.vault.Encrypt(creds.APISecret); err != nil {
		return journal.ExchangeConnection{}, err
	}
	if creds.Passphrase != "" {
		if conn.PassphrEnc, err = s.vault.Encrypt(creds.Passphrase); err != nil {
			return journal.ExchangeConnection{}, err
		}
	}
	return s.connections.Create(ctx, conn)
}

// Disconnect removes the connection. Trades already ingested from it stay.
func (s *Service) Disconnect(ctx context.Context, userID, connectionID string) error {
	return s.connections.Delete(ctx, userID, connectionID)
}

// List returns the user's connections, credentials omitted by the type's
// JSON shape.
func (s *Service) List(ctx context.Context, userID string) ([]journal.ExchangeConnection, error) {
	return s.connections.ListByUser(ctx, userID)
}

// GetConnection returns one connection if the user owns it.
func (s *Service) GetConnection(ctx context.Context, userID, connectionID string) (journal.ExchangeConnection, error) {
	return s.connections.GetOwned(ctx, userID, connectionID)
}

// Balances fetches the live account balances through a stored connection.
func (s *Service) Balances(ctx context.Context, userID, connectionID string) ([]exchange.Balance, error) {
	client, _, err := s.liveClient(ctx, userID, connectionID)
	if err != nil {
		return nil, err
	}
	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()
	return client.FetchBalances(fetchCtx)
}

// Positions fetches the open derivatives positions through a stored
// connection. Spot-only venues report an empty list.
func (s *Service) Positions(ctx context.Context, userID, connectionID string) ([]exchange.Position, error) {
	client, info, err := s.liveClient(ctx, userID, connectionID)
	if err != nil {
		return nil, err
	}
	if !info.HasFutures {
		return []exchange.Position{}, nil
	}
	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()
	return client.FetchPositions(fetchCtx)
}

func (s *Service) liveClient(ctx context.Context, userID, connectionID string) (exchange.Client, exchange.SourceInfo, error) {
	conn, err := s.connections.GetOwned(ctx, userID, connectionID)
	if err != nil {
		return nil, exchange.SourceInfo{}, err
	}
	info, err := exchange.Lookup(conn.Source)
	if err != nil {
		return nil, exchange.SourceInfo{}, err
	}
	creds, err := s.decryptCredentials(conn)
	if err != nil {
		return nil, exchange.SourceInfo{}, err
	}
	client, err := s.newClient(info.ID, creds, s.opts.Client)
	if err != nil {
		return nil, exchange.SourceInfo{}, err
	}
	return client, info, nil
}
