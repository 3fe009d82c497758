package syncer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"tradetrack/internal/exchange"
	"tradetrack/internal/journal"
	"tradetrack/internal/logger"
	"tradetrack/internal/store"
	"tradetrack/internal/vault"
)

// ErrSyncInProgress is returned when another pass holds the connection's
// syncing flag. Distinct from transport failures: "already running" is not
// "failed" and must not flip the connection into the error state.
var ErrSyncInProgress = errors.New("sync already in progress")

// ConnectionStore is the slice of the connection repository the reconciler
// needs.
type ConnectionStore interface {
	Get(ctx context.Context, id string) (journal.ExchangeConnection, error)
	GetOwned(ctx context.Context, userID, id string) (journal.ExchangeConnection, error)
	Create(ctx context.Context, conn journal.ExchangeConnection) (journal.ExchangeConnection, error)
	Delete(ctx context.Context, userID, id string) error
	ListByUser(ctx context.Context, userID string) ([]journal.ExchangeConnection, error)
	ListActive(ctx context.Context) ([]journal.ExchangeConnection, error)
	ClaimSyncing(ctx context.Context, id string) (journal.ExchangeConnection, error)
	MarkSynced(ctx context.Context, id string, at time.Time) error
	MarkError(ctx context.Context, id, msg string) error
}

// TradeStore is the slice of the trade repository the reconciler needs.
type TradeStore interface {
	Insert(ctx context.Context, rec journal.TradeRecord) (journal.TradeRecord, error)
	ExistsByDedupKey(ctx context.Context, userID, source, externalID string) (bool, error)
	LatestEntryTime(ctx context.Context, userID, source string) (*time.Time, error)
}

// CredentialVault decrypts the stored credential bundle.
type CredentialVault interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// ClientFactory builds the fetch client for one source. Swappable in tests.
type ClientFactory func(source string, creds exchange.Credentials, cfg exchange.ClientConfig) (exchange.Client, error)

// Options tune a Service.
type Options struct {
	// FetchTimeout bounds every network call to an external venue.
	FetchTimeout time.Duration
	// PageLimit caps how many trades one pass pulls.
	PageLimit int
	// WindowDays is the default incremental window when the store holds no
	// prior trades from the source.
	WindowDays int
	Client     exchange.ClientConfig
}

func (o Options) withDefaults() Options {
	if o.FetchTimeout <= 0 {
		o.FetchTimeout = 30 * time.Second
	}
	if o.PageLimit <= 0 {
		o.PageLimit = 500
	}
	if o.WindowDays <= 0 {
		o.WindowDays = 30
	}
	return o
}

// Service reconciles external trade history into the trade store: claim the
// connection, fetch since the incremental window start, insert whatever the
// dedup key has not seen yet. Existing rows are never mutated and a failed
// pass keeps what it already inserted.
type Service struct {
	connections ConnectionStore
	trades      TradeStore
	vault       CredentialVault
	newClient   ClientFactory
	opts        Options
	now         func() time.Time
}

func NewService(connections ConnectionStore, trades TradeStore, v CredentialVault, factory ClientFactory, opts Options) *Service {
	if factory == nil {
		factory = exchange.NewClient
	}
	return &Service{
		connections: connections,
		trades:      trades,
		vault:       v,
		newClient:   factory,
		opts:        opts.withDefaults(),
		now:         time.Now,
	}
}

// Sync runs one reconciliation pass for the connection. Exactly one of any
// number of concurrent calls proceeds; the rest fail fast with
// ErrSyncInProgress.
func (s *Service) Sync(ctx context.Context, connectionID string) (journal.SyncReport, error) {
	conn, err := s.connections.Get(ctx, connectionID)
	if err != nil {
		return journal.SyncReport{}, err
	}
	// Registry check first: an unknown source must never reach the network,
	// and a config-level mistake should not burn a claim cycle.
	if _, err := exchange.Lookup(conn.Source); err != nil {
		return journal.SyncReport{Source: conn.Source}, err
	}

	claimed, err := s.connections.ClaimSyncing(ctx, connectionID)
	if err != nil {
		if errors.Is(err, store.ErrClaimConflict) {
			return journal.SyncReport{Source: conn.Source}, fmt.Errorf("%w: connection %s", ErrSyncInProgress, connectionID)
		}
		return journal.SyncReport{}, err
	}
	conn = claimed

	report, err := s.runPass(ctx, conn)
	if err != nil {
		if markErr := s.connections.MarkError(context.WithoutCancel(ctx), connectionID, err.Error()); markErr != nil {
			logger.Errorf("[sync] release to error failed conn=%s err=%v", connectionID, markErr)
		}
		return report, err
	}
	if err := s.connections.MarkSynced(ctx, connectionID, s.now().UTC()); err != nil {
		return report, err
	}
	logger.Infof("[sync] pass done conn=%s source=%s inserted=%d fetched=%d",
		connectionID, conn.Source, report.Inserted, report.TotalFetched)
	return report, nil
}

func (s *Service) runPass(ctx context.Context, conn journal.ExchangeConnection) (journal.SyncReport, error) {
	report := journal.SyncReport{Source: conn.Source}

	creds, err := s.decryptCredentials(conn)
	if err != nil {
		return report, err
	}
	client, err := s.newClient(conn.Source, creds, s.opts.Client)
	if err != nil {
		return report, err
	}

	since, err := s.windowStart(ctx, conn)
	if err != nil {
		return report, err
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	descriptors, err := client.FetchTrades(fetchCtx, since, s.opts.PageLimit)
	cancel()
	if err != nil {
		return report, fmt.Errorf("fetch trades from %s: %w", conn.Source, err)
	}
	report.TotalFetched = len(descriptors)

	now := s.now().UTC()
	for _, desc := range descriptors {
		externalID := strings.TrimSpace(desc.ID)
		if externalID == "" {
			continue
		}
		exists, err := s.trades.ExistsByDedupKey(ctx, conn.UserID, conn.Source, externalID)
		if err != nil {
			return report, err
		}
		if exists {
			// Sync never updates an already-ingested trade.
			continue
		}
		if _, err := s.trades.Insert(ctx, recordFromDescriptor(conn, desc, now)); err != nil {
			// A racing replica may have inserted the same fill between the
			// existence check and here; the unique index then rejects ours
			// and the outcome is identical to the exists branch.
			if isDuplicateKey(err) {
				continue
			}
			return report, err
		}
		report.Inserted++
	}
	return report, nil
}

// windowStart picks the incremental fetch start: the newest stored entry_time
// for this (user, source), falling back to now minus the configured window.
func (s *Service) windowStart(ctx context.Context, conn journal.ExchangeConnection) (time.Time, error) {
	latest, err := s.trades.LatestEntryTime(ctx, conn.UserID, conn.Source)
	if err != nil {
		return time.Time{}, err
	}
	if latest != nil {
		return *latest, nil
	}
	return s.now().UTC().AddDate(0, 0, -s.opts.WindowDays), nil
}

func (s *Service) decryptCredentials(conn journal.ExchangeConnection) (exchange.Credentials, error) {
	apiKey, err := s.vault.Decrypt(conn.APIKeyEnc)
	if err != nil {
		return exchange.Credentials{}, fmt.Errorf("decrypt api key for %s: %w", conn.Source, err)
	}
	secret, err := s.vault.Decrypt(conn.APISecretEnc)
	if err != nil {
		return exchange.Credentials{}, fmt.Errorf("decrypt api secret for %s: %w", conn.Source, err)
	}
	creds := exchange.Credentials{APIKey: apiKey, APISecret: secret}
	if strings.TrimSpace(conn.PassphrEnc) != "" {
		pass, err := s.vault.Decrypt(conn.PassphrEnc)
		if err != nil {
			return exchange.Credentials{}, fmt.Errorf("decrypt passphrase for %s: %w", conn.Source, err)
		}
		creds.Passphrase = pass
	}
	return creds, nil
}

func recordFromDescriptor(conn journal.ExchangeConnection, desc exchange.TradeDescriptor, now time.Time) journal.TradeRecord {
	side := journal.TradeSide(strings.ToUpper(strings.TrimSpace(desc.Side)))
	if !side.Valid() {
		side = journal.SideBuy
	}
	ts := desc.Timestamp.UTC()
	raw, _ := json.Marshal(desc)
	return journal.TradeRecord{
		UserID:     conn.UserID,
		Symbol:     strings.ToUpper(strings.TrimSpace(desc.Symbol)),
		Side:       side,
		Quantity:   desc.Amount,
		EntryPrice: desc.Price,
		EntryTime:  &ts,
		Status:     journal.StatusClosed,
		// PnL stays nil: turning raw fills into round trips with a realized
		// result is a downstream matcher's job.
		Source:     conn.Source,
		ExternalID: strings.TrimSpace(desc.ID),
		Fee:        desc.Fee,
		FeeCCY:     desc.FeeCCY,
		SyncedAt:   &now,
		Raw:        raw,
	}
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate")
}

// IsCredentialError reports whether a sync failure means the stored
// credentials are unusable and the user has to reconnect.
func IsCredentialError(err error) bool {
	return errors.Is(err, vault.ErrDecrypt) || errors.Is(err, exchange.ErrAuth)
}
