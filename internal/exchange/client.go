package exchange

import (
	"time"
)

// ClientConfig carries the adapter knobs shared by every source.
type ClientConfig struct {
	// GatewayURL points at the ccxt sidecar that fronts venues without a
	// native Go SDK.
	GatewayURL string
	Timeout    time.Duration
	Testnet    bool
}

func (c ClientConfig) withDefaults() ClientConfig {
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return c
}

// NewClient builds the fetch client for one source id. Binance gets a native
// SDK adapter; every other registered venue goes through the ccxt gateway.
// Unknown ids fail here, before any network interaction.
func NewClient(source string, creds Credentials, cfg ClientConfig) (Client, error) {
	info, err := Lookup(source)
	if err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	if info.ID == "binance" {
		return newBinanceClient(creds, cfg), nil
	}
	return newGatewayClient(info, creds, cfg), nil
}
