// Package config handles configuration for the development signer daemon,
// including defaults, JSON overlay, and command-line flags.
package config

// Config holds runtime settings for signerd.
//
// Fields:
//   - EndpointAddrGRPC: bind address of the signer gRPC endpoint.
//   - PairingSecret: HMAC secret shared with paired clients (HS256 tokens).
//   - MasterSeed: hex seed the per-account signing keys are derived from.
//     Empty means a random seed, so keys change on every start.
//   - AllowedUsers: usernames the daemon signs for; empty allows all.
//   - MaxPayloadSize: largest payload accepted, in bytes.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	EndpointAddrGRPC string
	PairingSecret    string
	MasterSeed       string
	AllowedUsers     []string
	MaxPayloadSize   int
	LogLevel         string
}

// LoadDefaults populates Config with development defaults.
// NOTE: the pairing secret must be overridden outside of development.
func (c *Config) LoadDefaults() {
	c.EndpointAddrGRPC = "127.0.0.1:50061"
	c.PairingSecret = "pairing-secret"
	c.MaxPayloadSize = 64 << 10
	c.LogLevel = "info"
}

// LoadConfig builds a Config by applying defaults, then overlaying values
// from an optional JSON file and finally from command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
