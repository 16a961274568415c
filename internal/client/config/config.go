package config

import (
	"time"

	"github.com/dmitrijs2005/hivekeeper/internal/common"
	"github.com/dmitrijs2005/hivekeeper/internal/cryptox"
	"github.com/mitchellh/go-homedir"
)

// Config holds runtime settings for the hivekeeper CLI.
//
// SignerEndpointAddr and S3Bucket are optional: when empty, external
// signing and backups are disabled.
type Config struct {
	DatabasePath string
	AppSecret    string

	SignerEndpointAddr  string
	SignerPairingSecret string
	SignerTokenTTL      time.Duration

	PromptAttempts int
	LogLevel       string

	KDFTime      uint32
	KDFMemoryKiB uint32

	S3Bucket    string
	S3Region    string
	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "~/.hivekeeper/vault.db"
	c.AppSecret = common.DefaultAppSecret
	c.SignerTokenTTL = 30 * time.Second
	c.PromptAttempts = 3
	c.LogLevel = "info"
	c.KDFTime = cryptox.DefaultKDFParams.Time
	c.KDFMemoryKiB = cryptox.DefaultKDFParams.Memory
	c.S3Region = "us-east-1"
}

// KDFParams returns the key derivation parameters for the cipher.
func (c *Config) KDFParams() cryptox.KDFParams {
	p := cryptox.DefaultKDFParams
	if c.KDFTime > 0 {
		p.Time = c.KDFTime
	}
	if c.KDFMemoryKiB > 0 {
		p.Memory = c.KDFMemoryKiB
	}
	return p
}

// expandPaths resolves a leading "~" in file paths.
func (c *Config) expandPaths() {
	p, err := homedir.Expand(c.DatabasePath)
	if err != nil {
		panic(err)
	}
	c.DatabasePath = p
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	cfg.expandPaths()
	return cfg
}
