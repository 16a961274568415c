package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/hivekeeper/internal/flagx"
	"github.com/dmitrijs2005/hivekeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations
// use timex.Duration so they can be written as "30s" or as nanoseconds.
type JsonConfig struct {
	DatabasePath string `json:"database_path"`
	AppSecret    string `json:"app_secret"`

	SignerEndpointAddr  string         `json:"signer_endpoint_addr"`
	SignerPairingSecret string         `json:"signer_pairing_secret"`
	SignerTokenTTL      timex.Duration `json:"signer_token_ttl"`

	PromptAttempts int    `json:"prompt_attempts"`
	LogLevel       string `json:"log_level"`

	KDFTime      uint32 `json:"kdf_time"`
	KDFMemoryKiB uint32 `json:"kdf_memory_kib"`

	S3 struct {
		Bucket    string `json:"bucket"`
		Region    string `json:"region"`
		Endpoint  string `json:"endpoint"`
		AccessKey string `json:"access_key"`
		SecretKey string `json:"secret_key"`
	} `json:"s3"`
}

// parseJson overlays Config with the values of the JSON file named by
// flagx.ConfigPath. Keys that are absent or zero leave the current value
// alone. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	setString(&cfg.DatabasePath, jc.DatabasePath)
	setString(&cfg.AppSecret, jc.AppSecret)
	setString(&cfg.SignerEndpointAddr, jc.SignerEndpointAddr)
	setString(&cfg.SignerPairingSecret, jc.SignerPairingSecret)
	if jc.SignerTokenTTL.Duration > 0 {
		cfg.SignerTokenTTL = jc.SignerTokenTTL.Duration
	}
	if jc.PromptAttempts > 0 {
		cfg.PromptAttempts = jc.PromptAttempts
	}
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.KDFTime > 0 {
		cfg.KDFTime = jc.KDFTime
	}
	if jc.KDFMemoryKiB > 0 {
		cfg.KDFMemoryKiB = jc.KDFMemoryKiB
	}
	setString(&cfg.S3Bucket, jc.S3.Bucket)
	setString(&cfg.S3Region, jc.S3.Region)
	setString(&cfg.S3Endpoint, jc.S3.Endpoint)
	setString(&cfg.S3AccessKey, jc.S3.AccessKey)
	setString(&cfg.S3SecretKey, jc.S3.SecretKey)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
