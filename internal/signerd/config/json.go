package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/hivekeeper/internal/flagx"
)

// JsonConfig is the on-disk form of Config.
type JsonConfig struct {
	EndpointAddrGRPC string   `json:"endpoint_addr_grpc"`
	PairingSecret    string   `json:"pairing_secret"`
	MasterSeed       string   `json:"master_seed"`
	AllowedUsers     []string `json:"allowed_users"`
	MaxPayloadSize   int      `json:"max_payload_size"`
	LogLevel         string   `json:"log_level"`
}

// parseJson overlays non-empty values from the file named by
// flagx.ConfigPath. It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigPath()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.EndpointAddrGRPC != "" {
		cfg.EndpointAddrGRPC = jc.EndpointAddrGRPC
	}
	if jc.PairingSecret != "" {
		cfg.PairingSecret = jc.PairingSecret
	}
	if jc.MasterSeed != "" {
		cfg.MasterSeed = jc.MasterSeed
	}
	if len(jc.AllowedUsers) > 0 {
		cfg.AllowedUsers = jc.AllowedUsers
	}
	if jc.MaxPayloadSize > 0 {
		cfg.MaxPayloadSize = jc.MaxPayloadSize
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
