// Package config loads runtime configuration for the hivekeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/-config or $HIVEKEEPER_CONFIG.
//  3. Command-line flags, which override earlier values.
//
// A leading "~" in DatabasePath is expanded to the user's home directory
// after all sources are applied.
//
// Supported flags
//
//	-d string   path to the vault database
//	-k string   application secret
//	-s string   external signer address
//	-r int      secret attempts per authorization
//	-l string   log level
//	-b string   S3 bucket for backups
//
// # JSON schema
//
//	{
//	  "database_path": "~/.hivekeeper/vault.db",
//	  "app_secret": "change-me",
//	  "signer_endpoint_addr": "127.0.0.1:50061",
//	  "signer_pairing_secret": "shared",
//	  "signer_token_ttl": "30s",
//	  "prompt_attempts": 3,
//	  "log_level": "info",
//	  "kdf_time": 1,
//	  "kdf_memory_kib": 65536,
//	  "s3": {
//	    "bucket": "hivekeeper",
//	    "region": "us-east-1",
//	    "endpoint": "http://127.0.0.1:9000",
//	    "access_key": "minio",
//	    "secret_key": "minio123"
//	  }
//	}
package config
