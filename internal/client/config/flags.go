package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/hivekeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-d string   path to the vault database
//	-k string   application secret for keys stored without a PIN
//	-s string   address and port of the external signer
//	-r int      PIN and key attempts per authorization
//	-l string   log level (debug, info, warn, error)
//	-b string   S3 bucket for backups
//
// Secrets other than -k are only read from JSON so they do not end up in
// shell history.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-k", "-s", "-r", "-l", "-b"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the vault database")
	fs.StringVar(&cfg.AppSecret, "k", cfg.AppSecret, "application secret")
	fs.StringVar(&cfg.SignerEndpointAddr, "s", cfg.SignerEndpointAddr, "address and port of the external signer")
	fs.IntVar(&cfg.PromptAttempts, "r", cfg.PromptAttempts, "secret attempts per authorization")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level")
	fs.StringVar(&cfg.S3Bucket, "b", cfg.S3Bucket, "S3 bucket for backups")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
