package config

import (
	"flag"
	"os"
	"strings"

	"github.com/dmitrijs2005/hivekeeper/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., "127.0.0.1:50061")
//	-p string   pairing secret
//	-m string   hex master seed
//	-u string   comma-separated usernames to sign for
//	-z int      maximum payload size, bytes
//	-l string   log level
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-p", "-m", "-u", "-z", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port to run the signer")
	fs.StringVar(&config.PairingSecret, "p", config.PairingSecret, "pairing secret")
	fs.StringVar(&config.MasterSeed, "m", config.MasterSeed, "hex master seed")
	users := fs.String("u", strings.Join(config.AllowedUsers, ","), "comma-separated usernames to sign for")
	fs.IntVar(&config.MaxPayloadSize, "z", config.MaxPayloadSize, "maximum payload size (bytes)")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.AllowedUsers = splitList(*users)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
