// Package cli provides the interactive hivekeeper command-line client.
//
// It wires configuration, the local vault, the optional external signer and
// backup storage, and runs a REPL on top of them. Secrets are read without
// echo when stdin is a terminal and are wiped once used.
//
// Commands:
//   - list, switch, remove, logout: manage the known accounts
//   - import, addsigner: add an account
//   - unlock, sign: authorize an operation of a given key tier
//   - backup, restore: copy account records to and from S3
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
