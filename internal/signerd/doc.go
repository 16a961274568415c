// Package signerd is a development external signer. It serves the
// hivekeeper signer protocol over gRPC and signs payloads with Ed25519 keys
// derived per account from one master seed, so the client's delegated
// signing path can be exercised without a real wallet.
package signerd
