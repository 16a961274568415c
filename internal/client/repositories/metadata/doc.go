// Package metadata persists small key/value pairs of the local vault. Its
// main tenant is the current account pointer, which the storage layer
// writes in the same transaction as the account table so a restart picks
// up the account that was current when the vault was last changed.
package metadata
