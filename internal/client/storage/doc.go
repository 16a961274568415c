// Package storage wires the local SQLite database of the vault: it opens
// the file, applies the embedded goose migrations and adapts the account
// and metadata repositories to vault.Persister.
//
//	db, err := storage.InitDatabase(ctx, cfg.DatabasePath)
//	store, err := vault.Open(ctx, cache, storage.NewSQLitePersister(db))
package storage
