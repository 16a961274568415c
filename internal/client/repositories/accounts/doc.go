// Package accounts stores the vault's account records in the local SQLite
// database.
//
// Rows carry only what the vault itself keeps: username, key tier, login
// method, the encrypted key (NULL for external signer accounts), the PIN
// protection flag, the creation time and the display position. Plaintext
// keys never reach this package.
//
// Typical usage, inside a transaction:
//
//	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
//	    return accounts.NewSQLiteRepository(tx).ReplaceAll(ctx, list)
//	})
package accounts
