package storage

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/hivekeeper/internal/client/repositories/accounts"
	"github.com/dmitrijs2005/hivekeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/hivekeeper/internal/client/vault"
	"github.com/dmitrijs2005/hivekeeper/internal/dbx"
)

// SQLitePersister saves vault snapshots to the local database. A snapshot
// is written in one transaction: the account table is replaced and the
// current account pointer is updated in the metadata table.
type SQLitePersister struct {
	db *sql.DB

	accounts func(dbx.DBTX) accounts.Repository
	metadata func(dbx.DBTX) metadata.Repository
}

var _ vault.Persister = (*SQLitePersister)(nil)

// NewSQLitePersister returns a persister bound to db.
func NewSQLitePersister(db *sql.DB) *SQLitePersister {
	return &SQLitePersister{
		db:       db,
		accounts: func(tx dbx.DBTX) accounts.Repository { return accounts.NewSQLiteRepository(tx) },
		metadata: func(tx dbx.DBTX) metadata.Repository { return metadata.NewSQLiteRepository(tx) },
	}
}

func (p *SQLitePersister) Load(ctx context.Context) (vault.Snapshot, error) {
	var snap vault.Snapshot

	err := dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		list, err := p.accounts(tx).GetAll(ctx)
		if err != nil {
			return err
		}
		snap.Accounts = list

		cur, err := p.metadata(tx).CurrentAccount(ctx)
		if err != nil {
			return err
		}
		snap.Current = cur
		return nil
	})
	if err != nil {
		return vault.Snapshot{}, err
	}
	return snap, nil
}

func (p *SQLitePersister) Save(ctx context.Context, snap vault.Snapshot) error {
	return dbx.WithTx(ctx, p.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := p.accounts(tx).ReplaceAll(ctx, snap.Accounts); err != nil {
			return err
		}

		return p.metadata(tx).SetCurrentAccount(ctx, snap.Current)
	})
}
