package metadata

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/dmitrijs2005/hivekeeper/internal/dbx"
)

// SQLiteRepository implements Repository over a DBTX, so it can join a
// transaction started with dbx.WithTx.
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := r.db.QueryRowContext(ctx, `SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get metadata[%s]: %w", key, err)
	}
	return value, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO metadata (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata[%s]: %w", key, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM metadata WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("failed to delete metadata[%s]: %w", key, err)
	}
	return nil
}

// CurrentAccount reads the current account pointer. It returns nil when
// no username is stored.
func (r *SQLiteRepository) CurrentAccount(ctx context.Context) (*models.AccountKey, error) {
	username, err := r.Get(ctx, KeyCurrentUsername)
	if err != nil || username == nil {
		return nil, err
	}

	tier, err := r.Get(ctx, KeyCurrentTier)
	if err != nil {
		return nil, err
	}
	keyTier, err := models.ParseKeyTier(string(tier))
	if err != nil {
		return nil, fmt.Errorf("current account %s: %w", username, err)
	}
	return &models.AccountKey{Username: string(username), KeyTier: keyTier}, nil
}

// SetCurrentAccount stores key as the current account pointer, or removes
// the pointer when key is nil.
func (r *SQLiteRepository) SetCurrentAccount(ctx context.Context, key *models.AccountKey) error {
	if key == nil {
		if err := r.Delete(ctx, KeyCurrentUsername); err != nil {
			return err
		}
		return r.Delete(ctx, KeyCurrentTier)
	}

	if err := r.Set(ctx, KeyCurrentUsername, []byte(key.Username)); err != nil {
		return err
	}
	return r.Set(ctx, KeyCurrentTier, []byte(key.KeyTier))
}
