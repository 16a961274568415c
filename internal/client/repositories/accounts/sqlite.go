package accounts

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/dmitrijs2005/hivekeeper/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Account, error) {
	query := `select id, username, key_tier, login_method, ciphertext, pin_protected, created_at
		from accounts order by position`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select accounts: %w", err)
	}
	defer rows.Close()

	var result []models.Account
	for rows.Next() {
		var (
			a                   models.Account
			tier, method, stamp string
			pinProtected        int
		)
		if err := rows.Scan(&a.ID, &a.Username, &tier, &method, &a.Ciphertext, &pinProtected, &stamp); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}

		if a.KeyTier, err = models.ParseKeyTier(tier); err != nil {
			return nil, fmt.Errorf("account %s: %w", a.ID, err)
		}
		if a.LoginMethod, err = models.ParseLoginMethod(method); err != nil {
			return nil, fmt.Errorf("account %s: %w", a.ID, err)
		}
		if a.CreatedAt, err = time.Parse(time.RFC3339Nano, stamp); err != nil {
			return nil, fmt.Errorf("account %s: bad created_at: %w", a.ID, err)
		}
		a.IsPinProtected = pinProtected != 0

		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate account rows: %w", err)
	}
	return result, nil
}

func (r *SQLiteRepository) ReplaceAll(ctx context.Context, list []models.Account) error {
	if _, err := r.db.ExecContext(ctx, `delete from accounts`); err != nil {
		return fmt.Errorf("failed to clear accounts: %w", err)
	}

	query := `insert into accounts (id, username, key_tier, login_method, ciphertext, pin_protected, created_at, position)
		values (?, ?, ?, ?, ?, ?, ?, ?)`
	for i, a := range list {
		var ciphertext any
		if a.LoginMethod == models.LoginStoredKey {
			ciphertext = a.Ciphertext
		}
		pinProtected := 0
		if a.IsPinProtected {
			pinProtected = 1
		}

		_, err := r.db.ExecContext(ctx, query,
			a.ID, a.Username, string(a.KeyTier), string(a.LoginMethod), ciphertext, pinProtected,
			a.CreatedAt.UTC().Format(time.RFC3339Nano), i)
		if err != nil {
			return fmt.Errorf("failed to insert account %s: %w", a.Key(), err)
		}
	}
	return nil
}
