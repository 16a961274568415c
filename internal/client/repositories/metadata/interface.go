package metadata

import (
	"context"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
)

// Keys of the vault's own metadata entries.
const (
	KeyCurrentUsername = "current_username"
	KeyCurrentTier     = "current_tier"
)

// Repository is a small key/value store next to the account table.
// Get returns (nil, nil) for a missing key.
//
// CurrentAccount and SetCurrentAccount keep the current account pointer
// under KeyCurrentUsername and KeyCurrentTier; a nil key means nobody is
// logged in.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	CurrentAccount(ctx context.Context) (*models.AccountKey, error)
	SetCurrentAccount(ctx context.Context, key *models.AccountKey) error
}
