package accounts

import (
	"context"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
)

// Repository persists the ordered account list.
type Repository interface {
	// GetAll returns every account ordered by position.
	GetAll(ctx context.Context) ([]models.Account, error)

	// ReplaceAll makes the table hold exactly accounts, with positions
	// following slice order. Run it inside a transaction.
	ReplaceAll(ctx context.Context, accounts []models.Account) error
}
