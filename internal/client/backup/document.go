package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
)

const documentVersion = 1

// ErrBadBackup is returned for objects that are not a readable backup.
var ErrBadBackup = errors.New("not a hivekeeper backup")

type document struct {
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	Accounts  []accountRecord `json:"accounts"`
}

// accountRecord mirrors a row of the accounts table. Ciphertext is
// base64 in JSON.
type accountRecord struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	KeyTier      string    `json:"key_tier"`
	LoginMethod  string    `json:"login_method"`
	Ciphertext   []byte    `json:"ciphertext,omitempty"`
	PinProtected bool      `json:"pin_protected"`
	CreatedAt    time.Time `json:"created_at"`
}

func encode(list []models.Account, now time.Time) ([]byte, error) {
	doc := document{Version: documentVersion, CreatedAt: now.UTC(), Accounts: make([]accountRecord, 0, len(list))}
	for _, a := range list {
		rec := accountRecord{
			ID:           a.ID,
			Username:     a.Username,
			KeyTier:      string(a.KeyTier),
			LoginMethod:  string(a.LoginMethod),
			PinProtected: a.IsPinProtected,
			CreatedAt:    a.CreatedAt.UTC(),
		}
		if !a.IsExternalSigner() {
			rec.Ciphertext = a.Ciphertext
		}
		doc.Accounts = append(doc.Accounts, rec)
	}
	return json.MarshalIndent(doc, "", "  ")
}

func decode(data []byte) ([]models.Account, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBadBackup, err)
	}
	if doc.Version != documentVersion {
		return nil, fmt.Errorf("%w: version %d", ErrBadBackup, doc.Version)
	}

	list := make([]models.Account, 0, len(doc.Accounts))
	for _, rec := range doc.Accounts {
		tier, err := models.ParseKeyTier(rec.KeyTier)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadBackup, err)
		}
		method, err := models.ParseLoginMethod(rec.LoginMethod)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrBadBackup, err)
		}
		list = append(list, models.Account{
			ID:             rec.ID,
			Username:       rec.Username,
			KeyTier:        tier,
			LoginMethod:    method,
			Ciphertext:     rec.Ciphertext,
			IsPinProtected: rec.PinProtected,
			CreatedAt:      rec.CreatedAt,
		})
	}
	return list, nil
}
