// Package services contains the application services of the hivekeeper
// client. They sit between the CLI and the vault: they validate user input,
// drive the vault and the external collaborators (signer, backup storage)
// and log outcomes. The vault itself never logs.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/hivekeeper/internal/client/backup"
	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/dmitrijs2005/hivekeeper/internal/client/vault"
	"github.com/dmitrijs2005/hivekeeper/internal/common"
	"github.com/dmitrijs2005/hivekeeper/internal/cryptox"
	"github.com/dmitrijs2005/hivekeeper/internal/logging"
)

// AccountService manages the locally known accounts.
//
// Contract:
//   - ImportKey: store a private key, PIN-protected when pin is not empty,
//     and make the account current.
//   - AddExternalSigner: register an account whose keys stay with the
//     external signer, and make it current.
//   - Switch, Remove, Logout: change the current account or the list.
//   - List, Current: read the list.
//   - Backup, Restore: export to and re-import from backup storage.
type AccountService interface {
	ImportKey(ctx context.Context, username string, tier models.KeyTier, wif, pin []byte) error
	AddExternalSigner(ctx context.Context, username string, tier models.KeyTier) error
	Switch(ctx context.Context, username string, tier models.KeyTier) error
	Remove(ctx context.Context, username string, tier models.KeyTier) error
	Logout(ctx context.Context) error
	List(ctx context.Context) []models.Account
	Current(ctx context.Context) (models.Account, bool)
	Backup(ctx context.Context) (string, error)
	Restore(ctx context.Context, key string) (int, error)
}

// ErrUnprotectedBackup is returned by Backup while a stored key is sealed
// only under the built-in application secret, which would make the
// uploaded ciphertext readable by anyone.
var ErrUnprotectedBackup = errors.New("backup refused: key sealed only under the built-in application secret")

// Exporter writes account records to backup storage and reads them back.
type Exporter interface {
	Export(ctx context.Context, accounts []models.Account) (string, error)
	Import(ctx context.Context, key string) ([]models.Account, error)
}

type accountService struct {
	store     *vault.Store
	cipher    cryptox.Cipher
	appSecret []byte
	exporter  Exporter
	logger    logging.Logger
}

// NewAccountService constructs an AccountService. exporter may be nil, in
// which case Backup and Restore report backup.ErrNotConfigured.
func NewAccountService(store *vault.Store, c cryptox.Cipher, appSecret []byte, exporter Exporter, logger logging.Logger) AccountService {
	return &accountService{
		store:     store,
		cipher:    c,
		appSecret: common.CloneBytes(appSecret),
		exporter:  exporter,
		logger:    logger.With("component", "accounts"),
	}
}

func (s *accountService) ImportKey(ctx context.Context, username string, tier models.KeyTier, wif, pin []byte) error {
	tier, err := models.ParseKeyTier(string(tier))
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorIncorrectTier, err)
	}
	if tier == models.TierOwner {
		return vault.ErrOwnerNotStorable
	}
	if err := vault.CheckKeyFormat(wif); err != nil {
		return fmt.Errorf("%w: %w", vault.ErrInvalidSecret, err)
	}

	secret := s.appSecret
	if len(pin) > 0 {
		secret = pin
	}
	ciphertext, err := s.cipher.Encrypt(wif, secret)
	if err != nil {
		return fmt.Errorf("encrypt key: %w", err)
	}

	account := models.Account{
		Username:       username,
		KeyTier:        tier,
		LoginMethod:    models.LoginStoredKey,
		Ciphertext:     ciphertext,
		IsPinProtected: len(pin) > 0,
	}
	if err := s.addAndSwitch(ctx, account); err != nil {
		return err
	}

	s.logger.Info(ctx, "key imported", "username", username, "tier", tier.String(), "pin_protected", account.IsPinProtected)
	return nil
}

func (s *accountService) AddExternalSigner(ctx context.Context, username string, tier models.KeyTier) error {
	tier, err := models.ParseKeyTier(string(tier))
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrorIncorrectTier, err)
	}
	account := models.Account{Username: username, KeyTier: tier, LoginMethod: models.LoginExternalSigner}
	if err := s.addAndSwitch(ctx, account); err != nil {
		return err
	}

	s.logger.Info(ctx, "external signer account added", "username", username, "tier", tier.String())
	return nil
}

// addAndSwitch stores the account and logs in with it.
func (s *accountService) addAndSwitch(ctx context.Context, account models.Account) error {
	if err := s.store.Add(ctx, account); err != nil {
		s.logger.Warn(ctx, "add account failed", "username", account.Username, "tier", account.KeyTier.String(), "error", err)
		return err
	}
	return s.store.Switch(ctx, account.Username, account.KeyTier)
}

func (s *accountService) Switch(ctx context.Context, username string, tier models.KeyTier) error {
	if err := s.store.Switch(ctx, username, tier); err != nil {
		return err
	}
	cur, _ := s.store.Current()
	s.logger.Info(ctx, "switched account", "username", cur.Username, "tier", cur.KeyTier.String())
	return nil
}

func (s *accountService) Remove(ctx context.Context, username string, tier models.KeyTier) error {
	if err := s.store.Remove(ctx, username, tier); err != nil {
		return err
	}
	s.logger.Info(ctx, "account removed", "username", username, "tier", tier.String())
	return nil
}

func (s *accountService) Logout(ctx context.Context) error {
	if err := s.store.Logout(ctx); err != nil {
		return err
	}
	s.logger.Info(ctx, "logged out")
	return nil
}

func (s *accountService) List(ctx context.Context) []models.Account {
	return s.store.List()
}

func (s *accountService) Current(ctx context.Context) (models.Account, bool) {
	return s.store.Current()
}

func (s *accountService) Backup(ctx context.Context) (string, error) {
	if s.exporter == nil {
		return "", backup.ErrNotConfigured
	}

	list := s.store.List()
	if err := s.checkExportable(list); err != nil {
		s.logger.Warn(ctx, "backup refused", "error", err)
		return "", err
	}

	key, err := s.exporter.Export(ctx, list)
	if err != nil {
		s.logger.Error(ctx, "backup failed", "error", err)
		return "", err
	}

	s.logger.Info(ctx, "backup written", "key", key, "accounts", len(list))
	return key, nil
}

// checkExportable refuses lists holding stored keys that are not
// PIN-protected while the application secret is the built-in one.
func (s *accountService) checkExportable(list []models.Account) error {
	if string(s.appSecret) != common.DefaultAppSecret {
		return nil
	}
	for _, a := range list {
		if !a.IsExternalSigner() && !a.IsPinProtected {
			return fmt.Errorf("%w: %s", ErrUnprotectedBackup, a.Key())
		}
	}
	return nil
}

// Restore re-adds every record of the backup. Records that already exist
// are re-registered in place. It returns how many records were restored;
// records the store refuses are reported together in the error.
func (s *accountService) Restore(ctx context.Context, key string) (int, error) {
	if s.exporter == nil {
		return 0, backup.ErrNotConfigured
	}

	list, err := s.exporter.Import(ctx, key)
	if err != nil {
		s.logger.Error(ctx, "restore failed", "key", key, "error", err)
		return 0, err
	}

	var (
		restored int
		errs     []error
	)
	for _, a := range list {
		if err := s.store.Add(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", a.Key(), err))
			continue
		}
		restored++
	}

	s.logger.Info(ctx, "backup restored", "key", key, "restored", restored, "skipped", len(errs))
	return restored, errors.Join(errs...)
}
