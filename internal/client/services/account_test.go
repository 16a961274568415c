package services

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/hivekeeper/internal/client/backup"
	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/dmitrijs2005/hivekeeper/internal/client/vault"
	"github.com/dmitrijs2005/hivekeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImportKey_WithPin(t *testing.T) {
	store, _ := newTestVault(t)
	svc := NewAccountService(store, testCipher, testAppSecret, nil, testLogger)
	ctx := context.Background()

	require.NoError(t, svc.ImportKey(ctx, "alice", models.TierPosting, []byte(wifAlice), []byte("1234")))

	cur, ok := svc.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, "alice", cur.Username)
	assert.True(t, cur.IsPinProtected)
	assert.Equal(t, models.LoginStoredKey, cur.LoginMethod)
	assert.NotContains(t, string(cur.Ciphertext), wifAlice)

	key, err := testCipher.Decrypt(cur.Ciphertext, []byte("1234"))
	require.NoError(t, err)
	assert.Equal(t, wifAlice, string(key))
}

func TestImportKey_WithoutPinUsesAppSecret(t *testing.T) {
	store, _ := newTestVault(t)
	svc := NewAccountService(store, testCipher, testAppSecret, nil, testLogger)
	ctx := context.Background()

	require.NoError(t, svc.ImportKey(ctx, "alice", "Memo", []byte(wifAlice), nil))

	cur, ok := svc.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, models.TierMemo, cur.KeyTier)
	assert.False(t, cur.IsPinProtected)

	key, err := testCipher.Decrypt(cur.Ciphertext, testAppSecret)
	require.NoError(t, err)
	assert.Equal(t, wifAlice, string(key))
}

func TestImportKey_MakesImportedAccountCurrent(t *testing.T) {
	store, _ := newTestVault(t)
	svc := NewAccountService(store, testCipher, testAppSecret, nil, testLogger)
	ctx := context.Background()

	require.NoError(t, svc.ImportKey(ctx, "alice", models.TierPosting, []byte(wifAlice), nil))
	require.NoError(t, svc.ImportKey(ctx, "bob", models.TierPosting, []byte(wifBob), nil))

	cur, _ := svc.Current(ctx)
	assert.Equal(t, "bob", cur.Username)
	assert.Len(t, svc.List(ctx), 2)
}

func TestImportKey_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		tier    models.KeyTier
		wif     string
		wantErr error
	}{
		{name: "owner", tier: models.TierOwner, wif: wifAlice, wantErr: vault.ErrOwnerNotStorable},
		{name: "bad tier", tier: "root", wif: wifAlice, wantErr: common.ErrorIncorrectTier},
		{name: "malformed key", tier: models.TierPosting, wif: "1234", wantErr: vault.ErrInvalidSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestVault(t)
			svc := NewAccountService(store, testCipher, testAppSecret, nil, testLogger)

			err := svc.ImportKey(context.Background(), "alice", tt.tier, []byte(tt.wif), nil)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, store.List())
		})
	}
}

func TestAddExternalSigner(t *testing.T) {
	store, _ := newTestVault(t)
	svc := NewAccountService(store, testCipher, testAppSecret, nil, testLogger)
	ctx := context.Background()

	require.NoError(t, svc.ImportKey(ctx, "alice", models.TierPosting, []byte(wifAlice), nil))
	require.NoError(t, svc.AddExternalSigner(ctx, "carol", models.TierActive))

	cur, ok := svc.Current(ctx)
	require.True(t, ok)
	assert.Equal(t, "carol", cur.Username)
	assert.True(t, cur.IsExternalSigner())
	assert.Nil(t, cur.Ciphertext)

	require.ErrorIs(t, svc.AddExternalSigner(ctx, "carol", models.TierOwner), vault.ErrOwnerNotStorable)
}

func TestSwitchRemoveLogout(t *testing.T) {
	store, _ := newTestVault(t)
	svc := NewAccountService(store, testCipher, testAppSecret, nil, testLogger)
	ctx := context.Background()

	require.NoError(t, svc.ImportKey(ctx, "alice", models.TierPosting, []byte(wifAlice), nil))
	require.NoError(t, svc.ImportKey(ctx, "bob", models.TierPosting, []byte(wifBob), nil))

	require.NoError(t, svc.Switch(ctx, "alice", models.TierAny))
	cur, _ := svc.Current(ctx)
	assert.Equal(t, "alice", cur.Username)

	require.ErrorIs(t, svc.Switch(ctx, "dave", models.TierAny), vault.ErrNotFound)

	require.NoError(t, svc.Remove(ctx, "alice", models.TierAny))
	cur, _ = svc.Current(ctx)
	assert.Equal(t, "bob", cur.Username)

	require.NoError(t, svc.Logout(ctx))
	_, ok := svc.Current(ctx)
	assert.False(t, ok)
	assert.Len(t, svc.List(ctx), 1)
}

func TestBackup_NotConfigured(t *testing.T) {
	store, _ := newTestVault(t)
	svc := NewAccountService(store, testCipher, testAppSecret, nil, testLogger)

	_, err := svc.Backup(context.Background())
	require.ErrorIs(t, err, backup.ErrNotConfigured)

	_, err = svc.Restore(context.Background(), "k")
	require.ErrorIs(t, err, backup.ErrNotConfigured)
}

func TestBackup_ExportsList(t *testing.T) {
	store, _ := newTestVault(t)
	exp := &fakeExporter{ExportKey: "backups/2025/01/01/x.json"}
	svc := NewAccountService(store, testCipher, testAppSecret, exp, testLogger)
	ctx := context.Background()

	require.NoError(t, svc.ImportKey(ctx, "alice", models.TierPosting, []byte(wifAlice), []byte("1234")))
	require.NoError(t, svc.AddExternalSigner(ctx, "carol", models.TierActive))

	key, err := svc.Backup(ctx)
	require.NoError(t, err)
	assert.Equal(t, "backups/2025/01/01/x.json", key)
	require.Len(t, exp.exported, 2)
	assert.Equal(t, "alice", exp.exported[0].Username)
	assert.Equal(t, "carol", exp.exported[1].Username)
}

func TestBackup_RefusesKeysSealedWithBuiltInSecret(t *testing.T) {
	tests := []struct {
		name      string
		appSecret []byte
		pin       []byte
		wantErr   error
	}{
		{name: "built-in secret, no PIN", appSecret: []byte(common.DefaultAppSecret), wantErr: ErrUnprotectedBackup},
		{name: "built-in secret, PIN", appSecret: []byte(common.DefaultAppSecret), pin: []byte("1234")},
		{name: "own secret, no PIN", appSecret: testAppSecret},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, _ := newTestVault(t)
			exp := &fakeExporter{ExportKey: "backups/x.json"}
			svc := NewAccountService(store, testCipher, tt.appSecret, exp, testLogger)
			ctx := context.Background()

			require.NoError(t, svc.AddExternalSigner(ctx, "carol", models.TierActive))
			require.NoError(t, svc.ImportKey(ctx, "alice", models.TierPosting, []byte(wifAlice), tt.pin))

			_, err := svc.Backup(ctx)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Contains(t, err.Error(), "alice/posting")
				assert.Empty(t, exp.exported, "nothing may leave the device")
				return
			}
			require.NoError(t, err)
			assert.Len(t, exp.exported, 2)
		})
	}
}

func TestBackup_ExportError(t *testing.T) {
	store, _ := newTestVault(t)
	boom := errors.New("bucket gone")
	svc := NewAccountService(store, testCipher, testAppSecret, &fakeExporter{ExportErr: boom}, testLogger)

	_, err := svc.Backup(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestRestore_AddsRecordsAndReportsRejected(t *testing.T) {
	store, _ := newTestVault(t)
	ct, err := testCipher.Encrypt([]byte(wifAlice), testAppSecret)
	require.NoError(t, err)

	exp := &fakeExporter{ImportRet: []models.Account{
		{Username: "alice", KeyTier: models.TierPosting, LoginMethod: models.LoginStoredKey, Ciphertext: ct},
		{Username: "carol", KeyTier: models.TierActive, LoginMethod: models.LoginExternalSigner},
		{Username: "", KeyTier: models.TierPosting, LoginMethod: models.LoginExternalSigner},
	}}
	svc := NewAccountService(store, testCipher, testAppSecret, exp, testLogger)

	n, err := svc.Restore(context.Background(), "backups/k.json")
	assert.Equal(t, 2, n)
	require.ErrorIs(t, err, vault.ErrInvalidAccount)
	assert.Equal(t, "backups/k.json", exp.lastKey)
	assert.Len(t, store.List(), 2)
}

func TestRestore_ImportError(t *testing.T) {
	store, _ := newTestVault(t)
	svc := NewAccountService(store, testCipher, testAppSecret, &fakeExporter{ImportErr: backup.ErrBadBackup}, testLogger)

	n, err := svc.Restore(context.Background(), "k")
	assert.Zero(t, n)
	require.ErrorIs(t, err, backup.ErrBadBackup)
}
