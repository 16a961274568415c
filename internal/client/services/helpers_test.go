package services

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/dmitrijs2005/hivekeeper/internal/client/vault"
	"github.com/dmitrijs2005/hivekeeper/internal/cryptox"
	"github.com/dmitrijs2005/hivekeeper/internal/logging"
)

const (
	wifAlice = "5JdeC9P7Pbd1uGdFVEsJ41EkEnADbbHGq6p1BwFxm6txNBsQnsw"
	wifBob   = "5KQwrPbwdL6PhXujxW37FSSQZ1JiwsST4cqQzDeyXtP79zkvFD3"
)

var (
	testAppSecret = []byte("test-app-secret")
	testCipher    = cryptox.NewAESCipher(cryptox.KDFParams{Time: 1, Memory: 1024, Threads: 1})
	testLogger    = logging.NewTextLogger(io.Discard, "error")
)

func newTestVault(t *testing.T) (*vault.Store, *vault.SessionCache) {
	t.Helper()
	cache := vault.NewSessionCache(testCipher, testAppSecret)
	return vault.NewStore(cache), cache
}

// ---- fake exporter ----

type fakeExporter struct {
	mu sync.Mutex

	exported  []models.Account
	ExportKey string
	ExportErr error

	ImportRet []models.Account
	ImportErr error
	lastKey   string
}

func (f *fakeExporter) Export(_ context.Context, list []models.Account) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ExportErr != nil {
		return "", f.ExportErr
	}
	f.exported = list
	return f.ExportKey, nil
}

func (f *fakeExporter) Import(_ context.Context, key string) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastKey = key
	return f.ImportRet, f.ImportErr
}

// ---- fake signer ----

type fakeSigner struct {
	Sig  []byte
	Err  error
	Last struct {
		Username string
		Tier     models.KeyTier
		Payload  []byte
	}
	calls int
}

func (f *fakeSigner) Sign(_ context.Context, username string, tier models.KeyTier, payload []byte) ([]byte, error) {
	f.calls++
	f.Last.Username = username
	f.Last.Tier = tier
	f.Last.Payload = payload
	return f.Sig, f.Err
}

// ---- prompters ----

func answers(values ...string) (vault.Prompter, *int) {
	var (
		mu    sync.Mutex
		calls int
	)
	return vault.PrompterFunc(func(ctx context.Context, _ vault.PromptRequest) (vault.PromptResponse, error) {
		mu.Lock()
		defer mu.Unlock()
		if calls >= len(values) {
			return vault.PromptResponse{}, vault.ErrCancelled
		}
		v := values[calls]
		calls++
		return vault.PromptResponse{Value: []byte(v)}, nil
	}), &calls
}
