package vault

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/dmitrijs2005/hivekeeper/internal/cryptox"
	"github.com/stretchr/testify/require"
)

const (
	wifAlice = "5JdeC9P7Pbd1uGdFVEsJ41EkEnADbbHGq6p1BwFxm6txNBsQnsw"
	wifBob   = "5KQwrPbwdL6PhXujxW37FSSQZ1JiwsST4cqQzDeyXtP79zkvFD3"
)

var (
	testAppSecret = []byte("test-app-secret")
	testCipher    = cryptox.NewAESCipher(cryptox.KDFParams{Time: 1, Memory: 1024, Threads: 1})
)

// ---- fixtures ----

func seal(t *testing.T, plaintext, secret string) []byte {
	t.Helper()
	ct, err := testCipher.Encrypt([]byte(plaintext), []byte(secret))
	require.NoError(t, err)
	return ct
}

func pinAccount(t *testing.T, username string, tier models.KeyTier, wif, pin string) models.Account {
	t.Helper()
	return models.Account{
		Username:       username,
		KeyTier:        tier,
		LoginMethod:    models.LoginStoredKey,
		Ciphertext:     seal(t, wif, pin),
		IsPinProtected: true,
	}
}

func plainAccount(t *testing.T, username string, tier models.KeyTier, wif string) models.Account {
	t.Helper()
	return models.Account{
		Username:    username,
		KeyTier:     tier,
		LoginMethod: models.LoginStoredKey,
		Ciphertext:  seal(t, wif, string(testAppSecret)),
	}
}

func signerAccount(username string, tier models.KeyTier) models.Account {
	return models.Account{Username: username, KeyTier: tier, LoginMethod: models.LoginExternalSigner}
}

func newTestStore(t *testing.T) (*Store, *SessionCache) {
	t.Helper()
	cache := NewSessionCache(testCipher, testAppSecret)
	s := NewStore(cache)
	s.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return s, cache
}

func mustAdd(t *testing.T, s *Store, accounts ...models.Account) {
	t.Helper()
	for _, a := range accounts {
		require.NoError(t, s.Add(context.Background(), a))
	}
}

// ---- fake persister ----

type memPersister struct {
	mu      sync.Mutex
	snap    Snapshot
	saves   int
	LoadErr error
	SaveErr error
}

func (p *memPersister) Load(context.Context) (Snapshot, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snap, p.LoadErr
}

func (p *memPersister) Save(_ context.Context, s Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.SaveErr != nil {
		return p.SaveErr
	}
	p.snap = s
	p.saves++
	return nil
}

// ---- scripted prompter ----

// scriptedPrompter answers prompts from a fixed list and records requests.
type scriptedPrompter struct {
	mu       sync.Mutex
	answers  []PromptResponse
	errs     []error
	requests []PromptRequest
}

func (p *scriptedPrompter) RequestSecret(_ context.Context, req PromptRequest) (PromptResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	i := len(p.requests)
	p.requests = append(p.requests, req)

	if i < len(p.errs) && p.errs[i] != nil {
		return PromptResponse{}, p.errs[i]
	}
	if i >= len(p.answers) {
		return PromptResponse{}, errors.New("unexpected prompt")
	}
	a := p.answers[i]
	return PromptResponse{Value: []byte(string(a.Value)), Remember: a.Remember}, nil
}

func (p *scriptedPrompter) calls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

func answer(value string, remember bool) PromptResponse {
	return PromptResponse{Value: []byte(value), Remember: remember}
}

// noPrompt fails the test if the negotiator prompts.
func noPrompt(t *testing.T) Prompter {
	return PrompterFunc(func(context.Context, PromptRequest) (PromptResponse, error) {
		t.Error("unexpected prompt")
		return PromptResponse{}, ErrCancelled
	})
}

// nextPrompt waits for the async prompter to publish a request.
func nextPrompt(t *testing.T, p *AsyncPrompter) *PendingPrompt {
	t.Helper()
	select {
	case pp := <-p.Requests():
		return pp
	case <-time.After(5 * time.Second):
		t.Fatal("no prompt published")
		return nil
	}
}
