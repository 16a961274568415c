package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/dmitrijs2005/hivekeeper/internal/client/models"
	"github.com/dmitrijs2005/hivekeeper/internal/client/services"
	"github.com/dmitrijs2005/hivekeeper/internal/client/signer"
	"github.com/dmitrijs2005/hivekeeper/internal/client/vault"
	"github.com/dmitrijs2005/hivekeeper/internal/cryptox"
	"github.com/dmitrijs2005/hivekeeper/internal/logging"
	"github.com/fatih/color"
)

const wifAlice = "5JdeC9P7Pbd1uGdFVEsJ41EkEnADbbHGq6p1BwFxm6txNBsQnsw"

var (
	testAppSecret = []byte("test-app-secret")
	testCipher    = cryptox.NewAESCipher(cryptox.KDFParams{Time: 1, Memory: 1024, Threads: 1})
)

// plainConsole disables colors and makes secrets come from the reader.
func plainConsole(t *testing.T) {
	t.Helper()
	oldNoColor, oldIsTerminal := color.NoColor, isTerminal
	color.NoColor = true
	isTerminal = func(int) bool { return false }
	t.Cleanup(func() {
		color.NoColor = oldNoColor
		isTerminal = oldIsTerminal
	})
}

type fakeSigner struct {
	sig   []byte
	err   error
	calls int
}

func (f *fakeSigner) Sign(context.Context, string, models.KeyTier, []byte) ([]byte, error) {
	f.calls++
	return f.sig, f.err
}

// newTestApp builds an App over an in-memory vault. input feeds both the
// commands' own questions and the authorization prompts.
func newTestApp(t *testing.T, input string, sg *fakeSigner) (*App, *bytes.Buffer) {
	t.Helper()
	plainConsole(t)

	out := &bytes.Buffer{}
	reader := bufio.NewReader(strings.NewReader(input))
	logger := logging.NewTextLogger(io.Discard, "error")

	cache := vault.NewSessionCache(testCipher, testAppSecret)
	store := vault.NewStore(cache)
	ng := vault.NewNegotiator(store, cache, testCipher, testAppSecret, newTerminalPrompter(reader, out), vault.WithMaxAttempts(2))

	var s signer.Signer
	if sg != nil {
		s = sg
	}

	return &App{
		accounts: services.NewAccountService(store, testCipher, testAppSecret, nil, logger),
		signing:  services.NewSigningService(store, ng, s, logger),
		logger:   logger,
		reader:   reader,
		out:      out,
	}, out
}
