package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/hivekeeper/internal/client/backup"
	"github.com/dmitrijs2005/hivekeeper/internal/client/config"
	"github.com/dmitrijs2005/hivekeeper/internal/client/services"
	"github.com/dmitrijs2005/hivekeeper/internal/client/signer"
	"github.com/dmitrijs2005/hivekeeper/internal/client/storage"
	"github.com/dmitrijs2005/hivekeeper/internal/client/vault"
	"github.com/dmitrijs2005/hivekeeper/internal/cryptox"
	"github.com/dmitrijs2005/hivekeeper/internal/logging"
)

// App is the interactive client: the services it drives and the console it
// talks to.
type App struct {
	accounts services.AccountService
	signing  services.SigningService
	logger   logging.Logger

	reader *bufio.Reader
	out    io.Writer

	closers []func() error
}

// NewApp opens the vault database named in c and wires the services. The
// external signer and S3 backups are only set up when configured.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)

	db, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}

	app := &App{logger: logger, reader: bufio.NewReader(os.Stdin), out: os.Stdout}
	app.closers = append(app.closers, db.Close)

	cipher := cryptox.NewAESCipher(c.KDFParams())
	appSecret := []byte(c.AppSecret)
	cache := vault.NewSessionCache(cipher, appSecret)

	store, err := vault.Open(ctx, cache, storage.NewSQLitePersister(db))
	if err != nil {
		_ = app.Close()
		return nil, err
	}

	var sg signer.Signer
	if c.SignerEndpointAddr != "" {
		gs, err := signer.NewGRPCSigner(c.SignerEndpointAddr, []byte(c.SignerPairingSecret), c.SignerTokenTTL)
		if err != nil {
			_ = app.Close()
			return nil, fmt.Errorf("external signer: %w", err)
		}
		sg = gs
		app.closers = append(app.closers, gs.Close)
	}

	var exporter services.Exporter
	if c.S3Bucket != "" {
		exporter = backup.NewS3Exporter(backup.Config{
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3Endpoint,
			AccessKey:    c.S3AccessKey,
			SecretKey:    c.S3SecretKey,
		})
	}

	prompter := newTerminalPrompter(app.reader, app.out)
	ng := vault.NewNegotiator(store, cache, cipher, appSecret, prompter, vault.WithMaxAttempts(c.PromptAttempts))

	app.accounts = services.NewAccountService(store, cipher, appSecret, exporter, logger)
	app.signing = services.NewSigningService(store, ng, sg, logger)
	return app, nil
}

// Run starts the REPL and blocks until the user exits.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Warn(ctx, "close failed", "error", err)
		}
	}()

	fmt.Fprintln(a.out, "Welcome to hivekeeper (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)
}

// Close releases the database and the signer connection.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) isLoggedIn() bool {
	_, ok := a.accounts.Current(context.Background())
	return ok
}

func (a *App) getStatus() string {
	cur, ok := a.accounts.Current(context.Background())
	if !ok {
		return ""
	}
	return fmt.Sprintf("(%s)", cur.Key())
}
