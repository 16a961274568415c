package signerd

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/hivekeeper/internal/common"
	"github.com/dmitrijs2005/hivekeeper/internal/logging"
	"github.com/dmitrijs2005/hivekeeper/internal/signerd/config"
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	keyring *Keyring
}

func NewApp(c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)

	var seed []byte
	if c.MasterSeed == "" {
		seed = common.GenerateRandByteArray(32)
		logger.Warn(context.Background(), "no master seed configured, keys are valid for this run only")
	} else {
		var err error
		if seed, err = hex.DecodeString(c.MasterSeed); err != nil {
			return nil, fmt.Errorf("master seed: %w", err)
		}
	}

	kr := NewKeyring(seed, c.AllowedUsers, c.MaxPayloadSize, logger)
	common.WipeByteArray(seed)

	return &App{config: c, logger: logger, keyring: kr}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.keyring, app.config.PairingSecret)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or the process is signalled.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting signerd...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()
}
