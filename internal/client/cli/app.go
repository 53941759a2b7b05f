package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/client/client"
	"github.com/dmitrijs2005/potkeeper/internal/client/config"
	"github.com/dmitrijs2005/potkeeper/internal/client/repositories/keystore"
	"github.com/dmitrijs2005/potkeeper/internal/client/services"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type App struct {
	config *config.Config
	wallet services.WalletService
	clock  timex.Clock
	out    io.Writer

	mu   sync.Mutex
	mode Mode
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	db, err := client.InitDatabase(ctx, c.KeystorePath)
	if err != nil {
		return nil, fmt.Errorf("open keystore: %w", err)
	}

	apiClient, err := client.NewGRPCClient(c.ServerEndpointAddr, c.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	clock := timex.SystemClock{}
	w := services.NewWalletService(apiClient, keystore.NewSQLiteRepository(db), clock)

	return &App{config: c, wallet: w, clock: clock, out: os.Stdout}, nil
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.mode != mode {
		a.mode = mode
		log.Printf("Switched to %s mode\n", mode)
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) Run(ctx context.Context) {
	defer a.wallet.Close(ctx)
	a.Root(ctx, bufio.NewScanner(os.Stdin))
}

func (a *App) isUnlocked() bool {
	_, err := a.wallet.Address()
	return err == nil
}

func (a *App) isLoggedIn() bool {
	return a.isUnlocked() && a.wallet.LoggedIn()
}

func (a *App) ping(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if _, err := a.wallet.Ping(ctx); err != nil {
		a.setMode(ModeOffline)
		return
	}
	a.setMode(ModeOnline)
}

// StartOnlineStatusWatcher pings the server every interval until ctx is done
// and keeps Mode in sync with the result.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.ping(ctx)
		case <-ctx.Done():
			return
		}
	}
}
