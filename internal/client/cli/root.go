package cli

import (
	"bufio"
	"context"
	"fmt"
	"log"
)

func (a *App) getStatus() string {
	s := ""
	if addr, err := a.wallet.Address(); err == nil {
		short := addr.String()
		if len(short) > 8 {
			short = short[:4] + ".." + short[len(short)-4:]
		}
		s = short + " "
	}
	if m := a.Mode(); m != "" {
		s = s + string(m)
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

// Root runs the interactive session: it offers to unlock an existing wallet,
// starts the connectivity watcher and hands the scanner to the REPL.
func (a *App) Root(ctx context.Context, scanner *bufio.Scanner) {
	log.Println("Welcome to PotKeeper wallet (type 'help' for commands)")

	a.ping(ctx)

	has, err := a.wallet.HasKey(ctx)
	switch {
	case err != nil:
		log.Printf("keystore: %v", err)
	case has:
		if err := a.Unlock(ctx); err != nil {
			report(err)
		}
	default:
		printlnFn("No wallet key yet, type 'keygen' to create one.")
	}

	if a.config != nil && a.config.OnlineCheckInterval > 0 {
		go a.StartOnlineStatusWatcher(ctx, a.config.OnlineCheckInterval)
	}

	runREPL(ctx, a, a.getStatus, scanner)
}
