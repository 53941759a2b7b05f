package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/potkeeper/internal/client/client"
	"github.com/dmitrijs2005/potkeeper/internal/common"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// errUsage marks a command invoked with the wrong arguments.
var errUsage = errors.New("usage")

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isUnlocked() bool
	isLoggedIn() bool

	Keygen(ctx context.Context) error
	Unlock(ctx context.Context) error
	Lock(ctx context.Context) error
	Login(ctx context.Context) error
	ShowAddress(ctx context.Context) error

	Balance(ctx context.Context) error
	Airdrop(ctx context.Context, args []string) error
	History(ctx context.Context, args []string) error

	ShowProfile(ctx context.Context) error
	SaveProfile(ctx context.Context, args []string) error

	CreatePot(ctx context.Context, args []string) error
	Deposit(ctx context.Context, args []string) error
	Withdraw(ctx context.Context, args []string) error
	ClosePot(ctx context.Context, args []string) error
	ShowPot(ctx context.Context, args []string) error
	ListPots(ctx context.Context) error
}

const (
	helpLocked   = "Available commands: keygen, unlock, exit"
	helpUnlocked = "Available commands: address, login, lock, balance, airdrop <amount>, history [limit],\n" +
		"  profile, profile-save username=.. emoji=.. gender=.. pin=..,\n" +
		"  pot-create <name> <unlock>, pot-deposit <pot> <amount>, pot-withdraw <pot> <amount> [recipient],\n" +
		"  pot-close <pot>, pot-show <pot>, pots, exit"
)

// runREPL starts a simple read–eval–print loop for the wallet.
//
// It reads a line from the provided scanner, parses the first token as the
// command and the rest as its arguments, and dispatches to methods on 'a'.
// The loop exits on scanner EOF or when the user types "exit" or "quit".
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for {
		printlnFn(fmt.Sprintf("pk %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isUnlocked() {
				printlnFn(helpUnlocked)
				if !a.isLoggedIn() {
					printlnFn("Not logged in: pot and profile changes need 'login' first.")
				}
			} else {
				printlnFn(helpLocked)
			}

		case "keygen":
			err = a.Keygen(ctx)
		case "unlock":
			err = a.Unlock(ctx)
		case "lock":
			err = a.Lock(ctx)
		case "login":
			err = a.Login(ctx)
		case "address":
			err = a.ShowAddress(ctx)

		case "balance":
			err = a.Balance(ctx)
		case "airdrop":
			err = a.Airdrop(ctx, args)
		case "history":
			err = a.History(ctx, args)

		case "profile":
			err = a.ShowProfile(ctx)
		case "profile-save":
			err = a.SaveProfile(ctx, args)

		case "pot-create":
			err = a.CreatePot(ctx, args)
		case "pot-deposit":
			err = a.Deposit(ctx, args)
		case "pot-withdraw":
			err = a.Withdraw(ctx, args)
		case "pot-close":
			err = a.ClosePot(ctx, args)
		case "pot-show":
			err = a.ShowPot(ctx, args)
		case "pots":
			err = a.ListPots(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			report(err)
		}
	}
}

// report prints err with a hint for the conditions a user can act on.
func report(err error) {
	switch {
	case errors.Is(err, errUsage):
		printlnFn(err.Error())
	case errors.Is(err, client.ErrWalletLocked):
		printlnFn("Wallet is locked, type 'unlock' (or 'keygen' for a new wallet).")
	case errors.Is(err, common.ErrInvalidToken), errors.Is(err, common.ErrRefreshTokenExpired):
		printlnFn("Not logged in, type 'login'.")
	case errors.Is(err, client.ErrUnavailable):
		printlnFn("Server unavailable, try again later.")
	case errors.Is(err, common.ErrPotLocked):
		printlnFn("Error: the pot is still locked.")
	default:
		printlnFn("Error:", err.Error())
	}
}
