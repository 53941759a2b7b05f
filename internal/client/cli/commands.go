package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/potkeeper/internal/api"
	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
)

// getPassword is an indirection used to facilitate testing.
var getPassword = GetPassword

func usage(format string) error {
	return fmt.Errorf("%w: %s", errUsage, format)
}

// Keygen creates a new wallet key sealed under a password typed twice.
func (a *App) Keygen(ctx context.Context) error {
	password, err := getPassword(a.out, "New wallet password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	if len(password) == 0 {
		return errors.New("password must not be empty")
	}

	repeat, err := getPassword(a.out, "Repeat password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(repeat)
	if !bytes.Equal(password, repeat) {
		return errors.New("passwords do not match")
	}

	addr, err := a.wallet.Create(ctx, password)
	if err != nil {
		if errors.Is(err, common.ErrAccountAlreadyExists) {
			return errors.New("a wallet key already exists, use 'unlock'")
		}
		return err
	}

	fmt.Fprintf(a.out, "Wallet created: %s\n", addr)
	a.tryLogin(ctx)
	return nil
}

func (a *App) Unlock(ctx context.Context) error {
	password, err := getPassword(a.out, "Wallet password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	addr, err := a.wallet.Unlock(ctx, password)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return errors.New("no wallet key, use 'keygen'")
		}
		return err
	}

	fmt.Fprintf(a.out, "Unlocked %s\n", addr)
	a.tryLogin(ctx)
	return nil
}

// tryLogin logs in when the server is reachable. Failure leaves the wallet
// usable for local commands.
func (a *App) tryLogin(ctx context.Context) {
	if a.Mode() != ModeOnline {
		return
	}
	if err := a.wallet.Login(ctx); err != nil {
		log.Printf("Login unsuccessful: %v", err)
		return
	}
	log.Printf("Login successful")
}

func (a *App) Lock(context.Context) error {
	a.wallet.Lock()
	fmt.Fprintln(a.out, "Locked")
	return nil
}

func (a *App) Login(ctx context.Context) error {
	if err := a.wallet.Login(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Logged in")
	return nil
}

func (a *App) ShowAddress(context.Context) error {
	addr, err := a.wallet.Address()
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, addr)
	return nil
}

func (a *App) Balance(ctx context.Context) error {
	bal, err := a.wallet.Balance(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Balance: %s\n", FormatAmount(bal))
	return nil
}

func (a *App) Airdrop(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("airdrop <amount>")
	}
	amount, err := ParseAmount(args[0])
	if err != nil {
		return err
	}
	bal, err := a.wallet.Airdrop(ctx, amount)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Airdropped %s, balance: %s\n", FormatAmount(amount), FormatAmount(bal))
	return nil
}

func (a *App) History(ctx context.Context, args []string) error {
	limit := 0
	if len(args) > 1 {
		return usage("history [limit]")
	}
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return usage("history [limit]")
		}
		limit = n
	}

	transfers, err := a.wallet.History(ctx, limit)
	if err != nil {
		return err
	}
	if len(transfers) == 0 {
		fmt.Fprintln(a.out, "No transfers")
		return nil
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tKIND\tAMOUNT\tFROM\tTO")
	for _, t := range transfers {
		from := t.From
		if from == "" {
			from = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			t.CreatedAt.UTC().Format("2006-01-02 15:04:05"), t.Kind, FormatAmount(t.Amount), from, t.To)
	}
	return tw.Flush()
}

func (a *App) printProfile(p *api.Profile) {
	fmt.Fprintf(a.out, "Profile %s\n", p.Address)
	fmt.Fprintf(a.out, "  username: %s\n", p.Fields.Username)
	fmt.Fprintf(a.out, "  emoji:    %s\n", p.Fields.Emoji)
	fmt.Fprintf(a.out, "  gender:   %s\n", p.Fields.Gender)
	fmt.Fprintf(a.out, "  pin:      %s\n", p.Fields.Pin)
	fmt.Fprintf(a.out, "  updated:  %s\n", formatTime(p.UpdatedAt))
}

func (a *App) ShowProfile(ctx context.Context) error {
	p, err := a.wallet.Profile(ctx)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			fmt.Fprintln(a.out, "No profile yet, use 'profile-save'")
			return nil
		}
		return err
	}
	a.printProfile(p)
	return nil
}

// SaveProfile applies key=value pairs on top of the current profile, or on
// an empty one when the profile does not exist yet.
func (a *App) SaveProfile(ctx context.Context, args []string) error {
	const format = "profile-save username=.. emoji=.. gender=.. pin=.."
	if len(args) == 0 {
		return usage(format)
	}

	var fields api.ProfileFields
	current, err := a.wallet.Profile(ctx)
	switch {
	case err == nil:
		fields = current.Fields
	case !errors.Is(err, common.ErrorNotFound):
		return err
	}

	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok {
			return usage(format)
		}
		switch key {
		case "username":
			fields.Username = value
		case "emoji":
			fields.Emoji = value
		case "gender":
			fields.Gender = value
		case "pin":
			fields.Pin = value
		default:
			return usage(format)
		}
	}

	p, created, err := a.wallet.SaveProfile(ctx, fields)
	if err != nil {
		return err
	}
	if created {
		fmt.Fprintln(a.out, "Profile created")
	} else {
		fmt.Fprintln(a.out, "Profile updated")
	}
	a.printProfile(p)
	return nil
}

func (a *App) printPot(p *api.Pot) {
	state := "unlocked"
	if timex.Unix(a.clock.Now()) < p.UnlockTime {
		state = "locked"
	}
	fmt.Fprintf(a.out, "Pot %q %s\n", p.Name, p.Address)
	fmt.Fprintf(a.out, "  balance:  %s\n", FormatAmount(p.Balance))
	fmt.Fprintf(a.out, "  unlocks:  %s (%s)\n", formatTime(p.UnlockTime), state)
	fmt.Fprintf(a.out, "  created:  %s\n", formatTime(p.CreatedAt))
	fmt.Fprintf(a.out, "  deposit:  %s\n", FormatAmount(p.Deposit))
}

func (a *App) CreatePot(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("pot-create <name> <unlock: 2026-12-31 | RFC3339 | 90d | 36h>")
	}
	unlock, err := ParseUnlock(args[1], a.clock.Now())
	if err != nil {
		return err
	}
	p, err := a.wallet.CreatePot(ctx, args[0], unlock)
	if err != nil {
		return err
	}
	a.printPot(p)
	return nil
}

func (a *App) Deposit(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("pot-deposit <pot> <amount>")
	}
	amount, err := ParseAmount(args[1])
	if err != nil {
		return err
	}
	p, err := a.wallet.Deposit(ctx, args[0], amount)
	if err != nil {
		return err
	}
	a.printPot(p)
	return nil
}

func (a *App) Withdraw(ctx context.Context, args []string) error {
	if len(args) != 2 && len(args) != 3 {
		return usage("pot-withdraw <pot> <amount> [recipient]")
	}
	amount, err := ParseAmount(args[1])
	if err != nil {
		return err
	}
	recipient := ""
	if len(args) == 3 {
		recipient = args[2]
	}
	p, err := a.wallet.Withdraw(ctx, args[0], recipient, amount)
	if err != nil {
		return err
	}
	a.printPot(p)
	return nil
}

func (a *App) ClosePot(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("pot-close <pot>")
	}
	res, err := a.wallet.ClosePot(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Pot closed: swept %s, refunded %s\n", FormatAmount(res.Swept), FormatAmount(res.Refunded))
	return nil
}

func (a *App) ShowPot(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("pot-show <pot>")
	}
	p, err := a.wallet.Pot(ctx, args[0])
	if err != nil {
		return err
	}
	a.printPot(p)
	return nil
}

func (a *App) ListPots(ctx context.Context) error {
	pots, err := a.wallet.Pots(ctx)
	if err != nil {
		return err
	}
	if len(pots) == 0 {
		fmt.Fprintln(a.out, "No pots")
		return nil
	}

	now := timex.Unix(a.clock.Now())
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tBALANCE\tUNLOCKS\tSTATE")
	for _, p := range pots {
		state := "unlocked"
		if now < p.UnlockTime {
			state = "locked"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", p.Name, FormatAmount(p.Balance), formatTime(p.UnlockTime), state)
	}
	return tw.Flush()
}
