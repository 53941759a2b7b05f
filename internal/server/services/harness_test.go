package services

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/logging"
	"github.com/dmitrijs2005/potkeeper/internal/server/archive"
	"github.com/dmitrijs2005/potkeeper/internal/server/guard"
	"github.com/dmitrijs2005/potkeeper/internal/server/ledger"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
	"github.com/stretchr/testify/require"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type recordingArchiver struct {
	receipts []archive.Receipt
	err      error
}

func (a *recordingArchiver) Archive(_ context.Context, r archive.Receipt) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	a.receipts = append(a.receipts, r)
	return archive.ReceiptKey(r), nil
}

type harness struct {
	t        *testing.T
	now      time.Time
	repos    *memory.Manager
	store    *guard.MemoryStore
	env      *Env
	archiver *recordingArchiver
	pots     *PotService
	profiles *ProfileService
	accounts *AccountService
	auth     *AuthService
}

type option func(e *Env)

func sponsored(e *Env) { e.RentSponsored = true }

func newHarness(t *testing.T, opts ...option) *harness {
	t.Helper()
	h := &harness{t: t, now: epoch, repos: memory.NewManager(), archiver: &recordingArchiver{}}
	clock := timex.FuncClock(func() time.Time { return h.now })
	h.store = guard.NewMemoryStore(clock)

	d, err := cryptox.NewDeriver(cryptox.DefaultProgramID)
	require.NoError(t, err)

	h.env = &Env{
		Repos:    h.repos,
		Deriver:  d,
		Gateway:  ledger.NewGateway(d, clock),
		Verifier: NewVerifier(h.store, 2*time.Minute),
		Clock:    clock,
		Rent:     ledger.RentSchedule{PerByte: ledger.DefaultRentPerByte},
		Logger:   logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	for _, o := range opts {
		o(h.env)
	}

	h.pots = NewPotService(h.env, h.archiver)
	h.profiles = NewProfileService(h.env)
	h.accounts = NewAccountService(h.env, h.store, FaucetConfig{Enabled: true, MaxAmount: 1_000_000, LimitPerHour: 2})
	h.auth = NewAuthService(h.env, h.store, AuthConfig{
		Secret:          []byte("test-secret"),
		AccessValidity:  5 * time.Minute,
		RefreshValidity: time.Hour,
	})
	return h
}

func (h *harness) advance(d time.Duration) { h.now = h.now.Add(d) }

func (h *harness) unix() uint64 { return timex.Unix(h.now) }

func (h *harness) wallet(funds uint64) *cryptox.KeyPair {
	h.t.Helper()
	k, err := cryptox.GenerateKey()
	require.NoError(h.t, err)
	if funds > 0 {
		require.NoError(h.t, h.env.Gateway.Airdrop(context.Background(), h.repos.Read(), k.Address(), funds))
	}
	return k
}

// sign builds a proof issued now. The clock moves one second afterwards so
// consecutive identical requests carry distinct payloads.
func (h *harness) sign(k *cryptox.KeyPair, payload func(signer cryptox.Address, issuedAt uint64) []byte) Proof {
	issuedAt := h.unix()
	msg := payload(k.Address(), issuedAt)
	h.advance(time.Second)
	return Proof{Signer: k.Address(), IssuedAt: issuedAt, Payload: msg, Signature: k.Sign(msg)}
}

func (h *harness) balance(addr cryptox.Address) uint64 {
	h.t.Helper()
	b, err := h.accounts.Balance(context.Background(), addr)
	require.NoError(h.t, err)
	return b
}
