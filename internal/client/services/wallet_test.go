package services

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/api"
	"github.com/dmitrijs2005/potkeeper/internal/client/client"
	"github.com/dmitrijs2005/potkeeper/internal/client/repositories/keystore"
	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

// ---- helpers ----

var testNow = time.Unix(1_700_000_000, 0).UTC()

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, client.RunMigrations(context.Background(), db))
	return db
}

// ---- fake client ----

type fakeClient struct {
	client.Client

	pings    int
	loggedIn bool
	nonce    string

	profile    *api.Profile
	profileErr error

	lastLoginAddr string
	lastLoginSig  []byte
	lastInit      *api.InitializeUserRequest
	lastUpdate    *api.UpdateUserRequest
	lastCreate    *api.CreateSavingsPotRequest
	lastDeposit   *api.DepositToPotRequest
	lastWithdraw  *api.WithdrawFromPotRequest
	lastClose     *api.CloseSavingsPotRequest
	lastGetPot    *api.GetPotRequest
	lastOwner     string
	lastAddress   string
	lastAmount    uint64
	lastLimit     int
	closed        bool
}

func (f *fakeClient) Close() error { f.closed = true; return nil }

func (f *fakeClient) Ping(context.Context) (*api.PingResponse, error) {
	f.pings++
	return &api.PingResponse{Status: "OK", ProgramID: cryptox.DefaultProgramID}, nil
}

func (f *fakeClient) GetChallenge(_ context.Context, address string) (string, error) {
	f.lastAddress = address
	return f.nonce, nil
}

func (f *fakeClient) Login(_ context.Context, address string, sig []byte) error {
	f.lastLoginAddr = address
	f.lastLoginSig = sig
	f.loggedIn = true
	return nil
}

func (f *fakeClient) LoggedIn() bool { return f.loggedIn }

func (f *fakeClient) InitializeUser(_ context.Context, req *api.InitializeUserRequest) (*api.Profile, error) {
	f.lastInit = req
	return &api.Profile{Authority: req.Auth.Signer, Fields: req.Fields}, nil
}

func (f *fakeClient) UpdateUser(_ context.Context, req *api.UpdateUserRequest) (*api.Profile, error) {
	f.lastUpdate = req
	return &api.Profile{Authority: req.Auth.Signer, Fields: req.Fields}, nil
}

func (f *fakeClient) GetProfile(_ context.Context, owner string) (*api.Profile, error) {
	f.lastOwner = owner
	return f.profile, f.profileErr
}

func (f *fakeClient) CreateSavingsPot(_ context.Context, req *api.CreateSavingsPotRequest) (*api.Pot, error) {
	f.lastCreate = req
	return &api.Pot{Name: req.Name, UnlockTime: req.UnlockTime}, nil
}

func (f *fakeClient) DepositToPot(_ context.Context, req *api.DepositToPotRequest) (*api.Pot, error) {
	f.lastDeposit = req
	return &api.Pot{Address: req.Pot, Balance: req.Amount}, nil
}

func (f *fakeClient) WithdrawFromPot(_ context.Context, req *api.WithdrawFromPotRequest) (*api.Pot, error) {
	f.lastWithdraw = req
	return &api.Pot{Address: req.Pot}, nil
}

func (f *fakeClient) CloseSavingsPot(_ context.Context, req *api.CloseSavingsPotRequest) (*api.CloseSavingsPotResponse, error) {
	f.lastClose = req
	return &api.CloseSavingsPotResponse{Swept: 5, Refunded: 1}, nil
}

func (f *fakeClient) GetPot(_ context.Context, req *api.GetPotRequest) (*api.Pot, error) {
	f.lastGetPot = req
	return &api.Pot{Name: req.Name}, nil
}

func (f *fakeClient) ListPots(_ context.Context, owner string) ([]api.Pot, error) {
	f.lastOwner = owner
	return []api.Pot{{Name: "a"}}, nil
}

func (f *fakeClient) GetBalance(_ context.Context, address string) (uint64, error) {
	f.lastAddress = address
	return 42, nil
}

func (f *fakeClient) Airdrop(_ context.Context, address string, amount uint64) (uint64, error) {
	f.lastAddress = address
	f.lastAmount = amount
	return amount, nil
}

func (f *fakeClient) GetHistory(_ context.Context, address string, limit int) ([]api.Transfer, error) {
	f.lastAddress = address
	f.lastLimit = limit
	return []api.Transfer{{ID: "t"}}, nil
}

func newTestWallet(t *testing.T) (*wallet, *fakeClient, *sql.DB) {
	t.Helper()
	db := setupDB(t)
	fc := &fakeClient{nonce: "n-1"}
	w := NewWalletService(fc, keystore.NewSQLiteRepository(db), timex.FixedClock{T: testNow}).(*wallet)
	return w, fc, db
}

func unlocked(t *testing.T) (*wallet, *fakeClient, cryptox.Address) {
	t.Helper()
	w, fc, _ := newTestWallet(t)
	addr, err := w.Create(context.Background(), []byte("pw"))
	require.NoError(t, err)
	return w, fc, addr
}

// ---- key management ----

func TestCreate_SealsKeyAndUnlocks(t *testing.T) {
	w, _, db := newTestWallet(t)
	ctx := context.Background()

	has, err := w.HasKey(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	addr, err := w.Create(ctx, []byte("correct horse"))
	require.NoError(t, err)
	assert.False(t, addr.IsZero())

	got, err := w.Address()
	require.NoError(t, err)
	assert.Equal(t, addr, got)

	has, err = w.HasKey(ctx)
	require.NoError(t, err)
	assert.True(t, has)

	sealed, err := keystore.NewSQLiteRepository(db).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, addr.String(), sealed.Address)
	assert.Len(t, sealed.Salt, saltSize)
	assert.Equal(t, testNow, sealed.CreatedAt)
	assert.NotContains(t, string(sealed.Ciphertext), "correct horse")
}

func TestCreate_SecondKeyRejected(t *testing.T) {
	w, _, _ := unlocked(t)

	_, err := w.Create(context.Background(), []byte("other"))
	assert.ErrorIs(t, err, common.ErrAccountAlreadyExists)
}

func TestUnlock(t *testing.T) {
	w, _, addr := unlocked(t)
	ctx := context.Background()

	w.Lock()
	_, err := w.Address()
	assert.ErrorIs(t, err, client.ErrWalletLocked)

	_, err = w.Unlock(ctx, []byte("wrong"))
	assert.ErrorIs(t, err, client.ErrUnauthorized)
	_, err = w.Address()
	assert.ErrorIs(t, err, client.ErrWalletLocked)

	got, err := w.Unlock(ctx, []byte("pw"))
	require.NoError(t, err)
	assert.Equal(t, addr, got)
}

func TestUnlock_NoKey(t *testing.T) {
	w, _, _ := newTestWallet(t)

	_, err := w.Unlock(context.Background(), []byte("pw"))
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestForget(t *testing.T) {
	w, _, _ := unlocked(t)
	ctx := context.Background()

	require.NoError(t, w.Forget(ctx))
	_, err := w.Address()
	assert.ErrorIs(t, err, client.ErrWalletLocked)

	has, err := w.HasKey(ctx)
	require.NoError(t, err)
	assert.False(t, has)

	_, err = w.Create(ctx, []byte("again"))
	assert.NoError(t, err)
}

func TestLockedWalletRefusesToSign(t *testing.T) {
	w, fc, _ := newTestWallet(t)
	ctx := context.Background()

	assert.ErrorIs(t, w.Login(ctx), client.ErrWalletLocked)
	_, err := w.CreatePot(ctx, "vacation", testNow.Add(time.Hour))
	assert.ErrorIs(t, err, client.ErrWalletLocked)
	_, err = w.Deposit(ctx, "vacation", 1)
	assert.ErrorIs(t, err, client.ErrWalletLocked)
	_, err = w.Balance(ctx)
	assert.ErrorIs(t, err, client.ErrWalletLocked)

	assert.Nil(t, fc.lastCreate)
	assert.Nil(t, fc.lastDeposit)
}

// ---- login ----

func TestLogin_SignsChallenge(t *testing.T) {
	w, fc, addr := unlocked(t)

	require.NoError(t, w.Login(context.Background()))
	assert.True(t, w.LoggedIn())
	assert.Equal(t, addr.String(), fc.lastLoginAddr)
	assert.True(t, cryptox.Verify(addr, api.LoginMessage(addr, "n-1"), fc.lastLoginSig))
}

// ---- pots ----

func TestCreatePot_SignsRequest(t *testing.T) {
	w, fc, addr := unlocked(t)
	unlock := testNow.Add(30 * 24 * time.Hour)

	pot, err := w.CreatePot(context.Background(), "vacation", unlock)
	require.NoError(t, err)
	assert.Equal(t, "vacation", pot.Name)

	req := fc.lastCreate
	require.NotNil(t, req)
	assert.Equal(t, uint64(unlock.Unix()), req.UnlockTime)
	assert.Equal(t, addr.String(), req.Auth.Signer)
	assert.Equal(t, uint64(testNow.Unix()), req.Auth.IssuedAt)
	assert.True(t, cryptox.Verify(addr,
		api.CreatePotPayload(addr, req.Auth.IssuedAt, "vacation", req.UnlockTime), req.Auth.Signature))
}

func TestDeposit_ByNameDerivesAddress(t *testing.T) {
	w, fc, addr := unlocked(t)
	ctx := context.Background()

	d, err := cryptox.NewDeriver(cryptox.DefaultProgramID)
	require.NoError(t, err)
	want, _, err := d.PotAddress(addr, "vacation")
	require.NoError(t, err)

	_, err = w.Deposit(ctx, "vacation", 500)
	require.NoError(t, err)
	_, err = w.Deposit(ctx, "vacation", 300)
	require.NoError(t, err)

	req := fc.lastDeposit
	assert.Equal(t, want.String(), req.Pot)
	assert.Equal(t, uint64(300), req.Amount)
	assert.True(t, cryptox.Verify(addr, api.DepositPayload(addr, req.Auth.IssuedAt, want, 300), req.Auth.Signature))
	assert.Equal(t, 1, fc.pings, "program id is fetched once")
}

func TestDeposit_ByAddress(t *testing.T) {
	w, fc, _ := unlocked(t)

	other, err := cryptox.GenerateKey()
	require.NoError(t, err)
	pot := other.Address().String()

	_, err = w.Deposit(context.Background(), pot, 1)
	require.NoError(t, err)
	assert.Equal(t, pot, fc.lastDeposit.Pot)
	assert.Zero(t, fc.pings)
}

func TestWithdraw(t *testing.T) {
	w, fc, addr := unlocked(t)
	ctx := context.Background()

	_, err := w.Withdraw(ctx, "vacation", "", 100)
	require.NoError(t, err)
	req := fc.lastWithdraw
	assert.Equal(t, addr.String(), req.Recipient)

	pot, err := cryptox.ParseAddress(req.Pot)
	require.NoError(t, err)
	assert.True(t, cryptox.Verify(addr, api.WithdrawPayload(addr, req.Auth.IssuedAt, pot, addr, 100), req.Auth.Signature))

	friend, err := cryptox.GenerateKey()
	require.NoError(t, err)
	_, err = w.Withdraw(ctx, "vacation", friend.Address().String(), 7)
	require.NoError(t, err)
	assert.Equal(t, friend.Address().String(), fc.lastWithdraw.Recipient)

	_, err = w.Withdraw(ctx, "vacation", "not-an-address!", 7)
	assert.ErrorIs(t, err, common.ErrInvalidAddress)
}

func TestClosePot(t *testing.T) {
	w, fc, addr := unlocked(t)

	res, err := w.ClosePot(context.Background(), "vacation")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), res.Swept)

	pot, err := cryptox.ParseAddress(fc.lastClose.Pot)
	require.NoError(t, err)
	assert.True(t, cryptox.Verify(addr, api.ClosePayload(addr, fc.lastClose.Auth.IssuedAt, pot), fc.lastClose.Auth.Signature))
}

func TestPotQueries(t *testing.T) {
	w, fc, addr := unlocked(t)
	ctx := context.Background()

	_, err := w.Pot(ctx, "vacation")
	require.NoError(t, err)
	assert.Equal(t, &api.GetPotRequest{Owner: addr.String(), Name: "vacation"}, fc.lastGetPot)

	_, err = w.Pot(ctx, addr.String())
	require.NoError(t, err)
	assert.Equal(t, &api.GetPotRequest{Pot: addr.String()}, fc.lastGetPot)

	pots, err := w.Pots(ctx)
	require.NoError(t, err)
	assert.Len(t, pots, 1)
	assert.Equal(t, addr.String(), fc.lastOwner)
}

// ---- profile ----

func TestSaveProfile_InitializesWhenMissing(t *testing.T) {
	w, fc, addr := unlocked(t)
	fc.profileErr = common.ErrorNotFound
	fields := api.ProfileFields{Username: "alice", Emoji: "🐷", Gender: "f", Pin: "1234"}

	p, created, err := w.SaveProfile(context.Background(), fields)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, fields, p.Fields)
	require.NotNil(t, fc.lastInit)
	assert.Nil(t, fc.lastUpdate)
	assert.True(t, cryptox.Verify(addr, api.InitializeUserPayload(addr, fc.lastInit.Auth.IssuedAt, fields), fc.lastInit.Auth.Signature))
}

func TestSaveProfile_UpdatesWhenPresent(t *testing.T) {
	w, fc, addr := unlocked(t)
	fc.profile = &api.Profile{Authority: addr.String()}
	fields := api.ProfileFields{Username: "alice2"}

	_, created, err := w.SaveProfile(context.Background(), fields)
	require.NoError(t, err)
	assert.False(t, created)
	require.NotNil(t, fc.lastUpdate)
	assert.Nil(t, fc.lastInit)
	assert.True(t, cryptox.Verify(addr, api.UpdateUserPayload(addr, fc.lastUpdate.Auth.IssuedAt, fields), fc.lastUpdate.Auth.Signature))
}

func TestSaveProfile_PropagatesLookupError(t *testing.T) {
	w, fc, _ := unlocked(t)
	fc.profileErr = client.ErrUnavailable

	_, _, err := w.SaveProfile(context.Background(), api.ProfileFields{})
	assert.ErrorIs(t, err, client.ErrUnavailable)
	assert.Nil(t, fc.lastInit)
	assert.Nil(t, fc.lastUpdate)
}

// ---- account ----

func TestAccountCalls(t *testing.T) {
	w, fc, addr := unlocked(t)
	ctx := context.Background()

	bal, err := w.Balance(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), bal)
	assert.Equal(t, addr.String(), fc.lastAddress)

	bal, err = w.Airdrop(ctx, 1_000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000), bal)
	assert.Equal(t, uint64(1_000), fc.lastAmount)

	hist, err := w.History(ctx, 20)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
	assert.Equal(t, 20, fc.lastLimit)
}

func TestClose_LocksWallet(t *testing.T) {
	w, fc, _ := unlocked(t)

	require.NoError(t, w.Close(context.Background()))
	assert.True(t, fc.closed)
	_, err := w.Address()
	assert.ErrorIs(t, err, client.ErrWalletLocked)
}
