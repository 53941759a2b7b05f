package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/api"
	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/server/archive"
	"github.com/dmitrijs2005/potkeeper/internal/server/guard"
	"github.com/dmitrijs2005/potkeeper/internal/server/ledger"
	"github.com/dmitrijs2005/potkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/memory"
	"github.com/dmitrijs2005/potkeeper/internal/server/services"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

var epoch = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type testClient struct {
	api    *api.PotKeeperClient
	conn   *grpc.ClientConn
	reg    *prometheus.Registry
	issued uint64
}

func startServer(t *testing.T) *testClient {
	t.Helper()

	clock := timex.FixedClock{T: epoch}
	d, err := cryptox.NewDeriver(cryptox.DefaultProgramID)
	require.NoError(t, err)
	store := guard.NewMemoryStore(clock)
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	env := &services.Env{
		Repos:    memory.NewManager(),
		Deriver:  d,
		Gateway:  ledger.NewGateway(d, clock),
		Verifier: services.NewVerifier(store, time.Minute),
		Clock:    clock,
		Rent:     ledger.RentSchedule{PerByte: ledger.DefaultRentPerByte},
		Metrics:  m,
		Logger:   nopLogger{},
	}
	svc := Services{
		Auth: services.NewAuthService(env, store, services.AuthConfig{
			Secret:          []byte("secret"),
			AccessValidity:  time.Minute,
			RefreshValidity: time.Hour,
		}),
		Profiles: services.NewProfileService(env),
		Pots:     services.NewPotService(env, archive.Nop{}),
		Accounts: services.NewAccountService(env, store, services.FaucetConfig{
			Enabled: true, MaxAmount: 10_000_000_000, LimitPerHour: 10,
		}),
	}

	lis := bufconn.Listen(1 << 20)
	srv := NewGRPCServer("bufnet", nopLogger{}, svc, m, d.ProgramID(), clock)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, lis) }()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) { return lis.DialContext(ctx) }),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		cancel()
		<-done
	})
	return &testClient{api: api.NewPotKeeperClient(conn), conn: conn, reg: reg, issued: timex.Unix(epoch)}
}

func (c *testClient) login(t *testing.T, k *cryptox.KeyPair) context.Context {
	t.Helper()
	ctx := context.Background()
	addr := k.Address()
	ch, err := c.api.GetChallenge(ctx, &api.GetChallengeRequest{Address: addr.String()})
	require.NoError(t, err)
	tokens, err := c.api.Login(ctx, &api.LoginRequest{Address: addr.String(), Signature: k.Sign(api.LoginMessage(addr, ch.Nonce))})
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, tokens.AccessToken)
}

func (c *testClient) signed(k *cryptox.KeyPair, payload func(signer cryptox.Address, at uint64) []byte) api.Signed {
	msg := payload(k.Address(), c.issued)
	return api.Signed{Signer: k.Address().String(), IssuedAt: c.issued, Signature: k.Sign(msg)}
}

func remote(t *testing.T, err error, want error, code codes.Code) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, code, status.Code(err))
	assert.ErrorIs(t, api.FromStatus(err), want)
}

func TestPing(t *testing.T) {
	c := startServer(t)
	resp, err := c.api.Ping(context.Background(), &api.PingRequest{})
	require.NoError(t, err)
	assert.Equal(t, "OK", resp.Status)
	assert.Equal(t, cryptox.DefaultProgramID, resp.ProgramID)
	assert.Equal(t, timex.Unix(epoch), resp.Time)
}

func TestHealth(t *testing.T) {
	c := startServer(t)
	resp, err := healthpb.NewHealthClient(c.conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: api.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestPotFlow(t *testing.T) {
	c := startServer(t)
	alice, err := cryptox.GenerateKey()
	require.NoError(t, err)
	ctx := c.login(t, alice)
	owner := alice.Address().String()

	_, err = c.api.Airdrop(ctx, &api.AirdropRequest{Address: owner, Amount: 1_000_000_000})
	require.NoError(t, err)

	unlock := c.issued + 100
	created, err := c.api.CreateSavingsPot(ctx, &api.CreateSavingsPotRequest{
		Name:       "vacation",
		UnlockTime: unlock,
		Auth: c.signed(alice, func(s cryptox.Address, at uint64) []byte {
			return api.CreatePotPayload(s, at, "vacation", unlock)
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, owner, created.Pot.Authority)
	potAddr, err := cryptox.ParseAddress(created.Pot.Address)
	require.NoError(t, err)

	dep, err := c.api.DepositToPot(ctx, &api.DepositToPotRequest{
		Pot:    created.Pot.Address,
		Amount: 500,
		Auth: c.signed(alice, func(s cryptox.Address, at uint64) []byte {
			return api.DepositPayload(s, at, potAddr, 500)
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(500), dep.Pot.Balance)

	_, err = c.api.WithdrawFromPot(ctx, &api.WithdrawFromPotRequest{
		Pot:       created.Pot.Address,
		Recipient: owner,
		Amount:    500,
		Auth: c.signed(alice, func(s cryptox.Address, at uint64) []byte {
			return api.WithdrawPayload(s, at, potAddr, alice.Address(), 500)
		}),
	})
	remote(t, err, common.ErrPotLocked, codes.FailedPrecondition)

	byName, err := c.api.GetPot(context.Background(), &api.GetPotRequest{Owner: owner, Name: "vacation"})
	require.NoError(t, err)
	assert.Equal(t, created.Pot.Address, byName.Pot.Address)
	assert.Equal(t, uint64(500), byName.Pot.Balance)

	list, err := c.api.ListPots(context.Background(), &api.ListPotsRequest{Owner: owner})
	require.NoError(t, err)
	require.Len(t, list.Pots, 1)

	closed, err := c.api.CloseSavingsPot(ctx, &api.CloseSavingsPotRequest{
		Pot: created.Pot.Address,
		Auth: c.signed(alice, func(s cryptox.Address, at uint64) []byte {
			return api.ClosePayload(s, at, potAddr)
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(500), closed.Swept)
	assert.Equal(t, created.Pot.Deposit, closed.Refunded)

	bal, err := c.api.GetBalance(context.Background(), &api.GetBalanceRequest{Address: owner})
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000_000), bal.Balance)

	history, err := c.api.GetHistory(context.Background(), &api.GetHistoryRequest{Address: owner})
	require.NoError(t, err)
	require.NotEmpty(t, history.Transfers)
	assert.Equal(t, "airdrop", history.Transfers[len(history.Transfers)-1].Kind)
	assert.Empty(t, history.Transfers[len(history.Transfers)-1].From)

	_, err = c.api.GetPot(context.Background(), &api.GetPotRequest{Pot: created.Pot.Address})
	remote(t, err, common.ErrorNotFound, codes.NotFound)

	assert.Positive(t, testutil.CollectAndCount(c.reg, "potkeeper_rpc_requests_total"))
}

func TestProfileFlow(t *testing.T) {
	c := startServer(t)
	alice, err := cryptox.GenerateKey()
	require.NoError(t, err)
	ctx := c.login(t, alice)
	owner := alice.Address().String()

	_, err = c.api.Airdrop(ctx, &api.AirdropRequest{Address: owner, Amount: 1_000_000_000})
	require.NoError(t, err)

	fields := api.ProfileFields{Username: "alice", Emoji: "🙂", Gender: "f", Pin: "1234"}
	created, err := c.api.InitializeUser(ctx, &api.InitializeUserRequest{
		Fields: fields,
		Auth: c.signed(alice, func(s cryptox.Address, at uint64) []byte {
			return api.InitializeUserPayload(s, at, fields)
		}),
	})
	require.NoError(t, err)
	assert.Equal(t, fields, created.Profile.Fields)

	renamed := api.ProfileFields{Username: "alice2"}
	_, err = c.api.UpdateUser(ctx, &api.UpdateUserRequest{
		Fields: renamed,
		Auth: c.signed(alice, func(s cryptox.Address, at uint64) []byte {
			return api.UpdateUserPayload(s, at, renamed)
		}),
	})
	require.NoError(t, err)

	got, err := c.api.GetProfile(context.Background(), &api.GetProfileRequest{Owner: owner})
	require.NoError(t, err)
	assert.Equal(t, "alice2", got.Profile.Fields.Username)
	assert.Empty(t, got.Profile.Fields.Emoji)
}

func TestAccessControl(t *testing.T) {
	c := startServer(t)
	alice, err := cryptox.GenerateKey()
	require.NoError(t, err)
	bob, err := cryptox.GenerateKey()
	require.NoError(t, err)

	req := func(k *cryptox.KeyPair) *api.CreateSavingsPotRequest {
		return &api.CreateSavingsPotRequest{
			Name:       "a",
			UnlockTime: 1,
			Auth: c.signed(k, func(s cryptox.Address, at uint64) []byte {
				return api.CreatePotPayload(s, at, "a", 1)
			}),
		}
	}

	_, err = c.api.CreateSavingsPot(context.Background(), req(alice))
	remote(t, err, common.ErrInvalidToken, codes.Unauthenticated)

	bad := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "nope")
	_, err = c.api.CreateSavingsPot(bad, req(alice))
	remote(t, err, common.ErrInvalidToken, codes.Unauthenticated)

	bobCtx := c.login(t, bob)
	_, err = c.api.CreateSavingsPot(bobCtx, req(alice))
	remote(t, err, common.ErrorUnauthorized, codes.PermissionDenied)

	_, err = c.api.GetBalance(context.Background(), &api.GetBalanceRequest{Address: "0OIl"})
	remote(t, err, common.ErrInvalidAddress, codes.InvalidArgument)
}

func TestRefreshToken(t *testing.T) {
	c := startServer(t)
	alice, err := cryptox.GenerateKey()
	require.NoError(t, err)
	ctx := context.Background()
	addr := alice.Address()

	ch, err := c.api.GetChallenge(ctx, &api.GetChallengeRequest{Address: addr.String()})
	require.NoError(t, err)
	tokens, err := c.api.Login(ctx, &api.LoginRequest{Address: addr.String(), Signature: alice.Sign(api.LoginMessage(addr, ch.Nonce))})
	require.NoError(t, err)

	fresh, err := c.api.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, tokens.RefreshToken, fresh.RefreshToken)

	_, err = c.api.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: tokens.RefreshToken})
	remote(t, err, common.ErrorUnauthorized, codes.PermissionDenied)
}
