package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/api"
	"github.com/dmitrijs2005/potkeeper/internal/common"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// potKeeperRPC is the generated-style stub the client drives. *api.PotKeeperClient
// satisfies it.
type potKeeperRPC interface {
	Ping(ctx context.Context, in *api.PingRequest, opts ...grpc.CallOption) (*api.PingResponse, error)
	GetChallenge(ctx context.Context, in *api.GetChallengeRequest, opts ...grpc.CallOption) (*api.GetChallengeResponse, error)
	Login(ctx context.Context, in *api.LoginRequest, opts ...grpc.CallOption) (*api.LoginResponse, error)
	RefreshToken(ctx context.Context, in *api.RefreshTokenRequest, opts ...grpc.CallOption) (*api.RefreshTokenResponse, error)
	InitializeUser(ctx context.Context, in *api.InitializeUserRequest, opts ...grpc.CallOption) (*api.InitializeUserResponse, error)
	UpdateUser(ctx context.Context, in *api.UpdateUserRequest, opts ...grpc.CallOption) (*api.UpdateUserResponse, error)
	GetProfile(ctx context.Context, in *api.GetProfileRequest, opts ...grpc.CallOption) (*api.GetProfileResponse, error)
	CreateSavingsPot(ctx context.Context, in *api.CreateSavingsPotRequest, opts ...grpc.CallOption) (*api.CreateSavingsPotResponse, error)
	DepositToPot(ctx context.Context, in *api.DepositToPotRequest, opts ...grpc.CallOption) (*api.DepositToPotResponse, error)
	WithdrawFromPot(ctx context.Context, in *api.WithdrawFromPotRequest, opts ...grpc.CallOption) (*api.WithdrawFromPotResponse, error)
	CloseSavingsPot(ctx context.Context, in *api.CloseSavingsPotRequest, opts ...grpc.CallOption) (*api.CloseSavingsPotResponse, error)
	GetPot(ctx context.Context, in *api.GetPotRequest, opts ...grpc.CallOption) (*api.GetPotResponse, error)
	ListPots(ctx context.Context, in *api.ListPotsRequest, opts ...grpc.CallOption) (*api.ListPotsResponse, error)
	GetBalance(ctx context.Context, in *api.GetBalanceRequest, opts ...grpc.CallOption) (*api.GetBalanceResponse, error)
	Airdrop(ctx context.Context, in *api.AirdropRequest, opts ...grpc.CallOption) (*api.AirdropResponse, error)
	GetHistory(ctx context.Context, in *api.GetHistoryRequest, opts ...grpc.CallOption) (*api.GetHistoryResponse, error)
}

type GRPCClient struct {
	endpointURL string
	timeout     time.Duration
	conn        *grpc.ClientConn
	client      potKeeperRPC

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Delete(common.AccessTokenHeaderName)
	if token != "" {
		md.Set(common.AccessTokenHeaderName, token)
	}

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) tokens() (string, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessToken, s.refreshToken
}

func (s *GRPCClient) setTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = access
	s.refreshToken = refresh
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	access, refresh := s.tokens()
	err := invoker(withAccessToken(ctx, access), method, req, reply, cc, opts...)
	if err == nil {
		return nil
	}

	if !errors.Is(api.FromStatus(err), common.ErrTokenExpired) || refresh == "" {
		return err
	}

	resp, rerr := s.client.RefreshToken(ctx, &api.RefreshTokenRequest{RefreshToken: refresh})
	if rerr != nil {
		return rerr
	}
	s.setTokens(resp.AccessToken, resp.RefreshToken)

	return invoker(withAccessToken(ctx, resp.AccessToken), method, req, reply, cc, opts...)
}

// NewGRPCClient dials endpointURL lazily. timeout bounds every call; zero
// leaves calls bounded only by the caller's context.
func NewGRPCClient(endpointURL string, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, timeout: timeout}
	if err := c.InitGRPCClient(); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *GRPCClient) InitGRPCClient(opts ...grpc.DialOption) error {
	opts = append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(s.accessTokenInterceptor),
	}, opts...)

	conn, err := grpc.NewClient(s.endpointURL, opts...)
	if err != nil {
		return err
	}
	s.conn = conn
	s.client = api.NewPotKeeperClient(conn)
	return nil
}

func (s *GRPCClient) Close() error {
	return s.conn.Close()
}

func (s *GRPCClient) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.timeout)
}

// mapError turns transport failures into ErrUnavailable and everything else
// into an error unwrapping to its domain sentinel.
func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unavailable, codes.DeadlineExceeded:
			return ErrUnavailable
		}
	}
	return api.FromStatus(err)
}

func (s *GRPCClient) Ping(ctx context.Context) (*api.PingResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Ping(ctx, &api.PingRequest{})
	if err != nil {
		return nil, s.mapError(err)
	}
	if resp.Status != "OK" {
		return nil, ErrUnavailable
	}
	return resp, nil
}

func (s *GRPCClient) GetChallenge(ctx context.Context, address string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetChallenge(ctx, &api.GetChallengeRequest{Address: address})
	if err != nil {
		return "", s.mapError(err)
	}
	return resp.Nonce, nil
}

func (s *GRPCClient) Login(ctx context.Context, address string, signature []byte) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Login(ctx, &api.LoginRequest{Address: address, Signature: signature})
	if err != nil {
		return s.mapError(err)
	}

	s.setTokens(resp.AccessToken, resp.RefreshToken)
	return nil
}

func (s *GRPCClient) LoggedIn() bool {
	access, _ := s.tokens()
	return access != ""
}

func (s *GRPCClient) InitializeUser(ctx context.Context, req *api.InitializeUserRequest) (*api.Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.InitializeUser(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.Profile, nil
}

func (s *GRPCClient) UpdateUser(ctx context.Context, req *api.UpdateUserRequest) (*api.Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.UpdateUser(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.Profile, nil
}

func (s *GRPCClient) GetProfile(ctx context.Context, owner string) (*api.Profile, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetProfile(ctx, &api.GetProfileRequest{Owner: owner})
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.Profile, nil
}

func (s *GRPCClient) CreateSavingsPot(ctx context.Context, req *api.CreateSavingsPotRequest) (*api.Pot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.CreateSavingsPot(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.Pot, nil
}

func (s *GRPCClient) DepositToPot(ctx context.Context, req *api.DepositToPotRequest) (*api.Pot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.DepositToPot(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.Pot, nil
}

func (s *GRPCClient) WithdrawFromPot(ctx context.Context, req *api.WithdrawFromPotRequest) (*api.Pot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.WithdrawFromPot(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.Pot, nil
}

func (s *GRPCClient) CloseSavingsPot(ctx context.Context, req *api.CloseSavingsPotRequest) (*api.CloseSavingsPotResponse, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.CloseSavingsPot(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp, nil
}

func (s *GRPCClient) GetPot(ctx context.Context, req *api.GetPotRequest) (*api.Pot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetPot(ctx, req)
	if err != nil {
		return nil, s.mapError(err)
	}
	return &resp.Pot, nil
}

func (s *GRPCClient) ListPots(ctx context.Context, owner string) ([]api.Pot, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.ListPots(ctx, &api.ListPotsRequest{Owner: owner})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Pots, nil
}

func (s *GRPCClient) GetBalance(ctx context.Context, address string) (uint64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetBalance(ctx, &api.GetBalanceRequest{Address: address})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.Balance, nil
}

func (s *GRPCClient) Airdrop(ctx context.Context, address string, amount uint64) (uint64, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.Airdrop(ctx, &api.AirdropRequest{Address: address, Amount: amount})
	if err != nil {
		return 0, s.mapError(err)
	}
	return resp.Balance, nil
}

func (s *GRPCClient) GetHistory(ctx context.Context, address string, limit int) ([]api.Transfer, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.client.GetHistory(ctx, &api.GetHistoryRequest{Address: address, Limit: limit})
	if err != nil {
		return nil, s.mapError(err)
	}
	return resp.Transfers, nil
}
