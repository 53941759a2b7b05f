package api

import (
	"context"

	"google.golang.org/grpc"
)

const ServiceName = "potkeeper.v1.PotKeeper"

// Method names.
const (
	MethodPing             = "Ping"
	MethodGetChallenge     = "GetChallenge"
	MethodLogin            = "Login"
	MethodRefreshToken     = "RefreshToken"
	MethodInitializeUser   = "InitializeUser"
	MethodUpdateUser       = "UpdateUser"
	MethodGetProfile       = "GetProfile"
	MethodCreateSavingsPot = "CreateSavingsPot"
	MethodDepositToPot     = "DepositToPot"
	MethodWithdrawFromPot  = "WithdrawFromPot"
	MethodCloseSavingsPot  = "CloseSavingsPot"
	MethodGetPot           = "GetPot"
	MethodListPots         = "ListPots"
	MethodGetBalance       = "GetBalance"
	MethodAirdrop          = "Airdrop"
	MethodGetHistory       = "GetHistory"
)

// FullMethod returns the "/service/method" path of a method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

type PotKeeperServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	GetChallenge(context.Context, *GetChallengeRequest) (*GetChallengeResponse, error)
	Login(context.Context, *LoginRequest) (*LoginResponse, error)
	RefreshToken(context.Context, *RefreshTokenRequest) (*RefreshTokenResponse, error)
	InitializeUser(context.Context, *InitializeUserRequest) (*InitializeUserResponse, error)
	UpdateUser(context.Context, *UpdateUserRequest) (*UpdateUserResponse, error)
	GetProfile(context.Context, *GetProfileRequest) (*GetProfileResponse, error)
	CreateSavingsPot(context.Context, *CreateSavingsPotRequest) (*CreateSavingsPotResponse, error)
	DepositToPot(context.Context, *DepositToPotRequest) (*DepositToPotResponse, error)
	WithdrawFromPot(context.Context, *WithdrawFromPotRequest) (*WithdrawFromPotResponse, error)
	CloseSavingsPot(context.Context, *CloseSavingsPotRequest) (*CloseSavingsPotResponse, error)
	GetPot(context.Context, *GetPotRequest) (*GetPotResponse, error)
	ListPots(context.Context, *ListPotsRequest) (*ListPotsResponse, error)
	GetBalance(context.Context, *GetBalanceRequest) (*GetBalanceResponse, error)
	Airdrop(context.Context, *AirdropRequest) (*AirdropResponse, error)
	GetHistory(context.Context, *GetHistoryRequest) (*GetHistoryResponse, error)
}

func unary[Req, Resp any](method string, call func(PotKeeperServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(PotKeeperServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(method)}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(PotKeeperServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// ServiceDesc describes the PotKeeper service for grpc.Server.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PotKeeperServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, PotKeeperServer.Ping),
		unary(MethodGetChallenge, PotKeeperServer.GetChallenge),
		unary(MethodLogin, PotKeeperServer.Login),
		unary(MethodRefreshToken, PotKeeperServer.RefreshToken),
		unary(MethodInitializeUser, PotKeeperServer.InitializeUser),
		unary(MethodUpdateUser, PotKeeperServer.UpdateUser),
		unary(MethodGetProfile, PotKeeperServer.GetProfile),
		unary(MethodCreateSavingsPot, PotKeeperServer.CreateSavingsPot),
		unary(MethodDepositToPot, PotKeeperServer.DepositToPot),
		unary(MethodWithdrawFromPot, PotKeeperServer.WithdrawFromPot),
		unary(MethodCloseSavingsPot, PotKeeperServer.CloseSavingsPot),
		unary(MethodGetPot, PotKeeperServer.GetPot),
		unary(MethodListPots, PotKeeperServer.ListPots),
		unary(MethodGetBalance, PotKeeperServer.GetBalance),
		unary(MethodAirdrop, PotKeeperServer.Airdrop),
		unary(MethodGetHistory, PotKeeperServer.GetHistory),
	},
	Streams: []grpc.StreamDesc{},
}

func RegisterPotKeeperServer(s grpc.ServiceRegistrar, srv PotKeeperServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// PotKeeperClient is the client side of the service. Calls use the JSON
// codec.
type PotKeeperClient struct {
	cc grpc.ClientConnInterface
}

func NewPotKeeperClient(cc grpc.ClientConnInterface) *PotKeeperClient {
	return &PotKeeperClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, c *PotKeeperClient, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := c.cc.Invoke(ctx, FullMethod(method), in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *PotKeeperClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c, MethodPing, in, opts)
}

func (c *PotKeeperClient) GetChallenge(ctx context.Context, in *GetChallengeRequest, opts ...grpc.CallOption) (*GetChallengeResponse, error) {
	return invoke[GetChallengeResponse](ctx, c, MethodGetChallenge, in, opts)
}

func (c *PotKeeperClient) Login(ctx context.Context, in *LoginRequest, opts ...grpc.CallOption) (*LoginResponse, error) {
	return invoke[LoginResponse](ctx, c, MethodLogin, in, opts)
}

func (c *PotKeeperClient) RefreshToken(ctx context.Context, in *RefreshTokenRequest, opts ...grpc.CallOption) (*RefreshTokenResponse, error) {
	return invoke[RefreshTokenResponse](ctx, c, MethodRefreshToken, in, opts)
}

func (c *PotKeeperClient) InitializeUser(ctx context.Context, in *InitializeUserRequest, opts ...grpc.CallOption) (*InitializeUserResponse, error) {
	return invoke[InitializeUserResponse](ctx, c, MethodInitializeUser, in, opts)
}

func (c *PotKeeperClient) UpdateUser(ctx context.Context, in *UpdateUserRequest, opts ...grpc.CallOption) (*UpdateUserResponse, error) {
	return invoke[UpdateUserResponse](ctx, c, MethodUpdateUser, in, opts)
}

func (c *PotKeeperClient) GetProfile(ctx context.Context, in *GetProfileRequest, opts ...grpc.CallOption) (*GetProfileResponse, error) {
	return invoke[GetProfileResponse](ctx, c, MethodGetProfile, in, opts)
}

func (c *PotKeeperClient) CreateSavingsPot(ctx context.Context, in *CreateSavingsPotRequest, opts ...grpc.CallOption) (*CreateSavingsPotResponse, error) {
	return invoke[CreateSavingsPotResponse](ctx, c, MethodCreateSavingsPot, in, opts)
}

func (c *PotKeeperClient) DepositToPot(ctx context.Context, in *DepositToPotRequest, opts ...grpc.CallOption) (*DepositToPotResponse, error) {
	return invoke[DepositToPotResponse](ctx, c, MethodDepositToPot, in, opts)
}

func (c *PotKeeperClient) WithdrawFromPot(ctx context.Context, in *WithdrawFromPotRequest, opts ...grpc.CallOption) (*WithdrawFromPotResponse, error) {
	return invoke[WithdrawFromPotResponse](ctx, c, MethodWithdrawFromPot, in, opts)
}

func (c *PotKeeperClient) CloseSavingsPot(ctx context.Context, in *CloseSavingsPotRequest, opts ...grpc.CallOption) (*CloseSavingsPotResponse, error) {
	return invoke[CloseSavingsPotResponse](ctx, c, MethodCloseSavingsPot, in, opts)
}

func (c *PotKeeperClient) GetPot(ctx context.Context, in *GetPotRequest, opts ...grpc.CallOption) (*GetPotResponse, error) {
	return invoke[GetPotResponse](ctx, c, MethodGetPot, in, opts)
}

func (c *PotKeeperClient) ListPots(ctx context.Context, in *ListPotsRequest, opts ...grpc.CallOption) (*ListPotsResponse, error) {
	return invoke[ListPotsResponse](ctx, c, MethodListPots, in, opts)
}

func (c *PotKeeperClient) GetBalance(ctx context.Context, in *GetBalanceRequest, opts ...grpc.CallOption) (*GetBalanceResponse, error) {
	return invoke[GetBalanceResponse](ctx, c, MethodGetBalance, in, opts)
}

func (c *PotKeeperClient) Airdrop(ctx context.Context, in *AirdropRequest, opts ...grpc.CallOption) (*AirdropResponse, error) {
	return invoke[AirdropResponse](ctx, c, MethodAirdrop, in, opts)
}

func (c *PotKeeperClient) GetHistory(ctx context.Context, in *GetHistoryRequest, opts ...grpc.CallOption) (*GetHistoryResponse, error) {
	return invoke[GetHistoryResponse](ctx, c, MethodGetHistory, in, opts)
}
