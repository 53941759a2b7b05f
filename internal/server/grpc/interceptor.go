package grpc

import (
	"context"
	"path"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/api"
	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
)

type ctxKey string

const callerKey ctxKey = "caller"

// protected lists the methods that need a logged-in caller.
var protected = map[string]bool{
	api.FullMethod(api.MethodInitializeUser):   true,
	api.FullMethod(api.MethodUpdateUser):       true,
	api.FullMethod(api.MethodCreateSavingsPot): true,
	api.FullMethod(api.MethodDepositToPot):     true,
	api.FullMethod(api.MethodWithdrawFromPot):  true,
	api.FullMethod(api.MethodCloseSavingsPot):  true,
	api.FullMethod(api.MethodAirdrop):          true,
}

func callerFromContext(ctx context.Context) (cryptox.Address, bool) {
	a, ok := ctx.Value(callerKey).(cryptox.Address)
	return a, ok
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	if protected[info.FullMethod] {
		var accessToken string
		if md, ok := metadata.FromIncomingContext(ctx); ok {
			values := md.Get(common.AccessTokenHeaderName)
			if len(values) > 0 {
				accessToken = values[0]
			}
		}
		if len(accessToken) == 0 {
			return nil, common.ErrInvalidToken
		}

		caller, err := s.svc.Auth.ParseAccessToken(accessToken)
		if err != nil {
			return nil, err
		}
		ctx = context.WithValue(ctx, callerKey, caller)
	}

	return handler(ctx, req)
}

// observeInterceptor records every call and turns domain errors into gRPC
// statuses.
func (s *GRPCServer) observeInterceptor(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
	start := time.Now()
	resp, err := handler(ctx, req)
	method := path.Base(info.FullMethod)
	s.metrics.ObserveRPC(method, err, time.Since(start))

	if err == nil {
		return resp, nil
	}
	if api.Code(err) == codes.Internal {
		s.logger.Error(ctx, "request failed", "method", method, "error", err)
	} else {
		s.logger.Debug(ctx, "request rejected", "method", method, "reason", common.Reason(err))
	}
	return nil, api.ToStatus(err)
}
