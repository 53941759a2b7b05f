package grpc

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/potkeeper/internal/api"
	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
	"github.com/dmitrijs2005/potkeeper/internal/server/services"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
)

var _ api.PotKeeperServer = (*GRPCServer)(nil)

// proof rebuilds the signed payload of a request. The signer must be the
// logged-in caller.
func (s *GRPCServer) proof(ctx context.Context, auth api.Signed, payload func(signer cryptox.Address) []byte) (services.Proof, error) {
	signer, err := parseAddress("signer", auth.Signer)
	if err != nil {
		return services.Proof{}, err
	}
	if caller, ok := callerFromContext(ctx); !ok || caller != signer {
		return services.Proof{}, fmt.Errorf("%w: signer is not the logged-in wallet", common.ErrorUnauthorized)
	}
	return services.Proof{
		Signer:    signer,
		IssuedAt:  auth.IssuedAt,
		Payload:   payload(signer),
		Signature: auth.Signature,
	}, nil
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK", ProgramID: s.programID, Time: timex.Unix(s.clock.Now())}, nil
}

func (s *GRPCServer) GetChallenge(ctx context.Context, req *api.GetChallengeRequest) (*api.GetChallengeResponse, error) {
	addr, err := parseAddress("address", req.Address)
	if err != nil {
		return nil, err
	}
	nonce, err := s.svc.Auth.GetChallenge(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &api.GetChallengeResponse{Nonce: nonce}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.LoginResponse, error) {
	addr, err := parseAddress("address", req.Address)
	if err != nil {
		return nil, err
	}
	tokens, err := s.svc.Auth.Login(ctx, addr, req.Signature)
	if err != nil {
		return nil, err
	}
	return &api.LoginResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) RefreshToken(ctx context.Context, req *api.RefreshTokenRequest) (*api.RefreshTokenResponse, error) {
	tokens, err := s.svc.Auth.RefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, err
	}
	return &api.RefreshTokenResponse{AccessToken: tokens.AccessToken, RefreshToken: tokens.RefreshToken}, nil
}

func (s *GRPCServer) InitializeUser(ctx context.Context, req *api.InitializeUserRequest) (*api.InitializeUserResponse, error) {
	p, err := s.proof(ctx, req.Auth, func(signer cryptox.Address) []byte {
		return api.InitializeUserPayload(signer, req.Auth.IssuedAt, req.Fields)
	})
	if err != nil {
		return nil, err
	}
	profile, err := s.svc.Profiles.InitializeUser(ctx, p, toFields(req.Fields))
	if err != nil {
		return nil, err
	}
	return &api.InitializeUserResponse{Profile: fromProfile(profile)}, nil
}

func (s *GRPCServer) UpdateUser(ctx context.Context, req *api.UpdateUserRequest) (*api.UpdateUserResponse, error) {
	p, err := s.proof(ctx, req.Auth, func(signer cryptox.Address) []byte {
		return api.UpdateUserPayload(signer, req.Auth.IssuedAt, req.Fields)
	})
	if err != nil {
		return nil, err
	}
	profile, err := s.svc.Profiles.UpdateUser(ctx, p, toFields(req.Fields))
	if err != nil {
		return nil, err
	}
	return &api.UpdateUserResponse{Profile: fromProfile(profile)}, nil
}

func (s *GRPCServer) GetProfile(ctx context.Context, req *api.GetProfileRequest) (*api.GetProfileResponse, error) {
	owner, err := parseAddress("owner", req.Owner)
	if err != nil {
		return nil, err
	}
	profile, err := s.svc.Profiles.GetProfile(ctx, owner)
	if err != nil {
		return nil, err
	}
	return &api.GetProfileResponse{Profile: fromProfile(profile)}, nil
}

func (s *GRPCServer) CreateSavingsPot(ctx context.Context, req *api.CreateSavingsPotRequest) (*api.CreateSavingsPotResponse, error) {
	p, err := s.proof(ctx, req.Auth, func(signer cryptox.Address) []byte {
		return api.CreatePotPayload(signer, req.Auth.IssuedAt, req.Name, req.UnlockTime)
	})
	if err != nil {
		return nil, err
	}
	pot, err := s.svc.Pots.CreateSavingsPot(ctx, p, req.Name, req.UnlockTime)
	if err != nil {
		return nil, err
	}
	return &api.CreateSavingsPotResponse{Pot: fromPot(pot)}, nil
}

func (s *GRPCServer) DepositToPot(ctx context.Context, req *api.DepositToPotRequest) (*api.DepositToPotResponse, error) {
	potAddr, err := parseAddress("pot", req.Pot)
	if err != nil {
		return nil, err
	}
	p, err := s.proof(ctx, req.Auth, func(signer cryptox.Address) []byte {
		return api.DepositPayload(signer, req.Auth.IssuedAt, potAddr, req.Amount)
	})
	if err != nil {
		return nil, err
	}
	pot, err := s.svc.Pots.DepositToPot(ctx, p, potAddr, req.Amount)
	if err != nil {
		return nil, err
	}
	return &api.DepositToPotResponse{Pot: fromPot(pot)}, nil
}

func (s *GRPCServer) WithdrawFromPot(ctx context.Context, req *api.WithdrawFromPotRequest) (*api.WithdrawFromPotResponse, error) {
	potAddr, err := parseAddress("pot", req.Pot)
	if err != nil {
		return nil, err
	}
	recipient, err := parseAddress("recipient", req.Recipient)
	if err != nil {
		return nil, err
	}
	p, err := s.proof(ctx, req.Auth, func(signer cryptox.Address) []byte {
		return api.WithdrawPayload(signer, req.Auth.IssuedAt, potAddr, recipient, req.Amount)
	})
	if err != nil {
		return nil, err
	}
	pot, err := s.svc.Pots.WithdrawFromPot(ctx, p, potAddr, recipient, req.Amount)
	if err != nil {
		return nil, err
	}
	return &api.WithdrawFromPotResponse{Pot: fromPot(pot)}, nil
}

func (s *GRPCServer) CloseSavingsPot(ctx context.Context, req *api.CloseSavingsPotRequest) (*api.CloseSavingsPotResponse, error) {
	potAddr, err := parseAddress("pot", req.Pot)
	if err != nil {
		return nil, err
	}
	p, err := s.proof(ctx, req.Auth, func(signer cryptox.Address) []byte {
		return api.ClosePayload(signer, req.Auth.IssuedAt, potAddr)
	})
	if err != nil {
		return nil, err
	}
	res, err := s.svc.Pots.CloseSavingsPot(ctx, p, potAddr)
	if err != nil {
		return nil, err
	}
	return &api.CloseSavingsPotResponse{Swept: res.Swept, Refunded: res.Refunded}, nil
}

// GetPot looks a pot up by address, or by owner and name when no address
// is given.
func (s *GRPCServer) GetPot(ctx context.Context, req *api.GetPotRequest) (*api.GetPotResponse, error) {
	var pot *models.SavingsPot
	if req.Pot != "" {
		addr, err := parseAddress("pot", req.Pot)
		if err != nil {
			return nil, err
		}
		if pot, err = s.svc.Pots.GetPot(ctx, addr); err != nil {
			return nil, err
		}
	} else {
		owner, err := parseAddress("owner", req.Owner)
		if err != nil {
			return nil, err
		}
		if pot, err = s.svc.Pots.FindPot(ctx, owner, req.Name); err != nil {
			return nil, err
		}
	}
	return &api.GetPotResponse{Pot: fromPot(pot)}, nil
}

func (s *GRPCServer) ListPots(ctx context.Context, req *api.ListPotsRequest) (*api.ListPotsResponse, error) {
	owner, err := parseAddress("owner", req.Owner)
	if err != nil {
		return nil, err
	}
	list, err := s.svc.Pots.ListPots(ctx, owner)
	if err != nil {
		return nil, err
	}
	resp := &api.ListPotsResponse{Pots: make([]api.Pot, 0, len(list))}
	for _, p := range list {
		resp.Pots = append(resp.Pots, fromPot(p))
	}
	return resp, nil
}

func (s *GRPCServer) GetBalance(ctx context.Context, req *api.GetBalanceRequest) (*api.GetBalanceResponse, error) {
	addr, err := parseAddress("address", req.Address)
	if err != nil {
		return nil, err
	}
	balance, err := s.svc.Accounts.Balance(ctx, addr)
	if err != nil {
		return nil, err
	}
	return &api.GetBalanceResponse{Address: addr.String(), Balance: balance}, nil
}

func (s *GRPCServer) Airdrop(ctx context.Context, req *api.AirdropRequest) (*api.AirdropResponse, error) {
	addr, err := parseAddress("address", req.Address)
	if err != nil {
		return nil, err
	}
	balance, err := s.svc.Accounts.Airdrop(ctx, addr, req.Amount)
	if err != nil {
		return nil, err
	}
	return &api.AirdropResponse{Balance: balance}, nil
}

func (s *GRPCServer) GetHistory(ctx context.Context, req *api.GetHistoryRequest) (*api.GetHistoryResponse, error) {
	addr, err := parseAddress("address", req.Address)
	if err != nil {
		return nil, err
	}
	list, err := s.svc.Accounts.History(ctx, addr, req.Limit)
	if err != nil {
		return nil, err
	}
	resp := &api.GetHistoryResponse{Transfers: make([]api.Transfer, 0, len(list))}
	for _, t := range list {
		resp.Transfers = append(resp.Transfers, fromTransfer(t))
	}
	return resp, nil
}
