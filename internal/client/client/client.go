package client

import (
	"context"

	"github.com/dmitrijs2005/potkeeper/internal/api"
)

// Client is the wallet's view of the PotKeeper backend.
type Client interface {
	Close() error
	Ping(ctx context.Context) (*api.PingResponse, error)

	GetChallenge(ctx context.Context, address string) (string, error)
	Login(ctx context.Context, address string, signature []byte) error
	LoggedIn() bool

	InitializeUser(ctx context.Context, req *api.InitializeUserRequest) (*api.Profile, error)
	UpdateUser(ctx context.Context, req *api.UpdateUserRequest) (*api.Profile, error)
	GetProfile(ctx context.Context, owner string) (*api.Profile, error)

	CreateSavingsPot(ctx context.Context, req *api.CreateSavingsPotRequest) (*api.Pot, error)
	DepositToPot(ctx context.Context, req *api.DepositToPotRequest) (*api.Pot, error)
	WithdrawFromPot(ctx context.Context, req *api.WithdrawFromPotRequest) (*api.Pot, error)
	CloseSavingsPot(ctx context.Context, req *api.CloseSavingsPotRequest) (*api.CloseSavingsPotResponse, error)
	GetPot(ctx context.Context, req *api.GetPotRequest) (*api.Pot, error)
	ListPots(ctx context.Context, owner string) ([]api.Pot, error)

	GetBalance(ctx context.Context, address string) (uint64, error)
	Airdrop(ctx context.Context, address string, amount uint64) (uint64, error)
	GetHistory(ctx context.Context, address string, limit int) ([]api.Transfer, error)
}
