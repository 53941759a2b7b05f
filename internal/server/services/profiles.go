package services

import (
	"context"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
)

type ProfileService struct {
	env *Env
}

func NewProfileService(env *Env) *ProfileService {
	return &ProfileService{env: env}
}

// InitializeUser creates the signer's profile. Each owner has exactly one.
func (s *ProfileService) InitializeUser(ctx context.Context, p Proof, fields models.ProfileFields) (*models.UserProfile, error) {
	now := s.env.Clock.Now()

	if err := s.env.Verifier.Verify(ctx, p, now); err != nil {
		return nil, err
	}

	addr, bump, err := s.env.Deriver.ProfileAddress(p.Signer)
	if err != nil {
		return nil, err
	}
	deposit, err := s.env.deposit(models.ProfileSpace)
	if err != nil {
		return nil, err
	}

	ts := timex.Unix(now)
	profile := &models.UserProfile{
		Address:       addr,
		Authority:     p.Signer,
		ProfileFields: fields,
		Bump:          bump,
		Deposit:       deposit,
		CreatedAt:     ts,
		UpdatedAt:     ts,
	}

	err = s.env.Repos.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.Profiles().Create(ctx, profile); err != nil {
			return err
		}
		return s.env.collectRent(ctx, r, p, deposit)
	})
	if err != nil {
		return nil, err
	}

	s.env.Metrics.Event(metrics.EventProfile)
	s.env.Metrics.ValueMoved(models.TransferRent, deposit)
	s.env.Logger.Info(ctx, "profile initialized", "profile", addr, "authority", p.Signer)
	return profile, nil
}

// UpdateUser overwrites the display fields of the signer's profile.
func (s *ProfileService) UpdateUser(ctx context.Context, p Proof, fields models.ProfileFields) (*models.UserProfile, error) {
	now := s.env.Clock.Now()

	if err := s.env.Verifier.Verify(ctx, p, now); err != nil {
		return nil, err
	}

	addr, _, err := s.env.Deriver.ProfileAddress(p.Signer)
	if err != nil {
		return nil, err
	}

	var profile *models.UserProfile
	err = s.env.Repos.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		var err error
		profile, err = r.Profiles().GetForUpdate(ctx, addr)
		if err != nil {
			return err
		}
		if profile.Authority != p.Signer {
			return common.ErrorUnauthorized
		}
		profile.ProfileFields = fields
		profile.UpdatedAt = timex.Unix(now)
		return r.Profiles().Update(ctx, profile)
	})
	if err != nil {
		return nil, err
	}

	s.env.Logger.Info(ctx, "profile updated", "profile", addr)
	return profile, nil
}

func (s *ProfileService) GetProfile(ctx context.Context, owner cryptox.Address) (*models.UserProfile, error) {
	addr, _, err := s.env.Deriver.ProfileAddress(owner)
	if err != nil {
		return nil, err
	}
	return s.env.Repos.Read().Profiles().Get(ctx, addr)
}
