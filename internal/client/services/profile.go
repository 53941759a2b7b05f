package services

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/potkeeper/internal/api"
	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
)

func (w *wallet) Profile(ctx context.Context) (*api.Profile, error) {
	owner, err := w.Address()
	if err != nil {
		return nil, err
	}
	return w.client.GetProfile(ctx, owner.String())
}

// SaveProfile initializes the wallet's profile, or updates it when one
// exists. The boolean reports whether the profile was created.
func (w *wallet) SaveProfile(ctx context.Context, fields api.ProfileFields) (*api.Profile, bool, error) {
	_, err := w.Profile(ctx)
	switch {
	case errors.Is(err, common.ErrorNotFound):
		auth, err := w.sign(func(signer cryptox.Address, at uint64) []byte {
			return api.InitializeUserPayload(signer, at, fields)
		})
		if err != nil {
			return nil, false, err
		}
		p, err := w.client.InitializeUser(ctx, &api.InitializeUserRequest{Fields: fields, Auth: auth})
		if err != nil {
			return nil, false, err
		}
		return p, true, nil
	case err != nil:
		return nil, false, err
	}

	auth, err := w.sign(func(signer cryptox.Address, at uint64) []byte {
		return api.UpdateUserPayload(signer, at, fields)
	})
	if err != nil {
		return nil, false, err
	}
	p, err := w.client.UpdateUser(ctx, &api.UpdateUserRequest{Fields: fields, Auth: auth})
	if err != nil {
		return nil, false, err
	}
	return p, false, nil
}
