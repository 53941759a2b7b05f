package memory

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
)

type profileRepo repositories

func (r profileRepo) Get(ctx context.Context, addr cryptox.Address) (*models.UserProfile, error) {
	var out *models.UserProfile
	err := r.do(func(st *state) error {
		p, ok := st.profiles[addr]
		if !ok {
			return common.ErrorNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r profileRepo) GetForUpdate(ctx context.Context, addr cryptox.Address) (*models.UserProfile, error) {
	return r.Get(ctx, addr)
}

func (r profileRepo) Create(ctx context.Context, p *models.UserProfile) error {
	return r.do(func(st *state) error {
		if _, ok := st.profiles[p.Address]; ok {
			return common.ErrAccountAlreadyExists
		}
		st.profiles[p.Address] = *p
		return nil
	})
}

func (r profileRepo) Update(ctx context.Context, p *models.UserProfile) error {
	return r.do(func(st *state) error {
		cur, ok := st.profiles[p.Address]
		if !ok {
			return common.ErrorNotFound
		}
		cur.ProfileFields = p.ProfileFields
		cur.UpdatedAt = p.UpdatedAt
		st.profiles[p.Address] = cur
		return nil
	})
}

type potRepo repositories

func (r potRepo) Get(ctx context.Context, addr cryptox.Address) (*models.SavingsPot, error) {
	var out *models.SavingsPot
	err := r.do(func(st *state) error {
		p, ok := st.pots[addr]
		if !ok {
			return common.ErrorNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r potRepo) GetForUpdate(ctx context.Context, addr cryptox.Address) (*models.SavingsPot, error) {
	return r.Get(ctx, addr)
}

func (r potRepo) Create(ctx context.Context, p *models.SavingsPot) error {
	return r.do(func(st *state) error {
		if _, ok := st.pots[p.Address]; ok {
			return common.ErrAccountAlreadyExists
		}
		st.pots[p.Address] = *p
		return nil
	})
}

func (r potRepo) UpdateBalance(ctx context.Context, addr cryptox.Address, balance uint64) error {
	return r.do(func(st *state) error {
		p, ok := st.pots[addr]
		if !ok {
			return common.ErrorNotFound
		}
		p.Balance = balance
		st.pots[addr] = p
		return nil
	})
}

func (r potRepo) Delete(ctx context.Context, addr cryptox.Address) error {
	return r.do(func(st *state) error {
		if _, ok := st.pots[addr]; !ok {
			return common.ErrorNotFound
		}
		delete(st.pots, addr)
		return nil
	})
}

func (r potRepo) ListByAuthority(ctx context.Context, authority cryptox.Address) ([]*models.SavingsPot, error) {
	var out []*models.SavingsPot
	err := r.do(func(st *state) error {
		for _, p := range st.pots {
			if p.Authority == authority {
				out = append(out, &p)
			}
		}
		return nil
	})
	slices.SortFunc(out, func(a, b *models.SavingsPot) int { return strings.Compare(a.Name, b.Name) })
	return out, err
}

type holdingRepo repositories

func (r holdingRepo) Get(ctx context.Context, addr cryptox.Address) (uint64, error) {
	var out uint64
	err := r.do(func(st *state) error {
		out = st.holdings[addr]
		return nil
	})
	return out, err
}

func (r holdingRepo) GetForUpdate(ctx context.Context, addr cryptox.Address) (uint64, error) {
	return r.Get(ctx, addr)
}

func (r holdingRepo) Set(ctx context.Context, addr cryptox.Address, amount uint64) error {
	return r.do(func(st *state) error {
		st.holdings[addr] = amount
		return nil
	})
}

type transferRepo repositories

func (r transferRepo) Create(ctx context.Context, t *models.Transfer) error {
	return r.do(func(st *state) error {
		st.transfers = append(st.transfers, *t)
		return nil
	})
}

func (r transferRepo) ListByAddress(ctx context.Context, addr cryptox.Address, limit int) ([]*models.Transfer, error) {
	var out []*models.Transfer
	err := r.do(func(st *state) error {
		for i := len(st.transfers) - 1; i >= 0; i-- {
			t := st.transfers[i]
			if t.From == addr || t.To == addr {
				out = append(out, &t)
			}
		}
		return nil
	})
	slices.SortStableFunc(out, func(a, b *models.Transfer) int { return b.CreatedAt.Compare(a.CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, err
}

type tokenRepo repositories

func (r tokenRepo) Create(ctx context.Context, address string, token string, expires time.Time) error {
	return r.do(func(st *state) error {
		if _, ok := st.tokens[token]; ok {
			return common.ErrAccountAlreadyExists
		}
		st.tokens[token] = models.RefreshToken{Address: address, Token: token, Expires: expires}
		return nil
	})
}

func (r tokenRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	var out *models.RefreshToken
	err := r.do(func(st *state) error {
		rt, ok := st.tokens[token]
		if !ok {
			return common.ErrorNotFound
		}
		out = &rt
		return nil
	})
	return out, err
}

func (r tokenRepo) Delete(ctx context.Context, token string) error {
	return r.do(func(st *state) error {
		delete(st.tokens, token)
		return nil
	})
}
