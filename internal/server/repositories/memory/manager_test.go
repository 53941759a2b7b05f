package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/repomanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	_ repomanager.RepositoryManager = (*Manager)(nil)

	owner = cryptox.Address{0x03, 1}
	potA  = cryptox.Address{0x02, 0xA}
	potB  = cryptox.Address{0x02, 0xB}
)

func TestWithTx_CommitsOnSuccess(t *testing.T) {
	m := NewManager()
	ctx := context.Background()

	err := m.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		if err := r.Pots().Create(ctx, &models.SavingsPot{Address: potA, Authority: owner, Name: "a"}); err != nil {
			return err
		}
		return r.Holdings().Set(ctx, potA, 5)
	})
	require.NoError(t, err)

	p, err := m.Read().Pots().Get(ctx, potA)
	require.NoError(t, err)
	assert.Equal(t, "a", p.Name)
	h, _ := m.Read().Holdings().Get(ctx, potA)
	assert.Equal(t, uint64(5), h)
}

func TestWithTx_DiscardsOnError(t *testing.T) {
	m := NewManager()
	ctx := context.Background()
	require.NoError(t, m.Read().Holdings().Set(ctx, owner, 100))

	boom := errors.New("boom")
	err := m.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		require.NoError(t, r.Holdings().Set(ctx, owner, 0))
		require.NoError(t, r.Pots().Create(ctx, &models.SavingsPot{Address: potA, Authority: owner, Name: "a"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	h, _ := m.Read().Holdings().Get(ctx, owner)
	assert.Equal(t, uint64(100), h)
	_, err = m.Read().Pots().Get(ctx, potA)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestWithTx_Serialized(t *testing.T) {
	m := NewManager()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
				h, err := r.Holdings().GetForUpdate(ctx, owner)
				if err != nil {
					return err
				}
				return r.Holdings().Set(ctx, owner, h+1)
			})
		}()
	}
	wg.Wait()

	h, _ := m.Read().Holdings().Get(ctx, owner)
	assert.Equal(t, uint64(50), h)
}

func TestProfiles(t *testing.T) {
	ctx := context.Background()
	r := NewManager().Read().Profiles()

	p := &models.UserProfile{Address: potA, Authority: owner, ProfileFields: models.NewProfileFields("alice", "", "", ""), CreatedAt: 1}
	require.NoError(t, r.Create(ctx, p))
	assert.ErrorIs(t, r.Create(ctx, p), common.ErrAccountAlreadyExists)

	upd := *p
	upd.ProfileFields = models.NewProfileFields("bob", "x", "", "")
	upd.Authority = cryptox.Address{0x03, 99}
	upd.UpdatedAt = 7
	require.NoError(t, r.Update(ctx, &upd))

	got, err := r.Get(ctx, potA)
	require.NoError(t, err)
	assert.Equal(t, "bob", got.UsernameString())
	assert.Equal(t, owner, got.Authority, "authority is immutable")
	assert.Equal(t, uint64(7), got.UpdatedAt)

	assert.ErrorIs(t, r.Update(ctx, &models.UserProfile{Address: potB}), common.ErrorNotFound)
}

func TestPots(t *testing.T) {
	ctx := context.Background()
	r := NewManager().Read().Pots()

	require.NoError(t, r.Create(ctx, &models.SavingsPot{Address: potB, Authority: owner, Name: "b"}))
	require.NoError(t, r.Create(ctx, &models.SavingsPot{Address: potA, Authority: owner, Name: "a"}))
	require.NoError(t, r.Create(ctx, &models.SavingsPot{Address: cryptox.Address{0x02, 0xC}, Authority: potA, Name: "c"}))

	list, err := r.ListByAuthority(ctx, owner)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].Name)
	assert.Equal(t, "b", list[1].Name)

	require.NoError(t, r.UpdateBalance(ctx, potA, 42))
	got, _ := r.Get(ctx, potA)
	assert.Equal(t, uint64(42), got.Balance)

	got.Balance = 1
	again, _ := r.Get(ctx, potA)
	assert.Equal(t, uint64(42), again.Balance, "returned records are copies")

	require.NoError(t, r.Delete(ctx, potA))
	assert.ErrorIs(t, r.Delete(ctx, potA), common.ErrorNotFound)
	assert.ErrorIs(t, r.UpdateBalance(ctx, potA, 1), common.ErrorNotFound)
}

func TestTransfers_NewestFirst(t *testing.T) {
	ctx := context.Background()
	r := NewManager().Read().Transfers()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, to := range []cryptox.Address{potA, potB, potA, potA} {
		require.NoError(t, r.Create(ctx, &models.Transfer{ID: string(rune('1' + i)), From: owner, To: to, Amount: uint64(i), CreatedAt: base.Add(time.Duration(i) * time.Minute)}))
	}

	list, err := r.ListByAddress(ctx, potA, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "4", list[0].ID)
	assert.Equal(t, "3", list[1].ID)

	all, _ := r.ListByAddress(ctx, owner, 0)
	assert.Len(t, all, 4)
}

func TestRefreshTokens(t *testing.T) {
	ctx := context.Background()
	r := NewManager().Read().RefreshTokens()
	exp := time.Now().Add(time.Hour)

	require.NoError(t, r.Create(ctx, "addr", "tok", exp))
	got, err := r.Find(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "addr", got.Address)

	require.NoError(t, r.Delete(ctx, "tok"))
	require.NoError(t, r.Delete(ctx, "tok"))
	_, err = r.Find(ctx, "tok")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
