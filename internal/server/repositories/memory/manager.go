// Package memory keeps every repository in process memory. It backs tests and
// the single-process development mode.
package memory

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/holdings"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/pots"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/profiles"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/potkeeper/internal/server/repositories/transfers"
)

type state struct {
	profiles  map[cryptox.Address]models.UserProfile
	pots      map[cryptox.Address]models.SavingsPot
	holdings  map[cryptox.Address]uint64
	transfers []models.Transfer
	tokens    map[string]models.RefreshToken
}

func newState() *state {
	return &state{
		profiles: map[cryptox.Address]models.UserProfile{},
		pots:     map[cryptox.Address]models.SavingsPot{},
		holdings: map[cryptox.Address]uint64{},
		tokens:   map[string]models.RefreshToken{},
	}
}

func (s *state) clone() *state {
	return &state{
		profiles:  maps.Clone(s.profiles),
		pots:      maps.Clone(s.pots),
		holdings:  maps.Clone(s.holdings),
		transfers: slices.Clone(s.transfers),
		tokens:    maps.Clone(s.tokens),
	}
}

// access runs fn against the state a repository set is bound to.
type access func(fn func(st *state) error) error

type repositories struct {
	do access
}

func (r repositories) Profiles() profiles.Repository           { return profileRepo(r) }
func (r repositories) Pots() pots.Repository                   { return potRepo(r) }
func (r repositories) Holdings() holdings.Repository           { return holdingRepo(r) }
func (r repositories) Transfers() transfers.Repository         { return transferRepo(r) }
func (r repositories) RefreshTokens() refreshtokens.Repository { return tokenRepo(r) }

// Manager is a RepositoryManager over process memory. Transactions are
// serialized: WithTx works on a copy of the state and swaps it in only when
// fn succeeds.
type Manager struct {
	mu sync.Mutex
	st *state
}

func NewManager() *Manager {
	return &Manager{st: newState()}
}

func (m *Manager) locked(fn func(st *state) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(m.st)
}

func (m *Manager) RunMigrations(ctx context.Context) error { return nil }

func (m *Manager) Read() repomanager.Repositories {
	return repositories{do: m.locked}
}

// WithTx must not call Read from inside fn.
func (m *Manager) WithTx(ctx context.Context, fn func(ctx context.Context, r repomanager.Repositories) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	draft := m.st.clone()
	err := fn(ctx, repositories{do: func(f func(st *state) error) error { return f(draft) }})
	if err != nil {
		return err
	}
	m.st = draft
	return nil
}

func (m *Manager) Close() error { return nil }
