// Package services contains application services for the PotKeeper wallet
// client. The wallet service owns the local signing key: it creates and
// unlocks the sealed key in the keystore, logs in with a signed challenge and
// signs every mutating request it sends.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/api"
	"github.com/dmitrijs2005/potkeeper/internal/client/client"
	"github.com/dmitrijs2005/potkeeper/internal/client/repositories/keystore"
	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
)

const saltSize = 16

// WalletService defines the wallet operations of the CLI.
//
// Key management:
//   - Create: generate a key and seal it under password.
//   - Unlock / Lock: open the sealed key for signing, or drop it.
//   - Forget: delete the sealed key from the keystore.
//
// Every other call needs an unlocked wallet, and the mutating ones need a
// prior Login.
type WalletService interface {
	Create(ctx context.Context, password []byte) (cryptox.Address, error)
	Unlock(ctx context.Context, password []byte) (cryptox.Address, error)
	Lock()
	Forget(ctx context.Context) error
	Address() (cryptox.Address, error)
	HasKey(ctx context.Context) (bool, error)

	Login(ctx context.Context) error
	LoggedIn() bool
	Ping(ctx context.Context) (*api.PingResponse, error)
	Close(ctx context.Context) error

	Profile(ctx context.Context) (*api.Profile, error)
	SaveProfile(ctx context.Context, fields api.ProfileFields) (*api.Profile, bool, error)

	CreatePot(ctx context.Context, name string, unlock time.Time) (*api.Pot, error)
	Deposit(ctx context.Context, pot string, amount uint64) (*api.Pot, error)
	Withdraw(ctx context.Context, pot, recipient string, amount uint64) (*api.Pot, error)
	ClosePot(ctx context.Context, pot string) (*api.CloseSavingsPotResponse, error)
	Pot(ctx context.Context, pot string) (*api.Pot, error)
	Pots(ctx context.Context) ([]api.Pot, error)

	Balance(ctx context.Context) (uint64, error)
	Airdrop(ctx context.Context, amount uint64) (uint64, error)
	History(ctx context.Context, limit int) ([]api.Transfer, error)
}

type wallet struct {
	client client.Client
	keys   keystore.Repository
	clock  timex.Clock

	mu      sync.Mutex
	key     *cryptox.KeyPair
	deriver *cryptox.Deriver
}

// NewWalletService constructs a WalletService bound to the given API client
// and keystore.
func NewWalletService(c client.Client, keys keystore.Repository, clock timex.Clock) WalletService {
	return &wallet{client: c, keys: keys, clock: clock}
}

// Create generates a fresh key pair, seals its private scalar with AES-GCM
// under an argon2id key derived from password and stores it. The wallet is
// left unlocked.
func (w *wallet) Create(ctx context.Context, password []byte) (cryptox.Address, error) {
	kp, err := cryptox.GenerateKey()
	if err != nil {
		return cryptox.Address{}, fmt.Errorf("generate key: %w", err)
	}

	salt := common.GenerateRandByteArray(saltSize)
	sealKey := cryptox.DeriveKey(password, salt)
	defer common.WipeByteArray(sealKey)

	plain := kp.Bytes()
	defer common.WipeByteArray(plain)

	ciphertext, nonce, err := cryptox.Seal(plain, sealKey)
	if err != nil {
		return cryptox.Address{}, fmt.Errorf("seal key: %w", err)
	}

	addr := kp.Address()
	err = w.keys.Save(ctx, &keystore.SealedKey{
		Address:    addr.String(),
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: ciphertext,
		CreatedAt:  w.clock.Now(),
	})
	if err != nil {
		return cryptox.Address{}, err
	}

	w.mu.Lock()
	w.key = kp
	w.mu.Unlock()
	return addr, nil
}

// Unlock opens the stored key with password. A wrong password yields
// client.ErrUnauthorized.
func (w *wallet) Unlock(ctx context.Context, password []byte) (cryptox.Address, error) {
	sealed, err := w.keys.Load(ctx)
	if err != nil {
		return cryptox.Address{}, err
	}

	sealKey := cryptox.DeriveKey(password, sealed.Salt)
	defer common.WipeByteArray(sealKey)

	plain, err := cryptox.Open(sealed.Ciphertext, sealed.Nonce, sealKey)
	if err != nil {
		return cryptox.Address{}, client.ErrUnauthorized
	}
	defer common.WipeByteArray(plain)

	kp, err := cryptox.KeyFromBytes(plain)
	if err != nil {
		return cryptox.Address{}, fmt.Errorf("restore key: %w", err)
	}
	if kp.Address().String() != sealed.Address {
		return cryptox.Address{}, fmt.Errorf("keystore address mismatch: %w", common.ErrorInternal)
	}

	w.mu.Lock()
	w.key = kp
	w.mu.Unlock()
	return kp.Address(), nil
}

func (w *wallet) Lock() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.key = nil
}

func (w *wallet) Forget(ctx context.Context) error {
	if err := w.keys.Delete(ctx); err != nil {
		return err
	}
	w.Lock()
	return nil
}

func (w *wallet) HasKey(ctx context.Context) (bool, error) {
	_, err := w.keys.Load(ctx)
	if errors.Is(err, common.ErrorNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (w *wallet) signer() (*cryptox.KeyPair, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.key == nil {
		return nil, client.ErrWalletLocked
	}
	return w.key, nil
}

func (w *wallet) Address() (cryptox.Address, error) {
	kp, err := w.signer()
	if err != nil {
		return cryptox.Address{}, err
	}
	return kp.Address(), nil
}

// Login answers the server's challenge with a signature of the wallet key.
func (w *wallet) Login(ctx context.Context) error {
	kp, err := w.signer()
	if err != nil {
		return err
	}
	addr := kp.Address()

	nonce, err := w.client.GetChallenge(ctx, addr.String())
	if err != nil {
		return fmt.Errorf("get challenge: %w", err)
	}
	if err := w.client.Login(ctx, addr.String(), kp.Sign(api.LoginMessage(addr, nonce))); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	return nil
}

func (w *wallet) LoggedIn() bool {
	return w.client.LoggedIn()
}

func (w *wallet) Ping(ctx context.Context) (*api.PingResponse, error) {
	return w.client.Ping(ctx)
}

func (w *wallet) Close(ctx context.Context) error {
	w.Lock()
	return w.client.Close()
}

// sign builds the Signed envelope of a request issued now.
func (w *wallet) sign(payload func(signer cryptox.Address, issuedAt uint64) []byte) (api.Signed, error) {
	kp, err := w.signer()
	if err != nil {
		return api.Signed{}, err
	}
	addr := kp.Address()
	at := timex.Unix(w.clock.Now())
	return api.Signed{
		Signer:    addr.String(),
		IssuedAt:  at,
		Signature: kp.Sign(payload(addr, at)),
	}, nil
}

// programDeriver returns a Deriver for the server's program id, learned from
// Ping on first use.
func (w *wallet) programDeriver(ctx context.Context) (*cryptox.Deriver, error) {
	w.mu.Lock()
	d := w.deriver
	w.mu.Unlock()
	if d != nil {
		return d, nil
	}

	resp, err := w.client.Ping(ctx)
	if err != nil {
		return nil, err
	}
	d, err = cryptox.NewDeriver(resp.ProgramID)
	if err != nil {
		return nil, fmt.Errorf("server program id: %w", err)
	}

	w.mu.Lock()
	w.deriver = d
	w.mu.Unlock()
	return d, nil
}
