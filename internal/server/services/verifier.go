package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/server/guard"
	"github.com/dmitrijs2005/potkeeper/internal/server/ledger"
	"github.com/dmitrijs2005/potkeeper/internal/timex"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
)

// Proof is a caller's signature over the canonical payload of one request.
type Proof struct {
	Signer    cryptox.Address
	IssuedAt  uint64
	Payload   []byte
	Signature []byte
}

func (p Proof) authorization() ledger.UserSignature {
	return ledger.UserSignature{Key: p.Signer, Message: p.Payload, Signature: p.Signature}
}

// Verifier checks that a request was signed by its signer recently and has
// not been processed before.
type Verifier struct {
	store  guard.Store
	window time.Duration
}

func NewVerifier(store guard.Store, window time.Duration) *Verifier {
	return &Verifier{store: store, window: window}
}

// Verify checks the signing window and the signature, then claims the
// payload digest. The claim is taken before the caller's transaction runs, so
// a request that later fails, even on a transient storage error, must be
// signed again to be retried.
func (v *Verifier) Verify(ctx context.Context, p Proof, now time.Time) error {
	skew := now.Sub(timex.FromUnix(p.IssuedAt))
	if skew < 0 {
		skew = -skew
	}
	if skew > v.window {
		return common.ErrSignatureExpired
	}
	if !cryptox.Verify(p.Signer, p.Payload, p.Signature) {
		return common.ErrorUnauthorized
	}

	// The digest stays claimed for longer than any IssuedAt it covers can
	// remain inside the window.
	key := "req:" + hash.Sha256(p.Payload).StringBE()
	fresh, err := v.store.Claim(ctx, key, 2*v.window+time.Second)
	if err != nil {
		return fmt.Errorf("replay guard: %w", err)
	}
	if !fresh {
		return common.ErrReplayedRequest
	}
	return nil
}
