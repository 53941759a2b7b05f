package ledger

import (
	"errors"

	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
)

var (
	errSignerMismatch   = errors.New("signer is not the source account")
	errBadSignature     = errors.New("invalid signature")
	errSeedsMismatch    = errors.New("seeds do not derive the source account")
	errMissingAuthority = errors.New("missing authorization")
)

// Authorization proves the right to move value out of an account.
type Authorization interface {
	Authorize(d *cryptox.Deriver, from cryptox.Address) error
}

// UserSignature authorizes a debit from a user account: Key must be the
// source and Signature must be its signature over Message.
type UserSignature struct {
	Key       cryptox.Address
	Message   []byte
	Signature []byte
}

func (a UserSignature) Authorize(_ *cryptox.Deriver, from cryptox.Address) error {
	if a.Key != from {
		return errSignerMismatch
	}
	if !cryptox.Verify(a.Key, a.Message, a.Signature) {
		return errBadSignature
	}
	return nil
}

// DerivedSeeds authorizes a debit from a derived account. No private key
// exists for such an account; the seeds and bump that produced it stand in.
type DerivedSeeds struct {
	Seeds [][]byte
	Bump  byte
}

func (a DerivedSeeds) Authorize(d *cryptox.Deriver, from cryptox.Address) error {
	if !d.VerifyProgramAddress(from, a.Seeds, a.Bump) {
		return errSeedsMismatch
	}
	return nil
}
