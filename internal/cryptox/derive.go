package cryptox

import (
	"crypto/elliptic"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
)

// Seed limits. The bump counts as one seed.
const (
	MaxSeeds      = 16
	MaxSeedLength = 64
)

// Namespace tags separating the derived account kinds.
const (
	ProfileNamespace = "user-profile-v1"
	PotNamespace     = "savings-pot-v1"
	ReserveNamespace = "rent-reserve-v1"
)

// DefaultProgramID is the base58 program identifier mixed into every
// derivation unless configured otherwise.
const DefaultProgramID = "6VvJbGzNHbtZLWxmLTYPpRz2F3oMDxdL1YRgV3b51Ccz"

const derivationMarker = "ProgramDerivedAddress"

var (
	ErrOnCurve      = errors.New("derived address is on the curve")
	ErrTooManySeeds = errors.New("too many seeds")
	ErrSeedTooLong  = errors.New("seed too long")
)

// onCurve reports whether b decodes as a secp256r1 point, i.e. whether some
// private key could sign for it.
var onCurve = func(b []byte) bool {
	_, err := keys.NewPublicKeyFromBytes(b, elliptic.P256())
	return err == nil
}

// Deriver computes program-derived addresses: deterministic, keyless
// addresses owned by the program and bound to a list of seeds.
type Deriver struct {
	programID []byte
}

// NewDeriver parses a base58 program id.
func NewDeriver(programID string) (*Deriver, error) {
	id, err := base58.Decode(programID)
	if err != nil {
		return nil, fmt.Errorf("program id: %w", err)
	}
	if len(id) == 0 {
		return nil, errors.New("program id: empty")
	}
	return &Deriver{programID: id}, nil
}

// ProgramID returns the base58 program id.
func (d *Deriver) ProgramID() string { return base58.Encode(d.programID) }

// CreateProgramAddress hashes seeds, bump, program id and the marker into a
// candidate and rejects it when it lies on the curve.
func (d *Deriver) CreateProgramAddress(seeds [][]byte, bump byte) (Address, error) {
	if len(seeds)+1 > MaxSeeds {
		return Address{}, ErrTooManySeeds
	}
	n := len(derivationMarker) + len(d.programID) + 1
	for _, s := range seeds {
		if len(s) > MaxSeedLength {
			return Address{}, ErrSeedTooLong
		}
		n += len(s)
	}

	buf := make([]byte, 0, n)
	for _, s := range seeds {
		buf = append(buf, s...)
	}
	buf = append(buf, bump)
	buf = append(buf, d.programID...)
	buf = append(buf, derivationMarker...)

	var a Address
	a[0] = 0x02
	copy(a[1:], hash.Sha256(buf).BytesBE())

	if onCurve(a[:]) {
		return Address{}, ErrOnCurve
	}
	return a, nil
}

// FindProgramAddress searches bumps from 255 down and returns the first
// off-curve address.
func (d *Deriver) FindProgramAddress(seeds [][]byte) (Address, byte, error) {
	for bump := 255; bump >= 0; bump-- {
		a, err := d.CreateProgramAddress(seeds, byte(bump))
		switch {
		case err == nil:
			return a, byte(bump), nil
		case errors.Is(err, ErrOnCurve):
			continue
		default:
			return Address{}, 0, err
		}
	}
	return Address{}, 0, common.ErrDerivationExhausted
}

// VerifyProgramAddress re-derives the address for seeds and bump and
// compares it with addr.
func (d *Deriver) VerifyProgramAddress(addr Address, seeds [][]byte, bump byte) bool {
	a, err := d.CreateProgramAddress(seeds, bump)
	return err == nil && a == addr
}

func ProfileSeeds(owner Address) [][]byte {
	return [][]byte{[]byte(ProfileNamespace), owner.Bytes()}
}

func PotSeeds(owner Address, name string) [][]byte {
	return [][]byte{[]byte(PotNamespace), owner.Bytes(), []byte(name)}
}

func ReserveSeeds() [][]byte {
	return [][]byte{[]byte(ReserveNamespace)}
}

func (d *Deriver) ProfileAddress(owner Address) (Address, byte, error) {
	return d.FindProgramAddress(ProfileSeeds(owner))
}

func (d *Deriver) PotAddress(owner Address, name string) (Address, byte, error) {
	return d.FindProgramAddress(PotSeeds(owner, name))
}

// ReserveAddress is the account holding storage deposits.
func (d *Deriver) ReserveAddress() (Address, byte, error) {
	return d.FindProgramAddress(ReserveSeeds())
}
