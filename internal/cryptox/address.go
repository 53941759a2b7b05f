// Package cryptox holds the cryptographic primitives of PotKeeper: 33-byte
// addresses, user key pairs, deterministic program-derived addresses and the
// password-based sealing used by the client keystore.
package cryptox

import (
	"bytes"
	"database/sql/driver"
	"fmt"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/mr-tron/base58"
)

// AddressLength is the size of every address: a compressed secp256r1 point
// for users, 0x02 followed by a sha256 digest for derived accounts.
const AddressLength = 33

// Address identifies an account. Its text form is base58.
type Address [AddressLength]byte

// ParseAddress decodes the base58 form.
func ParseAddress(s string) (Address, error) {
	b, err := base58.Decode(s)
	if err != nil {
		return Address{}, fmt.Errorf("%w: %v", common.ErrInvalidAddress, err)
	}
	return AddressFromBytes(b)
}

// AddressFromBytes copies b into an Address.
func AddressFromBytes(b []byte) (Address, error) {
	var a Address
	if len(b) != AddressLength {
		return a, fmt.Errorf("%w: length %d", common.ErrInvalidAddress, len(b))
	}
	copy(a[:], b)
	return a, nil
}

func (a Address) String() string { return base58.Encode(a[:]) }

// Bytes returns a copy of the raw address.
func (a Address) Bytes() []byte { return bytes.Clone(a[:]) }

func (a Address) IsZero() bool { return a == Address{} }

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(b []byte) error {
	parsed, err := ParseAddress(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value stores the address as BYTEA.
func (a Address) Value() (driver.Value, error) {
	return a[:], nil
}

func (a *Address) Scan(src any) error {
	b, ok := src.([]byte)
	if !ok {
		return fmt.Errorf("cannot scan %T into Address", src)
	}
	parsed, err := AddressFromBytes(b)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
