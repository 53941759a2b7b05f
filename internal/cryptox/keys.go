package cryptox

import (
	"crypto/elliptic"
	"fmt"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/crypto/keys"
)

// KeyPair is a user identity: a secp256r1 private key whose compressed
// public key is the user's address.
type KeyPair struct {
	priv *keys.PrivateKey
}

func GenerateKey() (*KeyPair, error) {
	priv, err := keys.NewPrivateKey()
	if err != nil {
		return nil, err
	}
	return &KeyPair{priv: priv}, nil
}

// KeyFromBytes restores a key pair from its 32-byte scalar.
func KeyFromBytes(b []byte) (*KeyPair, error) {
	priv, err := keys.NewPrivateKeyFromBytes(b)
	if err != nil {
		return nil, err
	}
	return &KeyPair{priv: priv}, nil
}

// Bytes returns the private scalar. Callers wipe it after use.
func (k *KeyPair) Bytes() []byte { return k.priv.Bytes() }

func (k *KeyPair) PublicKey() *keys.PublicKey { return k.priv.PublicKey() }

func (k *KeyPair) Address() Address {
	var a Address
	copy(a[:], k.priv.PublicKey().Bytes())
	return a
}

// Sign returns a 64-byte r||s signature over sha256(msg).
func (k *KeyPair) Sign(msg []byte) []byte {
	return k.priv.Sign(msg)
}

// PublicKeyFromAddress decodes a user address. Derived addresses fail here
// by construction.
func PublicKeyFromAddress(a Address) (*keys.PublicKey, error) {
	pub, err := keys.NewPublicKeyFromBytes(a[:], elliptic.P256())
	if err != nil {
		return nil, fmt.Errorf("%w: not a public key", common.ErrInvalidAddress)
	}
	return pub, nil
}

// Verify reports whether sig is a valid signature of msg by the key behind a.
func Verify(a Address, msg, sig []byte) bool {
	pub, err := PublicKeyFromAddress(a)
	if err != nil {
		return false
	}
	return pub.Verify(sig, hash.Sha256(msg).BytesBE())
}
