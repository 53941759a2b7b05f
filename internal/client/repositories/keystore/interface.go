package keystore

import (
	"context"
	"time"
)

// SealedKey is the wallet signing key encrypted under a password-derived key.
type SealedKey struct {
	Address    string
	Salt       []byte
	Nonce      []byte
	Ciphertext []byte
	CreatedAt  time.Time
}

// Repository persists the single wallet key of a keystore file.
type Repository interface {
	// Save stores k. It fails with common.ErrAccountAlreadyExists when a key
	// is already present.
	Save(ctx context.Context, k *SealedKey) error
	// Load returns the stored key or common.ErrorNotFound.
	Load(ctx context.Context) (*SealedKey, error)
	// Delete removes the stored key. Deleting an empty keystore is a no-op.
	Delete(ctx context.Context) error
}
