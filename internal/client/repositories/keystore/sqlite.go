package keystore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/potkeeper/internal/common"
	"github.com/dmitrijs2005/potkeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Save(ctx context.Context, k *SealedKey) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO wallet_keys (id, address, salt, nonce, ciphertext, created_at)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, k.Address, k.Salt, k.Nonce, k.Ciphertext, k.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("failed to save wallet key: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to save wallet key: %w", err)
	}
	if n == 0 {
		return common.ErrAccountAlreadyExists
	}
	return nil
}

func (r *SQLiteRepository) Load(ctx context.Context) (*SealedKey, error) {
	var (
		k       SealedKey
		created int64
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT address, salt, nonce, ciphertext, created_at FROM wallet_keys WHERE id = 1
	`).Scan(&k.Address, &k.Salt, &k.Nonce, &k.Ciphertext, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load wallet key: %w", err)
	}
	k.CreatedAt = time.Unix(created, 0).UTC()
	return &k, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM wallet_keys`); err != nil {
		return fmt.Errorf("failed to delete wallet key: %w", err)
	}
	return nil
}
