package holdings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context, addr cryptox.Address) (uint64, error) {
	return r.get(ctx, `
		SELECT amount
		FROM holdings
		WHERE address = $1`, addr)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, addr cryptox.Address) (uint64, error) {
	return r.get(ctx, `
		SELECT amount
		FROM holdings
		WHERE address = $1
		FOR UPDATE`, addr)
}

func (r *PostgresRepository) get(ctx context.Context, query string, addr cryptox.Address) (uint64, error) {
	var amount dbx.U64
	if err := r.db.QueryRowContext(ctx, query, addr).Scan(&amount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("db error: %w", err)
	}
	return uint64(amount), nil
}

func (r *PostgresRepository) Set(ctx context.Context, addr cryptox.Address, amount uint64) error {
	query := `
		INSERT INTO holdings (address, amount)
		VALUES ($1, $2)
		ON CONFLICT (address) DO UPDATE SET amount = EXCLUDED.amount`

	if _, err := r.db.ExecContext(ctx, query, addr, dbx.U64(amount)); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
