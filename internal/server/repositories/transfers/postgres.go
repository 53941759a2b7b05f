package transfers

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/potkeeper/internal/cryptox"
	"github.com/dmitrijs2005/potkeeper/internal/dbx"
	"github.com/dmitrijs2005/potkeeper/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, t *models.Transfer) error {
	query := `
		INSERT INTO transfers (id, from_addr, to_addr, amount, kind, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	var from any
	if !t.From.IsZero() {
		from = t.From
	}
	if _, err := r.db.ExecContext(ctx, query, t.ID, from, t.To, dbx.U64(t.Amount), string(t.Kind), t.CreatedAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) ListByAddress(ctx context.Context, addr cryptox.Address, limit int) ([]*models.Transfer, error) {
	query := `
		SELECT id, from_addr, to_addr, amount, kind, created_at
		FROM transfers
		WHERE from_addr = $1 OR to_addr = $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.QueryContext(ctx, query, addr, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.Transfer
	for rows.Next() {
		var (
			t      models.Transfer
			from   []byte
			amount dbx.U64
			kind   string
		)
		if err := rows.Scan(&t.ID, &from, &t.To, &amount, &kind, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if from != nil {
			if t.From, err = cryptox.AddressFromBytes(from); err != nil {
				return nil, fmt.Errorf("db error: %w", err)
			}
		}
		t.Amount, t.Kind = uint64(amount), models.TransferKind(kind)
		result = append(result, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
