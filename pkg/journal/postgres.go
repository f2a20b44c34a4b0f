package journal

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SCPrime/ai-Trader-sub001/pkg/models"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS order_history (
    seq         BIGSERIAL PRIMARY KEY,
    id          TEXT NOT NULL,
    ts          TIMESTAMPTZ NOT NULL,
    symbol      TEXT NOT NULL,
    side        TEXT NOT NULL,
    qty         BIGINT NOT NULL,
    order_type  TEXT NOT NULL,
    limit_price FLOAT8 NOT NULL DEFAULT 0,
    status      TEXT NOT NULL,
    dry_run     BOOLEAN NOT NULL DEFAULT FALSE
)`

// PostgresRepository persists the journal in a single table ordered by an
// insertion sequence, newest rows read first.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(ctx context.Context, dsn string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, historySchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create order_history table: %w", err)
	}
	return &PostgresRepository{pool: pool}, nil
}

func (p *PostgresRepository) Read(ctx context.Context) ([]models.OrderRecord, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, ts, symbol, side, qty, order_type, limit_price, status, dry_run
		 FROM order_history ORDER BY seq DESC`)
	if err != nil {
		return nil, fmt.Errorf("query order_history: %w", err)
	}
	defer rows.Close()

	var recs []models.OrderRecord
	for rows.Next() {
		var rec models.OrderRecord
		if err := rows.Scan(&rec.ID, &rec.Timestamp, &rec.Symbol, &rec.Side,
			&rec.Qty, &rec.Type, &rec.LimitPrice, &rec.Status, &rec.DryRun); err != nil {
			return nil, fmt.Errorf("scan order record: %w", err)
		}
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read order_history rows: %w", err)
	}
	return recs, nil
}

func (p *PostgresRepository) Append(ctx context.Context, rec models.OrderRecord) error {
	_, err := p.pool.Exec(ctx,
		`INSERT INTO order_history (id, ts, symbol, side, qty, order_type, limit_price, status, dry_run)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.ID, rec.Timestamp, rec.Symbol, rec.Side, rec.Qty, rec.Type,
		rec.LimitPrice, rec.Status, rec.DryRun)
	if err != nil {
		return fmt.Errorf("insert order record: %w", err)
	}
	return nil
}

func (p *PostgresRepository) Prune(ctx context.Context, max int) error {
	_, err := p.pool.Exec(ctx,
		`DELETE FROM order_history WHERE seq NOT IN
		 (SELECT seq FROM order_history ORDER BY seq DESC LIMIT $1)`, max)
	if err != nil {
		return fmt.Errorf("prune order_history: %w", err)
	}
	return nil
}

func (p *PostgresRepository) Clear(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM order_history`); err != nil {
		return fmt.Errorf("clear order_history: %w", err)
	}
	return nil
}

func (p *PostgresRepository) Close() {
	p.pool.Close()
}
