package postgres

import (
	"context"
	"fmt"
	"time"

	"exrates/internal/domain"
	"exrates/internal/platform/db"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RateRepository is the append-only currency table. Rows are never updated or deleted.
type RateRepository struct {
	pool *pgxpool.Pool
}

func (r *RateRepository) CreateSchemaIfAbsent(ctx context.Context) error {
	if err := db.Migrate(ctx, r.pool); err != nil {
		return fmt.Errorf("%w: failed to create schema: %w", domain.ErrStorage, err)
	}
	return nil
}

func (r *RateRepository) Insert(ctx context.Context, record domain.RateRecord) (int64, error) {
	const q = `
        insert into currency (cur_id, cur_abbreviation, official_rate, cur_date)
        values ($1, $2, $3, $4)
        returning id;
    `

	var id int64
	if err := r.pool.QueryRow(ctx, q,
		record.CurrencyID,
		record.Abbreviation,
		record.OfficialRate,
		domain.DateOnly(record.Date),
	).Scan(&id); err != nil {
		return 0, fmt.Errorf("%w: failed to insert rate of currency %d on %s: %w",
			domain.ErrStorage, record.CurrencyID, record.Date.Format(domain.DateLayout), err)
	}
	return id, nil
}

// Lookup returns every row stored for the currency and date, oldest first.
// An empty result is a miss, not an error.
func (r *RateRepository) Lookup(ctx context.Context, currencyID int, date time.Time) ([]domain.RateRecord, error) {
	const q = `
        select id, cur_id, cur_abbreviation, official_rate, cur_date
        from currency
        where cur_id = $1 and cur_date = $2
        order by id;
    `

	day := domain.DateOnly(date)
	rows, err := r.pool.Query(ctx, q, currencyID, day)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to select rates of currency %d on %s: %w",
			domain.ErrStorage, currencyID, day.Format(domain.DateLayout), err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.RateRecord, error) {
		var rec domain.RateRecord
		scanErr := row.Scan(&rec.ID, &rec.CurrencyID, &rec.Abbreviation, &rec.OfficialRate, &rec.Date)
		rec.Date = domain.DateOnly(rec.Date)
		return rec, scanErr
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to scan rates of currency %d on %s: %w",
			domain.ErrStorage, currencyID, day.Format(domain.DateLayout), err)
	}
	return records, nil
}

func (r *RateRepository) CountByDate(ctx context.Context, date time.Time) (int, error) {
	const q = `select count(*) from currency where cur_date = $1;`

	day := domain.DateOnly(date)
	var n int
	if err := r.pool.QueryRow(ctx, q, day).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: failed to count rates on %s: %w",
			domain.ErrStorage, day.Format(domain.DateLayout), err)
	}
	return n, nil
}

func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return &RateRepository{pool: pool}
}
