package adapters

import (
	"context"
	"time"

	"exrates/internal/domain"
)

type RateClient interface {
	Fetch(ctx context.Context, date time.Time) (domain.Snapshot, error)
}

type RateStore interface {
	CreateSchemaIfAbsent(ctx context.Context) error
	Insert(ctx context.Context, record domain.RateRecord) (int64, error)
	Lookup(ctx context.Context, currencyID int, date time.Time) ([]domain.RateRecord, error)
	CountByDate(ctx context.Context, date time.Time) (int, error)
}

type RecordCache interface {
	Get(currencyID int, date time.Time) (domain.RateRecord, bool)
	Set(record domain.RateRecord)
}
