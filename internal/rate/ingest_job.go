package rate

import (
	"context"
	"fmt"
	"time"

	"exrates/internal/domain"

	"github.com/sirupsen/logrus"
)

type Ingester interface {
	Ingest(ctx context.Context, date time.Time) (IngestResult, error)
}

// IngestToday ingests the rates of the current calendar day in loc.
func IngestToday(ctx context.Context, execID string, ingester Ingester, now time.Time, loc *time.Location) error {
	today := domain.DateOnly(now.In(loc))
	log := logrus.WithFields(logrus.Fields{"exec_id": execID, "date": today.Format(domain.DateLayout)})
	log.Info("Starting daily rates ingestion")

	res, err := ingester.Ingest(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to ingest rates for %s: %w", today.Format(domain.DateLayout), err)
	}

	log.WithFields(logrus.Fields{"status": res.StatusCode, "inserted": res.Inserted}).
		Info("Daily rates ingestion finished")
	return nil
}
