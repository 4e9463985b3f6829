package rate

import (
	"context"
	"time"

	"exrates/internal/adapters"
	"exrates/internal/domain"

	"golang.org/x/sync/errgroup"
)

// DeltaCalculator compares a currency's rate with the day before. Both days are
// always fetched live, the store is not consulted.
type DeltaCalculator struct {
	client adapters.RateClient
}

func (c *DeltaCalculator) Delta(ctx context.Context, date time.Time, currencyID int) (domain.Delta, error) {
	date = domain.DateOnly(date)
	previousDate := domain.PreviousDay(date)

	var current, previous domain.Snapshot
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		current, err = c.client.Fetch(gCtx, date)
		return err
	})
	g.Go(func() error {
		var err error
		previous, err = c.client.Fetch(gCtx, previousDate)
		return err
	})
	if err := g.Wait(); err != nil {
		return domain.Delta{}, err
	}

	cur, err := current.Find(currencyID)
	if err != nil {
		return domain.Delta{}, err
	}
	prev, err := previous.Find(currencyID)
	if err != nil {
		return domain.Delta{}, err
	}

	return domain.NewDelta(cur, prev), nil
}

func NewDeltaCalculator(client adapters.RateClient) *DeltaCalculator {
	return &DeltaCalculator{client: client}
}
