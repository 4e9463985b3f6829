package rate

import (
	"context"
	"fmt"
	"time"

	"exrates/internal/adapters"
	"exrates/internal/domain"
	"exrates/internal/integrity"

	"github.com/sirupsen/logrus"
)

type Source string

const (
	SourceStore  Source = "store"
	SourceRemote Source = "remote"
)

type QueryResult struct {
	Record domain.RateRecord
	Source Source
}

type IngestResult struct {
	Date       time.Time
	StatusCode int
	Inserted   int
}

// Service answers rate queries from the store first and falls back to the rates API.
type Service struct {
	store     adapters.RateStore
	client    adapters.RateClient
	cache     adapters.RecordCache
	validator *integrity.Validator

	writeBackOnMiss bool
}

// Ingest fetches every rate published for the date and appends all of them to the store.
// Inserts stop at the first failure; rows written before it stay.
func (s *Service) Ingest(ctx context.Context, date time.Time) (IngestResult, error) {
	date = domain.DateOnly(date)
	res := IngestResult{Date: date}

	snapshot, err := s.client.Fetch(ctx, date)
	if err != nil {
		return res, err
	}
	res.StatusCode = snapshot.StatusCode

	if err = s.validator.Check(snapshot); err != nil {
		return res, err
	}

	res.Inserted, err = s.insertAll(ctx, snapshot.Records)
	if err != nil {
		return res, err
	}

	logrus.WithFields(logrus.Fields{
		"date":     date.Format(domain.DateLayout),
		"status":   res.StatusCode,
		"inserted": res.Inserted,
	}).Info("Rates ingested")
	return res, nil
}

// Query returns the rate of the currency on the date. A store miss is answered from the
// rates API and, unless write back is enabled, nothing is written.
func (s *Service) Query(ctx context.Context, currencyID int, date time.Time) (QueryResult, error) {
	date = domain.DateOnly(date)

	if s.cache != nil {
		if rec, ok := s.cache.Get(currencyID, date); ok {
			queryTotal.WithLabelValues("cache").Inc()
			return QueryResult{Record: rec, Source: SourceStore}, nil
		}
	}

	records, err := s.store.Lookup(ctx, currencyID, date)
	if err != nil {
		return QueryResult{}, err
	}
	if len(records) > 0 {
		rec := records[0]
		if s.cache != nil {
			s.cache.Set(rec)
		}
		queryTotal.WithLabelValues(string(SourceStore)).Inc()
		return QueryResult{Record: rec, Source: SourceStore}, nil
	}

	snapshot, err := s.client.Fetch(ctx, date)
	if err != nil {
		return QueryResult{}, err
	}
	if err = s.validator.Check(snapshot); err != nil {
		return QueryResult{}, err
	}
	rec, err := snapshot.Find(currencyID)
	if err != nil {
		return QueryResult{}, err
	}

	if s.writeBackOnMiss {
		if _, wbErr := s.insertAll(ctx, snapshot.Records); wbErr != nil {
			logrus.WithError(wbErr).WithField("date", date.Format(domain.DateLayout)).
				Warn("Failed to write back fetched rates")
		}
	}

	queryTotal.WithLabelValues(string(SourceRemote)).Inc()
	return QueryResult{Record: rec, Source: SourceRemote}, nil
}

// CountByDate reports how many rows the store holds for the date, duplicates included.
func (s *Service) CountByDate(ctx context.Context, date time.Time) (int, error) {
	return s.store.CountByDate(ctx, date)
}

func (s *Service) insertAll(ctx context.Context, records []domain.RateRecord) (int, error) {
	inserted := 0
	for _, rec := range records {
		if _, err := s.store.Insert(ctx, rec); err != nil {
			return inserted, fmt.Errorf("failed to ingest rates after %d of %d records: %w", inserted, len(records), err)
		}
		inserted++
		ingestedRecordsTotal.Inc()
	}
	return inserted, nil
}

func NewService(
	store adapters.RateStore,
	client adapters.RateClient,
	cache adapters.RecordCache,
	validator *integrity.Validator,
	writeBackOnMiss bool,
) *Service {
	return &Service{
		store:           store,
		client:          client,
		cache:           cache,
		validator:       validator,
		writeBackOnMiss: writeBackOnMiss,
	}
}
