package rate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"exrates/internal/domain"
	"exrates/internal/integrity"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- Testify mocks ---

type MockRateStore struct{ mock.Mock }

func (m *MockRateStore) CreateSchemaIfAbsent(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockRateStore) Insert(ctx context.Context, record domain.RateRecord) (int64, error) {
	args := m.Called(ctx, record)
	id, _ := args.Get(0).(int64)
	return id, args.Error(1)
}

func (m *MockRateStore) Lookup(ctx context.Context, currencyID int, date time.Time) ([]domain.RateRecord, error) {
	args := m.Called(ctx, currencyID, date)
	records, _ := args.Get(0).([]domain.RateRecord)
	return records, args.Error(1)
}

func (m *MockRateStore) CountByDate(ctx context.Context, date time.Time) (int, error) {
	args := m.Called(ctx, date)
	return args.Int(0), args.Error(1)
}

type MockRateClient struct{ mock.Mock }

func (m *MockRateClient) Fetch(ctx context.Context, date time.Time) (domain.Snapshot, error) {
	args := m.Called(ctx, date)
	snap, _ := args.Get(0).(domain.Snapshot)
	return snap, args.Error(1)
}

type MockRecordCache struct{ mock.Mock }

func (m *MockRecordCache) Get(currencyID int, date time.Time) (domain.RateRecord, bool) {
	args := m.Called(currencyID, date)
	rec, _ := args.Get(0).(domain.RateRecord)
	return rec, args.Bool(1)
}

func (m *MockRecordCache) Set(record domain.RateRecord) {
	m.Called(record)
}

// --- fixtures ---

var (
	march1 = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	march2 = time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	usd = domain.RateRecord{CurrencyID: 431, Abbreviation: "USD", OfficialRate: 3.2689, Date: march1}
	eur = domain.RateRecord{CurrencyID: 451, Abbreviation: "EUR", OfficialRate: 3.5388, Date: march1}
)

func snapshotOf(date time.Time, records ...domain.RateRecord) domain.Snapshot {
	payload := []byte(fmt.Sprintf("rates for %s", date.Format(domain.DateLayout)))
	return domain.Snapshot{
		Date:        date,
		Records:     records,
		Payload:     payload,
		Checksum:    integrity.Checksum(payload),
		HasChecksum: true,
		StatusCode:  http.StatusOK,
	}
}

func tampered(s domain.Snapshot) domain.Snapshot {
	s.Checksum++
	return s
}

// --- Ingest ---

func TestService_Ingest_InsertsEveryRecordInOrder(t *testing.T) {
	store := new(MockRateStore)
	client := new(MockRateClient)
	svc := NewService(store, client, nil, integrity.NewValidator(false), false)

	client.On("Fetch", mock.Anything, march1).Return(snapshotOf(march1, usd, eur), nil).Once()
	first := store.On("Insert", mock.Anything, usd).Return(int64(1), nil).Once()
	store.On("Insert", mock.Anything, eur).Return(int64(2), nil).Once().NotBefore(first)

	res, err := svc.Ingest(context.Background(), march1.Add(15*time.Hour))

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Equal(t, 2, res.Inserted)
	require.Equal(t, march1, res.Date)
	client.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestService_Ingest_EmptyList(t *testing.T) {
	store := new(MockRateStore)
	client := new(MockRateClient)
	svc := NewService(store, client, nil, integrity.NewValidator(false), false)

	past := time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC)
	client.On("Fetch", mock.Anything, past).Return(snapshotOf(past), nil).Once()

	res, err := svc.Ingest(context.Background(), past)

	require.NoError(t, err)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Zero(t, res.Inserted)
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestService_Ingest_FetchError_NoInsert(t *testing.T) {
	store := new(MockRateStore)
	client := new(MockRateClient)
	svc := NewService(store, client, nil, integrity.NewValidator(false), false)

	wantErr := fmt.Errorf("%w: timeout", domain.ErrFetch)
	client.On("Fetch", mock.Anything, march1).Return(domain.Snapshot{}, wantErr).Once()

	_, err := svc.Ingest(context.Background(), march1)

	require.ErrorIs(t, err, domain.ErrFetch)
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestService_Ingest_StopsAtFirstInsertFailure(t *testing.T) {
	store := new(MockRateStore)
	client := new(MockRateClient)
	svc := NewService(store, client, nil, integrity.NewValidator(false), false)

	gbp := domain.RateRecord{CurrencyID: 429, Abbreviation: "GBP", OfficialRate: 4.1, Date: march1}
	client.On("Fetch", mock.Anything, march1).Return(snapshotOf(march1, usd, eur, gbp), nil).Once()
	store.On("Insert", mock.Anything, usd).Return(int64(1), nil).Once()
	store.On("Insert", mock.Anything, eur).Return(int64(0), fmt.Errorf("%w: connection reset", domain.ErrStorage)).Once()

	res, err := svc.Ingest(context.Background(), march1)

	require.ErrorIs(t, err, domain.ErrStorage)
	require.Equal(t, 1, res.Inserted)
	store.AssertNotCalled(t, "Insert", mock.Anything, gbp)
	store.AssertExpectations(t)
}

func TestService_Ingest_ChecksumMismatchIsObservational(t *testing.T) {
	store := new(MockRateStore)
	client := new(MockRateClient)
	svc := NewService(store, client, nil, integrity.NewValidator(false), false)

	client.On("Fetch", mock.Anything, march1).Return(tampered(snapshotOf(march1, usd)), nil).Once()
	store.On("Insert", mock.Anything, usd).Return(int64(1), nil).Once()

	res, err := svc.Ingest(context.Background(), march1)

	require.NoError(t, err)
	require.Equal(t, 1, res.Inserted)
	store.AssertExpectations(t)
}

func TestService_Ingest_StrictChecksumMismatchAborts(t *testing.T) {
	store := new(MockRateStore)
	client := new(MockRateClient)
	svc := NewService(store, client, nil, integrity.NewValidator(true), false)

	client.On("Fetch", mock.Anything, march1).Return(tampered(snapshotOf(march1, usd)), nil).Once()

	res, err := svc.Ingest(context.Background(), march1)

	require.ErrorIs(t, err, domain.ErrIntegrity)
	require.Equal(t, http.StatusOK, res.StatusCode)
	require.Zero(t, res.Inserted)
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

// --- Query ---

func TestService_Query_StoreHit_FirstRowWins(t *testing.T) {
	store := new(MockRateStore)
	client := new(MockRateClient)
	cache := new(MockRecordCache)
	svc := NewService(store, client, cache, integrity.NewValidator(false), false)

	stored1 := usd
	stored1.ID = 1
	stored2 := usd
	stored2.ID = 2
	stored2.OfficialRate = 3.3

	cache.On("Get", 431, march1).Return(domain.RateRecord{}, false).Once()
	store.On("Lookup", mock.Anything, 431, march1).Return([]domain.RateRecord{stored1, stored2}, nil).Once()
	cache.On("Set", stored1).Return().Once()

	res, err := svc.Query(context.Background(), 431, march1)

	require.NoError(t, err)
	require.Equal(t, SourceStore, res.Source)
	require.Equal(t, stored1, res.Record)
	client.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestService_Query_CacheHit(t *testing.T) {
	store := new(MockRateStore)
	client := new(MockRateClient)
	cache := new(MockRecordCache)
	svc := NewService(store, client, cache, integrity.NewValidator(false), false)

	cached := usd
	cached.ID = 5
	cache.On("Get", 431, march1).Return(cached, true).Once()

	res, err := svc.Query(context.Background(), 431, march1)

	require.NoError(t, err)
	require.Equal(t, SourceStore, res.Source)
	require.Equal(t, cached, res.Record)
	store.AssertNotCalled(t, "Lookup", mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestService_Query_MissFallsBackToRemoteWithoutWriting(t *testing.T) {
	store := new(MockRateStore)
	client := new(MockRateClient)
	svc := NewService(store, client, nil, integrity.NewValidator(false), false)

	store.On("Lookup", mock.Anything, 451, march1).Return([]domain.RateRecord{}, nil).Once()
	client.On("Fetch", mock.Anything, march1).Return(snapshotOf(march1, usd, eur), nil).Once()

	res, err := svc.Query(context.Background(), 451, march1)

	require.NoError(t, err)
	require.Equal(t, SourceRemote, res.Source)
	require.Equal(t, eur, res.Record)
	store.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
	store.AssertExpectations(t)
	client.AssertExpectations(t)
}

func TestService_Query_MissWithWriteBack(t *testing.T) {
	store := new(MockRateStore)
	client := new(MockRateClient)
	svc := NewService(store, client, nil, integrity.NewValidator(false), true)

	store.On("Lookup", mock.Anything, 451, march1).Return([]domain.RateRecord{}, nil).Once()
	client.On("Fetch", mock.Anything, march1).Return(snapshotOf(march1, usd, eur), nil).Once()
	store.On("Insert", mock.Anything, usd).Return(int64(1), nil).Once()
	store.On("Insert", mock.Anything, eur).Return(int64(2), nil).Once()

	res, err := svc.Query(context.Background(), 451, march1)

	require.NoError(t, err)
	require.Equal(t, SourceRemote, res.Source)
	require.Equal(t, eur, res.Record)
	store.AssertExpectations(t)
}

func TestService_Query_WriteBackFailureStillAnswers(t *testing.T) {
	store := new(MockRateStore)
	client := new(MockRateClient)
	svc := NewService(store, client, nil, integrity.NewValidator(false), true)

	store.On("Lookup", mock.Anything, 431, march1).Return([]domain.RateRecord{}, nil).Once()
	client.On("Fetch", mock.Anything, march1).Return(snapshotOf(march1, usd), nil).Once()
	store.On("Insert", mock.Anything, usd).Return(int64(0), domain.ErrStorage).Once()

	res, err := svc.Query(context.Background(), 431, march1)

	require.NoError(t, err)
	require.Equal(t, usd, res.Record)
}

func TestService_Query_AbsentEverywhere(t *testing.T) {
	store := new(MockRateStore)
	client := new(MockRateClient)
	svc := NewService(store, client, nil, integrity.NewValidator(false), false)

	store.On("Lookup", mock.Anything, 999, march1).Return([]domain.RateRecord{}, nil).Once()
	client.On("Fetch", mock.Anything, march1).Return(snapshotOf(march1, usd, eur), nil).Once()

	_, err := svc.Query(context.Background(), 999, march1)

	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestService_Query_StoreError(t *testing.T) {
	store := new(MockRateStore)
	client := new(MockRateClient)
	svc := NewService(store, client, nil, integrity.NewValidator(false), false)

	store.On("Lookup", mock.Anything, 431, march1).Return(nil, fmt.Errorf("%w: boom", domain.ErrStorage)).Once()

	_, err := svc.Query(context.Background(), 431, march1)

	require.ErrorIs(t, err, domain.ErrStorage)
	client.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestService_Query_RemoteFetchError(t *testing.T) {
	store := new(MockRateStore)
	client := new(MockRateClient)
	svc := NewService(store, client, nil, integrity.NewValidator(false), false)

	store.On("Lookup", mock.Anything, 431, march2).Return([]domain.RateRecord{}, nil).Once()
	client.On("Fetch", mock.Anything, march2).Return(domain.Snapshot{}, domain.ErrFetch).Once()

	_, err := svc.Query(context.Background(), 431, march2)

	require.True(t, errors.Is(err, domain.ErrFetch))
}

func TestService_Query_StrictIntegrityOnRemote(t *testing.T) {
	store := new(MockRateStore)
	client := new(MockRateClient)
	svc := NewService(store, client, nil, integrity.NewValidator(true), false)

	store.On("Lookup", mock.Anything, 431, march1).Return([]domain.RateRecord{}, nil).Once()
	client.On("Fetch", mock.Anything, march1).Return(tampered(snapshotOf(march1, usd)), nil).Once()

	_, err := svc.Query(context.Background(), 431, march1)

	require.ErrorIs(t, err, domain.ErrIntegrity)
}

func TestService_CountByDate(t *testing.T) {
	store := new(MockRateStore)
	svc := NewService(store, new(MockRateClient), nil, integrity.NewValidator(false), false)

	store.On("CountByDate", mock.Anything, march1).Return(27, nil).Once()

	n, err := svc.CountByDate(context.Background(), march1)

	require.NoError(t, err)
	require.Equal(t, 27, n)
}
