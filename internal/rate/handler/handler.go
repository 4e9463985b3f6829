package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"exrates/internal/domain"
	"exrates/internal/rate"
)

type RateService interface {
	Ingest(ctx context.Context, date time.Time) (rate.IngestResult, error)
	Query(ctx context.Context, currencyID int, date time.Time) (rate.QueryResult, error)
}

type DeltaService interface {
	Delta(ctx context.Context, date time.Time, currencyID int) (domain.Delta, error)
}

type Handler struct {
	service RateService
	deltas  DeltaService
}

func NewRateHandler(service RateService, deltas DeltaService) *Handler {
	return &Handler{service: service, deltas: deltas}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, statusCode int, errorMsg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(errorResponse{
		Error: errorMsg,
	})
}

func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

// statusFor maps service errors onto response codes. Unknown errors are 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrFetch), errors.Is(err, domain.ErrIntegrity):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
