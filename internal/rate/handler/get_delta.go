package handler

import (
	"errors"
	"net/http"

	"exrates/internal/domain"
	"exrates/internal/rate"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type GetDeltaResponse struct {
	CurrencyID   int             `json:"cur_id"`
	Date         string          `json:"date"`
	PreviousDate string          `json:"previous_date"`
	Current      decimal.Decimal `json:"current"`
	Previous     decimal.Decimal `json:"previous"`
	Change       decimal.Decimal `json:"change"`
	Direction    string          `json:"direction"`
	Description  string          `json:"description"`
}

func (h *Handler) GetDelta(w http.ResponseWriter, r *http.Request) {
	currencyID, err := rate.ParseCurrencyID(chi.URLParam(r, "cur_id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	date, err := rate.ParseDate(r.URL.Query().Get("ondate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.deltas.Delta(r.Context(), date, currencyID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rate not found for one of the days")
			return
		}
		msg := "couldn't compute rate delta this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetDelta", "cur_id": currencyID, "date": date.Format(domain.DateLayout)}).Error(msg)
		writeError(w, statusFor(err), msg)
		return
	}

	writeJSON(w, http.StatusOK, GetDeltaResponse{
		CurrencyID:   currencyID,
		Date:         d.Date.Format(domain.DateLayout),
		PreviousDate: d.PreviousDate.Format(domain.DateLayout),
		Current:      d.Current,
		Previous:     d.Previous,
		Change:       d.Change,
		Direction:    string(d.Direction),
		Description:  d.String(),
	})
}
