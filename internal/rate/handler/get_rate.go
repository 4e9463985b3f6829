package handler

import (
	"errors"
	"net/http"

	"exrates/internal/domain"
	"exrates/internal/rate"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

type GetRateResponse struct {
	CurrencyID   int     `json:"cur_id"`
	Abbreviation string  `json:"abbreviation"`
	OfficialRate float64 `json:"official_rate"`
	Date         string  `json:"date"`
	Source       string  `json:"source"`
}

func (h *Handler) GetRate(w http.ResponseWriter, r *http.Request) {
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

	res, err := h.service.Query(r.Context(), currencyID, date)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusNotFound, "rate not found")
			return
		}
		msg := "couldn't get rate this time"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "GetRate", "cur_id": currencyID, "date": date.Format(domain.DateLayout)}).Error(msg)
		writeError(w, statusFor(err), msg)
		return
	}

	writeJSON(w, http.StatusOK, GetRateResponse{
		CurrencyID:   res.Record.CurrencyID,
		Abbreviation: res.Record.Abbreviation,
		OfficialRate: res.Record.OfficialRate,
		Date:         res.Record.Date.Format(domain.DateLayout),
		Source:       string(res.Source),
	})
}
