package handler

import (
	"encoding/json"
	"net/http"

	"exrates/internal/domain"
	"exrates/internal/rate"

	"github.com/sirupsen/logrus"
)

type IngestRequest struct {
	Date string `json:"date"`
}

type IngestResponse struct {
	Date       string `json:"date"`
	StatusCode int    `json:"status_code"`
	Inserted   int    `json:"inserted"`
}

func (h *Handler) Ingest(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 256)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	var req IngestRequest
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	date, err := rate.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.Ingest(r.Context(), date)
	if err != nil {
		msg := "failed to ingest rates"
		logrus.WithError(err).WithFields(logrus.Fields{"handler": "Ingest", "date": req.Date, "inserted": res.Inserted}).Error(msg)
		writeError(w, statusFor(err), msg)
		return
	}

	writeJSON(w, http.StatusOK, IngestResponse{
		Date:       res.Date.Format(domain.DateLayout),
		StatusCode: res.StatusCode,
		Inserted:   res.Inserted,
	})
}
