package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"exrates/internal/domain"
	"exrates/internal/integrity"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

const (
	ratesPath    = "/exrates/rates"
	maxBodyBytes = 1 << 20

	itemDateTimeLayout = "2006-01-02T15:04:05"
)

var fetchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "exrates_fetch_total",
	Help: "Total number of rates API requests by outcome",
}, []string{"outcome"})

// RatesClient queries the daily official rates of the rates API.
type RatesClient struct {
	http    *http.Client
	baseURL string
}

type rateItem struct {
	CurID        int     `json:"Cur_ID"`
	Date         string  `json:"Date"`
	Abbreviation string  `json:"Cur_Abbreviation"`
	OfficialRate float64 `json:"Cur_OfficialRate"`
}

// Fetch returns the full rates snapshot for the date, with a CRC-32 of the raw body attached.
func (c *RatesClient) Fetch(ctx context.Context, date time.Time) (domain.Snapshot, error) {
	date = domain.DateOnly(date)
	ondate := date.Format(domain.DateLayout)

	u, err := url.Parse(strings.TrimSuffix(c.baseURL, "/") + ratesPath)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: failed to parse base URL: %w", domain.ErrFetch, err)
	}
	q := url.Values{}
	q.Set("ondate", ondate)
	q.Set("periodicity", "0")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("%w: failed to create request for %s: %w", domain.ErrFetch, ondate, err)
	}
	req.Header.Set("Accept", "application/json")

	log := logrus.WithFields(logrus.Fields{"url": u.String(), "ondate": ondate})
	log.Info("Requesting rates")

	resp, err := c.http.Do(req)
	if err != nil {
		fetchTotal.WithLabelValues("transport_error").Inc()
		log.WithError(err).Warn("Rates request failed")
		return domain.Snapshot{}, fmt.Errorf("%w: failed to execute request for %s: %w", domain.ErrFetch, ondate, err)
	}
	defer func() { _ = resp.Body.Close() }()

	log.WithField("status", resp.StatusCode).Info("Rates response received")

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		fetchTotal.WithLabelValues("read_error").Inc()
		return domain.Snapshot{}, fmt.Errorf("%w: failed to read response for %s: %w", domain.ErrFetch, ondate, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		fetchTotal.WithLabelValues("bad_status").Inc()
		return domain.Snapshot{}, fmt.Errorf("%w: unexpected status code %d for %s: %s", domain.ErrFetch, resp.StatusCode, ondate, resp.Status)
	}

	var items []rateItem
	if err = json.Unmarshal(body, &items); err != nil {
		fetchTotal.WithLabelValues("decode_error").Inc()
		return domain.Snapshot{}, fmt.Errorf("%w: failed to decode response for %s: %w", domain.ErrFetch, ondate, err)
	}

	records := make([]domain.RateRecord, 0, len(items))
	for _, item := range items {
		itemDate, parseErr := parseItemDate(item.Date)
		if parseErr != nil {
			fetchTotal.WithLabelValues("decode_error").Inc()
			return domain.Snapshot{}, fmt.Errorf("%w: bad date of currency %d for %s: %w", domain.ErrFetch, item.CurID, ondate, parseErr)
		}
		records = append(records, domain.RateRecord{
			CurrencyID:   item.CurID,
			Abbreviation: item.Abbreviation,
			OfficialRate: item.OfficialRate,
			Date:         itemDate,
		})
	}

	fetchTotal.WithLabelValues("ok").Inc()
	return domain.Snapshot{
		Date:        date,
		Records:     records,
		Payload:     body,
		Checksum:    integrity.Checksum(body),
		HasChecksum: true,
		StatusCode:  resp.StatusCode,
	}, nil
}

func parseItemDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	t, err := time.Parse(itemDateTimeLayout, s)
	if err != nil {
		t, err = time.Parse(domain.DateLayout, s)
		if err != nil {
			return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
		}
	}
	return domain.DateOnly(t), nil
}

func NewRatesClient(httpClient *http.Client, baseURL string) *RatesClient {
	return &RatesClient{http: httpClient, baseURL: baseURL}
}
