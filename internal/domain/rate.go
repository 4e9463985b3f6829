package domain

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// RateRecord is one official rate of one currency on one calendar date.
type RateRecord struct {
	ID           int64
	CurrencyID   int
	Abbreviation string
	OfficialRate float64
	Date         time.Time
}

// Snapshot is everything a single fetch returned for one date.
type Snapshot struct {
	Date        time.Time
	Records     []RateRecord
	Payload     []byte
	Checksum    uint32
	HasChecksum bool
	StatusCode  int
}

// Find returns the first record of the given currency or ErrNotFound.
func (s Snapshot) Find(currencyID int) (RateRecord, error) {
	for _, r := range s.Records {
		if r.CurrencyID == currencyID {
			return r, nil
		}
	}
	return RateRecord{}, fmt.Errorf("%w: currency %d on %s", ErrNotFound, currencyID, s.Date.Format(DateLayout))
}

// DateOnly drops the time of day, keeping the calendar date at UTC midnight.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func PreviousDay(date time.Time) time.Time {
	return DateOnly(date).AddDate(0, 0, -1)
}
