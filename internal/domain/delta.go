package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	DirectionIncreased Direction = "increased"
	DirectionDecreased Direction = "decreased"
	DirectionUnchanged Direction = "unchanged"
)

// deltaPlaces matches the precision the rates API publishes.
const deltaPlaces = 4

// Delta is the day-over-day change of one currency.
type Delta struct {
	CurrencyID   int
	Date         time.Time
	PreviousDate time.Time
	Current      decimal.Decimal
	Previous     decimal.Decimal
	Change       decimal.Decimal
	Direction    Direction
}

func NewDelta(current, previous RateRecord) Delta {
	cur := decimal.NewFromFloat(current.OfficialRate)
	prev := decimal.NewFromFloat(previous.OfficialRate)
	change := cur.Sub(prev)

	direction := DirectionUnchanged
	switch change.Sign() {
	case 1:
		direction = DirectionIncreased
	case -1:
		direction = DirectionDecreased
	}

	return Delta{
		CurrencyID:   current.CurrencyID,
		Date:         DateOnly(current.Date),
		PreviousDate: DateOnly(previous.Date),
		Current:      cur,
		Previous:     prev,
		Change:       change,
		Direction:    direction,
	}
}

// Magnitude is the absolute change.
func (d Delta) Magnitude() decimal.Decimal {
	return d.Change.Abs()
}

func (d Delta) String() string {
	if d.Direction == DirectionUnchanged {
		return string(DirectionUnchanged)
	}
	return string(d.Direction) + " by " + d.Magnitude().StringFixed(deltaPlaces)
}
