package rate

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidDate       = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidCurrencyID = errors.New("invalid currency id, expected a positive integer")
)

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// ParseDate accepts YYYY-MM-DD with month in 1..12 and day in 1..31.
// Days past the end of the month are not rejected; time.Date rolls them
// over into the next month (2024-02-30 becomes 2024-03-01).
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !datePattern.MatchString(s) {
		return time.Time{}, ErrInvalidDate
	}
	year, _ := strconv.Atoi(s[0:4])
	month, _ := strconv.Atoi(s[5:7])
	day, _ := strconv.Atoi(s[8:10])
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, ErrInvalidDate
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

// ParseCurrencyID accepts a positive decimal id that fits the int4 cur_id column.
func ParseCurrencyID(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" || strings.IndexFunc(s, func(r rune) bool { return r < '0' || r > '9' }) >= 0 {
		return 0, ErrInvalidCurrencyID
	}
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 || id > math.MaxInt32 {
		return 0, ErrInvalidCurrencyID
	}
	return id, nil
}
