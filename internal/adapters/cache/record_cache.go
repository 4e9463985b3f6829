package cache

import (
	"fmt"
	"strconv"
	"time"

	"exrates/internal/domain"

	"github.com/dgraph-io/ristretto"
)

// RistrettoRecordCache keeps stored rate records keyed by currency and date.
// Stored records never change, so entries have no TTL.
type RistrettoRecordCache struct {
	cache *ristretto.Cache
}

func NewRecordCache(maxItems int64) (*RistrettoRecordCache, error) {
	if maxItems <= 0 {
		return nil, fmt.Errorf("create record cache failed: max items must be positive, got %d", maxItems)
	}
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 10 * maxItems,
		MaxCost:     maxItems,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create record cache failed: %w", err)
	}
	return &RistrettoRecordCache{cache: c}, nil
}

func (c *RistrettoRecordCache) Get(currencyID int, date time.Time) (domain.RateRecord, bool) {
	if v, ok := c.cache.Get(toKey(currencyID, date)); ok {
		rec, ok := v.(domain.RateRecord)
		return rec, ok
	}
	return domain.RateRecord{}, false
}

func (c *RistrettoRecordCache) Set(record domain.RateRecord) {
	c.cache.Set(toKey(record.CurrencyID, record.Date), record, 1)
}

func (c *RistrettoRecordCache) Close() { c.cache.Close() }

func toKey(currencyID int, date time.Time) string {
	return strconv.Itoa(currencyID) + ":" + domain.DateOnly(date).Format(domain.DateLayout)
}
