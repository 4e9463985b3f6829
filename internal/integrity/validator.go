package integrity

import (
	"fmt"
	"hash/crc32"

	"exrates/internal/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
)

var checksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "exrates_integrity_checks_total",
	Help: "Total number of payload integrity checks by result",
}, []string{"result"})

// Checksum is the CRC-32 (IEEE) of the payload.
func Checksum(payload []byte) uint32 {
	return crc32.ChecksumIEEE(payload)
}

// Validate reports whether checksum matches the payload exactly.
func Validate(payload []byte, checksum uint32) bool {
	return Checksum(payload) == checksum
}

// Validator checks fetched snapshots. A failed check is only logged unless the validator
// is strict, in which case it becomes an error wrapping domain.ErrIntegrity.
type Validator struct {
	strict bool
}

func (v *Validator) Strict() bool { return v.strict }

func (v *Validator) Check(snapshot domain.Snapshot) error {
	date := snapshot.Date.Format(domain.DateLayout)
	log := logrus.WithFields(logrus.Fields{"date": date, "strict": v.strict})

	var reason string
	switch {
	case !snapshot.HasChecksum:
		reason = "missing checksum"
	case !Validate(snapshot.Payload, snapshot.Checksum):
		reason = fmt.Sprintf("checksum mismatch: got %08x, want %08x", Checksum(snapshot.Payload), snapshot.Checksum)
	default:
		checksTotal.WithLabelValues("ok").Inc()
		log.WithField("checksum", fmt.Sprintf("%08x", snapshot.Checksum)).Info("Rates payload integrity verified")
		return nil
	}

	checksTotal.WithLabelValues("failed").Inc()
	if v.strict {
		log.Error("Rates payload integrity check failed: " + reason)
		return fmt.Errorf("%w: %s for %s", domain.ErrIntegrity, reason, date)
	}
	log.Warn("Rates payload integrity check failed, continuing: " + reason)
	return nil
}

func NewValidator(strict bool) *Validator {
	return &Validator{strict: strict}
}
