package payment

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewCode returns a transaction code such as TRX-20250115-1A2B3C4D.
func NewCode(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
	return "TRX-" + now.Format("20060102") + "-" + suffix
}
