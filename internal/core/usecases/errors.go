package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/mabteam/poimap/internal/core/domain"
	"github.com/mabteam/poimap/internal/pkg/metrics"
)

// ErrSuperseded is returned by a Session cycle that was cancelled by a newer request.
var ErrSuperseded = errors.New("superseded by a newer request")

// storeErr classifies a POIStore failure. Missing records and cancellation
// pass through; everything else becomes ErrStoreUnavailable.
func storeErr(op string, err error) error {
	if errors.Is(err, domain.ErrNotFound) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	metrics.StoreErrors.WithLabelValues(op).Inc()
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStoreUnavailable, err)
}
