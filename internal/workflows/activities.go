package workflows

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"go.temporal.io/sdk/temporal"

	"github.com/mabteam/poimap/internal/core/domain"
	"github.com/mabteam/poimap/internal/core/ports"
	"github.com/mabteam/poimap/internal/core/usecases"
	"github.com/mabteam/poimap/internal/pkg/metrics"
)

// Activity names as registered by a worker for *ImportActivities.
const (
	ActivityValidatePlaces  = "ValidatePlaces"
	ActivityStorePOIs       = "StorePOIs"
	ActivityPublishImported = "PublishImported"
	ActivityDeletePOIs      = "DeletePOIs"
)

// ErrTypeInvalidPlace marks validation failures as non-retryable.
const ErrTypeInvalidPlace = "InvalidPlace"

// ImportActivities holds the activity implementations for the import saga.
type ImportActivities struct {
	Store     ports.POIStore
	Publisher ports.EventPublisher
}

// ValidatePlaces converts raw places into POIs. A bad coordinate fails the
// whole import without retries.
func (a *ImportActivities) ValidatePlaces(ctx context.Context, places []domain.Place) ([]domain.POI, error) {
	pois, err := usecases.PlacesToPOIs(places)
	if err != nil {
		return nil, temporal.NewNonRetryableApplicationError(err.Error(), ErrTypeInvalidPlace, err)
	}
	return pois, nil
}

// StorePOIs writes one batch in a single transaction.
func (a *ImportActivities) StorePOIs(ctx context.Context, pois []domain.POI) error {
	if err := a.Store.AddPOIs(ctx, pois); err != nil {
		metrics.StoreErrors.WithLabelValues("import").Inc()
		return fmt.Errorf("store %d pois: %w", len(pois), err)
	}
	metrics.POIsImported.Add(float64(len(pois)))
	return nil
}

// PublishImported announces every imported POI so open map views recluster.
func (a *ImportActivities) PublishImported(ctx context.Context, pois []domain.POI) error {
	if a.Publisher == nil {
		slog.Info("no publisher configured, skipping import events", "count", len(pois))
		return nil
	}
	for i := range pois {
		if err := a.Publisher.PublishPOIAdded(ctx, &pois[i]); err != nil {
			return fmt.Errorf("publish %s: %w", pois[i].ID, err)
		}
	}
	return nil
}

// DeletePOIs removes imported POIs (saga compensation) and announces each
// removal, since some of them may already have been published as added.
// Already missing ids are skipped so the activity can be retried.
func (a *ImportActivities) DeletePOIs(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if err := a.Store.DeletePOI(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("delete %s: %w", id, err)
		}
	}

	// Announce after the store is clean so a retry repeats only the events
	if a.Publisher != nil {
		for _, id := range ids {
			if err := a.Publisher.PublishPOIDeleted(ctx, id); err != nil {
				return fmt.Errorf("publish delete %s: %w", id, err)
			}
		}
	}
	slog.Info("import rolled back", "count", len(ids))
	return nil
}
