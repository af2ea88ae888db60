package workflows

import (
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/mabteam/poimap/internal/core/domain"
)

// ImportWorkflowName is the registered name of ImportWorkflow.
const ImportWorkflowName = "ImportWorkflow"

// DefaultBatchSize bounds the number of POIs written per StorePOIs call.
const DefaultBatchSize = 500

// ImportInput is the input for the import workflow.
type ImportInput struct {
	Source    string
	Places    []domain.Place
	BatchSize int
}

// ImportResult reports what the workflow stored.
type ImportResult struct {
	Imported int
	IDs      []string
}

// ImportWorkflow validates the places, stores them in batches and publishes
// change events. If a later step fails, every batch already stored is deleted
// again (saga compensation).
func ImportWorkflow(ctx workflow.Context, input ImportInput) (*ImportResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting import workflow", "source", input.Source, "places", len(input.Places))

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts:        3,
			NonRetryableErrorTypes: []string{ErrTypeInvalidPlace},
		},
	})

	var pois []domain.POI
	if err := workflow.ExecuteActivity(ctx, ActivityValidatePlaces, input.Places).Get(ctx, &pois); err != nil {
		return nil, err
	}

	size := input.BatchSize
	if size <= 0 {
		size = DefaultBatchSize
	}

	var stored []string
	compensate := func(cause error) error {
		if len(stored) == 0 {
			return cause
		}
		logger.Warn("import failed, compensating", "stored", len(stored), "error", cause)
		// disconnected so a cancelled workflow still rolls back
		dctx, _ := workflow.NewDisconnectedContext(ctx)
		if err := workflow.ExecuteActivity(dctx, ActivityDeletePOIs, stored).Get(dctx, nil); err != nil {
			logger.Error("compensation failed", "error", err)
		}
		return cause
	}

	for start := 0; start < len(pois); start += size {
		end := start + size
		if end > len(pois) {
			end = len(pois)
		}
		batch := pois[start:end]
		if err := workflow.ExecuteActivity(ctx, ActivityStorePOIs, batch).Get(ctx, nil); err != nil {
			return nil, compensate(err)
		}
		for _, p := range batch {
			stored = append(stored, p.ID)
		}
	}

	if err := workflow.ExecuteActivity(ctx, ActivityPublishImported, pois).Get(ctx, nil); err != nil {
		return nil, compensate(err)
	}

	logger.Info("Import completed", "imported", len(stored))
	return &ImportResult{Imported: len(stored), IDs: stored}, nil
}
