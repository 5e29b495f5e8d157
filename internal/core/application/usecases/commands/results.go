package commands

import (
	"fmt"

	"forecast/internal/core/domain/model/mlmodel"
)

// TrainingResult reports the outcome of one training run. Expected
// business failures (insufficient data, no restaurant configuration)
// come back as Success=false with a message instead of an error, so
// batch callers can record them without aborting.
type TrainingResult struct {
	Success        bool
	Version        int
	ModelType      mlmodel.ModelType
	TrainingPoints int
	Metrics        mlmodel.TrainingMetrics
	Message        string
}

// RetrainingResult reports a conditional retraining check: whether
// retraining ran, the triggers that fired, and the training outcome when
// it did.
type RetrainingResult struct {
	Retrained bool
	Reasons   []string
	Training  TrainingResult
}

// CleanupResult reports what a retention sweep removed.
type CleanupResult struct {
	SnapshotsRemoved int64
	EventsRemoved    int64
	VersionsPruned   int
}

// BatchResult aggregates a per-restaurant batch operation. One
// restaurant's failure never stops the batch; it is recorded here and
// the remaining restaurants are still processed.
type BatchResult struct {
	Processed int
	Succeeded int
	Failed    int
	Errors    []error
}

// RecordSuccess counts one successfully processed restaurant.
func (r *BatchResult) RecordSuccess() {
	r.Processed++
	r.Succeeded++
}

// RecordFailure counts one failed restaurant and keeps its error.
func (r *BatchResult) RecordFailure(restaurantID string, err error) {
	r.Processed++
	r.Failed++
	r.Errors = append(r.Errors, fmt.Errorf("restaurant %s: %w", restaurantID, err))
}
