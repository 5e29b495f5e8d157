package jobs

import (
	"fmt"
	"log/slog"

	"forecast/internal/core/application/usecases/commands"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	featureCollectionJob *FeatureCollectionJob
	trainingJob          *TrainingJob
	evaluationJob        *EvaluationJob
	cleanupJob           *CleanupJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	collectFeaturesHandler *commands.CollectFeaturesCommandHandler,
	trainAllHandler *commands.TrainAllCommandHandler,
	evaluateModelsHandler *commands.EvaluateModelsCommandHandler,
	cleanupHandler *commands.CleanupExpiredDataCommandHandler,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		featureCollectionJob: NewFeatureCollectionJob(collectFeaturesHandler, logger),
		trainingJob:          NewTrainingJob(trainAllHandler, logger),
		evaluationJob:        NewEvaluationJob(evaluateModelsHandler, logger),
		cleanupJob:           NewCleanupJob(cleanupHandler, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.featureCollectionJob.Start(); err != nil {
		return fmt.Errorf("failed to start feature collection job: %w", err)
	}

	if err := jm.trainingJob.Start(); err != nil {
		jm.featureCollectionJob.Stop()
		return fmt.Errorf("failed to start training job: %w", err)
	}

	if err := jm.evaluationJob.Start(); err != nil {
		jm.trainingJob.Stop()
		jm.featureCollectionJob.Stop()
		return fmt.Errorf("failed to start evaluation job: %w", err)
	}

	if err := jm.cleanupJob.Start(); err != nil {
		jm.evaluationJob.Stop()
		jm.trainingJob.Stop()
		jm.featureCollectionJob.Stop()
		return fmt.Errorf("failed to start cleanup job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.cleanupJob.Stop()
	jm.evaluationJob.Stop()
	jm.trainingJob.Stop()
	jm.featureCollectionJob.Stop()
}
