// Package jobs provides scheduled background tasks for the forecasting engine.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle the periodic operations the engine needs to keep its models fresh.
//
// # Available Jobs
//
// 1. FeatureCollectionJob - Runs hourly to refresh local events, build feature
// snapshots for the next 24 hours and backfill actual demand for past hours
// 2. TrainingJob - Runs nightly to retrain models for restaurants whose active
// model is stale, degraded or missing
// 3. EvaluationJob - Runs every six hours to score active models against
// recent actuals and update their accuracy trend
// 4. CleanupJob - Runs nightly to remove expired snapshots, ended events and
// superseded model versions
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required handlers
//	jobManager := jobs.NewJobManager(collectHandler, trainHandler, evaluateHandler, cleanupHandler, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - Sweep jobs isolate per-restaurant failures; one restaurant cannot block
// the rest of the fleet
// - Job-level errors are logged and the job retries on its next tick
// - Failed job starts will stop any already running jobs
package jobs
