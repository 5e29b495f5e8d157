// Package registry manages the lifecycle of trained model versions: atomic
// version assignment and activation, tiered cache loading, rollback, drift
// evaluation, and history pruning.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
	"forecast/internal/core/ports"
	"forecast/internal/pkg/errs"
)

// Retraining triggers and cache lifetimes.
const (
	// MaxModelAge is how long a version may serve before age alone
	// triggers retraining.
	MaxModelAge = 14 * 24 * time.Hour
	// DriftThreshold is the relative degradation of live MAE over
	// training MAE that triggers retraining.
	DriftThreshold = 0.2
	// MaxPredictionsPerVersion triggers retraining after a version has
	// served this many predictions.
	MaxPredictionsPerVersion = 10000

	localCacheTTL  = 5 * time.Minute
	remoteCacheTTL = time.Hour
)

// RetrainingDecision reports whether a restaurant's model should be
// retrained and why.
type RetrainingDecision struct {
	Needed  bool
	Reasons []string
}

// ModelRegistry is the single authority over model versions. All version
// assignment, activation, and demotion flows through it so the
// one-active-version invariant holds under concurrent training runs.
type ModelRegistry struct {
	uowFactory  ports.UnitOfWorkFactory
	localCache  ports.ModelCache
	remoteCache ports.ModelCache
	logger      *slog.Logger
	now         func() time.Time
}

// NewModelRegistry creates a registry. Either cache may be nil; a nil
// tier is simply skipped.
func NewModelRegistry(
	uowFactory ports.UnitOfWorkFactory,
	localCache ports.ModelCache,
	remoteCache ports.ModelCache,
	logger *slog.Logger,
) *ModelRegistry {
	return &ModelRegistry{
		uowFactory:  uowFactory,
		localCache:  localCache,
		remoteCache: remoteCache,
		logger:      logger.With("component", "model-registry"),
		now:         time.Now,
	}
}

// Save assigns the next version to a freshly trained model, activates it,
// and demotes the previously active version, all inside one transaction.
// On commit the caches are refreshed to the new version.
func (r *ModelRegistry) Save(ctx context.Context, model *mlmodel.MLModel) error {
	if err := model.Validate(); err != nil {
		return err
	}

	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ModelRepository()
	version, err := repo.NextVersion(ctx, model.RestaurantID())
	if err != nil {
		return err
	}
	if err = model.AssignVersion(version); err != nil {
		return err
	}

	if err = r.demoteActive(ctx, repo, model.RestaurantID()); err != nil {
		return err
	}

	if err = model.Activate(); err != nil {
		return err
	}
	if err = repo.Add(ctx, model); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	r.refreshCaches(ctx, model)
	r.logger.Info("model version activated",
		"restaurantId", model.RestaurantID().String(),
		"version", model.Version(),
		"modelType", model.Type().String(),
	)
	return nil
}

// SaveFailed records a failed training run as a Failed version so the
// history shows the attempt. Failed versions never serve predictions and
// the active model is left untouched.
func (r *ModelRegistry) SaveFailed(ctx context.Context, model *mlmodel.MLModel, reason string) error {
	if err := model.Validate(); err != nil {
		return err
	}

	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ModelRepository()
	version, err := repo.NextVersion(ctx, model.RestaurantID())
	if err != nil {
		return err
	}
	if err = model.AssignVersion(version); err != nil {
		return err
	}
	if err = model.MarkFailed(reason); err != nil {
		return err
	}
	if err = repo.Add(ctx, model); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	r.logger.Warn("training failure recorded",
		"restaurantId", model.RestaurantID().String(),
		"version", model.Version(),
		"reason", reason,
	)
	return nil
}

// Load returns the restaurant's active model, consulting the local cache,
// then the remote cache, then the database. Cache hits backfill the
// faster tiers. Returns errs.ErrObjectNotFound when no version is active.
func (r *ModelRegistry) Load(ctx context.Context, restaurantID kernel.UUID) (*mlmodel.MLModel, error) {
	if err := restaurantID.Validate(); err != nil {
		return nil, err
	}

	if model, err := r.cacheGet(ctx, r.localCache, restaurantID); err == nil {
		return model, nil
	}

	if model, err := r.cacheGet(ctx, r.remoteCache, restaurantID); err == nil {
		r.cacheSet(ctx, r.localCache, model, localCacheTTL)
		return model, nil
	}

	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	model, err := uow.ModelRepository().GetActive(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	r.refreshCaches(ctx, model)
	return model, nil
}

// Rollback demotes the active version and reactivates the target version.
// Failed versions are not valid targets. The swap happens in one
// transaction; caches are refreshed to the restored version.
func (r *ModelRegistry) Rollback(ctx context.Context, restaurantID kernel.UUID, targetVersion int) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}

	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ModelRepository()
	target, err := repo.GetByVersion(ctx, restaurantID, targetVersion)
	if err != nil {
		return err
	}
	if target.Status() == mlmodel.Failed {
		return errs.NewValueIsInvalidErrorWithCause("targetVersion",
			fmt.Errorf("version %d failed training and cannot be restored", targetVersion))
	}
	if target.Status() == mlmodel.Active {
		return nil
	}

	if err = r.demoteActive(ctx, repo, restaurantID); err != nil {
		return err
	}

	if err = target.Reactivate(); err != nil {
		return err
	}
	if err = repo.Update(ctx, target); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	r.refreshCaches(ctx, target)
	r.logger.Info("model rolled back",
		"restaurantId", restaurantID.String(),
		"restoredVersion", target.Version(),
	)
	return nil
}

// CheckRetrainingNeeded evaluates every retraining trigger for the
// restaurant: missing active model, age, drift classification, relative
// degradation, and served prediction volume.
func (r *ModelRegistry) CheckRetrainingNeeded(ctx context.Context, restaurantID kernel.UUID) (RetrainingDecision, error) {
	model, err := r.Load(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return RetrainingDecision{Needed: true, Reasons: []string{"no active model"}}, nil
		}
		return RetrainingDecision{}, err
	}

	var reasons []string
	if age := model.AgeAt(r.now()); age > MaxModelAge {
		reasons = append(reasons, fmt.Sprintf("model age %s exceeds %s", age.Round(time.Hour), MaxModelAge))
	}
	if model.AccuracyTrend() == mlmodel.Degrading {
		reasons = append(reasons, "accuracy trend is degrading")
	}
	if degradation, ok := model.Degradation(); ok && degradation > DriftThreshold {
		reasons = append(reasons, fmt.Sprintf("accuracy degraded %.0f%% over training error", degradation*100))
	}
	if model.PredictionsCount() > MaxPredictionsPerVersion {
		reasons = append(reasons, fmt.Sprintf("served %d predictions", model.PredictionsCount()))
	}

	return RetrainingDecision{Needed: len(reasons) > 0, Reasons: reasons}, nil
}

// UpdatePerformance stores the live MAE measured by the evaluation loop on
// the active version and reclassifies its accuracy trend.
func (r *ModelRegistry) UpdatePerformance(ctx context.Context, restaurantID kernel.UUID, recentMAE float64) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}

	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ModelRepository()
	model, err := repo.GetActive(ctx, restaurantID)
	if err != nil {
		return err
	}

	trend := mlmodel.Stable
	if trainingMAE := model.Metrics().MAE; trainingMAE > 0 {
		trend = mlmodel.TrendFromDegradation((recentMAE - trainingMAE) / trainingMAE)
	}
	if err = model.RecordPerformance(recentMAE, trend); err != nil {
		return err
	}
	if err = repo.Update(ctx, model); err != nil {
		return err
	}

	if err = uow.Commit(ctx); err != nil {
		return err
	}

	r.refreshCaches(ctx, model)
	return nil
}

// RecordPrediction bumps the active version's served-prediction counter.
// The increment is a single atomic statement in the repository, so
// concurrent predictions never lose counts.
func (r *ModelRegistry) RecordPrediction(ctx context.Context, modelID kernel.UUID) error {
	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.ModelRepository().IncrementPredictions(ctx, modelID, r.now()); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

// PruneHistory deletes old versions beyond the newest keep, never touching
// the Active version. Returns how many versions were removed.
func (r *ModelRegistry) PruneHistory(ctx context.Context, restaurantID kernel.UUID, keep int) (int, error) {
	if err := restaurantID.Validate(); err != nil {
		return 0, err
	}
	if keep < 1 {
		return 0, errs.NewValueIsInvalidErrorWithCause("keep",
			fmt.Errorf("%d must be at least 1", keep))
	}

	uow := r.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ModelRepository()
	versions, err := repo.ListVersions(ctx, restaurantID)
	if err != nil {
		return 0, err
	}

	var prune []int
	for i, model := range versions {
		if i < keep || model.Status() == mlmodel.Active {
			continue
		}
		prune = append(prune, model.Version())
	}
	if len(prune) == 0 {
		return 0, uow.Commit(ctx)
	}

	if err = repo.DeleteVersions(ctx, restaurantID, prune); err != nil {
		return 0, err
	}
	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	r.logger.Info("model history pruned",
		"restaurantId", restaurantID.String(),
		"removed", len(prune),
	)
	return len(prune), nil
}

// demoteActive deprecates the restaurant's active version if one exists.
func (r *ModelRegistry) demoteActive(ctx context.Context, repo ports.ModelRepository, restaurantID kernel.UUID) error {
	current, err := repo.GetActive(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return nil
		}
		return err
	}

	if err = current.Deprecate(); err != nil {
		return err
	}
	return repo.Update(ctx, current)
}

func (r *ModelRegistry) cacheGet(ctx context.Context, cache ports.ModelCache, restaurantID kernel.UUID) (*mlmodel.MLModel, error) {
	if cache == nil {
		return nil, ports.ErrCacheMiss
	}
	return cache.Get(ctx, restaurantID)
}

func (r *ModelRegistry) cacheSet(ctx context.Context, cache ports.ModelCache, model *mlmodel.MLModel, ttl time.Duration) {
	if cache == nil {
		return
	}
	if err := cache.Set(ctx, model, ttl); err != nil {
		r.logger.Warn("model cache set failed",
			"restaurantId", model.RestaurantID().String(),
			"error", err,
		)
	}
}

// refreshCaches evicts stale entries and installs the given model in both
// tiers. Cache failures are logged, never propagated: the database remains
// the source of truth.
func (r *ModelRegistry) refreshCaches(ctx context.Context, model *mlmodel.MLModel) {
	for _, cache := range []ports.ModelCache{r.localCache, r.remoteCache} {
		if cache == nil {
			continue
		}
		if err := cache.Delete(ctx, model.RestaurantID()); err != nil {
			r.logger.Warn("model cache eviction failed",
				"restaurantId", model.RestaurantID().String(),
				"error", err,
			)
		}
	}
	r.cacheSet(ctx, r.localCache, model, localCacheTTL)
	r.cacheSet(ctx, r.remoteCache, model, remoteCacheTTL)
}
