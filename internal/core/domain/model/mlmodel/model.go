package mlmodel

import (
	"errors"
	"fmt"
	"time"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/pkg/errs"
	"forecast/internal/pkg/guard"
)

// Domain errors for model lifecycle operations.
var (
	// ErrMLModelIsNotConstructed is returned when using an improperly initialized MLModel.
	ErrMLModelIsNotConstructed = errors.New("MLModel must be created via NewMLModel constructor")
	// ErrVersionAlreadyAssigned is returned when a version is assigned twice.
	ErrVersionAlreadyAssigned = errors.New("model version is already assigned")
)

// ModelState groups the mutable lifecycle fields restored from persistence.
type ModelState struct {
	Status           Status
	TrainedAt        time.Time
	PredictionsCount int64
	LastPredictionAt *time.Time
	RecentMAE        *float64
	AccuracyTrend    AccuracyTrend
	FailureReason    string
}

// MLModel is a trained, versioned forecasting artifact for one restaurant.
// It is the aggregate root of the model registry.
//
// Invariants:
//   - version is monotonic per restaurant and never reused; the registry
//     assigns it inside the save transaction
//   - the weights variant matches the model type
//   - at most one version per restaurant is Active (registry-enforced)
type MLModel struct {
	id             kernel.UUID
	restaurantID   kernel.UUID
	version        int
	modelType      ModelType
	weights        Weights
	normalization  Normalization
	params         ModelParameters
	metrics        TrainingMetrics
	trainingPoints int

	status           Status
	trainedAt        time.Time
	predictionsCount int64
	lastPredictionAt *time.Time
	recentMAE        *float64
	accuracyTrend    AccuracyTrend
	failureReason    string

	guard guard.ConstructorGuard
}

// NewMLModel creates a freshly trained artifact in Training status with no
// version assigned yet; the registry assigns the version and activates the
// model inside its save transaction.
func NewMLModel(
	id kernel.UUID,
	restaurantID kernel.UUID,
	modelType ModelType,
	weights Weights,
	normalization Normalization,
	params ModelParameters,
	metrics TrainingMetrics,
	trainingPoints int,
	trainedAt time.Time,
) (*MLModel, error) {
	model := &MLModel{
		status:        Training,
		accuracyTrend: Stable,
		guard:         guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		model.setID(id),
		model.setRestaurantID(restaurantID),
		model.setModelType(modelType),
		model.setWeights(weights),
		params.Validate(),
		model.setTrainedAt(trainedAt),
	); err != nil {
		return nil, err
	}

	if weights.ModelType() != modelType {
		return nil, errs.NewValueIsInvalidErrorWithCause("weights",
			fmt.Errorf("weights variant %s does not match model type %s", weights.ModelType(), modelType))
	}

	model.normalization = normalization
	model.params = params
	model.metrics = metrics
	model.trainingPoints = trainingPoints
	return model, nil
}

// RestoreMLModel reconstructs a model aggregate from persistent storage.
func RestoreMLModel(
	id kernel.UUID,
	restaurantID kernel.UUID,
	version int,
	modelType ModelType,
	weights Weights,
	normalization Normalization,
	params ModelParameters,
	metrics TrainingMetrics,
	trainingPoints int,
	state ModelState,
) (*MLModel, error) {
	model, err := NewMLModel(id, restaurantID, modelType, weights, normalization,
		params, metrics, trainingPoints, state.TrainedAt)
	if err != nil {
		return nil, err
	}

	if version <= 0 {
		return nil, errs.NewVersionIsInvalidError("version",
			fmt.Errorf("%d is not a positive version", version))
	}
	if err := errors.Join(state.Status.Validate(), state.AccuracyTrend.Validate()); err != nil {
		return nil, err
	}

	model.version = version
	model.status = state.Status
	model.predictionsCount = state.PredictionsCount
	model.lastPredictionAt = state.LastPredictionAt
	model.recentMAE = state.RecentMAE
	model.accuracyTrend = state.AccuracyTrend
	model.failureReason = state.FailureReason
	return model, nil
}

// ID returns the artifact identifier.
func (m *MLModel) ID() kernel.UUID { return m.id }

// RestaurantID returns the owning restaurant's identifier.
func (m *MLModel) RestaurantID() kernel.UUID { return m.restaurantID }

// Version returns the per-restaurant monotonic version, 0 until assigned.
func (m *MLModel) Version() int { return m.version }

// Type returns the trained model family.
func (m *MLModel) Type() ModelType { return m.modelType }

// Weights returns the algorithm-specific parameter union.
func (m *MLModel) Weights() Weights { return m.weights }

// Normalization returns the z-score statistics fitted at training time.
func (m *MLModel) Normalization() Normalization { return m.normalization }

// Params returns the hyperparameters the model was trained with.
func (m *MLModel) Params() ModelParameters { return m.params }

// Metrics returns the in-sample training accuracy summary.
func (m *MLModel) Metrics() TrainingMetrics { return m.metrics }

// TrainingPoints returns the number of labeled rows used in training.
func (m *MLModel) TrainingPoints() int { return m.trainingPoints }

// Status returns the lifecycle status.
func (m *MLModel) Status() Status { return m.status }

// TrainedAt returns when training completed.
func (m *MLModel) TrainedAt() time.Time { return m.trainedAt }

// PredictionsCount returns how many predictions this version has served.
func (m *MLModel) PredictionsCount() int64 { return m.predictionsCount }

// LastPredictionAt returns the time of the most recent prediction, nil if
// the model has never predicted.
func (m *MLModel) LastPredictionAt() *time.Time { return m.lastPredictionAt }

// RecentMAE returns the live MAE reported by the evaluation loop, nil
// until the model has been evaluated.
func (m *MLModel) RecentMAE() *float64 { return m.recentMAE }

// AccuracyTrend returns the current drift classification.
func (m *MLModel) AccuracyTrend() AccuracyTrend { return m.accuracyTrend }

// FailureReason returns the recorded training error for Failed versions.
func (m *MLModel) FailureReason() string { return m.failureReason }

// AgeAt returns how long the model has been in service at the given time.
func (m *MLModel) AgeAt(now time.Time) time.Duration {
	return now.Sub(m.trainedAt)
}

// AssignVersion sets the registry-assigned version exactly once.
func (m *MLModel) AssignVersion(version int) error {
	if m.version != 0 {
		return ErrVersionAlreadyAssigned
	}
	if version <= 0 {
		return errs.NewVersionIsInvalidError("version",
			fmt.Errorf("%d is not a positive version", version))
	}
	m.version = version
	return nil
}

// Activate promotes the model to Active. Valid from Training and, for
// rollback, from Deprecated.
func (m *MLModel) Activate() error {
	newStatus, err := m.status.Activate()
	if err != nil {
		return err
	}
	m.status = newStatus
	return nil
}

// Deprecate demotes the Active model when a newer version replaces it.
func (m *MLModel) Deprecate() error {
	newStatus, err := m.status.Deprecate()
	if err != nil {
		return err
	}
	m.status = newStatus
	return nil
}

// Reactivate restores a Deprecated version to Active during rollback,
// clearing live performance state so drift tracking restarts fresh.
func (m *MLModel) Reactivate() error {
	if err := m.Activate(); err != nil {
		return err
	}
	m.recentMAE = nil
	m.accuracyTrend = Stable
	return nil
}

// MarkFailed records a training failure. Failed versions are excluded
// from loading and from rollback targets.
func (m *MLModel) MarkFailed(reason string) error {
	newStatus, err := m.status.Fail()
	if err != nil {
		return err
	}
	m.status = newStatus
	m.failureReason = reason
	return nil
}

// RecordPerformance stores the live MAE and trend computed by the
// evaluation loop.
func (m *MLModel) RecordPerformance(recentMAE float64, trend AccuracyTrend) error {
	if recentMAE < 0 {
		return errs.NewValueIsInvalidErrorWithCause("recentMAE",
			fmt.Errorf("%f must not be negative", recentMAE))
	}
	if err := trend.Validate(); err != nil {
		return err
	}

	m.recentMAE = &recentMAE
	m.accuracyTrend = trend
	return nil
}

// Degradation returns the relative drift of live error over training
// error, and whether live error has been reported at all. A zero training
// MAE yields no degradation signal.
func (m *MLModel) Degradation() (float64, bool) {
	if m.recentMAE == nil || m.metrics.MAE <= 0 {
		return 0, false
	}
	return (*m.recentMAE - m.metrics.MAE) / m.metrics.MAE, true
}

// IsEqual compares models by identifier.
func (m *MLModel) IsEqual(other *MLModel) bool {
	return other != nil && m.id.IsEqual(other.id)
}

// Validate ensures the model was created through a constructor.
func (m *MLModel) Validate() error {
	if m == nil {
		return ErrMLModelIsNotConstructed
	}
	return m.guard.Validate(ErrMLModelIsNotConstructed)
}

func (m *MLModel) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	m.id = id
	return nil
}

func (m *MLModel) setRestaurantID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	m.restaurantID = id
	return nil
}

func (m *MLModel) setModelType(modelType ModelType) error {
	if err := modelType.Validate(); err != nil {
		return err
	}
	m.modelType = modelType
	return nil
}

func (m *MLModel) setWeights(weights Weights) error {
	if err := weights.Validate(); err != nil {
		return err
	}
	m.weights = weights
	return nil
}

func (m *MLModel) setTrainedAt(trainedAt time.Time) error {
	if trainedAt.IsZero() {
		return errs.NewValueIsRequiredError("trainedAt")
	}
	m.trainedAt = trainedAt
	return nil
}
