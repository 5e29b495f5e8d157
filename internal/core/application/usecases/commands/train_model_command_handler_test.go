package commands_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"testing"
	"time"

	"forecast/internal/core/application/registry"
	"forecast/internal/core/application/usecases/commands"
	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
	"forecast/internal/core/domain/services"
	"forecast/internal/core/ports"
	"forecast/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSnapshotRepository struct {
	mock.Mock
}

func (m *MockSnapshotRepository) Upsert(ctx context.Context, snapshot *forecast.FeatureSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepository) Get(ctx context.Context, restaurantID kernel.UUID, hour time.Time) (*forecast.FeatureSnapshot, error) {
	args := m.Called(ctx, restaurantID, hour)
	if snapshot, ok := args.Get(0).(*forecast.FeatureSnapshot); ok {
		return snapshot, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSnapshotRepository) GetRange(ctx context.Context, restaurantID kernel.UUID, from, to time.Time) ([]*forecast.FeatureSnapshot, error) {
	args := m.Called(ctx, restaurantID, from, to)
	if snapshots, ok := args.Get(0).([]*forecast.FeatureSnapshot); ok {
		return snapshots, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSnapshotRepository) GetUnlabeled(ctx context.Context, restaurantID kernel.UUID, before time.Time) ([]*forecast.FeatureSnapshot, error) {
	args := m.Called(ctx, restaurantID, before)
	if snapshots, ok := args.Get(0).([]*forecast.FeatureSnapshot); ok {
		return snapshots, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSnapshotRepository) GetLabeled(ctx context.Context, restaurantID kernel.UUID, from, to time.Time) ([]*forecast.FeatureSnapshot, error) {
	args := m.Called(ctx, restaurantID, from, to)
	if snapshots, ok := args.Get(0).([]*forecast.FeatureSnapshot); ok {
		return snapshots, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSnapshotRepository) RecordActuals(ctx context.Context, snapshot *forecast.FeatureSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockTrainingUoW struct {
	mock.Mock
}

func (m *MockTrainingUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTrainingUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTrainingUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTrainingUoW) RestaurantRepository() ports.RestaurantRepository {
	args := m.Called()
	return args.Get(0).(ports.RestaurantRepository)
}

func (m *MockTrainingUoW) SnapshotRepository() ports.SnapshotRepository {
	args := m.Called()
	return args.Get(0).(ports.SnapshotRepository)
}

type MockTrainingUoWFactory struct {
	mock.Mock
}

func (m *MockTrainingUoWFactory) Create() commands.TrainingUoW {
	args := m.Called()
	return args.Get(0).(commands.TrainingUoW)
}

type MockModelStore struct {
	mock.Mock
}

func (m *MockModelStore) Save(ctx context.Context, model *mlmodel.MLModel) error {
	args := m.Called(ctx, model)
	return args.Error(0)
}

func (m *MockModelStore) SaveFailed(ctx context.Context, model *mlmodel.MLModel, reason string) error {
	args := m.Called(ctx, model, reason)
	return args.Error(0)
}

func (m *MockModelStore) Load(ctx context.Context, restaurantID kernel.UUID) (*mlmodel.MLModel, error) {
	args := m.Called(ctx, restaurantID)
	if model, ok := args.Get(0).(*mlmodel.MLModel); ok {
		return model, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockModelStore) Rollback(ctx context.Context, restaurantID kernel.UUID, targetVersion int) error {
	args := m.Called(ctx, restaurantID, targetVersion)
	return args.Error(0)
}

func (m *MockModelStore) CheckRetrainingNeeded(ctx context.Context, restaurantID kernel.UUID) (registry.RetrainingDecision, error) {
	args := m.Called(ctx, restaurantID)
	return args.Get(0).(registry.RetrainingDecision), args.Error(1)
}

func (m *MockModelStore) UpdatePerformance(ctx context.Context, restaurantID kernel.UUID, recentMAE float64) error {
	args := m.Called(ctx, restaurantID, recentMAE)
	return args.Error(0)
}

func (m *MockModelStore) PruneHistory(ctx context.Context, restaurantID kernel.UUID, keep int) (int, error) {
	args := m.Called(ctx, restaurantID, keep)
	return args.Int(0), args.Error(1)
}

// assemblerFeatureBuilder runs the real feature assembly so trained
// coefficients come out of genuine vectors rather than canned ones.
type assemblerFeatureBuilder struct {
	assembler services.FeatureAssembler
}

func (b assemblerFeatureBuilder) BuildSnapshots(_ context.Context, _ *forecast.Restaurant, _ []forecast.LocalEvent, _ []time.Time) ([]*forecast.FeatureSnapshot, error) {
	return nil, nil
}

func (b assemblerFeatureBuilder) Vector(snapshot *forecast.FeatureSnapshot) (forecast.FeatureVector, error) {
	return b.assembler.Assemble(snapshot)
}

func trainingLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func trainableRestaurant(t *testing.T, minTrainingPoints int) *forecast.Restaurant {
	t.Helper()

	location, err := kernel.NewGeoPoint(40.7128, -74.0060)
	require.NoError(t, err)

	restaurant, err := forecast.RestoreRestaurant(
		kernel.NewUUID(), "Downtown Bistro", location, 5.0, minTrainingPoints)
	require.NoError(t, err)
	return restaurant
}

// labeledHistory builds count consecutive labeled hours where demand
// tracks temperature, enough signal for any trainer to converge on.
func labeledHistory(t *testing.T, restaurantID kernel.UUID, count int) []*forecast.FeatureSnapshot {
	t.Helper()

	start := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	snapshots := make([]*forecast.FeatureSnapshot, 0, count)

	for i := range count {
		temperature := 50.0 + float64(i%20)
		snapshot, err := forecast.NewFeatureSnapshot(
			kernel.NewUUID(),
			restaurantID,
			start.Add(time.Duration(i)*time.Hour),
			false,
			forecast.WeatherObservation{Temperature: temperature, Humidity: 60, CloudCover: 30},
			forecast.EventSignal{},
			forecast.LagSignal{SameHour1D: temperature, RollingAvg7D: temperature},
		)
		require.NoError(t, err)

		demand := 10 + temperature/2
		require.NoError(t, snapshot.RecordActuals(demand, demand/2))
		snapshots = append(snapshots, snapshot)
	}
	return snapshots
}

// hourlyDemandHistory builds days of consecutive labeled hours where
// demand follows the hour of day (three orders per slot) plus a small
// deterministic noise term, with lag signals tracking the clean pattern.
func hourlyDemandHistory(t *testing.T, restaurantID kernel.UUID, days int) []*forecast.FeatureSnapshot {
	t.Helper()

	rng := rand.New(rand.NewSource(99))
	start := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	snapshots := make([]*forecast.FeatureSnapshot, 0, days*24)

	for i := range days * 24 {
		capturedAt := start.Add(time.Duration(i) * time.Hour)
		base := 3 * float64(capturedAt.Hour())
		demand := base + rng.Float64()*2

		snapshot, err := forecast.NewFeatureSnapshot(
			kernel.NewUUID(),
			restaurantID,
			capturedAt,
			false,
			forecast.WeatherObservation{Temperature: 70, Humidity: 60, CloudCover: 20},
			forecast.EventSignal{},
			forecast.LagSignal{SameHour1D: base, SameHour7D: base, RollingAvg7D: base},
		)
		require.NoError(t, err)
		require.NoError(t, snapshot.RecordActuals(demand, demand))
		snapshots = append(snapshots, snapshot)
	}
	return snapshots
}

// naiveMeanMAE is the baseline error of always predicting the mean of
// the merged demand target.
func naiveMeanMAE(snapshots []*forecast.FeatureSnapshot) float64 {
	targets := make([]float64, 0, len(snapshots))
	sum := 0.0
	for _, snapshot := range snapshots {
		target := (*snapshot.ActualDineIn() + *snapshot.ActualDelivery()) / 2
		targets = append(targets, target)
		sum += target
	}
	mean := sum / float64(len(targets))

	mae := 0.0
	for _, target := range targets {
		mae += math.Abs(target - mean)
	}
	return mae / float64(len(targets))
}

func newTrainHandler(factory commands.TrainingUoWFactory, store commands.ModelStore) commands.TrainModelCommandHandler {
	return commands.NewTrainModelCommandHandler(
		factory,
		store,
		assemblerFeatureBuilder{assembler: services.NewFeatureAssembler()},
		trainingLogger(),
		42,
	)
}

func TestTrainModelCommandHandler_Handle_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	restaurant := trainableRestaurant(t, 24)
	snapshots := labeledHistory(t, restaurant.ID(), 48)

	cmd, err := commands.NewTrainModelCommand(
		restaurant.ID(), mlmodel.Linear, mlmodel.DefaultModelParameters())
	require.NoError(t, err)

	mockRestaurants := new(MockRestaurantRepository)
	mockSnapshots := new(MockSnapshotRepository)
	mockUoW := new(MockTrainingUoW)
	mockFactory := new(MockTrainingUoWFactory)
	mockStore := new(MockModelStore)

	mockFactory.On("Create").Return(mockUoW).Once()
	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("RestaurantRepository").Return(mockRestaurants).Once()
	mockRestaurants.On("Get", ctx, restaurant.ID()).Return(restaurant, nil).Once()
	mockUoW.On("SnapshotRepository").Return(mockSnapshots).Once()
	mockSnapshots.On("GetLabeled", ctx, restaurant.ID(), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(snapshots, nil).Once()
	mockUoW.On("Commit", ctx).Return(nil).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()

	mockStore.On("Save", ctx, mock.MatchedBy(func(model *mlmodel.MLModel) bool {
		return model.Validate() == nil &&
			model.RestaurantID() == restaurant.ID() &&
			model.Type() == mlmodel.Linear &&
			model.TrainingPoints() == 48
	})).Return(nil).Once()

	handler := newTrainHandler(mockFactory, mockStore)

	// Act
	result, err := handler.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, mlmodel.Linear, result.ModelType)
	assert.Equal(t, 48, result.TrainingPoints)
	assert.GreaterOrEqual(t, result.Metrics.MAE, 0.0)
	assert.GreaterOrEqual(t, result.Metrics.RMSE, result.Metrics.MAE)
	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockRestaurants.AssertExpectations(t)
	mockSnapshots.AssertExpectations(t)
	mockStore.AssertExpectations(t)
}

func TestTrainModelCommandHandler_Handle_LinearBeatsNaiveMeanBaseline(t *testing.T) {
	// Arrange: 45 days of hourly history (1,080 labeled points) against
	// the default 720-point minimum.
	ctx := context.Background()
	restaurant := trainableRestaurant(t, 720)
	snapshots := hourlyDemandHistory(t, restaurant.ID(), 45)

	cmd, err := commands.NewTrainModelCommand(
		restaurant.ID(), mlmodel.Linear, mlmodel.DefaultModelParameters())
	require.NoError(t, err)

	mockRestaurants := new(MockRestaurantRepository)
	mockSnapshots := new(MockSnapshotRepository)
	mockUoW := new(MockTrainingUoW)
	mockFactory := new(MockTrainingUoWFactory)
	mockStore := new(MockModelStore)

	mockFactory.On("Create").Return(mockUoW).Once()
	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("RestaurantRepository").Return(mockRestaurants).Once()
	mockRestaurants.On("Get", ctx, restaurant.ID()).Return(restaurant, nil).Once()
	mockUoW.On("SnapshotRepository").Return(mockSnapshots).Once()
	mockSnapshots.On("GetLabeled", ctx, restaurant.ID(), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(snapshots, nil).Once()
	mockUoW.On("Commit", ctx).Return(nil).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()
	mockStore.On("Save", ctx, mock.AnythingOfType("*mlmodel.MLModel")).Return(nil).Once()

	handler := newTrainHandler(mockFactory, mockStore)

	// Act
	result, err := handler.Handle(ctx, cmd)

	// Assert: the fitted model must beat always answering the mean.
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, 1080, result.TrainingPoints)
	assert.Less(t, result.Metrics.MAE, naiveMeanMAE(snapshots))
	mockStore.AssertExpectations(t)
}

func TestTrainModelCommandHandler_Handle_InsufficientDataIsBusinessRefusal(t *testing.T) {
	// Arrange
	ctx := context.Background()
	restaurant := trainableRestaurant(t, 720)
	snapshots := labeledHistory(t, restaurant.ID(), 5)

	cmd, err := commands.NewTrainModelCommand(
		restaurant.ID(), mlmodel.Ensemble, mlmodel.DefaultModelParameters())
	require.NoError(t, err)

	mockRestaurants := new(MockRestaurantRepository)
	mockSnapshots := new(MockSnapshotRepository)
	mockUoW := new(MockTrainingUoW)
	mockFactory := new(MockTrainingUoWFactory)
	mockStore := new(MockModelStore)

	mockFactory.On("Create").Return(mockUoW).Once()
	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("RestaurantRepository").Return(mockRestaurants).Once()
	mockRestaurants.On("Get", ctx, restaurant.ID()).Return(restaurant, nil).Once()
	mockUoW.On("SnapshotRepository").Return(mockSnapshots).Once()
	mockSnapshots.On("GetLabeled", ctx, restaurant.ID(), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(snapshots, nil).Once()
	mockUoW.On("Commit", ctx).Return(nil).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()

	handler := newTrainHandler(mockFactory, mockStore)

	// Act
	result, err := handler.Handle(ctx, cmd)

	// Assert - refused, not failed; nothing is persisted
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "insufficient training data")
	assert.Contains(t, result.Message, "need 720")
	mockStore.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	mockStore.AssertNotCalled(t, "SaveFailed", mock.Anything, mock.Anything, mock.Anything)
}

func TestTrainModelCommandHandler_Handle_InvalidCommand(t *testing.T) {
	// Arrange
	ctx := context.Background()
	var invalidCmd commands.TrainModelCommand

	mockFactory := new(MockTrainingUoWFactory)
	mockStore := new(MockModelStore)
	handler := newTrainHandler(mockFactory, mockStore)

	// Act
	_, err := handler.Handle(ctx, invalidCmd)

	// Assert
	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrTrainModelCommandIsNotConstructed)
	mockFactory.AssertNotCalled(t, "Create")
}

func TestTrainModelCommandHandler_Handle_BeginTransactionError(t *testing.T) {
	// Arrange
	ctx := context.Background()
	restaurant := trainableRestaurant(t, 24)

	cmd, err := commands.NewTrainModelCommand(
		restaurant.ID(), mlmodel.Linear, mlmodel.DefaultModelParameters())
	require.NoError(t, err)

	mockUoW := new(MockTrainingUoW)
	mockFactory := new(MockTrainingUoWFactory)
	mockStore := new(MockModelStore)

	mockFactory.On("Create").Return(mockUoW).Once()
	mockUoW.On("Begin", ctx).Return(errors.New("connection refused")).Once()

	handler := newTrainHandler(mockFactory, mockStore)

	// Act
	_, err = handler.Handle(ctx, cmd)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	mockUoW.AssertExpectations(t)
}

func TestTrainModelCommandHandler_Handle_UnknownRestaurant(t *testing.T) {
	// Arrange
	ctx := context.Background()
	restaurantID := kernel.NewUUID()

	cmd, err := commands.NewTrainModelCommand(
		restaurantID, mlmodel.Linear, mlmodel.DefaultModelParameters())
	require.NoError(t, err)

	mockRestaurants := new(MockRestaurantRepository)
	mockUoW := new(MockTrainingUoW)
	mockFactory := new(MockTrainingUoWFactory)
	mockStore := new(MockModelStore)

	mockFactory.On("Create").Return(mockUoW).Once()
	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("RestaurantRepository").Return(mockRestaurants).Once()
	mockRestaurants.On("Get", ctx, restaurantID).
		Return((*forecast.Restaurant)(nil), errs.NewObjectNotFoundError("restaurantID", restaurantID)).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()

	handler := newTrainHandler(mockFactory, mockStore)

	// Act
	_, err = handler.Handle(ctx, cmd)

	// Assert
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	mockStore.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestTrainModelCommandHandler_Handle_SaveErrorPropagates(t *testing.T) {
	// Arrange
	ctx := context.Background()
	restaurant := trainableRestaurant(t, 24)
	snapshots := labeledHistory(t, restaurant.ID(), 48)

	cmd, err := commands.NewTrainModelCommand(
		restaurant.ID(), mlmodel.Linear, mlmodel.DefaultModelParameters())
	require.NoError(t, err)

	mockRestaurants := new(MockRestaurantRepository)
	mockSnapshots := new(MockSnapshotRepository)
	mockUoW := new(MockTrainingUoW)
	mockFactory := new(MockTrainingUoWFactory)
	mockStore := new(MockModelStore)

	mockFactory.On("Create").Return(mockUoW).Once()
	mockUoW.On("Begin", ctx).Return(nil).Once()
	mockUoW.On("RestaurantRepository").Return(mockRestaurants).Once()
	mockRestaurants.On("Get", ctx, restaurant.ID()).Return(restaurant, nil).Once()
	mockUoW.On("SnapshotRepository").Return(mockSnapshots).Once()
	mockSnapshots.On("GetLabeled", ctx, restaurant.ID(), mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
		Return(snapshots, nil).Once()
	mockUoW.On("Commit", ctx).Return(nil).Once()
	mockUoW.On("Rollback", ctx).Return(nil).Once()

	mockStore.On("Save", ctx, mock.AnythingOfType("*mlmodel.MLModel")).
		Return(errors.New("registry unavailable")).Once()

	handler := newTrainHandler(mockFactory, mockStore)

	// Act
	_, err = handler.Handle(ctx, cmd)

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "registry unavailable")
	mockStore.AssertExpectations(t)
}
