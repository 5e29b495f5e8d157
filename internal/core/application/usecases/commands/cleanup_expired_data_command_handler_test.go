package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"forecast/internal/core/application/usecases/commands"
	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEventRepository struct {
	mock.Mock
}

func (m *MockEventRepository) ReplaceForRestaurant(ctx context.Context, restaurantID kernel.UUID, events []forecast.LocalEvent, from, to time.Time) error {
	args := m.Called(ctx, restaurantID, events, from, to)
	return args.Error(0)
}

func (m *MockEventRepository) GetOverlapping(ctx context.Context, restaurantID kernel.UUID, from, to time.Time) ([]forecast.LocalEvent, error) {
	args := m.Called(ctx, restaurantID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]forecast.LocalEvent), args.Error(1)
}

func (m *MockEventRepository) DeleteEndedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockCleanupUoW struct {
	mock.Mock
}

func (m *MockCleanupUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCleanupUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCleanupUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCleanupUoW) SnapshotRepository() ports.SnapshotRepository {
	args := m.Called()
	return args.Get(0).(ports.SnapshotRepository)
}

func (m *MockCleanupUoW) EventRepository() ports.EventRepository {
	args := m.Called()
	return args.Get(0).(ports.EventRepository)
}

type MockCleanupUoWFactory struct {
	mock.Mock
}

func (m *MockCleanupUoWFactory) Create() commands.CleanupUoW {
	args := m.Called()
	return args.Get(0).(commands.CleanupUoW)
}

func TestNewCleanupExpiredDataCommand(t *testing.T) {
	// Act
	cmd := commands.NewCleanupExpiredDataCommand()

	// Assert
	assert.NoError(t, cmd.Validate())
}

func TestCleanupExpiredDataCommand_Validate_ZeroValue(t *testing.T) {
	// Arrange
	var cmd commands.CleanupExpiredDataCommand

	// Act
	err := cmd.Validate()

	// Assert
	require.ErrorIs(t, err, commands.ErrCleanupExpiredDataCommandIsNotConstructed)
}

func TestCleanupExpiredDataCommandHandler_Handle_Success(t *testing.T) {
	// Arrange
	ctx := t.Context()
	cmd := commands.NewCleanupExpiredDataCommand()

	first := trainableRestaurant(t, 720)
	second := trainableRestaurant(t, 720)

	mockSnapshotRepo := new(MockSnapshotRepository)
	mockEventRepo := new(MockEventRepository)
	mockCleanupUoW := new(MockCleanupUoW)
	mockCleanupFactory := new(MockCleanupUoWFactory)

	mock.InOrder(
		mockCleanupUoW.On("Begin", ctx).Return(nil).Once(),
		mockCleanupUoW.On("SnapshotRepository").Return(mockSnapshotRepo).Once(),
		mockSnapshotRepo.On("DeleteOlderThan", ctx, mock.AnythingOfType("time.Time")).Return(int64(120), nil).Once(),
		mockCleanupUoW.On("EventRepository").Return(mockEventRepo).Once(),
		mockEventRepo.On("DeleteEndedBefore", ctx, mock.AnythingOfType("time.Time")).Return(int64(7), nil).Once(),
		mockCleanupUoW.On("Commit", ctx).Return(nil).Once(),
		mockCleanupUoW.On("Rollback", ctx).Return(nil).Once(),
	)
	mockCleanupFactory.On("Create").Return(mockCleanupUoW).Once()

	mockRestaurantRepo := new(MockRestaurantRepository)
	mockRestaurantUoW := new(MockRestaurantUoW)
	mockRestaurantFactory := new(MockRestaurantUoWFactory)

	mockRestaurantUoW.On("Begin", ctx).Return(nil).Once()
	mockRestaurantUoW.On("RestaurantRepository").Return(mockRestaurantRepo).Once()
	mockRestaurantRepo.On("GetAll", ctx).Return([]*forecast.Restaurant{first, second}, nil).Once()
	mockRestaurantUoW.On("Commit", ctx).Return(nil).Once()
	mockRestaurantUoW.On("Rollback", ctx).Return(nil).Once()
	mockRestaurantFactory.On("Create").Return(mockRestaurantUoW).Once()

	mockStore := new(MockModelStore)
	mockStore.On("PruneHistory", ctx, first.ID(), 10).Return(3, nil).Once()
	mockStore.On("PruneHistory", ctx, second.ID(), 10).Return(0, nil).Once()

	handler := commands.NewCleanupExpiredDataCommandHandler(
		mockCleanupFactory, mockRestaurantFactory, mockStore, trainingLogger())

	// Act
	result, err := handler.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, int64(120), result.SnapshotsRemoved)
	assert.Equal(t, int64(7), result.EventsRemoved)
	assert.Equal(t, 3, result.VersionsPruned)
	mockStore.AssertExpectations(t)
}

func TestCleanupExpiredDataCommandHandler_Handle_SweepErrorAborts(t *testing.T) {
	// Arrange
	ctx := t.Context()
	cmd := commands.NewCleanupExpiredDataCommand()

	mockSnapshotRepo := new(MockSnapshotRepository)
	mockCleanupUoW := new(MockCleanupUoW)
	mockCleanupFactory := new(MockCleanupUoWFactory)

	mockCleanupUoW.On("Begin", ctx).Return(nil).Once()
	mockCleanupUoW.On("SnapshotRepository").Return(mockSnapshotRepo).Once()
	mockSnapshotRepo.On("DeleteOlderThan", ctx, mock.AnythingOfType("time.Time")).
		Return(int64(0), errors.New("disk failure")).Once()
	mockCleanupUoW.On("Rollback", ctx).Return(nil).Once()
	mockCleanupFactory.On("Create").Return(mockCleanupUoW).Once()

	mockRestaurantFactory := new(MockRestaurantUoWFactory)
	mockStore := new(MockModelStore)

	handler := commands.NewCleanupExpiredDataCommandHandler(
		mockCleanupFactory, mockRestaurantFactory, mockStore, trainingLogger())

	// Act
	_, err := handler.Handle(ctx, cmd)

	// Assert - pruning never starts when the storage sweep fails
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk failure")
	mockRestaurantFactory.AssertNotCalled(t, "Create")
	mockStore.AssertNotCalled(t, "PruneHistory", mock.Anything, mock.Anything, mock.Anything)
}

func TestCleanupExpiredDataCommandHandler_Handle_PruneFailureSkipsRestaurant(t *testing.T) {
	// Arrange - the first restaurant's prune fails, the second still runs
	ctx := t.Context()
	cmd := commands.NewCleanupExpiredDataCommand()

	first := trainableRestaurant(t, 720)
	second := trainableRestaurant(t, 720)

	mockSnapshotRepo := new(MockSnapshotRepository)
	mockEventRepo := new(MockEventRepository)
	mockCleanupUoW := new(MockCleanupUoW)
	mockCleanupFactory := new(MockCleanupUoWFactory)

	mockCleanupUoW.On("Begin", ctx).Return(nil).Once()
	mockCleanupUoW.On("SnapshotRepository").Return(mockSnapshotRepo).Once()
	mockSnapshotRepo.On("DeleteOlderThan", ctx, mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()
	mockCleanupUoW.On("EventRepository").Return(mockEventRepo).Once()
	mockEventRepo.On("DeleteEndedBefore", ctx, mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()
	mockCleanupUoW.On("Commit", ctx).Return(nil).Once()
	mockCleanupUoW.On("Rollback", ctx).Return(nil).Once()
	mockCleanupFactory.On("Create").Return(mockCleanupUoW).Once()

	mockRestaurantRepo := new(MockRestaurantRepository)
	mockRestaurantUoW := new(MockRestaurantUoW)
	mockRestaurantFactory := new(MockRestaurantUoWFactory)

	mockRestaurantUoW.On("Begin", ctx).Return(nil).Once()
	mockRestaurantUoW.On("RestaurantRepository").Return(mockRestaurantRepo).Once()
	mockRestaurantRepo.On("GetAll", ctx).Return([]*forecast.Restaurant{first, second}, nil).Once()
	mockRestaurantUoW.On("Commit", ctx).Return(nil).Once()
	mockRestaurantUoW.On("Rollback", ctx).Return(nil).Once()
	mockRestaurantFactory.On("Create").Return(mockRestaurantUoW).Once()

	mockStore := new(MockModelStore)
	mockStore.On("PruneHistory", ctx, first.ID(), 10).Return(0, errors.New("registry unavailable")).Once()
	mockStore.On("PruneHistory", ctx, second.ID(), 10).Return(4, nil).Once()

	handler := commands.NewCleanupExpiredDataCommandHandler(
		mockCleanupFactory, mockRestaurantFactory, mockStore, trainingLogger())

	// Act
	result, err := handler.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 4, result.VersionsPruned)
	mockStore.AssertExpectations(t)
}

func TestCleanupExpiredDataCommandHandler_Handle_InvalidCommand(t *testing.T) {
	// Arrange
	ctx := t.Context()
	var cmd commands.CleanupExpiredDataCommand

	mockCleanupFactory := new(MockCleanupUoWFactory)
	mockRestaurantFactory := new(MockRestaurantUoWFactory)
	mockStore := new(MockModelStore)

	handler := commands.NewCleanupExpiredDataCommandHandler(
		mockCleanupFactory, mockRestaurantFactory, mockStore, trainingLogger())

	// Act
	_, err := handler.Handle(ctx, cmd)

	// Assert
	require.ErrorIs(t, err, commands.ErrCleanupExpiredDataCommandIsNotConstructed)
	mockCleanupFactory.AssertNotCalled(t, "Create")
}
