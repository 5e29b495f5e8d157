package commands_test

import (
	"context"
	"testing"

	"forecast/internal/core/application/usecases/commands"
	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestNewRollbackModelCommand_ValidInput(t *testing.T) {
	// Arrange
	restaurantID := kernel.NewUUID()

	// Act
	cmd, err := commands.NewRollbackModelCommand(restaurantID, 3)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, restaurantID, cmd.RestaurantID())
	assert.Equal(t, 3, cmd.TargetVersion())
	assert.NoError(t, cmd.Validate())
}

func TestNewRollbackModelCommand_RejectsNonPositiveVersion(t *testing.T) {
	testCases := []struct {
		name    string
		version int
	}{
		{name: "zero", version: 0},
		{name: "negative", version: -1},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := commands.NewRollbackModelCommand(kernel.NewUUID(), tc.version)
			require.Error(t, err)
		})
	}
}

func TestNewRollbackModelCommand_RejectsInvalidRestaurantID(t *testing.T) {
	_, err := commands.NewRollbackModelCommand(kernel.UUID{}, 3)

	require.Error(t, err)
}

func TestRollbackModelCommand_Validate_ZeroValue(t *testing.T) {
	var cmd commands.RollbackModelCommand

	err := cmd.Validate()

	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrRollbackModelCommandIsNotConstructed)
}

func TestRollbackModelCommandHandler_Handle_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	restaurantID := kernel.NewUUID()

	cmd, err := commands.NewRollbackModelCommand(restaurantID, 2)
	require.NoError(t, err)

	mockStore := new(MockModelStore)
	mockStore.On("Rollback", ctx, restaurantID, 2).Return(nil).Once()

	handler := commands.NewRollbackModelCommandHandler(mockStore, trainingLogger())

	// Act
	err = handler.Handle(ctx, cmd)

	// Assert
	require.NoError(t, err)
	mockStore.AssertExpectations(t)
}

func TestRollbackModelCommandHandler_Handle_InvalidCommand(t *testing.T) {
	// Arrange
	ctx := context.Background()
	var invalidCmd commands.RollbackModelCommand

	mockStore := new(MockModelStore)
	handler := commands.NewRollbackModelCommandHandler(mockStore, trainingLogger())

	// Act
	err := handler.Handle(ctx, invalidCmd)

	// Assert
	require.Error(t, err)
	require.ErrorIs(t, err, commands.ErrRollbackModelCommandIsNotConstructed)
	mockStore.AssertNotCalled(t, "Rollback", mock.Anything, mock.Anything, mock.Anything)
}

func TestRollbackModelCommandHandler_Handle_UnknownVersion(t *testing.T) {
	// Arrange
	ctx := context.Background()
	restaurantID := kernel.NewUUID()

	cmd, err := commands.NewRollbackModelCommand(restaurantID, 9)
	require.NoError(t, err)

	mockStore := new(MockModelStore)
	mockStore.On("Rollback", ctx, restaurantID, 9).
		Return(errs.NewObjectNotFoundError("version", 9)).Once()

	handler := commands.NewRollbackModelCommandHandler(mockStore, trainingLogger())

	// Act
	err = handler.Handle(ctx, cmd)

	// Assert
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	mockStore.AssertExpectations(t)
}
