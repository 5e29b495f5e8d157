package queries_test

import (
	"testing"
	"time"

	"forecast/internal/core/application/usecases/queries"
	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
	"forecast/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGetFeatureImportanceQuery_ValidInput(t *testing.T) {
	// Arrange
	restaurantID := kernel.NewUUID()

	// Act
	query, err := queries.NewGetFeatureImportanceQuery(restaurantID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, restaurantID, query.RestaurantID())
	assert.NoError(t, query.Validate())
}

func TestNewGetFeatureImportanceQuery_RejectsInvalidRestaurantID(t *testing.T) {
	_, err := queries.NewGetFeatureImportanceQuery(kernel.UUID{})

	require.Error(t, err)
}

func TestGetFeatureImportanceQuery_Validate_ZeroValue(t *testing.T) {
	var query queries.GetFeatureImportanceQuery

	err := query.Validate()

	require.Error(t, err)
	require.ErrorIs(t, err, queries.ErrGetFeatureImportanceQueryIsNotConstructed)
}

func TestGetFeatureImportanceQueryHandler_Handle_Success(t *testing.T) {
	// Arrange: temperature carries 3x the weight of humidity.
	ctx := t.Context()
	restaurantID := kernel.NewUUID()

	query, err := queries.NewGetFeatureImportanceQuery(restaurantID)
	require.NoError(t, err)

	model, err := mlmodel.RestoreMLModel(
		kernel.NewUUID(),
		restaurantID,
		5,
		mlmodel.Linear,
		mlmodel.NewLinearWeights(mlmodel.LinearWeights{
			Intercept: 20,
			Coefficients: map[string]float64{
				forecast.FeatureTemperature: 3,
				forecast.FeatureHumidity:    1,
			},
		}),
		mlmodel.Normalization{},
		mlmodel.DefaultModelParameters(),
		mlmodel.TrainingMetrics{MAE: 2, MAPE: 10},
		900,
		mlmodel.ModelState{
			Status:        mlmodel.Active,
			TrainedAt:     time.Date(2025, time.August, 18, 2, 0, 0, 0, time.UTC),
			AccuracyTrend: mlmodel.Stable,
		},
	)
	require.NoError(t, err)

	mockModels := new(MockModelSource)
	mockModels.On("Load", ctx, restaurantID).Return(model, nil).Once()

	handler := queries.NewGetFeatureImportanceQueryHandler(mockModels)

	// Act
	response, err := handler.Handle(ctx, query)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, restaurantID, response.RestaurantID)
	assert.Equal(t, 5, response.ModelVersion)
	assert.Equal(t, "LINEAR", response.ModelType)
	require.Len(t, response.Features, 2)
	assert.Equal(t, forecast.FeatureTemperature, response.Features[0].Feature)
	assert.InDelta(t, 0.75, response.Features[0].Score, 1e-9)
	assert.Equal(t, forecast.FeatureHumidity, response.Features[1].Feature)
	assert.InDelta(t, 0.25, response.Features[1].Score, 1e-9)
	mockModels.AssertExpectations(t)
}

func TestGetFeatureImportanceQueryHandler_Handle_NoActiveModel(t *testing.T) {
	// Arrange
	ctx := t.Context()
	restaurantID := kernel.NewUUID()

	query, err := queries.NewGetFeatureImportanceQuery(restaurantID)
	require.NoError(t, err)

	mockModels := new(MockModelSource)
	mockModels.On("Load", ctx, restaurantID).Return(nil, errs.ErrObjectNotFound).Once()

	handler := queries.NewGetFeatureImportanceQueryHandler(mockModels)

	// Act
	_, err = handler.Handle(ctx, query)

	// Assert
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
	mockModels.AssertExpectations(t)
}

func TestGetFeatureImportanceQueryHandler_Handle_InvalidQuery(t *testing.T) {
	// Arrange
	ctx := t.Context()
	var invalidQuery queries.GetFeatureImportanceQuery

	mockModels := new(MockModelSource)
	handler := queries.NewGetFeatureImportanceQueryHandler(mockModels)

	// Act
	_, err := handler.Handle(ctx, invalidQuery)

	// Assert
	require.Error(t, err)
	require.ErrorIs(t, err, queries.ErrGetFeatureImportanceQueryIsNotConstructed)
	mockModels.AssertExpectations(t)
}
