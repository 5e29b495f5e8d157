package queries

import (
	"context"

	"forecast/internal/core/domain/services"
)

// GetFeatureImportanceQueryHandler explains the active model: linear
// models rank by coefficient magnitude, gradient boosting by split usage,
// ensembles by the weighted blend of both.
type GetFeatureImportanceQueryHandler struct {
	models ModelSource
}

// NewGetFeatureImportanceQueryHandler creates an importance handler.
func NewGetFeatureImportanceQueryHandler(models ModelSource) GetFeatureImportanceQueryHandler {
	return GetFeatureImportanceQueryHandler{models: models}
}

// Handle executes the importance query. Returns errs.ErrObjectNotFound
// when the restaurant has no active model.
func (h GetFeatureImportanceQueryHandler) Handle(ctx context.Context, query GetFeatureImportanceQuery) (GetFeatureImportanceQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetFeatureImportanceQueryResponse{}, err
	}

	model, err := h.models.Load(ctx, query.RestaurantID())
	if err != nil {
		return GetFeatureImportanceQueryResponse{}, err
	}

	importance, err := services.ComputeFeatureImportance(model.Weights())
	if err != nil {
		return GetFeatureImportanceQueryResponse{}, err
	}

	rows := make([]FeatureImportanceRow, 0, len(importance))
	for _, entry := range importance {
		rows = append(rows, FeatureImportanceRow{Feature: entry.Feature, Score: entry.Score})
	}

	return GetFeatureImportanceQueryResponse{
		RestaurantID: query.RestaurantID(),
		ModelVersion: model.Version(),
		ModelType:    model.Type().String(),
		Features:     rows,
	}, nil
}
