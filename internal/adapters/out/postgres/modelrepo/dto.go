// Package modelrepo provides data transfer objects and mapping functions
// for model version persistence. Weights and normalization statistics are
// stored as jsonb; lifecycle and metric fields are flat columns so the
// registry can query and update them without deserializing artifacts.
package modelrepo

import (
	"encoding/json"
	"time"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"

	"github.com/google/uuid"
)

// ModelDTO represents the database structure for persisting model
// versions. The (restaurant_id, version) pair is unique; status is
// indexed for the active-model lookup.
type ModelDTO struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	RestaurantID  uuid.UUID `gorm:"type:uuid;uniqueIndex:idx_ml_models_restaurant_version;index:idx_ml_models_restaurant_status"`
	Version       int       `gorm:"uniqueIndex:idx_ml_models_restaurant_version"`
	ModelType     string
	Status        string `gorm:"index:idx_ml_models_restaurant_status"`
	Weights       []byte `gorm:"type:jsonb"`
	Normalization []byte `gorm:"type:jsonb"`

	LearningRate   float64
	Iterations     int
	L2Penalty      float64
	TreeCount      int
	MaxDepth       int
	MinSamplesLeaf int
	SubsampleRatio float64

	MAE  float64 `gorm:"column:mae"`
	RMSE float64 `gorm:"column:rmse"`
	MAPE float64 `gorm:"column:mape"`
	R2   float64 `gorm:"column:r2_score"`

	TrainingPoints   int
	TrainedAt        time.Time
	PredictionsCount int64
	LastPredictionAt *time.Time
	RecentMAE        *float64 `gorm:"column:recent_mae"`
	AccuracyTrend    string
	FailureReason    string
}

// TableName specifies the database table name for model versions.
func (ModelDTO) TableName() string {
	return "ml_models"
}

// fromDomain converts a model aggregate to its database representation.
func fromDomain(model *mlmodel.MLModel) (ModelDTO, error) {
	weights, err := json.Marshal(model.Weights())
	if err != nil {
		return ModelDTO{}, err
	}
	normalization, err := json.Marshal(model.Normalization())
	if err != nil {
		return ModelDTO{}, err
	}

	params := model.Params()
	metrics := model.Metrics()

	return ModelDTO{
		ID:            model.ID().Bytes(),
		RestaurantID:  model.RestaurantID().Bytes(),
		Version:       model.Version(),
		ModelType:     model.Type().String(),
		Status:        model.Status().String(),
		Weights:       weights,
		Normalization: normalization,

		LearningRate:   params.LearningRate(),
		Iterations:     params.Iterations(),
		L2Penalty:      params.L2Penalty(),
		TreeCount:      params.TreeCount(),
		MaxDepth:       params.MaxDepth(),
		MinSamplesLeaf: params.MinSamplesLeaf(),
		SubsampleRatio: params.SubsampleRatio(),

		MAE:  metrics.MAE,
		RMSE: metrics.RMSE,
		MAPE: metrics.MAPE,
		R2:   metrics.R2,

		TrainingPoints:   model.TrainingPoints(),
		TrainedAt:        model.TrainedAt(),
		PredictionsCount: model.PredictionsCount(),
		LastPredictionAt: model.LastPredictionAt(),
		RecentMAE:        model.RecentMAE(),
		AccuracyTrend:    model.AccuracyTrend().String(),
		FailureReason:    model.FailureReason(),
	}, nil
}

// toDomain converts a database DTO back to a model aggregate using
// RestoreMLModel.
func toDomain(dto ModelDTO) (*mlmodel.MLModel, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	restaurantID, err := kernel.UUIDFromBytes(dto.RestaurantID[:])
	if err != nil {
		return nil, err
	}

	modelType, err := mlmodel.ModelTypeFromString(dto.ModelType)
	if err != nil {
		return nil, err
	}
	status, err := mlmodel.StatusFromString(dto.Status)
	if err != nil {
		return nil, err
	}
	trend, err := mlmodel.TrendFromString(dto.AccuracyTrend)
	if err != nil {
		return nil, err
	}

	var weights mlmodel.Weights
	if err = json.Unmarshal(dto.Weights, &weights); err != nil {
		return nil, err
	}
	var normalization mlmodel.Normalization
	if err = json.Unmarshal(dto.Normalization, &normalization); err != nil {
		return nil, err
	}

	params, err := mlmodel.NewModelParameters(
		dto.LearningRate,
		dto.Iterations,
		dto.L2Penalty,
		dto.TreeCount,
		dto.MaxDepth,
		dto.MinSamplesLeaf,
		dto.SubsampleRatio,
	)
	if err != nil {
		return nil, err
	}

	return mlmodel.RestoreMLModel(
		id,
		restaurantID,
		dto.Version,
		modelType,
		weights,
		normalization,
		params,
		mlmodel.TrainingMetrics{MAE: dto.MAE, RMSE: dto.RMSE, MAPE: dto.MAPE, R2: dto.R2},
		dto.TrainingPoints,
		mlmodel.ModelState{
			Status:           status,
			TrainedAt:        dto.TrainedAt,
			PredictionsCount: dto.PredictionsCount,
			LastPredictionAt: dto.LastPredictionAt,
			RecentMAE:        dto.RecentMAE,
			AccuracyTrend:    trend,
			FailureReason:    dto.FailureReason,
		},
	)
}
