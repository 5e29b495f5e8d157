package rediscache

import (
	"time"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
)

// modelRecord is the JSON form of a cached model version.
type modelRecord struct {
	ID           string `json:"id"`
	RestaurantID string `json:"restaurantId"`
	Version      int    `json:"version"`
	ModelType    string `json:"modelType"`
	Status       string `json:"status"`

	Weights       mlmodel.Weights       `json:"weights"`
	Normalization mlmodel.Normalization `json:"normalization"`

	LearningRate   float64 `json:"learningRate"`
	Iterations     int     `json:"iterations"`
	L2Penalty      float64 `json:"l2Penalty"`
	TreeCount      int     `json:"treeCount"`
	MaxDepth       int     `json:"maxDepth"`
	MinSamplesLeaf int     `json:"minSamplesLeaf"`
	SubsampleRatio float64 `json:"subsampleRatio"`

	Metrics        mlmodel.TrainingMetrics `json:"metrics"`
	TrainingPoints int                     `json:"trainingPoints"`

	TrainedAt        time.Time  `json:"trainedAt"`
	PredictionsCount int64      `json:"predictionsCount"`
	LastPredictionAt *time.Time `json:"lastPredictionAt,omitempty"`
	RecentMAE        *float64   `json:"recentMae,omitempty"`
	AccuracyTrend    string     `json:"accuracyTrend"`
	FailureReason    string     `json:"failureReason,omitempty"`
}

// recordFromDomain converts a model aggregate to its cache representation.
func recordFromDomain(model *mlmodel.MLModel) modelRecord {
	params := model.Params()

	return modelRecord{
		ID:           model.ID().String(),
		RestaurantID: model.RestaurantID().String(),
		Version:      model.Version(),
		ModelType:    model.Type().String(),
		Status:       model.Status().String(),

		Weights:       model.Weights(),
		Normalization: model.Normalization(),

		LearningRate:   params.LearningRate(),
		Iterations:     params.Iterations(),
		L2Penalty:      params.L2Penalty(),
		TreeCount:      params.TreeCount(),
		MaxDepth:       params.MaxDepth(),
		MinSamplesLeaf: params.MinSamplesLeaf(),
		SubsampleRatio: params.SubsampleRatio(),

		Metrics:        model.Metrics(),
		TrainingPoints: model.TrainingPoints(),

		TrainedAt:        model.TrainedAt(),
		PredictionsCount: model.PredictionsCount(),
		LastPredictionAt: model.LastPredictionAt(),
		RecentMAE:        model.RecentMAE(),
		AccuracyTrend:    model.AccuracyTrend().String(),
		FailureReason:    model.FailureReason(),
	}
}

// toDomain converts a cache record back to a model aggregate.
func (r modelRecord) toDomain() (*mlmodel.MLModel, error) {
	id, err := kernel.UUIDFromString(r.ID)
	if err != nil {
		return nil, err
	}
	restaurantID, err := kernel.UUIDFromString(r.RestaurantID)
	if err != nil {
		return nil, err
	}

	modelType, err := mlmodel.ModelTypeFromString(r.ModelType)
	if err != nil {
		return nil, err
	}
	status, err := mlmodel.StatusFromString(r.Status)
	if err != nil {
		return nil, err
	}
	trend, err := mlmodel.TrendFromString(r.AccuracyTrend)
	if err != nil {
		return nil, err
	}

	params, err := mlmodel.NewModelParameters(
		r.LearningRate,
		r.Iterations,
		r.L2Penalty,
		r.TreeCount,
		r.MaxDepth,
		r.MinSamplesLeaf,
		r.SubsampleRatio,
	)
	if err != nil {
		return nil, err
	}

	return mlmodel.RestoreMLModel(
		id,
		restaurantID,
		r.Version,
		modelType,
		r.Weights,
		r.Normalization,
		params,
		r.Metrics,
		r.TrainingPoints,
		mlmodel.ModelState{
			Status:           status,
			TrainedAt:        r.TrainedAt,
			PredictionsCount: r.PredictionsCount,
			LastPredictionAt: r.LastPredictionAt,
			RecentMAE:        r.RecentMAE,
			AccuracyTrend:    trend,
			FailureReason:    r.FailureReason,
		},
	)
}
