package http

import (
	"time"

	"forecast/internal/core/application/usecases/commands"
	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
)

// Error is the API's error envelope.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewRestaurant is the enrollment request body.
type NewRestaurant struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Restaurant is the fleet read model.
type Restaurant struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Forecast is the prediction response.
type Forecast struct {
	RestaurantID  string    `json:"restaurantId"`
	Hour          time.Time `json:"hour"`
	DineIn        float64   `json:"dineIn"`
	Delivery      float64   `json:"delivery"`
	Confidence    float64   `json:"confidence"`
	IntervalLower float64   `json:"intervalLower"`
	IntervalUpper float64   `json:"intervalUpper"`
	IntervalLevel float64   `json:"intervalLevel"`
	ModelVersion  int       `json:"modelVersion"`
	ModelType     string    `json:"modelType"`
}

// HourForecast is one hour's slice of a whole-day forecast.
type HourForecast struct {
	Hour          time.Time `json:"hour"`
	DineIn        float64   `json:"dineIn"`
	Delivery      float64   `json:"delivery"`
	Confidence    float64   `json:"confidence"`
	IntervalLower float64   `json:"intervalLower"`
	IntervalUpper float64   `json:"intervalUpper"`
}

// DayForecast is the whole-day prediction response: all 24 hours of one
// day served by the same model version.
type DayForecast struct {
	RestaurantID  string         `json:"restaurantId"`
	Day           string         `json:"day"`
	IntervalLevel float64        `json:"intervalLevel"`
	ModelVersion  int            `json:"modelVersion"`
	ModelType     string         `json:"modelType"`
	Hours         []HourForecast `json:"hours"`
}

// ImportanceEntry is one feature's contribution share.
type ImportanceEntry struct {
	Feature string  `json:"feature"`
	Score   float64 `json:"score"`
}

// Importance is the model explanation response.
type Importance struct {
	RestaurantID string            `json:"restaurantId"`
	ModelVersion int               `json:"modelVersion"`
	ModelType    string            `json:"modelType"`
	Features     []ImportanceEntry `json:"features"`
}

// TrainRequest is the on-demand training request body. An empty model
// type trains the default ensemble.
type TrainRequest struct {
	ModelType string `json:"modelType"`
}

// TrainResponse reports the outcome of an on-demand training run.
type TrainResponse struct {
	Success        bool   `json:"success"`
	Version        int    `json:"version"`
	ModelType      string `json:"modelType"`
	TrainingPoints int    `json:"trainingPoints"`
	Message        string `json:"message,omitempty"`
}

// RollbackRequest is the model rollback request body.
type RollbackRequest struct {
	Version int `json:"version"`
}

// buildTrainCommand resolves the requested model type, defaulting to the
// ensemble, and pairs it with the default hyperparameters.
func buildTrainCommand(restaurantID kernel.UUID, rawType string) (commands.TrainModelCommand, error) {
	modelType := mlmodel.Ensemble
	if rawType != "" {
		parsed, err := mlmodel.ModelTypeFromString(rawType)
		if err != nil {
			return commands.TrainModelCommand{}, err
		}
		modelType = parsed
	}

	return commands.NewTrainModelCommand(restaurantID, modelType, mlmodel.DefaultModelParameters())
}
