// Package http exposes the forecasting engine's API over echo. The
// surface is deliberately thin: enrollment, prediction, and a few model
// operations the scheduled jobs do not cover on their own.
package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"forecast/internal/core/application/usecases/commands"
	"forecast/internal/core/application/usecases/queries"
	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Server coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	registerRestaurantHandler commands.RegisterRestaurantCommandHandler
	trainModelHandler         commands.TrainModelCommandHandler
	rollbackModelHandler      commands.RollbackModelCommandHandler

	// Query handlers
	listRestaurantsHandler   queries.ListRestaurantsQueryHandler
	predictDemandHandler     queries.PredictDemandQueryHandler
	predictDayHandler        queries.PredictDayQueryHandler
	featureImportanceHandler queries.GetFeatureImportanceQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	registerRestaurantHandler commands.RegisterRestaurantCommandHandler,
	trainModelHandler commands.TrainModelCommandHandler,
	rollbackModelHandler commands.RollbackModelCommandHandler,
	listRestaurantsHandler queries.ListRestaurantsQueryHandler,
	predictDemandHandler queries.PredictDemandQueryHandler,
	predictDayHandler queries.PredictDayQueryHandler,
	featureImportanceHandler queries.GetFeatureImportanceQueryHandler,
) *Server {
	return &Server{
		registerRestaurantHandler: registerRestaurantHandler,
		trainModelHandler:         trainModelHandler,
		rollbackModelHandler:      rollbackModelHandler,
		listRestaurantsHandler:    listRestaurantsHandler,
		predictDemandHandler:      predictDemandHandler,
		predictDayHandler:         predictDayHandler,
		featureImportanceHandler:  featureImportanceHandler,
	}
}

// RegisterRoutes mounts all API routes on the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", s.Health)

	api := e.Group("/api/v1")
	api.POST("/restaurants", s.RegisterRestaurant)
	api.GET("/restaurants", s.ListRestaurants)
	api.GET("/restaurants/:id/forecast", s.GetForecast)
	api.GET("/restaurants/:id/model/importance", s.GetFeatureImportance)
	api.POST("/restaurants/:id/model/train", s.TrainModel)
	api.POST("/restaurants/:id/model/rollback", s.RollbackModel)
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}

// RegisterRestaurant handles POST /api/v1/restaurants - enrolls a restaurant.
func (s *Server) RegisterRestaurant(ctx echo.Context) error {
	var request NewRestaurant
	if err := ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	location, err := kernel.NewGeoPoint(request.Latitude, request.Longitude)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid restaurant location: " + err.Error(),
		})
	}

	restaurantID := kernel.NewUUID()
	cmd, err := commands.NewRegisterRestaurantCommand(restaurantID, request.Name, location)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid restaurant data: " + err.Error(),
		})
	}

	if handleErr := s.registerRestaurantHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		return ctx.JSON(http.StatusConflict, Error{
			Code:    http.StatusConflict,
			Message: "Failed to register restaurant",
		})
	}

	return ctx.JSON(http.StatusCreated, Restaurant{
		ID:        restaurantID.String(),
		Name:      request.Name,
		Latitude:  request.Latitude,
		Longitude: request.Longitude,
	})
}

// ListRestaurants handles GET /api/v1/restaurants - retrieves the fleet.
func (s *Server) ListRestaurants(ctx echo.Context) error {
	query := queries.NewListRestaurantsQuery()

	restaurants, err := s.listRestaurantsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to retrieve restaurants",
		})
	}

	response := make([]Restaurant, len(restaurants))
	for i, restaurant := range restaurants {
		response[i] = Restaurant{
			ID:        restaurant.ID.String(),
			Name:      restaurant.Name,
			Latitude:  restaurant.Location.Latitude(),
			Longitude: restaurant.Location.Longitude(),
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetForecast handles GET /api/v1/restaurants/:id/forecast. With an
// `hour` query parameter it predicts that single hour; without one it
// predicts all 24 hours of the requested day (`date` parameter, default
// today). The interval level defaults to 0.95.
func (s *Server) GetForecast(ctx echo.Context) error {
	restaurantID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid restaurant id",
		})
	}

	level := 0.0
	if raw := ctx.QueryParam("level"); raw != "" {
		level, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return ctx.JSON(http.StatusBadRequest, Error{
				Code:    http.StatusBadRequest,
				Message: "Invalid interval level",
			})
		}
	}

	raw := ctx.QueryParam("hour")
	if raw == "" {
		return s.forecastDay(ctx, restaurantID, level)
	}

	hour, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid hour, expected RFC3339",
		})
	}

	query, err := queries.NewPredictDemandQuery(restaurantID, hour, level)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid forecast request: " + err.Error(),
		})
	}

	prediction, err := s.predictDemandHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return ctx.JSON(http.StatusNotFound, Error{
				Code:    http.StatusNotFound,
				Message: "No active model for restaurant",
			})
		}
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to compute forecast",
		})
	}

	return ctx.JSON(http.StatusOK, Forecast{
		RestaurantID:  prediction.RestaurantID.String(),
		Hour:          prediction.Hour,
		DineIn:        prediction.DineIn,
		Delivery:      prediction.Delivery,
		Confidence:    prediction.Confidence,
		IntervalLower: prediction.IntervalLower,
		IntervalUpper: prediction.IntervalUpper,
		IntervalLevel: prediction.IntervalLevel,
		ModelVersion:  prediction.ModelVersion,
		ModelType:     prediction.ModelType,
	})
}

// forecastDay serves the whole-day branch of GetForecast: one prediction
// per hour of the requested day.
func (s *Server) forecastDay(ctx echo.Context, restaurantID kernel.UUID, level float64) error {
	day := time.Now().UTC()
	if raw := ctx.QueryParam("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return ctx.JSON(http.StatusBadRequest, Error{
				Code:    http.StatusBadRequest,
				Message: "Invalid date, expected YYYY-MM-DD",
			})
		}
		day = parsed
	}

	query, err := queries.NewPredictDayQuery(restaurantID, day, level)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid forecast request: " + err.Error(),
		})
	}

	prediction, err := s.predictDayHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return ctx.JSON(http.StatusNotFound, Error{
				Code:    http.StatusNotFound,
				Message: "No active model for restaurant",
			})
		}
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to compute forecast",
		})
	}

	hours := make([]HourForecast, len(prediction.Hours))
	for i, hour := range prediction.Hours {
		hours[i] = HourForecast{
			Hour:          hour.Hour,
			DineIn:        hour.DineIn,
			Delivery:      hour.Delivery,
			Confidence:    hour.Confidence,
			IntervalLower: hour.IntervalLower,
			IntervalUpper: hour.IntervalUpper,
		}
	}

	return ctx.JSON(http.StatusOK, DayForecast{
		RestaurantID:  prediction.RestaurantID.String(),
		Day:           prediction.Day.Format("2006-01-02"),
		IntervalLevel: prediction.IntervalLevel,
		ModelVersion:  prediction.ModelVersion,
		ModelType:     prediction.ModelType,
		Hours:         hours,
	})
}

// GetFeatureImportance handles GET /api/v1/restaurants/:id/model/importance.
func (s *Server) GetFeatureImportance(ctx echo.Context) error {
	restaurantID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid restaurant id",
		})
	}

	query, err := queries.NewGetFeatureImportanceQuery(restaurantID)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid importance request: " + err.Error(),
		})
	}

	importance, err := s.featureImportanceHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		if errors.Is(err, errs.ErrObjectNotFound) {
			return ctx.JSON(http.StatusNotFound, Error{
				Code:    http.StatusNotFound,
				Message: "No active model for restaurant",
			})
		}
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to compute feature importance",
		})
	}

	features := make([]ImportanceEntry, len(importance.Features))
	for i, feature := range importance.Features {
		features[i] = ImportanceEntry{Feature: feature.Feature, Score: feature.Score}
	}

	return ctx.JSON(http.StatusOK, Importance{
		RestaurantID: importance.RestaurantID.String(),
		ModelVersion: importance.ModelVersion,
		ModelType:    importance.ModelType,
		Features:     features,
	})
}

// TrainModel handles POST /api/v1/restaurants/:id/model/train - triggers
// an immediate training run outside the nightly schedule.
func (s *Server) TrainModel(ctx echo.Context) error {
	restaurantID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid restaurant id",
		})
	}

	var request TrainRequest
	if err = ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	cmd, err := buildTrainCommand(restaurantID, request.ModelType)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid training request: " + err.Error(),
		})
	}

	result, err := s.trainModelHandler.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Training failed",
		})
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusUnprocessableEntity
	}
	return ctx.JSON(status, TrainResponse{
		Success:        result.Success,
		Version:        result.Version,
		ModelType:      result.ModelType.String(),
		TrainingPoints: result.TrainingPoints,
		Message:        result.Message,
	})
}

// RollbackModel handles POST /api/v1/restaurants/:id/model/rollback -
// reactivates an earlier model version.
func (s *Server) RollbackModel(ctx echo.Context) error {
	restaurantID, err := kernel.UUIDFromString(ctx.Param("id"))
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid restaurant id",
		})
	}

	var request RollbackRequest
	if err = ctx.Bind(&request); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	cmd, err := commands.NewRollbackModelCommand(restaurantID, request.Version)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid rollback request: " + err.Error(),
		})
	}

	if handleErr := s.rollbackModelHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
		if errors.Is(handleErr, errs.ErrObjectNotFound) {
			return ctx.JSON(http.StatusNotFound, Error{
				Code:    http.StatusNotFound,
				Message: "Model version not found",
			})
		}
		return ctx.JSON(http.StatusConflict, Error{
			Code:    http.StatusConflict,
			Message: "Rollback rejected: " + handleErr.Error(),
		})
	}

	return ctx.NoContent(http.StatusNoContent)
}
