package queries

import (
	"context"
	"log/slog"
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/services"
)

// hoursPerDay is how many per-hour forecasts a whole-day request yields.
const hoursPerDay = 24

// PredictDayQueryHandler produces forecasts for all 24 hours of one
// restaurant day in a single pass: it loads the active model once,
// assembles and normalizes one feature vector per hour, and scores each
// with the same artifact.
type PredictDayQueryHandler struct {
	uowFactory PredictUoWFactory
	models     ModelSource
	features   FeatureBuilder
	normalizer services.Normalizer
	predictor  services.Predictor
	logger     *slog.Logger
}

// NewPredictDayQueryHandler creates a whole-day prediction handler.
func NewPredictDayQueryHandler(
	uowFactory PredictUoWFactory,
	models ModelSource,
	features FeatureBuilder,
	logger *slog.Logger,
) PredictDayQueryHandler {
	return PredictDayQueryHandler{
		uowFactory: uowFactory,
		models:     models,
		features:   features,
		normalizer: services.NewNormalizer(),
		predictor:  services.NewPredictor(),
		logger:     logger.With("component", "predict-day"),
	}
}

// Handle executes the whole-day prediction. Returns
// errs.ErrObjectNotFound when the restaurant has no active model.
func (h PredictDayQueryHandler) Handle(ctx context.Context, query PredictDayQuery) (PredictDayQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return PredictDayQueryResponse{}, err
	}

	model, err := h.models.Load(ctx, query.RestaurantID())
	if err != nil {
		return PredictDayQueryResponse{}, err
	}

	restaurant, events, err := h.loadContext(ctx, query)
	if err != nil {
		return PredictDayQueryResponse{}, err
	}

	hours := make([]time.Time, 0, hoursPerDay)
	for i := range hoursPerDay {
		hours = append(hours, query.Day().Add(time.Duration(i)*time.Hour))
	}

	snapshots, err := h.features.BuildSnapshots(ctx, restaurant, events, hours)
	if err != nil {
		return PredictDayQueryResponse{}, err
	}

	forecasts := make([]HourlyDemand, 0, len(snapshots))
	for _, snapshot := range snapshots {
		vector, err := h.features.Vector(snapshot)
		if err != nil {
			return PredictDayQueryResponse{}, err
		}
		row, err := h.normalizer.Apply(model.Normalization(), vector.Features())
		if err != nil {
			return PredictDayQueryResponse{}, err
		}
		prediction, err := h.predictor.Predict(model, row, query.IntervalLevel())
		if err != nil {
			return PredictDayQueryResponse{}, err
		}

		forecasts = append(forecasts, HourlyDemand{
			Hour:          snapshot.CapturedAt(),
			DineIn:        prediction.DineIn,
			Delivery:      prediction.Delivery,
			Confidence:    prediction.Confidence,
			IntervalLower: prediction.Interval.Lower,
			IntervalUpper: prediction.Interval.Upper,
		})
	}

	// Counter failures must not lose already-computed predictions.
	if err = h.models.RecordPrediction(ctx, model.ID()); err != nil {
		h.logger.Warn("prediction counter update failed",
			"restaurantId", query.RestaurantID().String(),
			"modelId", model.ID().String(),
			"error", err,
		)
	}

	return PredictDayQueryResponse{
		RestaurantID:  query.RestaurantID(),
		Day:           query.Day(),
		IntervalLevel: query.IntervalLevel(),
		ModelVersion:  model.Version(),
		ModelType:     model.Type().String(),
		Hours:         forecasts,
	}, nil
}

// loadContext reads the restaurant and its cached events overlapping the
// requested day in one read transaction.
func (h PredictDayQueryHandler) loadContext(ctx context.Context, query PredictDayQuery) (*forecast.Restaurant, []forecast.LocalEvent, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	restaurant, err := uow.RestaurantRepository().Get(ctx, query.RestaurantID())
	if err != nil {
		return nil, nil, err
	}
	events, err := uow.EventRepository().GetOverlapping(ctx,
		query.RestaurantID(), query.Day(), query.Day().Add(hoursPerDay*time.Hour))
	if err != nil {
		return nil, nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return restaurant, events, nil
}
