package queries

import (
	"context"
	"log/slog"
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/services"
)

// PredictDemandQueryHandler produces a demand forecast for one restaurant
// hour: it loads the active model through the tiered registry, assembles
// and normalizes the hour's features, scores them, and atomically bumps
// the model's served-prediction counter.
//
// Example:
//
//	handler := NewPredictDemandQueryHandler(uowFactory, models, features, logger)
//	query, _ := NewPredictDemandQuery(restaurantID, hour, 0.95)
//
//	response, err := handler.Handle(ctx, query)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // no trained model yet; train before predicting
//	}
type PredictDemandQueryHandler struct {
	uowFactory PredictUoWFactory
	models     ModelSource
	features   FeatureBuilder
	normalizer services.Normalizer
	predictor  services.Predictor
	logger     *slog.Logger
}

// NewPredictDemandQueryHandler creates a prediction handler.
func NewPredictDemandQueryHandler(
	uowFactory PredictUoWFactory,
	models ModelSource,
	features FeatureBuilder,
	logger *slog.Logger,
) PredictDemandQueryHandler {
	return PredictDemandQueryHandler{
		uowFactory: uowFactory,
		models:     models,
		features:   features,
		normalizer: services.NewNormalizer(),
		predictor:  services.NewPredictor(),
		logger:     logger.With("component", "predict-demand"),
	}
}

// Handle executes the prediction. Returns errs.ErrObjectNotFound when the
// restaurant has no active model.
func (h PredictDemandQueryHandler) Handle(ctx context.Context, query PredictDemandQuery) (PredictDemandQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return PredictDemandQueryResponse{}, err
	}

	model, err := h.models.Load(ctx, query.RestaurantID())
	if err != nil {
		return PredictDemandQueryResponse{}, err
	}

	restaurant, events, err := h.loadContext(ctx, query)
	if err != nil {
		return PredictDemandQueryResponse{}, err
	}

	snapshots, err := h.features.BuildSnapshots(ctx, restaurant, events, []time.Time{query.Hour()})
	if err != nil {
		return PredictDemandQueryResponse{}, err
	}

	vector, err := h.features.Vector(snapshots[0])
	if err != nil {
		return PredictDemandQueryResponse{}, err
	}
	row, err := h.normalizer.Apply(model.Normalization(), vector.Features())
	if err != nil {
		return PredictDemandQueryResponse{}, err
	}

	prediction, err := h.predictor.Predict(model, row, query.IntervalLevel())
	if err != nil {
		return PredictDemandQueryResponse{}, err
	}

	// Counter failures must not lose an already-computed prediction.
	if err = h.models.RecordPrediction(ctx, model.ID()); err != nil {
		h.logger.Warn("prediction counter update failed",
			"restaurantId", query.RestaurantID().String(),
			"modelId", model.ID().String(),
			"error", err,
		)
	}

	return PredictDemandQueryResponse{
		RestaurantID:  query.RestaurantID(),
		Hour:          query.Hour(),
		DineIn:        prediction.DineIn,
		Delivery:      prediction.Delivery,
		Confidence:    prediction.Confidence,
		IntervalLower: prediction.Interval.Lower,
		IntervalUpper: prediction.Interval.Upper,
		IntervalLevel: prediction.Interval.Level,
		ModelVersion:  model.Version(),
		ModelType:     model.Type().String(),
	}, nil
}

// loadContext reads the restaurant and its cached events overlapping the
// prediction hour in one read transaction.
func (h PredictDemandQueryHandler) loadContext(ctx context.Context, query PredictDemandQuery) (*forecast.Restaurant, []forecast.LocalEvent, error) {
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
		query.RestaurantID(), query.Hour(), query.Hour().Add(time.Hour))
	if err != nil {
		return nil, nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, nil, err
	}
	return restaurant, events, nil
}
