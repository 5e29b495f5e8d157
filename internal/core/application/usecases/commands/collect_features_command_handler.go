package commands

import (
	"context"
	"log/slog"
	"time"

	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/ports"
)

const (
	// snapshotHorizon is how far ahead feature snapshots are captured.
	snapshotHorizon = 24 * time.Hour
	// eventFetchWindow is how far ahead cached local events are refreshed.
	eventFetchWindow = 7 * 24 * time.Hour
)

// CollectFeaturesCommandHandler runs the hourly feature sweep for every
// restaurant: refresh the local-event cache from the provider, build and
// upsert snapshots for the forecast horizon, and backfill actual order
// volumes onto snapshots whose hour has passed. Provider outages degrade
// to cached events; a restaurant's failure never stops the sweep.
type CollectFeaturesCommandHandler struct {
	uowFactory FeatureUoWFactory
	features   FeatureBuilder
	events     ports.EventProvider
	volumes    ports.VolumeSource
	logger     *slog.Logger
	now        func() time.Time
}

// NewCollectFeaturesCommandHandler creates a feature collection handler.
func NewCollectFeaturesCommandHandler(
	uowFactory FeatureUoWFactory,
	features FeatureBuilder,
	events ports.EventProvider,
	volumes ports.VolumeSource,
	logger *slog.Logger,
) CollectFeaturesCommandHandler {
	return CollectFeaturesCommandHandler{
		uowFactory: uowFactory,
		features:   features,
		events:     events,
		volumes:    volumes,
		logger:     logger.With("component", "collect-features"),
		now:        time.Now,
	}
}

// Handle runs the collection sweep across all restaurants.
func (h *CollectFeaturesCommandHandler) Handle(ctx context.Context, cmd CollectFeaturesCommand) (BatchResult, error) {
	if err := cmd.Validate(); err != nil {
		return BatchResult{}, err
	}

	restaurants, err := h.listRestaurants(ctx)
	if err != nil {
		return BatchResult{}, err
	}

	var result BatchResult
	for _, restaurant := range restaurants {
		if collectErr := h.collectForRestaurant(ctx, restaurant); collectErr != nil {
			h.logger.Error("feature collection failed",
				"restaurantId", restaurant.ID().String(),
				"error", collectErr,
			)
			result.RecordFailure(restaurant.ID().String(), collectErr)
			continue
		}
		result.RecordSuccess()
	}

	h.logger.Info("feature sweep finished",
		"processed", result.Processed,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return result, nil
}

func (h *CollectFeaturesCommandHandler) listRestaurants(ctx context.Context) ([]*forecast.Restaurant, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	restaurants, err := uow.RestaurantRepository().GetAll(ctx)
	if err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return restaurants, nil
}

// collectForRestaurant runs one restaurant's sweep in a single
// transaction: event refresh, snapshot capture, and label backfill.
func (h *CollectFeaturesCommandHandler) collectForRestaurant(ctx context.Context, restaurant *forecast.Restaurant) error {
	now := h.now().Truncate(time.Hour)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	events, err := h.refreshEvents(ctx, uow, restaurant, now)
	if err != nil {
		return err
	}

	hours := make([]time.Time, 0, int(snapshotHorizon/time.Hour))
	for hour := now; hour.Before(now.Add(snapshotHorizon)); hour = hour.Add(time.Hour) {
		hours = append(hours, hour)
	}

	snapshots, err := h.features.BuildSnapshots(ctx, restaurant, events, hours)
	if err != nil {
		return err
	}
	for _, snapshot := range snapshots {
		if err = uow.SnapshotRepository().Upsert(ctx, snapshot); err != nil {
			return err
		}
	}

	if err = h.backfillLabels(ctx, uow, restaurant, now); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

// refreshEvents replaces the restaurant's cached events with a fresh
// provider fetch. When the provider is down, the existing cache serves
// the sweep instead.
func (h *CollectFeaturesCommandHandler) refreshEvents(
	ctx context.Context,
	uow FeatureUoW,
	restaurant *forecast.Restaurant,
	now time.Time,
) ([]forecast.LocalEvent, error) {
	fetched, err := h.events.GetLocalEvents(ctx,
		restaurant.Location(), restaurant.EventRadiusMiles(), now, now.Add(eventFetchWindow))
	if err != nil {
		h.logger.Warn("event provider unavailable, using cached events",
			"restaurantId", restaurant.ID().String(),
			"error", err,
		)
		return uow.EventRepository().GetOverlapping(ctx, restaurant.ID(), now, now.Add(snapshotHorizon))
	}

	if err = uow.EventRepository().ReplaceForRestaurant(ctx,
		restaurant.ID(), fetched, now, now.Add(eventFetchWindow)); err != nil {
		return nil, err
	}
	return fetched, nil
}

// backfillLabels records actual volumes on unlabeled snapshots whose
// hour has passed, turning them into training examples.
func (h *CollectFeaturesCommandHandler) backfillLabels(
	ctx context.Context,
	uow FeatureUoW,
	restaurant *forecast.Restaurant,
	now time.Time,
) error {
	unlabeled, err := uow.SnapshotRepository().GetUnlabeled(ctx, restaurant.ID(), now)
	if err != nil {
		return err
	}
	if len(unlabeled) == 0 {
		return nil
	}

	earliest, latest := unlabeled[0].CapturedAt(), unlabeled[0].CapturedAt()
	for _, snapshot := range unlabeled[1:] {
		if snapshot.CapturedAt().Before(earliest) {
			earliest = snapshot.CapturedAt()
		}
		if snapshot.CapturedAt().After(latest) {
			latest = snapshot.CapturedAt()
		}
	}

	volumes, err := h.volumes.GetHourlyVolumes(ctx, restaurant.ID(), earliest, latest.Add(time.Hour))
	if err != nil {
		return err
	}
	volumeByHour := make(map[time.Time]forecast.HourlyVolume, len(volumes))
	for _, volume := range volumes {
		volumeByHour[volume.Hour.Truncate(time.Hour)] = volume
	}

	for _, snapshot := range unlabeled {
		volume, ok := volumeByHour[snapshot.CapturedAt()]
		if !ok {
			// No orders recorded for the hour: a true zero, not a gap.
			volume = forecast.HourlyVolume{Hour: snapshot.CapturedAt()}
		}
		if err = snapshot.RecordActuals(volume.DineIn, volume.Delivery); err != nil {
			return err
		}
		if err = uow.SnapshotRepository().RecordActuals(ctx, snapshot); err != nil {
			return err
		}
	}
	return nil
}
