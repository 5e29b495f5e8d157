package commands

import (
	"context"

	"forecast/internal/core/domain/model/forecast"
)

// RegisterRestaurantCommandHandler handles the business logic for
// restaurant enrollment. Creates and persists new restaurant aggregates
// with default event radius and training thresholds.
//
// Example:
//
//	handler := NewRegisterRestaurantCommandHandler(uowFactory)
//	location, _ := kernel.NewGeoPoint(40.7128, -74.0060) // New York
//	cmd, _ := NewRegisterRestaurantCommand(kernel.NewUUID(), "Downtown Bistro", location)
//
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("restaurant registration failed: %w", err)
//	}
type RegisterRestaurantCommandHandler struct {
	uowFactory RestaurantUoWFactory
}

// NewRegisterRestaurantCommandHandler creates a handler for restaurant
// enrollment. Requires a RestaurantUoWFactory for transactional
// persistence operations.
func NewRegisterRestaurantCommandHandler(uowFactory RestaurantUoWFactory) RegisterRestaurantCommandHandler {
	return RegisterRestaurantCommandHandler{
		uowFactory: uowFactory,
	}
}

// Handle processes the registration command. Creates a new restaurant
// aggregate and persists it within a transaction. Automatically rolls
// back on any error to prevent partial data.
func (h *RegisterRestaurantCommandHandler) Handle(ctx context.Context, cmd RegisterRestaurantCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	restaurant, err := forecast.NewRestaurant(cmd.RestaurantID(), cmd.Name(), cmd.Location())
	if err != nil {
		return err
	}

	if err = uow.RestaurantRepository().Add(ctx, restaurant); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
