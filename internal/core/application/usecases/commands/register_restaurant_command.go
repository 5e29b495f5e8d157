package commands

import (
	"errors"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/pkg/errs"
	"forecast/internal/pkg/guard"
)

var (
	ErrRegisterRestaurantCommandIsNotConstructed = errors.New(
		"RegisterRestaurantCommand must be created via NewRegisterRestaurantCommand constructor",
	)
)

// RegisterRestaurantCommand enrolls a restaurant into the forecasting
// fleet. Once registered, the scheduled jobs pick it up on their next
// tick: features are collected hourly and a model is trained as soon as
// enough labeled history accumulates.
type RegisterRestaurantCommand struct { //nolint:recvcheck //using for validation
	restaurantID kernel.UUID
	name         string
	location     kernel.GeoPoint

	guard guard.ConstructorGuard
}

// NewRegisterRestaurantCommand creates a registration command. Validates
// the identifier, name, and geographic point.
func NewRegisterRestaurantCommand(
	restaurantID kernel.UUID,
	name string,
	location kernel.GeoPoint,
) (RegisterRestaurantCommand, error) {
	command := RegisterRestaurantCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setRestaurantID(restaurantID),
		command.setName(name),
		command.setLocation(location),
	); err != nil {
		return RegisterRestaurantCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c RegisterRestaurantCommand) Validate() error {
	return c.guard.Validate(ErrRegisterRestaurantCommandIsNotConstructed)
}

// RestaurantID returns the identifier for the new restaurant.
func (c RegisterRestaurantCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

// Name returns the restaurant's display name.
func (c RegisterRestaurantCommand) Name() string {
	return c.name
}

// Location returns the restaurant's geographic point.
func (c RegisterRestaurantCommand) Location() kernel.GeoPoint {
	return c.location
}

func (c *RegisterRestaurantCommand) setRestaurantID(restaurantID kernel.UUID) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}

	c.restaurantID = restaurantID
	return nil
}

func (c *RegisterRestaurantCommand) setName(name string) error {
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}

	c.name = name
	return nil
}

func (c *RegisterRestaurantCommand) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}

	c.location = location
	return nil
}
