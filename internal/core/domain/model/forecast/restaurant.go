package forecast

import (
	"errors"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/pkg/errs"
	"forecast/internal/pkg/guard"
)

const (
	// defaultEventRadiusMiles is the search radius for local events when a
	// restaurant does not override it.
	defaultEventRadiusMiles = 5.0
	// defaultMinTrainingPoints is the minimum labeled hourly snapshots
	// required before a model may be trained (30 days of hours).
	defaultMinTrainingPoints = 720
)

// Domain errors for restaurant operations.
var (
	// ErrRestaurantNameIsRequired is returned when creating a restaurant without a name.
	ErrRestaurantNameIsRequired = errs.NewValueIsRequiredError("name")
	// ErrRestaurantIsNotConstructed is returned when using an improperly initialized Restaurant.
	ErrRestaurantIsNotConstructed = errors.New("Restaurant must be created via NewRestaurant constructor")
)

// Restaurant is the forecasting subject: a physical location whose hourly
// dine-in and delivery demand the engine predicts. It carries the
// geographic point used for weather and event lookups, the event search
// radius, and the minimum labeled data required before training.
type Restaurant struct {
	id                kernel.UUID
	name              string
	location          kernel.GeoPoint
	eventRadiusMiles  float64
	minTrainingPoints int

	guard guard.ConstructorGuard
}

// NewRestaurant creates a restaurant with default event radius and minimum
// training data requirements.
func NewRestaurant(id kernel.UUID, name string, location kernel.GeoPoint) (*Restaurant, error) {
	restaurant := &Restaurant{
		eventRadiusMiles:  defaultEventRadiusMiles,
		minTrainingPoints: defaultMinTrainingPoints,
		guard:             guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		restaurant.setID(id),
		restaurant.setName(name),
		restaurant.setLocation(location),
	); err != nil {
		return nil, err
	}

	return restaurant, nil
}

// RestoreRestaurant reconstructs a restaurant from persistent storage.
func RestoreRestaurant(
	id kernel.UUID,
	name string,
	location kernel.GeoPoint,
	eventRadiusMiles float64,
	minTrainingPoints int,
) (*Restaurant, error) {
	restaurant, err := NewRestaurant(id, name, location)
	if err != nil {
		return nil, err
	}

	if eventRadiusMiles > 0 {
		restaurant.eventRadiusMiles = eventRadiusMiles
	}
	if minTrainingPoints > 0 {
		restaurant.minTrainingPoints = minTrainingPoints
	}
	return restaurant, nil
}

// ID returns the restaurant identifier.
func (r *Restaurant) ID() kernel.UUID {
	return r.id
}

// Name returns the restaurant's display name.
func (r *Restaurant) Name() string {
	return r.name
}

// Location returns the restaurant's geographic point.
func (r *Restaurant) Location() kernel.GeoPoint {
	return r.location
}

// EventRadiusMiles returns the local-event search radius.
func (r *Restaurant) EventRadiusMiles() float64 {
	return r.eventRadiusMiles
}

// MinTrainingPoints returns the minimum labeled snapshots required to train.
func (r *Restaurant) MinTrainingPoints() int {
	return r.minTrainingPoints
}

// IsEqual compares restaurants by identifier.
func (r *Restaurant) IsEqual(other *Restaurant) bool {
	return other != nil && r.id.IsEqual(other.id)
}

// Validate ensures the restaurant was created through a constructor.
func (r *Restaurant) Validate() error {
	if r == nil {
		return ErrRestaurantIsNotConstructed
	}
	return r.guard.Validate(ErrRestaurantIsNotConstructed)
}

func (r *Restaurant) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	r.id = id
	return nil
}

func (r *Restaurant) setName(name string) error {
	if name == "" {
		return ErrRestaurantNameIsRequired
	}
	r.name = name
	return nil
}

func (r *Restaurant) setLocation(location kernel.GeoPoint) error {
	if err := location.Validate(); err != nil {
		return err
	}
	r.location = location
	return nil
}
