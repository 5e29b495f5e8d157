package commands

import (
	"errors"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
	"forecast/internal/pkg/guard"
)

var (
	ErrRetrainIfNeededCommandIsNotConstructed = errors.New(
		"RetrainIfNeededCommand must be created via NewRetrainIfNeededCommand constructor",
	)
)

// RetrainIfNeededCommand checks a restaurant's retraining triggers and
// trains a new version only when at least one fires.
type RetrainIfNeededCommand struct { //nolint:recvcheck //using for validation
	restaurantID kernel.UUID
	modelType    mlmodel.ModelType
	params       mlmodel.ModelParameters

	guard guard.ConstructorGuard
}

// NewRetrainIfNeededCommand creates a conditional retraining command.
func NewRetrainIfNeededCommand(
	restaurantID kernel.UUID,
	modelType mlmodel.ModelType,
	params mlmodel.ModelParameters,
) (RetrainIfNeededCommand, error) {
	command := RetrainIfNeededCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setRestaurantID(restaurantID),
		command.setModelType(modelType),
		command.setParams(params),
	); err != nil {
		return RetrainIfNeededCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c RetrainIfNeededCommand) Validate() error {
	return c.guard.Validate(ErrRetrainIfNeededCommandIsNotConstructed)
}

// RestaurantID returns the restaurant to check.
func (c RetrainIfNeededCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

// ModelType returns the model family to train when retraining fires.
func (c RetrainIfNeededCommand) ModelType() mlmodel.ModelType {
	return c.modelType
}

// Params returns the training hyperparameters.
func (c RetrainIfNeededCommand) Params() mlmodel.ModelParameters {
	return c.params
}

func (c *RetrainIfNeededCommand) setRestaurantID(restaurantID kernel.UUID) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}

	c.restaurantID = restaurantID
	return nil
}

func (c *RetrainIfNeededCommand) setModelType(modelType mlmodel.ModelType) error {
	if err := modelType.Validate(); err != nil {
		return err
	}

	c.modelType = modelType
	return nil
}

func (c *RetrainIfNeededCommand) setParams(params mlmodel.ModelParameters) error {
	if err := params.Validate(); err != nil {
		return err
	}

	c.params = params
	return nil
}
