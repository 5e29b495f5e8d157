package commands

import (
	"errors"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
	"forecast/internal/pkg/guard"
)

var (
	ErrTrainModelCommandIsNotConstructed = errors.New(
		"TrainModelCommand must be created via NewTrainModelCommand constructor",
	)
)

// TrainModelCommand requests training of a new model version for one
// restaurant. The previous active version is demoted when the new one
// activates.
//
// Example:
//
//	cmd, err := NewTrainModelCommand(restaurantID, mlmodel.Ensemble, mlmodel.DefaultModelParameters())
//	if err != nil {
//	    return fmt.Errorf("invalid training request: %w", err)
//	}
//
//	result, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return err
//	}
//	if !result.Success {
//	    log.Printf("training skipped: %s", result.Message)
//	}
type TrainModelCommand struct { //nolint:recvcheck //using for validation
	restaurantID kernel.UUID
	modelType    mlmodel.ModelType
	params       mlmodel.ModelParameters

	guard guard.ConstructorGuard
}

// NewTrainModelCommand creates a training command. Validates the
// restaurant identifier, the model type, and the hyperparameters.
func NewTrainModelCommand(
	restaurantID kernel.UUID,
	modelType mlmodel.ModelType,
	params mlmodel.ModelParameters,
) (TrainModelCommand, error) {
	command := TrainModelCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setRestaurantID(restaurantID),
		command.setModelType(modelType),
		command.setParams(params),
	); err != nil {
		return TrainModelCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c TrainModelCommand) Validate() error {
	return c.guard.Validate(ErrTrainModelCommandIsNotConstructed)
}

// RestaurantID returns the restaurant to train for.
func (c TrainModelCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

// ModelType returns the model family to train.
func (c TrainModelCommand) ModelType() mlmodel.ModelType {
	return c.modelType
}

// Params returns the training hyperparameters.
func (c TrainModelCommand) Params() mlmodel.ModelParameters {
	return c.params
}

func (c *TrainModelCommand) setRestaurantID(restaurantID kernel.UUID) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}

	c.restaurantID = restaurantID
	return nil
}

func (c *TrainModelCommand) setModelType(modelType mlmodel.ModelType) error {
	if err := modelType.Validate(); err != nil {
		return err
	}

	c.modelType = modelType
	return nil
}

func (c *TrainModelCommand) setParams(params mlmodel.ModelParameters) error {
	if err := params.Validate(); err != nil {
		return err
	}

	c.params = params
	return nil
}
