package commands

import (
	"errors"

	"forecast/internal/core/domain/model/mlmodel"
	"forecast/internal/pkg/guard"
)

var (
	ErrTrainAllCommandIsNotConstructed = errors.New(
		"TrainAllCommand must be created via NewTrainAllCommand constructor",
	)
)

// TrainAllCommand runs the conditional retraining check for every
// registered restaurant. The scheduler's daily training job issues this
// command.
//
// Example:
//
//	cmd, _ := NewTrainAllCommand(mlmodel.Ensemble, mlmodel.DefaultModelParameters())
//	result, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return err
//	}
//	log.Printf("trained %d of %d restaurants", result.Succeeded, result.Processed)
type TrainAllCommand struct { //nolint:recvcheck //using for validation
	modelType mlmodel.ModelType
	params    mlmodel.ModelParameters

	guard guard.ConstructorGuard
}

// NewTrainAllCommand creates a batch training command.
func NewTrainAllCommand(modelType mlmodel.ModelType, params mlmodel.ModelParameters) (TrainAllCommand, error) {
	command := TrainAllCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setModelType(modelType),
		command.setParams(params),
	); err != nil {
		return TrainAllCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c TrainAllCommand) Validate() error {
	return c.guard.Validate(ErrTrainAllCommandIsNotConstructed)
}

// ModelType returns the model family to train.
func (c TrainAllCommand) ModelType() mlmodel.ModelType {
	return c.modelType
}

// Params returns the training hyperparameters.
func (c TrainAllCommand) Params() mlmodel.ModelParameters {
	return c.params
}

func (c *TrainAllCommand) setModelType(modelType mlmodel.ModelType) error {
	if err := modelType.Validate(); err != nil {
		return err
	}

	c.modelType = modelType
	return nil
}

func (c *TrainAllCommand) setParams(params mlmodel.ModelParameters) error {
	if err := params.Validate(); err != nil {
		return err
	}

	c.params = params
	return nil
}
