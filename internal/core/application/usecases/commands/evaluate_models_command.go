package commands

import (
	"errors"

	"forecast/internal/pkg/guard"
)

var (
	ErrEvaluateModelsCommandIsNotConstructed = errors.New(
		"EvaluateModelsCommand must be created via NewEvaluateModelsCommand constructor",
	)
)

// EvaluateModelsCommand triggers live accuracy evaluation of every
// restaurant's active model against recently labeled snapshots, feeding
// the drift detection that drives retraining.
type EvaluateModelsCommand struct {
	guard guard.ConstructorGuard
}

// NewEvaluateModelsCommand creates a parameterless evaluation command.
func NewEvaluateModelsCommand() EvaluateModelsCommand {
	return EvaluateModelsCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c *EvaluateModelsCommand) Validate() error {
	return c.guard.Validate(ErrEvaluateModelsCommandIsNotConstructed)
}
