package commands

import (
	"errors"
	"fmt"

	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/pkg/errs"
	"forecast/internal/pkg/guard"
)

var (
	ErrRollbackModelCommandIsNotConstructed = errors.New(
		"RollbackModelCommand must be created via NewRollbackModelCommand constructor",
	)
)

// RollbackModelCommand restores a previously deprecated model version to
// active, demoting the current one. Operators issue it when a freshly
// trained version turns out worse than its predecessor.
type RollbackModelCommand struct { //nolint:recvcheck //using for validation
	restaurantID  kernel.UUID
	targetVersion int

	guard guard.ConstructorGuard
}

// NewRollbackModelCommand creates a rollback command. The target version
// must be positive.
func NewRollbackModelCommand(restaurantID kernel.UUID, targetVersion int) (RollbackModelCommand, error) {
	command := RollbackModelCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		command.setRestaurantID(restaurantID),
		command.setTargetVersion(targetVersion),
	); err != nil {
		return RollbackModelCommand{}, err
	}

	return command, nil
}

// Validate ensures the command was created through the constructor.
func (c RollbackModelCommand) Validate() error {
	return c.guard.Validate(ErrRollbackModelCommandIsNotConstructed)
}

// RestaurantID returns the restaurant whose model history is rolled back.
func (c RollbackModelCommand) RestaurantID() kernel.UUID {
	return c.restaurantID
}

// TargetVersion returns the version to restore.
func (c RollbackModelCommand) TargetVersion() int {
	return c.targetVersion
}

func (c *RollbackModelCommand) setRestaurantID(restaurantID kernel.UUID) error {
	if err := restaurantID.Validate(); err != nil {
		return err
	}

	c.restaurantID = restaurantID
	return nil
}

func (c *RollbackModelCommand) setTargetVersion(targetVersion int) error {
	if targetVersion <= 0 {
		return errs.NewVersionIsInvalidError("targetVersion",
			fmt.Errorf("%d is not a positive version", targetVersion))
	}

	c.targetVersion = targetVersion
	return nil
}
