package commands

import (
	"errors"

	"forecast/internal/pkg/guard"
)

var (
	ErrCollectFeaturesCommandIsNotConstructed = errors.New(
		"CollectFeaturesCommand must be created via NewCollectFeaturesCommand constructor",
	)
)

// CollectFeaturesCommand triggers the hourly feature collection sweep:
// refresh cached local events, capture feature snapshots for the
// forecast horizon, and backfill actual volumes onto past snapshots.
//
// Example:
//
//	cmd := NewCollectFeaturesCommand()
//	result, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    log.Printf("feature collection failed: %v", err)
//	}
type CollectFeaturesCommand struct {
	guard guard.ConstructorGuard
}

// NewCollectFeaturesCommand creates a parameterless collection command
// covering every registered restaurant.
func NewCollectFeaturesCommand() CollectFeaturesCommand {
	return CollectFeaturesCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c *CollectFeaturesCommand) Validate() error {
	return c.guard.Validate(ErrCollectFeaturesCommandIsNotConstructed)
}
