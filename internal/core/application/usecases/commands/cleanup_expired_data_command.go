package commands

import (
	"errors"

	"forecast/internal/pkg/guard"
)

var (
	ErrCleanupExpiredDataCommandIsNotConstructed = errors.New(
		"CleanupExpiredDataCommand must be created via NewCleanupExpiredDataCommand constructor",
	)
)

// CleanupExpiredDataCommand triggers the retention sweep: drop feature
// snapshots past their retention window, drop cached events that have
// long ended, and prune each restaurant's model history to the newest
// versions.
type CleanupExpiredDataCommand struct {
	guard guard.ConstructorGuard
}

// NewCleanupExpiredDataCommand creates a parameterless cleanup command.
func NewCleanupExpiredDataCommand() CleanupExpiredDataCommand {
	return CleanupExpiredDataCommand{
		guard: guard.NewConstructorGuard(),
	}
}

// Validate ensures the command was created through the constructor.
func (c *CleanupExpiredDataCommand) Validate() error {
	return c.guard.Validate(ErrCleanupExpiredDataCommandIsNotConstructed)
}
