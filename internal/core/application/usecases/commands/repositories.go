// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS
// architecture. All commands follow a consistent pattern: validation,
// transaction management, and persistence.
package commands

import (
	"context"

	"forecast/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// These abstractions ensure data consistency across aggregate boundaries.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// SnapshotRepoFactory provides access to the snapshot repository
	// within a transaction.
	SnapshotRepoFactory interface {
		SnapshotRepository() ports.SnapshotRepository
	}

	// RestaurantRepoFactory provides access to the restaurant repository
	// within a transaction.
	RestaurantRepoFactory interface {
		RestaurantRepository() ports.RestaurantRepository
	}

	// EventRepoFactory provides access to the event repository within a
	// transaction.
	EventRepoFactory interface {
		EventRepository() ports.EventRepository
	}

	// RestaurantUoW manages transactions for restaurant-only reads, used
	// by batch handlers iterating the restaurant list.
	RestaurantUoW interface {
		TxManager
		RestaurantRepoFactory
	}

	// RestaurantUoWFactory creates new restaurant unit of work instances.
	RestaurantUoWFactory interface {
		Create() RestaurantUoW
	}

	// TrainingUoW manages transactions for training reads: the restaurant
	// and its labeled snapshot history.
	TrainingUoW interface {
		TxManager
		RestaurantRepoFactory
		SnapshotRepoFactory
	}

	// TrainingUoWFactory creates new training unit of work instances.
	TrainingUoWFactory interface {
		Create() TrainingUoW
	}

	// FeatureUoW manages transactions for feature collection, which
	// touches restaurants, snapshots, and cached events together.
	FeatureUoW interface {
		TxManager
		RestaurantRepoFactory
		SnapshotRepoFactory
		EventRepoFactory
	}

	// FeatureUoWFactory creates new feature unit of work instances.
	FeatureUoWFactory interface {
		Create() FeatureUoW
	}

	// CleanupUoW manages transactions for retention cleanup of snapshots
	// and cached events.
	CleanupUoW interface {
		TxManager
		SnapshotRepoFactory
		EventRepoFactory
	}

	// CleanupUoWFactory creates new cleanup unit of work instances.
	CleanupUoWFactory interface {
		Create() CleanupUoW
	}
)
