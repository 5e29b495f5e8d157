package memcache_test

import (
	"context"
	"testing"
	"time"

	"forecast/internal/adapters/out/memcache"
	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
	"forecast/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cachedModel(t *testing.T, restaurantID kernel.UUID) *mlmodel.MLModel {
	t.Helper()

	model, err := mlmodel.NewMLModel(
		kernel.NewUUID(),
		restaurantID,
		mlmodel.Linear,
		mlmodel.NewLinearWeights(mlmodel.LinearWeights{
			Intercept:    20,
			Coefficients: map[string]float64{},
		}),
		mlmodel.Normalization{},
		mlmodel.DefaultModelParameters(),
		mlmodel.TrainingMetrics{MAE: 3, MAPE: 11},
		900,
		time.Date(2025, time.August, 20, 2, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	return model
}

func TestModelCache_SetAndGet(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cache := memcache.NewModelCache(5 * time.Minute)
	restaurantID := kernel.NewUUID()
	model := cachedModel(t, restaurantID)

	// Act
	err := cache.Set(ctx, model, 5*time.Minute)
	require.NoError(t, err)

	cached, err := cache.Get(ctx, restaurantID)

	// Assert
	require.NoError(t, err)
	assert.Same(t, model, cached)
}

func TestModelCache_Get_MissReturnsErrCacheMiss(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cache := memcache.NewModelCache(5 * time.Minute)

	// Act
	cached, err := cache.Get(ctx, kernel.NewUUID())

	// Assert
	require.ErrorIs(t, err, ports.ErrCacheMiss)
	assert.Nil(t, cached)
}

func TestModelCache_Get_RejectsInvalidRestaurantID(t *testing.T) {
	ctx := context.Background()
	cache := memcache.NewModelCache(5 * time.Minute)

	_, err := cache.Get(ctx, kernel.UUID{})

	require.Error(t, err)
}

func TestModelCache_Set_RejectsUnconstructedModel(t *testing.T) {
	ctx := context.Background()
	cache := memcache.NewModelCache(5 * time.Minute)

	err := cache.Set(ctx, &mlmodel.MLModel{}, 5*time.Minute)

	require.Error(t, err)
	require.ErrorIs(t, err, mlmodel.ErrMLModelIsNotConstructed)
}

func TestModelCache_Set_OverwritesPerRestaurant(t *testing.T) {
	// Arrange - the second model for the same restaurant replaces the first
	ctx := context.Background()
	cache := memcache.NewModelCache(5 * time.Minute)
	restaurantID := kernel.NewUUID()
	first := cachedModel(t, restaurantID)
	second := cachedModel(t, restaurantID)

	// Act
	require.NoError(t, cache.Set(ctx, first, 5*time.Minute))
	require.NoError(t, cache.Set(ctx, second, 5*time.Minute))

	cached, err := cache.Get(ctx, restaurantID)

	// Assert
	require.NoError(t, err)
	assert.Same(t, second, cached)
}

func TestModelCache_Delete_EvictsEntry(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cache := memcache.NewModelCache(5 * time.Minute)
	restaurantID := kernel.NewUUID()
	model := cachedModel(t, restaurantID)
	require.NoError(t, cache.Set(ctx, model, 5*time.Minute))

	// Act
	err := cache.Delete(ctx, restaurantID)

	// Assert
	require.NoError(t, err)
	_, err = cache.Get(ctx, restaurantID)
	require.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestModelCache_EntriesExpireAfterTTL(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cache := memcache.NewModelCache(5 * time.Minute)
	restaurantID := kernel.NewUUID()
	model := cachedModel(t, restaurantID)
	require.NoError(t, cache.Set(ctx, model, 30*time.Millisecond))

	// Act
	time.Sleep(60 * time.Millisecond)
	_, err := cache.Get(ctx, restaurantID)

	// Assert
	require.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestModelCache_IsolatesRestaurants(t *testing.T) {
	// Arrange
	ctx := context.Background()
	cache := memcache.NewModelCache(5 * time.Minute)
	firstID := kernel.NewUUID()
	secondID := kernel.NewUUID()
	require.NoError(t, cache.Set(ctx, cachedModel(t, firstID), 5*time.Minute))

	// Act
	require.NoError(t, cache.Delete(ctx, secondID))
	cached, err := cache.Get(ctx, firstID)

	// Assert - deleting one restaurant leaves the other's entry alone
	require.NoError(t, err)
	assert.Equal(t, firstID, cached.RestaurantID())
}
