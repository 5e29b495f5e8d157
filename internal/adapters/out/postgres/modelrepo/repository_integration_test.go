package modelrepo_test

import (
	"context"
	"testing"
	"time"

	"forecast/internal/adapters/out/postgres/modelrepo"
	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/core/domain/model/mlmodel"
	"forecast/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ModelRepositoryIntegrationTestSuite tests the GORM model repository
// against a real PostgreSQL database, covering artifact round-trips,
// lifecycle updates, version reservation, and history management.
type ModelRepositoryIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	repo      *modelrepo.GormModelRepository
}

func (suite *ModelRepositoryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30*time.Second)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db

	err = db.AutoMigrate(&modelrepo.ModelDTO{})
	suite.Require().NoError(err)

	suite.repo = modelrepo.NewGormModelRepository(db, &mockAggregateTracker{})
}

func (suite *ModelRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *ModelRepositoryIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE ml_models").Error
	suite.Require().NoError(err)
}

func (suite *ModelRepositoryIntegrationTestSuite) TestAdd_And_GetByVersion_RoundTrip() {
	ctx := context.Background()
	restaurantID := kernel.NewUUID()

	model := suite.buildEnsembleModel(restaurantID)
	suite.Require().NoError(model.AssignVersion(1))

	err := suite.repo.Add(ctx, model)
	suite.Require().NoError(err)

	retrieved, err := suite.repo.GetByVersion(ctx, restaurantID, 1)
	suite.Require().NoError(err)

	suite.Equal(model.ID(), retrieved.ID())
	suite.Equal(restaurantID, retrieved.RestaurantID())
	suite.Equal(1, retrieved.Version())
	suite.Equal(mlmodel.Ensemble, retrieved.Type())
	suite.Equal(mlmodel.Training, retrieved.Status())
	suite.Equal(900, retrieved.TrainingPoints())
	suite.True(model.TrainedAt().Equal(retrieved.TrainedAt()))

	// The jsonb artifact survives intact
	ensemble, err := retrieved.Weights().Ensemble()
	suite.Require().NoError(err)
	suite.InDelta(0.6, ensemble.LinearWeight, 1e-9)
	suite.InDelta(0.4, ensemble.GradientBoostWeight, 1e-9)
	suite.InDelta(4.2, ensemble.Linear.Coefficients[forecast.FeatureTemperature], 1e-9)
	suite.Require().Len(ensemble.GradientBoost.Trees, 1)

	// Metrics and hyperparameters survive as flat columns
	suite.InDelta(4.0, retrieved.Metrics().MAE, 1e-9)
	suite.InDelta(0.8, retrieved.Metrics().R2, 1e-9)
	suite.Equal(mlmodel.DefaultModelParameters(), retrieved.Params())
}

func (suite *ModelRepositoryIntegrationTestSuite) TestGetActive_ReturnsOnlyActiveVersion() {
	ctx := context.Background()
	restaurantID := kernel.NewUUID()

	// No model at all yet
	_, err := suite.repo.GetActive(ctx, restaurantID)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	// A Training version does not count as active
	training := suite.buildLinearModel(restaurantID)
	suite.Require().NoError(training.AssignVersion(1))
	suite.Require().NoError(suite.repo.Add(ctx, training))

	_, err = suite.repo.GetActive(ctx, restaurantID)
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)

	// An activated version does
	active := suite.buildLinearModel(restaurantID)
	suite.Require().NoError(active.AssignVersion(2))
	suite.Require().NoError(active.Activate())
	suite.Require().NoError(suite.repo.Add(ctx, active))

	retrieved, err := suite.repo.GetActive(ctx, restaurantID)
	suite.Require().NoError(err)
	suite.Equal(2, retrieved.Version())
	suite.Equal(mlmodel.Active, retrieved.Status())
}

func (suite *ModelRepositoryIntegrationTestSuite) TestUpdate_PersistsLifecycleFields() {
	ctx := context.Background()
	restaurantID := kernel.NewUUID()

	model := suite.buildLinearModel(restaurantID)
	suite.Require().NoError(model.AssignVersion(1))
	suite.Require().NoError(model.Activate())
	suite.Require().NoError(suite.repo.Add(ctx, model))

	// Live performance comes in, then the version is demoted
	suite.Require().NoError(model.RecordPerformance(5.5, mlmodel.Degrading))
	suite.Require().NoError(model.Deprecate())

	err := suite.repo.Update(ctx, model)
	suite.Require().NoError(err)

	retrieved, err := suite.repo.GetByVersion(ctx, restaurantID, 1)
	suite.Require().NoError(err)
	suite.Equal(mlmodel.Deprecated, retrieved.Status())
	suite.Require().NotNil(retrieved.RecentMAE())
	suite.InDelta(5.5, *retrieved.RecentMAE(), 1e-9)
	suite.Equal(mlmodel.Degrading, retrieved.AccuracyTrend())
}

func (suite *ModelRepositoryIntegrationTestSuite) TestUpdate_UnknownModelFails() {
	ctx := context.Background()

	ghost := suite.buildLinearModel(kernel.NewUUID())
	suite.Require().NoError(ghost.AssignVersion(1))

	err := suite.repo.Update(ctx, ghost)
	suite.Require().Error(err)
}

func (suite *ModelRepositoryIntegrationTestSuite) TestNextVersion_SequencesPerRestaurant() {
	ctx := context.Background()
	firstRestaurant := kernel.NewUUID()
	secondRestaurant := kernel.NewUUID()

	version, err := suite.repo.NextVersion(ctx, firstRestaurant)
	suite.Require().NoError(err)
	suite.Equal(1, version)

	model := suite.buildLinearModel(firstRestaurant)
	suite.Require().NoError(model.AssignVersion(version))
	suite.Require().NoError(suite.repo.Add(ctx, model))

	version, err = suite.repo.NextVersion(ctx, firstRestaurant)
	suite.Require().NoError(err)
	suite.Equal(2, version)

	// The second restaurant has its own sequence
	version, err = suite.repo.NextVersion(ctx, secondRestaurant)
	suite.Require().NoError(err)
	suite.Equal(1, version)
}

func (suite *ModelRepositoryIntegrationTestSuite) TestListVersions_NewestFirst() {
	ctx := context.Background()
	restaurantID := kernel.NewUUID()

	for version := 1; version <= 3; version++ {
		model := suite.buildLinearModel(restaurantID)
		suite.Require().NoError(model.AssignVersion(version))
		suite.Require().NoError(suite.repo.Add(ctx, model))
	}

	models, err := suite.repo.ListVersions(ctx, restaurantID)
	suite.Require().NoError(err)
	suite.Require().Len(models, 3)
	suite.Equal(3, models[0].Version())
	suite.Equal(2, models[1].Version())
	suite.Equal(1, models[2].Version())
}

func (suite *ModelRepositoryIntegrationTestSuite) TestDeleteVersions_RemovesOnlyListed() {
	ctx := context.Background()
	restaurantID := kernel.NewUUID()

	for version := 1; version <= 4; version++ {
		model := suite.buildLinearModel(restaurantID)
		suite.Require().NoError(model.AssignVersion(version))
		suite.Require().NoError(suite.repo.Add(ctx, model))
	}

	err := suite.repo.DeleteVersions(ctx, restaurantID, []int{1, 2})
	suite.Require().NoError(err)

	models, err := suite.repo.ListVersions(ctx, restaurantID)
	suite.Require().NoError(err)
	suite.Require().Len(models, 2)
	suite.Equal(4, models[0].Version())
	suite.Equal(3, models[1].Version())

	// Empty version list is a no-op
	err = suite.repo.DeleteVersions(ctx, restaurantID, nil)
	suite.Require().NoError(err)
}

func (suite *ModelRepositoryIntegrationTestSuite) TestIncrementPredictions_BumpsCounter() {
	ctx := context.Background()
	restaurantID := kernel.NewUUID()

	model := suite.buildLinearModel(restaurantID)
	suite.Require().NoError(model.AssignVersion(1))
	suite.Require().NoError(suite.repo.Add(ctx, model))

	predictedAt := time.Date(2025, time.August, 22, 18, 0, 0, 0, time.UTC)
	for range 3 {
		err := suite.repo.IncrementPredictions(ctx, model.ID(), predictedAt)
		suite.Require().NoError(err)
	}

	retrieved, err := suite.repo.GetByVersion(ctx, restaurantID, 1)
	suite.Require().NoError(err)
	suite.Equal(int64(3), retrieved.PredictionsCount())
	suite.Require().NotNil(retrieved.LastPredictionAt())
	suite.True(predictedAt.Equal(*retrieved.LastPredictionAt()))
}

func (suite *ModelRepositoryIntegrationTestSuite) TestIncrementPredictions_UnknownModel() {
	ctx := context.Background()

	err := suite.repo.IncrementPredictions(ctx, kernel.NewUUID(), time.Now())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *ModelRepositoryIntegrationTestSuite) buildLinearModel(restaurantID kernel.UUID) *mlmodel.MLModel {
	model, err := mlmodel.NewMLModel(
		kernel.NewUUID(),
		restaurantID,
		mlmodel.Linear,
		mlmodel.NewLinearWeights(mlmodel.LinearWeights{
			Intercept:    20,
			Coefficients: map[string]float64{forecast.FeatureTemperature: 4.2},
		}),
		mlmodel.Normalization{},
		mlmodel.DefaultModelParameters(),
		mlmodel.TrainingMetrics{MAE: 4, RMSE: 5, MAPE: 12, R2: 0.8},
		900,
		time.Date(2025, time.August, 20, 2, 0, 0, 0, time.UTC),
	)
	suite.Require().NoError(err)
	return model
}

func (suite *ModelRepositoryIntegrationTestSuite) buildEnsembleModel(restaurantID kernel.UUID) *mlmodel.MLModel {
	temperatureIndex, ok := forecast.FeatureIndex(forecast.FeatureTemperature)
	suite.Require().True(ok)

	ensemble := mlmodel.EnsembleWeights{
		Linear: mlmodel.LinearWeights{
			Intercept:    20,
			Coefficients: map[string]float64{forecast.FeatureTemperature: 4.2},
		},
		GradientBoost: mlmodel.GradientBoostWeights{
			InitialPrediction: 30,
			LearningRate:      0.1,
			Trees: []mlmodel.Tree{{
				Nodes: []mlmodel.TreeNode{
					{FeatureIndex: temperatureIndex, Threshold: 65, LeftValue: -2, RightValue: 3, Left: 1, Right: 2},
					{FeatureIndex: -1, LeftValue: -2, RightValue: -2, Left: mlmodel.NoChild, Right: mlmodel.NoChild},
					{FeatureIndex: -1, LeftValue: 3, RightValue: 3, Left: mlmodel.NoChild, Right: mlmodel.NoChild},
				},
			}},
		},
		LinearWeight:        0.6,
		GradientBoostWeight: 0.4,
	}

	model, err := mlmodel.NewMLModel(
		kernel.NewUUID(),
		restaurantID,
		mlmodel.Ensemble,
		mlmodel.NewEnsembleWeights(ensemble),
		mlmodel.Normalization{},
		mlmodel.DefaultModelParameters(),
		mlmodel.TrainingMetrics{MAE: 4, RMSE: 5, MAPE: 12, R2: 0.8},
		900,
		time.Date(2025, time.August, 20, 2, 0, 0, 0, time.UTC),
	)
	suite.Require().NoError(err)
	return model
}

func TestModelRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(ModelRepositoryIntegrationTestSuite))
}

// mockAggregateTracker provides no-op aggregate tracking for tests.
type mockAggregateTracker struct{}

func (m *mockAggregateTracker) TrackAggregate(_ kernel.UUID, _ any) {}
