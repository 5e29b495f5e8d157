package snapshotrepo_test

import (
	"context"
	"testing"
	"time"

	"forecast/internal/adapters/out/postgres/snapshotrepo"
	"forecast/internal/core/domain/model/forecast"
	"forecast/internal/core/domain/model/kernel"
	"forecast/internal/pkg/errs"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// SnapshotRepositoryIntegrationTestSuite tests the GORM snapshot
// repository against a real PostgreSQL database, covering the upsert key,
// label backfill, and retention cleanup.
type SnapshotRepositoryIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	repo      *snapshotrepo.GormSnapshotRepository
}

func (suite *SnapshotRepositoryIntegrationTestSuite) SetupSuite() {
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

	err = db.AutoMigrate(&snapshotrepo.SnapshotDTO{})
	suite.Require().NoError(err)

	suite.repo = snapshotrepo.NewGormSnapshotRepository(db, &mockAggregateTracker{})
}

func (suite *SnapshotRepositoryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		err := suite.container.Terminate(context.Background())
		suite.Require().NoError(err)
	}
}

func (suite *SnapshotRepositoryIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE feature_snapshots").Error
	suite.Require().NoError(err)
}

func (suite *SnapshotRepositoryIntegrationTestSuite) TestUpsert_And_Get_RoundTrip() {
	ctx := context.Background()
	restaurantID := kernel.NewUUID()
	hour := time.Date(2025, time.August, 22, 18, 0, 0, 0, time.UTC)

	snapshot := suite.buildSnapshot(restaurantID, hour)

	err := suite.repo.Upsert(ctx, snapshot)
	suite.Require().NoError(err)

	retrieved, err := suite.repo.Get(ctx, restaurantID, hour)
	suite.Require().NoError(err)

	suite.Equal(snapshot.ID(), retrieved.ID())
	suite.Equal(restaurantID, retrieved.RestaurantID())
	suite.True(hour.Equal(retrieved.CapturedAt()))
	suite.InDelta(72.0, retrieved.Weather().Temperature, 0.001)
	suite.Equal(1, retrieved.Events().Count)
	suite.InDelta(41.0, retrieved.Lags().RollingAvg7D, 0.001)
	suite.False(retrieved.IsLabeled())
}

func (suite *SnapshotRepositoryIntegrationTestSuite) TestGet_UnknownHour() {
	ctx := context.Background()

	_, err := suite.repo.Get(ctx, kernel.NewUUID(), time.Now())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *SnapshotRepositoryIntegrationTestSuite) TestUpsert_RefreshesSignalsButKeepsActuals() {
	ctx := context.Background()
	restaurantID := kernel.NewUUID()
	hour := time.Date(2025, time.August, 22, 18, 0, 0, 0, time.UTC)

	// Collect and label the hour
	first := suite.buildSnapshot(restaurantID, hour)
	suite.Require().NoError(suite.repo.Upsert(ctx, first))
	suite.Require().NoError(first.RecordActuals(42, 18))
	suite.Require().NoError(suite.repo.RecordActuals(ctx, first))

	// A re-collection of the same hour carries fresher weather
	refreshed, err := forecast.NewFeatureSnapshot(
		kernel.NewUUID(),
		restaurantID,
		hour,
		false,
		forecast.WeatherObservation{Temperature: 68, Humidity: 70, CloudCover: 80},
		forecast.EventSignal{},
		forecast.LagSignal{},
	)
	suite.Require().NoError(err)
	suite.Require().NoError(suite.repo.Upsert(ctx, refreshed))

	// Signals refreshed, label preserved
	retrieved, err := suite.repo.Get(ctx, restaurantID, hour)
	suite.Require().NoError(err)
	suite.InDelta(68.0, retrieved.Weather().Temperature, 0.001)
	suite.True(retrieved.IsLabeled(), "Re-collecting an hour must not clear recorded actuals")
	suite.InDelta(42.0, *retrieved.ActualDineIn(), 0.001)
}

func (suite *SnapshotRepositoryIntegrationTestSuite) TestRecordActuals_UnknownSnapshot() {
	ctx := context.Background()

	ghost := suite.buildSnapshot(kernel.NewUUID(), time.Date(2025, time.August, 22, 18, 0, 0, 0, time.UTC))
	suite.Require().NoError(ghost.RecordActuals(10, 5))

	err := suite.repo.RecordActuals(ctx, ghost)
	suite.Require().Error(err)
}

func (suite *SnapshotRepositoryIntegrationTestSuite) TestGetRange_OrderedByHour() {
	ctx := context.Background()
	restaurantID := kernel.NewUUID()
	start := time.Date(2025, time.August, 22, 10, 0, 0, 0, time.UTC)

	// Insert out of order
	for _, offset := range []int{2, 0, 1} {
		snapshot := suite.buildSnapshot(restaurantID, start.Add(time.Duration(offset)*time.Hour))
		suite.Require().NoError(suite.repo.Upsert(ctx, snapshot))
	}

	snapshots, err := suite.repo.GetRange(ctx, restaurantID, start, start.Add(3*time.Hour))
	suite.Require().NoError(err)
	suite.Require().Len(snapshots, 3)
	suite.True(start.Equal(snapshots[0].CapturedAt()))
	suite.True(start.Add(time.Hour).Equal(snapshots[1].CapturedAt()))
	suite.True(start.Add(2 * time.Hour).Equal(snapshots[2].CapturedAt()))

	// The range end is exclusive
	snapshots, err = suite.repo.GetRange(ctx, restaurantID, start, start.Add(2*time.Hour))
	suite.Require().NoError(err)
	suite.Len(snapshots, 2)
}

func (suite *SnapshotRepositoryIntegrationTestSuite) TestLabeledAndUnlabeledPartition() {
	ctx := context.Background()
	restaurantID := kernel.NewUUID()
	start := time.Date(2025, time.August, 22, 10, 0, 0, 0, time.UTC)

	labeled := suite.buildSnapshot(restaurantID, start)
	suite.Require().NoError(suite.repo.Upsert(ctx, labeled))
	suite.Require().NoError(labeled.RecordActuals(42, 18))
	suite.Require().NoError(suite.repo.RecordActuals(ctx, labeled))

	unlabeled := suite.buildSnapshot(restaurantID, start.Add(time.Hour))
	suite.Require().NoError(suite.repo.Upsert(ctx, unlabeled))

	labeledRows, err := suite.repo.GetLabeled(ctx, restaurantID, start, start.Add(2*time.Hour))
	suite.Require().NoError(err)
	suite.Require().Len(labeledRows, 1)
	suite.Equal(labeled.ID(), labeledRows[0].ID())

	unlabeledRows, err := suite.repo.GetUnlabeled(ctx, restaurantID, start.Add(2*time.Hour))
	suite.Require().NoError(err)
	suite.Require().Len(unlabeledRows, 1)
	suite.Equal(unlabeled.ID(), unlabeledRows[0].ID())
}

func (suite *SnapshotRepositoryIntegrationTestSuite) TestDeleteOlderThan_EnforcesRetention() {
	ctx := context.Background()
	restaurantID := kernel.NewUUID()
	cutoff := time.Date(2025, time.August, 22, 0, 0, 0, 0, time.UTC)

	old := suite.buildSnapshot(restaurantID, cutoff.Add(-48*time.Hour))
	suite.Require().NoError(suite.repo.Upsert(ctx, old))
	recent := suite.buildSnapshot(restaurantID, cutoff.Add(6*time.Hour))
	suite.Require().NoError(suite.repo.Upsert(ctx, recent))

	removed, err := suite.repo.DeleteOlderThan(ctx, cutoff)
	suite.Require().NoError(err)
	suite.Equal(int64(1), removed)

	_, err = suite.repo.Get(ctx, restaurantID, old.CapturedAt())
	suite.Require().Error(err)

	_, err = suite.repo.Get(ctx, restaurantID, recent.CapturedAt())
	suite.Require().NoError(err)
}

func (suite *SnapshotRepositoryIntegrationTestSuite) buildSnapshot(restaurantID kernel.UUID, hour time.Time) *forecast.FeatureSnapshot {
	snapshot, err := forecast.NewFeatureSnapshot(
		kernel.NewUUID(),
		restaurantID,
		hour,
		false,
		forecast.WeatherObservation{Temperature: 72, Humidity: 60, CloudCover: 25},
		forecast.EventSignal{Count: 1, AttendanceLog: 7.1, Proximity: 0.8, Impact: 5.7},
		forecast.LagSignal{SameHour1D: 40, SameHour7D: 38, RollingAvg7D: 41, RollingAvg28: 39, Trend: 0.05},
	)
	suite.Require().NoError(err)
	return snapshot
}

func TestSnapshotRepositoryIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(SnapshotRepositoryIntegrationTestSuite))
}

// mockAggregateTracker provides no-op aggregate tracking for tests.
type mockAggregateTracker struct{}

func (m *mockAggregateTracker) TrackAggregate(_ kernel.UUID, _ any) {}
