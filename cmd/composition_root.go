package cmd

import (
	"log/slog"
	"time"

	httpin "forecast/internal/adapters/in/http"
	"forecast/internal/adapters/out/eventsapi"
	"forecast/internal/adapters/out/memcache"
	"forecast/internal/adapters/out/postgres"
	"forecast/internal/adapters/out/postgres/volumesource"
	"forecast/internal/adapters/out/rediscache"
	"forecast/internal/adapters/out/weatherapi"
	"forecast/internal/core/application/featureeng"
	"forecast/internal/core/application/registry"
	"forecast/internal/core/application/usecases/commands"
	"forecast/internal/core/application/usecases/queries"
	"forecast/internal/core/ports"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// trainingSeed fixes the gradient-boost subsampling sequence so repeated
// trainings over the same data produce the same model.
const trainingSeed = 42

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	logger     *slog.Logger

	modelRegistry *registry.ModelRegistry
	extractor     *featureeng.Extractor
	eventProvider ports.EventProvider
	volumeSource  ports.VolumeSource
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	uowFactory := postgres.NewGormUnitOfWorkFactory(gormDB)

	localCache := memcache.NewModelCache(5 * time.Minute)

	var remoteCache ports.ModelCache
	if config.RedisAddr != "" {
		remoteCache = rediscache.NewModelCache(redis.NewClient(&redis.Options{Addr: config.RedisAddr}))
	}

	weatherProvider := weatherapi.NewProvider(config.WeatherAPIBaseURL, logger)
	eventProvider := eventsapi.NewProvider(config.EventsAPIBaseURL, config.EventsAPIKey, logger)
	volumeSource := volumesource.NewGormVolumeSource(gormDB)

	return CompositionRoot{
		gormDB:        gormDB,
		uowFactory:    *uowFactory,
		logger:        logger,
		modelRegistry: registry.NewModelRegistry(uowFactory, localCache, remoteCache, logger),
		extractor:     featureeng.NewExtractor(weatherProvider, volumeSource, logger),
		eventProvider: eventProvider,
		volumeSource:  volumeSource,
	}
}

func (c *CompositionRoot) CreateRegisterRestaurantCommandHandler() commands.RegisterRestaurantCommandHandler {
	var f commands.RestaurantUoWFactory = FuncRestaurantUoWFactory(func() commands.RestaurantUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRegisterRestaurantCommandHandler(f)
}

func (c *CompositionRoot) CreateTrainModelCommandHandler() commands.TrainModelCommandHandler {
	var f commands.TrainingUoWFactory = FuncTrainingUoWFactory(func() commands.TrainingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewTrainModelCommandHandler(f, c.modelRegistry, c.extractor, c.logger, trainingSeed)
}

func (c *CompositionRoot) CreateTrainAllCommandHandler() commands.TrainAllCommandHandler {
	trainer := c.CreateTrainModelCommandHandler()

	var f commands.RestaurantUoWFactory = FuncRestaurantUoWFactory(func() commands.RestaurantUoW {
		return c.uowFactory.Create()
	})
	return commands.NewTrainAllCommandHandler(f, c.modelRegistry, &trainer, c.logger)
}

func (c *CompositionRoot) CreateCollectFeaturesCommandHandler() commands.CollectFeaturesCommandHandler {
	var f commands.FeatureUoWFactory = FuncFeatureUoWFactory(func() commands.FeatureUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCollectFeaturesCommandHandler(f, c.extractor, c.eventProvider, c.volumeSource, c.logger)
}

func (c *CompositionRoot) CreateEvaluateModelsCommandHandler() commands.EvaluateModelsCommandHandler {
	var f commands.TrainingUoWFactory = FuncTrainingUoWFactory(func() commands.TrainingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewEvaluateModelsCommandHandler(f, c.modelRegistry, c.extractor, c.logger)
}

func (c *CompositionRoot) CreateCleanupExpiredDataCommandHandler() commands.CleanupExpiredDataCommandHandler {
	var cleanup commands.CleanupUoWFactory = FuncCleanupUoWFactory(func() commands.CleanupUoW {
		return c.uowFactory.Create()
	})
	var restaurants commands.RestaurantUoWFactory = FuncRestaurantUoWFactory(func() commands.RestaurantUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCleanupExpiredDataCommandHandler(cleanup, restaurants, c.modelRegistry, c.logger)
}

func (c *CompositionRoot) CreateRollbackModelCommandHandler() commands.RollbackModelCommandHandler {
	return commands.NewRollbackModelCommandHandler(c.modelRegistry, c.logger)
}

func (c *CompositionRoot) CreatePredictDemandQueryHandler() queries.PredictDemandQueryHandler {
	var f queries.PredictUoWFactory = FuncPredictUoWFactory(func() queries.PredictUoW {
		return c.uowFactory.Create()
	})
	return queries.NewPredictDemandQueryHandler(f, c.modelRegistry, c.extractor, c.logger)
}

func (c *CompositionRoot) CreatePredictDayQueryHandler() queries.PredictDayQueryHandler {
	var f queries.PredictUoWFactory = FuncPredictUoWFactory(func() queries.PredictUoW {
		return c.uowFactory.Create()
	})
	return queries.NewPredictDayQueryHandler(f, c.modelRegistry, c.extractor, c.logger)
}

func (c *CompositionRoot) CreateGetFeatureImportanceQueryHandler() queries.GetFeatureImportanceQueryHandler {
	return queries.NewGetFeatureImportanceQueryHandler(c.modelRegistry)
}

func (c *CompositionRoot) CreateListRestaurantsQueryHandler() queries.ListRestaurantsQueryHandler {
	return queries.NewListRestaurantsQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateHTTPServer() *httpin.Server {
	return httpin.NewServer(
		c.CreateRegisterRestaurantCommandHandler(),
		c.CreateTrainModelCommandHandler(),
		c.CreateRollbackModelCommandHandler(),
		c.CreateListRestaurantsQueryHandler(),
		c.CreatePredictDemandQueryHandler(),
		c.CreatePredictDayQueryHandler(),
		c.CreateGetFeatureImportanceQueryHandler(),
	)
}

type FuncRestaurantUoWFactory func() commands.RestaurantUoW

func (f FuncRestaurantUoWFactory) Create() commands.RestaurantUoW {
	return f()
}

type FuncTrainingUoWFactory func() commands.TrainingUoW

func (f FuncTrainingUoWFactory) Create() commands.TrainingUoW {
	return f()
}

type FuncFeatureUoWFactory func() commands.FeatureUoW

func (f FuncFeatureUoWFactory) Create() commands.FeatureUoW {
	return f()
}

type FuncCleanupUoWFactory func() commands.CleanupUoW

func (f FuncCleanupUoWFactory) Create() commands.CleanupUoW {
	return f()
}

type FuncPredictUoWFactory func() queries.PredictUoW

func (f FuncPredictUoWFactory) Create() queries.PredictUoW {
	return f()
}
