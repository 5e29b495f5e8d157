package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"forecast/cmd"
	"forecast/internal/adapters/out/postgres/eventrepo"
	"forecast/internal/adapters/out/postgres/modelrepo"
	"forecast/internal/adapters/out/postgres/restaurantrepo"
	"forecast/internal/adapters/out/postgres/snapshotrepo"
	"forecast/internal/jobs"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	configs := getConfigs()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	gormDB, err := openDatabase(configs)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	app := cmd.NewCompositionRoot(configs, gormDB, logger)

	jobManager := createJobManager(&app, logger)
	if err = jobManager.StartAll(); err != nil {
		logger.Error("Failed to start jobs", "error", err)
		os.Exit(1)
	}
	defer jobManager.StopAll()

	startWebServer(&app, configs.HTTPPort, logger)
}

func getConfigs() cmd.Config {
	config := cmd.Config{
		HTTPPort:          goDotEnvVariable("HTTP_PORT"),
		DBHost:            goDotEnvVariable("DB_HOST"),
		DBPort:            goDotEnvVariable("DB_PORT"),
		DBUser:            goDotEnvVariable("DB_USER"),
		DBPassword:        goDotEnvVariable("DB_PASSWORD"),
		DBName:            goDotEnvVariable("DB_NAME"),
		DBSslMode:         goDotEnvVariable("DB_SSLMODE"),
		RedisAddr:         goDotEnvVariable("REDIS_ADDR"),
		WeatherAPIBaseURL: goDotEnvVariable("WEATHER_API_BASE_URL"),
		EventsAPIBaseURL:  goDotEnvVariable("EVENTS_API_BASE_URL"),
		EventsAPIKey:      goDotEnvVariable("EVENTS_API_KEY"),
	}
	return config
}

func goDotEnvVariable(key string) string {
	err := godotenv.Load(".env")
	if err != nil {
		log.Fatalf("Error loading .env file")
	}
	return os.Getenv(key)
}

func openDatabase(configs cmd.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		configs.DBHost,
		configs.DBPort,
		configs.DBUser,
		configs.DBPassword,
		configs.DBName,
		configs.DBSslMode,
	)

	gormDB, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = gormDB.AutoMigrate(
		&restaurantrepo.RestaurantDTO{},
		&modelrepo.ModelDTO{},
		&snapshotrepo.SnapshotDTO{},
		&eventrepo.EventDTO{},
	)
	if err != nil {
		return nil, err
	}

	return gormDB, nil
}

func createJobManager(app *cmd.CompositionRoot, logger *slog.Logger) *jobs.JobManager {
	collectHandler := app.CreateCollectFeaturesCommandHandler()
	trainHandler := app.CreateTrainAllCommandHandler()
	evaluateHandler := app.CreateEvaluateModelsCommandHandler()
	cleanupHandler := app.CreateCleanupExpiredDataCommandHandler()

	return jobs.NewJobManager(&collectHandler, &trainHandler, &evaluateHandler, &cleanupHandler, logger)
}

func startWebServer(app *cmd.CompositionRoot, port string, logger *slog.Logger) {
	e := echo.New()
	app.CreateHTTPServer().RegisterRoutes(e)

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", port)); err != nil && err != http.ErrServerClosed {
			logger.Error("Web server stopped", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("Web server shutdown failed", "error", err)
	}
}
