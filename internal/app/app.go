// Package app assembles the artifact bundle, engines, services and tool dispatcher
// shared by the HTTP entry points.
package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/merchant-agent/backend-go/internal/api"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/artifacts"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/cache"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/config"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/domain"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/drive"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/forecast"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/observability"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/recommend"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/service"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/storage"
	"github.com/andresuchdata/merchant-agent/backend-go/internal/tools"
)

type App struct {
	Config          *config.Config
	Bundle          *artifacts.Bundle
	Metrics         *observability.Metrics
	Forecasts       *service.ForecastService
	Recommendations *service.RecommendationService
	Catalog         *service.CatalogService
	Tools           *tools.Dispatcher

	closers []func()
}

// New loads the artifacts named by cfg and wires everything that reads them.
// Load failures wrap domain.ErrArtifactLoad.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, Metrics: observability.DefaultMetrics}

	source, err := NewSource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrArtifactLoad, err)
	}

	loader := &artifacts.Loader{
		Source: source,
		Dir:    cfg.Artifacts.Dir,
		Files:  Files(cfg),
	}

	if strings.EqualFold(cfg.Artifacts.HistorySource, "postgres") {
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrArtifactLoad, err)
		}
		a.closers = append(a.closers, func() { db.Close() })
		loader.Sales = postgres.NewSalesRepository(db)
	}

	bundle, err := loader.Load(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Bundle = bundle
	a.Metrics.ArtifactLoadedAt.Set(float64(bundle.LoadedAt.Unix()))
	a.Metrics.HistoryRows.Set(float64(bundle.History.Len()))

	toolCache, err := cache.NewToolResultCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("app: tool result cache unavailable, continuing without cache")
		toolCache = cache.NewNoopToolResultCache()
	}

	forecastEngine := forecast.NewEngine(bundle.Model, bundle.Products, bundle.History, forecast.Config{
		MaxPeriods: cfg.Forecast.MaxPeriods,
		SeedUnits:  cfg.Forecast.SeedUnits,
	})
	recommendEngine := recommend.NewEngine(bundle.History, recommend.Config{
		PlanningDays:       cfg.Recommend.PlanningDays,
		DefaultSafetyRatio: cfg.Recommend.DefaultSafetyRatio,
		MaxSafetyRatio:     cfg.Recommend.MaxSafetyRatio,
	})

	a.Forecasts = service.NewForecastService(forecastEngine, toolCache, bundle.Version, a.Metrics)
	a.Recommendations = service.NewRecommendationService(recommendEngine, toolCache, bundle.Version, a.Metrics)
	a.Catalog = service.NewCatalogService(bundle)
	a.Tools = tools.NewDispatcher(a.Forecasts, a.Recommendations, cfg.Forecast.DefaultPeriods, a.Metrics)

	return a, nil
}

// APIServices returns the services consumed by the gin router.
func (a *App) APIServices() *api.Services {
	return &api.Services{
		Tools:                 a.Tools,
		ForecastService:       a.Forecasts,
		RecommendationService: a.Recommendations,
		CatalogService:        a.Catalog,
		DefaultPeriods:        a.Config.Forecast.DefaultPeriods,
		Metrics:               a.Metrics,
	}
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// Files maps the configured file names onto artifacts.Files.
func Files(cfg *config.Config) artifacts.Files {
	files := artifacts.DefaultFiles()
	if cfg.Artifacts.ModelFile != "" {
		files.Model = cfg.Artifacts.ModelFile
	}
	if cfg.Artifacts.ProductMapFile != "" {
		files.ProductMap = cfg.Artifacts.ProductMapFile
	}
	if cfg.Artifacts.SalesHistoryCSV != "" {
		files.SalesHistory = cfg.Artifacts.SalesHistoryCSV
	}
	return files
}

func S3Config(cfg *config.Config) storage.S3Config {
	return storage.S3Config{
		Endpoint:  cfg.Storage.Endpoint,
		AccessKey: cfg.Storage.AccessKey,
		SecretKey: cfg.Storage.SecretKey,
		Bucket:    cfg.Storage.Bucket,
		Region:    cfg.Storage.Region,
		UseSSL:    cfg.Storage.UseSSL,
	}
}

// NewSource picks the artifact source: local, s3 or drive.
func NewSource(ctx context.Context, cfg *config.Config) (artifacts.Source, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Artifacts.Source)) {
	case "", "local":
		return artifacts.LocalSource{}, nil

	case "s3":
		client, err := storage.NewMinioClient(S3Config(cfg))
		if err != nil {
			return nil, err
		}
		return artifacts.ObjectSource{Storage: client, Prefix: cfg.Storage.Prefix}, nil

	case "drive":
		if cfg.Drive.CredentialsJSON == "" {
			return nil, fmt.Errorf("drive source requires GOOGLE_DRIVE_CREDENTIALS_JSON")
		}
		svc, err := drive.NewService(ctx, cfg.Drive.CredentialsJSON)
		if err != nil {
			return nil, err
		}
		folderID := cfg.Drive.FolderID
		if folderID == "" {
			if cfg.Drive.FolderPath == "" {
				return nil, fmt.Errorf("drive source requires DRIVE_FOLDER_ID or DRIVE_FOLDER_PATH")
			}
			folderID, err = svc.FindFolderByPath(ctx, cfg.Drive.FolderPath)
			if err != nil {
				return nil, err
			}
		}
		return drive.NewFetcher(svc, folderID), nil

	default:
		return nil, fmt.Errorf("unknown artifact source %q", cfg.Artifacts.Source)
	}
}
