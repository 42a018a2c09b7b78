package bootstrap

import (
	"context"
	"log/slog"
	"strings"

	"go.uber.org/fx"
	"gorm.io/gorm"

	"zhujian/internal/bootstrap/config"
	"zhujian/internal/bootstrap/database"
	"zhujian/internal/bootstrap/logging"
	"zhujian/internal/errs"
	"zhujian/internal/infrastructure/events"
	"zhujian/internal/infrastructure/llm"
	sqliterepo "zhujian/internal/infrastructure/persistence/sqlite/repository"
	sqliteuow "zhujian/internal/infrastructure/persistence/sqlite/uow"
	"zhujian/internal/infrastructure/uploads"
	"zhujian/internal/ports"
	"zhujian/internal/transport/httpapi"
	"zhujian/internal/usecase/analytics"
	"zhujian/internal/usecase/assistant"
	"zhujian/internal/usecase/backfill"
	"zhujian/internal/usecase/records"
)

var Module = fx.Options(
	fx.Provide(provideConfig),
	fx.Provide(provideDatabase),
	fx.Provide(provideApp),
	fx.Provide(
		fx.Annotate(
			sqliterepo.NewInspectionRepository,
			fx.As(new(ports.InspectionRepository)),
		),
	),
	fx.Provide(
		fx.Annotate(
			sqliteuow.NewUnitOfWork,
			fx.As(new(ports.UnitOfWork)),
		),
	),
	fx.Provide(provideEventPublisher),
	fx.Provide(llm.NewSettingsFromConfig),
	fx.Provide(
		fx.Annotate(
			llm.NewDoubaoClient,
			fx.As(new(ports.ChatCompleter)),
		),
	),
	fx.Provide(provideLLMPool),
	fx.Provide(provideUploadStore),
	fx.Provide(records.NewService),
	fx.Provide(backfill.NewService),
	fx.Provide(analytics.NewService),
	fx.Provide(provideAssistant),
	fx.Provide(httpapi.NewServer),
)

type configParams struct {
	fx.In

	Ctx        context.Context
	ConfigFile string `name:"configFile"`
}

func provideConfig(p configParams) (config.Config, error) {
	ctx := logging.WithAttrs(p.Ctx, slog.String("component", "bootstrap.fx"))
	return config.Load(ctx, p.ConfigFile)
}

func provideDatabase(lc fx.Lifecycle, ctx context.Context, cfg config.Config) (*gorm.DB, error) {
	logCtx := logging.WithAttrs(ctx, slog.String("component", "bootstrap.fx"))

	db, err := database.Open(logCtx, cfg.Database)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.Close()
		},
	})

	return db, nil
}

func provideApp(cfg config.Config, db *gorm.DB) *App {
	return &App{
		Config: cfg,
		DB:     db,
	}
}

func provideEventPublisher(lc fx.Lifecycle, ctx context.Context, cfg config.Config) ports.EventPublisher {
	publisher := events.NewPublisher(ctx, cfg.Events)
	lc.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			publisher.Close()
			return nil
		},
	})
	return publisher
}

func provideAssistant(
	ctx context.Context,
	recordsSvc *records.Service,
	analyticsSvc *analytics.Service,
	backfillSvc *backfill.Service,
	chat ports.ChatCompleter,
	pool *llm.Pool,
	cfg config.Config,
) *assistant.Service {
	if path := strings.TrimSpace(cfg.Assistant.ProfileFile); path != "" {
		profile, err := assistant.LoadProfile(path)
		if err != nil {
			logging.Warn(ctx, "assistant profile unavailable", slog.Any("err", errs.Loggable(err)))
		} else {
			profile.Apply()
			logging.Info(ctx, "assistant profile applied", slog.String("path", path))
		}
	}
	return assistant.NewService(recordsSvc, analyticsSvc, backfillSvc, chat, pool, cfg)
}

func provideLLMPool(cfg config.Config) *llm.Pool {
	return llm.NewPool(cfg.Assistant.LLMWorkers)
}

func provideUploadStore(cfg config.Config) *uploads.Store {
	return uploads.NewStore(cfg.Uploads.Dir)
}
