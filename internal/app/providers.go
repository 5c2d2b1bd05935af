package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goopenai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"voicenote/internal/api/routes"
	"voicenote/internal/api/server"
	"voicenote/internal/api/services"
	"voicenote/internal/app/api/openai"
	"voicenote/internal/app/api/openai/chat"
	"voicenote/internal/app/api/openai/whisper"
	"voicenote/internal/app/auth"
	"voicenote/internal/app/pipeline"
	"voicenote/internal/app/repository"
	"voicenote/internal/app/repository/pg"
	"voicenote/internal/app/repository/sqlite"
	"voicenote/internal/app/storage"
	"voicenote/internal/config"
)

const startupTimeout = 15 * time.Second

// StoreSet opens and migrates the configured database.
var StoreSet = wire.NewSet(provideStore)

// ServerSet builds the HTTP server and everything behind it.
var ServerSet = wire.NewSet(
	StoreSet,
	provideOpenAIClient,
	provideSpeechToText,
	provideEnhancer,
	provideRegistry,
	provideMetrics,
	provideArchive,
	providePipeline,
	provideSessionCache,
	provideResolver,
	provideGitHub,
	provideAuthService,
	provideTranscriptionService,
	provideServiceContainer,
	provideServer,
)

type migrator interface {
	repository.Store
	Migrate(ctx context.Context) error
}

func provideStore(cfg config.Config, logger *zap.Logger) (repository.Store, func(), error) {
	var (
		store migrator
		err   error
	)
	switch cfg.Database.Driver {
	case "postgres":
		store, err = pg.NewPostgresDB(cfg.Database.URL)
	case "sqlite":
		store, err = sqlite.NewSQLiteDB(cfg.Database.URL)
	default:
		err = config.ValidateDriver(cfg.Database.Driver)
	}
	if err != nil {
		return nil, nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("migrate %s: %w", cfg.Database.Driver, err)
	}
	logger.Info("Database ready", zap.String("driver", cfg.Database.Driver))

	cleanup := func() {
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close database", zap.Error(err))
		}
	}
	return store, cleanup, nil
}

func provideOpenAIClient(cfg config.Config) *goopenai.Client {
	return openai.NewClient(cfg.OpenAI, nil)
}

func provideSpeechToText(client *goopenai.Client, cfg config.Config) pipeline.SpeechToText {
	return whisper.NewRemoteTranscriber(client, cfg.OpenAI.WhisperModel, cfg.OpenAI.Language)
}

func provideEnhancer(client *goopenai.Client, cfg config.Config) pipeline.Enhancer {
	return chat.NewEnhancer(client, cfg.OpenAI.EnhanceModel)
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideMetrics(reg *prometheus.Registry) *pipeline.Metrics {
	return pipeline.NewMetrics(reg)
}

// provideArchive returns nil when no MinIO endpoint is configured.
func provideArchive(cfg config.Config, logger *zap.Logger) (*storage.AudioArchive, error) {
	if cfg.MinIO.Endpoint == "" {
		logger.Info("Audio archive disabled")
		return nil, nil
	}

	archive, err := storage.NewAudioArchive(cfg.MinIO)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := archive.EnsureBucket(ctx); err != nil {
		return nil, err
	}
	logger.Info("Audio archive enabled",
		zap.String("endpoint", cfg.MinIO.Endpoint),
		zap.String("bucket", cfg.MinIO.Bucket),
	)
	return archive, nil
}

func providePipeline(
	stt pipeline.SpeechToText,
	enhancer pipeline.Enhancer,
	store repository.Store,
	archive *storage.AudioArchive,
	metrics *pipeline.Metrics,
	cfg config.Config,
	logger *zap.Logger,
) *pipeline.Pipeline {
	opts := []pipeline.Option{
		pipeline.WithMetrics(metrics),
		pipeline.WithTimeouts(pipeline.Timeouts{
			SpeechToText: cfg.OpenAI.STTTimeout,
			Enhancement:  cfg.OpenAI.EnhanceTimeout,
		}),
	}
	if archive != nil {
		opts = append(opts, pipeline.WithArchiver(archive))
	}
	return pipeline.New(stt, enhancer, store, logger.Named("pipeline"), opts...)
}

// provideSessionCache returns nil when Redis is not configured or unreachable.
func provideSessionCache(cfg config.Config, logger *zap.Logger) (auth.SessionCache, func()) {
	if cfg.Redis.Addr == "" {
		return nil, func() {}
	}

	cache := auth.NewRedisSessionCache(cfg.Redis)
	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()
	if err := cache.Ping(ctx); err != nil {
		logger.Warn("Session cache unavailable, continuing without it",
			zap.String("addr", cfg.Redis.Addr),
			zap.Error(err),
		)
		_ = cache.Close()
		return nil, func() {}
	}

	return cache, func() { _ = cache.Close() }
}

func provideResolver(store repository.Store, cache auth.SessionCache, cfg config.Config, logger *zap.Logger) *auth.Resolver {
	return auth.NewResolver(store, cache, cfg.Redis.TTL, logger.Named("auth"))
}

func provideGitHub(cfg config.Config) *auth.GitHub {
	return auth.NewGitHub(cfg.GitHub, cfg.HTTP.PublicBaseURL)
}

func provideAuthService(github *auth.GitHub, store repository.Store, resolver *auth.Resolver, logger *zap.Logger) services.AuthService {
	return services.NewAuthService(auth.NewService(github, store, resolver, logger.Named("auth")))
}

func provideTranscriptionService(
	p *pipeline.Pipeline,
	store repository.Store,
	archive *storage.AudioArchive,
	logger *zap.Logger,
) services.TranscriptionService {
	var remover services.AudioRemover
	if archive != nil {
		remover = archive
	}
	return services.NewTranscriptionService(p, store, remover, logger.Named("transcriptions"))
}

func provideServiceContainer(
	transcriptions services.TranscriptionService,
	authService services.AuthService,
	store repository.Store,
	cfg config.Config,
) *routes.ServiceContainer {
	return &routes.ServiceContainer{
		TranscriptionService: transcriptions,
		AuthService:          authService,
		Health:               store,
		SecureCookies:        cfg.HTTP.SecureCookies,
		AfterSignIn:          cfg.HTTP.PublicBaseURL,
	}
}

func provideServer(cfg config.Config, container *routes.ServiceContainer, reg *prometheus.Registry, logger *zap.Logger) *server.Server {
	return server.NewServer(cfg, container, reg, logger)
}
