package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"jobselect/config"
	"jobselect/infrastructure"
	"jobselect/interfaces"
	"jobselect/usecase"
)

func newAuthService(cfg *config.Config, users *infrastructure.UserRepository, tokens *infrastructure.TokenIssuer, verifier *infrastructure.IdentityVerifier, oauth *infrastructure.GoogleOAuth, logger *zap.Logger) *usecase.AuthService {
	var exchanger usecase.CodeExchanger
	if oauth != nil {
		exchanger = oauth
	}
	if !verifier.Enabled() {
		logger.Warn("no identity verifier configured, trusting login assertions")
	}
	return usecase.NewAuthService(users, tokens, verifier, exchanger, cfg.IsDevelopment(), logger)
}

func newJobService(jobs *infrastructure.JobRepository, logger *zap.Logger) *usecase.JobService {
	return usecase.NewJobService(jobs, logger)
}

func newIntakeService(jobs *infrastructure.JobRepository, apps *infrastructure.ApplicationRepository, broker infrastructure.Broker, logger *zap.Logger) *usecase.IntakeService {
	return usecase.NewIntakeService(jobs, apps, broker, logger)
}

func newExtractionService(apps *infrastructure.ApplicationRepository, extractor *infrastructure.ResumeExtractor, logger *zap.Logger) *usecase.ExtractionService {
	return usecase.NewExtractionService(apps, extractor, logger)
}

func newHealthCheck(db *gorm.DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}
}

func newTracing(lc fx.Lifecycle, cfg *config.Config, logger *zap.Logger) error {
	shutdown, err := infrastructure.InitTracer(context.Background(), "jobselect", cfg.OTLPEndpoint)
	if err != nil {
		return err
	}
	if cfg.OTLPEndpoint != "" {
		logger.Info("tracing enabled", zap.String("endpoint", cfg.OTLPEndpoint))
	}
	lc.Append(fx.Hook{OnStop: shutdown})
	return nil
}

func registerBroker(lc fx.Lifecycle, broker infrastructure.Broker, extraction *usecase.ExtractionService) {
	ctx, cancel := context.WithCancel(context.Background())
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return broker.Consume(ctx, extraction.Handle)
		},
		OnStop: func(context.Context) error {
			cancel()
			broker.Close()
			return nil
		},
	})
}

func registerServer(lc fx.Lifecycle, cfg *config.Config, router http.Handler, logger *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			go func() {
				logger.Info("server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}

func newRouter(h *interfaces.HTTPHandler) http.Handler {
	return interfaces.NewRouter(h)
}

func main() {
	app := fx.New(
		fx.NopLogger,
		fx.Provide(
			config.Load,
			infrastructure.NewLogger,
			infrastructure.NewDatabase,
			infrastructure.NewUserRepository,
			infrastructure.NewJobRepository,
			infrastructure.NewApplicationRepository,
			infrastructure.NewTokenIssuer,
			infrastructure.NewGoogleVerifier,
			infrastructure.NewFirebaseVerifier,
			infrastructure.NewIdentityVerifier,
			infrastructure.NewGoogleOAuth,
			infrastructure.NewBroker,
			infrastructure.NewResumeExtractor,
			newAuthService,
			newJobService,
			newIntakeService,
			newExtractionService,
			newHealthCheck,
			interfaces.NewHTTPHandler,
			newRouter,
		),
		fx.Invoke(
			newTracing,
			registerBroker,
			registerServer,
		),
	)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := app.Start(startCtx); err != nil {
		log.Fatal(err)
	}

	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c

	stopCtx, stopCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer stopCancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Fatal(err)
	}
}
