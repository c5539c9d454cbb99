package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/pastebox/internal/container"
	"github.com/serroba/pastebox/internal/messaging"
	"go.uber.org/zap"
)

// registerPackages wires every provider; providers are lazy, so the Redis
// and Postgres ones only connect when the configuration selects them.
func registerPackages(injector *do.Injector, options *container.Options) {
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.ChannelPackage(injector)
	container.RepositoryPackage(injector)
	container.PasteStorePackage(injector)
	container.RateLimitPackage(injector)
	container.PublisherGroupPackage(injector)
	container.PostgresPackage(injector)
	container.AnalyticsStorePackage(injector)
	container.ConsumerGroupPackage(injector)
	container.HTTPPackage(injector)
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector := do.New()
		registerPackages(injector, options)

		logger := do.MustInvoke[*zap.Logger](injector)

		var server *http.Server

		hooks.OnStart(func() {
			router := do.MustInvoke[*chi.Mux](injector)

			// Invoking the API registers every route on the router.
			_ = do.MustInvoke[huma.API](injector)

			// In-process events cannot reach a separate consumer binary,
			// so without Redis the analytics pipeline runs in here.
			if options.RedisAddr == "" {
				group := do.MustInvoke[*messaging.ConsumerGroup](injector)

				if err := group.Start(context.Background()); err != nil {
					logger.Fatal("analytics consumers failed to start", zap.Error(err))
				}
			}

			if options.AccessKey == "" {
				logger.Warn("no access key configured, anyone can create, list and delete pastes")
			}

			server = &http.Server{
				Addr:              fmt.Sprintf(":%d", options.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			logger.Info("server starting",
				zap.Int("port", options.Port),
				zap.String("db", options.DBPath),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			if server != nil {
				if err := server.Shutdown(ctx); err != nil {
					logger.Error("server shutdown error", zap.Error(err))
				}
			}

			if err := injector.Shutdown(); err != nil {
				logger.Error("service shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")
		})
	})

	cli.Run()
}
