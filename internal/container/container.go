package container

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/pastebox/internal/analytics"
	analyticsstore "github.com/serroba/pastebox/internal/analytics/store"
	"github.com/serroba/pastebox/internal/handlers"
	"github.com/serroba/pastebox/internal/health"
	"github.com/serroba/pastebox/internal/messaging"
	"github.com/serroba/pastebox/internal/middleware"
	"github.com/serroba/pastebox/internal/paste"
	"github.com/serroba/pastebox/internal/ratelimit"
	"github.com/serroba/pastebox/internal/store"
	"go.uber.org/zap"
)

// consumerGroupName identifies the analytics consumers on the Redis streams.
const consumerGroupName = "pastebox-analytics"

// Options holds the configuration shared by the binaries. humacli turns the
// fields into flags and environment variables for the server; the consumer
// fills in what it needs from the environment itself.
type Options struct {
	Port         int    `default:"8888"            help:"Port to listen on"                                        short:"p"`
	DBPath       string `default:"pastebox.db"     help:"Path to the paste database file"`
	BaseURL      string `default:""                help:"Public base URL; defaults to http://localhost:<port>"`
	AccessKey    string `default:""                help:"Service credential guarding writes, deletes and listing"`
	IDLength     int    `default:"8"               help:"Length of generated paste ids"                           short:"c"`
	MaxTextBytes int    `default:"1048576"         help:"Content ceiling for text pastes in bytes"`
	MaxLinkBytes int    `default:"2048"            help:"Content ceiling for link pastes in bytes"`
	IndexMessage string `default:"pastebox is running, POST a body to / to create a paste" help:"Message served on the index route"`
	IndexLink    string `default:""                help:"Redirect target for the index route; overrides the message"`
	RedisAddr    string `default:"localhost:6379"  help:"Redis server address; empty runs rate limiting and events in-process" short:"r"`
	PostgresDSN  string `default:""                help:"PostgreSQL DSN for the analytics sink; empty logs events instead"`
	LogFormat    string `default:"console"         help:"Log format: console or json"`
}

// LoggerPackage provides the zap logger.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		options := do.MustInvoke[*Options](i)

		if options.LogFormat == "json" {
			return zap.NewProduction()
		}

		return zap.NewDevelopment()
	})
}

// RedisPackage provides the Redis client used for rate limiting and the
// event stream transport.
func RedisPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*redis.Client, error) {
		options := do.MustInvoke[*Options](i)

		return redis.NewClient(&redis.Options{
			Addr: options.RedisAddr,
		}), nil
	})
}

// RepositoryPackage provides the bbolt-backed paste repository. The injector
// closes the database file on shutdown.
func RepositoryPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*store.BoltRepository, error) {
		options := do.MustInvoke[*Options](i)

		return store.NewBoltRepository(options.DBPath)
	})
}

// PasteStorePackage provides the id generator and the paste store.
func PasteStorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (paste.IDGenerator, error) {
		options := do.MustInvoke[*Options](i)

		return paste.NewIDGenerator(options.IDLength)
	})

	do.Provide(injector, func(i *do.Injector) (*paste.Store, error) {
		options := do.MustInvoke[*Options](i)
		repo := do.MustInvoke[*store.BoltRepository](i)
		generate := do.MustInvoke[paste.IDGenerator](i)

		return paste.NewStore(repo, generate, paste.Config{
			AccessCredential: options.AccessKey,
			MaxTextBytes:     options.MaxTextBytes,
			MaxLinkBytes:     options.MaxLinkBytes,
		})
	})
}

// RateLimitPackage provides the policy rate limiter. Counters live in Redis
// when an address is configured and in process memory otherwise.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		options := do.MustInvoke[*Options](i)

		if options.RedisAddr == "" {
			return ratelimit.NewPolicyLimiter(store.NewRateLimitMemoryStore(), ratelimit.DefaultPolicy()), nil
		}

		client := do.MustInvoke[*redis.Client](i)

		return ratelimit.NewPolicyLimiter(store.NewRateLimitRedisStore(client), ratelimit.DefaultPolicy()), nil
	})
}

// PublisherGroupPackage provides the event publisher: Redis streams when an
// address is configured, an in-process channel otherwise. Events published
// in-process never leave the server, so the standalone consumer group below
// subscribes to the same channel.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		options := do.MustInvoke[*Options](i)

		if options.RedisAddr == "" {
			channel := do.MustInvoke[*gochannel.GoChannel](i)

			return messaging.NewPublisherGroup(channel), nil
		}

		client := do.MustInvoke[*redis.Client](i)

		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{Client: client},
			watermill.NopLogger{},
		)
		if err != nil {
			return nil, err
		}

		return messaging.NewPublisherGroup(publisher), nil
	})
}

// ChannelPackage provides the in-process pub/sub used when no Redis address
// is configured. Publisher and subscriber must share the instance.
func ChannelPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*gochannel.GoChannel, error) {
		return gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{}), nil
	})
}

// HTTPPackage provides the router and the API with all middleware and routes
// registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		router := do.MustInvoke[*chi.Mux](i)
		pasteStore := do.MustInvoke[*paste.Store](i)
		repo := do.MustInvoke[*store.BoltRepository](i)
		limiter := do.MustInvoke[*ratelimit.PolicyLimiter](i)
		publisherGroup := do.MustInvoke[*messaging.PublisherGroup](i)

		api := humachi.New(router, huma.DefaultConfig("Pastebox", "1.0.0"))

		api.UseMiddleware(
			middleware.RequestMeta(api),
			middleware.PolicyRateLimiter(api, limiter, ratelimit.NewOperationScopeResolver(), logger),
		)

		baseURL := options.BaseURL
		if baseURL == "" {
			baseURL = fmt.Sprintf("http://localhost:%d", options.Port)
		}

		pasteHandler := handlers.NewPasteHandler(
			pasteStore,
			baseURL,
			options.IndexMessage,
			options.IndexLink,
			messaging.NewPublishFunc[analytics.PasteSavedEvent](publisherGroup.Publisher(), analytics.TopicPasteSaved),
			messaging.NewPublishFunc[analytics.PasteViewedEvent](publisherGroup.Publisher(), analytics.TopicPasteViewed),
			messaging.NewPublishFunc[analytics.PasteDeletedEvent](publisherGroup.Publisher(), analytics.TopicPasteDeleted),
			logger,
		)

		maxBody := options.MaxTextBytes
		if options.MaxLinkBytes > maxBody {
			maxBody = options.MaxLinkBytes
		}

		var redisChecker health.Checker
		if options.RedisAddr != "" {
			redisChecker = health.NewRedisChecker(do.MustInvoke[*redis.Client](i))
		}

		handlers.RegisterRoutes(api, pasteHandler, int64(maxBody))
		health.RegisterRoutes(api, health.NewHandler(repo, redisChecker))

		return api, nil
	})
}

// PostgresPackage provides the analytics database pool.
func PostgresPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*pgxpool.Pool, error) {
		options := do.MustInvoke[*Options](i)

		return pgxpool.New(context.Background(), options.PostgresDSN)
	})
}

// AnalyticsStorePackage provides the analytics event sink: PostgreSQL when a
// DSN is configured, the logging noop otherwise.
func AnalyticsStorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if options.PostgresDSN == "" {
			return analyticsstore.NewNoop(logger), nil
		}

		pool := do.MustInvoke[*pgxpool.Pool](i)
		pg := analyticsstore.NewPostgres(pool)

		if err := pg.EnsureSchema(context.Background()); err != nil {
			return nil, err
		}

		return pg, nil
	})
}

// ConsumerGroupPackage provides the analytics consumer group subscribed to
// the paste lifecycle topics. It reads from Redis streams when an address is
// configured and from the in-process channel otherwise.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		options := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		sink := do.MustInvoke[analytics.Store](i)

		var subscriber message.Subscriber

		if options.RedisAddr == "" {
			subscriber = do.MustInvoke[*gochannel.GoChannel](i)
		} else {
			client := do.MustInvoke[*redis.Client](i)

			redisSubscriber, err := redisstream.NewSubscriber(redisstream.SubscriberConfig{
				Client:        client,
				ConsumerGroup: consumerGroupName,
			}, watermill.NopLogger{})
			if err != nil {
				return nil, err
			}

			subscriber = redisSubscriber
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(subscriber, analytics.TopicPasteSaved, sink.SavePasteSaved, logger))
		group.Add(messaging.NewConsumer(subscriber, analytics.TopicPasteViewed, sink.SavePasteViewed, logger))
		group.Add(messaging.NewConsumer(subscriber, analytics.TopicPasteDeleted, sink.SavePasteDeleted, logger))

		return group, nil
	})
}
