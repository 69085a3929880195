package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/automator/internal/automator"
	"github.com/MrSnakeDoc/automator/internal/catalog"
	"github.com/MrSnakeDoc/automator/internal/config"
	"github.com/MrSnakeDoc/automator/internal/helphub"
	"github.com/MrSnakeDoc/automator/internal/hooks"
	"github.com/MrSnakeDoc/automator/internal/httpserver"
	"github.com/MrSnakeDoc/automator/internal/httpserver/deps"
	"github.com/MrSnakeDoc/automator/internal/logger"
	"github.com/MrSnakeDoc/automator/internal/metrics"
	"github.com/MrSnakeDoc/automator/internal/mirror"
	"github.com/MrSnakeDoc/automator/internal/nonce"
	"github.com/MrSnakeDoc/automator/internal/notifications"
	"github.com/MrSnakeDoc/automator/internal/process"
	"github.com/MrSnakeDoc/automator/internal/redis"
	"github.com/MrSnakeDoc/automator/internal/scheduler"
	redisstore "github.com/MrSnakeDoc/automator/internal/store/redis"
	"github.com/MrSnakeDoc/automator/internal/utils"
	"github.com/MrSnakeDoc/automator/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	mirror      mirror.Closer
	pruner      *scheduler.QueuePruner
	tester      *process.Tester
}

func New() (*App, error) {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Initialize Redis early - fail fast if unavailable
	loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
	redisClient, err := redis.New(redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}, loggerClient)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	loggerClient.Info("Redis initialized successfully")

	store := redisstore.NewStore(redisClient)

	cat, err := loadCatalog(cfg.CatalogFile)
	if err != nil {
		utils.CloseLogged(redisClient, loggerClient, "redis")
		return nil, err
	}

	m := mirror.New(cfg.KafkaBrokers, cfg.KafkaTopic, loggerClient)
	if len(cfg.KafkaBrokers) > 0 {
		loggerClient.Info("kafka mirror enabled",
			logger.Strings("brokers", cfg.KafkaBrokers),
			logger.String("topic", cfg.KafkaTopic))
	}

	fail := func(err error) (*App, error) {
		utils.CloseLogged(m, loggerClient, "kafka mirror")
		utils.CloseLogged(redisClient, loggerClient, "redis")
		return nil, err
	}

	connectors, err := buildConnectors(cat, store, automator.NewPluginSet(cfg.ActivePlugins...), m, loggerClient)
	if err != nil {
		return fail(err)
	}

	bus := hooks.NewBus()
	if _, err := automator.SubscribeQueues(bus, connectors, loggerClient, metrics.QueueDecision); err != nil {
		return fail(fmt.Errorf("failed to subscribe trigger queues: %w", err))
	}

	nonces := nonce.New(cfg.NonceSecret, cfg.NonceLifetime)

	feed, err := newFeed(cfg, loggerClient)
	if err != nil {
		return fail(err)
	}
	ian := notifications.New(store, notifications.Options{
		PluginSlugs: cfg.IANPluginSlugs,
		Feed:        feed,
		Logger:      loggerClient,
	})

	hubs, err := helphub.NewFactory(helphub.ChatKeys{DocsBot: cfg.DocsBotKey, Zendesk: cfg.ZendeskKey}, cfg.PublicURL+"/assets")
	if err != nil {
		return fail(err)
	}

	tester := process.NewTester(cfg.AjaxURL(), 5*time.Second, func(action string) string {
		return nonces.Create(action, "")
	}, store, loggerClient)

	pruner := scheduler.NewQueuePruner(store, loggerClient, cfg.PruneInterval, cfg.QueueRetention)

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:        loggerClient,
		StartTime:     time.Now(),
		Version:       version.Version,
		Commit:        version.Commit,
		BuildDate:     version.BuildDate,
		GoVersion:     version.GoVersion,
		TimeNow:       time.Now,
		AllowedCIDRS:  cfg.AllowedCIDRS,
		TrustProxy:    cfg.TrustProxy,
		RESTBurst:     cfg.RESTBurst,
		RESTRefill:    cfg.RESTRefill,
		AjaxURL:       cfg.AjaxURL(),
		Store:         store,
		Connectors:    connectors,
		Bus:           bus,
		Nonces:        nonces,
		Notifications: ian,
		HelpHub:       hubs,
		Tester:        tester,
	}

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		mirror:      m,
		pruner:      pruner,
		tester:      tester,
	}, nil
}

func loadCatalog(path string) (catalog.Catalog, error) {
	if path == "" {
		return catalog.Default()
	}
	return catalog.Load(path)
}

// newFeed picks the notification feed: the remote one with the file feed as
// fallback when a URL is configured, the file feed alone otherwise.
func newFeed(cfg *config.Config, log logger.Logger) (notifications.Feed, error) {
	file, err := notifications.NewFileFeed(cfg.IANFeedFile)
	if err != nil {
		return nil, err
	}
	if cfg.IANFeedURL == "" {
		return file, nil
	}
	return notifications.NewFallbackFeed(notifications.NewRemoteFeed(cfg.IANFeedURL, cfg.IANTimeout), file, log), nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting Automator v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("Automator %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.pruner.Start(ctx); err != nil {
		return fmt.Errorf("failed to start queue pruner: %w", err)
	}
	a.logger.Info("queue pruner started",
		logger.Duration("interval", a.cfg.PruneInterval),
		logger.Duration("retention", a.cfg.QueueRetention))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	if a.cfg.AsyncProbe {
		go func() {
			// Give the listener a moment before calling ourselves.
			select {
			case <-time.After(time.Second):
				a.tester.Probe(ctx)
			case <-ctx.Done():
			}
		}()
	}

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	a.pruner.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	utils.CloseLogged(a.mirror, a.logger, "kafka mirror")
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ Automator stopped cleanly")
	return nil
}
