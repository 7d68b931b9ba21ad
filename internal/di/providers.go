package di

import (
	"context"
	"fmt"
	"time"

	"BoostPull/internal/cycle"
	"BoostPull/internal/domain/repository"
	mid "BoostPull/internal/middleware"
	internalrepo "BoostPull/internal/repository"
	"BoostPull/internal/scenario"
	"BoostPull/internal/scoring"
	svccache "BoostPull/internal/service/cache"
	"BoostPull/internal/service/pricefeed"
	"BoostPull/internal/service/prices"
	"BoostPull/internal/service/signals"
	"BoostPull/internal/usecase"
	pkgcache "BoostPull/pkg/cache"
	pkgch "BoostPull/pkg/clickhouse"
	"BoostPull/pkg/config"
	pkghttp "BoostPull/pkg/http"
	pkgkafka "BoostPull/pkg/kafka"
	applogger "BoostPull/pkg/logger"
	"BoostPull/pkg/metrics"
	"BoostPull/pkg/server"
)

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() repository.Metrics {
	return metrics.New()
}

// ProvideLogger creates the application logger. When a Kafka event publisher
// exists, error logs are batched and shipped to the log topic.
func ProvideLogger(cfg *config.Config, events *internalrepo.KafkaCycleEvents) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	if events != nil && cfg.Kafka.LogTopic != "" {
		l.AddCollector(&applogger.CollectionConfig{
			TimeInterval:   time.Minute,
			CountThreshold: 100,
			Topic:          cfg.Kafka.LogTopic,
			Publisher:      events,
		})
	}
	return l, nil
}

// ProvideCache creates the key-value store: Redis when enabled, in-process
// memory otherwise.
func ProvideCache(cfg *config.Config) (pkgcache.Service, error) {
	if !cfg.Redis.Enabled {
		return pkgcache.NewMemoryCache(), nil
	}
	c, err := pkgcache.NewRedisCache(
		pkgcache.WithRedisHost(cfg.Redis.Host),
		pkgcache.WithRedisPort(cfg.Redis.Port),
		pkgcache.WithRedisPassword(cfg.Redis.Password),
		pkgcache.WithRedisDB(cfg.Redis.DB),
		pkgcache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return c, nil
}

// ProvideClickHouseClient creates a ClickHouse client, or nil when disabled.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	if !cfg.ClickHouse.Enabled {
		return nil, nil
	}
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithAsyncInsert(cfg.ClickHouse.AsyncInsert, cfg.ClickHouse.WaitForAsync),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout, cfg.ClickHouse.WriteTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, internalrepo.ArchiveSchema(cfg.ClickHouse.Database, "cycle_results")); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideKafkaProducer creates a Kafka producer, or nil when disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Enabled {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaEvents creates the Kafka event publisher, or nil when Kafka is
// disabled.
func ProvideKafkaEvents(producer *pkgkafka.Producer, cfg *config.Config) *internalrepo.KafkaCycleEvents {
	if producer == nil {
		return nil
	}
	return internalrepo.NewKafkaCycleEvents(producer, cfg.Kafka.Topic)
}

// ProvideCycleEvents exposes the event publisher behind the domain interface.
func ProvideCycleEvents(events *internalrepo.KafkaCycleEvents) repository.CycleEvents {
	if events == nil {
		return internalrepo.NoopEvents{}
	}
	return events
}

// ProvideResultArchive creates the completed-cycle archive.
func ProvideResultArchive(chClient *pkgch.Client, cfg *config.Config) repository.ResultArchive {
	if chClient == nil {
		return internalrepo.NoopArchive{}
	}
	return internalrepo.NewClickHouseArchive(chClient.DB(), cfg.ClickHouse.Database+".cycle_results")
}

// ProvideCycleStore creates the cycle store over the key-value service.
func ProvideCycleStore(c pkgcache.Service) repository.CycleStore {
	return internalrepo.NewCacheCycleStore(c)
}

// ProvideObservationStore creates the observation store.
func ProvideObservationStore(c pkgcache.Service) repository.ObservationStore {
	return internalrepo.NewCacheObservationStore(c)
}

// ProvideMarketClient creates the market data client.
func ProvideMarketClient(cfg *config.Config) *prices.Client {
	httpClient := pkghttp.NewClient(pkghttp.WithTimeout(cfg.Market.Timeout))
	opts := []prices.Option{prices.WithAPIKey(cfg.Market.APIKey)}
	if cfg.Market.RatePerSec > 0 {
		opts = append(opts, prices.WithRateLimit(cfg.Market.RatePerSec, cfg.Market.RateBurst))
	}
	return prices.New(httpClient, cfg.Market.BaseURL, opts...)
}

// ProvideMarketData exposes the market client as universe source.
func ProvideMarketData(c *prices.Client) repository.MarketData { return c }

// ProvidePriceLookup exposes the market client as price resolver.
func ProvidePriceLookup(c *prices.Client) repository.PriceLookup { return c }

// ProvideSignalsProvider creates the enrichment client, or nil when no
// upstream is configured.
func ProvideSignalsProvider(cfg *config.Config) repository.SignalsProvider {
	if cfg.Signals.BaseURL == "" {
		return nil
	}
	httpClient := pkghttp.NewClient(pkghttp.WithTimeout(cfg.Signals.Timeout))
	return signals.New(httpClient, cfg.Signals.BaseURL, svccache.NewTTLCache(), cfg.Signals.CacheTTL)
}

// ProvideScoringEngine creates the scoring engine.
func ProvideScoringEngine() *scoring.Engine {
	return scoring.NewEngine()
}

// ProvideCycleManager creates the cycle lifecycle manager.
func ProvideCycleManager(store repository.CycleStore, log *applogger.Logger, m repository.Metrics) *cycle.Manager {
	return cycle.NewManager(store, log, m)
}

// ProvideSnapshotRunner creates the snapshot use case.
func ProvideSnapshotRunner(
	market repository.MarketData,
	sig repository.SignalsProvider,
	engine *scoring.Engine,
	manager *cycle.Manager,
	c pkgcache.Service,
	m repository.Metrics,
	log *applogger.Logger,
	cfg *config.Config,
) *usecase.SnapshotRunner {
	return usecase.NewSnapshotRunner(
		market, sig, engine, manager, c, m, log,
		cfg.Scheduler.Mode,
		cfg.Scheduler.UniverseSize,
		cfg.Scheduler.CycleDuration,
	)
}

// ProvideCompletionRunner creates the completion use case.
func ProvideCompletionRunner(
	manager *cycle.Manager,
	lookup repository.PriceLookup,
	archive repository.ResultArchive,
	events repository.CycleEvents,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.CompletionRunner {
	return usecase.NewCompletionRunner(manager, lookup, archive, events, m, log)
}

// ProvideSimulator creates the counterfactual simulator.
func ProvideSimulator(log *applogger.Logger) *scenario.Simulator {
	return scenario.NewSimulator(log)
}

// ProvideScenarioRunner creates the scenario use case.
func ProvideScenarioRunner(
	manager *cycle.Manager,
	obs repository.ObservationStore,
	sim *scenario.Simulator,
	c pkgcache.Service,
	log *applogger.Logger,
) *usecase.ScenarioRunner {
	return usecase.NewScenarioRunner(manager, obs, sim, c, log)
}

// ProvideObservationCollector wires the live price feed, or nil when
// disabled.
func ProvideObservationCollector(
	cfg *config.Config,
	manager *cycle.Manager,
	obs repository.ObservationStore,
	m repository.Metrics,
	log *applogger.Logger,
) *usecase.ObservationCollector {
	if !cfg.PriceFeed.Enabled || cfg.PriceFeed.WebSocketURL == "" {
		return nil
	}
	stream := pricefeed.New(
		cfg.PriceFeed.APIKey,
		cfg.PriceFeed.WebSocketURL,
		cfg.PriceFeed.Assets,
		cfg.PriceFeed.ReconnectDelay,
		cfg.PriceFeed.PingInterval,
		log,
	)
	recorder := usecase.NewObservationRecorder(manager, obs, time.Minute)
	pipe := mid.NewObservationPipeline(recorder, m,
		mid.WithMinInterval(30*time.Second),
		mid.WithBufferSize(2000),
	)
	return usecase.NewObservationCollector(stream, pipe, m, log)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	log *applogger.Logger,
	snapshot *usecase.SnapshotRunner,
	completer *usecase.CompletionRunner,
	scenarios *usecase.ScenarioRunner,
	collector *usecase.ObservationCollector,
	c pkgcache.Service,
	chClient *pkgch.Client,
) *server.App {
	return server.New(cfg, log, snapshot, completer, scenarios, collector, c, chClient)
}
