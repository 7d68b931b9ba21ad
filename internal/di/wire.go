//go:build wireinject
// +build wireinject

package di

import (
	"BoostPull/pkg/config"
	"BoostPull/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		// Metrics
		ProvideMetrics,

		// Infrastructure clients
		ProvideCache,
		ProvideClickHouseClient,
		ProvideKafkaProducer,
		ProvideKafkaEvents,
		ProvideLogger,

		// Repositories
		ProvideCycleStore,
		ProvideObservationStore,
		ProvideResultArchive,
		ProvideCycleEvents,
		ProvideMarketClient,
		ProvideMarketData,
		ProvidePriceLookup,
		ProvideSignalsProvider,

		// Core services
		ProvideScoringEngine,
		ProvideCycleManager,
		ProvideSimulator,

		// Use cases
		ProvideSnapshotRunner,
		ProvideCompletionRunner,
		ProvideScenarioRunner,
		ProvideObservationCollector,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
