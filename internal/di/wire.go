//go:build wireinject
// +build wireinject

package di

import (
	"RoastGate/pkg/config"
	"RoastGate/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Upstream forwarding
		ProvideUpstreamClient,
		ProvideForwarder,

		// Analytics
		ProvideEventSink,
		ProvideSnapshotSource,
		ProvideIngestor,

		// HTTP surface
		ProvideHandler,

		// Application server
		ProvideApp,
	)
	return &server.App{}, nil
}
