//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"
	"go.uber.org/zap"

	"curity-identity-dap/infrastructure/config"
	"curity-identity-dap/infrastructure/events"
	"curity-identity-dap/infrastructure/persistence"
	"curity-identity-dap/infrastructure/store"
	"curity-identity-dap/pkg/observability"
)

// Container holds every dependency a caller needs to exercise the account
// and link stores: the wired stores themselves, plus the ambient
// logger/tracer/metrics/publisher they were built from.
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	Tracer         *observability.Tracer
	Metrics        *observability.Metrics
	EventPublisher events.Publisher
	StoreClient    store.Client
	AccountStore   *persistence.AccountStore
	LinkStore      *persistence.LinkStore
}

// SuperSet is the provider set wire.Build assembles a Container from.
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideCloudWatchClient,
	ProvideTracer,
	ProvideMetrics,
	ProvideStoreClient,
	ProvideEventPublisher,
	ProvideAccountStore,
	ProvideLinkStore,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired Container for cfg.
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // wire replaces this body at generation time
}
