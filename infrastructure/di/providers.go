// Package di wires this data access layer's stores: one provider function
// per dependency, assembled by wire into a Container a caller constructs
// once at startup.
package di

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awscloudwatch "github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	"curity-identity-dap/infrastructure/config"
	"curity-identity-dap/infrastructure/events"
	"curity-identity-dap/infrastructure/persistence"
	"curity-identity-dap/infrastructure/store"
	"curity-identity-dap/pkg/observability"
)

// ProvideLogger creates a new logger instance, picking zap's production or
// development preset from cfg.Environment.
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig loads the AWS SDK's default configuration for cfg.AWSRegion.
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
}

// ProvideDynamoDBClient creates the underlying DynamoDB client.
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates the EventBridge client used to publish
// domain events.
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideCloudWatchClient creates the CloudWatch client used to emit
// operation metrics.
func ProvideCloudWatchClient(awsCfg aws.Config) *awscloudwatch.Client {
	return awscloudwatch.NewFromConfig(awsCfg)
}

// ProvideTracer builds the X-Ray tracer every store.Client call runs
// through.
func ProvideTracer(cfg *config.Config) *observability.Tracer {
	return observability.NewTracer(fmt.Sprintf("curity-identity-dap-%s", cfg.Environment))
}

// ProvideMetrics builds the CloudWatch metrics recorder, namespaced per
// environment.
func ProvideMetrics(client *awscloudwatch.Client, cfg *config.Config) *observability.Metrics {
	namespace := fmt.Sprintf("CurityIdentityDAP/%s", cfg.Environment)
	return observability.NewMetrics(namespace, client, nil)
}

// ProvideStoreClient wraps the raw DynamoDB client with tracing and AWS
// error translation, the only client the persistence layer ever sees.
func ProvideStoreClient(client *awsdynamodb.Client, tracer *observability.Tracer) store.Client {
	return store.NewTracingClient(client, tracer)
}

// ProvideEventPublisher builds the EventBridge-backed domain event publisher.
func ProvideEventPublisher(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) events.Publisher {
	return events.NewEventBridgePublisher(client, cfg.EventBusName, logger)
}

// ProvideAccountStore builds the account fan-out store.
func ProvideAccountStore(client store.Client, publisher events.Publisher, metrics *observability.Metrics, logger *zap.Logger, cfg *config.Config) *persistence.AccountStore {
	return persistence.NewAccountStore(client, publisher, metrics, logger, cfg.RetryMaxAttempts, cfg.AllowTableScans, cfg.MaxQueries, cfg.AccountsTableName)
}

// ProvideLinkStore builds the account-linking store.
func ProvideLinkStore(client store.Client, logger *zap.Logger, cfg *config.Config) *persistence.LinkStore {
	return persistence.NewLinkStore(client, logger, cfg.LinksTableName)
}
