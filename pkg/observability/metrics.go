package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metrics publishes this DAP's operation counters and latencies to
// CloudWatch.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
	logger    *zap.Logger
}

// NewMetrics creates a Metrics instance publishing under namespace. A nil
// client is valid and turns every method into a no-op.
func NewMetrics(namespace string, client *cloudwatch.Client, logger *zap.Logger) *Metrics {
	return &Metrics{namespace: namespace, client: client, logger: logger}
}

// RecordOperationLatency records how long one store-facing AccountStore or
// LinkStore method took.
func (m *Metrics) RecordOperationLatency(ctx context.Context, operation string, latency time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.put(ctx, types.MetricDatum{
		MetricName: aws.String("OperationLatency"),
		Dimensions: []types.Dimension{
			{Name: aws.String("Operation"), Value: aws.String(operation)},
			{Name: aws.String("Status"), Value: aws.String(status)},
		},
		Value:     aws.Float64(float64(latency.Milliseconds())),
		Unit:      types.StandardUnitMilliseconds,
		Timestamp: aws.Time(time.Now()),
	})
}

// RecordRetryExhausted counts a RetryLoop giving up after its full attempt
// budget on operation, surfacing the last Conflict to the caller.
func (m *Metrics) RecordRetryExhausted(ctx context.Context, operation string) {
	m.put(ctx, types.MetricDatum{
		MetricName: aws.String("RetryExhausted"),
		Dimensions: []types.Dimension{{Name: aws.String("Operation"), Value: aws.String(operation)}},
		Value:      aws.Float64(1),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(time.Now()),
	})
}

// RecordScanFallback counts a getAll call whose plan came back as
// UsingScan rather than a bounded set of indexed queries.
func (m *Metrics) RecordScanFallback(ctx context.Context, table string) {
	m.put(ctx, types.MetricDatum{
		MetricName: aws.String("ScanFallback"),
		Dimensions: []types.Dimension{{Name: aws.String("Table"), Value: aws.String(table)}},
		Value:      aws.Float64(1),
		Unit:       types.StandardUnitCount,
		Timestamp:  aws.Time(time.Now()),
	})
}

func (m *Metrics) put(ctx context.Context, datum types.MetricDatum) {
	if m.client == nil {
		return
	}
	input := &cloudwatch.PutMetricDataInput{Namespace: aws.String(m.namespace), MetricData: []types.MetricDatum{datum}}
	if _, err := m.client.PutMetricData(ctx, input); err != nil && m.logger != nil {
		m.logger.Warn("failed to publish metric", zap.String("metric", aws.ToString(datum.MetricName)), zap.Error(err))
	}
}
