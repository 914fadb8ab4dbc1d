package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"curity-identity-dap/pkg/observability"
)

// TracingClient wraps a *dynamodb.Client, running every round-trip inside
// an X-Ray subsegment named after the operation and translating AWS
// conditional-check/transaction-cancellation errors to Conflict.
type TracingClient struct {
	inner  *dynamodb.Client
	tracer *observability.Tracer
}

// NewTracingClient builds a Client backed by client, tracing every call
// through tracer.
func NewTracingClient(client *dynamodb.Client, tracer *observability.Tracer) *TracingClient {
	return &TracingClient{inner: client, tracer: tracer}
}

func (c *TracingClient) GetItem(ctx context.Context, input *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
	var out *dynamodb.GetItemOutput
	err := c.tracer.TraceFunction(ctx, "store.GetItem", func(ctx context.Context) error {
		var innerErr error
		out, innerErr = c.inner.GetItem(ctx, input)
		return innerErr
	})
	return out, translateError(err, "unable to read item")
}

func (c *TracingClient) Query(ctx context.Context, input *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
	var out *dynamodb.QueryOutput
	err := c.tracer.TraceFunction(ctx, "store.Query", func(ctx context.Context) error {
		var innerErr error
		out, innerErr = c.inner.Query(ctx, input)
		return innerErr
	})
	return out, translateError(err, "query failed")
}

func (c *TracingClient) Scan(ctx context.Context, input *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
	var out *dynamodb.ScanOutput
	err := c.tracer.TraceFunction(ctx, "store.Scan", func(ctx context.Context) error {
		var innerErr error
		out, innerErr = c.inner.Scan(ctx, input)
		return innerErr
	})
	return out, translateError(err, "scan failed")
}

func (c *TracingClient) PutItem(ctx context.Context, input *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
	var out *dynamodb.PutItemOutput
	err := c.tracer.TraceFunction(ctx, "store.PutItem", func(ctx context.Context) error {
		var innerErr error
		out, innerErr = c.inner.PutItem(ctx, input)
		return innerErr
	})
	return out, translateError(err, "uniqueness check failed")
}

func (c *TracingClient) DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
	var out *dynamodb.DeleteItemOutput
	err := c.tracer.TraceFunction(ctx, "store.DeleteItem", func(ctx context.Context) error {
		var innerErr error
		out, innerErr = c.inner.DeleteItem(ctx, input)
		return innerErr
	})
	return out, translateError(err, "unable to delete")
}

func (c *TracingClient) UpdateItem(ctx context.Context, input *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
	var out *dynamodb.UpdateItemOutput
	err := c.tracer.TraceFunction(ctx, "store.UpdateItem", func(ctx context.Context) error {
		var innerErr error
		out, innerErr = c.inner.UpdateItem(ctx, input)
		return innerErr
	})
	return out, translateError(err, "update failed")
}

func (c *TracingClient) TransactWriteItems(ctx context.Context, input *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
	var out *dynamodb.TransactWriteItemsOutput
	err := c.tracer.TraceFunction(ctx, "store.TransactWriteItems", func(ctx context.Context) error {
		var innerErr error
		out, innerErr = c.inner.TransactWriteItems(ctx, input)
		return innerErr
	})
	return out, translateError(err, "uniqueness check failed")
}
