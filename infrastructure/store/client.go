// Package store defines the narrow provider contract the persistence layer
// depends on: GetItem, Query, Scan, PutItem, DeleteItem, UpdateItem,
// and TransactWriteItems, plus the concrete DynamoDB adapter that
// implements it with X-Ray tracing and AWS-error translation.
package store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Client is the store operations every persistence-layer store is built
// against. It shares *dynamodb.Client's input/output shapes but not its
// variadic option parameters, so *dynamodb.Client does not satisfy it
// directly; production code goes through TracingClient, which gives every
// round-trip an X-Ray subsegment and translates AWS errors to this
// module's error taxonomy.
type Client interface {
	GetItem(ctx context.Context, input *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error)
	Query(ctx context.Context, input *dynamodb.QueryInput) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, input *dynamodb.ScanInput) (*dynamodb.ScanOutput, error)
	PutItem(ctx context.Context, input *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, input *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error)
	TransactWriteItems(ctx context.Context, input *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error)
}
