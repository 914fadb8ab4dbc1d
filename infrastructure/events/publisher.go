// Package events publishes account lifecycle events to EventBridge.
// Publication is strictly best-effort: it runs after a mutation has
// already committed, and a publish failure is logged and swallowed rather
// than surfaced to the caller, since this DAP does not implement a
// durable outbox.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"

	"curity-identity-dap/domain/account"
)

// Source is the EventBridge event source this DAP publishes under.
const Source = "curity-identity-dap"

// Publisher is the port AccountStore hands committed domain events to.
type Publisher interface {
	Publish(ctx context.Context, event account.DomainEvent)
}

// EventBridgePublisher publishes account domain events to an EventBridge bus.
type EventBridgePublisher struct {
	client       *eventbridge.Client
	eventBusName string
	logger       *zap.Logger
}

// NewEventBridgePublisher builds a Publisher backed by client, publishing
// onto eventBusName.
func NewEventBridgePublisher(client *eventbridge.Client, eventBusName string, logger *zap.Logger) *EventBridgePublisher {
	return &EventBridgePublisher{client: client, eventBusName: eventBusName, logger: logger}
}

// Publish sends event to EventBridge. Failures are logged, never returned:
// callers invoke this after their own transaction has already committed,
// so there is nothing left to roll back.
func (p *EventBridgePublisher) Publish(ctx context.Context, event account.DomainEvent) {
	if err := p.publish(ctx, event); err != nil {
		p.logger.Warn("failed to publish account event",
			zap.String("eventType", event.GetEventType()),
			zap.String("accountId", event.GetAggregateID()),
			zap.Error(err),
		)
	}
}

func (p *EventBridgePublisher) publish(ctx context.Context, event account.DomainEvent) error {
	detail, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshaling event detail: %w", err)
	}

	entry := types.PutEventsRequestEntry{
		EventBusName: aws.String(p.eventBusName),
		Source:       aws.String(Source),
		DetailType:   aws.String(event.GetEventType()),
		Detail:       aws.String(string(detail)),
		Time:         aws.Time(event.GetTimestamp()),
		Resources:    []string{fmt.Sprintf("arn:aws:curity-identity-dap::account/%s", event.GetAggregateID())},
	}

	out, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: []types.PutEventsRequestEntry{entry}})
	if err != nil {
		return fmt.Errorf("publishing to EventBridge: %w", err)
	}
	if out.FailedEntryCount > 0 && len(out.Entries) > 0 {
		return fmt.Errorf("eventbridge rejected entry: %s", aws.ToString(out.Entries[0].ErrorMessage))
	}
	return nil
}

// NoopPublisher discards every event; used in tests and any deployment
// that has not wired an event bus.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, account.DomainEvent) {}
