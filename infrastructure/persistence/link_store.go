package persistence

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"curity-identity-dap/domain/link"
	"curity-identity-dap/domain/schema"
	"curity-identity-dap/infrastructure/store"
	apperrors "curity-identity-dap/pkg/errors"
	"curity-identity-dap/pkg/pagination"
)

// linkItem is the physical shape of one curity-links row.
type linkItem struct {
	PK                      string `dynamodbav:"pk"`
	LinkedAccountID         string `dynamodbav:"linkedAccountId"`
	LinkedAccountDomainName string `dynamodbav:"linkedAccountDomainName"`
	LocalAccountID          string `dynamodbav:"localAccountId"`
	LinkingAccountManager   string `dynamodbav:"linkingAccountManager"`
	Created                 int64  `dynamodbav:"created"`
}

func toLinkAttributes(item linkItem) link.Attributes {
	return link.Attributes{
		LinkedAccountID:         item.LinkedAccountID,
		LinkedAccountDomainName: item.LinkedAccountDomainName,
		LocalAccountID:          item.LocalAccountID,
		LinkingAccountManager:   item.LinkingAccountManager,
		Created:                 item.Created,
	}
}

func fromLinkAttributes(attrs link.Attributes) linkItem {
	return linkItem{
		PK:                      schema.LinkPKValue(attrs.LinkedAccountID, attrs.LinkedAccountDomainName),
		LinkedAccountID:         attrs.LinkedAccountID,
		LinkedAccountDomainName: attrs.LinkedAccountDomainName,
		LocalAccountID:          attrs.LocalAccountID,
		LinkingAccountManager:   attrs.LinkingAccountManager,
		Created:                 attrs.Created,
	}
}

// LinkStore implements the single-item account-linking pattern: no
// fan-out, no version, a plain conditional put keyed by the linked
// account's identity, and a GSI query for listLinks.
type LinkStore struct {
	client store.Client
	table  *schema.TableDescriptor
	logger *zap.Logger
	now    func() time.Time
}

// NewLinkStore builds a LinkStore over client. A nil logger defaults to a
// no-op logger. tableName overrides the links table's physical name for
// every store call this LinkStore makes; empty keeps schema.LinksTableName.
func NewLinkStore(client store.Client, logger *zap.Logger, tableName string) *LinkStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	table := schema.LinksTable
	if tableName != "" && tableName != table.PhysicalName {
		named := *table
		named.PhysicalName = tableName
		table = &named
	}
	return &LinkStore{client: client, table: table, logger: logger, now: time.Now}
}

// CreateLink persists a new link, failing with a conflict if one already
// exists for the same linkedAccountId@linkedAccountDomainName.
func (s *LinkStore) CreateLink(ctx context.Context, localAccountID, linkingAccountManager, linkedAccountID, linkedAccountDomainName string) (link.Attributes, error) {
	attrs := link.Attributes{
		LinkedAccountID:         linkedAccountID,
		LinkedAccountDomainName: linkedAccountDomainName,
		LocalAccountID:          localAccountID,
		LinkingAccountManager:   linkingAccountManager,
		Created:                 s.now().Unix(),
	}
	item := fromLinkAttributes(attrs)
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return link.Attributes{}, apperrors.NewInternal("marshaling link item", err)
	}
	condition := expression.AttributeNotExists(expression.Name("pk"))
	expr, err := expression.NewBuilder().WithCondition(condition).Build()
	if err != nil {
		return link.Attributes{}, apperrors.NewInternal("building link condition", err)
	}
	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(s.table.PhysicalName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			s.logger.Warn("link creation conflicted",
				zap.String("linkedAccountId", linkedAccountID), zap.String("linkedAccountDomainName", linkedAccountDomainName))
		} else {
			s.logger.Error("link creation failed",
				zap.String("linkedAccountId", linkedAccountID), zap.String("linkedAccountDomainName", linkedAccountDomainName), zap.Error(err))
		}
		return link.Attributes{}, err
	}
	s.logger.Debug("link created",
		zap.String("localAccountId", localAccountID), zap.String("linkedAccountId", linkedAccountID))
	return attrs, nil
}

// GetLink performs a strongly-consistent lookup of a single link.
func (s *LinkStore) GetLink(ctx context.Context, linkedAccountID, linkedAccountDomainName string) (*link.Attributes, error) {
	pk := schema.LinkPKValue(linkedAccountID, linkedAccountDomainName)
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table.PhysicalName),
		Key:            map[string]types.AttributeValue{"pk": &types.AttributeValueMemberS{Value: pk}},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	if len(out.Item) == 0 {
		return nil, nil
	}
	var item linkItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, apperrors.NewSchema("malformed link item: " + err.Error())
	}
	attrs := toLinkAttributes(item)
	return &attrs, nil
}

// DeleteLink removes a link unconditionally; deleting an absent link succeeds.
func (s *LinkStore) DeleteLink(ctx context.Context, linkedAccountID, linkedAccountDomainName string) error {
	pk := schema.LinkPKValue(linkedAccountID, linkedAccountDomainName)
	_, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table.PhysicalName),
		Key:       map[string]types.AttributeValue{"pk": &types.AttributeValueMemberS{Value: pk}},
	})
	if err != nil {
		s.logger.Error("link deletion failed",
			zap.String("linkedAccountId", linkedAccountID), zap.String("linkedAccountDomainName", linkedAccountDomainName), zap.Error(err))
		return err
	}
	s.logger.Debug("link deleted",
		zap.String("linkedAccountId", linkedAccountID), zap.String("linkedAccountDomainName", linkedAccountDomainName))
	return nil
}

// ListLinks queries the list-links-index for every link owned by
// localAccountID, optionally narrowed to a single linkingAccountManager.
func (s *LinkStore) ListLinks(ctx context.Context, localAccountID string, linkingAccountManager string) ([]link.Attributes, error) {
	keyCond := expression.Key(schema.LocalAccountID.Name).Equal(expression.Value(localAccountID))
	if linkingAccountManager != "" {
		keyCond = keyCond.And(expression.Key(schema.LinkingAccountManager.Name).Equal(expression.Value(linkingAccountManager)))
	}
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, apperrors.NewInternal("building listLinks expression", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(s.table.PhysicalName),
		IndexName:                 aws.String(schema.ListLinksIndexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}
	seq := pagination.New(func(ctx context.Context, exclusiveStartKey map[string]types.AttributeValue) (pagination.Page, error) {
		input.ExclusiveStartKey = exclusiveStartKey
		out, err := s.client.Query(ctx, input)
		if err != nil {
			return pagination.Page{}, err
		}
		return pagination.Page{Items: out.Items, LastEvaluatedKey: out.LastEvaluatedKey}, nil
	})
	rawItems, err := pagination.Drain(ctx, seq)
	if err != nil {
		return nil, err
	}

	results := make([]link.Attributes, 0, len(rawItems))
	for _, av := range rawItems {
		var item linkItem
		if err := attributevalue.UnmarshalMap(av, &item); err != nil {
			return nil, apperrors.NewSchema("malformed link item: " + err.Error())
		}
		results = append(results, toLinkAttributes(item))
	}
	return results, nil
}
