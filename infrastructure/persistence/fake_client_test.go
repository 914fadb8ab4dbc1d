package persistence

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	apperrors "curity-identity-dap/pkg/errors"
)

// fakeClient is an in-memory store.Client used by this package's tests. It
// understands exactly the two condition shapes this persistence layer ever
// emits (attribute_not_exists(#name) and an AND of "#name = :value" equality
// clauses), which is enough to exercise create/update/patch/delete/getAll
// without a real DynamoDB. It stands in for a store.Client that has already
// been through store.TracingClient's error translation, so condition
// failures surface as apperrors.Conflict directly rather than as the raw
// AWS exception types translateError maps from (see store/errors_test.go
// for coverage of that translation itself).
type fakeClient struct {
	items map[string]map[string]types.AttributeValue
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: map[string]map[string]types.AttributeValue{}}
}

func (f *fakeClient) pkOf(item map[string]types.AttributeValue) string {
	s, _ := item["pk"].(*types.AttributeValueMemberS)
	if s == nil {
		return ""
	}
	return s.Value
}

func (f *fakeClient) GetItem(ctx context.Context, input *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
	pk := f.pkOf(input.Key)
	item, ok := f.items[pk]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: cloneItem(item)}, nil
}

func (f *fakeClient) PutItem(ctx context.Context, input *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
	pk := f.pkOf(input.Item)
	if input.ConditionExpression != nil {
		if err := f.evalCondition(*input.ConditionExpression, input.ExpressionAttributeNames, input.ExpressionAttributeValues, pk); err != nil {
			return nil, err
		}
	}
	f.items[pk] = cloneItem(input.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeClient) DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
	pk := f.pkOf(input.Key)
	if input.ConditionExpression != nil {
		if err := f.evalCondition(*input.ConditionExpression, input.ExpressionAttributeNames, input.ExpressionAttributeValues, pk); err != nil {
			return nil, err
		}
	}
	delete(f.items, pk)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeClient) UpdateItem(ctx context.Context, input *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
	return nil, fmt.Errorf("fakeClient: UpdateItem not used by this persistence layer")
}

func (f *fakeClient) Query(ctx context.Context, input *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
	var out []map[string]types.AttributeValue
	prefix := extractPartitionEquality(input.ExpressionAttributeValues)
	for pk, item := range f.items {
		if prefix != "" && pk != prefix {
			continue
		}
		out = append(out, cloneItem(item))
	}
	return &dynamodb.QueryOutput{Items: out}, nil
}

func (f *fakeClient) Scan(ctx context.Context, input *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
	var out []map[string]types.AttributeValue
	for _, item := range f.items {
		out = append(out, cloneItem(item))
	}
	return &dynamodb.ScanOutput{Items: out}, nil
}

func (f *fakeClient) TransactWriteItems(ctx context.Context, input *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
	// Validate every condition against current state before mutating
	// anything, matching DynamoDB's all-or-nothing transaction semantics.
	for _, tw := range input.TransactItems {
		switch {
		case tw.Put != nil:
			pk := f.pkOf(tw.Put.Item)
			if tw.Put.ConditionExpression != nil {
				if err := f.evalCondition(*tw.Put.ConditionExpression, tw.Put.ExpressionAttributeNames, tw.Put.ExpressionAttributeValues, pk); err != nil {
					return nil, err
				}
			}
		case tw.Delete != nil:
			pk := f.pkOf(tw.Delete.Key)
			if tw.Delete.ConditionExpression != nil {
				if err := f.evalCondition(*tw.Delete.ConditionExpression, tw.Delete.ExpressionAttributeNames, tw.Delete.ExpressionAttributeValues, pk); err != nil {
					return nil, err
				}
			}
		}
	}
	for _, tw := range input.TransactItems {
		switch {
		case tw.Put != nil:
			f.items[f.pkOf(tw.Put.Item)] = cloneItem(tw.Put.Item)
		case tw.Delete != nil:
			delete(f.items, f.pkOf(tw.Delete.Key))
		}
	}
	return &dynamodb.TransactWriteItemsOutput{}, nil
}

var equalityClause = regexp.MustCompile(`(#\w+) = (:\w+)`)

// evalCondition interprets exactly the shapes notExistsCondition and
// versionCondition produce.
func (f *fakeClient) evalCondition(expr string, names map[string]string, values map[string]types.AttributeValue, pk string) error {
	if strings.HasPrefix(expr, "attribute_not_exists") {
		if _, exists := f.items[pk]; exists {
			return apperrors.Conflict("uniqueness check failed")
		}
		return nil
	}
	existing, exists := f.items[pk]
	if !exists {
		return apperrors.Conflict("unable to update")
	}
	for _, clause := range equalityClause.FindAllStringSubmatch(expr, -1) {
		attrName := names[clause[1]]
		wanted := values[clause[2]]
		if !attributeValuesEqual(existing[attrName], wanted) {
			return apperrors.Conflict("unable to update")
		}
	}
	return nil
}

func extractPartitionEquality(values map[string]types.AttributeValue) string {
	for _, v := range values {
		if s, ok := v.(*types.AttributeValueMemberS); ok {
			return s.Value
		}
	}
	return ""
}

func attributeValuesEqual(a, b types.AttributeValue) bool {
	as, aok := a.(*types.AttributeValueMemberS)
	bs, bok := b.(*types.AttributeValueMemberS)
	if aok && bok {
		return as.Value == bs.Value
	}
	an, aok := a.(*types.AttributeValueMemberN)
	bn, bok := b.(*types.AttributeValueMemberN)
	if aok && bok {
		return an.Value == bn.Value
	}
	return false
}

func cloneItem(item map[string]types.AttributeValue) map[string]types.AttributeValue {
	out := make(map[string]types.AttributeValue, len(item))
	for k, v := range item {
		out[k] = v
	}
	return out
}
