package persistence

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"curity-identity-dap/domain/schema"
)

// notExistsCondition is the precondition every fan-out create Put carries:
// the fan-out slot for this pk must not already be occupied.
func notExistsCondition() expression.ConditionBuilder {
	return expression.AttributeNotExists(expression.Name("pk"))
}

// versionCondition is the optimistic-concurrency precondition every
// update/delete/patch write that replaces or removes an existing item
// carries (newly added secondary items carry notExistsCondition instead):
// the item must still be at the version this operation observed, owned by
// the same account.
func versionCondition(observedVersion int, accountID string) expression.ConditionBuilder {
	return expression.Name("version").Equal(expression.Value(float64(observedVersion))).
		And(expression.Name("accountId").Equal(expression.Value(accountID)))
}

func buildPutItem(table *schema.TableDescriptor, item accountItem, condition expression.ConditionBuilder) (types.TransactWriteItem, error) {
	av, err := marshalAccountItem(item)
	if err != nil {
		return types.TransactWriteItem{}, err
	}
	expr, err := expression.NewBuilder().WithCondition(condition).Build()
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("persistence: building put condition: %w", err)
	}
	return types.TransactWriteItem{
		Put: &types.Put{
			TableName:                 aws.String(table.PhysicalName),
			Item:                      av,
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		},
	}, nil
}

func buildDeleteItem(table *schema.TableDescriptor, pk string, condition expression.ConditionBuilder) (types.TransactWriteItem, error) {
	expr, err := expression.NewBuilder().WithCondition(condition).Build()
	if err != nil {
		return types.TransactWriteItem{}, fmt.Errorf("persistence: building delete condition: %w", err)
	}
	return types.TransactWriteItem{
		Delete: &types.Delete{
			TableName:                 aws.String(table.PhysicalName),
			Key:                       map[string]types.AttributeValue{"pk": &types.AttributeValueMemberS{Value: pk}},
			ConditionExpression:       expr.Condition(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
		},
	}, nil
}
