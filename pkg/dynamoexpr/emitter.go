package dynamoexpr

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"curity-identity-dap/domain/schema"
	"curity-identity-dap/pkg/queryplan"
	"curity-identity-dap/pkg/scimfilter"
)

// Emitter lowers query plans into store-native input structs. It carries no
// state; every method is a pure translation.
type Emitter struct{}

// EmitQuery builds the QueryInput for one QueryGroup: an equality key
// condition on the group's index (through the uniqueness transform for
// synthesized primary-key indexes), an optional sort-key range, and a
// FilterExpression covering the group's residual products OR-ed together.
func (Emitter) EmitQuery(table *schema.TableDescriptor, group queryplan.QueryGroup) (*dynamodb.QueryInput, error) {
	idx := group.Key.Index
	keyCond, err := partitionKeyCondition(idx, group.Key.PartitionValue)
	if err != nil {
		return nil, err
	}
	if group.Key.Sort != nil {
		sortCond, err := sortKeyCondition(idx, group.Key.Sort)
		if err != nil {
			return nil, err
		}
		keyCond = keyCond.And(sortCond)
	}

	builder := expression.NewBuilder().WithKeyCondition(keyCond)
	filterCond, hasFilter, err := dnfCondition(table, group.Residuals)
	if err != nil {
		return nil, err
	}
	if hasFilter {
		builder = builder.WithFilter(filterCond)
	}

	expr, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("dynamoexpr: building query expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(table.PhysicalName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		ConsistentRead:            aws.Bool(group.Key.ConsistentRead),
	}
	if idx.Name != "" {
		input.IndexName = aws.String(idx.Name)
	}
	if hasFilter {
		input.FilterExpression = expr.Filter()
	}
	return input, nil
}

// EmitScan builds the ScanInput covering the whole DNF as a FilterExpression.
// extra, when non-nil, is AND-ed onto the filter (e.g. the accounts table's
// begins_with(pk, "ai#") exclusion of secondary fan-out items).
func (Emitter) EmitScan(table *schema.TableDescriptor, dnf scimfilter.DNF, extra *expression.ConditionBuilder) (*dynamodb.ScanInput, error) {
	filterCond, hasFilter, err := dnfCondition(table, dnf)
	if err != nil {
		return nil, err
	}
	if extra != nil {
		if hasFilter {
			filterCond = filterCond.And(*extra)
		} else {
			filterCond = *extra
			hasFilter = true
		}
	}

	input := &dynamodb.ScanInput{TableName: aws.String(table.PhysicalName)}
	if !hasFilter {
		return input, nil
	}

	expr, err := expression.NewBuilder().WithFilter(filterCond).Build()
	if err != nil {
		return nil, fmt.Errorf("dynamoexpr: building scan expression: %w", err)
	}
	input.FilterExpression = expr.Filter()
	input.ExpressionAttributeNames = expr.Names()
	input.ExpressionAttributeValues = expr.Values()
	return input, nil
}
