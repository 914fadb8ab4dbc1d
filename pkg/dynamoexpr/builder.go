// Package dynamoexpr lowers a queryplan.QueryPlan into store-native
// KeyConditionExpression/FilterExpression/ConditionExpression strings using
// the AWS expression builder, which allocates "#n"/":n" style placeholders
// deterministically within a single Build() call: a repeated attribute
// name reuses its "#n" placeholder, and every literal value occurrence
// gets its own ":n" placeholder.
package dynamoexpr

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"

	"curity-identity-dap/domain/schema"
	"curity-identity-dap/pkg/queryplan"
	"curity-identity-dap/pkg/scimfilter"
)

// partitionKeyCondition builds the `#pk = :v` (or, for a GSI, `#partitionCol
// = :v`) key condition for group's KeyCondition, running the literal through
// UniquenessValueFrom when the index is a synthesized primary-key index.
func partitionKeyCondition(idx *schema.Index, literal any) (expression.KeyConditionBuilder, error) {
	column := idx.PhysicalPartitionColumn
	if idx.Kind == schema.IndexPrimaryKey {
		value, err := idx.PartitionAttr.UniquenessValueFrom(literal)
		if err != nil {
			return expression.KeyConditionBuilder{}, fmt.Errorf("dynamoexpr: %w", err)
		}
		return expression.Key(column).Equal(expression.Value(value)), nil
	}
	return expression.Key(column).Equal(expression.Value(literal)), nil
}

// sortKeyCondition builds the range condition on an index's sort column.
func sortKeyCondition(idx *schema.Index, sort *queryplan.SortCondition) (expression.KeyConditionBuilder, error) {
	column := idx.PhysicalSortColumn
	switch sort.Op {
	case scimfilter.Eq:
		return expression.Key(column).Equal(expression.Value(sort.Value)), nil
	case scimfilter.Lt:
		return expression.Key(column).LessThan(expression.Value(sort.Value)), nil
	case scimfilter.Le:
		return expression.Key(column).LessThanEqual(expression.Value(sort.Value)), nil
	case scimfilter.Gt:
		return expression.Key(column).GreaterThan(expression.Value(sort.Value)), nil
	case scimfilter.Ge:
		return expression.Key(column).GreaterThanEqual(expression.Value(sort.Value)), nil
	case scimfilter.StartsWith:
		return expression.Key(column).BeginsWith(fmt.Sprintf("%v", sort.Value)), nil
	case scimfilter.Between:
		return expression.Key(column).Between(expression.Value(sort.Value), expression.Value(sort.High)), nil
	default:
		return expression.KeyConditionBuilder{}, fmt.Errorf("dynamoexpr: operator %q is not a valid sort-key condition", sort.Op)
	}
}

// termCondition lowers one residual term to a filter-expression condition
// over its resolved attribute's physical column.
func termCondition(attr *schema.AttributeDescriptor, term scimfilter.Term) (expression.ConditionBuilder, error) {
	name := expression.Name(attr.Name)
	switch term.Op {
	case scimfilter.Eq:
		return name.Equal(expression.Value(term.Value)), nil
	case scimfilter.Ne:
		return name.NotEqual(expression.Value(term.Value)), nil
	case scimfilter.Lt:
		return name.LessThan(expression.Value(term.Value)), nil
	case scimfilter.Le:
		return name.LessThanEqual(expression.Value(term.Value)), nil
	case scimfilter.Gt:
		return name.GreaterThan(expression.Value(term.Value)), nil
	case scimfilter.Ge:
		return name.GreaterThanEqual(expression.Value(term.Value)), nil
	case scimfilter.StartsWith:
		s, ok := term.Value.(string)
		if !ok {
			return expression.ConditionBuilder{}, fmt.Errorf("dynamoexpr: startsWith requires a string literal for %q", attr.Name)
		}
		return name.BeginsWith(s), nil
	case scimfilter.Exists:
		return expression.AttributeExists(name), nil
	case scimfilter.NotExists:
		return expression.AttributeNotExists(name), nil
	case scimfilter.Between:
		return name.Between(expression.Value(term.Value), expression.Value(term.High)), nil
	default:
		return expression.ConditionBuilder{}, fmt.Errorf("dynamoexpr: unsupported filter operator %q", term.Op)
	}
}

// productCondition AND-s every residual term in product into one condition.
// An empty product (the whole KeyCondition was consumed by the partition and
// sort terms, nothing residual) has no representable condition.
func productCondition(table *schema.TableDescriptor, product scimfilter.Product) (expression.ConditionBuilder, bool, error) {
	var cond expression.ConditionBuilder
	first := true
	for _, term := range product {
		attr, ok := table.Resolve(term.Attr)
		if !ok {
			return expression.ConditionBuilder{}, false, fmt.Errorf("dynamoexpr: unresolved attribute %q", term.Attr)
		}
		c, err := termCondition(attr, term)
		if err != nil {
			return expression.ConditionBuilder{}, false, err
		}
		if first {
			cond = c
			first = false
			continue
		}
		cond = cond.And(c)
	}
	return cond, !first, nil
}

// dnfCondition OR-s every product's condition together, skipping empty
// products. Returns ok=false when the whole DNF carries no residual terms.
func dnfCondition(table *schema.TableDescriptor, dnf scimfilter.DNF) (expression.ConditionBuilder, bool, error) {
	var cond expression.ConditionBuilder
	first := true
	for _, product := range dnf {
		c, has, err := productCondition(table, product)
		if err != nil {
			return expression.ConditionBuilder{}, false, err
		}
		if !has {
			continue
		}
		if first {
			cond = c
			first = false
			continue
		}
		cond = cond.Or(c)
	}
	return cond, !first, nil
}
