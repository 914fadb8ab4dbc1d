// Package queryplan implements the planner that turns a SCIM filter tree
// into a cost-aware execution plan against a schema.TableDescriptor: either
// a bounded set of indexed Query operations, or a full Scan when no index
// can serve the filter.
package queryplan

import (
	"curity-identity-dap/domain/schema"
	"curity-identity-dap/pkg/scimfilter"
)

// MaxQueries bounds the number of distinct store-side queries a single plan
// may issue. Exceeding it fails the plan outright rather than fan out
// unboundedly against the store.
const MaxQueries = 8

// SortCondition is an optional range condition on an index's sort attribute.
// High only holds a value when Op is Between, the upper bound of the range.
type SortCondition struct {
	Op    scimfilter.Operator
	Value any
	High  any
}

// KeyCondition names one store-side Query: which index, what partition
// literal, and (optionally) what sort-key range.
type KeyCondition struct {
	Index             *schema.Index
	PartitionValue    any
	Sort              *SortCondition
	ConsistentRead    bool
}

// QueryGroup is one KeyCondition together with the residual products that
// must still be evaluated in-process against items it returns.
type QueryGroup struct {
	Key       KeyCondition
	Residuals scimfilter.DNF
}

// QueryPlan is the sum type the planner produces: either a bounded list of
// indexed queries, or a full table scan.
type QueryPlan interface {
	isQueryPlan()
}

// UsingQueries is a plan that issues one store-side Query per group, in
// stable insertion order, post-filtering each group's results with
// filterWith(group.Residuals, item).
type UsingQueries struct {
	Queries []QueryGroup
}

// UsingScan is a plan that issues a full table Scan, filtering every
// returned item against the whole DNF expression with filterWith.
type UsingScan struct {
	Expression scimfilter.DNF
}

func (UsingQueries) isQueryPlan() {}
func (UsingScan) isQueryPlan()    {}
