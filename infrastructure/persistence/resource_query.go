package persistence

import (
	apperrors "curity-identity-dap/pkg/errors"

	"curity-identity-dap/domain/account"
	"curity-identity-dap/domain/schema"
	"curity-identity-dap/pkg/scimfilter"
)

// ResourceQuery is the getAll request shape: a filter to plan and
// execute, an optional sort, drop/take pagination over the sorted result,
// and an optional projection of the open attribute bag.
type ResourceQuery struct {
	Filter scimfilter.Filter

	// SortBy is a SCIM path present in the accounts table's AttributeMap
	// and marked Sortable; empty means "no sort, insertion order from the
	// plan" (secondary fan-out items are deduplicated by accountId before sorting).
	SortBy     string
	Descending bool

	// Start and Count implement drop/take pagination over the sorted
	// result. Count <= 0 means "no limit".
	Start int
	Count int

	// ExtraAttributes, when non-empty, projects each result's Extra bag to
	// only these keys; the fixed SCIM attributes (userName, email, phone,
	// active, version, created, updated) are always returned in full.
	ExtraAttributes []string
}

func unknownSortAttribute(path string) error {
	return apperrors.NewUnsupportedQuery("unknown sort attribute path " + path)
}

// sortAndPage sorts items (already deduplicated by accountId) by
// q.SortBy if set, then applies q.Start/q.Count drop/take.
func sortAndPage(q ResourceQuery, items []account.Attributes) ([]account.Attributes, error) {
	if len(items) == 0 {
		return items, nil
	}
	sorted := items
	if q.SortBy != "" {
		attr, ok := schema.AccountsTable.Resolve(q.SortBy)
		if !ok || !attr.Sortable {
			return nil, unknownSortAttribute(q.SortBy)
		}
		sorted = append([]account.Attributes(nil), items...)
		var sortErr error
		insertionSort(sorted, func(a, b account.Attributes) bool {
			cmp, err := attr.Compare(sortFieldValue(a, attr), sortFieldValue(b, attr))
			if err != nil {
				sortErr = err
				return false
			}
			if q.Descending {
				return cmp > 0
			}
			return cmp < 0
		})
		if sortErr != nil {
			return nil, sortErr
		}
	}

	start := q.Start
	if start < 0 {
		start = 0
	}
	if start > len(sorted) {
		start = len(sorted)
	}
	end := len(sorted)
	if q.Count > 0 && start+q.Count < end {
		end = start + q.Count
	}
	return sorted[start:end], nil
}

func sortFieldValue(a account.Attributes, attr *schema.AttributeDescriptor) any {
	switch attr {
	case schema.AccountID:
		return a.AccountID
	case schema.UserName:
		return a.UserName
	case schema.Email:
		return a.Email
	case schema.Phone:
		return a.Phone
	case schema.Created:
		return float64(a.Created)
	case schema.Updated:
		return float64(a.Updated)
	case schema.Version:
		return float64(a.Version)
	default:
		return nil
	}
}

// insertionSort is a small stable sort used instead of sort.Slice so a
// comparator error can be captured without a closure-scoped panic/recover.
func insertionSort(items []account.Attributes, less func(a, b account.Attributes) bool) {
	for i := 1; i < len(items); i++ {
		for j := i; j > 0 && less(items[j], items[j-1]); j-- {
			items[j], items[j-1] = items[j-1], items[j]
		}
	}
}

// project reduces each item's Extra bag to q.ExtraAttributes, when set.
func project(q ResourceQuery, items []account.Attributes) []account.Attributes {
	if len(q.ExtraAttributes) == 0 {
		return items
	}
	wanted := make(map[string]bool, len(q.ExtraAttributes))
	for _, k := range q.ExtraAttributes {
		wanted[k] = true
	}
	out := make([]account.Attributes, len(items))
	for i, item := range items {
		projected := item
		if len(item.Extra) > 0 {
			trimmed := make(map[string]any, len(item.Extra))
			for k, v := range item.Extra {
				if wanted[k] {
					trimmed[k] = v
				}
			}
			projected.Extra = trimmed
		}
		out[i] = projected
	}
	return out
}
