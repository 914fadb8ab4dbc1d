package queryplan

import (
	"fmt"
	"strconv"

	"curity-identity-dap/domain/schema"
	apperrors "curity-identity-dap/pkg/errors"
	"curity-identity-dap/pkg/scimfilter"
)

// Plan resolves filter against table and produces a QueryPlan per the
// algorithm: resolve attribute paths, normalize to DNF, pick an index per
// product, merge products sharing a KeyCondition, and cap at MaxQueries.
func Plan(table *schema.TableDescriptor, filter scimfilter.Filter) (QueryPlan, error) {
	return PlanWithLimit(table, filter, MaxQueries)
}

// PlanWithLimit is Plan with the query-count cap overridden by maxQueries,
// letting a deployment tighten or loosen the default via configuration
// instead of the package constant.
func PlanWithLimit(table *schema.TableDescriptor, filter scimfilter.Filter, maxQueries int) (QueryPlan, error) {
	dnf := scimfilter.ToDNF(filter)
	if err := resolveDNF(table, dnf); err != nil {
		return nil, err
	}
	return planFromDNF(table, dnf, maxQueries)
}

// resolveDNF validates that every term's attribute path is known to table,
// that its operator is legal for the attribute's kind, and rewrites
// term.Attr in place from the SCIM path to the attribute's physical column
// name. Every later comparison — index selection, store-side filter
// expressions, in-process residual evaluation — runs against that resolved
// physical name, so an AttributeMap alias (e.g. "emails" for the physical
// "email" column) is resolved exactly once instead of being compared
// against the physical name at each downstream site.
func resolveDNF(table *schema.TableDescriptor, dnf scimfilter.DNF) error {
	for _, product := range dnf {
		for i := range product {
			term := &product[i]
			attr, ok := table.Resolve(term.Attr)
			if !ok {
				return apperrors.NewUnsupportedQuery(fmt.Sprintf("unknown attribute path %q", term.Attr))
			}
			switch term.Op {
			case scimfilter.Lt, scimfilter.Le, scimfilter.Gt, scimfilter.Ge, scimfilter.Between:
				if !attr.Sortable {
					return apperrors.NewUnsupportedQuery(fmt.Sprintf("attribute %q does not support ordering comparisons", term.Attr))
				}
			}
			term.Attr = attr.Name
		}
	}
	return nil
}

type candidate struct {
	index      *schema.Index
	partTerm   scimfilter.Term
	sortTerm   *scimfilter.Term
	residual   scimfilter.Product
}

// planFromDNF picks an index per product (step 4), merges products that
// resolve to an identical KeyCondition (step 5), and enforces maxQueries
// (step 6). If any single product cannot pick an index, the whole
// expression falls back to a scan, since queries alone could no longer
// cover every matching item.
func planFromDNF(table *schema.TableDescriptor, dnf scimfilter.DNF, maxQueries int) (QueryPlan, error) {
	candidates := make([]candidate, 0, len(dnf))
	for _, product := range dnf {
		c, ok := pickIndex(table, product)
		if !ok {
			return UsingScan{Expression: dnf}, nil
		}
		candidates = append(candidates, c)
	}

	order := make([]string, 0, len(candidates))
	groups := make(map[string]*QueryGroup)
	keys := make(map[string]KeyCondition)

	for _, c := range candidates {
		key := KeyCondition{
			Index:          c.index,
			PartitionValue: c.partTerm.Value,
			ConsistentRead: c.index.ConsistentReadCapable,
		}
		if c.sortTerm != nil {
			key.Sort = &SortCondition{Op: c.sortTerm.Op, Value: c.sortTerm.Value, High: c.sortTerm.High}
		}
		k := keyConditionKey(key)
		if _, seen := groups[k]; !seen {
			order = append(order, k)
			groups[k] = &QueryGroup{Key: key}
			keys[k] = key
		}
		groups[k].Residuals = append(groups[k].Residuals, c.residual)
	}

	if len(order) > maxQueries {
		return nil, apperrors.NewTooManyOperations(len(order), maxQueries)
	}

	queries := make([]QueryGroup, 0, len(order))
	for _, k := range order {
		queries = append(queries, *groups[k])
	}
	return UsingQueries{Queries: queries}, nil
}

// pickIndex finds the best index for product: some term must equal the
// index's partition attribute; among matches, prefer one whose sort
// attribute also appears with an indexable comparator; ties keep the first
// match in table.Indexes declaration order.
func pickIndex(table *schema.TableDescriptor, product scimfilter.Product) (candidate, bool) {
	var best *candidate
	for _, idx := range table.Indexes {
		partTerm, ok := findEqualityTerm(product, idx.PartitionAttr)
		if !ok {
			continue
		}
		var sortTerm *scimfilter.Term
		if idx.HasSort() {
			if t, ok2 := findIndexableTerm(product, idx.SortAttr); ok2 {
				sortTerm = &t
			}
		}
		if best != nil && sortTerm == nil {
			continue // no improvement over the existing candidate; keep declaration-order winner
		}
		residual := residualProduct(product, partTerm, sortTerm)
		best = &candidate{index: idx, partTerm: partTerm, sortTerm: sortTerm, residual: residual}
		if sortTerm != nil {
			break // can't do better than partition+sort both indexable
		}
	}
	if best == nil {
		return candidate{}, false
	}
	return *best, true
}

func findEqualityTerm(product scimfilter.Product, attr *schema.AttributeDescriptor) (scimfilter.Term, bool) {
	if attr == nil {
		return scimfilter.Term{}, false
	}
	for _, t := range product {
		if t.Attr == attr.Name && t.Op == scimfilter.Eq {
			return t, true
		}
	}
	return scimfilter.Term{}, false
}

func findIndexableTerm(product scimfilter.Product, attr *schema.AttributeDescriptor) (scimfilter.Term, bool) {
	if attr == nil {
		return scimfilter.Term{}, false
	}
	for _, t := range product {
		if t.Attr == attr.Name && t.Op.Indexable() {
			return t, true
		}
	}
	return scimfilter.Term{}, false
}

// residualProduct returns product with the chosen partition/sort terms
// removed; the remainder is applied as an in-process (or store filter)
// residual condition.
func residualProduct(product scimfilter.Product, partTerm scimfilter.Term, sortTerm *scimfilter.Term) scimfilter.Product {
	out := make(scimfilter.Product, 0, len(product))
	for _, t := range product {
		if t == partTerm {
			continue
		}
		if sortTerm != nil && t == *sortTerm {
			continue
		}
		out = append(out, t)
	}
	return out
}

func keyConditionKey(k KeyCondition) string {
	s := fmt.Sprintf("idx:%p|part:%s", k.Index, valueKeyString(k.PartitionValue))
	if k.Sort != nil {
		s += fmt.Sprintf("|sort:%s:%s", k.Sort.Op.String(), valueKeyString(k.Sort.Value))
		if k.Sort.Op == scimfilter.Between {
			s += ":" + valueKeyString(k.Sort.High)
		}
	}
	return s
}

func valueKeyString(v any) string {
	switch x := v.(type) {
	case string:
		return "s:" + x
	case bool:
		return "b:" + strconv.FormatBool(x)
	case float64:
		return "n:" + strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return "?"
	}
}
