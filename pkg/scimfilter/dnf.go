package scimfilter

import (
	"sort"
	"strconv"
)

// Term is one atomic comparison within a Product. High only holds a value
// when Op is Between: Value is the lower bound, High the upper.
type Term struct {
	Attr  string
	Op    Operator
	Value any
	High  any
}

// Product is a conjunction of terms (an AND-clause of the DNF).
type Product []Term

// DNF is a disjunction of products (an OR-of-ANDs).
type DNF []Product

// ToDNF normalizes a filter tree to disjunctive normal form: negations are
// pushed to the leaves (De Morgan), `ne` terms are split into `lt`/`gt`
// alternatives, and the resulting product set is deduplicated by exact
// term-set equality with contradictory products removed. See
// steps 2–3.
func ToDNF(f Filter) DNF {
	nnf := toNNF(f, false)
	raw := expand(nnf)
	split := splitNotEqual(raw)
	return dedupAndAbsorb(split)
}

// toNNF pushes negation to the leaves. neg indicates whether the enclosing
// context negates this subtree.
func toNNF(f Filter, neg bool) Filter {
	switch t := f.(type) {
	case Compare:
		if !neg {
			return t
		}
		switch t.Op {
		case Eq:
			return Compare{Attr: t.Attr, Op: Ne, Value: t.Value}
		case Ne:
			return Compare{Attr: t.Attr, Op: Eq, Value: t.Value}
		case Between:
			return Or{Terms: []Filter{
				Compare{Attr: t.Attr, Op: Lt, Value: t.Value},
				Compare{Attr: t.Attr, Op: Gt, Value: t.High},
			}}
		default:
			newOp, ok := t.Op.Negate()
			if !ok {
				// unreachable: Eq/Ne/Between handled above, all others negate cleanly.
				return t
			}
			return Compare{Attr: t.Attr, Op: newOp, Value: t.Value}
		}
	case And:
		terms := make([]Filter, len(t.Terms))
		for i, term := range t.Terms {
			terms[i] = toNNF(term, neg)
		}
		if neg {
			return Or{Terms: terms}
		}
		return And{Terms: terms}
	case Or:
		terms := make([]Filter, len(t.Terms))
		for i, term := range t.Terms {
			terms[i] = toNNF(term, neg)
		}
		if neg {
			return And{Terms: terms}
		}
		return Or{Terms: terms}
	case Not:
		return toNNF(t.Term, !neg)
	default:
		return f
	}
}

// expand distributes And over Or to produce a raw (pre-split, pre-dedup) DNF.
func expand(f Filter) DNF {
	switch t := f.(type) {
	case Compare:
		return DNF{Product{Term{Attr: t.Attr, Op: t.Op, Value: t.Value, High: t.High}}}
	case Or:
		var out DNF
		for _, term := range t.Terms {
			out = append(out, expand(term)...)
		}
		return out
	case And:
		acc := DNF{{}}
		for _, term := range t.Terms {
			childDNF := expand(term)
			var next DNF
			for _, accProduct := range acc {
				for _, childProduct := range childDNF {
					merged := make(Product, 0, len(accProduct)+len(childProduct))
					merged = append(merged, accProduct...)
					merged = append(merged, childProduct...)
					next = append(next, merged)
				}
			}
			acc = next
		}
		return acc
	default:
		return nil
	}
}

// splitNotEqual eliminates `ne` terms by splitting the enclosing product
// into an `lt` alternative and a `gt` alternative.
func splitNotEqual(in DNF) DNF {
	var out DNF
	for _, product := range in {
		out = append(out, splitProduct(product)...)
	}
	return out
}

func splitProduct(product Product) DNF {
	for i, term := range product {
		if term.Op != Ne {
			continue
		}
		rest := make(Product, 0, len(product)-1)
		rest = append(rest, product[:i]...)
		rest = append(rest, product[i+1:]...)

		lt := append(Product{Term{Attr: term.Attr, Op: Lt, Value: term.Value}}, rest...)
		gt := append(Product{Term{Attr: term.Attr, Op: Gt, Value: term.Value}}, rest...)

		var out DNF
		out = append(out, splitProduct(lt)...)
		out = append(out, splitProduct(gt)...)
		return out
	}
	return DNF{product}
}

// dedupAndAbsorb removes contradictory products (Eq on the same attribute
// with two different literal values within one product) and deduplicates
// products with identical term sets. Absorption is conservative: a product
// is dropped only when another product's term set is exactly equal, per
// the final normalization step below.
func dedupAndAbsorb(in DNF) DNF {
	seen := make(map[string]bool)
	var out DNF
	for _, product := range in {
		if isContradictory(product) {
			continue
		}
		key := productKey(product)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, product)
	}
	return out
}

func isContradictory(product Product) bool {
	eqValues := make(map[string]any)
	for _, term := range product {
		if term.Op != Eq {
			continue
		}
		if existing, ok := eqValues[term.Attr]; ok {
			if existing != term.Value {
				return true
			}
			continue
		}
		eqValues[term.Attr] = term.Value
	}
	return false
}

func productKey(product Product) string {
	terms := make([]string, len(product))
	for i, t := range product {
		terms[i] = termKey(t)
	}
	sort.Strings(terms)
	out := ""
	for _, t := range terms {
		out += t + "|"
	}
	return out
}

func termKey(t Term) string {
	key := t.Attr + "#" + t.Op.String() + "#" + valueKey(t.Value)
	if t.Op == Between {
		key += "#" + valueKey(t.High)
	}
	return key
}

func valueKey(v any) string {
	switch x := v.(type) {
	case string:
		return "s:" + x
	case bool:
		if x {
			return "b:true"
		}
		return "b:false"
	case float64:
		return "n:" + strconv.FormatFloat(x, 'g', -1, 64)
	default:
		return "?"
	}
}
