package queryplan

import (
	"fmt"
	"strings"

	"curity-identity-dap/pkg/scimfilter"
)

// FilterWith evaluates dnf against a decoded item as "ANY product holds"
// where "product holds" = "ALL terms hold". item maps physical
// attribute names to decoded Go values (string/float64/bool), or is missing
// the key entirely when the attribute is absent from the item.
func FilterWith(dnf scimfilter.DNF, item map[string]any) (bool, error) {
	if len(dnf) == 0 {
		return true, nil
	}
	for _, product := range dnf {
		holds, err := productHolds(product, item)
		if err != nil {
			return false, err
		}
		if holds {
			return true, nil
		}
	}
	return false, nil
}

func productHolds(product scimfilter.Product, item map[string]any) (bool, error) {
	for _, term := range product {
		holds, err := termHolds(term, item)
		if err != nil {
			return false, err
		}
		if !holds {
			return false, nil
		}
	}
	return true, nil
}

func termHolds(term scimfilter.Term, item map[string]any) (bool, error) {
	value, present := item[term.Attr]
	switch term.Op {
	case scimfilter.Exists:
		return present, nil
	case scimfilter.NotExists:
		return !present, nil
	}
	if !present {
		return false, nil
	}
	switch term.Op {
	case scimfilter.Eq:
		return equalValues(value, term.Value), nil
	case scimfilter.Ne:
		return !equalValues(value, term.Value), nil
	case scimfilter.StartsWith:
		s, ok := value.(string)
		prefix, ok2 := term.Value.(string)
		if !ok || !ok2 {
			return false, fmt.Errorf("queryplan: startsWith on non-string attribute %q", term.Attr)
		}
		return strings.HasPrefix(s, prefix), nil
	case scimfilter.Lt, scimfilter.Le, scimfilter.Gt, scimfilter.Ge:
		cmp, err := compareValues(value, term.Value)
		if err != nil {
			return false, err
		}
		switch term.Op {
		case scimfilter.Lt:
			return cmp < 0, nil
		case scimfilter.Le:
			return cmp <= 0, nil
		case scimfilter.Gt:
			return cmp > 0, nil
		default:
			return cmp >= 0, nil
		}
	case scimfilter.Between:
		lo, err := compareValues(value, term.Value)
		if err != nil {
			return false, err
		}
		hi, err := compareValues(value, term.High)
		if err != nil {
			return false, err
		}
		return lo >= 0 && hi <= 0, nil
	default:
		return false, fmt.Errorf("queryplan: unsupported operator %q", term.Op)
	}
}

func equalValues(a, b any) bool {
	return a == b
}

func compareValues(a, b any) (int, error) {
	switch x := a.(type) {
	case string:
		y, ok := b.(string)
		if !ok {
			return 0, fmt.Errorf("queryplan: comparing string to %T", b)
		}
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		default:
			return 0, nil
		}
	case float64:
		y, ok := b.(float64)
		if !ok {
			return 0, fmt.Errorf("queryplan: comparing number to %T", b)
		}
		switch {
		case x < y:
			return -1, nil
		case x > y:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, fmt.Errorf("queryplan: unsupported comparand type %T", a)
	}
}
