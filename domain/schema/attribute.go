// Package schema describes the typed attribute and table model the query
// planner and the account/link stores are built against: physical column
// names, value encoding to and from the store's native attribute values,
// optional sort comparators, and the uniqueness-prefix machinery used to
// build fan-out partition keys.
package schema

import (
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Kind is the physical encoding of an attribute's value.
type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
)

// AttributeDescriptor is an immutable, typed column descriptor. Planner code
// compares descriptors by pointer identity, so callers must resolve
// attributes through a TableDescriptor's AttributeMap rather than
// constructing new descriptors for the same column.
type AttributeDescriptor struct {
	// Name is the physical column name in the store.
	Name string
	Kind Kind
	// Sortable marks attributes usable as a sort-key range condition.
	Sortable bool
	// UniquePrefix is non-empty for attributes that participate in the
	// accounts table's fan-out uniqueness scheme (e.g. "un#", "em#").
	UniquePrefix string
}

// HashName returns the "#name" placeholder used to bypass reserved words.
func (a *AttributeDescriptor) HashName() string { return "#" + a.Name }

// ColonName returns the ":name" value-placeholder stem for this attribute.
func (a *AttributeDescriptor) ColonName() string { return ":" + a.Name }

// Unique reports whether this attribute has an associated uniqueness prefix.
func (a *AttributeDescriptor) Unique() bool { return a.UniquePrefix != "" }

// Encode converts a Go value into the store's native attribute value.
func (a *AttributeDescriptor) Encode(v any) (types.AttributeValue, error) {
	if v == nil {
		return nil, fmt.Errorf("attribute %q: nil value", a.Name)
	}
	switch a.Kind {
	case KindString:
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("attribute %q: expected string, got %T", a.Name, v)
		}
		return &types.AttributeValueMemberS{Value: s}, nil
	case KindBool:
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("attribute %q: expected bool, got %T", a.Name, v)
		}
		return &types.AttributeValueMemberBOOL{Value: b}, nil
	case KindNumber:
		switch n := v.(type) {
		case int64:
			return &types.AttributeValueMemberN{Value: strconv.FormatInt(n, 10)}, nil
		case int:
			return &types.AttributeValueMemberN{Value: strconv.Itoa(n)}, nil
		case float64:
			return &types.AttributeValueMemberN{Value: strconv.FormatFloat(n, 'f', -1, 64)}, nil
		default:
			return nil, fmt.Errorf("attribute %q: expected numeric value, got %T", a.Name, v)
		}
	default:
		return nil, fmt.Errorf("attribute %q: unknown kind", a.Name)
	}
}

// Decode converts a store-native attribute value back into a Go value.
func (a *AttributeDescriptor) Decode(av types.AttributeValue) (any, error) {
	if av == nil {
		return nil, nil
	}
	switch a.Kind {
	case KindString:
		s, ok := av.(*types.AttributeValueMemberS)
		if !ok {
			return nil, fmt.Errorf("attribute %q: expected S, got %T", a.Name, av)
		}
		return s.Value, nil
	case KindBool:
		b, ok := av.(*types.AttributeValueMemberBOOL)
		if !ok {
			return nil, fmt.Errorf("attribute %q: expected BOOL, got %T", a.Name, av)
		}
		return b.Value, nil
	case KindNumber:
		n, ok := av.(*types.AttributeValueMemberN)
		if !ok {
			return nil, fmt.Errorf("attribute %q: expected N, got %T", a.Name, av)
		}
		if f, err := strconv.ParseFloat(n.Value, 64); err == nil {
			return f, nil
		}
		return nil, fmt.Errorf("attribute %q: malformed numeric value %q", a.Name, n.Value)
	default:
		return nil, fmt.Errorf("attribute %q: unknown kind", a.Name)
	}
}

// Compare orders two decoded values of this attribute. Only meaningful when
// Sortable is true.
func (a *AttributeDescriptor) Compare(x, y any) (int, error) {
	if !a.Sortable {
		return 0, fmt.Errorf("attribute %q is not sortable", a.Name)
	}
	switch a.Kind {
	case KindString:
		xs, xok := x.(string)
		ys, yok := y.(string)
		if !xok || !yok {
			return 0, fmt.Errorf("attribute %q: non-string comparands", a.Name)
		}
		switch {
		case xs < ys:
			return -1, nil
		case xs > ys:
			return 1, nil
		default:
			return 0, nil
		}
	case KindNumber:
		xf, xok := toFloat(x)
		yf, yok := toFloat(y)
		if !xok || !yok {
			return 0, fmt.Errorf("attribute %q: non-numeric comparands", a.Name)
		}
		switch {
		case xf < yf:
			return -1, nil
		case xf > yf:
			return 1, nil
		default:
			return 0, nil
		}
	default:
		return 0, fmt.Errorf("attribute %q: kind is not comparable", a.Name)
	}
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// UniquenessValueFrom returns the injective "prefix + encoded value" string
// used as a `pk` value for this attribute's fan-out item. It is defined only
// for unique attributes.
func (a *AttributeDescriptor) UniquenessValueFrom(v any) (string, error) {
	if !a.Unique() {
		return "", fmt.Errorf("attribute %q has no uniqueness prefix", a.Name)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("attribute %q: uniqueness values must be strings, got %T", a.Name, v)
	}
	return a.UniquePrefix + s, nil
}
