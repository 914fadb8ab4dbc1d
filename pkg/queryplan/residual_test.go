package queryplan

import (
	"testing"

	"curity-identity-dap/pkg/scimfilter"

	"github.com/stretchr/testify/require"
)

func TestFilterWithEmptyDNFAlwaysHolds(t *testing.T) {
	holds, err := FilterWith(scimfilter.DNF{}, map[string]any{})
	require.NoError(t, err)
	require.True(t, holds)
}

func TestFilterWithAnyProductHolds(t *testing.T) {
	dnf := scimfilter.DNF{
		{{Attr: "active", Op: scimfilter.Eq, Value: true}},
		{{Attr: "active", Op: scimfilter.Eq, Value: false}},
	}
	holds, err := FilterWith(dnf, map[string]any{"active": false})
	require.NoError(t, err)
	require.True(t, holds)
}

func TestFilterWithAllTermsMustHoldWithinAProduct(t *testing.T) {
	dnf := scimfilter.DNF{
		{
			{Attr: "active", Op: scimfilter.Eq, Value: true},
			{Attr: "userName", Op: scimfilter.Eq, Value: "bob"},
		},
	}
	holds, err := FilterWith(dnf, map[string]any{"active": true, "userName": "alice"})
	require.NoError(t, err)
	require.False(t, holds)
}

func TestFilterWithMissingAttributeFailsExistenceTerm(t *testing.T) {
	dnf := scimfilter.DNF{{{Attr: "phone", Op: scimfilter.Exists}}}
	holds, err := FilterWith(dnf, map[string]any{})
	require.NoError(t, err)
	require.False(t, holds)

	dnf = scimfilter.DNF{{{Attr: "phone", Op: scimfilter.NotExists}}}
	holds, err = FilterWith(dnf, map[string]any{})
	require.NoError(t, err)
	require.True(t, holds)
}

func TestFilterWithStartsWith(t *testing.T) {
	dnf := scimfilter.DNF{{{Attr: "userName", Op: scimfilter.StartsWith, Value: "bo"}}}
	holds, err := FilterWith(dnf, map[string]any{"userName": "bob"})
	require.NoError(t, err)
	require.True(t, holds)

	holds, err = FilterWith(dnf, map[string]any{"userName": "alice"})
	require.NoError(t, err)
	require.False(t, holds)
}

func TestFilterWithBetween(t *testing.T) {
	dnf := scimfilter.DNF{{{Attr: "expires", Op: scimfilter.Between, Value: float64(100), High: float64(200)}}}

	holds, err := FilterWith(dnf, map[string]any{"expires": float64(150)})
	require.NoError(t, err)
	require.True(t, holds)

	holds, err = FilterWith(dnf, map[string]any{"expires": float64(100)})
	require.NoError(t, err)
	require.True(t, holds, "bounds are inclusive")

	holds, err = FilterWith(dnf, map[string]any{"expires": float64(200)})
	require.NoError(t, err)
	require.True(t, holds, "bounds are inclusive")

	holds, err = FilterWith(dnf, map[string]any{"expires": float64(201)})
	require.NoError(t, err)
	require.False(t, holds)
}

func TestFilterWithOrderingComparators(t *testing.T) {
	dnf := scimfilter.DNF{{{Attr: "expires", Op: scimfilter.Gt, Value: float64(100)}}}
	holds, err := FilterWith(dnf, map[string]any{"expires": float64(150)})
	require.NoError(t, err)
	require.True(t, holds)

	holds, err = FilterWith(dnf, map[string]any{"expires": float64(50)})
	require.NoError(t, err)
	require.False(t, holds)
}
