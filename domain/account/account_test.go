package account

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateRejectsMissingUserName(t *testing.T) {
	err := Attributes{}.Validate()
	require.Error(t, err)
	require.Contains(t, err.Error(), "username is required")
}

func TestValidateRejectsMalformedEmail(t *testing.T) {
	err := Attributes{UserName: "alice", Email: "not-an-email"}.Validate()
	require.Error(t, err)
}

func TestValidateAcceptsMinimalAccount(t *testing.T) {
	require.NoError(t, Attributes{UserName: "alice"}.Validate())
}

func TestUniqueAttributeValuesOmitsUnsetFields(t *testing.T) {
	values := Attributes{UserName: "alice"}.UniqueAttributeValues()
	require.Equal(t, map[string]string{"userName": "alice"}, values)

	values = Attributes{UserName: "alice", Email: "alice@example.com", Phone: "+15551234"}.UniqueAttributeValues()
	require.Equal(t, map[string]string{"userName": "alice", "email": "alice@example.com", "phone": "+15551234"}, values)
}

func TestMetaFormatsTimestampsAsRFC3339(t *testing.T) {
	meta := Attributes{Created: 1000, Updated: 2000}.Meta()
	require.Equal(t, "1970-01-01T00:16:40Z", meta["created"])
	require.Equal(t, "1970-01-01T00:33:20Z", meta["lastModified"])
}

func TestNewAccountIDIsUnique(t *testing.T) {
	a := NewAccountID()
	b := NewAccountID()
	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
}
