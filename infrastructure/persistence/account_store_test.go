package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"curity-identity-dap/domain/account"
	"curity-identity-dap/domain/schema"
	"curity-identity-dap/infrastructure/events"
	apperrors "curity-identity-dap/pkg/errors"
	"curity-identity-dap/pkg/observability"
	"curity-identity-dap/pkg/scimfilter"
)

func newTestStore() (*AccountStore, *fakeClient) {
	client := newFakeClient()
	metrics := observability.NewMetrics("test", nil, nil)
	s := NewAccountStore(client, events.NoopPublisher{}, metrics, zap.NewNop(), 3, true, 0, "")
	s.now = func() time.Time { return time.Unix(1000, 0) }
	return s, client
}

func TestNewAccountStoreOverridesTableNameWithoutMutatingSharedDescriptor(t *testing.T) {
	client := newFakeClient()
	metrics := observability.NewMetrics("test", nil, nil)
	s := NewAccountStore(client, events.NoopPublisher{}, metrics, zap.NewNop(), 3, true, 0, "curity-accounts-staging")
	require.Equal(t, "curity-accounts-staging", s.table.PhysicalName)
	require.Equal(t, "curity-accounts", schema.AccountsTable.PhysicalName, "override must not mutate the shared table descriptor")
}

func TestCreateThenGetByEmail(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	created, err := s.Create(ctx, account.Attributes{UserName: "alice", Email: "alice@example.com", Active: true})
	require.NoError(t, err)
	require.NotEmpty(t, created.AccountID)

	found, err := s.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "alice", found.UserName)
	require.Equal(t, created.AccountID, found.AccountID)
	require.Empty(t, found.Password)
}

func TestCreateCollisionOnPhoneIsConflict(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := s.Create(ctx, account.Attributes{UserName: "bob", Phone: "+15551234"})
	require.NoError(t, err)

	_, err = s.Create(ctx, account.Attributes{UserName: "carol", Phone: "+15551234"})
	require.Error(t, err)
	require.True(t, apperrors.IsConflict(err))
}

func TestUpdateChangesUserName(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	created, err := s.Create(ctx, account.Attributes{UserName: "bob"})
	require.NoError(t, err)

	updated, err := s.Update(ctx, created.AccountID, account.Attributes{UserName: "bobby", Active: true})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.Equal(t, created.Version+1, updated.Version)

	gone, err := s.GetByUserName(ctx, "bob")
	require.NoError(t, err)
	require.Nil(t, gone)

	found, err := s.GetByUserName(ctx, "bobby")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, updated.Version, found.Version)
}

func TestDeleteNonexistentAccountSucceeds(t *testing.T) {
	s, _ := newTestStore()
	require.NoError(t, s.Delete(context.Background(), "does-not-exist"))
}

func TestDeleteRemovesEveryFanoutItem(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	created, err := s.Create(ctx, account.Attributes{UserName: "dana", Email: "dana@example.com", Phone: "+15559999"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(ctx, created.AccountID))

	byID, err := s.GetByID(ctx, created.AccountID)
	require.NoError(t, err)
	require.Nil(t, byID)

	byEmail, err := s.GetByEmail(ctx, "dana@example.com")
	require.NoError(t, err)
	require.Nil(t, byEmail)
}

func TestUpdatePasswordPreservesOtherAttributes(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	created, err := s.Create(ctx, account.Attributes{UserName: "erin", Email: "erin@example.com", Password: "old-hash", Active: true})
	require.NoError(t, err)

	require.NoError(t, s.UpdatePassword(ctx, "erin", "new-hash"))

	subject, err := s.VerifyPassword(ctx, "erin")
	require.NoError(t, err)
	require.NotNil(t, subject)
	require.Equal(t, "new-hash", subject.Password)

	byEmail, err := s.GetByEmail(ctx, "erin@example.com")
	require.NoError(t, err)
	require.NotNil(t, byEmail)
	require.Equal(t, created.AccountID, byEmail.AccountID)
	require.Empty(t, byEmail.Password)
}

func TestVerifyPasswordReturnsNilForInactiveAccount(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := s.Create(ctx, account.Attributes{UserName: "frank", Active: false, Password: "hash"})
	require.NoError(t, err)

	subject, err := s.VerifyPassword(ctx, "frank")
	require.NoError(t, err)
	require.Nil(t, subject)
}

func TestVerifyPasswordReturnsNilForAbsentAccount(t *testing.T) {
	s, _ := newTestStore()
	subject, err := s.VerifyPassword(context.Background(), "nobody")
	require.NoError(t, err)
	require.Nil(t, subject)
}

func TestPatchIgnoresPasswordField(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	created, err := s.Create(ctx, account.Attributes{UserName: "gina", Password: "original-hash"})
	require.NoError(t, err)

	_, err = s.Patch(ctx, created.AccountID, account.AttributeUpdate{Set: map[string]any{"password": "smuggled-in", "active": true}})
	require.NoError(t, err)

	subject, err := s.VerifyPassword(ctx, "gina")
	require.NoError(t, err)
	require.NotNil(t, subject)
	require.Equal(t, "original-hash", subject.Password)
	require.True(t, subject.Active)
}

func TestGetAllByUserNameEqualityUsesIndexedQuery(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := s.Create(ctx, account.Attributes{UserName: "hank"})
	require.NoError(t, err)
	_, err = s.Create(ctx, account.Attributes{UserName: "irene"})
	require.NoError(t, err)

	results, err := s.GetAll(ctx, ResourceQuery{Filter: scimfilter.Compare{Attr: "userName", Op: scimfilter.Eq, Value: "hank"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "hank", results[0].UserName)
}

func TestGetAllOnNonIndexableFilterFallsBackToScan(t *testing.T) {
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := s.Create(ctx, account.Attributes{UserName: "jill", Active: true})
	require.NoError(t, err)
	_, err = s.Create(ctx, account.Attributes{UserName: "kyle", Active: false})
	require.NoError(t, err)

	results, err := s.GetAll(ctx, ResourceQuery{Filter: scimfilter.Compare{Attr: "active", Op: scimfilter.Eq, Value: true}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "jill", results[0].UserName)
}

func TestGetAllByAttributeMapAliasUsesIndexedQuery(t *testing.T) {
	// "emails" is an AttributeMap alias for the physical "email" column;
	// filtering on it must still resolve to the email index end to end,
	// rather than silently degrading to a scan (and, since a scan's
	// residual filter would then also look up the alias in the decoded
	// item, dropping every result).
	s, _ := newTestStore()
	ctx := context.Background()

	_, err := s.Create(ctx, account.Attributes{UserName: "morgan", Email: "morgan@example.com"})
	require.NoError(t, err)
	_, err = s.Create(ctx, account.Attributes{UserName: "nadia", Email: "nadia@example.com"})
	require.NoError(t, err)

	results, err := s.GetAll(ctx, ResourceQuery{Filter: scimfilter.Compare{Attr: "emails", Op: scimfilter.Eq, Value: "morgan@example.com"}})
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.Equal(t, "morgan", results[0].UserName)
}

func TestGetAllDeniesScanWhenTableScansDisallowed(t *testing.T) {
	s, _ := newTestStore()
	s.allowTableScans = false
	ctx := context.Background()

	_, err := s.Create(ctx, account.Attributes{UserName: "liam", Active: true})
	require.NoError(t, err)

	_, err = s.GetAll(ctx, ResourceQuery{Filter: scimfilter.Compare{Attr: "active", Op: scimfilter.Eq, Value: true}})
	require.Error(t, err)
	require.True(t, apperrors.IsUnsupportedQuery(err))
}
