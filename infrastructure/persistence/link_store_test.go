package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"curity-identity-dap/domain/schema"
	apperrors "curity-identity-dap/pkg/errors"
)

// fakeLinkClient is an in-memory store.Client for LinkStore's tests. Unlike
// fakeClient, which only ever matches on the accounts table's pk, Query
// here must match on arbitrary named columns, since the list-links-index's
// key condition is (localAccountId, linkingAccountManager) rather than pk.
type fakeLinkClient struct {
	items map[string]map[string]types.AttributeValue
}

func newFakeLinkClient() *fakeLinkClient {
	return &fakeLinkClient{items: map[string]map[string]types.AttributeValue{}}
}

func (f *fakeLinkClient) pkOf(item map[string]types.AttributeValue) string {
	s, _ := item["pk"].(*types.AttributeValueMemberS)
	if s == nil {
		return ""
	}
	return s.Value
}

func (f *fakeLinkClient) GetItem(ctx context.Context, input *dynamodb.GetItemInput) (*dynamodb.GetItemOutput, error) {
	pk := f.pkOf(input.Key)
	item, ok := f.items[pk]
	if !ok {
		return &dynamodb.GetItemOutput{}, nil
	}
	return &dynamodb.GetItemOutput{Item: cloneItem(item)}, nil
}

func (f *fakeLinkClient) PutItem(ctx context.Context, input *dynamodb.PutItemInput) (*dynamodb.PutItemOutput, error) {
	pk := f.pkOf(input.Item)
	if input.ConditionExpression != nil {
		if _, exists := f.items[pk]; exists {
			return nil, apperrors.Conflict("link already exists")
		}
	}
	f.items[pk] = cloneItem(input.Item)
	return &dynamodb.PutItemOutput{}, nil
}

func (f *fakeLinkClient) DeleteItem(ctx context.Context, input *dynamodb.DeleteItemInput) (*dynamodb.DeleteItemOutput, error) {
	delete(f.items, f.pkOf(input.Key))
	return &dynamodb.DeleteItemOutput{}, nil
}

func (f *fakeLinkClient) UpdateItem(ctx context.Context, input *dynamodb.UpdateItemInput) (*dynamodb.UpdateItemOutput, error) {
	return nil, apperrors.NewInternal("fakeLinkClient: UpdateItem not used by this persistence layer", nil)
}

var keyEqualityClause = regexp.MustCompile(`(#\w+) = (:\w+)`)

func (f *fakeLinkClient) Query(ctx context.Context, input *dynamodb.QueryInput) (*dynamodb.QueryOutput, error) {
	clauses := keyEqualityClause.FindAllStringSubmatch(*input.KeyConditionExpression, -1)
	var out []map[string]types.AttributeValue
	for _, item := range f.items {
		matches := true
		for _, clause := range clauses {
			column := input.ExpressionAttributeNames[clause[1]]
			wanted := input.ExpressionAttributeValues[clause[2]]
			if !attributeValuesEqual(item[column], wanted) {
				matches = false
				break
			}
		}
		if matches {
			out = append(out, cloneItem(item))
		}
	}
	return &dynamodb.QueryOutput{Items: out}, nil
}

func (f *fakeLinkClient) Scan(ctx context.Context, input *dynamodb.ScanInput) (*dynamodb.ScanOutput, error) {
	return nil, apperrors.NewInternal("fakeLinkClient: Scan not used by this persistence layer", nil)
}

func (f *fakeLinkClient) TransactWriteItems(ctx context.Context, input *dynamodb.TransactWriteItemsInput) (*dynamodb.TransactWriteItemsOutput, error) {
	return nil, apperrors.NewInternal("fakeLinkClient: TransactWriteItems not used by this persistence layer", nil)
}

func newTestLinkStore() (*LinkStore, *fakeLinkClient) {
	client := newFakeLinkClient()
	s := NewLinkStore(client, zap.NewNop(), "")
	s.now = func() time.Time { return time.Unix(2000, 0) }
	return s, client
}

func TestNewLinkStoreOverridesTableNameWithoutMutatingSharedDescriptor(t *testing.T) {
	client := newFakeLinkClient()
	s := NewLinkStore(client, zap.NewNop(), "curity-links-staging")
	require.Equal(t, "curity-links-staging", s.table.PhysicalName)
	require.Equal(t, "curity-links", schema.LinksTable.PhysicalName, "override must not mutate the shared table descriptor")
}

func TestCreateLinkThenGetLink(t *testing.T) {
	s, _ := newTestLinkStore()
	ctx := context.Background()

	created, err := s.CreateLink(ctx, "local-1", "provisioning", "remote-1", "partner.example.com")
	require.NoError(t, err)
	require.Equal(t, int64(2000), created.Created)

	found, err := s.GetLink(ctx, "remote-1", "partner.example.com")
	require.NoError(t, err)
	require.NotNil(t, found)
	require.Equal(t, "local-1", found.LocalAccountID)
	require.Equal(t, "provisioning", found.LinkingAccountManager)
}

func TestCreateLinkCollisionIsConflict(t *testing.T) {
	s, _ := newTestLinkStore()
	ctx := context.Background()

	_, err := s.CreateLink(ctx, "local-1", "provisioning", "remote-1", "partner.example.com")
	require.NoError(t, err)

	_, err = s.CreateLink(ctx, "local-2", "provisioning", "remote-1", "partner.example.com")
	require.Error(t, err)
	require.True(t, apperrors.IsConflict(err))
}

func TestGetLinkReturnsNilForAbsentLink(t *testing.T) {
	s, _ := newTestLinkStore()
	found, err := s.GetLink(context.Background(), "nobody", "partner.example.com")
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestDeleteLinkRemovesIt(t *testing.T) {
	s, _ := newTestLinkStore()
	ctx := context.Background()

	_, err := s.CreateLink(ctx, "local-1", "provisioning", "remote-1", "partner.example.com")
	require.NoError(t, err)

	require.NoError(t, s.DeleteLink(ctx, "remote-1", "partner.example.com"))

	found, err := s.GetLink(ctx, "remote-1", "partner.example.com")
	require.NoError(t, err)
	require.Nil(t, found)
}

func TestDeleteLinkOnAbsentLinkSucceeds(t *testing.T) {
	s, _ := newTestLinkStore()
	require.NoError(t, s.DeleteLink(context.Background(), "nobody", "partner.example.com"))
}

func TestListLinksFiltersByLocalAccountAndManager(t *testing.T) {
	s, _ := newTestLinkStore()
	ctx := context.Background()

	_, err := s.CreateLink(ctx, "local-1", "provisioning", "remote-1", "partner-a.example.com")
	require.NoError(t, err)
	_, err = s.CreateLink(ctx, "local-1", "sso", "remote-2", "partner-b.example.com")
	require.NoError(t, err)
	_, err = s.CreateLink(ctx, "local-2", "provisioning", "remote-3", "partner-c.example.com")
	require.NoError(t, err)

	all, err := s.ListLinks(ctx, "local-1", "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	scoped, err := s.ListLinks(ctx, "local-1", "sso")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	require.Equal(t, "remote-2", scoped[0].LinkedAccountID)
}
