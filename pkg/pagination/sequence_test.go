package pagination

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/require"
)

func fakeItem(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{"id": &types.AttributeValueMemberS{Value: id}}
}

func TestSequenceSinglePage(t *testing.T) {
	calls := 0
	seq := New(func(ctx context.Context, startKey map[string]types.AttributeValue) (Page, error) {
		calls++
		require.Nil(t, startKey)
		return Page{Items: []map[string]types.AttributeValue{fakeItem("a"), fakeItem("b")}}, nil
	})
	items, ok, err := seq.Next(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, items, 2)
	require.True(t, seq.Done())
	require.Equal(t, 1, calls)
}

func TestSequenceMultiPageReissuesWithContinuationKey(t *testing.T) {
	pages := []Page{
		{Items: []map[string]types.AttributeValue{fakeItem("a")}, LastEvaluatedKey: fakeItem("a")},
		{Items: []map[string]types.AttributeValue{fakeItem("b")}, LastEvaluatedKey: fakeItem("b")},
		{Items: []map[string]types.AttributeValue{fakeItem("c")}},
	}
	call := 0
	seq := New(func(ctx context.Context, startKey map[string]types.AttributeValue) (Page, error) {
		p := pages[call]
		call++
		return p, nil
	})

	all, err := Drain(context.Background(), seq)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, 3, call)
	require.True(t, seq.Done())
}

func TestSequenceCannotResumeAfterError(t *testing.T) {
	seq := New(func(ctx context.Context, startKey map[string]types.AttributeValue) (Page, error) {
		return Page{}, context.DeadlineExceeded
	})
	_, _, err := seq.Next(context.Background())
	require.Error(t, err)

	_, _, err = seq.Next(context.Background())
	require.Error(t, err)
}
