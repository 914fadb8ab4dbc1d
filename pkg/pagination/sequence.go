// Package pagination implements the lazy, single-pass page sequence that
// walks a DynamoDB Query or Scan's "exclusive start key" continuation
// protocol.
package pagination

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Page is one store response: the items it returned, and the continuation
// key to pass to the next Fetch call, nil when this was the last page.
type Page struct {
	Items            []map[string]types.AttributeValue
	LastEvaluatedKey map[string]types.AttributeValue
}

// Fetch issues one Query or Scan call with the given exclusive start key
// (nil on the first call) and returns the resulting page.
type Fetch func(ctx context.Context, exclusiveStartKey map[string]types.AttributeValue) (Page, error)

// Sequence is a lazy, forward-only iterator over a Query or Scan's pages.
// It is not restartable: once exhausted, further calls to Next report
// ok=false; once Next has returned an error, further calls return an error.
// Callers that need a second pass over the same result must materialize
// Drain's return value into a slice and iterate that instead.
type Sequence struct {
	fetch     Fetch
	nextKey   map[string]types.AttributeValue
	started   bool
	exhausted bool
	errored   bool
}

// New creates a sequence that will call fetch to produce each page,
// starting with a nil exclusive start key.
func New(fetch Fetch) *Sequence {
	return &Sequence{fetch: fetch}
}

// Next fetches and returns the next page's items. ok is false once the
// sequence is exhausted; callers should stop calling Next at that point.
func (s *Sequence) Next(ctx context.Context) (items []map[string]types.AttributeValue, ok bool, err error) {
	if s.errored {
		return nil, false, fmt.Errorf("pagination: sequence already failed, cannot resume")
	}
	if s.exhausted {
		return nil, false, nil
	}
	page, err := s.fetch(ctx, s.nextKey)
	if err != nil {
		s.errored = true
		return nil, false, err
	}
	s.started = true
	s.nextKey = page.LastEvaluatedKey
	if s.nextKey == nil {
		s.exhausted = true
	}
	return page.Items, true, nil
}

// Done reports whether the sequence has no more pages to fetch. It is
// always false before the first call to Next.
func (s *Sequence) Done() bool {
	return s.started && s.exhausted
}

// Drain exhausts the sequence, concatenating every page's items in order.
// This is the "materialize into a list" escape hatch for callers that need
// more than one pass over the result.
func Drain(ctx context.Context, seq *Sequence) ([]map[string]types.AttributeValue, error) {
	var all []map[string]types.AttributeValue
	for {
		items, ok, err := seq.Next(ctx)
		if err != nil {
			return nil, err
		}
		all = append(all, items...)
		if !ok || seq.Done() {
			break
		}
	}
	return all, nil
}
