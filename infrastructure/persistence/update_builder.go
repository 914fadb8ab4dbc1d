package persistence

import (
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	apperrors "curity-identity-dap/pkg/errors"

	"curity-identity-dap/domain/schema"
)

// updateBuilder produces the TransactWriteItem list for an account update
// or patch: it tracks the common post-update payload and the
// (observedVersion, accountId) precondition, and exposes handleUniqueAttribute
// to append the correct put/delete/replace per attribute for each of the
// four ways a unique attribute's value can transition between two writes.
type updateBuilder struct {
	table           *schema.TableDescriptor
	accountID       string
	observedVersion int
	common          accountItem
	writes          []types.TransactWriteItem
	mainReplaced    bool
	err             error
}

func newUpdateBuilder(table *schema.TableDescriptor, accountID string, observedVersion int, common accountItem) *updateBuilder {
	return &updateBuilder{table: table, accountID: accountID, observedVersion: observedVersion, common: common}
}

// replaceMain appends the single required main-item replace under the
// version precondition. Must be called exactly once.
func (b *updateBuilder) replaceMain() {
	if b.err != nil {
		return
	}
	item := b.common
	item.PK = schema.UniquenessPK(schema.AccountID, b.accountID)
	b.appendPut(item, versionCondition(b.observedVersion, b.accountID))
	b.mainReplaced = true
}

// handleUniqueAttribute appends the writes needed to move attr's secondary
// item from oldValue to newValue (either may be empty, meaning absent).
func (b *updateBuilder) handleUniqueAttribute(attr *schema.AttributeDescriptor, oldValue, newValue string) {
	if b.err != nil {
		return
	}
	switch {
	case oldValue == "" && newValue == "":
		return
	case oldValue == "" && newValue != "":
		b.putNew(attr, newValue)
	case oldValue != "" && newValue == "":
		b.deleteOld(attr, oldValue)
	case oldValue == newValue:
		b.replaceSame(attr, oldValue)
	default:
		b.deleteOld(attr, oldValue)
		b.putNew(attr, newValue)
	}
}

func (b *updateBuilder) putNew(attr *schema.AttributeDescriptor, value string) {
	item := b.common
	item.PK = schema.UniquenessPK(attr, value)
	b.appendPut(item, notExistsCondition())
}

func (b *updateBuilder) replaceSame(attr *schema.AttributeDescriptor, value string) {
	item := b.common
	item.PK = schema.UniquenessPK(attr, value)
	b.appendPut(item, versionCondition(b.observedVersion, b.accountID))
}

func (b *updateBuilder) deleteOld(attr *schema.AttributeDescriptor, oldValue string) {
	if b.err != nil {
		return
	}
	pk := schema.UniquenessPK(attr, oldValue)
	tw, err := buildDeleteItem(b.table, pk, versionCondition(b.observedVersion, b.accountID))
	if err != nil {
		b.err = err
		return
	}
	b.writes = append(b.writes, tw)
}

func (b *updateBuilder) appendPut(item accountItem, condition expression.ConditionBuilder) {
	if b.err != nil {
		return
	}
	tw, err := buildPutItem(b.table, item, condition)
	if err != nil {
		b.err = err
		return
	}
	b.writes = append(b.writes, tw)
}

func (b *updateBuilder) build() ([]types.TransactWriteItem, error) {
	if b.err != nil {
		return nil, b.err
	}
	if !b.mainReplaced {
		return nil, apperrors.NewInternal("update builder: main item was never replaced", nil)
	}
	if len(b.writes) == 0 {
		return nil, apperrors.NewInternal("update builder: transaction would be empty", nil)
	}
	return b.writes, nil
}
