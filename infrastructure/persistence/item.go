// Package persistence implements the account and link stores
// against the store.Client contract: fan-out uniqueness and optimistic
// concurrency for accounts, the single-item link pattern, and the
// filter/sort/paginate/project pipeline behind getAll.
package persistence

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"curity-identity-dap/domain/account"
)

// accountItem is the physical shape of every fan-out item on the accounts
// table: main and secondary items differ only in PK, carrying an otherwise
// identical payload.
type accountItem struct {
	PK         string `dynamodbav:"pk"`
	AccountID  string `dynamodbav:"accountId"`
	UserName   string `dynamodbav:"userName"`
	Email      string `dynamodbav:"email,omitempty"`
	Phone      string `dynamodbav:"phone,omitempty"`
	Password   string `dynamodbav:"password,omitempty"`
	Active     bool   `dynamodbav:"active"`
	Created    int64  `dynamodbav:"created"`
	Updated    int64  `dynamodbav:"updated"`
	Version    int    `dynamodbav:"version"`
	Attributes string `dynamodbav:"attributes,omitempty"`
}

func marshalAccountItem(item accountItem) (map[string]types.AttributeValue, error) {
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("persistence: marshaling account item: %w", err)
	}
	return av, nil
}

func unmarshalAccountItem(av map[string]types.AttributeValue) (accountItem, error) {
	var item accountItem
	if err := attributevalue.UnmarshalMap(av, &item); err != nil {
		return accountItem{}, fmt.Errorf("persistence: unmarshaling account item: %w", err)
	}
	return item, nil
}

// toAccountAttributes converts a physical item back to the logical shape a
// caller receives. includePassword is false for every getBy*/update/patch
// result (the round-trip property strips password) and true only for
// verifyPassword, the sole operation allowed to hand back the hash.
func toAccountAttributes(item accountItem, handler account.JSONHandler, includePassword bool) (account.Attributes, error) {
	extra, err := handler.Unmarshal(item.Attributes)
	if err != nil {
		return account.Attributes{}, fmt.Errorf("persistence: malformed attributes blob for account %s: %w", item.AccountID, err)
	}
	attrs := account.Attributes{
		AccountID: item.AccountID,
		UserName:  item.UserName,
		Email:     item.Email,
		Phone:     item.Phone,
		Active:    item.Active,
		Extra:     extra,
		Created:   item.Created,
		Updated:   item.Updated,
		Version:   item.Version,
	}
	if includePassword {
		attrs.Password = item.Password
	}
	return attrs, nil
}

// toGenericItem decodes a raw store item into the map[string]any shape
// queryplan.FilterWith evaluates residual filters against.
func toGenericItem(av map[string]types.AttributeValue) (map[string]any, error) {
	generic := make(map[string]any, len(av))
	if err := attributevalue.UnmarshalMap(av, &generic); err != nil {
		return nil, fmt.Errorf("persistence: decoding item for residual filtering: %w", err)
	}
	return generic, nil
}
