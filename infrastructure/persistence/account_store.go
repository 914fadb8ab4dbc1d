package persistence

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"curity-identity-dap/domain/account"
	"curity-identity-dap/domain/schema"
	"curity-identity-dap/infrastructure/events"
	"curity-identity-dap/infrastructure/store"
	"curity-identity-dap/pkg/dynamoexpr"
	apperrors "curity-identity-dap/pkg/errors"
	"curity-identity-dap/pkg/observability"
	"curity-identity-dap/pkg/pagination"
	"curity-identity-dap/pkg/queryplan"
	"curity-identity-dap/pkg/retry"
	"curity-identity-dap/pkg/scimfilter"
)

// AccountStore implements the account fan-out uniqueness-and-versioning
// protocol over a store.Client.
type AccountStore struct {
	client          store.Client
	table           *schema.TableDescriptor
	emitter         dynamoexpr.Emitter
	jsonHandler     account.JSONHandler
	publisher       events.Publisher
	metrics         *observability.Metrics
	logger          *zap.Logger
	retryAttempts   int
	allowTableScans bool
	maxQueries      int
	now             func() time.Time
}

// NewAccountStore builds an AccountStore over client, publishing domain
// events through publisher and metrics through metrics. A nil logger
// defaults to a no-op logger. maxQueries caps how many indexed queries a
// single getAll plan may issue before falling back to
// apperrors.NewTooManyOperations; zero or negative falls back to
// queryplan.MaxQueries. tableName overrides the accounts table's physical
// name for every store call this AccountStore makes; empty keeps
// schema.AccountsTableName.
func NewAccountStore(client store.Client, publisher events.Publisher, metrics *observability.Metrics, logger *zap.Logger, retryAttempts int, allowTableScans bool, maxQueries int, tableName string) *AccountStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxQueries <= 0 {
		maxQueries = queryplan.MaxQueries
	}
	table := schema.AccountsTable
	if tableName != "" && tableName != table.PhysicalName {
		named := *table
		named.PhysicalName = tableName
		table = &named
	}
	return &AccountStore{
		client:          client,
		table:           table,
		jsonHandler:     account.DefaultJSONHandler,
		publisher:       publisher,
		metrics:         metrics,
		logger:          logger,
		retryAttempts:   retryAttempts,
		allowTableScans: allowTableScans,
		maxQueries:      maxQueries,
		now:             time.Now,
	}
}

// Create assembles the accountId's fan-out items and submits them as one
// transaction.
func (s *AccountStore) Create(ctx context.Context, attrs account.Attributes) (account.Attributes, error) {
	if err := attrs.Validate(); err != nil {
		return account.Attributes{}, apperrors.NewValidation(err.Error())
	}

	accountID := account.NewAccountID()
	now := s.now().Unix()
	blob, err := s.jsonHandler.Marshal(attrs.Extra)
	if err != nil {
		return account.Attributes{}, apperrors.NewInternal("marshaling attributes blob", err)
	}

	common := accountItem{
		AccountID:  accountID,
		UserName:   attrs.UserName,
		Email:      attrs.Email,
		Phone:      attrs.Phone,
		Password:   attrs.Password,
		Active:     attrs.Active,
		Created:    now,
		Updated:    now,
		Version:    0,
		Attributes: blob,
	}

	writes := make([]types.TransactWriteItem, 0, 4)
	appendFanoutPut := func(attr *schema.AttributeDescriptor, value string) error {
		item := common
		item.PK = schema.UniquenessPK(attr, value)
		tw, err := buildPutItem(s.table, item, notExistsCondition())
		if err != nil {
			return err
		}
		writes = append(writes, tw)
		return nil
	}

	if err := appendFanoutPut(schema.AccountID, accountID); err != nil {
		return account.Attributes{}, err
	}
	if err := appendFanoutPut(schema.UserName, attrs.UserName); err != nil {
		return account.Attributes{}, err
	}
	if attrs.Email != "" {
		if err := appendFanoutPut(schema.Email, attrs.Email); err != nil {
			return account.Attributes{}, err
		}
	}
	if attrs.Phone != "" {
		if err := appendFanoutPut(schema.Phone, attrs.Phone); err != nil {
			return account.Attributes{}, err
		}
	}

	if _, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: writes}); err != nil {
		if apperrors.IsConflict(err) {
			s.logger.Warn("account creation conflicted", zap.String("userName", attrs.UserName), zap.Error(err))
		} else {
			s.logger.Error("account creation failed", zap.String("userName", attrs.UserName), zap.Error(err))
		}
		return account.Attributes{}, err
	}

	result, err := toAccountAttributes(common, s.jsonHandler, false)
	if err != nil {
		return account.Attributes{}, err
	}
	s.logger.Debug("account created", zap.String("accountId", accountID), zap.Int("version", 0))
	s.publisher.Publish(ctx, account.NewCreated(accountID, attrs.UserName, time.Unix(now, 0)))
	return result, nil
}

// GetByID performs a strongly-consistent GetItem on the main item.
func (s *AccountStore) GetByID(ctx context.Context, accountID string) (*account.Attributes, error) {
	return s.getByUniquePK(ctx, schema.UniquenessPK(schema.AccountID, accountID))
}

// GetByUserName performs a strongly-consistent GetItem on the userName secondary item.
func (s *AccountStore) GetByUserName(ctx context.Context, userName string) (*account.Attributes, error) {
	return s.getByUniquePK(ctx, schema.UniquenessPK(schema.UserName, userName))
}

// GetByEmail performs a strongly-consistent GetItem on the email secondary item.
func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*account.Attributes, error) {
	return s.getByUniquePK(ctx, schema.UniquenessPK(schema.Email, email))
}

// GetByPhone performs a strongly-consistent GetItem on the phone secondary item.
func (s *AccountStore) GetByPhone(ctx context.Context, phone string) (*account.Attributes, error) {
	return s.getByUniquePK(ctx, schema.UniquenessPK(schema.Phone, phone))
}

func (s *AccountStore) getByUniquePK(ctx context.Context, pk string) (*account.Attributes, error) {
	item, ok, err := s.getItem(ctx, pk, true)
	if err != nil || !ok {
		return nil, err
	}
	attrs, err := toAccountAttributes(item, s.jsonHandler, false)
	if err != nil {
		return nil, err
	}
	return &attrs, nil
}

func (s *AccountStore) getItem(ctx context.Context, pk string, consistent bool) (accountItem, bool, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(s.table.PhysicalName),
		Key:            map[string]types.AttributeValue{"pk": &types.AttributeValueMemberS{Value: pk}},
		ConsistentRead: aws.Bool(consistent),
	})
	if err != nil {
		return accountItem{}, false, err
	}
	if len(out.Item) == 0 {
		return accountItem{}, false, nil
	}
	item, err := unmarshalAccountItem(out.Item)
	if err != nil {
		return accountItem{}, false, err
	}
	return item, true, nil
}

// Update replaces newAttrs onto the observed account, retrying up to
// retryAttempts times on optimistic-concurrency conflicts.
func (s *AccountStore) Update(ctx context.Context, accountID string, newAttrs account.Attributes) (*account.Attributes, error) {
	return s.mutate(ctx, "Update", accountID, func(observed accountItem) (accountItem, error) {
		blob, err := s.jsonHandler.Marshal(newAttrs.Extra)
		if err != nil {
			return accountItem{}, apperrors.NewInternal("marshaling attributes blob", err)
		}
		next := observed
		next.UserName = newAttrs.UserName
		next.Email = newAttrs.Email
		next.Phone = newAttrs.Phone
		next.Active = newAttrs.Active
		next.Attributes = blob
		return next, nil
	})
}

// Patch applies a SCIM AttributeUpdate onto the observed account, silently
// ignoring any patch of "password".
func (s *AccountStore) Patch(ctx context.Context, accountID string, update account.AttributeUpdate) (*account.Attributes, error) {
	return s.mutate(ctx, "Patch", accountID, func(observed accountItem) (accountItem, error) {
		current, err := toAccountAttributes(observed, s.jsonHandler, true)
		if err != nil {
			return accountItem{}, err
		}
		patched := update.Apply(current)
		blob, err := s.jsonHandler.Marshal(patched.Extra)
		if err != nil {
			return accountItem{}, apperrors.NewInternal("marshaling attributes blob", err)
		}
		next := observed
		next.UserName = patched.UserName
		next.Email = patched.Email
		next.Phone = patched.Phone
		next.Active = patched.Active
		next.Attributes = blob
		return next, nil
	})
}

// mutate is the shared RetryLoop skeleton behind Update and Patch: read the
// main item, let compute derive the next fan-out payload (userName/email/
// phone/active/attributes only — password and identity fields are
// preserved), and submit the resulting transaction.
func (s *AccountStore) mutate(ctx context.Context, opName, accountID string, compute func(observed accountItem) (accountItem, error)) (*account.Attributes, error) {
	result, err := retry.Loop(ctx, s.retryAttempts, func(ctx context.Context, attemptNumber int) (retry.Outcome[*account.Attributes], error) {
		observed, ok, err := s.getItem(ctx, schema.UniquenessPK(schema.AccountID, accountID), true)
		if err != nil {
			return retry.Outcome[*account.Attributes]{}, err
		}
		if !ok {
			return retry.Success[*account.Attributes](nil), nil
		}

		next, err := compute(observed)
		if err != nil {
			return retry.Outcome[*account.Attributes]{}, err
		}
		next.Version = observed.Version + 1
		next.Updated = s.now().Unix()
		next.Created = observed.Created
		next.Password = observed.Password

		builder := newUpdateBuilder(s.table, accountID, observed.Version, next)
		builder.handleUniqueAttribute(schema.UserName, observed.UserName, next.UserName)
		builder.handleUniqueAttribute(schema.Email, observed.Email, next.Email)
		builder.handleUniqueAttribute(schema.Phone, observed.Phone, next.Phone)
		builder.replaceMain()

		writes, err := builder.build()
		if err != nil {
			return retry.Outcome[*account.Attributes]{}, err
		}

		if _, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: writes}); err != nil {
			if apperrors.IsConflict(err) {
				s.logger.Warn(opName+" conflicted, retrying",
					zap.String("accountId", accountID), zap.Int("version", observed.Version), zap.Int("attempt", attemptNumber))
				return retry.Failure[*account.Attributes](err), nil
			}
			s.logger.Error(opName+" failed", zap.String("accountId", accountID), zap.Error(err))
			return retry.Outcome[*account.Attributes]{}, err
		}

		attrs, err := toAccountAttributes(next, s.jsonHandler, false)
		if err != nil {
			return retry.Outcome[*account.Attributes]{}, err
		}
		s.logger.Debug(opName+" succeeded", zap.String("accountId", accountID), zap.Int("version", next.Version))
		s.publisher.Publish(ctx, account.NewUpdated(accountID, next.Version, time.Unix(next.Updated, 0)))
		return retry.Success(&attrs), nil
	})
	if err != nil {
		if apperrors.IsConflict(err) {
			s.logger.Error(opName+" retries exhausted", zap.String("accountId", accountID))
			s.metrics.RecordRetryExhausted(ctx, opName)
		}
		return nil, err
	}
	return result, nil
}

// Delete removes every fan-out item belonging to accountID. A conflict on
// the delete transaction is returned as is, without a further attempt.
// Deleting an absent account succeeds (idempotent).
func (s *AccountStore) Delete(ctx context.Context, accountID string) error {
	_, err := retry.Loop(ctx, s.retryAttempts, func(ctx context.Context, attemptNumber int) (retry.Outcome[struct{}], error) {
		observed, ok, err := s.getItem(ctx, schema.UniquenessPK(schema.AccountID, accountID), true)
		if err != nil {
			return retry.Outcome[struct{}]{}, err
		}
		if !ok {
			return retry.Success(struct{}{}), nil
		}

		var writes []types.TransactWriteItem
		appendDelete := func(attr *schema.AttributeDescriptor, value string) error {
			tw, err := buildDeleteItem(s.table, schema.UniquenessPK(attr, value), versionCondition(observed.Version, accountID))
			if err != nil {
				return err
			}
			writes = append(writes, tw)
			return nil
		}
		if err := appendDelete(schema.AccountID, accountID); err != nil {
			return retry.Outcome[struct{}]{}, err
		}
		if err := appendDelete(schema.UserName, observed.UserName); err != nil {
			return retry.Outcome[struct{}]{}, err
		}
		if observed.Email != "" {
			if err := appendDelete(schema.Email, observed.Email); err != nil {
				return retry.Outcome[struct{}]{}, err
			}
		}
		if observed.Phone != "" {
			if err := appendDelete(schema.Phone, observed.Phone); err != nil {
				return retry.Outcome[struct{}]{}, err
			}
		}

		if _, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: writes}); err != nil {
			// a condition failure here does not retry further;
			// the condition already expressed the observed state.
			if apperrors.IsConflict(err) {
				s.logger.Warn("delete conflicted", zap.String("accountId", accountID), zap.Int("version", observed.Version))
			} else {
				s.logger.Error("delete failed", zap.String("accountId", accountID), zap.Error(err))
			}
			return retry.Outcome[struct{}]{}, err
		}

		s.logger.Debug("account deleted", zap.String("accountId", accountID), zap.Int("version", observed.Version))
		s.publisher.Publish(ctx, account.NewDeleted(accountID, observed.Version, s.now()))
		return retry.Success(struct{}{}), nil
	})
	return err
}

// UpdatePassword replaces every fan-out item's password under the version
// precondition.
func (s *AccountStore) UpdatePassword(ctx context.Context, userName, newPassword string) error {
	_, err := retry.Loop(ctx, s.retryAttempts, func(ctx context.Context, attemptNumber int) (retry.Outcome[struct{}], error) {
		observed, ok, err := s.getItem(ctx, schema.UniquenessPK(schema.UserName, userName), true)
		if err != nil {
			return retry.Outcome[struct{}]{}, err
		}
		if !ok {
			return retry.Success(struct{}{}), nil
		}

		next := observed
		next.Password = newPassword
		next.Version = observed.Version + 1
		next.Updated = s.now().Unix()

		builder := newUpdateBuilder(s.table, observed.AccountID, observed.Version, next)
		builder.handleUniqueAttribute(schema.UserName, observed.UserName, next.UserName)
		builder.handleUniqueAttribute(schema.Email, observed.Email, next.Email)
		builder.handleUniqueAttribute(schema.Phone, observed.Phone, next.Phone)
		builder.replaceMain()

		writes, err := builder.build()
		if err != nil {
			return retry.Outcome[struct{}]{}, err
		}

		if _, err := s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: writes}); err != nil {
			if apperrors.IsConflict(err) {
				s.logger.Warn("password update conflicted, retrying",
					zap.String("accountId", observed.AccountID), zap.Int("version", observed.Version), zap.Int("attempt", attemptNumber))
				return retry.Failure[struct{}](err), nil
			}
			s.logger.Error("password update failed", zap.String("accountId", observed.AccountID), zap.Error(err))
			return retry.Outcome[struct{}]{}, err
		}
		s.logger.Debug("password updated", zap.String("accountId", observed.AccountID), zap.Int("version", next.Version))
		s.publisher.Publish(ctx, account.NewUpdated(observed.AccountID, next.Version, time.Unix(next.Updated, 0)))
		return retry.Success(struct{}{}), nil
	})
	if err != nil && apperrors.IsConflict(err) {
		s.logger.Error("password update retries exhausted", zap.String("userName", userName))
		s.metrics.RecordRetryExhausted(ctx, "UpdatePassword")
	}
	return err
}

// VerifyPassword looks up userName's password hash. It returns nil, nil
// when the account is absent or inactive; the DAP does not check the
// password itself.
func (s *AccountStore) VerifyPassword(ctx context.Context, userName string) (*account.Attributes, error) {
	item, ok, err := s.getItem(ctx, schema.UniquenessPK(schema.UserName, userName), true)
	if err != nil {
		return nil, err
	}
	if !ok || !item.Active {
		return nil, nil
	}
	attrs, err := toAccountAttributes(item, s.jsonHandler, true)
	if err != nil {
		return nil, err
	}
	return &attrs, nil
}

// GetAll plans query.Filter, executes it, applies the residual filter,
// deduplicates by accountId, sorts, pages, and projects.
func (s *AccountStore) GetAll(ctx context.Context, query ResourceQuery) ([]account.Attributes, error) {
	filter := query.Filter
	if filter == nil {
		filter = scimfilter.And{}
	}
	plan, err := queryplan.PlanWithLimit(s.table, filter, s.maxQueries)
	if err != nil {
		return nil, err
	}

	var seen = map[string]bool{}
	var results []account.Attributes

	collect := func(items []map[string]types.AttributeValue, residuals scimfilter.DNF) error {
		for _, av := range items {
			item, err := unmarshalAccountItem(av)
			if err != nil {
				return err
			}
			generic, err := toGenericItem(av)
			if err != nil {
				return err
			}
			holds, err := queryplan.FilterWith(residuals, generic)
			if err != nil {
				return err
			}
			if !holds {
				continue
			}
			if seen[item.AccountID] {
				continue
			}
			seen[item.AccountID] = true
			attrs, err := toAccountAttributes(item, s.jsonHandler, false)
			if err != nil {
				return err
			}
			results = append(results, attrs)
		}
		return nil
	}

	switch p := plan.(type) {
	case queryplan.UsingQueries:
		for _, group := range p.Queries {
			input, err := s.emitter.EmitQuery(s.table, group)
			if err != nil {
				return nil, err
			}
			seq := pagination.New(func(ctx context.Context, exclusiveStartKey map[string]types.AttributeValue) (pagination.Page, error) {
				input.ExclusiveStartKey = exclusiveStartKey
				out, err := s.client.Query(ctx, input)
				if err != nil {
					return pagination.Page{}, err
				}
				return pagination.Page{Items: out.Items, LastEvaluatedKey: out.LastEvaluatedKey}, nil
			})
			items, err := pagination.Drain(ctx, seq)
			if err != nil {
				return nil, err
			}
			if err := collect(items, group.Residuals); err != nil {
				return nil, err
			}
		}
	case queryplan.UsingScan:
		if !s.allowTableScans {
			return nil, apperrors.NewTableScanRequired("this filter requires a table scan, which is disabled")
		}
		s.metrics.RecordScanFallback(ctx, s.table.PhysicalName)
		mainItemsOnly := expression.Name("pk").BeginsWith(schema.UniquenessPK(schema.AccountID, ""))
		input, err := s.emitter.EmitScan(s.table, p.Expression, &mainItemsOnly)
		if err != nil {
			return nil, err
		}
		seq := pagination.New(func(ctx context.Context, exclusiveStartKey map[string]types.AttributeValue) (pagination.Page, error) {
			input.ExclusiveStartKey = exclusiveStartKey
			out, err := s.client.Scan(ctx, input)
			if err != nil {
				return pagination.Page{}, err
			}
			return pagination.Page{Items: out.Items, LastEvaluatedKey: out.LastEvaluatedKey}, nil
		})
		items, err := pagination.Drain(ctx, seq)
		if err != nil {
			return nil, err
		}
		if err := collect(items, p.Expression); err != nil {
			return nil, err
		}
	}

	paged, err := sortAndPage(query, results)
	if err != nil {
		return nil, err
	}
	return project(query, paged), nil
}
