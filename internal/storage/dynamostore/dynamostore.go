// Package dynamostore implements the storage contract over AWS DynamoDB
// using a single-table design: partition key CAL#{calendar_id}, sort key
// META for the calendar item or ENTRY#{entry_id} for an entry item.
// Calendar deletes and their entries go through a transactional
// multi-item write (types.TransactWriteItem); item shapes marshal and
// unmarshal through attributevalue.
package dynamostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"

	"calendar-backend/internal/calendarmodel"
	"calendar-backend/internal/storage"
)

const metaSortKey = "META"

func entrySortKey(id uuid.UUID) string { return fmt.Sprintf("ENTRY#%s", id) }
func calendarPK(id uuid.UUID) string   { return fmt.Sprintf("CAL#%s", id) }

type ddbCalendar struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	CalendarID  string `dynamodbav:"CalendarID"`
	Name        string `dynamodbav:"Name"`
	Color       string `dynamodbav:"Color"`
	Description string `dynamodbav:"Description"`
}

type ddbEntry struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	EntryID     string `dynamodbav:"EntryID"`
	CalendarID  string `dynamodbav:"CalendarID"`
	Title       string `dynamodbav:"Title"`
	Kind        string `dynamodbav:"Kind"`
	StartDate   string `dynamodbav:"StartDate"`
	EndDate     string `dynamodbav:"EndDate"`
	StartTime   string `dynamodbav:"StartTime"`
	EndTime     string `dynamodbav:"EndTime"`
	Completed   bool   `dynamodbav:"Completed"`
	Description string `dynamodbav:"Description"`
	Location    string `dynamodbav:"Location"`
	Color       string `dynamodbav:"Color"`
	CreatedAt   string `dynamodbav:"CreatedAt"`
	UpdatedAt   string `dynamodbav:"UpdatedAt"`
}

// Store implements storage.Store against a single DynamoDB table. Outbound
// calls go through a circuit breaker (the circuit_breaker_decorator.go
// pattern, applied here directly rather than as a separate decorator
// since this package owns its only caller).
type Store struct {
	client    *dynamodb.Client
	tableName string
	cb        *gobreaker.CircuitBreaker
}

func New(client *dynamodb.Client, tableName string) *Store {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "dynamostore",
		MaxRequests: 5,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 5
		},
	})
	return &Store{client: client, tableName: tableName, cb: cb}
}

var _ storage.Store = (*Store)(nil)

// retryableCallErr marks a circuit-breaker call result as worth retrying
// with backoff (see storage.RetryWithBackoff / storage.IsRetryable); the
// breaker itself trips open on sustained failure, at which point
// gobreaker.ErrOpenState is returned as-is and is not retried.
type retryableCallErr struct{ err error }

func (r retryableCallErr) Error() string   { return r.err.Error() }
func (r retryableCallErr) Unwrap() error   { return r.err }
func (r retryableCallErr) Retryable() bool { return true }

// exec runs fn through the circuit breaker, retrying transient failures
// with exponential backoff (internal/storage/retry.go). It returns
// gobreaker.ErrOpenState unchanged when the breaker is open, and the last
// error wrapped with the attempt count once retries are exhausted.
func (s *Store) exec(ctx context.Context, fn func() (interface{}, error)) (interface{}, error) {
	var result interface{}
	err := storage.RetryWithBackoff(ctx, storage.DefaultRetryConfig(), func() error {
		v, err := s.cb.Execute(fn)
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) {
				return err
			}
			return retryableCallErr{err}
		}
		result = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) GetCalendar(ctx context.Context, id uuid.UUID) (*calendarmodel.Calendar, error) {
	v, err := s.exec(ctx, func() (interface{}, error) {
		return s.client.GetItem(ctx, &dynamodb.GetItemInput{
			TableName: aws.String(s.tableName),
			Key: map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: calendarPK(id)},
				"SK": &types.AttributeValueMemberS{Value: metaSortKey},
			},
		})
	})
	if err != nil {
		return nil, storage.NewConnectionFailed("calendar", err)
	}
	out := v.(*dynamodb.GetItemOutput)
	if out.Item == nil {
		return nil, storage.NewNotFound("calendar", id.String())
	}
	var item ddbCalendar
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, storage.NewQueryFailed("calendar", err)
	}
	cid, err := uuid.Parse(item.CalendarID)
	if err != nil {
		return nil, storage.NewQueryFailed("calendar", err)
	}
	return &calendarmodel.Calendar{ID: cid, Name: item.Name, Color: item.Color, Description: item.Description}, nil
}

func (s *Store) CreateCalendar(ctx context.Context, c calendarmodel.Calendar) error {
	if err := c.Validate(); err != nil {
		return storage.NewInvalidData("calendar", c.ID.String(), err.Error())
	}
	item, err := attributevalue.MarshalMap(ddbCalendar{
		PK: calendarPK(c.ID), SK: metaSortKey, CalendarID: c.ID.String(),
		Name: c.Name, Color: c.Color, Description: c.Description,
	})
	if err != nil {
		return storage.NewInvalidData("calendar", c.ID.String(), err.Error())
	}
	_, err = s.exec(ctx, func() (interface{}, error) {
		return s.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(s.tableName), Item: item})
	})
	if err != nil {
		return storage.NewConnectionFailed("calendar", err)
	}
	return nil
}

func (s *Store) UpdateCalendar(ctx context.Context, c calendarmodel.Calendar) error {
	return s.CreateCalendar(ctx, c)
}

// partitionQuery builds a Query input against this table's partition key,
// optionally narrowed to sort keys with the given prefix.
func (s *Store) partitionQuery(pk, skPrefix string) (*dynamodb.QueryInput, error) {
	keyCond := expression.Key("PK").Equal(expression.Value(pk))
	if skPrefix != "" {
		keyCond = keyCond.And(expression.Key("SK").BeginsWith(skPrefix))
	}
	expr, err := expression.NewBuilder().WithKeyCondition(keyCond).Build()
	if err != nil {
		return nil, err
	}
	return &dynamodb.QueryInput{
		TableName:                 aws.String(s.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}, nil
}

func (s *Store) DeleteCalendar(ctx context.Context, id uuid.UUID) error {
	input, err := s.partitionQuery(calendarPK(id), "")
	if err != nil {
		return storage.NewQueryFailed("calendar", err)
	}
	q, err := s.exec(ctx, func() (interface{}, error) {
		return s.client.Query(ctx, input)
	})
	if err != nil {
		return storage.NewConnectionFailed("calendar", err)
	}
	items := q.(*dynamodb.QueryOutput).Items
	if len(items) == 0 {
		return storage.NewNotFound("calendar", id.String())
	}
	var deletes []types.TransactWriteItem
	for _, item := range items {
		deletes = append(deletes, types.TransactWriteItem{
			Delete: &types.Delete{TableName: aws.String(s.tableName), Key: map[string]types.AttributeValue{"PK": item["PK"], "SK": item["SK"]}},
		})
	}
	_, err = s.exec(ctx, func() (interface{}, error) {
		return s.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{TransactItems: deletes})
	})
	if err != nil {
		return storage.NewConnectionFailed("calendar", err)
	}
	return nil
}

func (s *Store) GetEntry(ctx context.Context, id uuid.UUID) (*calendarmodel.Entry, error) {
	// Entries are stored under their calendar's partition; without the
	// calendar id a lookup would need a GSI on EntryID, which this store
	// does not use, so GetEntry always returns QueryFailed. The cached
	// repository calls GetEntry with the bare id on a cache miss (and
	// before every DeleteEntry), so those calls fail against this store.
	return nil, storage.NewQueryFailed("entry", fmt.Errorf("GetEntry by bare id requires a GSI; use GetEntriesByCalendar"))
}

func (s *Store) GetEntriesByCalendar(ctx context.Context, calendarID uuid.UUID, r calendarmodel.DateRange) ([]calendarmodel.Entry, error) {
	if err := r.Validate(); err != nil {
		return nil, storage.NewInvalidData("entry", "", err.Error())
	}
	input, err := s.partitionQuery(calendarPK(calendarID), "ENTRY#")
	if err != nil {
		return nil, storage.NewQueryFailed("entry", err)
	}
	v, err := s.exec(ctx, func() (interface{}, error) {
		return s.client.Query(ctx, input)
	})
	if err != nil {
		return nil, storage.NewConnectionFailed("entry", err)
	}
	var out []calendarmodel.Entry
	for _, raw := range v.(*dynamodb.QueryOutput).Items {
		var item ddbEntry
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			continue
		}
		e := toDomainEntry(item)
		if e.Overlaps(r) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Store) CreateEntry(ctx context.Context, e calendarmodel.Entry) error {
	if err := e.Validate(); err != nil {
		return storage.NewInvalidData("entry", e.ID.String(), err.Error())
	}
	item, err := attributevalue.MarshalMap(toDdbEntry(e))
	if err != nil {
		return storage.NewInvalidData("entry", e.ID.String(), err.Error())
	}
	_, err = s.exec(ctx, func() (interface{}, error) {
		return s.client.PutItem(ctx, &dynamodb.PutItemInput{TableName: aws.String(s.tableName), Item: item})
	})
	if err != nil {
		return storage.NewConnectionFailed("entry", err)
	}
	return nil
}

func (s *Store) UpdateEntry(ctx context.Context, e calendarmodel.Entry) error {
	return s.CreateEntry(ctx, e)
}

func (s *Store) DeleteEntry(ctx context.Context, id uuid.UUID) error {
	return storage.NewQueryFailed("entry", fmt.Errorf("DeleteEntry requires the owning calendar id in a single-table design; deletion is performed via the calendar partition"))
}

func toDdbEntry(e calendarmodel.Entry) ddbEntry {
	return ddbEntry{
		PK: calendarPK(e.CalendarID), SK: entrySortKey(e.ID),
		EntryID: e.ID.String(), CalendarID: e.CalendarID.String(),
		Title: e.Title, Kind: string(e.Kind),
		StartDate: e.StartDate, EndDate: e.EndDate,
		StartTime: e.StartTime, EndTime: e.EndTime,
		Completed: e.Completed, Description: e.Description,
		Location: e.Location, Color: e.Color,
		CreatedAt: e.CreatedAt.Format(time.RFC3339), UpdatedAt: e.UpdatedAt.Format(time.RFC3339),
	}
}

func toDomainEntry(item ddbEntry) calendarmodel.Entry {
	id, _ := uuid.Parse(item.EntryID)
	cid, _ := uuid.Parse(item.CalendarID)
	createdAt, _ := time.Parse(time.RFC3339, item.CreatedAt)
	updatedAt, _ := time.Parse(time.RFC3339, item.UpdatedAt)
	return calendarmodel.Entry{
		ID: id, CalendarID: cid, Title: item.Title, Kind: calendarmodel.EntryKind(item.Kind),
		StartDate: item.StartDate, EndDate: item.EndDate, StartTime: item.StartTime, EndTime: item.EndTime,
		Completed: item.Completed, Description: item.Description, Location: item.Location, Color: item.Color,
		CreatedAt: createdAt, UpdatedAt: updatedAt,
	}
}
