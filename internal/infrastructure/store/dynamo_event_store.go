package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"

	"github.com/example/visitor-access/internal/domain/visitor"
)

// counterKey is the reserved partition holding the record id counter item.
const counterKey = "RECORD_COUNTER"

// DynamoEventStore stores events in DynamoDB. The table is keyed by
// aggregate_id (partition) and record_id (sort); GSI1 spans all events for
// FindAll. Record ids come from an atomic counter item, so they stay
// monotonic across aggregates. Downstream consumers read the table's
// DynamoDB stream instead of Kafka.
type DynamoEventStore struct {
	client    *dynamodb.Client
	tableName string
	now       Clock
}

// dynamoEvent is the DynamoDB item layout. The discriminator attribute keeps
// the same name and values as the Postgres event_type column.
type dynamoEvent struct {
	AggregateID string `dynamodbav:"aggregate_id"`
	RecordID    int64  `dynamodbav:"record_id"`
	EventType   string `dynamodbav:"event_type"`
	OccurredAt  string `dynamodbav:"occurred_at"`
	Name        string `dynamodbav:"name,omitempty"`
	ExpireAt    string `dynamodbav:"expire_at,omitempty"`
	DoorID      string `dynamodbav:"door_id,omitempty"`
	GSI1PK      string `dynamodbav:"gsi1pk"`
}

func NewDynamoEventStore(client *dynamodb.Client, tableName string) *DynamoEventStore {
	return &DynamoEventStore{client: client, tableName: tableName, now: UTCNow}
}

// WithClock replaces the store's time source. Used by tests.
func (es *DynamoEventStore) WithClock(now Clock) *DynamoEventStore {
	es.now = now
	return es
}

// Append allocates the next record id, stamps occurred_at when unset and
// writes the event with a conditional put so a duplicate id can never land.
func (es *DynamoEventStore) Append(ctx context.Context, event visitor.DomainEvent) (visitor.DomainEvent, error) {
	if event == nil {
		return nil, ErrNilEvent
	}

	occurredAt := event.OccurredAt()
	if occurredAt.IsZero() {
		occurredAt = es.now()
	}

	recordID, err := es.nextRecordID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate record id: %w", err)
	}

	item := dynamoEvent{
		AggregateID: event.AggregateID().String(),
		RecordID:    recordID,
		EventType:   event.Kind(),
		OccurredAt:  occurredAt.Format(time.RFC3339Nano),
		GSI1PK:      "EVENTS",
	}
	switch e := event.(type) {
	case *visitor.VisitorRegistered:
		item.Name = e.Name()
		item.ExpireAt = e.ExpireAt().Format(time.RFC3339Nano)
	case *visitor.EnteredTheDoor:
		item.DoorID = e.DoorID()
	case *visitor.PassCardDelivered:
	default:
		return nil, fmt.Errorf("unsupported event variant %q", event.Kind())
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}

	_, err = es.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(es.tableName),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(aggregate_id) AND attribute_not_exists(record_id)"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to put event: %w", err)
	}

	return rehydrate(event, recordID, occurredAt)
}

// nextRecordID atomically bumps the counter item and returns the new value.
func (es *DynamoEventStore) nextRecordID(ctx context.Context) (int64, error) {
	result, err := es.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(es.tableName),
		Key: map[string]types.AttributeValue{
			"aggregate_id": &types.AttributeValueMemberS{Value: counterKey},
			"record_id":    &types.AttributeValueMemberN{Value: "0"},
		},
		UpdateExpression: aws.String("ADD last_id :one"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, err
	}

	var updated struct {
		LastID int64 `dynamodbav:"last_id"`
	}
	if err := attributevalue.UnmarshalMap(result.Attributes, &updated); err != nil {
		return 0, err
	}
	return updated.LastID, nil
}

// FindAll returns every stored event via GSI1, in record id order.
func (es *DynamoEventStore) FindAll(ctx context.Context) ([]visitor.DomainEvent, error) {
	result, err := es.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(es.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "EVENTS"},
		},
		ScanIndexForward: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	return es.unmarshalEvents(result.Items)
}

func (es *DynamoEventStore) unmarshalEvents(items []map[string]types.AttributeValue) ([]visitor.DomainEvent, error) {
	events := make([]visitor.DomainEvent, 0, len(items))
	for _, item := range items {
		var de dynamoEvent
		if err := attributevalue.UnmarshalMap(item, &de); err != nil {
			return nil, fmt.Errorf("failed to unmarshal event: %w", err)
		}

		aggregateID, err := uuid.Parse(de.AggregateID)
		if err != nil {
			return nil, fmt.Errorf("invalid aggregate id %q: %w", de.AggregateID, err)
		}
		occurredAt, _ := time.Parse(time.RFC3339Nano, de.OccurredAt)

		switch de.EventType {
		case visitor.EventVisitorRegistered:
			expireAt, _ := time.Parse(time.RFC3339Nano, de.ExpireAt)
			events = append(events, visitor.RehydrateVisitorRegistered(de.RecordID, aggregateID, occurredAt, de.Name, expireAt))
		case visitor.EventPassCardDelivered:
			events = append(events, visitor.RehydratePassCardDelivered(de.RecordID, aggregateID, occurredAt))
		case visitor.EventEnteredTheDoor:
			events = append(events, visitor.RehydrateEnteredTheDoor(de.RecordID, aggregateID, occurredAt, de.DoorID))
		}
	}
	return events, nil
}

// DeleteAll removes every event and resets the counter. Test fixtures only.
func (es *DynamoEventStore) DeleteAll(ctx context.Context) error {
	result, err := es.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(es.tableName),
		IndexName:              aws.String("GSI1"),
		KeyConditionExpression: aws.String("gsi1pk = :pk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "EVENTS"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to query events: %w", err)
	}

	for _, item := range result.Items {
		_, err := es.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
			TableName: aws.String(es.tableName),
			Key: map[string]types.AttributeValue{
				"aggregate_id": item["aggregate_id"],
				"record_id":    item["record_id"],
			},
		})
		if err != nil {
			return fmt.Errorf("failed to delete event: %w", err)
		}
	}

	_, err = es.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(es.tableName),
		Key: map[string]types.AttributeValue{
			"aggregate_id": &types.AttributeValueMemberS{Value: counterKey},
			"record_id":    &types.AttributeValueMemberN{Value: "0"},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to reset record counter: %w", err)
	}
	return nil
}
