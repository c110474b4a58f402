package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DefaultTable is the DynamoDB table used when none is configured.
const DefaultTable = "UserProfile"

// DynamoAPI is the subset of the DynamoDB client used by DynamoStore.
// *dynamodb.Client satisfies it.
type DynamoAPI interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// DynamoStore is a Store backed by one DynamoDB table with partition key "id".
// Attribute names follow the profile's JSON field names.
//
// The client is owned by the caller; Close is a no-op.
type DynamoStore struct {
	api   DynamoAPI
	table string
}

// DynamoOption configures DynamoStore behavior.
type DynamoOption func(*DynamoStore) error

// WithTable sets the table name (default: "UserProfile").
func WithTable(name string) DynamoOption {
	return func(s *DynamoStore) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return errors.New("profile: empty table name")
		}
		s.table = name
		return nil
	}
}

// NewDynamoStore constructs a DynamoDB-backed Store.
func NewDynamoStore(api DynamoAPI, opts ...DynamoOption) (*DynamoStore, error) {
	st := &DynamoStore{api: api, table: DefaultTable}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(st); err != nil {
			return nil, err
		}
	}
	if st.api == nil {
		return nil, errors.New("profile: nil dynamodb client")
	}
	return st, nil
}

// Close is a no-op because the client is owned by the caller.
func (s *DynamoStore) Close() error { return nil }

// Put replaces the item for p.ID.
func (s *DynamoStore) Put(ctx context.Context, p Profile) error {
	if p.ID == "" {
		return ErrInvalidInput
	}

	item, err := attributevalue.MarshalMapWithOptions(p, func(o *attributevalue.EncoderOptions) {
		o.TagKey = "json"
	})
	if err != nil {
		return fmt.Errorf("marshal profile: %w", err)
	}

	if _, err := s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put item: %w", err)
	}
	return nil
}

// Get reads the item for id. A missing item is reported as found=false.
func (s *DynamoStore) Get(ctx context.Context, id string) (Profile, bool, error) {
	out, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			"id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return Profile{}, false, fmt.Errorf("get item: %w", err)
	}
	if len(out.Item) == 0 {
		return Profile{}, false, nil
	}

	var p Profile
	if err := attributevalue.UnmarshalMapWithOptions(out.Item, &p, func(o *attributevalue.DecoderOptions) {
		o.TagKey = "json"
	}); err != nil {
		return Profile{}, false, fmt.Errorf("unmarshal profile: %w", err)
	}
	return p, true, nil
}
