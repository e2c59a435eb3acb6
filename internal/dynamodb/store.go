// Package dynamodb implements docstore.Client on Amazon DynamoDB.
//
// Each collection is its own table, named by the configured prefix plus the
// collection name, with a string partition key "id". Equality queries run as
// filtered scans; ordering and limits are applied after the scan.
package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/rpggio/chessnote/internal/docstore"
)

const keyAttr = "id"

// API is the subset of the DynamoDB client the store uses
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	UpdateItem(ctx context.Context, in *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	Scan(ctx context.Context, in *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
}

// Options configures the connection
type Options struct {
	Region      string
	Endpoint    string
	TablePrefix string
}

// Store implements docstore.Client
type Store struct {
	api    API
	prefix string
	now    func() time.Time
	newID  func() string
}

// New creates a store over an existing client
func New(api API, tablePrefix string) *Store {
	return &Store{
		api:    api,
		prefix: tablePrefix,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// NewFromConfig loads the default AWS configuration and creates a store.
// A non-empty Endpoint points the client at a local DynamoDB.
func NewFromConfig(ctx context.Context, opts Options) (*Store, error) {
	var loadOpts []func(*awsconfig.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(opts.Region))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(cfg, func(o *dynamodb.Options) {
		if opts.Endpoint != "" {
			o.BaseEndpoint = aws.String(opts.Endpoint)
		}
	})

	return New(client, opts.TablePrefix), nil
}

func (s *Store) table(collection string) *string {
	return aws.String(s.prefix + collection)
}

func itemKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		keyAttr: &types.AttributeValueMemberS{Value: id},
	}
}

// Add stores a new document under a generated id
func (s *Store) Add(ctx context.Context, collection string, fields docstore.Fields) (string, error) {
	id := s.newID()

	item, err := attributevalue.MarshalMap(map[string]any(docstore.ResolveTimestamps(fields, s.now())))
	if err != nil {
		return "", fmt.Errorf("failed to marshal document: %w", err)
	}
	item[keyAttr] = &types.AttributeValueMemberS{Value: id}

	_, err = s.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           s.table(collection),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(id)"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put document: %w", err)
	}

	return id, nil
}

// Get retrieves a document by id
func (s *Store) Get(ctx context.Context, collection, id string) (*docstore.Document, error) {
	result, err := s.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      s.table(collection),
		Key:            itemKey(id),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	if result.Item == nil {
		return nil, docstore.ErrNotFound
	}

	return decodeItem(result.Item)
}

// Update sets the given top-level fields on an existing document
func (s *Store) Update(ctx context.Context, collection, id string, fields docstore.Fields) error {
	if len(fields) == 0 {
		_, err := s.Get(ctx, collection, id)
		return err
	}

	resolved := docstore.ResolveTimestamps(fields, s.now())
	names := make([]string, 0, len(resolved))
	for name := range resolved {
		if name == keyAttr {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	var update expression.UpdateBuilder
	for _, name := range names {
		update = update.Set(expression.Name(name), expression.Value(resolved[name]))
	}

	expr, err := expression.NewBuilder().
		WithUpdate(update).
		WithCondition(expression.Name(keyAttr).AttributeExists()).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build update expression: %w", err)
	}

	_, err = s.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 s.table(collection),
		Key:                       itemKey(id),
		UpdateExpression:          expr.Update(),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return docstore.ErrNotFound
		}
		return fmt.Errorf("failed to update document: %w", err)
	}

	return nil
}

// Delete removes a document
func (s *Store) Delete(ctx context.Context, collection, id string) error {
	_, err := s.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           s.table(collection),
		Key:                 itemKey(id),
		ConditionExpression: aws.String("attribute_exists(id)"),
	})
	if err != nil {
		var ccf *types.ConditionalCheckFailedException
		if errors.As(err, &ccf) {
			return docstore.ErrNotFound
		}
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// Query scans the collection table with the query's equality filters
func (s *Store) Query(ctx context.Context, q docstore.Query) ([]docstore.Document, error) {
	input := &dynamodb.ScanInput{
		TableName:      s.table(q.Collection),
		ConsistentRead: aws.Bool(true),
	}

	if cond, ok := filterCondition(q.Filters); ok {
		expr, err := expression.NewBuilder().WithFilter(cond).Build()
		if err != nil {
			return nil, fmt.Errorf("failed to build filter expression: %w", err)
		}
		input.FilterExpression = expr.Filter()
		input.ExpressionAttributeNames = expr.Names()
		input.ExpressionAttributeValues = expr.Values()
	}

	var docs []docstore.Document
	paginator := dynamodb.NewScanPaginator(s.api, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", q.Collection, err)
		}
		for _, item := range page.Items {
			doc, err := decodeItem(item)
			if err != nil {
				return nil, err
			}
			docs = append(docs, *doc)
		}
	}

	if q.OrderBy != "" {
		orderDocuments(docs, q.OrderBy, q.Descending)
	}
	if q.Limit > 0 && len(docs) > q.Limit {
		docs = docs[:q.Limit]
	}

	return docs, nil
}

func filterCondition(filters []docstore.Filter) (expression.ConditionBuilder, bool) {
	var cond expression.ConditionBuilder
	for i, f := range filters {
		name := expression.Name(f.Field)
		var c expression.ConditionBuilder
		if f.Value == nil {
			c = name.AttributeNotExists().Or(name.AttributeType(expression.Null))
		} else {
			c = name.Equal(expression.Value(f.Value))
		}
		if i == 0 {
			cond = c
		} else {
			cond = cond.And(c)
		}
	}
	return cond, len(filters) > 0
}

func decodeItem(item map[string]types.AttributeValue) (*docstore.Document, error) {
	fields := docstore.Fields{}
	if err := attributevalue.UnmarshalMap(item, &fields); err != nil {
		return nil, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	id, _ := fields[keyAttr].(string)
	delete(fields, keyAttr)

	return &docstore.Document{ID: id, Fields: docstore.NormalizeTimestamps(fields)}, nil
}
