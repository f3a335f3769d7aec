package dynamodb

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	awsv2dynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsv2types "github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	awsv2xray "github.com/aws/aws-xray-sdk-go/instrumentation/awsv2"
	"github.com/aws/aws-xray-sdk-go/xray"
)

// DynamoDB caps BatchWriteItem at 25 requests.
const batchLimit = 25

type api interface {
	GetItem(ctx context.Context, in *awsv2dynamodb.GetItemInput, opts ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, in *awsv2dynamodb.PutItemInput, opts ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.PutItemOutput, error)
	BatchWriteItem(ctx context.Context, in *awsv2dynamodb.BatchWriteItemInput, opts ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.BatchWriteItemOutput, error)
	Scan(ctx context.Context, in *awsv2dynamodb.ScanInput, opts ...func(*awsv2dynamodb.Options)) (*awsv2dynamodb.ScanOutput, error)
}

// TokenCache stores the token registry in a single table keyed by PK. The
// ExpiresAt attribute is meant to be the table's TTL attribute; since DynamoDB
// removes expired items lazily, reads also treat them as absent.
type TokenCache struct {
	db        api
	tableName string
	now       func() time.Time
}

type item struct {
	PK        string `dynamodbav:"PK"`
	Value     []byte `dynamodbav:"Value"`
	ExpiresAt int64  `dynamodbav:"ExpiresAt,omitempty"`
}

func NewClient(ctx context.Context, region string) (*awsv2dynamodb.Client, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, err
	}
	awsv2xray.AWSV2Instrumentor(&cfg.APIOptions)
	return awsv2dynamodb.NewFromConfig(cfg), nil
}

func NewTokenCache(client *awsv2dynamodb.Client, tableName string) *TokenCache {
	return newTokenCache(client, tableName)
}

func newTokenCache(db api, tableName string) *TokenCache {
	return &TokenCache{db: db, tableName: tableName, now: time.Now}
}

func keyOf(key string) map[string]awsv2types.AttributeValue {
	return map[string]awsv2types.AttributeValue{
		"PK": &awsv2types.AttributeValueMemberS{Value: key},
	}
}

func (c *TokenCache) live(it item) bool {
	return it.ExpiresAt == 0 || c.now().Unix() < it.ExpiresAt
}

func (c *TokenCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var out *awsv2dynamodb.GetItemOutput
	err := xray.Capture(ctx, "DynamoDB.GetToken", func(ctx context.Context) error {
		var e error
		out, e = c.db.GetItem(ctx, &awsv2dynamodb.GetItemInput{
			TableName:      aws.String(c.tableName),
			Key:            keyOf(key),
			ConsistentRead: aws.Bool(true),
		})
		return e
	})
	if err != nil {
		return nil, false, err
	}
	if out.Item == nil {
		return nil, false, nil
	}
	var it item
	if err := attributevalue.UnmarshalMap(out.Item, &it); err != nil {
		return nil, false, err
	}
	if !c.live(it) {
		return nil, false, nil
	}
	return it.Value, true, nil
}

func (c *TokenCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	it := item{PK: key, Value: value}
	if ttl > 0 {
		it.ExpiresAt = c.now().Add(ttl).Unix()
	}
	av, err := attributevalue.MarshalMap(it)
	if err != nil {
		return err
	}
	return xray.Capture(ctx, "DynamoDB.PutToken", func(ctx context.Context) error {
		_, err := c.db.PutItem(ctx, &awsv2dynamodb.PutItemInput{
			TableName: aws.String(c.tableName),
			Item:      av,
		})
		return err
	})
}

func (c *TokenCache) Exists(ctx context.Context, key string) (bool, error) {
	_, found, err := c.Get(ctx, key)
	return found, err
}

func (c *TokenCache) Delete(ctx context.Context, keys ...string) error {
	for start := 0; start < len(keys); start += batchLimit {
		end := min(start+batchLimit, len(keys))
		requests := make([]awsv2types.WriteRequest, 0, end-start)
		for _, k := range keys[start:end] {
			requests = append(requests, awsv2types.WriteRequest{
				DeleteRequest: &awsv2types.DeleteRequest{Key: keyOf(k)},
			})
		}
		if err := c.deleteBatch(ctx, requests); err != nil {
			return err
		}
	}
	return nil
}

func (c *TokenCache) deleteBatch(ctx context.Context, requests []awsv2types.WriteRequest) error {
	return xray.Capture(ctx, "DynamoDB.DeleteTokens", func(ctx context.Context) error {
		pending := map[string][]awsv2types.WriteRequest{c.tableName: requests}
		for len(pending[c.tableName]) > 0 {
			out, err := c.db.BatchWriteItem(ctx, &awsv2dynamodb.BatchWriteItemInput{RequestItems: pending})
			if err != nil {
				return err
			}
			pending = out.UnprocessedItems
		}
		return nil
	})
}

// Scan supports the prefix patterns the registry uses ("USER:<id>_JWT:*").
func (c *TokenCache) Scan(ctx context.Context, pattern string) ([]string, error) {
	prefix, err := patternPrefix(pattern)
	if err != nil {
		return nil, err
	}
	var keys []string
	err = xray.Capture(ctx, "DynamoDB.ScanTokens", func(ctx context.Context) error {
		paginator := awsv2dynamodb.NewScanPaginator(c.db, &awsv2dynamodb.ScanInput{
			TableName:            aws.String(c.tableName),
			FilterExpression:     aws.String("begins_with(PK, :p) AND (attribute_not_exists(ExpiresAt) OR ExpiresAt > :now)"),
			ProjectionExpression: aws.String("PK"),
			ExpressionAttributeValues: map[string]awsv2types.AttributeValue{
				":p":   &awsv2types.AttributeValueMemberS{Value: prefix},
				":now": &awsv2types.AttributeValueMemberN{Value: strconv.FormatInt(c.now().Unix(), 10)},
			},
		})
		for paginator.HasMorePages() {
			page, err := paginator.NextPage(ctx)
			if err != nil {
				return err
			}
			for _, raw := range page.Items {
				var it item
				if err := attributevalue.UnmarshalMap(raw, &it); err != nil {
					return err
				}
				keys = append(keys, it.PK)
			}
		}
		return nil
	})
	return keys, err
}

func patternPrefix(pattern string) (string, error) {
	prefix, ok := strings.CutSuffix(pattern, "*")
	if !ok || prefix == "" || strings.ContainsAny(prefix, "*?[") {
		return "", fmt.Errorf("unsupported scan pattern %q", pattern)
	}
	return prefix, nil
}
