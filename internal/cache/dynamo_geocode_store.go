package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/bbernstein/dockfinder/backend-go/internal/config"
	"github.com/bbernstein/dockfinder/backend-go/internal/models"
	"github.com/rs/zerolog/log"
)

// GeocodeStore persists geocoding answers beyond the life of one process
type GeocodeStore interface {
	GetGeocode(ctx context.Context, address string) (*models.GeocodeRecord, error)
	SaveGeocode(ctx context.Context, record models.GeocodeRecord) error
}

// DynamoGeocodeStore handles storing geocoding answers in DynamoDB
type DynamoGeocodeStore struct {
	client    DynamoDBClient
	tableName string
	ttl       time.Duration
	clock     clock
}

var _ GeocodeStore = (*DynamoGeocodeStore)(nil)

func NewDynamoGeocodeStore(client DynamoDBClient, tableName string, cfg *config.CacheConfig) *DynamoGeocodeStore {
	if cfg == nil {
		cfg = config.GetCacheConfig()
	}
	return &DynamoGeocodeStore{
		client:    client,
		tableName: tableName,
		ttl:       cfg.GetGeocodeDynamoTTL(),
		clock:     systemClock{},
	}
}

// GetGeocode returns the stored answer for address, or nil when there is none or it expired
func (s *DynamoGeocodeStore) GetGeocode(ctx context.Context, address string) (*models.GeocodeRecord, error) {
	result, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.tableName),
		Key: map[string]types.AttributeValue{
			"address": &types.AttributeValueMemberS{Value: address},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("getting geocode from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	var record models.GeocodeRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("unmarshaling geocode record: %w", err)
	}

	if s.clock.Now().Unix() >= record.TTL {
		log.Debug().Str("address", address).Msg("Stored geocode expired")
		return nil, nil
	}

	return &record, nil
}

// SaveGeocode stores an answer with a fresh TTL
func (s *DynamoGeocodeStore) SaveGeocode(ctx context.Context, record models.GeocodeRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("invalid geocode record: %w", err)
	}

	now := s.clock.Now().Unix()
	record.LastUpdated = now
	record.TTL = now + int64(s.ttl.Seconds())

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshaling geocode record: %w", err)
	}

	if _, err := s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.tableName),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("putting geocode in DynamoDB: %w", err)
	}

	log.Debug().Str("address", record.Address).Bool("found", record.Found).Msg("Saved geocode to DynamoDB")
	return nil
}
