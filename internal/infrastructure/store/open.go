package store

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/example/catalog-flipbook/internal/config"
	"github.com/example/catalog-flipbook/internal/logger"
)

// Open builds the Store selected by cfg. The returned close function releases
// any connection the backend holds.
func Open(ctx context.Context, cfg config.StoreConfig, log *logger.Logger) (Store, func() error, error) {
	noop := func() error { return nil }

	switch cfg.GetStoreBackend() {
	case config.BackendPostgres:
		db, err := ConnectPostgres(cfg.GetDatabaseURL())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		s := NewPostgresStore(db)
		if err := s.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		log.Info("using PostgreSQL local store")
		return s, db.Close, nil

	case config.BackendRedis:
		client, err := ConnectRedis(ctx, cfg.GetRedisURL())
		if err != nil {
			return nil, nil, err
		}
		log.Info("using Redis local store")
		return NewRedisStore(client, "catalog:"), client.Close, nil

	case config.BackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.GetAWSRegion()))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		log.Info("using DynamoDB local store", "table", cfg.GetDynamoTable())
		return NewDynamoStore(dynamodb.NewFromConfig(awsCfg), cfg.GetDynamoTable()), noop, nil

	case config.BackendMemory, "":
		log.Info("using in-memory local store")
		return NewMemoryStore(), noop, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", cfg.GetStoreBackend())
}
