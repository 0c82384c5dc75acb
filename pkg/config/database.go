package config

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/anonto42/aora/backend/internal/docstore"
	"github.com/anonto42/aora/backend/internal/storage"
	"github.com/anonto42/aora/backend/pkg/firebase"
)

// DocumentStore is a docstore.Store that owns a connection
type DocumentStore interface {
	docstore.Store
	Close() error
}

type memoryStore struct{ *docstore.MemoryStore }

func (memoryStore) Close() error { return nil }

// StorageGateway is a storage.Gateway that may own a client connection
type StorageGateway interface {
	storage.Gateway
	Close() error
}

// unclosed adapts gateways whose clients hold nothing to release
type unclosed struct{ storage.Gateway }

func (unclosed) Close() error { return nil }

// OpenDocumentStore connects the document store selected by DOCSTORE_BACKEND
func OpenDocumentStore(ctx context.Context, cfg *Config, app *firebase.App, logger *zap.Logger) (DocumentStore, error) {
	switch cfg.DocstoreBackend {
	case "firestore":
		if app == nil {
			return nil, fmt.Errorf("firestore backend requires firebase")
		}
		client, err := app.Firestore(ctx)
		if err != nil {
			return nil, err
		}
		logger.Info("connected to firestore")
		return docstore.NewFirestoreStore(client), nil

	case "mongo":
		client, err := initMongo(ctx, cfg.MongoURI)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		logger.Info("connected to mongodb", zap.String("database", cfg.MongoDatabase))
		return docstore.NewMongoStore(client, cfg.MongoDatabase), nil

	case "postgres":
		db, err := initGorm(postgres.Open(cfg.PostgresURL))
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
		}
		logger.Info("connected to postgresql")
		return docstore.NewGormStore(db)

	case "sqlite":
		db, err := initGorm(sqlite.Open(cfg.SQLitePath))
		if err != nil {
			return nil, fmt.Errorf("failed to open SQLite at %s: %w", cfg.SQLitePath, err)
		}
		logger.Info("opened sqlite", zap.String("path", cfg.SQLitePath))
		return docstore.NewGormStore(db)

	case "memory":
		logger.Warn("using in-memory document store, data is lost on restart")
		return memoryStore{docstore.NewMemoryStore()}, nil
	}
	return nil, fmt.Errorf("unknown DOCSTORE_BACKEND %q", cfg.DocstoreBackend)
}

// OpenStorageGateway builds the object storage gateway selected by STORAGE_BACKEND
func OpenStorageGateway(ctx context.Context, cfg *Config, app *firebase.App, logger *zap.Logger) (StorageGateway, error) {
	switch cfg.StorageBackend {
	case "firebase":
		if app == nil {
			return nil, fmt.Errorf("firebase storage backend requires firebase")
		}
		client, err := app.StorageClient(ctx)
		if err != nil {
			return nil, err
		}
		logger.Info("using firebase storage", zap.String("bucket", cfg.FirebaseStorageBucket))
		return storage.NewFirebaseGateway(client, cfg.FirebaseStorageBucket), nil

	case "s3":
		gw, err := storage.NewS3Gateway(storage.S3Config{
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			UseSSL:    cfg.S3UseSSL,
			Bucket:    cfg.S3Bucket,
			PublicURL: cfg.S3PublicURL,
		})
		if err != nil {
			return nil, err
		}
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := gw.EnsureBucket(ctx); err != nil {
			return nil, err
		}
		logger.Info("using s3 storage", zap.String("endpoint", cfg.S3Endpoint), zap.String("bucket", cfg.S3Bucket))
		return unclosed{gw}, nil

	case "memory":
		logger.Warn("using in-memory object storage, uploads are lost on restart")
		return unclosed{storage.NewMemoryGateway()}, nil
	}
	return nil, fmt.Errorf("unknown STORAGE_BACKEND %q", cfg.StorageBackend)
}

// initGorm opens a GORM connection and pings it
func initGorm(dialector gorm.Dialector) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormlogger.Default.LogMode(gormlogger.Warn)})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err = sqlDB.Ping(); err != nil {
		return nil, err
	}
	return db, nil
}

// initMongo initializes the MongoDB connection
func initMongo(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	// Ping the primary to verify connection
	if err = client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}
