package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/tendant/simple-site/internal/logging"
	"github.com/tendant/simple-site/pkg/simplesite"
	"github.com/tendant/simple-site/pkg/simplesite/repo/dynamo"
	"github.com/tendant/simple-site/pkg/simplesite/repo/memory"
	repopg "github.com/tendant/simple-site/pkg/simplesite/repo/postgres"
	reporedis "github.com/tendant/simple-site/pkg/simplesite/repo/redis"
	fsstorage "github.com/tendant/simple-site/pkg/simplesite/storage/fs"
	memorystorage "github.com/tendant/simple-site/pkg/simplesite/storage/memory"
	s3storage "github.com/tendant/simple-site/pkg/simplesite/storage/s3"
	"github.com/tendant/simple-site/pkg/simplesite/urlstrategy"
)

// Repository backends
const (
	RepositoryMemory   = "memory"
	RepositoryDynamoDB = "dynamodb"
	RepositoryRedis    = "redis"
	RepositoryPostgres = "postgres"
)

// Storage backends
const (
	StorageS3     = "s3"
	StorageFS     = "fs"
	StorageMemory = "memory"
)

// Option applies configuration to a ServerConfig instance.
type Option func(*ServerConfig) error

// Load constructs a ServerConfig by applying the supplied options in order on
// top of library defaults.
func Load(opts ...Option) (*ServerConfig, error) {
	cfg := defaults()

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults() ServerConfig {
	return ServerConfig{
		Port:           "8080",
		Environment:    "development",
		Repository:     RepositoryMemory,
		SitesTable:     dynamo.DefaultSitesTable,
		PagesTable:     dynamo.DefaultPagesTable,
		Redis:          reporedis.Config{Address: "localhost:6379"},
		RedisKeyPrefix: reporedis.DefaultKeyPrefix,
		AutoMigrate:    true,
		Storage:        StorageS3,
		AWSRegion:      "us-east-1",
		Log:            logging.Config{Level: "info"},
	}
}

// ServerConfig represents configuration for the site builder service. The
// env tags name the variables WithEnv reads; a variable that is not set
// leaves the field alone.
type ServerConfig struct {
	Port        string `env:"PORT"`
	Environment string `env:"ENVIRONMENT"` // development, production, testing

	// Repository configuration
	Repository       string `env:"REPOSITORY"` // memory, dynamodb, redis, postgres
	SitesTable       string `env:"SITES_TABLE"`
	PagesTable       string `env:"PAGES_TABLE"`
	DynamoDBEndpoint string `env:"DYNAMODB_ENDPOINT"`
	Redis            reporedis.Config
	RedisKeyPrefix   string `env:"REDIS_KEY_PREFIX"`
	DatabaseURL      string `env:"DATABASE_URL"`
	AutoMigrate      bool   `env:"AUTO_MIGRATE"`

	// Storage configuration
	Storage         string `env:"STORAGE"` // s3, fs, memory
	Bucket          string `env:"BUILDER_BUCKET"`
	AWSRegion       string `env:"AWS_REGION"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`
	S3Endpoint      string `env:"S3_ENDPOINT"`
	S3UsePathStyle  bool   `env:"S3_USE_PATH_STYLE"`
	PublicBaseURL   string `env:"PUBLIC_BASE_URL"`
	URLStrategy     string `env:"URL_STRATEGY"` // virtual-host, path-style, cdn; empty picks one
	FSBaseDir       string `env:"FS_BASE_DIR"`
	FSURLPrefix     string `env:"FS_URL_PREFIX"`

	Log logging.Config
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}

	switch c.Repository {
	case RepositoryMemory:
	case RepositoryDynamoDB:
		if c.SitesTable == "" || c.PagesTable == "" {
			return errors.New("sites and pages tables are required when using dynamodb")
		}
	case RepositoryRedis:
		if c.Redis.Address == "" {
			return errors.New("redis address is required when using redis")
		}
	case RepositoryPostgres:
		if c.DatabaseURL == "" {
			return errors.New("database_url is required when using postgres")
		}
	default:
		return fmt.Errorf("repository must be one of memory, dynamodb, redis, postgres, got: %s", c.Repository)
	}

	switch c.Storage {
	case StorageS3, StorageMemory:
	case StorageFS:
		if c.FSBaseDir == "" {
			return errors.New("fs_base_dir is required when using fs storage")
		}
	default:
		return fmt.Errorf("storage must be one of s3, fs, memory, got: %s", c.Storage)
	}

	if c.URLStrategy != "" {
		if _, err := c.urlStrategy(); err != nil {
			return err
		}
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}

	return nil
}

// BuildService creates a Service from the configuration. extra options are
// applied after the configured repositories and store, so callers can add a
// logger or publish observer. The returned cleanup releases any connections
// opened here and is never nil.
func (c *ServerConfig) BuildService(ctx context.Context, extra ...simplesite.Option) (simplesite.Service, func(), error) {
	sites, pages, cleanup, err := c.buildRepositories(ctx)
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to build repositories: %w", err)
	}

	store, err := c.buildBlobStore(ctx)
	if err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("failed to build %s storage: %w", c.Storage, err)
	}

	options := []simplesite.Option{
		simplesite.WithSiteRepository(sites),
		simplesite.WithPageRepository(pages),
		simplesite.WithBlobStore(store),
	}
	options = append(options, extra...)

	svc, err := simplesite.New(options...)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return svc, cleanup, nil
}

func (c *ServerConfig) buildRepositories(ctx context.Context) (simplesite.SiteRepository, simplesite.PageRepository, func(), error) {
	noop := func() {}

	switch c.Repository {
	case RepositoryMemory:
		return memory.NewSiteRepository(), memory.NewPageRepository(), noop, nil

	case RepositoryDynamoDB:
		client, err := dynamo.NewClient(ctx, dynamo.Config{
			Region:          c.AWSRegion,
			Endpoint:        c.DynamoDBEndpoint,
			AccessKeyID:     c.AccessKeyID,
			SecretAccessKey: c.SecretAccessKey,
		})
		if err != nil {
			return nil, nil, noop, err
		}
		return dynamo.NewSiteRepository(client, c.SitesTable), dynamo.NewPageRepository(client, c.PagesTable), noop, nil

	case RepositoryRedis:
		client, err := reporedis.NewClient(c.Redis)
		if err != nil {
			return nil, nil, noop, err
		}
		cleanup := func() { _ = client.Close() }
		return reporedis.NewSiteRepository(client, c.RedisKeyPrefix), reporedis.NewPageRepository(client, c.RedisKeyPrefix), cleanup, nil

	case RepositoryPostgres:
		pool, err := repopg.NewPool(ctx, c.DatabaseURL)
		if err != nil {
			return nil, nil, noop, err
		}
		if c.AutoMigrate {
			if err := repopg.Migrate(ctx, pool); err != nil {
				pool.Close()
				return nil, nil, noop, err
			}
		}
		return repopg.NewSiteRepository(pool), repopg.NewPageRepository(pool), pool.Close, nil

	default:
		return nil, nil, noop, fmt.Errorf("unknown repository: %s", c.Repository)
	}
}

func (c *ServerConfig) buildBlobStore(ctx context.Context) (simplesite.BlobStore, error) {
	switch c.Storage {
	case StorageS3:
		var urls urlstrategy.URLStrategy
		if c.URLStrategy != "" {
			var err error
			if urls, err = c.urlStrategy(); err != nil {
				return nil, err
			}
		}
		return s3storage.New(ctx, s3storage.Config{
			Region:          c.AWSRegion,
			Bucket:          c.Bucket,
			AccessKeyID:     c.AccessKeyID,
			SecretAccessKey: c.SecretAccessKey,
			Endpoint:        c.S3Endpoint,
			UsePathStyle:    c.S3UsePathStyle,
			PublicBaseURL:   c.PublicBaseURL,
			URLStrategy:     urls,
		})
	case StorageFS:
		return fsstorage.New(fsstorage.Config{
			BaseDir:   c.FSBaseDir,
			URLPrefix: c.FSURLPrefix,
		})
	case StorageMemory:
		return memorystorage.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage: %s", c.Storage)
	}
}

func (c *ServerConfig) urlStrategy() (urlstrategy.URLStrategy, error) {
	return urlstrategy.NewURLStrategy(urlstrategy.Config{
		Type:       urlstrategy.URLStrategyType(c.URLStrategy),
		Bucket:     c.Bucket,
		Endpoint:   c.S3Endpoint,
		CDNBaseURL: c.PublicBaseURL,
	})
}
