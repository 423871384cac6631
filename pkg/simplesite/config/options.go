package config

import (
	"fmt"
)

// WithPort sets the server port
func WithPort(port string) Option {
	return func(c *ServerConfig) error {
		if port == "" {
			return fmt.Errorf("port cannot be empty")
		}
		c.Port = port
		return nil
	}
}

// WithEnvironment sets the environment (development, production, testing)
func WithEnvironment(env string) Option {
	return func(c *ServerConfig) error {
		if env == "" {
			return fmt.Errorf("environment cannot be empty")
		}
		c.Environment = env
		return nil
	}
}

// WithRepositoryType selects the repository backend
func WithRepositoryType(repo string) Option {
	return func(c *ServerConfig) error {
		switch repo {
		case RepositoryMemory, RepositoryDynamoDB, RepositoryRedis, RepositoryPostgres:
			c.Repository = repo
			return nil
		}
		return fmt.Errorf("unknown repository type: %s", repo)
	}
}

// WithDynamoDB configures the DynamoDB repositories. Empty table names keep
// the defaults.
func WithDynamoDB(sitesTable, pagesTable, endpoint string) Option {
	return func(c *ServerConfig) error {
		c.Repository = RepositoryDynamoDB
		if sitesTable != "" {
			c.SitesTable = sitesTable
		}
		if pagesTable != "" {
			c.PagesTable = pagesTable
		}
		c.DynamoDBEndpoint = endpoint
		return nil
	}
}

// WithRedis configures the Redis repositories
func WithRedis(address, password string, db int) Option {
	return func(c *ServerConfig) error {
		if address == "" {
			return fmt.Errorf("redis address cannot be empty")
		}
		c.Repository = RepositoryRedis
		c.Redis.Address = address
		c.Redis.Password = password
		c.Redis.DB = db
		return nil
	}
}

// WithPostgres configures the Postgres repositories
func WithPostgres(url string) Option {
	return func(c *ServerConfig) error {
		if url == "" {
			return fmt.Errorf("database URL is required for postgres")
		}
		c.Repository = RepositoryPostgres
		c.DatabaseURL = url
		return nil
	}
}

// WithS3Storage publishes to bucket
func WithS3Storage(bucket, region string) Option {
	return func(c *ServerConfig) error {
		c.Storage = StorageS3
		c.Bucket = bucket
		if region != "" {
			c.AWSRegion = region
		}
		return nil
	}
}

// WithS3Endpoint points the S3 backend at an S3-compatible service such as MinIO
func WithS3Endpoint(endpoint string, usePathStyle bool) Option {
	return func(c *ServerConfig) error {
		c.S3Endpoint = endpoint
		c.S3UsePathStyle = usePathStyle
		return nil
	}
}

// WithPublicBaseURL makes published URLs start with baseURL, e.g. a CDN
func WithPublicBaseURL(baseURL string) Option {
	return func(c *ServerConfig) error {
		c.PublicBaseURL = baseURL
		return nil
	}
}

// WithURLStrategy forces how S3 published URLs are built: virtual-host,
// path-style or cdn.
func WithURLStrategy(strategy string) Option {
	return func(c *ServerConfig) error {
		c.URLStrategy = strategy
		return nil
	}
}

// WithFilesystemStorage publishes into baseDir
func WithFilesystemStorage(baseDir, urlPrefix string) Option {
	return func(c *ServerConfig) error {
		if baseDir == "" {
			return fmt.Errorf("filesystem base directory cannot be empty")
		}
		c.Storage = StorageFS
		c.FSBaseDir = baseDir
		c.FSURLPrefix = urlPrefix
		return nil
	}
}

// WithMemoryStorage keeps published documents in memory
func WithMemoryStorage() Option {
	return func(c *ServerConfig) error {
		c.Storage = StorageMemory
		return nil
	}
}

// WithLogLevel sets the log level
func WithLogLevel(level string) Option {
	return func(c *ServerConfig) error {
		c.Log.Level = level
		return nil
	}
}
