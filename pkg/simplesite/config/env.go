package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// WithEnv applies environment variable overrides. Each dotenv file is loaded
// first when it exists (".env" when none are given); variables already set
// in the process environment win over the file.
//
// Variables:
//
//	PORT, ENVIRONMENT
//	REPOSITORY - memory (default), dynamodb, redis or postgres
//	SITES_TABLE, PAGES_TABLE, DYNAMODB_ENDPOINT
//	REDIS_ADDRESS, REDIS_PASSWORD, REDIS_DB, REDIS_KEY_PREFIX
//	DATABASE_URL, AUTO_MIGRATE
//	STORAGE - s3 (default), fs or memory
//	BUILDER_BUCKET, AWS_REGION, AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY
//	S3_ENDPOINT, S3_USE_PATH_STYLE, PUBLIC_BASE_URL
//	URL_STRATEGY - virtual-host, path-style or cdn; unset picks from the above
//	FS_BASE_DIR, FS_URL_PREFIX
//	LOG_LEVEL, LOG_FILE
func WithEnv(dotenvFiles ...string) Option {
	return func(c *ServerConfig) error {
		if len(dotenvFiles) == 0 {
			dotenvFiles = []string{".env"}
		}
		for _, file := range dotenvFiles {
			if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load %s: %w", file, err)
			}
		}

		if err := cleanenv.ReadEnv(c); err != nil {
			return fmt.Errorf("read environment: %w", err)
		}
		return nil
	}
}

// Usage describes every environment variable WithEnv reads.
func Usage() string {
	var cfg ServerConfig
	desc, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return err.Error()
	}
	return desc
}
