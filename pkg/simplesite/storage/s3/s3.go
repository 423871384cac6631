package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/tendant/simple-site/pkg/simplesite"
	"github.com/tendant/simple-site/pkg/simplesite/urlstrategy"
)

// Published documents are always sent with these headers.
const (
	ContentType  = "text/html; charset=utf-8"
	CacheControl = "no-cache, no-store, must-revalidate"
)

// BucketSetting names the setting that supplies Config.Bucket.
const BucketSetting = "BUILDER_BUCKET"

// Config options for the S3 backend
type Config struct {
	Region          string // AWS region
	Bucket          string // S3 bucket name
	AccessKeyID     string // AWS access key ID
	SecretAccessKey string // AWS secret access key
	Endpoint        string // Optional custom endpoint for S3-compatible services
	UsePathStyle    bool   // Use path-style addressing (default: false)
	PublicBaseURL   string // Optional base for published URLs, e.g. a CDN

	// URLStrategy overrides the strategy picked from Endpoint and PublicBaseURL
	URLStrategy urlstrategy.URLStrategy
}

// Backend is an S3-compatible implementation of the simplesite.BlobStore interface
type Backend struct {
	uploader *manager.Uploader
	bucket   string
	urls     urlstrategy.URLStrategy
}

// New creates a new S3-compatible storage backend. An empty bucket is
// accepted here and reported by Put, so the rest of the service keeps
// working without a publish destination.
func New(ctx context.Context, config Config) (*Backend, error) {
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		// Use provided credentials
		opts = append(opts, awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			config.AccessKeyID,
			config.SecretAccessKey,
			"",
		)))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// Custom endpoint for S3-compatible services (MinIO, etc.)
	var s3Options []func(*s3.Options)
	if config.Endpoint != "" {
		s3Options = append(s3Options, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
			o.UsePathStyle = config.UsePathStyle
		})
	}

	return NewWithClient(s3.NewFromConfig(awsCfg, s3Options...), config), nil
}

// NewWithClient creates a backend around an existing S3 API client.
func NewWithClient(client manager.UploadAPIClient, config Config) *Backend {
	urls := config.URLStrategy
	if urls == nil {
		urls = urlstrategy.NewRecommendedStrategy(config.Bucket, config.Endpoint, config.PublicBaseURL)
	}
	return &Backend{
		uploader: manager.NewUploader(client),
		bucket:   config.Bucket,
		urls:     urls,
	}
}

// URL returns the public URL for key
func (b *Backend) URL(key string) (string, error) {
	if b.bucket == "" {
		return "", &simplesite.ConfigError{Setting: BucketSetting, Err: simplesite.ErrMissingBucket}
	}
	return b.urls.PublicURL(key)
}

// Put uploads an HTML document and returns its public URL
func (b *Backend) Put(ctx context.Context, key string, html []byte) (string, error) {
	url, err := b.URL(key)
	if err != nil {
		return "", err
	}

	_, err = b.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(b.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(html),
		ContentType:  aws.String(ContentType),
		CacheControl: aws.String(CacheControl),
	})
	if err != nil {
		return "", &simplesite.StorageError{Backend: "s3", Key: key, Op: "put", Err: describeAPIError(err)}
	}

	return url, nil
}

// describeAPIError surfaces the service error code when S3 rejected the call.
func describeAPIError(err error) error {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %w", apiErr.ErrorCode(), err)
	}
	return err
}
