// Package dynamo stores sites and pages in DynamoDB.
//
// Sites table:
//
//	pk = SITE#{site_id}            sk = META
//	gsi1pk = OWNER#{owner_id}      gsi1sk = SITE#{site_id}
//
// Pages table:
//
//	pk = SITE#{site_id}            sk = PAGE#{page_id}
//	gsi1pk = PAGE#{page_id}        gsi1sk = META
//
// Updates are read-modify-write with an unconditional put. Two concurrent
// updates of the same item can lose one of the patches.
package dynamo

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
)

// Default table names
const (
	DefaultSitesTable = "fg_sites"
	DefaultPagesTable = "fg_pages"
)

// IndexName is the global secondary index present on both tables.
const IndexName = "gsi1"

// Client is the subset of the DynamoDB API the repositories use
type Client interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Config options for the DynamoDB client
type Config struct {
	Region          string // AWS region
	Endpoint        string // Optional custom endpoint, e.g. DynamoDB Local
	AccessKeyID     string // Optional static credentials
	SecretAccessKey string
}

// NewClient creates a DynamoDB client. Without static credentials the
// default AWS credential chain is used.
func NewClient(ctx context.Context, config Config) (*dynamodb.Client, error) {
	if config.Region == "" {
		config.Region = "us-east-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	var clientOpts []func(*dynamodb.Options)
	if config.Endpoint != "" {
		clientOpts = append(clientOpts, func(o *dynamodb.Options) {
			o.BaseEndpoint = aws.String(config.Endpoint)
		})
	}

	return dynamodb.NewFromConfig(awsCfg, clientOpts...), nil
}
