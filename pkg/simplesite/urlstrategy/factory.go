package urlstrategy

import (
	"fmt"
)

// URLStrategyType represents the type of URL strategy
type URLStrategyType string

const (
	// Virtual-hosted AWS S3 URLs
	StrategyTypeVirtualHost URLStrategyType = "virtual-host"

	// Path-style URLs under a custom endpoint
	StrategyTypePathStyle URLStrategyType = "path-style"

	// URLs under a fixed public base
	StrategyTypeCDN URLStrategyType = "cdn"
)

// Config holds configuration for URL strategy creation
type Config struct {
	Type       URLStrategyType
	Bucket     string
	Endpoint   string // For path-style strategy
	CDNBaseURL string // For CDN strategy
}

// NewURLStrategy creates a URL strategy based on the configuration
func NewURLStrategy(config Config) (URLStrategy, error) {
	switch config.Type {
	case StrategyTypeVirtualHost:
		return NewVirtualHostStrategy(config.Bucket), nil

	case StrategyTypePathStyle:
		if config.Endpoint == "" {
			return nil, fmt.Errorf("endpoint is required for path-style strategy")
		}
		return NewPathStyleStrategy(config.Endpoint, config.Bucket), nil

	case StrategyTypeCDN:
		if config.CDNBaseURL == "" {
			return nil, fmt.Errorf("CDN base URL is required for CDN strategy")
		}
		return NewCDNStrategy(config.CDNBaseURL), nil

	default:
		return nil, fmt.Errorf("unknown URL strategy type: %s", config.Type)
	}
}

// NewRecommendedStrategy picks the strategy for a bucket: a public base URL
// wins, then a custom endpoint, then plain AWS virtual-hosted addressing.
func NewRecommendedStrategy(bucket, endpoint, publicBaseURL string) URLStrategy {
	switch {
	case publicBaseURL != "":
		return NewCDNStrategy(publicBaseURL)
	case endpoint != "":
		return NewPathStyleStrategy(endpoint, bucket)
	default:
		return NewVirtualHostStrategy(bucket)
	}
}
