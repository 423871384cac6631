package urlstrategy

import (
	"errors"
	"fmt"
	"strings"
)

// VirtualHostStrategy addresses objects as https://{bucket}.s3.amazonaws.com/{key}
type VirtualHostStrategy struct {
	Bucket string
}

// NewVirtualHostStrategy creates a virtual-hosted S3 URL strategy
func NewVirtualHostStrategy(bucket string) *VirtualHostStrategy {
	return &VirtualHostStrategy{Bucket: bucket}
}

func (s *VirtualHostStrategy) PublicURL(objectKey string) (string, error) {
	if s.Bucket == "" {
		return "", errors.New("bucket not configured")
	}
	return fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.Bucket, objectKey), nil
}

// PathStyleStrategy addresses objects as {endpoint}/{bucket}/{key}, the form
// S3-compatible services such as MinIO expect.
type PathStyleStrategy struct {
	Endpoint string
	Bucket   string
}

// NewPathStyleStrategy creates a path-style URL strategy
func NewPathStyleStrategy(endpoint, bucket string) *PathStyleStrategy {
	return &PathStyleStrategy{
		Endpoint: strings.TrimSuffix(endpoint, "/"),
		Bucket:   bucket,
	}
}

func (s *PathStyleStrategy) PublicURL(objectKey string) (string, error) {
	if s.Endpoint == "" {
		return "", errors.New("endpoint not configured")
	}
	if s.Bucket == "" {
		return "", errors.New("bucket not configured")
	}
	return fmt.Sprintf("%s/%s/%s", s.Endpoint, s.Bucket, objectKey), nil
}

// CDNStrategy addresses objects as {base}/{key}, for a CDN or static host
// fronting the bucket or directory.
type CDNStrategy struct {
	BaseURL string // e.g., "https://sites.example.com"
}

// NewCDNStrategy creates a CDN URL strategy
func NewCDNStrategy(baseURL string) *CDNStrategy {
	// Ensure baseURL doesn't have trailing slash
	return &CDNStrategy{BaseURL: strings.TrimSuffix(baseURL, "/")}
}

func (s *CDNStrategy) PublicURL(objectKey string) (string, error) {
	if s.BaseURL == "" {
		return "", errors.New("CDN base URL not configured")
	}
	return fmt.Sprintf("%s/%s", s.BaseURL, objectKey), nil
}
