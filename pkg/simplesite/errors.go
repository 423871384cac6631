package simplesite

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrSiteNotFound indicates a site does not exist or is not visible to the caller
	ErrSiteNotFound = errors.New("site not found")

	// ErrPageNotFound indicates a page does not exist or is not visible to the caller
	ErrPageNotFound = errors.New("page not found")

	// ErrMissingBucket indicates no publish destination is configured
	ErrMissingBucket = errors.New("missing publish bucket")
)

// ConfigError reports a required setting that is absent or unusable. It is
// never retried.
type ConfigError struct {
	Setting string
	Err     error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("missing env var %s: %v", e.Setting, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// PublishError represents a failure in one step of the publish workflow
type PublishError struct {
	PageID string
	Op     string
	Err    error
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("publish %s failed for page %s: %v", e.Op, e.PageID, e.Err)
}

func (e *PublishError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Backend string
	Key     string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s on backend %s: %v", e.Op, e.Key, e.Backend, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsNotFound reports whether err means the entity is absent or not owned by
// the caller.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrSiteNotFound) || errors.Is(err, ErrPageNotFound)
}
