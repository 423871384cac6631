// Package urlstrategy builds the public URL of a published document from
// its storage key.
package urlstrategy

// URLStrategy defines the interface for public URL generation
type URLStrategy interface {
	// PublicURL returns the address browsers fetch objectKey from. It never
	// contacts storage.
	PublicURL(objectKey string) (string, error)
}
