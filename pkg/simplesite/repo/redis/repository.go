package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/tendant/simple-site/pkg/simplesite"
)

type keys struct {
	prefix string
}

func (k keys) site(id string) string {
	return k.prefix + "site:" + id
}

func (k keys) ownerSites(owner string) string {
	return k.prefix + "owner:" + owner + ":sites"
}

func (k keys) page(id string) string {
	return k.prefix + "page:" + id
}

func (k keys) sitePages(siteID string) string {
	return k.prefix + "site:" + siteID + ":pages"
}

func newKeys(prefix string) keys {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return keys{prefix: prefix}
}

// SiteRepository implements simplesite.SiteRepository on Redis
type SiteRepository struct {
	client redis.UniversalClient
	keys   keys
}

// NewSiteRepository creates a site repository. An empty prefix selects
// DefaultKeyPrefix.
func NewSiteRepository(client redis.UniversalClient, prefix string) *SiteRepository {
	return &SiteRepository{client: client, keys: newKeys(prefix)}
}

func (r *SiteRepository) ListByOwner(ctx context.Context, ownerAccountID string) ([]*simplesite.Site, error) {
	docs, err := loadMembers(ctx, r.client, r.keys.ownerSites(ownerAccountID), r.keys.site)
	if err != nil {
		return nil, fmt.Errorf("failed to list sites for owner %s: %w", ownerAccountID, err)
	}

	result := make([]*simplesite.Site, 0, len(docs))
	for _, doc := range docs {
		var site simplesite.Site
		if err := json.Unmarshal(doc, &site); err != nil {
			return nil, fmt.Errorf("failed to decode site: %w", err)
		}
		result = append(result, &site)
	}
	return result, nil
}

func (r *SiteRepository) GetByID(ctx context.Context, id string) (*simplesite.Site, error) {
	data, err := r.client.Get(ctx, r.keys.site(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, simplesite.ErrSiteNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get site %s: %w", id, err)
	}

	var site simplesite.Site
	if err := json.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("failed to decode site %s: %w", id, err)
	}
	return &site, nil
}

func (r *SiteRepository) Create(ctx context.Context, ownerAccountID string, req simplesite.CreateSiteRequest) (*simplesite.Site, error) {
	site := simplesite.NewSite(ownerAccountID, req)
	data, err := json.Marshal(site)
	if err != nil {
		return nil, fmt.Errorf("failed to encode site: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.keys.site(site.ID), data, 0)
		pipe.SAdd(ctx, r.keys.ownerSites(ownerAccountID), site.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store site %s: %w", site.ID, err)
	}
	return site, nil
}

func (r *SiteRepository) Update(ctx context.Context, id string, patch simplesite.SitePatch) (*simplesite.Site, error) {
	var updated simplesite.Site
	err := watchUpdate(ctx, r.client, r.keys.site(id), simplesite.ErrSiteNotFound, func(data []byte) ([]byte, error) {
		updated = simplesite.Site{}
		if err := json.Unmarshal(data, &updated); err != nil {
			return nil, fmt.Errorf("failed to decode site %s: %w", id, err)
		}
		updated.Apply(patch)
		return json.Marshal(&updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// PageRepository implements simplesite.PageRepository on Redis
type PageRepository struct {
	client redis.UniversalClient
	keys   keys
}

// NewPageRepository creates a page repository. An empty prefix selects
// DefaultKeyPrefix.
func NewPageRepository(client redis.UniversalClient, prefix string) *PageRepository {
	return &PageRepository{client: client, keys: newKeys(prefix)}
}

func (r *PageRepository) ListBySite(ctx context.Context, siteID string) ([]*simplesite.Page, error) {
	docs, err := loadMembers(ctx, r.client, r.keys.sitePages(siteID), r.keys.page)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages for site %s: %w", siteID, err)
	}

	result := make([]*simplesite.Page, 0, len(docs))
	for _, doc := range docs {
		var page simplesite.Page
		if err := json.Unmarshal(doc, &page); err != nil {
			return nil, fmt.Errorf("failed to decode page: %w", err)
		}
		result = append(result, &page)
	}
	return result, nil
}

func (r *PageRepository) GetByID(ctx context.Context, id string) (*simplesite.Page, error) {
	data, err := r.client.Get(ctx, r.keys.page(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, simplesite.ErrPageNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page %s: %w", id, err)
	}

	var page simplesite.Page
	if err := json.Unmarshal(data, &page); err != nil {
		return nil, fmt.Errorf("failed to decode page %s: %w", id, err)
	}
	return &page, nil
}

func (r *PageRepository) Create(ctx context.Context, siteID string, req simplesite.CreatePageRequest) (*simplesite.Page, error) {
	page := simplesite.NewPage(siteID, req)
	data, err := json.Marshal(page)
	if err != nil {
		return nil, fmt.Errorf("failed to encode page: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.keys.page(page.ID), data, 0)
		pipe.SAdd(ctx, r.keys.sitePages(siteID), page.ID)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to store page %s: %w", page.ID, err)
	}
	return page, nil
}

func (r *PageRepository) Update(ctx context.Context, id string, patch simplesite.PagePatch) (*simplesite.Page, error) {
	var updated simplesite.Page
	err := watchUpdate(ctx, r.client, r.keys.page(id), simplesite.ErrPageNotFound, func(data []byte) ([]byte, error) {
		updated = simplesite.Page{}
		if err := json.Unmarshal(data, &updated); err != nil {
			return nil, fmt.Errorf("failed to decode page %s: %w", id, err)
		}
		updated.Apply(patch)
		return json.Marshal(&updated)
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// loadMembers reads every document whose id is in the set at setKey.
// Ids whose document has vanished are skipped.
func loadMembers(ctx context.Context, client redis.UniversalClient, setKey string, docKey func(string) string) ([][]byte, error) {
	ids, err := client.SMembers(ctx, setKey).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, nil
	}

	docKeys := make([]string, len(ids))
	for i, id := range ids {
		docKeys[i] = docKey(id)
	}
	values, err := client.MGet(ctx, docKeys...).Result()
	if err != nil {
		return nil, err
	}

	docs := make([][]byte, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			docs = append(docs, []byte(s))
		}
	}
	return docs, nil
}

// watchUpdate rewrites the document at key with mutate under an optimistic
// transaction, retrying when another writer touches the key first.
func watchUpdate(ctx context.Context, client redis.UniversalClient, key string, notFound error, mutate func([]byte) ([]byte, error)) error {
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return notFound
		}
		if err != nil {
			return err
		}

		next, err := mutate(data)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, notFound) {
			return fmt.Errorf("failed to update %s: %w", key, err)
		}
		return err
	}
	return fmt.Errorf("failed to update %s: too much contention", key)
}
