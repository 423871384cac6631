package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tendant/simple-site/pkg/simplesite"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Schema creates the site and page tables. It is idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS simplesite_sites (
	id                TEXT PRIMARY KEY,
	owner_account_id  TEXT NOT NULL,
	name              TEXT NOT NULL,
	slug              TEXT NOT NULL,
	primary_domain    TEXT,
	dealer_account_id TEXT,
	publish_status    TEXT NOT NULL DEFAULT 'draft',
	published_at      TEXT,
	settings          JSONB NOT NULL DEFAULT '{}'::jsonb,
	created_at        TIMESTAMPTZ NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS simplesite_sites_owner_idx ON simplesite_sites (owner_account_id);

CREATE TABLE IF NOT EXISTS simplesite_pages (
	id                     TEXT PRIMARY KEY,
	site_id                TEXT NOT NULL,
	name                   TEXT NOT NULL,
	slug                   TEXT NOT NULL,
	type                   TEXT NOT NULL DEFAULT 'page',
	editor_state           JSONB NOT NULL DEFAULT '{}'::jsonb,
	published_state        JSONB,
	published_html_url     TEXT,
	last_editor_account_id TEXT,
	created_at             TIMESTAMPTZ NOT NULL,
	updated_at             TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS simplesite_pages_site_idx ON simplesite_pages (site_id);
`

// Migrate applies Schema.
func Migrate(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return handlePostgresError("migrate", err)
	}
	return nil
}

// NewPool opens a connection pool and verifies it.
func NewPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return pool, nil
}

// Error handling helper
func handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "sites") {
				return fmt.Errorf("site already exists")
			}
			if strings.Contains(pgErr.ConstraintName, "pages") {
				return fmt.Errorf("page already exists")
			}
			return fmt.Errorf("duplicate entry")
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// jsonArg keeps a nil map as SQL NULL.
func jsonArg(m map[string]any) any {
	if m == nil {
		return nil
	}
	return m
}

// SiteRepository implements simplesite.SiteRepository using PostgreSQL
type SiteRepository struct {
	db DBTX
}

// NewSiteRepository creates a new PostgreSQL site repository
func NewSiteRepository(db DBTX) *SiteRepository {
	return &SiteRepository{db: db}
}

const siteColumns = `id, owner_account_id, name, slug, primary_domain, dealer_account_id,
	publish_status, published_at, settings, created_at, updated_at`

func scanSite(row pgx.Row) (*simplesite.Site, error) {
	var site simplesite.Site
	err := row.Scan(
		&site.ID, &site.OwnerAccountID, &site.Name, &site.Slug,
		&site.PrimaryDomain, &site.DealerAccountID, &site.PublishStatus,
		&site.PublishedAt, &site.Settings, &site.CreatedAt, &site.UpdatedAt)
	if err != nil {
		return nil, err
	}
	site.CreatedAt = site.CreatedAt.UTC()
	site.UpdatedAt = site.UpdatedAt.UTC()
	if site.Settings == nil {
		site.Settings = map[string]any{}
	}
	return &site, nil
}

func (r *SiteRepository) ListByOwner(ctx context.Context, ownerAccountID string) ([]*simplesite.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM simplesite_sites
		WHERE owner_account_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, ownerAccountID)
	if err != nil {
		return nil, handlePostgresError("list sites", err)
	}
	defer rows.Close()

	result := []*simplesite.Site{}
	for rows.Next() {
		site, err := scanSite(rows)
		if err != nil {
			return nil, handlePostgresError("list sites", err)
		}
		result = append(result, site)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list sites", err)
	}
	return result, nil
}

func (r *SiteRepository) GetByID(ctx context.Context, id string) (*simplesite.Site, error) {
	query := `SELECT ` + siteColumns + ` FROM simplesite_sites WHERE id = $1`

	site, err := scanSite(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplesite.ErrSiteNotFound
		}
		return nil, handlePostgresError("get site", err)
	}
	return site, nil
}

func (r *SiteRepository) Create(ctx context.Context, ownerAccountID string, req simplesite.CreateSiteRequest) (*simplesite.Site, error) {
	site := simplesite.NewSite(ownerAccountID, req)
	query := `INSERT INTO simplesite_sites (` + siteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		site.ID, site.OwnerAccountID, site.Name, site.Slug,
		site.PrimaryDomain, site.DealerAccountID, site.PublishStatus,
		site.PublishedAt, site.Settings, site.CreatedAt, site.UpdatedAt)
	if err != nil {
		return nil, handlePostgresError("create site", err)
	}
	return site, nil
}

func (r *SiteRepository) Update(ctx context.Context, id string, patch simplesite.SitePatch) (*simplesite.Site, error) {
	site, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	site.Apply(patch)

	query := `UPDATE simplesite_sites SET
			name = $2, slug = $3, primary_domain = $4, dealer_account_id = $5,
			publish_status = $6, published_at = $7, settings = $8, updated_at = $9
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		site.ID, site.Name, site.Slug, site.PrimaryDomain, site.DealerAccountID,
		site.PublishStatus, site.PublishedAt, site.Settings, site.UpdatedAt)
	if err != nil {
		return nil, handlePostgresError("update site", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, simplesite.ErrSiteNotFound
	}
	return site, nil
}

// PageRepository implements simplesite.PageRepository using PostgreSQL
type PageRepository struct {
	db DBTX
}

// NewPageRepository creates a new PostgreSQL page repository
func NewPageRepository(db DBTX) *PageRepository {
	return &PageRepository{db: db}
}

const pageColumns = `id, site_id, name, slug, type, editor_state, published_state,
	published_html_url, last_editor_account_id, created_at, updated_at`

func scanPage(row pgx.Row) (*simplesite.Page, error) {
	var page simplesite.Page
	err := row.Scan(
		&page.ID, &page.SiteID, &page.Name, &page.Slug, &page.Type,
		&page.EditorState, &page.PublishedState, &page.PublishedHTMLURL,
		&page.LastEditorAccountID, &page.CreatedAt, &page.UpdatedAt)
	if err != nil {
		return nil, err
	}
	page.CreatedAt = page.CreatedAt.UTC()
	page.UpdatedAt = page.UpdatedAt.UTC()
	if page.EditorState == nil {
		page.EditorState = map[string]any{}
	}
	return &page, nil
}

func (r *PageRepository) ListBySite(ctx context.Context, siteID string) ([]*simplesite.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM simplesite_pages
		WHERE site_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(ctx, query, siteID)
	if err != nil {
		return nil, handlePostgresError("list pages", err)
	}
	defer rows.Close()

	result := []*simplesite.Page{}
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, handlePostgresError("list pages", err)
		}
		result = append(result, page)
	}
	if err := rows.Err(); err != nil {
		return nil, handlePostgresError("list pages", err)
	}
	return result, nil
}

func (r *PageRepository) GetByID(ctx context.Context, id string) (*simplesite.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM simplesite_pages WHERE id = $1`

	page, err := scanPage(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, simplesite.ErrPageNotFound
		}
		return nil, handlePostgresError("get page", err)
	}
	return page, nil
}

func (r *PageRepository) Create(ctx context.Context, siteID string, req simplesite.CreatePageRequest) (*simplesite.Page, error) {
	page := simplesite.NewPage(siteID, req)
	query := `INSERT INTO simplesite_pages (` + pageColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := r.db.Exec(ctx, query,
		page.ID, page.SiteID, page.Name, page.Slug, page.Type,
		page.EditorState, jsonArg(page.PublishedState), page.PublishedHTMLURL,
		page.LastEditorAccountID, page.CreatedAt, page.UpdatedAt)
	if err != nil {
		return nil, handlePostgresError("create page", err)
	}
	return page, nil
}

func (r *PageRepository) Update(ctx context.Context, id string, patch simplesite.PagePatch) (*simplesite.Page, error) {
	page, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	page.Apply(patch)

	query := `UPDATE simplesite_pages SET
			name = $2, slug = $3, type = $4, editor_state = $5, published_state = $6,
			published_html_url = $7, last_editor_account_id = $8, updated_at = $9
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		page.ID, page.Name, page.Slug, page.Type, page.EditorState,
		jsonArg(page.PublishedState), page.PublishedHTMLURL,
		page.LastEditorAccountID, page.UpdatedAt)
	if err != nil {
		return nil, handlePostgresError("update page", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, simplesite.ErrPageNotFound
	}
	return page, nil
}
