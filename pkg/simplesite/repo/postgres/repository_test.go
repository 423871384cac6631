package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tendant/simple-site/pkg/simplesite/repo/postgres"
	"github.com/tendant/simple-site/pkg/simplesite/repo/repotest"
)

// newTestDB connects to TEST_DATABASE_URL and applies the schema. Tests are
// skipped when it is unset.
func newTestDB(t *testing.T) postgres.DBTX {
	t.Helper()

	connString := os.Getenv("TEST_DATABASE_URL")
	if connString == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, connString)
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(pool.Close)

	require.NoError(t, postgres.Migrate(ctx, pool), "Failed to apply schema")
	return pool
}

func TestPostgresSiteRepository(t *testing.T) {
	db := newTestDB(t)
	repotest.RunSiteRepositoryTests(t, postgres.NewSiteRepository(db))
}

func TestPostgresPageRepository(t *testing.T) {
	db := newTestDB(t)
	repotest.RunPageRepositoryTests(t, postgres.NewPageRepository(db))
}
