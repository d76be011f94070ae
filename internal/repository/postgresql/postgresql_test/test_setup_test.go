package postgresql_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/cmlabs-hris/crm-attendance/internal/pkg/database"
	"github.com/cmlabs-hris/crm-attendance/migrations"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	testDB     *database.DB
	testDBErr  error
	testDBOnce sync.Once
)

// openTestDB connects to TEST_DATABASE_URL and applies the schema once.
// Tests are skipped when the variable is unset.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	testDBOnce.Do(func() {
		testDB, testDBErr = database.NewPostgreSQLDB(dsn)
		if testDBErr != nil {
			testDBErr = fmt.Errorf("failed to connect to test database: %w", testDBErr)
			return
		}
		testDBErr = migrations.Apply(context.Background(), testDB)
	})
	require.NoError(t, testDBErr)

	truncateTables(t)
	return testDB
}

func truncateTables(t *testing.T) {
	_, err := testDB.Exec(context.Background(), "TRUNCATE TABLE attendances, users, teams CASCADE")
	require.NoError(t, err)
}

func newID(t *testing.T) string {
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id.String()
}

func createTestTeam(t *testing.T, ctx context.Context, name string) string {
	id := newID(t)
	_, err := testDB.Exec(ctx, `INSERT INTO teams (id, name) VALUES ($1, $2)`, id, name)
	require.NoError(t, err)
	return id
}

func createTestUser(t *testing.T, ctx context.Context, name, role string, teamID *string) string {
	id := newID(t)
	_, err := testDB.Exec(ctx, `
		INSERT INTO users (id, name, email, role, team_id)
		VALUES ($1, $2, $3, $4, $5)
	`, id, name, id+"@example.com", role, teamID)
	require.NoError(t, err)
	return id
}
