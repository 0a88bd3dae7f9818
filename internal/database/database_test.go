package database

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/mealmate/backend/config"
	"github.com/pageza/mealmate/backend/internal/models"
	"github.com/pageza/mealmate/backend/internal/testhelpers"
	"github.com/pageza/mealmate/backend/migrations"
)

func TestOpenSQLite(t *testing.T) {
	db, err := Open(&config.Config{DBDriver: config.DriverSQLite, SQLitePath: ":memory:"}, nil)
	require.NoError(t, err)

	require.NoError(t, RunMigrations(context.Background(), db, migrations.Files, nil))

	user := models.User{Name: "Test User", Email: "test@example.com", PasswordHash: "hashed"}
	require.NoError(t, db.Create(&user).Error)
	assert.NotEqual(t, uuid.Nil, user.ID)

	var count int64
	require.NoError(t, db.Model(&models.Document{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "mysql"}, nil)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestMigrationFilesSkipRollbacks(t *testing.T) {
	m := NewMigrator(nil, fstest.MapFS{
		"000002_b.sql":          {Data: []byte("SELECT 2")},
		"000001_a.sql":          {Data: []byte("SELECT 1")},
		"000001_a_rollback.sql": {Data: []byte("SELECT 0")},
		"README.md":             {Data: []byte("docs")},
	}, nil)

	names, err := m.migrationFiles()
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_a.sql", "000002_b.sql"}, names)
	assert.Equal(t, "000002", version(names[1]))
}

func TestMigratorPostgres(t *testing.T) {
	pg := testhelpers.StartPostgres(t)
	ctx := context.Background()

	conn, err := New(pg.Config, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.HealthCheck(ctx))

	m := NewMigrator(conn.DB, migrations.Files, nil)

	applied, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_init.sql", "000002_recipe_cache.sql"}, applied)

	again, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Empty(t, again)

	status, err := m.Status(ctx)
	require.NoError(t, err)
	require.Len(t, status, 2)
	assert.NotNil(t, status[1].AppliedAt)

	name, err := m.Rollback(ctx)
	require.NoError(t, err)
	assert.Equal(t, "000002_recipe_cache.sql", name)

	status, err = m.Status(ctx)
	require.NoError(t, err)
	assert.Nil(t, status[1].AppliedAt)

	_, err = m.Rollback(ctx)
	require.NoError(t, err)
	_, err = m.Rollback(ctx)
	assert.ErrorIs(t, err, ErrNothingToRollback)
}
