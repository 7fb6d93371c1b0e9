package database

import (
	"io/fs"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/lmsadmin/core"
)

func TestMigrations(t *testing.T) {
	files, err := fs.Glob(migrations, migrationsDir+"/*.sql")
	require.NoError(t, err)
	require.Len(t, files, 2)

	for _, name := range files {
		b, err := fs.ReadFile(migrations, name)
		require.NoError(t, err)
		sql := string(b)
		assert.True(t, strings.HasPrefix(sql, "-- +goose Up"), name)
		assert.Contains(t, sql, "-- +goose Down", name)
	}
}

func TestDSN(t *testing.T) {
	dc := core.DatabaseConfig{
		Engine:        "postgres",
		Host:          "db.local",
		Port:          5432,
		User:          "lms",
		Password:      "p@ss",
		AdminUser:     "postgres",
		AdminPassword: "root",
	}

	got, err := url.Parse(dsn("school", false, dc))
	require.NoError(t, err)
	assert.Equal(t, "db.local:5432", got.Host)
	assert.Equal(t, "/school", got.Path)
	assert.Equal(t, "lms", got.User.Username())
	pwd, _ := got.User.Password()
	assert.Equal(t, "p@ss", pwd)
	assert.Equal(t, "require", got.Query().Get("sslmode"))
	assert.Equal(t, "utc", got.Query().Get("timezone"))

	dc.DisableTLS = true
	got, err = url.Parse(dsn("postgres", true, dc))
	require.NoError(t, err)
	assert.Equal(t, "postgres", got.User.Username())
	assert.Equal(t, "disable", got.Query().Get("sslmode"))

	dc.AdminUser = ""
	got, err = url.Parse(dsn("postgres", true, dc))
	require.NoError(t, err)
	assert.Equal(t, "lms", got.User.Username(), "falls back to the app user")
}
