// Package database opens the PostgreSQL database and runs its migrations.
package database

import (
	"context"
	"database/sql"
	"embed"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"

	"github.com/trezcool/lmsadmin/core"
)

//go:embed migrations/*.sql
var migrations embed.FS

const (
	migrationsDir = "migrations"

	maxOpenConns    = 25
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
	readyTimeout    = 45 * time.Second
)

// dsn builds the connection URL of dbName, as the app user or as the admin user.
func dsn(dbName string, admin bool, dc core.DatabaseConfig) string {
	user := url.UserPassword(dc.User, dc.Password)
	if admin && dc.AdminUser != "" {
		user = url.UserPassword(dc.AdminUser, dc.AdminPassword)
	}

	q := url.Values{"timezone": {"utc"}, "sslmode": {"require"}}
	if dc.DisableTLS {
		q.Set("sslmode", "disable")
	}
	return (&url.URL{
		Scheme:   "postgres",
		User:     user,
		Host:     dc.Address(),
		Path:     dbName,
		RawQuery: q.Encode(),
	}).String()
}

func connect(ctx context.Context, dbName string, admin bool, dc core.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(dc.Engine, dsn(dbName, admin, dc))
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", dbName)
	}
	if err = waitReady(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// waitReady pings db with a growing pause until it answers or ctx is done.
func waitReady(ctx context.Context, db *sql.DB) error {
	for pause := 100 * time.Millisecond; ; pause += 100 * time.Millisecond {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(err, "database not ready")
		case <-time.After(pause):
		}
	}
}

// Open connects to the school database with a bounded pool.
func Open(conf *core.Config) (*sqlx.DB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()

	db, err := connect(ctx, conf.Database.Name, false, conf.Database)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)
	return sqlx.NewDb(db, conf.Database.Engine), nil
}

func exists(ctx context.Context, db *sql.DB, query, name string) (bool, error) {
	var found bool
	err := db.QueryRowContext(ctx, query, name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	return found, err
}

// CreateIfNotExist provisions the app role (as admin) and the school database (as the app role).
func CreateIfNotExist(conf *core.Config) error {
	ctx, cancel := context.WithTimeout(context.Background(), readyTimeout)
	defer cancel()
	dc := conf.Database

	if dc.User != "" {
		admin, err := connect(ctx, "postgres", true, dc)
		if err != nil {
			return err
		}
		defer func() { _ = admin.Close() }()

		found, err := exists(ctx, admin, "SELECT true FROM pg_roles WHERE rolname = $1", dc.User)
		if err != nil {
			return errors.Wrap(err, "looking up app role")
		}
		if !found {
			stmt := "CREATE ROLE " + pq.QuoteIdentifier(dc.User) +
				" LOGIN CREATEDB ENCRYPTED PASSWORD " + pq.QuoteLiteral(dc.Password)
			if _, err = admin.ExecContext(ctx, stmt); err != nil {
				return errors.Wrap(err, "creating app role")
			}
		}
	}

	app, err := connect(ctx, "postgres", false, dc)
	if err != nil {
		return err
	}
	defer func() { _ = app.Close() }()

	found, err := exists(ctx, app, "SELECT true FROM pg_database WHERE datname = $1", dc.Name)
	if err != nil {
		return errors.Wrap(err, "looking up database")
	}
	if !found {
		if _, err = app.ExecContext(ctx, "CREATE DATABASE "+pq.QuoteIdentifier(dc.Name)); err != nil {
			return errors.Wrapf(err, "creating database %s", dc.Name)
		}
	}
	return nil
}

// RunMigrations runs a goose command ("up", "down", "status", ...) over the embedded migrations.
func RunMigrations(db *sql.DB, command string, args ...string) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Wrap(err, "setting migration dialect")
	}
	return errors.Wrapf(goose.Run(command, db, migrationsDir, args...), "migrate %s", command)
}

// Migrate brings the schema up to date.
func Migrate(db *sql.DB) error {
	return RunMigrations(db, "up")
}
