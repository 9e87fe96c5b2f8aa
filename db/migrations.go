package db

import (
	"embed"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	log "github.com/sirupsen/logrus"
)

//go:embed migrations/*.sql
var fs embed.FS

func migrationInstance(host string, port int, user, password, dbname string) (*migrate.Migrate, error) {
	d, err := iofs.New(fs, "migrations")
	if err != nil {
		return nil, err
	}

	databaseURL := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		url.QueryEscape(user),
		url.QueryEscape(password),
		host,
		port,
		dbname,
	)

	return migrate.NewWithSourceInstance("iofs", d, databaseURL)
}

// Migrate runs the database migrations using golang-migrate
func Migrate(host string, port int, user, password, dbname string) error {
	log.Info("Running migrations...")

	m, err := migrationInstance(host, port, user, password, dbname)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return err
	}

	return nil
}

// Rollback rolls back the last database migration
func Rollback(host string, port int, user, password, dbname string) error {
	log.Info("Rolling back last migration...")

	m, err := migrationInstance(host, port, user, password, dbname)
	if err != nil {
		return err
	}

	return m.Steps(-1)
}
