package data

import (
	"database/sql"
	"errors"

	"feed/internal/conf"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/file"
)

const defaultMigrationsDir = "internal/data/migrations"

func RunMigrate(conf *conf.Data, db *sql.DB) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return err
	}
	dir := conf.Database.Migrations
	if dir == "" {
		dir = defaultMigrationsDir
	}
	src, err := (&file.File{}).Open(dir)
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance(
		"file",
		src,
		conf.Database.Driver,
		driver,
	)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}
