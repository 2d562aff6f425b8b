package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	pgx5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/sirupsen/logrus"
)

//go:embed sql/*.sql
var migrationFiles embed.FS

// Up applies all pending migrations to the database at the given URL.
func Up(databaseURL string, log *logrus.Entry) error {
	m, cleanup, err := instance(databaseURL)
	if err != nil {
		return err
	}
	defer cleanup()

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not run migrations: %w", err)
	}
	log.Info("migrations applied")
	return nil
}

// Down reverts all migrations.
func Down(databaseURL string, log *logrus.Entry) error {
	m, cleanup, err := instance(databaseURL)
	if err != nil {
		return err
	}
	defer cleanup()

	err = m.Down()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("could not revert migrations: %w", err)
	}
	log.Info("migrations reverted")
	return nil
}

func instance(databaseURL string) (*migrate.Migrate, func(), error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open database: %w", err)
	}
	cleanup := func() { db.Close() }

	driver, err := pgx5.WithInstance(db, &pgx5.Config{})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("could not create migrate driver: %w", err)
	}
	src, err := iofs.New(migrationFiles, "sql")
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("could not load migration files: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "pgx5", driver)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return m, cleanup, nil
}
