package migrator

import (
	"database/sql"

	"github.com/clickgate-io/clickgate/config"
	"github.com/clickgate-io/clickgate/db/migrations"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// Migrator is a database migrator
type Migrator struct {
	cfg config.DatabaseConfig
}

func New(cfg config.DatabaseConfig) *Migrator {
	return &Migrator{
		cfg: cfg,
	}
}

func (m *Migrator) init() (*migrate.Migrate, error) {
	db, err := sql.Open("pgx", m.cfg.GetDSN())
	if err != nil {
		return nil, err
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{
		DatabaseName: m.cfg.Database,
	})
	if err != nil {
		return nil, err
	}

	d, err := iofs.New(migrations.SQLs, ".")
	if err != nil {
		return nil, err
	}

	return migrate.NewWithInstance("iofs", d, "postgres", driver)
}

func (m *Migrator) Up() error {
	migrate, err := m.init()
	if err != nil {
		return err
	}
	return migrate.Up()
}

func (m *Migrator) Down() error {
	migrate, err := m.init()
	if err != nil {
		return err
	}
	return migrate.Down()
}

// Reset drops everything in the database
func (m *Migrator) Reset() error {
	migrate, err := m.init()
	if err != nil {
		return err
	}
	return migrate.Drop()
}

// Status returns the current migration version
func (m *Migrator) Status() (version uint, dirty bool, err error) {
	migrate, err := m.init()
	if err != nil {
		return 0, false, err
	}
	return migrate.Version()
}
