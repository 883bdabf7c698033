package db

import (
	"database/sql"
	"time"

	"github.com/clickgate-io/clickgate/config"
	"github.com/clickgate-io/clickgate/db/dao"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

type DB struct {
	DB  *sqlx.DB
	log *zap.SugaredLogger

	Events dao.EventDAO
}

func NewSqlDB(cfg config.DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.GetDSN())
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(int(cfg.MaxPoolSize))
	db.SetMaxIdleConns(int(cfg.MaxPoolSize))
	db.SetConnMaxLifetime(time.Second * time.Duration(cfg.MaxLifetime))
	return db, nil
}

func NewDB(sqlDB *sql.DB, log *zap.SugaredLogger) (*DB, error) {
	sqlxDB := sqlx.NewDb(sqlDB, "pgx")

	db := &DB{
		DB:     sqlxDB,
		log:    log,
		Events: dao.NewEventDao(sqlxDB),
	}

	return db, nil
}

func (db *DB) Ping() error {
	return db.DB.Ping()
}

func (db *DB) Close() error {
	return db.DB.Close()
}
