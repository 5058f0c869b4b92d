package db

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"travel-desk/bookingcart/internal/config"
	"travel-desk/bookingcart/internal/logging"
	gormModels "travel-desk/bookingcart/internal/models/gorm"
)

// Store bundles the GORM handle used for CRUD and a sqlx handle on the same
// pool for hand-written queries.
type Store struct {
	ORM *gorm.DB
	SQL *sqlx.DB
}

func (s *Store) Close() error {
	if s == nil || s.SQL == nil {
		return nil
	}
	return s.SQL.Close()
}

// OpenPostgres connects via sqlx and layers GORM over the same connection pool.
func OpenPostgres(cfg config.DatabaseConfig) (*Store, error) {
	sqlxDB, err := ConnectPostgres(cfg)
	if err != nil {
		return nil, err
	}

	orm, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlxDB.DB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		sqlxDB.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	logging.Info("Connected to Postgres via GORM")
	return &Store{ORM: orm, SQL: sqlxDB}, nil
}

// OpenSQLite opens (or creates) a SQLite database. Pass
// "file::memory:?cache=shared" style DSNs for throwaway stores.
func OpenSQLite(dsn string) (*Store, error) {
	orm, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", dsn, err)
	}

	sqlDB, err := orm.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sqlite handle: %w", err)
	}
	// SQLite allows a single writer; one connection also keeps in-memory DSNs alive.
	sqlDB.SetMaxOpenConns(1)

	logging.Info("Opened SQLite store", "dsn", dsn)
	return &Store{ORM: orm, SQL: sqlx.NewDb(sqlDB, "sqlite3")}, nil
}

// Migrate creates or updates the application tables.
func Migrate(orm *gorm.DB) error {
	if err := orm.AutoMigrate(&gormModels.VisaApplication{}); err != nil {
		return fmt.Errorf("failed to migrate: %w", err)
	}
	return nil
}
