package db

import (
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"travel-desk/bookingcart/internal/config"
	"travel-desk/bookingcart/internal/logging"
)

// ConnectPostgres opens a sqlx pool, retrying while the database starts up.
func ConnectPostgres(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := cfg.PostgresDSN()

	var (
		conn *sqlx.DB
		err  error
	)
	for i := 0; i < 10; i++ {
		conn, err = sqlx.Connect("postgres", dsn)
		if err == nil {
			logging.Info("Connected to Postgres", "host", cfg.Host, "db", cfg.DBName)
			return conn, nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return nil, fmt.Errorf("failed to connect to postgres at %s:%s: %w", cfg.Host, cfg.Port, err)
}
