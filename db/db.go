package db

import (
	"context"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/config"
)

// DB holds the database connection
var DB *sqlx.DB

// InitDB opens the Postgres pool through the pgx stdlib driver and pings it.
func InitDB(ctx context.Context, cfg config.Database) error {
	connStr, err := cfg.DSN()
	if err != nil {
		return err
	}

	conn, err := sqlx.Open("pgx", connStr)
	if err != nil {
		return errors.Wrap(err, "failed to open database connection")
	}
	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxOpenConns)
	conn.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		conn.Close()
		return errors.Wrap(err, "failed to ping database")
	}

	DB = conn
	log.Printf("✓ Database connection established successfully")
	return nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
