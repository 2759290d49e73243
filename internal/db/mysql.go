package db

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

type MySQLOpts struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration // default 5s
}

// NewMySQLConnection opens a pooled *sqlx.DB and verifies it with a ping.
// The DSN needs parseTime=true or DATETIME columns will not scan into time.Time.
func NewMySQLConnection(dsn string, opts MySQLOpts) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty MySQL DSN")
	}
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	applyPool(db, opts.MaxOpenConns, opts.MaxIdleConns, opts.ConnMaxLifetime, opts.ConnMaxIdleTime)

	timeout := opts.PingTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

// applyPool sets only the limits the caller actually configured.
func applyPool(db *sqlx.DB, open, idle int, lifetime, idleTime time.Duration) {
	if open > 0 {
		db.SetMaxOpenConns(open)
	}
	if idle > 0 {
		db.SetMaxIdleConns(idle)
	}
	if lifetime > 0 {
		db.SetConnMaxLifetime(lifetime)
	}
	if idleTime > 0 {
		db.SetConnMaxIdleTime(idleTime)
	}
}
