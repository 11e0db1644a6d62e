// Package database opens the MySQL connection pool and manages the schema migrations.
package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"gitlab.com/dirk.krummacker/contacts-book/internal/config"
)

// retryDelay is the pause between two connection attempts.
var retryDelay = 2 * time.Second

// MySQLConfig translates the settings into a driver configuration.
//
// parseTime makes DATE and DATETIME columns scan into time.Time. clientFoundRows makes an UPDATE
// report the rows it matched rather than the rows it changed, so that writing identical values
// is not mistaken for a missing row.
func MySQLConfig(cfg config.Database) *mysql.Config {
	c := mysql.NewConfig()
	c.User = cfg.User
	c.Passwd = cfg.Password
	c.Net = "tcp"
	c.Addr = cfg.Host
	c.DBName = cfg.Name
	c.ParseTime = true
	c.ClientFoundRows = true
	c.Loc = time.UTC
	return c
}

// Open connects to MySQL and waits until the server answers. It tries cfg.ConnectAttempts times
// before giving up, which lets the service start before the database container is ready.
func Open(ctx context.Context, cfg config.Database) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", MySQLConfig(cfg).FormatDSN())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	attempts := max(cfg.ConnectAttempts, 1)
	for i := 1; ; i++ {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err = db.PingContext(pingCtx)
		cancel()
		if err == nil {
			slog.Info("connected to database", slog.String("host", cfg.Host), slog.String("name", cfg.Name))
			return db, nil
		}
		if i >= attempts {
			break
		}
		slog.Warn("database not reachable, retrying",
			slog.Int("attempt", i),
			slog.Duration("delay", retryDelay),
			slog.String("error", err.Error()),
		)
		select {
		case <-ctx.Done():
			db.Close()
			return nil, ctx.Err()
		case <-time.After(retryDelay):
		}
	}
	db.Close()
	return nil, fmt.Errorf("could not connect to database after %d attempts: %w", attempts, err)
}
