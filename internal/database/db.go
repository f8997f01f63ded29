package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/rezmor/todo-rest-api/internal/database/migrations"
)

// Open connects to Postgres through the pgx stdlib driver and verifies the
// connection.
func Open(user, pass, host, port, name string) (*sql.DB, error) {
	auth := url.User(user)
	if pass != "" {
		auth = url.UserPassword(user, pass)
	}
	dsn := fmt.Sprintf("postgres://%s@%s:%s/%s?sslmode=disable", auth.String(), host, port, name)

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// Pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(30 * time.Minute)

	// Ping with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}
	return db, nil
}

// Migrate applies the embedded goose migrations.
func Migrate(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, ".")
}
