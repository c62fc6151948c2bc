package db

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations
var migrations embed.FS

// Migration sets, one per service database.
const (
	FriendsMigrations   = "migrations/friends"
	MicroblogMigrations = "migrations/microblog"
)

// Connect opens the postgres database behind dsn and applies the migration set
// found under dir.
func Connect(ctx context.Context, dsn, dir string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(ctx, db, migrations, dir); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func runMigrations(ctx context.Context, db *sqlx.DB, fsys fs.FS, dir string) error {
	goose.SetBaseFS(fsys)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.DB, dir); err != nil {
		return err
	}
	log.Printf("database migrations applied dir=%s", dir)
	return nil
}
