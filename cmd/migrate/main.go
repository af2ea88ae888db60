package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/jackc/pgx/v5"

	"github.com/mabteam/poimap/internal/adapters/postgres"
	"github.com/mabteam/poimap/internal/pkg/config"
)

const migrationsDir = "migrations"

func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: migrate <up|down>")
	}

	cfg, err := config.Load("poimap-migrate")
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.Database.InMemory() {
		log.Fatal("nothing to migrate for database.driver=memory")
	}

	ctx := context.Background()
	db, err := postgres.New(ctx, cfg.Database.DSN(), 1)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer db.Close()

	var files []string
	switch os.Args[1] {
	case "up":
		files, err = migrationFiles("*.up.sql", false)
	case "down":
		files, err = migrationFiles("*.down.sql", true)
	default:
		log.Fatalf("unknown command: %s", os.Args[1])
	}
	if err != nil {
		log.Fatalf("list migrations: %v", err)
	}

	if err := apply(ctx, db, files); err != nil {
		log.Fatal(err)
	}
	log.Printf("%d migrations applied (%s)", len(files), os.Args[1])
}

// migrationFiles lists matching files in version order, or reverse order for down.
func migrationFiles(pattern string, reverse bool) ([]string, error) {
	files, err := filepath.Glob(filepath.Join(migrationsDir, pattern))
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	if reverse {
		sort.Sort(sort.Reverse(sort.StringSlice(files)))
	}
	return files, nil
}

// apply runs every file in one transaction.
func apply(ctx context.Context, db *postgres.DB, files []string) error {
	return pgx.BeginFunc(ctx, db.Pool, func(tx pgx.Tx) error {
		for _, f := range files {
			data, err := os.ReadFile(f)
			if err != nil {
				return fmt.Errorf("read %s: %w", f, err)
			}
			if _, err := tx.Exec(ctx, string(data)); err != nil {
				return fmt.Errorf("exec %s: %w", f, err)
			}
			fmt.Printf("OK  %s\n", f)
		}
		return nil
	})
}
