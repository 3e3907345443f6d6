package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"onepager/internal/config"
	"onepager/internal/repository/postgres"
)

func main() {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}
	if cfg.Environment == "prod" && os.Getenv("FORCE") != "1" {
		log.Fatal("refusing to drop production tables without FORCE=1")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() { _ = db.Close() }() // Error ignored: script exiting

	tables := postgres.NewTableNames(cfg.TablePrefix)
	if _, err := db.Exec("DROP TABLE IF EXISTS " + tables.OnePagers + " CASCADE"); err != nil {
		log.Fatalf("Failed to drop tables: %v", err)
	}

	fmt.Printf("All tables dropped successfully (prefix: %s)\n", cfg.TablePrefix)
}
