package main

import (
	"context"
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"onepager/internal/auth"
	"onepager/internal/config"
	"onepager/internal/repository/postgres"
	"onepager/internal/service/onepager"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop the one-pager table before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't create the demo user")
	clearData := flag.Bool("clear-data", false, "Delete every stored one-pager (keep schema)")
	demoEmail := flag.String("demo-email", "demo@onepager.dev", "Email of the demo user to create")
	demoPassword := flag.String("demo-password", "onepager-demo", "Password of the demo user")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && (*dropTables || *clearData) {
		log.Fatalf("🚫 BLOCKED: Cannot run destructive operations (--drop-tables or --clear-data) in production environment")
	}
	if cfg.DatabaseURL == "" {
		log.Fatalf("DATABASE_URL is required")
	}

	logger := config.NewLogger(cfg.Environment, os.Stdout)

	switch {
	case *clearData:
		log.Printf("🧹 Clearing data only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	case *schemaOnly:
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	default:
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	tables := postgres.NewTableNames(cfg.TablePrefix)

	if *dropTables {
		log.Println("🗑️  Dropping tables...")
		if err := postgres.DropSchema(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Printf("✅ Dropped %s", tables.OnePagers)
	}

	log.Println("📋 Ensuring database schema is up to date...")
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	if *clearData {
		tag, err := pool.Exec(ctx, "DELETE FROM "+tables.OnePagers)
		if err != nil {
			log.Fatalf("Failed to clear data: %v", err)
		}
		log.Printf("✅ Removed %d one-pagers", tag.RowsAffected())
		return
	}

	// Demo user needs the Supabase Admin API
	if cfg.SupabaseURL == "" || cfg.SupabaseKey == "" {
		log.Fatalf("SUPABASE_URL and SUPABASE_KEY are required to create the demo user")
	}
	admin := auth.NewAdminClient(cfg.SupabaseURL, cfg.SupabaseKey)

	userID, err := admin.EnsureUser(ctx, *demoEmail, *demoPassword)
	if err != nil {
		log.Fatalf("Failed to ensure demo user: %v", err)
	}
	log.Printf("👤 Demo user %s (ID: %s)", *demoEmail, userID)

	repo := postgres.NewOnePagerRepository(&postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	})
	rec, err := repo.GetOrCreateForUser(ctx, userID, onepager.DefaultRecord(userID))
	if err != nil {
		log.Fatalf("Failed to seed one-pager: %v", err)
	}
	log.Printf("✅ One-pager %s ready with %d sections", rec.ID, len(rec.Fields))

	log.Println("🎉 Seeding complete!")
}
