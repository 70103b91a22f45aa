package database_test

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/wonny/rentix/backend/pkg/config"
	"github.com/wonny/rentix/backend/pkg/database"
)

// Example connects to PostgreSQL and prints pool health
func Example() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := db.HealthCheck(ctx)
	if err != nil {
		log.Fatalf("Health check failed: %v", err)
	}

	fmt.Printf("healthy=%v max=%d idle=%d\n", status.Healthy, status.Stats.MaxConns, status.Stats.IdleConns)
}

// ExampleOpenSQLite opens the offline store used by the CLI
func ExampleOpenSQLite() {
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	fmt.Println(db.Stats().MaxOpenConnections)
}
