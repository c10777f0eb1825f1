package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"storefront/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

// Lists the client state rows kept by the postgres storage driver.
// Usage: go run ./scripts -device <sid>
func main() {
	_ = godotenv.Load()

	device := flag.String("device", "", "only show keys of this device id")
	flag.Parse()

	connString := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		envOr("DB_USER", "postgres"),
		envOr("DB_PASSWORD", "postgres"),
		envOr("DB_HOST", "localhost"),
		envOr("DB_PORT", "5432"),
		envOr("DB_NAME", "storefront"),
	)

	ctx := context.Background()
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Unable to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer conn.Close(ctx)

	prefix := ""
	if *device != "" {
		prefix = repository.DevicePrefix(*device)
	}

	rows, err := conn.Query(ctx,
		"SELECT key, length(value), updated_at FROM client_state WHERE key LIKE $1 || '%' ORDER BY key",
		prefix,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var (
			key       string
			size      int
			updatedAt time.Time
		)
		if err := rows.Scan(&key, &size, &updatedAt); err != nil {
			fmt.Fprintf(os.Stderr, "Scan failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("  %-60s %6d bytes  %s\n", key, size, updatedAt.Format(time.RFC3339))
		count++
	}
	if err := rows.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Query failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n%d state records\n", count)
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
