package database

import (
	"context" // For managing request context and cancellation signals
	"fmt"     // For string formatting
	"log"     // For logging messages
	"time"    // For pool timeout settings

	"paediprime/backend/config" // Import the local config package

	"github.com/jackc/pgx/v5"         // Base pgx package
	"github.com/jackc/pgx/v5/pgconn"  // For pgconn.CommandTag
	"github.com/jackc/pgx/v5/pgxpool" // PostgreSQL driver and connection pool
)

// DBPool defines the interface for database operations we need.
// This allows mocking for tests. It includes methods from pgxpool.Pool.
type DBPool interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
	Begin(ctx context.Context) (pgx.Tx, error) // Transactions for the registration flow
}

// DB holds the database connection pool interface.
var DB DBPool

// ConnectDB initializes the database connection pool using configuration.
func ConnectDB(cfg *config.Config) error {
	connString := fmt.Sprintf("postgresql://%s:%s@%s:%s/%s",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName,
	)

	log.Println("Attempting to connect to database...")

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		log.Printf("Error parsing database connection string: %v\n", err)
		return fmt.Errorf("unable to parse connection string: %w", err)
	}

	// Pool sizing: up to 20 clients, idle clients closed after 30s,
	// connection attempts give up after 5s.
	poolConfig.MaxConns = 20
	poolConfig.MaxConnIdleTime = 30 * time.Second
	poolConfig.ConnConfig.ConnectTimeout = 5 * time.Second
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Printf("Error connecting to the database: %v\n", err)
		return fmt.Errorf("unable to create connection pool: %w", err)
	}

	DB = pool

	// Test the connection
	err = DB.Ping(context.Background())
	if err != nil {
		log.Printf("Error pinging database: %v\n", err)
		DB.Close() // Close the pool if ping fails
		return fmt.Errorf("database ping failed: %w", err)
	}

	log.Println("Database connection pool established successfully!")
	return nil
}

// CloseDB closes the database connection pool.
// Should be called on application shutdown.
func CloseDB() {
	if DB != nil {
		log.Println("Closing database connection pool...")
		DB.Close()
		log.Println("Database connection pool closed.")
	}
}

// InitDB loads config and connects to the database.
// Exits the application if connection fails.
func InitDB() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if err := ConnectDB(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
}
