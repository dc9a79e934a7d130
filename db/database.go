package db

import (
	"database/sql"
	"fmt"

	"vibemesh/config"
	"vibemesh/logger"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

// Connect establishes a connection to the track registry database.
func Connect(cfg *config.Config) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	database, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = database.Ping(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to the database")
	return database, nil
}

// InitSchema creates the tracks table if it does not exist.
func InitSchema(database *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS tracks (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL UNIQUE,
		original_filename VARCHAR(512) NOT NULL,
		file_path VARCHAR(1024) NOT NULL,
		artist VARCHAR(255) NOT NULL DEFAULT '',
		album VARCHAR(255) NOT NULL DEFAULT '',
		year VARCHAR(16) NOT NULL DEFAULT '',
		analysis_status VARCHAR(32) NOT NULL DEFAULT 'pending',
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;`

	if _, err := database.Exec(query); err != nil {
		return fmt.Errorf("failed to create tracks table: %w", err)
	}

	logger.Info("Database schema initialized")
	return nil
}
