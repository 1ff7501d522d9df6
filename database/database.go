package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"letter-simplify-service/config"
	"letter-simplify-service/models"

	"github.com/apex/log"
	_ "github.com/go-sql-driver/mysql"
)

// Database is the MySQL-backed explanation store
type Database struct {
	db *sql.DB
}

// NewDatabase creates a new database connection
func NewDatabase(cfg *config.Config) (*Database, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Set connection pool settings
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	log.Infof("Database connected successfully to %s:%s/%s", cfg.DBHost, cfg.DBPort, cfg.DBName)

	return &Database{db: db}, nil
}

// NewWithDB wraps an existing connection; used by tests
func NewWithDB(db *sql.DB) *Database {
	return &Database{db: db}
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// EnsureExplanationsTable creates the explanations table if it doesn't exist
func (d *Database) EnsureExplanationsTable(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS explanations (
			id BIGINT NOT NULL AUTO_INCREMENT,
			original_text TEXT NOT NULL,
			simplified_text TEXT NOT NULL,
			summary TEXT NOT NULL,
			action_items JSON NOT NULL,
			key_points JSON NOT NULL,
			tone VARCHAR(16) NOT NULL DEFAULT 'neutral',
			language VARCHAR(8) NOT NULL DEFAULT 'en',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (id)
		)
	`

	_, err := d.db.ExecContext(ctx, query)
	if err != nil {
		return fmt.Errorf("failed to create explanations table: %w", err)
	}

	log.Info("Explanations table ensured")
	return nil
}

// SaveExplanation inserts an explanation and returns its id
func (d *Database) SaveExplanation(ctx context.Context, exp *models.Explanation) (int64, error) {
	actionItems, err := json.Marshal(exp.ActionItems)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal action items: %w", err)
	}
	keyPoints, err := json.Marshal(exp.KeyPoints)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal key points: %w", err)
	}

	query := `
		INSERT INTO explanations (original_text, simplified_text, summary, action_items, key_points, tone, language)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := d.db.ExecContext(ctx, query,
		exp.OriginalText,
		exp.SimplifiedText,
		exp.Summary,
		string(actionItems),
		string(keyPoints),
		exp.Tone,
		exp.Language,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save explanation: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get explanation id: %w", err)
	}
	exp.ID = id
	return id, nil
}

// GetExplanation returns the explanation with the given id, or nil when it
// does not exist
func (d *Database) GetExplanation(ctx context.Context, id int64) (*models.Explanation, error) {
	query := `
		SELECT id, original_text, simplified_text, summary, action_items, key_points, tone, language, created_at
		FROM explanations
		WHERE id = ?
	`

	var exp models.Explanation
	var actionItems, keyPoints string
	err := d.db.QueryRowContext(ctx, query, id).Scan(
		&exp.ID,
		&exp.OriginalText,
		&exp.SimplifiedText,
		&exp.Summary,
		&actionItems,
		&keyPoints,
		&exp.Tone,
		&exp.Language,
		&exp.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get explanation: %w", err)
	}

	if err := json.Unmarshal([]byte(actionItems), &exp.ActionItems); err != nil {
		exp.ActionItems = []string{}
	}
	if err := json.Unmarshal([]byte(keyPoints), &exp.KeyPoints); err != nil {
		exp.KeyPoints = []string{}
	}

	return &exp, nil
}
