package notify

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// LogEntry is one attempted notification delivery.
type LogEntry struct {
	ID           string    `json:"id"`
	GreenhouseID int64     `json:"greenhouse_id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	Delivered    bool      `json:"delivered"`
	Error        string    `json:"error,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// LogRepository defines the interface for the notification delivery log.
type LogRepository interface {
	// Record appends one delivery attempt.
	Record(ctx context.Context, entry *LogEntry) error

	// ListByGreenhouse retrieves the newest attempts for a greenhouse,
	// most recent first.
	ListByGreenhouse(ctx context.Context, greenhouseID int64, limit int) ([]LogEntry, error)
}

// SQLiteLogRepository implements LogRepository using SQLite.
type SQLiteLogRepository struct {
	db *sql.DB
}

// NewSQLiteLogRepository creates a new SQLite-backed delivery log.
func NewSQLiteLogRepository(db *sql.DB) *SQLiteLogRepository {
	return &SQLiteLogRepository{db: db}
}

// Record appends one delivery attempt.
func (r *SQLiteLogRepository) Record(ctx context.Context, entry *LogEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO notification_log (id, greenhouse_id, title, body, delivered, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`

	delivered := 0
	if entry.Delivered {
		delivered = 1
	}

	var errText interface{}
	if entry.Error != "" {
		errText = entry.Error
	}

	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.GreenhouseID,
		entry.Title,
		entry.Body,
		delivered,
		errText,
		entry.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting notification log entry: %w", err)
	}
	return nil
}

// ListByGreenhouse retrieves the newest attempts for a greenhouse.
func (r *SQLiteLogRepository) ListByGreenhouse(ctx context.Context, greenhouseID int64, limit int) ([]LogEntry, error) {
	query := `
		SELECT id, greenhouse_id, title, body, delivered, error, created_at
		FROM notification_log
		WHERE greenhouse_id = ?
		ORDER BY created_at DESC, id
		LIMIT ?`

	rows, err := r.db.QueryContext(ctx, query, greenhouseID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying notification log: %w", err)
	}
	defer rows.Close()

	var result []LogEntry
	for rows.Next() {
		var (
			entry     LogEntry
			delivered int
			errText   sql.NullString
			createdAt string
		)
		if err := rows.Scan(&entry.ID, &entry.GreenhouseID, &entry.Title, &entry.Body, &delivered, &errText, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning log row: %w", err)
		}
		entry.Delivered = delivered != 0
		if errText.Valid {
			entry.Error = errText.String
		}
		if entry.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		result = append(result, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating log rows: %w", err)
	}
	return result, nil
}
