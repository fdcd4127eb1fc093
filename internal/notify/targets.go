package notify

import (
	"context"
	"database/sql"
	"fmt"
)

// TargetRepository defines the interface for delivery target persistence.
type TargetRepository interface {
	// ListByUser retrieves all delivery targets registered for a user.
	ListByUser(ctx context.Context, userID int64) ([]Target, error)

	// Add registers a delivery target for a user. Re-adding an existing
	// (user, kind, address) triple is a no-op.
	Add(ctx context.Context, target *Target) error

	// Remove deletes a delivery target by id.
	Remove(ctx context.Context, id int64) error
}

// SQLiteTargetRepository implements TargetRepository using SQLite.
type SQLiteTargetRepository struct {
	db *sql.DB
}

// NewSQLiteTargetRepository creates a new SQLite-backed target repository.
func NewSQLiteTargetRepository(db *sql.DB) *SQLiteTargetRepository {
	return &SQLiteTargetRepository{db: db}
}

// ListByUser retrieves all delivery targets registered for a user.
func (r *SQLiteTargetRepository) ListByUser(ctx context.Context, userID int64) ([]Target, error) {
	query := `
		SELECT id, user_id, kind, address
		FROM notification_targets
		WHERE user_id = ?
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying notification targets: %w", err)
	}
	defer rows.Close()

	var result []Target
	for rows.Next() {
		var target Target
		if err := rows.Scan(&target.ID, &target.UserID, &target.Kind, &target.Address); err != nil {
			return nil, fmt.Errorf("scanning target row: %w", err)
		}
		result = append(result, target)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating target rows: %w", err)
	}
	return result, nil
}

// Add registers a delivery target for a user.
func (r *SQLiteTargetRepository) Add(ctx context.Context, target *Target) error {
	query := `
		INSERT INTO notification_targets (user_id, kind, address)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id, kind, address) DO NOTHING`

	res, err := r.db.ExecContext(ctx, query, target.UserID, string(target.Kind), target.Address)
	if err != nil {
		return fmt.Errorf("inserting notification target: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil && id != 0 {
		target.ID = id
	}
	return nil
}

// Remove deletes a delivery target by id.
func (r *SQLiteTargetRepository) Remove(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM notification_targets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("deleting notification target: %w", err)
	}
	return nil
}
