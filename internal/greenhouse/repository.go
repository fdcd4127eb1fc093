package greenhouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for greenhouse persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// Register records a controller announcing itself with a pairing pin.
	// Create-if-absent; overwrites the pin while the greenhouse is unowned;
	// silent no-op once the greenhouse is owned. Safe under concurrent
	// duplicate registrations.
	Register(ctx context.Context, guid, pin string) error

	// FindByGUID retrieves a greenhouse by its controller guid.
	// Returns ErrNotFound if the guid is unknown.
	FindByGUID(ctx context.Context, guid string) (*Greenhouse, error)

	// FindByID retrieves a greenhouse by its row id.
	// Returns ErrNotFound if the id does not exist.
	FindByID(ctx context.Context, id int64) (*Greenhouse, error)

	// ListByUser retrieves all greenhouses owned by a user.
	ListByUser(ctx context.Context, userID int64) ([]Greenhouse, error)

	// BindOwner claims an unowned greenhouse for a user.
	// Returns ErrNotFound for an unknown guid, ErrAlreadyOwned if the
	// greenhouse has an owner, ErrPinMismatch if the pin is wrong.
	BindOwner(ctx context.Context, guid, pin string, userID int64) error

	// UnbindOwner clears the owner, making the greenhouse pairable again.
	// Returns ErrNotFound for an unknown guid, ErrNotOwned if the
	// greenhouse has no owner.
	UnbindOwner(ctx context.Context, guid string) error

	// SetTitle updates the user-assigned display name.
	// Returns ErrNotFound if the guid is unknown.
	SetTitle(ctx context.Context, guid, title string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Register records a controller announcing itself with a pairing pin.
//
// The whole operation is a single upsert keyed on the unique guid column:
// the conflict clause only fires its update while user_id is NULL, so an
// owned greenhouse ignores registration replays. Concurrent duplicates
// serialise inside SQLite and still produce exactly one row.
func (r *SQLiteRepository) Register(ctx context.Context, guid, pin string) error {
	if guid == "" {
		return ErrEmptyGUID
	}
	if pin == "" {
		return ErrEmptyPayload
	}

	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		INSERT INTO greenhouses (guid, pin, created_at, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(guid) DO UPDATE
			SET pin = excluded.pin, updated_at = excluded.updated_at
			WHERE greenhouses.user_id IS NULL`

	if _, err := r.db.ExecContext(ctx, query, guid, pin, now, now); err != nil {
		return fmt.Errorf("registering greenhouse: %w", err)
	}

	return nil
}

// FindByGUID retrieves a greenhouse by its controller guid.
func (r *SQLiteRepository) FindByGUID(ctx context.Context, guid string) (*Greenhouse, error) {
	query := `
		SELECT id, guid, pin, user_id, title, created_at, updated_at
		FROM greenhouses
		WHERE guid = ?`

	row := r.db.QueryRowContext(ctx, query, guid)
	gh, err := scanGreenhouse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying greenhouse by guid: %w", err)
	}
	return gh, nil
}

// FindByID retrieves a greenhouse by its row id.
func (r *SQLiteRepository) FindByID(ctx context.Context, id int64) (*Greenhouse, error) {
	query := `
		SELECT id, guid, pin, user_id, title, created_at, updated_at
		FROM greenhouses
		WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	gh, err := scanGreenhouse(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying greenhouse by id: %w", err)
	}
	return gh, nil
}

// ListByUser retrieves all greenhouses owned by a user.
func (r *SQLiteRepository) ListByUser(ctx context.Context, userID int64) ([]Greenhouse, error) {
	query := `
		SELECT id, guid, pin, user_id, title, created_at, updated_at
		FROM greenhouses
		WHERE user_id = ?
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying greenhouses by user: %w", err)
	}
	defer rows.Close()

	var result []Greenhouse
	for rows.Next() {
		gh, err := scanGreenhouse(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning greenhouse row: %w", err)
		}
		result = append(result, *gh)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating greenhouse rows: %w", err)
	}
	return result, nil
}

// BindOwner claims an unowned greenhouse for a user.
func (r *SQLiteRepository) BindOwner(ctx context.Context, guid, pin string, userID int64) error {
	gh, err := r.FindByGUID(ctx, guid)
	if err != nil {
		return err
	}
	if gh.Owned() {
		return ErrAlreadyOwned
	}
	if gh.Pin != pin {
		return ErrPinMismatch
	}

	now := time.Now().UTC().Format(time.RFC3339)

	// The WHERE repeats the ownership check so a concurrent bind
	// cannot steal the greenhouse between read and write.
	query := `
		UPDATE greenhouses
		SET user_id = ?, updated_at = ?
		WHERE guid = ? AND pin = ? AND user_id IS NULL`

	res, err := r.db.ExecContext(ctx, query, userID, now, guid, pin)
	if err != nil {
		return fmt.Errorf("binding greenhouse owner: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking bind result: %w", err)
	}
	if affected == 0 {
		return ErrAlreadyOwned
	}
	return nil
}

// UnbindOwner clears the owner, making the greenhouse pairable again.
func (r *SQLiteRepository) UnbindOwner(ctx context.Context, guid string) error {
	gh, err := r.FindByGUID(ctx, guid)
	if err != nil {
		return err
	}
	if !gh.Owned() {
		return ErrNotOwned
	}

	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		UPDATE greenhouses
		SET user_id = NULL, updated_at = ?
		WHERE guid = ?`

	if _, err := r.db.ExecContext(ctx, query, now, guid); err != nil {
		return fmt.Errorf("unbinding greenhouse owner: %w", err)
	}
	return nil
}

// SetTitle updates the user-assigned display name.
func (r *SQLiteRepository) SetTitle(ctx context.Context, guid, title string) error {
	now := time.Now().UTC().Format(time.RFC3339)

	query := `
		UPDATE greenhouses
		SET title = ?, updated_at = ?
		WHERE guid = ?`

	res, err := r.db.ExecContext(ctx, query, title, now, guid)
	if err != nil {
		return fmt.Errorf("updating greenhouse title: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking title update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...interface{}) error
}

// scanGreenhouse scans a greenhouse row from the standard column order.
func scanGreenhouse(row scanner) (*Greenhouse, error) {
	var (
		gh        Greenhouse
		userID    sql.NullInt64
		title     sql.NullString
		createdAt string
		updatedAt string
	)

	if err := row.Scan(&gh.ID, &gh.GUID, &gh.Pin, &userID, &title, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	if userID.Valid {
		gh.UserID = &userID.Int64
	}
	if title.Valid {
		gh.Title = title.String
	}

	var err error
	if gh.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if gh.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}

	return &gh, nil
}
