package greenhouse

import "time"

// Greenhouse represents one physical controller known to the core.
// This matches the greenhouses table in the initial schema migration.
type Greenhouse struct {
	// Identity
	ID   int64  `json:"id"`
	GUID string `json:"guid"`

	// Pin is the pairing code most recently announced by the controller.
	// It is only meaningful while the greenhouse is unowned.
	Pin string `json:"-"`

	// UserID is the owning user, nil while the controller is unclaimed.
	UserID *int64 `json:"user_id,omitempty"`

	// Title is the user-assigned display name.
	Title string `json:"title,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Owned reports whether the greenhouse has been claimed by a user.
func (g *Greenhouse) Owned() bool {
	return g.UserID != nil
}
