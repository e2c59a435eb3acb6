package library

import "time"

// Library groups games. GameCount is denormalized and may drift from the
// real number of member games; Reconcile repairs it.
type Library struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	OwnerID     string    `json:"owner_id"`
	IsPublic    bool      `json:"is_public"`
	GameCount   int       `json:"game_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewLibrary holds the fields of a library being created.
type NewLibrary struct {
	Title       string
	Description string
	IsPublic    bool
}

// Update is a partial update. Nil fields are left untouched.
type Update struct {
	Title       *string
	Description *string
	IsPublic    *bool
}

// ReconcileReport summarizes a counter reconciliation run.
type ReconcileReport struct {
	Checked int     `json:"checked"`
	Fixed   []Drift `json:"fixed"`
	Failed  []Drift `json:"failed,omitempty"`
}

// Drift is one library whose stored counter disagreed with its games.
type Drift struct {
	LibraryID string `json:"library_id"`
	Stored    int    `json:"stored"`
	Actual    int    `json:"actual"`
	Error     string `json:"error,omitempty"`
}
