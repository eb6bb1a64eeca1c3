package activity

import "context"

// Repository defines the interface for activity log persistence
type Repository interface {
	// Append stores e and prunes all but the newest retain entries
	Append(ctx context.Context, e Entry, retain int) error

	// FindRecent lists entries newest first, at most limit (0 means all)
	FindRecent(ctx context.Context, limit int) ([]Entry, error)

	// DeleteAll clears the log. Only used by the administrative reset.
	DeleteAll(ctx context.Context) (int64, error)
}
