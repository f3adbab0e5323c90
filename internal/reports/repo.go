package reports

import "context"

// Repo defines persistence operations for reports.
type Repo interface {
	Create(ctx context.Context, report Report) error
	GetByID(ctx context.Context, reportID string) (Report, error)
	// ListByUser returns the user's reports newest first.
	ListByUser(ctx context.Context, userID string) ([]Report, error)
	// UpdateCoverLetter replaces the stored letter. Returns ErrNotFound when no
	// report with that id belongs to userID.
	UpdateCoverLetter(ctx context.Context, reportID, userID, letter, tone string) error
}
