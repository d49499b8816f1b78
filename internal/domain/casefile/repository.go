package casefile

import "context"

// Repository is the persistence contract for case records.
type Repository interface {
	GetByNumbers(ctx context.Context, numbers []string) ([]CaseRecord, error)
	// Update applies cmd and records a version row in one transaction. It
	// fails with ErrCodeCaseNotFound when no case has the number.
	Update(ctx context.Context, cmd UpdateCommand) error
	// Current returns the live row as a version, or ErrCodeCaseNotFound.
	Current(ctx context.Context, number string) (*Version, error)
	// History returns the audit rows of number, newest first.
	History(ctx context.Context, number string) ([]Version, error)
	// ListNumbers returns the case numbers matching any LIKE prefix.
	ListNumbers(ctx context.Context, prefixes []string) ([]string, error)
	ListDeadlines(ctx context.Context) ([]DeadlineRow, error)
	Search(ctx context.Context, c SearchCriteria) ([]CaseRecord, error)
	// Years lists the distinct case-number years, newest first.
	Years(ctx context.Context) ([]int, error)
}
