package project

import (
	"context"
	"strconv"

	"github.com/jackc/pgx/v5"
)

// Repository defines project persistence operations
type Repository interface {
	Create(ctx context.Context, project *Project) error
	GetByID(ctx context.Context, id int64) (*Project, error)
	ListWithStats(ctx context.Context) ([]*Stats, error)
	GetWithStats(ctx context.Context, id int64) (*Stats, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Project, error)

	// LockForUpdate acquires a row lock that serializes investments into one project
	LockForUpdate(ctx context.Context, id int64) (*Project, error)

	// IncreaseRaised adds amount to raised_amount only if the result stays within the target
	IncreaseRaised(ctx context.Context, id int64, amount int64) (*Project, error)

	// CheckTotals compares every project's stored total with the sum of its investments
	CheckTotals(ctx context.Context) ([]TotalsCheck, error)

	WithTx(tx pgx.Tx) Repository
}

// CodeNotFound is the stable client-facing code for a missing project
const CodeNotFound = "PROJECT_NOT_FOUND"

// ErrProjectNotFound indicates missing project
type ErrProjectNotFound struct {
	ProjectID int64
}

func (e ErrProjectNotFound) Error() string {
	return "project not found: " + strconv.FormatInt(e.ProjectID, 10)
}

func (e ErrProjectNotFound) Code() string { return CodeNotFound }

// Is matches any ErrProjectNotFound when the target carries no ID
func (e ErrProjectNotFound) Is(target error) bool {
	t, ok := target.(ErrProjectNotFound)
	if !ok {
		return false
	}
	return t.ProjectID == 0 || t.ProjectID == e.ProjectID
}

// ErrRaiseRejected indicates the conditional raise matched no row because it would pass the target
type ErrRaiseRejected struct {
	ProjectID int64
	Amount    int64
}

func (e ErrRaiseRejected) Error() string {
	return "raise of " + strconv.FormatInt(e.Amount, 10) + " rejected for project " + strconv.FormatInt(e.ProjectID, 10)
}
