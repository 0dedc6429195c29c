package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/greenova8-investment-ledger/internal/domain/investment"
	"github.com/greenova8-investment-ledger/internal/domain/ledger"
	"github.com/greenova8-investment-ledger/internal/domain/payment"
	"github.com/greenova8-investment-ledger/internal/domain/project"
	"github.com/greenova8-investment-ledger/internal/platform/pricing"
	"github.com/shopspring/decimal"
)

// ProjectService defines the interface for project administration and listings
type ProjectService interface {
	// ListProjects returns every project newest first with its investor count and raised sum
	ListProjects(ctx context.Context) ([]*project.Stats, error)

	// CreateProject creates an active project. targetAmount is a decimal string in currency units.
	// Returns ErrInvalidInput for a bad name or target
	CreateProject(ctx context.Context, name, description, targetAmount string) (*project.Project, error)

	// UpdateStatus changes the lifecycle status of a project
	// Returns ErrInvalidInput for an unknown status and ErrProjectNotFound for a missing project
	UpdateStatus(ctx context.Context, id int64, status string) (*project.Project, error)
}

// Conversion is a USD amount quoted in SOL
type Conversion struct {
	USDAmount decimal.Decimal
	SolAmount decimal.Decimal
	SolPrice  decimal.Decimal
	Source    pricing.Source
}

// Verification is the outcome of checking a payment signature on chain.
// Confirmation is set only when the signature was verified and stored.
type Verification struct {
	Signature    string
	Status       payment.Status
	Confirmed    bool
	Slot         uint64
	Confirmation *payment.Confirmation
}

// PaymentService defines the interface for SOL pricing and payment verification
type PaymentService interface {
	SolPrice(ctx context.Context) pricing.Quote

	// ConvertUSDToSol quotes usdAmount in SOL at the current price
	// Returns ErrInvalidInput when usdAmount is not a positive decimal
	ConvertUSDToSol(ctx context.Context, usdAmount string) (*Conversion, error)

	// VerifyPayment checks the signature and stores it when confirmed or finalized
	// Returns ErrSignatureClaimed when another user already stored the signature
	VerifyPayment(ctx context.Context, userID, signature string) (*Verification, error)

	// PaymentHistory returns the user's investments that carry a payment reference
	PaymentHistory(ctx context.Context, userID string) ([]*investment.WithProject, error)
}

// AuditService serves the projected audit trail
type AuditService interface {
	// ProjectLedger returns one page of a project's audit entries, newest first, and the total
	// Returns ErrProjectNotFound when the project does not exist
	ProjectLedger(ctx context.Context, projectID int64, page, perPage int) ([]*ledger.Entry, int64, error)
	// InvestmentEntry returns ErrEntryNotFound until the worker has projected the investment
	InvestmentEntry(ctx context.Context, investmentID uuid.UUID) (*ledger.Entry, error)
	LatestReconciliation(ctx context.Context) (*ledger.ReconciliationReport, error)
}

// ErrNoReconciliationReport is returned before the first reconciliation run has finished
var ErrNoReconciliationReport = errors.New("no reconciliation run has completed yet")

// ErrInvalidInput indicates a request field the service could not accept
type ErrInvalidInput struct {
	Field  string
	Reason error
}

func (e ErrInvalidInput) Error() string {
	return "invalid " + e.Field + ": " + e.Reason.Error()
}

func (e ErrInvalidInput) Unwrap() error { return e.Reason }

// Is matches any ErrInvalidInput
func (e ErrInvalidInput) Is(target error) bool {
	_, ok := target.(ErrInvalidInput)
	return ok
}

// ErrSignatureClaimed indicates a payment signature stored by a different user
var ErrSignatureClaimed = errors.New("payment signature already belongs to another user")
