package service

import (
	"context"

	"github.com/greenova8-investment-ledger/internal/domain/investment"
	"github.com/greenova8-investment-ledger/internal/domain/project"
	"github.com/jackc/pgx/v5"
)

// RecordRequest is a proposed investment. Amount is the caller's decimal text.
type RecordRequest struct {
	UserID           string
	ProjectID        int64
	Amount           string
	PaymentReference *string
	IdempotencyKey   string
	CorrelationID    string
}

// RecordResult is a committed investment together with the project state it produced.
// Replayed is set when the result was found by idempotency key and nothing was written.
type RecordResult struct {
	Investment *investment.Investment
	Project    *project.Project
	Replayed   bool
}

// UserInvestments is a user's portfolio, newest first
type UserInvestments struct {
	Investments   []*investment.WithProject
	TotalInvested int64
	TotalProjects int
}

// ProjectInvestments is a project's investments read from one snapshot, newest first
type ProjectInvestments struct {
	Project        *project.Project
	Investments    []*investment.Investment
	TotalRaised    int64
	TotalInvestors int64
}

// LedgerService records investments and serves the read side of the ledger
type LedgerService interface {
	RecordInvestment(ctx context.Context, request *RecordRequest) (*RecordResult, error)
	ListInvestmentsForUser(ctx context.Context, userID string) (*UserInvestments, error)
	ListInvestmentsForProject(ctx context.Context, projectID int64) (*ProjectInvestments, error)
}

// RequestValidator checks the amount and returns it in minor units
type RequestValidator interface {
	Validate(ctx context.Context, request *RecordRequest) (int64, error)
}

// IdempotencyChecker finds an investment previously recorded under the request's key.
// It returns nil, nil when the key is unused.
type IdempotencyChecker interface {
	FindExisting(ctx context.Context, request *RecordRequest, amount int64) (*RecordResult, error)
}

// ProjectGate locks the project row, applies the status and target checks and reserves the amount
type ProjectGate interface {
	LockAndReserve(ctx context.Context, tx pgx.Tx, projectID int64, amount int64) (*project.Project, error)
}

// InvestmentRecorder inserts the investment row
type InvestmentRecorder interface {
	Insert(ctx context.Context, tx pgx.Tx, request *RecordRequest, amount int64) (*investment.Investment, error)
}

// OutboxManager writes the recorded-investment event in the same transaction
type OutboxManager interface {
	CreateOutboxEntry(ctx context.Context, tx pgx.Tx, inv *investment.Investment, updated *project.Project) error
}
