package ledger

import (
	"errors"
	"strconv"

	"github.com/greenova8-investment-ledger/internal/domain/project"
	"github.com/greenova8-investment-ledger/internal/domain/shared"
)

// Stable codes returned to API clients for each rejection kind
const (
	CodeInvalidAmount                  = "INVALID_AMOUNT"
	CodeBelowMinimum                   = "BELOW_MINIMUM"
	CodeProjectNotFound                = project.CodeNotFound
	CodeProjectNotAcceptingInvestments = "PROJECT_NOT_ACCEPTING_INVESTMENTS"
	CodeTargetExceeded                 = "TARGET_EXCEEDED"
	CodeIdempotencyKeyReused           = "IDEMPOTENCY_KEY_REUSED"
	CodeLedgerUnavailable              = "LEDGER_UNAVAILABLE"
)

// Coded is implemented by every ledger rejection
type Coded interface {
	error
	Code() string
}

// ErrInvalidAmount indicates an amount that is missing, malformed, non-positive or too precise
type ErrInvalidAmount struct {
	Raw    string
	Reason error
}

func (e ErrInvalidAmount) Error() string {
	if e.Reason != nil {
		return "invalid amount " + strconv.Quote(e.Raw) + ": " + e.Reason.Error()
	}
	return "invalid amount " + strconv.Quote(e.Raw)
}

func (e ErrInvalidAmount) Unwrap() error { return e.Reason }
func (e ErrInvalidAmount) Code() string  { return CodeInvalidAmount }

func (e ErrInvalidAmount) Is(target error) bool {
	_, ok := target.(ErrInvalidAmount)
	return ok
}

// ErrBelowMinimum indicates an amount under the configured floor
type ErrBelowMinimum struct {
	Amount  int64
	Minimum int64
}

func (e ErrBelowMinimum) Error() string {
	return "amount " + shared.FormatAmount(e.Amount) + " is below the minimum investment of " + shared.FormatAmount(e.Minimum)
}

func (e ErrBelowMinimum) Code() string { return CodeBelowMinimum }

func (e ErrBelowMinimum) Is(target error) bool {
	_, ok := target.(ErrBelowMinimum)
	return ok
}

// ErrProjectNotFound indicates the referenced project does not exist
type ErrProjectNotFound = project.ErrProjectNotFound

// ErrProjectNotAcceptingInvestments indicates a project whose status is not active
type ErrProjectNotAcceptingInvestments struct {
	ProjectID int64
	Status    string
}

func (e ErrProjectNotAcceptingInvestments) Error() string {
	return "project " + strconv.FormatInt(e.ProjectID, 10) + " is not accepting investments (status " + e.Status + ")"
}

func (e ErrProjectNotAcceptingInvestments) Code() string { return CodeProjectNotAcceptingInvestments }

func (e ErrProjectNotAcceptingInvestments) Is(target error) bool {
	t, ok := target.(ErrProjectNotAcceptingInvestments)
	if !ok {
		return false
	}
	return t.ProjectID == 0 || t.ProjectID == e.ProjectID
}

// ErrTargetExceeded indicates the amount would push the raised total past the target.
// Headroom is target minus raised at evaluation time.
type ErrTargetExceeded struct {
	ProjectID int64
	Amount    int64
	Headroom  int64
}

func (e ErrTargetExceeded) Error() string {
	return "investment of " + shared.FormatAmount(e.Amount) + " exceeds the target of project " +
		strconv.FormatInt(e.ProjectID, 10) + ", remaining " + shared.FormatAmount(e.Headroom)
}

func (e ErrTargetExceeded) Code() string { return CodeTargetExceeded }

func (e ErrTargetExceeded) Is(target error) bool {
	t, ok := target.(ErrTargetExceeded)
	if !ok {
		return false
	}
	return t.ProjectID == 0 || t.ProjectID == e.ProjectID
}

// ErrIdempotencyKeyReused indicates a key already used by the same user for a different request
type ErrIdempotencyKeyReused struct {
	Key string
}

func (e ErrIdempotencyKeyReused) Error() string {
	return "idempotency key " + strconv.Quote(e.Key) + " was already used for a different investment"
}

func (e ErrIdempotencyKeyReused) Code() string { return CodeIdempotencyKeyReused }

func (e ErrIdempotencyKeyReused) Is(target error) bool {
	_, ok := target.(ErrIdempotencyKeyReused)
	return ok
}

// ErrLedgerUnavailable indicates a transient storage failure. The whole call is safe to retry.
type ErrLedgerUnavailable struct {
	Cause error
}

func (e ErrLedgerUnavailable) Error() string {
	if e.Cause == nil {
		return "ledger unavailable"
	}
	return "ledger unavailable: " + e.Cause.Error()
}

func (e ErrLedgerUnavailable) Unwrap() error { return e.Cause }
func (e ErrLedgerUnavailable) Code() string  { return CodeLedgerUnavailable }

func (e ErrLedgerUnavailable) Is(target error) bool {
	_, ok := target.(ErrLedgerUnavailable)
	return ok
}

// CodeOf returns the stable code of a ledger rejection, or "" for any other error
func CodeOf(err error) string {
	var coded Coded
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return ""
}

// IsRejection reports whether err is a deterministic precondition failure that must not be retried
func IsRejection(err error) bool {
	switch CodeOf(err) {
	case "", CodeLedgerUnavailable:
		return false
	default:
		return true
	}
}
