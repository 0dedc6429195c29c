package payment

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Status mirrors the Solana commitment level of a transaction signature
type Status string

const (
	StatusProcessed Status = "processed"
	StatusConfirmed Status = "confirmed"
	StatusFinalized Status = "finalized"
	StatusFailed    Status = "failed"
	StatusNotFound  Status = "not_found"
)

var ErrEmptySignature = errors.New("transaction signature cannot be empty")

// Verified reports whether the signature reached a commitment level that may back an investment
func (s Status) Verified() bool {
	return s == StatusConfirmed || s == StatusFinalized
}

// Confirmation is a verified on-chain payment that can be attached to an investment as its payment reference
type Confirmation struct {
	Signature      string    `json:"signature"`
	Status         Status    `json:"status"`
	UserID         string    `json:"user_id"`
	Slot           uint64    `json:"slot"`
	AmountLamports *int64    `json:"amount_lamports,omitempty"`
	FromWallet     *string   `json:"from_wallet,omitempty"`
	ToWallet       *string   `json:"to_wallet,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// NormalizeSignature trims a base58 signature and rejects an empty one
func NormalizeSignature(raw string) (string, error) {
	sig := strings.TrimSpace(raw)
	if sig == "" {
		return "", ErrEmptySignature
	}
	return sig, nil
}

// Repository stores verified payment confirmations
type Repository interface {
	Save(ctx context.Context, c *Confirmation) error
	GetBySignature(ctx context.Context, signature string) (*Confirmation, error)
}

// ErrConfirmationNotFound indicates missing payment confirmation
type ErrConfirmationNotFound struct {
	Signature string
}

func (e ErrConfirmationNotFound) Error() string {
	return "payment confirmation not found: " + e.Signature
}

// Is matches any ErrConfirmationNotFound when the target carries no signature
func (e ErrConfirmationNotFound) Is(target error) bool {
	t, ok := target.(ErrConfirmationNotFound)
	if !ok {
		return false
	}
	return t.Signature == "" || t.Signature == e.Signature
}
