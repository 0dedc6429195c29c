package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/greenova8-investment-ledger/internal/domain/investment"
	"github.com/greenova8-investment-ledger/internal/domain/payment"
	"github.com/greenova8-investment-ledger/internal/domain/shared"
	"github.com/greenova8-investment-ledger/internal/platform/pricing"
	"github.com/greenova8-investment-ledger/internal/platform/solana"
)

// lamportDigits is the precision of a SOL amount
const lamportDigits = 9

var errNonPositiveUSD = errors.New("amount must be a positive decimal")

// PaymentServiceImpl implements the PaymentService interface
type PaymentServiceImpl struct {
	prices         pricing.PriceProvider
	chain          solana.Client
	paymentRepo    payment.Repository
	investmentRepo investment.Repository
	logger         *slog.Logger
}

// NewPaymentService creates a new payment service
func NewPaymentService(
	logger *slog.Logger,
	prices pricing.PriceProvider,
	chain solana.Client,
	paymentRepo payment.Repository,
	investmentRepo investment.Repository,
) PaymentService {
	return &PaymentServiceImpl{
		prices:         prices,
		chain:          chain,
		paymentRepo:    paymentRepo,
		investmentRepo: investmentRepo,
		logger:         logger,
	}
}

func (s *PaymentServiceImpl) SolPrice(ctx context.Context) pricing.Quote {
	return s.prices.SolPrice(ctx)
}

func (s *PaymentServiceImpl) ConvertUSDToSol(ctx context.Context, usdAmount string) (*Conversion, error) {
	usd, err := shared.ParseDecimal(usdAmount)
	if err != nil {
		return nil, ErrInvalidInput{Field: "usdAmount", Reason: errNonPositiveUSD}
	}
	if !usd.IsPositive() {
		return nil, ErrInvalidInput{Field: "usdAmount", Reason: errNonPositiveUSD}
	}

	quote := s.prices.SolPrice(ctx)
	return &Conversion{
		USDAmount: usd,
		SolAmount: usd.DivRound(quote.Price, lamportDigits),
		SolPrice:  quote.Price,
		Source:    quote.Source,
	}, nil
}

func (s *PaymentServiceImpl) VerifyPayment(ctx context.Context, userID, signature string) (*Verification, error) {
	sig, err := payment.NormalizeSignature(signature)
	if err != nil {
		return nil, ErrInvalidInput{Field: "signature", Reason: err}
	}
	logger := s.logger.With("user_id", userID, "signature", sig)

	existing, err := s.paymentRepo.GetBySignature(ctx, sig)
	switch {
	case err == nil:
		if existing.UserID != userID {
			logger.Warn("Payment signature already claimed", "owner", existing.UserID)
			return nil, ErrSignatureClaimed
		}
	case errors.Is(err, payment.ErrConfirmationNotFound{}):
	default:
		return nil, err
	}

	status, err := s.chain.GetSignatureStatus(ctx, sig)
	if err != nil {
		logger.Error("Failed to get signature status", "error", err)
		return nil, err
	}

	result := &Verification{
		Signature: sig,
		Status:    status.Status,
		Confirmed: status.Status.Verified(),
		Slot:      status.Slot,
	}
	if !result.Confirmed {
		logger.Info("Payment not confirmed", "status", status.Status)
		return result, nil
	}

	confirmation := &payment.Confirmation{
		Signature: sig,
		Status:    status.Status,
		UserID:    userID,
		Slot:      status.Slot,
		CreatedAt: time.Now().UTC(),
	}
	// Transfer details are informational; a confirmed status is enough to store the payment
	if transfer, err := s.chain.GetTransfer(ctx, sig); err != nil {
		logger.Warn("Failed to read transfer details", "error", err)
	} else {
		confirmation.AmountLamports = &transfer.AmountLamports
		if transfer.From != "" {
			confirmation.FromWallet = &transfer.From
		}
		if transfer.To != "" {
			confirmation.ToWallet = &transfer.To
		}
	}

	if err := s.paymentRepo.Save(ctx, confirmation); err != nil {
		return nil, err
	}

	logger.Info("Payment confirmed", "status", status.Status, "slot", status.Slot)
	result.Confirmation = confirmation
	return result, nil
}

func (s *PaymentServiceImpl) PaymentHistory(ctx context.Context, userID string) ([]*investment.WithProject, error) {
	history, err := s.investmentRepo.ListWithPaymentReference(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to get payment history", "user_id", userID, "error", err)
		return nil, err
	}
	return history, nil
}
