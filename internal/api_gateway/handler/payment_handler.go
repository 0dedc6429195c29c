package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/greenova8-investment-ledger/internal/api_gateway/middleware"
	"github.com/greenova8-investment-ledger/internal/api_gateway/service"
)

// PaymentHandler handles HTTP requests for SOL pricing and payment verification
type PaymentHandler struct {
	paymentService service.PaymentService
	logger         *slog.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(logger *slog.Logger, paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{
		paymentService: paymentService,
		logger:         logger,
	}
}

// SolPrice returns the current SOL/USD rate
func (h *PaymentHandler) SolPrice(c *gin.Context) {
	quote := h.paymentService.SolPrice(c.Request.Context())
	RespondOK(c, gin.H{
		"price":  quote.Price.String(),
		"source": string(quote.Source),
	})
}

// ConvertUSDToSol quotes a USD amount in SOL
func (h *PaymentHandler) ConvertUSDToSol(c *gin.Context) {
	var req ConvertUSDRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	conversion, err := h.paymentService.ConvertUSDToSol(c.Request.Context(), string(req.USDAmount))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	RespondOK(c, gin.H{
		"usdAmount": conversion.USDAmount.String(),
		"solAmount": conversion.SolAmount.String(),
		"solPrice":  conversion.SolPrice.String(),
	})
}

// VerifyPayment checks a transaction signature and stores it once confirmed
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		RespondUnauthorized(c, "")
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Transaction signature is required")
		return
	}

	verification, err := h.paymentService.VerifyPayment(c.Request.Context(), userID, req.Signature)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response := VerifyPaymentResponse{
		Signature: verification.Signature,
		Status:    string(verification.Status),
		Confirmed: verification.Confirmed,
		Slot:      verification.Slot,
	}
	if conf := verification.Confirmation; conf != nil {
		response.AmountLamports = conf.AmountLamports
		response.From = conf.FromWallet
		response.To = conf.ToWallet
	}
	RespondOK(c, response)
}

// History lists the caller's investments that reference an on-chain payment
func (h *PaymentHandler) History(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		RespondUnauthorized(c, "")
		return
	}

	history, err := h.paymentService.PaymentHistory(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	transactions := make([]PaymentHistoryItem, 0, len(history))
	for _, inv := range history {
		transactions = append(transactions, PaymentHistoryItem{
			InvestmentResponse: mapInvestmentToResponse(inv.Investment),
			ProjectName:        inv.Project.Name,
		})
	}
	RespondOK(c, gin.H{"transactions": transactions})
}
