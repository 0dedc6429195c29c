package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/greenova8-investment-ledger/internal/api_gateway/middleware"
	"github.com/greenova8-investment-ledger/internal/domain/shared"
	ledgersvc "github.com/greenova8-investment-ledger/internal/investment_ledger/service"
)

// IdempotencyKeyHeader carries the client's de-duplication key when the body has none
const IdempotencyKeyHeader = "Idempotency-Key"

// InvestmentHandler handles HTTP requests for investment operations
type InvestmentHandler struct {
	ledgerService ledgersvc.LedgerService
	logger        *slog.Logger
}

// NewInvestmentHandler creates a new investment handler
func NewInvestmentHandler(logger *slog.Logger, ledgerService ledgersvc.LedgerService) *InvestmentHandler {
	return &InvestmentHandler{
		ledgerService: ledgerService,
		logger:        logger,
	}
}

// Create records an investment for the caller. A replay of a recorded idempotency key returns 200
// with the original investment.
func (h *InvestmentHandler) Create(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		RespondUnauthorized(c, "")
		return
	}

	var req CreateInvestmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	key := req.IdempotencyKey
	if key == "" {
		key = c.GetHeader(IdempotencyKeyHeader)
	}

	result, err := h.ledgerService.RecordInvestment(c.Request.Context(), &ledgersvc.RecordRequest{
		UserID:           userID,
		ProjectID:        req.ProjectID,
		Amount:           string(req.Amount),
		PaymentReference: req.PaymentReference,
		IdempotencyKey:   key,
		CorrelationID:    middleware.GetCorrelationID(c),
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response := CreateInvestmentResponse{
		Investment: mapInvestmentToResponse(result.Investment),
		Project: ProjectRefResponse{
			Name:         result.Project.Name,
			TargetAmount: shared.FormatAmount(result.Project.TargetAmount),
		},
	}
	if result.Replayed {
		RespondOK(c, response)
		return
	}
	RespondCreated(c, response)
}

// MyInvestments lists the caller's portfolio
func (h *InvestmentHandler) MyInvestments(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		RespondUnauthorized(c, "")
		return
	}
	h.respondUserInvestments(c, userID)
}

// ForUser lists a user's portfolio. Callers may only read their own.
func (h *InvestmentHandler) ForUser(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		RespondUnauthorized(c, "")
		return
	}
	if c.Param("userId") != userID {
		RespondForbidden(c, "Cannot read another user's investments")
		return
	}
	h.respondUserInvestments(c, userID)
}

func (h *InvestmentHandler) respondUserInvestments(c *gin.Context, userID string) {
	portfolio, err := h.ledgerService.ListInvestmentsForUser(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var response UserInvestmentsResponse
	response.Investments = make([]UserInvestmentResponse, 0, len(portfolio.Investments))
	for _, inv := range portfolio.Investments {
		response.Investments = append(response.Investments, mapUserInvestmentToResponse(inv))
	}
	response.Summary.TotalInvested = shared.FormatAmount(portfolio.TotalInvested)
	response.Summary.TotalProjects = portfolio.TotalProjects

	RespondWithData(c, http.StatusOK, response)
}

// ForProject lists a project's investments. Public.
func (h *InvestmentHandler) ForProject(c *gin.Context) {
	projectID, err := strconv.ParseInt(c.Param("projectId"), 10, 64)
	if err != nil || projectID <= 0 {
		RespondBadRequest(c, "Invalid project ID")
		return
	}

	listing, err := h.ledgerService.ListInvestmentsForProject(c.Request.Context(), projectID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	var response ProjectInvestmentsResponse
	response.Investments = mapInvestmentsToResponse(listing.Investments)
	response.Summary.TotalRaised = shared.FormatAmount(listing.TotalRaised)
	response.Summary.TotalInvestors = listing.TotalInvestors

	RespondOK(c, response)
}
