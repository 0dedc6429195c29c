package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/greenova8-investment-ledger/internal/api_gateway/middleware"
	"github.com/greenova8-investment-ledger/internal/api_gateway/service"
	"github.com/greenova8-investment-ledger/internal/platform/auth"
)

// LedgerHandler serves the audit trail projected from investment events
type LedgerHandler struct {
	auditService service.AuditService
	logger       *slog.Logger
}

// NewLedgerHandler creates a new ledger handler
func NewLedgerHandler(logger *slog.Logger, auditService service.AuditService) *LedgerHandler {
	return &LedgerHandler{
		auditService: auditService,
		logger:       logger,
	}
}

// ProjectLedger retrieves the paginated audit trail of a project
func (h *LedgerHandler) ProjectLedger(c *gin.Context) {
	id, ok := parseProjectID(c)
	if !ok {
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		h.logger.Warn("Invalid pagination parameters", "error", err)
		RespondBadRequest(c, "Invalid pagination parameters")
		return
	}

	entries, total, err := h.auditService.ProjectLedger(c.Request.Context(), id, pagination.Page, pagination.PerPage)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	response := make([]LedgerEntryResponse, 0, len(entries))
	for _, entry := range entries {
		response = append(response, mapLedgerEntryToResponse(entry))
	}

	RespondWithPaginatedData(c, http.StatusOK, response, pagination.Page, pagination.PerPage, int(total))
}

// InvestmentEntry returns the audit entry of one investment to its owner or an admin
func (h *LedgerHandler) InvestmentEntry(c *gin.Context) {
	investmentID, err := uuid.Parse(c.Param("investmentId"))
	if err != nil {
		RespondBadRequest(c, "Invalid investment ID")
		return
	}

	entry, err := h.auditService.InvestmentEntry(c.Request.Context(), investmentID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	callerID := middleware.GetUserID(c)
	if entry.UserID != callerID && !middleware.HasRole(c, auth.RoleAdmin) {
		h.logger.Warn("Ledger entry requested by another user",
			"investment_id", investmentID.String(), "user_id", callerID,
		)
		RespondForbidden(c, "Investments of other users are not visible")
		return
	}

	RespondOK(c, mapLedgerEntryToResponse(entry))
}

// LatestReconciliation returns the most recent consistency report
func (h *LedgerHandler) LatestReconciliation(c *gin.Context) {
	report, err := h.auditService.LatestReconciliation(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	RespondOK(c, mapReconciliationReportToResponse(report))
}
