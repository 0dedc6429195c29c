package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/greenova8-investment-ledger/internal/api_gateway/middleware"
	"github.com/greenova8-investment-ledger/internal/api_gateway/service"
	"github.com/greenova8-investment-ledger/internal/domain/ledger"
	"github.com/greenova8-investment-ledger/internal/domain/shared"
)

// statusForCode maps each ledger rejection code to its HTTP status
var statusForCode = map[string]int{
	ledger.CodeInvalidAmount:                  http.StatusBadRequest,
	ledger.CodeBelowMinimum:                   http.StatusBadRequest,
	ledger.CodeProjectNotAcceptingInvestments: http.StatusBadRequest,
	ledger.CodeTargetExceeded:                 http.StatusBadRequest,
	ledger.CodeProjectNotFound:                http.StatusNotFound,
	ledger.CodeIdempotencyKeyReused:           http.StatusConflict,
	ledger.CodeLedgerUnavailable:              http.StatusServiceUnavailable,
}

// respondError writes the envelope for err. Ledger rejections keep their own code;
// TargetExceeded and BelowMinimum add the numbers a client needs to adjust the amount.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	code := ledger.CodeOf(err)
	status, known := statusForCode[code]

	switch {
	case known && code == ledger.CodeLedgerUnavailable:
		logger.Warn("Ledger unavailable", "error", err, "correlation_id", middleware.GetCorrelationID(c))
		RespondServiceUnavailable(c, code, "The ledger is temporarily unavailable, retry the request")
	case known:
		RespondWithErrorDetails(c, status, code, err.Error(), errorDetails(err))
	case errors.Is(err, service.ErrInvalidInput{}):
		RespondBadRequest(c, err.Error())
	case errors.Is(err, service.ErrSignatureClaimed):
		RespondConflict(c, err.Error())
	case errors.Is(err, ledger.ErrEntryNotFound{}):
		RespondNotFound(c, "LEDGER_ENTRY_NOT_FOUND", "Investment has not been projected into the audit ledger yet")
	case errors.Is(err, service.ErrNoReconciliationReport):
		RespondNotFound(c, "RECONCILIATION_REPORT_NOT_FOUND", err.Error())
	default:
		logger.Error("Request failed", "error", err, "path", c.FullPath(), "correlation_id", middleware.GetCorrelationID(c))
		RespondInternalError(c)
	}
}

func errorDetails(err error) map[string]interface{} {
	var exceeded ledger.ErrTargetExceeded
	if errors.As(err, &exceeded) {
		return map[string]interface{}{
			"projectId": exceeded.ProjectID,
			"headroom":  shared.FormatAmount(exceeded.Headroom),
		}
	}
	var below ledger.ErrBelowMinimum
	if errors.As(err, &below) {
		return map[string]interface{}{
			"minimum": shared.FormatAmount(below.Minimum),
		}
	}
	return nil
}
