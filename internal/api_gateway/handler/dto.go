package handler

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/greenova8-investment-ledger/internal/domain/investment"
	"github.com/greenova8-investment-ledger/internal/domain/ledger"
	"github.com/greenova8-investment-ledger/internal/domain/project"
	"github.com/greenova8-investment-ledger/internal/domain/shared"
)

// AmountInput accepts an amount sent as a JSON string or number and keeps its literal text,
// so "100.50" and 100.50 reach the ledger's decimal parser unchanged. Any other JSON value
// decodes to an empty amount, which the parser rejects as malformed.
type AmountInput string

func (a *AmountInput) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	*a = ""
	if len(data) == 0 {
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = AmountInput(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*a = AmountInput(n.String())
	}
	return nil
}

// CreateInvestmentRequest represents a request to record an investment
type CreateInvestmentRequest struct {
	ProjectID        int64       `json:"projectId" binding:"required,gt=0"`
	Amount           AmountInput `json:"amount"`
	PaymentReference *string     `json:"paymentReference,omitempty"`
	IdempotencyKey   string      `json:"idempotencyKey,omitempty" binding:"max=128"`
}

// InvestmentResponse represents an investment in API responses. Amounts are fixed two-digit decimals.
type InvestmentResponse struct {
	ID               string  `json:"id"`
	UserID           string  `json:"userId"`
	ProjectID        int64   `json:"projectId"`
	Amount           string  `json:"amount"`
	PaymentReference *string `json:"paymentReference,omitempty"`
	CreatedAt        string  `json:"createdAt"`
}

// ProjectRefResponse is the project part of a create-investment response
type ProjectRefResponse struct {
	Name         string `json:"name"`
	TargetAmount string `json:"targetAmount"`
}

// CreateInvestmentResponse is the body of a recorded or replayed investment
type CreateInvestmentResponse struct {
	Investment InvestmentResponse `json:"investment"`
	Project    ProjectRefResponse `json:"project"`
}

// ProjectSummaryResponse is the project joined onto a user's investment
type ProjectSummaryResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	TargetAmount string `json:"targetAmount"`
	RaisedAmount string `json:"raisedAmount"`
}

// UserInvestmentResponse is an investment in a user's portfolio
type UserInvestmentResponse struct {
	InvestmentResponse
	Project ProjectSummaryResponse `json:"project"`
}

// UserInvestmentsResponse represents a user's portfolio
type UserInvestmentsResponse struct {
	Investments []UserInvestmentResponse `json:"investments"`
	Summary     struct {
		TotalInvested string `json:"totalInvested"`
		TotalProjects int    `json:"totalProjects"`
	} `json:"summary"`
}

// ProjectInvestmentsResponse represents a project's investments
type ProjectInvestmentsResponse struct {
	Investments []InvestmentResponse `json:"investments"`
	Summary     struct {
		TotalRaised    string `json:"totalRaised"`
		TotalInvestors int64  `json:"totalInvestors"`
	} `json:"summary"`
}

// CreateProjectRequest represents a request to create a project
type CreateProjectRequest struct {
	Name         string      `json:"name" binding:"required"`
	Description  string      `json:"description"`
	TargetAmount AmountInput `json:"targetAmount"`
}

// UpdateProjectStatusRequest represents a request to change a project's status
type UpdateProjectStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	TargetAmount string `json:"targetAmount"`
	RaisedAmount string `json:"raisedAmount"`
	Status       string `json:"status"`
	CreatedAt    string `json:"createdAt"`
	UpdatedAt    string `json:"updatedAt"`
}

// ProjectWithStatsResponse represents a project listing entry
type ProjectWithStatsResponse struct {
	ProjectResponse
	TotalInvestors int64  `json:"totalInvestors"`
	TotalRaised    string `json:"totalRaised"`
}

// ProjectDetailResponse represents one project with its investments
type ProjectDetailResponse struct {
	ProjectWithStatsResponse
	Investments []InvestmentResponse `json:"investments"`
}

// LedgerEntryResponse represents a projected audit entry
type LedgerEntryResponse struct {
	InvestmentID       string  `json:"investmentId"`
	EventType          string  `json:"eventType"`
	ProjectID          int64   `json:"projectId"`
	UserID             string  `json:"userId"`
	Amount             string  `json:"amount"`
	PaymentReference   *string `json:"paymentReference,omitempty"`
	CorrelationID      string  `json:"correlationId,omitempty"`
	ProjectRaisedAfter string  `json:"projectRaisedAfter"`
	ProjectTarget      string  `json:"projectTarget"`
	RecordedAt         string  `json:"recordedAt"`
}

// DiscrepancyResponse describes a project whose stored total disagrees with its investments
type DiscrepancyResponse struct {
	ProjectID       int64  `json:"projectId"`
	StoredRaised    string `json:"storedRaised"`
	InvestmentSum   string `json:"investmentSum"`
	InvestmentCount int64  `json:"investmentCount"`
	TargetAmount    string `json:"targetAmount"`
	OverTarget      bool   `json:"overTarget"`
}

// ReconciliationReportResponse represents one reconciliation run
type ReconciliationReportResponse struct {
	RunID           string                `json:"runId"`
	StartedAt       string                `json:"startedAt"`
	FinishedAt      string                `json:"finishedAt"`
	ProjectsChecked int                   `json:"projectsChecked"`
	Consistent      bool                  `json:"consistent"`
	Discrepancies   []DiscrepancyResponse `json:"discrepancies"`
}

// ConvertUSDRequest represents a USD to SOL quote request
type ConvertUSDRequest struct {
	USDAmount AmountInput `json:"usdAmount"`
}

// VerifyPaymentRequest represents a payment signature to check
type VerifyPaymentRequest struct {
	Signature string `json:"signature" binding:"required"`
}

// VerifyPaymentResponse represents the outcome of a payment check
type VerifyPaymentResponse struct {
	Signature      string  `json:"signature"`
	Status         string  `json:"status"`
	Confirmed      bool    `json:"confirmed"`
	Slot           uint64  `json:"slot,omitempty"`
	AmountLamports *int64  `json:"amountLamports,omitempty"`
	From           *string `json:"from,omitempty"`
	To             *string `json:"to,omitempty"`
}

// PaymentHistoryItem is an investment backed by an on-chain payment
type PaymentHistoryItem struct {
	InvestmentResponse
	ProjectName string `json:"projectName"`
}

// PaginationParams represents pagination parameters for list endpoints
type PaginationParams struct {
	Page    int `form:"page,default=1" binding:"min=1"`
	PerPage int `form:"per_page,default=10" binding:"min=1,max=100"`
}

func mapInvestmentToResponse(inv *investment.Investment) InvestmentResponse {
	return InvestmentResponse{
		ID:               inv.ID.String(),
		UserID:           inv.UserID,
		ProjectID:        inv.ProjectID,
		Amount:           shared.FormatAmount(inv.Amount),
		PaymentReference: inv.PaymentReference,
		CreatedAt:        inv.CreatedAt.Format(time.RFC3339),
	}
}

func mapInvestmentsToResponse(investments []*investment.Investment) []InvestmentResponse {
	out := make([]InvestmentResponse, 0, len(investments))
	for _, inv := range investments {
		out = append(out, mapInvestmentToResponse(inv))
	}
	return out
}

func mapUserInvestmentToResponse(inv *investment.WithProject) UserInvestmentResponse {
	return UserInvestmentResponse{
		InvestmentResponse: mapInvestmentToResponse(inv.Investment),
		Project: ProjectSummaryResponse{
			ID:           inv.Project.ID,
			Name:         inv.Project.Name,
			Status:       inv.Project.Status,
			TargetAmount: shared.FormatAmount(inv.Project.TargetAmount),
			RaisedAmount: shared.FormatAmount(inv.Project.RaisedAmount),
		},
	}
}

func mapProjectToResponse(p *project.Project) ProjectResponse {
	return ProjectResponse{
		ID:           p.ID,
		Name:         p.Name,
		Description:  p.Description,
		TargetAmount: shared.FormatAmount(p.TargetAmount),
		RaisedAmount: shared.FormatAmount(p.RaisedAmount),
		Status:       string(p.Status),
		CreatedAt:    p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:    p.UpdatedAt.Format(time.RFC3339),
	}
}

func mapLedgerEntryToResponse(entry *ledger.Entry) LedgerEntryResponse {
	return LedgerEntryResponse{
		InvestmentID:       entry.InvestmentID.String(),
		EventType:          string(entry.EventType),
		ProjectID:          entry.ProjectID,
		UserID:             entry.UserID,
		Amount:             shared.FormatAmount(entry.Amount),
		PaymentReference:   entry.PaymentReference,
		CorrelationID:      entry.CorrelationID,
		ProjectRaisedAfter: shared.FormatAmount(entry.ProjectRaisedAfter),
		ProjectTarget:      shared.FormatAmount(entry.ProjectTarget),
		RecordedAt:         entry.RecordedAt.Format(time.RFC3339),
	}
}

func mapReconciliationReportToResponse(report *ledger.ReconciliationReport) ReconciliationReportResponse {
	discrepancies := make([]DiscrepancyResponse, 0, len(report.Discrepancies))
	for _, d := range report.Discrepancies {
		discrepancies = append(discrepancies, DiscrepancyResponse{
			ProjectID:       d.ProjectID,
			StoredRaised:    shared.FormatAmount(d.StoredRaised),
			InvestmentSum:   shared.FormatAmount(d.InvestmentSum),
			InvestmentCount: d.InvestmentCount,
			TargetAmount:    shared.FormatAmount(d.TargetAmount),
			OverTarget:      d.OverTarget,
		})
	}
	return ReconciliationReportResponse{
		RunID:           report.RunID,
		StartedAt:       report.StartedAt.Format(time.RFC3339),
		FinishedAt:      report.FinishedAt.Format(time.RFC3339),
		ProjectsChecked: report.ProjectsChecked,
		Consistent:      report.Consistent(),
		Discrepancies:   discrepancies,
	}
}
