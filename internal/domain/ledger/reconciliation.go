package ledger

import (
	"context"
	"time"
)

// Discrepancy describes one project whose stored running total disagrees with its investments
type Discrepancy struct {
	ProjectID       int64 `json:"project_id" bson:"project_id"`
	StoredRaised    int64 `json:"stored_raised" bson:"stored_raised"`
	InvestmentSum   int64 `json:"investment_sum" bson:"investment_sum"`
	InvestmentCount int64 `json:"investment_count" bson:"investment_count"`
	TargetAmount    int64 `json:"target_amount" bson:"target_amount"`
	OverTarget      bool  `json:"over_target" bson:"over_target"`
}

// ReconciliationReport is the result of one out-of-band consistency run
type ReconciliationReport struct {
	RunID           string        `json:"run_id" bson:"run_id"`
	StartedAt       time.Time     `json:"started_at" bson:"started_at"`
	FinishedAt      time.Time     `json:"finished_at" bson:"finished_at"`
	ProjectsChecked int           `json:"projects_checked" bson:"projects_checked"`
	Discrepancies   []Discrepancy `json:"discrepancies" bson:"discrepancies"`
}

// Consistent reports whether the run found nothing to flag
func (r *ReconciliationReport) Consistent() bool {
	return len(r.Discrepancies) == 0
}

// ReportRepository stores reconciliation reports
type ReportRepository interface {
	Save(ctx context.Context, report *ReconciliationReport) error
	Latest(ctx context.Context) (*ReconciliationReport, error)
}
