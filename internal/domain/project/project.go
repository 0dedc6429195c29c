package project

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrEmptyName           = errors.New("project name cannot be empty")
	ErrInvalidTargetAmount = errors.New("target amount must be greater than zero")
	ErrInvalidStatus       = errors.New("status must be one of active, paused, completed")
)

// Status is the externally managed lifecycle of a project
type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
)

// ParseStatus validates a status string coming from an admin request
func ParseStatus(raw string) (Status, error) {
	switch s := Status(strings.ToLower(strings.TrimSpace(raw))); s {
	case StatusActive, StatusPaused, StatusCompleted:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}

// Project is a fundraising target. RaisedAmount is only changed by the investment ledger.
type Project struct {
	ID           int64     `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	TargetAmount int64     `json:"target_amount"` // Stored in cents/minor units
	RaisedAmount int64     `json:"raised_amount"` // Stored in cents/minor units
	Status       Status    `json:"status"`
	Version      int       `json:"version"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewProject creates an active project with nothing raised yet
func NewProject(name, description string, targetAmount int64) (*Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	if targetAmount <= 0 {
		return nil, ErrInvalidTargetAmount
	}

	now := time.Now().UTC()
	return &Project{
		Name:         name,
		Description:  description,
		TargetAmount: targetAmount,
		RaisedAmount: 0,
		Status:       StatusActive,
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// AcceptsInvestments reports whether the status gate is open
func (p *Project) AcceptsInvestments() bool {
	return p.Status == StatusActive
}

// Headroom is the amount still admissible before reaching the target
func (p *Project) Headroom() int64 {
	if p.RaisedAmount >= p.TargetAmount {
		return 0
	}
	return p.TargetAmount - p.RaisedAmount
}

// CanAdmit reports whether amount fits under the target
func (p *Project) CanAdmit(amount int64) bool {
	return amount <= p.Headroom()
}

// Stats carries the aggregates shown next to a project in listings
type Stats struct {
	Project        *Project
	TotalInvestors int64 // Number of investment rows, repeat investors count once per investment
	TotalRaised    int64 // Sum of investment amounts
}

// TotalsCheck compares the stored running total with the sum of recorded investments
type TotalsCheck struct {
	ProjectID       int64
	StoredRaised    int64
	InvestmentSum   int64
	InvestmentCount int64
	TargetAmount    int64
}

// Consistent reports whether the stored total matches the investments and respects the target
func (c TotalsCheck) Consistent() bool {
	return c.StoredRaised == c.InvestmentSum && c.StoredRaised <= c.TargetAmount
}
