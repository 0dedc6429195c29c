// Package postgres provides PostgreSQL implementations of the domain repositories.
// Every repository can be rebound to a transaction with WithTx so the ledger can
// compose several writes into one atomic unit.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/greenova8-investment-ledger/internal/domain/project"
	"github.com/greenova8-investment-ledger/internal/platform/persistence"
	"github.com/jackc/pgx/v5"
)

const projectColumns = `id, name, description, target_amount, raised_amount, status, version, created_at, updated_at`

// ProjectRepository implements the project.Repository interface for PostgreSQL
type ProjectRepository struct {
	querier persistence.Querier // Can be *pgxpool.Pool or pgx.Tx
	logger  *slog.Logger
}

// NewProjectRepository creates a new PostgreSQL project repository
func NewProjectRepository(logger *slog.Logger, db *persistence.PostgresDB) project.Repository {
	return &ProjectRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// WithTx returns a repository that runs every statement inside tx
func (r *ProjectRepository) WithTx(tx pgx.Tx) project.Repository {
	return &ProjectRepository{
		querier: tx,
		logger:  r.logger,
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner, extra ...interface{}) (*project.Project, error) {
	var p project.Project
	var status string
	dest := append([]interface{}{
		&p.ID,
		&p.Name,
		&p.Description,
		&p.TargetAmount,
		&p.RaisedAmount,
		&status,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	p.Status = project.Status(status)
	return &p, nil
}

// Create stores a new project and fills in its generated ID
func (r *ProjectRepository) Create(ctx context.Context, p *project.Project) error {
	query := `
		INSERT INTO projects (name, description, target_amount, raised_amount, status, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	err := r.querier.QueryRow(ctx, query,
		p.Name,
		p.Description,
		p.TargetAmount,
		p.RaisedAmount,
		string(p.Status),
		p.Version,
		p.CreatedAt,
		p.UpdatedAt,
	).Scan(&p.ID)
	if err != nil {
		r.logger.Error("Failed to create project", "name", p.Name, "error", err)
		return fmt.Errorf("failed to create project: %w", err)
	}

	return nil
}

// GetByID retrieves a project by its ID
func (r *ProjectRepository) GetByID(ctx context.Context, id int64) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`

	p, err := scanProject(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrProjectNotFound{ProjectID: id}
		}
		r.logger.Error("Failed to get project", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get project: %w", err)
	}

	return p, nil
}

// LockForUpdate obtains a row lock on the project and returns its current state.
// Concurrent investments into the same project queue behind this lock until commit.
func (r *ProjectRepository) LockForUpdate(ctx context.Context, id int64) (*project.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 FOR UPDATE`

	p, err := scanProject(r.querier.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrProjectNotFound{ProjectID: id}
		}
		r.logger.Error("Failed to lock project for update", "id", id, "error", err)
		return nil, fmt.Errorf("failed to lock project for update: %w", err)
	}

	return p, nil
}

// IncreaseRaised adds amount to the running total in one conditional statement.
// Returns ErrRaiseRejected when the result would pass the target, whether the WHERE clause
// or the projects_raised_within_target constraint catches it.
func (r *ProjectRepository) IncreaseRaised(ctx context.Context, id int64, amount int64) (*project.Project, error) {
	query := `
		UPDATE projects
		SET raised_amount = raised_amount + $1, version = version + 1, updated_at = NOW()
		WHERE id = $2 AND status = 'active' AND raised_amount + $1 <= target_amount
		RETURNING ` + projectColumns

	p, err := scanProject(r.querier.QueryRow(ctx, query, amount, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || persistence.IsCheckViolation(err) {
			return nil, project.ErrRaiseRejected{ProjectID: id, Amount: amount}
		}
		r.logger.Error("Failed to increase raised amount", "id", id, "amount", amount, "error", err)
		return nil, fmt.Errorf("failed to increase raised amount: %w", err)
	}

	return p, nil
}

// UpdateStatus changes the lifecycle status of a project
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id int64, status project.Status) (*project.Project, error) {
	query := `
		UPDATE projects
		SET status = $1, version = version + 1, updated_at = NOW()
		WHERE id = $2
		RETURNING ` + projectColumns

	p, err := scanProject(r.querier.QueryRow(ctx, query, string(status), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrProjectNotFound{ProjectID: id}
		}
		r.logger.Error("Failed to update project status", "id", id, "status", string(status), "error", err)
		return nil, fmt.Errorf("failed to update project status: %w", err)
	}

	return p, nil
}

const projectStatsQuery = `
		SELECT p.id, p.name, p.description, p.target_amount, p.raised_amount, p.status, p.version, p.created_at, p.updated_at,
			COUNT(i.id) AS total_investors,
			COALESCE(SUM(i.amount), 0)::BIGINT AS total_raised
		FROM projects p
		LEFT JOIN investments i ON i.project_id = p.id
	`

// ListWithStats returns every project newest first with its investment aggregates
func (r *ProjectRepository) ListWithStats(ctx context.Context) ([]*project.Stats, error) {
	query := projectStatsQuery + `
		GROUP BY p.id
		ORDER BY p.created_at DESC, p.id DESC
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list projects", "error", err)
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	stats := make([]*project.Stats, 0)
	for rows.Next() {
		s := &project.Stats{}
		p, err := scanProject(rows, &s.TotalInvestors, &s.TotalRaised)
		if err != nil {
			r.logger.Error("Failed to scan project", "error", err)
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		s.Project = p
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over projects", "error", err)
		return nil, fmt.Errorf("error iterating over projects: %w", err)
	}

	return stats, nil
}

// GetWithStats returns one project with its investment aggregates
func (r *ProjectRepository) GetWithStats(ctx context.Context, id int64) (*project.Stats, error) {
	query := projectStatsQuery + `
		WHERE p.id = $1
		GROUP BY p.id
	`

	s := &project.Stats{}
	p, err := scanProject(r.querier.QueryRow(ctx, query, id), &s.TotalInvestors, &s.TotalRaised)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, project.ErrProjectNotFound{ProjectID: id}
		}
		r.logger.Error("Failed to get project stats", "id", id, "error", err)
		return nil, fmt.Errorf("failed to get project stats: %w", err)
	}
	s.Project = p

	return s, nil
}

// CheckTotals aggregates every project's investments next to its stored running total
func (r *ProjectRepository) CheckTotals(ctx context.Context) ([]project.TotalsCheck, error) {
	query := `
		SELECT p.id, p.raised_amount, p.target_amount,
			COALESCE(SUM(i.amount), 0)::BIGINT AS investment_sum,
			COUNT(i.id) AS investment_count
		FROM projects p
		LEFT JOIN investments i ON i.project_id = p.id
		GROUP BY p.id
		ORDER BY p.id
	`

	rows, err := r.querier.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to check project totals", "error", err)
		return nil, fmt.Errorf("failed to check project totals: %w", err)
	}
	defer rows.Close()

	var checks []project.TotalsCheck
	for rows.Next() {
		var c project.TotalsCheck
		if err := rows.Scan(&c.ProjectID, &c.StoredRaised, &c.TargetAmount, &c.InvestmentSum, &c.InvestmentCount); err != nil {
			r.logger.Error("Failed to scan project totals", "error", err)
			return nil, fmt.Errorf("failed to scan project totals: %w", err)
		}
		checks = append(checks, c)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over project totals", "error", err)
		return nil, fmt.Errorf("error iterating over project totals: %w", err)
	}

	return checks, nil
}
