package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/greenova8-investment-ledger/internal/domain/project"
	"github.com/greenova8-investment-ledger/internal/domain/shared"
)

// ProjectServiceImpl implements the ProjectService interface
type ProjectServiceImpl struct {
	projectRepo project.Repository
	logger      *slog.Logger
}

// NewProjectService creates a new project service
func NewProjectService(logger *slog.Logger, projectRepo project.Repository) ProjectService {
	return &ProjectServiceImpl{
		projectRepo: projectRepo,
		logger:      logger,
	}
}

func (s *ProjectServiceImpl) ListProjects(ctx context.Context) ([]*project.Stats, error) {
	stats, err := s.projectRepo.ListWithStats(ctx)
	if err != nil {
		s.logger.Error("Failed to list projects", "error", err)
		return nil, err
	}
	return stats, nil
}

func (s *ProjectServiceImpl) CreateProject(ctx context.Context, name, description, targetAmount string) (*project.Project, error) {
	target, err := shared.ParseAmount(targetAmount)
	if err != nil {
		return nil, ErrInvalidInput{Field: "targetAmount", Reason: err}
	}

	p, err := project.NewProject(name, description, target)
	if err != nil {
		field := "name"
		if errors.Is(err, project.ErrInvalidTargetAmount) {
			field = "targetAmount"
		}
		return nil, ErrInvalidInput{Field: field, Reason: err}
	}

	if err := s.projectRepo.Create(ctx, p); err != nil {
		s.logger.Error("Failed to create project", "name", p.Name, "error", err)
		return nil, err
	}

	s.logger.Info("Project created",
		"project_id", p.ID,
		"name", p.Name,
		"target_amount", shared.FormatAmount(p.TargetAmount),
	)
	return p, nil
}

func (s *ProjectServiceImpl) UpdateStatus(ctx context.Context, id int64, status string) (*project.Project, error) {
	parsed, err := project.ParseStatus(status)
	if err != nil {
		return nil, ErrInvalidInput{Field: "status", Reason: err}
	}

	p, err := s.projectRepo.UpdateStatus(ctx, id, parsed)
	if err != nil {
		s.logger.Error("Failed to update project status", "project_id", id, "status", parsed, "error", err)
		return nil, err
	}

	s.logger.Info("Project status updated", "project_id", id, "status", parsed)
	return p, nil
}
