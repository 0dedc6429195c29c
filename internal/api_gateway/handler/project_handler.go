package handler

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/greenova8-investment-ledger/internal/api_gateway/service"
	"github.com/greenova8-investment-ledger/internal/domain/shared"
	ledgersvc "github.com/greenova8-investment-ledger/internal/investment_ledger/service"
)

// ProjectHandler handles HTTP requests for project operations
type ProjectHandler struct {
	projectService service.ProjectService
	ledgerService  ledgersvc.LedgerService
	logger         *slog.Logger
}

// NewProjectHandler creates a new project handler
func NewProjectHandler(logger *slog.Logger, projectService service.ProjectService, ledgerService ledgersvc.LedgerService) *ProjectHandler {
	return &ProjectHandler{
		projectService: projectService,
		ledgerService:  ledgerService,
		logger:         logger,
	}
}

// List returns all projects newest first with their stats
func (h *ProjectHandler) List(c *gin.Context) {
	stats, err := h.projectService.ListProjects(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	projects := make([]ProjectWithStatsResponse, 0, len(stats))
	for _, s := range stats {
		projects = append(projects, ProjectWithStatsResponse{
			ProjectResponse: mapProjectToResponse(s.Project),
			TotalInvestors:  s.TotalInvestors,
			TotalRaised:     shared.FormatAmount(s.TotalRaised),
		})
	}

	RespondOK(c, gin.H{"projects": projects})
}

// GetByID returns one project with its investments, read from one snapshot
func (h *ProjectHandler) GetByID(c *gin.Context) {
	id, ok := parseProjectID(c)
	if !ok {
		return
	}

	listing, err := h.ledgerService.ListInvestmentsForProject(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	RespondOK(c, gin.H{"project": ProjectDetailResponse{
		ProjectWithStatsResponse: ProjectWithStatsResponse{
			ProjectResponse: mapProjectToResponse(listing.Project),
			TotalInvestors:  listing.TotalInvestors,
			TotalRaised:     shared.FormatAmount(listing.TotalRaised),
		},
		Investments: mapInvestmentsToResponse(listing.Investments),
	}})
}

// Create adds an active project. Admin only.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Invalid request body", "error", err)
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	p, err := h.projectService.CreateProject(c.Request.Context(), req.Name, req.Description, string(req.TargetAmount))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	RespondCreated(c, gin.H{"project": mapProjectToResponse(p)})
}

// UpdateStatus changes a project's lifecycle status. Admin only.
func (h *ProjectHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseProjectID(c)
	if !ok {
		return
	}

	var req UpdateProjectStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	p, err := h.projectService.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	RespondOK(c, gin.H{"project": mapProjectToResponse(p)})
}

func parseProjectID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(c, "Invalid project ID")
		return 0, false
	}
	return id, true
}
