package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/greenova8-investment-ledger/internal/api_gateway/middleware"
	"github.com/greenova8-investment-ledger/internal/api_gateway/service"
	"github.com/greenova8-investment-ledger/internal/domain/investment"
	"github.com/greenova8-investment-ledger/internal/domain/ledger"
	"github.com/greenova8-investment-ledger/internal/domain/project"
	ledgersvc "github.com/greenova8-investment-ledger/internal/investment_ledger/service"
	"github.com/greenova8-investment-ledger/internal/platform/pricing"
	"github.com/stretchr/testify/mock"
)

// envelope mirrors Response with typed data for decoding in tests
type envelope[T any] struct {
	Data          T          `json:"data"`
	Error         *ErrorInfo `json:"error,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Meta          *MetaInfo  `json:"meta,omitempty"`
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// asUser stands in for RequireAuth
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Next()
	}
}

// asAdmin stands in for RequireAuth with the admin role
func asAdmin(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.UserIDKey, userID)
		c.Set(middleware.RolesKey, []string{"admin"})
		c.Next()
	}
}

type MockLedgerService struct {
	mock.Mock
}

func (m *MockLedgerService) RecordInvestment(ctx context.Context, request *ledgersvc.RecordRequest) (*ledgersvc.RecordResult, error) {
	args := m.Called(ctx, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgersvc.RecordResult), args.Error(1)
}

func (m *MockLedgerService) ListInvestmentsForUser(ctx context.Context, userID string) (*ledgersvc.UserInvestments, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgersvc.UserInvestments), args.Error(1)
}

func (m *MockLedgerService) ListInvestmentsForProject(ctx context.Context, projectID int64) (*ledgersvc.ProjectInvestments, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledgersvc.ProjectInvestments), args.Error(1)
}

type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) ListProjects(ctx context.Context) ([]*project.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*project.Stats), args.Error(1)
}

func (m *MockProjectService) CreateProject(ctx context.Context, name, description, targetAmount string) (*project.Project, error) {
	args := m.Called(ctx, name, description, targetAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectService) UpdateStatus(ctx context.Context, id int64, status string) (*project.Project, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) SolPrice(ctx context.Context) pricing.Quote {
	args := m.Called(ctx)
	return args.Get(0).(pricing.Quote)
}

func (m *MockPaymentService) ConvertUSDToSol(ctx context.Context, usdAmount string) (*service.Conversion, error) {
	args := m.Called(ctx, usdAmount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Conversion), args.Error(1)
}

func (m *MockPaymentService) VerifyPayment(ctx context.Context, userID, signature string) (*service.Verification, error) {
	args := m.Called(ctx, userID, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Verification), args.Error(1)
}

func (m *MockPaymentService) PaymentHistory(ctx context.Context, userID string) ([]*investment.WithProject, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*investment.WithProject), args.Error(1)
}

type MockAuditService struct {
	mock.Mock
}

func (m *MockAuditService) ProjectLedger(ctx context.Context, projectID int64, page, perPage int) ([]*ledger.Entry, int64, error) {
	args := m.Called(ctx, projectID, page, perPage)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*ledger.Entry), args.Get(1).(int64), args.Error(2)
}

func (m *MockAuditService) InvestmentEntry(ctx context.Context, investmentID uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, investmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockAuditService) LatestReconciliation(ctx context.Context) (*ledger.ReconciliationReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.ReconciliationReport), args.Error(1)
}
