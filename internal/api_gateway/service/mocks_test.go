package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/greenova8-investment-ledger/internal/domain/investment"
	"github.com/greenova8-investment-ledger/internal/domain/ledger"
	"github.com/greenova8-investment-ledger/internal/domain/payment"
	"github.com/greenova8-investment-ledger/internal/domain/project"
	"github.com/greenova8-investment-ledger/internal/platform/pricing"
	"github.com/greenova8-investment-ledger/internal/platform/solana"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) Create(ctx context.Context, p *project.Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockProjectRepository) GetByID(ctx context.Context, id int64) (*project.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) ListWithStats(ctx context.Context) ([]*project.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*project.Stats), args.Error(1)
}

func (m *MockProjectRepository) GetWithStats(ctx context.Context, id int64) (*project.Stats, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Stats), args.Error(1)
}

func (m *MockProjectRepository) UpdateStatus(ctx context.Context, id int64, status project.Status) (*project.Project, error) {
	args := m.Called(ctx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) LockForUpdate(ctx context.Context, id int64) (*project.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) IncreaseRaised(ctx context.Context, id int64, amount int64) (*project.Project, error) {
	args := m.Called(ctx, id, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

func (m *MockProjectRepository) CheckTotals(ctx context.Context) ([]project.TotalsCheck, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]project.TotalsCheck), args.Error(1)
}

func (m *MockProjectRepository) WithTx(tx pgx.Tx) project.Repository {
	return m
}

type MockInvestmentRepository struct {
	mock.Mock
}

func (m *MockInvestmentRepository) Create(ctx context.Context, inv *investment.Investment) error {
	args := m.Called(ctx, inv)
	return args.Error(0)
}

func (m *MockInvestmentRepository) GetByIdempotencyKey(ctx context.Context, userID, key string) (*investment.Investment, error) {
	args := m.Called(ctx, userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*investment.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) ListByUser(ctx context.Context, userID string) ([]*investment.WithProject, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*investment.WithProject), args.Error(1)
}

func (m *MockInvestmentRepository) ListByProject(ctx context.Context, projectID int64) ([]*investment.Investment, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*investment.Investment), args.Error(1)
}

func (m *MockInvestmentRepository) ListWithPaymentReference(ctx context.Context, userID string) ([]*investment.WithProject, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*investment.WithProject), args.Error(1)
}

func (m *MockInvestmentRepository) WithTx(tx pgx.Tx) investment.Repository {
	return m
}

type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) Save(ctx context.Context, c *payment.Confirmation) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockPaymentRepository) GetBySignature(ctx context.Context, signature string) (*payment.Confirmation, error) {
	args := m.Called(ctx, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Confirmation), args.Error(1)
}

type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Create(ctx context.Context, entry *ledger.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByInvestmentID(ctx context.Context, investmentID uuid.UUID) (*ledger.Entry, error) {
	args := m.Called(ctx, investmentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) ListByProject(ctx context.Context, projectID int64, limit, offset int) ([]*ledger.Entry, error) {
	args := m.Called(ctx, projectID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ledger.Entry), args.Error(1)
}

func (m *MockLedgerRepository) CountByProject(ctx context.Context, projectID int64) (int64, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(int64), args.Error(1)
}

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) Save(ctx context.Context, report *ledger.ReconciliationReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockReportRepository) Latest(ctx context.Context) (*ledger.ReconciliationReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ledger.ReconciliationReport), args.Error(1)
}

type MockPriceProvider struct {
	mock.Mock
}

func (m *MockPriceProvider) SolPrice(ctx context.Context) pricing.Quote {
	args := m.Called(ctx)
	return args.Get(0).(pricing.Quote)
}

type MockSolanaClient struct {
	mock.Mock
}

func (m *MockSolanaClient) GetSignatureStatus(ctx context.Context, signature string) (*solana.SignatureStatus, error) {
	args := m.Called(ctx, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*solana.SignatureStatus), args.Error(1)
}

func (m *MockSolanaClient) GetTransfer(ctx context.Context, signature string) (*solana.Transfer, error) {
	args := m.Called(ctx, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*solana.Transfer), args.Error(1)
}
