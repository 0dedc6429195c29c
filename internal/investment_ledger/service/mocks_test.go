package service

import (
	"context"

	"github.com/greenova8-investment-ledger/internal/domain/investment"
	"github.com/greenova8-investment-ledger/internal/domain/project"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockRequestValidator struct {
	mock.Mock
}

func (m *MockRequestValidator) Validate(ctx context.Context, request *RecordRequest) (int64, error) {
	args := m.Called(ctx, request)
	return args.Get(0).(int64), args.Error(1)
}

type MockIdempotencyChecker struct {
	mock.Mock
}

func (m *MockIdempotencyChecker) FindExisting(ctx context.Context, request *RecordRequest, amount int64) (*RecordResult, error) {
	args := m.Called(ctx, request, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RecordResult), args.Error(1)
}

type MockProjectGate struct {
	mock.Mock
}

func (m *MockProjectGate) LockAndReserve(ctx context.Context, tx pgx.Tx, projectID int64, amount int64) (*project.Project, error) {
	args := m.Called(ctx, tx, projectID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.Project), args.Error(1)
}

type MockInvestmentRecorder struct {
	mock.Mock
}

func (m *MockInvestmentRecorder) Insert(ctx context.Context, tx pgx.Tx, request *RecordRequest, amount int64) (*investment.Investment, error) {
	args := m.Called(ctx, tx, request, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*investment.Investment), args.Error(1)
}

type MockOutboxManager struct {
	mock.Mock
}

func (m *MockOutboxManager) CreateOutboxEntry(ctx context.Context, tx pgx.Tx, inv *investment.Investment, updated *project.Project) error {
	args := m.Called(ctx, tx, inv, updated)
	return args.Error(0)
}

// MockTxExecutor runs fn with a nil transaction unless the expectation returns an error,
// in which case the transaction fails before fn runs
type MockTxExecutor struct {
	mock.Mock
}

func (m *MockTxExecutor) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(nil)
}

func (m *MockTxExecutor) ExecuteReadOnlyTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(nil)
}

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
