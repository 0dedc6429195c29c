package postgres

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/greenova8-investment-ledger/internal/domain/project"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

var projectColumnNames = []string{"id", "name", "description", "target_amount", "raised_amount", "status", "version", "created_at", "updated_at"}

func projectRow(rows *pgxmock.Rows, p *project.Project, extra ...interface{}) *pgxmock.Rows {
	values := append([]interface{}{p.ID, p.Name, p.Description, p.TargetAmount, p.RaisedAmount, string(p.Status), p.Version, p.CreatedAt, p.UpdatedAt}, extra...)
	return rows.AddRow(values...)
}

func sampleProject() *project.Project {
	now := time.Now().UTC().Truncate(time.Second)
	return &project.Project{
		ID:           1,
		Name:         "Solar Farm Lahore",
		Description:  "50MW solar installation",
		TargetAmount: 50000000,
		RaisedAmount: 12500000,
		Status:       project.StatusActive,
		Version:      3,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestProjectRepository_Create(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ProjectRepository{querier: mock, logger: newTestLogger()}

	p, err := project.NewProject("Wind Power Karachi", "Coastal wind farm", 75000000)
	require.NoError(t, err)

	query := `INSERT INTO projects \(name, description, target_amount, raised_amount, status, version, created_at, updated_at\)`

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(p.Name, p.Description, p.TargetAmount, int64(0), "active", 1, p.CreatedAt, p.UpdatedAt).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(2)))

		err := repo.Create(ctx, p)
		require.NoError(t, err)
		assert.Equal(t, int64(2), p.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("failure", func(t *testing.T) {
		dbErr := errors.New("db error")
		mock.ExpectQuery(query).
			WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
			WillReturnError(dbErr)

		err := repo.Create(ctx, p)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to create project")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_GetByID(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ProjectRepository{querier: mock, logger: newTestLogger()}
	expected := sampleProject()
	query := `SELECT .* FROM projects WHERE id = \$1`

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(expected.ID).
			WillReturnRows(projectRow(pgxmock.NewRows(projectColumnNames), expected))

		p, err := repo.GetByID(ctx, expected.ID)
		require.NoError(t, err)
		assert.Equal(t, expected, p)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(99)).
			WillReturnRows(pgxmock.NewRows(projectColumnNames))

		p, err := repo.GetByID(ctx, 99)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, project.ErrProjectNotFound{ProjectID: 99})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_LockForUpdate(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ProjectRepository{querier: mock, logger: newTestLogger()}
	expected := sampleProject()
	query := `SELECT .* FROM projects WHERE id = \$1 FOR UPDATE`

	t.Run("locked", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(expected.ID).
			WillReturnRows(projectRow(pgxmock.NewRows(projectColumnNames), expected))

		p, err := repo.LockForUpdate(ctx, expected.ID)
		require.NoError(t, err)
		assert.Equal(t, expected.RaisedAmount, p.RaisedAmount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("lock timeout", func(t *testing.T) {
		dbErr := errors.New("canceling statement due to lock timeout")
		mock.ExpectQuery(query).WithArgs(expected.ID).WillReturnError(dbErr)

		p, err := repo.LockForUpdate(ctx, expected.ID)
		assert.Nil(t, p)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "failed to lock project for update")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_IncreaseRaised(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ProjectRepository{querier: mock, logger: newTestLogger()}
	query := `UPDATE projects SET raised_amount = raised_amount \+ \$1, version = version \+ 1, updated_at = NOW\(\) WHERE id = \$2 AND status = 'active' AND raised_amount \+ \$1 <= target_amount RETURNING`

	t.Run("admitted", func(t *testing.T) {
		updated := sampleProject()
		updated.RaisedAmount = 12510000
		updated.Version = 4
		mock.ExpectQuery(query).
			WithArgs(int64(10000), updated.ID).
			WillReturnRows(projectRow(pgxmock.NewRows(projectColumnNames), updated))

		p, err := repo.IncreaseRaised(ctx, updated.ID, 10000)
		require.NoError(t, err)
		assert.Equal(t, int64(12510000), p.RaisedAmount)
		assert.Equal(t, 4, p.Version)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejected past target", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(60000000), int64(1)).
			WillReturnRows(pgxmock.NewRows(projectColumnNames))

		p, err := repo.IncreaseRaised(ctx, 1, 60000000)
		assert.Nil(t, p)
		var rejected project.ErrRaiseRejected
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, int64(60000000), rejected.Amount)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejected by check constraint", func(t *testing.T) {
		mock.ExpectQuery(query).
			WithArgs(int64(500), int64(1)).
			WillReturnError(&pgconn.PgError{Code: "23514", ConstraintName: "projects_raised_within_target"})

		p, err := repo.IncreaseRaised(ctx, 1, 500)
		assert.Nil(t, p)
		var rejected project.ErrRaiseRejected
		require.ErrorAs(t, err, &rejected)
		assert.Equal(t, int64(1), rejected.ProjectID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestProjectRepository_UpdateStatus(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ProjectRepository{querier: mock, logger: newTestLogger()}
	query := `UPDATE projects SET status = \$1`

	paused := sampleProject()
	paused.Status = project.StatusPaused
	mock.ExpectQuery(query).
		WithArgs("paused", paused.ID).
		WillReturnRows(projectRow(pgxmock.NewRows(projectColumnNames), paused))

	p, err := repo.UpdateStatus(ctx, paused.ID, project.StatusPaused)
	require.NoError(t, err)
	assert.Equal(t, project.StatusPaused, p.Status)

	mock.ExpectQuery(query).
		WithArgs("completed", int64(42)).
		WillReturnRows(pgxmock.NewRows(projectColumnNames))

	_, err = repo.UpdateStatus(ctx, 42, project.StatusCompleted)
	assert.ErrorIs(t, err, project.ErrProjectNotFound{})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_ListWithStats(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ProjectRepository{querier: mock, logger: newTestLogger()}

	first := sampleProject()
	second := sampleProject()
	second.ID = 2
	second.Name = "Wind Power Karachi"

	columns := append(append([]string{}, projectColumnNames...), "total_investors", "total_raised")
	rows := pgxmock.NewRows(columns)
	projectRow(rows, second, int64(0), int64(0))
	projectRow(rows, first, int64(3), int64(12500000))

	mock.ExpectQuery(`LEFT JOIN investments i ON i.project_id = p.id GROUP BY p.id ORDER BY p.created_at DESC`).
		WillReturnRows(rows)

	stats, err := repo.ListWithStats(ctx)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, int64(2), stats[0].Project.ID)
	assert.Equal(t, int64(3), stats[1].TotalInvestors)
	assert.Equal(t, int64(12500000), stats[1].TotalRaised)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_GetWithStats(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ProjectRepository{querier: mock, logger: newTestLogger()}
	columns := append(append([]string{}, projectColumnNames...), "total_investors", "total_raised")

	mock.ExpectQuery(`WHERE p.id = \$1 GROUP BY p.id`).
		WithArgs(int64(7)).
		WillReturnRows(pgxmock.NewRows(columns))

	_, err = repo.GetWithStats(ctx, 7)
	assert.ErrorIs(t, err, project.ErrProjectNotFound{ProjectID: 7})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_CheckTotals(t *testing.T) {
	ctx := context.Background()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := &ProjectRepository{querier: mock, logger: newTestLogger()}

	rows := pgxmock.NewRows([]string{"id", "raised_amount", "target_amount", "investment_sum", "investment_count"}).
		AddRow(int64(1), int64(12500000), int64(50000000), int64(12500000), int64(1)).
		AddRow(int64(2), int64(4600000), int64(75000000), int64(4500000), int64(1))

	mock.ExpectQuery(`SELECT p.id, p.raised_amount, p.target_amount`).WillReturnRows(rows)

	checks, err := repo.CheckTotals(ctx)
	require.NoError(t, err)
	require.Len(t, checks, 2)
	assert.True(t, checks[0].Consistent())
	assert.False(t, checks[1].Consistent())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProjectRepository_WithTx(t *testing.T) {
	mockPool, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mockPool.Close()

	originalRepo := &ProjectRepository{querier: mockPool, logger: newTestLogger()}

	mockPool.ExpectBegin()
	pgxTx, err := mockPool.Begin(context.Background())
	require.NoError(t, err)

	txRepo := originalRepo.WithTx(pgxTx)

	assert.Equal(t, originalRepo.logger, txRepo.(*ProjectRepository).logger)
	assert.Equal(t, pgxTx, txRepo.(*ProjectRepository).querier, "Querier in new repo should be the transaction")
	assert.NoError(t, mockPool.ExpectationsWereMet())
}
