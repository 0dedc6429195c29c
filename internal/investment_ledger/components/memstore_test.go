package components

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/greenova8-investment-ledger/internal/domain/investment"
	"github.com/greenova8-investment-ledger/internal/domain/outbox"
	"github.com/greenova8-investment-ledger/internal/domain/project"
	"github.com/greenova8-investment-ledger/internal/domain/shared"
	"github.com/jackc/pgx/v5"
)

var errNotSupported = errors.New("not supported by the in-memory store")

// memStore is a transactional in-memory stand-in for Postgres. Each project row has its own
// lock that is held from LockForUpdate until the transaction ends, and writes become visible
// only on commit.
type memStore struct {
	mu           sync.Mutex
	projects     map[int64]*project.Project
	rowLocks     map[int64]*sync.Mutex
	investments  []*investment.Investment
	messages     []*outbox.Message
	nextOutboxID int64

	failOutbox bool
	commitHook func() error
}

func newMemStore(projects ...*project.Project) *memStore {
	s := &memStore{
		projects: make(map[int64]*project.Project),
		rowLocks: make(map[int64]*sync.Mutex),
	}
	for _, p := range projects {
		copied := *p
		s.projects[p.ID] = &copied
		s.rowLocks[p.ID] = &sync.Mutex{}
	}
	return s
}

type memTx struct {
	pgx.Tx // never called; the store only needs a handle
	held        []*sync.Mutex
	projects    map[int64]*project.Project
	investments []*investment.Investment
	messages    []*outbox.Message
}

func (t *memTx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.held[i].Unlock()
	}
	t.held = nil
}

func (s *memStore) ExecuteTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx := &memTx{projects: make(map[int64]*project.Project)}
	defer tx.release()

	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *memStore) ExecuteReadOnlyTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

func (s *memStore) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.commitHook != nil {
		if err := s.commitHook(); err != nil {
			return err
		}
	}
	for _, inv := range tx.investments {
		if s.findByKeyLocked(inv.UserID, inv.IdempotencyKey) != nil {
			return investment.ErrDuplicateIdempotencyKey{UserID: inv.UserID, Key: inv.IdempotencyKey}
		}
	}

	for id, p := range tx.projects {
		s.projects[id] = p
	}
	s.investments = append(s.investments, tx.investments...)
	for _, m := range tx.messages {
		s.nextOutboxID++
		m.ID = s.nextOutboxID
		s.messages = append(s.messages, m)
	}
	return nil
}

func (s *memStore) findByKeyLocked(userID, key string) *investment.Investment {
	if key == "" {
		return nil
	}
	for _, inv := range s.investments {
		if inv.UserID == userID && inv.IdempotencyKey == key {
			return inv
		}
	}
	return nil
}

func (s *memStore) project(id int64) *project.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.projects[id]
	if !ok {
		return nil
	}
	copied := *p
	return &copied
}

func (s *memStore) investmentCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.investments)
}

func (s *memStore) messageCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.messages)
}

func (s *memStore) investmentSum(projectID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum int64
	for _, inv := range s.investments {
		if inv.ProjectID == projectID {
			sum += inv.Amount
		}
	}
	return sum
}

type memProjectRepo struct {
	store *memStore
	tx    *memTx
}

func (r *memProjectRepo) current(id int64) *project.Project {
	if r.tx != nil {
		if p, ok := r.tx.projects[id]; ok {
			copied := *p
			return &copied
		}
	}
	return r.store.project(id)
}

func (r *memProjectRepo) Create(ctx context.Context, p *project.Project) error {
	return errNotSupported
}

func (r *memProjectRepo) GetByID(ctx context.Context, id int64) (*project.Project, error) {
	p := r.current(id)
	if p == nil {
		return nil, project.ErrProjectNotFound{ProjectID: id}
	}
	return p, nil
}

func (r *memProjectRepo) ListWithStats(ctx context.Context) ([]*project.Stats, error) {
	return nil, errNotSupported
}

func (r *memProjectRepo) GetWithStats(ctx context.Context, id int64) (*project.Stats, error) {
	return nil, errNotSupported
}

func (r *memProjectRepo) UpdateStatus(ctx context.Context, id int64, status project.Status) (*project.Project, error) {
	return nil, errNotSupported
}

func (r *memProjectRepo) LockForUpdate(ctx context.Context, id int64) (*project.Project, error) {
	if r.tx == nil {
		return nil, errors.New("lock requires a transaction")
	}
	r.store.mu.Lock()
	lock, ok := r.store.rowLocks[id]
	r.store.mu.Unlock()
	if !ok {
		return nil, project.ErrProjectNotFound{ProjectID: id}
	}

	lock.Lock()
	r.tx.held = append(r.tx.held, lock)
	return r.current(id), nil
}

func (r *memProjectRepo) IncreaseRaised(ctx context.Context, id int64, amount int64) (*project.Project, error) {
	p := r.current(id)
	if p == nil || p.Status != project.StatusActive || p.RaisedAmount+amount > p.TargetAmount {
		return nil, project.ErrRaiseRejected{ProjectID: id, Amount: amount}
	}
	p.RaisedAmount += amount
	p.Version++
	r.tx.projects[id] = p
	copied := *p
	return &copied, nil
}

func (r *memProjectRepo) CheckTotals(ctx context.Context) ([]project.TotalsCheck, error) {
	return nil, errNotSupported
}

func (r *memProjectRepo) WithTx(tx pgx.Tx) project.Repository {
	memtx, _ := tx.(*memTx)
	return &memProjectRepo{store: r.store, tx: memtx}
}

type memInvestmentRepo struct {
	store *memStore
	tx    *memTx
}

func (r *memInvestmentRepo) Create(ctx context.Context, inv *investment.Investment) error {
	if r.tx == nil {
		return errors.New("insert requires a transaction")
	}
	r.store.mu.Lock()
	existing := r.store.findByKeyLocked(inv.UserID, inv.IdempotencyKey)
	r.store.mu.Unlock()
	if existing != nil {
		return investment.ErrDuplicateIdempotencyKey{UserID: inv.UserID, Key: inv.IdempotencyKey}
	}
	r.tx.investments = append(r.tx.investments, inv)
	return nil
}

func (r *memInvestmentRepo) GetByIdempotencyKey(ctx context.Context, userID, key string) (*investment.Investment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.findByKeyLocked(userID, key), nil
}

func (r *memInvestmentRepo) ListByUser(ctx context.Context, userID string) ([]*investment.WithProject, error) {
	return nil, errNotSupported
}

func (r *memInvestmentRepo) ListByProject(ctx context.Context, projectID int64) ([]*investment.Investment, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var result []*investment.Investment
	for _, inv := range r.store.investments {
		if inv.ProjectID == projectID {
			result = append(result, inv)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].CreatedAt.After(result[j].CreatedAt) })
	return result, nil
}

func (r *memInvestmentRepo) ListWithPaymentReference(ctx context.Context, userID string) ([]*investment.WithProject, error) {
	return nil, errNotSupported
}

func (r *memInvestmentRepo) WithTx(tx pgx.Tx) investment.Repository {
	memtx, _ := tx.(*memTx)
	return &memInvestmentRepo{store: r.store, tx: memtx}
}

type memOutboxRepo struct {
	store *memStore
	tx    *memTx
}

func (r *memOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	if r.tx == nil {
		return errors.New("insert requires a transaction")
	}
	r.store.mu.Lock()
	fail := r.store.failOutbox
	r.store.mu.Unlock()
	if fail {
		return errors.New("outbox write failed")
	}
	r.tx.messages = append(r.tx.messages, message)
	return nil
}

func (r *memOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	return nil, errNotSupported
}

func (r *memOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	return errNotSupported
}

func (r *memOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	return errNotSupported
}

func (r *memOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	memtx, _ := tx.(*memTx)
	return &memOutboxRepo{store: r.store, tx: memtx}
}
