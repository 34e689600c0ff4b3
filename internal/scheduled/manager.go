package scheduled

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/LeventeLantos/recurring-payments/internal/model"
	"github.com/LeventeLantos/recurring-payments/internal/recurrence"
	"github.com/LeventeLantos/recurring-payments/internal/repo"
)

const (
	DefaultHorizonDays = 7
	DefaultSaveTimeout = 10 * time.Second
)

// Executor resolves one due definition into a success or failed record.
type Executor interface {
	Execute(ctx context.Context, def model.ScheduledTransaction) model.TransactionExecution
}

type Stats struct {
	Definitions     int `json:"definitions"`
	Active          int `json:"active"`
	Executions      int `json:"executions"`
	Failures        int `json:"failures"`
	PersistFailures int `json:"persistFailures"`
}

// Manager owns the insertion-ordered list of scheduled transactions. The
// mutex is never held across a payment call.
type Manager struct {
	store repo.Persistence
	exec  Executor
	now   func() time.Time
	log   zerolog.Logger

	onPersistError func(error)
	saveTimeout    time.Duration

	// runMu serializes RunDue so a manual run and a tick never pick the same item.
	runMu sync.Mutex

	mu              sync.Mutex
	items           []model.ScheduledTransaction
	persistFailures int
}

type Option func(*Manager)

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(log zerolog.Logger) Option {
	return func(m *Manager) { m.log = log }
}

// WithSaveTimeout bounds each SaveAll. The save runs under the list lock, so
// a hung backend would otherwise stall every caller.
func WithSaveTimeout(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.saveTimeout = d
		}
	}
}

// WithPersistErrorHook is called with every *model.PersistenceError after it
// has been logged.
func WithPersistErrorHook(fn func(error)) Option {
	return func(m *Manager) { m.onPersistError = fn }
}

// New loads the stored list once. A load failure is returned: starting empty
// would overwrite the stored list on the first save.
func New(ctx context.Context, store repo.Persistence, exec Executor, opts ...Option) (*Manager, error) {
	m := &Manager{
		store: store,
		exec:  exec,
		now:   time.Now,
		log:   zerolog.Nop(),

		saveTimeout: DefaultSaveTimeout,
	}
	for _, opt := range opts {
		opt(m)
	}

	items, err := store.LoadAll(ctx)
	if err != nil {
		return nil, &model.PersistenceError{Op: "load", Err: err}
	}
	for i := range items {
		if items[i].ExecutionHistory == nil {
			items[i].ExecutionHistory = []model.TransactionExecution{}
		}
	}
	m.items = items

	m.log.Info().Int("definitions", len(items)).Msg("scheduled transactions loaded")
	return m, nil
}

func (m *Manager) Create(ctx context.Context, d model.Draft) (model.ScheduledTransaction, error) {
	st := model.FromDraft(d)
	if err := st.Validate(); err != nil {
		return model.ScheduledTransaction{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	st.ID = uuid.NewString()
	st.CreatedAt = m.now()
	st.ExecutionHistory = []model.TransactionExecution{}
	st.LastExecuted = nil

	m.items = append(m.items, st)
	m.persistLocked(ctx, "create")

	m.log.Info().Str("scheduled_id", st.ID).Str("kind", string(st.Kind)).Msg("scheduled transaction created")
	return st.Clone(), nil
}

func (m *Manager) List() []model.ScheduledTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.ScheduledTransaction, 0, len(m.items))
	for _, it := range m.items {
		out = append(out, it.Clone())
	}
	return out
}

func (m *Manager) ListActive() []model.ScheduledTransaction {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]model.ScheduledTransaction, 0, len(m.items))
	for _, it := range m.items {
		if it.IsActive {
			out = append(out, it.Clone())
		}
	}
	return out
}

func (m *Manager) Get(id string) (model.ScheduledTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return model.ScheduledTransaction{}, &model.NotFoundError{ID: id}
	}
	return m.items[i].Clone(), nil
}

// Update merges the set fields of p. The merged record must still be valid.
func (m *Manager) Update(ctx context.Context, id string, p model.Patch) (model.ScheduledTransaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return model.ScheduledTransaction{}, &model.NotFoundError{ID: id}
	}

	merged := m.items[i].Clone()
	p.ApplyTo(&merged)
	if err := merged.Validate(); err != nil {
		return model.ScheduledTransaction{}, err
	}

	m.items[i] = merged
	m.persistLocked(ctx, "update")

	m.log.Info().Str("scheduled_id", id).Bool("active", merged.IsActive).Msg("scheduled transaction updated")
	return merged.Clone(), nil
}

func (m *Manager) Delete(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		return false, &model.NotFoundError{ID: id}
	}

	m.items = append(m.items[:i], m.items[i+1:]...)
	m.persistLocked(ctx, "delete")

	m.log.Info().Str("scheduled_id", id).Msg("scheduled transaction deleted")
	return true, nil
}

// Upcoming returns active definitions due in [now, now+horizonDays], soonest
// first. A non-positive horizon means DefaultHorizonDays.
func (m *Manager) Upcoming(horizonDays int) []model.ScheduledTransaction {
	if horizonDays <= 0 {
		horizonDays = DefaultHorizonDays
	}

	m.mu.Lock()
	now := m.now()
	end := now.AddDate(0, 0, horizonDays)

	var out []model.ScheduledTransaction
	for _, it := range m.items {
		if !it.IsActive {
			continue
		}
		if it.NextExecutionDate.Before(now) || it.NextExecutionDate.After(end) {
			continue
		}
		out = append(out, it.Clone())
	}
	m.mu.Unlock()

	sortByDue(out)
	if out == nil {
		out = []model.ScheduledTransaction{}
	}
	return out
}

// History returns the executions of one definition, or with an empty id the
// histories of all definitions concatenated in insertion order. The combined
// list is not sorted by ExecutedAt.
func (m *Manager) History(id string) []model.TransactionExecution {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := []model.TransactionExecution{}
	for _, it := range m.items {
		if id != "" && it.ID != id {
			continue
		}
		out = append(out, it.ExecutionHistory...)
	}
	return out
}

// RunDue executes every active definition whose next date has passed, one at
// a time and once each. It returns the recorded executions in run order.
func (m *Manager) RunDue(ctx context.Context) []model.TransactionExecution {
	m.runMu.Lock()
	defer m.runMu.Unlock()

	m.mu.Lock()
	now := m.now()
	var due []model.ScheduledTransaction
	for _, it := range m.items {
		if it.IsActive && !it.NextExecutionDate.After(now) {
			due = append(due, it.Clone())
		}
	}
	m.mu.Unlock()

	sortByDue(due)

	out := make([]model.TransactionExecution, 0, len(due))
	for i, def := range due {
		if ctx.Err() != nil {
			m.log.Info().Int("remaining", len(due)-i).Msg("run canceled; remaining definitions left for the next tick")
			break
		}

		exec := m.exec.Execute(ctx, def)
		if exec.Status == model.ExecPending {
			exec.Status = model.ExecFailed
			exec.ErrorMessage = "execution did not resolve"
		}

		if m.record(ctx, def.ID, exec) {
			out = append(out, exec)
		}
	}
	return out
}

func (m *Manager) record(ctx context.Context, id string, exec model.TransactionExecution) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.indexLocked(id)
	if i < 0 {
		m.log.Warn().
			Str("scheduled_id", id).
			Str("execution_id", exec.ID).
			Str("status", string(exec.Status)).
			Msg("definition deleted during execution; record dropped")
		return false
	}

	it := &m.items[i]
	it.ExecutionHistory = append(it.ExecutionHistory, exec)
	executedAt := exec.ExecutedAt
	it.LastExecuted = &executedAt

	next, err := recurrence.NextDueDate(executedAt, it.Frequency)
	if err != nil {
		// Unreachable for validated records; park it rather than re-run every tick.
		it.IsActive = false
		m.log.Error().Err(err).Str("scheduled_id", id).Msg("cannot advance next execution date; deactivated")
	} else {
		it.NextExecutionDate = next
	}

	m.persistLocked(ctx, "record execution")
	return true
}

func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Stats{Definitions: len(m.items), PersistFailures: m.persistFailures}
	for _, it := range m.items {
		if it.IsActive {
			s.Active++
		}
		s.Executions += len(it.ExecutionHistory)
		for _, e := range it.ExecutionHistory {
			if e.Status == model.ExecFailed {
				s.Failures++
			}
		}
	}
	return s
}

// persistLocked saves the full list. Failures are logged and counted; the
// in-memory copy stays authoritative.
func (m *Manager) persistLocked(ctx context.Context, op string) {
	snapshot := make([]model.ScheduledTransaction, len(m.items))
	for i := range m.items {
		snapshot[i] = m.items[i].Clone()
	}

	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.saveTimeout)
	defer cancel()

	if err := m.store.SaveAll(saveCtx, snapshot); err != nil {
		perr := &model.PersistenceError{Op: op, Err: err}
		m.persistFailures++
		m.log.Error().Err(perr).Int("definitions", len(snapshot)).Msg("persist scheduled transactions failed")
		if m.onPersistError != nil {
			m.onPersistError(perr)
		}
	}
}

func (m *Manager) indexLocked(id string) int {
	for i := range m.items {
		if m.items[i].ID == id {
			return i
		}
	}
	return -1
}

func sortByDue(items []model.ScheduledTransaction) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].NextExecutionDate, items[j].NextExecutionDate
		if !a.Equal(b) {
			return a.Before(b)
		}
		return items[i].ID < items[j].ID
	})
}
