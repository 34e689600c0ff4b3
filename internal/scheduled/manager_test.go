package scheduled

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/LeventeLantos/recurring-payments/internal/model"
	"github.com/LeventeLantos/recurring-payments/internal/repo"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// fakeExecutor records every call and resolves it through fn.
type fakeExecutor struct {
	mu    sync.Mutex
	calls []model.ScheduledTransaction
	clock *clock
	fn    func(def model.ScheduledTransaction) (model.ExecutionStatus, string)
}

func (f *fakeExecutor) Execute(ctx context.Context, def model.ScheduledTransaction) model.TransactionExecution {
	f.mu.Lock()
	f.calls = append(f.calls, def)
	f.mu.Unlock()

	exec := model.TransactionExecution{
		ID:                     "exec-" + def.ID,
		ScheduledTransactionID: def.ID,
		ExecutedAt:             f.clock.Now(),
		Status:                 model.ExecSuccess,
		ReferenceID:            "ref-" + def.ID,
	}
	if f.fn != nil {
		status, msg := f.fn(def)
		exec.Status = status
		exec.ErrorMessage = msg
		if status != model.ExecSuccess {
			exec.ReferenceID = ""
		}
	}
	return exec
}

func (f *fakeExecutor) Calls() []model.ScheduledTransaction {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.ScheduledTransaction(nil), f.calls...)
}

type failingStore struct {
	loadErr error
	saveErr error
	saves   int
}

func (s *failingStore) LoadAll(ctx context.Context) ([]model.ScheduledTransaction, error) {
	return nil, s.loadErr
}

func (s *failingStore) SaveAll(ctx context.Context, items []model.ScheduledTransaction) error {
	s.saves++
	return s.saveErr
}

// hangingStore blocks every save until ctx ends.
type hangingStore struct{}

func (hangingStore) LoadAll(ctx context.Context) ([]model.ScheduledTransaction, error) {
	return nil, nil
}

func (hangingStore) SaveAll(ctx context.Context, items []model.ScheduledTransaction) error {
	<-ctx.Done()
	return ctx.Err()
}

var t0 = time.Date(2026, 1, 31, 9, 0, 0, 0, time.UTC)

func newTestManager(t *testing.T) (*Manager, *fakeExecutor, *clock, *repo.MemoryStore) {
	t.Helper()

	c := &clock{now: t0}
	fe := &fakeExecutor{clock: c}
	store := repo.NewMemoryStore()

	m, err := New(context.Background(), store, fe, WithClock(c.Now))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return m, fe, c, store
}

func billDraft(next time.Time) model.Draft {
	return model.Draft{
		Kind:              model.KindBillPayment,
		BillerType:        "electricity",
		AccountNumber:     "1234567890",
		Amount:            decimal.NewFromInt(15000),
		Currency:          "RWF",
		Frequency:         model.Monthly,
		NextExecutionDate: next,
		IsActive:          true,
	}
}

func transferDraft(next time.Time, freq model.Frequency) model.Draft {
	return model.Draft{
		Kind:              model.KindTransfer,
		RecipientPhone:    "+250788123456",
		RecipientName:     "Jane",
		Amount:            decimal.NewFromInt(5000),
		Currency:          "RWF",
		Frequency:         freq,
		NextExecutionDate: next,
		IsActive:          true,
	}
}

func mustCreate(t *testing.T, m *Manager, d model.Draft) model.ScheduledTransaction {
	t.Helper()
	st, err := m.Create(context.Background(), d)
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	return st
}

func TestCreate_ListRoundTrip(t *testing.T) {
	t.Parallel()

	m, _, _, store := newTestManager(t)

	st := mustCreate(t, m, transferDraft(t0.Add(time.Hour), model.Weekly))
	if st.ID == "" {
		t.Fatalf("expected generated id")
	}
	if !st.CreatedAt.Equal(t0) {
		t.Fatalf("expected createdAt %s, got %s", t0, st.CreatedAt)
	}
	if st.ExecutionHistory == nil || len(st.ExecutionHistory) != 0 {
		t.Fatalf("expected empty non-nil history, got %#v", st.ExecutionHistory)
	}

	list := m.List()
	if len(list) != 1 {
		t.Fatalf("expected 1 item, got %d", len(list))
	}
	got := list[0]
	if got.ID != st.ID || got.RecipientPhone != "+250788123456" || !got.Amount.Equal(decimal.NewFromInt(5000)) {
		t.Fatalf("listed record does not match input: %+v", got)
	}
	if store.Saves() != 1 {
		t.Fatalf("expected one save after create, got %d", store.Saves())
	}
}

func TestCreate_ValidationLeavesStoreUntouched(t *testing.T) {
	t.Parallel()

	m, _, _, store := newTestManager(t)

	d := billDraft(t0)
	d.AccountNumber = ""
	_, err := m.Create(context.Background(), d)
	if !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}

	d = transferDraft(t0, model.Daily)
	d.Amount = decimal.Zero
	if _, err := m.Create(context.Background(), d); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected ErrValidation for zero amount, got %v", err)
	}

	if len(m.List()) != 0 || store.Saves() != 0 {
		t.Fatalf("expected no mutation on validation failure")
	}
}

func TestList_InsertionOrderAndActiveFilter(t *testing.T) {
	t.Parallel()

	m, _, _, _ := newTestManager(t)

	a := mustCreate(t, m, transferDraft(t0.Add(48*time.Hour), model.Daily))
	inactive := transferDraft(t0.Add(time.Hour), model.Daily)
	inactive.IsActive = false
	b := mustCreate(t, m, inactive)
	c := mustCreate(t, m, billDraft(t0.Add(time.Minute)))

	list := m.List()
	if len(list) != 3 || list[0].ID != a.ID || list[1].ID != b.ID || list[2].ID != c.ID {
		t.Fatalf("expected insertion order, got %+v", list)
	}

	active := m.ListActive()
	if len(active) != 2 || active[0].ID != a.ID || active[1].ID != c.ID {
		t.Fatalf("unexpected active list: %+v", active)
	}
}

func TestList_ReturnsCopies(t *testing.T) {
	t.Parallel()

	m, _, _, _ := newTestManager(t)
	st := mustCreate(t, m, transferDraft(t0, model.Daily))

	list := m.List()
	list[0].Amount = decimal.NewFromInt(1)
	list[0].ExecutionHistory = append(list[0].ExecutionHistory, model.TransactionExecution{ID: "x"})

	got, err := m.Get(st.ID)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !got.Amount.Equal(decimal.NewFromInt(5000)) || len(got.ExecutionHistory) != 0 {
		t.Fatalf("caller mutation leaked into manager: %+v", got)
	}
}

func TestUpdate(t *testing.T) {
	t.Parallel()

	m, _, _, store := newTestManager(t)
	st := mustCreate(t, m, transferDraft(t0, model.Weekly))

	paused := false
	amount := decimal.NewFromInt(7000)
	got, err := m.Update(context.Background(), st.ID, model.Patch{IsActive: &paused, Amount: &amount})
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if got.IsActive || !got.Amount.Equal(amount) {
		t.Fatalf("patch not applied: %+v", got)
	}
	if got.ID != st.ID || !got.CreatedAt.Equal(st.CreatedAt) {
		t.Fatalf("identity changed by update: %+v", got)
	}
	if len(m.ListActive()) != 0 {
		t.Fatalf("expected paused definition to drop out of active list")
	}
	if store.Saves() != 2 {
		t.Fatalf("expected save after update, got %d saves", store.Saves())
	}

	if _, err := m.Update(context.Background(), "missing", model.Patch{}); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	empty := ""
	if _, err := m.Update(context.Background(), st.ID, model.Patch{RecipientPhone: &empty}); !errors.Is(err, model.ErrValidation) {
		t.Fatalf("expected ErrValidation for invalid merge, got %v", err)
	}
	after, _ := m.Get(st.ID)
	if after.RecipientPhone != "+250788123456" {
		t.Fatalf("rejected update must not change the record, got %q", after.RecipientPhone)
	}
}

func TestDelete(t *testing.T) {
	t.Parallel()

	m, _, _, _ := newTestManager(t)
	a := mustCreate(t, m, transferDraft(t0, model.Daily))
	b := mustCreate(t, m, billDraft(t0))

	ok, err := m.Delete(context.Background(), a.ID)
	if err != nil || !ok {
		t.Fatalf("Delete() = %v, %v", ok, err)
	}

	list := m.List()
	if len(list) != 1 || list[0].ID != b.ID {
		t.Fatalf("expected only %s to remain, got %+v", b.ID, list)
	}

	ok, err = m.Delete(context.Background(), a.ID)
	if ok || !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v, %v", ok, err)
	}

	var nf *model.NotFoundError
	if !errors.As(err, &nf) || nf.ID != a.ID {
		t.Fatalf("expected NotFoundError carrying id, got %v", err)
	}
}

func TestUpcoming(t *testing.T) {
	t.Parallel()

	m, _, _, _ := newTestManager(t)

	boundary := mustCreate(t, m, transferDraft(t0.AddDate(0, 0, 7), model.Daily))
	soon := mustCreate(t, m, billDraft(t0.Add(time.Hour)))
	_ = mustCreate(t, m, transferDraft(t0.AddDate(0, 0, 7).Add(time.Second), model.Daily))
	_ = mustCreate(t, m, transferDraft(t0.Add(-time.Minute), model.Daily))

	inactive := transferDraft(t0.Add(2*time.Hour), model.Daily)
	inactive.IsActive = false
	_ = mustCreate(t, m, inactive)

	got := m.Upcoming(7)
	if len(got) != 2 {
		t.Fatalf("expected 2 upcoming, got %d: %+v", len(got), got)
	}
	if got[0].ID != soon.ID || got[1].ID != boundary.ID {
		t.Fatalf("expected ascending by next date, got %s then %s", got[0].ID, got[1].ID)
	}

	if def := m.Upcoming(0); len(def) != 2 {
		t.Fatalf("expected default horizon of 7 days, got %d", len(def))
	}
	if none := m.Upcoming(1); len(none) != 1 || none[0].ID != soon.ID {
		t.Fatalf("expected only the item within one day, got %+v", none)
	}
}

func TestRunDue_ExactlyOneExecutionPerTick(t *testing.T) {
	t.Parallel()

	m, fe, c, _ := newTestManager(t)
	// Far overdue: three days behind on a daily schedule.
	st := mustCreate(t, m, transferDraft(t0.AddDate(0, 0, -3), model.Daily))

	execs := m.RunDue(context.Background())
	if len(execs) != 1 || len(fe.Calls()) != 1 {
		t.Fatalf("expected one execution, got %d (calls=%d)", len(execs), len(fe.Calls()))
	}

	got, _ := m.Get(st.ID)
	if len(got.ExecutionHistory) != 1 {
		t.Fatalf("expected history length 1, got %d", len(got.ExecutionHistory))
	}
	if want := t0.AddDate(0, 0, 1); !got.NextExecutionDate.Equal(want) {
		t.Fatalf("expected next %s, got %s", want, got.NextExecutionDate)
	}
	if got.LastExecuted == nil || !got.LastExecuted.Equal(t0) {
		t.Fatalf("expected lastExecuted %s, got %v", t0, got.LastExecuted)
	}

	// Same instant again: already advanced, nothing due.
	if again := m.RunDue(context.Background()); len(again) != 0 {
		t.Fatalf("expected nothing due on repeat tick, got %d", len(again))
	}

	c.Advance(24 * time.Hour)
	if next := m.RunDue(context.Background()); len(next) != 1 {
		t.Fatalf("expected one execution after a day, got %d", len(next))
	}
}

func TestRunDue_OrderAndIsolation(t *testing.T) {
	t.Parallel()

	m, fe, _, _ := newTestManager(t)

	later := mustCreate(t, m, transferDraft(t0.Add(-time.Minute), model.Weekly))
	first := mustCreate(t, m, billDraft(t0.Add(-time.Hour)))
	notDue := mustCreate(t, m, transferDraft(t0.Add(time.Minute), model.Weekly))

	fe.fn = func(def model.ScheduledTransaction) (model.ExecutionStatus, string) {
		if def.ID == first.ID {
			return model.ExecFailed, "PaymentError: provider rejected"
		}
		return model.ExecSuccess, ""
	}

	execs := m.RunDue(context.Background())
	calls := fe.Calls()
	if len(calls) != 2 || calls[0].ID != first.ID || calls[1].ID != later.ID {
		t.Fatalf("expected due items in next-date order, got %+v", calls)
	}
	if len(execs) != 2 {
		t.Fatalf("expected 2 executions, got %d", len(execs))
	}

	failed, _ := m.Get(first.ID)
	if len(failed.ExecutionHistory) != 1 || failed.ExecutionHistory[0].Status != model.ExecFailed {
		t.Fatalf("expected failed record, got %+v", failed.ExecutionHistory)
	}
	if failed.ExecutionHistory[0].ErrorMessage == "" {
		t.Fatalf("expected error message on failed record")
	}
	if want := t0.AddDate(0, 1, 0); !failed.NextExecutionDate.Equal(want) {
		t.Fatalf("failed execution must still advance: want %s, got %s", want, failed.NextExecutionDate)
	}

	ok, _ := m.Get(later.ID)
	if len(ok.ExecutionHistory) != 1 || ok.ExecutionHistory[0].Status != model.ExecSuccess {
		t.Fatalf("expected second item executed despite first failure, got %+v", ok.ExecutionHistory)
	}

	untouched, _ := m.Get(notDue.ID)
	if len(untouched.ExecutionHistory) != 0 {
		t.Fatalf("item not yet due must not run")
	}
}

func TestRunDue_TieBrokenByID(t *testing.T) {
	t.Parallel()

	m, fe, _, _ := newTestManager(t)
	a := mustCreate(t, m, transferDraft(t0, model.Daily))
	b := mustCreate(t, m, transferDraft(t0, model.Daily))

	m.RunDue(context.Background())

	lo, hi := a.ID, b.ID
	if hi < lo {
		lo, hi = hi, lo
	}
	calls := fe.Calls()
	if len(calls) != 2 || calls[0].ID != lo || calls[1].ID != hi {
		t.Fatalf("expected id order %s, %s; got %+v", lo, hi, calls)
	}
}

func TestRunDue_NoLingeringPending(t *testing.T) {
	t.Parallel()

	m, fe, _, _ := newTestManager(t)
	mustCreate(t, m, transferDraft(t0, model.Daily))
	mustCreate(t, m, billDraft(t0))

	fe.fn = func(def model.ScheduledTransaction) (model.ExecutionStatus, string) {
		return model.ExecPending, ""
	}
	m.RunDue(context.Background())

	for _, e := range m.History("") {
		if e.Status == model.ExecPending {
			t.Fatalf("found pending record after tick: %+v", e)
		}
	}
}

func TestRunDue_SkipsInactive(t *testing.T) {
	t.Parallel()

	m, fe, _, _ := newTestManager(t)
	d := transferDraft(t0.Add(-time.Hour), model.Daily)
	d.IsActive = false
	mustCreate(t, m, d)

	if execs := m.RunDue(context.Background()); len(execs) != 0 || len(fe.Calls()) != 0 {
		t.Fatalf("inactive definition must not run")
	}
}

func TestRunDue_CanceledContextStopsBeforeNextItem(t *testing.T) {
	t.Parallel()

	m, fe, _, _ := newTestManager(t)
	mustCreate(t, m, transferDraft(t0, model.Daily))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if execs := m.RunDue(ctx); len(execs) != 0 || len(fe.Calls()) != 0 {
		t.Fatalf("expected no executions after cancel")
	}
}

func TestRunDue_DeletedDuringExecutionIsDropped(t *testing.T) {
	t.Parallel()

	m, fe, _, _ := newTestManager(t)
	st := mustCreate(t, m, transferDraft(t0, model.Daily))

	fe.fn = func(def model.ScheduledTransaction) (model.ExecutionStatus, string) {
		if _, err := m.Delete(context.Background(), def.ID); err != nil {
			t.Errorf("Delete() during execution: %v", err)
		}
		return model.ExecSuccess, ""
	}

	if execs := m.RunDue(context.Background()); len(execs) != 0 {
		t.Fatalf("expected dropped execution, got %+v", execs)
	}
	if _, err := m.Get(st.ID); !errors.Is(err, model.ErrNotFound) {
		t.Fatalf("expected definition gone, got %v", err)
	}
}

func TestMonthlyBillScenario(t *testing.T) {
	t.Parallel()

	m, fe, _, store := newTestManager(t)
	st := mustCreate(t, m, billDraft(t0))

	execs := m.RunDue(context.Background())
	if len(execs) != 1 {
		t.Fatalf("expected one execution, got %d", len(execs))
	}

	calls := fe.Calls()
	if len(calls) != 1 || calls[0].Kind != model.KindBillPayment || !calls[0].Amount.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("expected one bill payment of 15000, got %+v", calls)
	}

	got, _ := m.Get(st.ID)
	if len(got.ExecutionHistory) != 1 || got.ExecutionHistory[0].Status != model.ExecSuccess {
		t.Fatalf("expected one success record, got %+v", got.ExecutionHistory)
	}
	// Jan 31 + 1 month clamps to Feb 28.
	want := time.Date(2026, 2, 28, 9, 0, 0, 0, time.UTC)
	if !got.NextExecutionDate.Equal(want) {
		t.Fatalf("expected next %s, got %s", want, got.NextExecutionDate)
	}

	persisted, err := store.LoadAll(context.Background())
	if err != nil {
		t.Fatalf("LoadAll() error: %v", err)
	}
	if len(persisted) != 1 || len(persisted[0].ExecutionHistory) != 1 || !persisted[0].NextExecutionDate.Equal(want) {
		t.Fatalf("execution result was not persisted: %+v", persisted)
	}
}

func TestHistory(t *testing.T) {
	t.Parallel()

	m, _, c, _ := newTestManager(t)
	a := mustCreate(t, m, transferDraft(t0, model.Daily))
	b := mustCreate(t, m, billDraft(t0.Add(-time.Hour)))

	if h := m.History(a.ID); h == nil || len(h) != 0 {
		t.Fatalf("expected empty non-nil history, got %#v", h)
	}
	if h := m.History("unknown"); h == nil || len(h) != 0 {
		t.Fatalf("expected empty history for unknown id, got %#v", h)
	}

	m.RunDue(context.Background())
	c.Advance(24 * time.Hour)
	m.RunDue(context.Background())

	if h := m.History(a.ID); len(h) != 2 {
		t.Fatalf("expected 2 executions for a, got %d", len(h))
	}

	all := m.History("")
	if len(all) != 3 {
		t.Fatalf("expected 3 executions overall, got %d", len(all))
	}
	// Insertion order of definitions, then execution order.
	if all[0].ScheduledTransactionID != a.ID || all[1].ScheduledTransactionID != a.ID || all[2].ScheduledTransactionID != b.ID {
		t.Fatalf("unexpected concatenation order: %+v", all)
	}
	if !all[0].ExecutedAt.Before(all[1].ExecutedAt) {
		t.Fatalf("expected execution order within a definition")
	}
}

func TestNew_LoadsPersistedList(t *testing.T) {
	t.Parallel()

	seed := model.ScheduledTransaction{
		ID:                "persisted",
		Kind:              model.KindTransfer,
		RecipientPhone:    "+250788000000",
		Amount:            decimal.NewFromInt(10),
		Currency:          "RWF",
		Frequency:         model.Daily,
		NextExecutionDate: t0,
		IsActive:          true,
		CreatedAt:         t0,
	}

	m, err := New(context.Background(), repo.NewMemoryStore(seed), &fakeExecutor{clock: &clock{now: t0}})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	list := m.List()
	if len(list) != 1 || list[0].ID != "persisted" {
		t.Fatalf("expected persisted item, got %+v", list)
	}
	if list[0].ExecutionHistory == nil {
		t.Fatalf("expected history normalized to empty slice")
	}
}

func TestNew_LoadFailure(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), &failingStore{loadErr: errors.New("connection refused")}, &fakeExecutor{})
	if !errors.Is(err, model.ErrPersistence) {
		t.Fatalf("expected ErrPersistence, got %v", err)
	}
}

func TestPersistFailure_LoggedAndContinues(t *testing.T) {
	t.Parallel()

	var hooked []error
	store := &failingStore{saveErr: errors.New("disk full")}
	c := &clock{now: t0}

	m, err := New(context.Background(), store, &fakeExecutor{clock: c},
		WithClock(c.Now),
		WithPersistErrorHook(func(err error) { hooked = append(hooked, err) }),
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	st, err := m.Create(context.Background(), transferDraft(t0, model.Daily))
	if err != nil {
		t.Fatalf("Create() must succeed despite save failure: %v", err)
	}
	if execs := m.RunDue(context.Background()); len(execs) != 1 {
		t.Fatalf("tick must keep running despite save failure")
	}

	got, _ := m.Get(st.ID)
	if len(got.ExecutionHistory) != 1 {
		t.Fatalf("in-memory copy must hold the execution")
	}
	if len(hooked) != 2 || !errors.Is(hooked[0], model.ErrPersistence) {
		t.Fatalf("expected two persistence errors reported, got %v", hooked)
	}
	if s := m.Stats(); s.PersistFailures != 2 {
		t.Fatalf("expected 2 persist failures in stats, got %d", s.PersistFailures)
	}
}

func TestPersist_SaveIsBounded(t *testing.T) {
	t.Parallel()

	var hooked []error
	c := &clock{now: t0}
	m, err := New(context.Background(), hangingStore{}, &fakeExecutor{clock: c},
		WithClock(c.Now),
		WithSaveTimeout(50*time.Millisecond),
		WithPersistErrorHook(func(err error) { hooked = append(hooked, err) }),
	)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	start := time.Now()
	if _, err := m.Create(context.Background(), transferDraft(t0, model.Daily)); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("expected a hung save to give up near its timeout, took %s", elapsed)
	}

	// The lock is free again, so reads go through.
	if got := m.List(); len(got) != 1 {
		t.Fatalf("expected the definition to be kept in memory, got %d", len(got))
	}
	if len(hooked) != 1 || !errors.Is(hooked[0], context.DeadlineExceeded) {
		t.Fatalf("expected one deadline persistence error, got %v", hooked)
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	m, fe, _, _ := newTestManager(t)
	a := mustCreate(t, m, transferDraft(t0, model.Daily))
	mustCreate(t, m, billDraft(t0))
	off := transferDraft(t0.Add(time.Hour), model.Daily)
	off.IsActive = false
	mustCreate(t, m, off)

	fe.fn = func(def model.ScheduledTransaction) (model.ExecutionStatus, string) {
		if def.ID == a.ID {
			return model.ExecFailed, "boom"
		}
		return model.ExecSuccess, ""
	}
	m.RunDue(context.Background())

	s := m.Stats()
	if s.Definitions != 3 || s.Active != 2 || s.Executions != 2 || s.Failures != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}
}

func TestSeedIfEmpty(t *testing.T) {
	t.Parallel()

	m, _, _, _ := newTestManager(t)

	n, err := m.SeedIfEmpty(context.Background())
	if err != nil || n != 2 {
		t.Fatalf("SeedIfEmpty() = %d, %v", n, err)
	}
	list := m.List()
	if list[0].Kind != model.KindBillPayment || list[0].Currency != "UGX" || !list[0].Amount.Equal(decimal.NewFromInt(85000)) {
		t.Fatalf("unexpected first sample: %+v", list[0])
	}
	if list[1].RecipientName != "John Doe" || list[1].Frequency != model.Weekly {
		t.Fatalf("unexpected second sample: %+v", list[1])
	}

	if n, _ := m.SeedIfEmpty(context.Background()); n != 0 {
		t.Fatalf("expected no seeding on a non-empty store, got %d", n)
	}
}
