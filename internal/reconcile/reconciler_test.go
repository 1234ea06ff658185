package reconcile

import (
	"database/sql"
	"errors"
	"testing"

	"plowmarket/internal/db"
	"plowmarket/internal/models"
)

// fakeTx записывает вызовы и имитирует хранилище внутри транзакции.
type fakeTx struct {
	request    models.PayoutRequest
	requestErr error

	jobs    []models.Job
	jobsErr error

	flipAllCount  int64
	flipAllErr    error
	flipByIDCount int64
	flipByIDErr   error

	commitErr error

	events *[]string
}

func (f *fakeTx) record(ev string) {
	if f.events != nil {
		*f.events = append(*f.events, ev)
	}
}

func (f *fakeTx) CompletePayoutRequest(requestID int64) (models.PayoutRequest, error) {
	f.record("complete_request")
	if f.requestErr != nil {
		return models.PayoutRequest{}, f.requestErr
	}
	return f.request, nil
}

func (f *fakeTx) MarkAllJobsPaidOut(shovelerPhone string) (int64, error) {
	f.record("flip_all:" + shovelerPhone)
	if f.flipAllErr != nil {
		return 0, f.flipAllErr
	}
	return f.flipAllCount, nil
}

func (f *fakeTx) JobsForShoveler(shovelerPhone string, jobIDs []int64) ([]models.Job, error) {
	f.record("fetch_jobs:" + shovelerPhone)
	if f.jobsErr != nil {
		return nil, f.jobsErr
	}
	return f.jobs, nil
}

func (f *fakeTx) MarkJobsPaidOutByIDs(shovelerPhone string, jobIDs []int64) (int64, error) {
	f.record("flip_by_ids:" + shovelerPhone)
	if f.flipByIDErr != nil {
		return 0, f.flipByIDErr
	}
	return f.flipByIDCount, nil
}

func (f *fakeTx) Commit() error {
	f.record("commit")
	return f.commitErr
}

func (f *fakeTx) Rollback() error {
	f.record("rollback")
	return nil
}

type fakeStore struct {
	tx       *fakeTx
	beginErr error
	begun    int
}

func (s *fakeStore) Begin() (Tx, error) {
	s.begun++
	if s.beginErr != nil {
		return nil, s.beginErr
	}
	return s.tx, nil
}

type notifyCall struct {
	phone  string
	amount float64
}

type fakeNotifier struct {
	calls  []notifyCall
	err    error
	events *[]string
}

func (n *fakeNotifier) PayoutSent(shovelerPhone string, amount float64) error {
	if n.events != nil {
		*n.events = append(*n.events, "notify")
	}
	n.calls = append(n.calls, notifyCall{phone: shovelerPhone, amount: amount})
	return n.err
}

func price(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: true}
}

func TestSettleByRequestSuccess(t *testing.T) {
	tx := &fakeTx{
		request: models.PayoutRequest{
			ID:            7,
			ShovelerPhone: "+15551234567",
			Amount:        90.00,
		},
		flipAllCount: 3,
	}
	store := &fakeStore{tx: tx}
	notifier := &fakeNotifier{}

	res, err := New(store, notifier).SettleByRequest(7)
	if err != nil {
		t.Fatalf("SettleByRequest вернул ошибку: %v", err)
	}
	if res.RequestID != 7 || res.Amount != 90.00 || res.JobsFlipped != 3 {
		t.Errorf("неожиданный результат: %+v", res)
	}
	if len(notifier.calls) != 1 {
		t.Fatalf("ожидалось 1 уведомление, получено %d", len(notifier.calls))
	}
	if notifier.calls[0].phone != "+15551234567" || notifier.calls[0].amount != 90.00 {
		t.Errorf("неверное уведомление: %+v", notifier.calls[0])
	}
}

func TestSettleByRequestAlreadyCompleted(t *testing.T) {
	// Повторный расчёт по исполненной заявке ничего не меняет и ничего не шлёт.
	tx := &fakeTx{requestErr: db.ErrPayoutRequestAlreadyCompleted}
	store := &fakeStore{tx: tx}
	notifier := &fakeNotifier{}
	events := []string{}
	tx.events = &events

	_, err := New(store, notifier).SettleByRequest(7)
	if !errors.Is(err, db.ErrPayoutRequestAlreadyCompleted) {
		t.Fatalf("ожидалась ErrPayoutRequestAlreadyCompleted, получено: %v", err)
	}
	if len(notifier.calls) != 0 {
		t.Errorf("уведомление не должно отправляться при повторном расчёте")
	}
	for _, ev := range events {
		if ev == "commit" {
			t.Errorf("транзакция не должна коммититься при повторном расчёте")
		}
	}
	if events[len(events)-1] != "rollback" {
		t.Errorf("ожидался откат транзакции, события: %v", events)
	}
}

func TestSettleByRequestNotFound(t *testing.T) {
	tx := &fakeTx{requestErr: db.ErrPayoutRequestNotFound}
	store := &fakeStore{tx: tx}
	notifier := &fakeNotifier{}

	_, err := New(store, notifier).SettleByRequest(999)
	if !errors.Is(err, db.ErrPayoutRequestNotFound) {
		t.Fatalf("ожидалась ErrPayoutRequestNotFound, получено: %v", err)
	}
	if len(notifier.calls) != 0 {
		t.Errorf("уведомление не должно отправляться для несуществующей заявки")
	}
}

func TestSettleByRequestFlipErrorRollsBack(t *testing.T) {
	// Сбой пометки заданий откатывает и статус заявки: одна транзакция.
	tx := &fakeTx{
		request:    models.PayoutRequest{ID: 7, ShovelerPhone: "+15551234567", Amount: 90.00},
		flipAllErr: errors.New("deadlock"),
	}
	store := &fakeStore{tx: tx}
	notifier := &fakeNotifier{}
	events := []string{}
	tx.events = &events

	_, err := New(store, notifier).SettleByRequest(7)
	if err == nil {
		t.Fatal("ожидалась ошибка")
	}
	if events[len(events)-1] != "rollback" {
		t.Errorf("ожидался откат транзакции, события: %v", events)
	}
	if len(notifier.calls) != 0 {
		t.Errorf("уведомление не должно отправляться при откате")
	}
}

func TestSettleByRequestNotifierFailureStillSuccess(t *testing.T) {
	tx := &fakeTx{
		request:      models.PayoutRequest{ID: 7, ShovelerPhone: "+15551234567", Amount: 90.00},
		flipAllCount: 2,
	}
	store := &fakeStore{tx: tx}
	notifier := &fakeNotifier{err: errors.New("шлюз недоступен")}

	res, err := New(store, notifier).SettleByRequest(7)
	if err != nil {
		t.Fatalf("сбой уведомления не должен валить расчёт: %v", err)
	}
	if res.JobsFlipped != 2 {
		t.Errorf("ожидалось 2 помеченных задания, получено %d", res.JobsFlipped)
	}
}

func TestSettleByRequestNotifyAfterCommit(t *testing.T) {
	events := []string{}
	tx := &fakeTx{
		request:      models.PayoutRequest{ID: 7, ShovelerPhone: "+15551234567", Amount: 90.00},
		flipAllCount: 1,
		events:       &events,
	}
	store := &fakeStore{tx: tx}
	notifier := &fakeNotifier{events: &events}

	if _, err := New(store, notifier).SettleByRequest(7); err != nil {
		t.Fatalf("SettleByRequest вернул ошибку: %v", err)
	}

	commitIdx, notifyIdx := -1, -1
	for i, ev := range events {
		switch ev {
		case "commit":
			commitIdx = i
		case "notify":
			notifyIdx = i
		}
	}
	if commitIdx == -1 || notifyIdx == -1 || notifyIdx < commitIdx {
		t.Errorf("уведомление должно идти строго после коммита, события: %v", events)
	}
}

func TestSettleByRequestCommitError(t *testing.T) {
	tx := &fakeTx{
		request:      models.PayoutRequest{ID: 7, ShovelerPhone: "+15551234567", Amount: 90.00},
		flipAllCount: 1,
		commitErr:    errors.New("connection reset"),
	}
	store := &fakeStore{tx: tx}
	notifier := &fakeNotifier{}

	if _, err := New(store, notifier).SettleByRequest(7); err == nil {
		t.Fatal("ожидалась ошибка коммита")
	}
	if len(notifier.calls) != 0 {
		t.Errorf("уведомление не должно отправляться при сбое коммита")
	}
}

func TestSettleByJobsEmptyList(t *testing.T) {
	store := &fakeStore{tx: &fakeTx{}}
	_, err := New(store, &fakeNotifier{}).SettleByJobs("+15551234567", nil)
	if !errors.Is(err, ErrNoJobIDs) {
		t.Fatalf("ожидалась ErrNoJobIDs, получено: %v", err)
	}
	if store.begun != 0 {
		t.Errorf("транзакция не должна открываться для пустого списка")
	}
}

func TestSettleByJobsRawPriceTotal(t *testing.T) {
	// Сумма ручного расчёта - сырые цены заданий (final ?? max ?? 0),
	// не заработок за вычетом комиссии.
	tx := &fakeTx{
		jobs: []models.Job{
			{ID: 1, FinalPrice: price(30)},
			{ID: 2, FinalPrice: price(45)},
			{ID: 3, MaxPrice: price(25)},
			{ID: 4},
		},
		flipByIDCount: 4,
	}
	store := &fakeStore{tx: tx}
	notifier := &fakeNotifier{}

	res, err := New(store, notifier).SettleByJobs("+15551234567", []int64{1, 2, 3, 4})
	if err != nil {
		t.Fatalf("SettleByJobs вернул ошибку: %v", err)
	}
	if res.Amount != 100.00 {
		t.Errorf("ожидалась сумма 100.00 (сырые цены), получено %.2f", res.Amount)
	}
	if res.JobsFlipped != 4 {
		t.Errorf("ожидалось 4 помеченных задания, получено %d", res.JobsFlipped)
	}
	if res.RequestID != 0 {
		t.Errorf("ручной расчёт не привязан к заявке, RequestID должен быть 0")
	}
	if len(notifier.calls) != 1 || notifier.calls[0].amount != 100.00 {
		t.Errorf("ожидалось одно уведомление на 100.00, получено: %+v", notifier.calls)
	}
}

func TestSettleByJobsScopedToShoveler(t *testing.T) {
	// Задания и пометка идут через фильтр по телефону подрядчика.
	events := []string{}
	tx := &fakeTx{
		jobs:          []models.Job{{ID: 1, FinalPrice: price(40)}},
		flipByIDCount: 1,
		events:        &events,
	}
	store := &fakeStore{tx: tx}

	if _, err := New(store, &fakeNotifier{}).SettleByJobs("+15559876543", []int64{1, 2}); err != nil {
		t.Fatalf("SettleByJobs вернул ошибку: %v", err)
	}

	sawFetch, sawFlip := false, false
	for _, ev := range events {
		if ev == "fetch_jobs:+15559876543" {
			sawFetch = true
		}
		if ev == "flip_by_ids:+15559876543" {
			sawFlip = true
		}
	}
	if !sawFetch || !sawFlip {
		t.Errorf("операции должны быть ограничены подрядчиком, события: %v", events)
	}
}

func TestSettleByJobsFlipErrorRollsBack(t *testing.T) {
	events := []string{}
	tx := &fakeTx{
		jobs:        []models.Job{{ID: 1, FinalPrice: price(40)}},
		flipByIDErr: errors.New("deadlock"),
		events:      &events,
	}
	store := &fakeStore{tx: tx}
	notifier := &fakeNotifier{}

	if _, err := New(store, notifier).SettleByJobs("+15551234567", []int64{1}); err == nil {
		t.Fatal("ожидалась ошибка")
	}
	if events[len(events)-1] != "rollback" {
		t.Errorf("ожидался откат транзакции, события: %v", events)
	}
	if len(notifier.calls) != 0 {
		t.Errorf("уведомление не должно отправляться при откате")
	}
}
