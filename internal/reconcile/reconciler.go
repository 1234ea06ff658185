// Пакет reconcile - расчёт с подрядчиками: исполнение заявки на выплату или
// ручной расчёт по списку заданий. Обе мутации хранилища (статус заявки и
// флаги заданий) выполняются в ОДНОЙ транзакции; уведомление уходит строго
// после коммита и его сбой не фатален.
// Package reconcile settles contractor payouts. Both storage mutations (the
// request status and the job flags) run in ONE transaction; the notification
// is dispatched strictly after commit and its failure is non-fatal.
package reconcile

import (
	"errors"
	"log"

	"plowmarket/internal/earnings"
	"plowmarket/internal/models"
)

// ErrNoJobIDs возвращается при ручном расчёте с пустым списком заданий.
var ErrNoJobIDs = errors.New("список заданий для расчёта пуст")

// Store открывает транзакции расчёта.
type Store interface {
	Begin() (Tx, error)
}

// Tx - операции хранилища внутри одной транзакции расчёта.
// Tx is the storage surface of a single settlement transaction.
type Tx interface {
	// CompletePayoutRequest переводит заявку pending -> completed ровно один раз.
	CompletePayoutRequest(requestID int64) (models.PayoutRequest, error)
	// MarkAllJobsPaidOut пакетно помечает все завершённые неоплаченные задания подрядчика.
	MarkAllJobsPaidOut(shovelerPhone string) (int64, error)
	// JobsForShoveler извлекает перечисленные задания, отфильтрованные по подрядчику.
	JobsForShoveler(shovelerPhone string, jobIDs []int64) ([]models.Job, error)
	// MarkJobsPaidOutByIDs помечает ровно перечисленные задания подрядчика.
	MarkJobsPaidOutByIDs(shovelerPhone string, jobIDs []int64) (int64, error)
	Commit() error
	Rollback() error
}

// Notifier уведомляет подрядчика о выплате. Сбой уведомления не фатален
// для расчёта.
type Notifier interface {
	PayoutSent(shovelerPhone string, amount float64) error
}

// Result - итог расчёта.
type Result struct {
	RequestID     int64   `json:"request_id,omitempty"` // 0 для ручного расчёта по списку заданий / 0 for the job-list path
	ShovelerPhone string  `json:"shoveler_phone"`
	Amount        float64 `json:"amount"`
	JobsFlipped   int64   `json:"jobs_flipped"`
}

type Reconciler struct {
	store    Store
	notifier Notifier
}

func New(store Store, notifier Notifier) *Reconciler {
	return &Reconciler{store: store, notifier: notifier}
}

// SettleByRequest исполняет заявку на выплату: заявка переводится в
// completed, затем ВСЕ завершённые неоплаченные задания подрядчика
// помечаются paid_out - одной транзакцией. Сумма выплаты - сумма из заявки
// (снимок на момент создания), не пересчитывается.
// Повторный вызов по той же заявке не меняет ничего и не шлёт второе
// уведомление: хранилище вернёт ошибку "уже исполнена".
// The payout amount is the request's stored snapshot, never recomputed.
// A second call settles nothing and sends nothing: the store reports the
// request as already completed.
func (r *Reconciler) SettleByRequest(requestID int64) (Result, error) {
	tx, err := r.store.Begin()
	if err != nil {
		log.Printf("SettleByRequest: ошибка начала транзакции для заявки #%d: %v", requestID, err)
		return Result{}, err
	}

	req, err := tx.CompletePayoutRequest(requestID)
	if err != nil {
		tx.Rollback()
		return Result{}, err
	}

	jobsFlipped, err := tx.MarkAllJobsPaidOut(req.ShovelerPhone)
	if err != nil {
		tx.Rollback()
		log.Printf("SettleByRequest: ошибка пометки заданий для %s по заявке #%d: %v. Транзакция откачена.", req.ShovelerPhone, requestID, err)
		return Result{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Printf("SettleByRequest: ошибка коммита транзакции для заявки #%d: %v", requestID, err)
		return Result{}, err
	}

	log.Printf("SettleByRequest: заявка #%d исполнена, сумма %.2f, заданий помечено: %d.", req.ID, req.Amount, jobsFlipped)

	// Уведомление строго после коммита; его сбой не отменяет расчёт.
	if errNotify := r.notifier.PayoutSent(req.ShovelerPhone, req.Amount); errNotify != nil {
		log.Printf("SettleByRequest: ошибка уведомления подрядчика %s о выплате по заявке #%d: %v (расчёт зафиксирован)", req.ShovelerPhone, req.ID, errNotify)
	}

	return Result{
		RequestID:     req.ID,
		ShovelerPhone: req.ShovelerPhone,
		Amount:        req.Amount,
		JobsFlipped:   jobsFlipped,
	}, nil
}

// SettleByJobs - ручной расчёт по явному списку заданий. Помечаются ровно
// перечисленные задания (отфильтрованные по подрядчику); заявки на выплату
// не затрагиваются вовсе. Сумма - сумма СЫРЫХ цен заданий
// (final_price ?? max_price ?? 0), а не заработок за вычетом комиссии:
// две точки входа расчёта считают суммы по-разному, и это сохранено
// намеренно.
// Flips exactly the listed jobs and never touches payout requests. The
// total is the sum of RAW job prices, not net-of-fee payouts: the two
// settlement entry points compute their totals differently on purpose.
func (r *Reconciler) SettleByJobs(shovelerPhone string, jobIDs []int64) (Result, error) {
	if len(jobIDs) == 0 {
		return Result{}, ErrNoJobIDs
	}

	tx, err := r.store.Begin()
	if err != nil {
		log.Printf("SettleByJobs: ошибка начала транзакции для %s: %v", shovelerPhone, err)
		return Result{}, err
	}

	jobs, err := tx.JobsForShoveler(shovelerPhone, jobIDs)
	if err != nil {
		tx.Rollback()
		return Result{}, err
	}

	jobsFlipped, err := tx.MarkJobsPaidOutByIDs(shovelerPhone, jobIDs)
	if err != nil {
		tx.Rollback()
		log.Printf("SettleByJobs: ошибка пометки заданий %v для %s: %v. Транзакция откачена.", jobIDs, shovelerPhone, err)
		return Result{}, err
	}

	if err := tx.Commit(); err != nil {
		log.Printf("SettleByJobs: ошибка коммита транзакции для %s: %v", shovelerPhone, err)
		return Result{}, err
	}

	total := earnings.JobsTotal(jobs)
	log.Printf("SettleByJobs: ручной расчёт для %s: заданий помечено %d, сумма %.2f.", shovelerPhone, jobsFlipped, total)

	if errNotify := r.notifier.PayoutSent(shovelerPhone, total); errNotify != nil {
		log.Printf("SettleByJobs: ошибка уведомления подрядчика %s о выплате %.2f: %v (расчёт зафиксирован)", shovelerPhone, total, errNotify)
	}

	return Result{
		ShovelerPhone: shovelerPhone,
		Amount:        total,
		JobsFlipped:   jobsFlipped,
	}, nil
}
