package db

import (
	"database/sql"
	"log"

	"plowmarket/internal/constants"
	"plowmarket/internal/models"
)

// CreatePayoutRequest добавляет новую заявку на выплату в статусе pending.
// Реквизиты (venmo/cashapp) - снимок на момент создания заявки.
// Inserts a pending payout request; the handles are a snapshot taken at
// creation time.
func CreatePayoutRequest(req models.PayoutRequest) (models.PayoutRequest, error) {
	query := `
        INSERT INTO payout_requests (ref, shoveler_phone, amount, venmo_handle, cashapp_handle, status, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, NOW())
        RETURNING id, created_at`
	err := DB.QueryRow(query,
		req.Ref,
		req.ShovelerPhone,
		req.Amount,
		req.VenmoHandle,
		req.CashAppHandle,
		constants.PAYOUT_STATUS_PENDING,
	).Scan(&req.ID, &req.CreatedAt)

	if err != nil {
		log.Printf("CreatePayoutRequest: ошибка добавления заявки для %s на сумму %.2f: %v", req.ShovelerPhone, req.Amount, err)
		return models.PayoutRequest{}, err
	}
	req.Status = constants.PAYOUT_STATUS_PENDING
	log.Printf("CreatePayoutRequest: заявка #%d (%s) на сумму %.2f для %s создана.", req.ID, req.Ref, req.Amount, req.ShovelerPhone)
	return req, nil
}

// GetPayoutRequestByID извлекает заявку по ID.
func GetPayoutRequestByID(requestID int64) (models.PayoutRequest, error) {
	var req models.PayoutRequest
	err := DB.QueryRow(`
        SELECT id, ref, shoveler_phone, amount, venmo_handle, cashapp_handle, status, created_at, paid_at
        FROM payout_requests
        WHERE id = $1`, requestID).Scan(
		&req.ID, &req.Ref, &req.ShovelerPhone, &req.Amount,
		&req.VenmoHandle, &req.CashAppHandle, &req.Status, &req.CreatedAt, &req.PaidAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.PayoutRequest{}, ErrPayoutRequestNotFound
		}
		log.Printf("GetPayoutRequestByID: ошибка получения заявки #%d: %v", requestID, err)
		return models.PayoutRequest{}, err
	}
	return req, nil
}

// CompletePayoutRequestInTx переводит заявку pending -> completed в рамках
// транзакции, ровно один раз. Повторная попытка по той же заявке получает
// ErrPayoutRequestAlreadyCompleted без каких-либо изменений.
// Flips pending -> completed exactly once within the transaction. A second
// attempt on the same id observes ErrPayoutRequestAlreadyCompleted and
// mutates nothing.
func CompletePayoutRequestInTx(tx *sql.Tx, requestID int64) (models.PayoutRequest, error) {
	var req models.PayoutRequest
	query := `
        UPDATE payout_requests
        SET status = $1, paid_at = NOW()
        WHERE id = $2 AND status = $3
        RETURNING id, ref, shoveler_phone, amount, venmo_handle, cashapp_handle, status, created_at, paid_at`
	err := tx.QueryRow(query, constants.PAYOUT_STATUS_COMPLETED, requestID, constants.PAYOUT_STATUS_PENDING).Scan(
		&req.ID, &req.Ref, &req.ShovelerPhone, &req.Amount,
		&req.VenmoHandle, &req.CashAppHandle, &req.Status, &req.CreatedAt, &req.PaidAt,
	)
	if err == nil {
		log.Printf("CompletePayoutRequestInTx: заявка #%d для %s на сумму %.2f помечена как исполненная (в транзакции).", req.ID, req.ShovelerPhone, req.Amount)
		return req, nil
	}
	if err != sql.ErrNoRows {
		log.Printf("CompletePayoutRequestInTx: ошибка обновления заявки #%d: %v", requestID, err)
		return models.PayoutRequest{}, err
	}

	// Строка не обновилась: либо заявки нет, либо она уже исполнена.
	// The row did not update: the request is missing or already completed.
	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM payout_requests WHERE id = $1 AND status = $2)`
	errCheck := tx.QueryRow(checkQuery, requestID, constants.PAYOUT_STATUS_COMPLETED).Scan(&exists)
	if errCheck == nil && exists {
		log.Printf("CompletePayoutRequestInTx: заявка #%d уже была исполнена ранее.", requestID)
		return models.PayoutRequest{}, ErrPayoutRequestAlreadyCompleted
	}
	return models.PayoutRequest{}, ErrPayoutRequestNotFound
}

// GetPayoutRequestsByShoveler извлекает заявки подрядчика, новые первыми,
// не больше limit штук.
func GetPayoutRequestsByShoveler(shovelerPhone string, limit int) ([]models.PayoutRequest, error) {
	if limit <= 0 || limit > constants.MAX_LEDGER_LIMIT {
		limit = constants.DEFAULT_PAYOUT_REQUESTS_PAGE_SIZE
	}
	rows, err := DB.Query(`
        SELECT id, ref, shoveler_phone, amount, venmo_handle, cashapp_handle, status, created_at, paid_at
        FROM payout_requests
        WHERE shoveler_phone = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2`, shovelerPhone, limit)
	if err != nil {
		log.Printf("GetPayoutRequestsByShoveler: ошибка получения заявок для %s: %v", shovelerPhone, err)
		return nil, err
	}
	defer rows.Close()

	var requests []models.PayoutRequest
	for rows.Next() {
		var r models.PayoutRequest
		errScan := rows.Scan(
			&r.ID, &r.Ref, &r.ShovelerPhone, &r.Amount,
			&r.VenmoHandle, &r.CashAppHandle, &r.Status, &r.CreatedAt, &r.PaidAt,
		)
		if errScan != nil {
			log.Printf("GetPayoutRequestsByShoveler: ошибка сканирования заявки для %s: %v", shovelerPhone, errScan)
			continue
		}
		requests = append(requests, r)
	}
	if err = rows.Err(); err != nil {
		log.Printf("GetPayoutRequestsByShoveler: ошибка после итерации по строкам для %s: %v", shovelerPhone, err)
		return nil, err
	}
	return requests, nil
}

// GetTotalPaidOutToShoveler возвращает сумму всех исполненных заявок
// подрядчика. Pending-заявки в выплаченное не входят.
func GetTotalPaidOutToShoveler(shovelerPhone string) (float64, error) {
	var total sql.NullFloat64
	err := DB.QueryRow(`
        SELECT SUM(amount) FROM payout_requests
        WHERE shoveler_phone = $1 AND status = $2`,
		shovelerPhone, constants.PAYOUT_STATUS_COMPLETED).Scan(&total)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		log.Printf("GetTotalPaidOutToShoveler: ошибка расчёта выплаченной суммы для %s: %v", shovelerPhone, err)
		return 0, err
	}
	if !total.Valid {
		return 0, nil
	}
	return total.Float64, nil
}
