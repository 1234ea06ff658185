package db

import (
	"database/sql"
	"log"

	"github.com/lib/pq"

	"plowmarket/internal/constants"
	"plowmarket/internal/models"
)

// MarkAllJobsPaidOutInTx помечает ВСЕ завершённые и ещё не оплаченные задания
// подрядчика как paid_out=TRUE в рамках транзакции. Вызывается при расчёте
// по заявке на выплату: флаг снимается пакетно, без привязки к конкретным
// заданиям. Возвращает число помеченных заданий.
// Flips paid_out=TRUE for ALL of the contractor's completed, not-yet-paid
// jobs (a batch flag-flip, not scoped to specific ids). Returns how many
// jobs were flagged.
func MarkAllJobsPaidOutInTx(tx *sql.Tx, shovelerPhone string) (int64, error) {
	query := `
        UPDATE jobs SET paid_out = TRUE, updated_at = NOW()
        WHERE shoveler_phone = $1 AND status = $2 AND paid_out = FALSE`
	result, err := tx.Exec(query, shovelerPhone, constants.JOB_STATUS_COMPLETED)
	if err != nil {
		log.Printf("MarkAllJobsPaidOutInTx: ошибка обновления заданий для %s: %v", shovelerPhone, err)
		return 0, err
	}
	rowsAffected, _ := result.RowsAffected()
	log.Printf("MarkAllJobsPaidOutInTx: %d задания(й) подрядчика %s помечены как оплаченные (в транзакции).", rowsAffected, shovelerPhone)
	return rowsAffected, nil
}

// GetJobsByIDsForShovelerInTx извлекает задания по списку ID, дополнительно
// отфильтрованные по подрядчику. Чужие и несуществующие ID молча
// отбрасываются фильтром.
// Fetches the listed jobs additionally filtered by the contractor; ids that
// belong to someone else simply do not match.
func GetJobsByIDsForShovelerInTx(tx *sql.Tx, shovelerPhone string, jobIDs []int64) ([]models.Job, error) {
	rows, err := tx.Query(`
        SELECT id, customer_phone, shoveler_phone, status, max_price, final_price, paid_out, created_at, updated_at
        FROM jobs
        WHERE id = ANY($1) AND shoveler_phone = $2`,
		pq.Array(jobIDs), shovelerPhone)
	if err != nil {
		log.Printf("GetJobsByIDsForShovelerInTx: ошибка получения заданий %v для %s: %v", jobIDs, shovelerPhone, err)
		return nil, err
	}
	defer rows.Close()

	jobs, err := scanJobs(rows)
	if err != nil {
		log.Printf("GetJobsByIDsForShovelerInTx: ошибка сканирования заданий для %s: %v", shovelerPhone, err)
		return nil, err
	}
	return jobs, nil
}

// MarkJobsPaidOutByIDsInTx помечает как оплаченные ровно перечисленные
// задания, отфильтрованные по подрядчику. Возвращает число обновлённых строк.
func MarkJobsPaidOutByIDsInTx(tx *sql.Tx, shovelerPhone string, jobIDs []int64) (int64, error) {
	query := `
        UPDATE jobs SET paid_out = TRUE, updated_at = NOW()
        WHERE id = ANY($1) AND shoveler_phone = $2 AND paid_out = FALSE`
	result, err := tx.Exec(query, pq.Array(jobIDs), shovelerPhone)
	if err != nil {
		log.Printf("MarkJobsPaidOutByIDsInTx: ошибка обновления заданий %v для %s: %v", jobIDs, shovelerPhone, err)
		return 0, err
	}
	rowsAffected, _ := result.RowsAffected()
	log.Printf("MarkJobsPaidOutByIDsInTx: %d из %d заданий подрядчика %s помечены как оплаченные (в транзакции).", rowsAffected, len(jobIDs), shovelerPhone)
	if rowsAffected != int64(len(jobIDs)) {
		log.Printf("MarkJobsPaidOutByIDsInTx: ВНИМАНИЕ! Ожидалось обновление %d заданий, обновлено %d (чужие, несуществующие или уже оплаченные ID отброшены).", len(jobIDs), rowsAffected)
	}
	return rowsAffected, nil
}

// GetUnpaidCompletedJobsForShoveler извлекает завершённые, но ещё не
// оплаченные задания подрядчика - админский просмотр перед ручным расчётом.
func GetUnpaidCompletedJobsForShoveler(shovelerPhone string) ([]models.Job, error) {
	rows, err := DB.Query(`
        SELECT id, customer_phone, shoveler_phone, status, max_price, final_price, paid_out, created_at, updated_at
        FROM jobs
        WHERE shoveler_phone = $1 AND status = $2 AND paid_out = FALSE
        ORDER BY created_at DESC`,
		shovelerPhone, constants.JOB_STATUS_COMPLETED)
	if err != nil {
		log.Printf("GetUnpaidCompletedJobsForShoveler: ошибка получения заданий для %s: %v", shovelerPhone, err)
		return nil, err
	}
	defer rows.Close()

	jobs, err := scanJobs(rows)
	if err != nil {
		log.Printf("GetUnpaidCompletedJobsForShoveler: ошибка сканирования заданий для %s: %v", shovelerPhone, err)
		return nil, err
	}
	return jobs, nil
}

// scanJobs читает строки заданий из результата запроса.
func scanJobs(rows *sql.Rows) ([]models.Job, error) {
	var jobs []models.Job
	for rows.Next() {
		var j models.Job
		errScan := rows.Scan(
			&j.ID, &j.CustomerPhone, &j.ShovelerPhone, &j.Status,
			&j.MaxPrice, &j.FinalPrice, &j.PaidOut, &j.CreatedAt, &j.UpdatedAt,
		)
		if errScan != nil {
			return nil, errScan
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
