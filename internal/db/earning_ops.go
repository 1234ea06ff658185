package db

import (
	"database/sql"
	"log"
	"time"

	"plowmarket/internal/earnings"
	"plowmarket/internal/models"
)

// AddEarning записывает в леджер запись о выполненном задании, деля цену
// на комиссию платформы и выплату подрядчику. Запись неизменяема после
// создания. Возвращает сохранённую запись целиком.
// AddEarning appends a ledger entry for a completed job, splitting the price
// into the platform fee and the contractor payout. Immutable once created.
func AddEarning(jobID int64, shovelerPhone string, jobAmount, feeRate float64) (models.Earning, error) {
	fee, payout := earnings.Split(jobAmount, feeRate)

	entry := models.Earning{
		JobID:          jobID,
		ShovelerPhone:  shovelerPhone,
		JobAmount:      jobAmount,
		PlatformFee:    fee,
		ShovelerPayout: payout,
	}

	query := `
        INSERT INTO earnings (job_id, shoveler_phone, job_amount, platform_fee, shoveler_payout, created_at)
        VALUES ($1, $2, $3, $4, $5, NOW())
        RETURNING id, created_at`
	err := DB.QueryRow(query,
		entry.JobID,
		entry.ShovelerPhone,
		entry.JobAmount,
		entry.PlatformFee,
		entry.ShovelerPayout,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		log.Printf("AddEarning: ошибка добавления записи леджера для задания #%d (подрядчик %s): %v", jobID, shovelerPhone, err)
		return models.Earning{}, err
	}
	log.Printf("AddEarning: запись #%d: задание #%d, сумма %.2f (комиссия %.2f, выплата %.2f) для %s.",
		entry.ID, jobID, jobAmount, fee, payout, shovelerPhone)
	return entry, nil
}

// GetTotalEarnedForShoveler возвращает суммарный заработок подрядчика
// (сумму shoveler_payout по всем записям леджера).
func GetTotalEarnedForShoveler(shovelerPhone string) (float64, error) {
	var total sql.NullFloat64 // SUM возвращает NULL, если записей нет / SUM returns NULL when there are no rows
	err := DB.QueryRow("SELECT SUM(shoveler_payout) FROM earnings WHERE shoveler_phone = $1", shovelerPhone).Scan(&total)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, nil
		}
		log.Printf("GetTotalEarnedForShoveler: ошибка расчёта заработка для %s: %v", shovelerPhone, err)
		return 0, err
	}
	if !total.Valid {
		return 0, nil
	}
	return total.Float64, nil
}

// GetTodayEarningsForShoveler возвращает сумму и количество записей леджера
// подрядчика с полуночи по локальным часам сервера. Граница суток считается
// по часовому поясу сервера, а не вызывающего - принятое приближение.
// The day boundary follows the server's local clock, not the caller's -
// an accepted approximation.
func GetTodayEarningsForShoveler(shovelerPhone string, now time.Time) (float64, int, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var total sql.NullFloat64
	var count int
	err := DB.QueryRow(`
        SELECT SUM(shoveler_payout), COUNT(*)
        FROM earnings
        WHERE shoveler_phone = $1 AND created_at >= $2`,
		shovelerPhone, midnight).Scan(&total, &count)
	if err != nil {
		log.Printf("GetTodayEarningsForShoveler: ошибка расчёта дневного заработка для %s: %v", shovelerPhone, err)
		return 0, 0, err
	}
	if !total.Valid {
		return 0, 0, nil
	}
	return total.Float64, count, nil
}

// GetEarningsSummaryForShoveler собирает агрегат по подрядчику: заработок за
// сегодня, остаток к выплате и суммы за всё время. Подрядчик без истории -
// это не ошибка, а нулевой агрегат.
// An unknown contractor yields a zeroed aggregate, not an error.
func GetEarningsSummaryForShoveler(shovelerPhone string, now time.Time) (models.EarningsSummary, error) {
	var summary models.EarningsSummary

	todayTotal, todayCount, err := GetTodayEarningsForShoveler(shovelerPhone, now)
	if err != nil {
		return summary, err
	}
	summary.TodayTotal = todayTotal
	summary.TodayJobCount = todayCount

	totalEarned, err := GetTotalEarnedForShoveler(shovelerPhone)
	if err != nil {
		return summary, err
	}
	summary.TotalEarned = totalEarned

	totalPaidOut, err := GetTotalPaidOutToShoveler(shovelerPhone)
	if err != nil {
		return summary, err
	}
	summary.TotalPaidOut = totalPaidOut

	summary.PendingPayout = earnings.PendingPayout(totalEarned, totalPaidOut)
	return summary, nil
}

// GetPlatformLedger возвращает последние limit записей леджера (новые первыми)
// и накопительные суммы по ним для админской статистики.
func GetPlatformLedger(limit int) (models.PlatformLedger, error) {
	var ledger models.PlatformLedger

	rows, err := DB.Query(`
        SELECT id, job_id, shoveler_phone, job_amount, platform_fee, shoveler_payout, created_at
        FROM earnings
        ORDER BY created_at DESC, id DESC
        LIMIT $1`, limit)
	if err != nil {
		log.Printf("GetPlatformLedger: ошибка получения записей леджера: %v", err)
		return ledger, err
	}
	defer rows.Close()

	for rows.Next() {
		var e models.Earning
		var jobID sql.NullInt64 // job_id может быть NULL для исторических записей / job_id can be NULL for historical rows
		errScan := rows.Scan(&e.ID, &jobID, &e.ShovelerPhone, &e.JobAmount, &e.PlatformFee, &e.ShovelerPayout, &e.CreatedAt)
		if errScan != nil {
			log.Printf("GetPlatformLedger: ошибка сканирования записи леджера: %v", errScan)
			continue
		}
		if jobID.Valid {
			e.JobID = jobID.Int64
		}
		ledger.Entries = append(ledger.Entries, e)
		ledger.TotalRevenue += e.JobAmount
		ledger.PlatformFees += e.PlatformFee
		ledger.ShovelerPayouts += e.ShovelerPayout
	}
	if err = rows.Err(); err != nil {
		log.Printf("GetPlatformLedger: ошибка после итерации по строкам: %v", err)
		return models.PlatformLedger{}, err
	}
	return ledger, nil
}
