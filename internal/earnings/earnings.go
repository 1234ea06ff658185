// Пакет earnings содержит чистую арифметику расчётов с подрядчиками:
// деление цены задания на комиссию и выплату, и вычисление остатка к выплате.
// Package earnings holds the pure arithmetic of contractor accounting.
package earnings

import (
	"math"

	"plowmarket/internal/models"
)

// Split делит цену выполненного задания на комиссию платформы и выплату
// подрядчику. Комиссия округляется до цента первой, остаток уходит
// подрядчику, поэтому platformFee + shovelerPayout == jobAmount всегда
// сходится точно (ошибка округления, если есть, в пользу подрядчика).
// Split divides a completed job's price into the platform fee and the
// contractor payout. The fee is rounded to the cent first and the payout is
// the remainder, so fee + payout == amount holds exactly.
func Split(jobAmount, feeRate float64) (platformFee, shovelerPayout float64) {
	platformFee = math.Round(jobAmount*feeRate*100) / 100
	shovelerPayout = jobAmount - platformFee
	return platformFee, shovelerPayout
}

// PendingPayout возвращает остаток к выплате подрядчику.
// Не бывает отрицательным, даже если totalPaidOut временно превышает
// totalEarned из-за гонки параллельных расчётов.
// Never negative, even if totalPaidOut transiently exceeds totalEarned
// because of a concurrent settlement in flight.
func PendingPayout(totalEarned, totalPaidOut float64) float64 {
	pending := totalEarned - totalPaidOut
	if pending < 0 {
		return 0
	}
	return pending
}

// JobsTotal суммирует цены заданий для ручного расчёта:
// final_price, если задана, иначе max_price, иначе 0.
// Внимание: это сырые цены заданий, НЕ выплаты за вычетом комиссии -
// ручной расчёт по списку заданий намеренно платит полную цену.
// Note: these are raw job prices, NOT net-of-fee payouts - the job-list
// settlement path deliberately pays the full price.
func JobsTotal(jobs []models.Job) float64 {
	var total float64
	for _, j := range jobs {
		total += j.SettlementPrice()
	}
	return total
}
