package models

import "time"

// Earning is an immutable ledger entry recorded when a job is completed.
// Инвариант: PlatformFee + ShovelerPayout == JobAmount (комиссия округляется
// до цента первой, остаток уходит подрядчику).
// Invariant: PlatformFee + ShovelerPayout == JobAmount (the fee is rounded
// to the cent first, the remainder goes to the shoveler).
type Earning struct {
	ID             int64     `json:"id"`
	JobID          int64     `json:"job_id"`
	ShovelerPhone  string    `json:"shoveler_phone"`
	JobAmount      float64   `json:"job_amount"`
	PlatformFee    float64   `json:"platform_fee"`
	ShovelerPayout float64   `json:"shoveler_payout"`
	CreatedAt      time.Time `json:"created_at"`
}

// EarningsSummary - агрегат по подрядчику, вычисляется на каждое чтение,
// кэшированного баланса нет.
// Computed on every read; there is no cached running balance.
type EarningsSummary struct {
	TodayTotal    float64 `json:"today_total"`
	TodayJobCount int     `json:"today_job_count"`
	PendingPayout float64 `json:"pending_payout"`
	TotalEarned   float64 `json:"total_earned"`
	TotalPaidOut  float64 `json:"total_paid_out"`
}

// PlatformLedger - последние N записей леджера плюс накопительные суммы
// для админской статистики.
type PlatformLedger struct {
	Entries         []Earning `json:"entries"`
	TotalRevenue    float64   `json:"total_revenue"`
	PlatformFees    float64   `json:"platform_fees"`
	ShovelerPayouts float64   `json:"shoveler_payouts"`
}
