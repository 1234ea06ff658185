package models

import (
	"database/sql"
	"time"
)

// Job represents a snow-removal job. Создание и жизненный цикл задания
// принадлежат внешней подсистеме; здесь нас интересует подмножество полей
// для расчётов: статус, цены и флаг paid_out.
// Job creation and lifecycle belong to an external subsystem; the accounting
// core only reads the status/price subset and flips paid_out.
type Job struct {
	ID            int64           `json:"id"`
	CustomerPhone string          `json:"customer_phone"`
	ShovelerPhone sql.NullString  `json:"shoveler_phone,omitempty"`
	Status        string          `json:"status"`
	MaxPrice      sql.NullFloat64 `json:"max_price,omitempty"`   // Цена, заявленная клиентом / Price posted by the customer
	FinalPrice    sql.NullFloat64 `json:"final_price,omitempty"` // Итоговая цена, если была согласована / Final agreed price, if any
	PaidOut       bool            `json:"paid_out"`              // Устанавливается в TRUE ровно один раз при расчёте с подрядчиком
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// SettlementPrice возвращает цену задания для ручного расчёта:
// final_price, если задана, иначе max_price, иначе 0.
// SettlementPrice returns final_price if set, else max_price, else 0.
func (j Job) SettlementPrice() float64 {
	if j.FinalPrice.Valid {
		return j.FinalPrice.Float64
	}
	if j.MaxPrice.Valid {
		return j.MaxPrice.Float64
	}
	return 0
}
