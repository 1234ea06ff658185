package models

import (
	"database/sql"
	"time"
)

// PayoutRequest represents a contractor-initiated cash-out request.
// Amount фиксируется в момент создания (снимок запрошенной суммы) и позже
// не пересчитывается. Handles - снимок реквизитов подрядчика на момент заявки.
// Amount is fixed at creation time (a snapshot of what the contractor asked
// for); the handles snapshot whatever was on file when the request was made.
type PayoutRequest struct {
	ID            int64          `json:"id"`
	Ref           string         `json:"ref"` // Публичный UUID заявки для ссылок в уведомлениях / Public UUID used in notification texts
	ShovelerPhone string         `json:"shoveler_phone"`
	Amount        float64        `json:"amount"`
	VenmoHandle   sql.NullString `json:"venmo_handle,omitempty"`
	CashAppHandle sql.NullString `json:"cashapp_handle,omitempty"`
	Status        string         `json:"status"` // pending | completed
	CreatedAt     time.Time      `json:"created_at"`
	PaidAt        sql.NullTime   `json:"paid_at,omitempty"`
}
