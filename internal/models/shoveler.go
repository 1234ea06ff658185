package models

import (
	"database/sql"
	"time"
)

// Shoveler represents a contractor (plower/shoveler) registered on the platform.
type Shoveler struct {
	ID            int64          `json:"id"`
	Phone         string         `json:"phone"` // Нормализованный номер +1XXXXXXXXXX, уникальный ключ подрядчика / Normalized +1XXXXXXXXXX number, the contractor's unique key
	FirstName     string         `json:"first_name"`
	LastName      string         `json:"last_name"`
	Tagline       sql.NullString `json:"tagline,omitempty"` // Короткое описание в профиле / Short profile blurb
	VenmoHandle   sql.NullString `json:"venmo_handle,omitempty"`
	CashAppHandle sql.NullString `json:"cashapp_handle,omitempty"`
	IsActive      bool           `json:"is_active"` // Принимает ли подрядчик задания сейчас / Whether the contractor is currently taking jobs
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}

// HasPayoutMethod reports whether at least one money-transfer handle is on file.
func (s Shoveler) HasPayoutMethod() bool {
	return (s.VenmoHandle.Valid && s.VenmoHandle.String != "") ||
		(s.CashAppHandle.Valid && s.CashAppHandle.String != "")
}
