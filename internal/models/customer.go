package models

import (
	"database/sql"
	"time"
)

// Customer represents a customer requesting snow removal.
// Хранится только для сквозной регистрации; жизненный цикл заказов - во внешней подсистеме.
type Customer struct {
	ID        int64          `json:"id"`
	Phone     string         `json:"phone"`
	FirstName string         `json:"first_name"`
	Address   sql.NullString `json:"address,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}
