package db

import (
	"database/sql"
	"log"

	"plowmarket/internal/models"
)

// CreateCustomer регистрирует нового клиента (сквозная запись, жизненный цикл
// заказов принадлежит внешней подсистеме).
func CreateCustomer(c models.Customer) (int64, error) {
	var id int64
	query := `
        INSERT INTO customers (phone, first_name, address, created_at)
        VALUES ($1, $2, $3, NOW())
        RETURNING id`
	err := DB.QueryRow(query, c.Phone, c.FirstName, c.Address).Scan(&id)
	if err != nil {
		log.Printf("CreateCustomer: ошибка регистрации клиента %s: %v", c.Phone, err)
		return 0, err
	}
	log.Printf("CreateCustomer: клиент #%d (%s) зарегистрирован.", id, c.Phone)
	return id, nil
}

// GetCustomerByPhone извлекает клиента по номеру телефона.
func GetCustomerByPhone(phone string) (models.Customer, error) {
	var c models.Customer
	err := DB.QueryRow(`
        SELECT id, phone, first_name, address, created_at
        FROM customers
        WHERE phone = $1`, phone).Scan(&c.ID, &c.Phone, &c.FirstName, &c.Address, &c.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Customer{}, ErrCustomerNotFound
		}
		log.Printf("GetCustomerByPhone: ошибка получения клиента %s: %v", phone, err)
		return models.Customer{}, err
	}
	return c, nil
}
