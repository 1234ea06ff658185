package db

import (
	"database/sql"
	"fmt"
	"log"

	"plowmarket/internal/models"
)

// CreateShoveler регистрирует нового подрядчика. Телефон должен быть
// нормализован валидатором до вызова.
func CreateShoveler(s models.Shoveler) (int64, error) {
	var id int64
	query := `
        INSERT INTO shovelers (phone, first_name, last_name, tagline, venmo_handle, cashapp_handle, is_active, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, TRUE, NOW(), NOW())
        RETURNING id`
	err := DB.QueryRow(query,
		s.Phone, s.FirstName, s.LastName, s.Tagline, s.VenmoHandle, s.CashAppHandle,
	).Scan(&id)
	if err != nil {
		log.Printf("CreateShoveler: ошибка регистрации подрядчика %s: %v", s.Phone, err)
		return 0, err
	}
	log.Printf("CreateShoveler: подрядчик #%d (%s) зарегистрирован.", id, s.Phone)
	return id, nil
}

// GetShovelerByPhone извлекает подрядчика по номеру телефона.
func GetShovelerByPhone(phone string) (models.Shoveler, error) {
	var s models.Shoveler
	err := DB.QueryRow(`
        SELECT id, phone, first_name, last_name, tagline, venmo_handle, cashapp_handle, is_active, created_at, updated_at
        FROM shovelers
        WHERE phone = $1`, phone).Scan(
		&s.ID, &s.Phone, &s.FirstName, &s.LastName,
		&s.Tagline, &s.VenmoHandle, &s.CashAppHandle, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.Shoveler{}, ErrShovelerNotFound
		}
		log.Printf("GetShovelerByPhone: ошибка получения подрядчика %s: %v", phone, err)
		return models.Shoveler{}, err
	}
	return s, nil
}

// UpdateShovelerActive включает или выключает приём заданий подрядчиком.
func UpdateShovelerActive(phone string, isActive bool) error {
	result, err := DB.Exec(`UPDATE shovelers SET is_active = $1, updated_at = NOW() WHERE phone = $2`, isActive, phone)
	if err != nil {
		log.Printf("UpdateShovelerActive: ошибка обновления статуса для %s: %v", phone, err)
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return ErrShovelerNotFound
	}
	log.Printf("UpdateShovelerActive: статус подрядчика %s обновлён на is_active=%t.", phone, isActive)
	return nil
}

// UpdateShovelerProfile обновляет поля профиля подрядчика. Обновляются только
// переданные (валидные) поля; снимки в существующих заявках не трогаются.
// Only the provided fields are updated; snapshots in existing payout
// requests are left untouched.
func UpdateShovelerProfile(phone string, firstName, lastName, tagline, venmoHandle, cashappHandle sql.NullString) error {
	result, err := DB.Exec(`
        UPDATE shovelers SET
            first_name = COALESCE($1, first_name),
            last_name = COALESCE($2, last_name),
            tagline = COALESCE($3, tagline),
            venmo_handle = COALESCE($4, venmo_handle),
            cashapp_handle = COALESCE($5, cashapp_handle),
            updated_at = NOW()
        WHERE phone = $6`,
		firstName, lastName, tagline, venmoHandle, cashappHandle, phone)
	if err != nil {
		log.Printf("UpdateShovelerProfile: ошибка обновления профиля для %s: %v", phone, err)
		return err
	}
	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("подрядчик %s не найден для обновления профиля: %w", phone, ErrShovelerNotFound)
	}
	log.Printf("UpdateShovelerProfile: профиль подрядчика %s обновлён.", phone)
	return nil
}
