// Файл: internal/db/db.go
package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

var DB *sql.DB // Глобальная переменная для хранения подключения к БД

// InitDB инициализирует соединение с базой данных и выполняет миграции.
func InitDB() error {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return fmt.Errorf("DATABASE_URL не установлена")
	}

	var err error
	DB, err = sql.Open("postgres", dbURL)
	if err != nil {
		return fmt.Errorf("ошибка подключения к базе данных: %v", err)
	}

	// Set connection pool settings
	DB.SetMaxOpenConns(50)
	DB.SetMaxIdleConns(20)
	DB.SetConnMaxLifetime(5 * time.Minute)

	// Verify connection
	if err := DB.Ping(); err != nil {
		return fmt.Errorf("ошибка проверки соединения с базой данных: %v", err)
	}

	log.Println("Успешное подключение к базе данных.")

	tx, err := DB.Begin()
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции для создания таблиц: %v", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			log.Printf("Откат транзакции из-за ошибки: %v", err)
			tx.Rollback()
		}
	}()

	createTablesSQL := `
        CREATE TABLE IF NOT EXISTS shovelers (
            id SERIAL PRIMARY KEY,
            phone VARCHAR(20) UNIQUE NOT NULL,
            first_name VARCHAR(100),
            last_name VARCHAR(100),
            tagline TEXT,
            venmo_handle TEXT,
            cashapp_handle TEXT,
            is_active BOOLEAN DEFAULT TRUE,
            created_at TIMESTAMP DEFAULT NOW(),
            updated_at TIMESTAMP DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS customers (
            id SERIAL PRIMARY KEY,
            phone VARCHAR(20) UNIQUE NOT NULL,
            first_name VARCHAR(100),
            address TEXT,
            created_at TIMESTAMP DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS jobs (
            id SERIAL PRIMARY KEY,
            customer_phone VARCHAR(20),
            shoveler_phone VARCHAR(20),
            status TEXT,
            max_price FLOAT,
            final_price FLOAT,
            paid_out BOOLEAN DEFAULT FALSE,
            created_at TIMESTAMP DEFAULT NOW(),
            updated_at TIMESTAMP DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS earnings (
            id SERIAL PRIMARY KEY,
            job_id INTEGER REFERENCES jobs(id),
            shoveler_phone VARCHAR(20) NOT NULL,
            job_amount FLOAT NOT NULL,
            platform_fee FLOAT NOT NULL,
            shoveler_payout FLOAT NOT NULL,
            created_at TIMESTAMP DEFAULT NOW()
        );
        CREATE TABLE IF NOT EXISTS payout_requests (
            id SERIAL PRIMARY KEY,
            ref TEXT UNIQUE NOT NULL,
            shoveler_phone VARCHAR(20) NOT NULL,
            amount FLOAT NOT NULL,
            venmo_handle TEXT,
            cashapp_handle TEXT,
            status TEXT NOT NULL,
            created_at TIMESTAMP DEFAULT NOW(),
            paid_at TIMESTAMP NULL
        );
    `
	_, err = tx.Exec(createTablesSQL)
	if err != nil {
		return fmt.Errorf("ошибка создания таблиц: %v", err)
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("ошибка фиксации транзакции создания таблиц: %v", err)
	}
	log.Println("Создание таблиц (если не существуют) завершено.")

	err = migrateDBSchema()
	if err != nil {
		return fmt.Errorf("ошибка выполнения миграции схемы: %v", err)
	}
	log.Println("Миграция схемы базы данных успешно завершена.")

	// CREATE INDEX IF NOT EXISTS идемпотентен, выполняем по одному,
	// чтобы изолировать возможные ошибки.
	createIndexesSQL := `
        CREATE INDEX IF NOT EXISTS idx_shovelers_phone ON shovelers(phone);
        CREATE INDEX IF NOT EXISTS idx_customers_phone ON customers(phone);
        CREATE INDEX IF NOT EXISTS idx_jobs_shoveler_status ON jobs(shoveler_phone, status);
        CREATE INDEX IF NOT EXISTS idx_jobs_paid_out ON jobs(paid_out);
        CREATE INDEX IF NOT EXISTS idx_earnings_shoveler_phone ON earnings(shoveler_phone);
        CREATE INDEX IF NOT EXISTS idx_earnings_created_at ON earnings(created_at);
        CREATE INDEX IF NOT EXISTS idx_payout_requests_shoveler_phone ON payout_requests(shoveler_phone);
        CREATE INDEX IF NOT EXISTS idx_payout_requests_status ON payout_requests(status);
    `
	indexStatements := strings.Split(strings.TrimSpace(createIndexesSQL), ";")
	for _, stmt := range indexStatements {
		trimmedStmt := strings.TrimSpace(stmt)
		if trimmedStmt == "" {
			continue
		}
		_, errIdx := DB.Exec(trimmedStmt)
		if errIdx != nil {
			log.Printf("Предупреждение: ошибка при создании индекса ('%s'): %v. Проверьте логи.", trimmedStmt, errIdx)
		}
	}
	log.Println("Создание индексов (если не существуют) завершено.")

	log.Println("Инициализация базы данных успешно завершена.")
	return nil
}

// migrateDBSchema выполняет необходимые миграции схемы базы данных.
// This function should be idempotent.
func migrateDBSchema() error {
	migrations := []struct {
		name string
		sql  string
	}{
		{
			name: "shovelers.tagline",
			sql:  `ALTER TABLE shovelers ADD COLUMN IF NOT EXISTS tagline TEXT;`,
		},
		{
			name: "shovelers.cashapp_handle",
			sql:  `ALTER TABLE shovelers ADD COLUMN IF NOT EXISTS cashapp_handle TEXT;`,
		},
		{
			name: "jobs.paid_out",
			sql:  `ALTER TABLE jobs ADD COLUMN IF NOT EXISTS paid_out BOOLEAN DEFAULT FALSE;`,
		},
		{
			name: "jobs.final_price",
			sql:  `ALTER TABLE jobs ADD COLUMN IF NOT EXISTS final_price FLOAT;`,
		},
		{
			name: "payout_requests.ref",
			sql:  `ALTER TABLE payout_requests ADD COLUMN IF NOT EXISTS ref TEXT;`,
		},
		{
			name: "payout_requests.paid_at",
			sql:  `ALTER TABLE payout_requests ADD COLUMN IF NOT EXISTS paid_at TIMESTAMP NULL;`,
		},
	}

	for _, migration := range migrations {
		_, err := DB.Exec(migration.sql)
		if err != nil {
			if strings.Contains(err.Error(), "already exists") {
				log.Printf("INFO: Миграция '%s' пропущена (объект уже существует). Детали: %v", migration.name, err)
			} else {
				return fmt.Errorf("ошибка миграции схемы ('%s'): %v", migration.name, err)
			}
		} else {
			log.Printf("INFO: Миграция ('%s') успешно применена или объект уже существовал.", migration.name)
		}
	}

	log.Println("Миграция схемы базы данных успешно выполнена (или не требовалась).")
	return nil
}

// CloseDB закрывает соединение с базой данных.
func CloseDB() {
	if DB != nil {
		DB.Close()
		log.Println("Соединение с базой данных закрыто.")
	}
}
