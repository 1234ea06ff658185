// internal/config/config.go
package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"plowmarket/internal/constants"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL      string
	AppEnv           string
	Port             string
	APISecret        string
	TelegramToken    string
	AccountingChatID int64
	BotUsername      string
	SMSGatewayURL    string
	SMSAccountSID    string
	SMSAuthToken     string
	SMSFromNumber    string
	PlatformFeeRate  float64
	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		AppEnv:        os.Getenv("ENV"),
		Port:          os.Getenv("PORT"),
		APISecret:     os.Getenv("API_SECRET"),
		TelegramToken: os.Getenv("TELEGRAM_APITOKEN"),
		BotUsername:   os.Getenv("BOT_USERNAME"),
		SMSGatewayURL: os.Getenv("SMS_GATEWAY_URL"),
		SMSAccountSID: os.Getenv("SMS_ACCOUNT_SID"),
		SMSAuthToken:  os.Getenv("SMS_AUTH_TOKEN"),
		SMSFromNumber: os.Getenv("SMS_FROM_NUMBER"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	var err error
	cfg.AccountingChatID, err = strconv.ParseInt(os.Getenv("ACCOUNTING_CHAT_ID"), 10, 64)
	if err != nil {
		log.Printf("Предупреждение: не удалось прочитать ACCOUNTING_CHAT_ID: %v. Установлено в 0, уведомления бухгалтерии отключены.", err)
		cfg.AccountingChatID = 0
	}

	feeRateStr := os.Getenv("PLATFORM_FEE_RATE")
	if feeRateStr == "" {
		log.Printf("Предупреждение: PLATFORM_FEE_RATE не установлен, используется значение по умолчанию %.2f (%.0f%%).",
			constants.DEFAULT_PLATFORM_FEE_RATE, constants.DEFAULT_PLATFORM_FEE_RATE*100)
		cfg.PlatformFeeRate = constants.DEFAULT_PLATFORM_FEE_RATE
	} else {
		feeRate, errParse := strconv.ParseFloat(feeRateStr, 64)
		if errParse != nil || feeRate <= 0 || feeRate >= 1 {
			log.Printf("Предупреждение: некорректное значение PLATFORM_FEE_RATE ('%s'): %v. Используется значение по умолчанию %.2f.",
				feeRateStr, errParse, constants.DEFAULT_PLATFORM_FEE_RATE)
			cfg.PlatformFeeRate = constants.DEFAULT_PLATFORM_FEE_RATE
		} else {
			cfg.PlatformFeeRate = feeRate
		}
	}

	if cfg.APISecret == "" {
		log.Println("Критическая ошибка: API_SECRET не установлен. Подписанные запросы проверить невозможно.")
	}
	if cfg.TelegramToken == "" {
		log.Println("Предупреждение: TELEGRAM_APITOKEN не установлен. Уведомления администраторам в Telegram отключены.")
	}
	if cfg.SMSGatewayURL == "" {
		log.Println("Предупреждение: SMS_GATEWAY_URL не установлен. SMS-уведомления подрядчикам отключены.")
	}
	if cfg.DatabaseURL == "" {
		log.Println("Критическая ошибка: DATABASE_URL не установлен.")
	} else {
		parsedURL, parseErr := url.Parse(cfg.DatabaseURL)
		if parseErr != nil {
			log.Printf("Критическая ошибка: ошибка парсинга DATABASE_URL: %v", parseErr)
		} else {
			cfg.DBHost = parsedURL.Hostname()
			cfg.DBPort = parsedURL.Port()
			if cfg.DBPort == "" {
				cfg.DBPort = "5432"
			}
			cfg.DBUser = parsedURL.User.Username()
			cfg.DBPassword, _ = parsedURL.User.Password()
			cfg.DBName = strings.TrimPrefix(parsedURL.Path, "/")
		}
	}

	log.Println("Конфигурация загружена.")
	return cfg, nil
}
