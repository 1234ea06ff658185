package main

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	"plowmarket/internal/api"
	"plowmarket/internal/config"
	"plowmarket/internal/db"
	"plowmarket/internal/notify"
	"plowmarket/internal/reconcile"
	"plowmarket/internal/sms"
	"plowmarket/internal/telegram_api"
)

func main() {
	// --- Блок инициализации ---
	err := godotenv.Load()
	if err != nil {
		log.Println("Предупреждение: не удалось загрузить файл .env. Переменные окружения должны быть установлены иным способом.")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Критическая ошибка: не удалось загрузить конфигурацию: %v", err)
	}

	if err := db.InitDB(); err != nil {
		log.Fatalf("Критическая ошибка: не удалось инициализировать базу данных: %v", err)
	}
	defer db.CloseDB()

	// Telegram-канал бухгалтерии опционален: без токена уведомления
	// администраторам просто не отправляются.
	if cfg.TelegramToken != "" {
		if err := telegram_api.InitBot(cfg.TelegramToken, cfg.AppEnv == "dev"); err != nil {
			log.Printf("Предупреждение: не удалось инициализировать Telegram бота: %v. Уведомления бухгалтерии отключены.", err)
		}
	}

	smsClient := sms.NewClient(cfg.SMSGatewayURL, cfg.SMSAccountSID, cfg.SMSAuthToken, cfg.SMSFromNumber)
	notifier := notify.New(smsClient, telegram_api.Client, cfg.AccountingChatID)
	reconciler := reconcile.New(reconcile.PGStore{}, notifier)

	// --- Настройка роутера и Middleware ---
	apiRouter := chi.NewRouter()

	// ГЛОБАЛЬНЫЕ MIDDLEWARES ДОЛЖНЫ ИДТИ ПЕРЕД api.SetupRoutes
	apiRouter.Use(middleware.Logger)
	apiRouter.Use(middleware.Recoverer)
	apiRouter.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Api-Key"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	apiDeps := api.ApiDependencies{
		Config:     cfg,
		SecretKey:  cfg.APISecret,
		Reconciler: reconciler,
		Notifier:   notifier,
	}

	api.SetupRoutes(apiRouter, apiDeps)

	apiRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Обработка запроса иконки, чтобы избежать ошибки 404 в логах
	apiRouter.Get("/favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	log.Printf("Запуск HTTP-сервера API на порту %s", cfg.Port)
	if err := http.ListenAndServe(":"+cfg.Port, apiRouter); err != nil {
		log.Fatalf("КРИТИЧЕСКАЯ ОШИБКА: не удалось запустить HTTP-сервер: %v", err)
	}
}
