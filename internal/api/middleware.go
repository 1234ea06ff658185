package api

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/http"
)

type contextKey struct {
	name string
}

// ReconcilerContextKey - ключ для сохранения сервиса расчётов в контексте запроса.
var ReconcilerContextKey = &contextKey{"Reconciler"}

// NotifierContextKey - ключ для сохранения фасада уведомлений в контексте запроса.
var NotifierContextKey = &contextKey{"Notifier"}

// ConfigContextKey - ключ для сохранения конфига в контексте запроса.
var ConfigContextKey = &contextKey{"Config"}

// AuthMiddleware проверяет заголовок X-Api-Key. Ключ сравнивается через HMAC,
// чтобы сравнение было константным по времени.
// The key comparison goes through HMAC so it runs in constant time.
func AuthMiddleware(secretKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secretKey == "" {
				log.Println("AuthMiddleware: API_SECRET не настроен, запрос отклонён.")
				http.Error(w, "Unauthorized: API is not configured", http.StatusUnauthorized)
				return
			}

			apiKey := r.Header.Get("X-Api-Key")
			if apiKey == "" {
				http.Error(w, "Unauthorized: Missing X-Api-Key header", http.StatusUnauthorized)
				return
			}

			if !keysEqual(apiKey, secretKey) {
				log.Printf("AuthMiddleware: неверный API-ключ (дайджест %s), запрос %s %s отклонён.", hexDigest(apiKey), r.Method, r.URL.Path)
				http.Error(w, "Unauthorized: Invalid API key", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// keysEqual сравнивает ключи через HMAC-SHA256 поверх общего одноразового
// ключа: длины дайджестов совпадают, сравнение константно по времени.
func keysEqual(presented, expected string) bool {
	mac := hmac.New(sha256.New, []byte("plowmarket-api"))
	mac.Write([]byte(presented))
	presentedMAC := mac.Sum(nil)

	mac = hmac.New(sha256.New, []byte("plowmarket-api"))
	mac.Write([]byte(expected))
	expectedMAC := mac.Sum(nil)

	return hmac.Equal(presentedMAC, expectedMAC)
}

// hexDigest используется в логах вместо сырого ключа.
func hexDigest(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:8])
}
