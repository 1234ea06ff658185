package utils

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"plowmarket/internal/constants"
)

// usPhoneRegex (не экспортируется) используется внутри ValidatePhoneNumber.
// usPhoneRegex (not exported) is used inside ValidatePhoneNumber.
var usPhoneRegex = regexp.MustCompile(`^\+1\d{10}$`)

// handleRegex - допустимые символы в реквизитах Venmo/CashApp.
var handleRegex = regexp.MustCompile(`^[A-Za-z0-9_.$-]+$`)

// ValidatePhoneNumber проверяет и нормализует номер телефона.
// Возвращает номер в формате +1XXXXXXXXXX или ошибку.
// ValidatePhoneNumber checks and normalizes a phone number.
// Returns the number in +1XXXXXXXXXX format or an error.
func ValidatePhoneNumber(phone string) (string, error) {
	phone = strings.ReplaceAll(phone, "\\", "") // Удаляем возможные экранирующие слеши / Remove possible escape slashes
	phone = strings.TrimSpace(phone)

	// Удаляем все нечисловые символы, кроме начального '+'
	// Remove all non-numeric characters except for the initial '+'
	digitsOnly := regexp.MustCompile(`[^\d+]`).ReplaceAllString(phone, "")

	if strings.HasPrefix(digitsOnly, "+") {
		if usPhoneRegex.MatchString(digitsOnly) { // +1XXXXXXXXXX
			return digitsOnly, nil
		}
		// Другие международные форматы не поддерживаем
		// Other international formats are not supported
		return "", fmt.Errorf("поддерживаются только номера США в формате +1XXXXXXXXXX")
	}

	// Если не начинается с '+', предполагаем американский номер
	// If not starting with '+', assume a US number
	digitsOnly = regexp.MustCompile(`[^\d]`).ReplaceAllString(phone, "")

	if len(digitsOnly) == 11 && digitsOnly[0] == '1' { // 1XXXXXXXXXX
		normalized := "+" + digitsOnly
		if usPhoneRegex.MatchString(normalized) {
			return normalized, nil
		}
		return "", fmt.Errorf("неверный формат номера (ожидалось 11 цифр, начиная с 1)")
	}
	if len(digitsOnly) == 10 { // XXXXXXXXXX
		normalized := "+1" + digitsOnly
		if usPhoneRegex.MatchString(normalized) {
			return normalized, nil
		}
		return "", fmt.Errorf("неверный формат номера (ожидалось 10 цифр)")
	}

	return "", fmt.Errorf("неверный формат номера телефона, укажите в формате +1XXXXXXXXXX или XXXXXXXXXX")
}

// ValidateAmount проверяет сумму заявки на выплату: строго положительная,
// не мельче цента и без дробных долей цента.
// ValidateAmount checks a payout amount: strictly positive, whole cents.
func ValidateAmount(amount float64) error {
	if amount <= 0 {
		return fmt.Errorf("сумма должна быть больше нуля, получено: %.2f", amount)
	}
	cents := amount * 100
	if math.Abs(cents-math.Round(cents)) > 1e-6 {
		return fmt.Errorf("сумма не может содержать доли цента: %v", amount)
	}
	return nil
}

// ValidateTagline проверяет длину описания в профиле подрядчика.
func ValidateTagline(tagline string) error {
	if len(tagline) > constants.MAX_TAGLINE_LENGTH {
		return fmt.Errorf("описание профиля не может быть длиннее %d символов (получено %d)", constants.MAX_TAGLINE_LENGTH, len(tagline))
	}
	return nil
}

// ValidateName проверяет длину имени/фамилии.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("имя не может быть пустым")
	}
	if len(name) > constants.MAX_NAME_LENGTH {
		return fmt.Errorf("имя не может быть длиннее %d символов", constants.MAX_NAME_LENGTH)
	}
	return nil
}

// ValidatePaymentHandle проверяет реквизит Venmo/CashApp: длина и набор
// символов. Пустая строка допустима - реквизит можно не указывать.
// An empty string is allowed - the handle is optional.
func ValidatePaymentHandle(handle string) error {
	handle = strings.TrimSpace(handle)
	if handle == "" {
		return nil
	}
	handle = strings.TrimPrefix(handle, "@")
	if len(handle) > constants.MAX_HANDLE_LENGTH {
		return fmt.Errorf("реквизит не может быть длиннее %d символов", constants.MAX_HANDLE_LENGTH)
	}
	if !handleRegex.MatchString(handle) {
		return fmt.Errorf("реквизит содержит недопустимые символы: '%s'", handle)
	}
	return nil
}

// NormalizePaymentHandle убирает пробелы и ведущий '@' из реквизита.
func NormalizePaymentHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}
