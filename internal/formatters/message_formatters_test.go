package formatters

import (
	"database/sql"
	"strings"
	"testing"

	"plowmarket/internal/models"
)

func TestFormatMoney(t *testing.T) {
	if got := FormatMoney(90); got != "$90.00" {
		t.Errorf("FormatMoney(90) = %q", got)
	}
	if got := FormatMoney(25.5); got != "$25.50" {
		t.Errorf("FormatMoney(25.5) = %q", got)
	}
}

func TestFormatPayoutPaidSMS(t *testing.T) {
	msg := FormatPayoutPaidSMS(100)
	if !strings.Contains(msg, "$100.00") {
		t.Errorf("в SMS нет суммы: %q", msg)
	}
}

func TestFormatAdminPayoutInstructions(t *testing.T) {
	s := models.Shoveler{
		Phone:     "+15551234567",
		FirstName: "John",
		LastName:  "Doe",
	}
	req := models.PayoutRequest{
		ID:          7,
		Amount:      90,
		VenmoHandle: sql.NullString{String: "snow-pro", Valid: true},
	}
	msg := FormatAdminPayoutInstructions(req, s)
	if !strings.Contains(msg, "@snow-pro") {
		t.Errorf("в сообщении нет реквизита Venmo: %q", msg)
	}
	if !strings.Contains(msg, "$90.00") {
		t.Errorf("в сообщении нет суммы: %q", msg)
	}
	if strings.Contains(msg, "Реквизиты не указаны") {
		t.Errorf("сообщение не должно деградировать при наличии реквизитов: %q", msg)
	}
}

// Без реквизитов сообщение деградирует до просьбы связаться напрямую,
// но заявка всё равно создаётся - это проверяется на уровне API.
func TestFormatAdminPayoutInstructionsNoHandles(t *testing.T) {
	s := models.Shoveler{Phone: "+15551234567", FirstName: "John", LastName: "Doe"}
	req := models.PayoutRequest{ID: 8, Amount: 45}
	msg := FormatAdminPayoutInstructions(req, s)
	if !strings.Contains(msg, "свяжитесь с подрядчиком напрямую") {
		t.Errorf("нет деградировавшего текста: %q", msg)
	}
}
