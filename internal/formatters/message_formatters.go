package formatters

import (
	"fmt"
	"strings"

	"plowmarket/internal/models"
)

// Тексты SMS - на английском (подрядчики и клиенты в США), сообщения для
// бухгалтерии в Telegram - на русском.
// SMS texts are in English (US contractors), accounting chat messages in
// Russian.

// FormatMoney форматирует сумму в долларах.
func FormatMoney(amount float64) string {
	return fmt.Sprintf("$%.2f", amount)
}

// FormatPayoutPaidSMS - SMS подрядчику об отправленной выплате.
func FormatPayoutPaidSMS(amount float64) string {
	return fmt.Sprintf("PlowMarket: your payout of %s has been sent. Thanks for keeping the driveways clear!", FormatMoney(amount))
}

// FormatRequestSubmittedSMS - SMS подрядчику о принятой заявке на выплату.
func FormatRequestSubmittedSMS(amount float64) string {
	return fmt.Sprintf("PlowMarket: your cash-out request for %s was received. We'll text you once it's paid.", FormatMoney(amount))
}

// FormatAdminPayoutInstructions - сообщение в чат бухгалтерии с инструкциями
// по выплате. Если реквизиты не указаны, текст деградирует до просьбы
// связаться с подрядчиком напрямую.
// If no payment method is on file the text degrades to "call the contractor
// directly".
func FormatAdminPayoutInstructions(req models.PayoutRequest, s models.Shoveler) string {
	var b strings.Builder
	fmt.Fprintf(&b, "💸 Заявка на выплату #%d\n", req.ID)
	fmt.Fprintf(&b, "Подрядчик: %s %s (%s)\n", s.FirstName, s.LastName, s.Phone)
	fmt.Fprintf(&b, "Сумма: %s\n", FormatMoney(req.Amount))

	hasHandle := false
	if req.VenmoHandle.Valid && req.VenmoHandle.String != "" {
		fmt.Fprintf(&b, "Venmo: @%s\n", req.VenmoHandle.String)
		hasHandle = true
	}
	if req.CashAppHandle.Valid && req.CashAppHandle.String != "" {
		fmt.Fprintf(&b, "CashApp: $%s\n", req.CashAppHandle.String)
		hasHandle = true
	}
	if !hasHandle {
		fmt.Fprintf(&b, "⚠️ Реквизиты не указаны - свяжитесь с подрядчиком напрямую по телефону.\n")
	}
	return b.String()
}

// FormatAdminManualSettlement - сообщение в чат бухгалтерии о ручном расчёте
// по списку заданий.
func FormatAdminManualSettlement(shovelerPhone string, jobsFlipped int64, amount float64) string {
	return fmt.Sprintf("✅ Ручной расчёт: подрядчик %s, заданий оплачено: %d, сумма: %s.",
		shovelerPhone, jobsFlipped, FormatMoney(amount))
}

// VenmoPaymentLink строит платёжную ссылку Venmo для заявки - используется
// в QR-коде для админа, выплачивающего вручную.
func VenmoPaymentLink(venmoHandle string, amount float64, requestRef string) string {
	return fmt.Sprintf("https://venmo.com/%s?txn=pay&amount=%.2f&note=plowmarket-%s", venmoHandle, amount, requestRef)
}
