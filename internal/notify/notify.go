// Пакет notify - фасад над каналами уведомлений: SMS подрядчикам и
// Telegram-чат бухгалтерии. Все отправки идут строго после фиксации
// изменений в БД; сбой доставки логируется и никогда не валит операцию.
// Package notify fronts the notification channels. Sends happen strictly
// after durable writes; a delivery failure is logged and never fails the
// calling operation.
package notify

import (
	"context"
	"log"

	"plowmarket/internal/formatters"
	"plowmarket/internal/models"
	"plowmarket/internal/sms"
	"plowmarket/internal/telegram_api"
)

type Notifier struct {
	smsClient        *sms.Client
	botClient        *telegram_api.BotClient
	accountingChatID int64
}

func New(smsClient *sms.Client, botClient *telegram_api.BotClient, accountingChatID int64) *Notifier {
	return &Notifier{
		smsClient:        smsClient,
		botClient:        botClient,
		accountingChatID: accountingChatID,
	}
}

// PayoutSent уведомляет подрядчика об отправленной выплате.
func (n *Notifier) PayoutSent(shovelerPhone string, amount float64) error {
	return n.smsClient.Send(context.Background(), shovelerPhone, formatters.FormatPayoutPaidSMS(amount))
}

// RequestSubmitted отправляет два независимых уведомления о новой заявке:
// бухгалтерии - инструкции по выплате, подрядчику - подтверждение.
// Сбой любого из них не затрагивает другое и не откатывает заявку.
// Two independent notifications; a failure of either does not affect the
// other and never rolls the request back.
func (n *Notifier) RequestSubmitted(req models.PayoutRequest, s models.Shoveler) {
	adminText := formatters.FormatAdminPayoutInstructions(req, s)
	if err := telegram_api.SendToChat(n.botClient, n.accountingChatID, adminText); err != nil {
		log.Printf("RequestSubmitted: ошибка уведомления бухгалтерии о заявке #%d: %v (заявка сохранена)", req.ID, err)
	}

	if err := n.smsClient.Send(context.Background(), s.Phone, formatters.FormatRequestSubmittedSMS(req.Amount)); err != nil {
		log.Printf("RequestSubmitted: ошибка SMS-подтверждения для %s по заявке #%d: %v (заявка сохранена)", s.Phone, req.ID, err)
	}
}

// ManualSettlementRecorded уведомляет бухгалтерию о ручном расчёте по списку
// заданий. Сбой логируется и глотается.
func (n *Notifier) ManualSettlementRecorded(shovelerPhone string, jobsFlipped int64, amount float64) {
	text := formatters.FormatAdminManualSettlement(shovelerPhone, jobsFlipped, amount)
	if err := telegram_api.SendToChat(n.botClient, n.accountingChatID, text); err != nil {
		log.Printf("ManualSettlementRecorded: ошибка уведомления бухгалтерии о расчёте для %s: %v", shovelerPhone, err)
	}
}
