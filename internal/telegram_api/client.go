package telegram_api

import (
	"fmt"
	"log"

	tgbotapi "github.com/OvyFlash/telegram-bot-api"
)

// BotClient представляет собой обертку для Telegram Bot API. Используется
// только как канал уведомлений для администраторов/бухгалтерии.
// BotClient wraps the Telegram Bot API. Used purely as a notification
// channel for the admins/accounting chat.
type BotClient struct {
	api   *tgbotapi.BotAPI
	Debug bool
}

// Global Bot instance for the package
// Глобальный экземпляр бота для пакета
var Client *BotClient

// InitBot инициализирует Telegram бота.
// token - API токен вашего бота.
// debug - флаг для включения режима отладки.
// InitBot initializes the Telegram bot.
func InitBot(token string, debug bool) error {
	if token == "" {
		return fmt.Errorf("токен Telegram API не предоставлен")
	}

	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return fmt.Errorf("ошибка инициализации Telegram Bot API: %w", err)
	}

	api.Debug = debug

	log.Printf("Авторизован как аккаунт %s", api.Self.UserName)

	Client = &BotClient{
		api:   api,
		Debug: debug,
	}
	return nil
}

// Send отправляет сообщение через BotClient.
// Send sends a message via BotClient.
func (bc *BotClient) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if bc == nil || bc.api == nil {
		return tgbotapi.Message{}, fmt.Errorf("BotClient или его API не инициализирован")
	}
	if bc.Debug {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			log.Printf("Отправка сообщения: ChatID=%d, Text='%.50s...'", msg.ChatID, msg.Text)
		} else {
			log.Printf("Отправка/запрос типа %T", c)
		}
	}
	return bc.api.Send(c)
}

// SendToChat отправляет текстовое сообщение в указанный чат.
func SendToChat(botClient *BotClient, chatID int64, text string) error {
	if botClient == nil || botClient.api == nil {
		log.Println("SendToChat: BotClient или его API не инициализирован.")
		return fmt.Errorf("BotClient не инициализирован")
	}
	if chatID == 0 {
		log.Printf("SendToChat: chatID не настроен, сообщение не отправлено: '%.60s'", text)
		return nil
	}

	msg := tgbotapi.NewMessage(chatID, text)
	_, err := botClient.Send(msg)
	if err != nil {
		log.Printf("SendToChat: ОШИБКА отправки сообщения в чат %d: %v", chatID, err)
		return err
	}
	return nil
}
