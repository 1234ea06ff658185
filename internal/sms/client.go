package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Client - обёртка над HTTP API хостингового SMS-шлюза. Сама доставка
// (ретраи, очереди оператора) - забота шлюза, мы только отдаём сообщение.
// Client wraps the hosted SMS gateway's HTTP API. Delivery mechanics are the
// gateway's concern; we just hand the message over.
type Client struct {
	gatewayURL string
	accountSID string
	authToken  string
	fromNumber string
	httpClient *http.Client
}

// NewClient создаёт клиента SMS-шлюза. Если gatewayURL пуст, клиент работает
// в "тихом" режиме: сообщения только логируются.
// With an empty gatewayURL the client runs silent: messages are only logged.
func NewClient(gatewayURL, accountSID, authToken, fromNumber string) *Client {
	return &Client{
		gatewayURL: gatewayURL,
		accountSID: accountSID,
		authToken:  authToken,
		fromNumber: fromNumber,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// smsRequest - тело запроса к шлюзу.
type smsRequest struct {
	To   string `json:"to"`
	From string `json:"from"`
	Body string `json:"body"`
}

// smsResponse - ответ шлюза.
type smsResponse struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
}

// Send отправляет SMS на указанный номер. Ошибка отправки никогда не должна
// валить вызывающую операцию - вызывающий логирует и продолжает.
// A send failure must never fail the calling operation - callers log and
// move on.
func (c *Client) Send(ctx context.Context, toPhone, text string) error {
	if c.gatewayURL == "" {
		log.Printf("SMS (шлюз не настроен, сообщение не отправлено): to=%s, text='%.60s'", toPhone, text)
		return nil
	}

	payload, err := json.Marshal(smsRequest{To: toPhone, From: c.fromNumber, Body: text})
	if err != nil {
		log.Printf("sms.Send: ошибка маршалинга запроса для %s: %v", toPhone, err)
		return fmt.Errorf("ошибка подготовки запроса: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.gatewayURL, bytes.NewBuffer(payload))
	if err != nil {
		log.Printf("sms.Send: ошибка создания HTTP-запроса для %s: %v", toPhone, err)
		return fmt.Errorf("ошибка создания HTTP-запроса: %w", err)
	}

	req.SetBasicAuth(c.accountSID, c.authToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Idempotence-Key", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("sms.Send: ошибка выполнения запроса к SMS-шлюзу для %s: %v", toPhone, err)
		return fmt.Errorf("ошибка выполнения запроса к SMS-шлюзу: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("sms.Send: ошибка чтения ответа SMS-шлюза для %s: %v", toPhone, err)
		return fmt.Errorf("ошибка чтения ответа шлюза: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		log.Printf("sms.Send: SMS-шлюз вернул ошибку: статус %d, тело: %s", resp.StatusCode, string(responseBody))
		return fmt.Errorf("ошибка SMS-шлюза, статус: %d", resp.StatusCode)
	}

	var smsResp smsResponse
	if err := json.Unmarshal(responseBody, &smsResp); err != nil {
		log.Printf("sms.Send: ошибка демаршалинга ответа шлюза для %s: %v", toPhone, err)
		return fmt.Errorf("ошибка обработки ответа шлюза: %w", err)
	}

	log.Printf("sms.Send: SMS для %s принято шлюзом, SID=%s, статус=%s.", toPhone, smsResp.SID, smsResp.Status)
	return nil
}
