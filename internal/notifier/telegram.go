package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"

	"RSIMonitor/internal/httpclient"
	"RSIMonitor/internal/model"
)

const telegramAPIURL = "https://api.telegram.org"

// TelegramNotifier sends messages via the Telegram Bot API.
type TelegramNotifier struct {
	BaseURL  string
	BotToken string
	Client   *http.Client
}

// NewTelegramNotifier creates a notifier with optional proxy support.
func NewTelegramNotifier(botToken, proxyURL string) *TelegramNotifier {
	return &TelegramNotifier{
		BaseURL:  telegramAPIURL,
		BotToken: botToken,
		Client:   httpclient.New(proxyURL),
	}
}

func (t *TelegramNotifier) Name() string { return "telegram" }

// Send posts the message to the chat identified by recipient.
func (t *TelegramNotifier) Send(ctx context.Context, recipient string, msg model.Message) error {
	apiURL := fmt.Sprintf("%s/bot%s/sendMessage", t.BaseURL, t.BotToken)
	payload := map[string]string{
		"chat_id":    recipient,
		"text":       fmt.Sprintf("<b>%s</b>\n\n%s", html.EscapeString(msg.Subject), html.EscapeString(msg.Body)),
		"parse_mode": "HTML",
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%w: marshal payload: %w", ErrNotificationFailed, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrNotificationFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: send message: %w", ErrNotificationFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: telegram API error: status %d, body: %s", ErrNotificationFailed, resp.StatusCode, string(respBody))
	}
	return nil
}
