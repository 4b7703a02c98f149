// Package notify рассылает уведомления о новых заказах.
package notify

import (
	"context"
	"fmt"
	"html"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"fence-shop-backend/internal/domain"
)

const telegramAPI = "https://api.telegram.org"

// Telegram отправляет сообщение о заказе в чат менеджеров.
type Telegram struct {
	token  string
	chatID string

	// APIBase можно подменить в тестах.
	APIBase string
	Client  *http.Client
}

func NewTelegram(token, chatID string) *Telegram {
	return &Telegram{
		token:   strings.TrimSpace(token),
		chatID:  strings.TrimSpace(chatID),
		APIBase: telegramAPI,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

// OrderCreated ставит отправку в фон и сразу возвращается.
func (t *Telegram) OrderCreated(_ context.Context, o *domain.Order) error {
	if t.token == "" || t.chatID == "" {
		log.Printf("telegram: skip send, empty bot token or chat id")
		return nil
	}
	text := FormatOrder(o)

	// контекст запроса не используем: ответ клиенту уйдёт раньше
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := t.Send(ctx, text); err != nil {
			log.Printf("telegram: order %s: %v", o.Number, err)
		}
	}()
	return nil
}

// Send: низкоуровневая отправка sendMessage.
func (t *Telegram) Send(ctx context.Context, text string) error {
	form := url.Values{}
	form.Set("chat_id", t.chatID)
	form.Set("text", text)
	form.Set("parse_mode", "HTML")

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		t.APIBase+"/bot"+t.token+"/sendMessage",
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := t.Client.Do(req)
	if err != nil {
		return fmt.Errorf("send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("non-OK status %s", resp.Status)
	}
	return nil
}

// FormatOrder: текст уведомления с ценами в русском формате.
func FormatOrder(o *domain.Order) string {
	p := message.NewPrinter(language.Russian)

	var b strings.Builder
	b.WriteString(p.Sprintf("🧾 Новый заказ <b>%s</b>\n\n", html.EscapeString(o.Number)))
	b.WriteString(p.Sprintf("Имя: %s\n", html.EscapeString(o.Customer.Name)))
	b.WriteString(p.Sprintf("Телефон: %s\n", html.EscapeString(o.Customer.Phone)))
	if o.Customer.Email != "" {
		b.WriteString(p.Sprintf("Email: %s\n", html.EscapeString(o.Customer.Email)))
	}
	b.WriteString(p.Sprintf("Адрес: %s\n", html.EscapeString(o.Customer.Address)))
	if o.Customer.Comment != "" {
		b.WriteString(p.Sprintf("Комментарий: %s\n", html.EscapeString(o.Customer.Comment)))
	}
	b.WriteString("\n")

	for i, l := range o.Lines {
		b.WriteString(p.Sprintf("%d. %s (%s) × %d = %d ₽\n",
			i+1,
			html.EscapeString(l.Name),
			html.EscapeString(l.Series),
			l.Quantity,
			l.UnitPrice*int64(l.Quantity),
		))
	}
	b.WriteString(p.Sprintf("\nИтого: <b>%d ₽</b>", o.Total))
	return b.String()
}
