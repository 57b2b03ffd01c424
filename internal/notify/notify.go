package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier — best-effort канал прогресса. Ошибки реализаций логируются и
// никогда не влияют на исход задачи: интерфейс не возвращает error.
type Notifier interface {
	Event(ctx context.Context, eventType, message string)
}

/* no-op для тестов и notify.mode=off */

type Noop struct{}

func (Noop) Event(context.Context, string, string) {}

// Relay шлёт событие на HTTP-эндпоинт фронтового ретранслятора.
type Relay struct {
	url   string
	httpc *http.Client
	log   *slog.Logger
}

func NewRelay(url string, log *slog.Logger) *Relay {
	return &Relay{
		url:   strings.TrimRight(url, "/"),
		httpc: &http.Client{Timeout: 5 * time.Second},
		log:   log,
	}
}

func (r *Relay) Event(ctx context.Context, eventType, message string) {
	payload, err := json.Marshal(map[string]string{
		"event_type": eventType,
		"message":    message,
	})
	if err != nil {
		r.log.Warn("notify marshal failed", "err", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(payload))
	if err != nil {
		r.log.Warn("notify request build failed", "err", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.httpc.Do(req)
	if err != nil {
		r.log.Warn("notify send failed", "err", err)
		return
	}
	_ = resp.Body.Close()

	r.log.Info("workflow event", "type", eventType, "msg", message)
}

// Telegram дублирует события в админ-чат (как уведомления администратору
// в исходном боте).
type Telegram struct {
	api    *tgbotapi.BotAPI
	chatID int64
	log    *slog.Logger
}

func NewTelegram(token string, chatID int64, log *slog.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Telegram{api: api, chatID: chatID, log: log}, nil
}

func (t *Telegram) Event(ctx context.Context, eventType, message string) {
	msg := tgbotapi.NewMessage(t.chatID, fmt.Sprintf("[%s] %s", eventType, message))
	if _, err := t.api.Send(msg); err != nil {
		t.log.Warn("telegram notify failed", "err", err)
	}
}
