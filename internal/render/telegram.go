package render

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/newswatch/internal/config"
	"github.com/sells-group/newswatch/internal/model"
)

// TelegramRenderer posts each story to a Telegram chat via the Bot API.
type TelegramRenderer struct {
	botToken string
	chatID   string
	apiBase  string
	client   *http.Client
}

// NewTelegram creates a Telegram renderer from bot credentials.
func NewTelegram(cfg config.TelegramConfig) (*TelegramRenderer, error) {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, eris.New("render: telegram bot_token and chat_id are required")
	}
	return &TelegramRenderer{
		botToken: cfg.BotToken,
		chatID:   cfg.ChatID,
		apiBase:  "https://api.telegram.org",
		client:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Render posts one story as a plain-text message.
func (r *TelegramRenderer) Render(ctx context.Context, item model.UnifiedItem) error {
	return r.send(ctx, FormatItem(item))
}

// Finish posts the batch summary when anything was emitted.
func (r *TelegramRenderer) Finish(ctx context.Context, emitted int) error {
	if emitted == 0 {
		return nil
	}
	return r.send(ctx, fmt.Sprintf("סה״כ: %d כתבות", emitted))
}

func (r *TelegramRenderer) send(ctx context.Context, text string) error {
	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", r.apiBase, r.botToken)
	form := url.Values{}
	form.Set("chat_id", r.chatID)
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return eris.Wrap(err, "render: new telegram request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := r.client.Do(req)
	if err != nil {
		return eris.Wrap(err, "render: send telegram message")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("render: telegram returned %s", resp.Status)
	}

	zap.L().Debug("render: telegram message sent", zap.Int("chars", len(text)))
	return nil
}
