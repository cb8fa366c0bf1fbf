package notify

import (
	"bountywatch/internal/assert"
	"bountywatch/internal/posting"
	"bountywatch/internal/telemetry"
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

const report_telegram_send = "telegram.send"

const DefaultTelegramApi = "https://api.telegram.org"

type TelegramConfig struct {
	// BaseUrl is the bot api root, it defaults to DefaultTelegramApi.
	BaseUrl  string
	BotToken string
	ChatId   string
	Timeout  time.Duration
}

// Telegram posts a Markdown message per posting through the bot api.
type Telegram struct {
	client *resty.Client
	chatId string
	tel    telemetry.API
}

type telegramResponse struct {
	Ok          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

func NewTelegram(config TelegramConfig, tel telemetry.API) Telegram {
	assert.NotEmptyStr(config.BotToken)
	assert.NotEmptyStr(config.ChatId)

	baseUrl := config.BaseUrl
	if baseUrl == "" {
		baseUrl = DefaultTelegramApi
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	scoped := telemetry.NewScopedAPI("notify", tel)
	client := resty.New().
		SetBaseURL(fmt.Sprintf("%s/bot%s", baseUrl, config.BotToken)).
		SetTimeout(timeout)
	telemetry.InstrumentResty(client, scoped)

	return Telegram{
		client: client,
		chatId: config.ChatId,
		tel:    scoped,
	}
}

func (t Telegram) Notify(ctx context.Context, p posting.Posting) error {
	ctx, span := tracer.Start(ctx, "Telegram.Notify")
	defer span.End()

	var body telegramResponse
	res, err := t.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"chat_id":    t.chatId,
			"text":       Markdown(p),
			"parse_mode": "Markdown",
		}).
		SetResult(&body).
		SetError(&body).
		Post("/sendMessage")
	if err == nil && (res.IsError() || !body.Ok) {
		err = fmt.Errorf("telegram api: %s (%s)", body.Description, res.Status())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send message")
		t.tel.ReportBroken(report_telegram_send, err, p.ID)
		return fmt.Errorf("send telegram message for %q: %w", p.Title, err)
	}
	return nil
}
