package commands

import (
	"bountywatch/internal/chrono"
	"bountywatch/internal/config"
	"bountywatch/internal/fetch"
	"bountywatch/internal/notify"
	"bountywatch/internal/posting"
	"bountywatch/internal/snapshot"
	"bountywatch/internal/telemetry"
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// app is everything a command needs, built from the config.
type app struct {
	config   config.Config
	tel      telemetry.API
	time     chrono.StandardTime
	otel     telemetry.Telemetry
	resolver posting.Resolver
	store    snapshot.Store

	closeStore func() error
}

func setupApp(ctx context.Context) (app, error) {
	cfg, err := config.Read(*configPath)
	if err != nil {
		return app{}, err
	}

	telemetry.InitSlog(cfg.Telemetry.Debug || *verbose, cfg.Telemetry.Json)
	tel := telemetry.SlogAPI{}

	otel, err := telemetry.Setup(ctx, "bountywatch", cfg.Telemetry)
	if err != nil {
		return app{}, fmt.Errorf("setup telemetry: %w", err)
	}

	clock, err := chrono.NewStandardTime(cfg.Timezone)
	if err != nil {
		return app{}, fmt.Errorf("timezone: %w", err)
	}

	resolver, err := posting.ParseResolver(cfg.Identity)
	if err != nil {
		return app{}, err
	}
	slog.Info("identity policy", "policy", resolver.Name())

	store, closeStore, err := snapshot.Open(ctx, cfg.Storage, cfg.StorageAuthToken, tel)
	if err != nil {
		return app{}, fmt.Errorf("open snapshot store: %w", err)
	}

	return app{
		config:     cfg,
		tel:        tel,
		time:       clock,
		otel:       otel,
		resolver:   resolver,
		store:      store,
		closeStore: closeStore,
	}, nil
}

func (a app) Close() {
	if err := a.closeStore(); err != nil {
		slog.Warn("failed to close snapshot store", "err", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := a.otel.Shutdown(ctx); err != nil {
		slog.Warn("failed to flush telemetry", "err", err)
	}
}

func (a app) source() fetch.Source {
	switch a.config.Fetch.Mode {
	case config.FetchModeHttp:
		return fetch.NewHTTPSource(a.config.Fetch.Timeout(), a.config.Fetch.UserAgent, a.tel)
	default:
		return fetch.BrowserSource{
			Timeout:   a.config.Fetch.Timeout(),
			Settle:    a.config.Fetch.Settle(),
			UserAgent: a.config.Fetch.UserAgent,
		}
	}
}

// fetcher builds the scraper, pages are also written to dumpDir when set.
func (a app) fetcher(dumpDir string) (fetch.Scraper, error) {
	source := a.source()
	if dumpDir != "" {
		dump, err := fetch.NewDumpSource(source, dumpDir, a.time)
		if err != nil {
			return fetch.Scraper{}, err
		}
		source = dump
	}
	return fetch.NewScraper(fetch.Options{
		Url:            a.config.Url,
		Source:         source,
		Resolver:       a.resolver,
		MaxDescription: a.config.MaxDescriptionLength,
		Time:           a.time,
		Tel:            a.tel,
	})
}

// notifier returns every configured transport, or stdout when none is.
func (a app) notifier() notify.Notifier {
	var transports notify.Multi
	if a.config.Email.Enabled() {
		transports = append(transports, notify.NewEmail(notify.EmailConfig{
			Server:   a.config.Email.Server,
			Port:     a.config.Email.Port,
			From:     a.config.Email.Sender,
			Password: a.config.Email.Password,
			To:       a.config.Email.Recipients,
		}, a.tel))
	}
	if a.config.Telegram.Enabled() {
		transports = append(transports, notify.NewTelegram(notify.TelegramConfig{
			BaseUrl:  a.config.Telegram.BaseUrl,
			BotToken: a.config.Telegram.BotToken,
			ChatId:   a.config.Telegram.ChatId,
			Timeout:  a.config.Fetch.Timeout(),
		}, a.tel))
	}
	if len(transports) == 0 {
		slog.Warn("no notification transport configured, printing new postings to stdout")
		return notify.NewWriter(os.Stdout)
	}
	return transports
}
