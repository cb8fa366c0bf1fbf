// Package config loads the bountywatch configuration from a json5 file, its
// local override and the environment.
package config

import (
	"bountywatch/internal/posting"
	"bountywatch/internal/telemetry"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	DefaultUrl                  = "https://replit.com/bounties?status=open&order=creationDateDescending"
	DefaultMaxPostings          = 10
	DefaultMaxDescriptionLength = 200
	DefaultStorage              = "sqlite:bountywatch.db"
	DefaultSchedule             = "*/15 * * * *"
	DefaultSmtpServer           = "smtp.mail.yahoo.com"
	DefaultSmtpPort             = 587
	DefaultDriftThreshold       = 0.9

	FetchModeBrowser = "browser"
	FetchModeHttp    = "http"
)

type FetchConfig struct {
	Mode           string `json:"mode" validate:"oneof=browser http"`
	UserAgent      string `json:"user_agent"`
	TimeoutSeconds int    `json:"timeout_seconds" validate:"min=0"`
	// SettleSeconds is how long the browser waits for client side rendering.
	SettleSeconds int `json:"settle_seconds" validate:"min=0"`
}

func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSeconds) * time.Second
}

func (f FetchConfig) Settle() time.Duration {
	return time.Duration(f.SettleSeconds) * time.Second
}

type EmailConfig struct {
	Server     string   `json:"server" validate:"required_with=Sender"`
	Port       int      `json:"port" validate:"omitempty,min=1,max=65535"`
	Sender     string   `json:"sender" validate:"omitempty,email"`
	Password   string   `json:"password"`
	Recipients []string `json:"recipients" validate:"required_with=Sender,dive,email"`
}

func (e EmailConfig) Enabled() bool {
	return e.Sender != ""
}

type TelegramConfig struct {
	BaseUrl  string `json:"base_url" validate:"omitempty,url"`
	BotToken string `json:"bot_token" validate:"required_with=ChatId"`
	ChatId   string `json:"chat_id" validate:"required_with=BotToken"`
}

func (t TelegramConfig) Enabled() bool {
	return t.BotToken != ""
}

type Config struct {
	Url string `json:"url" validate:"required,url"`
	// Identity is the identity policy, see posting.ParseResolver.
	Identity             string `json:"identity" validate:"oneof=field_hash content_equality"`
	MaxPostings          int    `json:"max_postings" validate:"min=1"`
	// MaxDescriptionLength truncates descriptions, a negative value disables it.
	MaxDescriptionLength int    `json:"max_description_length"`
	// Storage is the snapshot store connection string, see snapshot.Open.
	Storage          string `json:"storage" validate:"required"`
	StorageAuthToken string `json:"storage_auth_token"`
	// Schedule is a standard 5 field cron expression used by the daemon.
	Schedule string `json:"schedule" validate:"required"`
	// Timezone the schedule is evaluated in, empty means UTC.
	Timezone string `json:"timezone"`
	// DriftThreshold is the title similarity above which a new posting is
	// reported as a possible re-render of a stored one, a negative value
	// disables it.
	DriftThreshold float64 `json:"drift_threshold" validate:"max=1"`

	Fetch     FetchConfig      `json:"fetch"`
	Email     EmailConfig      `json:"email"`
	Telegram  TelegramConfig   `json:"telegram"`
	Telemetry telemetry.Config `json:"telemetry"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Read loads the config file at path (and its `.local` override), then the
// `.env` file next to the working directory, then the environment.
// Neither file is required to exist.
func Read(path string) (Config, error) {
	config, err := readFiles[Config](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, err
	}

	err = godotenv.Load()
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	err = config.applyEnv(os.LookupEnv)
	if err != nil {
		return Config{}, err
	}
	config.applyDefaults()

	err = config.Validate()
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

type lookupFunc func(key string) (string, bool)

func (c *Config) applyEnv(lookup lookupFunc) error {
	str := func(key string, target *string) {
		value, ok := lookup(key)
		if ok && value != "" {
			*target = value
		}
	}
	num := func(key string, target *int) error {
		value, ok := lookup(key)
		if !ok || value == "" {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*target = n
		return nil
	}

	str("BOUNTY_URL", &c.Url)
	str("DATABASE_URL", &c.Storage)
	str("SENDER_EMAIL", &c.Email.Sender)
	str("SENDER_PASSWORD", &c.Email.Password)
	str("SMTP_SERVER", &c.Email.Server)
	str("TELEGRAM_BOT_TOKEN", &c.Telegram.BotToken)
	str("TELEGRAM_CHAT_ID", &c.Telegram.ChatId)

	recipients, ok := lookup("RECIPIENT_EMAIL")
	if ok && recipients != "" {
		c.Email.Recipients = nil
		for _, r := range strings.Split(recipients, ",") {
			r = strings.TrimSpace(r)
			if r != "" {
				c.Email.Recipients = append(c.Email.Recipients, r)
			}
		}
	}

	return errors.Join(
		num("SMTP_PORT", &c.Email.Port),
		num("MAX_POSTINGS", &c.MaxPostings),
		num("MAX_DESCRIPTION_LENGTH", &c.MaxDescriptionLength),
	)
}

func (c *Config) applyDefaults() {
	if c.Url == "" {
		c.Url = DefaultUrl
	}
	if c.Identity == "" {
		c.Identity = posting.PolicyFieldHash
	}
	if c.MaxPostings == 0 {
		c.MaxPostings = DefaultMaxPostings
	}
	if c.MaxDescriptionLength == 0 {
		c.MaxDescriptionLength = DefaultMaxDescriptionLength
	}
	if c.DriftThreshold == 0 {
		c.DriftThreshold = DefaultDriftThreshold
	}
	if c.Storage == "" {
		c.Storage = DefaultStorage
	}
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
	if c.Fetch.Mode == "" {
		c.Fetch.Mode = FetchModeBrowser
	}
	if c.Fetch.TimeoutSeconds == 0 {
		c.Fetch.TimeoutSeconds = 60
	}
	if c.Fetch.SettleSeconds == 0 {
		c.Fetch.SettleSeconds = 5
	}
	if c.Email.Enabled() {
		if c.Email.Server == "" {
			c.Email.Server = DefaultSmtpServer
		}
		if c.Email.Port == 0 {
			c.Email.Port = DefaultSmtpPort
		}
	}
}

func (c Config) Validate() error {
	err := validate.Struct(c)
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
