package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

var envKeys = []string{
	"BOUNTY_URL", "DATABASE_URL", "SENDER_EMAIL", "SENDER_PASSWORD",
	"RECIPIENT_EMAIL", "SMTP_SERVER", "SMTP_PORT", "TELEGRAM_BOT_TOKEN",
	"TELEGRAM_CHAT_ID", "MAX_POSTINGS", "MAX_DESCRIPTION_LENGTH",
}

// isolate runs the test in an empty directory with a clean environment.
func isolate(t *testing.T) string {
	dir := t.TempDir()
	t.Chdir(dir)
	for _, key := range envKeys {
		// registers the restore, godotenv skips keys that are already set
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	return dir
}

func write(t *testing.T, path, content string) {
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestReadDefaults(t *testing.T) {
	dir := isolate(t)

	config, err := Read(filepath.Join(dir, "bountywatch.json5"))
	require.NoError(t, err)
	require.Equal(t, DefaultUrl, config.Url)
	require.Equal(t, "field_hash", config.Identity)
	require.Equal(t, DefaultMaxPostings, config.MaxPostings)
	require.Equal(t, DefaultMaxDescriptionLength, config.MaxDescriptionLength)
	require.Equal(t, DefaultStorage, config.Storage)
	require.Equal(t, DefaultSchedule, config.Schedule)
	require.Equal(t, FetchModeBrowser, config.Fetch.Mode)
	require.False(t, config.Email.Enabled())
	require.False(t, config.Telegram.Enabled())
}

func TestReadFileWithLocalOverride(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bountywatch.json5")

	write(t, path, `{
		// comments are allowed
		identity: "content_equality",
		max_postings: 20,
		storage: "file:bounties.json",
		fetch: { mode: "http" },
	}`)
	write(t, LocalPath(path), `{
		max_postings: 5,
		telegram: { bot_token: "123:abc", chat_id: "42" },
	}`)

	config, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, "content_equality", config.Identity)
	require.Equal(t, 5, config.MaxPostings)
	require.Equal(t, "file:bounties.json", config.Storage)
	require.Equal(t, FetchModeHttp, config.Fetch.Mode)
	require.True(t, config.Telegram.Enabled())
	require.Equal(t, "42", config.Telegram.ChatId)
}

func TestReadEnvironment(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "bountywatch.json5")
	write(t, path, `{ max_postings: 20, storage: "file:bounties.json" }`)
	write(t, filepath.Join(dir, ".env"), "SENDER_PASSWORD=hunter2\n")

	t.Setenv("SENDER_EMAIL", "watcher@example.com")
	t.Setenv("RECIPIENT_EMAIL", "a@example.com, b@example.com")
	t.Setenv("DATABASE_URL", "postgres://localhost/bounties")
	t.Setenv("MAX_POSTINGS", "15")
	t.Setenv("MAX_DESCRIPTION_LENGTH", "-1")

	config, err := Read(path)
	require.NoError(t, err)
	require.Equal(t, 15, config.MaxPostings)
	require.Equal(t, -1, config.MaxDescriptionLength)
	require.Equal(t, "postgres://localhost/bounties", config.Storage)
	require.True(t, config.Email.Enabled())
	require.Equal(t, "hunter2", config.Email.Password)
	require.Equal(t, []string{"a@example.com", "b@example.com"}, config.Email.Recipients)
	require.Equal(t, DefaultSmtpServer, config.Email.Server)
	require.Equal(t, DefaultSmtpPort, config.Email.Port)
}

func TestReadInvalid(t *testing.T) {
	cases := []struct {
		name string
		file string
		env  map[string]string
	}{
		{
			name: "unknown identity policy",
			file: `{ identity: "by_vibes" }`,
		},
		{
			name: "email without recipients",
			env:  map[string]string{"SENDER_EMAIL": "watcher@example.com"},
		},
		{
			name: "telegram token without chat",
			env:  map[string]string{"TELEGRAM_BOT_TOKEN": "123:abc"},
		},
		{
			name: "malformed number",
			env:  map[string]string{"MAX_POSTINGS": "ten"},
		},
		{
			name: "relative url",
			env:  map[string]string{"BOUNTY_URL": "/bounties"},
		},
		{
			name: "unknown fetch mode",
			file: `{ fetch: { mode: "carrier_pigeon" } }`,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			dir := isolate(t)
			path := filepath.Join(dir, "bountywatch.json5")
			if c.file != "" {
				write(t, path, c.file)
			}
			for key, value := range c.env {
				t.Setenv(key, value)
			}
			_, err := Read(path)
			require.Error(t, err)
		})
	}
}

func TestLocalPath(t *testing.T) {
	require.Equal(t, filepath.Join("conf", "bountywatch.local.json5"), LocalPath(filepath.Join("conf", "bountywatch.json5")))
	require.Equal(t, "config.local", LocalPath("config"))
}
