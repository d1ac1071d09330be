package configs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()

	t.Setenv("TELEGRAM_TOKEN", "tg-token")
	t.Setenv("AVITO_CLIENT_ID", "avito-client")
	t.Setenv("AVITO_CLIENT_SECRET", "avito-secret")
	t.Setenv("AVITO_COMPANY_ID", "238")
	t.Setenv("CIAN_TOKEN", "cian-token")
	t.Setenv("YANDEX_TOKEN", "ya-token")
	t.Setenv("YANDEX_X_TOKEN", "ya-x-token")
	t.Setenv("YANDEX_FEED_ID", "feed-1")
	t.Setenv("DOMCLICK_TOKEN", "dc-token")
	t.Setenv("DOMCLICK_COMPANY_ID", "238126")
}

func TestLoadConfig_ReadsAllPlatformCredentials(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := LoadConfig("testdata/absent.env")
	require.NoError(t, err)

	assert.Equal(t, "arka-bot", cfg.AppName)
	assert.Equal(t, "tg-token", cfg.Telegram.Token)
	assert.Equal(t, "avito-client", cfg.Avito.ClientID)
	assert.Equal(t, "avito-secret", cfg.Avito.ClientSecret)
	assert.Equal(t, "238", cfg.Avito.CompanyID)
	assert.Equal(t, "cian-token", cfg.Cian.Token)
	assert.Equal(t, "ya-token", cfg.Yandex.Token)
	assert.Equal(t, "ya-x-token", cfg.Yandex.XToken)
	assert.Equal(t, "feed-1", cfg.Yandex.FeedID)
	assert.Equal(t, "dc-token", cfg.Domclick.Token)
	assert.Equal(t, "238126", cfg.Domclick.CompanyID)
	assert.False(t, cfg.FluentBit.Enabled)
	assert.Equal(t, "debug", cfg.StdoutLogger.Level)
}

func TestLoadConfig_MissingRequiredVariableFails(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("TELEGRAM_TOKEN", "")

	_, err := LoadConfig("testdata/absent.env")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TELEGRAM_TOKEN")
}

func TestLoadConfig_FluentBitDisabledWithoutHost(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FLUENTBIT_ENABLED", "true")

	cfg, err := LoadConfig("testdata/absent.env")
	require.NoError(t, err)
	assert.False(t, cfg.FluentBit.Enabled)
}

func TestLoadConfig_FluentBitDefaults(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("FLUENTBIT_ENABLED", "true")
	t.Setenv("FLUENTBIT_HOST", "fluent-bit")

	cfg, err := LoadConfig("testdata/absent.env")
	require.NoError(t, err)
	assert.True(t, cfg.FluentBit.Enabled)
	assert.Equal(t, 24224, cfg.FluentBit.Port)
	assert.Equal(t, "info", cfg.FluentBit.Level)
}
