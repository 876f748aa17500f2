package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "admin", cfg.Chat.SystemSender)
	require.Equal(t, 5*time.Second, cfg.Chat.PushTimeout)
	require.Equal(t, 24*time.Hour, cfg.JWT.AccessTTL)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("CHAT_SYSTEM_SENDER", "system-bot")
	t.Setenv("CHAT_PUSH_TIMEOUT", "2s")
	t.Setenv("JWT_ACCESS_TTL", "30m")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "system-bot", cfg.Chat.SystemSender)
	require.Equal(t, 2*time.Second, cfg.Chat.PushTimeout)
	require.Equal(t, 30*time.Minute, cfg.JWT.AccessTTL)
}

func TestLoad_InvalidPushTimeout(t *testing.T) {
	t.Setenv("CHAT_PUSH_TIMEOUT", "-1s")

	_, err := Load()
	require.Error(t, err)
}
