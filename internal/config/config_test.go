package config_test

import (
	"testing"
	"time"

	"github.com/dom/videotube-identity/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseEnv() map[string]string {
	return map[string]string{
		"ACCESS_TOKEN_SECRET":  "access",
		"REFRESH_TOKEN_SECRET": "refresh",
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := config.LoadFrom(baseEnv())
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Port)
	assert.Equal(t, 15*time.Minute, cfg.AccessTokenExpiry)
	assert.Equal(t, 240*time.Hour, cfg.RefreshTokenExpiry)
	assert.Equal(t, 10, cfg.BcryptCost)
	assert.True(t, cfg.CookieSecure)
	assert.False(t, cfg.RevokeSessionsOnPasswordChange)
	assert.Equal(t, "videotube", cfg.S3.Bucket)
	assert.True(t, cfg.S3.UsePathStyle)
}

func TestLoadFrom_Overrides(t *testing.T) {
	environ := baseEnv()
	environ["ACCESS_TOKEN_EXPIRY"] = "1h"
	environ["COOKIE_SECURE"] = "false"
	environ["S3_BUCKET"] = "avatars"
	environ["S3_ENDPOINT"] = "http://minio:9000"

	cfg, err := config.LoadFrom(environ)
	require.NoError(t, err)

	assert.Equal(t, time.Hour, cfg.AccessTokenExpiry)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, "avatars", cfg.S3.Bucket)
	assert.Equal(t, "http://minio:9000", cfg.S3.Endpoint)

	tc := cfg.TokenConfig()
	assert.Equal(t, "access", tc.AccessSecret)
	assert.Equal(t, "refresh", tc.RefreshSecret)
	assert.Equal(t, time.Hour, tc.AccessTTL)
}

func TestLoadFrom_Validation(t *testing.T) {
	tests := []struct {
		name    string
		environ map[string]string
	}{
		{name: "missing access secret", environ: map[string]string{"REFRESH_TOKEN_SECRET": "refresh"}},
		{name: "missing refresh secret", environ: map[string]string{"ACCESS_TOKEN_SECRET": "access"}},
		{name: "shared secret", environ: map[string]string{"ACCESS_TOKEN_SECRET": "same", "REFRESH_TOKEN_SECRET": "same"}},
		{name: "bad duration", environ: map[string]string{"ACCESS_TOKEN_SECRET": "a", "REFRESH_TOKEN_SECRET": "b", "ACCESS_TOKEN_EXPIRY": "soon"}},
		{name: "negative expiry", environ: map[string]string{"ACCESS_TOKEN_SECRET": "a", "REFRESH_TOKEN_SECRET": "b", "REFRESH_TOKEN_EXPIRY": "-1h"}},
		{name: "bcrypt cost too low", environ: map[string]string{"ACCESS_TOKEN_SECRET": "a", "REFRESH_TOKEN_SECRET": "b", "BCRYPT_COST": "2"}},
		{name: "bcrypt cost too high", environ: map[string]string{"ACCESS_TOKEN_SECRET": "a", "REFRESH_TOKEN_SECRET": "b", "BCRYPT_COST": "40"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.LoadFrom(tt.environ)
			assert.Error(t, err)
		})
	}
}
