package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeINI(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "web_config.ini")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoadFile_FromINI(t *testing.T) {
	p := writeINI(t, `
[DATABASE]
location = mongo.internal
port = 27018
collection = Scans

[LOGIN]
key = ini-secret
url_node = http://login.internal/login.html
`)

	cfg, err := LoadFile(p)
	require.NoError(t, err)
	require.Equal(t, "mongodb://mongo.internal:27018/", cfg.MongoDB.URI)
	require.Equal(t, "Scans", cfg.MongoDB.Database)
	require.Equal(t, "ini-secret", cfg.Login.Secret)
	require.Equal(t, "http://login.internal/login.html", cfg.Login.URL)
	require.Equal(t, 100, cfg.Reports.PageSize)
	require.Equal(t, 10*time.Second, cfg.MongoDB.Timeout)
	require.Equal(t, "127.0.0.1:5000", cfg.Server.Addr())
}

func TestLoadFile_EnvOverridesINI(t *testing.T) {
	p := writeINI(t, "[LOGIN]\nkey = ini-secret\n")
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("MONGODB_URI", "mongodb://db:27017/")
	t.Setenv("FLASK_RUN_PORT", "8080")

	cfg, err := LoadFile(p)
	require.NoError(t, err)
	require.Equal(t, "env-secret", cfg.Login.Secret)
	require.Equal(t, "mongodb://db:27017/", cfg.MongoDB.URI)
	require.Equal(t, "8080", cfg.Server.Port)
}

func TestLoadFile_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "testsecret123456789012345678901234")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.ini"))
	require.NoError(t, err)
	require.Equal(t, "mongodb://localhost:27017/", cfg.MongoDB.URI)
	require.Equal(t, "DockShield", cfg.MongoDB.Database)
	require.Equal(t, "http://localhost:3000/login.html", cfg.Login.URL)
	require.Empty(t, cfg.Redis.Host)
}

func TestLoadFile_RequiresSecret(t *testing.T) {
	p := writeINI(t, "[DATABASE]\nlocation = localhost\n")
	t.Setenv("JWT_SECRET", "")
	_, err := LoadFile(p)
	require.Error(t, err)
}
