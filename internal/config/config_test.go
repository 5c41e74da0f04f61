package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func load(t *testing.T, args []string, file string) (*Config, error) {
	t.Helper()
	fs := pflag.NewFlagSet("serve", pflag.ContinueOnError)
	BindFlags(fs)
	require.NoError(t, fs.Parse(args))
	return Load(viper.New(), fs, file)
}

func TestDefaults(t *testing.T) {
	c, err := load(t, nil, "")
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Listen)
	assert.Equal(t, "", c.DataDir)
	assert.Equal(t, 5*time.Second, c.HubTimeout)
	assert.Equal(t, zerolog.InfoLevel, c.LogLevel)
	assert.Equal(t, filepath.Join("keys", "board.vk"), filepath.Clean(c.BoardVK))
	assert.Equal(t, filepath.Join("keys", "hit.vk"), filepath.Clean(c.HitVK))
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
}

func TestPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "battleship.yaml")
	require.NoError(t, os.WriteFile(file, []byte("listen: \":7000\"\nhub-url: http://file\nlog-level: debug\n"), 0o600))

	t.Setenv("BATTLESHIP_HUB_URL", "http://env")
	t.Setenv("BATTLESHIP_KEYS_DIR", "/etc/keys")

	c, err := load(t, []string{"--listen", ":9000"}, file)
	require.NoError(t, err)
	assert.Equal(t, ":9000", c.Listen, "flags win")
	assert.Equal(t, "http://env", c.HubURL, "env beats the file")
	assert.Equal(t, zerolog.DebugLevel, c.LogLevel, "file beats defaults")
	assert.Equal(t, "/etc/keys/hit.vk", c.HitVK)
}

func TestValidate(t *testing.T) {
	_, err := load(t, []string{"--log-level", "loud"}, "")
	assert.Error(t, err)

	_, err = load(t, []string{"--hub-timeout", "0s"}, "")
	assert.Error(t, err)

	_, err = load(t, []string{"--self-identity", ""}, "")
	assert.Error(t, err)

	_, err = load(t, nil, filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
