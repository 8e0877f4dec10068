// Copyright 2024-2026 Aiku AI

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const sampleConfig = `
account:
  api_id: 12345
  api_hash: abc
  user_phone: "+10000000000"
  bot_token: "123:token"
logger:
  path: /tmp/logs
  level: debug
keyword:
  keyword_list: ["foo", "/bar/i"]
  exclude_list: ["spam"]
data:
  command_id_list: [111]
  result_id_list: [222]
  source_filter: true
  source_filter_block_list: [333]
  block_bot_msg: false
`

func TestParse(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, 12345, cfg.Account.APIID)
	assert.Equal(t, "123:token", cfg.Account.BotToken)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, []string{"foo", "/bar/i"}, cfg.Keyword.KeywordList)
	assert.Equal(t, []string{"spam"}, cfg.Keyword.ExcludeList)
	assert.Equal(t, []int64{111}, cfg.Data.CommandIDList)
	assert.Equal(t, []int64{222}, cfg.Data.ResultIDList)
	assert.True(t, cfg.Data.SourceFilter)
	assert.Equal(t, []int64{333}, cfg.Data.SourceFilterBlockList)
	assert.False(t, cfg.Data.BlockBotMsg)
	assert.False(t, cfg.Proxy.Enabled())
}

func TestParseBlockBotMsgDefaultsTrue(t *testing.T) {
	t.Parallel()
	cfg, err := Parse([]byte("account:\n  bot_token: x\ndata:\n  command_id_list: [1]\n"))
	require.NoError(t, err)
	assert.True(t, cfg.Data.BlockBotMsg)
}

func TestParseInvalidYAML(t *testing.T) {
	t.Parallel()
	_, err := Parse([]byte("account: [unterminated"))
	require.Error(t, err)
}

func TestPostProcess(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "missing bot token",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "minimal",
			cfg:  Config{Account: AccountConfig{BotToken: "t"}},
		},
		{
			name: "socks5 proxy",
			cfg: Config{
				Account: AccountConfig{BotToken: "t"},
				Proxy:   ProxyConfig{Type: "socks5", Address: "127.0.0.1", Port: 1080},
			},
		},
		{
			name: "unknown proxy type",
			cfg: Config{
				Account: AccountConfig{BotToken: "t"},
				Proxy:   ProxyConfig{Type: "mtproto", Address: "127.0.0.1", Port: 443},
			},
			wantErr: true,
		},
		{
			name: "incomplete matrix mirror",
			cfg: Config{
				Account: AccountConfig{BotToken: "t"},
				Mirror:  MirrorConfig{Matrix: MatrixMirrorConfig{RoomIDs: []string{"!a:b"}}},
			},
			wantErr: true,
		},
		{
			name: "incomplete mattermost mirror",
			cfg: Config{
				Account: AccountConfig{BotToken: "t"},
				Mirror:  MirrorConfig{Mattermost: MattermostMirrorConfig{ChannelIDs: []string{"c"}}},
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.PostProcess()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalid)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProxyURL(t *testing.T) {
	t.Parallel()
	u, err := ProxyConfig{Type: "SOCKS5", Address: "proxy.local", Port: 1080}.URL()
	require.NoError(t, err)
	assert.Equal(t, "socks5://proxy.local:1080", u.String())
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadFillsDefaultsFromExample(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleConfig), 0o600))

	f, err := Load(path)
	require.NoError(t, err)
	cfg := f.Config()
	assert.Equal(t, []string{"foo", "/bar/i"}, cfg.Keyword.KeywordList)
	assert.Equal(t, []int64{111}, cfg.Data.CommandIDList)
	assert.Empty(t, cfg.Admin.ListenAddr)
	assert.False(t, cfg.Mirror.Matrix.Enabled())
}

func TestSaveKeywords(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg, err := Parse([]byte(sampleConfig))
	require.NoError(t, err)
	f := NewFile(path, *cfg)

	require.NoError(t, f.SaveKeywords([]string{"foo", "bar"}, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var saved Config
	require.NoError(t, yaml.Unmarshal(data, &saved))
	assert.Equal(t, []string{"foo", "bar"}, saved.Keyword.KeywordList)
	assert.Empty(t, saved.Keyword.ExcludeList)
	assert.Equal(t, []int64{222}, saved.Data.ResultIDList)
	assert.False(t, saved.Data.BlockBotMsg)
	assert.Equal(t, []string{"foo", "bar"}, f.Config().Keyword.KeywordList)
}

func TestSaveKeywordsWriteFailureKeepsMemory(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "missing-dir", "config.yaml")
	f := NewFile(path, Config{Account: AccountConfig{BotToken: "t"}})

	err := f.SaveKeywords([]string{"foo"}, []string{"bar"})
	require.Error(t, err)
	cfg := f.Config()
	assert.Equal(t, []string{"foo"}, cfg.Keyword.KeywordList)
	assert.Equal(t, []string{"bar"}, cfg.Keyword.ExcludeList)
}

func TestConfigReturnsCopy(t *testing.T) {
	t.Parallel()
	f := NewFile("unused", Config{Keyword: KeywordConfig{KeywordList: []string{"a"}}})
	cfg := f.Config()
	cfg.Keyword.KeywordList[0] = "changed"
	assert.Equal(t, "a", f.Config().Keyword.KeywordList[0])
}
