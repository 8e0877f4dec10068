// Copyright 2024-2026 Aiku AI

// Package config defines the durable configuration of the keyword bot and the
// file it is loaded from and saved back to.
package config

import (
	_ "embed"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	up "go.mau.fi/util/configupgrade"
	"gopkg.in/yaml.v3"
)

//go:embed example-config.yaml
var ExampleConfig string

// ErrInvalid is wrapped by every validation error returned from PostProcess.
var ErrInvalid = errors.New("invalid config")

// Config is the full configuration file.
type Config struct {
	Account AccountConfig `yaml:"account"`
	Proxy   ProxyConfig   `yaml:"proxy"`
	Logger  LoggerConfig  `yaml:"logger"`
	Keyword KeywordConfig `yaml:"keyword"`
	Data    DataConfig    `yaml:"data"`
	Admin   AdminConfig   `yaml:"admin"`
	Mirror  MirrorConfig  `yaml:"mirror"`
}

// AccountConfig holds the Telegram credentials.
type AccountConfig struct {
	APIID     int    `yaml:"api_id"`
	APIHash   string `yaml:"api_hash"`
	UserPhone string `yaml:"user_phone"`
	BotToken  string `yaml:"bot_token"`
}

// ProxyConfig is the optional outbound proxy for the transport.
type ProxyConfig struct {
	Type    string `yaml:"type"`
	Address string `yaml:"address"`
	Port    int    `yaml:"port"`
}

// Enabled reports whether all three proxy fields are set. A partially filled
// proxy section is treated as absent, the same as an empty one.
func (p ProxyConfig) Enabled() bool {
	return p.Type != "" && p.Address != "" && p.Port != 0
}

// URL returns the proxy as a URL suitable for http.ProxyURL.
func (p ProxyConfig) URL() (*url.URL, error) {
	scheme := strings.ToLower(p.Type)
	switch scheme {
	case "socks5", "http", "https":
	default:
		return nil, fmt.Errorf("%w: unsupported proxy type %q", ErrInvalid, p.Type)
	}
	return &url.URL{
		Scheme: scheme,
		Host:   net.JoinHostPort(p.Address, strconv.Itoa(p.Port)),
	}, nil
}

type LoggerConfig struct {
	Path  string `yaml:"path"`
	Level string `yaml:"level"`
}

// KeywordConfig holds the rule texts. ExcludeList is the only location for
// exclude rules; there is no top-level exclude list.
type KeywordConfig struct {
	KeywordList []string `yaml:"keyword_list"`
	ExcludeList []string `yaml:"exclude_list"`
}

// DataConfig holds the identifier lists used for source classification.
type DataConfig struct {
	CommandIDList         []int64 `yaml:"command_id_list"`
	ResultIDList          []int64 `yaml:"result_id_list"`
	SourceFilter          bool    `yaml:"source_filter"`
	SourceFilterBlockList []int64 `yaml:"source_filter_block_list"`
	BlockBotMsg           bool    `yaml:"block_bot_msg"`
}

type AdminConfig struct {
	ListenAddr string `yaml:"listen_addr"`
}

// MirrorConfig configures notification destinations outside Telegram.
type MirrorConfig struct {
	Matrix     MatrixMirrorConfig     `yaml:"matrix"`
	Mattermost MattermostMirrorConfig `yaml:"mattermost"`
}

type MatrixMirrorConfig struct {
	Homeserver  string   `yaml:"homeserver"`
	UserID      string   `yaml:"user_id"`
	AccessToken string   `yaml:"access_token"`
	RoomIDs     []string `yaml:"room_ids"`
}

// Enabled reports whether any Matrix room is configured.
func (c MatrixMirrorConfig) Enabled() bool {
	return len(c.RoomIDs) > 0
}

type MattermostMirrorConfig struct {
	ServerURL  string   `yaml:"server_url"`
	Token      string   `yaml:"token"`
	ChannelIDs []string `yaml:"channel_ids"`
}

// Enabled reports whether any Mattermost channel is configured.
func (c MattermostMirrorConfig) Enabled() bool {
	return len(c.ChannelIDs) > 0
}

// UnmarshalYAML applies defaults for keys missing from the document.
func (c *Config) UnmarshalYAML(node *yaml.Node) error {
	type rawConfig Config
	c.Data.BlockBotMsg = true
	return node.Decode((*rawConfig)(c))
}

// PostProcess validates the decoded configuration.
func (c *Config) PostProcess() error {
	if c.Account.BotToken == "" {
		return fmt.Errorf("%w: account.bot_token is required", ErrInvalid)
	}
	if c.Proxy.Enabled() {
		if _, err := c.Proxy.URL(); err != nil {
			return err
		}
	}
	if m := c.Mirror.Matrix; m.Enabled() {
		if m.Homeserver == "" || m.UserID == "" || m.AccessToken == "" {
			return fmt.Errorf("%w: mirror.matrix needs homeserver, user_id and access_token", ErrInvalid)
		}
	}
	if m := c.Mirror.Mattermost; m.Enabled() {
		if m.ServerURL == "" || m.Token == "" {
			return fmt.Errorf("%w: mirror.mattermost needs server_url and token", ErrInvalid)
		}
	}
	return nil
}

func upgradeConfig(helper up.Helper) {
	helper.Copy(up.Int, "account", "api_id")
	helper.Copy(up.Str, "account", "api_hash")
	helper.Copy(up.Str|up.Int, "account", "user_phone")
	helper.Copy(up.Str, "account", "bot_token")

	helper.Copy(up.Str, "proxy", "type")
	helper.Copy(up.Str, "proxy", "address")
	helper.Copy(up.Int, "proxy", "port")

	helper.Copy(up.Str, "logger", "path")
	helper.Copy(up.Str, "logger", "level")

	helper.Copy(up.List, "keyword", "keyword_list")
	helper.Copy(up.List, "keyword", "exclude_list")

	helper.Copy(up.List, "data", "command_id_list")
	helper.Copy(up.List, "data", "result_id_list")
	helper.Copy(up.Bool, "data", "source_filter")
	helper.Copy(up.List, "data", "source_filter_block_list")
	helper.Copy(up.Bool, "data", "block_bot_msg")

	helper.Copy(up.Str, "admin", "listen_addr")

	helper.Copy(up.Str, "mirror", "matrix", "homeserver")
	helper.Copy(up.Str, "mirror", "matrix", "user_id")
	helper.Copy(up.Str, "mirror", "matrix", "access_token")
	helper.Copy(up.List, "mirror", "matrix", "room_ids")
	helper.Copy(up.Str, "mirror", "mattermost", "server_url")
	helper.Copy(up.Str, "mirror", "mattermost", "token")
	helper.Copy(up.List, "mirror", "mattermost", "channel_ids")
}

// Upgrader merges an existing config file over ExampleConfig so that keys
// added in newer versions get their defaults.
var Upgrader = &up.StructUpgrader{
	SimpleUpgrader: up.SimpleUpgrader(upgradeConfig),
	Blocks: [][]string{
		{"proxy"},
		{"logger"},
		{"keyword"},
		{"data"},
		{"admin"},
		{"mirror"},
	},
	Base: ExampleConfig,
}
