package config

import (
	"path/filepath"
	"sync"
	"time"

	str2duration "github.com/xhit/go-str2duration/v2"
)

type Config struct {
	Server         ServerConfig  `yaml:"server"`
	Logging        LoggingConfig `yaml:"logging"`
	Paths          PathsConfig   `yaml:"paths"`
	Authentication AuthConfig    `yaml:"authentication"`
	OpenId         OpenIdConfig  `yaml:"openid"`
	Updates        UpdatesConfig `yaml:"updates"`
	path           string
}

type ServerConfig struct {
	BaseURL string `yaml:"base_url"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

type LoggingConfig struct {
	LogPath           string `yaml:"log_path"`
	EnableFileLogging bool   `yaml:"enable_file_logging"`
}

type PathsConfig struct {
	DownloaderPath    string `yaml:"downloader_path"`
	DownloadPath      string `yaml:"download_path"`
	SettingsPath      string `yaml:"settings_path"`
	LocalDatabasePath string `yaml:"local_database_path"`
}

type AuthConfig struct {
	RequireAuth  bool   `yaml:"require_auth"`
	Username     string `yaml:"username"`
	PasswordHash string `yaml:"password"`
	Secret       string `yaml:"secret"`
}

type OpenIdConfig struct {
	UseOpenId      bool     `yaml:"use_openid"`
	ProviderURL    string   `yaml:"openid_provider_url"`
	ClientId       string   `yaml:"openid_client_id"`
	ClientSecret   string   `yaml:"openid_client_secret"`
	RedirectURL    string   `yaml:"openid_redirect_url"`
	EmailWhitelist []string `yaml:"openid_email_whitelist"`
}

type UpdatesConfig struct {
	UpdateOnStart  bool   `yaml:"update_on_start"`
	VersionTimeout string `yaml:"version_timeout"`
}

var (
	instance     *Config
	instanceOnce sync.Once
)

func Instance() *Config {
	if instance == nil {
		instanceOnce.Do(func() {
			instance = &Config{}
		})
	}
	return instance
}

// Path of the directory containing the config file
func (c *Config) Dir() string { return filepath.Dir(c.path) }

// Absolute path of the config file
func (c *Config) Path() string { return c.path }

func (c *Config) SetPath(p string) { c.path = p }

// How long to wait on the downloader's --version before giving up.
// Parsed with the extended duration syntax ("10s", "1m30s", "1d").
func (c *Config) VersionTimeout() time.Duration {
	d, err := str2duration.ParseDuration(c.Updates.VersionTimeout)
	if err != nil || d <= 0 {
		return time.Second * 10
	}
	return d
}
