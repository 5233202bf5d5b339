package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/ytdesk/ytdesk/server"
	"github.com/ytdesk/ytdesk/server/config"
	"github.com/ytdesk/ytdesk/server/openid"
)

func main() {
	// Parse optional config path from flag
	var configFile string
	flag.StringVar(&configFile, "conf", "./config.yml", "Config file path")
	flag.Parse()

	v := viper.New()
	v.SetConfigFile(configFile)
	v.SetConfigType("yaml")

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	// Defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 3044)
	v.SetDefault("paths.downloader_path", "yt-dlp")
	v.SetDefault("paths.download_path", cwd)
	v.SetDefault("paths.settings_path", "settings.json")
	v.SetDefault("paths.local_database_path", ".")
	v.SetDefault("logging.log_path", "ytdesk.log")
	v.SetDefault("logging.enable_file_logging", false)
	v.SetDefault("authentication.require_auth", false)
	v.SetDefault("updates.update_on_start", false)
	v.SetDefault("updates.version_timeout", "10s")

	// Env binding
	v.SetEnvPrefix("YTDESK")
	v.AutomaticEnv()

	// Load YAML file if exists
	if err := v.ReadInConfig(); err != nil {
		slog.Debug("using defaults")
	}

	cfg := config.Instance()
	// the config struct is yaml-tagged; tell the decoder to match on those
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	}); err != nil {
		slog.Error("failed to load config", "error", err)
	}
	cfg.SetPath(configFile)

	// Configure OpenID if needed
	openid.Configure()

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("starting ytdesk",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"downloader", cfg.Paths.DownloaderPath,
	)

	if err := server.Run(ctx); err != nil {
		slog.Error("server stopped with error", "error", err)
		os.Exit(1)
	}

	slog.Info("server exited cleanly")
}
