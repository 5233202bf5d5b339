package server

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/mattn/go-colorable"
	bolt "go.etcd.io/bbolt"

	"github.com/ytdesk/ytdesk/server/config"
	"github.com/ytdesk/ytdesk/server/events"
	"github.com/ytdesk/ytdesk/server/history"
	"github.com/ytdesk/ytdesk/server/internal/runner"
	"github.com/ytdesk/ytdesk/server/internal/store"
	"github.com/ytdesk/ytdesk/server/logging"
	middlewares "github.com/ytdesk/ytdesk/server/middleware"
	"github.com/ytdesk/ytdesk/server/openid"
	"github.com/ytdesk/ytdesk/server/presets"
	"github.com/ytdesk/ytdesk/server/rest"
	"github.com/ytdesk/ytdesk/server/settings"
	"github.com/ytdesk/ytdesk/server/updater"
	"github.com/ytdesk/ytdesk/server/user"
	"github.com/ytdesk/ytdesk/server/ws"
)

type serverConfig struct {
	settings *settings.Store
	runner   *runner.Runner
	mdb      *store.Store
	db       *bolt.DB
	presets  *presets.Store
	history  *history.Repository
	bus      *events.Bus
	logs     *logging.Observable
}

func Run(ctx context.Context) error {
	conf := config.Instance()

	// ---- LOGGING ---------------------------------------------------
	observableLogger := logging.NewObservable()

	logWriters := []io.Writer{
		colorable.NewColorableStdout(),
		observableLogger, // for the frontend log view
	}

	if conf.Logging.EnableFileLogging {
		fd, err := os.OpenFile(conf.Logging.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return err
		}
		defer fd.Close()

		logWriters = append(logWriters, fd)
	}

	logger := slog.New(slog.NewTextHandler(io.MultiWriter(logWriters...), &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)
	// ----------------------------------------------------------------

	boltdb, err := bolt.Open(filepath.Join(conf.Paths.LocalDatabasePath, "bolt.db"), 0600, nil)
	if err != nil {
		return err
	}

	presetStore, err := presets.NewStore(boltdb)
	if err != nil {
		return err
	}

	historyRepo, err := history.New(filepath.Join(conf.Paths.LocalDatabasePath, "history.db"))
	if err != nil {
		return err
	}

	bus := events.NewBus()

	scfg := serverConfig{
		settings: settings.NewStore(conf.Paths.SettingsPath),
		runner:   runner.New(conf.Paths.DownloaderPath, bus),
		mdb:      store.New(),
		db:       boltdb,
		presets:  presetStore,
		history:  historyRepo,
		bus:      bus,
		logs:     observableLogger,
	}

	if conf.Updates.UpdateOnStart {
		go func() {
			if err := updater.Update(ctx, conf.Paths.DownloaderPath); err != nil {
				slog.Warn("downloader self-update failed", slog.Any("err", err))
			}
		}()
	}

	srv := newServer(scfg)

	go gracefulShutdown(ctx, srv, &scfg)

	address := fmt.Sprintf("%s:%d", conf.Server.Host, conf.Server.Port)

	listener, err := net.Listen("tcp", address)
	if err != nil {
		slog.Error("failed to listen", slog.String("err", err.Error()))
		return err
	}

	slog.Info("ytdesk started", slog.String("address", address))

	if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
		slog.Warn("http server stopped", slog.String("err", err.Error()))
	}

	return nil
}

func newServer(c serverConfig) *http.Server {
	r := chi.NewRouter()

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodPatch,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	r.Use(corsMiddleware.Handler)

	// Authentication routes
	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", user.Login)
		r.Get("/logout", user.Logout)

		r.Route("/openid", func(r chi.Router) {
			r.Get("/login", openid.Login)
			r.Get("/signin", openid.SignIn)
			r.Get("/logout", openid.Logout)
		})
	})

	// REST API handlers
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewares.ApplyAuthenticationByConfig)
		rest.ApplyRouter(&rest.ContainerArgs{
			Settings: c.settings,
			Runner:   c.runner,
			Store:    c.mdb,
			Presets:  c.presets,
			History:  c.history,
			Logs:     c.logs,
		})(r)
	})

	// Live output streaming
	r.Route("/ws", func(r chi.Router) {
		r.Use(middlewares.ApplyAuthenticationByConfig)
		r.Get("/output/{id}", ws.Output(c.bus))
	})

	return &http.Server{Handler: r}
}

func gracefulShutdown(ctx context.Context, srv *http.Server, cfg *serverConfig) {
	<-ctx.Done()
	slog.Info("shutdown signal received")

	// a download still in flight is terminated rather than orphaned
	if active, ok := cfg.mdb.Active(); ok {
		slog.Info("terminating active download", slog.String("id", active.GetId()))
		if err := active.Cancel(); err != nil {
			slog.Warn("failed to terminate active download", slog.Any("err", err))
		}
	}

	defer func() {
		cfg.db.Close()
		cfg.history.Close()
		srv.Shutdown(context.Background())
	}()
}
