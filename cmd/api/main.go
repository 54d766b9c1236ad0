package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"atl_hub/internal/adapters/cms"
	server "atl_hub/internal/adapters/http_server"
	"atl_hub/internal/adapters/observability"
	"atl_hub/internal/app"
	"atl_hub/internal/domain"
	"atl_hub/internal/shared"
	mysqlrepo "atl_hub/internal/storage/mysql"
)

func main() {
	cfg := shared.Load()

	// set global logger (console in dev, JSON otherwise)
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	// metrics stay off the public router
	reg := observability.InitRegistry()
	observability.Serve(cfg.MetricsAddr, reg)

	// db: locations always live in MySQL
	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("database connection ok")

	// deps
	repo := mysqlrepo.New(db)
	var content domain.ContentSource = repo
	if cfg.ContentSource == shared.SourceCMS {
		client, err := cms.New(cfg.CMSBase, cfg.CMSKey, cfg.CMSRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize CMS client")
		}
		content = client
	}
	log.Info().Str("content_source", cfg.ContentSource).Msg("content source selected")
	pages := app.NewPageService(repo, content, app.Labels{Citywide: cfg.CitywideLabel, Metro: cfg.MetroLabel})

	// http
	srv := server.New(cfg.RequestTimeout)
	srv.MountHandlers(&server.Handlers{Pages: pages})

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           srv.Mux(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info().Str("addr", cfg.HTTPAddr).Msg("API listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown")
	}
	_ = db.Close()
}
