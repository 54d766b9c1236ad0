package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	"atl_hub/internal/adapters/cms"
	"atl_hub/internal/adapters/observability"
	"atl_hub/internal/app"
	"atl_hub/internal/domain"
	"atl_hub/internal/shared"
	mysqlrepo "atl_hub/internal/storage/mysql"
)

// audit renders every neighborhood page once and reports which sections had
// to widen past the neighborhood itself. The JSON report goes to stdout.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	cfg := shared.Load()

	// logs go to stderr so stdout stays a clean report
	log.Logger = observability.NewLogger(cfg.AppEnv, cfg.LogLevel).Output(os.Stderr)
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	log.Info().
		Str("content_source", cfg.ContentSource).
		Int("workers", cfg.AuditWorkers).
		Msg("audit starting")

	db, err := sql.Open("mysql", cfg.MySQLDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("sql.Open failed")
	}
	if err := db.Ping(); err != nil {
		log.Fatal().Err(err).Msg("db.Ping failed")
	}
	log.Info().Msg("db ping ok")

	repo := mysqlrepo.New(db)
	var content domain.ContentSource = repo
	if cfg.ContentSource == shared.SourceCMS {
		client, err := cms.New(cfg.CMSBase, cfg.CMSKey, cfg.CMSRPS)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to initialize CMS client")
		}
		content = client
	}
	pages := app.NewPageService(repo, content, app.Labels{Citywide: cfg.CitywideLabel, Metro: cfg.MetroLabel})

	entries, err := app.NewAuditor(pages, repo, cfg.AuditWorkers).Run(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("audit failed")
	}

	widened, empty, failed := 0, 0, 0
	for _, e := range entries {
		switch {
		case e.Err != nil:
			failed++
		case e.Widened:
			widened++
			log.Info().
				Str("slug", e.Slug).
				Str("stories_label", e.Sections["stories"].Label).
				Int("stories_tier", e.Sections["stories"].Tier).
				Msg("stories widened")
		case e.Stories == app.StoriesEmpty:
			empty++
			log.Warn().Str("slug", e.Slug).Msg("no stories at any tier")
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(entries); err != nil {
		log.Fatal().Err(err).Msg("write report failed")
	}
	log.Info().
		Int("neighborhoods", len(entries)).
		Int("widened", widened).
		Int("empty", empty).
		Int("failed", failed).
		Msg("audit completed")
}
