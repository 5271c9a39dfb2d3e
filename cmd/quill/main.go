package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/quillhq/quill/config"
	"github.com/quillhq/quill/core"
	"github.com/quillhq/quill/crypto"
	"github.com/quillhq/quill/db/zombiezen"
	"github.com/quillhq/quill/identity"
	"github.com/quillhq/quill/mail"
	"github.com/quillhq/quill/migrations"
	"github.com/quillhq/quill/oauth2"
	"github.com/quillhq/quill/queue"
	"github.com/quillhq/quill/queue/executor"
	"github.com/quillhq/quill/queue/handlers"
	"github.com/quillhq/quill/queue/scheduler"
	"github.com/quillhq/quill/server"

	cacheRistretto "github.com/quillhq/quill/cache/ristretto"
	routerHttprouter "github.com/quillhq/quill/router/httprouter"
)

func main() {
	configPath := flag.String("config", "", "path to the TOML config file (optional)")
	dbFile := flag.String("db", "", "path to the SQLite database file (overrides config)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	if err := run(*configPath, *dbFile, logger); err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath, dbFile string, logger *slog.Logger) error {
	cfg, err := config.Load(configPath, logger)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if dbFile != "" {
		cfg.DBFile = dbFile
	}
	if cfg.DBFile == "" {
		return fmt.Errorf("no database file configured (use -db or db_file in the config)")
	}

	pool, err := zombiezen.NewPool(cfg.DBFile)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer pool.Close()

	conn, err := pool.Take(context.Background())
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	err = zombiezen.ApplyMigrations(conn, migrations.Schema())
	pool.Put(conn)
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	store, err := zombiezen.New(pool)
	if err != nil {
		return fmt.Errorf("store: %w", err)
	}

	codec, err := crypto.NewCodec([]byte(cfg.Token.Secret))
	if err != nil {
		return fmt.Errorf("token codec: %w", err)
	}

	states, err := cacheRistretto.New[string]("small")
	if err != nil {
		return fmt.Errorf("state cache: %w", err)
	}

	app := &core.App{}
	app.SetDb(store)
	app.SetConfig(cfg)
	app.SetLogger(logger)
	app.SetTokenCodec(codec)
	app.SetValidator(core.NewValidator())
	app.SetAuthenticator(core.NewDefaultAuthenticator(store, codec, logger))
	app.SetReconciler(identity.NewReconciler(store, logger))
	app.SetProfileFetcher(oauth2.NewFetcher())
	app.SetStateCache(states)

	mailer := mail.New(cfg.Smtp, logger)
	exec := executor.NewExecutor(map[string]executor.JobHandler{
		queue.JobTypeEmailVerification: handlers.NewEmailVerificationHandler(store, cfg, codec, mailer, logger),
		queue.JobTypePasswordReset:     handlers.NewPasswordResetHandler(store, cfg, codec, mailer, logger),
	})
	sched := scheduler.NewScheduler(cfg.Scheduler, store, exec, logger)

	rt := routerHttprouter.New()
	registerRoutes(rt, app, logger)

	srv := server.New(cfg.Server, rt, logger)
	srv.AddDaemon(sched)
	srv.Run()
	return nil
}
