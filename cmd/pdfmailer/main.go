// Command pdfmailer serves the contact-form submission API: it validates
// submissions, optionally persists them, renders a confirmation PDF, and
// emails it to the submitter.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	pdfmailer "github.com/alnah/go-pdfmailer"
	"github.com/alnah/go-pdfmailer/internal/assets"
	"github.com/alnah/go-pdfmailer/internal/config"
	"github.com/alnah/go-pdfmailer/internal/httpapi"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	configPath := pflag.String("config", "", "path to YAML config file")
	verbose := pflag.BoolP("verbose", "v", false, "enable debug logging")
	showVersion := pflag.Bool("version", false, "print version and exit")
	pflag.Parse()

	if *showVersion {
		fmt.Println(Version)
		return
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := run(*configPath, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(configPath string, log *slog.Logger) error {
	// Load .env before reading configuration; a missing file is fine.
	_ = godotenv.Load()

	// Error ignored: maxprocs.Set only fails if the GOMAXPROCS env var is
	// invalid, in which case Go runtime defaults apply.
	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		log.Debug(fmt.Sprintf(format, args...))
	}))

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	mailer, err := pdfmailer.NewSMTPMailer(cfg.Mail)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	opts := []pdfmailer.Option{
		pdfmailer.WithTimeout(cfg.Render.Timeout),
	}

	if cfg.Mail.FromName != "" {
		opts = append(opts, pdfmailer.WithBrandName(cfg.Mail.FromName))
	}

	if cfg.Mongo.URI != "" {
		store, err := pdfmailer.NewMongoStore(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close(context.Background()) }()
		opts = append(opts, pdfmailer.WithStore(store))
		log.Info("submission persistence enabled", "database", cfg.Mongo.Database)
	} else {
		log.Warn("MONGO_URI not set; submissions will not be persisted")
	}

	if cfg.Templates.Dir != "" {
		loader, err := assets.NewFilesystemLoader(cfg.Templates.Dir)
		if err != nil {
			return err
		}
		opts = append(opts, pdfmailer.WithTemplateLoader(loader))
		log.Info("using filesystem templates", "dir", cfg.Templates.Dir)
	}

	pool := pdfmailer.NewServicePool(
		pdfmailer.ResolvePoolSize(cfg.Render.Workers),
		func() *pdfmailer.Service { return pdfmailer.New(mailer, opts...) },
	)
	defer func() { _ = pool.Close() }()
	log.Info("renderer pool ready", "size", pool.Size())

	handler := httpapi.NewHandler(pool, log)
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      httpapi.NewRouter(handler, cfg.CORS.AllowedOrigins, log),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr, "version", Version)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
