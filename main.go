package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/envelope-zero/ledger/pkg/config"
	"github.com/envelope-zero/ledger/pkg/controllers"
	"github.com/envelope-zero/ledger/pkg/coordinator"
	"github.com/envelope-zero/ledger/pkg/draft"
	"github.com/envelope-zero/ledger/pkg/remote"
	"github.com/envelope-zero/ledger/pkg/remote/amqpfeed"
	"github.com/envelope-zero/ledger/pkg/remote/sqlstore"
	"github.com/envelope-zero/ledger/pkg/rollover"
	"github.com/envelope-zero/ledger/pkg/router"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Time to send queued writes on shutdown
const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(".", "./config")
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	setupLogger(cfg)

	// Create data directory
	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), os.ModePerm); err != nil {
		log.Fatal().Msg(err.Error())
	}

	db, err := sqlstore.Open(cfg.DatabasePath)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}
	defer db.Close()

	var store remote.Store = db
	if cfg.AMQP.Enabled() {
		client, err := amqpfeed.Dial(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			log.Fatal().Msg(err.Error())
		}
		defer client.Close()

		store = amqpfeed.New(db, client.Channel, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		log.Info().Str("exchange", cfg.AMQP.Exchange).Msg("publishing changes to AMQP")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ledger := coordinator.New(store, cfg.Coordinator())
	if err := ledger.Hydrate(ctx); err != nil {
		log.Warn().Err(err).Msg("could not load the ledger from the remote store, starting with the local replica")
	}

	service := rollover.NewService(ledger)
	scheduler := rollover.NewScheduler(service, cfg.Rollover.Interval, nil)

	r, err := router.Config(cfg, ledger.Collectors()...)
	if err != nil {
		log.Fatal().Msg(err.Error())
	}

	router.AttachRoutes(controllers.Controller{
		Ledger:   ledger,
		Rollover: service,
		Drafts:   draft.NewGuard(draft.NewRuleDrafter(nil, nil), cfg.Draft.Limit, cfg.Draft.Window, nil),
	}, r.Group("/"))

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		log.Info().Msg("shutting down server")
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error { return ledger.Run(ctx) })
	g.Go(func() error { return ledger.Sweep(ctx) })
	g.Go(func() error { return ledger.Listen(ctx) })
	g.Go(func() error { return scheduler.Run(ctx) })

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("stopped with error")
	}

	flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	synced := ledger.Flush(flushCtx)
	status := ledger.Status()
	log.Info().Int("synced", synced).Int("pending", status.Pending).Int("failed", status.Failed).Msg("stopped")
}

// setupLogger configures the global logger.
//
// The log format can be explicitly set. If it is not set, it defaults
// to human readable for development and JSON for release.
func setupLogger(cfg config.Config) {
	output := io.Writer(os.Stdout)
	if (cfg.LogFormat == "" && cfg.GinMode == "debug") || cfg.LogFormat == "human" {
		output = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.GinMode == "debug" {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Logger = log.Output(output).With().Timestamp().Logger()
}
