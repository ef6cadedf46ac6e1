package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/storeledger/internal/advice"
	"github.com/MrJamesThe3rd/storeledger/internal/config"
	"github.com/MrJamesThe3rd/storeledger/internal/export"
	storeHttp "github.com/MrJamesThe3rd/storeledger/internal/http"
	adviceHandler "github.com/MrJamesThe3rd/storeledger/internal/http/advice"
	catalogHandler "github.com/MrJamesThe3rd/storeledger/internal/http/catalog"
	directoryHandler "github.com/MrJamesThe3rd/storeledger/internal/http/directory"
	reportHandler "github.com/MrJamesThe3rd/storeledger/internal/http/report"
	salesHandler "github.com/MrJamesThe3rd/storeledger/internal/http/sales"
	"github.com/MrJamesThe3rd/storeledger/internal/importer"
	"github.com/MrJamesThe3rd/storeledger/internal/ledger"
	"github.com/MrJamesThe3rd/storeledger/internal/logger"
	"github.com/MrJamesThe3rd/storeledger/internal/storage"
)

func main() {
	if err := run(); err != nil {
		zap.S().Errorw("server failed", "error", err)
		_ = zap.L().Sync()
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
		File:        cfg.Log.File,
	})
	if err != nil {
		return err
	}
	defer log.Sync()

	zap.ReplaceGlobals(log)

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repo, closeRepo, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeRepo()

	engine := ledger.NewEngine(ledger.WithClock(func() time.Time { return time.Now().In(loc) }))

	ledgerService := ledger.NewService(repo, engine)
	if err := ledgerService.Open(ctx); err != nil {
		return err
	}

	var (
		importService = importer.NewService()
		exportService = export.NewService(ledgerService)
		adviceService = advice.NewService(
			advice.NewOpenAIAdvisor(cfg.Advice.APIKey, cfg.Advice.Model),
			advice.Config{
				MinClientIDLen:  cfg.Advice.MinClientIDLen,
				MaxPayloadBytes: cfg.Advice.MaxPayloadBytes,
				MaxQueryChars:   cfg.Advice.MaxQueryChars,
				CacheTTL:        cfg.Advice.CacheTTL,
				CacheMaxEntries: cfg.Advice.CacheMaxEntries,
				Timeout:         cfg.Advice.Timeout,
			},
		)
	)

	if cfg.Advice.APIKey == "" {
		zap.S().Warn("OPENAI_API_KEY is not set, store advice requests will fail")
	}

	scheduler, err := export.NewScheduler(exportService, cfg.Report.Schedule, cfg.Report.Dir, loc)
	if err != nil {
		return err
	}

	scheduler.Start()
	defer func() { <-scheduler.Stop().Done() }()

	var (
		catalogH   = catalogHandler.NewHandler(ledgerService, importService)
		salesH     = salesHandler.NewHandler(ledgerService, loc)
		directoryH = directoryHandler.NewHandler(ledgerService, loc)
		reportH    = reportHandler.NewHandler(ledgerService, exportService, loc)
		adviceH    = adviceHandler.NewHandler(adviceService, cfg.Advice.MaxPayloadBytes, cfg.Advice.CacheTTL)
	)

	router := storeHttp.New(storeHttp.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Timeout:        cfg.Server.Timeout,
	}, catalogH, salesH, directoryH, reportH, adviceH)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		zap.S().Infow("starting server", "app", cfg.App.Name, "addr", srv.Addr, "timezone", loc.String())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	case <-ctx.Done():
	}

	zap.S().Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
