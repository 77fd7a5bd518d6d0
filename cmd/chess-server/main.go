package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/park285/Cheese-chess-engine/internal/advisor"
	appcfg "github.com/park285/Cheese-chess-engine/internal/config"
	"github.com/park285/Cheese-chess-engine/internal/httpapi"
	"github.com/park285/Cheese-chess-engine/internal/msgcat"
	"github.com/park285/Cheese-chess-engine/internal/obslog"
	"github.com/park285/Cheese-chess-engine/internal/results"
	"github.com/park285/Cheese-chess-engine/internal/session"
	"github.com/park285/Cheese-chess-engine/internal/wsapi"
)

const resultOutboxInterval = time.Minute

func main() {
	cfg, err := appcfg.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	if err := obslog.InitFromEnv(); err != nil {
		log.Fatalf("logger init error: %v", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	cat, err := msgcat.New(cfg.MessagesDir)
	if err != nil {
		logger.Fatal("msgcat_init_error", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	repo, err := results.Open(ctx, cfg.ResultsDriver, cfg.DatabaseURL)
	if err != nil {
		cancel()
		logger.Fatal("results_init_error", zap.String("driver", cfg.ResultsDriver), zap.Error(err))
	}

	var adv *advisor.Advisor
	if strings.TrimSpace(cfg.StockfishPath) != "" {
		adv, err = advisor.New(advisor.Config{
			BinaryPath: cfg.StockfishPath,
			MoveTime:   cfg.AdvisorMoveTime(),
			PoolSize:   cfg.AdvisorPoolSize,
			BookPath:   cfg.AdvisorBookPath,
			Level:      cfg.AdvisorLevel,
			Engine: advisor.EngineOptions{
				Threads:    cfg.AdvisorThreads,
				HashMB:     cfg.AdvisorHashMB,
				SkillLevel: cfg.AdvisorSkillLevel,
			},
		})
		if err != nil {
			logger.Warn("advisor_disabled", zap.String("path", cfg.StockfishPath), zap.Error(err))
			adv = nil
		}
	}

	opts := session.Options{TTL: cfg.GameTTL(), LobbyLimit: cfg.LobbyLimit, Results: repo}
	if adv != nil {
		opts.Advisor = adv
	}
	mgr, err := session.NewManager(ctx, cfg.RedisURL, opts)
	cancel()
	if err != nil {
		logger.Fatal("session_init_error", zap.Error(err))
	}

	outboxCtx, stopOutbox := context.WithCancel(context.Background())
	outboxDone := make(chan struct{})
	go func() {
		defer close(outboxDone)
		mgr.RunResultOutbox(outboxCtx, resultOutboxInterval)
	}()

	api := httpapi.New(mgr, cat)
	ws := wsapi.New(mgr, cat)

	errCh := make(chan error, 2)
	go func() {
		logger.Info("http_listen", zap.String("addr", cfg.HTTPAddr))
		errCh <- api.ListenAndServe(cfg.HTTPAddr)
	}()
	go func() {
		logger.Info("ws_listen", zap.String("addr", cfg.WSAddr))
		if err := ws.ListenAndServe(cfg.WSAddr); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigCh:
		logger.Info("shutdown_signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.Error("listener_error", zap.Error(err))
	}

	stopOutbox()
	<-outboxDone
	if err := shutdown(api, ws, mgr, adv, repo); err != nil {
		logger.Error("shutdown_error", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("shutdown_complete")
}

// shutdown stops the listeners first, then the session store, the engine
// pool and the results repository.
func shutdown(api *httpapi.Server, ws *wsapi.Server, mgr *session.Manager, adv *advisor.Advisor, repo results.Repository) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var result *multierror.Error
	if err := api.Shutdown(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	if err := ws.Shutdown(ctx); err != nil {
		result = multierror.Append(result, err)
	}
	if err := mgr.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := adv.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	if err := repo.Close(); err != nil {
		result = multierror.Append(result, err)
	}
	return result.ErrorOrNil()
}
