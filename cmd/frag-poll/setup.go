package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/frag-eval/frag-poll/internal/config"
	"github.com/frag-eval/frag-poll/internal/notify"
	"github.com/frag-eval/frag-poll/internal/reconcile"
	"github.com/frag-eval/frag-poll/internal/store"
	"github.com/frag-eval/frag-poll/pkg/log"
	"github.com/frag-eval/frag-poll/pkg/metrics"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// initLogging applies the flag implications of --dry-run, installs the global
// zap logger and returns the logrus logger gorm logs through.
func initLogging(cfg *config.Config) (*zap.Logger, logrus.FieldLogger) {
	if dryRun {
		verbose = true
		oneshot = true
	}

	logLvl, err := zap.ParseAtomicLevel(cfg.Service.LogLevel)
	if err != nil {
		logLvl = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	if verbose {
		logLvl.SetLevel(zapcore.DebugLevel)
	}
	logger := log.InitLog(logLvl, journal)
	zap.ReplaceGlobals(logger)

	dbLog := logrus.New()
	dbLog.SetLevel(logrus.WarnLevel)
	if verbose {
		dbLog.SetLevel(logrus.DebugLevel)
	}
	return logger, dbLog.WithField("pkg", "store")
}

func openStore(cfg *config.Config, dbLog logrus.FieldLogger) (store.Store, error) {
	zap.S().Info("Initializing data store")
	db, err := store.InitDB(cfg, dbLog)
	if err != nil {
		return nil, fmt.Errorf("initializing data store: %w", err)
	}

	s := store.NewStore(db, dbLog)
	if err := s.InitialMigration(); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("running initial migration: %w", err)
	}
	return s, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGQUIT)
}

// startMetrics serves /metrics in the background when an address is set.
func startMetrics(ctx context.Context, cfg *config.Config) {
	if cfg.Service.MetricsAddress == "" {
		return
	}
	listener, err := net.Listen("tcp", cfg.Service.MetricsAddress)
	if err != nil {
		zap.S().Errorw("failed to listen for metrics", "address", cfg.Service.MetricsAddress, "error", err)
		return
	}
	go func() {
		server := metrics.NewServer(cfg.Service.MetricsAddress, listener)
		if err := server.Run(ctx); err != nil {
			zap.S().Errorw("metrics server failed", "error", err)
		}
	}()
}

// notifierOption builds the e-mail notifier of one pass from the poller
// configuration and the SMTP settings of the service.
func notifierOption(cfg *config.Config, n config.Notify) (reconcile.Option, error) {
	if !n.Enabled {
		return reconcile.WithNotifier(nil), nil
	}
	email, err := notify.NewEmail(notify.Config{
		Host:     cfg.Service.Smtp.Host,
		Port:     cfg.Service.Smtp.Port,
		Username: cfg.Service.Smtp.Username,
		Password: cfg.Service.Smtp.Password,
		From:     n.From,
		To:       n.To,
		Subject:  n.Subject,
		Body:     n.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", config.ErrConfig, err)
	}
	return reconcile.WithNotifier(email), nil
}
