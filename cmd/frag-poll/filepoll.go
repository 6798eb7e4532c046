package main

import (
	"context"

	"github.com/frag-eval/frag-poll/internal/config"
	"github.com/frag-eval/frag-poll/internal/filestore"
	"github.com/frag-eval/frag-poll/internal/poller"
	"github.com/frag-eval/frag-poll/internal/reconcile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const filePoller = "file"

var filepollCmd = &cobra.Command{
	Use:   "filepoll",
	Short: "Poll the file storage for submitted files",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		logger, dbLog := initLogging(cfg)
		defer func() { _ = logger.Sync() }()

		zap.S().Infow("Starting file poller", "config", configFile, "dry_run", dryRun)
		defer zap.S().Info("File poller stopped")

		s, err := openStore(cfg, dbLog)
		if err != nil {
			return err
		}
		defer s.Close()

		bucket, err := filestore.NewMinioBucket(
			filestore.WithEndpoint(cfg.Service.S3.Endpoint),
			filestore.WithBucket(cfg.Service.S3.Bucket),
			filestore.WithAccessKey(cfg.Service.S3.AccessKey),
			filestore.WithSecretKey(cfg.Service.S3.SecretKey),
			filestore.WithSSL(cfg.Service.S3.UseSSL),
		)
		if err != nil {
			return err
		}
		source := filestore.NewSource(bucket)

		ctx, cancel := signalContext()
		defer cancel()
		startMetrics(ctx, cfg)

		pass := func(ctx context.Context, pc *config.Poller) error {
			specs, err := pc.FileAssignments()
			if err != nil {
				return err
			}
			withNotifier, err := notifierOption(cfg, pc.Notify)
			if err != nil {
				return err
			}
			driver := reconcile.NewDriver(s, filePoller, source, withNotifier, reconcile.WithDryRun(dryRun))
			return driver.Run(ctx, specs)
		}

		return poller.New(filePoller, configFile, pass, poller.WithOneshot(oneshot)).Run(ctx)
	},
}
