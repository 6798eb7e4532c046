package main

import (
	"context"

	"github.com/frag-eval/frag-poll/internal/config"
	"github.com/frag-eval/frag-poll/internal/gitlab"
	"github.com/frag-eval/frag-poll/internal/poller"
	"github.com/frag-eval/frag-poll/internal/reconcile"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const gitPoller = "git"

var gitpollCmd = &cobra.Command{
	Use:   "gitpoll",
	Short: "Poll git hosting for tagged submissions",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		logger, dbLog := initLogging(cfg)
		defer func() { _ = logger.Sync() }()

		zap.S().Infow("Starting git poller", "config", configFile, "dry_run", dryRun)
		defer zap.S().Info("Git poller stopped")

		s, err := openStore(cfg, dbLog)
		if err != nil {
			return err
		}
		defer s.Close()

		api, err := gitlab.NewClient(cfg.Service.Gitlab.Url, cfg.Service.Gitlab.Token)
		if err != nil {
			return err
		}

		ctx, cancel := signalContext()
		defer cancel()
		startMetrics(ctx, cfg)

		pass := func(ctx context.Context, pc *config.Poller) error {
			specs, err := pc.GitAssignments()
			if err != nil {
				return err
			}
			withNotifier, err := notifierOption(cfg, pc.Notify)
			if err != nil {
				return err
			}
			source := gitlab.NewSource(api, gitlab.NewMaterializer(api, pc.Gitlab.Collaborators, dryRun))
			driver := reconcile.NewDriver(s, gitPoller, source, withNotifier, reconcile.WithDryRun(dryRun))
			return driver.Run(ctx, specs)
		}

		return poller.New(gitPoller, configFile, pass, poller.WithOneshot(oneshot)).Run(ctx)
	},
}
