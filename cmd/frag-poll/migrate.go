package main

import (
	"github.com/frag-eval/frag-poll/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the poller tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.New()
		if err != nil {
			return err
		}
		logger, dbLog := initLogging(cfg)
		defer func() { _ = logger.Sync() }()
		defer zap.S().Info("Db migrated")

		s, err := openStore(cfg, dbLog)
		if err != nil {
			return err
		}
		return s.Close()
	},
}
