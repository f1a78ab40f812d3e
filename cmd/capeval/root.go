package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"caption-eval-compare/backend/internal/config"
	"caption-eval-compare/backend/internal/logging"
)

// app is shared by all subcommands once the root has loaded it.
type app struct {
	cfg *config.Config
	log *logrus.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	v := config.New()
	var cfgPath string

	root := &cobra.Command{
		Use:           "capeval",
		Short:         "Aggregate and compare caption evaluation results",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if f := cmd.Flags().Lookup("source-dir"); f != nil && f.Changed {
				v.Set("ingest.source", config.SourceDir)
			}
			cfg, err := config.Load(v, cfgPath)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			a.cfg, a.log = cfg, log
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&cfgPath, "config", "", "config file (default ./capeval.yaml)")
	pf.String("log-level", "info", "log level")
	pf.String("source-dir", "input", "directory holding result inputs")
	_ = v.BindPFlag("log.level", pf.Lookup("log-level"))
	_ = v.BindPFlag("ingest.dir", pf.Lookup("source-dir"))

	root.AddCommand(
		newServeCmd(a),
		newListCmd(a),
		newDistributionCmd(a),
		newDiffCmd(a),
		newAnovaCmd(a),
		newScoreCmd(a),
	)
	return root
}
