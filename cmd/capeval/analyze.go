package main

import (
	"context"

	"github.com/spf13/cobra"

	"caption-eval-compare/backend/internal/coreengine/comparison"
	"caption-eval-compare/backend/internal/coreengine/distribution"
	"caption-eval-compare/backend/internal/coreengine/resultset"
	"caption-eval-compare/backend/internal/ingest"
	"caption-eval-compare/backend/internal/resultapi"
)

type analysisFlags struct {
	unit   string
	metric string
	format string
}

func (f *analysisFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.unit, "unit", "", "unit: native, seconds (delay) or fraction (percentages)")
	cmd.Flags().StringVar(&f.metric, "metric", "", "correction metric for corr_rate results")
	cmd.Flags().StringVar(&f.format, "format", formatJSON, "output format: json or yaml")
}

// options resolves flags against the configured analysis defaults.
func (f *analysisFlags) options(a *app, jt resultset.JobType) (distribution.Options, error) {
	opts, err := distribution.ParseOptions(f.unit, f.metric)
	if err != nil {
		return distribution.Options{}, err
	}
	delayUnit, metric := a.cfg.AnalysisDefaults()
	if f.unit == "" && jt == resultset.JobTypeDelay {
		opts.Unit = delayUnit
	}
	if f.metric == "" {
		opts.CorrectionMetric = metric
	}
	return opts, nil
}

func (a *app) load(ctx context.Context, name string) (*resultset.ResultSet, error) {
	src, err := ingest.FromConfig(ctx, a.cfg, a.log)
	if err != nil {
		return nil, err
	}
	a.log.WithField("source", src.String()).Debugf("loading %s", name)
	return ingest.Load(ctx, src, name)
}

func firstJobType(set *resultset.ResultSet, key string) resultset.JobType {
	if r, ok := set.Get(key); ok {
		return r.Record.JobType
	}
	return ""
}

func newListCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list <input>",
		Short: "List result keys of an input in collection order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), format, resultapi.Entries(set))
		},
	}
	cmd.Flags().StringVar(&format, "format", formatJSON, "output format: json or yaml")
	return cmd
}

func newDistributionCmd(a *app) *cobra.Command {
	var flags analysisFlags
	var category string
	cmd := &cobra.Command{
		Use:   "distribution <input>",
		Short: "Print per-run sample groups of one category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			jt, err := resultset.ParseJobType(category)
			if err != nil {
				return err
			}
			opts, err := flags.options(a, jt)
			if err != nil {
				return err
			}
			set, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			groups, err := distribution.Extract(set, jt, opts)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), flags.format, resultapi.DistributionResponse{
				Category: jt,
				YLabel:   opts.AxisLabel(jt, ""),
				Groups:   groups,
			})
		},
	}
	flags.register(cmd)
	cmd.Flags().StringVar(&category, "category", string(resultset.JobTypeWER), "wer, delay or corr_rate")
	return cmd
}

func newDiffCmd(a *app) *cobra.Command {
	var flags analysisFlags
	cmd := &cobra.Command{
		Use:   "diff <input> <keyA> <keyB>",
		Short: "Print keyA minus keyB for every aligned test",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opts, err := flags.options(a, firstJobType(set, args[1]))
			if err != nil {
				return err
			}
			res, err := comparison.CompareDifferential(set, args[1:], opts)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), flags.format, res)
		},
	}
	flags.register(cmd)
	return cmd
}

func newAnovaCmd(a *app) *cobra.Command {
	var flags analysisFlags
	cmd := &cobra.Command{
		Use:   "anova <input> <key> <key>...",
		Short: "Run a one-way ANOVA across results",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			set, err := a.load(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			opts, err := flags.options(a, firstJobType(set, args[1]))
			if err != nil {
				return err
			}
			res, err := comparison.CompareAnova(set, args[1:], opts)
			if err != nil {
				return err
			}
			return writeOutput(cmd.OutOrStdout(), flags.format, res)
		},
	}
	flags.register(cmd)
	return cmd
}
