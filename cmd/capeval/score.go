package main

import (
	"encoding/json"
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"caption-eval-compare/backend/internal/config"
	"caption-eval-compare/backend/internal/coreengine/evaluationengine"
	"caption-eval-compare/backend/internal/coreengine/resultset"
	"caption-eval-compare/backend/internal/objectstore"
)

func newScoreCmd(a *app) *cobra.Command {
	var upload string
	cmd := &cobra.Command{
		Use:   "score <manifest>",
		Short: "Score a transcript manifest into a wer result record",
		Long: "Score reads a YAML or JSON manifest of reference/hypothesis pairs and prints\n" +
			"the resulting wer record. With --upload the record is also stored in the\n" +
			"configured bucket as <prefix>/<input>/wer/<job>.json.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := evaluationengine.LoadManifestFile(args[0])
			if err != nil {
				return err
			}
			rec, failed := evaluationengine.ScoreManifest(m, a.log)
			for _, f := range failed {
				a.log.WithField("test", f.TestID).Warn(f.Err)
			}
			if len(failed) == len(m.Tests) && len(failed) > 0 {
				return fmt.Errorf("no test in %s could be scored", args[0])
			}

			data, err := json.MarshalIndent(rec, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))

			if upload == "" {
				return nil
			}
			if a.cfg.Ingest.Source != config.SourceMinio {
				return fmt.Errorf("--upload needs ingest.source %q", config.SourceMinio)
			}
			mc, err := objectstore.NewMinioClient(cmd.Context(), a.cfg.Minio, a.log)
			if err != nil {
				return err
			}
			key := path.Join(a.cfg.Minio.Prefix, upload, string(resultset.JobTypeWER), m.Job+".json")
			return mc.PutJSON(cmd.Context(), key, data)
		},
	}
	cmd.Flags().StringVar(&upload, "upload", "", "input name to store the record under")
	return cmd
}
