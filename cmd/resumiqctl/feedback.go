package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/akashvaddapelli/Resumeiq/internal/feedback"
	"github.com/akashvaddapelli/Resumeiq/internal/jobs"
	"github.com/akashvaddapelli/Resumeiq/internal/objectstore"
)

func newExportFeedbackCommand() *cobra.Command {
	var (
		exportDir string
		noUpload  bool
	)

	command := &cobra.Command{
		Use:   "export-feedback",
		Short: "Export unexported positive feedback as JSONL training data",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if exportDir != "" {
				cfg.Feedback.ExportDir = exportDir
			}
			logger := newLogger()
			defer func() { _ = logger.Sync() }()

			db, closeDB, err := openDatabase(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeDB()

			var uploader jobs.Uploader
			if cfg.Storage.Enabled() && !noUpload {
				store, err := objectstore.New(cmd.Context(), cfg.Storage)
				if err != nil {
					return err
				}
				uploader = store
			}

			// export never reads cached contexts
			cache := feedback.NewContextCache(time.Minute)
			defer cache.Close()

			job := jobs.NewFeedbackExporterJob(
				feedback.NewFeedbackManager(db, cache, logger),
				uploader,
				&jobs.ExporterConfig{ExportDir: cfg.Feedback.ExportDir},
				logger,
			)
			result, err := job.RunExport(cmd.Context())
			if err != nil {
				return err
			}

			if result.File == "" {
				color.Yellow("Nothing to export (%d records checked)", result.Records)
				return nil
			}
			color.Green("Exported %d of %d records to %s", result.Exported, result.Records, result.File)
			if result.ObjectKey != "" {
				color.Green("Uploaded to s3://%s/%s", cfg.Storage.Bucket, result.ObjectKey)
			} else if uploader != nil {
				color.Red("Upload failed; the local file was kept")
			}
			return nil
		},
	}
	command.Flags().StringVar(&exportDir, "dir", "", "directory for export files (overrides feedback.exportdir)")
	command.Flags().BoolVar(&noUpload, "no-upload", false, "skip uploading the export to object storage")
	return command
}

func newFeedbackStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "feedback-stats",
		Short: "Show counts of collected feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := newLogger()
			defer func() { _ = logger.Sync() }()

			db, closeDB, err := openDatabase(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer closeDB()

			cache := feedback.NewContextCache(time.Minute)
			defer cache.Close()

			stats, err := feedback.NewFeedbackManager(db, cache, logger).GetFeedbackStats(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Total:      %d\n", stats.Total)
			fmt.Fprintf(out, "Positive:   %d\n", stats.Positive)
			fmt.Fprintf(out, "Negative:   %d\n", stats.Negative)
			fmt.Fprintf(out, "Unexported: %d\n", stats.Unexported)

			types := make([]string, 0, len(stats.ByType))
			for t := range stats.ByType {
				types = append(types, t)
			}
			sort.Strings(types)
			for _, t := range types {
				fmt.Fprintf(out, "  %s: %d\n", t, stats.ByType[t])
			}
			return nil
		},
	}
}
