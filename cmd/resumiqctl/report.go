package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/akashvaddapelli/Resumeiq/internal/report"
	"github.com/akashvaddapelli/Resumeiq/internal/repositories"
)

func newReportCommand() *cobra.Command {
	var (
		userID string
		out    string
	)

	command := &cobra.Command{
		Use:   "report <session-id>",
		Short: "Render a practice session report as PDF",
		Args:  cobra.ExactArgs(1),
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

			store := repositories.NewStore(db)
			detail, err := store.SessionDetail(cmd.Context(), userID, args[0])
			if errors.Is(err, repositories.ErrNotFound) {
				return fmt.Errorf("session %s not found for user %s", args[0], userID)
			}
			if err != nil {
				return fmt.Errorf("failed to load session: %w", err)
			}

			var name string
			if profile, err := store.Profiles.Get(cmd.Context(), userID); err == nil {
				name = profile.FullName
			}

			generatedAt := time.Now()
			pdf, err := report.RenderPDF(report.BuildMarkdown(report.Input{
				UserName:    name,
				GeneratedAt: generatedAt,
				Session:     detail.Session,
				Questions:   detail.Questions,
				Answers:     detail.Answers,
				MCQResult:   detail.MCQResult,
			}))
			if err != nil {
				return err
			}

			if out == "" {
				out = report.Filename(generatedAt)
			}
			if err := os.WriteFile(out, pdf, 0644); err != nil {
				return fmt.Errorf("failed to write report: %w", err)
			}
			color.Green("Report written to %s", out)
			return nil
		},
	}
	command.Flags().StringVar(&userID, "user", "", "owner of the session")
	command.Flags().StringVarP(&out, "out", "o", "", "output file (default Resumiq-Session-<date>.pdf)")
	_ = command.MarkFlagRequired("user")
	return command
}
