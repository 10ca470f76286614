package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/akashvaddapelli/Resumeiq/internal/feedback"
)

const exportTimeout = 5 * time.Minute

// Uploader archives exported files; satisfied by *objectstore.Store.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
}

// FeedbackExporterJob periodically writes positive feedback to JSONL files.
type FeedbackExporterJob struct {
	feedbackManager *feedback.FeedbackManager
	uploader        Uploader
	config          *ExporterConfig
	cron            *cron.Cron
	logger          *zap.Logger
}

type ExporterConfig struct {
	Schedule      string // cron spec, e.g. "0 2 * * *"
	ExportDir     string
	ExportEnabled bool
}

// ExportResult describes one export run.
type ExportResult struct {
	Records   int
	Exported  int
	File      string
	ObjectKey string
}

// NewFeedbackExporterJob creates the job. uploader may be nil.
func NewFeedbackExporterJob(
	feedbackManager *feedback.FeedbackManager,
	uploader Uploader,
	config *ExporterConfig,
	logger *zap.Logger,
) *FeedbackExporterJob {
	return &FeedbackExporterJob{
		feedbackManager: feedbackManager,
		uploader:        uploader,
		config:          config,
		cron:            cron.New(),
		logger:          logger,
	}
}

func (fej *FeedbackExporterJob) Start() error {
	if !fej.config.ExportEnabled {
		fej.logger.Info("Feedback export is disabled, skipping scheduler")
		return nil
	}

	_, err := fej.cron.AddFunc(fej.config.Schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), exportTimeout)
		defer cancel()
		if _, err := fej.RunExport(ctx); err != nil {
			fej.logger.Error("Export job failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	fej.cron.Start()
	fej.logger.Info("Feedback exporter started", zap.String("schedule", fej.config.Schedule))
	return nil
}

// Stop waits for a running export to finish.
func (fej *FeedbackExporterJob) Stop() {
	if fej.cron != nil {
		<-fej.cron.Stop().Done()
		fej.logger.Info("Feedback exporter stopped")
	}
}

// RunExport exports every unexported record once. Negative feedback is
// marked exported without being written so it is not reconsidered.
func (fej *FeedbackExporterJob) RunExport(ctx context.Context) (*ExportResult, error) {
	records, err := fej.feedbackManager.GetUnexportedFeedback(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to get unexported feedback: %w", err)
	}

	result := &ExportResult{Records: len(records)}
	if len(records) == 0 {
		fej.logger.Info("No unexported feedback found")
		return result, nil
	}

	data, exported, err := fej.feedbackManager.ExportToJSONL(records)
	if err != nil {
		return nil, fmt.Errorf("failed to export to JSONL: %w", err)
	}
	result.Exported = exported

	ids := make([]uint, len(records))
	for i, fb := range records {
		ids[i] = fb.ID
	}

	if exported == 0 {
		fej.logger.Info("No positive feedback to export, skipping file creation")
		return result, fej.feedbackManager.MarkAsExported(ctx, ids)
	}

	if err := os.MkdirAll(fej.config.ExportDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	filename := fmt.Sprintf("feedback_export_%s.jsonl", time.Now().Format("20060102_150405"))
	path := filepath.Join(fej.config.ExportDir, filename)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write export file: %w", err)
	}
	result.File = path

	if fej.uploader != nil {
		key := "feedback-exports/" + filename
		if err := fej.uploader.Upload(ctx, key, "application/jsonl", data); err != nil {
			// the local file is kept
			fej.logger.Warn("Failed to upload export", zap.String("key", key), zap.Error(err))
		} else {
			result.ObjectKey = key
		}
	}

	if err := fej.feedbackManager.MarkAsExported(ctx, ids); err != nil {
		return nil, fmt.Errorf("failed to mark as exported: %w", err)
	}

	fej.logger.Info("Exported positive feedback samples",
		zap.Int("samples", exported),
		zap.String("file", path))
	return result, nil
}
