package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/akashvaddapelli/Resumeiq/internal/config"
	"github.com/akashvaddapelli/Resumeiq/internal/models"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrAnswerExists = errors.New("answer already submitted for this question")
)

// Open connects to the configured database, retrying with backoff while it
// comes up.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DSN())
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("database driver %q cannot be opened", cfg.Driver)
	}

	var db *gorm.DB
	err := retry.Do(
		func() error {
			conn, err := gorm.Open(dialector, &gorm.Config{
				Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
				TranslateError: true,
			})
			if err != nil {
				return err
			}
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := sqlDB.PingContext(ctx); err != nil {
				return err
			}
			db = conn
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(uint(cfg.ConnectAttempts)),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warn("Database not ready, retrying",
				zap.String("driver", cfg.Driver),
				zap.Uint("attempt", n+1),
				zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.AllModels()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Store groups the repositories handed to the HTTP handlers.
type Store struct {
	Sessions   *SessionRepository
	Questions  *QuestionRepository
	Answers    *AnswerRepository
	MCQResults *MCQResultRepository
	Streaks    *StreakRepository
	Profiles   *ProfileRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		Sessions:   &SessionRepository{DB: db},
		Questions:  &QuestionRepository{DB: db},
		Answers:    &AnswerRepository{DB: db},
		MCQResults: &MCQResultRepository{DB: db},
		Streaks:    &StreakRepository{DB: db},
		Profiles:   &ProfileRepository{DB: db},
	}
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// SessionDetail loads a session with its questions, the user's answers and
// the latest MCQ result. ErrNotFound unless userID owns the session.
func (store *Store) SessionDetail(ctx context.Context, userID, sessionID string) (*models.SessionDetail, error) {
	session, err := store.Sessions.GetForUser(ctx, userID, sessionID)
	if err != nil {
		return nil, err
	}
	questions, err := store.Questions.ListBySession(ctx, session.ID)
	if err != nil {
		return nil, err
	}
	answers, err := store.Answers.ListForSession(ctx, userID, session.ID)
	if err != nil {
		return nil, err
	}

	detail := &models.SessionDetail{Session: *session, Questions: questions, Answers: answers}
	result, err := store.MCQResults.LatestForSession(ctx, userID, session.ID)
	switch {
	case err == nil:
		detail.MCQResult = result
	case !errors.Is(err, ErrNotFound):
		return nil, err
	}
	return detail, nil
}
