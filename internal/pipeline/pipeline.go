package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"roster/internal/config"
	"roster/internal/db"
	"roster/internal/models"
	"roster/internal/pkg/fetch"
	"roster/internal/pkg/roster"
)

type Stage string

const (
	StageFetch     Stage = "fetch"
	StageLocate    Stage = "locate"
	StageExtract   Stage = "extract"
	StageNormalize Stage = "normalize"
	StagePersist   Stage = "persist"
	StageDone      Stage = "done"
)

// Error reports the stage a run stopped at.
type Error struct {
	Stage Stage
	Err   error
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// Result summarises a finished run.
type Result struct {
	RunID       uint
	Stage       Stage
	Mapped      int
	Expected    int
	Records     int
	Diagnostics roster.Diagnostics
}

// Pipeline fetches the roster page, extracts and normalizes the table and
// replaces the configured database table with the result.
type Pipeline struct {
	DB          *gorm.DB
	config      *config.Config
	fetchClient *fetch.Client
}

func New(db *gorm.DB, cfg *config.Config) *Pipeline {
	return &Pipeline{
		DB:          db,
		config:      cfg,
		fetchClient: fetch.New(cfg.FetchTimeout, cfg.UserAgent),
	}
}

func (p *Pipeline) GetFetchClient() *fetch.Client {
	return p.fetchClient
}

// Run executes one full refresh. The returned Result is never nil; on failure
// the error is a *Error naming the stage.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	started := time.Now().UTC()
	res := &Result{}
	logger := log.With().Str("source", p.config.SourceURL).Str("table", p.config.TableName).Logger()

	logger.Info().Msg("starting roster pipeline")
	err := p.run(ctx, res, logger)
	p.drain(logger, &res.Diagnostics)

	if err != nil {
		logger.Error().Err(err).Str("stage", string(res.Stage)).Msg("roster pipeline aborted")
	} else {
		res.Stage = StageDone
		logger.Info().Int("records", res.Records).Msg("roster pipeline finished")
	}

	if recErr := p.recordRun(ctx, started, res, err); recErr != nil {
		logger.Warn().Err(recErr).Msg("failed to record pipeline run")
	}
	return res, err
}

func (p *Pipeline) run(ctx context.Context, res *Result, logger zerolog.Logger) error {
	diag := &res.Diagnostics

	res.Stage = StageFetch
	page, err := p.fetchClient.Fetch(ctx, p.config.SourceURL)
	if err != nil {
		return &Error{Stage: StageFetch, Err: err}
	}
	logger.Info().Int("bytes", len(page)).Msg("fetched page")

	res.Stage = StageLocate
	table, err := roster.Locate(page, p.config.Locator, diag)
	if err != nil {
		return &Error{Stage: StageLocate, Err: err}
	}

	res.Stage = StageExtract
	ex, err := roster.Extract(table, p.config.FieldSpec, diag)
	res.Mapped, res.Expected = ex.Mapped, ex.Expected
	if err != nil {
		return &Error{Stage: StageExtract, Err: err}
	}
	logger.Info().Int("rows", len(ex.Records)).Msg("extracted rows")

	res.Stage = StageNormalize
	records, err := roster.Normalize(ex.Records, p.config.Rules, p.config.FinalSchema, diag)
	if err != nil {
		return &Error{Stage: StageNormalize, Err: err}
	}

	res.Stage = StagePersist
	n, err := db.ReplaceTable(ctx, p.DB, p.config.TableName, p.config.FinalSchema, records)
	if err != nil {
		return &Error{Stage: StagePersist, Err: err}
	}
	res.Records = int(n)
	return nil
}

func (p *Pipeline) drain(logger zerolog.Logger, diag *roster.Diagnostics) {
	for _, w := range diag.Warnings {
		ev := logger.WithLevel(zerologLevel(w.Level)).Str("stage", string(w.Stage)).Str("code", w.Code)
		if w.Field != "" {
			ev = ev.Str("field", w.Field)
		}
		if w.Row > 0 {
			ev = ev.Int("row", w.Row)
		}
		ev.Msg(w.Message)
	}
}

func zerologLevel(l roster.Level) zerolog.Level {
	switch l {
	case roster.LevelInfo:
		return zerolog.InfoLevel
	case roster.LevelWarn:
		return zerolog.WarnLevel
	case roster.LevelError:
		return zerolog.ErrorLevel
	default:
		return zerolog.DebugLevel
	}
}

func (p *Pipeline) recordRun(ctx context.Context, started time.Time, res *Result, runErr error) error {
	warnings, err := json.Marshal(res.Diagnostics.Warnings)
	if err != nil {
		return err
	}

	run := models.PipelineRun{
		SourceURL:       p.config.SourceURL,
		TargetTable:     p.config.TableName,
		Status:          models.RunStatusSucceeded,
		Stage:           string(res.Stage),
		MappedColumns:   res.Mapped,
		ExpectedColumns: res.Expected,
		RecordCount:     res.Records,
		WarningCount:    res.Diagnostics.Len(),
		Warnings:        warnings,
		StartedAt:       started,
		FinishedAt:      time.Now().UTC(),
	}
	if runErr != nil {
		run.Status = models.RunStatusFailed
		run.Error = runErr.Error()
	}

	if err := gorm.G[models.PipelineRun](p.DB).Create(ctx, &run); err != nil {
		return err
	}
	res.RunID = run.ID
	return nil
}

// Terminal reports whether err is a data problem with the page that a retry
// of the same page cannot fix.
func Terminal(err error) bool {
	return errors.Is(err, roster.ErrNotFound) || errors.Is(err, roster.ErrAbort) || errors.Is(err, roster.ErrEmptyInput)
}
