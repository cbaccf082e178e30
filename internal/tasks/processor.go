package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"roster/internal/config"
	"roster/internal/pipeline"
)

// TaskProcessor holds dependencies for our task handlers
type TaskProcessor struct {
	DB       *gorm.DB
	config   *config.Config
	pipeline *pipeline.Pipeline
}

// NewTaskProcessor creates a new TaskProcessor
func NewTaskProcessor(db *gorm.DB, config *config.Config) *TaskProcessor {
	return &TaskProcessor{
		DB:       db,
		config:   config,
		pipeline: pipeline.New(db, config),
	}
}

// HandleRefreshRosterTask runs the roster pipeline once. Page problems that a
// retry cannot fix skip asynq's retries; fetch and storage errors are retried.
func (p *TaskProcessor) HandleRefreshRosterTask(ctx context.Context, t *asynq.Task) error {
	var payload RefreshRosterPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", asynq.SkipRetry)
	}

	log.Info().Str("trigger", payload.Trigger).Msg("refreshing roster")

	res, err := p.pipeline.Run(ctx)
	if err != nil {
		if pipeline.Terminal(err) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}

	log.Info().Uint("run_id", res.RunID).Int("records", res.Records).Msg("roster refreshed")
	return nil
}

func (p *TaskProcessor) GetPipeline() *pipeline.Pipeline {
	return p.pipeline
}
