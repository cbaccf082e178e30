package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeTaskRefreshRoster = "task:refresh_roster"
)

// RefreshRosterPayload is the data a refresh job carries
type RefreshRosterPayload struct {
	// Trigger says what asked for the refresh, e.g. "schedule".
	Trigger string `json:"trigger"`
}

// NewRefreshRosterTask creates a new task for asynq
func NewRefreshRosterTask(trigger string) (*asynq.Task, error) {
	payloadBytes, err := json.Marshal(RefreshRosterPayload{Trigger: trigger})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(TypeTaskRefreshRoster, payloadBytes, asynq.MaxRetry(3), asynq.Unique(time.Hour)), nil
}
