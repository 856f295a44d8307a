package domain

import (
	"time"

	"github.com/google/uuid"
)

// RunOutcome states why a loop run terminated.
type RunOutcome string

// Possible run outcomes. RunCompleted means the pending set drained to
// empty; RunCeilingReached means the iteration ceiling fired first.
const (
	RunCompleted      RunOutcome = "completed"
	RunCeilingReached RunOutcome = "ceiling_reached"
)

// RunSummary is produced once per loop invocation. It is ephemeral:
// persisting it (for example to the agent_runs table) is the caller's
// concern, not the loop's.
type RunSummary struct {
	RunID      uuid.UUID  `json:"run_id"`
	Loops      int        `json:"loops"`
	Processed  int        `json:"processed"`
	Failed     int        `json:"failed"`
	Outcome    RunOutcome `json:"outcome"`
	StartedAt  time.Time  `json:"started_at"`
	FinishedAt time.Time  `json:"finished_at"`
}
