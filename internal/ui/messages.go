package ui

import (
	"time"

	"github.com/bkodra/rebuild-tui/internal/model"
)

// Discovery messages

type TargetsLoadedMsg struct {
	Targets []model.Target
	Err     error
}

// Worker lifecycle messages. Index refers to the job's position in the
// session's job list. For any one job, every JobOutputMsg is enqueued
// before its JobFinishedMsg.

type JobStartedMsg struct {
	Index int
}

type JobOutputMsg struct {
	Index int
	Line  model.OutputLine
}

type JobFinishedMsg struct {
	Index int
	Err   error // nil means the build succeeded
}

type AllJobsDoneMsg struct{}

// TickMsg drives the spinner and redraw cadence.
type TickMsg time.Time

// StatusMsg updates the transient status bar text.
type StatusMsg struct {
	Text string
}
