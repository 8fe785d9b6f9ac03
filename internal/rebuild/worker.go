package rebuild

import (
	"context"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/bkodra/rebuild-tui/internal/execx"
	"github.com/bkodra/rebuild-tui/internal/logging"
	"github.com/bkodra/rebuild-tui/internal/model"
	"github.com/bkodra/rebuild-tui/internal/ui"
)

// QueuedJob pairs a spec with the job's index in the session's job list.
// The index is assigned by the reducer when the job is materialized and
// is what every worker event refers back to.
type QueuedJob struct {
	Index int
	Spec  model.JobSpec
}

// Worker runs queued builds strictly one at a time on a background
// goroutine and reports everything through its event channel. It never
// touches UI state; the reducer is the only consumer of the events.
type Worker struct {
	runner    execx.Runner
	dockerBin string
	noCache   bool
	session   string
	events    chan tea.Msg

	mu      sync.Mutex
	queue   []QueuedJob
	running bool
}

func NewWorker(runner execx.Runner, dockerBin string, noCache bool) *Worker {
	return &Worker{
		runner:    runner,
		dockerBin: dockerBin,
		noCache:   noCache,
		session:   uuid.NewString(),
		events:    make(chan tea.Msg, 64),
	}
}

// Events is the channel the reducer pumps worker messages from.
func (w *Worker) Events() <-chan tea.Msg {
	return w.events
}

// Session returns the session identifier used in logs.
func (w *Worker) Session() string {
	return w.session
}

// Enqueue appends jobs to the queue. If no drain goroutine is running
// one is started; an in-flight drain simply keeps going and picks the
// new jobs up in order, without restarting finished ones.
func (w *Worker) Enqueue(jobs []QueuedJob) {
	if len(jobs) == 0 {
		return
	}
	w.mu.Lock()
	w.queue = append(w.queue, jobs...)
	start := !w.running
	if start {
		w.running = true
	}
	w.mu.Unlock()

	if start {
		go w.drain()
	}
}

func (w *Worker) drain() {
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			w.running = false
			w.mu.Unlock()
			w.events <- ui.AllJobsDoneMsg{}
			return
		}
		job := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()

		w.runJob(job)
	}
}

func (w *Worker) runJob(job QueuedJob) {
	log := logging.Logger.With().
		Str("session", w.session).
		Int("job", job.Index).
		Str("image", job.Spec.Image).
		Logger()

	w.events <- ui.JobStartedMsg{Index: job.Index}

	cmd, err := ResolveCommand(job.Spec, w.dockerBin, w.noCache)
	if err != nil {
		// A missing build file fails this job; the queue keeps going.
		log.Warn().Err(err).Msg("build file resolution failed")
		w.events <- ui.JobFinishedMsg{Index: job.Index, Err: err}
		return
	}

	log.Info().Str("cmd", cmd.String()).Msg("build started")

	// The runner joins both stream readers before returning, so every
	// output event for this job is enqueued before its finished event.
	runErr := w.runner.Run(context.Background(), cmd.Dir, cmd.Name, cmd.Args,
		func(line string) {
			w.events <- ui.JobOutputMsg{Index: job.Index, Line: model.OutputLine{Stream: model.Stdout, Text: line}}
		},
		func(line string) {
			w.events <- ui.JobOutputMsg{Index: job.Index, Line: model.OutputLine{Stream: model.Stderr, Text: line}}
		},
	)

	if runErr != nil {
		log.Warn().Err(runErr).Msg("build failed")
	} else {
		log.Info().Msg("build succeeded")
	}
	w.events <- ui.JobFinishedMsg{Index: job.Index, Err: runErr}
}
