package rebuild

import (
	"github.com/bkodra/rebuild-tui/internal/model"
)

// Job is one queued rebuild tracked by a session. It is owned
// exclusively by the State it lives in and only ever mutated by the
// reducer goroutine.
type Job struct {
	Spec   model.JobSpec
	Status model.JobStatus
	Output *OutputBuffer
	Err    error
}

// State is one rebuild session: the ordered job list plus every piece of
// view state for the output pane. A brand-new session replaces the whole
// State; queueing more jobs into a running session appends to it.
type State struct {
	Jobs              []*Job
	ActiveIdx         int
	WorkQueueSelected int

	ScrollY    int
	ScrollX    int
	AutoScroll bool

	// Viewport dimensions are sampled every render frame and stored here
	// so scroll adjustments outside the render pass use current values.
	ViewportHeight int
	ViewportWidth  int

	Finished    bool
	OutputLimit int

	Search *Search
}

// NewState materializes specs into pending jobs.
func NewState(specs []model.JobSpec, outputLimit int) *State {
	s := &State{
		AutoScroll:  true,
		OutputLimit: outputLimit,
	}
	s.Append(specs)
	return s
}

// Append adds pending jobs to the session and returns the index of the
// first new job. Already-queued jobs are untouched.
func (s *State) Append(specs []model.JobSpec) int {
	start := len(s.Jobs)
	for _, spec := range specs {
		s.Jobs = append(s.Jobs, &Job{
			Spec:   spec,
			Status: model.StatusPending,
			Output: NewOutputBuffer(s.OutputLimit),
		})
	}
	s.Finished = false
	return start
}

// ActiveJob returns the job shown in the output pane, or nil for an
// empty session.
func (s *State) ActiveJob() *Job {
	if s.ActiveIdx < 0 || s.ActiveIdx >= len(s.Jobs) {
		return nil
	}
	return s.Jobs[s.ActiveIdx]
}

// SetActive switches the displayed job and resets scroll and search,
// which are both meaningless across a job switch.
func (s *State) SetActive(idx int) {
	if idx < 0 || idx >= len(s.Jobs) {
		return
	}
	s.ActiveIdx = idx
	s.WorkQueueSelected = idx
	s.ScrollY = 0
	s.ScrollX = 0
	s.AutoScroll = true
	s.Search = nil
}

// MarkStarted records the Pending -> Running transition and pulls the
// view onto the newly running job.
func (s *State) MarkStarted(idx int) {
	if idx < 0 || idx >= len(s.Jobs) {
		return
	}
	job := s.Jobs[idx]
	if job.Status != model.StatusPending {
		return
	}
	job.Status = model.StatusRunning
	s.SetActive(idx)
}

// AppendOutput stores one line of build output. When the viewer is
// pinned to the tail of the active job the scroll follows, and search
// results are recomputed against the mutated buffer.
func (s *State) AppendOutput(idx int, line model.OutputLine) {
	if idx < 0 || idx >= len(s.Jobs) {
		return
	}
	job := s.Jobs[idx]

	atBottom := s.ScrollY >= MaxScrollY(job.Output.Len(), s.ViewportHeight)
	job.Output.Append(line)

	if idx == s.ActiveIdx {
		if s.AutoScroll || atBottom {
			s.ScrollY = MaxScrollY(job.Output.Len(), s.ViewportHeight)
		}
		s.RefreshSearch()
	}
}

// MarkFinished records a terminal status. Terminal statuses are never
// overwritten.
func (s *State) MarkFinished(idx int, err error) {
	if idx < 0 || idx >= len(s.Jobs) {
		return
	}
	job := s.Jobs[idx]
	if job.Status.Terminal() {
		return
	}
	if err != nil {
		job.Status = model.StatusFailed
		job.Err = err
	} else {
		job.Status = model.StatusSucceeded
	}
	if idx == s.ActiveIdx {
		s.RefreshSearch()
	}
}

// RefreshSearch recomputes matches against the active job's current
// output. Stale match offsets must never survive a buffer mutation.
func (s *State) RefreshSearch() {
	if s.Search == nil {
		return
	}
	job := s.ActiveJob()
	if job == nil {
		return
	}
	s.Search.Recompute(job.Output, s.ScrollY)
}

// SetViewport stores the area sampled at render time and re-clamps the
// vertical offset against it.
func (s *State) SetViewport(width, height int) {
	s.ViewportWidth = width
	s.ViewportHeight = height
	if job := s.ActiveJob(); job != nil {
		if s.AutoScroll {
			s.ScrollY = MaxScrollY(job.Output.Len(), height)
		} else {
			s.ScrollY = ClampY(s.ScrollY, job.Output.Len(), height)
		}
	}
}

// ScrollBy moves the vertical offset and disables auto-scroll; manual
// movement means the viewer wants to stay put.
func (s *State) ScrollBy(delta int) {
	job := s.ActiveJob()
	if job == nil {
		return
	}
	s.ScrollY = ClampY(s.ScrollY+delta, job.Output.Len(), s.ViewportHeight)
	s.AutoScroll = false
}

// ScrollTop jumps to the first retained line.
func (s *State) ScrollTop() {
	s.ScrollY = 0
	s.AutoScroll = false
}

// ScrollBottom jumps to the tail and re-enables auto-scroll.
func (s *State) ScrollBottom() {
	if job := s.ActiveJob(); job != nil {
		s.ScrollY = MaxScrollY(job.Output.Len(), s.ViewportHeight)
	}
	s.AutoScroll = true
}

// ScrollXBy moves the horizontal offset, clamped against the widest
// line currently visible.
func (s *State) ScrollXBy(delta, maxLineWidth int) {
	s.ScrollX = ClampX(s.ScrollX+delta, maxLineWidth, s.ViewportWidth)
}

// RunningJob returns the index of the running job, or -1.
func (s *State) RunningJob() int {
	for i, job := range s.Jobs {
		if job.Status == model.StatusRunning {
			return i
		}
	}
	return -1
}

// AllTerminal reports whether every job has reached a terminal status.
// A queue-drained event only ends the session when this holds; jobs
// queued between the drain finishing and the event being applied keep
// the session alive.
func (s *State) AllTerminal() bool {
	for _, job := range s.Jobs {
		if !job.Status.Terminal() {
			return false
		}
	}
	return true
}

// Counts returns how many jobs succeeded and failed so far.
func (s *State) Counts() (succeeded, failed int) {
	for _, job := range s.Jobs {
		switch job.Status {
		case model.StatusSucceeded:
			succeeded++
		case model.StatusFailed:
			failed++
		}
	}
	return succeeded, failed
}
