package rebuild

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkodra/rebuild-tui/internal/execx"
	"github.com/bkodra/rebuild-tui/internal/model"
	"github.com/bkodra/rebuild-tui/internal/ui"
)

// fakeRunner scripts per-invocation output lines and an exit error, and
// can block on a gate so tests can interleave Enqueue calls.
type fakeRunner struct {
	mu    sync.Mutex
	calls []Command
	out   [][]string
	errs  []error
	gate  chan struct{}
}

func (f *fakeRunner) Run(_ context.Context, dir, name string, args []string, onStdout, onStderr execx.LineFunc) error {
	f.mu.Lock()
	n := len(f.calls)
	f.calls = append(f.calls, Command{Name: name, Args: args, Dir: dir})
	f.mu.Unlock()

	if f.gate != nil {
		<-f.gate
	}
	if n < len(f.out) {
		for _, line := range f.out[n] {
			onStdout(line)
		}
	}
	if n < len(f.errs) {
		return f.errs[n]
	}
	return nil
}

func dockerfileSpec(t *testing.T, image string) model.JobSpec {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "Dockerfile")
	require.NoError(t, os.WriteFile(path, []byte("FROM alpine\n"), 0o644))
	return model.JobSpec{Kind: model.KindDockerfile, Image: image, EntryPath: path, SourceDir: dir}
}

func collect(t *testing.T, w *Worker) []tea.Msg {
	t.Helper()
	var msgs []tea.Msg
	for {
		select {
		case msg := <-w.Events():
			msgs = append(msgs, msg)
			if _, done := msg.(ui.AllJobsDoneMsg); done {
				return msgs
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for worker events")
		}
	}
}

func TestWorkerRunsJobsSequentially(t *testing.T) {
	runner := &fakeRunner{
		out:  [][]string{{"a1", "a2"}, {"b1"}},
		errs: []error{nil, nil},
	}
	w := NewWorker(runner, "docker", false)
	w.Enqueue([]QueuedJob{
		{Index: 0, Spec: dockerfileSpec(t, "img-a")},
		{Index: 1, Spec: dockerfileSpec(t, "img-b")},
	})

	msgs := collect(t, w)

	want := []tea.Msg{
		ui.JobStartedMsg{Index: 0},
		ui.JobOutputMsg{Index: 0, Line: model.OutputLine{Stream: model.Stdout, Text: "a1"}},
		ui.JobOutputMsg{Index: 0, Line: model.OutputLine{Stream: model.Stdout, Text: "a2"}},
		ui.JobFinishedMsg{Index: 0},
		ui.JobStartedMsg{Index: 1},
		ui.JobOutputMsg{Index: 1, Line: model.OutputLine{Stream: model.Stdout, Text: "b1"}},
		ui.JobFinishedMsg{Index: 1},
		ui.AllJobsDoneMsg{},
	}
	assert.Equal(t, want, msgs)
}

func TestWorkerMissingBuildFileFailsJobAndContinues(t *testing.T) {
	runner := &fakeRunner{out: [][]string{{"ok"}}}
	w := NewWorker(runner, "docker", false)
	w.Enqueue([]QueuedJob{
		{Index: 0, Spec: model.JobSpec{Kind: model.KindDockerfile, Image: "gone", EntryPath: "/nonexistent/Dockerfile"}},
		{Index: 1, Spec: dockerfileSpec(t, "img")},
	})

	msgs := collect(t, w)

	// Job 0 fails at resolution without invoking the runner.
	fin, ok := msgs[1].(ui.JobFinishedMsg)
	require.True(t, ok, "second event should be the failed finish, got %T", msgs[1])
	assert.Equal(t, 0, fin.Index)
	assert.Error(t, fin.Err)

	// Job 1 still ran.
	require.Len(t, runner.calls, 1)
	_, done := msgs[len(msgs)-1].(ui.AllJobsDoneMsg)
	assert.True(t, done)
}

func TestWorkerFailureCarriesError(t *testing.T) {
	runner := &fakeRunner{errs: []error{errors.New("exit status 1")}}
	w := NewWorker(runner, "docker", false)
	w.Enqueue([]QueuedJob{{Index: 0, Spec: dockerfileSpec(t, "img")}})

	msgs := collect(t, w)

	fin, ok := msgs[1].(ui.JobFinishedMsg)
	require.True(t, ok)
	assert.EqualError(t, fin.Err, "exit status 1")
}

func TestWorkerEnqueueWhileRunning(t *testing.T) {
	gate := make(chan struct{})
	runner := &fakeRunner{gate: gate}
	w := NewWorker(runner, "docker", false)

	w.Enqueue([]QueuedJob{{Index: 0, Spec: dockerfileSpec(t, "one")}})
	// First job is now blocked inside the runner; queue more.
	w.Enqueue([]QueuedJob{{Index: 1, Spec: dockerfileSpec(t, "two")}})
	close(gate)

	msgs := collect(t, w)

	var started []int
	for _, msg := range msgs {
		if s, ok := msg.(ui.JobStartedMsg); ok {
			started = append(started, s.Index)
		}
	}
	assert.Equal(t, []int{0, 1}, started)
	assert.Len(t, runner.calls, 2, "first job must not be re-run")
}

func TestWorkerForwardsNoCache(t *testing.T) {
	runner := &fakeRunner{}
	w := NewWorker(runner, "docker", true)
	w.Enqueue([]QueuedJob{{Index: 0, Spec: dockerfileSpec(t, "img")}})
	collect(t, w)

	require.Len(t, runner.calls, 1)
	assert.Contains(t, runner.calls[0].Args, "--no-cache")
}
