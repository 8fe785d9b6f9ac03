package tui

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bkodra/rebuild-tui/internal/config"
	"github.com/bkodra/rebuild-tui/internal/execx"
	"github.com/bkodra/rebuild-tui/internal/model"
	"github.com/bkodra/rebuild-tui/internal/tui/confirm"
	"github.com/bkodra/rebuild-tui/internal/tui/exportdialog"
	"github.com/bkodra/rebuild-tui/internal/tui/workqueue"
	"github.com/bkodra/rebuild-tui/internal/ui"
)

// scriptedRunner replays per-invocation stdout lines and exit errors. An
// optional gate blocks every invocation until the test releases it.
type scriptedRunner struct {
	mu   sync.Mutex
	n    int
	out  [][]string
	errs []error
	gate chan struct{}
}

func (r *scriptedRunner) Run(_ context.Context, _, _ string, _ []string, onStdout, _ execx.LineFunc) error {
	r.mu.Lock()
	n := r.n
	r.n++
	r.mu.Unlock()

	if r.gate != nil {
		<-r.gate
	}
	if n < len(r.out) {
		for _, line := range r.out[n] {
			onStdout(line)
		}
	}
	if n < len(r.errs) {
		return r.errs[n]
	}
	return nil
}

func testApp(runner execx.Runner) *App {
	app := NewApp(config.Config{
		ScanRoot:    ".",
		DockerBin:   "docker",
		OutputLimit: 100,
	}, runner)
	m, _ := app.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m.(*App)
}

func dockerfileSpec(t *testing.T, image string) model.JobSpec {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "Dockerfile")
	require.NoError(t, os.WriteFile(path, []byte("FROM alpine\n"), 0o644))
	return model.JobSpec{Kind: model.KindDockerfile, Image: image, EntryPath: path, SourceDir: dir}
}

// drainSession feeds worker events through Update, one at a time, until
// the session reports completion. The commands Update returns are not
// executed so the test stays the only reader of the event channel.
func drainSession(t *testing.T, app *App, check func(app *App, msg tea.Msg)) *App {
	t.Helper()
	for {
		select {
		case msg := <-app.worker.Events():
			m, _ := app.Update(msg)
			app = m.(*App)
			if check != nil {
				check(app, msg)
			}
			if _, done := msg.(ui.AllJobsDoneMsg); done {
				return app
			}
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for worker events")
		}
	}
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestConfirmedRebuildAppliesOutputBeforeFinished(t *testing.T) {
	runner := &scriptedRunner{out: [][]string{{"step 1", "step 2"}}}
	app := testApp(runner)

	m, _ := app.Update(confirm.ResultMsg{Confirmed: true, Specs: []model.JobSpec{dockerfileSpec(t, "web")}})
	app = m.(*App)
	require.NotNil(t, app.state)
	require.NotNil(t, app.worker)
	assert.Equal(t, ScreenRebuilding, app.screen)

	app = drainSession(t, app, func(app *App, msg tea.Msg) {
		if fin, ok := msg.(ui.JobFinishedMsg); ok {
			// By the time the finish lands, every output line for the
			// job must already be in its buffer.
			assert.Equal(t, 2, app.state.Jobs[fin.Index].Output.Len())
		}
	})

	require.Len(t, app.state.Jobs, 1)
	assert.Equal(t, model.StatusSucceeded, app.state.Jobs[0].Status)
	assert.True(t, app.state.Finished)
	assert.Equal(t, "step 1", app.state.Jobs[0].Output.Line(0).Text)
}

func TestUnconfirmedRebuildStartsNothing(t *testing.T) {
	app := testApp(&scriptedRunner{})
	m, _ := app.Update(confirm.ResultMsg{Confirmed: false, Specs: []model.JobSpec{dockerfileSpec(t, "web")}})
	app = m.(*App)
	assert.Nil(t, app.state)
	assert.Nil(t, app.worker)
	assert.Equal(t, ScreenDashboard, app.screen)
}

func TestEnqueueWhileRunningExtendsSession(t *testing.T) {
	runner := &scriptedRunner{
		out:  [][]string{{"a"}, {"b"}},
		gate: make(chan struct{}),
	}
	app := testApp(runner)

	m, _ := app.Update(confirm.ResultMsg{Confirmed: true, Specs: []model.JobSpec{dockerfileSpec(t, "one")}})
	app = m.(*App)

	// The first job is gated inside Run; a second confirm must append to
	// the live session instead of replacing it.
	m, _ = app.Update(confirm.ResultMsg{Confirmed: true, Specs: []model.JobSpec{dockerfileSpec(t, "two")}})
	app = m.(*App)
	require.Len(t, app.state.Jobs, 2)
	assert.Equal(t, "one", app.state.Jobs[0].Spec.Image)
	assert.Equal(t, "two", app.state.Jobs[1].Spec.Image)

	close(runner.gate)
	app = drainSession(t, app, nil)

	assert.Equal(t, model.StatusSucceeded, app.state.Jobs[0].Status)
	assert.Equal(t, model.StatusSucceeded, app.state.Jobs[1].Status)
	assert.Equal(t, "a", app.state.Jobs[0].Output.Line(0).Text)
	assert.Equal(t, "b", app.state.Jobs[1].Output.Line(0).Text)
}

func TestEnqueueAfterFinishedReplacesSession(t *testing.T) {
	runner := &scriptedRunner{out: [][]string{{"old"}, {"new"}}}
	app := testApp(runner)

	m, _ := app.Update(confirm.ResultMsg{Confirmed: true, Specs: []model.JobSpec{dockerfileSpec(t, "one")}})
	app = drainSession(t, m.(*App), nil)
	require.True(t, app.state.Finished)
	oldState := app.state

	m, _ = app.Update(confirm.ResultMsg{Confirmed: true, Specs: []model.JobSpec{dockerfileSpec(t, "two")}})
	app = m.(*App)
	require.NotSame(t, oldState, app.state)
	require.Len(t, app.state.Jobs, 1)
	assert.Equal(t, "two", app.state.Jobs[0].Spec.Image)

	app = drainSession(t, app, nil)
	assert.Equal(t, "new", app.state.Jobs[0].Output.Line(0).Text)
}

func TestQueueDrainedEventDoesNotEndExtendedSession(t *testing.T) {
	runner := &scriptedRunner{out: [][]string{{"a"}, {"b"}, {"c"}}}
	app := testApp(runner)

	m, _ := app.Update(confirm.ResultMsg{Confirmed: true, Specs: []model.JobSpec{dockerfileSpec(t, "one")}})
	app = m.(*App)

	// Apply events up to the first job's finish; hold back the queue-
	// drained event already sitting in the channel buffer.
	var drained tea.Msg
	for drained == nil {
		select {
		case msg := <-app.worker.Events():
			if _, ok := msg.(ui.AllJobsDoneMsg); ok {
				drained = msg
				break
			}
			m, _ := app.Update(msg)
			app = m.(*App)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for worker events")
		}
	}
	require.Equal(t, model.StatusSucceeded, app.state.Jobs[0].Status)

	// The operator queues more work before the drained event lands.
	m, _ = app.Update(confirm.ResultMsg{Confirmed: true, Specs: []model.JobSpec{dockerfileSpec(t, "two")}})
	app = m.(*App)
	oldState := app.state
	require.Len(t, app.state.Jobs, 2)

	// The held event is stale now: a job is still pending, so it must
	// not end the session.
	m, _ = app.Update(drained)
	app = m.(*App)
	assert.False(t, app.state.Finished)

	// And a further confirm extends the live session instead of
	// replacing it.
	m, _ = app.Update(confirm.ResultMsg{Confirmed: true, Specs: []model.JobSpec{dockerfileSpec(t, "three")}})
	app = m.(*App)
	require.Same(t, oldState, app.state)
	require.Len(t, app.state.Jobs, 3)

	for !app.state.Finished {
		select {
		case msg := <-app.worker.Events():
			m, _ := app.Update(msg)
			app = m.(*App)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for worker events")
		}
	}
	for _, job := range app.state.Jobs {
		assert.Equal(t, model.StatusSucceeded, job.Status)
	}
}

func TestFailedJobDoesNotStopQueue(t *testing.T) {
	runner := &scriptedRunner{
		out:  [][]string{{"boom"}, {"fine"}},
		errs: []error{assert.AnError, nil},
	}
	app := testApp(runner)

	specs := []model.JobSpec{dockerfileSpec(t, "bad"), dockerfileSpec(t, "good")}
	m, _ := app.Update(confirm.ResultMsg{Confirmed: true, Specs: specs})
	app = drainSession(t, m.(*App), nil)

	assert.Equal(t, model.StatusFailed, app.state.Jobs[0].Status)
	assert.Equal(t, model.StatusSucceeded, app.state.Jobs[1].Status)
	ok, failed := app.state.Counts()
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, failed)
}

func TestStaleWorkerMessagesAreIgnored(t *testing.T) {
	app := testApp(&scriptedRunner{})

	for _, msg := range []tea.Msg{
		ui.JobStartedMsg{Index: 0},
		ui.JobOutputMsg{Index: 0, Line: model.OutputLine{Text: "x"}},
		ui.JobFinishedMsg{Index: 0},
		ui.AllJobsDoneMsg{},
		workqueue.SelectedMsg{Index: 3},
	} {
		m, cmd := app.Update(msg)
		app = m.(*App)
		assert.Nil(t, cmd)
	}
	assert.Nil(t, app.state)
}

func TestWorkQueueModalOwnsKeyboardAndSelects(t *testing.T) {
	runner := &scriptedRunner{out: [][]string{{"a"}, {"b"}}}
	app := testApp(runner)

	specs := []model.JobSpec{dockerfileSpec(t, "one"), dockerfileSpec(t, "two")}
	m, _ := app.Update(confirm.ResultMsg{Confirmed: true, Specs: specs})
	app = drainSession(t, m.(*App), nil)

	m, _ = app.Update(keyMsg("w"))
	app = m.(*App)
	require.NotNil(t, app.modal)

	// Keys go to the modal, not the viewport.
	before := app.state.ScrollY
	m, _ = app.Update(keyMsg("j"))
	app = m.(*App)
	assert.Equal(t, before, app.state.ScrollY)

	m, cmd := app.Update(keyMsg("enter"))
	app = m.(*App)
	assert.Nil(t, app.modal)
	require.NotNil(t, cmd)

	m, _ = app.Update(cmd())
	app = m.(*App)
	assert.Equal(t, 1, app.state.ActiveIdx)
}

func TestExportConfirmationLandsInExportedJob(t *testing.T) {
	runner := &scriptedRunner{
		out:  [][]string{{"a"}, {"b"}},
		gate: make(chan struct{}),
	}
	app := testApp(runner)

	specs := []model.JobSpec{dockerfileSpec(t, "one"), dockerfileSpec(t, "two")}
	m, _ := app.Update(confirm.ResultMsg{Confirmed: true, Specs: specs})
	app = m.(*App)

	// First job is running (gated); open the export dialog for it.
	select {
	case msg := <-app.worker.Events():
		require.IsType(t, ui.JobStartedMsg{}, msg)
		mm, _ := app.Update(msg)
		app = mm.(*App)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for worker events")
	}
	m, _ = app.Update(keyMsg("e"))
	app = m.(*App)
	require.NotNil(t, app.modal)

	// The second job starts and auto-activates while the dialog is up.
	// Drain until its output line has been applied, not just until it
	// activates: JobStartedMsg arrives before JobOutputMsg.
	close(runner.gate)
	for app.state.Jobs[1].Output.Len() != 1 {
		select {
		case msg := <-app.worker.Events():
			mm, _ := app.Update(msg)
			app = mm.(*App)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for worker events")
		}
	}

	m, _ = app.Update(exportdialog.ExportedMsg{Path: "p.log"})
	app = m.(*App)

	job := app.state.Jobs[0]
	last := job.Output.Line(job.Output.Len() - 1)
	assert.Contains(t, last.Text, "p.log")
	assert.Equal(t, 1, app.state.Jobs[1].Output.Len(), "active job output untouched")
}

func TestEscReturnsToDashboardWithoutDroppingSession(t *testing.T) {
	runner := &scriptedRunner{out: [][]string{{"a"}}}
	app := testApp(runner)

	m, _ := app.Update(confirm.ResultMsg{Confirmed: true, Specs: []model.JobSpec{dockerfileSpec(t, "one")}})
	app = drainSession(t, m.(*App), nil)

	m, _ = app.Update(keyMsg("esc"))
	app = m.(*App)
	assert.Equal(t, ScreenDashboard, app.screen)
	require.NotNil(t, app.state)

	// Tab re-opens the existing session.
	m, _ = app.Update(tea.KeyMsg{Type: tea.KeyTab})
	app = m.(*App)
	assert.Equal(t, ScreenRebuilding, app.screen)
	assert.Equal(t, model.StatusSucceeded, app.state.Jobs[0].Status)
}
