package tui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bkodra/rebuild-tui/internal/config"
	"github.com/bkodra/rebuild-tui/internal/discover"
	"github.com/bkodra/rebuild-tui/internal/execx"
	"github.com/bkodra/rebuild-tui/internal/model"
	"github.com/bkodra/rebuild-tui/internal/rebuild"
	"github.com/bkodra/rebuild-tui/internal/tui/confirm"
	"github.com/bkodra/rebuild-tui/internal/tui/dashboard"
	"github.com/bkodra/rebuild-tui/internal/tui/exportdialog"
	"github.com/bkodra/rebuild-tui/internal/tui/nameedit"
	"github.com/bkodra/rebuild-tui/internal/tui/rebuildview"
	"github.com/bkodra/rebuild-tui/internal/tui/workqueue"
	"github.com/bkodra/rebuild-tui/internal/ui"
)

type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenRebuilding
)

// Modal is the overlay contract: at most one modal is open at a time,
// it owns the keyboard while open, and reports when it should close.
// Results travel back as messages emitted from the returned command.
type Modal interface {
	Update(msg tea.Msg) (tea.Cmd, bool)
	View(width, height int) string
}

const tickInterval = 250 * time.Millisecond

type App struct {
	cfg    config.Config
	runner execx.Runner

	dashboardView dashboard.Model
	spin          spinner.Model
	searchInput   textinput.Model

	// worker and state are created together per rebuild session. All
	// state mutation happens here, on the program goroutine; the worker
	// only ever talks through its event channel.
	worker *rebuild.Worker
	state  *rebuild.State

	modal Modal

	// exportIdx is the job the export dialog was opened for; a later
	// auto-activation of another job must not redirect the result.
	exportIdx int

	screen   Screen
	width    int
	height   int
	status   string
	showHelp bool
}

func NewApp(cfg config.Config, runner execx.Runner) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Prompt = ""

	return App{
		cfg:           cfg,
		runner:        runner,
		dashboardView: dashboard.New(),
		spin:          sp,
		searchInput:   ti,
		screen:        ScreenDashboard,
		status:        "Scanning for build targets...",
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(a.scanTargets(), a.tick(), a.spin.Tick)
}

// --- Commands ---

func (a App) scanTargets() tea.Cmd {
	root := a.cfg.ScanRoot
	depth := a.cfg.MaxDepth
	return func() tea.Msg {
		targets, err := discover.Scan(root, depth)
		return ui.TargetsLoadedMsg{Targets: targets, Err: err}
	}
}

func (a App) tick() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return ui.TickMsg(t)
	})
}

// waitForWorker pumps one event off the worker channel. It is re-armed
// after every worker-origin message so the two message sources stay
// merged into the single update loop.
func waitForWorker(ch <-chan tea.Msg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}

// --- Update ---

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.propagateSize()
		return &a, nil

	case ui.TickMsg:
		return &a, a.tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return &a, cmd

	case ui.StatusMsg:
		a.status = msg.Text
		return &a, nil

	case ui.TargetsLoadedMsg:
		if msg.Err != nil {
			a.status = "Scan failed: " + msg.Err.Error()
		} else {
			a.status = fmt.Sprintf("Found %d build targets", len(msg.Targets))
		}
		var cmd tea.Cmd
		a.dashboardView, cmd = a.dashboardView.Update(msg)
		return &a, cmd

	// Modal results arrive after the modal closed itself.
	case confirm.ResultMsg:
		if msg.Confirmed {
			cmds = append(cmds, a.enqueueSpecs(msg.Specs))
		}
		return &a, tea.Batch(cmds...)

	case nameedit.AcceptedMsg:
		cmds = append(cmds, a.enqueueSpecs(msg.Specs))
		return &a, tea.Batch(cmds...)

	case workqueue.SelectedMsg:
		if a.state != nil {
			a.state.SetActive(msg.Index)
			a.searchInput.SetValue("")
		}
		return &a, nil

	case exportdialog.ExportedMsg:
		a.status = "Log exported to " + msg.Path
		if a.state != nil {
			a.state.AppendOutput(a.exportIdx, model.OutputLine{
				Stream: model.Stdout,
				Text:   "--- log exported to " + msg.Path + " ---",
			})
		}
		return &a, nil

	// Worker events. A nil worker means no session exists and the
	// message is stale; it is ignored.
	case ui.JobStartedMsg:
		if a.worker == nil {
			return &a, nil
		}
		if a.state != nil {
			a.state.MarkStarted(msg.Index)
			a.searchInput.SetValue("")
			if job := a.state.ActiveJob(); job != nil {
				a.status = "Building " + job.Spec.Image + "..."
			}
		}
		return &a, waitForWorker(a.worker.Events())

	case ui.JobOutputMsg:
		if a.worker == nil {
			return &a, nil
		}
		if a.state != nil {
			a.state.AppendOutput(msg.Index, msg.Line)
		}
		return &a, waitForWorker(a.worker.Events())

	case ui.JobFinishedMsg:
		if a.worker == nil {
			return &a, nil
		}
		if a.state != nil {
			a.state.MarkFinished(msg.Index, msg.Err)
		}
		return &a, waitForWorker(a.worker.Events())

	case ui.AllJobsDoneMsg:
		if a.worker == nil {
			return &a, nil
		}
		// The drain can finish and emit this while more jobs are being
		// queued; in that case it is stale and the extended session is
		// still live. The new drain reports completion in its turn.
		if a.state != nil && a.state.AllTerminal() {
			a.state.Finished = true
			ok, failed := a.state.Counts()
			a.status = fmt.Sprintf("Rebuild finished: %d succeeded, %d failed", ok, failed)
		}
		return &a, waitForWorker(a.worker.Events())

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	// Everything else (list filter internals, textinput blink) goes to
	// the focused component.
	if a.modal != nil {
		cmd, done := a.modal.Update(msg)
		if done {
			a.modal = nil
		}
		return &a, cmd
	}
	if a.screen == ScreenDashboard {
		var cmd tea.Cmd
		a.dashboardView, cmd = a.dashboardView.Update(msg)
		return &a, cmd
	}
	return &a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// An open modal owns the keyboard.
	if a.modal != nil {
		cmd, done := a.modal.Update(msg)
		if done {
			a.modal = nil
		}
		return &a, cmd
	}

	switch a.screen {
	case ScreenRebuilding:
		return a.handleRebuildKey(msg)
	default:
		return a.handleDashboardKey(msg)
	}
}

func (a App) handleDashboardKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// While the list filter prompt is open it gets every key.
	if a.dashboardView.IsFiltering() {
		var cmd tea.Cmd
		a.dashboardView, cmd = a.dashboardView.Update(msg)
		return &a, cmd
	}

	keys := ui.Keys
	switch {
	case key.Matches(msg, keys.Quit):
		return &a, tea.Quit
	case key.Matches(msg, keys.Help):
		a.showHelp = !a.showHelp
		return &a, nil
	case key.Matches(msg, keys.Toggle):
		a.dashboardView.Toggle()
		return &a, nil
	case key.Matches(msg, keys.SelectAll):
		a.dashboardView.CheckAll()
		return &a, nil
	case key.Matches(msg, keys.SelectNone):
		a.dashboardView.CheckNone()
		return &a, nil
	case key.Matches(msg, keys.Refresh):
		a.dashboardView.SetLoading()
		a.status = "Rescanning..."
		return &a, a.scanTargets()
	case key.Matches(msg, keys.Rebuild):
		targets := a.dashboardView.Checked()
		if len(targets) == 0 {
			a.status = "Nothing checked"
			return &a, nil
		}
		specs := make([]model.JobSpec, len(targets))
		for i, t := range targets {
			specs[i] = t.Spec()
		}
		a.modal = confirm.New(specs)
		return &a, nil
	case key.Matches(msg, keys.RebuildByFile):
		targets := a.dashboardView.CheckedDockerfiles()
		if len(targets) == 0 {
			a.status = "No dockerfile rows checked"
			return &a, nil
		}
		entries := make([]nameedit.Entry, len(targets))
		for i, t := range targets {
			name := t.Image
			if name == "" {
				name = discover.DefaultImageName(t.EntryPath, t.SourceDir)
			}
			entries[i] = nameedit.Entry{
				EntryPath: t.EntryPath,
				SourceDir: t.SourceDir,
				Name:      name,
				Cursor:    len(name),
			}
		}
		a.modal = nameedit.New(entries)
		return &a, textinput.Blink
	case key.Matches(msg, keys.Session):
		if a.state != nil {
			a.screen = ScreenRebuilding
			a.propagateSize()
		}
		return &a, nil
	}

	var cmd tea.Cmd
	a.dashboardView, cmd = a.dashboardView.Update(msg)
	return &a, cmd
}

func (a App) handleRebuildKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	st := a.state
	if st == nil {
		a.screen = ScreenDashboard
		return &a, nil
	}

	keys := ui.Keys

	// Search editing grabs the keyboard until committed or cancelled.
	if st.Search != nil && st.Search.Editing {
		switch {
		case key.Matches(msg, keys.Enter):
			if st.Search.Query == "" {
				st.Search = nil
			} else {
				st.Search.Editing = false
				st.RefreshSearch()
				a.jumpToActiveMatch()
			}
			return &a, nil
		case key.Matches(msg, keys.Back):
			st.Search = nil
			return &a, nil
		}
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		st.Search.SetQuery(a.searchInput.Value())
		st.RefreshSearch()
		return &a, cmd
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return &a, tea.Quit
	case key.Matches(msg, keys.Back):
		// Back to the dashboard; the worker and any running build keep
		// going until natural completion.
		a.screen = ScreenDashboard
		return &a, nil
	case key.Matches(msg, keys.Search):
		return a.openSearch(rebuild.Forward)
	case key.Matches(msg, keys.SearchBack):
		return a.openSearch(rebuild.Backward)
	case key.Matches(msg, keys.NextMatch):
		if st.Search != nil {
			st.Search.Next()
			a.jumpToActiveMatch()
		}
		return &a, nil
	case key.Matches(msg, keys.PrevMatch):
		if st.Search != nil {
			st.Search.Prev()
			a.jumpToActiveMatch()
		}
		return &a, nil
	case key.Matches(msg, keys.Up):
		st.ScrollBy(-1)
	case key.Matches(msg, keys.Down):
		st.ScrollBy(1)
	case key.Matches(msg, keys.PageUp):
		st.ScrollBy(-st.ViewportHeight)
	case key.Matches(msg, keys.PageDown):
		st.ScrollBy(st.ViewportHeight)
	case key.Matches(msg, keys.Home):
		st.ScrollTop()
	case key.Matches(msg, keys.End):
		st.ScrollBottom()
	case key.Matches(msg, keys.Left):
		st.ScrollXBy(-rebuild.HStep(st.ViewportWidth), rebuildview.MaxVisibleLineWidth(st))
	case key.Matches(msg, keys.Right):
		st.ScrollXBy(rebuild.HStep(st.ViewportWidth), rebuildview.MaxVisibleLineWidth(st))
	case key.Matches(msg, keys.WorkQueue):
		items := make([]workqueue.Item, len(st.Jobs))
		for i, job := range st.Jobs {
			items[i] = workqueue.Item{
				Image:  job.Spec.Image,
				Status: job.Status.String(),
			}
		}
		a.modal = workqueue.New(items, st.WorkQueueSelected)
	case key.Matches(msg, keys.Export):
		job := st.ActiveJob()
		if job == nil {
			return &a, nil
		}
		a.exportIdx = st.ActiveIdx
		dir := a.cfg.ExportDir
		a.modal = exportdialog.New(job.Spec.Image, time.Now(), func(name string) (string, error) {
			return exportdialog.Export(dir, name, job.Output.Lines())
		})
		return &a, textinput.Blink
	case key.Matches(msg, keys.Yank):
		job := st.ActiveJob()
		if job == nil {
			return &a, nil
		}
		cmd, err := rebuild.ResolveCommand(job.Spec, a.cfg.DockerBin, a.cfg.NoCache)
		if err != nil {
			a.status = err.Error()
			return &a, nil
		}
		if err := clipboard.WriteAll(cmd.String()); err != nil {
			a.status = "Clipboard unavailable: " + err.Error()
		} else {
			a.status = "Build command copied"
		}
	}
	return &a, nil
}

func (a App) openSearch(dir rebuild.Direction) (tea.Model, tea.Cmd) {
	a.state.Search = rebuild.NewSearch(dir)
	a.searchInput.SetValue("")
	a.searchInput.Focus()
	a.propagateSize()
	return &a, textinput.Blink
}

// jumpToActiveMatch recenters the viewport on the active match and
// stops following the tail.
func (a *App) jumpToActiveMatch() {
	st := a.state
	job := st.ActiveJob()
	if job == nil || st.Search == nil || st.Search.Active() == nil {
		return
	}
	st.ScrollY = st.Search.CenterTarget(job.Output.Len(), st.ViewportHeight)
	st.AutoScroll = false
}

// enqueueSpecs materializes specs into jobs. A finished (or absent)
// session is replaced wholesale; an in-flight one is extended.
func (a *App) enqueueSpecs(specs []model.JobSpec) tea.Cmd {
	if len(specs) == 0 {
		return nil
	}

	var start int
	fresh := a.state == nil || a.state.Finished
	if fresh {
		a.state = rebuild.NewState(specs, a.cfg.OutputLimit)
		a.worker = rebuild.NewWorker(a.runner, a.cfg.DockerBin, a.cfg.NoCache)
		start = 0
	} else {
		start = a.state.Append(specs)
	}

	queued := make([]rebuild.QueuedJob, len(specs))
	for i, spec := range specs {
		queued[i] = rebuild.QueuedJob{Index: start + i, Spec: spec}
	}
	a.worker.Enqueue(queued)

	a.screen = ScreenRebuilding
	a.propagateSize()
	a.status = fmt.Sprintf("Queued %d job(s)", len(specs))

	if fresh {
		return waitForWorker(a.worker.Events())
	}
	return nil
}

func (a *App) propagateSize() {
	body := a.height - 2 // header and status bar
	if body < 1 {
		body = 1
	}
	a.dashboardView.SetSize(a.width, body)
	if a.state != nil {
		searchOpen := a.state.Search != nil
		w, h := rebuildview.ContentSize(a.width, body, searchOpen)
		a.state.SetViewport(w, h)
	}
}

// --- View ---

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	// Terminal size is sampled once per frame and pushed into the
	// session state before anything is laid out.
	a.propagateSize()

	body := ""
	switch {
	case a.modal != nil:
		body = a.modal.View(a.width, a.bodyHeight())
	case a.screen == ScreenRebuilding && a.state != nil:
		body = rebuildview.View(a.state, a.spin.View(), a.searchInput.View(), a.width, a.bodyHeight())
	default:
		body = a.dashboardView.View()
	}

	return RenderHeader(a.cfg.ScanRoot, a.sessionSummary(), a.width) + "\n" +
		body + "\n" +
		RenderStatusBar(a.status, a.hints(), a.width)
}

func (a App) bodyHeight() int {
	h := a.height - 2
	if h < 1 {
		h = 1
	}
	return h
}

func (a App) sessionSummary() string {
	if a.state == nil {
		return ""
	}
	ok, failed := a.state.Counts()
	return fmt.Sprintf("jobs %d  ok %d  failed %d", len(a.state.Jobs), ok, failed)
}

func (a App) hints() string {
	if a.screen == ScreenRebuilding {
		return "j/k:scroll  /:search  w:queue  e:export  esc:back  q:quit"
	}
	if a.showHelp {
		return "space:check  a/A:all/none  r:rebuild  d:by dockerfile  f:filter  R:rescan  tab:session  q:quit"
	}
	return "space:check  r:rebuild  ?:help  q:quit"
}
