package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/convolens/internal/config"
	"github.com/jask/convolens/internal/database/repository"
	"github.com/jask/convolens/internal/focusfeed"
	"github.com/jask/convolens/internal/service"
	"github.com/jask/convolens/internal/viewsync"
)

// Services are the data collaborators of the viewer.
type Services struct {
	Transcripts *service.TranscriptService
	Importer    *service.ImportService
}

// Options configures New.
type Options struct {
	Config   config.Config
	Services Services
	Logger   *slog.Logger
	// Clock defaults to a real clock whose callbacks are delivered as
	// messages.
	Clock viewsync.Clock
	// Feed, when set, receives every focus change.
	Feed *focusfeed.Server
	// ConversationID selects the first conversation shown.
	ConversationID string
	// WatchPath is a transcript file re-imported whenever it changes.
	WatchPath string
	// OnOpen is called with each conversation shown.
	OnOpen func(conversationID string)
}

type searchState struct {
	active  bool
	input   textinput.Model
	matches []service.Match
	sel     int
}

// App is the two-pane conversation viewer.
type App struct {
	ctx    context.Context
	cfg    config.Config
	log    *slog.Logger
	svc    Services
	keys   keyMap
	engine *viewsync.Engine

	loop chan func()
	done chan struct{}

	panes   [2]*Pane
	focused viewsync.Role
	focus   viewsync.FocusState

	convs      []repository.Conversation
	convIdx    int
	wantConv   string
	transcript service.Transcript

	search  searchState
	status  string
	failed  bool
	width   int
	height  int
	feed    *focusfeed.Server
	unwatch func()
	watcher *service.Watcher
	onOpen  func(string)
	closed  bool
}

func New(ctx context.Context, opts Options) (*App, error) {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	a := &App{
		ctx:      ctx,
		cfg:      opts.Config,
		log:      log,
		svc:      opts.Services,
		keys:     defaultKeys(),
		loop:     make(chan func(), 64),
		done:     make(chan struct{}),
		wantConv: opts.ConversationID,
		feed:     opts.Feed,
		onOpen:   opts.OnOpen,
	}
	clock := opts.Clock
	if clock == nil {
		clock = viewsync.LoopClock(a.post)
	}
	a.engine = viewsync.New(viewsync.Options{
		Timing:   opts.Config.Timing(),
		Clock:    clock,
		Logger:   log.With("component", "viewsync"),
		Behavior: opts.Config.Behavior(),
	})
	a.panes[viewsync.Primary] = newPane(viewsync.Primary, "Transcript")
	a.panes[viewsync.Secondary] = newPane(viewsync.Secondary, "Analysis")
	for _, p := range a.panes {
		role := p.role
		p.onScroll = func() { a.engine.OnScroll(role) }
		a.engine.RegisterViewport(role, p)
	}
	a.engine.Focus().Subscribe(func(st viewsync.FocusState) { a.focus = st })
	if a.feed != nil {
		a.unwatch = a.feed.Follow(a.engine.Focus(), func() string { return a.transcript.Conversation.ID })
	}

	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "search messages"
	ti.CharLimit = 80
	a.search.input = ti

	if opts.WatchPath != "" {
		w, err := service.NewWatcher(opts.WatchPath, 0)
		if err != nil {
			a.engine.Close()
			return nil, err
		}
		a.watcher = w
	}
	return a, nil
}

// post hands a timer callback to the update loop. It may run on any
// goroutine.
func (a *App) post(fn func()) {
	select {
	case a.loop <- fn:
	case <-a.done:
	}
}

func (a *App) listenLoop() tea.Cmd {
	return func() tea.Msg {
		select {
		case fn := <-a.loop:
			return loopMsg{fn: fn}
		case <-a.done:
			return nil
		}
	}
}

func (a *App) listenWatcher() tea.Cmd {
	if a.watcher == nil {
		return nil
	}
	w := a.watcher
	return func() tea.Msg {
		select {
		case path := <-w.Changes():
			return fileChangedMsg(path)
		case err := <-w.Errors():
			return watchErrMsg{fmt.Errorf("watch: %w", err)}
		case <-a.done:
			return nil
		}
	}
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadConversations(), a.listenLoop(), a.listenWatcher())
}

func (a *App) loadConversations() tea.Cmd {
	return func() tea.Msg {
		convs, err := a.svc.Transcripts.List(a.ctx)
		if err != nil {
			return errMsg{err}
		}
		return conversationsMsg(convs)
	}
}

func (a *App) loadTranscript(id string) tea.Cmd {
	return func() tea.Msg {
		tr, err := a.svc.Transcripts.Load(a.ctx, id)
		if err != nil {
			return errMsg{err}
		}
		return transcriptMsg(tr)
	}
}

func (a *App) importCmd(path string) tea.Cmd {
	return func() tea.Msg {
		res, err := a.svc.Importer.ImportFile(a.ctx, path)
		if err != nil {
			return errMsg{fmt.Errorf("re-import: %w", err)}
		}
		return importedMsg(res)
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	return a, tea.Batch(cmd, a.frameCmds())
}

func (a *App) update(msg tea.Msg) tea.Cmd {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = m.Width, m.Height
		a.layout()
	case loopMsg:
		m.fn()
		return a.listenLoop()
	case animFrameMsg:
		if p := a.pane(m.role); p != nil {
			p.stepAnimation(m.gen)
		}
	case conversationsMsg:
		a.convs = []repository.Conversation(m)
		if len(a.convs) == 0 {
			a.setStatus("no conversations; run `convolens seed` or `convolens import`")
			return nil
		}
		a.convIdx = 0
		for i, c := range a.convs {
			if c.ID == a.wantConv {
				a.convIdx = i
			}
		}
		return a.loadTranscript(a.convs[a.convIdx].ID)
	case transcriptMsg:
		a.showTranscript(service.Transcript(m))
	case fileChangedMsg:
		a.setStatus("reloading " + string(m))
		return tea.Batch(a.importCmd(string(m)), a.listenWatcher())
	case importedMsg:
		a.wantConv = m.ConversationID
		a.setStatus(fmt.Sprintf("imported %d messages", m.Messages))
		return a.loadConversations()
	case watchErrMsg:
		a.log.Warn("watcher", "err", m.error)
		a.status, a.failed = "error: "+m.Error(), true
		return a.listenWatcher()
	case errMsg:
		a.log.Error("viewer", "err", m.error)
		a.status, a.failed = "error: "+m.Error(), true
		if errors.Is(m.error, repository.ErrNotFound) && len(a.convs) > 0 {
			return a.loadTranscript(a.convs[0].ID)
		}
	case tea.MouseMsg:
		return a.handleMouse(m)
	case tea.KeyMsg:
		if a.search.active {
			return a.handleSearchKey(m)
		}
		return a.handleKey(m)
	}
	return nil
}

func (a *App) setStatus(s string) { a.status, a.failed = s, false }

func (a *App) pane(role viewsync.Role) *Pane {
	if role != viewsync.Primary && role != viewsync.Secondary {
		return nil
	}
	return a.panes[role]
}

func (a *App) frameCmds() tea.Cmd {
	var cmds []tea.Cmd
	for _, p := range a.panes {
		if c := p.frameCmd(); c != nil {
			cmds = append(cmds, c)
		}
	}
	return tea.Batch(cmds...)
}

// showTranscript swaps the conversation. The engine is reset first so no
// timer or pending request from the previous conversation survives.
func (a *App) showTranscript(tr service.Transcript) {
	a.engine.Reset()
	a.transcript = tr
	a.wantConv = tr.Conversation.ID
	for _, p := range a.panes {
		p.resetView()
	}
	a.rebuild()
	a.closeSearch()
	a.setStatus(fmt.Sprintf("%s · %d messages", tr.Conversation.Title, len(tr.Items)))
	if a.onOpen != nil {
		a.onOpen(tr.Conversation.ID)
	}
}

func (a *App) switchConversation(delta int) tea.Cmd {
	if len(a.convs) < 2 {
		return nil
	}
	a.convIdx = (a.convIdx + delta + len(a.convs)) % len(a.convs)
	return a.loadTranscript(a.convs[a.convIdx].ID)
}

func (a *App) rebuild() {
	loc := a.cfg.Location()
	a.panes[viewsync.Primary].setBlocks(transcriptBlocks(a.transcript.Items, a.panes[viewsync.Primary].textWidth(), loc))
	a.panes[viewsync.Secondary].setBlocks(analysisBlocks(a.transcript.Items, a.panes[viewsync.Secondary].textWidth()))
}

// click syncs the other pane onto the item under the cursor.
func (a *App) click() {
	p := a.panes[a.focused]
	if id, ok := p.cursorID(); ok {
		a.engine.RequestSync(id, a.focused)
	}
}

// jump shows id in both panes: the other pane through the engine, the focused
// pane directly. The sync is requested first so the local scroll is not
// reported back.
func (a *App) jump(id viewsync.ItemID) {
	a.engine.RequestSync(id, a.focused)
	a.panes[a.focused].centerOn(id)
}

// Close tears the engine and collaborators down. Safe to call twice.
func (a *App) Close() {
	if a.closed {
		return
	}
	a.closed = true
	a.engine.Close()
	close(a.done)
	if a.unwatch != nil {
		a.unwatch()
	}
	if a.watcher != nil {
		_ = a.watcher.Close()
	}
}

// State exposes the engine state for the status line and tests.
func (a *App) State() viewsync.State { return a.engine.State() }

func (a *App) Focus() viewsync.FocusState { return a.focus }

// Run starts the program and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	app, err := New(ctx, opts)
	if err != nil {
		return err
	}
	defer app.Close()
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

var _ tea.Model = (*App)(nil)
