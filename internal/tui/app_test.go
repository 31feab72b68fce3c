package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/require"

	"github.com/jask/convolens/internal/config"
	"github.com/jask/convolens/internal/database"
	"github.com/jask/convolens/internal/database/repository"
	"github.com/jask/convolens/internal/service"
	"github.com/jask/convolens/internal/viewsync"
	"github.com/jask/convolens/internal/viewsync/viewsynctest"
)

const (
	settle   = 50 * time.Millisecond
	debounce = 150 * time.Millisecond
	cooldown = 500 * time.Millisecond
)

type harness struct {
	app   *App
	clock *viewsynctest.FakeClock
	svc   Services
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(config.DriverModernc, filepath.Join(t.TempDir(), "tui.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.RunMigrations(db, config.DriverModernc))
	require.NoError(t, database.SeedDemo(ctx, db))

	svc := Services{
		Transcripts: &service.TranscriptService{
			Conversations: repository.NewConversationRepo(db),
			Messages:      repository.NewMessageRepo(db),
			Analyses:      repository.NewAnalysisRepo(db),
			Location:      time.UTC,
		},
		Importer: &service.ImportService{DB: db},
	}
	clock := viewsynctest.NewFakeClock(time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	cfg := config.Config{UI: config.UIConfig{Timezone: "UTC", Split: 0.5}}
	app, err := New(ctx, Options{Config: cfg, Services: svc, Clock: clock})
	require.NoError(t, err)
	t.Cleanup(app.Close)
	return &harness{app: app, clock: clock, svc: svc}
}

// run executes cmd and feeds its message back, following simple chains.
func (h *harness) run(t *testing.T, cmd tea.Cmd) {
	t.Helper()
	for cmd != nil {
		msg := cmd()
		if msg == nil {
			return
		}
		cmd = h.app.update(msg)
	}
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	h.app.update(tea.WindowSizeMsg{Width: 120, Height: 40})
	h.run(t, h.app.loadConversations())
	require.NotEmpty(t, h.app.transcript.Items)
}

func (h *harness) keys(t *testing.T, msgs ...tea.KeyMsg) {
	t.Helper()
	for _, m := range msgs {
		h.run(t, h.app.update(m))
	}
}

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

func itemID(h *harness, i int) viewsync.ItemID {
	return viewsync.ItemID(h.app.transcript.Items[i].ID())
}

func visibleIn(p *Pane, id viewsync.ItemID) bool {
	el, ok := p.Locate(id)
	return ok && el.Bounds.Intersects(p.Bounds())
}

func TestEnterSyncsOtherPane(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	a := h.app
	target := itemID(h, 15)

	a.focused = viewsync.Primary
	a.panes[viewsync.Primary].cursorTo(15)
	h.keys(t, tea.KeyMsg{Type: tea.KeyEnter})
	require.Equal(t, viewsync.FocusState{ActiveItemID: target, Syncing: true}, a.Focus())
	require.False(t, visibleIn(a.panes[viewsync.Secondary], target))

	h.clock.Advance(settle)
	require.True(t, visibleIn(a.panes[viewsync.Secondary], target))
	require.Equal(t, viewsync.Cooldown, a.State())

	h.clock.Advance(cooldown + debounce)
	require.Equal(t, viewsync.Idle, a.State())
	require.Equal(t, viewsync.FocusState{ActiveItemID: target}, a.Focus())
}

func TestScrollingPrimaryFollowsInSecondary(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	a := h.app

	h.keys(t, tea.KeyMsg{Type: tea.KeyPgDown})
	require.Equal(t, viewsync.Idle, a.State(), "nothing happens inside the debounce window")
	h.clock.Advance(debounce)
	active := a.Focus().ActiveItemID
	require.NotEmpty(t, active)
	require.NotEqual(t, itemID(h, 0), active)
	require.True(t, visibleIn(a.panes[viewsync.Primary], active))

	h.clock.Advance(settle)
	require.True(t, visibleIn(a.panes[viewsync.Secondary], active))

	h.clock.Advance(time.Second)
	require.Equal(t, viewsync.Idle, a.State())
	require.Equal(t, active, a.Focus().ActiveItemID, "the programmatic scroll does not echo back")
}

func TestConversationSwitchResetsEngine(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	_, err := h.svc.Importer.Import(ctx, "second", service.TranscriptFile{
		Title:     "Second",
		CreatedAt: time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC),
		Messages: []service.MessageFile{
			{Author: "customer", Body: "hello"},
			{Author: "agent", Body: "hi there"},
		},
	})
	require.NoError(t, err)
	h.start(t)
	a := h.app
	require.Len(t, a.convs, 2)
	first := a.transcript.Conversation.ID

	a.panes[viewsync.Primary].cursorTo(10)
	h.keys(t, tea.KeyMsg{Type: tea.KeyEnter})
	require.True(t, a.Focus().Syncing)

	h.keys(t, runes("]"))
	require.NotEqual(t, first, a.transcript.Conversation.ID)
	require.Equal(t, viewsync.Idle, a.State())
	require.Equal(t, viewsync.FocusState{}, a.Focus())

	h.clock.Advance(time.Second)
	require.Equal(t, 0, a.panes[viewsync.Secondary].vp.YOffset)
	require.Equal(t, viewsync.FocusState{}, a.Focus())

	h.keys(t, runes("["))
	require.Equal(t, first, a.transcript.Conversation.ID)
}

func TestSearchJumpsBothPanes(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	a := h.app

	h.keys(t, runes("/"))
	require.True(t, a.search.active)
	h.keys(t, runes("birthday"))
	require.NotEmpty(t, a.search.matches)
	want := viewsync.ItemID(a.search.matches[0].ID)
	require.Contains(t, ansi.Strip(a.View()), "birthday")

	h.keys(t, tea.KeyMsg{Type: tea.KeyEnter})
	require.False(t, a.search.active)
	require.Equal(t, want, a.Focus().ActiveItemID)
	require.True(t, visibleIn(a.panes[viewsync.Primary], want))
	id, _ := a.panes[viewsync.Primary].cursorID()
	require.Equal(t, want, id)

	h.clock.Advance(settle)
	require.True(t, visibleIn(a.panes[viewsync.Secondary], want))
	h.clock.Advance(time.Second)
	require.Equal(t, want, a.Focus().ActiveItemID)
}

func TestSearchEscapeKeepsFocus(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	h.keys(t, runes("/"), runes("refund"), tea.KeyMsg{Type: tea.KeyEsc})
	require.False(t, h.app.search.active)
	require.Equal(t, viewsync.FocusState{}, h.app.Focus())
}

func TestTabSwitchesClickSource(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	a := h.app
	h.keys(t, tea.KeyMsg{Type: tea.KeyTab})
	require.Equal(t, viewsync.Secondary, a.focused)

	a.panes[viewsync.Secondary].cursorTo(12)
	h.keys(t, tea.KeyMsg{Type: tea.KeyEnter})
	h.clock.Advance(settle)
	require.True(t, visibleIn(a.panes[viewsync.Primary], itemID(h, 12)))
}

func TestViewRendersBothPanes(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	out := h.app.View()
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 40)
	plain := ansi.Strip(out)
	require.Contains(t, plain, "Transcript")
	require.Contains(t, plain, "Analysis")
	require.Contains(t, plain, "sentiment")
	require.Contains(t, plain, "idle")
}

func TestLoopClockDeliversThroughUpdate(t *testing.T) {
	a, err := New(context.Background(), Options{})
	require.NoError(t, err)
	ran := make(chan struct{})
	go a.post(func() { close(ran) })
	msg := a.listenLoop()()
	next := a.update(msg)
	require.NotNil(t, next, "keeps listening")
	select {
	case <-ran:
	default:
		t.Fatal("callback did not run inside update")
	}
	a.Close()
	require.Nil(t, a.listenLoop()())
	a.Close()
}

func TestQuitClosesEngine(t *testing.T) {
	h := newHarness(t)
	h.start(t)
	cmd := h.app.update(runes("q"))
	require.NotNil(t, cmd)
	require.True(t, h.app.closed)
	h.app.panes[viewsync.Primary].cursorTo(5)
	h.app.click()
	require.Equal(t, viewsync.FocusState{}, h.app.Focus(), "closed engine ignores requests")
}

func TestOnOpenReportsEachConversation(t *testing.T) {
	h := newHarness(t)
	var opened []string
	h.app.onOpen = func(id string) { opened = append(opened, id) }
	h.start(t)
	require.Equal(t, []string{database.DemoConversationID}, opened)

	h.app.wantConv = "missing"
	h.run(t, h.app.loadTranscript("missing"))
	require.Equal(t, []string{database.DemoConversationID, database.DemoConversationID}, opened, "falls back to the first conversation")
}

func TestWatcherErrorKeepsFollowingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "live.toml")
	require.NoError(t, os.WriteFile(path, []byte("title = \"Live\"\n"), 0o644))
	a, err := New(context.Background(), Options{WatchPath: path})
	require.NoError(t, err)
	t.Cleanup(a.Close)

	cmd := a.update(watchErrMsg{errors.New("queue overflow")})
	require.True(t, a.failed)
	require.NotNil(t, cmd, "listener is re-armed")

	got := make(chan tea.Msg, 1)
	go func() { got <- cmd() }()
	require.NoError(t, os.WriteFile(path, []byte("title = \"Live 2\"\n"), 0o644))
	select {
	case msg := <-got:
		require.Equal(t, fileChangedMsg(a.watcher.Path()), msg)
	case <-time.After(2 * time.Second):
		t.Fatal("no change after watcher error")
	}
}
