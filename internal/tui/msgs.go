package tui

import (
	"github.com/jask/convolens/internal/database/repository"
	"github.com/jask/convolens/internal/service"
	"github.com/jask/convolens/internal/viewsync"
)

type conversationsMsg []repository.Conversation

type transcriptMsg service.Transcript

// loopMsg carries an engine timer callback onto the update loop.
type loopMsg struct{ fn func() }

type animFrameMsg struct {
	role viewsync.Role
	gen  int
}

type fileChangedMsg string

type importedMsg service.ImportResult

type errMsg struct{ error }

// watchErrMsg is a file watcher failure; the watcher keeps running.
type watchErrMsg struct{ error }
