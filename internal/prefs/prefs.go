// Package prefs remembers small viewer choices between runs.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
)

const stateFile = "state.json"

// State is what survives a restart. Scroll and focus positions are not kept.
type State struct {
	LastConversation string `json:"last_conversation,omitempty"`
}

// Store reads and writes State under Dir.
type Store struct {
	Dir string
}

// Default returns a store in the user config directory.
func Default() (Store, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return Store{}, err
	}
	return Store{Dir: filepath.Join(dir, "convolens")}, nil
}

func (s Store) path() string { return filepath.Join(s.Dir, stateFile) }

// Load returns the zero State when nothing was saved yet.
func (s Store) Load() (State, error) {
	var st State
	data, err := os.ReadFile(s.path())
	if err != nil {
		if os.IsNotExist(err) {
			return st, nil
		}
		return st, err
	}
	err = json.Unmarshal(data, &st)
	return st, err
}

// Save writes st atomically.
func (s Store) Save(st State) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path() + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, s.path())
}

// RememberConversation updates LastConversation, keeping other fields.
func (s Store) RememberConversation(id string) error {
	st, err := s.Load()
	if err != nil {
		st = State{}
	}
	if st.LastConversation == id {
		return nil
	}
	st.LastConversation = id
	return s.Save(st)
}
