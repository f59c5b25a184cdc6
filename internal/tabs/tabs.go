// Package tabs manages the editor selection and the open-tab ring: which
// note is shown, which notes are pinned into tabs, and which tab has focus.
// The tab state is durable across restarts via the workspace key-value store.
package tabs

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/starford/laguz/internal/store"
)

// Capacity is the maximum number of open tabs; opening beyond it evicts the
// oldest tab FIFO.
const Capacity = 10

// StateKey is the workspace key the tab state persists under.
const StateKey = "workspace.tabs"

// State is the durable snapshot of the workspace. ActiveTab and Selected are
// 0 when unset; note ids are creation timestamps and never 0.
type State struct {
	OpenTabs  []int64 `json:"openTabs"`
	ActiveTab int64   `json:"activeTab"`
	Selected  int64   `json:"selected"`
}

// Workspace is the tab/selection state machine.
type Workspace struct {
	mu    sync.Mutex
	st    store.Store
	state State
}

// NewWorkspace creates a Workspace persisting through st.
func NewWorkspace(st store.Store) *Workspace {
	return &Workspace{st: st, state: State{OpenTabs: []int64{}}}
}

// Load restores the persisted state. exists reports whether a note id is
// still present; stale tab entries are pruned on restore.
func (w *Workspace) Load(exists func(id int64) bool) error {
	raw, err := w.st.GetState(StateKey)
	if err != nil {
		return fmt.Errorf("tabs: load: %w", err)
	}
	if raw == "" {
		return nil
	}

	var s State
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return fmt.Errorf("tabs: decode state: %w", err)
	}

	open := make([]int64, 0, len(s.OpenTabs))
	for _, id := range s.OpenTabs {
		if exists(id) {
			open = append(open, id)
		}
	}
	s.OpenTabs = open
	if s.ActiveTab != 0 && !contains(open, s.ActiveTab) {
		s.ActiveTab = 0
	}
	if s.Selected != 0 && !exists(s.Selected) {
		s.Selected = 0
	}

	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
	return nil
}

// Snapshot returns a copy of the current state.
func (w *Workspace) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := w.state
	s.OpenTabs = append([]int64(nil), w.state.OpenTabs...)
	return s
}

// Select makes the note the editor selection. With an active tab, selecting a
// note already open in some tab focuses that tab; otherwise the new note
// replaces the active tab's slot. With no active tab the selection changes
// alone, except that selecting a note that happens to be open adopts its tab.
func (w *Workspace) Select(id int64) State {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.state.Selected = id
	switch {
	case id == 0:
	case w.state.ActiveTab != 0:
		if contains(w.state.OpenTabs, id) {
			w.state.ActiveTab = id
		} else {
			for i, tid := range w.state.OpenTabs {
				if tid == w.state.ActiveTab {
					w.state.OpenTabs[i] = id
					break
				}
			}
			w.state.ActiveTab = id
		}
	case len(w.state.OpenTabs) > 0 && contains(w.state.OpenTabs, id):
		w.state.ActiveTab = id
	}

	return w.persistLocked()
}

// Open opens the note in a new tab, focusing the existing tab when already
// open and evicting the oldest tab once at capacity.
func (w *Workspace) Open(id int64) State {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !contains(w.state.OpenTabs, id) {
		if len(w.state.OpenTabs) >= Capacity {
			w.state.OpenTabs = append(w.state.OpenTabs[1:], id)
		} else {
			w.state.OpenTabs = append(w.state.OpenTabs, id)
		}
	}
	w.state.ActiveTab = id
	w.state.Selected = id
	return w.persistLocked()
}

// Switch focuses an already-open tab; unknown ids are ignored.
func (w *Workspace) Switch(id int64) State {
	w.mu.Lock()
	defer w.mu.Unlock()

	if contains(w.state.OpenTabs, id) {
		w.state.ActiveTab = id
		w.state.Selected = id
	}
	return w.persistLocked()
}

// Close removes the tab. Closing the active tab focuses the tab that shifted
// into its index, else the previous one, else clears the selection.
func (w *Workspace) Close(id int64) State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked(id)
}

func (w *Workspace) closeLocked(id int64) State {
	index := -1
	for i, tid := range w.state.OpenTabs {
		if tid == id {
			index = i
			break
		}
	}
	if index < 0 {
		return w.snapshotLocked()
	}

	w.state.OpenTabs = append(w.state.OpenTabs[:index], w.state.OpenTabs[index+1:]...)

	if w.state.ActiveTab == id {
		switch {
		case len(w.state.OpenTabs) == 0:
			w.state.ActiveTab = 0
			w.state.Selected = 0
		case index < len(w.state.OpenTabs):
			w.state.ActiveTab = w.state.OpenTabs[index]
			w.state.Selected = w.state.ActiveTab
		default:
			w.state.ActiveTab = w.state.OpenTabs[index-1]
			w.state.Selected = w.state.ActiveTab
		}
	}
	return w.persistLocked()
}

// CloseAll drops every tab and clears the selection.
func (w *Workspace) CloseAll() State {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.state = State{OpenTabs: []int64{}}
	return w.persistLocked()
}

// Forget removes a deleted note from the tab state, as Close but also
// clearing a bare selection of that note.
func (w *Workspace) Forget(id int64) State {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.closeLocked(id)
	if s.Selected == id {
		w.state.Selected = 0
		s = w.persistLocked()
	}
	return s
}

func (w *Workspace) snapshotLocked() State {
	s := w.state
	s.OpenTabs = append([]int64(nil), w.state.OpenTabs...)
	return s
}

func (w *Workspace) persistLocked() State {
	s := w.snapshotLocked()
	// Persistence failures leave the in-memory state authoritative until
	// the next successful write.
	if raw, err := json.Marshal(s); err == nil {
		_ = w.st.PutState(StateKey, string(raw))
	}
	return s
}

func contains(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
