package session

import "sync"

// ScrollCommand tells the client's scroll container where to animate to.
type ScrollCommand struct {
	Index int `json:"index"`
	// Seq increases on every new scroll so clients can skip stale commands.
	Seq      uint64 `json:"seq"`
	Canceled bool   `json:"canceled"`
}

// ScrollRecorder is the navigation.Scroller of a remote session. It records
// the latest command for the client to realize.
type ScrollRecorder struct {
	mu  sync.Mutex
	cmd ScrollCommand
}

// ScrollToIndex implements navigation.Scroller.
func (r *ScrollRecorder) ScrollToIndex(index int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cmd = ScrollCommand{Index: index, Seq: r.cmd.Seq + 1}
}

// CancelScroll implements navigation.Scroller.
func (r *ScrollRecorder) CancelScroll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cmd.Seq == 0 || r.cmd.Canceled {
		return
	}
	r.cmd.Canceled = true
	r.cmd.Seq++
}

// Command returns the latest scroll command.
func (r *ScrollRecorder) Command() ScrollCommand {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.cmd
}
