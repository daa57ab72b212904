package editor

// snapshot is one history entry: the full buffer plus the cursor at the
// time of the edit.
type snapshot struct {
	content   string
	cursorPos int
}

// history is a bounded undo stack with a movable index. Not safe for
// concurrent use; the Editor serialises access.
type history struct {
	entries []snapshot
	index   int // current entry, -1 when empty
	limit   int
}

func newHistory(limit int) *history {
	return &history{index: -1, limit: limit}
}

// push records a snapshot. Identical consecutive content is dropped, the
// redo branch past the current index is truncated, and the oldest entry
// is evicted once the limit is reached.
func (h *history) push(content string, cursorPos int) {
	if h.index >= 0 && h.entries[h.index].content == content {
		return
	}
	h.entries = h.entries[:h.index+1]
	h.entries = append(h.entries, snapshot{content: content, cursorPos: cursorPos})
	if len(h.entries) > h.limit {
		h.entries = h.entries[len(h.entries)-h.limit:]
	}
	h.index = len(h.entries) - 1
}

// undo steps back one entry. Reports false at the oldest entry.
func (h *history) undo() (snapshot, bool) {
	if h.index <= 0 {
		return snapshot{}, false
	}
	h.index--
	return h.entries[h.index], true
}

// redo steps forward one entry. Reports false at the newest entry.
func (h *history) redo() (snapshot, bool) {
	if h.index >= len(h.entries)-1 {
		return snapshot{}, false
	}
	h.index++
	return h.entries[h.index], true
}

func (h *history) canUndo() bool { return h.index > 0 }

func (h *history) canRedo() bool { return h.index < len(h.entries)-1 }

func (h *history) len() int { return len(h.entries) }

func (h *history) reset() {
	h.entries = h.entries[:0]
	h.index = -1
}
