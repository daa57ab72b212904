// Package editor implements the editing state machine: buffer, cursor,
// debounced preview refresh and history snapshots, bounded undo/redo
// with cursor and scroll restoration, and toolbar transforms.
package editor

import (
	"sync"
	"time"

	"github.com/solheim/lesa/internal/imagestore"
	"github.com/solheim/lesa/internal/markdown"
)

// Defaults for the debounce windows and the history bound.
const (
	DefaultPreviewDebounce = 150 * time.Millisecond
	DefaultHistoryDebounce = 500 * time.Millisecond
	DefaultHistoryLimit    = 100
)

// Config configures a new Editor. Zero durations and limits fall back to
// the defaults above.
type Config struct {
	PreviewDebounce time.Duration
	HistoryDebounce time.Duration
	HistoryLimit    int

	Renderer *markdown.Renderer
	Images   *imagestore.Store

	SyncScroll bool

	// OnPreview receives the rendered preview after each debounced
	// refresh. Called from a timer goroutine; must not call back into
	// the editor.
	OnPreview func(markdown.Result)
	// OnDirty is called when the unsaved-changes state flips.
	OnDirty func(bool)
}

// Editor owns one open document's editing state. Safe for concurrent use.
type Editor struct {
	mu sync.Mutex

	cfg    Config
	buffer string
	cursor int

	editorScroll  float64
	previewScroll float64

	hist       *history
	isUndoRedo bool

	savedContent string
	dirty        bool

	previewTimer *time.Timer
	historyTimer *time.Timer
	closed       bool
}

// New returns an Editor with an empty buffer. The image store is created
// when Config.Images is nil.
func New(cfg Config) *Editor {
	if cfg.PreviewDebounce <= 0 {
		cfg.PreviewDebounce = DefaultPreviewDebounce
	}
	if cfg.HistoryDebounce <= 0 {
		cfg.HistoryDebounce = DefaultHistoryDebounce
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if cfg.Images == nil {
		cfg.Images = imagestore.New()
	}
	if cfg.Renderer == nil {
		cfg.Renderer = markdown.NewRenderer(markdown.WithImageResolver(cfg.Images.Resolve))
	}
	e := &Editor{
		cfg:  cfg,
		hist: newHistory(cfg.HistoryLimit),
	}
	e.hist.push("", 0)
	return e
}

// Load replaces the buffer with a new document: history and the image
// store reset, the baseline snapshot is the loaded content, and the
// editor starts clean.
func (e *Editor) Load(content string) {
	e.mu.Lock()
	e.stopTimersLocked()
	e.buffer = content
	e.cursor = 0
	e.editorScroll = 0
	e.previewScroll = 0
	e.hist.reset()
	e.hist.push(content, 0)
	e.savedContent = content
	e.cfg.Images.Reset()
	e.setDirtyLocked(false)
	e.mu.Unlock()
	e.renderPreview()
}

// Content returns the current buffer.
func (e *Editor) Content() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffer
}

// Cursor returns the current cursor position.
func (e *Editor) Cursor() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cursor
}

// SetCursor moves the cursor, clamped to the buffer.
func (e *Editor) SetCursor(pos int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cursor = clampPos(e.buffer, pos)
}

// SetScroll records the two pane scroll positions.
func (e *Editor) SetScroll(editorScroll, previewScroll float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.editorScroll = editorScroll
	e.previewScroll = previewScroll
}

// Scroll returns the recorded pane scroll positions.
func (e *Editor) Scroll() (editorScroll, previewScroll float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.editorScroll, e.previewScroll
}

// Insert places text at the cursor and advances it, then schedules the
// debounced preview refresh and history snapshot.
func (e *Editor) Insert(text string) {
	e.mu.Lock()
	pos := clampPos(e.buffer, e.cursor)
	e.buffer = e.buffer[:pos] + text + e.buffer[pos:]
	e.cursor = pos + len(text)
	e.afterEditLocked()
	e.mu.Unlock()
}

// ReplaceRange swaps [start, end) for text and puts the cursor after it.
func (e *Editor) ReplaceRange(start, end int, text string) {
	e.mu.Lock()
	start = clampPos(e.buffer, start)
	end = clampPos(e.buffer, end)
	if start > end {
		start, end = end, start
	}
	e.buffer = e.buffer[:start] + text + e.buffer[end:]
	e.cursor = start + len(text)
	e.afterEditLocked()
	e.mu.Unlock()
}

// SetContent replaces the whole buffer, keeping history (the previous
// content stays undoable).
func (e *Editor) SetContent(content string) {
	e.mu.Lock()
	e.buffer = content
	e.cursor = clampPos(content, e.cursor)
	e.afterEditLocked()
	e.mu.Unlock()
}

// Apply runs a toolbar transform on the selection, replacing buffer and
// selection, and schedules refreshes like any other edit. The history
// snapshot for transforms is taken immediately so each toolbar action is
// one undo step.
func (e *Editor) Apply(t Transform, selStart, selEnd int) (newStart, newEnd int) {
	e.mu.Lock()
	content, ns, ne := t(e.buffer, selStart, selEnd)
	e.buffer = content
	e.cursor = ne
	e.setDirtyLocked(content != e.savedContent)
	e.stopHistoryTimerLocked()
	e.hist.push(content, ne)
	e.schedulePreviewLocked()
	e.mu.Unlock()
	return ns, ne
}

// Snapshot forces a pending history snapshot, as when focus leaves the
// editor before the debounce fires.
func (e *Editor) Snapshot() {
	e.mu.Lock()
	e.flushHistoryLocked()
	e.mu.Unlock()
}

// CanUndo reports whether Undo would change the buffer.
func (e *Editor) CanUndo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.canUndo()
}

// CanRedo reports whether Redo would change the buffer.
func (e *Editor) CanRedo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.canRedo()
}

// Undo steps back one history entry, restoring content and cursor, then
// re-renders the preview and restores both scroll positions. Reports
// false (and changes nothing) at the oldest entry.
func (e *Editor) Undo() bool {
	return e.travel((*history).undo)
}

// Redo steps forward one history entry. Reports false at the newest.
func (e *Editor) Redo() bool {
	return e.travel((*history).redo)
}

func (e *Editor) travel(step func(*history) (snapshot, bool)) bool {
	e.mu.Lock()
	e.flushHistoryLocked()
	snap, ok := step(e.hist)
	if !ok {
		e.mu.Unlock()
		return false
	}
	e.isUndoRedo = true
	e.buffer = snap.content
	e.cursor = clampPos(snap.content, snap.cursorPos)
	e.setDirtyLocked(e.buffer != e.savedContent)
	edScroll, pvScroll := e.editorScroll, e.previewScroll
	e.mu.Unlock()

	// Synchronous refresh so the scroll restore lands on the new preview.
	e.renderPreview()

	e.mu.Lock()
	e.editorScroll = edScroll
	e.previewScroll = pvScroll
	e.isUndoRedo = false
	e.mu.Unlock()
	return true
}

// SyncScroll maps the editor scroll position proportionally onto the
// preview pane and records it. Returns the previous preview scroll when
// sync is disabled or an undo/redo restore is in flight.
func (e *Editor) SyncScroll(editorScroll, editorRange, previewRange float64) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.cfg.SyncScroll || e.isUndoRedo || editorRange <= 0 {
		return e.previewScroll
	}
	e.editorScroll = editorScroll
	e.previewScroll = editorScroll / editorRange * previewRange
	return e.previewScroll
}

// Dirty reports whether the buffer differs from the last saved content.
func (e *Editor) Dirty() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dirty
}

// MarkSaved records the current buffer as the saved baseline.
func (e *Editor) MarkSaved() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.savedContent = e.buffer
	e.setDirtyLocked(false)
}

// Images exposes the per-document image store.
func (e *Editor) Images() *imagestore.Store {
	return e.cfg.Images
}

// Render renders the current buffer immediately, bypassing the debounce.
func (e *Editor) Render() markdown.Result {
	e.mu.Lock()
	content := e.buffer
	e.mu.Unlock()
	return e.cfg.Renderer.Render(content)
}

// HistoryLen reports the number of stored history entries.
func (e *Editor) HistoryLen() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.len()
}

// Close stops outstanding debounce timers. The editor must not be used
// afterwards.
func (e *Editor) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	e.stopTimersLocked()
}

// afterEditLocked runs the shared post-edit bookkeeping: dirty tracking
// and both debounce schedules. History snapshots are skipped while an
// undo/redo restore is in flight.
func (e *Editor) afterEditLocked() {
	e.setDirtyLocked(e.buffer != e.savedContent)
	e.schedulePreviewLocked()
	if e.isUndoRedo {
		return
	}
	e.scheduleHistoryLocked()
}

func (e *Editor) schedulePreviewLocked() {
	if e.closed {
		return
	}
	if e.previewTimer != nil {
		e.previewTimer.Stop()
	}
	e.previewTimer = time.AfterFunc(e.cfg.PreviewDebounce, e.renderPreview)
}

func (e *Editor) scheduleHistoryLocked() {
	if e.closed {
		return
	}
	if e.historyTimer != nil {
		e.historyTimer.Stop()
	}
	e.historyTimer = time.AfterFunc(e.cfg.HistoryDebounce, func() {
		e.mu.Lock()
		e.historyTimer = nil
		if !e.isUndoRedo {
			e.hist.push(e.buffer, e.cursor)
		}
		e.mu.Unlock()
	})
}

// flushHistoryLocked pushes a pending snapshot right away so the latest
// typing burst is its own undo step.
func (e *Editor) flushHistoryLocked() {
	if e.historyTimer != nil {
		e.historyTimer.Stop()
		e.historyTimer = nil
	}
	if !e.isUndoRedo {
		e.hist.push(e.buffer, e.cursor)
	}
}

func (e *Editor) stopHistoryTimerLocked() {
	if e.historyTimer != nil {
		e.historyTimer.Stop()
		e.historyTimer = nil
	}
}

func (e *Editor) stopTimersLocked() {
	if e.previewTimer != nil {
		e.previewTimer.Stop()
		e.previewTimer = nil
	}
	e.stopHistoryTimerLocked()
}

func (e *Editor) setDirtyLocked(dirty bool) {
	if e.dirty == dirty {
		return
	}
	e.dirty = dirty
	if e.cfg.OnDirty != nil {
		go e.cfg.OnDirty(dirty)
	}
}

func (e *Editor) renderPreview() {
	e.mu.Lock()
	content := e.buffer
	cb := e.cfg.OnPreview
	e.mu.Unlock()
	res := e.cfg.Renderer.Render(content)
	if cb != nil {
		cb(res)
	}
}

func clampPos(content string, pos int) int {
	if pos < 0 {
		return 0
	}
	if pos > len(content) {
		return len(content)
	}
	return pos
}
