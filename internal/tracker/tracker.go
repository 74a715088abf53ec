// Package tracker maintains per-task timing derived from the agent's todo
// snapshots, plus the most recent message descriptor. It is the single
// shared mutable state between the agent event stream and the render loop.
package tracker

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"github.com/ShayCichocki/schemagen/pkg/models"
)

// Tracker records when tasks start and finish. Writes arrive from the
// agent event stream; the render loop is a read-only consumer, so all
// state is guarded by a RWMutex.
//
// Tasks are identified by a hash of their content (disambiguated by
// occurrence order for duplicate contents) rather than by list position,
// so a reordered snapshot keeps timing attached to the right task.
type Tracker struct {
	mu sync.RWMutex

	todos []models.TodoItem
	keys  []string

	startTimes map[string]time.Time
	endTimes   map[string]time.Time

	runStart time.Time

	messageType    string
	messagePreview string

	// now is swappable in tests.
	now func() time.Time
}

// New creates an empty Tracker.
func New() *Tracker {
	return &Tracker{
		startTimes: make(map[string]time.Time),
		endTimes:   make(map[string]time.Time),
		now:        time.Now,
	}
}

// Start marks the beginning of the run. It is idempotent: only the first
// call takes effect. The run start is the fallback timing origin for tasks
// that reach completed without ever being observed in_progress.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.runStart.IsZero() {
		t.runStart = t.now()
	}
}

// RunStart returns the recorded run start time (zero if Start was not called).
func (t *Tracker) RunStart() time.Time {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.runStart
}

// Elapsed returns the time since the run started, or zero before Start.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.runStart.IsZero() {
		return 0
	}
	return t.now().Sub(t.runStart)
}

// RecordTodos replaces the current todo snapshot. For each task in the new
// snapshot, the first observation of in_progress records a start time and
// the first observation of completed records an end time. Both are
// first-write-wins: repeated or reverted snapshots never overwrite them.
// Timings for tasks absent from the new snapshot are retained but no
// longer rendered.
func (t *Tracker) RecordTodos(todos []models.TodoItem) {
	t.mu.Lock()
	defer t.mu.Unlock()

	nowT := t.now()

	normalized := make([]models.TodoItem, len(todos))
	for i, todo := range todos {
		normalized[i] = todo.Normalize()
	}
	keys := taskKeys(normalized)

	for i, todo := range normalized {
		key := keys[i]
		switch todo.Status {
		case models.TodoStatusInProgress:
			if _, ok := t.startTimes[key]; !ok {
				t.startTimes[key] = nowT
			}
		case models.TodoStatusCompleted:
			if _, ok := t.endTimes[key]; !ok {
				t.endTimes[key] = nowT
			}
		}
	}

	t.todos = normalized
	t.keys = keys
}

// RecordMessage replaces the current message descriptor. The preview is
// trimmed and collapsed to its first line.
func (t *Tracker) RecordMessage(msgType, preview string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.messageType = msgType
	t.messagePreview = firstLine(preview)
}

// Message returns the latest message type and single-line preview.
func (t *Tracker) Message() (msgType, preview string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.messageType, t.messagePreview
}

// Snapshot returns a copy of the current todo list.
func (t *Tracker) Snapshot() []models.TodoItem {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]models.TodoItem, len(t.todos))
	copy(out, t.todos)
	return out
}

// HasTodos reports whether any snapshot with at least one task has arrived.
// An empty snapshot is distinct from "tasks exist but all pending".
func (t *Tracker) HasTodos() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.todos) > 0
}

// ElapsedFor returns the elapsed duration for the task at index i of the
// current snapshot:
//   - completed: end time minus start time (run start when the task was
//     never observed in_progress)
//   - in progress: time since the start time
//   - otherwise: zero
func (t *Tracker) ElapsedFor(i int) time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if i < 0 || i >= len(t.keys) {
		return 0
	}
	key := t.keys[i]

	if end, ok := t.endTimes[key]; ok {
		start, ok := t.startTimes[key]
		if !ok {
			start = t.runStart
		}
		if start.IsZero() || end.Before(start) {
			return 0
		}
		return end.Sub(start)
	}
	if start, ok := t.startTimes[key]; ok {
		return t.now().Sub(start)
	}
	return 0
}

// taskKeys computes identity keys for a snapshot. The key is a hash of the
// task content; duplicate contents within one snapshot are disambiguated
// by occurrence order so each duplicate keeps its own timing.
func taskKeys(todos []models.TodoItem) []string {
	keys := make([]string, len(todos))
	seen := make(map[string]int, len(todos))
	for i, todo := range todos {
		ordinal := seen[todo.Content]
		seen[todo.Content] = ordinal + 1

		h := fnv.New64a()
		h.Write([]byte(todo.Content))
		keys[i] = fmt.Sprintf("%x:%d", h.Sum64(), ordinal)
	}
	return keys
}

// firstLine trims surrounding whitespace and returns only the first line.
func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	return s
}
