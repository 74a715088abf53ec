package tracker

import (
	"testing"
	"time"

	"github.com/ShayCichocki/schemagen/pkg/models"
)

// fakeClock returns a clock function and an advance helper.
func fakeClock(start time.Time) (func() time.Time, func(d time.Duration)) {
	current := start
	return func() time.Time { return current },
		func(d time.Duration) { current = current.Add(d) }
}

func TestNew(t *testing.T) {
	tr := New()
	if tr == nil {
		t.Fatal("New returned nil")
	}
	if tr.HasTodos() {
		t.Error("new tracker should have no todos")
	}
	if got := tr.Elapsed(); got != 0 {
		t.Errorf("Elapsed before Start = %v, want 0", got)
	}
}

func TestTracker_StartIdempotent(t *testing.T) {
	tr := New()
	now, advance := fakeClock(time.Unix(1000, 0))
	tr.now = now

	tr.Start()
	first := tr.RunStart()
	advance(5 * time.Second)
	tr.Start()

	if !tr.RunStart().Equal(first) {
		t.Errorf("second Start changed run start: %v != %v", tr.RunStart(), first)
	}
	if got := tr.Elapsed(); got != 5*time.Second {
		t.Errorf("Elapsed = %v, want 5s", got)
	}
}

func TestTracker_PendingHasNoDuration(t *testing.T) {
	tr := New()
	tr.Start()
	tr.RecordTodos([]models.TodoItem{{Content: "x", Status: models.TodoStatusPending}})

	if got := tr.ElapsedFor(0); got != 0 {
		t.Errorf("ElapsedFor(pending) = %v, want 0", got)
	}
}

func TestTracker_TransitionTiming(t *testing.T) {
	tr := New()
	now, advance := fakeClock(time.Unix(1000, 0))
	tr.now = now
	tr.Start()

	tr.RecordTodos([]models.TodoItem{{Content: "build schema", Status: models.TodoStatusPending}})
	advance(1 * time.Second)
	tr.RecordTodos([]models.TodoItem{{Content: "build schema", Status: models.TodoStatusInProgress}})
	advance(3 * time.Second)
	tr.RecordTodos([]models.TodoItem{{Content: "build schema", Status: models.TodoStatusCompleted}})
	advance(10 * time.Second)

	// Duration is completed-snapshot time minus in_progress-snapshot time,
	// regardless of how much later we ask.
	if got := tr.ElapsedFor(0); got != 3*time.Second {
		t.Errorf("ElapsedFor = %v, want 3s", got)
	}
}

func TestTracker_InProgressMonotonic(t *testing.T) {
	tr := New()
	now, advance := fakeClock(time.Unix(1000, 0))
	tr.now = now
	tr.Start()

	tr.RecordTodos([]models.TodoItem{{Content: "x", Status: models.TodoStatusInProgress}})

	var prev time.Duration
	for i := 0; i < 5; i++ {
		advance(250 * time.Millisecond)
		got := tr.ElapsedFor(0)
		if got < prev {
			t.Fatalf("elapsed decreased: %v < %v", got, prev)
		}
		prev = got
	}
	if prev != 1250*time.Millisecond {
		t.Errorf("final elapsed = %v, want 1.25s", prev)
	}
}

func TestTracker_FirstWriteWins(t *testing.T) {
	tr := New()
	now, advance := fakeClock(time.Unix(1000, 0))
	tr.now = now
	tr.Start()

	tr.RecordTodos([]models.TodoItem{{Content: "x", Status: models.TodoStatusInProgress}})
	advance(2 * time.Second)
	tr.RecordTodos([]models.TodoItem{{Content: "x", Status: models.TodoStatusCompleted}})
	want := tr.ElapsedFor(0)

	// Replays and status reversions must not disturb recorded times.
	advance(7 * time.Second)
	tr.RecordTodos([]models.TodoItem{{Content: "x", Status: models.TodoStatusCompleted}})
	tr.RecordTodos([]models.TodoItem{{Content: "x", Status: models.TodoStatusInProgress}})
	tr.RecordTodos([]models.TodoItem{{Content: "x", Status: models.TodoStatusCompleted}})

	if got := tr.ElapsedFor(0); got != want {
		t.Errorf("ElapsedFor after replays = %v, want %v", got, want)
	}
}

func TestTracker_CompletedWithoutStartFallsBackToRunStart(t *testing.T) {
	tr := New()
	now, advance := fakeClock(time.Unix(1000, 0))
	tr.now = now
	tr.Start()

	advance(4 * time.Second)
	tr.RecordTodos([]models.TodoItem{{Content: "x", Status: models.TodoStatusCompleted}})

	if got := tr.ElapsedFor(0); got != 4*time.Second {
		t.Errorf("ElapsedFor = %v, want 4s (run start fallback)", got)
	}
}

func TestTracker_ReorderedSnapshotKeepsTiming(t *testing.T) {
	tr := New()
	now, advance := fakeClock(time.Unix(1000, 0))
	tr.now = now
	tr.Start()

	tr.RecordTodos([]models.TodoItem{
		{Content: "a", Status: models.TodoStatusInProgress},
		{Content: "b", Status: models.TodoStatusPending},
	})
	advance(2 * time.Second)

	// Same tasks, swapped positions. Timing follows content, not index.
	tr.RecordTodos([]models.TodoItem{
		{Content: "b", Status: models.TodoStatusInProgress},
		{Content: "a", Status: models.TodoStatusCompleted},
	})

	if got := tr.ElapsedFor(1); got != 2*time.Second {
		t.Errorf("ElapsedFor(a) = %v, want 2s", got)
	}
	if got := tr.ElapsedFor(0); got != 0 {
		t.Errorf("ElapsedFor(b) = %v, want 0 (just started)", got)
	}
}

func TestTracker_DuplicateContentsTrackedSeparately(t *testing.T) {
	tr := New()
	now, advance := fakeClock(time.Unix(1000, 0))
	tr.now = now
	tr.Start()

	tr.RecordTodos([]models.TodoItem{
		{Content: "migrate", Status: models.TodoStatusCompleted},
		{Content: "migrate", Status: models.TodoStatusInProgress},
	})
	advance(1 * time.Second)

	if got := tr.ElapsedFor(0); got != 0 {
		t.Errorf("ElapsedFor(first) = %v, want 0 (completed at start)", got)
	}
	if got := tr.ElapsedFor(1); got != 1*time.Second {
		t.Errorf("ElapsedFor(second) = %v, want 1s", got)
	}
}

func TestTracker_DisappearedTaskRetainsTiming(t *testing.T) {
	tr := New()
	now, advance := fakeClock(time.Unix(1000, 0))
	tr.now = now
	tr.Start()

	tr.RecordTodos([]models.TodoItem{{Content: "a", Status: models.TodoStatusInProgress}})
	advance(2 * time.Second)
	tr.RecordTodos([]models.TodoItem{{Content: "b", Status: models.TodoStatusPending}})
	tr.RecordTodos([]models.TodoItem{
		{Content: "a", Status: models.TodoStatusCompleted},
		{Content: "b", Status: models.TodoStatusPending},
	})

	if got := tr.ElapsedFor(0); got != 2*time.Second {
		t.Errorf("ElapsedFor(a) = %v, want 2s", got)
	}
}

func TestTracker_MalformedTodosDefaultToPending(t *testing.T) {
	tr := New()
	tr.Start()
	tr.RecordTodos([]models.TodoItem{{Content: "x", Status: "bogus"}, {}})

	snap := tr.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot length = %d, want 2", len(snap))
	}
	for i, todo := range snap {
		if todo.Status != models.TodoStatusPending {
			t.Errorf("todo %d status = %q, want pending", i, todo.Status)
		}
	}
}

func TestTracker_RecordMessage(t *testing.T) {
	tr := New()

	tr.RecordMessage("", "")
	tr.RecordMessage("AssistantMessage", "  hello\nsecond line")

	msgType, preview := tr.Message()
	if msgType != "AssistantMessage" {
		t.Errorf("message type = %q, want AssistantMessage", msgType)
	}
	if preview != "hello" {
		t.Errorf("preview = %q, want %q", preview, "hello")
	}
}

func TestTracker_ElapsedForOutOfRange(t *testing.T) {
	tr := New()
	tr.Start()
	if got := tr.ElapsedFor(0); got != 0 {
		t.Errorf("ElapsedFor on empty snapshot = %v, want 0", got)
	}
	if got := tr.ElapsedFor(-1); got != 0 {
		t.Errorf("ElapsedFor(-1) = %v, want 0", got)
	}
}
