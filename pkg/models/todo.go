package models

// TodoStatus represents the reported state of a todo item.
type TodoStatus string

const (
	// TodoStatusPending indicates the item has not started.
	TodoStatusPending TodoStatus = "pending"
	// TodoStatusInProgress indicates the agent is working on the item.
	TodoStatusInProgress TodoStatus = "in_progress"
	// TodoStatusCompleted indicates the item is finished.
	TodoStatusCompleted TodoStatus = "completed"
)

// Valid returns true if the status is a known value.
func (s TodoStatus) Valid() bool {
	switch s {
	case TodoStatusPending, TodoStatusInProgress, TodoStatusCompleted:
		return true
	default:
		return false
	}
}

// TodoItem is one unit of work as reported by the agent's TodoWrite calls.
// Items carry no stable identifier; a snapshot supersedes all prior ones.
type TodoItem struct {
	// Content is the free-text description of the item.
	Content string `json:"content"`
	// Status is the reported state. Unknown or missing values are
	// normalized to pending.
	Status TodoStatus `json:"status"`
}

// Normalize fills defaults for malformed payloads: a missing or unknown
// status becomes pending. Content is left as-is (empty is allowed).
func (t TodoItem) Normalize() TodoItem {
	if !t.Status.Valid() {
		t.Status = TodoStatusPending
	}
	return t
}
