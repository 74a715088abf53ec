package models

import "time"

// RunResult is the terminal outcome of one agent run. It is created once,
// when the agent's stream produces its result event, and never mutated.
type RunResult struct {
	// IsError indicates the agent itself reported a failed run.
	IsError bool `json:"is_error"`
	// Result is the final rendered content: markdown on success, a plain
	// message on error. May be empty.
	Result string `json:"result,omitempty"`
	// DurationMS is the wall-clock duration reported by the agent.
	DurationMS int64 `json:"duration_ms"`
	// NumTurns is the number of conversation turns the run took.
	NumTurns int `json:"num_turns"`
	// TotalCostUSD is the reported API cost, when available.
	TotalCostUSD float64 `json:"total_cost_usd,omitempty"`
}

// Duration returns the reported duration as a time.Duration.
func (r RunResult) Duration() time.Duration {
	return time.Duration(r.DurationMS) * time.Millisecond
}

// RunRecord is one row of persisted run history.
type RunRecord struct {
	// ID is the unique run identifier.
	ID string `json:"id"`
	// ProjectPath is the directory the agent wrote into.
	ProjectPath string `json:"project_path"`
	// Idea is the user's idea text as submitted.
	Idea string `json:"idea"`
	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`
	// DurationMS mirrors RunResult.DurationMS.
	DurationMS int64 `json:"duration_ms"`
	// NumTurns mirrors RunResult.NumTurns.
	NumTurns int `json:"num_turns"`
	// TotalCostUSD mirrors RunResult.TotalCostUSD.
	TotalCostUSD float64 `json:"total_cost_usd,omitempty"`
	// IsError indicates the agent reported failure.
	IsError bool `json:"is_error"`
	// ArtifactCount is the number of files observed written during the run.
	ArtifactCount int `json:"artifact_count"`
}
