package daytona

import (
	"time"

	"github.com/soarcollab/sandbox-runner/internal/sandbox"
)

type SnapshotState string

const (
	SnapshotStatePending     SnapshotState = "pending"
	SnapshotStateBuilding    SnapshotState = "building"
	SnapshotStateActive      SnapshotState = "active"
	SnapshotStateError       SnapshotState = "error"
	SnapshotStateBuildFailed SnapshotState = "build_failed"
)

// CreateSandboxRequest is the body of POST /sandbox.
type CreateSandboxRequest struct {
	Image              string            `json:"image,omitempty"`
	Snapshot           string            `json:"snapshot,omitempty"`
	Target             string            `json:"target,omitempty"`
	CPU                int               `json:"cpu,omitempty"`
	Memory             int               `json:"memory,omitempty"`
	Disk               int               `json:"disk,omitempty"`
	AutoStopInterval   *int              `json:"autoStopInterval,omitempty"`
	AutoDeleteInterval *int              `json:"autoDeleteInterval,omitempty"`
	Labels             map[string]string `json:"labels,omitempty"`
}

type Sandbox struct {
	ID           string            `json:"id"`
	State        sandbox.State     `json:"state"`
	Target       string            `json:"target"`
	Snapshot     string            `json:"snapshot,omitempty"`
	CPU          int               `json:"cpu"`
	Memory       int               `json:"memory"`
	Disk         int               `json:"disk"`
	Labels       map[string]string `json:"labels,omitempty"`
	ErrorReason  string            `json:"errorReason,omitempty"`
	CreatedAt    time.Time         `json:"createdAt"`
	AutoStopMins int               `json:"autoStopInterval"`
}

type CreateSnapshotRequest struct {
	Name string `json:"name"`
}

type Snapshot struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	State       SnapshotState `json:"state"`
	ErrorReason string        `json:"errorReason,omitempty"`
}

// ExecuteRequest is the body of the toolbox process/execute call.
type ExecuteRequest struct {
	Command string `json:"command"`
	Cwd     string `json:"cwd,omitempty"`
	// Timeout in seconds; zero means no server-side limit.
	Timeout int `json:"timeout,omitempty"`
}

type ExecuteResponse struct {
	ExitCode int    `json:"exitCode"`
	Result   string `json:"result"`
}

type GitCloneRequest struct {
	URL    string `json:"url"`
	Path   string `json:"path"`
	Branch string `json:"branch,omitempty"`
}
