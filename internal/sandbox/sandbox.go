package sandbox

import "context"

type State string

const (
	StateCreating State = "creating"
	StateStarting State = "starting"
	StateStarted  State = "started"
	StateStopped  State = "stopped"
	StateError    State = "error"
	StateUnknown  State = "unknown"
)

// Resources is the compute requested for a sandbox. Memory and Disk are in GB.
type Resources struct {
	CPU    int `json:"cpu"`
	Memory int `json:"memory"`
	Disk   int `json:"disk"`
}

// CreateParams describes a sandbox to provision. Exactly one of Image and
// Snapshot should be set.
type CreateParams struct {
	Image     string
	Snapshot  string
	Resources Resources
	Ephemeral bool
	// AutoStopInterval is the idle period in minutes after which the provider
	// stops the sandbox. Zero leaves the provider default.
	AutoStopInterval int
	Target           string
	Labels           map[string]string
}

type Sandbox struct {
	ID       string `json:"id"`
	State    State  `json:"state"`
	Target   string `json:"target,omitempty"`
	Snapshot string `json:"snapshot,omitempty"`
}

// ExecResult is the outcome of a remote shell command.
type ExecResult struct {
	ExitCode int    `json:"exitCode"`
	Output   string `json:"result"`
}

func (r *ExecResult) Succeeded() bool {
	return r != nil && r.ExitCode == 0
}

// Provider is implemented by sandbox backends.
type Provider interface {
	Create(ctx context.Context, params CreateParams) (*Sandbox, error)
	RunCommand(ctx context.Context, sandboxID, command, cwd string) (*ExecResult, error)
	CloneRepo(ctx context.Context, sandboxID, url, path, branch string) error
	DownloadFile(ctx context.Context, sandboxID, path string) ([]byte, error)
	Snapshot(ctx context.Context, sandboxID, name string) error
	Delete(ctx context.Context, sandboxID string) error
}
