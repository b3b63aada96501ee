package runner

import "fmt"

// CommandError reports a remote command that exited non-zero.
type CommandError struct {
	Stage    string
	ExitCode int
	Output   string
}

func (e *CommandError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("%s failed with exit code %d", e.Stage, e.ExitCode)
	}
	return fmt.Sprintf("%s failed with exit code %d: %s", e.Stage, e.ExitCode, e.Output)
}
