package daytona

import (
	"context"
	"fmt"

	"github.com/soarcollab/sandbox-runner/internal/sandbox"
)

var _ sandbox.Provider = (*Client)(nil)

// Create provisions a sandbox and waits until it has started. If waiting
// fails the sandbox is still returned so the caller can delete it.
func (c *Client) Create(ctx context.Context, params sandbox.CreateParams) (*sandbox.Sandbox, error) {
	req := &CreateSandboxRequest{
		Image:    params.Image,
		Snapshot: params.Snapshot,
		Target:   params.Target,
		CPU:      params.Resources.CPU,
		Memory:   params.Resources.Memory,
		Disk:     params.Resources.Disk,
		Labels:   params.Labels,
	}
	if params.AutoStopInterval > 0 {
		v := params.AutoStopInterval
		req.AutoStopInterval = &v
	}
	if params.Ephemeral {
		// Delete as soon as the sandbox stops.
		v := 0
		req.AutoDeleteInterval = &v
	}

	created, err := c.Sandboxes.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create sandbox: %w", err)
	}
	out := &sandbox.Sandbox{ID: created.ID, State: created.State, Target: created.Target, Snapshot: created.Snapshot}
	if created.State == sandbox.StateStarted {
		return out, nil
	}

	started, err := c.Sandboxes.WaitForStarted(ctx, created.ID, 0, 0)
	if err != nil {
		return out, err
	}
	out.State = started.State
	return out, nil
}

func (c *Client) RunCommand(ctx context.Context, sandboxID, command, cwd string) (*sandbox.ExecResult, error) {
	resp, err := c.Toolbox.Execute(ctx, sandboxID, &ExecuteRequest{Command: command, Cwd: cwd})
	if err != nil {
		return nil, fmt.Errorf("execute command in sandbox %s: %w", sandboxID, err)
	}
	return &sandbox.ExecResult{ExitCode: resp.ExitCode, Output: resp.Result}, nil
}

func (c *Client) CloneRepo(ctx context.Context, sandboxID, url, path, branch string) error {
	if err := c.Toolbox.GitClone(ctx, sandboxID, &GitCloneRequest{URL: url, Path: path, Branch: branch}); err != nil {
		return fmt.Errorf("clone %s: %w", url, err)
	}
	return nil
}

func (c *Client) DownloadFile(ctx context.Context, sandboxID, path string) ([]byte, error) {
	content, err := c.Toolbox.DownloadFile(ctx, sandboxID, path)
	if err != nil {
		return nil, fmt.Errorf("download %s: %w", path, err)
	}
	return content, nil
}

// Snapshot captures the sandbox and waits until the snapshot is active.
func (c *Client) Snapshot(ctx context.Context, sandboxID, name string) error {
	if err := c.Snapshots.CreateFromSandbox(ctx, sandboxID, name); err != nil {
		return fmt.Errorf("create snapshot %s: %w", name, err)
	}
	if _, err := c.Snapshots.WaitForActive(ctx, name, 0, 0); err != nil {
		return err
	}
	return nil
}

func (c *Client) Delete(ctx context.Context, sandboxID string) error {
	if err := c.Sandboxes.Delete(ctx, sandboxID); err != nil {
		return fmt.Errorf("delete sandbox %s: %w", sandboxID, err)
	}
	return nil
}
