package daytona

import (
	"context"
	"fmt"
	"time"

	"github.com/soarcollab/sandbox-runner/internal/sandbox"
)

// SandboxService handles sandbox lifecycle operations.
type SandboxService struct {
	client *Client
}

// Create provisions a sandbox. It returns as soon as the API accepts the
// request; use WaitForStarted before running commands.
func (s *SandboxService) Create(ctx context.Context, req *CreateSandboxRequest) (*Sandbox, error) {
	if req.Target == "" {
		req.Target = s.client.target
	}
	var result Sandbox
	if err := s.client.doJSON(ctx, "POST", s.client.buildPath("sandbox"), req, &result, nil); err != nil {
		return nil, err
	}
	return &result, nil
}

// Get retrieves a sandbox by ID.
func (s *SandboxService) Get(ctx context.Context, id string) (*Sandbox, error) {
	var result Sandbox
	if err := s.client.doJSON(ctx, "GET", s.client.buildPath("sandbox", id), nil, &result, nil); err != nil {
		return nil, err
	}
	return &result, nil
}

// Delete removes a sandbox.
func (s *SandboxService) Delete(ctx context.Context, id string) error {
	return s.client.doEmptyResponse(ctx, "DELETE", s.client.buildPath("sandbox", id), nil, nil)
}

// WaitForStarted polls until the sandbox reaches the started state.
// pollInterval and timeout fall back to the client defaults when zero.
func (s *SandboxService) WaitForStarted(ctx context.Context, id string, pollInterval, timeout time.Duration) (*Sandbox, error) {
	if pollInterval == 0 {
		pollInterval = s.client.pollInterval
	}
	if timeout == 0 {
		timeout = s.client.readyTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		sb, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		switch sb.State {
		case sandbox.StateStarted:
			return sb, nil
		case sandbox.StateError:
			if sb.ErrorReason != "" {
				return nil, fmt.Errorf("sandbox %s failed to start: %s", id, sb.ErrorReason)
			}
			return nil, fmt.Errorf("sandbox %s failed to start", id)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timeout waiting for sandbox %s to start (last state %q)", id, sb.State)
		case <-ticker.C:
		}
	}
}
