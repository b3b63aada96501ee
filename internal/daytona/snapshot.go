package daytona

import (
	"context"
	"fmt"
	"time"
)

// SnapshotService handles snapshot operations.
type SnapshotService struct {
	client *Client
}

// CreateFromSandbox captures the current state of a running sandbox under name.
func (s *SnapshotService) CreateFromSandbox(ctx context.Context, sandboxID, name string) error {
	req := &CreateSnapshotRequest{Name: name}
	return s.client.doEmptyResponse(ctx, "POST", s.client.buildPath("sandbox", sandboxID, "snapshot"), req, nil)
}

// Get retrieves a snapshot by name.
func (s *SnapshotService) Get(ctx context.Context, name string) (*Snapshot, error) {
	var result Snapshot
	if err := s.client.doJSON(ctx, "GET", s.client.buildPath("snapshots", name), nil, &result, nil); err != nil {
		return nil, err
	}
	return &result, nil
}

// WaitForActive polls until the snapshot can be used to create sandboxes.
func (s *SnapshotService) WaitForActive(ctx context.Context, name string, pollInterval, timeout time.Duration) (*Snapshot, error) {
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
		snap, err := s.Get(ctx, name)
		switch {
		case IsNotFound(err):
			// Registration can lag behind the create call.
		case err != nil:
			return nil, err
		case snap.State == SnapshotStateActive:
			return snap, nil
		case snap.State == SnapshotStateError || snap.State == SnapshotStateBuildFailed:
			return nil, fmt.Errorf("snapshot %s entered state %s: %s", name, snap.State, snap.ErrorReason)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("timeout waiting for snapshot %s to become active", name)
		case <-ticker.C:
		}
	}
}
