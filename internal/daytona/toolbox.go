package daytona

import (
	"context"
)

// ToolboxService talks to the agent running inside a sandbox.
type ToolboxService struct {
	client *Client
}

func (s *ToolboxService) path(sandboxID string, segments ...string) string {
	return s.client.buildPath(append([]string{"toolbox", sandboxID, "toolbox"}, segments...)...)
}

// Execute runs command synchronously and returns its exit code and combined output.
func (s *ToolboxService) Execute(ctx context.Context, sandboxID string, req *ExecuteRequest) (*ExecuteResponse, error) {
	var result ExecuteResponse
	if err := s.client.doJSON(ctx, "POST", s.path(sandboxID, "process", "execute"), req, &result, nil); err != nil {
		return nil, err
	}
	return &result, nil
}

// GitClone clones a repository into the sandbox filesystem.
func (s *ToolboxService) GitClone(ctx context.Context, sandboxID string, req *GitCloneRequest) error {
	return s.client.doEmptyResponse(ctx, "POST", s.path(sandboxID, "git", "clone"), req, nil)
}

// DownloadFile returns the content of a file in the sandbox.
func (s *ToolboxService) DownloadFile(ctx context.Context, sandboxID, filePath string) ([]byte, error) {
	return s.client.doBytes(ctx, "GET", s.path(sandboxID, "files", "download"), map[string]string{"path": filePath})
}
