package sandbox

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// MockProvider is an in-memory Provider for tests. It records every call and
// lets tests script exit codes, downloadable files and per-method errors.
type MockProvider struct {
	mu sync.Mutex

	// Errors injects an error for a method name ("Create", "RunCommand", ...).
	Errors map[string]error

	// OnRunCommand scripts RunCommand. When nil every command exits 0.
	OnRunCommand func(command, cwd string) (*ExecResult, error)

	// Files maps sandbox paths to downloadable content. Missing paths fail.
	Files map[string][]byte

	// PanicOn makes the named method panic, for cleanup tests.
	PanicOn string

	CallLog []MockCall

	nextID int
}

type MockCall struct {
	Method string
	Args   []interface{}
}

// ErrMockFileNotFound is returned by DownloadFile for unknown paths.
var ErrMockFileNotFound = errors.New("file not found")

func NewMockProvider() *MockProvider {
	return &MockProvider{
		Errors: make(map[string]error),
		Files:  make(map[string][]byte),
	}
}

func (m *MockProvider) record(method string, args ...interface{}) error {
	m.mu.Lock()
	m.CallLog = append(m.CallLog, MockCall{Method: method, Args: args})
	err := m.Errors[method]
	panicking := m.PanicOn == method
	m.mu.Unlock()
	if panicking {
		panic(fmt.Sprintf("mock %s panic", method))
	}
	return err
}

// SetError sets the error returned by a method.
func (m *MockProvider) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[method] = err
}

// CallCount returns how many times method was called.
func (m *MockProvider) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.CallLog {
		if c.Method == method {
			n++
		}
	}
	return n
}

// Calls returns the recorded calls for method in order.
func (m *MockProvider) Calls(method string) []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []MockCall
	for _, c := range m.CallLog {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (m *MockProvider) Create(ctx context.Context, params CreateParams) (*Sandbox, error) {
	if err := m.record("Create", params); err != nil {
		return nil, err
	}
	m.mu.Lock()
	m.nextID++
	id := fmt.Sprintf("mock-sandbox-%d", m.nextID)
	m.mu.Unlock()
	return &Sandbox{ID: id, State: StateStarted, Target: params.Target, Snapshot: params.Snapshot}, nil
}

func (m *MockProvider) RunCommand(ctx context.Context, sandboxID, command, cwd string) (*ExecResult, error) {
	if err := m.record("RunCommand", sandboxID, command, cwd); err != nil {
		return nil, err
	}
	if m.OnRunCommand != nil {
		return m.OnRunCommand(command, cwd)
	}
	return &ExecResult{ExitCode: 0}, nil
}

func (m *MockProvider) CloneRepo(ctx context.Context, sandboxID, url, path, branch string) error {
	return m.record("CloneRepo", sandboxID, url, path, branch)
}

func (m *MockProvider) DownloadFile(ctx context.Context, sandboxID, path string) ([]byte, error) {
	if err := m.record("DownloadFile", sandboxID, path); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	content, ok := m.Files[path]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMockFileNotFound, path)
	}
	return content, nil
}

func (m *MockProvider) Snapshot(ctx context.Context, sandboxID, name string) error {
	return m.record("Snapshot", sandboxID, name)
}

func (m *MockProvider) Delete(ctx context.Context, sandboxID string) error {
	return m.record("Delete", sandboxID)
}

var _ Provider = (*MockProvider)(nil)
