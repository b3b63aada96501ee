package daytona

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/soarcollab/sandbox-runner/internal/sandbox"
)

type fakeAPI struct {
	mu           sync.Mutex
	t            *testing.T
	getCalls     int
	startAfter   int
	snapshotGets int
	lastCreate   CreateSandboxRequest
	lastExec     ExecuteRequest
	lastClone    GitCloneRequest
	deleted      []string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/sandbox", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"invalid api key"}`))
			return
		}
		f.mu.Lock()
		if err := json.NewDecoder(r.Body).Decode(&f.lastCreate); err != nil {
			f.t.Errorf("decode create body: %v", err)
		}
		f.mu.Unlock()
		writeJSON(w, Sandbox{ID: "sb-1", State: sandbox.StateCreating, Target: f.lastCreate.Target})
	})
	mux.HandleFunc("GET /api/sandbox/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.getCalls++
		state := sandbox.StateStarting
		if f.getCalls > f.startAfter {
			state = sandbox.StateStarted
		}
		f.mu.Unlock()
		writeJSON(w, Sandbox{ID: r.PathValue("id"), State: state})
	})
	mux.HandleFunc("DELETE /api/sandbox/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deleted = append(f.deleted, r.PathValue("id"))
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/sandbox/{id}/snapshot", func(w http.ResponseWriter, r *http.Request) {
		var req CreateSnapshotRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Name == "taken" {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"snapshot already exists"}`))
			return
		}
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("GET /api/snapshots/{name}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.snapshotGets++
		n := f.snapshotGets
		f.mu.Unlock()
		switch {
		case n == 1:
			w.WriteHeader(http.StatusNotFound)
		case n == 2:
			writeJSON(w, Snapshot{Name: r.PathValue("name"), State: SnapshotStateBuilding})
		default:
			writeJSON(w, Snapshot{Name: r.PathValue("name"), State: SnapshotStateActive})
		}
	})
	mux.HandleFunc("POST /api/toolbox/{id}/toolbox/process/execute", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		_ = json.NewDecoder(r.Body).Decode(&f.lastExec)
		f.mu.Unlock()
		writeJSON(w, ExecuteResponse{ExitCode: 3, Result: "boom"})
	})
	mux.HandleFunc("POST /api/toolbox/{id}/toolbox/git/clone", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		_ = json.NewDecoder(r.Body).Decode(&f.lastClone)
		f.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /api/toolbox/{id}/toolbox/files/download", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("path") != "/workspace/report.xml" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"file not found"}`))
			return
		}
		_, _ = w.Write([]byte("<report/>"))
	})
	return mux
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func newTestClient(t *testing.T, f *fakeAPI) *Client {
	t.Helper()
	f.t = t
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return NewClient(srv.URL+"/api/", "test-key",
		WithTarget("eu"),
		WithPollInterval(5*time.Millisecond),
		WithReadyTimeout(2*time.Second),
	)
}

func TestCreateWaitsForStarted(t *testing.T) {
	f := &fakeAPI{startAfter: 2}
	c := newTestClient(t, f)

	sb, err := c.Create(context.Background(), sandbox.CreateParams{
		Snapshot:         "recordplatform-test-env",
		Resources:        sandbox.Resources{CPU: 4, Memory: 8, Disk: 10},
		Ephemeral:        true,
		AutoStopInterval: 30,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if sb.ID != "sb-1" || sb.State != sandbox.StateStarted {
		t.Fatalf("unexpected sandbox: %+v", sb)
	}
	if f.getCalls != 3 {
		t.Fatalf("expected 3 state polls, got %d", f.getCalls)
	}
	if f.lastCreate.Target != "eu" {
		t.Fatalf("expected default target to be applied, got %q", f.lastCreate.Target)
	}
	if f.lastCreate.AutoStopInterval == nil || *f.lastCreate.AutoStopInterval != 30 {
		t.Fatalf("expected autoStopInterval 30, got %v", f.lastCreate.AutoStopInterval)
	}
	if f.lastCreate.AutoDeleteInterval == nil || *f.lastCreate.AutoDeleteInterval != 0 {
		t.Fatalf("expected ephemeral sandbox to set autoDeleteInterval 0")
	}
	if f.lastCreate.CPU != 4 || f.lastCreate.Memory != 8 || f.lastCreate.Disk != 10 {
		t.Fatalf("unexpected resources: %+v", f.lastCreate)
	}
}

func TestCreateUnauthorized(t *testing.T) {
	f := &fakeAPI{}
	c := newTestClient(t, f)
	c.apiKey = "wrong"

	_, err := c.Create(context.Background(), sandbox.CreateParams{Image: "docker:28.3.3-dind"})
	if !IsUnauthorized(err) {
		t.Fatalf("expected unauthorized error, got %v", err)
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Message != "invalid api key" {
		t.Fatalf("expected server message to be surfaced, got %v", err)
	}
}

func TestRunCommandReturnsExitCode(t *testing.T) {
	f := &fakeAPI{}
	c := newTestClient(t, f)

	res, err := c.RunCommand(context.Background(), "sb-1", "mvn verify", "/workspace")
	if err != nil {
		t.Fatalf("RunCommand() error = %v", err)
	}
	if res.ExitCode != 3 || res.Output != "boom" {
		t.Fatalf("unexpected result: %+v", res)
	}
	if res.Succeeded() {
		t.Fatalf("non-zero exit code must not be a success")
	}
	if f.lastExec.Command != "mvn verify" || f.lastExec.Cwd != "/workspace" {
		t.Fatalf("unexpected execute request: %+v", f.lastExec)
	}
}

func TestCloneRepo(t *testing.T) {
	f := &fakeAPI{}
	c := newTestClient(t, f)

	if err := c.CloneRepo(context.Background(), "sb-1", "https://example.com/repo.git", "/workspace/project", "main"); err != nil {
		t.Fatalf("CloneRepo() error = %v", err)
	}
	if f.lastClone.URL != "https://example.com/repo.git" || f.lastClone.Path != "/workspace/project" || f.lastClone.Branch != "main" {
		t.Fatalf("unexpected clone request: %+v", f.lastClone)
	}
}

func TestDownloadFile(t *testing.T) {
	f := &fakeAPI{}
	c := newTestClient(t, f)

	content, err := c.DownloadFile(context.Background(), "sb-1", "/workspace/report.xml")
	if err != nil {
		t.Fatalf("DownloadFile() error = %v", err)
	}
	if string(content) != "<report/>" {
		t.Fatalf("unexpected content %q", content)
	}

	_, err = c.DownloadFile(context.Background(), "sb-1", "/missing")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSnapshotWaitsForActive(t *testing.T) {
	f := &fakeAPI{}
	c := newTestClient(t, f)

	if err := c.Snapshot(context.Background(), "sb-1", "recordplatform-test-env"); err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if f.snapshotGets != 3 {
		t.Fatalf("expected 3 snapshot polls, got %d", f.snapshotGets)
	}

	err := c.Snapshot(context.Background(), "sb-1", "taken")
	if !IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	f := &fakeAPI{}
	c := newTestClient(t, f)

	if err := c.Delete(context.Background(), "sb-9"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(f.deleted) != 1 || f.deleted[0] != "sb-9" {
		t.Fatalf("unexpected deletes: %v", f.deleted)
	}
}

func TestAPIErrorFallsBackToStatusText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("not json"))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "k")
	err := c.Delete(context.Background(), "x")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusInternalServerError || apiErr.Message != http.StatusText(http.StatusInternalServerError) {
		t.Fatalf("unexpected api error: %v", err)
	}
}

func TestIsUnauthorizedCoversForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"message":"key lacks sandbox scope"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, "k")
	err := c.Delete(context.Background(), "x")
	if !errors.Is(err, ErrForbidden) || !IsUnauthorized(err) {
		t.Fatalf("expected forbidden to count as a rejected key, got %v", err)
	}
	if IsConflict(err) {
		t.Fatalf("forbidden is not a conflict")
	}
}
