package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/workflow-telemetry/internal/errors"
	"git.home.luguber.info/inful/workflow-telemetry/internal/retry"
	"git.home.luguber.info/inful/workflow-telemetry/internal/telemetry"
)

const jobsPath = "/repos/octo/widgets/actions/runs/42/jobs"

type apiJob struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Status      string    `json:"status"`
	Conclusion  *string   `json:"conclusion"`
	RunnerName  string    `json:"runner_name"`
	HeadSHA     string    `json:"head_sha"`
	StartedAt   string    `json:"started_at,omitempty"`
	CompletedAt *string   `json:"completed_at"`
	Steps       []apiStep `json:"steps"`
}

type apiStep struct {
	Name        string  `json:"name"`
	Number      int64   `json:"number"`
	Status      string  `json:"status"`
	Conclusion  *string `json:"conclusion"`
	StartedAt   *string `json:"started_at"`
	CompletedAt *string `json:"completed_at"`
}

func str(s string) *string { return &s }

func fastPolicy(retries int) retry.Policy {
	return retry.NewPolicy(retry.BackoffFixed, time.Millisecond, time.Millisecond, retries)
}

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := NewClient(context.Background(), "token", "octo", "widgets", WithAPIURL(srv.URL))
	require.NoError(t, err)
	return c
}

func writeJobs(t *testing.T, w http.ResponseWriter, jobs []apiJob) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	require.NoError(t, json.NewEncoder(w).Encode(map[string]any{"total_count": len(jobs), "jobs": jobs}))
}

func TestResolveJob_FindsRunningJobOnRunner(t *testing.T) {
	var gotAuth, gotQuery string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, jobsPath, r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		writeJobs(t, w, []apiJob{
			{ID: 1, Name: "lint", Status: "completed", RunnerName: "runner-a"},
			{ID: 2, Name: "build", Status: "in_progress", RunnerName: "runner-b"},
			{
				ID: 3, Name: "test", Status: "in_progress", RunnerName: "runner-a", HeadSHA: "abc123",
				StartedAt: "2021-08-01T00:00:00Z",
				Steps: []apiStep{
					{Name: "Set up job", Number: 1, Status: "completed", Conclusion: str("success"),
						StartedAt: str("2021-08-01T00:00:00Z"), CompletedAt: str("2021-08-01T00:00:02Z")},
					{Name: "Run tests", Number: 2, Status: "in_progress",
						StartedAt: str("2021-08-01T00:00:02Z")},
				},
			},
		})
	}))

	job, attempts, err := NewJobResolver(c, 42, "runner-a", fastPolicy(3)).ResolveJob(context.Background())
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, "Bearer token", gotAuth)
	assert.Contains(t, gotQuery, "per_page=100")
	assert.Contains(t, gotQuery, "page=1")

	assert.Equal(t, int64(3), job.ID)
	assert.Equal(t, "test", job.Name)
	assert.Equal(t, "abc123", job.HeadSHA)
	require.Len(t, job.Steps, 2)
	assert.Equal(t, telemetry.ConclusionSuccess, job.Steps[0].Conclusion)
	require.NotNil(t, job.Steps[0].CompletedAt)
	assert.Equal(t, time.Date(2021, 8, 1, 0, 0, 2, 0, time.UTC), job.Steps[0].CompletedAt.UTC())
	assert.Nil(t, job.Steps[1].CompletedAt)
	assert.Empty(t, job.Steps[1].Conclusion)
}

func TestResolveJob_PagesUntilShortPage(t *testing.T) {
	var pages []string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		pages = append(pages, page)
		if page == "1" {
			jobs := make([]apiJob, 100)
			for i := range jobs {
				jobs[i] = apiJob{ID: int64(i + 1), Name: "matrix-" + strconv.Itoa(i), Status: "completed", RunnerName: "runner-a"}
			}
			writeJobs(t, w, jobs)
			return
		}
		writeJobs(t, w, []apiJob{{ID: 500, Name: "late", Status: "in_progress", RunnerName: "runner-a"}})
	}))

	job, _, err := NewJobResolver(c, 42, "runner-a", fastPolicy(0)).ResolveJob(context.Background())
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, int64(500), job.ID)
	assert.Equal(t, []string{"1", "2"}, pages)
}

func TestResolveJob_RetriesUntilJobAppears(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) < 3 {
			writeJobs(t, w, nil)
			return
		}
		writeJobs(t, w, []apiJob{{ID: 9, Name: "test", Status: "in_progress", RunnerName: "runner-a"}})
	}))

	job, attempts, err := NewJobResolver(c, 42, "runner-a", fastPolicy(9)).ResolveJob(context.Background())
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, 3, attempts)
}

func TestResolveJob_NotFoundAfterBudget(t *testing.T) {
	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		writeJobs(t, w, []apiJob{{ID: 1, Name: "other", Status: "in_progress", RunnerName: "runner-z"}})
	}))

	job, attempts, err := NewJobResolver(c, 42, "runner-a", fastPolicy(2)).ResolveJob(context.Background())
	require.NoError(t, err)
	assert.Nil(t, job)
	assert.Equal(t, 3, attempts)
	assert.Equal(t, int32(3), calls.Load())
}

func TestResolveJob_APIErrorIsGitHubCategory(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = io.WriteString(w, `{"message":"Resource not accessible by integration"}`)
	}))

	job, _, err := NewJobResolver(c, 42, "runner-a", fastPolicy(2)).ResolveJob(context.Background())
	require.Error(t, err)
	assert.Nil(t, job)
	assert.True(t, errors.IsCategory(err, errors.CategoryGitHub))
	te, ok := errors.As(err)
	require.True(t, ok)
	assert.Contains(t, te.Context["hint"], "actions:read")
}

func TestResolveJob_ContextCancelledBetweenAttempts(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeJobs(t, w, nil)
	}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	slow := retry.NewPolicy(retry.BackoffFixed, time.Hour, time.Hour, 5)
	_, _, err := NewJobResolver(c, 42, "runner-a", slow).ResolveJob(ctx)
	require.Error(t, err)
}

func TestCreateComment(t *testing.T) {
	var body map[string]string
	var method, path string
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		method, path = r.Method, r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.WriteHeader(http.StatusCreated)
		_, _ = fmt.Fprint(w, `{"id":1}`)
	}))

	require.NoError(t, c.CreateComment(context.Background(), 7, "## Workflow Telemetry"))
	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/repos/octo/widgets/issues/7/comments", path)
	assert.Equal(t, "## Workflow Telemetry", body["body"])
}

func TestCreateComment_Error(t *testing.T) {
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"message":"Not Found"}`)
	}))
	err := c.CreateComment(context.Background(), 7, "x")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryGitHub))
}

func TestReadPullRequest(t *testing.T) {
	dir := t.TempDir()

	pr := filepath.Join(dir, "pr.json")
	require.NoError(t, os.WriteFile(pr, []byte(`{"action":"opened","number":12,"pull_request":{"number":12,"head":{"sha":"feedbeef"}}}`), 0o600))
	got, err := ReadPullRequest(pr)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 12, got.Number)
	assert.Equal(t, "feedbeef", got.HeadSHA)

	push := filepath.Join(dir, "push.json")
	require.NoError(t, os.WriteFile(push, []byte(`{"ref":"refs/heads/main"}`), 0o600))
	got, err = ReadPullRequest(push)
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ReadPullRequest("")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ReadPullRequest(filepath.Join(dir, "missing.json"))
	assert.True(t, errors.IsCategory(err, errors.CategoryFileSystem))
}
