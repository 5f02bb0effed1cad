package report

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"

	"git.home.luguber.info/inful/workflow-telemetry/internal/errors"
)

var header = Header{
	Workflow:   "CI",
	JobName:    "test",
	JobID:      1234,
	Repository: "octo/widgets",
	ServerURL:  "https://github.com",
	Commit:     "abc123",
}

func TestBuild(t *testing.T) {
	got := Build(header, "\n### Step Trace\nbody")
	want := strings.Join([]string{
		"## Workflow Telemetry - CI / test",
		"Workflow telemetry for commit [abc123](https://github.com/octo/widgets/commit/abc123)",
		"You can access workflow job details [here](https://github.com/octo/widgets/runs/1234?check_suite_focus=true)",
		"",
		"### Step Trace",
		"body",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestHeader_DefaultServer(t *testing.T) {
	h := header
	h.ServerURL = ""
	assert.Equal(t, "https://github.com/octo/widgets/commit/abc123", h.CommitURL())
	h.ServerURL = "https://ghe.example.com/"
	assert.Equal(t, "https://ghe.example.com/octo/widgets/runs/1234?check_suite_focus=true", h.JobURL())
}

func TestBuild_RendersAsMarkdown(t *testing.T) {
	doc := Build(header, "\n### Step Trace\n\n```mermaid\ngantt\n```")
	var buf bytes.Buffer
	require.NoError(t, goldmark.Convert([]byte(doc), &buf))
	html := buf.String()
	assert.Contains(t, html, "<h2>Workflow Telemetry - CI / test</h2>")
	assert.Contains(t, html, `<a href="https://github.com/octo/widgets/commit/abc123">abc123</a>`)
	assert.Contains(t, html, "<h3>Step Trace</h3>")
	assert.Contains(t, html, `<code class="language-mermaid">gantt`)
}

func TestTruncate(t *testing.T) {
	chart := "```mermaid\ngantt\n" + strings.Repeat("\tstep : 1, 2\n", 50) + "```"
	doc := "## Title\n\nintro paragraph\n\n" + chart + "\n\ntrailing paragraph\n"

	t.Run("within limit unchanged", func(t *testing.T) {
		assert.Equal(t, doc, Truncate(doc, len(doc)))
	})

	t.Run("cuts before fenced block", func(t *testing.T) {
		limit := strings.Index(doc, "```") + 40
		got := Truncate(doc, limit)
		assert.LessOrEqual(t, len(got), limit)
		assert.Equal(t, "## Title\n\nintro paragraph"+TruncatedNotice, got)
		assert.NotContains(t, got, "```")
	})

	t.Run("keeps whole fence when it fits", func(t *testing.T) {
		limit := strings.Index(doc, "trailing") + 5 + len(TruncatedNotice)
		got := Truncate(doc, limit)
		assert.LessOrEqual(t, len(got), limit)
		assert.Contains(t, got, chart)
		assert.NotContains(t, got, "trailing")
		assert.Equal(t, 2, strings.Count(got, "```"))
	})

	t.Run("limit below notice", func(t *testing.T) {
		assert.Empty(t, Truncate(doc, 3))
	})
}

func TestSummaryFile_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.md")
	require.NoError(t, os.WriteFile(path, []byte("existing\n"), 0o600))

	s := SummaryFile{Path: path}
	assert.Equal(t, TargetSummary, s.Target())
	require.NoError(t, s.Publish(context.Background(), "report"))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "existing\nreport\n", string(data))
}

func TestSummaryFile_Errors(t *testing.T) {
	err := SummaryFile{}.Publish(context.Background(), "x")
	assert.True(t, errors.IsCategory(err, errors.CategoryConfig))

	err = SummaryFile{Path: filepath.Join(t.TempDir(), "missing", "summary.md")}.Publish(context.Background(), "x")
	assert.True(t, errors.IsCategory(err, errors.CategoryFileSystem))
}

type recordingCommenter struct {
	number int
	body   string
}

func (r *recordingCommenter) CreateComment(_ context.Context, number int, body string) error {
	r.number, r.body = number, body
	return nil
}

func TestPRComment(t *testing.T) {
	rc := &recordingCommenter{}
	p := PRComment{Commenter: rc, Number: 5}
	assert.Equal(t, TargetComment, p.Target())

	require.NoError(t, p.Publish(context.Background(), "short"))
	assert.Equal(t, 5, rc.number)
	assert.Equal(t, "short", rc.body)

	long := "intro\n\n" + strings.Repeat("x", MaxCommentLength)
	require.NoError(t, p.Publish(context.Background(), long))
	assert.Equal(t, "intro"+TruncatedNotice, rc.body)
}
