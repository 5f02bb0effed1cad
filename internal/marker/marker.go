// Package marker reads and writes the sidecar files through which background steps
// publish their true start and completion instants.
package marker

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"git.home.luguber.info/inful/workflow-telemetry/internal/errors"
)

// Kind selects which instant a marker records.
type Kind string

const (
	KindStartedAt   Kind = "started_at"
	KindCompletedAt Kind = "completed_at"
)

// DefaultDir is where background steps write markers unless configured otherwise.
const DefaultDir = "/tmp"

// ParseKind converts user input into a Kind.
func ParseKind(raw string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(raw))) {
	case KindStartedAt, "start", "started":
		return KindStartedAt, nil
	case KindCompletedAt, "end", "completed":
		return KindCompletedAt, nil
	default:
		return "", errors.ValidationFailed("kind", fmt.Sprintf("unknown marker kind %q", raw))
	}
}

// Dir is a directory of marker files named "<step name>.<kind>".
type Dir struct {
	path string
}

// NewDir returns a Dir rooted at path, or DefaultDir when path is empty.
func NewDir(path string) Dir {
	if path == "" {
		path = DefaultDir
	}
	return Dir{path: path}
}

// Root returns the directory holding the markers.
func (d Dir) Root() string { return d.path }

// Path returns the marker file for the named background step.
func (d Dir) Path(name string, kind Kind) string {
	return filepath.Join(d.path, name+"."+string(kind))
}

// StartedAt reads the start marker of the named background step.
func (d Dir) StartedAt(name string) (time.Time, error) {
	return d.Read(name, KindStartedAt)
}

// CompletedAt reads the completion marker of the named background step.
func (d Dir) CompletedAt(name string) (time.Time, error) {
	return d.Read(name, KindCompletedAt)
}

// Read parses a marker file. A missing file and unparseable content are both errors.
func (d Dir) Read(name string, kind Kind) (time.Time, error) {
	p := d.Path(name, kind)
	data, err := os.ReadFile(p)
	if err != nil {
		return time.Time{}, errors.MarkerNotFound(p, err)
	}
	t, err := ParseTimestamp(string(data))
	if err != nil {
		return time.Time{}, errors.MarkerInvalid(p, string(data), err)
	}
	return t, nil
}

// Write records t in the marker file. The file is replaced atomically so concurrent
// readers never observe a partial timestamp.
func (d Dir) Write(name string, kind Kind, t time.Time) error {
	p := d.Path(name, kind)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return errors.MarkerWriteFailed(p, err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".marker-*")
	if err != nil {
		return errors.MarkerWriteFailed(p, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.WriteString(FormatTimestamp(t) + "\n"); err != nil {
		_ = tmp.Close()
		return errors.MarkerWriteFailed(p, err)
	}
	if err := tmp.Close(); err != nil {
		return errors.MarkerWriteFailed(p, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return errors.MarkerWriteFailed(p, err)
	}
	return nil
}

// FormatTimestamp renders t the way Write stores it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp accepts RFC 3339 timestamps (zone-less values are UTC) and integer
// epoch seconds or milliseconds.
func ParseTimestamp(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		// 11+ digits cannot be seconds before year 5138.
		if len(strings.TrimPrefix(s, "-")) > 10 {
			return time.UnixMilli(n).UTC(), nil
		}
		return time.Unix(n, 0).UTC(), nil
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
