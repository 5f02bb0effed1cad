// Package report assembles the job's markdown report and publishes it to the job
// summary file and to the triggering pull request.
package report

import (
	"fmt"
	"strings"
)

// Header identifies the job a report is about.
type Header struct {
	Workflow   string
	JobName    string
	JobID      int64
	Repository string // owner/name
	ServerURL  string // e.g. https://github.com
	Commit     string
}

// Title is the level-two heading opening the report.
func (h Header) Title() string {
	return fmt.Sprintf("## Workflow Telemetry - %s / %s", h.Workflow, h.JobName)
}

// CommitURL links the commit the report was produced for.
func (h Header) CommitURL() string {
	return fmt.Sprintf("%s/%s/commit/%s", h.server(), h.Repository, h.Commit)
}

// JobURL links the job's log view.
func (h Header) JobURL() string {
	return fmt.Sprintf("%s/%s/runs/%d?check_suite_focus=true", h.server(), h.Repository, h.JobID)
}

func (h Header) server() string {
	s := strings.TrimRight(h.ServerURL, "/")
	if s == "" {
		return "https://github.com"
	}
	return s
}

// Build joins the title, the info lines and each section with newlines.
func Build(h Header, sections ...string) string {
	info := fmt.Sprintf("Workflow telemetry for commit [%s](%s)\nYou can access workflow job details [here](%s)",
		h.Commit, h.CommitURL(), h.JobURL())
	parts := append([]string{h.Title(), info}, sections...)
	return strings.Join(parts, "\n")
}
