// Package timeline renders step events as a mermaid Gantt chart.
package timeline

import (
	"strconv"
	"strings"

	"git.home.luguber.info/inful/workflow-telemetry/internal/telemetry"
)

// Heading introduces the chart inside the published report.
const Heading = "### Step Trace"

// firstStepName is the step the platform runs before any user step.
const firstStepName = "Set up job"

// Chart returns the mermaid gantt definition for events, one row per event in order.
// Row bounds are epoch milliseconds; a row ending before it starts is drawn from its
// end so it stays visible, while the end bound is kept as reported.
func Chart(jobName string, events []telemetry.Event) string {
	lines := make([]string, 0, len(events)+4)
	lines = append(lines,
		"gantt",
		"\ttitle "+jobName,
		"\tdateFormat x",
		"\taxisFormat %H:%M:%S",
	)

	for _, e := range events {
		var row strings.Builder
		row.WriteByte('\t')
		row.WriteString(strings.ReplaceAll(e.Name, ":", "-"))
		row.WriteString(" : ")

		if e.Name == firstStepName && e.Number == 1 {
			row.WriteString("milestone, ")
		}
		switch e.Conclusion {
		case telemetry.ConclusionFailure:
			row.WriteString("crit, ")
		case telemetry.ConclusionSkipped:
			row.WriteString("done, ")
		}

		start, end := e.StartTime.UnixMilli(), e.EndTime.UnixMilli()
		row.WriteString(strconv.FormatInt(min(start, end), 10))
		row.WriteString(", ")
		row.WriteString(strconv.FormatInt(end, 10))
		lines = append(lines, row.String())
	}

	return strings.Join(lines, "\n")
}

// Section wraps the chart in a fenced mermaid block under the Step Trace heading.
func Section(jobName string, events []telemetry.Event) string {
	return strings.Join([]string{
		"",
		Heading,
		"",
		"```mermaid",
		Chart(jobName, events),
		"```",
	}, "\n")
}
