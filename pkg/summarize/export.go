package summarize

import (
	"fmt"
	"strings"
	"time"
)

var contentTypeLabels = map[ContentType]string{
	ContentTypeMeeting: "Meeting notes",
	ContentTypeEmail:   "Email",
	ContentTypeProject: "Project update",
	ContentTypeAuto:    "General text",
}

// ExportText renders a summary as a plain-text report suitable for download.
func ExportText(result *Result, createdAt time.Time) string {
	label, ok := contentTypeLabels[result.ContentType]
	if !ok {
		label = "Unknown"
	}

	var b strings.Builder
	divider := strings.Repeat("=", 50)

	b.WriteString("SUMMARY REPORT\n")
	fmt.Fprintf(&b, "Created: %s\n", createdAt.Format("2006-01-02 15:04"))
	fmt.Fprintf(&b, "Type: %s\n", label)
	b.WriteString(divider + "\n\n")

	fmt.Fprintf(&b, "SUMMARY:\n%s\n\n", result.Summary)

	b.WriteString("KEY POINTS:\n")
	for i, point := range result.KeyPoints {
		fmt.Fprintf(&b, "%d. %s\n", i+1, point)
	}
	b.WriteString("\n")

	b.WriteString("ACTION ITEMS:\n")
	for _, action := range result.ActionItems {
		fmt.Fprintf(&b, "[ ] %s\n", action)
	}
	b.WriteString("\n")

	if len(result.Deadlines) > 0 {
		b.WriteString("DEADLINES:\n")
		for _, d := range result.Deadlines {
			line := d.DueDate + " - " + d.Task
			if d.Person != "" {
				line += " (" + d.Person + ")"
			}
			if d.Priority != "" {
				line += " [" + d.Priority + "]"
			}
			b.WriteString(line + "\n")
		}
		b.WriteString("\n")
	}

	if len(result.PendingDecisions) > 0 {
		b.WriteString("PENDING DECISIONS:\n")
		for _, decision := range result.PendingDecisions {
			fmt.Fprintf(&b, "? %s\n", decision)
		}
		b.WriteString("\n")
	}

	if result.ResponseTemplate != "" {
		fmt.Fprintf(&b, "DRAFT REPLY:\n%s\n\n", result.ResponseTemplate)
	}

	b.WriteString(divider + "\n")

	return b.String()
}
