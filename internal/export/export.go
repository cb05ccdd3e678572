// Package export renders task collections as downloadable JSON, CSV and plain-text
// report documents.
package export

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/taskmanager/taskmanager-go/internal/model"
	"github.com/taskmanager/taskmanager-go/internal/tasklist"
)

// ErrNoTasks is returned when a CSV export is requested for an empty collection.
var ErrNoTasks = errors.New("no tasks to export")

// Format is a supported export format.
type Format string

const (
	FormatJSON   Format = "json"
	FormatCSV    Format = "csv"
	FormatReport Format = "txt"
)

// ReportFilename is the fixed download name of the text report.
const ReportFilename = "task_report.txt"

const shortDate = "1/2/2006"

var csvHeader = []string{"Title", "Description", "Status", "Priority", "Due Date", "Created At", "Updated At"}

// ParseFormat accepts "", json, csv and txt. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "":
		return FormatJSON, nil
	case FormatJSON, FormatCSV, FormatReport:
		return Format(s), nil
	}
	return "", fmt.Errorf("unknown export format %q", s)
}

// Document is a rendered export ready to be sent as a file download.
type Document struct {
	Filename    string
	ContentType string
	Body        []byte
}

// Render produces the document for format. description names the filter that
// produced tasks and ends up in the filename.
func Render(format Format, tasks []model.Task, description string, now time.Time) (Document, error) {
	switch format {
	case FormatJSON:
		body, err := JSON(tasks)
		if err != nil {
			return Document{}, err
		}
		return Document{
			Filename:    Filename(description, format, now),
			ContentType: "application/json",
			Body:        body,
		}, nil
	case FormatCSV:
		body, err := CSV(tasks, now.Location())
		if err != nil {
			return Document{}, err
		}
		return Document{
			Filename:    Filename(description, format, now),
			ContentType: "text/csv; charset=utf-8",
			Body:        body,
		}, nil
	case FormatReport:
		return Document{
			Filename:    ReportFilename,
			ContentType: "text/plain; charset=utf-8",
			Body:        []byte(Report(tasks, now)),
		}, nil
	}
	return Document{}, fmt.Errorf("unknown export format %q", format)
}

// Filename returns tasks_<description>_<YYYY-MM-DD>.<ext> using the UTC date of now.
func Filename(description string, format Format, now time.Time) string {
	if description == "" {
		description = "all"
	}
	return fmt.Sprintf("tasks_%s_%s.%s", description, now.UTC().Format("2006-01-02"), format)
}

// JSON renders tasks as an indented JSON array. An empty collection renders as [].
func JSON(tasks []model.Task) ([]byte, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	return json.MarshalIndent(tasks, "", "  ")
}

// CSV renders tasks with a header row, one line per task. Dates are formatted in loc.
func CSV(tasks []model.Task, loc *time.Location) ([]byte, error) {
	if len(tasks) == 0 {
		return nil, ErrNoTasks
	}

	lines := make([]string, 0, len(tasks)+1)
	lines = append(lines, strings.Join(csvHeader, ","))
	for _, t := range tasks {
		due := ""
		if t.DueDate != nil {
			due = t.DueDate.In(loc).Format(shortDate)
		}
		row := []string{
			escapeCSV(t.Title),
			escapeCSV(t.Description),
			string(t.Status),
			string(t.Priority),
			due,
			t.CreatedAt.In(loc).Format(shortDate),
			t.UpdatedAt.In(loc).Format(shortDate),
		}
		lines = append(lines, strings.Join(row, ","))
	}
	return []byte(strings.Join(lines, "\n")), nil
}

// escapeCSV quotes v when it contains a comma, quote or newline, doubling inner quotes.
func escapeCSV(v string) string {
	if !strings.ContainsAny(v, ",\"\n") {
		return v
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// Report renders a plain-text summary followed by one block per task.
func Report(tasks []model.Task, now time.Time) string {
	s := tasklist.ComputeStats(tasks, now)
	pct := 0
	if s.Total > 0 {
		pct = int(math.Floor(float64(s.Completed)/float64(s.Total)*100 + 0.5))
	}

	var b strings.Builder
	b.WriteString("Task Management Report\n")
	fmt.Fprintf(&b, "Generated: %s\n\n", now.Format("1/2/2006, 3:04:05 PM"))
	b.WriteString("=== Summary ===\n")
	fmt.Fprintf(&b, "Total Tasks: %d\n", s.Total)
	fmt.Fprintf(&b, "Completed: %d (%d%%)\n", s.Completed, pct)
	fmt.Fprintf(&b, "In Progress: %d\n", s.InProgress)
	fmt.Fprintf(&b, "To Do: %d\n", s.Todo)
	fmt.Fprintf(&b, "High Priority: %d\n", s.HighPriority)
	fmt.Fprintf(&b, "Overdue: %d\n\n", s.Overdue)
	b.WriteString("=== Task Details ===\n")

	for i, t := range tasks {
		if i > 0 {
			b.WriteString("\n")
		}
		due := "Not set"
		if t.DueDate != nil {
			due = t.DueDate.In(now.Location()).Format(shortDate)
		}
		desc := t.Description
		if desc == "" {
			desc = "No description"
		}
		fmt.Fprintf(&b, "\n%d. %s\n", i+1, t.Title)
		fmt.Fprintf(&b, "   Status: %s\n", t.Status)
		fmt.Fprintf(&b, "   Priority: %s\n", t.Priority)
		fmt.Fprintf(&b, "   Due Date: %s\n", due)
		fmt.Fprintf(&b, "   Description: %s\n", desc)
	}

	return strings.TrimSpace(b.String())
}
