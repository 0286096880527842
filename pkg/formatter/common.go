package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
)

// getInstanceName returns a formatted instance name or <unnamed> if empty
func getInstanceName(name string) string {
	if name == "" {
		return "<unnamed>"
	}
	return name
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// relativeTime renders a time like "3 days ago"
func relativeTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "-"
	}
	return humanize.Time(*t)
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

// PrintJSON writes data as indented JSON
func PrintJSON(w io.Writer, data interface{}) error {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("error formatting JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(bytes))
	return err
}
