// Package transcript renders and writes the plain-text transcript files
// that accompany saved recordings.
package transcript

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Header identifies the recording a transcript belongs to.
type Header struct {
	Recording string // timestamp-derived recording identifier
	Date      time.Time
	Duration  time.Duration
}

// Render produces the transcript file contents: a header block, a separator
// line, and the transcript body.
func Render(h Header, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Recording: %s\n", h.Recording)
	fmt.Fprintf(&b, "Date: %s\n", h.Date.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Duration: %s\n", FormatDuration(h.Duration))
	b.WriteString(strings.Repeat("=", 50) + "\n\n")
	b.WriteString(body)
	return b.String()
}

// WriteFile writes the rendered transcript to path in one call.
func WriteFile(path string, h Header, body string) error {
	return os.WriteFile(path, []byte(Render(h, body)), 0o644)
}

// FormatDuration renders a duration as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	s := int(d.Seconds())
	return fmt.Sprintf("%02d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}
