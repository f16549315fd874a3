package transcript

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestRender(t *testing.T) {
	h := Header{
		Recording: "recording_20260114_093015",
		Date:      time.Date(2026, 1, 14, 9, 30, 15, 0, time.UTC),
		Duration:  3*time.Minute + 25*time.Second,
	}
	out := Render(h, "hello world")

	lines := strings.Split(out, "\n")
	if lines[0] != "Recording: recording_20260114_093015" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "Date: 2026-01-14 09:30:15" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if lines[2] != "Duration: 00:03:25" {
		t.Errorf("line 2 = %q", lines[2])
	}
	if lines[3] != strings.Repeat("=", 50) {
		t.Errorf("separator line = %q", lines[3])
	}
	if lines[4] != "" {
		t.Errorf("expected blank line before body, got %q", lines[4])
	}
	if lines[5] != "hello world" {
		t.Errorf("body = %q", lines[5])
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	h := Header{Recording: "r", Date: time.Now(), Duration: time.Second}

	if err := WriteFile(path, h, "body"); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(string(data), "body") {
		t.Errorf("file does not end with body: %q", data)
	}
}

func TestFormatDuration(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "00:00:00"},
		{59 * time.Second, "00:00:59"},
		{61 * time.Minute, "01:01:00"},
		{25*time.Hour + 30*time.Minute + 5*time.Second, "25:30:05"},
	}
	for _, c := range cases {
		if got := FormatDuration(c.d); got != c.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}
