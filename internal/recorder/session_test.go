package recorder

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/voxnote/voxnote/internal/audio"
	"github.com/voxnote/voxnote/internal/config"
	"github.com/voxnote/voxnote/internal/settings"
	"github.com/voxnote/voxnote/internal/transcribe"
)

type stubClient struct {
	text  string
	calls int
}

func (s *stubClient) Transcribe(ctx context.Context, path string) (string, error) {
	s.calls++
	return s.text, nil
}

func newTestSession(t *testing.T) (*Session, *config.Config) {
	t.Helper()
	cfg := &config.Config{
		BaseDir:       t.TempDir(),
		SampleRate:    8000,
		Channels:      1,
		ChunkDuration: time.Minute,
		SizeThreshold: 1 << 30,
	}
	store := settings.NewStore(cfg.SettingsPath())
	return New(cfg, store, zerolog.Nop()), cfg
}

func sampleAsset(t *testing.T, cfg *config.Config, name string) string {
	t.Helper()
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatal(err)
	}
	samples := make([]int16, cfg.SampleRate*2)
	for i := range samples {
		samples[i] = int16(i % 500)
	}
	path := filepath.Join(cfg.RecordingsDir(), name)
	if err := audio.WriteWAV(path, samples, cfg.SampleRate, cfg.Channels); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestTranscribeFileWritesTranscript(t *testing.T) {
	t.Setenv(settings.EnvAPIKey, "sk-test")
	s, cfg := newTestSession(t)

	stub := &stubClient{text: "hello there"}
	s.newClient = func(string) transcribe.Transcriber { return stub }

	path := sampleAsset(t, cfg, "meeting.wav")
	res, err := s.TranscribeFile(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
	if res.Skipped {
		t.Fatalf("unexpected skip: %+v", res)
	}
	if res.RecordingID != "meeting" {
		t.Errorf("RecordingID = %q", res.RecordingID)
	}
	if stub.calls != 1 {
		t.Errorf("upload calls = %d, want 1", stub.calls)
	}

	want := filepath.Join(cfg.TranscriptsDir(), "meeting.txt")
	if res.TranscriptPath != want {
		t.Errorf("TranscriptPath = %q, want %q", res.TranscriptPath, want)
	}
	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatal(err)
	}
	text := string(data)
	if !strings.HasPrefix(text, "Recording: meeting\n") {
		t.Errorf("transcript header wrong: %q", text)
	}
	if !strings.HasSuffix(text, "hello there") {
		t.Errorf("transcript body wrong: %q", text)
	}
	if res.Duration != 2*time.Second {
		t.Errorf("Duration = %v, want 2s", res.Duration)
	}
}

func TestTranscribeFileNoCredentialSkips(t *testing.T) {
	t.Setenv(settings.EnvAPIKey, "")
	s, cfg := newTestSession(t)

	stub := &stubClient{text: "should not run"}
	s.newClient = func(string) transcribe.Transcriber { return stub }

	path := sampleAsset(t, cfg, "meeting.wav")
	res, err := s.TranscribeFile(context.Background(), path, nil)
	if err != nil {
		t.Fatalf("TranscribeFile: %v", err)
	}
	if !res.Skipped {
		t.Fatalf("expected skip without credential: %+v", res)
	}
	if stub.calls != 0 {
		t.Errorf("client invoked without credential")
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("audio asset must survive a skipped run: %v", err)
	}
	entries, _ := os.ReadDir(cfg.TranscriptsDir())
	if len(entries) != 0 {
		t.Errorf("transcript written on skip: %v", entries)
	}
}

func TestTranscribeFileMissingAsset(t *testing.T) {
	t.Setenv(settings.EnvAPIKey, "sk-test")
	s, cfg := newTestSession(t)
	s.newClient = func(string) transcribe.Transcriber { return &stubClient{} }

	_, err := s.TranscribeFile(context.Background(), filepath.Join(cfg.RecordingsDir(), "gone.wav"), nil)
	if err == nil {
		t.Fatal("expected error for missing asset")
	}
}

func TestStatsStartEmpty(t *testing.T) {
	s, _ := newTestSession(t)
	st := s.Stats()
	if st.Recording || st.Recordings != 0 || st.Transcribed != 0 || st.Failed != 0 {
		t.Errorf("Stats = %+v", st)
	}
}
