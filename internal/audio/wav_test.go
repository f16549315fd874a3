package audio

import (
	"path/filepath"
	"testing"
	"time"
)

// testWAV writes a WAV of the given duration filled with a ramp signal and
// returns its path.
func testWAV(t *testing.T, dir string, d time.Duration, sampleRate, channels int) string {
	t.Helper()
	n := int(d.Seconds()*float64(sampleRate)) * channels
	samples := make([]int16, n)
	for i := range samples {
		samples[i] = int16(i % 1000)
	}
	path := filepath.Join(dir, "test.wav")
	if err := WriteWAV(path, samples, sampleRate, channels); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}
	return path
}

func TestWriteReadRoundtrip(t *testing.T) {
	path := testWAV(t, t.TempDir(), 2*time.Second, 8000, 1)

	clip, err := ReadWAV(path)
	if err != nil {
		t.Fatalf("ReadWAV: %v", err)
	}
	if clip.SampleRate != 8000 {
		t.Errorf("SampleRate = %d, want 8000", clip.SampleRate)
	}
	if clip.Channels != 1 {
		t.Errorf("Channels = %d, want 1", clip.Channels)
	}
	if len(clip.Samples) != 16000 {
		t.Errorf("len(Samples) = %d, want 16000", len(clip.Samples))
	}
	if clip.Samples[42] != 42 {
		t.Errorf("Samples[42] = %d, want 42", clip.Samples[42])
	}
	if clip.Duration() != 2*time.Second {
		t.Errorf("Duration = %v, want 2s", clip.Duration())
	}
}

func TestDuration(t *testing.T) {
	path := testWAV(t, t.TempDir(), 3*time.Second, 8000, 1)

	d, err := Duration(path)
	if err != nil {
		t.Fatalf("Duration: %v", err)
	}
	if d != 3*time.Second {
		t.Errorf("Duration = %v, want 3s", d)
	}
}

func TestReadWAVInvalid(t *testing.T) {
	if _, err := ReadWAV(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("ReadWAV on missing file returned nil error")
	}
}
