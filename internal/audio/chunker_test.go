package audio

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSplit_BelowThresholdSingleSegment(t *testing.T) {
	path := testWAV(t, t.TempDir(), 3*time.Second, 8000, 1)

	ck := NewChunker(time.Second, DefaultSizeThreshold)
	segments, err := ck.Split(path)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segments) != 1 {
		t.Fatalf("got %d segments, want 1", len(segments))
	}
	seg := segments[0]
	if seg.Path != path {
		t.Errorf("segment path = %q, want the asset itself %q", seg.Path, path)
	}
	if seg.Temp {
		t.Error("whole-asset segment marked temp")
	}
	if seg.Duration != 3*time.Second {
		t.Errorf("segment duration = %v, want 3s", seg.Duration)
	}
}

func TestSplit_ChunkedContiguous(t *testing.T) {
	// 3s at 1s windows, threshold forced below the encoded size.
	path := testWAV(t, t.TempDir(), 3*time.Second, 8000, 1)

	ck := NewChunker(time.Second, 1)
	segments, err := ck.Split(path)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(segments))
	}

	var next time.Duration
	for i, seg := range segments {
		if seg.Index != i {
			t.Errorf("segment %d has index %d", i, seg.Index)
		}
		if !seg.Temp {
			t.Errorf("segment %d not marked temp", i)
		}
		if seg.Start != next {
			t.Errorf("segment %d start = %v, want %v (contiguous, non-overlapping)", i, seg.Start, next)
		}
		if seg.Duration != time.Second {
			t.Errorf("segment %d duration = %v, want 1s", i, seg.Duration)
		}
		next += seg.Duration

		if !strings.HasPrefix(filepath.Base(seg.Path), "chunk_") {
			t.Errorf("segment %d path = %q, want chunk_ prefix", i, seg.Path)
		}
		d, err := Duration(seg.Path)
		if err != nil {
			t.Fatalf("segment %d unreadable: %v", i, err)
		}
		if d != time.Second {
			t.Errorf("segment %d file duration = %v, want 1s", i, d)
		}
	}
	if next != 3*time.Second {
		t.Errorf("segment durations sum to %v, want 3s", next)
	}
}

func TestSplit_TruncatedFinalWindow(t *testing.T) {
	// 2.5s split into 1s windows → 3 segments, last one 500ms.
	path := testWAV(t, t.TempDir(), 2500*time.Millisecond, 8000, 1)

	ck := NewChunker(time.Second, 1)
	segments, err := ck.Split(path)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(segments))
	}
	if last := segments[2].Duration; last != 500*time.Millisecond {
		t.Errorf("final segment duration = %v, want 500ms", last)
	}
}

func TestSplit_ZeroLengthAsset(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.wav")
	if err := WriteWAV(path, nil, 8000, 1); err != nil {
		t.Fatalf("WriteWAV: %v", err)
	}

	ck := NewChunker(time.Second, DefaultSizeThreshold)
	segments, err := ck.Split(path)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(segments) != 0 {
		t.Errorf("got %d segments for zero-length asset, want 0", len(segments))
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("zero-length split left %d files in dir, want just the asset", len(entries))
	}
}

func TestSplit_MissingAsset(t *testing.T) {
	ck := NewChunker(time.Second, 1)
	if _, err := ck.Split(filepath.Join(t.TempDir(), "missing.wav")); err == nil {
		t.Error("Split on missing asset returned nil error")
	}
}
