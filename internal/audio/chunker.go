package audio

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultChunkDuration is the window each oversized asset is split into.
	DefaultChunkDuration = 10 * time.Minute

	// DefaultSizeThreshold is the largest encoded asset uploaded whole.
	// The remote API caps payloads at 25 MB; 24 MiB leaves headroom.
	DefaultSizeThreshold = 24 << 20
)

// Segment is a contiguous, time-bounded slice of a recording asset.
// Temp segments are ephemeral files the caller must delete after their
// upload attempt; a non-temp segment is the asset itself.
type Segment struct {
	Index    int
	Path     string
	Start    time.Duration
	Duration time.Duration
	Temp     bool
}

// Chunker splits recording assets into upload-sized segments.
type Chunker struct {
	MaxDuration   time.Duration
	SizeThreshold int64
}

func NewChunker(maxDuration time.Duration, sizeThreshold int64) *Chunker {
	if maxDuration <= 0 {
		maxDuration = DefaultChunkDuration
	}
	if sizeThreshold <= 0 {
		sizeThreshold = DefaultSizeThreshold
	}
	return &Chunker{MaxDuration: maxDuration, SizeThreshold: sizeThreshold}
}

// Split partitions the asset at path into consecutive, non-overlapping
// windows of MaxDuration, the final window truncated to the remaining
// length. The decision to split is size-based, not duration-based: an asset
// at or below SizeThreshold bytes is returned as one whole-asset segment,
// since the downstream API constrains payload size. A zero-length asset
// yields zero segments.
//
// Temp segment files are written next to the asset and named chunk_<id>.wav;
// segments are returned in ascending start-time order.
func (ck *Chunker) Split(path string) ([]Segment, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat asset: %w", err)
	}

	if info.Size() <= ck.SizeThreshold {
		d, err := Duration(path)
		if err != nil {
			return nil, err
		}
		if d == 0 {
			return nil, nil
		}
		return []Segment{{Index: 0, Path: path, Duration: d}}, nil
	}

	clip, err := ReadWAV(path)
	if err != nil {
		return nil, err
	}
	if len(clip.Samples) == 0 {
		return nil, nil
	}

	samplesPerWindow := int(ck.MaxDuration.Seconds()*float64(clip.SampleRate)) * clip.Channels
	if samplesPerWindow <= 0 {
		return nil, fmt.Errorf("chunk duration %v too small for sample rate %d", ck.MaxDuration, clip.SampleRate)
	}

	dir := filepath.Dir(path)
	var segments []Segment
	for start := 0; start < len(clip.Samples); start += samplesPerWindow {
		end := start + samplesPerWindow
		if end > len(clip.Samples) {
			end = len(clip.Samples)
		}
		window := clip.Samples[start:end]

		segPath := filepath.Join(dir, fmt.Sprintf("chunk_%s.wav", uuid.NewString()))
		samples := make([]int16, len(window))
		for i, s := range window {
			samples[i] = int16(s)
		}
		if err := WriteWAV(segPath, samples, clip.SampleRate, clip.Channels); err != nil {
			// Don't leak the segments written so far.
			for _, seg := range segments {
				_ = os.Remove(seg.Path)
			}
			return nil, fmt.Errorf("write segment %d: %w", len(segments), err)
		}

		frames := len(window) / clip.Channels
		segments = append(segments, Segment{
			Index:    len(segments),
			Path:     segPath,
			Start:    time.Duration(start/clip.Channels) * time.Second / time.Duration(clip.SampleRate),
			Duration: time.Duration(frames) * time.Second / time.Duration(clip.SampleRate),
			Temp:     true,
		})
	}
	return segments, nil
}
