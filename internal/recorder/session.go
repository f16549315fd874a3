// Package recorder owns the record/save/transcribe lifecycle. A Session is
// the single application context: it holds the filesystem roots, the
// settings store, and the capture state, so no component reaches for
// ambient globals.
package recorder

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/voxnote/voxnote/internal/audio"
	"github.com/voxnote/voxnote/internal/config"
	"github.com/voxnote/voxnote/internal/metrics"
	"github.com/voxnote/voxnote/internal/settings"
	"github.com/voxnote/voxnote/internal/transcribe"
	"github.com/voxnote/voxnote/internal/transcript"
)

type Session struct {
	cfg   *config.Config
	store *settings.Store
	log   zerolog.Logger

	// newClient builds the upload client for a resolved credential;
	// replaced in tests.
	newClient func(apiKey string) transcribe.Transcriber

	mu        sync.Mutex
	capture   *audio.Capture
	startTime time.Time

	recordings  atomic.Int64
	transcribed atomic.Int64
	failed      atomic.Int64
}

// SaveResult reports what a save-and-transcribe sequence produced. The
// audio asset is always preserved once written, whatever the transcription
// outcome.
type SaveResult struct {
	RecordingID    string
	AudioPath      string
	TranscriptPath string
	Transcript     string
	Duration       time.Duration
	NoAudio        bool // nothing was captured
	Skipped        bool // audio saved, transcription soft-skipped
}

// Stats is a point-in-time snapshot for the status endpoint.
type Stats struct {
	Recording      bool    `json:"recording"`
	ElapsedSeconds float64 `json:"elapsed_seconds"`
	Recordings     int64   `json:"recordings"`
	Transcribed    int64   `json:"transcribed"`
	Failed         int64   `json:"failed"`
}

func New(cfg *config.Config, store *settings.Store, log zerolog.Logger) *Session {
	s := &Session{
		cfg:   cfg,
		store: store,
		log:   log,
	}
	s.newClient = func(apiKey string) transcribe.Transcriber {
		return transcribe.NewWhisperClient(transcribe.WhisperOptions{
			URL:      cfg.WhisperURL,
			Model:    cfg.WhisperModel,
			APIKey:   apiKey,
			Language: cfg.Language,
			Timeout:  cfg.WhisperTimeout,
		})
	}
	return s
}

// Start begins capturing from the default microphone.
func (s *Session) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.capture != nil && s.capture.Recording() {
		return fmt.Errorf("already recording")
	}
	if err := s.cfg.EnsureDirs(); err != nil {
		return fmt.Errorf("create app directories: %w", err)
	}

	c := audio.NewCapture(s.cfg.SampleRate, s.cfg.Channels, s.log.With().Str("component", "capture").Logger())
	if err := c.Start(); err != nil {
		return err
	}
	s.capture = c
	s.startTime = time.Now()
	s.log.Info().Msg("recording started")
	return nil
}

// Recording reports whether a capture is in progress.
func (s *Session) Recording() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capture != nil && s.capture.Recording()
}

// Elapsed is the wall-clock time since the current recording started.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capture == nil {
		return 0
	}
	return time.Since(s.startTime)
}

// NotifyElapsed invokes fn with the elapsed time on a fixed interval while
// recording, on its own goroutine. It exits on its own when the recording
// stops or ctx is cancelled; it never blocks shutdown.
func (s *Session) NotifyElapsed(ctx context.Context, interval time.Duration, fn func(time.Duration)) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !s.Recording() {
					return
				}
				fn(s.Elapsed())
			}
		}
	}()
}

// StopAndSave stops the capture, persists the buffered audio as a WAV
// asset, and runs the transcription pipeline over it. Capture and encode
// failures abort the whole sequence and discard the partial audio; remote
// failures leave the asset saved.
func (s *Session) StopAndSave(ctx context.Context, obs transcribe.Observer) (SaveResult, error) {
	s.mu.Lock()
	c := s.capture
	s.mu.Unlock()
	if c == nil {
		return SaveResult{}, fmt.Errorf("not recording")
	}

	// Single-writer/single-reader handoff: the capture goroutine observes
	// the stop flag and exits before the buffer is drained, once.
	c.Stop()
	if err := c.Wait(); err != nil {
		s.failed.Add(1)
		c.Drain() // discard whatever was captured
		return SaveResult{}, fmt.Errorf("audio capture failed: %w", err)
	}
	samples := c.Drain()
	if len(samples) == 0 {
		s.log.Info().Msg("no audio recorded")
		return SaveResult{NoAudio: true}, nil
	}

	id := "recording_" + time.Now().Format("20060102_150405")
	audioPath := filepath.Join(s.cfg.RecordingsDir(), id+".wav")
	duration := time.Duration(len(samples)/s.cfg.Channels) * time.Second / time.Duration(s.cfg.SampleRate)

	if obs != nil {
		obs.Status("saving audio...")
	}
	if err := audio.WriteWAV(audioPath, samples, s.cfg.SampleRate, s.cfg.Channels); err != nil {
		s.failed.Add(1)
		os.Remove(audioPath) // no partial-save recovery
		return SaveResult{}, fmt.Errorf("save audio: %w", err)
	}
	s.recordings.Add(1)
	metrics.RecordingsTotal.Inc()
	metrics.RecordedSecondsTotal.Add(duration.Seconds())
	s.log.Info().Str("path", audioPath).Dur("duration", duration).Msg("recording saved")

	return s.transcribeAsset(ctx, id, audioPath, duration, obs)
}

// TranscribeFile runs the transcription pipeline over an existing WAV asset
// (the transcribe command and the directory watcher).
func (s *Session) TranscribeFile(ctx context.Context, wavPath string, obs transcribe.Observer) (SaveResult, error) {
	if err := s.cfg.EnsureDirs(); err != nil {
		return SaveResult{}, fmt.Errorf("create app directories: %w", err)
	}
	duration, err := audio.Duration(wavPath)
	if err != nil {
		return SaveResult{}, err
	}
	id := strings.TrimSuffix(filepath.Base(wavPath), filepath.Ext(wavPath))
	return s.transcribeAsset(ctx, id, wavPath, duration, obs)
}

func (s *Session) transcribeAsset(ctx context.Context, id, audioPath string, duration time.Duration, obs transcribe.Observer) (SaveResult, error) {
	res := SaveResult{
		RecordingID: id,
		AudioPath:   audioPath,
		Duration:    duration,
	}

	var client transcribe.Transcriber
	if key := s.store.APIKey(); key != "" {
		client = s.newClient(key)
	}
	pipeline := transcribe.NewPipeline(transcribe.PipelineOptions{
		Client:        client,
		ChunkDuration: s.cfg.ChunkDuration,
		SizeThreshold: s.cfg.SizeThreshold,
		Observer:      obs,
		Log:           s.log.With().Str("component", "pipeline").Logger(),
	})

	out, err := pipeline.Run(ctx, audioPath)
	if err != nil {
		s.failed.Add(1)
		metrics.TranscriptionsTotal.WithLabelValues("failed").Inc()
		return res, err
	}
	if out.Skipped || out.Text == "" {
		res.Skipped = true
		metrics.TranscriptionsTotal.WithLabelValues("skipped").Inc()
		s.log.Info().Str("reason", out.Reason).Msg("audio saved without transcript")
		return res, nil
	}

	res.Transcript = out.Text
	res.TranscriptPath = filepath.Join(s.cfg.TranscriptsDir(), id+".txt")
	header := transcript.Header{
		Recording: id,
		Date:      time.Now(),
		Duration:  duration,
	}
	if err := transcript.WriteFile(res.TranscriptPath, header, out.Text); err != nil {
		s.failed.Add(1)
		metrics.TranscriptionsTotal.WithLabelValues("failed").Inc()
		return res, fmt.Errorf("write transcript: %w", err)
	}

	s.transcribed.Add(1)
	metrics.TranscriptionsTotal.WithLabelValues("ok").Inc()
	s.log.Info().
		Str("transcript", res.TranscriptPath).
		Int("chars", len(out.Text)).
		Int("segments", out.Segments).
		Int("failed_segments", out.Failed).
		Msg("transcription complete")
	return res, nil
}

// Stats returns current session statistics.
func (s *Session) Stats() Stats {
	return Stats{
		Recording:      s.Recording(),
		ElapsedSeconds: s.Elapsed().Seconds(),
		Recordings:     s.recordings.Load(),
		Transcribed:    s.transcribed.Load(),
		Failed:         s.failed.Load(),
	}
}
