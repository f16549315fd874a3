// Package watcher monitors the recordings directory for WAV files dropped
// in by other tools and feeds them to a transcription handler.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/voxnote/voxnote/internal/metrics"
)

// debounce coalesces rapid Create+Write events and lets slow writers finish
// before the file is read.
const debounce = 500 * time.Millisecond

// Handler processes one watched WAV file.
type Handler func(path string)

// Stats is a snapshot of watcher counters for the status endpoint.
type Stats struct {
	Status    string `json:"status"`
	WatchDir  string `json:"watch_dir"`
	Processed int64  `json:"processed"`
	Skipped   int64  `json:"skipped"`
}

// Watcher tails a single directory for finished WAV files. Segment temp
// files written by the chunker (chunk_*.wav) are ignored so watch mode can
// share a directory with an active transcription run.
type Watcher struct {
	dir     string
	handler Handler
	log     zerolog.Logger

	watcher *fsnotify.Watcher

	debounceMu     sync.Mutex
	debounceTimers map[string]*time.Timer

	processed atomic.Int64
	skipped   atomic.Int64
	status    atomic.Value // string: "starting", "watching", "stopped"
}

func New(dir string, handler Handler, log zerolog.Logger) *Watcher {
	w := &Watcher{
		dir:            dir,
		handler:        handler,
		log:            log.With().Str("component", "watcher").Logger(),
		debounceTimers: make(map[string]*time.Timer),
	}
	w.status.Store("starting")
	return w
}

// Start begins watching. The event loop runs until ctx is cancelled or
// Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fw.Add(w.dir); err != nil {
		fw.Close()
		return err
	}
	w.watcher = fw
	w.status.Store("watching")
	w.log.Info().Str("watch_dir", w.dir).Msg("watching for new recordings")

	go w.loop(ctx)
	return nil
}

// Stop closes the underlying watcher and drains pending debounce timers.
func (w *Watcher) Stop() {
	w.status.Store("stopped")
	if w.watcher != nil {
		w.watcher.Close()
	}

	w.debounceMu.Lock()
	for path, t := range w.debounceTimers {
		t.Stop()
		delete(w.debounceTimers, path)
	}
	w.debounceMu.Unlock()

	w.log.Info().
		Int64("processed", w.processed.Load()).
		Int64("skipped", w.skipped.Load()).
		Msg("watcher stopped")
}

// Stats returns current watcher statistics.
func (w *Watcher) Stats() Stats {
	s, _ := w.status.Load().(string)
	return Stats{
		Status:    s,
		WatchDir:  w.dir,
		Processed: w.processed.Load(),
		Skipped:   w.skipped.Load(),
	}
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			if info, err := os.Stat(event.Name); err != nil || info.IsDir() {
				continue
			}
			if !eligible(event.Name) {
				w.skipped.Add(1)
				continue
			}
			w.schedule(event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Error().Err(err).Msg("fsnotify error")
		}
	}
}

// eligible reports whether a file name is a finished recording: a .wav
// that is not a chunker temp segment.
func eligible(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	if !strings.HasSuffix(name, ".wav") {
		return false
	}
	return !strings.HasPrefix(name, "chunk_")
}

func (w *Watcher) schedule(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if t, ok := w.debounceTimers[path]; ok {
		t.Reset(debounce)
		return
	}
	w.debounceTimers[path] = time.AfterFunc(debounce, func() {
		w.debounceMu.Lock()
		delete(w.debounceTimers, path)
		w.debounceMu.Unlock()

		w.process(path)
	})
}

func (w *Watcher) process(path string) {
	info, err := os.Stat(path)
	if err != nil {
		w.log.Warn().Err(err).Str("path", path).Msg("watched file vanished")
		w.skipped.Add(1)
		return
	}
	if info.Size() == 0 {
		w.log.Debug().Str("path", path).Msg("skipping empty file")
		w.skipped.Add(1)
		return
	}

	w.log.Info().Str("path", path).Msg("new recording detected")
	metrics.WatcherFilesTotal.Inc()
	w.handler(path)
	w.processed.Add(1)
}
