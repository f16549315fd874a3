package audio

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"github.com/rs/zerolog"
)

// Capture streams microphone samples into an in-memory buffer on its own
// goroutine while the recording flag is set. Each blocking device read fills
// one ~100ms block, so the stop flag is observed within that interval. The
// buffer is single-writer (the capture goroutine) and single-reader: Drain
// must only be called after Wait reports that the loop exited.
type Capture struct {
	sampleRate int
	channels   int
	log        zerolog.Logger

	recording atomic.Bool
	done      chan struct{}

	mu     sync.Mutex
	blocks [][]int16
	err    error
}

func NewCapture(sampleRate, channels int, log zerolog.Logger) *Capture {
	return &Capture{
		sampleRate: sampleRate,
		channels:   channels,
		log:        log,
	}
}

// Start opens the default input device and begins capturing. Returns an
// error if a capture is already running or the device cannot be opened.
func (c *Capture) Start() error {
	if !c.recording.CompareAndSwap(false, true) {
		return fmt.Errorf("capture already running")
	}
	c.mu.Lock()
	c.blocks = nil
	c.err = nil
	c.mu.Unlock()
	c.done = make(chan struct{})

	if err := portaudio.Initialize(); err != nil {
		c.recording.Store(false)
		return fmt.Errorf("portaudio init: %w", err)
	}

	in := make([]int16, 4096)
	stream, err := portaudio.OpenDefaultStream(c.channels, 0, float64(c.sampleRate), len(in), in)
	if err != nil {
		portaudio.Terminate()
		c.recording.Store(false)
		return fmt.Errorf("open input stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		c.recording.Store(false)
		return fmt.Errorf("start input stream: %w", err)
	}

	go c.loop(stream, in)
	return nil
}

func (c *Capture) loop(stream *portaudio.Stream, in []int16) {
	defer close(c.done)
	defer portaudio.Terminate()
	defer func() {
		_ = stream.Stop()
		_ = stream.Close()
	}()

	for c.recording.Load() {
		if err := stream.Read(); err != nil {
			c.mu.Lock()
			c.err = fmt.Errorf("read input stream: %w", err)
			c.mu.Unlock()
			c.recording.Store(false)
			return
		}
		block := make([]int16, len(in))
		copy(block, in)
		c.mu.Lock()
		c.blocks = append(c.blocks, block)
		c.mu.Unlock()
	}
	c.log.Debug().Int("blocks", len(c.blocks)).Msg("capture loop stopped")
}

// Stop clears the recording flag. The capture goroutine observes it within
// one device read and exits; use Wait to block until then.
func (c *Capture) Stop() {
	c.recording.Store(false)
}

// Recording reports whether the capture loop is active.
func (c *Capture) Recording() bool {
	return c.recording.Load()
}

// Wait blocks until the capture goroutine has exited and returns any device
// error it hit.
func (c *Capture) Wait() error {
	if c.done != nil {
		<-c.done
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Drain concatenates the buffered sample blocks and clears the buffer. Call
// exactly once, after Wait.
func (c *Capture) Drain() []int16 {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := 0
	for _, b := range c.blocks {
		n += len(b)
	}
	samples := make([]int16, 0, n)
	for _, b := range c.blocks {
		samples = append(samples, b...)
	}
	c.blocks = nil
	return samples
}
