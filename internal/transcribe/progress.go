package transcribe

import "github.com/rs/zerolog"

// Observer receives pipeline progress events. It is a passive side channel
// for a presentation layer; the pipeline never touches presentation state
// directly. Progress fractions are bounded to [0,1]; Done or Error is the
// terminal signal.
type Observer interface {
	Status(msg string)
	Progress(fraction float64)
	Done(transcript string)
	Error(err error)
}

// Observers fans events out to every observer in order. A nil or empty
// slice is a valid no-op observer.
type Observers []Observer

func (os Observers) Status(msg string) {
	for _, o := range os {
		o.Status(msg)
	}
}

func (os Observers) Progress(fraction float64) {
	if fraction < 0 {
		fraction = 0
	} else if fraction > 1 {
		fraction = 1
	}
	for _, o := range os {
		o.Progress(fraction)
	}
}

func (os Observers) Done(transcript string) {
	for _, o := range os {
		o.Done(transcript)
	}
}

func (os Observers) Error(err error) {
	for _, o := range os {
		o.Error(err)
	}
}

// LogObserver writes progress events to the operator log.
type LogObserver struct {
	Log zerolog.Logger
}

func (l LogObserver) Status(msg string) { l.Log.Info().Msg(msg) }
func (l LogObserver) Progress(fraction float64) {
	l.Log.Debug().Float64("fraction", fraction).Msg("progress")
}
func (l LogObserver) Done(transcript string) {
	l.Log.Info().Int("chars", len(transcript)).Msg("transcription done")
}
func (l LogObserver) Error(err error) { l.Log.Error().Err(err).Msg("transcription failed") }
