// Package notify surfaces recording outcomes as desktop notifications.
package notify

import (
	"github.com/gen2brain/beeep"
	"github.com/rs/zerolog"

	"github.com/voxnote/voxnote/internal/transcribe"
)

const appTitle = "voxnote"

// Desktop implements transcribe.Observer over the platform notification
// service. Only terminal events (Done, Error) raise a notification; status
// and progress updates stay in the terminal.
type Desktop struct {
	log zerolog.Logger
}

func NewDesktop(log zerolog.Logger) *Desktop {
	return &Desktop{log: log.With().Str("component", "notify").Logger()}
}

func (d *Desktop) Status(string)    {}
func (d *Desktop) Progress(float64) {}

func (d *Desktop) Done(transcript string) {
	msg := "Recording saved"
	if transcript != "" {
		msg = "Transcription complete: " + preview(transcript, 80)
	}
	d.send(msg)
}

func (d *Desktop) Error(err error) {
	d.send("Transcription failed: " + err.Error())
}

func (d *Desktop) send(msg string) {
	if err := beeep.Notify(appTitle, msg, ""); err != nil {
		// Headless sessions have no notification daemon.
		d.log.Debug().Err(err).Msg("desktop notification unavailable")
	}
}

// preview truncates s to at most n runes for the notification body.
func preview(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
