package transcribe

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/voxnote/voxnote/internal/audio"
	"github.com/voxnote/voxnote/internal/metrics"
)

// PipelineOptions configures a transcription pipeline run.
type PipelineOptions struct {
	// Client performs the uploads. A nil client means the transcription
	// capability is unavailable and every run soft-skips.
	Client        Transcriber
	ChunkDuration time.Duration
	SizeThreshold int64
	Observer      Observer // optional progress side channel
	Log           zerolog.Logger
}

// Pipeline orchestrates chunking and sequential uploads for one recording
// asset and joins the per-segment texts in order.
type Pipeline struct {
	client  Transcriber
	chunker *audio.Chunker
	obs     Observers
	log     zerolog.Logger
}

// Result is the outcome of a pipeline run. Skipped results are not errors:
// the audio is preserved and no transcript is produced.
type Result struct {
	Text     string
	Skipped  bool
	Reason   string // set when Skipped
	Segments int
	Failed   int // segments that produced an empty fragment
}

func NewPipeline(opts PipelineOptions) *Pipeline {
	p := &Pipeline{
		client:  opts.Client,
		chunker: audio.NewChunker(opts.ChunkDuration, opts.SizeThreshold),
		log:     opts.Log,
	}
	if opts.Observer != nil {
		p.obs = Observers{opts.Observer}
	}
	return p
}

// Run transcribes the asset at assetPath.
//
// No credential (nil client) or a zero-length asset is a soft-skip: the run
// reports "no transcript" without error. Otherwise the asset is uploaded
// whole or, above the size threshold, split into segments processed strictly
// in order. A failed segment yields an empty fragment and the run continues.
// A credential rejection aborts the whole run with no partial result. Every
// temp segment file gets exactly one deletion attempt, success or failure.
func (p *Pipeline) Run(ctx context.Context, assetPath string) (Result, error) {
	if p.client == nil {
		p.log.Info().Str("asset", assetPath).Msg("no credential configured, skipping transcription")
		res := Result{Skipped: true, Reason: "no credential"}
		p.obs.Status("transcription skipped: no API credential")
		p.obs.Done("")
		return res, nil
	}

	segments, err := p.chunker.Split(assetPath)
	if err != nil {
		p.obs.Error(err)
		return Result{}, err
	}
	if len(segments) == 0 {
		res := Result{Skipped: true, Reason: "nothing to transcribe"}
		p.obs.Status("nothing to transcribe")
		p.obs.Done("")
		return res, nil
	}

	if len(segments) == 1 && !segments[0].Temp {
		return p.runSingle(ctx, segments[0])
	}
	return p.runChunked(ctx, segments)
}

func (p *Pipeline) runSingle(ctx context.Context, seg audio.Segment) (Result, error) {
	p.obs.Status("transcribing...")
	text, err := p.client.Transcribe(ctx, seg.Path)
	if err != nil {
		metrics.SegmentsTotal.WithLabelValues("failed").Inc()
		p.obs.Error(err)
		return Result{}, err
	}
	metrics.SegmentsTotal.WithLabelValues("ok").Inc()
	p.obs.Progress(1)
	p.obs.Done(text)
	return Result{Text: text, Segments: 1}, nil
}

func (p *Pipeline) runChunked(ctx context.Context, segments []audio.Segment) (Result, error) {
	removed := make([]bool, len(segments))
	remove := func(i int) {
		if segments[i].Temp && !removed[i] {
			removed[i] = true
			if err := os.Remove(segments[i].Path); err != nil {
				p.log.Warn().Err(err).Str("path", segments[i].Path).Msg("failed to remove segment file")
			}
		}
	}
	// Segment files never outlive the run, even on abort.
	defer func() {
		for i := range segments {
			remove(i)
		}
	}()

	p.obs.Status(fmt.Sprintf("split into %d chunks", len(segments)))

	res := Result{Segments: len(segments)}
	fragments := make([]string, 0, len(segments))
	for i, seg := range segments {
		if err := ctx.Err(); err != nil {
			p.obs.Error(err)
			return Result{}, err
		}

		p.obs.Status(fmt.Sprintf("transcribing chunk %d/%d...", i+1, len(segments)))
		text, err := p.client.Transcribe(ctx, seg.Path)
		remove(i)

		if err != nil {
			metrics.SegmentsTotal.WithLabelValues("failed").Inc()
			if IsAuth(err) {
				p.obs.Error(err)
				return Result{}, err
			}
			p.log.Warn().Err(err).Int("chunk", i).Msg("chunk transcription failed, continuing")
			res.Failed++
			text = ""
		} else {
			metrics.SegmentsTotal.WithLabelValues("ok").Inc()
		}

		fragments = append(fragments, text)
		p.obs.Progress(float64(i+1) / float64(len(segments)))
	}

	// Fragment i always corresponds to segment i, including empty fragments
	// from failed segments.
	res.Text = strings.Join(fragments, "\n\n")
	p.obs.Done(res.Text)
	return res, nil
}
