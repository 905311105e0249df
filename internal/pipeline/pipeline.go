package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/edgecam/internal/detect"
	"github.com/ironsheep/edgecam/internal/frame"
	"github.com/ironsheep/edgecam/internal/mailbox"
	"github.com/ironsheep/edgecam/internal/publish"
	"github.com/ironsheep/edgecam/internal/settings"
)

// DefaultJPEGQuality is the quality used for published frames.
const DefaultJPEGQuality = 70

// RawSink receives every captured frame. UpdateRaw must not block; it reports
// false when the frame was dropped.
type RawSink interface {
	UpdateRaw(f *frame.Buffer) bool
}

// ProcessedSink receives every successfully transformed frame.
type ProcessedSink interface {
	UpdateProcessed(f *frame.Buffer)
}

// Config tunes the pipeline.
type Config struct {
	TargetFPS   float64
	JPEGQuality int
}

// Deps are the collaborators the pipeline routes frames between.
// Raw and Processed may be nil when no surface is attached.
type Deps struct {
	Detector  detect.Detector
	Settings  *settings.Channel
	Publisher *publish.Publisher
	Raw       RawSink
	Processed ProcessedSink
	Logger    *zap.Logger
}

// Stats is a snapshot of the frame path counters.
type Stats struct {
	Rates
	Mailbox    mailbox.Stats `json:"mailbox"`
	RawDropped uint64        `json:"rawDropped"`
	Failures   uint64        `json:"failures"`
}

// Pipeline routes captured frames to the raw sink and, rate-gated, through the
// mailbox to the processing worker.
type Pipeline struct {
	gov      *Governor
	box      *mailbox.Mailbox
	det      detect.Detector
	settings *settings.Channel
	pub      *publish.Publisher
	raw      RawSink
	proc     ProcessedSink
	log      *zap.Logger
	quality  int
	now      func() time.Time

	counters   Counters
	sampler    *Sampler
	rawDropped atomic.Uint64
	failures   atomic.Uint64

	run atomic.Pointer[runState]
}

type runState struct {
	cancel  context.CancelFunc
	stopped chan struct{}
}

// Option customizes a Pipeline.
type Option func(*Pipeline)

// WithClock replaces time.Now for governor admission.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New validates cfg and wires the pipeline. Call Start to run the worker.
func New(cfg Config, deps Deps, opts ...Option) (*Pipeline, error) {
	if deps.Detector == nil {
		return nil, fmt.Errorf("pipeline: detector is required")
	}
	if deps.Settings == nil || deps.Publisher == nil {
		return nil, fmt.Errorf("pipeline: settings and publisher are required")
	}
	gov, err := NewGovernor(cfg.TargetFPS)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	quality := cfg.JPEGQuality
	if quality == 0 {
		quality = DefaultJPEGQuality
	}
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	p := &Pipeline{
		gov:      gov,
		box:      mailbox.New(),
		det:      deps.Detector,
		settings: deps.Settings,
		pub:      deps.Publisher,
		raw:      deps.Raw,
		proc:     deps.Processed,
		log:      log,
		quality:  quality,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	p.sampler = NewSampler(&p.counters, 500*time.Millisecond, time.Second)
	return p, nil
}

// OnFrame is the capture callback. It never blocks.
//
// Every frame goes to the raw sink. When edges are enabled and the governor
// admits it, a private copy replaces whatever is waiting in the mailbox.
func (p *Pipeline) OnFrame(f *frame.Buffer) {
	p.counters.captured.Add(1)

	if !p.settings.Enabled() {
		p.pushRaw(f)
		return
	}
	if p.gov.Admit(p.now()) {
		p.box.Offer(f.Clone())
	}
	p.pushRaw(f)
}

func (p *Pipeline) pushRaw(f *frame.Buffer) {
	if p.raw == nil {
		return
	}
	if !p.raw.UpdateRaw(f) {
		p.rawDropped.Add(1)
	}
}

// Start launches the worker and the FPS sampler. Calling Start twice is a no-op.
func (p *Pipeline) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	rs := &runState{cancel: cancel, stopped: make(chan struct{})}
	if !p.run.CompareAndSwap(nil, rs) {
		cancel()
		return
	}

	go p.sampler.Run(ctx)
	go func() {
		defer close(rs.stopped)
		p.work(ctx)
	}()

	p.log.Info("pipeline started",
		zap.Float64("target_fps", p.gov.TargetFPS()),
		zap.Duration("min_interval", p.gov.MinInterval()))
}

// Stop drains the mailbox, lets the worker finish its current cycle and waits
// for it to exit.
func (p *Pipeline) Stop() {
	p.box.Close()
	rs := p.run.Load()
	if rs == nil {
		return
	}
	rs.cancel()
	<-rs.stopped
	p.log.Info("pipeline stopped")
}

// Stats returns the current counters and the latest FPS sample.
func (p *Pipeline) Stats() Stats {
	return Stats{
		Rates:      p.sampler.Latest(),
		Mailbox:    p.box.Stats(),
		RawDropped: p.rawDropped.Load(),
		Failures:   p.failures.Load(),
	}
}

// Rates returns the latest FPS sample.
func (p *Pipeline) Rates() Rates {
	return p.sampler.Latest()
}

// Governor exposes the admission governor.
func (p *Pipeline) Governor() *Governor {
	return p.gov
}
