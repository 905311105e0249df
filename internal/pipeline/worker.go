package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ironsheep/edgecam/internal/frame"
	"github.com/ironsheep/edgecam/internal/mailbox"
	"github.com/ironsheep/edgecam/internal/publish"
)

// work is the single processing goroutine. Exactly one detector invocation is
// in flight at any time.
func (p *Pipeline) work(ctx context.Context) {
	for {
		f, err := p.box.Take(ctx)
		if err != nil {
			if !errors.Is(err, mailbox.ErrClosed) && !errors.Is(err, context.Canceled) {
				p.log.Warn("mailbox take failed", zap.Error(err))
			}
			return
		}

		if !p.settings.Enabled() {
			continue
		}

		start := time.Now()
		p.process(f)
		p.counters.processed.Add(1)

		if !sleep(ctx, p.gov.Remaining(start, time.Now())) {
			return
		}
	}
}

// process runs one detection cycle. It never panics and never returns an
// error: failures become publisher status.
func (p *Pipeline) process(f *frame.Buffer) {
	low, high := p.settings.Thresholds()

	edges, err := p.detect(f, low, high)
	if err != nil {
		p.failures.Add(1)
		p.log.Warn("edge detection failed", zap.Error(err))
		p.pub.SetStatus(publish.ErrorStatus(err.Error()))
		return
	}

	if p.proc != nil {
		p.proc.UpdateProcessed(edges)
	}

	jpeg, err := frame.EncodeJPEG(edges, p.quality)
	if err != nil {
		p.log.Warn("jpeg encoding failed", zap.Error(err))
	} else {
		p.pub.SetFrame(jpeg)
	}
	p.pub.SetStatus(publish.RunningStatus)
}

// detect calls the detector and turns panics and empty results into errors.
func (p *Pipeline) detect(f *frame.Buffer, low, high int) (out *frame.Buffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			out, err = nil, fmt.Errorf("detector panic: %v", r)
		}
	}()

	out, err = p.det.Detect(f, low, high)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, fmt.Errorf("detector returned no frame")
	}
	return out, nil
}

// sleep waits for d or until ctx is done; it reports false on cancellation.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
