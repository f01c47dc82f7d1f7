// Package report merges the trace buffers of every producer of a target into
// a single timeline and renders it.
package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/rs/zerolog"

	"github.com/getsentry/ftracer/internal/collector"
	"github.com/getsentry/ftracer/internal/errorutil"
	"github.com/getsentry/ftracer/internal/inspect"
	"github.com/getsentry/ftracer/internal/render"
	"github.com/getsentry/ftracer/internal/stackdepth"
	"github.com/getsentry/ftracer/internal/symbol"
	"github.com/getsentry/ftracer/internal/timeline"
)

type Options struct {
	// Limit is the number of most recent timestamps to render, 0 for all.
	Limit  int
	Layout render.Layout
	Color  bool
}

// Generate writes the report of everything in.Producers recorded to w.
// Nothing is written when reading from the inspector fails.
func Generate(ctx context.Context, w io.Writer, in inspect.Inspector, resolver symbol.Resolver, opts Options) error {
	logger := zerolog.Ctx(ctx)

	frequency, err := in.Frequency(ctx)
	if err != nil {
		if !errors.Is(err, errorutil.ErrMissingInstrumentation) {
			err = fmt.Errorf("%w: %w", errorutil.ErrMissingInstrumentation, err)
		}
		return err
	}
	if !(frequency > 0) || math.IsInf(frequency, 1) {
		return fmt.Errorf("%w: invalid frequency %v", errorutil.ErrMissingInstrumentation, frequency)
	}

	producers, err := in.Producers(ctx)
	if err != nil {
		return fmt.Errorf("reading trace buffers: %w", err)
	}

	c := collector.New()
	for _, p := range producers {
		for _, r := range p.Records {
			r.ProducerID = p.ID
			c.Add(r)
		}
	}
	timestamps := timeline.Ordered(c.Timestamps(), opts.Limit)
	logger.Debug().
		Int("producers", len(producers)).
		Int("records", c.Len()).
		Int("timestamps", len(timestamps)).
		Float64("frequency", frequency).
		Msg("trace buffers collected")

	renderer := render.Renderer{
		Layout:   opts.Layout,
		Resolver: resolver,
		Color:    opts.Color,
		Logger:   logger,
	}
	var b bytes.Buffer
	err = renderer.Render(&b, c, timestamps, frequency, make(stackdepth.Trackers))
	if err != nil {
		return err
	}
	_, err = b.WriteTo(w)
	return err
}
