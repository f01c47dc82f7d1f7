// Package render writes the interleaved trace of all producers as aligned
// text, one line per record.
package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/getsentry/ftracer/internal/collector"
	"github.com/getsentry/ftracer/internal/stackdepth"
	"github.com/getsentry/ftracer/internal/symbol"
)

// cells measures labels the same way whatever the locale: East Asian
// ambiguous runes are one cell wide.
var cells = &runewidth.Condition{EastAsianWidth: false}

type Renderer struct {
	Layout   Layout
	Resolver symbol.Resolver
	// Color makes the header bold.
	Color bool
	// Logger receives symbol resolution failures. The global logger is used
	// when nil.
	Logger *zerolog.Logger
}

// Render writes a header and then the records of c for each of timestamps,
// in order. Times are divided by frequency to be displayed in seconds.
// trackers is updated with the stack pointer of every rendered record.
func (r Renderer) Render(w io.Writer, c *collector.Collector, timestamps []uint64, frequency float64, trackers stackdepth.Trackers) error {
	producers := c.MaxProducerID()
	width, err := r.Layout.FuncWidth(producers)
	if err != nil {
		return err
	}
	tw := r.Layout.TimestampWidth

	header := fmt.Sprintf("%*s %*s %3s %-*s %s", tw, "TIME", tw, "DELTA", "THR", width, "FUNC", "ARGS")
	if r.Color {
		bold := color.New(color.Bold)
		bold.EnableColor()
		header = bold.Sprint(header)
	}
	if _, err := fmt.Fprintln(w, header); err != nil {
		return err
	}

	var previous, start, delta uint64
	for _, t := range timestamps {
		if previous != 0 {
			delta = t - previous
		}
		if start == 0 {
			start = t
		}
		for _, e := range c.Records(t) {
			tracker := trackers.For(e.ProducerID)
			tracker.Update(e.StackPointer)

			prefix, err := r.Layout.Prefix(e.ProducerID, producers)
			if err != nil {
				return err
			}
			label := prefix + strings.Repeat(" ", tracker.Indent()*2) + r.name(e.FunctionRef)

			_, err = fmt.Fprintf(w, "%*.2f %*.2f %3d %s %x %x %x\n",
				tw, float64(t-start)/frequency,
				tw, float64(delta)/frequency,
				e.ProducerID,
				cells.FillRight(label, width),
				e.Args[0], e.Args[1], e.Args[2],
			)
			if err != nil {
				return err
			}
		}
		previous = t
	}
	return nil
}

func (r Renderer) name(ref uint64) string {
	if r.Resolver == nil {
		return symbol.Fallback(ref)
	}
	s, err := r.Resolver.Resolve(ref)
	if err != nil {
		r.logger().Debug().Err(err).Str("function", symbol.Fallback(ref)).Msg("can't resolve symbol")
	}
	if s.Name == "" {
		return symbol.Fallback(ref)
	}
	return s.Name
}

func (r Renderer) logger() *zerolog.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return &log.Logger
}
