// Package inspect reads per-thread trace buffers out of a captured target.
//
// A target is instrumented with one fixed size ring buffer per thread, its
// length, and a global tick frequency. Inspectors expose those as producers
// and their records; they don't filter empty slots nor order anything.
package inspect

import (
	"context"

	"github.com/getsentry/ftracer/internal/event"
)

type (
	// Producer is a thread and the records read from its trace buffer.
	Producer struct {
		ID      uint64
		Records []event.Record
	}

	Inspector interface {
		// Frequency returns the number of timestamp ticks per second.
		Frequency(ctx context.Context) (float64, error)
		// Producers returns every instrumented producer of the target.
		Producers(ctx context.Context) ([]Producer, error)
	}
)
