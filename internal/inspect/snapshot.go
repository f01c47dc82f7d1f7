package inspect

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
	"gocloud.dev/blob"

	"github.com/getsentry/ftracer/internal/errorutil"
	"github.com/getsentry/ftracer/internal/event"
	"github.com/getsentry/ftracer/internal/storageutil"
	"github.com/getsentry/ftracer/internal/symbol"
	"github.com/getsentry/ftracer/internal/types"
)

type (
	// Entry is one slot of a trace buffer.
	Entry struct {
		Timestamp    types.Uint64 `json:"tstamp"`
		Func         types.Uint64 `json:"func"`
		Arg1         types.Uint64 `json:"arg1"`
		Arg2         types.Uint64 `json:"arg2"`
		Arg3         types.Uint64 `json:"arg3"`
		StackPointer types.Uint64 `json:"rsp"`
	}

	Thread struct {
		ID     uint64  `json:"id"`
		Size   *int    `json:"size"`
		Buffer []Entry `json:"buffer"`
	}

	// Snapshot is a capture of the trace buffers of every thread of a target,
	// along with the annotations the debugger printed for the traced functions.
	Snapshot struct {
		Ticks     *float64          `json:"frequency"`
		Threads   []Thread          `json:"producers"`
		Symbols   map[string]string `json:"symbols,omitempty"`
	}
)

// LoadSnapshot reads a snapshot from a bucket.
func LoadSnapshot(ctx context.Context, b *blob.Bucket, objectName string) (*Snapshot, error) {
	var s Snapshot
	err := storageutil.UnmarshalCompressed(ctx, b, objectName, &s)
	if err != nil {
		if errors.Is(err, storageutil.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: %w", errorutil.ErrMissingInstrumentation, err)
		}
		return nil, err
	}
	return &s, nil
}

func (s *Snapshot) Frequency(ctx context.Context) (float64, error) {
	if s.Ticks == nil {
		return 0, fmt.Errorf("%w: frequency was not captured", errorutil.ErrMissingInstrumentation)
	}
	return *s.Ticks, nil
}

func (s *Snapshot) Producers(ctx context.Context) ([]Producer, error) {
	producers := make([]Producer, 0, len(s.Threads))
	for _, t := range s.Threads {
		if t.ID == 0 {
			return nil, fmt.Errorf("%w: thread without an ID", errorutil.ErrDataIntegrity)
		}
		if t.Size == nil || t.Buffer == nil {
			return nil, fmt.Errorf("%w: thread %d has no trace buffer", errorutil.ErrMissingInstrumentation, t.ID)
		}
		size := *t.Size
		if size < 0 {
			return nil, fmt.Errorf("%w: thread %d has a negative buffer size %d", errorutil.ErrDataIntegrity, t.ID, size)
		}
		if size > len(t.Buffer) {
			log.Warn().
				Uint64("thread_id", t.ID).
				Int("size", size).
				Int("captured", len(t.Buffer)).
				Msg("trace buffer was captured partially")
			size = len(t.Buffer)
		}
		records := make([]event.Record, 0, size)
		for _, e := range t.Buffer[:size] {
			records = append(records, e.Record(t.ID))
		}
		producers = append(producers, Producer{ID: t.ID, Records: records})
	}
	return producers, nil
}

// Annotations returns a resolver for the captured symbol annotations. Entries
// with an unreadable address are skipped.
func (s *Snapshot) Annotations() symbol.Annotations {
	annotations := make(symbol.Annotations, len(s.Symbols))
	for addr, text := range s.Symbols {
		ref, err := types.ParseUint64(addr)
		if err != nil {
			log.Warn().Err(err).Str("address", addr).Msg("skipping symbol annotation")
			continue
		}
		annotations[ref] = text
	}
	return annotations
}

func (e Entry) Record(producerID uint64) event.Record {
	return event.Record{
		Timestamp:    uint64(e.Timestamp),
		ProducerID:   producerID,
		FunctionRef:  uint64(e.Func),
		Args:         [3]uint64{uint64(e.Arg1), uint64(e.Arg2), uint64(e.Arg3)},
		StackPointer: uint64(e.StackPointer),
	}
}
