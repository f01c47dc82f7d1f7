package inspect

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"gocloud.dev/blob"
	"golang.org/x/sync/errgroup"

	"github.com/getsentry/ftracer/internal/errorutil"
	"github.com/getsentry/ftracer/internal/event"
	"github.com/getsentry/ftracer/internal/storageutil"
)

const (
	// EntrySize is the size of a trace buffer slot: timestamp, function,
	// 3 arguments and stack pointer, each a little-endian 64-bit word.
	EntrySize = 6 * 8

	frequencyObject = "frequency"
	dumpPrefix      = "thread-"
	dumpSuffix      = ".bin"

	readWorkers = 8
)

// Dumps reads raw trace buffer memory dumps from a bucket. Each thread's
// buffer is stored as <prefix>thread-<id>.bin, and the tick frequency as text
// in <prefix>frequency.
type Dumps struct {
	Bucket *blob.Bucket
	Prefix string
}

func (d Dumps) Frequency(ctx context.Context) (float64, error) {
	data, err := storageutil.ReadAll(ctx, d.Bucket, d.Prefix+frequencyObject)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errorutil.ErrMissingInstrumentation, err)
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(string(data)), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", errorutil.ErrMissingInstrumentation, err)
	}
	return f, nil
}

func (d Dumps) Producers(ctx context.Context) ([]Producer, error) {
	keys, ids, err := d.list(ctx)
	if err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		log.Warn().Str("prefix", d.Prefix).Msg("no trace buffer dumps found")
	}

	producers := make([]Producer, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(readWorkers)
	for i := range keys {
		i := i
		g.Go(func() error {
			data, err := storageutil.ReadAll(gctx, d.Bucket, keys[i])
			if err != nil {
				return fmt.Errorf("%w: %w", errorutil.ErrMissingInstrumentation, err)
			}
			records, err := DecodeEntries(ids[i], data)
			if err != nil {
				return fmt.Errorf("%s: %w", keys[i], err)
			}
			producers[i] = Producer{ID: ids[i], Records: records}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(producers, func(i, j int) bool {
		return producers[i].ID < producers[j].ID
	})
	return producers, nil
}

func (d Dumps) list(ctx context.Context) ([]string, []uint64, error) {
	var (
		keys []string
		ids  []uint64
	)
	it := d.Bucket.List(&blob.ListOptions{Prefix: d.Prefix + dumpPrefix, Delimiter: "/"})
	for {
		obj, err := it.Next(ctx)
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		if obj.IsDir {
			continue
		}
		name := strings.TrimPrefix(obj.Key, d.Prefix+dumpPrefix)
		if !strings.HasSuffix(name, dumpSuffix) {
			continue
		}
		id, err := strconv.ParseUint(strings.TrimSuffix(name, dumpSuffix), 10, 64)
		if err != nil || id == 0 {
			log.Debug().Str("key", obj.Key).Msg("skipping object not named after a thread")
			continue
		}
		keys = append(keys, obj.Key)
		ids = append(ids, id)
	}
	return keys, ids, nil
}

// DecodeEntries decodes a raw trace buffer into records of a producer.
func DecodeEntries(producerID uint64, data []byte) ([]event.Record, error) {
	if len(data)%EntrySize != 0 {
		return nil, fmt.Errorf("%w: buffer of %d bytes is not made of %d byte entries", errorutil.ErrDataIntegrity, len(data), EntrySize)
	}
	records := make([]event.Record, 0, len(data)/EntrySize)
	for off := 0; off < len(data); off += EntrySize {
		word := func(i int) uint64 {
			return binary.LittleEndian.Uint64(data[off+i*8:])
		}
		records = append(records, event.Record{
			Timestamp:    word(0),
			ProducerID:   producerID,
			FunctionRef:  word(1),
			Args:         [3]uint64{word(2), word(3), word(4)},
			StackPointer: word(5),
		})
	}
	return records, nil
}
