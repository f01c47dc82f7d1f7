package collector

import "github.com/getsentry/ftracer/internal/event"

// Collector buckets the records of every producer by timestamp.
type Collector struct {
	buckets       map[uint64][]event.Record
	maxProducerID uint64
	count         int
}

func New() *Collector {
	return &Collector{buckets: make(map[uint64][]event.Record)}
}

// Add appends r to the bucket of its timestamp. Empty records are skipped.
func (c *Collector) Add(r event.Record) {
	if r.Empty() {
		return
	}
	c.buckets[r.Timestamp] = append(c.buckets[r.Timestamp], r)
	if r.ProducerID > c.maxProducerID {
		c.maxProducerID = r.ProducerID
	}
	c.count++
}

// MaxProducerID returns the largest producer ID added, or 0 if none.
func (c *Collector) MaxProducerID() uint64 {
	return c.maxProducerID
}

// Timestamps returns the distinct timestamps holding at least one record, in
// no particular order.
func (c *Collector) Timestamps() []uint64 {
	timestamps := make([]uint64, 0, len(c.buckets))
	for ts := range c.buckets {
		timestamps = append(timestamps, ts)
	}
	return timestamps
}

// Records returns the records sharing timestamp ts, in the order they were added.
func (c *Collector) Records(ts uint64) []event.Record {
	return c.buckets[ts]
}

// Len returns the number of records collected.
func (c *Collector) Len() int {
	return c.count
}
