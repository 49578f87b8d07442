package dataset

import (
	"github.com/textforge/simcse-data/simdata/config"
)

// PaddingStrategy selects how batches are padded. Exactly one strategy is
// chosen at pipeline construction; the variants are mutually exclusive.
type PaddingStrategy interface {
	padding()
}

// FixedPadding pads (or truncates) every sequence to MaxLen, giving every
// batch the deterministic shape (batch_size, MaxLen).
type FixedPadding struct {
	MaxLen int
}

// BatchPadding groups sequences into batches in pipeline order and pads each
// batch to the length of its own longest member. Padding is minimized within a
// batch, not globally.
type BatchPadding struct{}

// BucketPadding assigns examples to length buckets keyed by input_ids length
// and pads each bucket's batches to their own longest member. Average padding
// waste drops across the whole dataset at the cost of near-sorted-by-length
// batch composition.
type BucketPadding struct {
	Boundaries []int
}

func (FixedPadding) padding()  {}
func (BatchPadding) padding()  {}
func (BucketPadding) padding() {}

// Options configures dataset construction and the transformation pipeline.
type Options struct {
	MaxSequenceLength int             // truncation/filter/padding bound
	PadID             int64           // padding fill value for input_ids and segment_ids
	BatchSize         int             // examples per batch
	DoFilter          bool            // drop examples longer than MaxSequenceLength
	ToDict            bool            // dict vs. tuple field shaping
	DropRemainder     bool            // discard the final short batch
	NumParallelCalls  int             // parse workers; 0 = let the engine choose
	BufferSize        int             // readahead hint; 0 = let the engine choose
	Verbose           bool            // log the first few examples for inspection
	Padding           PaddingStrategy // nil defaults to FixedPadding{MaxSequenceLength}
}

// DefaultOptions returns sensible defaults for dataset construction.
func DefaultOptions() Options {
	return Options{
		MaxSequenceLength: 512,
		PadID:             0,
		BatchSize:         32,
		DoFilter:          true,
		ToDict:            true,
		DropRemainder:     false,
		NumParallelCalls:  0, // auto
		BufferSize:        0, // auto
		Verbose:           false,
	}
}

// FromConfig maps a loaded pipeline configuration to Options. Bucket
// boundaries in the config select bucket padding; otherwise fixed padding.
func FromConfig(cfg config.PipelineConfig) Options {
	opts := Options{
		MaxSequenceLength: cfg.MaxSequenceLength,
		PadID:             cfg.PadID,
		BatchSize:         cfg.BatchSize,
		DoFilter:          cfg.DoFilter,
		ToDict:            cfg.ToDict,
		DropRemainder:     cfg.DropRemainder,
		NumParallelCalls:  cfg.NumParallelCalls,
		BufferSize:        cfg.BufferSize,
		Verbose:           cfg.Verbose,
	}
	if len(cfg.BucketBoundaries) > 0 {
		opts.Padding = BucketPadding{Boundaries: cfg.BucketBoundaries}
	}
	return opts
}

// strategy resolves the effective padding strategy for these options.
func (o Options) strategy() PaddingStrategy {
	if o.Padding == nil {
		return FixedPadding{MaxLen: o.MaxSequenceLength}
	}
	return o.Padding
}

// batchSize resolves the effective batch size.
func (o Options) batchSize() int {
	if o.BatchSize <= 0 {
		return 32
	}
	return o.BatchSize
}
