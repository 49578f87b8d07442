// Package dataset assembles tokenized examples into length-aware padded
// batches for unsupervised contrastive (SimCSE-style) training. Four
// construction paths (persisted records, raw JSON-lines files, in-memory
// examples, an existing dataset) converge on one canonical ingestion
// interface and one shared transformation pipeline: filter, shape, pad.
package dataset

import (
	"errors"
	"io"
	"log/slog"

	"github.com/textforge/simcse-data/simdata/corpus"
	"github.com/textforge/simcse-data/simdata/record"
)

// ErrNoDataset is the "no data" sentinel: the source produced no usable
// examples. It is logged and returned instead of a silent empty batch stream;
// callers must check for it.
var ErrNoDataset = errors.New("no examples to build dataset")

// Build ingests a source and applies the transformation pipeline, returning
// the consumable dataset. Per-instance problems were already recovered inside
// the source; an empty result here is a corpus-level condition and yields the
// ErrNoDataset sentinel.
func Build(src Source, opts Options) (*Dataset, error) {
	examples, err := src.Examples()
	if err != nil {
		return nil, err
	}
	if len(examples) == 0 {
		slog.Warn("examples is empty or null, skipped building dataset")
		return nil, ErrNoDataset
	}

	if opts.Verbose {
		n := min(5, len(examples))
		for i := 0; i < n; i++ {
			slog.Info("showing example",
				"no", i,
				"input_ids", examples[i].InputIDs,
				"segment_ids", examples[i].SegmentIDs,
				"attention_mask", examples[i].AttentionMask)
		}
	}

	if opts.DoFilter {
		examples = filterByLength(examples, opts.MaxSequenceLength)
		if len(examples) == 0 {
			slog.Warn("all examples exceeded max sequence length, skipped building dataset",
				"max_sequence_length", opts.MaxSequenceLength)
			return nil, ErrNoDataset
		}
	}

	return &Dataset{
		examples: examples,
		batches:  applyPadding(examples, opts),
		toDict:   opts.ToDict,
	}, nil
}

// FromRecordFiles builds a dataset from persisted record shards.
func FromRecordFiles(paths []string, opts Options) (*Dataset, error) {
	it := record.NewShardIterator(paths)
	defer it.Close()
	return Build(RecordSource{It: it}, opts)
}

// FromStore builds a dataset from any record store.
func FromStore(store record.Store, opts Options) (*Dataset, error) {
	it, err := store.Iterate()
	if err != nil {
		return nil, err
	}
	defer it.Close()
	return Build(RecordSource{It: it}, opts)
}

// FromJSONLFiles builds a dataset from raw JSON-lines sources.
func FromJSONLFiles(inputs []string, ropts corpus.ReaderOptions, parser *corpus.Parser, opts Options) (*Dataset, error) {
	r, err := corpus.NewReader(inputs, ropts)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Build(ReaderSource{Reader: r, Parser: parser, Parallel: opts.NumParallelCalls}, opts)
}

// FromInstances builds a dataset from raw in-memory instances.
func FromInstances(instances []corpus.Instance, parser *corpus.Parser, opts Options) (*Dataset, error) {
	return Build(InstanceSource{Instances: instances, Parser: parser, Parallel: opts.NumParallelCalls}, opts)
}

// FromExamples builds a dataset from an in-memory example collection.
func FromExamples(examples []*corpus.Example, opts Options) (*Dataset, error) {
	return Build(SliceSource(examples), opts)
}

// FromCollection builds a dataset from a higher-level dataset object.
func FromCollection(c Collection, opts Options) (*Dataset, error) {
	return Build(CollectionSource{C: c}, opts)
}

// FromDataset rebuilds a dataset from an existing one, e.g. to re-batch with
// a different padding strategy.
func FromDataset(d *Dataset, opts Options) (*Dataset, error) {
	return Build(DatasetSource{D: d}, opts)
}

// Save drains a source into a record writer, persisting every example. The
// writer is not closed; shard finalization stays with the caller.
func Save(src Source, w record.Writer) (int, error) {
	examples, err := src.Examples()
	if err != nil {
		return 0, err
	}
	for i, e := range examples {
		if err := w.Append(e); err != nil {
			return i, err
		}
	}
	return len(examples), nil
}

// Drain consumes a dataset to the end, returning every batch. Mostly useful
// in tests and inspection tooling.
func Drain(d *Dataset) ([]*Batch, error) {
	var out []*Batch
	for {
		b, err := d.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
}
