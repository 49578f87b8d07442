package dataset

import (
	"io"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/textforge/simcse-data/simdata/corpus"
	"github.com/textforge/simcse-data/simdata/record"
)

// Source is the canonical ingestion interface: every construction path maps
// its specific origin (persisted records, raw files, in-memory slices, an
// existing dataset) to one sequence of examples, consumed by Build.
type Source interface {
	Examples() ([]*corpus.Example, error)
}

// Collection is an indexable example container, the shape exposed by
// higher-level dataset objects.
type Collection interface {
	Len() int
	At(i int) *corpus.Example
}

// RecordSource ingests previously persisted records through any store
// iterator. Schema errors surface to the caller; they indicate systematic
// corruption, not a single bad row.
type RecordSource struct {
	It record.Iterator
}

func (s RecordSource) Examples() ([]*corpus.Example, error) {
	var out []*corpus.Example
	for {
		e, err := s.It.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
}

// SliceSource ingests an in-memory example collection, dropping nil entries.
type SliceSource []*corpus.Example

func (s SliceSource) Examples() ([]*corpus.Example, error) {
	out := make([]*corpus.Example, 0, len(s))
	for _, e := range s {
		if e == nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// CollectionSource ingests a higher-level dataset object, dropping nil
// examples.
type CollectionSource struct {
	C Collection
}

func (s CollectionSource) Examples() ([]*corpus.Example, error) {
	out := make([]*corpus.Example, 0, s.C.Len())
	for i := 0; i < s.C.Len(); i++ {
		if e := s.C.At(i); e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// InstanceSource parses raw instances into examples. Empty instances are
// dropped before parsing, nil parse results after. Parsing fans out over a
// worker pool; Parallel <= 0 lets the source choose.
type InstanceSource struct {
	Instances []corpus.Instance
	Parser    *corpus.Parser
	Parallel  int
}

func (s InstanceSource) Examples() ([]*corpus.Example, error) {
	kept := make([]corpus.Instance, 0, len(s.Instances))
	for _, inst := range s.Instances {
		if inst.Empty() {
			continue
		}
		kept = append(kept, inst)
	}

	workers := s.Parallel
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	results := make([]*corpus.Example, len(kept))
	p := pool.New().WithErrors().WithMaxGoroutines(workers)
	for i, inst := range kept {
		p.Go(func() error {
			e, err := s.Parser.Parse(inst)
			if err != nil {
				return err
			}
			results[i] = e
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, err
	}

	// Compact out the parse skips, preserving instance order.
	out := make([]*corpus.Example, 0, len(results))
	for _, e := range results {
		if e != nil {
			out = append(out, e)
		}
	}
	return out, nil
}

// ReaderSource drains a corpus reader and delegates to InstanceSource.
type ReaderSource struct {
	Reader   *corpus.Reader
	Parser   *corpus.Parser
	Parallel int
}

func (s ReaderSource) Examples() ([]*corpus.Example, error) {
	instances, err := s.Reader.ReadAll()
	if err != nil {
		return nil, err
	}
	return InstanceSource{Instances: instances, Parser: s.Parser, Parallel: s.Parallel}.Examples()
}

// DatasetSource re-ingests an already built dataset, feeding its surviving
// examples back through a fresh pipeline.
type DatasetSource struct {
	D *Dataset
}

func (s DatasetSource) Examples() ([]*corpus.Example, error) {
	if s.D == nil {
		return nil, nil
	}
	return SliceSource(s.D.Examples()).Examples()
}
