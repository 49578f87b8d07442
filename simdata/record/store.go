package record

import "github.com/textforge/simcse-data/simdata/corpus"

// Writer is the interface for persisting encoded examples
type Writer interface {
	Append(e *corpus.Example) error
	Close() error
}

// Iterator is the interface for reading persisted examples back, in store
// order. Next returns io.EOF once the store is exhausted; Reset restarts from
// the beginning.
type Iterator interface {
	Next() (*corpus.Example, error)
	Reset() error
	Close() error
}

// Store combines writing and re-reading over one persistence engine
type Store interface {
	Writer
	Iterate() (Iterator, error)
}
