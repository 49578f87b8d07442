package record

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"

	"github.com/textforge/simcse-data/simdata/corpus"
)

// ShardWriter persists records into a fixed set of flat files
// (<prefix>-00000-of-0000N.rec), appending round-robin. Each record is
// length-prefixed with a uvarint. Writes go to uuid-suffixed temp files that
// are renamed into place on Close, so readers never observe a partial shard.
type ShardWriter struct {
	bufs       []*bufio.Writer
	files      []*os.File
	tmpPaths   []string
	finalPaths []string
	next       int
}

// NewShardWriter creates shardCount shards under dir with the given prefix.
func NewShardWriter(dir, prefix string, shardCount int) (*ShardWriter, error) {
	if shardCount <= 0 {
		shardCount = 1
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create record directory: %w", err)
	}

	w := &ShardWriter{
		bufs:       make([]*bufio.Writer, shardCount),
		files:      make([]*os.File, shardCount),
		tmpPaths:   make([]string, shardCount),
		finalPaths: make([]string, shardCount),
	}
	for i := 0; i < shardCount; i++ {
		final := filepath.Join(dir, fmt.Sprintf("%s-%05d-of-%05d.rec", prefix, i, shardCount))
		tmp := final + "." + uuid.NewString() + ".tmp"
		f, err := os.Create(tmp)
		if err != nil {
			w.abort()
			return nil, fmt.Errorf("could not create shard %s: %w", tmp, err)
		}
		w.files[i] = f
		w.bufs[i] = bufio.NewWriter(f)
		w.tmpPaths[i] = tmp
		w.finalPaths[i] = final
	}
	return w, nil
}

// Append encodes and writes one example to the next shard in round-robin order.
func (w *ShardWriter) Append(e *corpus.Example) error {
	if err := e.Validate(); err != nil {
		return err
	}
	payload := Marshal(Encode(e))
	buf := w.bufs[w.next]
	if _, err := buf.Write(binary.AppendUvarint(nil, uint64(len(payload)))); err != nil {
		return fmt.Errorf("failed to write record length: %w", err)
	}
	if _, err := buf.Write(payload); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	w.next = (w.next + 1) % len(w.bufs)
	return nil
}

// Close flushes every shard and renames the temp files into place.
func (w *ShardWriter) Close() error {
	for i, buf := range w.bufs {
		if err := buf.Flush(); err != nil {
			w.abort()
			return fmt.Errorf("failed to flush shard %s: %w", w.tmpPaths[i], err)
		}
		if err := w.files[i].Close(); err != nil {
			w.abort()
			return fmt.Errorf("failed to close shard %s: %w", w.tmpPaths[i], err)
		}
		w.files[i] = nil
		if err := os.Rename(w.tmpPaths[i], w.finalPaths[i]); err != nil {
			w.abort()
			return fmt.Errorf("failed to finalize shard %s: %w", w.finalPaths[i], err)
		}
	}
	return nil
}

// Paths returns the final shard paths in shard order.
func (w *ShardWriter) Paths() []string {
	return append([]string(nil), w.finalPaths...)
}

func (w *ShardWriter) abort() {
	for i, f := range w.files {
		if f != nil {
			f.Close()
			if err := os.Remove(w.tmpPaths[i]); err != nil && !os.IsNotExist(err) {
				slog.Warn("failed to remove temp shard", "path", w.tmpPaths[i], "error", err)
			}
		}
	}
}

// ShardIterator reads records back from shard files, files in the order given,
// records in file order.
type ShardIterator struct {
	paths  []string
	file   *os.File
	reader *bufio.Reader
	size   int64
	idx    int
}

// NewShardIterator iterates over explicit shard paths.
func NewShardIterator(paths []string) *ShardIterator {
	return &ShardIterator{paths: paths}
}

// OpenShards globs <prefix>-*.rec under dir and iterates the shards in
// lexical order.
func OpenShards(dir, prefix string) (*ShardIterator, error) {
	paths, err := filepath.Glob(filepath.Join(dir, prefix+"-*.rec"))
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no record shards found under %s", dir)
	}
	sort.Strings(paths)
	return NewShardIterator(paths), nil
}

// Next decodes the next persisted example, or io.EOF after the last shard.
func (it *ShardIterator) Next() (*corpus.Example, error) {
	for {
		if it.reader == nil {
			if it.idx >= len(it.paths) {
				return nil, io.EOF
			}
			f, err := os.Open(it.paths[it.idx])
			if err != nil {
				return nil, fmt.Errorf("failed to open shard %s: %w", it.paths[it.idx], err)
			}
			fi, err := f.Stat()
			if err != nil {
				f.Close()
				return nil, fmt.Errorf("failed to stat shard %s: %w", it.paths[it.idx], err)
			}
			it.file = f
			it.reader = bufio.NewReader(f)
			it.size = fi.Size()
		}

		recLen, err := binary.ReadUvarint(it.reader)
		if err == io.EOF {
			it.closeCurrent()
			it.idx++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("corrupt shard %s: %w", it.paths[it.idx], err)
		}
		// A length prefix larger than the shard itself is corrupt; reject it
		// before it sizes the payload allocation.
		if recLen > uint64(it.size) {
			return nil, &SchemaError{Reason: fmt.Sprintf(
				"record length %d exceeds shard %s size %d", recLen, it.paths[it.idx], it.size)}
		}

		payload := make([]byte, recLen)
		if _, err := io.ReadFull(it.reader, payload); err != nil {
			return nil, fmt.Errorf("corrupt shard %s: %w", it.paths[it.idx], err)
		}
		rec, err := Unmarshal(payload)
		if err != nil {
			return nil, err
		}
		return Decode(rec)
	}
}

// Reset restarts iteration from the first shard.
func (it *ShardIterator) Reset() error {
	it.closeCurrent()
	it.idx = 0
	return nil
}

// Close releases the currently open shard, if any.
func (it *ShardIterator) Close() error {
	it.closeCurrent()
	return nil
}

func (it *ShardIterator) closeCurrent() {
	if it.file != nil {
		it.file.Close()
		it.file = nil
	}
	it.reader = nil
}
