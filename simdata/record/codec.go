// Package record defines the persisted columnar record format for examples:
// three named variable-length int64-list fields, plus the stores that write
// and read records in sharded files or a libsql database.
package record

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/textforge/simcse-data/simdata/corpus"
)

// Fixed field names of the on-disk schema.
const (
	FieldInputIDs      = "input_ids"
	FieldSegmentIDs    = "segment_ids"
	FieldAttentionMask = "attention_mask"
)

// Record is the serialized form of one Example: named variable-length
// integer-list fields.
type Record map[string][]int64

// SchemaError indicates a persisted record missing required fields or with an
// incompatible structure. It is fatal for that record's decode call and is
// surfaced to the caller, never silently dropped.
type SchemaError struct {
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("record schema error: %s", e.Reason)
	}
	return fmt.Sprintf("record schema error: field %q: %s", e.Field, e.Reason)
}

// Encode maps an Example to its record form. The sequences are copied, so the
// record stays valid however the caller uses the Example afterwards.
func Encode(e *corpus.Example) Record {
	rec := make(Record, 3)
	rec[FieldInputIDs] = append([]int64(nil), e.InputIDs...)
	rec[FieldSegmentIDs] = append([]int64(nil), e.SegmentIDs...)
	rec[FieldAttentionMask] = append([]int64(nil), e.AttentionMask...)
	return rec
}

// Decode reconstructs an Example from a record. All three fields must be
// present with equal, non-zero lengths; anything else is a *SchemaError and no
// partially-constructed Example is returned.
func Decode(rec Record) (*corpus.Example, error) {
	for _, field := range []string{FieldInputIDs, FieldSegmentIDs, FieldAttentionMask} {
		if _, ok := rec[field]; !ok {
			return nil, &SchemaError{Field: field, Reason: "missing"}
		}
	}
	e := &corpus.Example{
		InputIDs:      append([]int64(nil), rec[FieldInputIDs]...),
		SegmentIDs:    append([]int64(nil), rec[FieldSegmentIDs]...),
		AttentionMask: append([]int64(nil), rec[FieldAttentionMask]...),
	}
	if err := e.Validate(); err != nil {
		return nil, &SchemaError{Reason: err.Error()}
	}
	return e, nil
}

// Marshal serializes a record: uvarint field count, then per field (in sorted
// name order) a uvarint-length name and a varint-packed value list.
func Marshal(rec Record) []byte {
	names := make([]string, 0, len(rec))
	for name := range rec {
		names = append(names, name)
	}
	sort.Strings(names)

	buf := binary.AppendUvarint(nil, uint64(len(names)))
	for _, name := range names {
		buf = binary.AppendUvarint(buf, uint64(len(name)))
		buf = append(buf, name...)
		buf = appendInt64List(buf, rec[name])
	}
	return buf
}

// Unmarshal parses a serialized record. Structural damage (truncation, bad
// varints) is reported as a *SchemaError.
func Unmarshal(data []byte) (Record, error) {
	nFields, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, &SchemaError{Reason: "invalid field count"}
	}
	data = data[n:]
	// Every field needs at least one byte, so a count beyond the remaining
	// payload is provably corrupt. Checked before the count feeds a make.
	if nFields > uint64(len(data)) {
		return nil, &SchemaError{Reason: "field count exceeds payload size"}
	}

	rec := make(Record, nFields)
	for i := uint64(0); i < nFields; i++ {
		nameLen, n := binary.Uvarint(data)
		if n <= 0 || uint64(len(data[n:])) < nameLen {
			return nil, &SchemaError{Reason: "truncated field name"}
		}
		name := string(data[n : n+int(nameLen)])
		data = data[n+int(nameLen):]

		values, rest, err := readInt64List(data)
		if err != nil {
			return nil, &SchemaError{Field: name, Reason: err.Error()}
		}
		rec[name] = values
		data = rest
	}
	return rec, nil
}

func appendInt64List(buf []byte, values []int64) []byte {
	buf = binary.AppendUvarint(buf, uint64(len(values)))
	for _, v := range values {
		buf = binary.AppendVarint(buf, v)
	}
	return buf
}

func readInt64List(data []byte) (values []int64, rest []byte, err error) {
	count, n := binary.Uvarint(data)
	if n <= 0 {
		return nil, nil, fmt.Errorf("invalid list length")
	}
	data = data[n:]
	// Every varint value occupies at least one byte; a declared count beyond
	// the remaining input is corrupt, and must not reach the allocation below.
	if count > uint64(len(data)) {
		return nil, nil, fmt.Errorf("list length %d exceeds remaining payload", count)
	}
	values = make([]int64, 0, count)
	for i := uint64(0); i < count; i++ {
		v, n := binary.Varint(data)
		if n <= 0 {
			return nil, nil, fmt.Errorf("truncated value list")
		}
		values = append(values, v)
		data = data[n:]
	}
	return values, data, nil
}
