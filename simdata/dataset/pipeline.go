package dataset

import (
	"io"

	roaring "github.com/RoaringBitmap/roaring"

	"github.com/textforge/simcse-data/simdata/corpus"
	"github.com/textforge/simcse-data/simdata/record"
)

// Batch is a fixed aggregation of N examples as three equal-shape 2-D arrays
// (batch_size x padded_length). The label slot is always empty: the training
// objective is contrastive and derives its signal from within-batch structure.
type Batch struct {
	InputIDs      [][]int64
	SegmentIDs    [][]int64
	AttentionMask [][]int64
}

// Size returns the number of rows in the batch.
func (b *Batch) Size() int {
	return len(b.InputIDs)
}

// Width returns the padded sequence length shared by every row.
func (b *Batch) Width() int {
	if len(b.InputIDs) == 0 {
		return 0
	}
	return len(b.InputIDs[0])
}

// Dict is the named-fields shaping of the batch.
func (b *Batch) Dict() map[string][][]int64 {
	return map[string][][]int64{
		record.FieldInputIDs:      b.InputIDs,
		record.FieldSegmentIDs:    b.SegmentIDs,
		record.FieldAttentionMask: b.AttentionMask,
	}
}

// Tuple is the positional shaping of the batch.
func (b *Batch) Tuple() (inputIDs, segmentIDs, attentionMask [][]int64) {
	return b.InputIDs, b.SegmentIDs, b.AttentionMask
}

// Dataset is the consumable output of the transformation pipeline: a finite
// stream of padded batches. Next yields batches in pipeline order and io.EOF
// once exhausted; Restart rewinds for another epoch.
type Dataset struct {
	examples []*corpus.Example
	batches  []*Batch
	toDict   bool
	cursor   int
}

// Next returns the next batch, or io.EOF once the stream is exhausted.
func (d *Dataset) Next() (*Batch, error) {
	if d.cursor >= len(d.batches) {
		return nil, io.EOF
	}
	b := d.batches[d.cursor]
	d.cursor++
	return b, nil
}

// Restart resets the stream for a new epoch.
func (d *Dataset) Restart() error {
	d.cursor = 0
	return nil
}

// Len returns the number of batches.
func (d *Dataset) Len() int {
	return len(d.batches)
}

// Batches returns the full batch list in pipeline order.
func (d *Dataset) Batches() []*Batch {
	return d.batches
}

// Examples returns the surviving (post-filter, pre-padding) examples.
func (d *Dataset) Examples() []*corpus.Example {
	return d.examples
}

// ToDict reports whether consumers asked for named-fields shaping.
func (d *Dataset) ToDict() bool {
	return d.toDict
}

// filterByLength keeps examples whose input_ids length is at most max. The
// bound is inclusive: length equal to max survives.
func filterByLength(examples []*corpus.Example, max int) []*corpus.Example {
	out := make([]*corpus.Example, 0, len(examples))
	for _, e := range examples {
		if e.Len() <= max {
			out = append(out, e)
		}
	}
	return out
}

// applyPadding runs the configured padding strategy over the filtered
// examples, producing the final batch list.
func applyPadding(examples []*corpus.Example, opts Options) []*Batch {
	switch s := opts.strategy().(type) {
	case FixedPadding:
		return padToBatches(examples, opts, func([]*corpus.Example) int { return s.MaxLen })
	case BatchPadding:
		return padToBatches(examples, opts, longestMember)
	case BucketPadding:
		return bucketPad(examples, s.Boundaries, opts)
	default:
		return padToBatches(examples, opts, longestMember)
	}
}

// padToBatches groups examples in pipeline order and pads each group to the
// width chosen by widthOf.
func padToBatches(examples []*corpus.Example, opts Options, widthOf func([]*corpus.Example) int) []*Batch {
	size := opts.batchSize()
	var batches []*Batch
	for start := 0; start < len(examples); start += size {
		end := min(start+size, len(examples))
		group := examples[start:end]
		if len(group) < size && opts.DropRemainder {
			break
		}
		batches = append(batches, padGroup(group, widthOf(group), opts.PadID))
	}
	return batches
}

// bucketPad routes each example to a length bucket, then batches and pads
// every bucket independently. Membership is tracked per bucket as a bitmap
// over example indices, so pipeline order is preserved inside each bucket.
// Empty boundaries degrade to a single bucket, i.e. plain batch padding.
func bucketPad(examples []*corpus.Example, boundaries []int, opts Options) []*Batch {
	buckets := make([]*roaring.Bitmap, len(boundaries)+1)
	for i := range buckets {
		buckets[i] = roaring.New()
	}
	for i, e := range examples {
		buckets[bucketIndex(e.Len(), boundaries)].Add(uint32(i))
	}

	var batches []*Batch
	for _, bm := range buckets {
		if bm.IsEmpty() {
			continue
		}
		members := make([]*corpus.Example, 0, bm.GetCardinality())
		bm.Iterate(func(idx uint32) bool {
			members = append(members, examples[idx])
			return true
		})
		batches = append(batches, padToBatches(members, opts, longestMember)...)
	}
	return batches
}

// bucketIndex returns the bucket for a sequence length: bucket i holds
// lengths at most boundaries[i], the last bucket everything longer.
func bucketIndex(length int, boundaries []int) int {
	for i, bound := range boundaries {
		if length <= bound {
			return i
		}
	}
	return len(boundaries)
}

// padGroup right-pads every row of the group to width. input_ids and
// segment_ids fill with padID; attention_mask always fills with 0 so padded
// positions stay non-attended. Rows longer than width are truncated (only
// reachable under fixed padding with filtering off).
func padGroup(group []*corpus.Example, width int, padID int64) *Batch {
	b := &Batch{
		InputIDs:      make([][]int64, len(group)),
		SegmentIDs:    make([][]int64, len(group)),
		AttentionMask: make([][]int64, len(group)),
	}
	for i, e := range group {
		b.InputIDs[i] = padRow(e.InputIDs, width, padID)
		b.SegmentIDs[i] = padRow(e.SegmentIDs, width, padID)
		b.AttentionMask[i] = padRow(e.AttentionMask, width, 0)
	}
	return b
}

func padRow(row []int64, width int, fill int64) []int64 {
	out := make([]int64, width)
	n := copy(out, row)
	for i := n; i < width; i++ {
		out[i] = fill
	}
	return out
}

func longestMember(group []*corpus.Example) int {
	width := 0
	for _, e := range group {
		if e.Len() > width {
			width = e.Len()
		}
	}
	return width
}
