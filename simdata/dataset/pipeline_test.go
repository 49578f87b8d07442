package dataset

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/textforge/simcse-data/simdata/corpus"
)

func exampleOfLen(length int, id int64) *corpus.Example {
	e := &corpus.Example{
		InputIDs:      make([]int64, length),
		SegmentIDs:    make([]int64, length),
		AttentionMask: make([]int64, length),
	}
	for i := 0; i < length; i++ {
		e.InputIDs[i] = id
		e.AttentionMask[i] = 1
	}
	return e
}

func TestFilterInclusiveBound(t *testing.T) {
	examples := []*corpus.Example{
		exampleOfLen(3, 1),
		exampleOfLen(5, 2), // equal to the bound: kept
		exampleOfLen(6, 3), // over the bound: dropped
	}

	kept := filterByLength(examples, 5)
	require.Len(t, kept, 2)
	for _, e := range kept {
		assert.LessOrEqual(t, e.Len(), 5)
	}
}

func TestFixedPaddingShape(t *testing.T) {
	opts := DefaultOptions()
	opts.BatchSize = 2
	opts.Padding = FixedPadding{MaxLen: 8}

	d, err := FromExamples([]*corpus.Example{
		exampleOfLen(3, 1),
		exampleOfLen(5, 2),
		exampleOfLen(2, 3),
	}, opts)
	require.NoError(t, err)

	batches := d.Batches()
	require.Len(t, batches, 2)
	for _, b := range batches {
		assert.Equal(t, 8, b.Width(), "fixed padding gives a deterministic width")
		for i := range b.InputIDs {
			assert.Len(t, b.SegmentIDs[i], 8)
			assert.Len(t, b.AttentionMask[i], 8)
		}
	}

	// Row of true length 3: pad positions hold pad_id and mask 0.
	first := batches[0]
	assert.Equal(t, []int64{1, 1, 1, 0, 0, 0, 0, 0}, first.InputIDs[0])
	assert.Equal(t, []int64{1, 1, 1, 0, 0, 0, 0, 0}, first.AttentionMask[0])
}

func TestFixedPaddingCustomPadID(t *testing.T) {
	opts := DefaultOptions()
	opts.BatchSize = 1
	opts.PadID = -1
	opts.Padding = FixedPadding{MaxLen: 4}

	d, err := FromExamples([]*corpus.Example{exampleOfLen(2, 7)}, opts)
	require.NoError(t, err)

	b := d.Batches()[0]
	assert.Equal(t, []int64{7, 7, -1, -1}, b.InputIDs[0])
	assert.Equal(t, []int64{0, 0, -1, -1}, b.SegmentIDs[0])
	assert.Equal(t, []int64{1, 1, 0, 0}, b.AttentionMask[0],
		"attention_mask pads with 0 regardless of pad_id")
}

func TestBatchPaddingUsesBatchMax(t *testing.T) {
	opts := DefaultOptions()
	opts.BatchSize = 2
	opts.Padding = BatchPadding{}

	// Two examples, lengths 3 and 7: one batch padded to 7, not any external bound.
	d, err := FromExamples([]*corpus.Example{
		exampleOfLen(3, 1),
		exampleOfLen(7, 2),
	}, opts)
	require.NoError(t, err)

	batches := d.Batches()
	require.Len(t, batches, 1)
	assert.Equal(t, 7, batches[0].Width())
}

func TestBucketPaddingMinimality(t *testing.T) {
	opts := DefaultOptions()
	opts.BatchSize = 4
	opts.Padding = BucketPadding{Boundaries: []int{4, 8}}

	d, err := FromExamples([]*corpus.Example{
		exampleOfLen(2, 1), // bucket 0 (<= 4)
		exampleOfLen(7, 2), // bucket 1 (<= 8)
		exampleOfLen(3, 3), // bucket 0
		exampleOfLen(10, 4), // bucket 2 (> 8)
		exampleOfLen(6, 5), // bucket 1
	}, opts)
	require.NoError(t, err)

	batches := d.Batches()
	require.Len(t, batches, 3)
	assert.Equal(t, 3, batches[0].Width(), "bucket padded exactly to its longest member")
	assert.Equal(t, 7, batches[1].Width())
	assert.Equal(t, 10, batches[2].Width())
}

func TestBucketIndexAssignment(t *testing.T) {
	boundaries := []int{4, 8}
	assert.Equal(t, 0, bucketIndex(1, boundaries))
	assert.Equal(t, 0, bucketIndex(4, boundaries))
	assert.Equal(t, 1, bucketIndex(5, boundaries))
	assert.Equal(t, 1, bucketIndex(8, boundaries))
	assert.Equal(t, 2, bucketIndex(9, boundaries))
}

func TestDropRemainder(t *testing.T) {
	opts := DefaultOptions()
	opts.BatchSize = 2
	opts.DropRemainder = true
	opts.Padding = BatchPadding{}

	d, err := FromExamples([]*corpus.Example{
		exampleOfLen(2, 1),
		exampleOfLen(3, 2),
		exampleOfLen(4, 3),
	}, opts)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Len(), "final short batch discarded")
}

func TestBatchShaping(t *testing.T) {
	b := &Batch{
		InputIDs:      [][]int64{{1, 2}},
		SegmentIDs:    [][]int64{{0, 0}},
		AttentionMask: [][]int64{{1, 1}},
	}

	dict := b.Dict()
	assert.Equal(t, b.InputIDs, dict["input_ids"])
	assert.Equal(t, b.SegmentIDs, dict["segment_ids"])
	assert.Equal(t, b.AttentionMask, dict["attention_mask"])

	in, seg, mask := b.Tuple()
	assert.Equal(t, b.InputIDs, in)
	assert.Equal(t, b.SegmentIDs, seg)
	assert.Equal(t, b.AttentionMask, mask)
}

func TestDatasetNextAndRestart(t *testing.T) {
	opts := DefaultOptions()
	opts.BatchSize = 1
	opts.Padding = BatchPadding{}

	d, err := FromExamples([]*corpus.Example{
		exampleOfLen(2, 1),
		exampleOfLen(3, 2),
	}, opts)
	require.NoError(t, err)

	var n int
	for {
		_, err := d.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		n++
	}
	assert.Equal(t, 2, n)

	require.NoError(t, d.Restart())
	b, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, b.Width())
}
