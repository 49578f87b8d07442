package dataset

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"
)

// Yield returns the next batch as gomlx tensors, implementing the gomlx
// train.Dataset pull contract alongside Restart. Values are cast to int32,
// the fixed width consumed by training. The labels slice is empty: the
// contrastive objective takes its targets from within-batch structure.
func (d *Dataset) Yield() (spec any, inputs []*tensors.Tensor, labels []*tensors.Tensor, err error) {
	b, err := d.Next()
	if err != nil {
		return nil, nil, nil, err
	}
	inputs = []*tensors.Tensor{
		tensors.FromAnyValue(toInt32Matrix(b.InputIDs)),
		tensors.FromAnyValue(toInt32Matrix(b.SegmentIDs)),
		tensors.FromAnyValue(toInt32Matrix(b.AttentionMask)),
	}
	return nil, inputs, nil, nil
}

func toInt32Matrix(rows [][]int64) [][]int32 {
	out := make([][]int32, len(rows))
	for i, row := range rows {
		r := make([]int32, len(row))
		for j, v := range row {
			r[j] = int32(v)
		}
		out[i] = r
	}
	return out
}
