package dataset

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// Stats summarizes the length distribution and padding waste of a built
// dataset. True lengths are recovered from the attention masks, so the stats
// reflect exactly what the padding strategy produced.
type Stats struct {
	NumExamples  int
	NumBatches   int
	MinLength    int
	MaxLength    int
	MeanLength   float64
	MedianLength float64
	TotalCells   int // batch_size * padded_length summed over batches
	PaddedCells  int // cells with attention_mask == 0
	PaddingWaste float64
}

// ComputeStats walks the batch list and aggregates length and padding
// figures. Useful for comparing padding strategies on the same corpus.
func (d *Dataset) ComputeStats() Stats {
	s := Stats{NumBatches: len(d.batches), MinLength: -1}

	var lengths []float64
	for _, b := range d.batches {
		width := b.Width()
		for _, mask := range b.AttentionMask {
			length := 0
			for _, v := range mask {
				if v != 0 {
					length++
				}
			}
			lengths = append(lengths, float64(length))
			s.NumExamples++
			s.TotalCells += width
			s.PaddedCells += width - length
			if s.MinLength < 0 || length < s.MinLength {
				s.MinLength = length
			}
			if length > s.MaxLength {
				s.MaxLength = length
			}
		}
	}
	if len(lengths) == 0 {
		s.MinLength = 0
		return s
	}

	s.MeanLength = stat.Mean(lengths, nil)
	sort.Float64s(lengths)
	s.MedianLength = stat.Quantile(0.5, stat.Empirical, lengths, nil)
	if s.TotalCells > 0 {
		s.PaddingWaste = float64(s.PaddedCells) / float64(s.TotalCells)
	}
	return s
}
