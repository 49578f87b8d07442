package dataset

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/textforge/simcse-data/simdata/config"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 512, opts.MaxSequenceLength)
	assert.Equal(t, int64(0), opts.PadID)
	assert.True(t, opts.DoFilter)
	assert.True(t, opts.ToDict)
	assert.Equal(t, FixedPadding{MaxLen: 512}, opts.strategy(),
		"nil strategy defaults to fixed padding at the sequence bound")
}

func TestFromConfigSelectsBucketPadding(t *testing.T) {
	cfg := config.PipelineConfig{
		MaxSequenceLength: 128,
		BatchSize:         8,
		DoFilter:          true,
		BucketBoundaries:  []int{16, 32},
	}

	opts := FromConfig(cfg)
	assert.Equal(t, 128, opts.MaxSequenceLength)
	assert.Equal(t, BucketPadding{Boundaries: []int{16, 32}}, opts.strategy())
}

func TestFromConfigWithoutBoundaries(t *testing.T) {
	opts := FromConfig(config.PipelineConfig{MaxSequenceLength: 64})
	assert.Equal(t, FixedPadding{MaxLen: 64}, opts.strategy())
}
