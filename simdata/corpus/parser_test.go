package corpus

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fieldsTokenizer is a deterministic stand-in for a real tokenizer: one token
// per whitespace field, the id being the field's byte length.
type fieldsTokenizer struct{}

func (fieldsTokenizer) Tokenize(texts []string) ([][]int64, error) {
	ids := make([][]int64, len(texts))
	for i, t := range texts {
		words := strings.Fields(t)
		row := make([]int64, len(words))
		for j, w := range words {
			row[j] = int64(len(w))
		}
		ids[i] = row
	}
	return ids, nil
}

type failingTokenizer struct{}

func (failingTokenizer) Tokenize([]string) ([][]int64, error) {
	return nil, errors.New("tokenizer blew up")
}

// noRowsTokenizer violates the one-row-per-text contract: no rows, nil error.
type noRowsTokenizer struct{}

func (noRowsTokenizer) Tokenize([]string) ([][]int64, error) {
	return [][]int64{}, nil
}

func TestParserLengthInvariant(t *testing.T) {
	p := NewParser(fieldsTokenizer{})

	e, err := p.Parse(Instance{Text: "a cat sat"})
	require.NoError(t, err)
	require.NotNil(t, e)

	require.NoError(t, e.Validate())
	assert.Len(t, e.SegmentIDs, e.Len())
	assert.Len(t, e.AttentionMask, e.Len())
}

func TestParserSegmentsAndMask(t *testing.T) {
	p := NewParser(fieldsTokenizer{})

	e, err := p.Parse(Instance{Text: "a dog ran"})
	require.NoError(t, err)
	require.NotNil(t, e)

	assert.Equal(t, []int64{1, 3, 3}, e.InputIDs)
	assert.Equal(t, []int64{0, 0, 0}, e.SegmentIDs, "single-segment input is all zeros")
	assert.Equal(t, []int64{1, 1, 1}, e.AttentionMask, "all ones before padding")
}

func TestParserSkipsEmptyInstance(t *testing.T) {
	p := NewParser(fieldsTokenizer{})

	for _, text := range []string{"", "   ", "\t\n"} {
		e, err := p.Parse(Instance{Text: text})
		require.NoError(t, err)
		assert.Nil(t, e, "empty text must yield the nil skip sentinel, not an error")
	}
}

func TestParserPropagatesTokenizerError(t *testing.T) {
	p := NewParser(failingTokenizer{})

	_, err := p.Parse(Instance{Text: "a cat sat"})
	assert.Error(t, err)
}

func TestParserRejectsTokenizerWithoutRows(t *testing.T) {
	p := NewParser(noRowsTokenizer{})

	e, err := p.Parse(Instance{Text: "a cat sat"})
	assert.Nil(t, e)
	assert.Error(t, err, "a missing result row is a contract violation, not a skip")
}
