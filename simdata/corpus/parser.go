package corpus

import (
	"errors"
	"strings"

	"github.com/textforge/simcse-data/simdata/tokenizer"
)

// Parser turns one raw instance into an Example by invoking the tokenizer.
// For unsupervised contrastive training the same text serves as both views;
// the parser produces the single canonical rendering and leaves pairing to the
// training loop.
type Parser struct {
	tok tokenizer.Tokenizer
}

func NewParser(tok tokenizer.Tokenizer) *Parser {
	return &Parser{tok: tok}
}

// Parse converts an instance to an Example. A (nil, nil) return means the
// instance was skipped: empty text, or tokenization yielded zero tokens.
// Callers filter on the nil sentinel rather than treat it as fatal.
func (p *Parser) Parse(inst Instance) (*Example, error) {
	text := strings.TrimSpace(inst.Text)
	if text == "" {
		return nil, nil
	}

	ids, err := p.tok.Tokenize([]string{text})
	if err != nil {
		return nil, err
	}
	// One row back per input text is part of the Tokenizer contract; an empty
	// result with a nil error is a broken implementation, not a skip.
	if len(ids) == 0 {
		return nil, errors.New("tokenizer returned no rows for a non-empty input")
	}
	inputIDs := ids[0]
	if len(inputIDs) == 0 {
		return nil, nil
	}

	// Single-segment unsupervised input: segment_ids all zeros, attention_mask
	// all ones before any padding is applied.
	segmentIDs := make([]int64, len(inputIDs))
	attentionMask := make([]int64, len(inputIDs))
	for i := range attentionMask {
		attentionMask[i] = 1
	}
	return &Example{
		InputIDs:      inputIDs,
		SegmentIDs:    segmentIDs,
		AttentionMask: attentionMask,
	}, nil
}
