package corpus

import (
	"errors"
	"fmt"
	"strings"
)

// Common error types used across corpus handling
var (
	ErrEmptyExample   = errors.New("example must contain at least one token")
	ErrLengthMismatch = errors.New("example sequences must have equal length")
)

// Example is the canonical in-memory training unit: three equal-length integer
// sequences per text instance. Examples are immutable once built; batching and
// padding always produce new sequences.
type Example struct {
	InputIDs      []int64
	SegmentIDs    []int64
	AttentionMask []int64
}

// Len returns the sequence length L shared by all three fields.
func (e *Example) Len() int {
	return len(e.InputIDs)
}

// Validate checks the equal-length invariant and that L >= 1.
func (e *Example) Validate() error {
	if len(e.InputIDs) == 0 {
		return ErrEmptyExample
	}
	if len(e.SegmentIDs) != len(e.InputIDs) || len(e.AttentionMask) != len(e.InputIDs) {
		return fmt.Errorf("%w: input_ids=%d segment_ids=%d attention_mask=%d",
			ErrLengthMismatch, len(e.InputIDs), len(e.SegmentIDs), len(e.AttentionMask))
	}
	return nil
}

// Equal reports whether two examples hold identical sequences.
func (e *Example) Equal(o *Example) bool {
	if o == nil || e.Len() != o.Len() {
		return false
	}
	for i := range e.InputIDs {
		if e.InputIDs[i] != o.InputIDs[i] ||
			e.SegmentIDs[i] != o.SegmentIDs[i] ||
			e.AttentionMask[i] != o.AttentionMask[i] {
			return false
		}
	}
	return true
}

// Instance is one raw record from a line-oriented source. Only the text
// payload matters to the parser; instances with a blank payload are dropped
// before parsing.
type Instance struct {
	Text string
}

// Empty reports whether the instance carries no usable text.
func (in Instance) Empty() bool {
	return strings.TrimSpace(in.Text) == ""
}
