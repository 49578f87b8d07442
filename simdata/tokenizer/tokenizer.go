package tokenizer

import (
	"fmt"
	"strings"
)

// Tokenizer converts raw text to model-ready token ID sequences. Implementations
// add the [CLS]/[SEP] special tokens and truncate to the configured maximum
// length, but never pad: padding belongs to the batching pipeline.
type Tokenizer interface {
	Tokenize(texts []string) (inputIDs [][]int64, err error)
}

// Config holds basic tokenizer settings
type Config struct {
	MaxSeqLen int
	Lowercase bool
}

// ErrUnsupported indicates the tokenizer could not be initialized
var ErrUnsupported = fmt.Errorf("unsupported tokenizer configuration")

// New selects a tokenizer backend by name (e.g., "wordpiece", "sugarme").
// Unknown backends fall back to the native WordPiece implementation.
func New(backend, vocabPath string, cfg Config) (Tokenizer, error) {
	if cfg.MaxSeqLen <= 0 {
		cfg.MaxSeqLen = 512
	}
	name := strings.ToLower(strings.TrimSpace(backend))
	switch name {
	case "sugarme", "bert":
		return NewSugarWordPiece(vocabPath, cfg)
	case "wordpiece", "":
		return LoadWordPieceFromVocab(vocabPath, cfg)
	default:
		return LoadWordPieceFromVocab(vocabPath, cfg)
	}
}
