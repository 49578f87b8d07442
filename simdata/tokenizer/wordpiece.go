package tokenizer

import (
	"bufio"
	"os"
	"strings"

	radix "github.com/armon/go-radix"
)

// WordPiece is a native BERT-style WordPiece tokenizer over a vocab.txt file.
// Subword matching is greedy longest-prefix, backed by two radix trees: one for
// word-initial pieces and one for continuation pieces ("##" stripped).
type WordPiece struct {
	initial   *radix.Tree
	cont      *radix.Tree
	unkID     int64
	clsID     int64
	sepID     int64
	maxSeqLen int
	lowercase bool
}

func LoadWordPieceFromVocab(path string, cfg Config) (*WordPiece, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	wp := &WordPiece{
		initial:   radix.New(),
		cont:      radix.New(),
		maxSeqLen: cfg.MaxSeqLen,
		lowercase: cfg.Lowercase,
		// Defaults; real IDs are looked up from the vocab below
		unkID: 100,
		clsID: 101,
		sepID: 102,
	}

	var idx int64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		tok := strings.TrimSpace(scanner.Text())
		if tok == "" {
			continue
		}
		switch tok {
		case "[UNK]":
			wp.unkID = idx
		case "[CLS]":
			wp.clsID = idx
		case "[SEP]":
			wp.sepID = idx
		default:
			if rest, ok := strings.CutPrefix(tok, "##"); ok {
				wp.cont.Insert(rest, idx)
			} else {
				wp.initial.Insert(tok, idx)
			}
		}
		idx++
	}
	return wp, scanner.Err()
}

func (w *WordPiece) Tokenize(texts []string) ([][]int64, error) {
	ids := make([][]int64, len(texts))
	for i, t := range texts {
		if w.lowercase {
			t = strings.ToLower(t)
		}
		words := strings.Fields(t)
		if len(words) == 0 {
			ids[i] = []int64{}
			continue
		}
		seq := make([]int64, 0, w.maxSeqLen)
		seq = append(seq, w.clsID)
	outer:
		for _, word := range words {
			for _, id := range w.encodeWord(word) {
				seq = append(seq, id)
				if len(seq) >= w.maxSeqLen-1 {
					break outer
				}
			}
		}
		seq = append(seq, w.sepID)
		ids[i] = seq
	}
	return ids, nil
}

// encodeWord splits one whitespace token into subword IDs. A word with no
// matchable piece at any position maps to a single [UNK].
func (w *WordPiece) encodeWord(word string) []int64 {
	var pieces []int64
	rest := word
	tree := w.initial
	for len(rest) > 0 {
		prefix, val, ok := tree.LongestPrefix(rest)
		if !ok || prefix == "" {
			return []int64{w.unkID}
		}
		pieces = append(pieces, val.(int64))
		rest = rest[len(prefix):]
		tree = w.cont
	}
	return pieces
}
