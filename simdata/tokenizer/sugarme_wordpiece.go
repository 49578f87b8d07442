package tokenizer

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"

	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/wordpiece"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
	"github.com/sugarme/tokenizer/processor"
)

// SugarWordPiece wraps sugarme/tokenizer WordPiece (BERT-style)
type SugarWordPiece struct {
	t *tk.Tokenizer
}

// NewSugarWordPiece loads vocab.txt and builds a BERT WordPiece tokenizer
func NewSugarWordPiece(vocabPath string, cfg Config) (*SugarWordPiece, error) {
	vocabFile := vocabPath
	if fi, err := os.Stat(vocabPath); err == nil && fi.IsDir() {
		vocabFile = filepath.Join(vocabPath, "vocab.txt")
	}

	wp, err := wordpiece.NewWordPieceFromFile(vocabFile, "[UNK]")
	if err != nil {
		return nil, err
	}

	t := tk.NewTokenizer(wp)

	// Basic normalizer and pre-tokenizer similar to BERT
	t.WithNormalizer(normalizer.NewBertNormalizer(true, cfg.Lowercase, true, cfg.Lowercase))
	t.WithPreTokenizer(pretokenizer.NewBertPreTokenizer())

	clsID, sepID, err := specialIDs(vocabFile)
	if err != nil {
		return nil, err
	}

	// Post-processor to add special tokens with discovered ids
	template := processor.NewBertProcessing(
		processor.PostToken{Value: "[SEP]", Id: sepID},
		processor.PostToken{Value: "[CLS]", Id: clsID},
	)
	t.WithPostProcessor(template)
	t.WithTruncation(&tk.TruncationParams{MaxLength: cfg.MaxSeqLen})
	return &SugarWordPiece{t: t}, nil
}

func (s *SugarWordPiece) Tokenize(texts []string) ([][]int64, error) {
	ids := make([][]int64, len(texts))
	for i, txt := range texts {
		enc, err := s.t.Encode(tk.NewSingleEncodeInput(tk.NewInputSequence(txt)), true)
		if err != nil {
			return nil, err
		}
		uids := enc.GetIds()
		row := make([]int64, len(uids))
		for j, id := range uids {
			row[j] = int64(id)
		}
		ids[i] = row
	}
	return ids, nil
}

// specialIDs scans the vocab file for the [CLS]/[SEP] line indices, falling
// back to the standard BERT ids when the tokens are absent.
func specialIDs(vocabFile string) (clsID, sepID int, err error) {
	clsID, sepID = 101, 102
	f, err := os.Open(vocabFile)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	idx := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		switch strings.TrimSpace(scanner.Text()) {
		case "[CLS]":
			clsID = idx
		case "[SEP]":
			sepID = idx
		}
		idx++
	}
	return clsID, sepID, scanner.Err()
}
