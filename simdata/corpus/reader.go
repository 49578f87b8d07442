package corpus

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// ReaderOptions configures JSON-lines reading.
type ReaderOptions struct {
	TextField string   // JSON field holding the text payload (default "sequence", fallback "text")
	Exclude   []string // gitignore-style patterns applied while expanding directories
}

// Reader lazily yields raw instances from one or more JSON-lines sources, in
// file order, files in the order given. A line that fails structural decoding
// is skipped with a logged warning, never a fatal error. Reset re-opens the
// sources from the start.
type Reader struct {
	paths     []string
	textField string

	file    *os.File
	scanner *bufio.Scanner
	fileIdx int
	lineNo  int
}

// NewReader expands the given inputs (files or directories) and prepares a
// reader over the resulting .jsonl files.
func NewReader(inputs []string, opts ReaderOptions) (*Reader, error) {
	paths, err := expandPaths(inputs, opts.Exclude)
	if err != nil {
		return nil, err
	}
	textField := opts.TextField
	if textField == "" {
		textField = "sequence"
	}
	return &Reader{paths: paths, textField: textField}, nil
}

// Next returns the next instance, or io.EOF once every source is exhausted.
// Blank lines are skipped silently, malformed lines with a warning.
func (r *Reader) Next() (Instance, error) {
	for {
		if r.scanner == nil {
			if r.fileIdx >= len(r.paths) {
				return Instance{}, io.EOF
			}
			f, err := os.Open(r.paths[r.fileIdx])
			if err != nil {
				return Instance{}, fmt.Errorf("failed to open %s: %w", r.paths[r.fileIdx], err)
			}
			r.file = f
			r.scanner = bufio.NewScanner(f)
			r.scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
			r.lineNo = 0
		}

		if !r.scanner.Scan() {
			err := r.scanner.Err()
			path := r.paths[r.fileIdx]
			r.closeCurrent()
			r.fileIdx++
			if err != nil {
				return Instance{}, fmt.Errorf("failed to read %s: %w", path, err)
			}
			continue
		}
		r.lineNo++

		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			slog.Warn("skipping malformed line",
				"path", r.paths[r.fileIdx], "line", r.lineNo, "error", err)
			continue
		}
		return Instance{Text: extractText(obj, r.textField)}, nil
	}
}

// Reset restarts the reader from the first file.
func (r *Reader) Reset() {
	r.closeCurrent()
	r.fileIdx = 0
}

// Close releases the currently open source, if any.
func (r *Reader) Close() error {
	r.closeCurrent()
	return nil
}

// ReadAll drains the reader into a slice, dropping empty instances.
func (r *Reader) ReadAll() ([]Instance, error) {
	var out []Instance
	for {
		inst, err := r.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		if inst.Empty() {
			continue
		}
		out = append(out, inst)
	}
}

func (r *Reader) closeCurrent() {
	if r.file != nil {
		r.file.Close()
		r.file = nil
	}
	r.scanner = nil
}

// extractText pulls the text payload out of a decoded record, trying the
// configured field first and "text" as a fallback. Extra fields are ignored.
func extractText(obj map[string]any, field string) string {
	if s, ok := obj[field].(string); ok {
		return s
	}
	if s, ok := obj["text"].(string); ok {
		return s
	}
	return ""
}

// expandPaths resolves files and directories to a flat list of .jsonl files.
// Directories are walked recursively; exclude patterns are gitignore-style.
func expandPaths(inputs []string, exclude []string) ([]string, error) {
	matcher := ignore.CompileIgnoreLines(exclude...)
	var paths []string
	for _, input := range inputs {
		stat, err := os.Stat(input)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", input, err)
		}
		if !stat.IsDir() {
			paths = append(paths, input)
			continue
		}
		var found []string
		err = filepath.WalkDir(input, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || filepath.Ext(path) != ".jsonl" {
				return nil
			}
			if rel, relErr := filepath.Rel(input, path); relErr == nil && matcher.MatchesPath(rel) {
				return nil
			}
			found = append(found, path)
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to walk %s: %w", input, err)
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("%s does not contain any .jsonl files", input)
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}
	return paths, nil
}
