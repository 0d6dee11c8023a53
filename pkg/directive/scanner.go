// SPDX-License-Identifier: MPL-2.0

package directive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"iter"
	"strings"

	"github.com/spf13/afero"
)

// Scanner yields the directives of one source file in line order.
// A Scanner consumes its reader and cannot be restarted.
type Scanner struct {
	r          *bufio.Reader
	sourceFile string
	line       int
	err        error
	done       bool
}

// NewScanner returns a Scanner reading from r. sourceFile is recorded on
// every directive for diagnostics.
func NewScanner(r io.Reader, sourceFile string) *Scanner {
	return &Scanner{r: bufio.NewReader(r), sourceFile: sourceFile}
}

// All returns the sequence of directives. Iteration stops early if the
// consumer breaks; a second call yields only what is left of the input.
func (s *Scanner) All() iter.Seq[Directive] {
	return func(yield func(Directive) bool) {
		for !s.done {
			raw, err := s.r.ReadString('\n')
			if err != nil {
				s.done = true
				if !errors.Is(err, io.EOF) {
					s.err = err
					return
				}
				if raw == "" {
					return
				}
			}
			s.line++

			d, ok := s.parseLine(raw)
			if !ok {
				continue
			}
			if !yield(d) {
				return
			}
		}
	}
}

// Err returns the first non-EOF read error encountered during iteration.
func (s *Scanner) Err() error {
	return s.err
}

func (s *Scanner) parseLine(raw string) (Directive, bool) {
	stripped := strings.TrimSpace(StripComment(raw))
	switch {
	case stripped == "":
		return Directive{}, false
	case IsInsertLine(stripped):
		target := InsertTarget(stripped)
		if target == "" {
			return Directive{}, false
		}
		return Directive{Kind: KindInsert, RawTarget: target, SourceFile: s.sourceFile, Line: s.line}, true
	case IsUseLine(stripped):
		stmt, ok := ParseUse(stripped)
		if !ok {
			return Directive{}, false
		}
		return Directive{
			Kind:       KindUse,
			RawTarget:  stmt.Target,
			Alias:      stmt.Alias,
			Modifiers:  stmt.Modifiers,
			SourceFile: s.sourceFile,
			Line:       s.line,
		}, true
	default:
		return Directive{}, false
	}
}

// ScanFile reads every directive of the file at path.
func ScanFile(fsys afero.Fs, path string) (_ []Directive, err error) {
	f, err := fsys.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	s := NewScanner(f, path)
	var out []Directive
	for d := range s.All() {
		out = append(out, d)
	}
	if s.Err() != nil {
		return out, fmt.Errorf("reading %s: %w", path, s.Err())
	}
	return out, nil
}
