package input

import (
	"bufio"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/input-output-hk/catalyst-forge-libs/fs"

	"github.com/objtools/bulks3/errors"
)

// Source produces a lazy, finite, non-restartable sequence of input
// items. Next returns the next item and true, or "" and false once the
// sequence is exhausted.
type Source interface {
	Next() (string, bool)
}

// Resolve picks the input source for a run, in priority order: a manifest
// file when given ("-" means the standard input stream), else positional
// arguments, else newline-delimited standard input.
//
// For put runs (expandGlobs true) each positional argument is
// glob-expanded against the local filesystem; a pattern matching nothing
// is logged as an error and skipped rather than aborting the run. A
// missing manifest file, by contrast, is an error: the whole run has no
// input to work from.
func Resolve(
	fsys fs.Filesystem,
	stdin io.Reader,
	manifest string,
	args []string,
	expandGlobs bool,
	logger *slog.Logger,
) (Source, error) {
	switch {
	case manifest == "-":
		return Lines(stdin), nil
	case manifest != "":
		file, err := fsys.Open(manifest)
		if err != nil {
			return nil, errors.NewError("input", err).
				WithMessage("cannot open manifest " + manifest)
		}
		return &fileSource{lines: newLineScanner(file), closer: file}, nil
	case len(args) > 0:
		if expandGlobs {
			return &globSource{patterns: args, logger: logger}, nil
		}
		return &sliceSource{items: args}, nil
	default:
		return Lines(stdin), nil
	}
}

// Lines returns a Source over newline-delimited entries from r, with
// surrounding whitespace trimmed and blank lines skipped.
func Lines(r io.Reader) Source {
	return &lineSource{sc: newLineScanner(r)}
}

func newLineScanner(r io.Reader) *bufio.Scanner {
	return bufio.NewScanner(r)
}

type lineSource struct {
	sc *bufio.Scanner
}

func (s *lineSource) Next() (string, bool) {
	for s.sc.Scan() {
		line := strings.TrimSpace(s.sc.Text())
		if line != "" {
			return line, true
		}
	}
	return "", false
}

// fileSource reads lines from a manifest file and closes it once the
// sequence is exhausted.
type fileSource struct {
	lines  *bufio.Scanner
	closer io.Closer
	closed bool
}

func (s *fileSource) Next() (string, bool) {
	for s.lines.Scan() {
		line := strings.TrimSpace(s.lines.Text())
		if line != "" {
			return line, true
		}
	}
	if !s.closed {
		s.closed = true
		_ = s.closer.Close()
	}
	return "", false
}

type sliceSource struct {
	items []string
	pos   int
}

func (s *sliceSource) Next() (string, bool) {
	for s.pos < len(s.items) {
		item := strings.TrimSpace(s.items[s.pos])
		s.pos++
		if item != "" {
			return item, true
		}
	}
	return "", false
}

// globSource lazily expands one pattern at a time, draining each match
// list before touching the next pattern.
type globSource struct {
	patterns []string
	pos      int
	pending  []string
	logger   *slog.Logger
}

func (s *globSource) Next() (string, bool) {
	for {
		if len(s.pending) > 0 {
			item := s.pending[0]
			s.pending = s.pending[1:]
			return item, true
		}
		if s.pos >= len(s.patterns) {
			return "", false
		}

		pattern := s.patterns[s.pos]
		s.pos++

		matches, err := filepath.Glob(pattern)
		if err != nil {
			s.log("bad glob pattern", pattern, err)
			continue
		}
		if len(matches) == 0 {
			s.log("no files match pattern", pattern, nil)
			continue
		}
		s.pending = matches
	}
}

func (s *globSource) log(msg, pattern string, err error) {
	if s.logger == nil {
		return
	}
	if err != nil {
		s.logger.Error(msg, "pattern", pattern, "error", err)
		return
	}
	s.logger.Error(msg, "pattern", pattern)
}
