// Package sequence models numbered file sequences addressed by a filename
// pattern with a single contiguous digit placeholder. No directory is ever
// enumerated: every index is turned into a concrete file name and probed
// directly.
package sequence

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Placeholder is the digit placeholder character in pattern strings,
// as in "frame_#####.png".
const Placeholder = '#'

// ErrPatternConfig reports a malformed pattern: zero or more than one
// contiguous placeholder run.
var ErrPatternConfig = errors.New("pattern must contain exactly one contiguous # run")

// Pattern is a compiled filename pattern. Immutable once constructed.
type Pattern struct {
	Prefix string
	Width  int
	Suffix string

	text string
}

// Compile parses a pattern string like "image_#####.png". The placeholder
// run length becomes the fixed index width.
func Compile(pat string) (Pattern, error) {
	pat = norm.NFC.String(pat)
	runs := placeholderRuns(pat)
	if len(runs) != 1 {
		return Pattern{}, fmt.Errorf("%w: %q has %d runs", ErrPatternConfig, pat, len(runs))
	}
	start, end := runs[0][0], runs[0][1]
	return Pattern{
		Prefix: pat[:start],
		Width:  end - start,
		Suffix: pat[end:],
		text:   pat,
	}, nil
}

// String returns the original pattern text.
func (p Pattern) String() string { return p.text }

// FileNameFor builds the file name for idx, zero-padded to the pattern width.
// Indices wider than the pattern render with their full digit count; such
// names never match the pattern back, so callers treat them as nonexistent.
func (p Pattern) FileNameFor(idx uint64) string {
	return fmt.Sprintf("%s%0*d%s", p.Prefix, p.Width, idx, p.Suffix)
}

// Match extracts the sequence index from a concrete file name. The prefix
// and suffix must match literally and the middle must be exactly Width
// digits. Width comes from the pattern, never from the file.
func (p Pattern) Match(name string) (uint64, bool) {
	name = norm.NFC.String(name)
	if len(name) != len(p.Prefix)+p.Width+len(p.Suffix) {
		return 0, false
	}
	if !strings.HasPrefix(name, p.Prefix) || !strings.HasSuffix(name, p.Suffix) {
		return 0, false
	}
	digits := name[len(p.Prefix) : len(p.Prefix)+p.Width]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	idx, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, false
	}
	return idx, true
}

// placeholderRuns returns the [start, end) byte ranges of every maximal
// placeholder run in s.
func placeholderRuns(s string) [][2]int {
	var runs [][2]int
	for i := 0; i < len(s); {
		if s[i] != Placeholder {
			i++
			continue
		}
		start := i
		for i < len(s) && s[i] == Placeholder {
			i++
		}
		runs = append(runs, [2]int{start, i})
	}
	return runs
}
