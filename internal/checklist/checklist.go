// Package checklist splits a meta issue body into preamble, checklist block and
// trailer, and reads the checked repository entries out of the block.
package checklist

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

const (
	// checkedMarker starts every line that is eligible for processing.
	checkedMarker = "- [x]"
	// specPrefix marks the entry that requests a spec issue instead of naming a repository.
	specPrefix = "spec"
	// expectedGroups is the number of capture groups a body pattern must declare.
	expectedGroups = 3
)

// ErrMalformedEntry is returned when a checked line does not follow the
// "- [x] <name>" shape.
var ErrMalformedEntry = errors.New("malformed checklist entry")

// Document is a meta issue body split into its three parts.
type Document struct {
	Preamble string
	Block    string
	Trailer  string
}

// Extract applies pattern to body. It reports false when the pattern does not
// declare exactly three capture groups or does not match at all. A single
// line break ending the preamble belongs to the checklist and is dropped.
func Extract(body string, pattern *regexp.Regexp) (*Document, bool) {
	if pattern == nil || pattern.NumSubexp() != expectedGroups {
		return nil, false
	}
	match := pattern.FindStringSubmatch(body)
	if match == nil {
		return nil, false
	}
	return &Document{
		Preamble: trimLineBreak(match[1]),
		Block:    match[2],
		Trailer:  match[3],
	}, true
}

func trimLineBreak(s string) string {
	s = strings.TrimSuffix(s, "\n")
	return strings.TrimSuffix(s, "\r")
}

// Entries returns the values of all checked lines in the block, in order.
// Unchecked lines are ignored.
func (d *Document) Entries() ([]string, error) {
	var entries []string
	for i, line := range strings.Split(d.Block, "\n") {
		if !strings.HasPrefix(line, checkedMarker) {
			continue
		}
		value, err := parseEntry(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		entries = append(entries, value)
	}
	return entries, nil
}

// parseEntry reads "- [?] <rest>" and returns rest up to the first carriage
// return, trimmed.
func parseEntry(line string) (string, error) {
	// "- [" + one box character + "] "
	if len(line) < 6 || line[0:3] != "- [" || line[4:6] != "] " {
		return "", fmt.Errorf("%w: %q", ErrMalformedEntry, line)
	}
	rest := line[6:]
	if i := strings.IndexByte(rest, '\r'); i >= 0 {
		rest = rest[:i]
	}
	return strings.TrimSpace(rest), nil
}

// Partition removes spec sentinel entries from entries. needsSpec reports
// whether at least one was present.
func Partition(entries []string) (repos []string, needsSpec bool) {
	repos = make([]string, 0, len(entries))
	for _, entry := range entries {
		if strings.HasPrefix(strings.ToLower(entry), specPrefix) {
			needsSpec = true
			continue
		}
		repos = append(repos, entry)
	}
	return repos, needsSpec
}

// LineBreak returns the line ending used by body: CRLF when the body contains
// one, LF otherwise.
func LineBreak(body string) string {
	if strings.Contains(body, "\r\n") {
		return "\r\n"
	}
	return "\n"
}
