// Package frontmatter splits and reassembles MDX documents with YAML
// frontmatter while preserving the byte-level shape of everything it does
// not touch.
package frontmatter

import (
	"bytes"
	"errors"

	"gopkg.in/yaml.v3"
)

// ErrMissingClosingDelimiter indicates the document started with a YAML
// frontmatter delimiter but did not contain a closing delimiter.
var ErrMissingClosingDelimiter = errors.New("yaml frontmatter start delimiter found but closing delimiter is missing")

// Style captures the newline shape needed for stable rewriting.
type Style struct {
	Newline string
}

// Split separates YAML frontmatter (`---` delimited) from the document body.
//
// If the document does not start with a frontmatter delimiter, had is false
// and body is the full input.
func Split(content []byte) (fm []byte, body []byte, had bool, style Style, err error) {
	style = detectStyle(content)
	nl := style.Newline

	open := []byte("---" + nl)
	if !bytes.HasPrefix(content, open) {
		return nil, content, false, style, nil
	}

	start := len(open)
	if bytes.HasPrefix(content[start:], open) {
		// Empty frontmatter block.
		return []byte{}, content[start+len(open):], true, style, nil
	}

	closeSeq := []byte(nl + "---" + nl)
	idx := bytes.Index(content[start:], closeSeq)
	if idx < 0 {
		return nil, nil, false, style, ErrMissingClosingDelimiter
	}

	fmEnd := start + idx + len(nl)
	bodyStart := start + idx + len(closeSeq)
	return content[start:fmEnd], content[bodyStart:], true, style, nil
}

// Join reassembles a document from raw frontmatter and body.
func Join(fm []byte, body []byte, had bool, style Style) []byte {
	if !had {
		return body
	}

	nl := style.Newline
	if nl == "" {
		nl = "\n"
	}

	delim := []byte("---" + nl)
	out := make([]byte, 0, 2*len(delim)+len(fm)+len(body))
	out = append(out, delim...)
	out = append(out, fm...)
	out = append(out, delim...)
	out = append(out, body...)
	return out
}

// ParseYAML parses raw YAML frontmatter (without --- delimiters) into a map.
func ParseYAML(fm []byte) (map[string]any, error) {
	if len(fm) == 0 {
		return map[string]any{}, nil
	}

	var fields map[string]any
	if err := yaml.Unmarshal(fm, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = map[string]any{}
	}
	return fields, nil
}

// ReplaceScalar rewrites the value of a single top-level scalar field inside
// raw frontmatter, leaving every other line byte-identical. It returns the
// updated frontmatter and whether the field was found.
//
// Only unquoted single-line scalars are handled; that covers the generated
// documents this tool maintains.
func ReplaceScalar(fm []byte, field string, value string) ([]byte, bool) {
	nl := detectStyle(fm).Newline
	if nl == "" {
		nl = "\n"
	}

	prefix := []byte(field + ":")
	lines := bytes.Split(fm, []byte(nl))
	replaced := false
	for i, line := range lines {
		if replaced || !bytes.HasPrefix(line, prefix) {
			continue
		}
		lines[i] = []byte(field + ": " + value)
		replaced = true
	}
	if !replaced {
		return fm, false
	}
	return bytes.Join(lines, []byte(nl)), true
}

func detectStyle(content []byte) Style {
	newline := "\n"
	for i := 0; i+1 < len(content); i++ {
		if content[i] == '\r' && content[i+1] == '\n' {
			newline = "\r\n"
			break
		}
		if content[i] == '\n' {
			newline = "\n"
			break
		}
	}
	return Style{Newline: newline}
}
