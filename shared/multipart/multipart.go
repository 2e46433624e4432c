// Package multipart splits a raw multipart/form-data body into named parts.
//
// The parser works on a byte buffer with a cursor and never fails: malformed
// segments are skipped and a truncated body yields the parts collected so far.
// Callers decide which fields are required.
package multipart

import (
	"bytes"
	"encoding/base64"
	"regexp"
	"strings"
)

var (
	crlf   = []byte("\r\n")
	lf     = []byte("\n")
	sepCR  = []byte("\r\n\r\n")
	sepLF  = []byte("\n\n")
	dashes = []byte("--")

	dispositionRe = regexp.MustCompile(`(?im)^content-disposition:[^\r\n]*`)
	nameRe        = regexp.MustCompile(`(?i)(?:^|[;\s])name="([^"]+)"`)
	filenameRe    = regexp.MustCompile(`(?i)filename="([^"]*)"`)
	hasFilenameRe = regexp.MustCompile(`(?i)filename=`)
	contentTypeRe = regexp.MustCompile(`(?im)^content-type:\s*([^\r\n;]+)`)
)

// Part is one named segment of a multipart body.
type Part struct {
	Name        string
	Filename    string
	ContentType string
	IsFile      bool
	Data        []byte
}

// Text returns the part content as a string.
func (p Part) Text() string {
	return string(p.Data)
}

// Result holds the parsed fields together with what the parser had to drop.
type Result struct {
	Fields map[string]Part

	// Skipped counts segments without a non-empty field name.
	Skipped int
	// Truncated is set when the body ended before the terminal boundary.
	Truncated bool
}

// Len returns the number of distinct field names.
func (r *Result) Len() int {
	return len(r.Fields)
}

// Value returns a text field.
func (r *Result) Value(name string) (string, bool) {
	p, ok := r.Fields[name]
	if !ok || p.IsFile {
		return "", false
	}
	return p.Text(), true
}

// File returns a file field.
func (r *Result) File(name string) (Part, bool) {
	p, ok := r.Fields[name]
	if !ok || !p.IsFile {
		return Part{}, false
	}
	return p, true
}

// Parse splits body into parts delimited by boundary. When encoded is set the body
// is treated as base64 text and decoded first.
func Parse(body []byte, boundary string, encoded bool) *Result {
	res := &Result{Fields: map[string]Part{}}
	if boundary == "" {
		return res
	}

	buf := body
	if encoded {
		decoded, err := DecodeBase64(body)
		if err != nil {
			return res
		}
		buf = decoded
	}

	partMarker := append(append([]byte{}, dashes...), boundary...)
	endMarker := append(append([]byte{}, partMarker...), dashes...)

	cursor := 0
	for {
		idx := indexFrom(buf, partMarker, cursor)
		if idx < 0 {
			res.Truncated = true
			return res
		}
		if bytes.HasPrefix(buf[idx:], endMarker) {
			return res
		}

		cursor = idx + len(partMarker)
		cursor += lineBreakAt(buf, cursor)

		sepStart, sepLen := findSeparator(buf, cursor)
		if sepStart < 0 {
			res.Truncated = true
			return res
		}

		header := string(buf[cursor:sepStart])
		cursor = sepStart + sepLen

		// the field name only counts on the Content-Disposition line
		m := nameRe.FindStringSubmatch(dispositionRe.FindString(header))
		if m == nil {
			res.Skipped++
			continue
		}

		next := indexFrom(buf, partMarker, cursor)
		if next < 0 {
			res.Truncated = true
			return res
		}

		end := next - trailingBreak(buf[cursor:next])
		part := Part{
			Name:   m[1],
			IsFile: hasFilenameRe.MatchString(header),
			Data:   buf[cursor:end],
		}
		if fm := filenameRe.FindStringSubmatch(header); fm != nil {
			part.Filename = fm[1]
		}
		if cm := contentTypeRe.FindStringSubmatch(header); cm != nil {
			part.ContentType = strings.TrimSpace(cm[1])
		}
		res.Fields[part.Name] = part

		cursor = next
	}
}

// DecodeBase64 decodes standard base64 text, ignoring embedded whitespace and
// accepting input without padding.
func DecodeBase64(text []byte) ([]byte, error) {
	clean := bytes.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '\r', '\n':
			return -1
		}
		return r
	}, text)

	out := make([]byte, base64.StdEncoding.DecodedLen(len(clean)))
	n, err := base64.StdEncoding.Decode(out, clean)
	if err == nil {
		return out[:n], nil
	}

	out = make([]byte, base64.RawStdEncoding.DecodedLen(len(clean)))
	n, rawErr := base64.RawStdEncoding.Decode(out, bytes.TrimRight(clean, "="))
	if rawErr != nil {
		return nil, err
	}
	return out[:n], nil
}

func indexFrom(buf, sep []byte, from int) int {
	if from > len(buf) {
		return -1
	}
	i := bytes.Index(buf[from:], sep)
	if i < 0 {
		return -1
	}
	return from + i
}

// lineBreakAt returns the length of the line break starting at pos, or 0.
func lineBreakAt(buf []byte, pos int) int {
	switch {
	case bytes.HasPrefix(buf[pos:], crlf):
		return len(crlf)
	case bytes.HasPrefix(buf[pos:], lf):
		return len(lf)
	}
	return 0
}

// findSeparator locates the blank line ending a header block. The earliest of a
// CRLF or bare LF blank line wins.
func findSeparator(buf []byte, from int) (int, int) {
	cr := indexFrom(buf, sepCR, from)
	bare := indexFrom(buf, sepLF, from)
	switch {
	case cr < 0 && bare < 0:
		return -1, 0
	case bare < 0 || (cr >= 0 && cr <= bare):
		return cr, len(sepCR)
	default:
		return bare, len(sepLF)
	}
}

// trailingBreak is the length of the line break that frames the next boundary.
func trailingBreak(content []byte) int {
	switch {
	case bytes.HasSuffix(content, crlf):
		return len(crlf)
	case bytes.HasSuffix(content, lf):
		return len(lf)
	}
	return 0
}
