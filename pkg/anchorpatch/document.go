package anchorpatch

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
)

const bom = "\ufeff"

// SourceDocument is an immutable line-indexed snapshot of a text file.
// It preserves per-line terminators (mixed LF/CRLF, missing final newline)
// and a leading UTF-8 BOM so that untouched regions survive byte-for-byte.
// All anchor resolution for a run happens against one SourceDocument; edits
// produce a new document, never mutate the snapshot.
type SourceDocument struct {
	path   string
	lines  []string // content without terminators
	terms  []string // terminator per line; "" only for a final unterminated line
	hasBOM bool
	sum    string
}

// LoadDocument reads path and captures it as a snapshot.
func LoadDocument(path string) (*SourceDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseDocument(path, string(data)), nil
}

// ParseDocument builds a snapshot from in-memory content. The path is kept
// for diagnostics only.
func ParseDocument(path, content string) *SourceDocument {
	d := &SourceDocument{path: path}
	h := sha256.Sum256([]byte(content))
	d.sum = hex.EncodeToString(h[:])

	if strings.HasPrefix(content, bom) {
		d.hasBOM = true
		content = strings.TrimPrefix(content, bom)
	}
	for len(content) > 0 {
		nl := strings.IndexByte(content, '\n')
		if nl == -1 {
			d.lines = append(d.lines, content)
			d.terms = append(d.terms, "")
			break
		}
		line, term := content[:nl], "\n"
		if strings.HasSuffix(line, "\r") {
			line = line[:len(line)-1]
			term = "\r\n"
		}
		d.lines = append(d.lines, line)
		d.terms = append(d.terms, term)
		content = content[nl+1:]
	}
	return d
}

// Path returns the file path the snapshot was taken from.
func (d *SourceDocument) Path() string { return d.path }

// LineCount returns the number of lines in the snapshot.
func (d *SourceDocument) LineCount() int { return len(d.lines) }

// Line returns the content of the 0-based line i, without its terminator.
func (d *SourceDocument) Line(i int) string { return d.lines[i] }

// Checksum returns the SHA-256 of the original content, as hex.
func (d *SourceDocument) Checksum() string { return d.sum }

// Text reassembles the full content, including BOM and original terminators.
func (d *SourceDocument) Text() string {
	var b strings.Builder
	if d.hasBOM {
		b.WriteString(bom)
	}
	for i, line := range d.lines {
		b.WriteString(line)
		b.WriteString(d.terms[i])
	}
	return b.String()
}

// dominantTerminator returns the most common line terminator in the
// document; inserted lines adopt it. Defaults to LF for empty documents.
func (d *SourceDocument) dominantTerminator() string {
	lf, crlf := 0, 0
	for _, t := range d.terms {
		switch t {
		case "\n":
			lf++
		case "\r\n":
			crlf++
		}
	}
	if crlf > lf {
		return "\r\n"
	}
	return "\n"
}

// contains reports whether any line contains pat as a substring.
func (d *SourceDocument) contains(pat string) bool {
	for _, line := range d.lines {
		if strings.Contains(line, pat) {
			return true
		}
	}
	return false
}

// newDocument builds a derived snapshot sharing path and BOM with its parent.
func newDocument(parent *SourceDocument, lines, terms []string) *SourceDocument {
	d := &SourceDocument{path: parent.path, lines: lines, terms: terms, hasBOM: parent.hasBOM}
	h := sha256.Sum256([]byte(d.Text()))
	d.sum = hex.EncodeToString(h[:])
	return d
}
