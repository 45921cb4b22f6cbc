package source

import "bytes"

// Line is a single line of text without its terminating newline.
type Line []byte

// Document is an ordered sequence of lines.
type Document []Line

// Parse splits content on '\n'. A trailing newline does not produce an extra
// empty line; a final line without a newline is kept.
func Parse(content []byte) Document {
	if len(content) == 0 {
		return Document{}
	}
	doc := make(Document, 0, bytes.Count(content, []byte{'\n'})+1)
	start := 0
	for i, b := range content {
		if b == '\n' {
			doc = append(doc, Line(content[start:i:i]))
			start = i + 1
		}
	}
	if start < len(content) {
		doc = append(doc, Line(content[start:len(content):len(content)]))
	}
	return doc
}

// FromStrings builds a document from string lines.
func FromStrings(lines ...string) Document {
	doc := make(Document, len(lines))
	for i, l := range lines {
		doc[i] = Line(l)
	}
	return doc
}

// Strings returns the lines as strings.
func (d Document) Strings() []string {
	out := make([]string, len(d))
	for i, l := range d {
		out[i] = string(l)
	}
	return out
}

// Clone returns a deep copy, so the copy can be mutated independently.
func (d Document) Clone() Document {
	out := make(Document, len(d))
	for i, l := range d {
		out[i] = append(Line(nil), l...)
	}
	return out
}

// Bytes emits every line followed by a single '\n'.
func (d Document) Bytes() []byte {
	size := len(d)
	for _, l := range d {
		size += len(l)
	}
	buf := make([]byte, 0, size)
	for _, l := range d {
		buf = append(buf, l...)
		buf = append(buf, '\n')
	}
	return buf
}
