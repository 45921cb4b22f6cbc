package format

import "reindent/internal/source"

// Format splits doc (when enabled) and re-indents the result. The returned
// document may share line storage with doc; when splitting is disabled doc
// itself is re-indented in place and returned.
func Format(doc source.Document, opt Options) (source.Document, Report) {
	doc = SplitLines(doc, opt.Split)
	rep := NewEngine(opt.Indent).Process(doc)
	return doc, rep
}

// FormatBytes formats raw content and emits every line with a trailing '\n'.
func FormatBytes(content []byte, opt Options) ([]byte, Report) {
	doc, rep := Format(source.Parse(content), opt)
	return doc.Bytes(), rep
}
