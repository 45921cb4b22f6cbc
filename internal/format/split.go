package format

import "reindent/internal/source"

// SplitLines returns a new document where every line holding the delimiter
// followed by some non-blank content is broken right after the first
// delimiter. The prefix keeps the delimiter; the suffix becomes the next line.
// Lines without a delimiter, or with only spaces and tabs after it, are
// copied unchanged. When opt.Enabled is false doc is returned as is.
func SplitLines(doc source.Document, opt SplitOptions) source.Document {
	if !opt.Enabled {
		return doc
	}
	out := make(source.Document, 0, len(doc))
	for _, line := range doc {
		for {
			head, tail, ok := splitAfter(line, opt.Delimiter)
			if !ok {
				out = append(out, line)
				break
			}
			out = append(out, head)
			if !opt.Exhaustive {
				out = append(out, tail)
				break
			}
			line = tail
		}
	}
	return out
}

func splitAfter(line source.Line, delim byte) (head, tail source.Line, ok bool) {
	idx := -1
	for i, b := range line {
		if b == delim {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, nil, false
	}
	rest := line[idx+1:]
	if !hasNonBlank(rest) {
		return nil, nil, false
	}
	return line[: idx+1 : idx+1], rest, true
}

func hasNonBlank(b []byte) bool {
	for _, c := range b {
		if c != ' ' && c != '\t' {
			return true
		}
	}
	return false
}
