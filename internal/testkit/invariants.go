// Package testkit holds checks shared by tests and fuzz harnesses that
// drive the formatter with arbitrary input.
package testkit

import (
	"bytes"
	"fmt"

	"reindent/internal/format"
	"reindent/internal/source"
)

// CheckSplit verifies that after is before with line breaks inserted only
// right after opt.Delimiter:
// 1) concatenating the pieces of every input line gives the line back
// 2) every piece except the last ends with the delimiter
// 3) without Exhaustive a line yields at most two pieces
func CheckSplit(before, after source.Document, opt format.SplitOptions) error {
	if !opt.Enabled {
		if len(before) != len(after) {
			return fmt.Errorf("disabled split changed line count: %d -> %d", len(before), len(after))
		}
		for i := range before {
			if !bytes.Equal(before[i], after[i]) {
				return fmt.Errorf("disabled split changed line %d: %q -> %q", i, before[i], after[i])
			}
		}
		return nil
	}

	j := 0
	for i, line := range before {
		var joined []byte
		pieces := 0
		for {
			if j >= len(after) {
				return fmt.Errorf("line %d: output ended early", i)
			}
			piece := after[j]
			j++
			pieces++
			joined = append(joined, piece...)
			if len(joined) >= len(line) {
				break
			}
			if len(piece) == 0 || piece[len(piece)-1] != opt.Delimiter {
				return fmt.Errorf("line %d: piece %q does not end with %q", i, piece, opt.Delimiter)
			}
		}
		if !bytes.Equal(joined, line) {
			return fmt.Errorf("line %d: pieces join to %q, want %q", i, joined, line)
		}
		if !opt.Exhaustive && pieces > 2 {
			return fmt.Errorf("line %d: split into %d pieces", i, pieces)
		}
	}
	if j != len(after) {
		return fmt.Errorf("%d extra output lines", len(after)-j)
	}
	return nil
}

// CheckIndent verifies that after is before with only the leading spaces
// and tabs of every line rewritten:
// 1) the line count is unchanged
// 2) every line keeps its content after the indentation
// 3) the new indentation is made of opt.Filler only, in whole units
// 4) blank lines come out empty
func CheckIndent(before, after source.Document, opt format.IndentOptions) error {
	if len(before) != len(after) {
		return fmt.Errorf("line count changed: %d -> %d", len(before), len(after))
	}
	for i := range before {
		body := bytes.TrimLeft(before[i], " \t")
		out := after[i]
		if len(body) == 0 {
			if len(out) != 0 {
				return fmt.Errorf("line %d: blank line became %q", i, out)
			}
			continue
		}
		if !bytes.HasSuffix(out, body) {
			return fmt.Errorf("line %d: content changed: %q -> %q", i, body, out)
		}
		filler := out[:len(out)-len(body)]
		if len(filler) == 0 {
			continue
		}
		if opt.UnitWidth <= 0 || opt.Filler == 0 {
			return fmt.Errorf("line %d: filler %q emitted while disabled", i, filler)
		}
		if len(filler)%opt.UnitWidth != 0 {
			return fmt.Errorf("line %d: filler width %d is not a multiple of %d", i, len(filler), opt.UnitWidth)
		}
		if n := bytes.Count(filler, []byte{opt.Filler}); n != len(filler) {
			return fmt.Errorf("line %d: filler %q holds foreign bytes", i, filler)
		}
	}
	return nil
}

// CheckReport verifies the counters of a Process run.
func CheckReport(doc source.Document, rep format.Report) error {
	if rep.Lines != len(doc) {
		return fmt.Errorf("report counts %d lines, document has %d", rep.Lines, len(doc))
	}
	if rep.MaxLevel < 0 || rep.Unclosed < 0 || rep.OpenBatches < 0 || rep.ExcessDecrease < 0 {
		return fmt.Errorf("negative report field: %+v", rep)
	}
	if rep.OpenBatches > rep.Unclosed {
		return fmt.Errorf("%d open batches hold only %d levels", rep.OpenBatches, rep.Unclosed)
	}
	if (rep.Unclosed == 0) != (rep.OpenBatches == 0) {
		return fmt.Errorf("inconsistent open state: %+v", rep)
	}
	return nil
}

// CheckIdempotent verifies that formatting formatted output changes nothing.
// Only meaningful when splitting is disabled or exhaustive and the filler
// is a space or a tab.
func CheckIdempotent(content []byte, opt format.Options) error {
	once, _ := format.FormatBytes(content, opt)
	twice, _ := format.FormatBytes(once, opt)
	if !bytes.Equal(once, twice) {
		return fmt.Errorf("second pass changed output:\n%q\n%q", once, twice)
	}
	return nil
}
