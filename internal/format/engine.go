package format

import "reindent/internal/source"

// Report summarises one Engine.Process run.
type Report struct {
	Lines    int
	MaxLevel int // deepest level applied to a non-empty line
	// Unclosed is the summed size of debts still open after the last line;
	// zero for input where every increase byte is matched.
	Unclosed    int
	OpenBatches int
	// ExcessDecrease counts decrease units that found an empty stack.
	ExcessDecrease int
}

// Balanced reports whether every increase was matched by a decrease and no
// decrease went past the outermost level.
func (r Report) Balanced() bool {
	return r.Unclosed == 0 && r.ExcessDecrease == 0
}

// Engine recomputes leading whitespace line by line. It keeps no state
// between Process calls, so one Engine can serve any number of documents.
type Engine struct {
	opt IndentOptions
}

// NewEngine creates an engine for the given options.
func NewEngine(opt IndentOptions) *Engine {
	return &Engine{opt: opt}
}

// Process re-indents doc in place, top to bottom. The number of lines and
// everything after the leading whitespace are left untouched.
func (e *Engine) Process(doc source.Document) Report {
	var st indentStack
	rep := Report{Lines: len(doc)}
	for i := range doc {
		doc[i] = e.indentLine(doc[i], &st, &rep)
	}
	rep.Unclosed = st.total()
	rep.OpenBatches = st.depth()
	return rep
}

func (e *Engine) indentLine(line source.Line, st *indentStack, rep *Report) source.Line {
	body := trimIndent(line)
	if len(body) == 0 {
		return body
	}

	// Leading decrease bytes are settled before the filler and skipped by
	// the trailing scan.
	analyzed := 0
	if e.opt.ReduceLeadingDecrease {
		analyzed = e.leadingDecreaseRun(body)
		rep.ExcessDecrease += st.decrease(analyzed)
	}

	level := st.level(e.opt.Progressive)
	rep.MaxLevel = max(rep.MaxLevel, level)
	out := e.withFiller(body, level)

	net := 0
	for _, b := range body[analyzed:] {
		if e.opt.Increase.Contains(b) {
			net++
		}
		if e.opt.Decrease.Contains(b) {
			net--
		}
	}
	switch {
	case net > 0:
		st.push(net)
	case net < 0:
		rep.ExcessDecrease += st.decrease(-net)
	}
	return out
}

func (e *Engine) leadingDecreaseRun(body source.Line) int {
	n := 0
	for n < len(body) && e.opt.Decrease.Contains(body[n]) {
		n++
	}
	return n
}

func (e *Engine) withFiller(body source.Line, level int) source.Line {
	width := 0
	if e.opt.UnitWidth > 0 && e.opt.Filler != 0 {
		width = level * e.opt.UnitWidth
	}
	if width == 0 {
		return body
	}
	out := make(source.Line, width+len(body))
	for i := range width {
		out[i] = e.opt.Filler
	}
	copy(out[width:], body)
	return out
}

func trimIndent(line source.Line) source.Line {
	i := 0
	for i < len(line) && (line[i] == ' ' || line[i] == '\t') {
		i++
	}
	return line[i:]
}
