package fuzztests

import (
	"testing"

	"reindent/internal/format"
)

// snippets seed every harness. They cover nesting, closers at line start,
// several statements per line, blank lines and a missing final newline.
var snippets = []string{
	"",
	"\n\n",
	"first_line();second_line();{\n",
	"int main() {\nif (x) {\nreturn 1;\n}\n}\n",
	"f({\nx\n})\n",
	"}}\n{{\n  x\n)(",
	"\t\t\n{ ( } )\n",
	"a; b;\tc;  \n",
	"for (;;) { a(); b(); }\n",
	"  {\r\n  x;\r\n  }\r\n",
	"((((\n))))\n",
}

func addSnippetSeeds(f *testing.F) {
	for i, s := range snippets {
		f.Add([]byte(s), uint8(i%5), i%2 == 0, i%3 == 0)
	}
}

// optionsFrom derives options from fuzzer-controlled values. The filler
// is always a space or a tab so idempotence holds.
func optionsFrom(width uint8, reduce, progressive bool) format.Options {
	filler := byte(' ')
	if width%2 == 1 {
		filler = '\t'
	}
	return format.Options{
		Split: format.SplitOptions{Enabled: true, Delimiter: ';', Exhaustive: true},
		Indent: format.IndentOptions{
			Increase:              format.NewCharSet("{("),
			Decrease:              format.NewCharSet("})"),
			UnitWidth:             int(width % 9),
			Filler:                filler,
			ReduceLeadingDecrease: reduce,
			Progressive:           progressive,
		},
	}
}
