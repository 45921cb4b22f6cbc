package format

import (
	"reflect"
	"strings"
	"testing"

	"reindent/internal/source"
)

func baseIndentOptions() IndentOptions {
	return IndentOptions{
		Increase:  NewCharSet("{("),
		Decrease:  NewCharSet("})"),
		UnitWidth: 4,
		Filler:    ' ',
	}
}

func runEngine(t *testing.T, opt IndentOptions, lines ...string) ([]string, Report) {
	t.Helper()
	doc := source.FromStrings(lines...)
	rep := NewEngine(opt).Process(doc)
	if len(doc) != len(lines) {
		t.Fatalf("line count changed: got %d, want %d", len(doc), len(lines))
	}
	return doc.Strings(), rep
}

func TestEngineWhitespace(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "white lines become empty",
			input: []string{"     ", "  ", "\t \t"},
			want:  []string{"", "", ""},
		},
		{
			name:  "leading whitespace removed",
			input: []string{"     first_line();", "  second_line();", "\tthird_line();"},
			want:  []string{"first_line();", "second_line();", "third_line();"},
		},
		{
			name:  "no indent chars leaves lines alone",
			input: []string{"first_line();", "second_line();", "third_line();"},
			want:  []string{"first_line();", "second_line();", "third_line();"},
		},
		{
			name:  "white lines inside a block stay empty",
			input: []string{"     ", "  ", "  {", "     ", "  }", "   "},
			want:  []string{"", "", "{", "", "    }", ""},
		},
		{
			name:  "invalid indentation is replaced",
			input: []string{"     first_line();{", "  second_line();(", " third_line();)", "        fourth_line();"},
			want:  []string{"first_line();{", "    second_line();(", "        third_line();)", "    fourth_line();"},
		},
		{
			name:  "empty line keeps stack",
			input: []string{"     first_line();{", "  second_line();(", "", " third_line();)", "        fourth_line();"},
			want:  []string{"first_line();{", "    second_line();(", "", "        third_line();)", "    fourth_line();"},
		},
		{
			name:  "trailing whitespace kept",
			input: []string{"a{  ", "  b\t"},
			want:  []string{"a{  ", "    b\t"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := runEngine(t, baseIndentOptions(), tt.input...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestEngineIncrease(t *testing.T) {
	twoSpaces := baseIndentOptions()
	twoSpaces.UnitWidth = 2
	progressive := baseIndentOptions()
	progressive.Progressive = true

	tests := []struct {
		name  string
		opt   IndentOptions
		input []string
		want  []string
	}{
		{
			name:  "next line after opener",
			opt:   baseIndentOptions(),
			input: []string{"first_line();{", "second_line();"},
			want:  []string{"first_line();{", "    second_line();"},
		},
		{
			name:  "indentation kept for following lines",
			opt:   baseIndentOptions(),
			input: []string{"first_line();{", "second_line();", "third_line();", "fourth_line();"},
			want:  []string{"first_line();{", "    second_line();", "    third_line();", "    fourth_line();"},
		},
		{
			name:  "cumulative depth",
			opt:   baseIndentOptions(),
			input: []string{"first();{", "second();(", " third();", "fourth();"},
			want:  []string{"first();{", "    second();(", "        third();", "        fourth();"},
		},
		{
			name:  "progressive depth on single openers",
			opt:   progressive,
			input: []string{"first();{", "second();(", " third();", "fourth();"},
			want:  []string{"first();{", "    second();(", "        third();", "        fourth();"},
		},
		{
			name:  "two space unit",
			opt:   twoSpaces,
			input: []string{"first_line();{", "second_line();(", "third_line();", "fourth_line();"},
			want:  []string{"first_line();{", "  second_line();(", "    third_line();", "    fourth_line();"},
		},
		{
			name:  "cumulative counts every opener",
			opt:   baseIndentOptions(),
			input: []string{"first_line();{{", "second_line();({{", "third_line();", "fourth_line();"},
			want: []string{
				"first_line();{{",
				"        second_line();({{",
				"                    third_line();",
				"                    fourth_line();",
			},
		},
		{
			name:  "progressive counts lines with openers",
			opt:   progressive,
			input: []string{"first_line();{{", "second_line();({{", "third_line();", "fourth_line();"},
			want:  []string{"first_line();{{", "    second_line();({{", "        third_line();", "        fourth_line();"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := runEngine(t, tt.opt, tt.input...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestEngineDecrease(t *testing.T) {
	twoSpaces := baseIndentOptions()
	twoSpaces.UnitWidth = 2
	reduce := baseIndentOptions()
	reduce.ReduceLeadingDecrease = true
	progressive := baseIndentOptions()
	progressive.Progressive = true
	reduceProgressive := reduce
	reduceProgressive.Progressive = true

	tests := []struct {
		name  string
		opt   IndentOptions
		input []string
		want  []string
	}{
		{
			name:  "closer affects next line",
			opt:   baseIndentOptions(),
			input: []string{"first_line();{", "second_line();()}", "third_line();"},
			want:  []string{"first_line();{", "    second_line();()}", "third_line();"},
		},
		{
			name:  "excess closers are dropped",
			opt:   baseIndentOptions(),
			input: []string{"first_line();}", "second_line();()}", "third_line();"},
			want:  []string{"first_line();}", "second_line();()}", "third_line();"},
		},
		{
			name:  "two space unit",
			opt:   twoSpaces,
			input: []string{"first_line();{", "second_line();{", "third_line();}", "fourth_line();}", "fifth_line();"},
			want:  []string{"first_line();{", "  second_line();{", "    third_line();}", "  fourth_line();}", "fifth_line();"},
		},
		{
			name:  "closer lines not reduced by default",
			opt:   baseIndentOptions(),
			input: []string{"{", "{", "}", "}"},
			want:  []string{"{", "    {", "        }", "    }"},
		},
		{
			name:  "reduce with nothing open",
			opt:   reduce,
			input: []string{"}", "}"},
			want:  []string{"}", "}"},
		},
		{
			name:  "reduce leading closer",
			opt:   reduce,
			input: []string{"{", "{", "}", "}"},
			want:  []string{"{", "    {", "    }", "}"},
		},
		{
			name:  "reduce is not applied twice",
			opt:   reduce,
			input: []string{"{", "{", "{", "}", "}", "}"},
			want:  []string{"{", "    {", "        {", "        }", "    }", "}"},
		},
		{
			name:  "reduce with text after closer",
			opt:   reduce,
			input: []string{"{", "{", "}sth", "}other"},
			want:  []string{"{", "    {", "    }sth", "}other"},
		},
		{
			name: "progressive pops whole batches",
			opt:  progressive,
			input: []string{
				"first_line();{{", "second_line();({{", "third_line();", "}})", "fourth_line();", "}}", "fifth_line();",
			},
			want: []string{
				"first_line();{{", "    second_line();({{", "        third_line();", "        }})", "    fourth_line();", "    }}", "fifth_line();",
			},
		},
		{
			name: "progressive keeps partially closed batch",
			opt:  progressive,
			input: []string{
				"first_line();{{", "second_line();({{", "third_line();", "}", "fourth_line();", "})", "fifth_line();",
			},
			want: []string{
				"first_line();{{", "    second_line();({{", "        third_line();", "        }", "        fourth_line();", "        })", "    fifth_line();",
			},
		},
		{
			name:  "reduce with progressive",
			opt:   reduceProgressive,
			input: []string{"{{", "{{", "x", "}}", "}}"},
			want:  []string{"{{", "    {{", "        x", "    }}", "}}"},
		},
		{
			name:  "reduce with progressive and partial batch",
			opt:   reduceProgressive,
			input: []string{"{{", "{{{", "x", "}}", "}", "}}"},
			want:  []string{"{{", "    {{{", "        x", "        }}", "    }", "}}"},
		},
		{
			name:  "reduce only counts the leading run",
			opt:   reduceProgressive,
			input: []string{"{{", "{{{", "x", "}} sth }", "}}"},
			want:  []string{"{{", "    {{{", "        x", "        }} sth }", "}}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := runEngine(t, tt.opt, tt.input...)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got  %q\nwant %q", got, tt.want)
			}
		})
	}
}

func TestEngineProgressiveDiffersFromCumulative(t *testing.T) {
	input := []string{"a{{", "b", "c{", "d{", "e"}

	cumulative, _ := runEngine(t, baseIndentOptions(), input...)
	if want := strings.Repeat(" ", 16) + "e"; cumulative[4] != want {
		t.Errorf("cumulative last line = %q, want %q", cumulative[4], want)
	}

	opt := baseIndentOptions()
	opt.Progressive = true
	progressive, _ := runEngine(t, opt, input...)
	if want := strings.Repeat(" ", 12) + "e"; progressive[4] != want {
		t.Errorf("progressive last line = %q, want %q", progressive[4], want)
	}
	if progressive[1] != "    b" || cumulative[1] != "        b" {
		t.Errorf("double opener: progressive %q, cumulative %q", progressive[1], cumulative[1])
	}
}

func TestEngineTabFiller(t *testing.T) {
	opt := baseIndentOptions()
	opt.UnitWidth = 1
	opt.Filler = '\t'
	got, _ := runEngine(t, opt, "a{", "    b(", "c", "))", "}")
	want := []string{"a{", "\tb(", "\t\tc", "\t\t))", "}"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestEngineSharedCharNetsToZero(t *testing.T) {
	opt := baseIndentOptions()
	opt.Increase = NewCharSet("{|")
	opt.Decrease = NewCharSet("}|")
	got, rep := runEngine(t, opt, "a|", "b{|", "c", "}")
	want := []string{"a|", "b{|", "    c", "    }"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}
	if !rep.Balanced() {
		t.Errorf("expected balanced report, got %+v", rep)
	}
}

func TestEngineDegenerateOptions(t *testing.T) {
	input := []string{"  a{", "\tb{", "c}", "d}"}
	want := []string{"a{", "b{", "c}", "d}"}

	zeroWidth := baseIndentOptions()
	zeroWidth.UnitWidth = 0
	negativeWidth := baseIndentOptions()
	negativeWidth.UnitWidth = -3
	noFiller := baseIndentOptions()
	noFiller.Filler = 0
	noChars := IndentOptions{UnitWidth: 4, Filler: ' ', ReduceLeadingDecrease: true}

	for name, opt := range map[string]IndentOptions{
		"zero width":     zeroWidth,
		"negative width": negativeWidth,
		"no filler":      noFiller,
		"empty sets":     noChars,
	} {
		t.Run(name, func(t *testing.T) {
			got, _ := runEngine(t, opt, input...)
			if !reflect.DeepEqual(got, want) {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestEngineReport(t *testing.T) {
	opt := baseIndentOptions()
	opt.ReduceLeadingDecrease = true

	_, rep := runEngine(t, opt, "{", "  (", "x", "  )", "}")
	if !rep.Balanced() || rep.MaxLevel != 2 || rep.Lines != 5 {
		t.Errorf("balanced report = %+v", rep)
	}

	_, rep = runEngine(t, opt, "{{", "x(", "y")
	if rep.Unclosed != 3 || rep.OpenBatches != 2 {
		t.Errorf("unclosed report = %+v", rep)
	}

	_, rep = runEngine(t, opt, "}}", "x)")
	if rep.ExcessDecrease != 3 || rep.Unclosed != 0 {
		t.Errorf("excess report = %+v", rep)
	}
}

func TestEngineIsReusable(t *testing.T) {
	eng := NewEngine(baseIndentOptions())
	first := source.FromStrings("a{", "b")
	eng.Process(first)
	second := source.FromStrings("c", "d")
	eng.Process(second)
	if got := second.Strings(); !reflect.DeepEqual(got, []string{"c", "d"}) {
		t.Errorf("state leaked between documents: %q", got)
	}
}

func TestEngineIdempotent(t *testing.T) {
	inputs := [][]string{
		{"first();{", "second();(", " third();", "fourth();"},
		{"{", "{", "}", "}"},
		{"}}}", "x{", "  y(", "\t)", "}", "", "z"},
		{"a{{", "b", "}", "c", "}", "d"},
	}
	for _, reduce := range []bool{false, true} {
		for _, progressive := range []bool{false, true} {
			opt := baseIndentOptions()
			opt.ReduceLeadingDecrease = reduce
			opt.Progressive = progressive
			for _, in := range inputs {
				once, _ := runEngine(t, opt, in...)
				twice, _ := runEngine(t, opt, once...)
				if !reflect.DeepEqual(once, twice) {
					t.Errorf("reduce=%v progressive=%v: not idempotent\nonce  %q\ntwice %q", reduce, progressive, once, twice)
				}
			}
		}
	}
}

func FuzzEngineInvariants(f *testing.F) {
	f.Add("first();{\nsecond();(\n third();\nfourth();", true, false)
	f.Add("}}\n{{\n  x\n)(", false, true)
	f.Add("\t\t\n{ ( } )\n", true, true)

	f.Fuzz(func(t *testing.T, content string, reduce, progressive bool) {
		opt := baseIndentOptions()
		opt.ReduceLeadingDecrease = reduce
		opt.Progressive = progressive

		in := source.Parse([]byte(content))
		doc := in.Clone()
		rep := NewEngine(opt).Process(doc)
		if len(doc) != len(in) {
			t.Fatalf("line count changed: %d -> %d", len(in), len(doc))
		}
		if rep.Unclosed < 0 || rep.ExcessDecrease < 0 || rep.MaxLevel < 0 {
			t.Fatalf("negative report field: %+v", rep)
		}
		for i := range doc {
			if got, want := string(trimIndent(doc[i])), string(trimIndent(in[i])); got != want {
				t.Fatalf("line %d content changed: %q -> %q", i, want, got)
			}
		}
		again := doc.Clone()
		NewEngine(opt).Process(again)
		if !reflect.DeepEqual(again.Strings(), doc.Strings()) {
			t.Fatalf("not idempotent on %q", content)
		}
	})
}
