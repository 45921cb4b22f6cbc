package format

import (
	"reflect"
	"testing"

	"reindent/internal/source"
)

func defaultOptions() Options {
	ind := baseIndentOptions()
	ind.ReduceLeadingDecrease = true
	return Options{
		Split:  SplitOptions{Enabled: true, Delimiter: ';'},
		Indent: ind,
	}
}

func TestFormatSplitsThenIndents(t *testing.T) {
	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "opener on last line",
			input: []string{"first_line();second_line();{"},
			want:  []string{"first_line();", "second_line();{"},
		},
		{
			name:  "block body",
			input: []string{"f() {a();b();", "}"},
			want:  []string{"f() {a();", "    b();", "}"},
		},
		{
			name:  "semicolon only line",
			input: []string{"first_line();"},
			want:  []string{"first_line();"},
		},
		{
			name:  "new line in the middle",
			input: []string{"first_line", "some_line();other_line()", "last_line"},
			want:  []string{"first_line", "some_line();", "other_line()", "last_line"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := Format(source.FromStrings(tt.input...), defaultOptions())
			if !reflect.DeepEqual(got.Strings(), tt.want) {
				t.Errorf("got  %q\nwant %q", got.Strings(), tt.want)
			}
		})
	}
}

func TestFormatBytes(t *testing.T) {
	in := "int main() {\nint a = 1;   return a;\n  }"
	want := "int main() {\n    int a = 1;\n    return a;\n}\n"

	got, rep := FormatBytes([]byte(in), defaultOptions())
	if string(got) != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if !rep.Balanced() || rep.Lines != 4 {
		t.Errorf("report = %+v", rep)
	}

	again, _ := FormatBytes(got, defaultOptions())
	if string(again) != want {
		t.Errorf("second run changed output: %q", again)
	}
}

func TestFormatBytesEmpty(t *testing.T) {
	got, rep := FormatBytes(nil, defaultOptions())
	if len(got) != 0 || rep.Lines != 0 {
		t.Errorf("FormatBytes(nil) = %q, %+v", got, rep)
	}
}
