package format

// IndentOptions configures the indentation engine. Every field is used as
// given; the engine has no defaults of its own.
//
// Degenerate values are valid: UnitWidth <= 0 or a zero Filler produce no
// filler at all, and empty sets never change the indentation.
type IndentOptions struct {
	Increase CharSet // each occurrence opens one level of debt
	Decrease CharSet // each occurrence closes one level of debt
	// UnitWidth is the number of Filler bytes per level.
	UnitWidth int
	Filler    byte
	// ReduceLeadingDecrease dedents a line that starts with decrease bytes
	// before its own filler is computed, so a closing bracket lines up with
	// the line that opened the block.
	ReduceLeadingDecrease bool
	// Progressive counts levels as the number of open batches instead of
	// their summed size.
	Progressive bool
}

// SplitOptions configures the line splitter.
type SplitOptions struct {
	Enabled   bool
	Delimiter byte
	// Exhaustive keeps splitting the produced suffix until no qualifying
	// delimiter remains. Off means one split per input line.
	Exhaustive bool
}

// Options groups both passes.
type Options struct {
	Split  SplitOptions
	Indent IndentOptions
}
