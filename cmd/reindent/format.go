package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"reindent/internal/driver"
	"reindent/internal/observ"
	"reindent/internal/pipeline"
	"reindent/internal/project"
	"reindent/internal/source"
)

const stdinName = "<stdin>"

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] [path...]",
	Short: "Split and re-indent files",
	Long: `Format files in place. Directories are walked for the extensions listed in
reindent.toml; files named explicitly are always formatted. With no path, or
with "-", input is read from stdin and the result written to stdout.`,
	Args: cobra.ArbitraryArgs,
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "check if files are properly formatted")
	fmtCmd.Flags().String("format", "text", "output format (text|json)")
	fmtCmd.Flags().Bool("stdout", false, "print formatted text to stdout instead of rewriting files")
	fmtCmd.Flags().Int("jobs", 0, "max parallel files (0=auto)")
	fmtCmd.Flags().Bool("no-cache", false, "do not read or write the result cache")
	fmtCmd.Flags().String("ui", "auto", "progress UI (auto|on|off)")

	fmtCmd.Flags().String("config", "", "path to reindent.toml (default: search upwards)")
	fmtCmd.Flags().Int("width", 0, "filler characters per level")
	fmtCmd.Flags().Bool("tabs", false, "indent with one tab per level")
	fmtCmd.Flags().Bool("progressive", false, "one level per open line instead of per bracket")
	fmtCmd.Flags().Bool("no-split", false, "do not split lines after the delimiter")
	fmtCmd.Flags().String("delimiter", "", "split lines after this byte")
}

type fmtFlags struct {
	check   bool
	stdout  bool
	format  string
	jobs    int
	noCache bool
	ui      uiMode
	quiet   bool
	timings bool
}

func readFmtFlags(cmd *cobra.Command) (fmtFlags, error) {
	var (
		f   fmtFlags
		err error
	)
	if f.check, err = cmd.Flags().GetBool("check"); err != nil {
		return f, err
	}
	if f.stdout, err = cmd.Flags().GetBool("stdout"); err != nil {
		return f, err
	}
	if f.format, err = cmd.Flags().GetString("format"); err != nil {
		return f, err
	}
	if f.jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
		return f, err
	}
	if f.noCache, err = cmd.Flags().GetBool("no-cache"); err != nil {
		return f, err
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return f, err
	}
	if f.ui, err = readUIMode(uiValue); err != nil {
		return f, err
	}
	if f.quiet, err = cmd.Root().PersistentFlags().GetBool("quiet"); err != nil {
		return f, err
	}
	if f.timings, err = cmd.Root().PersistentFlags().GetBool("timings"); err != nil {
		return f, err
	}

	switch f.format {
	case "text", "json":
	default:
		return f, fmt.Errorf("fmt: unsupported output format %q", f.format)
	}
	if f.stdout && f.check {
		return f, fmt.Errorf("fmt: --stdout cannot be used with --check")
	}
	if f.stdout && f.format != "text" {
		return f, fmt.Errorf("fmt: --stdout is only supported with text output")
	}
	if f.jobs < 0 {
		return f, fmt.Errorf("fmt: --jobs must not be negative")
	}
	return f, nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	flags, err := readFmtFlags(cmd)
	if err != nil {
		return err
	}
	if err := applyColorFlag(cmd); err != nil {
		return err
	}

	fromStdin := len(args) == 0 || (len(args) == 1 && args[0] == "-")
	for _, arg := range args {
		if arg == "-" && !fromStdin {
			return fmt.Errorf("fmt: \"-\" cannot be combined with other paths")
		}
	}

	startDir := "."
	if !fromStdin {
		startDir = args[0]
	}
	manifest, err := resolveManifest(cmd, startDir)
	if err != nil {
		return err
	}
	if err := applyFormatOverrides(cmd, &manifest.Config); err != nil {
		return err
	}

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	stopProfiling, err := setupProfiling(cmd)
	if err != nil {
		return err
	}
	defer stopProfiling()

	var timer *observ.Timer
	if flags.timings {
		timer = observ.NewTimer()
	}

	opts := driver.FormatOptions{
		Check:      flags.check,
		Stdout:     flags.stdout,
		Format:     manifest.Config.FormatOptions(),
		Load:       manifest.Config.LoadOptions(),
		Extensions: manifest.Config.Files.Extensions,
		Jobs:       flags.jobs,
		Timer:      timer,
	}
	if !flags.noCache {
		cache, cacheErr := driver.OpenDiskCache("reindent")
		if cacheErr != nil {
			if !flags.quiet {
				printWarning(cmd.ErrOrStderr(), "cache disabled: %v", cacheErr)
			}
		} else {
			opts.Cache = cache
		}
	}

	defer func() {
		if timer != nil {
			fmt.Fprint(cmd.ErrOrStderr(), timer.Summary())
		}
	}()

	if fromStdin {
		return runFmtStdin(cmd, flags, opts)
	}

	var results []driver.FormatResult
	if !flags.stdout && flags.format == "text" && !flags.quiet && shouldUseTUI(flags.ui) {
		files, collectErr := driver.CollectSourceFiles(cmd.Context(), args, opts.Extensions)
		if collectErr != nil {
			return collectErr
		}
		if len(files) == 0 {
			return driver.ErrNoSourceFiles
		}
		results, err = runFormatWithUI(cmd.Context(), "reindent fmt", files, args, opts)
	} else {
		results, err = driver.FormatPaths(cmd.Context(), args, opts)
	}
	if err != nil {
		return err
	}
	timer.Note(string(pipeline.StageLoad), fmt.Sprintf("%d files", len(results)))

	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	var summary fmtSummary
	switch {
	case flags.stdout:
		summary = renderFmtStdout(out, errOut, results)
	case flags.format == "json":
		if summary, err = renderFmtJSON(out, results, flags.check); err != nil {
			return err
		}
	default:
		summary = renderFmtText(out, errOut, results, manifest.Root, flags.check, flags.quiet)
	}
	if !flags.quiet && flags.format == "text" {
		printUnbalanced(errOut, results, manifest.Root)
	}

	if summary.errors > 0 {
		return fmt.Errorf("fmt: failed to format %d file(s)", summary.errors)
	}
	if flags.check && summary.changed > 0 {
		return driver.ErrChangesRequired
	}
	return nil
}

func runFmtStdin(cmd *cobra.Command, flags fmtFlags, opts driver.FormatOptions) error {
	res, err := driver.FormatReader(cmd.Context(), stdinName, cmd.InOrStdin(), opts)
	if err != nil {
		return err
	}
	results := []driver.FormatResult{res}

	if flags.format == "json" {
		if _, err := renderFmtJSON(cmd.OutOrStdout(), results, flags.check); err != nil {
			return err
		}
	} else if !flags.check {
		if _, err := cmd.OutOrStdout().Write(res.Formatted); err != nil {
			return err
		}
	}
	if !flags.quiet {
		printUnbalanced(cmd.ErrOrStderr(), results, "")
	}
	if flags.check && res.Changed {
		return driver.ErrChangesRequired
	}
	return nil
}

// resolveManifest loads --config when given, otherwise the reindent.toml
// governing startDir, otherwise the defaults.
func resolveManifest(cmd *cobra.Command, startDir string) (*project.Manifest, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	if path != "" {
		return project.LoadManifest(path)
	}
	return project.Discover(startDir)
}

func applyFormatOverrides(cmd *cobra.Command, cfg *project.Config) error {
	flags := cmd.Flags()
	if flags.Changed("width") {
		width, err := flags.GetInt("width")
		if err != nil {
			return err
		}
		cfg.Indent.Width = width
	}
	if flags.Changed("tabs") {
		tabs, err := flags.GetBool("tabs")
		if err != nil {
			return err
		}
		cfg.Indent.UseTabs = tabs
	}
	if flags.Changed("progressive") {
		progressive, err := flags.GetBool("progressive")
		if err != nil {
			return err
		}
		cfg.Indent.Progressive = progressive
	}
	if flags.Changed("delimiter") {
		delim, err := flags.GetString("delimiter")
		if err != nil {
			return err
		}
		cfg.Split.Delimiter = delim
		cfg.Split.Enabled = true
	}
	if flags.Changed("no-split") {
		noSplit, err := flags.GetBool("no-split")
		if err != nil {
			return err
		}
		if noSplit {
			cfg.Split.Enabled = false
		}
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("fmt: %w", err)
	}
	return nil
}

func applyColorFlag(cmd *cobra.Command) error {
	value, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	mode, err := readColorMode(value)
	if err != nil {
		return err
	}
	color.NoColor = !useColor(mode, os.Stdout)
	return nil
}

type fmtSummary struct {
	changed int
	errors  int
}

var (
	changedColor = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed, color.Bold)
	warnColor    = color.New(color.FgYellow, color.Bold)
)

func renderFmtStdout(out, errOut io.Writer, results []driver.FormatResult) fmtSummary {
	var s fmtSummary
	for _, res := range results {
		if res.Err != nil {
			s.errors++
			printFileError(errOut, res.Path, res.Err)
			continue
		}
		if res.Changed {
			s.changed++
		}
		_, _ = out.Write(res.Formatted)
	}
	return s
}

// renderFmtText lists changed files relative to root.
func renderFmtText(out, errOut io.Writer, results []driver.FormatResult, root string, check, quiet bool) fmtSummary {
	var s fmtSummary
	for _, res := range results {
		path := displayPath(root, res.Path)
		if res.Err != nil {
			s.errors++
			printFileError(errOut, path, res.Err)
			continue
		}
		if !res.Changed {
			continue
		}
		s.changed++
		if quiet {
			continue
		}
		var printErr error
		if check {
			_, printErr = fmt.Fprintln(out, path)
		} else {
			_, printErr = fmt.Fprintf(out, "%s %s\n", changedColor.Sprint("reformatted"), path)
		}
		if printErr != nil {
			panic(printErr)
		}
	}
	return s
}

type jsonResult struct {
	Path     string `json:"path"`
	Changed  bool   `json:"changed"`
	Cached   bool   `json:"cached,omitempty"`
	Error    string `json:"error,omitempty"`
	CheckRun bool   `json:"check"`

	Lines          int  `json:"lines"`
	MaxLevel       int  `json:"max_level"`
	Balanced       bool `json:"balanced"`
	Unclosed       int  `json:"unclosed,omitempty"`
	OpenBatches    int  `json:"open_batches,omitempty"`
	ExcessDecrease int  `json:"excess_decrease,omitempty"`
}

func renderFmtJSON(out io.Writer, results []driver.FormatResult, check bool) (fmtSummary, error) {
	var s fmtSummary
	payload := make([]jsonResult, 0, len(results))
	for _, res := range results {
		jr := jsonResult{
			Path:           res.Path,
			Changed:        res.Changed,
			Cached:         res.Cached,
			CheckRun:       check,
			Lines:          res.Report.Lines,
			MaxLevel:       res.Report.MaxLevel,
			Balanced:       res.Report.Balanced(),
			Unclosed:       res.Report.Unclosed,
			OpenBatches:    res.Report.OpenBatches,
			ExcessDecrease: res.Report.ExcessDecrease,
		}
		if res.Err != nil {
			s.errors++
			jr.Error = res.Err.Error()
			jr.Balanced = false
		} else if res.Changed {
			s.changed++
		}
		payload = append(payload, jr)
	}

	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return s, encoder.Encode(payload)
}

func printFileError(w io.Writer, path string, err error) {
	fmt.Fprintf(w, "%s %s: %v\n", errorColor.Sprint("error:"), path, err)
}

// displayPath shortens path to be relative to root when it lies inside it.
// An empty root keeps the path as given.
func displayPath(root, path string) string {
	if root == "" {
		return path
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return source.RelativePath(abs, root)
}

func printWarning(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, "%s %s\n", warnColor.Sprint("warning:"), fmt.Sprintf(format, args...))
}

// printUnbalanced warns about files whose brackets do not pair up. The file
// is still formatted.
func printUnbalanced(w io.Writer, results []driver.FormatResult, root string) {
	for _, res := range results {
		if res.Err != nil || res.Report.Balanced() {
			continue
		}
		path := displayPath(root, res.Path)
		switch {
		case res.Report.Unclosed > 0 && res.Report.ExcessDecrease > 0:
			printWarning(w, "%s: %d unclosed level(s), %d unmatched closer(s)", path, res.Report.Unclosed, res.Report.ExcessDecrease)
		case res.Report.Unclosed > 0:
			printWarning(w, "%s: %d unclosed level(s) at end of input", path, res.Report.Unclosed)
		default:
			printWarning(w, "%s: %d unmatched closer(s)", path, res.Report.ExcessDecrease)
		}
	}
}
