package driver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"reindent/internal/format"
	"reindent/internal/observ"
	"reindent/internal/pipeline"
	"reindent/internal/source"
	"reindent/internal/trace"
)

var (
	// ErrNoSourceFiles is returned when the given paths hold no files to format.
	ErrNoSourceFiles = errors.New("format: no source files found")
	// ErrChangesRequired is returned by callers in check mode when some file
	// is not formatted.
	ErrChangesRequired = errors.New("format: formatting changes required")
)

// FormatOptions configures a formatting run.
type FormatOptions struct {
	Check  bool // report changes without writing
	Stdout bool // return formatted content instead of writing

	Format     format.Options
	Load       source.LoadOptions
	Extensions []string // used when walking directories
	Jobs       int      // <= 0 means GOMAXPROCS

	Cache    *DiskCache // nil disables caching
	Progress pipeline.ProgressSink
	Timer    *observ.Timer
}

// FormatResult captures the result of formatting a single file.
type FormatResult struct {
	Path      string
	Changed   bool
	Cached    bool
	Err       error
	Formatted []byte
	Lines     uint32
	Report    format.Report
}

// FormatPaths formats the given files and directories (directories are
// walked for opts.Extensions). When opts.Check is true files are not
// modified and Changed tells whether formatting would update them. When
// opts.Stdout is true the formatted content is returned in the results
// without touching the files.
//
// Per-file failures are reported in FormatResult.Err; the returned error is
// reserved for failures that stop the whole run.
func FormatPaths(ctx context.Context, paths []string, opts FormatOptions) ([]FormatResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeDriver, "fmt", trace.ParentID(ctx))
	ctx = trace.WithSpan(ctx, span)

	files, err := CollectSourceFiles(ctx, paths, opts.Extensions)
	if err != nil {
		trace.Error(tr, "collect", err, span.ID())
		span.End("collect failed")
		return nil, err
	}
	if len(files) == 0 {
		span.End("no files")
		return nil, ErrNoSourceFiles
	}
	span.WithExtra("files", strconv.Itoa(len(files)))

	r, err := newRunner(opts)
	if err != nil {
		span.End("setup failed")
		return nil, err
	}

	for _, path := range files {
		pipeline.Emit(opts.Progress, pipeline.Event{File: path, Status: pipeline.StatusQueued})
	}

	results := make([]FormatResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.jobs(len(files)))
	for i, path := range files {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			// each worker owns results[i]
			results[i] = r.formatFile(gctx, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		span.End("cancelled")
		return results, err
	}

	changed := 0
	for _, res := range results {
		if res.Changed {
			changed++
		}
	}
	span.WithExtra("changed", strconv.Itoa(changed))
	span.End("")
	return results, nil
}

// FormatReader formats everything read from r (typically stdin). The result
// always carries the formatted content. A read failure is returned as an
// error and nothing is formatted.
func FormatReader(ctx context.Context, name string, r io.Reader, opts FormatOptions) (FormatResult, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return FormatResult{Path: name}, fmt.Errorf("read %s: %w", name, err)
	}
	opts.Stdout = true
	run, err := newRunner(opts)
	if err != nil {
		return FormatResult{Path: name}, err
	}
	sf := source.NewVirtual(name, content, opts.Load)
	res := run.formatLoaded(ctx, sf, trace.ParentID(ctx))
	res.Formatted = run.lastOutput(sf, res)
	return res, res.Err
}

// runner holds what is shared by all files of one run.
type runner struct {
	opts        FormatOptions
	engine      *format.Engine
	fingerprint Digest
}

func newRunner(opts FormatOptions) (*runner, error) {
	fp, err := OptionsFingerprint(opts.Format, opts.Load)
	if err != nil {
		return nil, fmt.Errorf("format: fingerprint options: %w", err)
	}
	return &runner{
		opts:        opts,
		engine:      format.NewEngine(opts.Format.Indent),
		fingerprint: fp,
	}, nil
}

func (r *runner) jobs(files int) int {
	jobs := r.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	return max(1, min(jobs, files))
}

func (r *runner) formatFile(ctx context.Context, path string) FormatResult {
	tr := trace.FromContext(ctx)
	parent := trace.ParentID(ctx)

	r.progress(path, pipeline.StageLoad, pipeline.StatusWorking, nil, 0)
	start := time.Now()
	sf, err := source.Load(path, r.opts.Load)
	r.opts.Timer.Add(string(pipeline.StageLoad), time.Since(start))
	if err != nil {
		trace.Error(tr, "file:"+path, err, parent)
		r.progress(path, pipeline.StageLoad, pipeline.StatusError, err, time.Since(start))
		return FormatResult{Path: path, Err: err}
	}
	sf.Path = path

	res := r.formatLoaded(ctx, sf, parent)
	if res.Err != nil || r.opts.Check {
		return res
	}

	if r.opts.Stdout {
		res.Formatted = r.lastOutput(sf, res)
		return res
	}

	if res.Changed {
		r.progress(path, pipeline.StageWrite, pipeline.StatusWorking, nil, 0)
		wstart := time.Now()
		err := writeFile(path, res.Formatted)
		r.opts.Timer.Add(string(pipeline.StageWrite), time.Since(wstart))
		if err != nil {
			res.Err = err
			res.Changed = false
			trace.Error(tr, "file:"+path, err, parent)
			r.progress(path, pipeline.StageWrite, pipeline.StatusError, err, time.Since(start))
			return res
		}
		r.progress(path, pipeline.StageWrite, pipeline.StatusDone, nil, time.Since(start))
	}
	res.Formatted = nil
	return res
}

// formatLoaded runs the passes over a loaded file, consulting the cache.
// It fills Formatted only when the passes actually ran.
func (r *runner) formatLoaded(ctx context.Context, sf *source.File, parent uint64) FormatResult {
	tr := trace.FromContext(ctx)
	span := trace.Begin(tr, trace.ScopeFile, "file:"+sf.Path, parent)
	start := time.Now()

	res := FormatResult{Path: sf.Path, Lines: sf.LineCount()}
	key := cacheKey(r.fingerprint, sf.Hash)

	if payload, ok := r.cacheGet(tr, key, span.ID()); ok && (!payload.Changed || r.opts.Check) {
		res.Changed = payload.Changed
		res.Cached = true
		res.Report = payload.report()
		span.WithExtra("cached", "true")
		span.End("")
		r.progress(sf.Path, pipeline.StageIndent, pipeline.StatusCached, nil, time.Since(start))
		return res
	}

	doc := sf.Document()

	r.progress(sf.Path, pipeline.StageSplit, pipeline.StatusWorking, nil, 0)
	pass := trace.Begin(tr, trace.ScopePass, "split", span.ID())
	r.opts.Timer.Time(string(pipeline.StageSplit), func() {
		doc = format.SplitLines(doc, r.opts.Format.Split)
	})
	pass.WithExtra("lines", strconv.Itoa(len(doc))).End("")

	r.progress(sf.Path, pipeline.StageIndent, pipeline.StatusWorking, nil, 0)
	pass = trace.Begin(tr, trace.ScopePass, "indent", span.ID())
	r.opts.Timer.Time(string(pipeline.StageIndent), func() {
		res.Report = r.engine.Process(doc)
	})
	pass.WithExtra("max_level", strconv.Itoa(res.Report.MaxLevel)).End("")

	res.Formatted = doc.Bytes()
	res.Changed = sf.Changed(res.Formatted)

	r.cachePut(tr, key, payloadFromReport(sf.Path, res.Changed, res.Report), span.ID())
	if res.Changed && !r.opts.Check && !r.opts.Stdout {
		// the rewritten file is formatted by construction
		outFile := source.NewVirtual(sf.Path, res.Formatted, source.LoadOptions{})
		r.cachePut(tr, cacheKey(r.fingerprint, outFile.Hash), payloadFromReport(sf.Path, false, res.Report), span.ID())
	}

	if !res.Report.Balanced() {
		span.WithExtra("unclosed", strconv.Itoa(res.Report.Unclosed))
		span.WithExtra("excess", strconv.Itoa(res.Report.ExcessDecrease))
	}
	span.WithExtra("changed", strconv.FormatBool(res.Changed))
	span.End("")
	if !res.Changed || r.opts.Check || r.opts.Stdout {
		r.progress(sf.Path, pipeline.StageIndent, pipeline.StatusDone, nil, time.Since(start))
	}
	return res
}

// lastOutput returns the formatted bytes for a result, falling back to the
// original content for cache hits on already formatted files.
func (r *runner) lastOutput(sf *source.File, res FormatResult) []byte {
	if res.Formatted != nil {
		return res.Formatted
	}
	return sf.Content
}

func (r *runner) cacheGet(tr trace.Tracer, key Digest, parent uint64) (*CachePayload, bool) {
	if r.opts.Cache == nil {
		return nil, false
	}
	payload, ok, err := r.opts.Cache.Get(key)
	if err != nil {
		trace.Error(tr, "cache", err, parent)
		return nil, false
	}
	if ok {
		trace.Point(tr, trace.ScopePass, "cache", "hit", parent)
	}
	return payload, ok
}

func (r *runner) cachePut(tr trace.Tracer, key Digest, payload *CachePayload, parent uint64) {
	if r.opts.Cache == nil {
		return
	}
	if err := r.opts.Cache.Put(key, payload); err != nil {
		trace.Error(tr, "cache", err, parent)
	}
}

func (r *runner) progress(path string, stage pipeline.Stage, status pipeline.Status, err error, elapsed time.Duration) {
	pipeline.Emit(r.opts.Progress, pipeline.Event{
		File:    path,
		Stage:   stage,
		Status:  status,
		Err:     err,
		Elapsed: elapsed,
	})
}

func writeFile(path string, content []byte) error {
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode()
	}
	return os.WriteFile(path, content, mode.Perm())
}

// CollectSourceFiles expands paths into a sorted, de-duplicated file list.
// Files named explicitly are always included; directories are walked for
// files whose extension is in exts, skipping hidden directories.
func CollectSourceFiles(ctx context.Context, paths, exts []string) ([]string, error) {
	var files []string
	seen := make(map[string]struct{})
	addFile := func(path string) {
		path = filepath.Clean(path)
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			addFile(p)
			continue
		}
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if slices.Contains(exts, filepath.Ext(path)) {
				addFile(path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	slices.Sort(files)
	return files, nil
}
