package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"reindent/internal/format"
	"reindent/internal/source"
)

// ManifestName is the file looked up by Find.
const ManifestName = "reindent.toml"

// ErrInvalidConfig wraps every validation failure of a config file.
var ErrInvalidConfig = errors.New("invalid config")

// Config mirrors the layout of reindent.toml.
type Config struct {
	Indent IndentConfig `toml:"indent"`
	Split  SplitConfig  `toml:"split"`
	Files  FilesConfig  `toml:"files"`
	Source SourceConfig `toml:"source"`
}

// IndentConfig holds the [indent] table.
type IndentConfig struct {
	Increase              string `toml:"increase"`
	Decrease              string `toml:"decrease"`
	Width                 int    `toml:"width"`
	UseTabs               bool   `toml:"use_tabs"`
	ReduceLeadingDecrease bool   `toml:"reduce_leading_decrease"`
	Progressive           bool   `toml:"progressive"`
}

// SplitConfig holds the [split] table.
type SplitConfig struct {
	Enabled    bool   `toml:"enabled"`
	Delimiter  string `toml:"delimiter"`
	Exhaustive bool   `toml:"exhaustive"`
}

// FilesConfig holds the [files] table.
type FilesConfig struct {
	Extensions []string `toml:"extensions"`
}

// SourceConfig holds the [source] table.
type SourceConfig struct {
	NormalizeLineEndings bool `toml:"normalize_line_endings"`
	NormalizeUnicode     bool `toml:"normalize_unicode"`
}

// Manifest is a config together with where it came from.
type Manifest struct {
	Path   string // empty when no file was found
	Root   string
	Config Config
}

// DefaultConfig returns the built-in options: braces and parentheses, four
// spaces, closers dedent their own line, split after ';'.
func DefaultConfig() Config {
	return Config{
		Indent: IndentConfig{
			Increase:              "{(",
			Decrease:              "})",
			Width:                 4,
			ReduceLeadingDecrease: true,
		},
		Split: SplitConfig{
			Enabled:   true,
			Delimiter: ";",
		},
		Files: FilesConfig{
			Extensions: []string{".c", ".h", ".cc", ".cpp", ".hpp", ".java", ".js", ".ts", ".cs"},
		},
	}
}

// Find walks up from startDir to locate reindent.toml.
func Find(startDir string) (path string, ok bool, err error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	if info, statErr := os.Stat(dir); statErr == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for {
		candidate := filepath.Join(dir, ManifestName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

// Discover finds and loads the manifest governing startDir. Without a
// manifest it returns DefaultConfig rooted at startDir.
func Discover(startDir string) (*Manifest, error) {
	path, ok, err := Find(startDir)
	if err != nil {
		return nil, err
	}
	if !ok {
		root, absErr := filepath.Abs(startDir)
		if absErr != nil {
			root = startDir
		}
		if info, statErr := os.Stat(root); statErr == nil && !info.IsDir() {
			root = filepath.Dir(root)
		}
		return &Manifest{Root: root, Config: DefaultConfig()}, nil
	}
	return LoadManifest(path)
}

// LoadManifest decodes the file at path.
func LoadManifest(path string) (*Manifest, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	return &Manifest{Path: path, Root: filepath.Dir(path), Config: cfg}, nil
}

// LoadConfig decodes path on top of DefaultConfig, so absent keys keep their
// defaults, and validates the result.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%s: %w: unknown keys %s", path, ErrInvalidConfig, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate reports values that cannot be turned into formatter options.
func (c Config) Validate() error {
	if c.Indent.Width < 0 {
		return fmt.Errorf("%w: [indent].width must not be negative", ErrInvalidConfig)
	}
	if c.Split.Enabled && len(c.Split.Delimiter) != 1 {
		return fmt.Errorf("%w: [split].delimiter must be a single byte, got %q", ErrInvalidConfig, c.Split.Delimiter)
	}
	for _, ext := range c.Files.Extensions {
		if !strings.HasPrefix(ext, ".") {
			return fmt.Errorf("%w: [files].extensions entry %q must start with '.'", ErrInvalidConfig, ext)
		}
	}
	return nil
}

// FormatOptions converts the config into formatter options.
func (c Config) FormatOptions() format.Options {
	ind := format.IndentOptions{
		Increase:              format.NewCharSet(c.Indent.Increase),
		Decrease:              format.NewCharSet(c.Indent.Decrease),
		UnitWidth:             c.Indent.Width,
		Filler:                ' ',
		ReduceLeadingDecrease: c.Indent.ReduceLeadingDecrease,
		Progressive:           c.Indent.Progressive,
	}
	if c.Indent.UseTabs {
		ind.Filler = '\t'
		ind.UnitWidth = 1
	}
	split := format.SplitOptions{
		Enabled:    c.Split.Enabled && c.Split.Delimiter != "",
		Exhaustive: c.Split.Exhaustive,
	}
	if c.Split.Delimiter != "" {
		split.Delimiter = c.Split.Delimiter[0]
	}
	return format.Options{Split: split, Indent: ind}
}

// LoadOptions converts the [source] table.
func (c Config) LoadOptions() source.LoadOptions {
	return source.LoadOptions{
		NormalizeLineEndings: c.Source.NormalizeLineEndings,
		NormalizeUnicode:     c.Source.NormalizeUnicode,
	}
}

// Encode writes the config as TOML.
func (c Config) Encode(path string) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return f.Close()
}
