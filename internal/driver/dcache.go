package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"reindent/internal/format"
	"reindent/internal/source"
)

// CacheSchemaVersion is bumped whenever CachePayload changes shape; older
// entries are then ignored.
const CacheSchemaVersion uint16 = 1

// Digest is a SHA-256 sum used as a cache key.
type Digest [32]byte

// DiskCache remembers, per (options, content) pair, whether formatting the
// content changes it, so repeated runs can skip files that are already done.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachePayload is the record stored for one cache key.
type CachePayload struct {
	Schema uint16

	Path    string
	Changed bool

	// Report of the run that produced the entry.
	Lines          int
	MaxLevel       int
	Unclosed       int
	OpenBatches    int
	ExcessDecrease int
}

// OpenDiskCache opens the cache under $XDG_CACHE_HOME/<app> (or ~/.cache/<app>).
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenDiskCacheAt(filepath.Join(base, app))
}

// OpenDiskCacheAt opens a cache rooted at dir, creating it if needed.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	return filepath.Join(c.dir, "results", hexKey[:2], hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *CachePayload) (err error) {
	if c == nil || payload == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(f.Name())
		}
	}()

	payload.Schema = CacheSchemaVersion
	if err = msgpack.NewEncoder(f).Encode(payload); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a payload. A missing entry, or one written with another schema
// version, reports ok == false without an error.
func (c *DiskCache) Get(key Digest) (payload *CachePayload, ok bool, err error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var out CachePayload
	if err := msgpack.NewDecoder(f).Decode(&out); err != nil {
		return nil, false, err
	}
	if out.Schema != CacheSchemaVersion {
		return nil, false, nil
	}
	return &out, true, nil
}

// DropAll removes every cached entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// optionsKey is the msgpack form of format.Options and source.LoadOptions.
type optionsKey struct {
	Increase              string
	Decrease              string
	UnitWidth             int
	Filler                byte
	ReduceLeadingDecrease bool
	Progressive           bool
	SplitEnabled          bool
	Delimiter             byte
	Exhaustive            bool
	NormalizeLineEndings  bool
	NormalizeUnicode      bool
}

// OptionsFingerprint hashes every option that influences formatter output.
// Cache entries are keyed by the bytes as read, so the load normalisations
// are part of it.
func OptionsFingerprint(opt format.Options, load source.LoadOptions) (Digest, error) {
	key := optionsKey{
		Increase:              opt.Indent.Increase.String(),
		Decrease:              opt.Indent.Decrease.String(),
		UnitWidth:             opt.Indent.UnitWidth,
		Filler:                opt.Indent.Filler,
		ReduceLeadingDecrease: opt.Indent.ReduceLeadingDecrease,
		Progressive:           opt.Indent.Progressive,
		SplitEnabled:          opt.Split.Enabled,
		Delimiter:             opt.Split.Delimiter,
		Exhaustive:            opt.Split.Exhaustive,
		NormalizeLineEndings:  load.NormalizeLineEndings,
		NormalizeUnicode:      load.NormalizeUnicode,
	}
	data, err := msgpack.Marshal(&key)
	if err != nil {
		return Digest{}, err
	}
	return sha256.Sum256(data), nil
}

func cacheKey(fingerprint Digest, content [32]byte) Digest {
	h := sha256.New()
	h.Write(fingerprint[:])
	h.Write(content[:])
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func payloadFromReport(path string, changed bool, rep format.Report) *CachePayload {
	return &CachePayload{
		Path:           path,
		Changed:        changed,
		Lines:          rep.Lines,
		MaxLevel:       rep.MaxLevel,
		Unclosed:       rep.Unclosed,
		OpenBatches:    rep.OpenBatches,
		ExcessDecrease: rep.ExcessDecrease,
	}
}

func (p *CachePayload) report() format.Report {
	return format.Report{
		Lines:          p.Lines,
		MaxLevel:       p.MaxLevel,
		Unclosed:       p.Unclosed,
		OpenBatches:    p.OpenBatches,
		ExcessDecrease: p.ExcessDecrease,
	}
}
