package driver

import (
	"os"
	"path/filepath"
	"testing"

	"reindent/internal/format"
	"reindent/internal/source"
)

func TestDiskCachePutGet(t *testing.T) {
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	key := cacheKey(Digest{1}, [32]byte{2})

	if _, ok, err := cache.Get(key); err != nil || ok {
		t.Fatalf("empty cache: ok=%v err=%v", ok, err)
	}

	rep := format.Report{Lines: 10, MaxLevel: 3, Unclosed: 2, OpenBatches: 1, ExcessDecrease: 4}
	if err := cache.Put(key, payloadFromReport("a.txt", true, rep)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	got, ok, err := cache.Get(key)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Path != "a.txt" || !got.Changed || got.Schema != CacheSchemaVersion {
		t.Errorf("unexpected payload %+v", got)
	}
	if got.report() != rep {
		t.Errorf("report = %+v, want %+v", got.report(), rep)
	}
}

func TestDiskCacheSchemaMismatch(t *testing.T) {
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	key := Digest{9}
	if err := cache.Put(key, &CachePayload{Path: "x"}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	// an empty msgpack map decodes with Schema 0
	if err := os.WriteFile(cache.pathFor(key), []byte{0x80}, 0o600); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if _, ok, err := cache.Get(key); err != nil || ok {
		t.Errorf("schema 0 entry must miss: ok=%v err=%v", ok, err)
	}
}

func TestDiskCacheCorruptEntry(t *testing.T) {
	cache, err := OpenDiskCacheAt(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	key := Digest{7}
	if err := cache.Put(key, &CachePayload{}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := os.WriteFile(cache.pathFor(key), []byte{0xc1}, 0o600); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if _, ok, err := cache.Get(key); err == nil || ok {
		t.Errorf("corrupt entry: ok=%v err=%v", ok, err)
	}
}

func TestDiskCacheDropAll(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "cache")
	cache, err := OpenDiskCacheAt(dir)
	if err != nil {
		t.Fatalf("OpenDiskCacheAt: %v", err)
	}
	key := Digest{3}
	if err := cache.Put(key, &CachePayload{Path: "a"}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, ok, _ := cache.Get(key); ok {
		t.Errorf("entry survived DropAll")
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Errorf("cache dir must be recreated: %v", err)
	}
}

func TestNilDiskCache(t *testing.T) {
	var cache *DiskCache
	if err := cache.Put(Digest{}, &CachePayload{}); err != nil {
		t.Errorf("Put on nil cache: %v", err)
	}
	if _, ok, err := cache.Get(Digest{}); ok || err != nil {
		t.Errorf("Get on nil cache: ok=%v err=%v", ok, err)
	}
	if err := cache.DropAll(); err != nil {
		t.Errorf("DropAll on nil cache: %v", err)
	}
	if cache.Dir() != "" {
		t.Errorf("Dir on nil cache = %q", cache.Dir())
	}
}

func TestOpenDiskCacheUsesXDG(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", base)
	cache, err := OpenDiskCache("reindent")
	if err != nil {
		t.Fatalf("OpenDiskCache: %v", err)
	}
	if want := filepath.Join(base, "reindent"); cache.Dir() != want {
		t.Errorf("Dir = %q, want %q", cache.Dir(), want)
	}
}

func TestOptionsFingerprint(t *testing.T) {
	opts := testOptions().Format
	a, err := OptionsFingerprint(opts, source.LoadOptions{})
	if err != nil {
		t.Fatalf("OptionsFingerprint: %v", err)
	}
	b, err := OptionsFingerprint(opts, source.LoadOptions{})
	if err != nil {
		t.Fatalf("OptionsFingerprint: %v", err)
	}
	if a != b {
		t.Errorf("fingerprint is not stable")
	}

	mutations := map[string]func(*format.Options){
		"increase":    func(o *format.Options) { o.Indent.Increase = format.NewCharSet("{(") },
		"width":       func(o *format.Options) { o.Indent.UnitWidth = 2 },
		"filler":      func(o *format.Options) { o.Indent.Filler = '\t' },
		"reduce":      func(o *format.Options) { o.Indent.ReduceLeadingDecrease = false },
		"progressive": func(o *format.Options) { o.Indent.Progressive = true },
		"split":       func(o *format.Options) { o.Split.Enabled = false },
		"delimiter":   func(o *format.Options) { o.Split.Delimiter = ',' },
		"exhaustive":  func(o *format.Options) { o.Split.Exhaustive = true },
	}
	for name, mutate := range mutations {
		changed := testOptions().Format
		mutate(&changed)
		got, err := OptionsFingerprint(changed, source.LoadOptions{})
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got == a {
			t.Errorf("%s: fingerprint did not change", name)
		}
	}

	for _, load := range []source.LoadOptions{{NormalizeLineEndings: true}, {NormalizeUnicode: true}} {
		got, err := OptionsFingerprint(opts, load)
		if err != nil {
			t.Fatalf("%+v: %v", load, err)
		}
		if got == a {
			t.Errorf("%+v: fingerprint did not change", load)
		}
	}
}
