package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerAggregatesByName(t *testing.T) {
	tm := NewTimer()
	tm.Add("load", 2*time.Millisecond)
	tm.Add("indent", time.Millisecond)
	tm.Add("load", 3*time.Millisecond)
	tm.Note("load", "2 files")

	rep := tm.Report()
	if len(rep.Phases) != 2 {
		t.Fatalf("phases = %+v", rep.Phases)
	}
	if p := rep.Phases[0]; p.Name != "load" || p.Count != 2 || p.DurationMS != 5 || p.Note != "2 files" {
		t.Errorf("load phase = %+v", p)
	}
	if rep.TotalMS != 6 {
		t.Errorf("total = %v, want 6", rep.TotalMS)
	}
	if s := tm.Summary(); !strings.Contains(s, "load") || !strings.Contains(s, "// 2 files") {
		t.Errorf("summary = %q", s)
	}
}

func TestTimerConcurrentAdd(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Time("indent", func() {})
		}()
	}
	wg.Wait()
	if got := tm.Report().Phases[0].Count; got != 16 {
		t.Errorf("count = %d, want 16", got)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Add("x", time.Second)
	tm.Note("x", "y")
	if rep := tm.Report(); len(rep.Phases) != 0 {
		t.Errorf("nil timer report = %+v", rep)
	}
}
