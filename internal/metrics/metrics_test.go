package metrics

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeBackend is a simple in-memory Backend implementation for tests.
type fakeBackend struct {
	mu sync.Mutex

	callsCounters   []counterCall
	callsHistograms []histCall
	flushCount      int
}

type counterCall struct {
	name   string
	delta  float64
	labels Labels
}

type histCall struct {
	name   string
	value  float64
	labels Labels
}

func (f *fakeBackend) IncCounter(name string, delta float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsCounters = append(f.callsCounters, counterCall{name, delta, labels})
}

func (f *fakeBackend) ObserveHistogram(name string, value float64, labels Labels) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.callsHistograms = append(f.callsHistograms, histCall{name, value, labels})
}

func (f *fakeBackend) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.flushCount++
	return nil
}

// install swaps in fb for the duration of the test.
func install(t *testing.T, fb Backend) {
	t.Helper()
	orig := current()
	SetBackend(fb)
	t.Cleanup(func() { SetBackend(orig) })
}

func TestRecordStep_SuccessAndFailure(t *testing.T) {
	fb := &fakeBackend{}
	install(t, fb)

	RecordStep("jobA", "scan", nil, 2*time.Second)
	RecordStep("jobB", "compress", errors.New("boom"), 1500*time.Millisecond)

	if len(fb.callsCounters) != 2 {
		t.Fatalf("expected 2 counter calls, got %d", len(fb.callsCounters))
	}
	if len(fb.callsHistograms) != 2 {
		t.Fatalf("expected 2 histogram calls, got %d", len(fb.callsHistograms))
	}

	cc0 := fb.callsCounters[0]
	if cc0.name != StepTotal || cc0.delta != 1 {
		t.Fatalf("counter[0] = %#v; want name=%s, delta=1", cc0, StepTotal)
	}
	if cc0.labels["job"] != "jobA" || cc0.labels["step"] != "scan" || cc0.labels["status"] != "success" {
		t.Fatalf("counter[0].labels = %v; want job=jobA step=scan status=success", cc0.labels)
	}

	h0 := fb.callsHistograms[0]
	if h0.name != StepDuration {
		t.Fatalf("hist[0].name=%q; want %s", h0.name, StepDuration)
	}
	if h0.value < 2.0-0.001 || h0.value > 2.0+0.001 {
		t.Fatalf("hist[0].value=%v; want ~2.0", h0.value)
	}

	cc1 := fb.callsCounters[1]
	if cc1.labels["status"] != "failure" || cc1.labels["step"] != "compress" {
		t.Fatalf("counter[1].labels = %v; want step=compress status=failure", cc1.labels)
	}
	if h1 := fb.callsHistograms[1]; h1.value < 1.5-0.001 || h1.value > 1.5+0.001 {
		t.Fatalf("hist[1].value=%v; want ~1.5", h1.value)
	}
}

func TestRecordCount(t *testing.T) {
	fb := &fakeBackend{}
	install(t, fb)

	RecordCount("jobX", "words", 9)
	RecordCount("jobX", "lines", 0) // ignored
	RecordCount("jobX", "unique", -1)
	RecordCount("jobY", "duplicates", 2)

	if len(fb.callsCounters) != 2 {
		t.Fatalf("expected 2 counter calls, got %d", len(fb.callsCounters))
	}
	c0 := fb.callsCounters[0]
	if c0.name != ItemsTotal || c0.delta != 9 || c0.labels["kind"] != "words" || c0.labels["job"] != "jobX" {
		t.Fatalf("counter[0] = %#v", c0)
	}
	c1 := fb.callsCounters[1]
	if c1.delta != 2 || c1.labels["kind"] != "duplicates" || c1.labels["job"] != "jobY" {
		t.Fatalf("counter[1] = %#v", c1)
	}
}

func TestSetBackendAndFlush(t *testing.T) {
	fb := &fakeBackend{}
	install(t, fb)

	if current() != fb {
		t.Fatal("SetBackend did not replace global backend")
	}
	if err := Flush(); err != nil {
		t.Fatalf("Flush returned error: %v", err)
	}
	if fb.flushCount != 1 {
		t.Fatalf("expected flushCount=1, got %d", fb.flushCount)
	}

	SetBackend(nil)
	if current() != fb {
		t.Fatal("SetBackend(nil) should not change backend")
	}
}

func TestNopBackendIsSafe(t *testing.T) {
	install(t, nopBackend{})

	RecordStep("j", "read", nil, time.Millisecond)
	RecordCount("j", "bytes", 10)
	if err := Flush(); err != nil {
		t.Fatalf("nop Flush() = %v", err)
	}
}
