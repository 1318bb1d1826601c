package profiler

import "testing"

// TestProfilerCrossFrameScenarioD reproduces spec.md §8 scenario D: a
// begin/end pair with a 1.2ms GPU timestamp delta recorded during
// frame N surfaces as exactly one profile_gpu callback once frame
// N+2's endFrame reduces it.
func TestProfilerCrossFrameScenarioD(t *testing.T) {
	p := New(1) // timestamp_period = 1 ns/tick, so delta in ticks == ns

	gen := p.CurrentGeneration()
	beginIdx := p.Begin("main", "Total", 0)
	endIdx := p.End("main", "Total", beginIdx, 0, 0)

	const beginTS, endTS = uint64(1_000_000_000), uint64(1_001_200_000) // 1.2ms delta
	p.SetTimestamp(gen, beginIdx, beginTS)
	p.SetTimestamp(gen, endIdx, endTS)

	var calls []struct {
		category, name string
		total          uint64
	}
	record := func(category, name string, total uint64) {
		calls = append(calls, struct {
			category, name string
			total          uint64
		}{category, name, total})
	}

	if g := p.AdvanceFrame(record); g != -1 {
		t.Fatalf("frame N end: reduced generation %d early", g)
	}
	if g := p.AdvanceFrame(record); g != -1 {
		t.Fatalf("frame N+1 end: reduced generation %d early", g)
	}
	g := p.AdvanceFrame(record)
	if g < 0 {
		t.Fatal("frame N+2 end: expected a reduction to occur")
	}

	if len(calls) != 1 {
		t.Fatalf("profile_gpu calls = %d, want 1", len(calls))
	}
	if calls[0].category != "main" || calls[0].name != "Total" {
		t.Fatalf("call = (%q, %q), want (main, Total)", calls[0].category, calls[0].name)
	}
	if calls[0].total != 1_200_000 {
		t.Fatalf("total = %d, want 1200000", calls[0].total)
	}
}

// TestProfilerDiscardsWrappedTimestamp verifies an end timestamp
// earlier than its begin is marked invalid and discarded rather than
// reported (spec.md §4.4's driver-wrap-around rule).
func TestProfilerDiscardsWrappedTimestamp(t *testing.T) {
	p := New(1)
	gen := p.CurrentGeneration()
	beginIdx := p.Begin("cat", "op", 0)
	endIdx := p.End("cat", "op", beginIdx, 0, 0)
	p.SetTimestamp(gen, beginIdx, 1000)
	p.SetTimestamp(gen, endIdx, 500) // wrapped: end < begin

	var called bool
	cb := func(category, name string, total uint64) { called = true }
	for i := 0; i < DelayFrames+1; i++ {
		p.AdvanceFrame(cb)
	}
	if called {
		t.Fatal("expected wrapped range to be discarded, not reported")
	}
}

// TestProfilerEndDroppedOnSwapCounterMismatch verifies a begin/end
// pair whose swap counters differ (submission straddling a frame
// boundary) never emits a callback.
func TestProfilerEndDroppedOnSwapCounterMismatch(t *testing.T) {
	p := New(1)
	beginIdx := p.Begin("cat", "op", 7)
	p.End("cat", "op", beginIdx, 7, 8) // swap counter changed: dropped

	var called bool
	cb := func(category, name string, total uint64) { called = true }
	for i := 0; i < DelayFrames+1; i++ {
		p.AdvanceFrame(cb)
	}
	if called {
		t.Fatal("expected straddling end record to be dropped")
	}
}

// TestProfilerQuerySlotRollsOverPastCapacity verifies a generation
// that records more than QueryPoolCapacity queries allocates a second
// backend query-pool chunk rather than growing the first without
// bound.
func TestProfilerQuerySlotRollsOverPastCapacity(t *testing.T) {
	p := New(1)
	gen := p.CurrentGeneration()

	var lastIdx int
	for i := 0; i < QueryPoolCapacity+1; i++ {
		lastIdx = p.Begin("cat", "op", 0)
	}

	poolIndex, slot, ok := p.QuerySlot(gen, 0)
	if !ok {
		t.Fatal("QuerySlot(gen, 0) not found")
	}
	if poolIndex != 0 || slot != 0 {
		t.Fatalf("first record = (pool %d, slot %d), want (0, 0)", poolIndex, slot)
	}

	poolIndex, slot, ok = p.QuerySlot(gen, lastIdx)
	if !ok {
		t.Fatalf("QuerySlot(gen, %d) not found", lastIdx)
	}
	if poolIndex != 1 || slot != 0 {
		t.Fatalf("record %d = (pool %d, slot %d), want (1, 0)", lastIdx, poolIndex, slot)
	}
}

func TestProfilerDisabledWithoutTimestampPeriod(t *testing.T) {
	p := New(0)
	if p.Enabled() {
		t.Fatal("expected profiler to be disabled when timestampPeriod == 0")
	}
	if idx := p.Begin("cat", "op", 0); idx != -1 {
		t.Fatalf("Begin on disabled profiler = %d, want -1", idx)
	}
}
