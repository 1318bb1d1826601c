// Package profiler implements the cross-frame GPU timestamp profiler:
// a quad-buffered rotation of query pools that records begin/end
// timestamp pairs during frame recording, then reduces them into
// per-(category,name) totals two frames later, once the GPU has
// actually produced the timestamps.
package profiler

import (
	"github.com/akb825/DeepSea-sub003/core/container"
	"github.com/akb825/DeepSea-sub003/core/syncutil"
	"github.com/akb825/DeepSea-sub003/internal/bitm"
)

// DelayFrames is the number of frames a query pool's readback is
// deferred to avoid a CPU/GPU synchronization stall (spec.md §3,
// §4.4).
const DelayFrames = 2

// poolRotation is DELAY_FRAMES plus two extra for double buffering,
// per spec.md §3's "four QueryPools in rotation".
const poolRotation = DelayFrames + 2

// QueryPoolCapacity bounds the number of timestamp queries a single
// GfxQueryPool holds before a new one is allocated.
const QueryPoolCapacity = 1000

// Callback is invoked once per (category, name) pair with its
// accumulated total duration, in nanoseconds.
type Callback func(category, name string, totalTime uint64)

// record is one begin or end timestamp entry appended during frame
// recording.
type record struct {
	category string
	name     string
	// beginIndex is -1 for a begin record (the sentinel spec.md §4.4
	// describes); for an end record it is the index, within the same
	// QueryPools generation, of its matching begin record.
	beginIndex int
	// timestamp is set by the backend readback; for records not yet
	// read back it is 0.
	timestamp uint64
	// swapCount snapshots the command buffer's swap counter at record
	// time, so a begin/end pair that straddles a frame boundary can be
	// detected and the end dropped (spec.md §4.4).
	swapCount uint64
	// poolIndex and slot identify which QueryPoolCapacity-sized backend
	// query-pool chunk this record's GPU timestamp query was written
	// into, and which slot within that chunk, per allocSlot.
	poolIndex int
	slot      int
}

// queryNode accumulates total duration for one (category, name) pair
// across the records reduced for a single QueryPools generation.
type queryNode struct {
	totalTime uint64
	visited   bool
	invalid   bool
}

// generation holds every record appended while one QueryPools slot was
// "current", plus the bitmap of GPU query-pool slots currently in use.
// slots grows queryPoolWords words (1024 bits) at a time; slot indices
// map onto QueryPoolCapacity-sized chunks, mirroring a backend
// allocating a new GfxQueryPool once the current one is exhausted
// (spec.md §4.4).
type generation struct {
	records []record
	slots   bitm.Bitm[uint64]
}

// queryPoolWords is the number of uint64 words one QueryPoolCapacity
// chunk of query slots occupies.
const queryPoolWords = (QueryPoolCapacity + 63) / 64

// allocSlot marks the next query-pool slot in use, growing the bitmap
// by queryPoolWords words once every bit in it is set, and returns
// which QueryPoolCapacity-sized chunk (poolIndex) and which slot within
// it the caller was assigned. A generation that records more than QueryPoolCapacity
// queries rolls over into poolIndex 1, 2, ... exactly as a backend
// allocating successive GfxQueryPools would.
func (g *generation) allocSlot() (poolIndex, slot int) {
	if g.slots.Rem() == 0 {
		g.slots.Grow(queryPoolWords)
	}
	idx, _ := g.slots.Search()
	g.slots.Set(idx)
	return idx / QueryPoolCapacity, idx % QueryPoolCapacity
}

// Profiler is the renderer-owned GPU profiler state (spec.md §3's
// "profile_context"). It is active only when enabled and
// timestampPeriod > 0, matching spec.md §4.4.
type Profiler struct {
	mu syncutil.Spinlock

	enabled         bool
	timestampPeriod float64

	generations [poolRotation]*generation
	current     int
	frameIndex  uint64

	swapCounter uint64
}

// New creates a Profiler. It is active only if timestampPeriod > 0;
// callers that have no GPU timestamp support should still construct
// one (with timestampPeriod == 0) so renderer code can call its
// methods unconditionally.
func New(timestampPeriod float64) *Profiler {
	p := &Profiler{enabled: timestampPeriod > 0, timestampPeriod: timestampPeriod}
	for i := range p.generations {
		p.generations[i] = &generation{}
	}
	return p
}

// Enabled reports whether the profiler is recording.
func (p *Profiler) Enabled() bool {
	return p.enabled
}

// SwapCounter returns the current swap counter, used by callers (the
// render surface and command buffer code) to snapshot
// profileInfo.begin*SwapCount at begin time.
func (p *Profiler) SwapCounter() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.swapCounter
}

// BumpSwapCounter increments and returns the swap counter. Called
// after an actual buffer swap, so command buffers whose begin/end
// straddled the swap can be detected and dropped at reduction time.
func (p *Profiler) BumpSwapCounter() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.swapCounter++
	return p.swapCounter
}

// CurrentGeneration returns the rotation slot index currently
// accepting Begin/End records. The backend readback uses this (paired
// with the index Begin returned) to route SetTimestamp calls to the
// right generation once the GPU resolves the query pool.
func (p *Profiler) CurrentGeneration() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

func (p *Profiler) append(category, name string, beginIndex int, swapCount uint64) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	g := p.generations[p.current]
	poolIndex, slot := g.allocSlot()
	g.records = append(g.records, record{
		category: category, name: name, beginIndex: beginIndex, swapCount: swapCount,
		poolIndex: poolIndex, slot: slot,
	})
	return len(g.records) - 1
}

// Begin appends a begin-record for (category, name) to the current
// generation and returns its index, to be passed back to End.
func (p *Profiler) Begin(category, name string, swapCount uint64) int {
	if !p.enabled {
		return -1
	}
	return p.append(category, name, -1, swapCount)
}

// End appends an end-record matching beginIndex and returns its index
// (for SetTimestamp), or -1 if the end was dropped. If swapCount
// differs from the one recorded at Begin, the end is dropped per
// spec.md §4.4's straddling-frame-boundary rule.
func (p *Profiler) End(category, name string, beginIndex int, beginSwapCount, swapCount uint64) int {
	if !p.enabled || beginIndex < 0 {
		return -1
	}
	if beginSwapCount != swapCount {
		return -1
	}
	return p.append(category, name, beginIndex, swapCount)
}

// SetTimestamp records the GPU-reported timestamp for the record at
// index idx within the generation that was current delayFrames ago
// (the readback callback calls this once per record, after the
// backend resolves the query pool). gen selects which of the
// poolRotation slots to write into.
func (p *Profiler) SetTimestamp(gen, idx int, timestamp uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	g := p.generations[gen]
	if idx < 0 || idx >= len(g.records) {
		return
	}
	g.records[idx].timestamp = timestamp
}

// QuerySlot returns the backend query-pool chunk index and in-chunk
// slot the record at idx within generation gen was assigned at Begin
// or End time, so the readback code can target the matching native
// GfxQueryPool object when issuing SetTimestamp. ok is false if gen or
// idx is out of range.
func (p *Profiler) QuerySlot(gen, idx int) (poolIndex, slot int, ok bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if gen < 0 || gen >= len(p.generations) {
		return 0, 0, false
	}
	g := p.generations[gen]
	if idx < 0 || idx >= len(g.records) {
		return 0, 0, false
	}
	r := g.records[idx]
	return r.poolIndex, r.slot, true
}

// AdvanceFrame rotates to the next QueryPools generation and, if a
// generation from DelayFrames+1 rotations ago is ready, reduces it and
// invokes cb once per distinct (category, name), per spec.md §4.4's
// three-step reduction algorithm. It returns the rotation index that
// was reduced, or -1 if none was ready yet (the first DelayFrames
// calls).
func (p *Profiler) AdvanceFrame(cb Callback) int {
	if !p.enabled {
		return -1
	}
	p.mu.Lock()
	readyGen := -1
	p.current = (p.current + 1) % poolRotation
	p.frameIndex++
	if p.frameIndex > DelayFrames {
		readyGen = (p.current + poolRotation - (DelayFrames + 1)) % poolRotation
	}
	var records []record
	if readyGen >= 0 {
		records = p.generations[readyGen].records
		p.generations[readyGen] = &generation{}
	}
	p.mu.Unlock()

	if readyGen < 0 {
		return -1
	}
	p.reduce(records, cb)
	return readyGen
}

// reduce implements spec.md §4.4's three-step algorithm: dedup via a
// hash table keyed on (category,name), accumulate valid deltas,
// discard wrapped ranges, then emit on first visit in original order.
func (p *Profiler) reduce(records []record, cb Callback) {
	nodes := container.NewHashTable[*queryNode](len(records))
	var order []string

	keyOf := func(category, name string) string { return category + "\x00" + name }

	nodeFor := func(category, name string) *queryNode {
		key := keyOf(category, name)
		if n, ok := nodes.Find(key); ok {
			return n
		}
		n := &queryNode{}
		_ = nodes.Insert(key, n)
		order = append(order, key)
		return n
	}

	for _, rec := range records {
		if rec.beginIndex < 0 {
			continue // begin records carry no duration by themselves
		}
		if rec.beginIndex >= len(records) {
			continue
		}
		begin := records[rec.beginIndex]
		n := nodeFor(rec.category, rec.name)
		if n.invalid {
			continue
		}
		if rec.timestamp < begin.timestamp {
			n.invalid = true
			continue
		}
		delta := rec.timestamp - begin.timestamp
		n.totalTime += uint64(float64(delta) * p.timestampPeriod)
	}

	for _, key := range order {
		n, ok := nodes.Find(key)
		if !ok || n.visited || n.invalid {
			continue
		}
		n.visited = true
		var category, name string
		for i := 0; i < len(key); i++ {
			if key[i] == 0 {
				category, name = key[:i], key[i+1:]
				break
			}
		}
		if cb != nil {
			cb(category, name, n.totalTime)
		}
	}
}
