// Package renderer implements the render-graph execution core: the
// Renderer object, its per-frame and per-render-pass state machines,
// draw-time validation, and render surfaces.
//
// Exactly one goroutine — whichever called New — owns the main
// command buffer and may call the entry points spec.md §5 restricts
// to the main thread. Enforcement compares the calling goroutine's id
// (via core/tlocal.CurrentGoroutineID) against the id recorded at
// construction, the same stand-in the original library's
// thread::this_id() comparison used for an OS thread id.
package renderer

import (
	"sync"

	"github.com/akb825/DeepSea-sub003/core/dserr"
	"github.com/akb825/DeepSea-sub003/core/logging"
	"github.com/akb825/DeepSea-sub003/core/tlocal"
	"github.com/akb825/DeepSea-sub003/gfx/backend"
	"github.com/akb825/DeepSea-sub003/gfx/profiler"
)

// Capabilities is re-exported so callers configuring a Renderer don't
// need to import gfx/backend directly for this one type.
type Capabilities = backend.Capabilities

// Options is re-exported for the same reason.
type Options = backend.Options

// Renderer is a singleton per logical GPU device: it owns resource
// creation, frame sequencing, and render-pass/draw validation, calling
// through a backend.Functions vtable for the actual GPU work.
type Renderer struct {
	mu sync.Mutex

	fns           backend.Functions
	mainGoroutine int64
	log           logging.Logger

	MainCommandBuffer *CommandBuffer

	FrameNumber uint64

	SurfaceColorFormat        backend.PixelFormat
	SurfaceDepthStencilFormat backend.PixelFormat
	SurfaceSamples            int
	DefaultSamples            int
	MaxColorAttachments       int
	MaxAnisotropy             float32
	MaxSurfaceSamples         int
	MaxComputeWorkGroupSize   [3]uint32

	Caps               Capabilities
	VSync              backend.VSyncMode
	DefaultAnisotropy  float32

	Profiler *profiler.Profiler

	frameActive bool
}

// New constructs a Renderer bound to the calling goroutine as its main
// goroutine. fns is the backend vtable; opts configures format and
// capability defaults; timestampPeriod > 0 enables the GPU profiler
// (spec.md §4.4).
func New(fns backend.Functions, opts Options, caps Capabilities, timestampPeriod float64) *Renderer {
	r := &Renderer{
		fns:                 fns,
		mainGoroutine:       tlocal.CurrentGoroutineID(),
		log:                 logging.Named("renderer"),
		SurfaceSamples:      opts.SurfaceSamples,
		DefaultSamples:      opts.DefaultSamples,
		MaxColorAttachments: 4,
		Caps:                caps,
		DefaultAnisotropy:   1,
		Profiler:            profiler.New(timestampPeriod),
	}
	r.MainCommandBuffer = newCommandBuffer(r, UsagePrimary)
	return r
}

// requireMainGoroutine enforces spec.md §5's main-thread restriction
// for entry points that mutate renderer-global state.
func (r *Renderer) requireMainGoroutine(op string) error {
	if tlocal.CurrentGoroutineID() != r.mainGoroutine {
		return dserr.New(op, dserr.PermissionDenied)
	}
	return nil
}

// Destroy releases the renderer's backend resources. Main-goroutine
// only.
func (r *Renderer) Destroy() error {
	const op = "renderer.Renderer.Destroy"
	if err := r.requireMainGoroutine(op); err != nil {
		return err
	}
	if r.fns.Destroy == nil {
		return nil
	}
	return r.fns.Destroy(nil)
}

// Flush forwards to the backend's flush. Main-goroutine only.
func (r *Renderer) Flush() error {
	const op = "renderer.Renderer.Flush"
	if err := r.requireMainGoroutine(op); err != nil {
		return err
	}
	if r.fns.Flush == nil {
		return nil
	}
	return r.fns.Flush(nil)
}

// WaitUntilIdle blocks until all submitted GPU work completes.
// Main-goroutine only; this is a suspension point per spec.md §5.
func (r *Renderer) WaitUntilIdle() error {
	const op = "renderer.Renderer.WaitUntilIdle"
	if err := r.requireMainGoroutine(op); err != nil {
		return err
	}
	if r.fns.WaitUntilIdle == nil {
		return nil
	}
	return r.fns.WaitUntilIdle(nil)
}

// RestoreGlobalState re-asserts backend global state after an
// interfering external GL/graphics API call. Main-goroutine only.
func (r *Renderer) RestoreGlobalState() error {
	const op = "renderer.Renderer.RestoreGlobalState"
	if err := r.requireMainGoroutine(op); err != nil {
		return err
	}
	if r.fns.RestoreGlobalState == nil {
		return nil
	}
	return r.fns.RestoreGlobalState(nil)
}

// SetExtraDebugging toggles the backend's extra validation/labeling.
// Main-goroutine only.
func (r *Renderer) SetExtraDebugging(enabled bool) error {
	const op = "renderer.Renderer.SetExtraDebugging"
	if err := r.requireMainGoroutine(op); err != nil {
		return err
	}
	if r.fns.SetExtraDebugging == nil {
		return nil
	}
	return r.fns.SetExtraDebugging(enabled)
}

// SetSurfaceSamples changes the sample count used by render surfaces
// created from this point on. Main-goroutine only.
func (r *Renderer) SetSurfaceSamples(samples int) error {
	const op = "renderer.Renderer.SetSurfaceSamples"
	if err := r.requireMainGoroutine(op); err != nil {
		return err
	}
	if samples > r.MaxSurfaceSamples && r.MaxSurfaceSamples > 0 {
		return dserr.New(op, dserr.InvalidArgument)
	}
	if r.fns.SetSurfaceSamples != nil {
		if err := r.fns.SetSurfaceSamples(samples); err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.SurfaceSamples = samples
	r.mu.Unlock()
	return nil
}

// SetDefaultSamples changes the default sample count for offscreens.
// Main-goroutine only.
func (r *Renderer) SetDefaultSamples(samples int) error {
	const op = "renderer.Renderer.SetDefaultSamples"
	if err := r.requireMainGoroutine(op); err != nil {
		return err
	}
	if r.fns.SetDefaultSamples != nil {
		if err := r.fns.SetDefaultSamples(samples); err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.DefaultSamples = samples
	r.mu.Unlock()
	return nil
}

// SetVSync changes presentation pacing. Main-goroutine only.
func (r *Renderer) SetVSync(mode backend.VSyncMode) error {
	const op = "renderer.Renderer.SetVSync"
	if err := r.requireMainGoroutine(op); err != nil {
		return err
	}
	if r.fns.SetVSync != nil {
		if err := r.fns.SetVSync(mode); err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.VSync = mode
	r.mu.Unlock()
	return nil
}

// SetDefaultAnisotropy changes the default anisotropic filtering
// level for future samplers. Main-goroutine only.
func (r *Renderer) SetDefaultAnisotropy(aniso float32) error {
	const op = "renderer.Renderer.SetDefaultAnisotropy"
	if err := r.requireMainGoroutine(op); err != nil {
		return err
	}
	if aniso < 1 || (r.MaxAnisotropy > 0 && aniso > r.MaxAnisotropy) {
		return dserr.New(op, dserr.InvalidArgument)
	}
	if r.fns.SetDefaultAnisotropy != nil {
		if err := r.fns.SetDefaultAnisotropy(aniso); err != nil {
			return err
		}
	}
	r.mu.Lock()
	r.DefaultAnisotropy = aniso
	r.mu.Unlock()
	return nil
}

// FrameActive reports whether beginFrame has been called without a
// matching endFrame.
func (r *Renderer) FrameActive() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frameActive
}
