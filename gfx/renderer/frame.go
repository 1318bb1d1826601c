package renderer

import (
	"context"

	"github.com/akb825/DeepSea-sub003/core/dserr"
	"github.com/akb825/DeepSea-sub003/gfx/resource"
)

// BeginFrame starts a new frame: it invokes the backend's beginFrame,
// marks the renderer active, increments the frame number, and clears
// bound state on the main command buffer. It makes no profiler call;
// the profiler advances its frame in EndFrame.
// Main-goroutine only (spec.md §4.8).
func (r *Renderer) BeginFrame() error {
	const op = "renderer.Renderer.BeginFrame"
	if err := r.requireMainGoroutine(op); err != nil {
		return err
	}

	r.mu.Lock()
	if r.frameActive {
		r.mu.Unlock()
		return dserr.New(op, dserr.PermissionDenied)
	}
	r.mu.Unlock()

	if r.fns.BeginFrame != nil {
		if err := r.fns.BeginFrame(context.Background()); err != nil {
			return err
		}
	}

	r.mu.Lock()
	r.frameActive = true
	r.FrameNumber++
	r.mu.Unlock()

	r.MainCommandBuffer.FrameActive = true
	r.MainCommandBuffer.clearBoundState()
	return nil
}

// EndFrame validates no render pass, compute shader, or surface
// remains bound, invokes the backend's endFrame, ends the profile
// frame, and marks the renderer inactive. Main-goroutine only.
func (r *Renderer) EndFrame() error {
	const op = "renderer.Renderer.EndFrame"
	if err := r.requireMainGoroutine(op); err != nil {
		return err
	}

	cb := r.MainCommandBuffer
	if cb.BoundRenderPass != nil || cb.BoundComputeShader != nil || cb.BoundSurface != nil {
		return dserr.New(op, dserr.PermissionDenied)
	}

	if r.fns.EndFrame != nil {
		if err := r.fns.EndFrame(context.Background()); err != nil {
			return err
		}
	}

	r.Profiler.AdvanceFrame(nil)

	r.mu.Lock()
	r.frameActive = false
	r.mu.Unlock()
	cb.FrameActive = false
	return nil
}

// SwapRenderSurfaceBuffers presents every surface in surfaces under a
// single GPU-profile "Swap buffers" range. The backend decides whether
// to present them individually or as a group. Main-goroutine only.
func (r *Renderer) SwapRenderSurfaceBuffers(surfaces []*resource.RenderSurface) error {
	const op = "renderer.Renderer.SwapRenderSurfaceBuffers"
	if err := r.requireMainGoroutine(op); err != nil {
		return err
	}
	if r.fns.SwapRenderSurfaceBuffers == nil {
		return nil
	}

	natives := make([]any, len(surfaces))
	for i, s := range surfaces {
		natives[i] = s.Native
	}

	swapCount := r.Profiler.SwapCounter()
	beginIdx := r.Profiler.Begin("", "Swap buffers", swapCount)
	err := r.fns.SwapRenderSurfaceBuffers(natives)
	r.Profiler.BumpSwapCounter()
	r.Profiler.End("", "Swap buffers", beginIdx, swapCount, swapCount)
	return err
}
