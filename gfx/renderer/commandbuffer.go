package renderer

import (
	"github.com/akb825/DeepSea-sub003/gfx/backend"
	"github.com/akb825/DeepSea-sub003/gfx/resource"
)

// Usage is a bitmask describing how a CommandBuffer may be recorded
// and submitted.
type Usage uint32

const (
	UsagePrimary Usage = 0
	UsageMultiFrame Usage = 1 << iota
	UsageMultiSubmit
	UsageResource
	UsageSecondary
)

// profileInfo snapshots the profiler's bookkeeping needed to detect a
// begin/end pair straddling a frame boundary, per spec.md §4.4 and the
// CommandBuffer field list in §3.
type profileInfo struct {
	beginSurfaceIndex            int
	beginSurfaceSwapCount        uint64
	beginSubpassIndex            int
	beginSubpassSwapCount        uint64
	beginComputeIndex            int
	beginComputeSwapCount        uint64
	beginDeferredResourcesIndex  int
	beginDeferredResourcesSwapCount uint64
	subpassDebugGroups           bool
}

// CommandBuffer is a linear sequence of GPU commands recorded against
// one Renderer. It is bound per-frame and is not ref-counted, unlike
// the GPU resource types in package resource.
type CommandBuffer struct {
	Renderer *Renderer
	Usage    Usage

	FrameActive bool

	BoundSurface      *resource.RenderSurface
	BoundFramebuffer  *resource.Framebuffer
	BoundRenderPass   *resource.RenderPass
	ActiveSubpass     uint32

	BoundShader        *resource.Shader
	BoundComputeShader *resource.Shader

	// SecondaryRenderPassCommands records whether the current subpass
	// was declared secondary=true (spec.md §4.6 begin/nextSubpass).
	SecondaryRenderPassCommands bool

	Viewport backend.Box3f
	Scissor  backend.Box2f

	profile profileInfo
}

func newCommandBuffer(r *Renderer, usage Usage) *CommandBuffer {
	return &CommandBuffer{Renderer: r, Usage: usage}
}

// clearBoundState resets every per-render-pass and per-frame binding,
// used by beginFrame and by render pass end().
func (cb *CommandBuffer) clearBoundState() {
	cb.BoundSurface = nil
	cb.BoundFramebuffer = nil
	cb.BoundRenderPass = nil
	cb.ActiveSubpass = 0
	cb.BoundShader = nil
	cb.SecondaryRenderPassCommands = false
}
