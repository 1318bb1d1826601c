package renderer

import (
	"github.com/akb825/DeepSea-sub003/core/dserr"
	"github.com/akb825/DeepSea-sub003/gfx/backend"
	"github.com/akb825/DeepSea-sub003/gfx/resource"
)

// BeginRenderPass validates and begins recording pass into cb against
// framebuffer, per spec.md §4.6's begin() rules. clearValues must
// cover every attachment if any attachment declares usage.Clear; when
// none does, clearValues is not checked.
func (cb *CommandBuffer) BeginRenderPass(pass *resource.RenderPass, framebuffer *resource.Framebuffer, viewport backend.Box3f, clearValues []backend.ClearValue, secondary bool) error {
	const op = "renderer.CommandBuffer.BeginRenderPass"

	if !cb.FrameActive {
		return dserr.New(op, dserr.PermissionDenied)
	}
	if cb.BoundRenderPass != nil || cb.BoundComputeShader != nil {
		return dserr.New(op, dserr.PermissionDenied)
	}
	if pass == nil || framebuffer == nil {
		return dserr.New(op, dserr.InvalidArgument)
	}
	if len(framebuffer.Attachments) != len(pass.Attachments) {
		return dserr.New(op, dserr.InvalidArgument)
	}
	for i := range pass.Attachments {
		if framebuffer.Attachments[i].Texture == nil && framebuffer.Attachments[i].Renderbuffer == nil {
			return dserr.New(op, dserr.InvalidArgument)
		}
	}
	if viewport.X < 0 || viewport.Y < 0 ||
		viewport.X+viewport.Width > float32(framebuffer.Width) ||
		viewport.Y+viewport.Height > float32(framebuffer.Height) {
		return dserr.New(op, dserr.OutOfRange)
	}

	needsClear := false
	for _, a := range pass.Attachments {
		if a.Usage.Has(backend.UsageClear) {
			needsClear = true
			break
		}
	}
	if needsClear && len(clearValues) < len(pass.Attachments) {
		return dserr.New(op, dserr.InvalidArgument)
	}

	r := cb.Renderer
	swapCount := r.Profiler.SwapCounter()
	beginIdx := r.Profiler.Begin(framebuffer.Name, "Subpass", swapCount)

	if r.fns.BeginRenderPass != nil {
		if err := r.fns.BeginRenderPass(cb, pass.Native, framebuffer.Native, clearValues); err != nil {
			r.Profiler.End(framebuffer.Name, "Subpass", beginIdx, swapCount, swapCount)
			return err
		}
	}

	cb.BoundFramebuffer = framebuffer
	cb.BoundRenderPass = pass
	cb.ActiveSubpass = 0
	cb.Viewport = viewport
	cb.SecondaryRenderPassCommands = secondary
	cb.profile.beginSubpassIndex = beginIdx
	cb.profile.beginSubpassSwapCount = swapCount
	return nil
}

// NextRenderSubpass asserts the current pass matches and no shader is
// bound, then advances the subpass index. secondary may change
// between subpasses.
func (cb *CommandBuffer) NextRenderSubpass(secondary bool) error {
	const op = "renderer.CommandBuffer.NextRenderSubpass"

	if cb.BoundRenderPass == nil {
		return dserr.New(op, dserr.PermissionDenied)
	}
	if cb.BoundShader != nil {
		return dserr.New(op, dserr.PermissionDenied)
	}
	if int(cb.ActiveSubpass)+1 >= len(cb.BoundRenderPass.Subpasses) {
		return dserr.New(op, dserr.OutOfRange)
	}

	r := cb.Renderer
	if r.fns.NextRenderSubpass != nil {
		if err := r.fns.NextRenderSubpass(cb); err != nil {
			return err
		}
	}

	cb.ActiveSubpass++
	cb.SecondaryRenderPassCommands = secondary
	return nil
}

// EndRenderPass asserts the render pass reached its final subpass and
// clears bound state.
func (cb *CommandBuffer) EndRenderPass() error {
	const op = "renderer.CommandBuffer.EndRenderPass"

	pass := cb.BoundRenderPass
	if pass == nil {
		return dserr.New(op, dserr.PermissionDenied)
	}
	if int(cb.ActiveSubpass) != len(pass.Subpasses)-1 {
		return dserr.New(op, dserr.PermissionDenied)
	}

	r := cb.Renderer
	if r.fns.EndRenderPass != nil {
		if err := r.fns.EndRenderPass(cb); err != nil {
			return err
		}
	}

	swapCount := r.Profiler.SwapCounter()
	r.Profiler.End(cb.BoundFramebuffer.Name, "Subpass", cb.profile.beginSubpassIndex, cb.profile.beginSubpassSwapCount, swapCount)

	cb.clearBoundState()
	return nil
}
