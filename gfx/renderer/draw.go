package renderer

import (
	"github.com/akb825/DeepSea-sub003/core/dserr"
	"github.com/akb825/DeepSea-sub003/gfx/backend"
	"github.com/akb825/DeepSea-sub003/gfx/resource"
)

// Geometry bounds the vertex and (optional) index ranges a draw call
// may reference. It has no backend-native handle of its own; it is a
// thin validation view over whatever vertex/index buffers a caller
// built, per spec.md §4.7 step 3.
type Geometry struct {
	VertexCount uint32
	IndexCount  uint32
}

// Indirect command struct sizes, per the vtable's drawIndirect family
// (spec.md §4.7 step 4): four/five/three uint32 fields respectively.
const (
	drawIndirectCommandSize        = 16
	drawIndexedIndirectCommandSize = 20
	dispatchIndirectCommandSize    = 12
)

// checkDrawPrelude implements spec.md §4.7 steps 1-2 for the draw and
// dispatch entry points. ClearAttachments, MemoryBarrier and
// BlitSurface do their own checks and do not call it.
func (cb *CommandBuffer) checkDrawPrelude(op string, requireGraphicsShader, requireComputeShader bool) error {
	if requireGraphicsShader {
		if cb.BoundRenderPass == nil || cb.BoundShader == nil {
			return dserr.New(op, dserr.PermissionDenied)
		}
		if cb.SecondaryRenderPassCommands {
			return dserr.New(op, dserr.PermissionDenied)
		}
	}
	if requireComputeShader && cb.BoundComputeShader == nil {
		return dserr.New(op, dserr.PermissionDenied)
	}
	return nil
}

func (cb *CommandBuffer) checkInstancing(op string, firstInstance, instanceCount uint32) error {
	caps := cb.Renderer.Caps
	if !caps.HasInstancedDrawing {
		if firstInstance != 0 || instanceCount != 1 {
			return dserr.New(op, dserr.InvalidArgument)
		}
	}
	if firstInstance != 0 && !caps.HasStartInstance {
		return dserr.New(op, dserr.PermissionDenied)
	}
	return nil
}

func checkIndirectBuffer(op string, buffer *resource.GfxBuffer, usage backend.Usage, offset uint64, count, stride, structSize uint32) error {
	if buffer == nil {
		return dserr.New(op, dserr.InvalidArgument)
	}
	if !buffer.Usage.Has(usage) {
		return dserr.New(op, dserr.InvalidArgument)
	}
	if stride < structSize {
		return dserr.New(op, dserr.InvalidArgument)
	}
	if offset%4 != 0 {
		return dserr.New(op, dserr.InvalidArgument)
	}
	if count == 0 {
		return nil
	}
	rangeEnd := offset + uint64(stride)*uint64(count-1) + uint64(structSize)
	if rangeEnd > buffer.Size {
		return dserr.New(op, dserr.OutOfRange)
	}
	return nil
}

// Draw validates and forwards an unindexed draw call.
func (cb *CommandBuffer) Draw(geom Geometry, vertexCount, instanceCount, firstVertex, firstInstance uint32) error {
	const op = "renderer.CommandBuffer.Draw"
	if err := cb.checkDrawPrelude(op, true, false); err != nil {
		return err
	}
	if firstVertex+vertexCount > geom.VertexCount {
		return dserr.New(op, dserr.OutOfRange)
	}
	if err := cb.checkInstancing(op, firstInstance, instanceCount); err != nil {
		return err
	}
	r := cb.Renderer
	if r.fns.Draw == nil {
		return nil
	}
	return r.fns.Draw(cb, vertexCount, instanceCount, firstVertex, firstInstance)
}

// DrawIndexed validates and forwards an indexed draw call.
func (cb *CommandBuffer) DrawIndexed(geom Geometry, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) error {
	const op = "renderer.CommandBuffer.DrawIndexed"
	if err := cb.checkDrawPrelude(op, true, false); err != nil {
		return err
	}
	if indexCount == 0 {
		return dserr.New(op, dserr.InvalidArgument)
	}
	if firstIndex+indexCount > geom.IndexCount {
		return dserr.New(op, dserr.OutOfRange)
	}
	if err := cb.checkInstancing(op, firstInstance, instanceCount); err != nil {
		return err
	}
	r := cb.Renderer
	if r.fns.DrawIndexed == nil {
		return nil
	}
	return r.fns.DrawIndexed(cb, indexCount, instanceCount, firstIndex, vertexOffset, firstInstance)
}

// DrawIndirect validates and forwards an indirect unindexed draw call.
func (cb *CommandBuffer) DrawIndirect(buffer *resource.GfxBuffer, offset uint64, count, stride uint32) error {
	const op = "renderer.CommandBuffer.DrawIndirect"
	if err := cb.checkDrawPrelude(op, true, false); err != nil {
		return err
	}
	if err := checkIndirectBuffer(op, buffer, backend.UsageIndirectDraw, offset, count, stride, drawIndirectCommandSize); err != nil {
		return err
	}
	r := cb.Renderer
	if r.fns.DrawIndirect == nil {
		return nil
	}
	return r.fns.DrawIndirect(cb, buffer.Native, offset, count, stride)
}

// DrawIndexedIndirect validates and forwards an indirect indexed draw
// call.
func (cb *CommandBuffer) DrawIndexedIndirect(buffer *resource.GfxBuffer, offset uint64, count, stride uint32) error {
	const op = "renderer.CommandBuffer.DrawIndexedIndirect"
	if err := cb.checkDrawPrelude(op, true, false); err != nil {
		return err
	}
	if err := checkIndirectBuffer(op, buffer, backend.UsageIndirectDraw, offset, count, stride, drawIndexedIndirectCommandSize); err != nil {
		return err
	}
	r := cb.Renderer
	if r.fns.DrawIndexedIndirect == nil {
		return nil
	}
	return r.fns.DrawIndexedIndirect(cb, buffer.Native, offset, count, stride)
}

// DispatchCompute validates and forwards a compute dispatch.
func (cb *CommandBuffer) DispatchCompute(x, y, z uint32) error {
	const op = "renderer.CommandBuffer.DispatchCompute"
	if err := cb.checkDrawPrelude(op, false, true); err != nil {
		return err
	}
	r := cb.Renderer
	if r.fns.DispatchCompute == nil {
		return nil
	}
	return r.fns.DispatchCompute(cb, x, y, z)
}

// DispatchComputeIndirect validates and forwards an indirect compute
// dispatch.
func (cb *CommandBuffer) DispatchComputeIndirect(buffer *resource.GfxBuffer, offset uint64) error {
	const op = "renderer.CommandBuffer.DispatchComputeIndirect"
	if err := cb.checkDrawPrelude(op, false, true); err != nil {
		return err
	}
	if err := checkIndirectBuffer(op, buffer, backend.UsageIndirectDispatch, offset, 1, dispatchIndirectCommandSize, dispatchIndirectCommandSize); err != nil {
		return err
	}
	r := cb.Renderer
	if r.fns.DispatchComputeIndirect == nil {
		return nil
	}
	return r.fns.DispatchComputeIndirect(cb, buffer.Native, offset)
}

// SetViewport validates the viewport lies within the bound framebuffer
// and forwards it to the backend.
func (cb *CommandBuffer) SetViewport(viewport backend.Box3f) error {
	const op = "renderer.CommandBuffer.SetViewport"
	if cb.BoundFramebuffer != nil {
		if viewport.X < 0 || viewport.Y < 0 ||
			viewport.X+viewport.Width > float32(cb.BoundFramebuffer.Width) ||
			viewport.Y+viewport.Height > float32(cb.BoundFramebuffer.Height) {
			return dserr.New(op, dserr.OutOfRange)
		}
	}
	r := cb.Renderer
	cb.Viewport = viewport
	if r.fns.SetViewport == nil {
		return nil
	}
	return r.fns.SetViewport(cb, viewport)
}

// ClearAttachments validates each clear targets a bound, appropriately
// typed attachment with a region inside the framebuffer, then forwards
// to the backend (spec.md §4.7 step 6).
func (cb *CommandBuffer) ClearAttachments(clears []backend.AttachmentClear) error {
	const op = "renderer.CommandBuffer.ClearAttachments"
	pass := cb.BoundRenderPass
	fb := cb.BoundFramebuffer
	if pass == nil || fb == nil {
		return dserr.New(op, dserr.PermissionDenied)
	}
	sp := pass.Subpasses[cb.ActiveSubpass]
	colorAssigned := make(map[uint32]bool, len(sp.ColorAttachments))
	for _, idx := range sp.ColorAttachments {
		if idx != backend.NoAttachment {
			colorAssigned[idx] = true
		}
	}
	for _, c := range clears {
		if int(c.Attachment) >= len(pass.Attachments) {
			return dserr.New(op, dserr.OutOfRange)
		}
		isDepthStencil := pass.Attachments[c.Attachment].Format.IsDepthStencil()
		if isDepthStencil {
			if sp.DepthStencilAttachment != c.Attachment {
				return dserr.New(op, dserr.InvalidArgument)
			}
		} else if !colorAssigned[c.Attachment] {
			return dserr.New(op, dserr.InvalidArgument)
		}
		if c.Region.X < 0 || c.Region.Y < 0 ||
			c.Region.X+c.Region.Width > float32(fb.Width) ||
			c.Region.Y+c.Region.Height > float32(fb.Height) {
			return dserr.New(op, dserr.OutOfRange)
		}
	}
	r := cb.Renderer
	if r.fns.ClearAttachments == nil {
		return nil
	}
	return r.fns.ClearAttachments(cb, clears)
}

// MemoryBarrier requires a matching self-dependency on the active
// subpass when called inside a render pass; outside a pass it is
// forwarded unconditionally (spec.md §4.7 step 7).
func (cb *CommandBuffer) MemoryBarrier(beforeStages, afterStages backend.Stage, beforeAccess, afterAccess backend.Access) error {
	const op = "renderer.CommandBuffer.MemoryBarrier"
	if pass := cb.BoundRenderPass; pass != nil {
		ok := false
		for _, d := range pass.Dependencies {
			if d.SrcSubpass != cb.ActiveSubpass || d.DstSubpass != cb.ActiveSubpass {
				continue
			}
			if d.SrcStage&beforeStages == beforeStages && d.DstStage&afterStages == afterStages &&
				d.SrcAccess&beforeAccess == beforeAccess && d.DstAccess&afterAccess == afterAccess {
				ok = true
				break
			}
		}
		if !ok {
			return dserr.New(op, dserr.InvalidArgument)
		}
	}
	r := cb.Renderer
	if r.fns.MemoryBarrier == nil {
		return nil
	}
	return r.fns.MemoryBarrier(cb, beforeStages, afterStages, beforeAccess, afterAccess)
}

// blockAligned reports whether start/extent land on block boundaries.
// Uncompressed formats use a 1x1 block, so this is always true for
// them; it exists as the single choke point a compressed-format
// backend would extend.
func blockAligned(start, extent, blockSize int) bool {
	if blockSize <= 1 {
		return true
	}
	return start%blockSize == 0 && extent%blockSize == 0
}

// BlitSurface validates each region aligns to block dimensions,
// destination/source usage flags, and forwards to the backend
// (spec.md §4.7 step 8).
func (cb *CommandBuffer) BlitSurface(from, to *resource.RenderSurface, regions []backend.BlitRegion) error {
	const op = "renderer.CommandBuffer.BlitSurface"
	if from == nil || to == nil {
		return dserr.New(op, dserr.InvalidArgument)
	}
	if !from.Usage.Has(backend.UsageBlitFrom) {
		return dserr.New(op, dserr.InvalidArgument)
	}
	if !to.Usage.Has(backend.UsageBlitTo) {
		return dserr.New(op, dserr.InvalidArgument)
	}
	const blockSize = 1
	for _, r := range regions {
		if !blockAligned(r.SrcX, r.SrcWidth, blockSize) || !blockAligned(r.SrcY, r.SrcHeight, blockSize) ||
			!blockAligned(r.DstX, r.DstWidth, blockSize) || !blockAligned(r.DstY, r.DstHeight, blockSize) {
			return dserr.New(op, dserr.InvalidArgument)
		}
		if r.SrcX+r.SrcWidth > from.Width || r.SrcY+r.SrcHeight > from.Height {
			return dserr.New(op, dserr.OutOfRange)
		}
		if r.DstX+r.DstWidth > to.Width || r.DstY+r.DstHeight > to.Height {
			return dserr.New(op, dserr.OutOfRange)
		}
	}
	rr := cb.Renderer
	if rr.fns.BlitSurface == nil {
		return nil
	}
	return rr.fns.BlitSurface(cb, from.Native, to.Native, regions)
}
