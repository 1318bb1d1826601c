package renderer

import (
	"testing"

	"github.com/akb825/DeepSea-sub003/core/dserr"
	"github.com/akb825/DeepSea-sub003/gfx/backend"
	"github.com/akb825/DeepSea-sub003/gfx/resource"
)

func newTestCommandBuffer() *CommandBuffer {
	r := New(backend.Functions{}, backend.Options{}, backend.Capabilities{}, 0)
	return r.MainCommandBuffer
}

func boundRenderPassCommandBuffer(t *testing.T) *CommandBuffer {
	t.Helper()
	cb := newTestCommandBuffer()
	pass, err := resource.NewRenderPass(nil, []resource.AttachmentInfo{
		{Format: backend.FormatR8G8B8A8UNorm, Samples: 1},
	}, []resource.SubpassInfo{{ColorAttachments: []uint32{0}, DepthStencilAttachment: backend.NoAttachment}}, nil, 4, nil)
	if err != nil {
		t.Fatal(err)
	}
	cb.BoundRenderPass = pass
	cb.Renderer.frameActive = true
	cb.FrameActive = true
	return cb
}

func TestDrawRequiresBoundShader(t *testing.T) {
	cb := boundRenderPassCommandBuffer(t)
	err := cb.Draw(Geometry{VertexCount: 10}, 3, 1, 0, 0)
	if dserr.KindOf(err) != dserr.PermissionDenied {
		t.Fatalf("err = %v, want PermissionDenied", err)
	}
}

func TestDrawFirstInstanceRequiresStartInstanceCap(t *testing.T) {
	cb := boundRenderPassCommandBuffer(t)
	cb.BoundShader = &resource.Shader{}
	cb.Renderer.Caps.HasInstancedDrawing = true
	err := cb.Draw(Geometry{VertexCount: 10}, 3, 1, 0, 5)
	if dserr.KindOf(err) != dserr.PermissionDenied {
		t.Fatalf("err = %v, want PermissionDenied", err)
	}
}

func TestDrawIndexedIndirectRejectsMisalignedOffset(t *testing.T) {
	cb := boundRenderPassCommandBuffer(t)
	cb.BoundShader = &resource.Shader{}
	buf := resource.NewGfxBuffer(nil, backend.UsageIndirectDraw, 1024, nil)
	err := cb.DrawIndexedIndirect(buf, 3, 1, drawIndexedIndirectCommandSize)
	if dserr.KindOf(err) != dserr.InvalidArgument {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
}

func TestDrawIndirectRejectsBufferWithoutIndirectUsage(t *testing.T) {
	cb := boundRenderPassCommandBuffer(t)
	cb.BoundShader = &resource.Shader{}
	buf := resource.NewGfxBuffer(nil, backend.UsageUniformBuffer, 1024, nil)
	err := cb.DrawIndirect(buf, 0, 1, drawIndirectCommandSize)
	if dserr.KindOf(err) != dserr.InvalidArgument {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
}

func TestDrawOutOfRangeVertexCount(t *testing.T) {
	cb := boundRenderPassCommandBuffer(t)
	cb.BoundShader = &resource.Shader{}
	err := cb.Draw(Geometry{VertexCount: 4}, 10, 1, 0, 0)
	if dserr.KindOf(err) != dserr.OutOfRange {
		t.Fatalf("err = %v, want OutOfRange", err)
	}
}

func TestDrawIndexedRejectsZeroIndexCount(t *testing.T) {
	cb := boundRenderPassCommandBuffer(t)
	cb.BoundShader = &resource.Shader{}
	err := cb.DrawIndexed(Geometry{IndexCount: 10}, 0, 1, 0, 0, 0)
	if dserr.KindOf(err) != dserr.InvalidArgument {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
}

func TestMemoryBarrierOutsideRenderPassForwardsUnconditionally(t *testing.T) {
	cb := newTestCommandBuffer()
	cb.Renderer.frameActive = true
	cb.FrameActive = true
	if err := cb.MemoryBarrier(backend.StageColorOutput, backend.StageFragmentShader, backend.AccessColorAttachmentWrite, backend.AccessInputAttachmentRead); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestMemoryBarrierInsideRenderPassRequiresSelfDependency(t *testing.T) {
	cb := boundRenderPassCommandBuffer(t)
	err := cb.MemoryBarrier(backend.StageColorOutput, backend.StageFragmentShader, backend.AccessColorAttachmentWrite, backend.AccessInputAttachmentRead)
	if dserr.KindOf(err) != dserr.InvalidArgument {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
}
