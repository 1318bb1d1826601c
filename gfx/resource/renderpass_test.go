package resource

import (
	"testing"

	"github.com/akb825/DeepSea-sub003/gfx/backend"
)

func simpleAttachments() []AttachmentInfo {
	return []AttachmentInfo{
		{Format: backend.FormatR8G8B8A8UNorm, Samples: 1},
		{Format: backend.FormatD32Float, Samples: 1},
	}
}

func TestNewRenderPassRejectsTooManyAttachments(t *testing.T) {
	attachments := make([]AttachmentInfo, backend.MaxAttachments+1)
	subpasses := []SubpassInfo{{DepthStencilAttachment: backend.NoAttachment}}
	if _, err := NewRenderPass(nil, attachments, subpasses, nil, 4, nil); err == nil {
		t.Fatal("expected error for too many attachments")
	}
}

func TestNewRenderPassRejectsTooManyColorAttachments(t *testing.T) {
	subpasses := []SubpassInfo{{
		ColorAttachments:       []uint32{0, 0, 0},
		DepthStencilAttachment: backend.NoAttachment,
	}}
	if _, err := NewRenderPass(nil, simpleAttachments(), subpasses, nil, 2, nil); err == nil {
		t.Fatal("expected error for exceeding max color attachments")
	}
}

func TestNewRenderPassRejectsOutOfOrderDependency(t *testing.T) {
	subpasses := []SubpassInfo{
		{ColorAttachments: []uint32{0}, DepthStencilAttachment: 1},
		{ColorAttachments: []uint32{0}, DepthStencilAttachment: 1},
	}
	deps := []SubpassDependency{{SrcSubpass: 1, DstSubpass: 0}}
	if _, err := NewRenderPass(nil, simpleAttachments(), subpasses, deps, 4, nil); err == nil {
		t.Fatal("expected error for src > dst dependency")
	}
}

func TestNewRenderPassRejectsSelfDependencyWithoutRegion(t *testing.T) {
	subpasses := []SubpassInfo{{ColorAttachments: []uint32{0}, DepthStencilAttachment: 1}}
	deps := []SubpassDependency{{SrcSubpass: 0, DstSubpass: 0, ByRegion: false}}
	if _, err := NewRenderPass(nil, simpleAttachments(), subpasses, deps, 4, nil); err == nil {
		t.Fatal("expected error for self-dependency without ByRegion")
	}
}

func TestNewRenderPassAcceptsValidPass(t *testing.T) {
	subpasses := []SubpassInfo{{ColorAttachments: []uint32{0}, DepthStencilAttachment: 1}}
	deps := []SubpassDependency{{SrcSubpass: 0, DstSubpass: 0, ByRegion: true}}
	destroyed := 0
	rp, err := NewRenderPass(nil, simpleAttachments(), subpasses, deps, 4, func() { destroyed++ })
	if err != nil {
		t.Fatal(err)
	}
	rp.Release()
	if destroyed != 1 {
		t.Fatalf("destroyed = %d, want 1", destroyed)
	}
}
