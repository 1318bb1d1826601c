package renderpass

import (
	"testing"

	"github.com/akb825/DeepSea-sub003/gfx/backend"
	"github.com/akb825/DeepSea-sub003/gfx/resource"
)

// TestDeriveDefaultDependenciesScenarioC reproduces spec.md §8
// scenario C exactly: S0 writes color attachment 0; S1 reads
// attachment 0 as input and writes attachment 1 as color.
func TestDeriveDefaultDependenciesScenarioC(t *testing.T) {
	subpasses := []resource.SubpassInfo{
		{ColorAttachments: []uint32{0}, DepthStencilAttachment: backend.NoAttachment},
		{InputAttachments: []uint32{0}, ColorAttachments: []uint32{1}, DepthStencilAttachment: backend.NoAttachment},
	}
	deps := DeriveDefaultDependencies(subpasses)

	var found bool
	for _, d := range deps {
		if d.SrcSubpass == 0 && d.DstSubpass == 1 {
			found = true
			if d.SrcStage != backend.StageColorOutput {
				t.Fatalf("srcStage = %v, want ColorOutput", d.SrcStage)
			}
			if d.SrcAccess != backend.AccessColorAttachmentWrite {
				t.Fatalf("srcAccess = %v, want ColorAttachmentWrite", d.SrcAccess)
			}
			wantDstStage := backend.StageFragmentShader | backend.StageColorOutput
			if d.DstStage != wantDstStage {
				t.Fatalf("dstStage = %v, want %v", d.DstStage, wantDstStage)
			}
			wantDstAccess := backend.AccessInputAttachmentRead | backend.AccessColorAttachmentRead | backend.AccessColorAttachmentWrite
			if d.DstAccess != wantDstAccess {
				t.Fatalf("dstAccess = %v, want %v", d.DstAccess, wantDstAccess)
			}
			if !d.ByRegion {
				t.Fatal("expected ByRegion = true")
			}
		}
	}
	if !found {
		t.Fatal("expected an S0->S1 dependency")
	}
}

// TestDeriveDefaultDependenciesImplicitExternal verifies every
// attachment with no earlier writer gets an EXTERNAL->i edge, and
// every attachment's final toucher gets an i->EXTERNAL edge.
func TestDeriveDefaultDependenciesImplicitExternal(t *testing.T) {
	subpasses := []resource.SubpassInfo{
		{ColorAttachments: []uint32{0}, DepthStencilAttachment: backend.NoAttachment},
	}
	deps := DeriveDefaultDependencies(subpasses)
	if len(deps) != 2 {
		t.Fatalf("len(deps) = %d, want 2 (EXTERNAL->0 and 0->EXTERNAL)", len(deps))
	}
	var sawIn, sawOut bool
	for _, d := range deps {
		if d.SrcSubpass == backend.ExternalSubpass && d.DstSubpass == 0 {
			sawIn = true
		}
		if d.SrcSubpass == 0 && d.DstSubpass == backend.ExternalSubpass {
			sawOut = true
		}
	}
	if !sawIn || !sawOut {
		t.Fatalf("missing implicit external edge: sawIn=%v sawOut=%v", sawIn, sawOut)
	}
}
