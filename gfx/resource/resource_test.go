package resource

import (
	"testing"

	"github.com/akb825/DeepSea-sub003/gfx/backend"
)

func TestGfxBufferDestroyedOnLastRelease(t *testing.T) {
	destroyed := 0
	b := NewGfxBuffer(nil, backend.UsageUniformBlock, 256, func() { destroyed++ })
	b.AddRef()
	b.Release()
	if destroyed != 0 {
		t.Fatal("should not destroy while a reference remains")
	}
	b.Release()
	if destroyed != 1 {
		t.Fatalf("destroyed = %d, want 1", destroyed)
	}
}

func TestFramebufferRejectsTooManyAttachments(t *testing.T) {
	pass := &RenderPass{handle: newHandle(nil)}
	attachments := make([]AttachmentRef, backend.MaxAttachments+1)
	if _, err := NewFramebuffer(nil, pass, attachments, 64, 64, 1, nil); err == nil {
		t.Fatal("expected error for too many attachments")
	}
}

func TestFramebufferReleaseReleasesRenderPass(t *testing.T) {
	passDestroyed := 0
	pass := &RenderPass{handle: newHandle(func() { passDestroyed++ })}

	fbDestroyed := 0
	fb, err := NewFramebuffer(nil, pass, nil, 64, 64, 1, func() { fbDestroyed++ })
	if err != nil {
		t.Fatal(err)
	}
	fb.Release()
	if fbDestroyed != 1 {
		t.Fatalf("fbDestroyed = %d, want 1", fbDestroyed)
	}
	// The framebuffer dropped the reference NewFramebuffer added; the
	// pass's original reference keeps it alive until released here.
	if passDestroyed != 0 {
		t.Fatalf("passDestroyed = %d, want 0 (original reference still held)", passDestroyed)
	}
	pass.Release()
	if passDestroyed != 1 {
		t.Fatalf("passDestroyed = %d, want 1", passDestroyed)
	}
}

func TestShaderAddRefKeepsAlive(t *testing.T) {
	destroyed := 0
	s := NewShader(nil, backend.StageFragmentShader, "frag", func() { destroyed++ })
	s2 := s.AddRef()
	if s2 != s {
		t.Fatal("AddRef should return the same pointer")
	}
	s.Release()
	if destroyed != 0 {
		t.Fatal("should not destroy while a reference remains")
	}
	s2.Release()
	if destroyed != 1 {
		t.Fatalf("destroyed = %d, want 1", destroyed)
	}
}
