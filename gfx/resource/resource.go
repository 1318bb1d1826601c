// Package resource implements the ref-counted GPU resource handles the
// render-graph core hands out: buffers, textures, renderbuffers,
// framebuffers, render surfaces, render passes, and shaders.
//
// Every handle embeds a fencesync.FenceSync-style atomic ref count
// instead of the original library's manual refcount+spinlock+
// defer-destroy dance (the dsGLResource pattern spec.md §9 flags for
// replacement): Release on the last reference invokes the backend's
// destructor directly, with no lock held and nothing deferred.
package resource

import (
	"sync/atomic"

	"github.com/akb825/DeepSea-sub003/core/dserr"
	"github.com/akb825/DeepSea-sub003/gfx/backend"
)

// handle is embedded by every resource type in this package to supply
// the common atomic ref count and destroy-once behavior.
type handle struct {
	refCount atomic.Int32
	destroy  func()
}

func newHandle(destroy func()) handle {
	h := handle{destroy: destroy}
	h.refCount.Store(1)
	return h
}

func (h *handle) addRef() { h.refCount.Add(1) }

// release decrements the ref count and invokes destroy on the last
// reference, returning true when that happened.
func (h *handle) release() bool {
	if h.refCount.Add(-1) == 0 {
		if h.destroy != nil {
			h.destroy()
		}
		return true
	}
	return false
}

// GfxBuffer is a ref-counted GPU buffer resource.
type GfxBuffer struct {
	handle
	Native any
	Usage  backend.Usage
	Size   uint64
}

// NewGfxBuffer wraps a backend-native buffer handle. destroy is called
// exactly once, when the last reference is released.
func NewGfxBuffer(native any, usage backend.Usage, size uint64, destroy func()) *GfxBuffer {
	return &GfxBuffer{handle: newHandle(destroy), Native: native, Usage: usage, Size: size}
}

// AddRef increments the reference count and returns b.
func (b *GfxBuffer) AddRef() *GfxBuffer { b.addRef(); return b }

// Release decrements the reference count, destroying the backend
// buffer on the last reference.
func (b *GfxBuffer) Release() { b.release() }

// Texture is a ref-counted sampled or offscreen-rendered image
// resource.
type Texture struct {
	handle
	Native    any
	Format    backend.PixelFormat
	Dimension backend.Dimension
	Width     int
	Height    int
	Depth     int
	MipLevels int
	Usage     backend.Usage
}

// NewTexture wraps a backend-native image handle.
func NewTexture(native any, format backend.PixelFormat, dim backend.Dimension, width, height, depth, mipLevels int, usage backend.Usage, destroy func()) *Texture {
	return &Texture{
		handle: newHandle(destroy), Native: native, Format: format, Dimension: dim,
		Width: width, Height: height, Depth: depth, MipLevels: mipLevels, Usage: usage,
	}
}

// AddRef increments the reference count and returns t.
func (t *Texture) AddRef() *Texture { t.addRef(); return t }

// Release decrements the reference count, destroying the backend
// image on the last reference.
func (t *Texture) Release() { t.release() }

// Renderbuffer is a ref-counted attachment-only image resource (no
// sampling, no CPU readback by default).
type Renderbuffer struct {
	handle
	Native  any
	Format  backend.PixelFormat
	Width   int
	Height  int
	Samples int
	Usage   backend.Usage
}

// NewRenderbuffer wraps a backend-native renderbuffer handle.
func NewRenderbuffer(native any, format backend.PixelFormat, width, height, samples int, usage backend.Usage, destroy func()) *Renderbuffer {
	return &Renderbuffer{handle: newHandle(destroy), Native: native, Format: format, Width: width, Height: height, Samples: samples, Usage: usage}
}

// AddRef increments the reference count and returns r.
func (r *Renderbuffer) AddRef() *Renderbuffer { r.addRef(); return r }

// Release decrements the reference count, destroying the backend
// renderbuffer on the last reference.
func (r *Renderbuffer) Release() { r.release() }

// AttachmentRef identifies one attachment slot's backing image: either
// a Texture or a Renderbuffer, tagged by which.
type AttachmentRef struct {
	Texture      *Texture
	Renderbuffer *Renderbuffer
	MipLevel     int
	Layer        int
}

// Framebuffer is a ref-counted set of attachment bindings compatible
// with a particular RenderPass. len(Attachments) is the framebuffer's
// surface count and must equal the bound RenderPass's attachment
// count (spec.md §4.6 begin() validation).
type Framebuffer struct {
	handle
	Native      any
	Pass        *RenderPass
	Attachments []AttachmentRef
	Width       int
	Height      int
	Layers      int
}

// NewFramebuffer validates that attachments does not exceed
// backend.MaxAttachments and wraps a backend-native framebuffer
// handle.
func NewFramebuffer(native any, pass *RenderPass, attachments []AttachmentRef, width, height, layers int, destroy func()) (*Framebuffer, error) {
	const op = "resource.NewFramebuffer"
	if len(attachments) > backend.MaxAttachments {
		return nil, dserr.New(op, dserr.OutOfRange)
	}
	f := &Framebuffer{
		handle:      newHandle(destroy),
		Native:      native,
		Pass:        pass,
		Attachments: append([]AttachmentRef(nil), attachments...),
		Width:       width, Height: height, Layers: layers,
	}
	pass.AddRef()
	return f, nil
}

// AddRef increments the reference count and returns f.
func (f *Framebuffer) AddRef() *Framebuffer { f.addRef(); return f }

// Release decrements the reference count, destroying the backend
// framebuffer and releasing the owned RenderPass reference on the
// last reference.
func (f *Framebuffer) Release() {
	if f.release() {
		f.Pass.Release()
	}
}

// RenderSurface is a ref-counted presentable surface (window/view
// backed swapchain image).
type RenderSurface struct {
	handle
	Native   any
	Name     string
	Width    int
	Height   int
	Usage    backend.Usage
	Rotation backend.Rotation
}

// NewRenderSurface wraps a backend-native surface handle.
func NewRenderSurface(native any, name string, width, height int, usage backend.Usage, destroy func()) *RenderSurface {
	return &RenderSurface{handle: newHandle(destroy), Native: native, Name: name, Width: width, Height: height, Usage: usage}
}

// AddRef increments the reference count and returns s.
func (s *RenderSurface) AddRef() *RenderSurface { s.addRef(); return s }

// Release decrements the reference count, destroying the backend
// surface on the last reference.
func (s *RenderSurface) Release() { s.release() }

// Shader is a ref-counted compiled shader module.
type Shader struct {
	handle
	Native any
	Stage  backend.Stage
	Name   string
}

// NewShader wraps a backend-native shader module handle.
func NewShader(native any, stage backend.Stage, name string, destroy func()) *Shader {
	return &Shader{handle: newHandle(destroy), Native: native, Stage: stage, Name: name}
}

// AddRef increments the reference count and returns s.
func (s *Shader) AddRef() *Shader { s.addRef(); return s }

// Release decrements the reference count, destroying the backend
// shader module on the last reference.
func (s *Shader) Release() { s.release() }
