// Package backend defines the vtable the render-graph core calls
// through, plus the resource-description types (formats, usage masks,
// stage/access masks) shared by every concrete GPU backend.
//
// The core never talks to OpenGL/Vulkan/Metal directly; every backend
// call goes through a Functions table supplied at Renderer
// construction, mirroring the GPU/CmdBuffer interface split in
// driver/core.go but collapsed into one function-pointer struct since
// spec.md §6 specifies an explicit vtable rather than a Go interface
// per resource kind.
package backend

import "context"

// MaxAttachments bounds the number of attachments a single render
// pass may declare, resolving spec.md's open MAX_ATTACHMENTS question.
const MaxAttachments = 8

// ExternalSubpass and NoAttachment are reserved sentinels for
// subpass dependency endpoints and unused attachment references.
const (
	ExternalSubpass = ^uint32(0)
	NoAttachment    = ^uint32(0)
)

// Usage is a bitmask of valid uses for a GfxBuffer, Texture,
// Renderbuffer, or RenderSurface.
type Usage uint32

const (
	UsageIndirectDraw Usage = 1 << iota
	UsageIndirectDispatch
	UsageUniformBlock
	UsageUniformBuffer
	UsageTextureBuffer
	UsageImageBuffer
	UsageCopyFrom
	UsageCopyTo
	UsageOffscreenContinue
	UsageClear
	UsageBlitFrom
	UsageBlitTo
	UsageContinue
	UsageBlitColorFrom
	UsageBlitColorTo
	UsageBlitDepthStencilFrom
	UsageBlitDepthStencilTo
	UsageInput
	UsageColor
	UsageDepthStencil
)

// Has reports whether u includes every bit in mask.
func (u Usage) Has(mask Usage) bool { return u&mask == mask }

// PixelFormat identifies a render-target-compatible pixel layout.
type PixelFormat int

const (
	FormatUnknown PixelFormat = iota
	FormatR8G8B8A8UNorm
	FormatB8G8R8A8UNorm
	FormatR16G16B16A16Float
	FormatR32G32B32A32Float
	FormatD16UNorm
	FormatD32Float
	FormatD24UNormS8UInt
	FormatD32FloatS8UInt
)

// IsDepthStencil reports whether f carries depth and/or stencil data.
func (f PixelFormat) IsDepthStencil() bool {
	switch f {
	case FormatD16UNorm, FormatD32Float, FormatD24UNormS8UInt, FormatD32FloatS8UInt:
		return true
	default:
		return false
	}
}

// Dimension is a texture's dimensionality.
type Dimension int

const (
	Dim1D Dimension = iota
	Dim2D
	Dim3D
	DimCube
)

// LoadOp selects what a render pass does with an attachment's
// contents when a subpass first references it.
type LoadOp int

const (
	LoadOpLoad LoadOp = iota
	LoadOpClear
	LoadOpDontCare
)

// StoreOp selects what a render pass does with an attachment's
// contents after the last subpass that references it.
type StoreOp int

const (
	StoreOpStore StoreOp = iota
	StoreOpDontCare
)

// Rotation is a render surface's pre-rotation, in multiples of 90°.
type Rotation int

const (
	Rotate0 Rotation = iota
	Rotate90
	Rotate180
	Rotate270
)

// Stage is a bitmask of pipeline stages used by subpass dependencies
// and memory barriers.
type Stage uint32

const (
	StagePreFragmentTests Stage = 1 << iota
	StagePostFragmentTests
	StageFragmentShader
	StageColorOutput
	StageAllGraphics
)

// Access is a bitmask of memory access types used by subpass
// dependencies and memory barriers.
type Access uint32

const (
	AccessInputAttachmentRead Access = 1 << iota
	AccessColorAttachmentRead
	AccessColorAttachmentWrite
	AccessDepthStencilAttachmentRead
	AccessDepthStencilAttachmentWrite
)

// VSyncMode controls presentation pacing.
type VSyncMode int

const (
	VSyncDisabled VSyncMode = iota
	VSyncAdaptive
	VSyncEnabled
)

// ProjectionOptions is a bitmask of projection-matrix conventions a
// backend requires.
type ProjectionOptions uint32

const (
	ProjectionHalfDepth ProjectionOptions = 1 << iota
	ProjectionInvertY
	ProjectionReverseZ
)

// Capabilities enumerates the optional GPU features the validation
// layer consults.
type Capabilities struct {
	HasGeometryShaders                bool
	HasTessellationShaders            bool
	HasInstancedDrawing               bool
	HasStartInstance                  bool
	HasIndependentBlend               bool
	HasDualSrcBlend                   bool
	HasLogicOps                       bool
	HasSampleShading                  bool
	HasDepthBounds                    bool
	HasDepthClamp                     bool
	HasDepthBiasClamp                 bool
	HasNativeMultidraw                bool
	HasDepthStencilMultisampleResolve bool
	SingleBuffer                      bool
	Stereoscopic                      bool
	ClipHalfDepth                     bool
	ClipInvertY                       bool
	StrictRenderPassSecondaryCommands bool
	ProjectionOptions                 ProjectionOptions
}

// Options configures Renderer construction (spec.md §6's
// "Configuration options"). Fields not meaningful on a given platform
// are left at their zero value.
type Options struct {
	ApplicationName    string
	ApplicationVersion uint32

	RedBits, GreenBits, BlueBits, AlphaBits int
	DepthBits, StencilBits                 int
	ForcedColorFormat                      PixelFormat
	ForcedDepthStencilFormat               PixelFormat

	SurfaceSamples int
	DefaultSamples int

	SingleBuffer       bool
	ReverseZ           bool
	SRGB               bool
	PreferHalfDepth    bool
	Stereoscopic       bool
	Debug              bool
	MaxResourceThreads int
	ShaderCacheDir     string
	DeviceUUID         [16]byte
	DeviceName         string
}

// Functions is the backend vtable the Renderer calls through. Every
// method returns an error instead of the original library's
// bool-plus-errno pair. Each group corresponds to one row of the
// table in spec.md §6.
type Functions struct {
	// Lifecycle
	Destroy             func(ctx context.Context) error
	BeginFrame          func(ctx context.Context) error
	EndFrame            func(ctx context.Context) error
	Flush               func(ctx context.Context) error
	WaitUntilIdle       func(ctx context.Context) error
	RestoreGlobalState  func(ctx context.Context) error
	SetExtraDebugging   func(enabled bool) error

	// Capability tuning
	SetSurfaceSamples     func(samples int) error
	SetDefaultSamples     func(samples int) error
	SetVSync              func(mode VSyncMode) error
	SetDefaultAnisotropy  func(aniso float32) error

	// Resources
	CreateRenderSurface     func(name string, osHandle any, usage Usage, widthHint, heightHint int) (any, int, int, error)
	DestroyRenderSurface    func(surface any) error
	UpdateRenderSurface     func(surface any, widthHint, heightHint int) (int, int, bool, error)
	BeginRenderSurface      func(surface any) error
	EndRenderSurface        func(surface any) error
	SwapRenderSurfaceBuffers func(surfaces []any) error

	// Command buffers
	CreateCommandBufferPool  func() (any, error)
	DestroyCommandBufferPool func(pool any) error
	ResetCommandBufferPool   func(pool any) error
	BeginCommandBuffer       func(pool any) (any, error)
	BeginSecondaryCommandBuffer func(pool any) (any, error)
	EndCommandBuffer         func(cb any) error
	SubmitCommandBuffer      func(primary, secondary any) error

	// Render passes
	CreateRenderPass  func(desc any) (any, error)
	DestroyRenderPass func(pass any) error
	BeginRenderPass   func(cb, pass, framebuffer any, clearValues []ClearValue) error
	NextRenderSubpass func(cb any) error
	EndRenderPass     func(cb any) error

	// Recording
	SetViewport          func(cb any, viewport Box3f) error
	ClearAttachments     func(cb any, clears []AttachmentClear) error
	Draw                 func(cb any, vertexCount, instanceCount, firstVertex, firstInstance uint32) error
	DrawIndexed          func(cb any, indexCount, instanceCount, firstIndex uint32, vertexOffset int32, firstInstance uint32) error
	DrawIndirect         func(cb any, buffer any, offset uint64, count, stride uint32) error
	DrawIndexedIndirect  func(cb any, buffer any, offset uint64, count, stride uint32) error
	DispatchCompute      func(cb any, x, y, z uint32) error
	DispatchComputeIndirect func(cb any, buffer any, offset uint64) error
	BlitSurface          func(cb any, from, to any, regions []BlitRegion) error
	PushDebugGroup       func(cb any, name string) error
	PopDebugGroup        func(cb any) error
	MemoryBarrier        func(cb any, before, after Stage, beforeAccess, afterAccess Access) error
}

// Box3f is an axis-aligned viewport/scissor volume in normalized
// device coordinates plus depth range.
type Box3f struct {
	X, Y, Width, Height   float32
	MinDepth, MaxDepth    float32
}

// Box2f is an axis-aligned rectangle, used for scissor and blit
// regions.
type Box2f struct {
	X, Y, Width, Height float32
}

// ClearValue is the clear color or depth/stencil value for one
// attachment.
type ClearValue struct {
	Color   [4]float32
	Depth   float32
	Stencil uint32
}

// AttachmentClear pairs a clear value with the attachment it targets
// and the region within the framebuffer to clear.
type AttachmentClear struct {
	Attachment uint32
	Value      ClearValue
	Region     Box2f
}

// BlitRegion describes one source-to-destination region of a
// blitSurface call.
type BlitRegion struct {
	SrcX, SrcY, SrcWidth, SrcHeight int
	DstX, DstY, DstWidth, DstHeight int
	SrcLayer, DstLayer              int
}
