package resource

import (
	"github.com/akb825/DeepSea-sub003/core/dserr"
	"github.com/akb825/DeepSea-sub003/gfx/backend"
)

// AttachmentInfo describes one render pass attachment slot: its
// format, sample count, and load/store behavior for both the color
// (or depth) and stencil planes.
type AttachmentInfo struct {
	Format  backend.PixelFormat
	Samples int
	Load    [2]backend.LoadOp
	Store   [2]backend.StoreOp
	Usage   backend.Usage
}

// SubpassInfo lists the attachment indices one subpass reads and
// writes. Indices into Color and the DepthStencil field reference
// RenderPass.Attachments; backend.NoAttachment marks an unused slot.
type SubpassInfo struct {
	InputAttachments []uint32
	ColorAttachments []uint32
	ResolveAttachments []uint32
	DepthStencilAttachment uint32
	DepthStencilResolve    bool
}

// SubpassDependency orders GPU work between two subpasses (or between
// a subpass and work outside the render pass, via
// backend.ExternalSubpass).
type SubpassDependency struct {
	SrcSubpass  uint32
	SrcStage    backend.Stage
	SrcAccess   backend.Access
	DstSubpass  uint32
	DstStage    backend.Stage
	DstAccess   backend.Access
	ByRegion    bool
}

// RenderPass is a ref-counted compiled render pass: an ordered list of
// attachments, the subpasses that read and write them, and the
// dependencies ordering work between subpasses.
type RenderPass struct {
	handle
	Native       any
	Attachments  []AttachmentInfo
	Subpasses    []SubpassInfo
	Dependencies []SubpassDependency
}

// NewRenderPass validates attachment and subpass counts and wraps a
// backend-native render pass handle. Dependencies should already be
// fully resolved (see package renderpass for the default-dependency
// derivation algorithm) before calling this constructor.
func NewRenderPass(native any, attachments []AttachmentInfo, subpasses []SubpassInfo, deps []SubpassDependency, maxColorAttachments int, destroy func()) (*RenderPass, error) {
	const op = "resource.NewRenderPass"
	if len(attachments) > backend.MaxAttachments {
		return nil, dserr.New(op, dserr.OutOfRange)
	}
	if len(subpasses) == 0 {
		return nil, dserr.New(op, dserr.InvalidArgument)
	}
	for _, a := range attachments {
		if a.Samples <= 0 {
			return nil, dserr.New(op, dserr.InvalidArgument)
		}
	}
	for _, sp := range subpasses {
		if len(sp.ColorAttachments) > maxColorAttachments {
			return nil, dserr.New(op, dserr.OutOfRange)
		}
		var subpassSamples int
		checkAttachment := func(idx uint32, wantDepthStencil bool) error {
			if idx == backend.NoAttachment {
				return nil
			}
			if int(idx) >= len(attachments) {
				return dserr.New(op, dserr.OutOfRange)
			}
			a := attachments[idx]
			if a.Format.IsDepthStencil() != wantDepthStencil {
				return dserr.New(op, dserr.InvalidArgument)
			}
			if subpassSamples == 0 {
				subpassSamples = a.Samples
			} else if subpassSamples != a.Samples {
				return dserr.New(op, dserr.InvalidArgument)
			}
			return nil
		}
		for _, idx := range sp.ColorAttachments {
			if err := checkAttachment(idx, false); err != nil {
				return nil, err
			}
		}
		if err := checkAttachment(sp.DepthStencilAttachment, true); err != nil {
			return nil, err
		}
	}
	for _, d := range deps {
		if d.SrcSubpass != backend.ExternalSubpass && int(d.SrcSubpass) >= len(subpasses) {
			return nil, dserr.New(op, dserr.OutOfRange)
		}
		if d.DstSubpass != backend.ExternalSubpass && int(d.DstSubpass) >= len(subpasses) {
			return nil, dserr.New(op, dserr.OutOfRange)
		}
		if d.SrcSubpass != backend.ExternalSubpass && d.DstSubpass != backend.ExternalSubpass {
			if d.SrcSubpass > d.DstSubpass {
				return nil, dserr.New(op, dserr.InvalidArgument)
			}
			if d.SrcSubpass == d.DstSubpass && !d.ByRegion {
				return nil, dserr.New(op, dserr.InvalidArgument)
			}
		}
	}

	rp := &RenderPass{
		handle:       newHandle(destroy),
		Native:       native,
		Attachments:  append([]AttachmentInfo(nil), attachments...),
		Subpasses:    append([]SubpassInfo(nil), subpasses...),
		Dependencies: append([]SubpassDependency(nil), deps...),
	}
	return rp, nil
}

// AddRef increments the reference count and returns p.
func (p *RenderPass) AddRef() *RenderPass { p.addRef(); return p }

// Release decrements the reference count, destroying the backend
// render pass on the last reference.
func (p *RenderPass) Release() { p.release() }
