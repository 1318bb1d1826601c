// Package renderpass derives the default subpass dependencies a
// RenderPass needs when the caller does not supply its own, following
// the usage-to-stage/access mapping in spec.md §4.6.
package renderpass

import (
	"github.com/akb825/DeepSea-sub003/gfx/backend"
	"github.com/akb825/DeepSea-sub003/gfx/resource"
)

// usageStageAccess maps an attachment's role within a subpass to the
// pipeline stage and access flags a dependency on it must wait for.
func usageStageAccess(sp resource.SubpassInfo, attachment uint32) (stage backend.Stage, access backend.Access, ok bool) {
	for _, idx := range sp.InputAttachments {
		if idx == attachment {
			return backend.StageFragmentShader, backend.AccessInputAttachmentRead, true
		}
	}
	for _, idx := range sp.ColorAttachments {
		if idx == attachment {
			return backend.StageColorOutput, backend.AccessColorAttachmentRead | backend.AccessColorAttachmentWrite, true
		}
	}
	for _, idx := range sp.ResolveAttachments {
		if idx == attachment {
			return backend.StageColorOutput, backend.AccessColorAttachmentRead | backend.AccessColorAttachmentWrite, true
		}
	}
	if sp.DepthStencilAttachment == attachment {
		return backend.StagePreFragmentTests | backend.StagePostFragmentTests,
			backend.AccessDepthStencilAttachmentRead | backend.AccessDepthStencilAttachmentWrite, true
	}
	return 0, 0, false
}

// subpassAttachments returns every attachment index subpass i
// references, in no particular order, deduplicated.
func subpassAttachments(sp resource.SubpassInfo) []uint32 {
	seen := make(map[uint32]bool)
	var out []uint32
	add := func(idx uint32) {
		if idx == backend.NoAttachment || seen[idx] {
			return
		}
		seen[idx] = true
		out = append(out, idx)
	}
	for _, idx := range sp.InputAttachments {
		add(idx)
	}
	for _, idx := range sp.ColorAttachments {
		add(idx)
	}
	for _, idx := range sp.ResolveAttachments {
		add(idx)
	}
	add(sp.DepthStencilAttachment)
	return out
}

// subpassUsage unions the stage and access flags for every attachment
// subpass i references. A dependency touching subpass i always
// synchronizes against this full set, not just the one attachment
// that triggered the edge: the barrier is a pipeline stage boundary,
// not a per-resource one.
func subpassUsage(sp resource.SubpassInfo) (stage backend.Stage, access backend.Access) {
	for _, a := range subpassAttachments(sp) {
		s, ac, ok := usageStageAccess(sp, a)
		if ok {
			stage |= s
			access |= ac
		}
	}
	return
}

type pairKey struct{ src, dst uint32 }

// attachmentRole is the set of roles a subpass uses one attachment as.
type attachmentRole int

const (
	roleInput attachmentRole = 1 << iota
	roleColor
	roleDepthStencil
)

// attachmentRoleOf reports which roles subpass sp uses attachment idx
// as (zero if sp does not reference it at all).
func attachmentRoleOf(sp resource.SubpassInfo, idx uint32) attachmentRole {
	var r attachmentRole
	for _, a := range sp.InputAttachments {
		if a == idx {
			r |= roleInput
		}
	}
	for _, a := range sp.ColorAttachments {
		if a == idx {
			r |= roleColor
		}
	}
	for _, a := range sp.ResolveAttachments {
		if a == idx {
			r |= roleColor
		}
	}
	if idx != backend.NoAttachment && sp.DepthStencilAttachment == idx {
		r |= roleDepthStencil
	}
	return r
}

// dependencyMasks computes the stage/access masks an internal
// dependency from srcSp to dstSp needs, following
// original_source/.../RenderPass.c's subpass-dependency derivation: the
// producer (src) side is scoped to the attachments srcSp and dstSp
// actually share, not srcSp's whole usage, and it emits write-only
// access by default, adding the matching read bit back in only when
// dstSp reuses that same attachment in the same role. A dstSp
// attachment that srcSp used as an input attachment instead makes src
// wait on that input read. The consumer (dst) side is the union of
// everything dstSp itself does, per spec.md §4.6 scenario C.
func dependencyMasks(srcSp, dstSp resource.SubpassInfo) (srcStage backend.Stage, srcAccess backend.Access, dstStage backend.Stage, dstAccess backend.Access) {
	var writesPrevInput bool
	var prevUsage, curUsage attachmentRole

	check := func(idx uint32, curRole attachmentRole) {
		if idx == backend.NoAttachment {
			return
		}
		prevRole := attachmentRoleOf(srcSp, idx)
		if prevRole == 0 {
			return
		}
		if prevRole&roleInput != 0 && curRole != roleInput {
			writesPrevInput = true
		}
		prevUsage |= prevRole
		curUsage |= curRole
	}

	for _, idx := range dstSp.InputAttachments {
		check(idx, roleInput)
	}
	for _, idx := range dstSp.ColorAttachments {
		check(idx, roleColor)
	}
	for _, idx := range dstSp.ResolveAttachments {
		check(idx, roleColor)
	}
	check(dstSp.DepthStencilAttachment, roleDepthStencil)

	if writesPrevInput {
		srcStage |= backend.StageFragmentShader
		srcAccess |= backend.AccessInputAttachmentRead
	}
	if prevUsage&roleColor != 0 {
		srcStage |= backend.StageColorOutput
		srcAccess |= backend.AccessColorAttachmentWrite
		if curUsage&roleColor != 0 {
			srcAccess |= backend.AccessColorAttachmentRead
		}
	}
	if prevUsage&roleDepthStencil != 0 {
		srcStage |= backend.StagePreFragmentTests | backend.StagePostFragmentTests
		srcAccess |= backend.AccessDepthStencilAttachmentWrite
		if curUsage&roleDepthStencil != 0 {
			srcAccess |= backend.AccessDepthStencilAttachmentRead
		}
	}

	dstStage, dstAccess = subpassUsage(dstSp)
	return
}

// DeriveDefaultDependencies computes the subpass dependency list for a
// render pass whose subpasses share attachments, per spec.md §4.6
// scenario C: for every attachment, each subpass that reads or writes
// it depends on the nearest earlier subpass that did, and the nearest
// later subpass depends on it in turn. An attachment with no earlier
// writer gets an implicit dependency from backend.ExternalSubpass, and
// one with no later reader gets an implicit dependency to
// backend.ExternalSubpass. Every generated dependency is region-scoped
// (ByRegion: true).
func DeriveDefaultDependencies(subpasses []resource.SubpassInfo) []resource.SubpassDependency {
	lastToucher := make(map[uint32]int)
	internalPairs := make(map[pairKey]bool)
	needsExternalIn := make(map[uint32]bool)
	isLastToucherOf := make(map[uint32]bool)

	for i, sp := range subpasses {
		for _, a := range subpassAttachments(sp) {
			if prev, exists := lastToucher[a]; exists {
				internalPairs[pairKey{uint32(prev), uint32(i)}] = true
			} else {
				needsExternalIn[uint32(i)] = true
			}
			lastToucher[a] = i
		}
	}
	for _, i := range lastToucher {
		isLastToucherOf[uint32(i)] = true
	}

	var deps []resource.SubpassDependency

	for i := range subpasses {
		if needsExternalIn[uint32(i)] {
			dstStage, dstAccess := subpassUsage(subpasses[i])
			deps = append(deps, resource.SubpassDependency{
				SrcSubpass: backend.ExternalSubpass,
				DstSubpass: uint32(i), DstStage: dstStage, DstAccess: dstAccess,
				ByRegion: true,
			})
		}
	}
	for pair := range internalPairs {
		srcStage, srcAccess, dstStage, dstAccess := dependencyMasks(subpasses[pair.src], subpasses[pair.dst])
		deps = append(deps, resource.SubpassDependency{
			SrcSubpass: pair.src, SrcStage: srcStage, SrcAccess: srcAccess,
			DstSubpass: pair.dst, DstStage: dstStage, DstAccess: dstAccess,
			ByRegion: true,
		})
	}
	for i := range subpasses {
		if isLastToucherOf[uint32(i)] {
			srcStage, srcAccess := subpassUsage(subpasses[i])
			deps = append(deps, resource.SubpassDependency{
				SrcSubpass: uint32(i), SrcStage: srcStage, SrcAccess: srcAccess,
				DstSubpass: backend.ExternalSubpass,
				ByRegion:   true,
			})
		}
	}

	return deps
}
