package renderer

import (
	"github.com/akb825/DeepSea-sub003/core/dserr"
	"github.com/akb825/DeepSea-sub003/gfx/backend"
	"github.com/akb825/DeepSea-sub003/gfx/resource"
)

// CreateRenderSurface asks the backend to create an OS-backed
// presentable surface, reads back its actual size, and records an
// initial rotation of 0°. Main-goroutine only (spec.md §4.9, §5).
func (r *Renderer) CreateRenderSurface(name string, osHandle any, usage backend.Usage, widthHint, heightHint int) (*resource.RenderSurface, error) {
	const op = "renderer.Renderer.CreateRenderSurface"
	if err := r.requireMainGoroutine(op); err != nil {
		return nil, err
	}
	if r.fns.CreateRenderSurface == nil {
		return nil, dserr.New(op, dserr.PermissionDenied)
	}
	native, width, height, err := r.fns.CreateRenderSurface(name, osHandle, usage, widthHint, heightHint)
	if err != nil {
		return nil, err
	}
	return resource.NewRenderSurface(native, name, width, height, usage, func() {
		if r.fns.DestroyRenderSurface != nil {
			_ = r.fns.DestroyRenderSurface(native)
		}
	}), nil
}

// DestroyRenderSurface releases the surface's last reference, invoking
// the backend destructor. Main-goroutine only.
func (r *Renderer) DestroyRenderSurface(surface *resource.RenderSurface) error {
	const op = "renderer.Renderer.DestroyRenderSurface"
	if err := r.requireMainGoroutine(op); err != nil {
		return err
	}
	surface.Release()
	return nil
}

// UpdateRenderSurface re-queries the surface's actual size from the
// backend, updating Width/Height in place. It reports whether the size
// changed. Main-goroutine only.
func (r *Renderer) UpdateRenderSurface(surface *resource.RenderSurface, widthHint, heightHint int) (bool, error) {
	const op = "renderer.Renderer.UpdateRenderSurface"
	if err := r.requireMainGoroutine(op); err != nil {
		return false, err
	}
	if r.fns.UpdateRenderSurface == nil {
		return false, nil
	}
	width, height, changed, err := r.fns.UpdateRenderSurface(surface.Native, widthHint, heightHint)
	if err != nil {
		return false, err
	}
	if changed {
		surface.Width = width
		surface.Height = height
	}
	return changed, nil
}

// BeginDraw records surface as the command buffer's bound surface and
// pushes a dynamic GPU-profile scope named "Surface: <name>".
func (cb *CommandBuffer) BeginDraw(surface *resource.RenderSurface) error {
	const op = "renderer.CommandBuffer.BeginDraw"
	if cb.BoundSurface != nil {
		return dserr.New(op, dserr.PermissionDenied)
	}
	r := cb.Renderer
	if r.fns.BeginRenderSurface != nil {
		if err := r.fns.BeginRenderSurface(surface.Native); err != nil {
			return err
		}
	}
	swapCount := r.Profiler.SwapCounter()
	cb.profile.beginSurfaceIndex = r.Profiler.Begin("Surface: "+surface.Name, "Draw", swapCount)
	cb.profile.beginSurfaceSwapCount = swapCount
	cb.BoundSurface = surface
	return nil
}

// EndDraw ends the surface's profile scope and clears the bound
// surface.
func (cb *CommandBuffer) EndDraw() error {
	const op = "renderer.CommandBuffer.EndDraw"
	surface := cb.BoundSurface
	if surface == nil {
		return dserr.New(op, dserr.PermissionDenied)
	}
	r := cb.Renderer
	if r.fns.EndRenderSurface != nil {
		if err := r.fns.EndRenderSurface(surface.Native); err != nil {
			return err
		}
	}
	swapCount := r.Profiler.SwapCounter()
	r.Profiler.End("Surface: "+surface.Name, "Draw", cb.profile.beginSurfaceIndex, cb.profile.beginSurfaceSwapCount, swapCount)
	cb.BoundSurface = nil
	return nil
}

// makeRotationMatrix22 returns the 2x2 rotation matrix (row-major) for
// a render surface's pre-rotation. Only the four quarter-turn values
// are valid; anything else fails InvalidArgument.
func makeRotationMatrix22(rotation backend.Rotation) ([2][2]float32, error) {
	const op = "renderer.makeRotationMatrix22"
	switch rotation {
	case backend.Rotate0:
		return [2][2]float32{{1, 0}, {0, 1}}, nil
	case backend.Rotate90:
		return [2][2]float32{{0, -1}, {1, 0}}, nil
	case backend.Rotate180:
		return [2][2]float32{{-1, 0}, {0, -1}}, nil
	case backend.Rotate270:
		return [2][2]float32{{0, 1}, {-1, 0}}, nil
	default:
		return [2][2]float32{}, dserr.New(op, dserr.InvalidArgument)
	}
}

// makeRotationMatrix44 returns the 4x4 homogeneous matrix (row-major)
// embedding makeRotationMatrix22's rotation in the X/Y plane, identity
// elsewhere. Only the four quarter-turn values are valid.
func makeRotationMatrix44(rotation backend.Rotation) ([4][4]float32, error) {
	const op = "renderer.makeRotationMatrix44"
	r2, err := makeRotationMatrix22(rotation)
	if err != nil {
		return [4][4]float32{}, dserr.New(op, dserr.InvalidArgument)
	}
	return [4][4]float32{
		{r2[0][0], r2[0][1], 0, 0},
		{r2[1][0], r2[1][1], 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}, nil
}
