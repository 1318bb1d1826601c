package renderer

import (
	"testing"

	"github.com/akb825/DeepSea-sub003/core/dserr"
	"github.com/akb825/DeepSea-sub003/gfx/backend"
)

func TestCreateRenderSurfaceReadsBackActualSize(t *testing.T) {
	destroyed := false
	fns := backend.Functions{
		CreateRenderSurface: func(name string, osHandle any, usage backend.Usage, widthHint, heightHint int) (any, int, int, error) {
			return "native-surface", 800, 600, nil
		},
		DestroyRenderSurface: func(surface any) error {
			destroyed = true
			return nil
		},
	}
	r := New(fns, backend.Options{}, backend.Capabilities{}, 0)
	surface, err := r.CreateRenderSurface("main", nil, backend.UsageBlitTo, 1920, 1080)
	if err != nil {
		t.Fatal(err)
	}
	if surface.Width != 800 || surface.Height != 600 {
		t.Fatalf("size = %dx%d, want 800x600", surface.Width, surface.Height)
	}
	if err := r.DestroyRenderSurface(surface); err != nil {
		t.Fatal(err)
	}
	if !destroyed {
		t.Fatal("expected backend destructor to run")
	}
}

func TestUpdateRenderSurfaceReportsChange(t *testing.T) {
	fns := backend.Functions{
		CreateRenderSurface: func(name string, osHandle any, usage backend.Usage, widthHint, heightHint int) (any, int, int, error) {
			return "native-surface", 800, 600, nil
		},
		UpdateRenderSurface: func(surface any, widthHint, heightHint int) (int, int, bool, error) {
			return 1024, 768, true, nil
		},
	}
	r := New(fns, backend.Options{}, backend.Capabilities{}, 0)
	surface, err := r.CreateRenderSurface("main", nil, 0, 800, 600)
	if err != nil {
		t.Fatal(err)
	}
	changed, err := r.UpdateRenderSurface(surface, 1024, 768)
	if err != nil {
		t.Fatal(err)
	}
	if !changed {
		t.Fatal("expected changed = true")
	}
	if surface.Width != 1024 || surface.Height != 768 {
		t.Fatalf("size = %dx%d, want 1024x768", surface.Width, surface.Height)
	}
}

func TestBeginEndDrawBindsSurface(t *testing.T) {
	fns := backend.Functions{
		CreateRenderSurface: func(name string, osHandle any, usage backend.Usage, widthHint, heightHint int) (any, int, int, error) {
			return "native-surface", 800, 600, nil
		},
	}
	r := New(fns, backend.Options{}, backend.Capabilities{}, 0)
	surface, err := r.CreateRenderSurface("main", nil, 0, 800, 600)
	if err != nil {
		t.Fatal(err)
	}
	cb := r.MainCommandBuffer
	if err := cb.BeginDraw(surface); err != nil {
		t.Fatal(err)
	}
	if cb.BoundSurface != surface {
		t.Fatal("expected BoundSurface to be set")
	}
	if err := cb.EndDraw(); err != nil {
		t.Fatal(err)
	}
	if cb.BoundSurface != nil {
		t.Fatal("expected BoundSurface to be cleared")
	}
}

func TestEndDrawWithoutBeginFails(t *testing.T) {
	r := New(backend.Functions{}, backend.Options{}, backend.Capabilities{}, 0)
	if err := r.MainCommandBuffer.EndDraw(); dserr.KindOf(err) != dserr.PermissionDenied {
		t.Fatalf("err = %v, want PermissionDenied", err)
	}
}

func TestMakeRotationMatrix22(t *testing.T) {
	cases := []struct {
		rotation backend.Rotation
		want     [2][2]float32
	}{
		{backend.Rotate0, [2][2]float32{{1, 0}, {0, 1}}},
		{backend.Rotate90, [2][2]float32{{0, -1}, {1, 0}}},
		{backend.Rotate180, [2][2]float32{{-1, 0}, {0, -1}}},
		{backend.Rotate270, [2][2]float32{{0, 1}, {-1, 0}}},
	}
	for _, c := range cases {
		got, err := makeRotationMatrix22(c.rotation)
		if err != nil {
			t.Fatalf("rotation %v: unexpected error %v", c.rotation, err)
		}
		if got != c.want {
			t.Fatalf("rotation %v: got %v, want %v", c.rotation, got, c.want)
		}
	}
}

func TestMakeRotationMatrixRejectsInvalidRotation(t *testing.T) {
	if _, err := makeRotationMatrix22(backend.Rotation(99)); dserr.KindOf(err) != dserr.InvalidArgument {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
	if _, err := makeRotationMatrix44(backend.Rotation(99)); dserr.KindOf(err) != dserr.InvalidArgument {
		t.Fatalf("err = %v, want InvalidArgument", err)
	}
}
