package camera

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b, tol float32) bool {
	return math.Abs(float64(a-b)) <= float64(tol)
}

func TestNew(t *testing.T) {
	cam := New(1280, 720, 60, 75)

	eye := cam.Eye()
	if !near(eye.X(), 0, 1e-4) || !near(eye.Y(), 0, 1e-4) || !near(eye.Z(), 60, 1e-4) {
		t.Errorf("expected eye at (0,0,60), got %v", eye)
	}
	if cam.Distance != 60 {
		t.Errorf("expected distance 60, got %f", cam.Distance)
	}
}

func TestTargetProjectsToCenter(t *testing.T) {
	cam := New(1280, 720, 60, 75)

	sx, sy, ok := cam.WorldToScreen(mgl32.Vec3{})
	if !ok {
		t.Fatal("target should be visible")
	}
	if !near(sx, 640, 0.01) || !near(sy, 360, 0.01) {
		t.Errorf("expected screen center (640, 360), got (%f, %f)", sx, sy)
	}
}

func TestProjectionOrientation(t *testing.T) {
	cam := New(1280, 720, 60, 75)

	// +X is screen right, +Y is screen up when looking down -Z
	sx, _, ok := cam.WorldToScreen(mgl32.Vec3{5, 0, 0})
	if !ok || sx <= 640 {
		t.Errorf("+X should be right of center, got x=%f ok=%v", sx, ok)
	}
	_, sy, ok := cam.WorldToScreen(mgl32.Vec3{0, 5, 0})
	if !ok || sy >= 360 {
		t.Errorf("+Y should be above center, got y=%f ok=%v", sy, ok)
	}
}

func TestBehindCameraNotVisible(t *testing.T) {
	cam := New(1280, 720, 60, 75)

	if _, _, ok := cam.WorldToScreen(mgl32.Vec3{0, 0, 100}); ok {
		t.Error("point behind the eye should not be visible")
	}
}

func TestCloserPointsSpreadFurther(t *testing.T) {
	cam := New(1280, 720, 60, 75)
	vp := cam.ViewProjection()

	farX, _, farW, _ := cam.Project(vp, mgl32.Vec3{5, 0, -20})
	nearX, _, nearW, _ := cam.Project(vp, mgl32.Vec3{5, 0, 20})
	if nearW >= farW {
		t.Errorf("near w %f should be less than far w %f", nearW, farW)
	}
	if nearX-640 <= farX-640 {
		t.Errorf("nearer point should be further from center: near=%f far=%f", nearX, farX)
	}
}

func TestOrbitClampsElevation(t *testing.T) {
	cam := New(1280, 720, 60, 75)

	cam.Orbit(0, 10000)
	if cam.Elevation != maxElevation {
		t.Errorf("expected elevation clamped to %f, got %f", maxElevation, cam.Elevation)
	}
	cam.Orbit(0, -20000)
	if cam.Elevation != -maxElevation {
		t.Errorf("expected elevation clamped to %f, got %f", -maxElevation, cam.Elevation)
	}

	az := cam.Azimuth
	cam.Orbit(100, 0)
	if !near(cam.Azimuth, az-0.5, 1e-5) {
		t.Errorf("expected azimuth %f, got %f", az-0.5, cam.Azimuth)
	}
}

func TestZoomClamping(t *testing.T) {
	cam := New(1280, 720, 60, 75)

	tests := []struct {
		name   string
		factor float32
		want   float32
	}{
		{"zoom in", 0.5, 30},
		{"zoom in past min", 0.001, 5},
		{"zoom out past max", 1e6, 400},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cam.Distance = 60
			cam.ZoomBy(tt.factor)
			if !near(cam.Distance, tt.want, 1e-4) {
				t.Errorf("expected distance %f, got %f", tt.want, cam.Distance)
			}
		})
	}
}

func TestReset(t *testing.T) {
	cam := New(1280, 720, 60, 75)
	cam.Orbit(300, 120)
	cam.ZoomBy(2)
	cam.Reset()

	if cam.Distance != 60 || cam.Elevation != 0 || !near(cam.Azimuth, math.Pi/2, 1e-6) {
		t.Errorf("reset failed: az=%f el=%f d=%f", cam.Azimuth, cam.Elevation, cam.Distance)
	}
}

func TestResizeChangesAspect(t *testing.T) {
	cam := New(1280, 720, 60, 75)
	cam.Resize(1920, 1080)
	if !near(cam.Aspect(), 16.0/9.0, 1e-5) {
		t.Errorf("aspect = %f", cam.Aspect())
	}

	sx, sy, _ := cam.WorldToScreen(mgl32.Vec3{})
	if !near(sx, 960, 0.01) || !near(sy, 540, 0.01) {
		t.Errorf("expected (960,540), got (%f,%f)", sx, sy)
	}
}
