package scene

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"icoviewer/config"
	"icoviewer/control"
	"icoviewer/gpu"
	"icoviewer/gpu/gputest"
	"icoviewer/rendering"
	"icoviewer/rendering/shaders"
)

func newTestLoop(t *testing.T, rec *gputest.Recorder, initial config.Controls) *Loop {
	t.Helper()
	camera := rendering.NewCamera(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	l, err := NewLoop(rec, camera, shaders.Default(), initial, Options{
		Radius:     1,
		Effect:     mgl32.Vec4{1, 1, 0, 0},
		ClearColor: [4]float32{0.2, 0.2, 0.2, 1},
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	return l
}

func TestSceneReload(t *testing.T) {
	rec := gputest.New()
	panel := control.NewPanel(config.DefaultControls(), shaders.Default())
	l := newTestLoop(t, rec, panel.Snapshot())

	panel.SetTessellation(3)
	panel.LoadScene()
	if err := l.Tick(panel.Snapshot()); err != nil {
		t.Fatal(err)
	}
	first := l.Icosphere()
	if got := first.TriangleCount(); got != 1280 {
		t.Fatalf("after load scene: %d triangles, want 1280", got)
	}
	firstGeometry := first.Geometry()

	panel.SetTessellation(5)
	if err := l.Tick(panel.Snapshot()); err != nil {
		t.Fatal(err)
	}
	second := l.Icosphere()
	if got := second.TriangleCount(); got != 20480 {
		t.Fatalf("after level 5: %d triangles, want 20480", got)
	}
	if second == first {
		t.Fatal("icosphere mesh was reused instead of replaced")
	}
	if first.Live() {
		t.Error("previous icosphere still holds GPU buffers")
	}
	if first.TriangleCount() != 1280 || len(first.Geometry().Indices) != len(firstGeometry.Indices) {
		t.Error("previous icosphere was mutated")
	}

	last := rec.Draws[len(rec.Draws)-1]
	if last.Count != 20480*3 || last.IndexBuffer != second.IndexBuffer() {
		t.Errorf("last draw = count %d buffer %d", last.Count, last.IndexBuffer)
	}
	if len(rec.Misuse) != 0 {
		t.Errorf("misuse: %v", rec.Misuse)
	}
}

func TestTickWithoutChangesReusesResources(t *testing.T) {
	rec := gputest.New()
	l := newTestLoop(t, rec, config.DefaultControls())
	mesh, program := l.Icosphere(), l.Program()
	links := rec.Links

	for i := 0; i < 3; i++ {
		if err := l.Tick(config.DefaultControls()); err != nil {
			t.Fatal(err)
		}
	}
	if l.Icosphere() != mesh || l.Program() != program || rec.Links != links {
		t.Error("unchanged snapshot rebuilt resources")
	}
	if len(rec.Draws) != 3 || l.Frames() != 3 {
		t.Errorf("draws = %d, frames = %d", len(rec.Draws), l.Frames())
	}
	if got := l.Renderer().ClearColor(); got != [4]float32{0.2, 0.2, 0.2, 1} || rec.ClearRGBA != got {
		t.Errorf("clear color = %v, device %v", got, rec.ClearRGBA)
	}
}

func TestDeviceErrorFailsTick(t *testing.T) {
	rec := gputest.New()
	l := newTestLoop(t, rec, config.DefaultControls())

	rec.DeviceError = errors.New("GL_OUT_OF_MEMORY")
	err := l.Tick(config.DefaultControls())
	if !errors.Is(err, gpu.ErrDevice) || !strings.Contains(err.Error(), "GL_OUT_OF_MEMORY") {
		t.Fatalf("err = %v, want ErrDevice", err)
	}
	if l.Frames() != 0 {
		t.Error("failed frame counted")
	}

	// The error is reported once.
	if err := l.Tick(config.DefaultControls()); err != nil {
		t.Fatal(err)
	}
}

func TestDeviceErrorFailsNewLoop(t *testing.T) {
	rec := gputest.New()
	rec.DeviceError = errors.New("GL_INVALID_VALUE")
	camera := rendering.NewCamera(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	_, err := NewLoop(rec, camera, shaders.Default(), config.DefaultControls(), Options{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if !errors.Is(err, gpu.ErrDevice) {
		t.Fatalf("err = %v, want ErrDevice", err)
	}
	if rec.LiveBuffers() != 0 || rec.LivePrograms() != 0 {
		t.Errorf("left %d buffers, %d programs", rec.LiveBuffers(), rec.LivePrograms())
	}
}

func TestShaderHotSwap(t *testing.T) {
	rec := gputest.New()
	panel := control.NewPanel(config.DefaultControls(), shaders.Default())
	l := newTestLoop(t, rec, panel.Snapshot())
	previous := l.Program()
	links := rec.Links

	// Two switches of both stages between ticks.
	for _, step := range [][2]string{{"expand", "perlin"}, {"collapse", "worley"}} {
		if err := panel.SetVertexShader(step[0]); err != nil {
			t.Fatal(err)
		}
		if err := panel.SetFragmentShader(step[1]); err != nil {
			t.Fatal(err)
		}
	}
	if err := l.Tick(panel.Snapshot()); err != nil {
		t.Fatal(err)
	}

	if rec.Links != links+1 {
		t.Fatalf("links during tick = %d, want 1", rec.Links-links)
	}
	active := l.Program()
	if active == previous || active.Key() != (rendering.ProgramKey{Vertex: "collapse", Fragment: "worley"}) {
		t.Fatalf("active program = %v", active.Key())
	}
	if !previous.Disposed() {
		t.Error("previous program not disposed")
	}
	draw := rec.Draws[len(rec.Draws)-1]
	if draw.Program != active.Handle() {
		t.Errorf("drew with program %d, want %d", draw.Program, active.Handle())
	}
	for _, d := range rec.Draws {
		if d.Program == previous.Handle() {
			t.Error("previous program used after replacement")
		}
	}
	if rec.LivePrograms() != 1 {
		t.Errorf("live programs = %d, want 1", rec.LivePrograms())
	}
}

func TestFailedSwapKeepsActiveProgram(t *testing.T) {
	rec := gputest.New()
	l := newTestLoop(t, rec, config.DefaultControls())
	active := l.Program()

	rec.FailCompile = func(stage gpu.Stage, source string) string {
		if strings.Contains(source, "perlin(") {
			return "0:40: error: 'perlin' : no matching overloaded function"
		}
		return ""
	}
	snap := config.DefaultControls()
	snap.FragmentShader = "perlin"

	err := l.Tick(snap)
	var ce *gpu.CompileError
	if !errors.As(err, &ce) || ce.Stage != gpu.FragmentStage || ce.Source != "perlin" {
		t.Fatalf("err = %v, want fragment compile error for perlin", err)
	}
	if l.Program() != active || active.Disposed() {
		t.Error("active program replaced or disposed by a failed build")
	}
	if len(rec.Draws) != 0 {
		t.Error("frame drawn after a failed rebuild")
	}
}

func TestInvalidTessellationNeverReachesGenerator(t *testing.T) {
	rec := gputest.New()
	l := newTestLoop(t, rec, config.DefaultControls())
	mesh := l.Icosphere()
	buffers := rec.LiveBuffers()

	snap := config.DefaultControls()
	snap.Tessellation = 9
	if err := l.Tick(snap); !errors.Is(err, config.ErrInvalidTessellation) {
		t.Fatalf("err = %v, want ErrInvalidTessellation", err)
	}
	if l.Icosphere() != mesh || !mesh.Live() || rec.LiveBuffers() != buffers {
		t.Error("invalid level disturbed the scene")
	}
}

func TestResize(t *testing.T) {
	rec := gputest.New()
	l := newTestLoop(t, rec, config.DefaultControls())
	cam := l.Camera()

	l.Resize(800, 600)
	if cam.Aspect != float32(800)/600 {
		t.Fatalf("aspect = %v", cam.Aspect)
	}

	l.Resize(400, 300)
	if cam.Aspect != float32(400)/300 {
		t.Errorf("aspect = %v, want %v", cam.Aspect, float32(400)/300)
	}
	if want := mgl32.Perspective(cam.FovY, float32(400)/300, cam.Near, cam.Far); cam.Projection() != want {
		t.Error("projection not recomputed for the new aspect")
	}
	if w, h := l.Renderer().Size(); w != 400 || h != 300 {
		t.Errorf("renderer size = %dx%d", w, h)
	}
	if rec.ViewportXY != [4]int32{0, 0, 400, 300} {
		t.Errorf("viewport = %v", rec.ViewportXY)
	}

	l.Resize(0, 0)
	if rec.ViewportXY != [4]int32{0, 0, 400, 300} {
		t.Error("zero-size resize (minimized window) applied")
	}
}

func TestResizeChangesProjection(t *testing.T) {
	l := newTestLoop(t, gputest.New(), config.DefaultControls())
	l.Resize(800, 600)
	p1 := l.Camera().Projection()
	l.Resize(1600, 600)
	if l.Camera().Projection() == p1 {
		t.Error("projection unchanged after aspect change")
	}
}

func TestDrawExtras(t *testing.T) {
	rec := gputest.New()
	camera := rendering.NewCamera(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{})
	l, err := NewLoop(rec, camera, shaders.Default(), config.DefaultControls(), Options{
		DrawExtras: true,
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := l.Tick(config.DefaultControls()); err != nil {
		t.Fatal(err)
	}
	if len(rec.Draws) != 3 {
		t.Fatalf("draws = %d, want icosphere + square + cube", len(rec.Draws))
	}
	square, cube := l.Extras()
	if rec.Draws[1].IndexBuffer != square.IndexBuffer() || rec.Draws[2].IndexBuffer != cube.IndexBuffer() {
		t.Error("extras drawn out of order")
	}

	rec.ResetDraws()
	if err := l.Tick(config.DefaultControls()); err != nil {
		t.Fatal(err)
	}
	if len(rec.Draws) != 3 {
		t.Errorf("second frame draws = %d, want 3", len(rec.Draws))
	}
}

func TestDrawUsesNormalizedColor(t *testing.T) {
	rec := gputest.New()
	l := newTestLoop(t, rec, config.DefaultControls())
	snap := config.DefaultControls()
	snap.Color = config.Color{0, 51, 255, 0.5}
	if err := l.Tick(snap); err != nil {
		t.Fatal(err)
	}
	got, _ := rec.Draws[0].Uniforms[rendering.UniformColor].(mgl32.Vec4)
	if !got.ApproxEqualThreshold(mgl32.Vec4{0, 0.2, 1, 0.5}, 1e-6) {
		t.Errorf("u_Color = %v", got)
	}
	if rec.Draws[0].Uniforms[rendering.UniformEffect] != (mgl32.Vec4{1, 1, 0, 0}) {
		t.Errorf("u_Effect = %v", rec.Draws[0].Uniforms[rendering.UniformEffect])
	}
}

func TestCloseReleasesEverything(t *testing.T) {
	rec := gputest.New()
	l := newTestLoop(t, rec, config.DefaultControls())
	l.Close()
	if rec.LiveBuffers() != 0 || rec.LivePrograms() != 0 {
		t.Errorf("left %d buffers, %d programs", rec.LiveBuffers(), rec.LivePrograms())
	}
}
