// Package scene runs the per-frame orchestration: it turns one control
// snapshot into mesh and program rebuilds followed by a draw.
package scene

import (
	"fmt"
	"log/slog"

	"github.com/go-gl/mathgl/mgl32"

	"icoviewer/config"
	"icoviewer/core"
	"icoviewer/gpu"
	"icoviewer/rendering"
	"icoviewer/rendering/shaders"
)

// Options configure a Loop.
type Options struct {
	Center     core.Vector3
	Radius     float64
	Effect     mgl32.Vec4
	ClearColor [4]float32
	// DrawExtras adds the square and cube to the draw list.
	DrawExtras bool
	Logger     *slog.Logger
}

// Loop owns the scene's GPU resources. Tick must be called from the thread
// that owns the graphics context.
type Loop struct {
	ctx      gpu.Context
	renderer *rendering.Renderer
	camera   *rendering.Camera
	registry *shaders.Registry
	opts     Options
	log      *slog.Logger

	icosphere *rendering.Mesh
	square    *rendering.Mesh
	cube      *rendering.Mesh
	level     int
	loadScene uint64

	program *rendering.ShaderProgram

	frames uint64
}

// NewLoop builds the initial scene and program from initial. Any failure is
// returned; nothing is drawn until a program has linked.
func NewLoop(ctx gpu.Context, camera *rendering.Camera, registry *shaders.Registry, initial config.Controls, opts Options) (*Loop, error) {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Radius == 0 {
		opts.Radius = 1
	}

	l := &Loop{
		ctx:       ctx,
		renderer:  rendering.NewRenderer(ctx),
		camera:    camera,
		registry:  registry,
		opts:      opts,
		log:       opts.Logger.With("component", "scene"),
		loadScene: initial.LoadScene,
	}
	c := opts.ClearColor
	l.renderer.SetClearColor(c[0], c[1], c[2], c[3])

	if err := l.LoadScene(initial.Tessellation); err != nil {
		return nil, err
	}
	if err := l.swapProgram(initial.VertexShader, initial.FragmentShader); err != nil {
		l.Close()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		l.Close()
		return nil, fmt.Errorf("build scene: %w", err)
	}
	return l, nil
}

// LoadScene rebuilds the icosphere at level together with the square and cube.
func (l *Loop) LoadScene(level int) error {
	sphere, err := l.buildIcosphere(level)
	if err != nil {
		return err
	}
	square := rendering.NewMesh(&core.Square{Center: l.opts.Center})
	if err := square.Create(l.ctx); err != nil {
		sphere.Destroy(l.ctx)
		return err
	}
	cube := rendering.NewMesh(&core.Cube{Center: l.opts.Center})
	if err := cube.Create(l.ctx); err != nil {
		sphere.Destroy(l.ctx)
		square.Destroy(l.ctx)
		return err
	}

	l.replaceIcosphere(sphere, level)
	for _, old := range []*rendering.Mesh{l.square, l.cube} {
		if old != nil {
			old.Destroy(l.ctx)
		}
	}
	l.square, l.cube = square, cube
	return nil
}

func (l *Loop) buildIcosphere(level int) (*rendering.Mesh, error) {
	if err := config.ValidateTessellation(level); err != nil {
		return nil, err
	}
	shape, err := core.NewIcosphere(l.opts.Center, l.opts.Radius, level)
	if err != nil {
		return nil, err
	}
	mesh := rendering.NewMesh(shape)
	if err := mesh.Create(l.ctx); err != nil {
		return nil, err
	}
	return mesh, nil
}

// replaceIcosphere installs a fully built mesh and destroys the previous one.
func (l *Loop) replaceIcosphere(mesh *rendering.Mesh, level int) {
	old := l.icosphere
	l.icosphere = mesh
	l.level = level
	if old != nil {
		old.Destroy(l.ctx)
	}
	l.log.Debug("icosphere rebuilt",
		"shape", mesh.Shape().Name(),
		"level", level,
		"triangles", mesh.TriangleCount(),
		"vertices", mesh.VertexCount())
}

// swapProgram builds a program for the named variants and makes it active.
// On failure the active program is left as it was.
func (l *Loop) swapProgram(vertex, fragment string) error {
	vs, err := l.registry.Lookup(gpu.VertexStage, vertex)
	if err != nil {
		return err
	}
	fs, err := l.registry.Lookup(gpu.FragmentStage, fragment)
	if err != nil {
		return err
	}
	program, err := rendering.NewShaderProgram(l.ctx, vs, fs)
	if err != nil {
		return err
	}

	old := l.program
	l.program = program
	if old != nil {
		old.Dispose()
	}
	l.log.Debug("shader program swapped", "vertex", vertex, "fragment", fragment)
	return nil
}

// Tick runs one frame for the snapshot: rebuild what changed, then draw.
func (l *Loop) Tick(snap config.Controls) error {
	l.camera.Update()
	l.renderer.Clear()

	switch {
	case snap.LoadScene != l.loadScene:
		l.loadScene = snap.LoadScene
		if err := l.LoadScene(snap.Tessellation); err != nil {
			return fmt.Errorf("load scene: %w", err)
		}
	case snap.Tessellation != l.level:
		mesh, err := l.buildIcosphere(snap.Tessellation)
		if err != nil {
			return fmt.Errorf("rebuild icosphere: %w", err)
		}
		l.replaceIcosphere(mesh, snap.Tessellation)
	}

	want := rendering.ProgramKey{Vertex: snap.VertexShader, Fragment: snap.FragmentShader}
	if l.program == nil || l.program.Key() != want {
		if err := l.swapProgram(want.Vertex, want.Fragment); err != nil {
			return fmt.Errorf("swap shader program: %w", err)
		}
	}

	meshes := []rendering.Drawable{l.icosphere}
	if l.opts.DrawExtras {
		meshes = append(meshes, l.square, l.cube)
	}
	if err := l.renderer.Draw(l.camera, l.program, meshes, snap.Color.Normalized(), l.opts.Effect); err != nil {
		return fmt.Errorf("draw: %w", err)
	}
	if err := l.ctx.Err(); err != nil {
		return fmt.Errorf("frame %d: %w", l.frames, err)
	}
	l.frames++
	return nil
}

// Resize applies a new framebuffer size to the viewport and the camera
// projection together.
func (l *Loop) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	l.renderer.SetSize(width, height)
	l.camera.SetAspectRatio(float32(width) / float32(height))
	l.camera.UpdateProjectionMatrix()
}

func (l *Loop) Camera() *rendering.Camera              { return l.camera }
func (l *Loop) Renderer() *rendering.Renderer          { return l.renderer }
func (l *Loop) Program() *rendering.ShaderProgram      { return l.program }
func (l *Loop) Icosphere() *rendering.Mesh             { return l.icosphere }
func (l *Loop) Extras() (square, cube *rendering.Mesh) { return l.square, l.cube }
func (l *Loop) Frames() uint64                         { return l.frames }
func (l *Loop) Level() int                             { return l.level }

// Close releases every GPU resource the loop owns.
func (l *Loop) Close() {
	for _, m := range []*rendering.Mesh{l.icosphere, l.square, l.cube} {
		if m != nil {
			m.Destroy(l.ctx)
		}
	}
	if l.program != nil {
		l.program.Dispose()
	}
}
