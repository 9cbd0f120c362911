package rendering

import (
	"errors"
	"fmt"

	"icoviewer/core"
	"icoviewer/gpu"
)

// Drawable is an indexed triangle mesh resident on the GPU.
type Drawable interface {
	PositionBuffer() gpu.Buffer
	NormalBuffer() gpu.Buffer
	// ColorBuffer reports false when the mesh has no per-vertex colors.
	ColorBuffer() (gpu.Buffer, bool)
	IndexBuffer() gpu.Buffer
	IndexCount() int32
}

var (
	ErrMeshCreated   = errors.New("mesh already created")
	ErrMeshDestroyed = errors.New("mesh destroyed")
)

// Mesh pairs a shape with the GPU buffers built from it. A mesh is created
// once and destroyed once; changing the shape means building a new Mesh.
type Mesh struct {
	shape    core.Shape
	geometry core.Geometry

	positions gpu.Buffer
	normals   gpu.Buffer
	colors    gpu.Buffer
	indices   gpu.Buffer
	count     int32

	created   bool
	destroyed bool
}

var _ Drawable = (*Mesh)(nil)

func NewMesh(shape core.Shape) *Mesh {
	return &Mesh{shape: shape}
}

// Create builds the shape's geometry and uploads it.
func (m *Mesh) Create(ctx gpu.Context) error {
	if m.destroyed {
		return fmt.Errorf("create %s: %w", m.shape.Name(), ErrMeshDestroyed)
	}
	if m.created {
		return fmt.Errorf("create %s: %w", m.shape.Name(), ErrMeshCreated)
	}

	g := m.shape.Build()
	if err := g.Validate(); err != nil {
		return fmt.Errorf("create %s: %w", m.shape.Name(), err)
	}

	m.geometry = g
	m.positions = ctx.CreateVertexBuffer(g.Positions)
	m.normals = ctx.CreateVertexBuffer(g.Normals)
	if g.HasColors() {
		m.colors = ctx.CreateVertexBuffer(g.Colors)
	}
	m.indices = ctx.CreateIndexBuffer(g.Indices)
	m.count = int32(len(g.Indices))
	m.created = true
	return nil
}

// Destroy releases the GPU buffers. It is safe to call more than once.
func (m *Mesh) Destroy(ctx gpu.Context) {
	if !m.created || m.destroyed {
		m.destroyed = true
		return
	}
	for _, b := range []gpu.Buffer{m.positions, m.normals, m.colors, m.indices} {
		if b != 0 {
			ctx.DeleteBuffer(b)
		}
	}
	m.positions, m.normals, m.colors, m.indices = 0, 0, 0, 0
	m.destroyed = true
}

// Live reports whether the mesh has buffers that can be drawn.
func (m *Mesh) Live() bool { return m.created && !m.destroyed }

func (m *Mesh) Shape() core.Shape          { return m.shape }
func (m *Mesh) Geometry() core.Geometry    { return m.geometry }
func (m *Mesh) TriangleCount() int         { return m.geometry.TriangleCount() }
func (m *Mesh) VertexCount() int           { return m.geometry.VertexCount() }
func (m *Mesh) PositionBuffer() gpu.Buffer { return m.positions }
func (m *Mesh) NormalBuffer() gpu.Buffer   { return m.normals }
func (m *Mesh) IndexBuffer() gpu.Buffer    { return m.indices }
func (m *Mesh) IndexCount() int32          { return m.count }

func (m *Mesh) ColorBuffer() (gpu.Buffer, bool) {
	return m.colors, m.colors != 0
}
