package rendering

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"icoviewer/gpu"
)

var ErrMeshNotResident = errors.New("mesh has no GPU buffers")

// Renderer issues the per-frame GPU commands. It does not save or restore
// bind state; callers own the pipeline for the duration of a frame.
type Renderer struct {
	ctx gpu.Context

	width, height int
	clearColor    [4]float32

	// time advances by one per Draw and feeds u_Time.
	time float32
}

// NewRenderer enables depth testing on ctx and returns a renderer for it.
func NewRenderer(ctx gpu.Context) *Renderer {
	ctx.EnableDepthTest()
	return &Renderer{ctx: ctx}
}

func (r *Renderer) SetClearColor(red, green, blue, alpha float32) {
	r.clearColor = [4]float32{red, green, blue, alpha}
	r.ctx.ClearColor(red, green, blue, alpha)
}

// Clear clears color and depth.
func (r *Renderer) Clear() {
	r.ctx.Clear()
}

// SetSize sets the viewport to cover width x height pixels.
func (r *Renderer) SetSize(width, height int) {
	r.width, r.height = width, height
	r.ctx.Viewport(0, 0, int32(width), int32(height))
}

func (r *Renderer) Size() (width, height int) { return r.width, r.height }
func (r *Renderer) ClearColor() [4]float32    { return r.clearColor }
func (r *Renderer) Time() float32             { return r.time }

// Draw renders each mesh with program: one indexed triangle draw per mesh,
// with camera matrices, color and effect uploaded before each.
func (r *Renderer) Draw(camera *Camera, program *ShaderProgram, meshes []Drawable, color, effect mgl32.Vec4) error {
	if program == nil {
		return errors.New("draw: nil program")
	}

	model := mgl32.Ident4()
	modelInvTr := model.Inv().Transpose()
	view := camera.View()
	proj := camera.Projection()
	viewProj := proj.Mul4(view)

	for i, mesh := range meshes {
		if mesh.IndexBuffer() == 0 || mesh.IndexCount() == 0 {
			return fmt.Errorf("draw mesh %d: %w", i, ErrMeshNotResident)
		}
		if err := program.Use(); err != nil {
			return fmt.Errorf("draw mesh %d: %w", i, err)
		}

		program.SetMatrix4(UniformModel, model)
		program.SetMatrix4(UniformModelInvTr, modelInvTr)
		program.SetMatrix4(UniformView, view)
		program.SetMatrix4(UniformProj, proj)
		program.SetMatrix4(UniformViewProj, viewProj)
		program.SetVec4(UniformColor, color)
		program.SetVec4(UniformEffect, effect)
		program.SetFloat(UniformTime, r.time)

		r.ctx.BindVertexAttrib(program.Attrib(AttribPosition), mesh.PositionBuffer(), 3)
		r.ctx.BindVertexAttrib(program.Attrib(AttribNormal), mesh.NormalBuffer(), 3)
		if loc := program.Attrib(AttribColor); loc >= 0 {
			if colors, ok := mesh.ColorBuffer(); ok {
				r.ctx.BindVertexAttrib(loc, colors, 4)
			} else {
				r.ctx.DisableVertexAttrib(loc)
			}
		}

		r.ctx.BindIndexBuffer(mesh.IndexBuffer())
		r.ctx.DrawIndexedTriangles(mesh.IndexCount())
	}

	r.time++
	return nil
}
