package rendering

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"icoviewer/gpu"
	"icoviewer/rendering/shaders"
)

// Attribute names the vertex variants read.
const (
	AttribPosition = "vs_Pos"
	AttribNormal   = "vs_Nor"
	AttribColor    = "vs_Col"
)

// Uniform names the renderer sets when a program declares them.
const (
	UniformModel      = "u_Model"
	UniformModelInvTr = "u_ModelInvTr"
	UniformView       = "u_View"
	UniformProj       = "u_Proj"
	UniformViewProj   = "u_ViewProj"
	UniformColor      = "u_Color"
	UniformEffect     = "u_Effect"
	UniformTime       = "u_Time"
)

var (
	knownAttributes = []string{AttribPosition, AttribNormal, AttribColor}
	knownUniforms   = []string{
		UniformModel, UniformModelInvTr, UniformView, UniformProj,
		UniformViewProj, UniformColor, UniformEffect, UniformTime,
	}
)

var ErrProgramDisposed = errors.New("shader program disposed")

// ProgramKey identifies the pair of variants a program was built from.
type ProgramKey struct {
	Vertex   string
	Fragment string
}

func (k ProgramKey) String() string {
	return k.Vertex + "/" + k.Fragment
}

// ShaderProgram is a linked vertex+fragment program with its attribute and
// uniform locations resolved at construction. It is never modified after
// NewShaderProgram returns; a different source pair needs a new program.
type ShaderProgram struct {
	ctx        gpu.Context
	handle     gpu.Program
	key        ProgramKey
	attributes map[string]int32
	uniforms   map[string]int32
	disposed   bool
}

// NewShaderProgram compiles both stages and links them. A failed stage
// returns a *gpu.CompileError naming the stage; a failed link returns a
// *gpu.LinkError. No GPU objects leak on failure.
func NewShaderProgram(ctx gpu.Context, vertex, fragment shaders.Source) (*ShaderProgram, error) {
	key := ProgramKey{Vertex: vertex.Name, Fragment: fragment.Name}

	vs, err := compileStage(ctx, gpu.VertexStage, vertex)
	if err != nil {
		return nil, fmt.Errorf("build program %s: %w", key, err)
	}
	defer ctx.DeleteShader(vs)

	fs, err := compileStage(ctx, gpu.FragmentStage, fragment)
	if err != nil {
		return nil, fmt.Errorf("build program %s: %w", key, err)
	}
	defer ctx.DeleteShader(fs)

	handle, err := ctx.LinkProgram(vs, fs)
	if err != nil {
		return nil, fmt.Errorf("build program %s: %w", key, err)
	}

	p := &ShaderProgram{
		ctx:        ctx,
		handle:     handle,
		key:        key,
		attributes: make(map[string]int32, len(knownAttributes)),
		uniforms:   make(map[string]int32, len(knownUniforms)),
	}
	for _, name := range knownAttributes {
		p.attributes[name] = ctx.AttribLocation(handle, name)
	}
	for _, name := range knownUniforms {
		p.uniforms[name] = ctx.UniformLocation(handle, name)
	}
	return p, nil
}

func compileStage(ctx gpu.Context, stage gpu.Stage, src shaders.Source) (gpu.Shader, error) {
	if src.Stage != stage {
		return 0, fmt.Errorf("%s source %q used as %s stage", src.Stage, src.Name, stage)
	}
	shader, err := ctx.CompileShader(stage, src.Text)
	if err != nil {
		var ce *gpu.CompileError
		if errors.As(err, &ce) && ce.Source == "" {
			ce.Source = src.Name
		}
		return 0, err
	}
	return shader, nil
}

func (p *ShaderProgram) Handle() gpu.Program { return p.handle }
func (p *ShaderProgram) Key() ProgramKey     { return p.key }
func (p *ShaderProgram) Disposed() bool      { return p.disposed }

// Attrib returns the cached location of a vertex attribute, or -1.
func (p *ShaderProgram) Attrib(name string) int32 {
	if loc, ok := p.attributes[name]; ok {
		return loc
	}
	return -1
}

// Uniform returns the cached location of a uniform, or -1.
func (p *ShaderProgram) Uniform(name string) int32 {
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return -1
}

// Use binds the program for the following uniform and draw calls.
func (p *ShaderProgram) Use() error {
	if p.disposed {
		return fmt.Errorf("use program %s: %w", p.key, ErrProgramDisposed)
	}
	p.ctx.UseProgram(p.handle)
	return nil
}

// The setters below skip uniforms the program does not declare. They act on
// the program currently in use.

func (p *ShaderProgram) SetMatrix4(name string, m mgl32.Mat4) {
	if loc := p.Uniform(name); loc >= 0 {
		p.ctx.UniformMatrix4(loc, m)
	}
}

func (p *ShaderProgram) SetVec4(name string, v mgl32.Vec4) {
	if loc := p.Uniform(name); loc >= 0 {
		p.ctx.Uniform4(loc, v)
	}
}

func (p *ShaderProgram) SetFloat(name string, f float32) {
	if loc := p.Uniform(name); loc >= 0 {
		p.ctx.Uniform1(loc, f)
	}
}

// Dispose releases the GPU program. Further Use calls fail.
func (p *ShaderProgram) Dispose() {
	if p.disposed {
		return
	}
	p.disposed = true
	p.ctx.DeleteProgram(p.handle)
}
