package opengl

import (
	"fmt"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"

	"icoviewer/gpu"
)

// Context implements gpu.Context on the current OpenGL 4.1 core context.
// All methods must run on the thread that owns the context.
type Context struct {
	vao uint32
}

var _ gpu.Context = (*Context)(nil)

// newContext loads the GL function pointers and binds the vertex array
// object every attribute binding goes through.
func newContext() (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("%w: failed to initialize OpenGL: %v", gpu.ErrContextUnavailable, err)
	}
	c := &Context{}
	gl.GenVertexArrays(1, &c.vao)
	gl.BindVertexArray(c.vao)
	return c, nil
}

// Version returns the GL_VERSION string.
func (c *Context) Version() string {
	return gl.GoStr(gl.GetString(gl.VERSION))
}

func (c *Context) Renderer() string {
	return gl.GoStr(gl.GetString(gl.RENDERER))
}

func glStage(stage gpu.Stage) uint32 {
	if stage == gpu.FragmentStage {
		return gl.FRAGMENT_SHADER
	}
	return gl.VERTEX_SHADER
}

func (c *Context) CompileShader(stage gpu.Stage, source string) (gpu.Shader, error) {
	shader := gl.CreateShader(glStage(stage))

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		log := infoLog(logLength, func(buf *uint8) {
			gl.GetShaderInfoLog(shader, logLength, nil, buf)
		})
		gl.DeleteShader(shader)
		return 0, &gpu.CompileError{Stage: stage, Log: log}
	}
	return gpu.Shader(shader), nil
}

func (c *Context) DeleteShader(shader gpu.Shader) {
	gl.DeleteShader(uint32(shader))
}

func (c *Context) LinkProgram(vertex, fragment gpu.Shader) (gpu.Program, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, uint32(vertex))
	gl.AttachShader(program, uint32(fragment))
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := infoLog(logLength, func(buf *uint8) {
			gl.GetProgramInfoLog(program, logLength, nil, buf)
		})
		gl.DeleteProgram(program)
		return 0, &gpu.LinkError{Log: log}
	}

	gl.DetachShader(program, uint32(vertex))
	gl.DetachShader(program, uint32(fragment))
	return gpu.Program(program), nil
}

func infoLog(length int32, read func(buf *uint8)) string {
	if length <= 0 {
		return "(no log)"
	}
	buf := make([]uint8, length)
	read(&buf[0])
	return gl.GoStr(&buf[0])
}

func (c *Context) DeleteProgram(program gpu.Program) {
	gl.DeleteProgram(uint32(program))
}

func (c *Context) UseProgram(program gpu.Program) {
	gl.UseProgram(uint32(program))
}

func (c *Context) UniformLocation(program gpu.Program, name string) int32 {
	return gl.GetUniformLocation(uint32(program), gl.Str(name+"\x00"))
}

func (c *Context) AttribLocation(program gpu.Program, name string) int32 {
	return gl.GetAttribLocation(uint32(program), gl.Str(name+"\x00"))
}

func (c *Context) UniformMatrix4(location int32, m mgl32.Mat4) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (c *Context) Uniform4(location int32, v mgl32.Vec4) {
	gl.Uniform4fv(location, 1, &v[0])
}

func (c *Context) Uniform1(location int32, f float32) {
	gl.Uniform1f(location, f)
}

func (c *Context) CreateVertexBuffer(data []float32) gpu.Buffer {
	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(gl.ARRAY_BUFFER, buf)
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, slicePtr(len(data), func() unsafe.Pointer { return gl.Ptr(data) }), gl.STATIC_DRAW)
	return gpu.Buffer(buf)
}

func (c *Context) CreateIndexBuffer(data []uint32) gpu.Buffer {
	var buf uint32
	gl.GenBuffers(1, &buf)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data)*4, slicePtr(len(data), func() unsafe.Pointer { return gl.Ptr(data) }), gl.STATIC_DRAW)
	return gpu.Buffer(buf)
}

// slicePtr avoids taking the address of an empty slice.
func slicePtr(n int, ptr func() unsafe.Pointer) unsafe.Pointer {
	if n == 0 {
		return nil
	}
	return ptr()
}

func (c *Context) DeleteBuffer(buffer gpu.Buffer) {
	b := uint32(buffer)
	gl.DeleteBuffers(1, &b)
}

func (c *Context) BindVertexAttrib(location int32, buffer gpu.Buffer, components int32) {
	if location < 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buffer))
	gl.EnableVertexAttribArray(uint32(location))
	gl.VertexAttribPointer(uint32(location), components, gl.FLOAT, false, 0, gl.PtrOffset(0))
}

func (c *Context) DisableVertexAttrib(location int32) {
	if location < 0 {
		return
	}
	gl.DisableVertexAttribArray(uint32(location))
}

func (c *Context) BindIndexBuffer(buffer gpu.Buffer) {
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(buffer))
}

func (c *Context) Viewport(x, y, width, height int32) {
	gl.Viewport(x, y, width, height)
}

func (c *Context) ClearColor(r, g, b, a float32) {
	gl.ClearColor(r, g, b, a)
}

func (c *Context) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

func (c *Context) EnableDepthTest() {
	gl.Enable(gl.DEPTH_TEST)
}

func (c *Context) DrawIndexedTriangles(count int32) {
	gl.DrawElements(gl.TRIANGLES, count, gl.UNSIGNED_INT, gl.PtrOffset(0))
}

// Err drains the GL error flags and reports the first one.
func (c *Context) Err() error {
	first := uint32(gl.NO_ERROR)
	for i := 0; i < 8; i++ {
		code := gl.GetError()
		if code == gl.NO_ERROR {
			break
		}
		if first == gl.NO_ERROR {
			first = code
		}
	}
	if first == gl.NO_ERROR {
		return nil
	}
	return fmt.Errorf("%w: %s (0x%x)", gpu.ErrDevice, glErrorName(first), first)
}

func glErrorName(code uint32) string {
	switch code {
	case gl.INVALID_ENUM:
		return "GL_INVALID_ENUM"
	case gl.INVALID_VALUE:
		return "GL_INVALID_VALUE"
	case gl.INVALID_OPERATION:
		return "GL_INVALID_OPERATION"
	case gl.INVALID_FRAMEBUFFER_OPERATION:
		return "GL_INVALID_FRAMEBUFFER_OPERATION"
	case gl.OUT_OF_MEMORY:
		return "GL_OUT_OF_MEMORY"
	default:
		return "unknown GL error"
	}
}

// release drops the shared vertex array object.
func (c *Context) release() {
	gl.DeleteVertexArrays(1, &c.vao)
}
