package gpu

import "github.com/go-gl/mathgl/mgl32"

// Context is the graphics context the renderer drives. The OpenGL backend
// lives in rendering/opengl; tests use gputest.Recorder.
type Context interface {
	// Shader stages and programs
	CompileShader(stage Stage, source string) (Shader, error)
	DeleteShader(shader Shader)
	LinkProgram(vertex, fragment Shader) (Program, error)
	DeleteProgram(program Program)
	UseProgram(program Program)
	UniformLocation(program Program, name string) int32
	AttribLocation(program Program, name string) int32

	// Uniforms on the program in use
	UniformMatrix4(location int32, m mgl32.Mat4)
	Uniform4(location int32, v mgl32.Vec4)
	Uniform1(location int32, f float32)

	// Buffers
	CreateVertexBuffer(data []float32) Buffer
	CreateIndexBuffer(data []uint32) Buffer
	DeleteBuffer(buffer Buffer)
	BindVertexAttrib(location int32, buffer Buffer, components int32)
	DisableVertexAttrib(location int32)
	BindIndexBuffer(buffer Buffer)

	// Frame state
	Viewport(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear()
	EnableDepthTest()
	DrawIndexedTriangles(count int32)

	// Err returns and clears the first error the device recorded since the
	// last call, wrapped in ErrDevice.
	Err() error
}
