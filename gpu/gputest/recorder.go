// Package gputest provides an in-memory gpu.Context for tests.
package gputest

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"icoviewer/gpu"
)

// ProgramInfo describes a linked program as seen by the recorder.
type ProgramInfo struct {
	VertexSource   string
	FragmentSource string
	Uniforms       map[string]int32
	Attributes     map[string]int32
	Deleted        bool
}

func (p *ProgramInfo) uniformName(loc int32) string {
	for name, l := range p.Uniforms {
		if l == loc {
			return name
		}
	}
	return fmt.Sprintf("#%d", loc)
}

// BufferInfo is the data uploaded into a buffer.
type BufferInfo struct {
	Floats  []float32
	Indices []uint32
	Deleted bool
}

// Draw is one recorded indexed draw call.
type Draw struct {
	Program     gpu.Program
	IndexBuffer gpu.Buffer
	Count       int32
	Attributes  map[string]gpu.Buffer
	Uniforms    map[string]any
}

type shaderInfo struct {
	stage  gpu.Stage
	source string
}

// Recorder implements gpu.Context by recording calls. Handles are allocated
// from a single counter so they are unique across kinds.
type Recorder struct {
	// FailCompile, when set, returns a non-empty log to make a compile fail.
	FailCompile func(stage gpu.Stage, source string) string
	// FailLink, when set, returns a non-empty log to make a link fail.
	FailLink func(vertexSource, fragmentSource string) string

	Compiles int
	Links    int
	Clears   int
	Draws    []Draw
	// Misuse lists calls made with deleted or unknown handles.
	Misuse []string
	// DeviceError, when set, is reported by the next Err call and cleared.
	DeviceError error

	DepthTest  bool
	ViewportXY [4]int32
	ClearRGBA  [4]float32

	next     uint32
	shaders  map[gpu.Shader]*shaderInfo
	programs map[gpu.Program]*ProgramInfo
	buffers  map[gpu.Buffer]*BufferInfo

	current  gpu.Program
	uniforms map[gpu.Program]map[int32]any
	attribs  map[int32]gpu.Buffer
	index    gpu.Buffer
}

var _ gpu.Context = (*Recorder)(nil)

// New returns an empty recorder.
func New() *Recorder {
	return &Recorder{
		shaders:  make(map[gpu.Shader]*shaderInfo),
		programs: make(map[gpu.Program]*ProgramInfo),
		buffers:  make(map[gpu.Buffer]*BufferInfo),
		uniforms: make(map[gpu.Program]map[int32]any),
		attribs:  make(map[int32]gpu.Buffer),
	}
}

func (r *Recorder) handle() uint32 {
	r.next++
	return r.next
}

func (r *Recorder) misuse(format string, args ...any) {
	r.Misuse = append(r.Misuse, fmt.Sprintf(format, args...))
}

func (r *Recorder) CompileShader(stage gpu.Stage, source string) (gpu.Shader, error) {
	r.Compiles++
	if r.FailCompile != nil {
		if log := r.FailCompile(stage, source); log != "" {
			return 0, &gpu.CompileError{Stage: stage, Log: log}
		}
	}
	s := gpu.Shader(r.handle())
	r.shaders[s] = &shaderInfo{stage: stage, source: source}
	return s, nil
}

func (r *Recorder) DeleteShader(shader gpu.Shader) {
	if _, ok := r.shaders[shader]; !ok {
		r.misuse("DeleteShader(%d): unknown shader", shader)
		return
	}
	delete(r.shaders, shader)
}

func (r *Recorder) LinkProgram(vertex, fragment gpu.Shader) (gpu.Program, error) {
	r.Links++
	vs, ok := r.shaders[vertex]
	if !ok || vs.stage != gpu.VertexStage {
		return 0, &gpu.LinkError{Log: "missing vertex shader"}
	}
	fs, ok := r.shaders[fragment]
	if !ok || fs.stage != gpu.FragmentStage {
		return 0, &gpu.LinkError{Log: "missing fragment shader"}
	}
	if r.FailLink != nil {
		if log := r.FailLink(vs.source, fs.source); log != "" {
			return 0, &gpu.LinkError{Log: log}
		}
	}

	info := &ProgramInfo{
		VertexSource:   vs.source,
		FragmentSource: fs.source,
		Uniforms:       make(map[string]int32),
		Attributes:     make(map[string]int32),
	}
	for _, name := range append(declared(vs.source, "uniform"), declared(fs.source, "uniform")...) {
		if _, ok := info.Uniforms[name]; !ok {
			info.Uniforms[name] = int32(len(info.Uniforms))
		}
	}
	for _, name := range declared(vs.source, "in") {
		info.Attributes[name] = int32(len(info.Attributes))
	}

	p := gpu.Program(r.handle())
	r.programs[p] = info
	return p, nil
}

// declared returns the names of top-level declarations with the given
// storage qualifier, e.g. "uniform vec4 u_Color;" yields u_Color.
func declared(source, qualifier string) []string {
	var names []string
	for _, line := range strings.Split(source, "\n") {
		line = strings.TrimSpace(line)
		if i := strings.Index(line, "layout"); i == 0 {
			if j := strings.Index(line, ")"); j > 0 {
				line = strings.TrimSpace(line[j+1:])
			}
		}
		fields := strings.Fields(strings.TrimSuffix(line, ";"))
		if len(fields) != 3 || fields[0] != qualifier {
			continue
		}
		names = append(names, strings.TrimSuffix(fields[2], ";"))
	}
	return names
}

func (r *Recorder) DeleteProgram(program gpu.Program) {
	info, ok := r.programs[program]
	if !ok || info.Deleted {
		r.misuse("DeleteProgram(%d): unknown or deleted program", program)
		return
	}
	info.Deleted = true
	if r.current == program {
		r.current = 0
	}
}

func (r *Recorder) UseProgram(program gpu.Program) {
	info, ok := r.programs[program]
	if !ok || info.Deleted {
		r.misuse("UseProgram(%d): unknown or deleted program", program)
	}
	r.current = program
}

func (r *Recorder) UniformLocation(program gpu.Program, name string) int32 {
	info, ok := r.programs[program]
	if !ok {
		return -1
	}
	if loc, ok := info.Uniforms[name]; ok {
		return loc
	}
	return -1
}

func (r *Recorder) AttribLocation(program gpu.Program, name string) int32 {
	info, ok := r.programs[program]
	if !ok {
		return -1
	}
	if loc, ok := info.Attributes[name]; ok {
		return loc
	}
	return -1
}

func (r *Recorder) setUniform(location int32, value any) {
	if location < 0 {
		return
	}
	if r.current == 0 {
		r.misuse("uniform %d set with no program in use", location)
		return
	}
	m, ok := r.uniforms[r.current]
	if !ok {
		m = make(map[int32]any)
		r.uniforms[r.current] = m
	}
	m[location] = value
}

func (r *Recorder) UniformMatrix4(location int32, m mgl32.Mat4) { r.setUniform(location, m) }
func (r *Recorder) Uniform4(location int32, v mgl32.Vec4)       { r.setUniform(location, v) }
func (r *Recorder) Uniform1(location int32, f float32)          { r.setUniform(location, f) }

func (r *Recorder) CreateVertexBuffer(data []float32) gpu.Buffer {
	b := gpu.Buffer(r.handle())
	r.buffers[b] = &BufferInfo{Floats: append([]float32(nil), data...)}
	return b
}

func (r *Recorder) CreateIndexBuffer(data []uint32) gpu.Buffer {
	b := gpu.Buffer(r.handle())
	r.buffers[b] = &BufferInfo{Indices: append([]uint32(nil), data...)}
	return b
}

func (r *Recorder) DeleteBuffer(buffer gpu.Buffer) {
	info, ok := r.buffers[buffer]
	if !ok || info.Deleted {
		r.misuse("DeleteBuffer(%d): unknown or deleted buffer", buffer)
		return
	}
	info.Deleted = true
}

func (r *Recorder) BindVertexAttrib(location int32, buffer gpu.Buffer, components int32) {
	if location < 0 {
		return
	}
	if info, ok := r.buffers[buffer]; !ok || info.Deleted {
		r.misuse("BindVertexAttrib(%d): unknown or deleted buffer %d", location, buffer)
	}
	r.attribs[location] = buffer
}

func (r *Recorder) DisableVertexAttrib(location int32) {
	delete(r.attribs, location)
}

func (r *Recorder) BindIndexBuffer(buffer gpu.Buffer) {
	if info, ok := r.buffers[buffer]; !ok || info.Deleted {
		r.misuse("BindIndexBuffer: unknown or deleted buffer %d", buffer)
	}
	r.index = buffer
}

func (r *Recorder) Viewport(x, y, width, height int32) {
	r.ViewportXY = [4]int32{x, y, width, height}
}

func (r *Recorder) ClearColor(red, green, blue, alpha float32) {
	r.ClearRGBA = [4]float32{red, green, blue, alpha}
}

func (r *Recorder) Clear()           { r.Clears++ }
func (r *Recorder) EnableDepthTest() { r.DepthTest = true }

func (r *Recorder) DrawIndexedTriangles(count int32) {
	info, ok := r.programs[r.current]
	if !ok || info.Deleted {
		r.misuse("DrawIndexedTriangles with program %d not usable", r.current)
		info = &ProgramInfo{}
	}
	if idx, ok := r.buffers[r.index]; !ok || idx.Deleted || int(count) > len(idx.Indices) {
		r.misuse("DrawIndexedTriangles(%d) with index buffer %d", count, r.index)
	}

	d := Draw{
		Program:     r.current,
		IndexBuffer: r.index,
		Count:       count,
		Attributes:  make(map[string]gpu.Buffer),
		Uniforms:    make(map[string]any),
	}
	for name, loc := range info.Attributes {
		if b, ok := r.attribs[loc]; ok {
			d.Attributes[name] = b
		}
	}
	for loc, v := range r.uniforms[r.current] {
		d.Uniforms[info.uniformName(loc)] = v
	}
	r.Draws = append(r.Draws, d)
}

func (r *Recorder) Err() error {
	err := r.DeviceError
	r.DeviceError = nil
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %v", gpu.ErrDevice, err)
}

// Program returns what the recorder knows about a program handle.
func (r *Recorder) Program(program gpu.Program) (*ProgramInfo, bool) {
	info, ok := r.programs[program]
	return info, ok
}

// Buffer returns what the recorder knows about a buffer handle.
func (r *Recorder) Buffer(buffer gpu.Buffer) (*BufferInfo, bool) {
	info, ok := r.buffers[buffer]
	return info, ok
}

// LivePrograms counts linked programs that have not been deleted.
func (r *Recorder) LivePrograms() int {
	n := 0
	for _, p := range r.programs {
		if !p.Deleted {
			n++
		}
	}
	return n
}

// LiveBuffers counts buffers that have not been deleted.
func (r *Recorder) LiveBuffers() int {
	n := 0
	for _, b := range r.buffers {
		if !b.Deleted {
			n++
		}
	}
	return n
}

// LiveShaders counts compiled stages that have not been deleted.
func (r *Recorder) LiveShaders() int {
	return len(r.shaders)
}

// ResetDraws drops the recorded draw calls.
func (r *Recorder) ResetDraws() {
	r.Draws = nil
}
