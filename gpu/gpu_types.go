package gpu

import (
	"errors"
	"fmt"
	"strings"
)

// Handles returned by a Context. Zero is never a valid handle.
type (
	Shader  uint32
	Program uint32
	Buffer  uint32
)

// Stage is a programmable pipeline stage.
type Stage int

const (
	VertexStage Stage = iota
	FragmentStage
)

func (s Stage) String() string {
	switch s {
	case VertexStage:
		return "vertex"
	case FragmentStage:
		return "fragment"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

var (
	// ErrContextUnavailable means no usable graphics context could be created.
	ErrContextUnavailable = errors.New("graphics context unavailable")
	// ErrDevice is a failure the device reported after a call was issued,
	// such as running out of memory during a buffer upload.
	ErrDevice = errors.New("graphics device error")
)

// CompileError carries the compiler diagnostics of one failed stage.
type CompileError struct {
	Stage  Stage
	Source string // variant name, when known
	Log    string
}

func (e *CompileError) Error() string {
	name := e.Stage.String()
	if e.Source != "" {
		name += " " + e.Source
	}
	return fmt.Sprintf("%s shader compile failed: %s", name, strings.TrimRight(e.Log, "\x00\n "))
}

// LinkError carries the linker diagnostics of a failed program.
type LinkError struct {
	Log string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("link failed: %s", strings.TrimRight(e.Log, "\x00\n "))
}
