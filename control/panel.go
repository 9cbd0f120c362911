// Package control is the interactive control surface: a mutex-guarded panel
// holding the current controls, and a websocket server that lets a browser
// drive the panel and watch frame statistics.
package control

import (
	"fmt"
	"sync"

	"icoviewer/config"
	"icoviewer/gpu"
	"icoviewer/rendering/shaders"
)

// Message is a partial update sent by a remote control surface. Absent
// fields are left unchanged.
type Message struct {
	Tessellations  *int          `json:"tessellations,omitempty"`
	Color          *config.Color `json:"color,omitempty"`
	VertexShader   *string       `json:"vertexShader,omitempty"`
	FragmentShader *string       `json:"fragmentShader,omitempty"`
	LoadScene      bool          `json:"loadScene,omitempty"`
}

// Panel holds the live control values. Writers may run on any goroutine;
// the frame loop takes one Snapshot per tick.
type Panel struct {
	registry *shaders.Registry

	mu       sync.Mutex
	controls config.Controls
}

func NewPanel(initial config.Controls, registry *shaders.Registry) *Panel {
	initial.Tessellation = config.ClampTessellation(initial.Tessellation)
	return &Panel{registry: registry, controls: initial}
}

// Snapshot returns a copy of the current controls.
func (p *Panel) Snapshot() config.Controls {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.controls
}

// SetTessellation clamps level into the supported range and returns the
// value stored.
func (p *Panel) SetTessellation(level int) int {
	level = config.ClampTessellation(level)
	p.mu.Lock()
	p.controls.Tessellation = level
	p.mu.Unlock()
	return level
}

func (p *Panel) SetColor(c config.Color) error {
	if err := c.Validate(); err != nil {
		return err
	}
	p.mu.Lock()
	p.controls.Color = c
	p.mu.Unlock()
	return nil
}

func (p *Panel) SetVertexShader(name string) error {
	return p.setShader(gpu.VertexStage, name)
}

func (p *Panel) SetFragmentShader(name string) error {
	return p.setShader(gpu.FragmentStage, name)
}

func (p *Panel) setShader(stage gpu.Stage, name string) error {
	if _, err := p.registry.Lookup(stage, name); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if stage == gpu.VertexStage {
		p.controls.VertexShader = name
	} else {
		p.controls.FragmentShader = name
	}
	return nil
}

// CycleShader advances a stage to its next registered variant.
func (p *Panel) CycleShader(stage gpu.Stage) string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if stage == gpu.VertexStage {
		p.controls.VertexShader = p.registry.Next(stage, p.controls.VertexShader)
		return p.controls.VertexShader
	}
	p.controls.FragmentShader = p.registry.Next(stage, p.controls.FragmentShader)
	return p.controls.FragmentShader
}

// LoadScene requests a rebuild of every mesh on the next tick.
func (p *Panel) LoadScene() {
	p.mu.Lock()
	p.controls.LoadScene++
	p.mu.Unlock()
}

// Apply validates every field of msg before changing anything, so a bad
// message leaves the panel untouched.
func (p *Panel) Apply(msg Message) error {
	if msg.Tessellations != nil {
		if err := config.ValidateTessellation(*msg.Tessellations); err != nil {
			return err
		}
	}
	if msg.Color != nil {
		if err := msg.Color.Validate(); err != nil {
			return err
		}
	}
	if msg.VertexShader != nil {
		if _, err := p.registry.Lookup(gpu.VertexStage, *msg.VertexShader); err != nil {
			return err
		}
	}
	if msg.FragmentShader != nil {
		if _, err := p.registry.Lookup(gpu.FragmentStage, *msg.FragmentShader); err != nil {
			return err
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if msg.Tessellations != nil {
		p.controls.Tessellation = *msg.Tessellations
	}
	if msg.Color != nil {
		p.controls.Color = *msg.Color
	}
	if msg.VertexShader != nil {
		p.controls.VertexShader = *msg.VertexShader
	}
	if msg.FragmentShader != nil {
		p.controls.FragmentShader = *msg.FragmentShader
	}
	if msg.LoadScene {
		p.controls.LoadScene++
	}
	return nil
}

// Stats is what the frame loop reports for display.
type Stats struct {
	FPS            float64 `json:"fps"`
	Frame          uint64  `json:"frame"`
	Tessellation   int     `json:"tessellation"`
	Triangles      int     `json:"triangles"`
	Vertices       int     `json:"vertices"`
	VertexShader   string  `json:"vertexShader"`
	FragmentShader string  `json:"fragmentShader"`
}

func (s Stats) String() string {
	return fmt.Sprintf("FPS: %.1f | level %d | %d tris | %s/%s",
		s.FPS, s.Tessellation, s.Triangles, s.VertexShader, s.FragmentShader)
}
