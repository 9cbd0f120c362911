package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Tessellation range accepted from the control surface.
const (
	MinTessellation = 0
	MaxTessellation = 8
)

var (
	ErrInvalidTessellation = errors.New("invalid tessellation level")
	ErrInvalidColor        = errors.New("invalid color")
)

// Color is RGBA with red, green and blue in 0..255 and alpha in 0..1.
type Color [4]float64

// Normalized maps the color to 0..1 floats, clamping out-of-range components.
func (c Color) Normalized() mgl32.Vec4 {
	return mgl32.Vec4{
		float32(clamp(c[0], 0, 255) / 255),
		float32(clamp(c[1], 0, 255) / 255),
		float32(clamp(c[2], 0, 255) / 255),
		float32(clamp(c[3], 0, 1)),
	}
}

func (c Color) Validate() error {
	for i := 0; i < 3; i++ {
		if c[i] < 0 || c[i] > 255 {
			return fmt.Errorf("%w: component %d = %v not in [0, 255]", ErrInvalidColor, i, c[i])
		}
	}
	if c[3] < 0 || c[3] > 1 {
		return fmt.Errorf("%w: alpha %v not in [0, 1]", ErrInvalidColor, c[3])
	}
	return nil
}

// UnmarshalJSON requires exactly four components.
func (c *Color) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var parts []float64
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	return c.set(parts)
}

// UnmarshalYAML requires exactly four components.
func (c *Color) UnmarshalYAML(node *yaml.Node) error {
	var parts []float64
	if err := node.Decode(&parts); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidColor, err)
	}
	return c.set(parts)
}

func (c *Color) set(parts []float64) error {
	if len(parts) != 4 {
		return fmt.Errorf("%w: got %d components, want [r, g, b, a]", ErrInvalidColor, len(parts))
	}
	copy(c[:], parts)
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Controls is one snapshot of the interactive control surface. The frame
// loop receives a copy each tick and never writes to it.
type Controls struct {
	Tessellation   int    `json:"tessellations" yaml:"tessellations"`
	Color          Color  `json:"color" yaml:"color"`
	VertexShader   string `json:"vertexShader" yaml:"vertexShader"`
	FragmentShader string `json:"fragmentShader" yaml:"fragmentShader"`

	// LoadScene counts "load scene" requests; a change asks the frame loop
	// to rebuild every mesh.
	LoadScene uint64 `json:"-" yaml:"-"`
}

// DefaultControls: tessellation 5, red, fireball shaders.
func DefaultControls() Controls {
	return Controls{
		Tessellation:   5,
		Color:          Color{255, 0, 0, 1},
		VertexShader:   "fireball",
		FragmentShader: "fireball",
	}
}

// ValidateTessellation rejects levels outside [MinTessellation, MaxTessellation].
func ValidateTessellation(level int) error {
	if level < MinTessellation || level > MaxTessellation {
		return fmt.Errorf("%w: %d not in [%d, %d]", ErrInvalidTessellation, level, MinTessellation, MaxTessellation)
	}
	return nil
}

// ClampTessellation pulls a level into the supported range.
func ClampTessellation(level int) int {
	if level < MinTessellation {
		return MinTessellation
	}
	if level > MaxTessellation {
		return MaxTessellation
	}
	return level
}

func (c Controls) Validate() error {
	if err := ValidateTessellation(c.Tessellation); err != nil {
		return err
	}
	if err := c.Color.Validate(); err != nil {
		return err
	}
	if c.VertexShader == "" || c.FragmentShader == "" {
		return errors.New("shader variant names must not be empty")
	}
	return nil
}
