package core

import (
	"fmt"
	"math"
)

// Vector3 represents a 3D vector
type Vector3 struct {
	X, Y, Z float64
}

func (v Vector3) Add(other Vector3) Vector3 {
	return Vector3{v.X + other.X, v.Y + other.Y, v.Z + other.Z}
}

func (v Vector3) Sub(other Vector3) Vector3 {
	return Vector3{v.X - other.X, v.Y - other.Y, v.Z - other.Z}
}

func (v Vector3) Scale(s float64) Vector3 {
	return Vector3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vector3) Length() float64 {
	return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
}

func (v Vector3) Normalize() Vector3 {
	length := v.Length()
	if length == 0 {
		return Vector3{0, 0, 0}
	}
	return Vector3{v.X / length, v.Y / length, v.Z / length}
}

// Geometry is the CPU-side buffer set of an indexed triangle mesh.
// Positions and Normals hold 3 floats per vertex, Colors 4 floats per vertex
// when present, Indices 3 entries per triangle.
type Geometry struct {
	Positions []float32
	Normals   []float32
	Colors    []float32
	Indices   []uint32
}

func (g Geometry) VertexCount() int {
	return len(g.Positions) / 3
}

func (g Geometry) TriangleCount() int {
	return len(g.Indices) / 3
}

// HasColors reports whether the geometry carries per-vertex colors.
func (g Geometry) HasColors() bool {
	return len(g.Colors) > 0
}

// Position returns vertex i as a vector.
func (g Geometry) Position(i int) Vector3 {
	return Vector3{
		X: float64(g.Positions[3*i]),
		Y: float64(g.Positions[3*i+1]),
		Z: float64(g.Positions[3*i+2]),
	}
}

// Validate checks buffer shapes and index bounds.
func (g Geometry) Validate() error {
	if len(g.Positions)%3 != 0 {
		return fmt.Errorf("positions length %d is not a multiple of 3", len(g.Positions))
	}
	if len(g.Normals) != len(g.Positions) {
		return fmt.Errorf("normals length %d does not match positions length %d", len(g.Normals), len(g.Positions))
	}
	if g.HasColors() && len(g.Colors) != g.VertexCount()*4 {
		return fmt.Errorf("colors length %d does not match %d vertices", len(g.Colors), g.VertexCount())
	}
	if len(g.Indices)%3 != 0 {
		return fmt.Errorf("indices length %d is not a multiple of 3", len(g.Indices))
	}
	n := uint32(g.VertexCount())
	for i, idx := range g.Indices {
		if idx >= n {
			return fmt.Errorf("index %d at %d out of range (%d vertices)", idx, i, n)
		}
	}
	return nil
}

// Shape builds the geometry of one mesh variant.
type Shape interface {
	Build() Geometry
	Name() string
}
