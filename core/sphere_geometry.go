package core

import (
	"errors"
	"fmt"
	"math"
)

// MaxIcosphereLevel is the deepest subdivision the generator accepts.
const MaxIcosphereLevel = 8

var (
	ErrInvalidRadius = errors.New("icosphere radius must be positive")
	ErrInvalidLevel  = errors.New("icosphere level out of range")
)

// Base icosahedron, golden ratio construction.
var (
	icosahedronVertices = func() []Vector3 {
		t := (1.0 + math.Sqrt(5.0)) / 2.0
		return []Vector3{
			{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
			{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
			{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
		}
	}()

	icosahedronFaces = []face{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
)

type face [3]uint32

// edgeKey identifies an edge by its unordered pair of endpoint indices.
type edgeKey struct {
	lo, hi uint32
}

func newEdgeKey(a, b uint32) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{lo: a, hi: b}
}

// Icosphere is a sphere approximated by a subdivided icosahedron.
type Icosphere struct {
	Center Vector3
	Radius float64
	Level  int
}

// NewIcosphere checks the parameters and returns the shape.
func NewIcosphere(center Vector3, radius float64, level int) (*Icosphere, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRadius, radius)
	}
	if level < 0 || level > MaxIcosphereLevel {
		return nil, fmt.Errorf("%w: %d not in [0, %d]", ErrInvalidLevel, level, MaxIcosphereLevel)
	}
	return &Icosphere{Center: center, Radius: radius, Level: level}, nil
}

func (s *Icosphere) Name() string {
	return fmt.Sprintf("icosphere(level=%d)", s.Level)
}

// IcosphereVertexCount returns the unique vertex count at a level: 10*4^level + 2.
func IcosphereVertexCount(level int) int {
	return 10*pow4(level) + 2
}

// IcosphereTriangleCount returns the triangle count at a level: 20*4^level.
func IcosphereTriangleCount(level int) int {
	return 20 * pow4(level)
}

func pow4(n int) int {
	return 1 << (2 * n)
}

// Build generates the sphere. Each round replaces every face with four
// children; midpoints shared by two faces are created once through the
// per-round edge map.
func (s *Icosphere) Build() Geometry {
	level := s.Level
	if level < 0 {
		level = 0
	} else if level > MaxIcosphereLevel {
		level = MaxIcosphereLevel
	}

	vertices := make([]Vector3, 0, IcosphereVertexCount(level))
	for _, v := range icosahedronVertices {
		vertices = append(vertices, s.project(v))
	}
	faces := append([]face(nil), icosahedronFaces...)

	for round := 0; round < level; round++ {
		midpoints := make(map[edgeKey]uint32, len(faces)*3/2)
		midpoint := func(a, b uint32) uint32 {
			key := newEdgeKey(a, b)
			if mid, ok := midpoints[key]; ok {
				return mid
			}
			m := vertices[a].Add(vertices[b]).Scale(0.5)
			vertices = append(vertices, s.project(m.Sub(s.Center)))
			idx := uint32(len(vertices) - 1)
			midpoints[key] = idx
			return idx
		}

		next := make([]face, 0, len(faces)*4)
		for _, f := range faces {
			a, b, c := f[0], f[1], f[2]
			ab := midpoint(a, b)
			bc := midpoint(b, c)
			ac := midpoint(c, a)
			next = append(next,
				face{a, ab, ac},
				face{b, bc, ab},
				face{c, ac, bc},
				face{ab, bc, ac},
			)
		}
		faces = next
	}

	g := Geometry{
		Positions: make([]float32, 0, len(vertices)*3),
		Normals:   make([]float32, 0, len(vertices)*3),
		Indices:   make([]uint32, 0, len(faces)*3),
	}
	for _, v := range vertices {
		n := v.Sub(s.Center).Normalize()
		g.Positions = append(g.Positions, float32(v.X), float32(v.Y), float32(v.Z))
		g.Normals = append(g.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	}
	for _, f := range faces {
		g.Indices = append(g.Indices, f[0], f[1], f[2])
	}
	return g
}

// project places a direction relative to the center onto the sphere surface.
func (s *Icosphere) project(dir Vector3) Vector3 {
	return s.Center.Add(dir.Normalize().Scale(s.Radius))
}
