package core

// Square is a 2x2 quad in the XY plane facing +Z.
type Square struct {
	Center Vector3
}

func (s *Square) Name() string { return "square" }

func (s *Square) Build() Geometry {
	c := s.Center
	g := Geometry{
		Positions: []float32{
			float32(c.X - 1), float32(c.Y - 1), float32(c.Z),
			float32(c.X + 1), float32(c.Y - 1), float32(c.Z),
			float32(c.X + 1), float32(c.Y + 1), float32(c.Z),
			float32(c.X - 1), float32(c.Y + 1), float32(c.Z),
		},
		Normals: []float32{
			0, 0, 1,
			0, 0, 1,
			0, 0, 1,
			0, 0, 1,
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
	return g
}

// cubeFace describes one side of the cube: its outward normal, two in-plane
// axes and a face color.
type cubeFace struct {
	normal, u, v Vector3
	color        [4]float32
}

var cubeFaces = []cubeFace{
	{normal: Vector3{0, 0, 1}, u: Vector3{1, 0, 0}, v: Vector3{0, 1, 0}, color: [4]float32{1, 0, 0, 1}},   // front
	{normal: Vector3{0, 0, -1}, u: Vector3{-1, 0, 0}, v: Vector3{0, 1, 0}, color: [4]float32{0, 1, 0, 1}}, // back
	{normal: Vector3{1, 0, 0}, u: Vector3{0, 0, -1}, v: Vector3{0, 1, 0}, color: [4]float32{0, 0, 1, 1}},  // right
	{normal: Vector3{-1, 0, 0}, u: Vector3{0, 0, 1}, v: Vector3{0, 1, 0}, color: [4]float32{1, 1, 0, 1}},  // left
	{normal: Vector3{0, 1, 0}, u: Vector3{1, 0, 0}, v: Vector3{0, 0, -1}, color: [4]float32{0, 1, 1, 1}},  // top
	{normal: Vector3{0, -1, 0}, u: Vector3{1, 0, 0}, v: Vector3{0, 0, 1}, color: [4]float32{1, 0, 1, 1}},  // bottom
}

// Cube is a 2x2x2 box with flat per-face normals and per-face colors.
type Cube struct {
	Center Vector3
}

func (s *Cube) Name() string { return "cube" }

func (s *Cube) Build() Geometry {
	var g Geometry
	corners := [4][2]float64{{-1, -1}, {1, -1}, {1, 1}, {-1, 1}}
	for i, f := range cubeFaces {
		base := uint32(i * 4)
		for _, uv := range corners {
			p := s.Center.Add(f.normal).Add(f.u.Scale(uv[0])).Add(f.v.Scale(uv[1]))
			g.Positions = append(g.Positions, float32(p.X), float32(p.Y), float32(p.Z))
			g.Normals = append(g.Normals, float32(f.normal.X), float32(f.normal.Y), float32(f.normal.Z))
			g.Colors = append(g.Colors, f.color[:]...)
		}
		g.Indices = append(g.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return g
}
