package surface

// Mesh is a float32 copy of the torus for GPUs and wire formats. Positions
// and Normals hold three floats per vertex. Normals point outward and
// triangles wind counter-clockwise seen from outside.
type Mesh struct {
	Width     int
	Height    int
	Positions []float32
	Normals   []float32
	Indices   []uint32
}

// Mesh flattens the current (possibly scaled) vertices and normals.
func (t *Torus) Mesh() Mesh {
	m := Mesh{
		Width:     t.width,
		Height:    t.height,
		Positions: make([]float32, 0, len(t.vertices)*3),
		Normals:   make([]float32, 0, len(t.normals)*3),
		Indices:   make([]uint32, len(t.indices)),
	}
	for i, v := range t.vertices {
		n := t.normals[i]
		m.Positions = append(m.Positions, float32(v[0]), float32(v[1]), float32(v[2]))
		m.Normals = append(m.Normals, float32(-n[0]), float32(-n[1]), float32(-n[2]))
	}
	// Stored faces wind inward; swap the last two corners of each.
	for i := 0; i+2 < len(t.indices); i += 3 {
		m.Indices[i] = t.indices[i]
		m.Indices[i+1] = t.indices[i+2]
		m.Indices[i+2] = t.indices[i+1]
	}
	return m
}
