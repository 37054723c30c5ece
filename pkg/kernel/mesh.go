package kernel

import "math"

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Part     string    `json:"part"`     // label of the component this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Vertex returns vertex i.
func (m *Mesh) Vertex(i uint32) [3]float32 {
	return [3]float32{m.Vertices[3*i], m.Vertices[3*i+1], m.Vertices[3*i+2]}
}

// Extent returns the axis-aligned bounds of the vertices. An empty mesh
// returns zero vectors.
func (m *Mesh) Extent() (min, max [3]float64) {
	if m.IsEmpty() {
		return min, max
	}
	for a := 0; a < 3; a++ {
		min[a], max[a] = math.Inf(1), math.Inf(-1)
	}
	for i := 0; i < len(m.Vertices); i += 3 {
		for a := 0; a < 3; a++ {
			v := float64(m.Vertices[i+a])
			min[a] = math.Min(min[a], v)
			max[a] = math.Max(max[a], v)
		}
	}
	return min, max
}

// SmoothNormals replaces m.Normals with per-vertex normals averaged from the
// faces around each vertex. Vertices on no face keep a zero normal.
func (m *Mesh) SmoothNormals() {
	acc := make([]float64, len(m.Vertices))
	for t := 0; t+2 < len(m.Indices); t += 3 {
		tri := m.Indices[t : t+3]
		a, b, c := m.Vertex(tri[0]), m.Vertex(tri[1]), m.Vertex(tri[2])
		var e1, e2 [3]float64
		for i := range 3 {
			e1[i] = float64(b[i] - a[i])
			e2[i] = float64(c[i] - a[i])
		}
		n := [3]float64{
			e1[1]*e2[2] - e1[2]*e2[1],
			e1[2]*e2[0] - e1[0]*e2[2],
			e1[0]*e2[1] - e1[1]*e2[0],
		}
		for _, idx := range tri {
			for i := range 3 {
				acc[3*idx+uint32(i)] += n[i]
			}
		}
	}

	m.Normals = make([]float32, len(m.Vertices))
	for v := 0; v+2 < len(acc); v += 3 {
		l := math.Sqrt(acc[v]*acc[v] + acc[v+1]*acc[v+1] + acc[v+2]*acc[v+2])
		if l < 1e-12 {
			continue
		}
		for i := range 3 {
			m.Normals[v+i] = float32(acc[v+i] / l)
		}
	}
}
