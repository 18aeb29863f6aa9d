// Package mesh holds triangle meshes in the flat layout renderers upload.
package mesh

import (
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Brush    uint64    `json:"brush"`    // which brush this came from
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

// AddVertex appends a vertex and returns its index.
func (m *Mesh) AddVertex(p, n v3.Vec) uint32 {
	i := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, float32(p.X), float32(p.Y), float32(p.Z))
	m.Normals = append(m.Normals, float32(n.X), float32(n.Y), float32(n.Z))
	return i
}

// AddTriangle appends a triangle with its own three vertices sharing the
// flat normal n.
func (m *Mesh) AddTriangle(a, b, c, n v3.Vec) {
	ia := m.AddVertex(a, n)
	ib := m.AddVertex(b, n)
	ic := m.AddVertex(c, n)
	m.Indices = append(m.Indices, ia, ib, ic)
}

// AddFan appends a convex polygon as a triangle fan around its first
// vertex. Every vertex gets the flat normal n. Polygons with fewer than
// three vertices are ignored.
func (m *Mesh) AddFan(poly []v3.Vec, n v3.Vec) {
	if len(poly) < 3 {
		return
	}
	base := uint32(m.VertexCount())
	for _, p := range poly {
		m.AddVertex(p, n)
	}
	for i := 1; i+1 < len(poly); i++ {
		m.Indices = append(m.Indices, base, base+uint32(i), base+uint32(i+1))
	}
}

// Append adds every triangle of o to m.
func (m *Mesh) Append(o *Mesh) {
	base := uint32(m.VertexCount())
	m.Vertices = append(m.Vertices, o.Vertices...)
	m.Normals = append(m.Normals, o.Normals...)
	for _, i := range o.Indices {
		m.Indices = append(m.Indices, base+i)
	}
}
