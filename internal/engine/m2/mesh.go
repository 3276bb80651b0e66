// Package m2 holds shared skinned and static mesh assets and the
// per-instance playback state that animates, skins and sorts them.
package m2

import (
	"errors"
	"fmt"

	"github.com/Faultbox/m2skin/internal/engine/skeleton"
	"github.com/Faultbox/m2skin/internal/engine/skin"
	"github.com/Faultbox/m2skin/pkg/math"
)

// Dataset validation errors.
var (
	ErrSubmeshRange = errors.New("submesh range out of bounds")
	ErrNoSkin       = errors.New("no such skin")
	ErrBoneIndex    = skeleton.ErrBoneIndex
)

// MaxSubmeshes bounds a mesh so every submesh id fits the uint16 draw
// order.
const MaxSubmeshes = 1 << 16

// Kind is the closed set of mesh variants.
type Kind uint8

// Mesh kinds.
const (
	KindStatic Kind = iota
	KindSkinned
)

func (k Kind) String() string {
	switch k {
	case KindStatic:
		return "static"
	case KindSkinned:
		return "skinned"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Mesh is the capability set shared by every mesh variant. Use a type
// switch on *SkinnedMesh / *StaticMesh for variant data.
type Mesh interface {
	Kind() Kind
	BoundingBox() (lo, hi math.Vec3)
	SubmeshCount() int
	Submesh(i int) *Submesh
	IsAnimated() bool
}

// BlendMode is a texture layer's framebuffer blend.
type BlendMode uint8

// Blend modes.
const (
	BlendOpaque BlendMode = iota
	BlendAlphaKey
	BlendAlpha
	BlendNoAlphaAdd
	BlendAdd
	BlendMod
	BlendMod2x
)

// Transparent reports whether the layer needs back-to-front ordering.
func (b BlendMode) Transparent() bool {
	return b >= BlendAlpha
}

// TextureLayer is one material stage of a submesh.
type TextureLayer struct {
	Texture int
	// Shader is 0 for opaque, 2 for decals, anything above 0 sorts as an
	// overlay.
	Shader int
	Blend  BlendMode
}

// Submesh is a contiguous draw range of the mesh.
type Submesh struct {
	ID          int
	Geoset      int
	VertexStart int
	VertexCount int
	IndexStart  int
	IndexCount  int
	Layers      []TextureLayer
	// Extremities index vertices that bound the submesh for sorting.
	Extremities []int
}

// Shader returns the first layer's shader class, 0 without layers.
func (s *Submesh) Shader() int {
	if len(s.Layers) == 0 {
		return 0
	}
	return s.Layers[0].Shader
}

// Skin is an alternate view: the subset of submeshes it draws.
type Skin struct {
	Name      string
	Submeshes []int
}

// Data is the in-memory dataset produced by a loader.
type Data struct {
	Name            string
	Vertices        []skin.Vertex
	Indices         []uint16
	Submeshes       []Submesh
	Skins           []Skin
	Bones           []skeleton.Bone
	Animations      []Animation
	GlobalSequences []float32
}

// New builds the variant matching the dataset: skinned when it carries
// bones, static otherwise.
func New(d Data) (Mesh, error) {
	if len(d.Bones) > 0 {
		return NewSkinnedMesh(d)
	}
	return NewStaticMesh(d)
}

// geometry is the part shared by both variants.
type geometry struct {
	name      string
	vertices  []skin.Vertex
	indices   []uint16
	submeshes []Submesh
	skins     []Skin
	lo, hi    math.Vec3
}

func newGeometry(d *Data) (geometry, error) {
	if len(d.Submeshes) > MaxSubmeshes {
		return geometry{}, fmt.Errorf("%d submeshes, limit %d: %w", len(d.Submeshes), MaxSubmeshes, ErrSubmeshRange)
	}
	g := geometry{
		name:      d.Name,
		vertices:  append([]skin.Vertex(nil), d.Vertices...),
		indices:   append([]uint16(nil), d.Indices...),
		submeshes: make([]Submesh, len(d.Submeshes)),
		skins:     d.Skins,
	}
	copy(g.submeshes, d.Submeshes)

	nv, ni := len(g.vertices), len(g.indices)
	for i := range g.submeshes {
		s := &g.submeshes[i]
		if s.VertexStart < 0 || s.VertexCount < 0 || s.VertexStart+s.VertexCount > nv {
			return g, fmt.Errorf("submesh %d vertices [%d,+%d) of %d: %w", i, s.VertexStart, s.VertexCount, nv, ErrSubmeshRange)
		}
		if s.IndexStart < 0 || s.IndexCount < 0 || s.IndexStart+s.IndexCount > ni {
			return g, fmt.Errorf("submesh %d indices [%d,+%d) of %d: %w", i, s.IndexStart, s.IndexCount, ni, ErrSubmeshRange)
		}
		for _, idx := range g.indices[s.IndexStart : s.IndexStart+s.IndexCount] {
			if int(idx) >= nv {
				return g, fmt.Errorf("submesh %d index %d of %d vertices: %w", i, idx, nv, ErrSubmeshRange)
			}
		}
		for _, e := range s.Extremities {
			if e < 0 || e >= nv {
				return g, fmt.Errorf("submesh %d extremity %d: %w", i, e, ErrSubmeshRange)
			}
		}
		if len(s.Extremities) == 0 {
			s.Extremities = extremities(g.vertices, s)
		}
	}

	if len(g.skins) == 0 {
		all := make([]int, len(g.submeshes))
		for i := range all {
			all[i] = i
		}
		g.skins = []Skin{{Name: "default", Submeshes: all}}
	}
	for si, sk := range g.skins {
		for _, i := range sk.Submeshes {
			if i < 0 || i >= len(g.submeshes) {
				return g, fmt.Errorf("skin %d (%q) submesh %d of %d: %w", si, sk.Name, i, len(g.submeshes), ErrSubmeshRange)
			}
		}
	}

	g.lo, g.hi = skin.Bounds(g.vertices)
	return g, nil
}

// extremities picks the vertices at the minimum and maximum of each axis.
func extremities(vs []skin.Vertex, s *Submesh) []int {
	if s.VertexCount == 0 {
		return nil
	}
	var best [6]int
	for k := range best {
		best[k] = s.VertexStart
	}
	for i := s.VertexStart; i < s.VertexStart+s.VertexCount; i++ {
		p := vs[i].Position
		if p.X < vs[best[0]].Position.X {
			best[0] = i
		}
		if p.X > vs[best[1]].Position.X {
			best[1] = i
		}
		if p.Y < vs[best[2]].Position.Y {
			best[2] = i
		}
		if p.Y > vs[best[3]].Position.Y {
			best[3] = i
		}
		if p.Z < vs[best[4]].Position.Z {
			best[4] = i
		}
		if p.Z > vs[best[5]].Position.Z {
			best[5] = i
		}
	}
	out := make([]int, 0, len(best))
	seen := make(map[int]bool, len(best))
	for _, i := range best {
		if !seen[i] {
			seen[i] = true
			out = append(out, i)
		}
	}
	return out
}

// Name returns the asset name.
func (g *geometry) Name() string { return g.name }

// BoundingBox returns the bind-pose bounds.
func (g *geometry) BoundingBox() (lo, hi math.Vec3) { return g.lo, g.hi }

// SubmeshCount returns the number of submeshes.
func (g *geometry) SubmeshCount() int { return len(g.submeshes) }

// Submesh returns submesh i. The result must not be modified.
func (g *geometry) Submesh(i int) *Submesh { return &g.submeshes[i] }

// Vertices returns the bind-pose vertices. Read-only.
func (g *geometry) Vertices() []skin.Vertex { return g.vertices }

// Indices returns the triangle list. Read-only.
func (g *geometry) Indices() []uint16 { return g.indices }

// SkinCount returns the number of views.
func (g *geometry) SkinCount() int { return len(g.skins) }

// Skin returns view i.
func (g *geometry) Skin(i int) (*Skin, error) {
	if i < 0 || i >= len(g.skins) {
		return nil, fmt.Errorf("skin %d of %d: %w", i, len(g.skins), ErrNoSkin)
	}
	return &g.skins[i], nil
}
