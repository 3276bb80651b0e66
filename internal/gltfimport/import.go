// Package gltfimport converts glTF 2.0 skinned models into m2 datasets.
//
// Joint animation is baked: every glTF animation is sampled at the
// playback rate and laid out on one frame timeline, one sequence per
// animation, so the result plays through the regular m2 pipeline.
package gltfimport

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"github.com/Faultbox/m2skin/internal/engine/m2"
	"github.com/Faultbox/m2skin/internal/engine/rendersort"
	"github.com/Faultbox/m2skin/internal/engine/skin"
	"github.com/Faultbox/m2skin/pkg/math"
	"github.com/Faultbox/m2skin/pkg/names"
)

// Import errors.
var (
	ErrNoMesh          = errors.New("document has no triangle mesh")
	ErrTooManyVertices = errors.New("vertex count exceeds 16-bit indices")
	ErrAccessor        = errors.New("unsupported accessor layout")
)

// Option configures an import.
type Option func(*importer)

// WithLogger sets the logger for import diagnostics.
func WithLogger(l *zap.Logger) Option {
	return func(im *importer) {
		if l != nil {
			im.log = l
		}
	}
}

// WithScale multiplies every position and translation.
func WithScale(s float32) Option {
	return func(im *importer) {
		if s > 0 {
			im.scale = s
		}
	}
}

type importer struct {
	doc   *gltf.Document
	log   *zap.Logger
	scale float32

	data m2.Data
	// joints maps a node index to its bone index.
	joints map[int]int
}

// Open reads a .gltf or .glb file and builds the matching mesh variant.
func Open(path string, opts ...Option) (m2.Mesh, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	d, err := Decode(doc, opts...)
	if err != nil {
		return nil, fmt.Errorf("import %s: %w", path, err)
	}
	if d.Name == "" {
		d.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return m2.New(d)
}

// Decode converts a parsed document. Skinning data comes from the first
// skin referenced by a mesh node; meshes without skin become static
// geometry in the same dataset.
func Decode(doc *gltf.Document, opts ...Option) (m2.Data, error) {
	im := &importer{
		doc:    doc,
		log:    zap.NewNop(),
		scale:  1,
		joints: make(map[int]int),
	}
	for _, opt := range opts {
		opt(im)
	}
	skinIdx := im.findSkin()
	if skinIdx >= 0 {
		if err := im.readSkeleton(doc.Skins[skinIdx]); err != nil {
			return m2.Data{}, err
		}
	}
	if err := im.readMeshes(); err != nil {
		return m2.Data{}, err
	}
	if len(im.data.Submeshes) == 0 {
		return m2.Data{}, ErrNoMesh
	}

	im.log.Debug("gltf decoded",
		zap.Int("vertices", len(im.data.Vertices)),
		zap.Int("submeshes", len(im.data.Submeshes)),
		zap.Int("bones", len(im.data.Bones)),
		zap.Int("animations", len(im.data.Animations)))
	return im.data, nil
}

func (im *importer) findSkin() int {
	for _, n := range im.doc.Nodes {
		if n.Mesh != nil && n.Skin != nil {
			return int(*n.Skin)
		}
	}
	if len(im.doc.Skins) > 0 {
		return 0
	}
	return -1
}

func (im *importer) readMeshes() error {
	seen := make(map[int]bool)
	for _, n := range im.doc.Nodes {
		if n.Mesh == nil || seen[int(*n.Mesh)] {
			continue
		}
		mi := int(*n.Mesh)
		seen[mi] = true
		skinned := n.Skin != nil && len(im.joints) > 0
		mesh := im.doc.Meshes[mi]
		if im.data.Name == "" {
			im.data.Name = mesh.Name
		}
		for pi, prim := range mesh.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				im.log.Debug("skipping primitive",
					zap.String("mesh", mesh.Name),
					zap.Int("primitive", pi))
				continue
			}
			if err := im.readPrimitive(prim, skinned); err != nil {
				return fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, pi, err)
			}
		}
	}
	return nil
}

func (im *importer) readPrimitive(prim *gltf.Primitive, skinned bool) error {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return fmt.Errorf("no POSITION: %w", ErrAccessor)
	}
	positions, err := modeler.ReadPosition(im.doc, im.doc.Accessors[posIdx], nil)
	if err != nil {
		return err
	}
	base := len(im.data.Vertices)
	if base+len(positions) > 1<<16 {
		return ErrTooManyVertices
	}

	verts := make([]skin.Vertex, len(positions))
	for i, p := range positions {
		verts[i].Position = math.Vec3FromArray(p).Scale(im.scale)
	}
	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(im.doc, im.doc.Accessors[idx], nil)
		if err != nil {
			return err
		}
		for i := range verts {
			if i < len(normals) {
				verts[i].Normal = math.Vec3FromArray(normals[i])
			}
		}
	}
	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(im.doc, im.doc.Accessors[idx], nil)
		if err != nil {
			return err
		}
		for i := range verts {
			if i < len(uvs) {
				verts[i].TexCoord = math.Vec2{X: uvs[i][0], Y: uvs[i][1]}
			}
		}
	}
	if skinned {
		if err := im.readInfluences(prim, verts); err != nil {
			return err
		}
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(im.doc, im.doc.Accessors[int(*prim.Indices)], nil)
		if err != nil {
			return err
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	start := len(im.data.Indices)
	for _, i := range indices {
		if int(i) >= len(positions) {
			return fmt.Errorf("index %d of %d vertices: %w", i, len(positions), ErrAccessor)
		}
		im.data.Indices = append(im.data.Indices, uint16(base+int(i)))
	}
	im.data.Vertices = append(im.data.Vertices, verts...)
	im.data.Submeshes = append(im.data.Submeshes, m2.Submesh{
		ID:          len(im.data.Submeshes),
		VertexStart: base,
		VertexCount: len(verts),
		IndexStart:  start,
		IndexCount:  len(indices),
		Layers:      []m2.TextureLayer{im.layer(prim)},
	})
	return nil
}

func (im *importer) readInfluences(prim *gltf.Primitive, verts []skin.Vertex) error {
	jIdx, okJ := prim.Attributes[gltf.JOINTS_0]
	wIdx, okW := prim.Attributes[gltf.WEIGHTS_0]
	if !okJ || !okW {
		return nil
	}
	joints, err := modeler.ReadJoints(im.doc, im.doc.Accessors[jIdx], nil)
	if err != nil {
		return err
	}
	weights, err := modeler.ReadWeights(im.doc, im.doc.Accessors[wIdx], nil)
	if err != nil {
		return err
	}
	for i := range verts {
		if i >= len(joints) || i >= len(weights) {
			break
		}
		verts[i].Bones = joints[i]
		verts[i].Weights = weights[i]
	}
	return nil
}

// layer maps the glTF material onto a texture layer. Blended materials
// sort as overlays; materials named as decals sort onto their receiver.
func (im *importer) layer(prim *gltf.Primitive) m2.TextureLayer {
	l := m2.TextureLayer{Texture: -1}
	if prim.Material == nil {
		return l
	}
	mat := im.doc.Materials[int(*prim.Material)]
	if pbr := mat.PBRMetallicRoughness; pbr != nil && pbr.BaseColorTexture != nil {
		l.Texture = int(pbr.BaseColorTexture.Index)
	}
	switch mat.AlphaMode {
	case gltf.AlphaMask:
		l.Blend = m2.BlendAlphaKey
	case gltf.AlphaBlend:
		l.Shader = 1
		l.Blend = m2.BlendAlpha
	}
	if strings.Contains(names.Fold(mat.Name), "decal") {
		l.Shader = rendersort.ShaderDecal
		l.Blend = m2.BlendAlpha
	}
	return l
}
