package m2

import (
	"fmt"

	"github.com/Faultbox/m2skin/internal/engine/skeleton"
	"github.com/Faultbox/m2skin/internal/engine/skin"
)

// SkinnedMesh is an immutable bone-animated asset. Any number of
// instances may share it.
type SkinnedMesh struct {
	geometry
	skeleton   *skeleton.Skeleton
	animations *AnimationTable
	globalSeqs []float32
}

var _ Mesh = (*SkinnedMesh)(nil)

// NewSkinnedMesh validates d and normalises the vertex weights.
func NewSkinnedMesh(d Data) (*SkinnedMesh, error) {
	g, err := newGeometry(&d)
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", d.Name, err)
	}
	skel, err := skeleton.New(d.Bones)
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", d.Name, err)
	}
	for i := range g.vertices {
		v := &g.vertices[i]
		for j, w := range v.Weights {
			if w > 0 && int(v.Bones[j]) >= skel.Len() {
				return nil, fmt.Errorf("mesh %q vertex %d bone %d of %d: %w", d.Name, i, v.Bones[j], skel.Len(), ErrBoneIndex)
			}
		}
	}
	skin.NormalizeWeights(g.vertices)

	return &SkinnedMesh{
		geometry:   g,
		skeleton:   skel,
		animations: NewAnimationTable(d.Animations),
		globalSeqs: append([]float32(nil), d.GlobalSequences...),
	}, nil
}

// Kind returns KindSkinned.
func (m *SkinnedMesh) Kind() Kind { return KindSkinned }

// IsAnimated reports whether any bone track changes over time.
func (m *SkinnedMesh) IsAnimated() bool { return m.skeleton.Animated() }

// Skeleton returns the shared bone hierarchy.
func (m *SkinnedMesh) Skeleton() *skeleton.Skeleton { return m.skeleton }

// Animations returns the sequence table.
func (m *SkinnedMesh) Animations() *AnimationTable { return m.animations }

// GlobalSequences returns the global sequence lengths.
func (m *SkinnedMesh) GlobalSequences() []float32 { return m.globalSeqs }

// FrameCount is the number of frames the animation table spans.
func (m *SkinnedMesh) FrameCount() int { return m.animations.FrameCount() }
