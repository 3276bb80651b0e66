// Package skeleton evaluates bone hierarchies stored as an index arena.
package skeleton

import (
	"github.com/Faultbox/m2skin/internal/engine/keyframe"
	"github.com/Faultbox/m2skin/pkg/math"
)

// NoParent marks a root bone.
const NoParent = -1

// Bone is one joint of the hierarchy. Bones are immutable once the
// skeleton is built; evaluated state lives in Pose.
type Bone struct {
	Name string
	// KeyBoneID is the well-known slot (head, hands, ...) or -1.
	KeyBoneID int
	// Parent indexes the owning skeleton's bones, or NoParent.
	Parent int
	// Pivot is the rotation and scale origin in model space.
	Pivot math.Vec3

	Translation keyframe.Track[math.Vec3]
	Rotation    keyframe.Track[math.Quat]
	Scale       keyframe.Track[math.Vec3]
}

// NewBone returns a static bone with empty tracks.
func NewBone(name string, parent int, pivot math.Vec3) Bone {
	return Bone{
		Name:        name,
		KeyBoneID:   -1,
		Parent:      parent,
		Pivot:       pivot,
		Translation: keyframe.NewTrack[math.Vec3](keyframe.Linear),
		Rotation:    keyframe.NewTrack[math.Quat](keyframe.Linear),
		Scale:       keyframe.NewTrack[math.Vec3](keyframe.Linear),
	}
}

// Animated reports whether any track of the bone has more than one key.
func (b *Bone) Animated() bool {
	return b.Translation.Animated() || b.Rotation.Animated() || b.Scale.Animated()
}

// Transform is a decomposed local transform.
type Transform struct {
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
}

// IdentityTransform returns the rest transform.
func IdentityTransform() Transform {
	return Transform{
		Rotation: math.QuatIdentity(),
		Scale:    math.V3(1, 1, 1),
	}
}

// Matrix composes the transform about pivot.
func (t Transform) Matrix(pivot math.Vec3) math.Mat4 {
	return math.TRS(t.Translation, t.Rotation, t.Scale, pivot)
}

// TransformFromMatrix is the inverse of Transform.Matrix: it recovers a
// transform about pivot from a composed local matrix.
func TransformFromMatrix(m math.Mat4, pivot math.Vec3) Transform {
	t, r, s := m.Decompose()
	return Transform{
		Translation: t.Add(m.TransformDirection(pivot)).Sub(pivot),
		Rotation:    r,
		Scale:       s,
	}
}

// Blend mixes t toward other by weight: lerp for translation and scale,
// nlerp for rotation.
func (t Transform) Blend(other Transform, weight float32) Transform {
	return Transform{
		Translation: t.Translation.Lerp(other.Translation, weight),
		Rotation:    t.Rotation.Lerp(other.Rotation, weight),
		Scale:       t.Scale.Lerp(other.Scale, weight),
	}
}

// TransitionTo moves from a saved pose toward the current one. Scale is
// taken from the current pose unblended.
func (t Transform) TransitionTo(current Transform, weight float32) Transform {
	return Transform{
		Translation: t.Translation.Lerp(current.Translation, weight),
		Rotation:    t.Rotation.Slerp(current.Rotation, weight),
		Scale:       current.Scale,
	}
}
