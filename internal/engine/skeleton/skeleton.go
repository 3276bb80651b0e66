package skeleton

import (
	"errors"
	"fmt"

	"github.com/Faultbox/m2skin/pkg/names"
)

// Validation errors returned by New.
var (
	ErrInvalidParent = errors.New("invalid parent index")
	ErrSkeletonCycle = errors.New("skeleton contains a cycle")
	ErrBoneIndex     = errors.New("bone index out of range")
)

// Skeleton owns an arena of bones. It is read-only after New and may be
// shared by any number of poses.
type Skeleton struct {
	bones    []Bone
	children [][]int
	roots    []int
	order    []int
	byName   names.Index[int]
	keyBones map[int]int
}

// New validates the parent links and precomputes the evaluation order.
func New(bones []Bone) (*Skeleton, error) {
	n := len(bones)
	s := &Skeleton{
		bones:    bones,
		children: make([][]int, n),
		byName:   make(names.Index[int], n),
		keyBones: make(map[int]int),
	}

	for i := range bones {
		p := bones[i].Parent
		switch {
		case p == NoParent:
			s.roots = append(s.roots, i)
		case p < 0 || p >= n || p == i:
			return nil, fmt.Errorf("bone %d (%q) parent %d: %w", i, bones[i].Name, p, ErrInvalidParent)
		default:
			s.children[p] = append(s.children[p], i)
		}
		s.byName.Add(bones[i].Name, i)
		if id := bones[i].KeyBoneID; id >= 0 {
			if _, dup := s.keyBones[id]; !dup {
				s.keyBones[id] = i
			}
		}
	}

	// Depth-first from every root. Bones inside a parent cycle are never
	// reached from a root.
	s.order = make([]int, 0, n)
	stack := make([]int, 0, n)
	for i := len(s.roots) - 1; i >= 0; i-- {
		stack = append(stack, s.roots[i])
	}
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		s.order = append(s.order, b)
		kids := s.children[b]
		for i := len(kids) - 1; i >= 0; i-- {
			stack = append(stack, kids[i])
		}
	}
	if len(s.order) != n {
		return nil, fmt.Errorf("%d of %d bones unreachable from a root: %w", n-len(s.order), n, ErrSkeletonCycle)
	}
	return s, nil
}

// Len returns the bone count.
func (s *Skeleton) Len() int { return len(s.bones) }

// Bone returns bone i. The result must not be modified.
func (s *Skeleton) Bone(i int) *Bone { return &s.bones[i] }

// Roots returns the indices of bones without a parent.
func (s *Skeleton) Roots() []int { return s.roots }

// Children returns the direct children of bone i.
func (s *Skeleton) Children(i int) []int { return s.children[i] }

// Order returns bone indices in evaluation order: every parent precedes
// its children.
func (s *Skeleton) Order() []int { return s.order }

// JointIndex finds a bone by name ignoring case.
func (s *Skeleton) JointIndex(name string) (int, bool) {
	return s.byName.Lookup(name)
}

// KeyBone finds the bone registered for a key-bone slot.
func (s *Skeleton) KeyBone(id int) (int, bool) {
	i, ok := s.keyBones[id]
	return i, ok
}

// Animated reports whether any bone has an animated track.
func (s *Skeleton) Animated() bool {
	for i := range s.bones {
		if s.bones[i].Animated() {
			return true
		}
	}
	return false
}

// CheckIndex returns ErrBoneIndex when i does not name a bone.
func (s *Skeleton) CheckIndex(i int) error {
	if i < 0 || i >= len(s.bones) {
		return fmt.Errorf("bone %d of %d: %w", i, len(s.bones), ErrBoneIndex)
	}
	return nil
}
