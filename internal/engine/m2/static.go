package m2

import "fmt"

// StaticMesh is an asset without bones.
type StaticMesh struct {
	geometry
}

var _ Mesh = (*StaticMesh)(nil)

// NewStaticMesh validates d. Bone data is ignored.
func NewStaticMesh(d Data) (*StaticMesh, error) {
	g, err := newGeometry(&d)
	if err != nil {
		return nil, fmt.Errorf("mesh %q: %w", d.Name, err)
	}
	return &StaticMesh{geometry: g}, nil
}

// Kind returns KindStatic.
func (m *StaticMesh) Kind() Kind { return KindStatic }

// IsAnimated is always false.
func (m *StaticMesh) IsAnimated() bool { return false }
