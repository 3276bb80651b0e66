package m2

// GeosetSet toggles submesh groups. Geosets without an explicit setting
// are visible when they are geoset 0 or when the set was created with
// all visible.
type GeosetSet struct {
	explicit   map[int]bool
	allVisible bool
}

// NewGeosetSet returns a set with the given default.
func NewGeosetSet(allVisible bool) GeosetSet {
	return GeosetSet{explicit: make(map[int]bool), allVisible: allVisible}
}

// Set overrides one geoset.
func (g *GeosetSet) Set(id int, visible bool) {
	if g.explicit == nil {
		g.explicit = make(map[int]bool)
	}
	g.explicit[id] = visible
}

// Visible reports whether geoset id is drawn.
func (g *GeosetSet) Visible(id int) bool {
	if v, ok := g.explicit[id]; ok {
		return v
	}
	return g.allVisible || id == 0
}

// Reset drops explicit settings.
func (g *GeosetSet) Reset() {
	clear(g.explicit)
}
