package rendersort

// SortByNear reports whether t1 should be compared to t2 by its near
// edge. Overlays always are. Otherwise t1 uses its near edge only when it
// does not contain the camera and its near edge falls inside t2's range;
// every other case uses the far edge.
func SortByNear(t1, t2 *Tag) bool {
	if t1.Overlay() {
		return true
	}
	return !t1.ContainsCam && t1.Near > t2.Near && t1.Near < t2.Far
}

// key returns the distance a is compared by when paired with b.
func key(a, b *Tag) float32 {
	if SortByNear(a, b) {
		return a.Near
	}
	return a.Far
}

// Farther reports whether a belongs before b in a back-to-front order.
func Farther(a, b Tag) bool {
	return key(&a, &b) > key(&b, &a)
}

// QuickSort sorts items so that farther(items[i], items[j]) never holds
// for i > j within each partition. The comparator may depend on the pair
// being compared; it must only be irreflexive.
func QuickSort[T any](items []T, farther func(a, b T) bool) {
	lo, hi := 0, len(items)-1
	for lo < hi {
		p := partition(items, lo, hi, farther)
		// Recurse into the smaller half to bound stack depth.
		if p-lo < hi-p {
			QuickSort(items[lo:p+1], farther)
			lo = p + 1
		} else {
			QuickSort(items[p+1:hi+1], farther)
			hi = p
		}
	}
}

// partition is Hoare's scheme around the midpoint value. It returns j in
// [lo, hi-1]; items[lo..j] are not nearer than the pivot and
// items[j+1..hi] are not farther.
func partition[T any](items []T, lo, hi int, farther func(a, b T) bool) int {
	pivot := items[lo+(hi-lo)/2]
	i, j := lo-1, hi+1
	for {
		for {
			i++
			if !farther(items[i], pivot) {
				break
			}
		}
		for {
			j--
			if !farther(pivot, items[j]) {
				break
			}
		}
		if i >= j {
			return j
		}
		items[i], items[j] = items[j], items[i]
	}
}

// Sort returns the tags in draw order: non-decals farthest first, then
// every decal placed directly after its receiver. The input is not
// modified.
func Sort(tags []Tag) []Tag {
	order := make([]Tag, 0, len(tags))
	var decals []Tag
	for _, t := range tags {
		if t.Decal() {
			decals = append(decals, t)
			continue
		}
		order = append(order, t)
	}
	QuickSort(order, Farther)
	return InsertDecals(order, decals)
}

// InsertDecals places each decal immediately after its receiver in a
// farthest-first order. Starting from the last tag farther than the
// decal and moving toward the far end, the first opaque tag whose extent
// encloses the decal's extent receives it. A decal with no receiver is
// placed by its own far distance.
func InsertDecals(order, decals []Tag) []Tag {
	for _, d := range decals {
		// Tags in [0, pos) are farther than the decal.
		pos := 0
		for pos < len(order) && order[pos].Far > d.Far {
			pos++
		}
		at := pos
		// Receivers entirely nearer than the decal are not considered: a
		// decal lies on its receiver, never behind it.
		for r := pos - 1; r >= 0; r-- {
			if order[r].Shader == ShaderOpaque && order[r].Extent.Encloses(d.Extent) {
				at = r + 1
				break
			}
		}
		order = append(order, Tag{})
		copy(order[at+1:], order[at:])
		order[at] = d
	}
	return order
}

// Submeshes extracts the submesh ids in order.
func Submeshes(tags []Tag) []int {
	ids := make([]int, len(tags))
	for i := range tags {
		ids[i] = tags[i].Submesh
	}
	return ids
}
