package m2

import (
	"go.uber.org/zap"

	"github.com/Faultbox/m2skin/internal/engine/rendersort"
	"github.com/Faultbox/m2skin/pkg/math"
)

// DrawList splits a draw order into render passes. Both passes keep the
// relative order of the input.
type DrawList struct {
	Solid       []uint16
	Transparent []uint16
}

// Len returns the total number of submeshes.
func (d DrawList) Len() int { return len(d.Solid) + len(d.Transparent) }

// SortedDrawOrder returns the visible submeshes in draw order for the
// given camera. With sorting enabled the order is farthest first with
// decals after their receivers, computed against the current skinned
// pose; otherwise it is the view order.
func (i *Instance) SortedDrawOrder(camPos, camForward math.Vec3) []uint16 {
	visible := i.Visible()
	if !i.sorting {
		return toUint16(visible)
	}

	verts := i.Skin()
	cam := rendersort.Camera{Position: camPos, Forward: camForward}
	tags := make([]rendersort.Tag, len(visible))
	for n, s := range visible {
		sm := i.mesh.Submesh(s)
		i.points = i.points[:0]
		for _, v := range sm.Extremities {
			i.points = append(i.points, verts[v].Position)
		}
		tags[n] = rendersort.Measure(s, sm.Shader(), i.points, cam)
	}
	sorted := rendersort.Sort(tags)
	if ce := i.log.Check(zap.DebugLevel, "sorted submeshes"); ce != nil {
		ce.Write(zap.Ints("order", rendersort.Submeshes(sorted)))
	}

	out := make([]uint16, len(sorted))
	for n := range sorted {
		out[n] = uint16(sorted[n].Submesh)
	}
	return out
}

// DrawList returns SortedDrawOrder split into an opaque pass (shader 0)
// and a transparent pass.
func (i *Instance) DrawList(camPos, camForward math.Vec3) DrawList {
	var dl DrawList
	for _, s := range i.SortedDrawOrder(camPos, camForward) {
		if i.mesh.Submesh(int(s)).Shader() == rendersort.ShaderOpaque {
			dl.Solid = append(dl.Solid, s)
		} else {
			dl.Transparent = append(dl.Transparent, s)
		}
	}
	return dl
}

func toUint16(ids []int) []uint16 {
	out := make([]uint16, len(ids))
	for n, id := range ids {
		out[n] = uint16(id)
	}
	return out
}
