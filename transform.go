/*
Copyright © 2026 the geoset authors.
This file is part of geoset.

geoset is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

geoset is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with geoset.  If not, see <http://www.gnu.org/licenses/>.
*/

package geoset

import (
	"fmt"

	"github.com/ctessum/geom"
	"github.com/ctessum/geom/op"
	"github.com/ctessum/geom/proj"
	"github.com/sirupsen/logrus"

	"github.com/spatialmodel/geoset/fits"
)

// Log receives diagnostic messages. It defaults to the logrus standard
// logger and may be replaced.
var Log logrus.FieldLogger = logrus.StandardLogger()

// transformPolygonal applies t to every coordinate of p.
func transformPolygonal(p geom.Polygonal, t proj.Transformer) (geom.Polygonal, error) {
	g, err := p.Transform(t)
	if err != nil {
		return nil, err
	}
	out, ok := g.(geom.Polygonal)
	if !ok {
		return nil, fmt.Errorf("geoset: transform returned non-polygonal geometry %T", g)
	}
	return out, nil
}

// copyPolygonal duplicates p by computing its union with an empty
// geometry. The coordinate rings of the copy may be reordered relative to
// the original, so string representations are not guaranteed equal.
func copyPolygonal(p geom.Polygonal) geom.Polygonal {
	if p == nil {
		return nil
	}
	return p.Union(geom.Polygon{})
}

// Translate returns a copy of g with coordinates shifted by dx and dy.
func (g *Geo) Translate(dx, dy float64) *Geo {
	out := &Geo{Attrs: g.Attrs.Copy()}
	if g.Geom != nil {
		// The shift cannot fail, so the error is discarded.
		shifted, _ := transformPolygonal(g.Geom, func(x, y float64) (float64, float64, error) {
			return x + dx, y + dy, nil
		})
		out.Geom = shifted
	}
	return out
}

// PixToWorld returns a copy of g with coordinates converted from the pixel
// system to the WCS world system described by hdr.
//
// Any attributes describing the coordinate system of the Geo must be
// updated manually by the caller.
func (g *Geo) PixToWorld(hdr *fits.Header) (*Geo, error) {
	return g.convert(hdr, false)
}

// WorldToPix returns a copy of g with coordinates converted from the WCS
// world system described by hdr to the pixel system.
//
// Any attributes describing the coordinate system of the Geo must be
// updated manually by the caller.
func (g *Geo) WorldToPix(hdr *fits.Header) (*Geo, error) {
	return g.convert(hdr, true)
}

func (g *Geo) convert(hdr *fits.Header, inverse bool) (*Geo, error) {
	out := &Geo{Attrs: g.Attrs.Copy()}
	if g.Geom == nil {
		return out, nil
	}
	if hdr == nil {
		return nil, fmt.Errorf("geoset: nil header for coordinate conversion")
	}
	w, err := hdr.WCS()
	if err != nil {
		return nil, err
	}
	t := proj.Transformer(w.PixToWorld)
	if inverse {
		t = proj.Transformer(w.WorldToPix)
	}
	out.Geom, err = transformPolygonal(g.Geom, t)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Copy returns a deep copy of g. The geometry is duplicated via a union
// with an empty geometry, so its rings may be reordered; the attribute map
// is rebuilt key by key.
func (g *Geo) Copy() *Geo {
	return &Geo{Geom: copyPolygonal(g.Geom), Attrs: g.Attrs.Copy()}
}

// Translate returns a copy of the item with all coordinates shifted by dx
// and dy.
func (it *Item) Translate(dx, dy float64) *Item {
	geos := make([]*Geo, len(it.Geos))
	for i, g := range it.Geos {
		geos[i] = g.Translate(dx, dy)
	}
	return &Item{Geos: geos, Attrs: it.Attrs.Copy()}
}

// PixToWorld returns a copy of the item with all coordinates converted to
// the WCS world system described by hdr.
func (it *Item) PixToWorld(hdr *fits.Header) (*Item, error) {
	return it.convert(hdr, false)
}

// WorldToPix returns a copy of the item with all coordinates converted to
// the pixel system described by hdr.
func (it *Item) WorldToPix(hdr *fits.Header) (*Item, error) {
	return it.convert(hdr, true)
}

func (it *Item) convert(hdr *fits.Header, inverse bool) (*Item, error) {
	geos := make([]*Geo, len(it.Geos))
	var err error
	for i, g := range it.Geos {
		geos[i], err = g.convert(hdr, inverse)
		if err != nil {
			return nil, err
		}
	}
	return &Item{Geos: geos, Attrs: it.Attrs.Copy()}, nil
}

// Copy returns a deep copy of the item.
func (it *Item) Copy() *Item {
	geos := make([]*Geo, len(it.Geos))
	for i, g := range it.Geos {
		geos[i] = g.Copy()
	}
	return &Item{Geos: geos, Attrs: it.Attrs.Copy()}
}

// Translate returns a copy of the tree with all coordinates shifted by dx
// and dy. Attributes and the header are carried over unchanged.
func (gs *Geoset) Translate(dx, dy float64) *Geoset {
	items := make([]*Item, len(gs.Items))
	for i, item := range gs.Items {
		items[i] = item.Translate(dx, dy)
	}
	return &Geoset{Items: items, Attrs: gs.Attrs.Copy(), Hdr: gs.Hdr.Copy()}
}

// PixToWorld returns a copy of the tree with all coordinates converted
// from the pixel system to the WCS world system. If hdr is nil, the header
// stored in the tree is used instead.
//
// Any attributes describing the coordinate system of the tree must be
// updated manually by the caller.
func (gs *Geoset) PixToWorld(hdr *fits.Header) (*Geoset, error) {
	return gs.convert(hdr, false)
}

// WorldToPix returns a copy of the tree with all coordinates converted
// from the WCS world system to the pixel system. If hdr is nil, the header
// stored in the tree is used instead.
//
// Any attributes describing the coordinate system of the tree must be
// updated manually by the caller.
func (gs *Geoset) WorldToPix(hdr *fits.Header) (*Geoset, error) {
	return gs.convert(hdr, true)
}

func (gs *Geoset) convert(hdr *fits.Header, inverse bool) (*Geoset, error) {
	if hdr == nil {
		hdr = gs.Hdr
	}
	items := make([]*Item, len(gs.Items))
	var err error
	for i, item := range gs.Items {
		items[i], err = item.convert(hdr, inverse)
		if err != nil {
			return nil, err
		}
	}
	return &Geoset{Items: items, Attrs: gs.Attrs.Copy(), Hdr: gs.Hdr.Copy()}, nil
}

// Copy returns a deep copy of the tree. Every geometry is duplicated via a
// union with an empty geometry (so rings may be reordered), every
// attribute map is rebuilt key by key, and the header is duplicated via
// its own copy facility.
func (gs *Geoset) Copy() *Geoset {
	items := make([]*Item, len(gs.Items))
	for i, item := range gs.Items {
		items[i] = item.Copy()
	}
	return &Geoset{Items: items, Attrs: gs.Attrs.Copy(), Hdr: gs.Hdr.Copy()}
}

// IsEmpty reports whether p is nil or contains no coordinates.
func IsEmpty(p geom.Polygonal) bool {
	if p == nil {
		return true
	}
	for _, poly := range p.Polygons() {
		for _, r := range poly {
			if len(r) > 0 {
				return false
			}
		}
	}
	return true
}

// Subpolygons splits p into its component single polygons, in ring order.
// Each returned polygon holds one exterior ring first, followed by the
// interior rings (holes) that lie inside it. A simple Polygon yields a
// one-element result, so callers can treat single and multi geometries
// uniformly.
func Subpolygons(p geom.Polygonal) []geom.Polygon {
	if p == nil {
		return nil
	}
	var out []geom.Polygon
	for _, poly := range p.Polygons() {
		out = append(out, splitRings(poly)...)
	}
	return out
}

// splitRings classifies the rings of poly as exteriors or holes and
// assigns each hole to the exterior that contains it. A ring is a hole if
// a decisive vertex of it lies inside the polygon formed by the other
// rings; islands nested inside holes come out as exteriors again because
// the even-odd rule counts both enclosing rings.
func splitRings(poly geom.Polygon) []geom.Polygon {
	if len(poly) <= 1 {
		if len(poly) == 0 {
			return nil
		}
		return []geom.Polygon{poly}
	}
	type sub struct {
		rings geom.Polygon
	}
	var exts []*sub
	var holes [][]geom.Point
	for i, r := range poly {
		others := make(geom.Polygon, 0, len(poly)-1)
		others = append(others, poly[:i]...)
		others = append(others, poly[i+1:]...)
		if ringInside(r, others) {
			holes = append(holes, r)
		} else {
			exts = append(exts, &sub{rings: geom.Polygon{r}})
		}
	}
	for _, h := range holes {
		placed := false
		for _, e := range exts {
			if ringInside(h, geom.Polygon{e.rings[0]}) {
				e.rings = append(e.rings, h)
				placed = true
				break
			}
		}
		if !placed {
			exts = append(exts, &sub{rings: geom.Polygon{h}})
		}
	}
	out := make([]geom.Polygon, len(exts))
	for i, e := range exts {
		out[i] = e.rings
	}
	return out
}

// ringInside reports whether ring r lies inside p, judged by the first
// vertex of r that is not on an edge of p.
func ringInside(r []geom.Point, p geom.Polygon) bool {
	for _, pt := range r {
		switch pt.Within(p) {
		case geom.Inside:
			return true
		case geom.Outside:
			return false
		}
	}
	return false
}

// broadcast normalizes vals to length n: a nil or empty slice yields n
// zeros, a single value is repeated n times, and a slice that is already
// length n is used as is.
func broadcast(vals []float64, n int) ([]float64, error) {
	switch {
	case len(vals) == 0:
		return make([]float64, n), nil
	case len(vals) == n:
		return vals, nil
	case len(vals) == 1:
		out := make([]float64, n)
		for i := range out {
			out[i] = vals[0]
		}
		return out, nil
	}
	return nil, fmt.Errorf("geoset: got %d values for %d polygons", len(vals), n)
}

// broadcastHeaders normalizes hdrs to length n in the same way as
// broadcast. A nil slice yields n nil headers.
func broadcastHeaders(hdrs []*fits.Header, n int) ([]*fits.Header, error) {
	switch {
	case len(hdrs) == 0:
		return make([]*fits.Header, n), nil
	case len(hdrs) == n:
		return hdrs, nil
	case len(hdrs) == 1:
		out := make([]*fits.Header, n)
		for i := range out {
			out[i] = hdrs[0]
		}
		return out, nil
	}
	return nil, fmt.Errorf("geoset: got %d headers for %d polygons", len(hdrs), n)
}

// PolyTranslate shifts the coordinates of each polygon by the
// corresponding dx and dy. dx and dy may each hold one value per polygon,
// a single value applied to all polygons, or nothing (no shift).
func PolyTranslate(polys []geom.Polygonal, dx, dy []float64) ([]geom.Polygonal, error) {
	dxs, err := broadcast(dx, len(polys))
	if err != nil {
		return nil, err
	}
	dys, err := broadcast(dy, len(polys))
	if err != nil {
		return nil, err
	}
	out := make([]geom.Polygonal, len(polys))
	for i, p := range polys {
		if p == nil {
			continue
		}
		d1, d2 := dxs[i], dys[i]
		out[i], err = transformPolygonal(p, func(x, y float64) (float64, float64, error) {
			return x + d1, y + d2, nil
		})
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// PolyPixToWorld converts polygon vertices from pixel coordinates to world
// coordinates according to the WCS information in the corresponding
// header. hdrs may hold one header per polygon or a single header applied
// to all polygons; a nil header leaves the corresponding polygon
// unconverted.
func PolyPixToWorld(polys []geom.Polygonal, hdrs []*fits.Header) ([]geom.Polygonal, error) {
	return polyConvert(polys, hdrs, false)
}

// PolyWorldToPix converts polygon vertices from world coordinates to pixel
// coordinates according to the WCS information in the corresponding
// header. hdrs may hold one header per polygon or a single header applied
// to all polygons; a nil header leaves the corresponding polygon
// unconverted.
func PolyWorldToPix(polys []geom.Polygonal, hdrs []*fits.Header) ([]geom.Polygonal, error) {
	return polyConvert(polys, hdrs, true)
}

func polyConvert(polys []geom.Polygonal, hdrs []*fits.Header, inverse bool) ([]geom.Polygonal, error) {
	hs, err := broadcastHeaders(hdrs, len(polys))
	if err != nil {
		return nil, err
	}
	out := make([]geom.Polygonal, len(polys))
	for i, p := range polys {
		if p == nil || hs[i] == nil {
			out[i] = p
			continue
		}
		w, err := hs[i].WCS()
		if err != nil {
			return nil, err
		}
		t := proj.Transformer(w.PixToWorld)
		if inverse {
			t = proj.Transformer(w.WorldToPix)
		}
		out[i], err = transformPolygonal(p, t)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

// ValidatePoly attempts to fix problems that make a polygon invalid, such
// as incorrectly wound rings. The result is a normalized copy of p; the
// input is not modified.
func ValidatePoly(p geom.Polygonal) (geom.Polygonal, error) {
	if p == nil {
		return nil, nil
	}
	out := copyPolygonal(p)
	if err := op.FixOrientation(out); err != nil {
		return nil, err
	}
	return out, nil
}

// CleanPoly removes extraneous parts from a polygon. A series of
// set-theoretic operations can leave empty or zero-area components behind;
// CleanPoly drops them and rebuilds the smallest value that represents
// what remains: a MultiPolygon, a single Polygon, or an empty Polygon.
func CleanPoly(p geom.Polygonal) geom.Polygonal {
	if p == nil {
		return nil
	}
	var keep []geom.Polygon
	for _, sub := range Subpolygons(p) {
		if IsEmpty(sub) || sub.Area() == 0 {
			continue
		}
		keep = append(keep, sub)
	}
	switch len(keep) {
	case 0:
		return geom.Polygon{}
	case 1:
		return keep[0]
	}
	// Flatten the kept subpolygons back into one ring list per polygon.
	mp := make(geom.MultiPolygon, len(keep))
	copy(mp, keep)
	return mp
}

// constructDifference computes p1 minus p2 with the operation that can
// report topological failures. It is a variable so tests can drive the
// recovery path in SafeDifference.
var constructDifference = func(p1, p2 geom.Geom) (geom.Geom, error) {
	return op.Construct(p1, p2, op.DIFFERENCE)
}

// SafeDifference subtracts p2 from p1. The underlying clipper sometimes
// fails when subtracting multi-part geometries all at once but succeeds
// when each part is subtracted individually, so on failure the difference
// is retried decomposed per component of p2. The result is passed through
// CleanPoly before returning.
func SafeDifference(p1, p2 geom.Polygonal) (geom.Polygonal, error) {
	g, err := constructDifference(p1, p2)
	if err == nil {
		return CleanPoly(asPolygonal(g)), nil
	}
	Log.WithFields(logrus.Fields{"err": err}).Warn(
		"geoset: difference failed; retrying per component")
	acc := copyPolygonal(p1)
	for _, sub := range Subpolygons(p2) {
		acc = acc.Difference(sub)
	}
	return CleanPoly(acc), nil
}

// polygonalWithin reports whether inner lies entirely within outer. The
// underlying containment test only handles single polygons, so both
// values are checked component by component: every component of inner
// must lie within some component of outer.
func polygonalWithin(inner, outer geom.Polygonal) (bool, error) {
	for _, ip := range inner.Polygons() {
		contained := false
		for _, outerPoly := range outer.Polygons() {
			in, err := op.Within(ip, outerPoly)
			if err != nil {
				return false, err
			}
			if in {
				contained = true
				break
			}
		}
		if !contained {
			return false, nil
		}
	}
	return true, nil
}

func asPolygonal(g geom.Geom) geom.Polygonal {
	if g == nil {
		return geom.Polygon{}
	}
	if p, ok := g.(geom.Polygonal); ok {
		return p
	}
	return geom.Polygon{}
}

// ConsolidatePolys merges a list of polygons into a single polygonal
// value. After the main polygon is formed, each member of holes is
// subtracted from it if it lies within the result so far, or added to it
// if it does not. Empty inputs yield a nil result without error.
func ConsolidatePolys(polys, holes []geom.Polygonal) (geom.Polygonal, error) {
	var poly geom.Polygonal
	switch len(polys) {
	case 0:
		poly = geom.Polygon{}
	case 1:
		poly = polys[0]
	default:
		var mp geom.MultiPolygon
		for _, p := range polys {
			mp = append(mp, p.Polygons()...)
		}
		poly = mp
	}
	for _, hole := range holes {
		if hole == nil {
			continue
		}
		in, err := polygonalWithin(hole, poly)
		if err != nil {
			return nil, err
		}
		if in {
			poly = poly.Difference(hole)
		} else {
			poly = poly.Union(hole)
		}
	}
	if IsEmpty(poly) {
		return nil, nil
	}
	return poly, nil
}
