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

// Package geoset implements a small tree data structure for grouping and
// attributing polygonal geometry objects from github.com/ctessum/geom.
//
// The tree has exactly three levels: a Geoset holds zero or more Items,
// an Item holds zero or more Geos, and a Geo holds at most one geometry
// value. Each level may carry an ordered attribute map, and the Geoset
// may additionally carry a FITS-style coordinate reference header that
// relates to the stored geometries (for example WCS information for
// transforming between pixel and sky coordinates).
//
// Serialization to and from files is handled by the subpackages under
// encoding: geosetxml (the native XML format), polylistxml (a deprecated
// precursor of geoset XML, retained for older projects) and ds9 (DS9
// region files).
package geoset

import (
	"fmt"
	"strings"

	"github.com/ctessum/geom"

	"github.com/spatialmodel/geoset/fits"
)

// A Geo holds a single geometry value together with an optional set of
// attributes. It is the smallest unit of the geoset tree. Geom may be nil,
// meaning that no geometry is present.
type Geo struct {
	Geom  geom.Polygonal
	Attrs Attrs
}

// NewGeo creates a Geo holding g and attrs. Either argument may be nil.
func NewGeo(g geom.Polygonal, attrs Attrs) *Geo {
	return &Geo{Geom: g, Attrs: attrs}
}

// An Item holds an ordered group of Geos together with an optional set of
// attributes. It is the intermediate unit of the geoset tree.
type Item struct {
	Geos  []*Geo
	Attrs Attrs
}

// NewItem creates an Item holding the given Geos, in order. Calling it with
// no Geos yields an empty (but non-nil) group.
func NewItem(attrs Attrs, geos ...*Geo) *Item {
	if geos == nil {
		geos = []*Geo{}
	}
	return &Item{Geos: geos, Attrs: attrs}
}

// A Geoset is the root of the tree: an ordered group of Items, an optional
// set of attributes, and an optional FITS header describing the coordinate
// system of the stored geometries.
//
// The tree is strictly hierarchical: each Geo belongs to exactly one Item
// and each Item to exactly one Geoset. Structural operations (Translate,
// PixToWorld, WorldToPix, Copy) never modify the receiver; they return a
// newly built tree.
type Geoset struct {
	Items []*Item
	Attrs Attrs
	Hdr   *fits.Header
}

// NewGeoset creates a Geoset holding the given Items, in order. Calling it
// with no Items yields an empty (but non-nil) root.
func NewGeoset(attrs Attrs, hdr *fits.Header, items ...*Item) *Geoset {
	if items == nil {
		items = []*Item{}
	}
	return &Geoset{Items: items, Attrs: attrs, Hdr: hdr}
}

// Geos returns the full list of Geos in the tree, in item order and then
// in within-item order. The list is recomputed on every call, so it stays
// correct when Items or Geos have been added or removed since the last
// call. The returned slice is freshly allocated; modifying it does not
// affect the tree (although the Geos it points to are shared).
func (gs *Geoset) Geos() []*Geo {
	geos := []*Geo{}
	for _, item := range gs.Items {
		geos = append(geos, item.Geos...)
	}
	return geos
}

// geomName describes a geometry value for the diagnostic summaries below.
func geomName(g geom.Polygonal) string {
	switch g.(type) {
	case nil:
		return "None"
	case geom.Polygon:
		return "Polygon"
	case geom.MultiPolygon:
		return "MultiPolygon"
	default:
		return fmt.Sprintf("%T", g)
	}
}

const summaryIndent = "    "

// String returns a one-line description of g.
func (g *Geo) String() string {
	return g.summary(0, -1, 0)
}

// summary renders the Geo line for the tree summaries. i is the 1-based
// geo number within the parent item and n is the number of geos
// encountered before the parent item; a negative n means the cumulative
// count is unknown (a standalone item) and only the within-item number is
// shown. level sets the indentation.
func (g *Geo) summary(i, n, level int) string {
	attrstr := ""
	if g.Attrs != nil {
		attrstr = fmt.Sprintf(", %d attr(s)", len(g.Attrs))
	}
	istr := ": "
	switch {
	case i > 0 && n >= 0:
		istr = fmt.Sprintf(" %d,%d: ", i, i+n)
	case i > 0:
		istr = fmt.Sprintf(" %d: ", i)
	}
	return strings.Repeat(summaryIndent, level) + "Geo" + istr + geomName(g.Geom) + attrstr
}

// String returns a multi-line description of the item and its Geos.
func (it *Item) String() string {
	return it.summary(0, -1, 0)
}

func (it *Item) summary(i, n, level int) string {
	geosstr := "None"
	if len(it.Geos) > 0 {
		geosstr = fmt.Sprintf("%d geo(s)", len(it.Geos))
	}
	attrstr := ""
	if it.Attrs != nil {
		attrstr = fmt.Sprintf(", %d attr(s)", len(it.Attrs))
	}
	istr := ": "
	if i > 0 {
		istr = fmt.Sprintf(" %d: ", i)
	}
	lines := []string{strings.Repeat(summaryIndent, level) + "Item" + istr + geosstr + attrstr}
	for j, g := range it.Geos {
		lines = append(lines, g.summary(j+1, n, level+1))
	}
	return strings.Join(lines, "\n")
}

// String returns a multi-line count summary of the whole tree, for
// diagnostic display. It is not part of any serialization format.
func (gs *Geoset) String() string {
	itemsstr := ": None"
	geosstr := ""
	if len(gs.Items) > 0 {
		itemsstr = fmt.Sprintf(": %d item(s)", len(gs.Items))
		ngeos := 0
		for _, item := range gs.Items {
			ngeos += len(item.Geos)
		}
		geosstr = fmt.Sprintf(", %d geo(s)", ngeos)
	}
	attrstr := ""
	if gs.Attrs != nil {
		attrstr = fmt.Sprintf(", %d attr(s)", len(gs.Attrs))
	}
	hdrstr := ""
	if gs.Hdr != nil {
		hdrstr = ", FITS header"
	}
	lines := []string{"Geoset" + itemsstr + geosstr + attrstr + hdrstr}
	n := 0
	for i, item := range gs.Items {
		lines = append(lines, item.summary(i+1, n, 1))
		n += len(item.Geos)
	}
	return strings.Join(lines, "\n")
}
