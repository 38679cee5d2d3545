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

// Package ds9 reads and writes geoset trees as DS9 region files.
//
// The tree structure is preserved through region tags: every polygon line
// carries the item, geo and poly indices of its place in the tree, and
// interior rings are written as separate polygon lines marked with the
// background attribute, repeating the indices of the exterior ring they
// belong to:
//
//	physical
//	polygon(x1,y1,x2,y2,...) # tag={item 0} tag={geo 0} tag={poly 0}
//	polygon(...) # background tag={item 0} tag={geo 0} tag={poly 0}
//
// The format is lossy: attributes below the root and the FITS header are
// not written, attribute values read back as strings, and a hole line is
// only subtracted when it repeats its parent's exact index triple. Region
// files not produced by Write may not read back correctly.
package ds9

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/ctessum/geom"
	"github.com/sirupsen/logrus"

	"github.com/spatialmodel/geoset"
)

// Log receives diagnostic messages. It defaults to the logrus standard
// logger and may be replaced.
var Log logrus.FieldLogger = logrus.StandardLogger()

// Defaults used by Write when the caller passes empty values.
const (
	DefaultCoordsys = "physical"
	DefaultFormat   = "%.15f"
)

// Write writes gs to the file at filename in DS9 region format. coordsys
// names the coordinate system written on the first line ("physical" or
// "fk5"; empty means physical) and format is the fmt verb used for
// coordinates (empty means %.15f). Geos without geometry are skipped.
func Write(gs *geoset.Geoset, filename, coordsys, format string) error {
	if coordsys == "" {
		coordsys = DefaultCoordsys
	}
	if format == "" {
		format = DefaultFormat
	}

	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	fmt.Fprintln(w, coordsys)
	for i, item := range gs.Items {
		for j, g := range item.Geos {
			if g.Geom == nil {
				continue
			}
			for k, sub := range geoset.Subpolygons(g.Geom) {
				tags := fmt.Sprintf(" tag={item %d} tag={geo %d} tag={poly %d}", i, j, k)
				for r, ring := range sub {
					mark := ""
					if r > 0 {
						mark = " background"
					}
					fmt.Fprintf(w, "polygon(%s) #%s%s\n", formatRing(ring, format), mark, tags)
				}
			}
		}
	}

	if err := w.Flush(); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	Log.WithFields(logrus.Fields{"file": filename, "items": len(gs.Items)}).
		Debug("ds9: wrote")
	return nil
}

func formatRing(ring []geom.Point, format string) string {
	parts := make([]string, 0, 2*len(ring))
	for _, pt := range ring {
		parts = append(parts, fmt.Sprintf(format, pt.X), fmt.Sprintf(format, pt.Y))
	}
	return strings.Join(parts, ",")
}

// attrRe matches one key=value pair in a region attribute list; values
// may be quoted, braced, or a bare token.
var attrRe = regexp.MustCompile(`(\w+)=("[^"]*"|\{[^}]*\}|\S+)`)

// tagRe matches one structure tag, e.g. tag={item 3}.
var tagRe = regexp.MustCompile(`tag=\{(\w+) (\d+)\}`)

// Read creates a tree from the DS9 region file at filename. It expects
// files in the layout produced by Write: region files from other sources
// may not reconstruct correctly.
func Read(filename string) (*geoset.Geoset, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	gs := geoset.NewGeoset(nil, nil)
	st := &readState{gs: gs}

	scanner := bufio.NewScanner(f)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
		case strings.HasPrefix(line, "global"):
			for _, m := range attrRe.FindAllStringSubmatch(line[len("global"):], -1) {
				gs.Attrs.Set(m[1], unquote(m[2]))
			}
		case line == "physical" || line == "fk5":
			gs.Attrs.Set("coordsys", line)
		case strings.HasPrefix(line, "polygon"):
			if err := st.polygonLine(line); err != nil {
				return nil, fmt.Errorf("ds9: %s line %d: %w", filename, n, err)
			}
		default:
			return nil, fmt.Errorf("ds9: %s line %d: unrecognized line %q", filename, n, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	Log.WithFields(logrus.Fields{"file": filename, "items": len(gs.Items)}).
		Debug("ds9: read")
	return gs, nil
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '{' && s[len(s)-1] == '}') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// readState rebuilds the tree from the stream of tagged polygon lines.
// The previous line's index triple decides what each line means: a new
// item index opens an item, a new geo index opens a geo, a new poly index
// unions into the current geo, and an unchanged triple marked background
// subtracts a hole.
type readState struct {
	gs         *geoset.Geoset
	item       *geoset.Item
	geo        *geoset.Geo
	i0, j0, k0 int
	started    bool
}

func (st *readState) polygonLine(line string) error {
	coords, rest, found := strings.Cut(strings.TrimPrefix(line, "polygon"), ")")
	if !found || !strings.HasPrefix(coords, "(") {
		return fmt.Errorf("malformed polygon line")
	}
	poly, err := parseCoords(strings.TrimPrefix(coords, "("))
	if err != nil {
		return err
	}

	if i := strings.LastIndex(rest, "#"); i >= 0 {
		rest = rest[i+1:]
	}
	isHole := false
	if i := strings.Index(rest, "background"); i >= 0 {
		isHole = true
		rest = rest[i+len("background"):]
	}

	i, j, k := -1, -1, -1
	for _, m := range tagRe.FindAllStringSubmatch(rest, -1) {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			return err
		}
		switch m[1] {
		case "item":
			i = n
		case "geo":
			j = n
		case "poly":
			k = n
		}
	}
	if i < 0 || j < 0 || k < 0 {
		return fmt.Errorf("polygon line missing item/geo/poly tags")
	}

	switch {
	case !st.started || i != st.i0:
		st.geo = geoset.NewGeo(poly, nil)
		st.item = geoset.NewItem(nil, st.geo)
		st.gs.Items = append(st.gs.Items, st.item)
	case j != st.j0:
		st.geo = geoset.NewGeo(poly, nil)
		st.item.Geos = append(st.item.Geos, st.geo)
	case k != st.k0:
		st.geo.Geom = st.geo.Geom.Union(poly)
	case isHole:
		st.geo.Geom = st.geo.Geom.Difference(poly)
	}
	st.i0, st.j0, st.k0, st.started = i, j, k, true
	return nil
}

func parseCoords(s string) (geom.Polygon, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' })
	if len(fields) == 0 || len(fields)%2 != 0 {
		return nil, fmt.Errorf("polygon line has %d coordinate values; want a positive even count", len(fields))
	}
	ring := make([]geom.Point, len(fields)/2)
	for i := range ring {
		x, err := strconv.ParseFloat(fields[2*i], 64)
		if err != nil {
			return nil, err
		}
		y, err := strconv.ParseFloat(fields[2*i+1], 64)
		if err != nil {
			return nil, err
		}
		ring[i] = geom.Point{X: x, Y: y}
	}
	return geom.Polygon{ring}, nil
}
