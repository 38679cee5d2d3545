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

// Package wkt implements well-known text encoding and decoding for the
// polygonal geometry types used by the geoset tree. The geometry library
// itself ships no WKT codec, so the XML format backends use this one.
//
// Supported forms are POLYGON, MULTIPOLYGON and their EMPTY variants.
package wkt

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ctessum/geom"

	"github.com/spatialmodel/geoset"
)

// Encode serializes g to well-known text. A Polygon whose rings describe
// more than one exterior encodes as a MULTIPOLYGON so that ring roles stay
// unambiguous; geometries without coordinates encode as the EMPTY form.
// A nil geometry encodes to an empty string.
func Encode(g geom.Polygonal) (string, error) {
	if g == nil {
		return "", nil
	}
	subs := geoset.Subpolygons(g)
	multi := false
	if _, ok := g.(geom.MultiPolygon); ok {
		multi = true
	}
	if len(subs) == 0 {
		if multi {
			return "MULTIPOLYGON EMPTY", nil
		}
		return "POLYGON EMPTY", nil
	}
	if len(subs) > 1 {
		multi = true
	}
	if !multi {
		return "POLYGON " + encodePolygon(subs[0]), nil
	}
	parts := make([]string, len(subs))
	for i, sub := range subs {
		parts[i] = encodePolygon(sub)
	}
	return "MULTIPOLYGON (" + strings.Join(parts, ", ") + ")", nil
}

func encodePolygon(p geom.Polygon) string {
	rings := make([]string, len(p))
	for i, r := range p {
		pts := make([]string, len(r))
		for j, pt := range r {
			pts[j] = formatFloat(pt.X) + " " + formatFloat(pt.Y)
		}
		rings[i] = "(" + strings.Join(pts, ", ") + ")"
	}
	return "(" + strings.Join(rings, ", ") + ")"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Decode parses well-known text into a geometry value. POLYGON yields a
// geom.Polygon and MULTIPOLYGON a geom.MultiPolygon; the EMPTY forms yield
// the corresponding zero-length values.
func Decode(s string) (geom.Polygonal, error) {
	p := &parser{s: s}
	p.skipSpace()
	kind := strings.ToUpper(p.ident())
	p.skipSpace()
	var (
		g   geom.Polygonal
		err error
	)
	switch kind {
	case "POLYGON":
		if p.empty() {
			g = geom.Polygon{}
		} else {
			g, err = p.polygon()
		}
	case "MULTIPOLYGON":
		if p.empty() {
			g = geom.MultiPolygon{}
		} else {
			g, err = p.multiPolygon()
		}
	default:
		return nil, fmt.Errorf("wkt: unsupported geometry type %q", kind)
	}
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.s) {
		return nil, fmt.Errorf("wkt: trailing input at offset %d", p.pos)
	}
	return g, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) skipSpace() {
	for p.pos < len(p.s) && (p.s[p.pos] == ' ' || p.s[p.pos] == '\t' || p.s[p.pos] == '\n' || p.s[p.pos] == '\r') {
		p.pos++
	}
}

func (p *parser) ident() string {
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			break
		}
		p.pos++
	}
	return p.s[start:p.pos]
}

// empty consumes the EMPTY keyword if it is next.
func (p *parser) empty() bool {
	if strings.HasPrefix(strings.ToUpper(p.s[p.pos:]), "EMPTY") {
		p.pos += len("EMPTY")
		return true
	}
	return false
}

func (p *parser) expect(c byte) error {
	p.skipSpace()
	if p.pos >= len(p.s) || p.s[p.pos] != c {
		return fmt.Errorf("wkt: expected %q at offset %d", string(c), p.pos)
	}
	p.pos++
	return nil
}

// more consumes a comma separator if one is next, reporting whether
// another list element follows.
func (p *parser) more() bool {
	p.skipSpace()
	if p.pos < len(p.s) && p.s[p.pos] == ',' {
		p.pos++
		return true
	}
	return false
}

func (p *parser) number() (float64, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.s) {
		c := p.s[p.pos]
		if (c >= '0' && c <= '9') || c == '+' || c == '-' || c == '.' || c == 'e' || c == 'E' {
			p.pos++
			continue
		}
		break
	}
	if start == p.pos {
		return 0, fmt.Errorf("wkt: expected number at offset %d", p.pos)
	}
	v, err := strconv.ParseFloat(p.s[start:p.pos], 64)
	if err != nil {
		return 0, fmt.Errorf("wkt: %w", err)
	}
	return v, nil
}

func (p *parser) point() (geom.Point, error) {
	x, err := p.number()
	if err != nil {
		return geom.Point{}, err
	}
	y, err := p.number()
	if err != nil {
		return geom.Point{}, err
	}
	return geom.Point{X: x, Y: y}, nil
}

func (p *parser) ring() ([]geom.Point, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var r []geom.Point
	for {
		pt, err := p.point()
		if err != nil {
			return nil, err
		}
		r = append(r, pt)
		if !p.more() {
			break
		}
	}
	return r, p.expect(')')
}

func (p *parser) polygon() (geom.Polygon, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var poly geom.Polygon
	for {
		r, err := p.ring()
		if err != nil {
			return nil, err
		}
		poly = append(poly, r)
		if !p.more() {
			break
		}
	}
	return poly, p.expect(')')
}

func (p *parser) multiPolygon() (geom.MultiPolygon, error) {
	if err := p.expect('('); err != nil {
		return nil, err
	}
	var mp geom.MultiPolygon
	for {
		poly, err := p.polygon()
		if err != nil {
			return nil, err
		}
		mp = append(mp, poly)
		if !p.more() {
			break
		}
	}
	return mp, p.expect(')')
}
