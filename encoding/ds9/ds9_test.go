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

package ds9

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ctessum/geom"
	"gonum.org/v1/gonum/floats"

	"github.com/spatialmodel/geoset"
)

func TestWriteReadRoundTrip(t *testing.T) {
	gs := geoset.NewGeoset(nil, nil,
		geoset.NewItem(nil,
			// A square with a hole; the hole becomes a background line.
			geoset.NewGeo(geom.Polygon{
				{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}},
				{{X: 1, Y: 1}, {X: 2, Y: 1}, {X: 2, Y: 2}, {X: 1, Y: 2}},
			}, nil),
			geoset.NewGeo(nil, nil), // skipped on write
		),
		geoset.NewItem(nil,
			// Two parts; poly tags keep them in one geo on the way back.
			geoset.NewGeo(geom.MultiPolygon{
				{{{X: 10, Y: 0}, {X: 12, Y: 0}, {X: 12, Y: 2}, {X: 10, Y: 2}}},
				{{{X: 20, Y: 0}, {X: 21, Y: 0}, {X: 21, Y: 1}, {X: 20, Y: 1}}},
			}, nil),
		),
	)

	fname := filepath.Join(t.TempDir(), "fields.reg")
	if err := Write(gs, fname, "", ""); err != nil {
		t.Fatal(err)
	}

	b, err := os.ReadFile(fname)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimRight(string(b), "\n"), "\n")
	if lines[0] != "physical" {
		t.Errorf("first line = %q; want the default coordinate system", lines[0])
	}
	if len(lines) != 5 {
		t.Fatalf("wrote %d lines; want 5:\n%s", len(lines), b)
	}
	if !strings.Contains(lines[2], "# background tag={item 0} tag={geo 0} tag={poly 0}") {
		t.Errorf("hole line = %q", lines[2])
	}
	if !strings.HasPrefix(lines[1], "polygon(0.000000000000000,0.000000000000000,") {
		t.Errorf("coordinate formatting = %q", lines[1])
	}

	got, err := Read(fname)
	if err != nil {
		t.Fatal(err)
	}
	if v, _ := got.Attrs.Get("coordsys"); v != "physical" {
		t.Errorf("coordsys attr = %v", v)
	}
	if len(got.Items) != 2 {
		t.Fatalf("%d items; want 2", len(got.Items))
	}
	if n := len(got.Items[0].Geos); n != 1 {
		t.Fatalf("item 0 has %d geos; want 1 (empty geo is not representable)", n)
	}
	// The background line must have been subtracted again.
	if a := got.Items[0].Geos[0].Geom.Area(); !floats.EqualWithinAbs(a, 15, 1e-9) {
		t.Errorf("item 0 geometry area = %g; want 15", a)
	}
	if n := len(got.Items[1].Geos); n != 1 {
		t.Fatalf("item 1 has %d geos; want 1", n)
	}
	if a := got.Items[1].Geos[0].Geom.Area(); !floats.EqualWithinAbs(a, 5, 1e-9) {
		t.Errorf("item 1 geometry area = %g; want 4+1", a)
	}
}

func TestReadGlobalAttrsAndCoordsys(t *testing.T) {
	const content = `# Region file
global color=green width=2 font="helvetica 10" dashlist={8 3}
fk5
polygon(0,0,1,0,1,1) # tag={item 0} tag={geo 0} tag={poly 0}
`
	fname := filepath.Join(t.TempDir(), "global.reg")
	if err := os.WriteFile(fname, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	gs, err := Read(fname)
	if err != nil {
		t.Fatal(err)
	}
	for _, test := range []struct{ key, want string }{
		{"color", "green"},
		{"width", "2"},
		{"font", "helvetica 10"},
		{"dashlist", "8 3"},
		{"coordsys", "fk5"},
	} {
		if v, _ := gs.Attrs.Get(test.key); v != test.want {
			t.Errorf("attr %s = %v; want %q", test.key, v, test.want)
		}
	}
	if len(gs.Items) != 1 {
		t.Errorf("%d items; want 1", len(gs.Items))
	}
}

// A background line that does not repeat its parent's index triple is
// treated as a new component rather than a hole. That precedence is part
// of the format contract.
func TestHolePrecedence(t *testing.T) {
	const content = `physical
polygon(0,0,4,0,4,4,0,4) # tag={item 0} tag={geo 0} tag={poly 0}
polygon(10,10,11,10,11,11,10,11) # background tag={item 0} tag={geo 0} tag={poly 1}
`
	fname := filepath.Join(t.TempDir(), "precedence.reg")
	if err := os.WriteFile(fname, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	gs, err := Read(fname)
	if err != nil {
		t.Fatal(err)
	}
	// New poly index wins over the background marker: union, not difference.
	if a := gs.Items[0].Geos[0].Geom.Area(); !floats.EqualWithinAbs(a, 17, 1e-9) {
		t.Errorf("area = %g; want 16+1", a)
	}
}

func TestReadErrors(t *testing.T) {
	for name, content := range map[string]string{
		"unrecognized line": "physical\ncircle(1,2,3)\n",
		"odd coordinates":   "physical\npolygon(0,0,1) # tag={item 0} tag={geo 0} tag={poly 0}\n",
		"missing tags":      "physical\npolygon(0,0,1,0,1,1) # tag={item 0}\n",
	} {
		fname := filepath.Join(t.TempDir(), "bad.reg")
		if err := os.WriteFile(fname, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := Read(fname); err == nil {
			t.Errorf("%s: want error", name)
		}
	}
}
