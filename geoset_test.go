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
	"testing"

	"github.com/ctessum/geom"
)

func testSquare() geom.Polygon {
	return geom.Polygon{{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}}
}

func TestConstructorNormalization(t *testing.T) {
	item := NewItem(nil)
	if item.Geos == nil {
		t.Error("NewItem with no geos: Geos is nil; want empty slice")
	}
	if len(item.Geos) != 0 {
		t.Errorf("NewItem with no geos: len(Geos) = %d; want 0", len(item.Geos))
	}

	gs := NewGeoset(nil, nil)
	if gs.Items == nil {
		t.Error("NewGeoset with no items: Items is nil; want empty slice")
	}

	g := NewGeo(testSquare(), nil)
	item = NewItem(nil, g)
	if len(item.Geos) != 1 || item.Geos[0] != g {
		t.Error("NewItem with a single geo should hold exactly that geo")
	}
}

func TestGeosFlatten(t *testing.T) {
	g1 := NewGeo(testSquare(), nil)
	g2 := NewGeo(nil, nil)
	g3 := NewGeo(testSquare(), nil)
	gs := NewGeoset(nil, nil,
		NewItem(nil, g1, g2),
		NewItem(nil),
		NewItem(nil, g3),
	)

	geos := gs.Geos()
	want := []*Geo{g1, g2, g3}
	if len(geos) != len(want) {
		t.Fatalf("len(Geos()) = %d; want %d", len(geos), len(want))
	}
	for i, g := range geos {
		if g != want[i] {
			t.Errorf("Geos()[%d] is not the expected geo", i)
		}
	}

	// The flattened list must track later structural edits.
	gs.Items[1].Geos = append(gs.Items[1].Geos, NewGeo(nil, nil))
	if n := len(gs.Geos()); n != 4 {
		t.Errorf("len(Geos()) after append = %d; want 4", n)
	}
}

func TestGeosetString(t *testing.T) {
	gs := NewGeoset(Attrs{{Key: "a", Value: 1}}, nil,
		NewItem(nil, NewGeo(testSquare(), nil), NewGeo(nil, nil)),
		NewItem(Attrs{{Key: "b", Value: "x"}},
			NewGeo(geom.MultiPolygon{testSquare()}, Attrs{{Key: "c", Value: true}})),
	)
	want := `Geoset: 2 item(s), 3 geo(s), 1 attr(s)
    Item 1: 2 geo(s)
        Geo 1,1: Polygon
        Geo 2,2: None
    Item 2: 1 geo(s), 1 attr(s)
        Geo 1,3: MultiPolygon, 1 attr(s)`
	if got := gs.String(); got != want {
		t.Errorf("String() =\n%s\nwant:\n%s", got, want)
	}

	if got, want := NewGeoset(nil, nil).String(), "Geoset: None"; got != want {
		t.Errorf("empty String() = %q; want %q", got, want)
	}
}

// A standalone item has no cumulative geo count, so its child lines show
// only the within-item number.
func TestItemString(t *testing.T) {
	item := NewItem(nil, NewGeo(testSquare(), nil), NewGeo(nil, nil))
	want := `Item: 2 geo(s)
    Geo 1: Polygon
    Geo 2: None`
	if got := item.String(); got != want {
		t.Errorf("String() =\n%s\nwant:\n%s", got, want)
	}

	if got, want := NewGeo(testSquare(), nil).String(), "Geo: Polygon"; got != want {
		t.Errorf("Geo String() = %q; want %q", got, want)
	}
}
