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

package fits

import (
	"testing"

	"gonum.org/v1/gonum/floats"
)

func TestWCSLinear(t *testing.T) {
	h := New(
		Card{Key: "CRPIX1", Value: 100.0},
		Card{Key: "CRPIX2", Value: 200.0},
		Card{Key: "CRVAL1", Value: 10.0},
		Card{Key: "CRVAL2", Value: 20.0},
		Card{Key: "CDELT1", Value: 0.5},
		Card{Key: "CDELT2", Value: 0.25},
	)
	w, err := h.WCS()
	if err != nil {
		t.Fatal(err)
	}

	x, y, _ := w.PixToWorld(150, 250)
	if !floats.EqualWithinAbs(x, 35, 1e-12) || !floats.EqualWithinAbs(y, 32.5, 1e-12) {
		t.Errorf("PixToWorld(150, 250) = %g, %g; want 35, 32.5", x, y)
	}

	px, py, _ := w.WorldToPix(x, y)
	if !floats.EqualWithinAbs(px, 150, 1e-9) || !floats.EqualWithinAbs(py, 250, 1e-9) {
		t.Errorf("WorldToPix inverse = %g, %g; want 150, 250", px, py)
	}
}

func TestWCSCDOverridesCDELT(t *testing.T) {
	// A 90-degree rotation matrix; the CDELT keywords must be ignored.
	h := New(
		Card{Key: "CDELT1", Value: 7.0},
		Card{Key: "CDELT2", Value: 7.0},
		Card{Key: "CD1_1", Value: 0.0},
		Card{Key: "CD1_2", Value: 1.0},
		Card{Key: "CD2_1", Value: -1.0},
		Card{Key: "CD2_2", Value: 0.0},
	)
	w, err := h.WCS()
	if err != nil {
		t.Fatal(err)
	}
	x, y, _ := w.PixToWorld(3, 5)
	if !floats.EqualWithinAbs(x, 5, 1e-12) || !floats.EqualWithinAbs(y, -3, 1e-12) {
		t.Errorf("PixToWorld(3, 5) = %g, %g; want 5, -3", x, y)
	}
}

func TestWCSDefaultsToIdentity(t *testing.T) {
	w, err := New().WCS()
	if err != nil {
		t.Fatal(err)
	}
	x, y, _ := w.PixToWorld(3, 5)
	if x != 3 || y != 5 {
		t.Errorf("identity PixToWorld(3, 5) = %g, %g", x, y)
	}
}

func TestWCSSingularMatrix(t *testing.T) {
	h := New(Card{Key: "CD1_1", Value: 0.0}) // all other CD elements default to zero
	if _, err := h.WCS(); err == nil {
		t.Error("singular transformation matrix: want error")
	}
}
