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

import "fmt"

// A WCS holds the linear world coordinate system description extracted
// from a header: reference pixel (CRPIX1/2), reference world coordinate
// (CRVAL1/2), and the linear transformation matrix (CD1_1..CD2_2, or a
// diagonal matrix built from CDELT1/2 when no CD keyword is present).
// Missing CRPIX/CRVAL keywords default to zero and a missing matrix
// defaults to identity, so a header without WCS keywords describes the
// identity transform.
type WCS struct {
	crpix1, crpix2 float64
	crval1, crval2 float64
	cd             [2][2]float64
	inv            [2][2]float64
}

// WCS extracts the world coordinate system description from the header.
// It returns an error if the transformation matrix is singular.
func (h *Header) WCS() (*WCS, error) {
	w := &WCS{cd: [2][2]float64{{1, 0}, {0, 1}}}
	if h != nil {
		w.crpix1, _ = h.float("CRPIX1")
		w.crpix2, _ = h.float("CRPIX2")
		w.crval1, _ = h.float("CRVAL1")
		w.crval2, _ = h.float("CRVAL2")
		if d1, ok := h.float("CDELT1"); ok {
			w.cd[0][0] = d1
		}
		if d2, ok := h.float("CDELT2"); ok {
			w.cd[1][1] = d2
		}
		// An explicit CD matrix overrides CDELT; absent elements are zero.
		if hasCD(h) {
			w.cd[0][0], _ = h.float("CD1_1")
			w.cd[0][1], _ = h.float("CD1_2")
			w.cd[1][0], _ = h.float("CD2_1")
			w.cd[1][1], _ = h.float("CD2_2")
		}
	}
	det := w.cd[0][0]*w.cd[1][1] - w.cd[0][1]*w.cd[1][0]
	if det == 0 {
		return nil, fmt.Errorf("fits: singular WCS transformation matrix %v", w.cd)
	}
	w.inv = [2][2]float64{
		{w.cd[1][1] / det, -w.cd[0][1] / det},
		{-w.cd[1][0] / det, w.cd[0][0] / det},
	}
	return w, nil
}

func hasCD(h *Header) bool {
	for _, key := range []string{"CD1_1", "CD1_2", "CD2_1", "CD2_2"} {
		if _, ok := h.Get(key); ok {
			return true
		}
	}
	return false
}

// PixToWorld converts a pixel coordinate to a world coordinate:
// world = CRVAL + CD·(pix − CRPIX). Pixel coordinates follow the FITS
// 1-based convention. The error result is always nil; it exists so the
// function can serve directly as a coordinate transformer for geometry
// operations.
func (w *WCS) PixToWorld(x, y float64) (float64, float64, error) {
	u, v := x-w.crpix1, y-w.crpix2
	return w.crval1 + w.cd[0][0]*u + w.cd[0][1]*v,
		w.crval2 + w.cd[1][0]*u + w.cd[1][1]*v,
		nil
}

// WorldToPix converts a world coordinate to a pixel coordinate; it is the
// exact inverse of PixToWorld.
func (w *WCS) WorldToPix(x, y float64) (float64, float64, error) {
	u, v := x-w.crval1, y-w.crval2
	return w.crpix1 + w.inv[0][0]*u + w.inv[0][1]*v,
		w.crpix2 + w.inv[1][0]*u + w.inv[1][1]*v,
		nil
}
