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

// Package geosetxml reads and writes geoset trees in geoset XML format.
//
// The format mirrors the tree structure directly:
//
//	<GEOSET>
//	  <ATTR>...</ATTR>
//	  <HEADER>...</HEADER>
//	  <ITEM>
//	    <ATTR>...</ATTR>
//	    <GEO><ATTR>...</ATTR><WKT>...</WKT></GEO>
//	    ...
//	  </ITEM>
//	  ...
//	</GEOSET>
//
// ATTR text holds the attributes as a JSON array of [key, value] pairs
// (an array rather than an object, so that attribute order is
// guaranteed); HEADER text holds the FITS header in its single-string
// canonical form; WKT text holds the well-known text serialization of
// the geometry. Each of the three is empty when the corresponding part
// of the tree is absent. Indentation between elements is cosmetic and
// ignored on read.
package geosetxml

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/spatialmodel/geoset"
	"github.com/spatialmodel/geoset/encoding/wkt"
	"github.com/spatialmodel/geoset/fits"
)

// Log receives diagnostic messages. It defaults to the logrus standard
// logger and may be replaced.
var Log logrus.FieldLogger = logrus.StandardLogger()

type geoXML struct {
	Attrs string `xml:"ATTR"`
	WKT   string `xml:"WKT"`
}

type itemXML struct {
	Attrs string   `xml:"ATTR"`
	Geos  []geoXML `xml:"GEO"`
}

type geosetXML struct {
	XMLName xml.Name  `xml:"GEOSET"`
	Attrs   string    `xml:"ATTR"`
	Header  string    `xml:"HEADER"`
	Items   []itemXML `xml:"ITEM"`
}

func encodeAttrs(a geoset.Attrs) (string, error) {
	if a == nil {
		return "", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeAttrs(s string) (geoset.Attrs, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var a geoset.Attrs
	if err := json.Unmarshal([]byte(s), &a); err != nil {
		return nil, fmt.Errorf("geosetxml: parsing attributes: %w", err)
	}
	return a, nil
}

// Marshal serializes gs to geoset XML, including the XML declaration.
func Marshal(gs *geoset.Geoset) ([]byte, error) {
	x := &geosetXML{}
	var err error
	if x.Attrs, err = encodeAttrs(gs.Attrs); err != nil {
		return nil, err
	}
	if gs.Hdr != nil {
		x.Header = gs.Hdr.String()
	}
	for _, item := range gs.Items {
		ix := itemXML{}
		if ix.Attrs, err = encodeAttrs(item.Attrs); err != nil {
			return nil, err
		}
		for _, g := range item.Geos {
			gx := geoXML{}
			if gx.Attrs, err = encodeAttrs(g.Attrs); err != nil {
				return nil, err
			}
			if gx.WKT, err = wkt.Encode(g.Geom); err != nil {
				return nil, err
			}
			ix.Geos = append(ix.Geos, gx)
		}
		x.Items = append(x.Items, ix)
	}
	b, err := xml.MarshalIndent(x, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), append(b, '\n')...), nil
}

// Unmarshal parses geoset XML into a tree.
func Unmarshal(b []byte) (*geoset.Geoset, error) {
	x := &geosetXML{}
	if err := xml.Unmarshal(b, x); err != nil {
		return nil, fmt.Errorf("geosetxml: %w", err)
	}
	gs := geoset.NewGeoset(nil, nil)
	var err error
	if gs.Attrs, err = decodeAttrs(x.Attrs); err != nil {
		return nil, err
	}
	if hdr := strings.TrimSpace(x.Header); hdr != "" {
		if gs.Hdr, err = fits.Parse(hdr); err != nil {
			return nil, err
		}
	}
	for _, ix := range x.Items {
		item := geoset.NewItem(nil)
		if item.Attrs, err = decodeAttrs(ix.Attrs); err != nil {
			return nil, err
		}
		for _, gx := range ix.Geos {
			g := &geoset.Geo{}
			if g.Attrs, err = decodeAttrs(gx.Attrs); err != nil {
				return nil, err
			}
			if s := strings.TrimSpace(gx.WKT); s != "" {
				if g.Geom, err = wkt.Decode(s); err != nil {
					return nil, err
				}
			}
			item.Geos = append(item.Geos, g)
		}
		gs.Items = append(gs.Items, item)
	}
	return gs, nil
}

// Read creates a tree from the geoset XML file at filename.
func Read(filename string) (*geoset.Geoset, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	gs, err := Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("geosetxml: reading %s: %w", filename, err)
	}
	Log.WithFields(logrus.Fields{"file": filename, "items": len(gs.Items)}).
		Debug("geosetxml: read")
	return gs, nil
}

// Write writes gs to the file at filename in geoset XML format, UTF-8
// encoded with an XML declaration.
func Write(gs *geoset.Geoset, filename string) error {
	b, err := Marshal(gs)
	if err != nil {
		return err
	}
	f, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, err := f.Write(b); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	Log.WithFields(logrus.Fields{"file": filename, "items": len(gs.Items)}).
		Debug("geosetxml: wrote")
	return nil
}
