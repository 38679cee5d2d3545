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

// Package polylistxml reads and writes geoset trees in polylist XML
// format. Polylist XML is the precursor of the geoset XML format and is
// deprecated; it is retained for backwards compatibility with older
// projects.
//
// The format stores attributes as native XML tag attributes:
//
//	<POLYLIST ...>
//	  <HEADER .../>
//	  <ITEM ...>
//	    <POLY ...>WKT</POLY>
//	    ...
//	  </ITEM>
//	  ...
//	</POLYLIST>
//
// Native XML attribute values are always strings, so the reader recovers
// value types by trial: integer first, then float, then the literal
// strings "True" and "False" as booleans, and anything else stays a
// string. The inference is lossy: a string attribute that happens to
// read "True" comes back as a boolean. That is a known limitation of
// the format. Attribute ordering is preserved on a best-effort basis
// only; the geoset XML format is the one that guarantees order.
package polylistxml

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"

	"github.com/spatialmodel/geoset"
	"github.com/spatialmodel/geoset/encoding/wkt"
	"github.com/spatialmodel/geoset/fits"
)

// Log receives diagnostic messages. It defaults to the logrus standard
// logger and may be replaced.
var Log logrus.FieldLogger = logrus.StandardLogger()

// Value rendering formats for floats written as XML attributes.
const (
	eFormat = "%.16e"
	fFormat = "%.16f"
)

// formatValue renders an attribute value as a string: integers as %d,
// floats whose shortest representation carries an exponent in scientific
// format, other floats in fixed point, booleans as "True"/"False" (so
// that decoding recovers them), and everything else via default string
// conversion.
func formatValue(v interface{}) string {
	switch val := v.(type) {
	case int:
		return fmt.Sprintf("%d", val)
	case float64:
		if strings.ContainsAny(strconv.FormatFloat(val, 'g', -1, 64), "eE") {
			return fmt.Sprintf(eFormat, val)
		}
		return fmt.Sprintf(fFormat, val)
	case bool:
		if val {
			return "True"
		}
		return "False"
	}
	return cast.ToString(v)
}

// inferValue recovers a typed value from an attribute string by trial:
// int, then float, then boolean literals, else string.
func inferValue(s string) interface{} {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch s {
	case "True":
		return true
	case "False":
		return false
	}
	return s
}

// xmlAttrs converts an attribute map to native XML attributes, skipping
// empty keys.
func xmlAttrs(a geoset.Attrs) []xml.Attr {
	var out []xml.Attr
	for _, at := range a {
		if at.Key == "" {
			continue
		}
		out = append(out, xml.Attr{
			Name:  xml.Name{Local: at.Key},
			Value: formatValue(at.Value),
		})
	}
	return out
}

// geosetAttrs converts native XML attributes back to an attribute map,
// inferring value types. It returns nil for an empty attribute list.
func geosetAttrs(attrs []xml.Attr) geoset.Attrs {
	if len(attrs) == 0 {
		return nil
	}
	out := make(geoset.Attrs, 0, len(attrs))
	for _, at := range attrs {
		out = append(out, geoset.Attr{Key: at.Name.Local, Value: inferValue(at.Value)})
	}
	return out
}

type headerXML struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

type polyXML struct {
	Attrs []xml.Attr `xml:",any,attr"`
	WKT   string     `xml:",chardata"`
}

type itemXML struct {
	Attrs []xml.Attr `xml:",any,attr"`
	Polys []polyXML  `xml:"POLY"`
}

type polylistXML struct {
	Attrs  []xml.Attr `xml:",any,attr"`
	Header headerXML  `xml:"HEADER"`
	Items  []itemXML  `xml:"ITEM"`
}

// Marshal serializes gs to polylist XML, including the XML declaration.
// The element tree is emitted as a token stream so that attribute order
// follows the attribute maps.
func Marshal(gs *geoset.Geoset) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")

	root := xml.StartElement{Name: xml.Name{Local: "POLYLIST"}, Attr: xmlAttrs(gs.Attrs)}
	if err := enc.EncodeToken(root); err != nil {
		return nil, err
	}

	var hdrAttrs geoset.Attrs
	if gs.Hdr != nil {
		for _, c := range gs.Hdr.Cards() {
			hdrAttrs = append(hdrAttrs, geoset.Attr{Key: c.Key, Value: c.Value})
		}
	}
	hdr := xml.StartElement{Name: xml.Name{Local: "HEADER"}, Attr: xmlAttrs(hdrAttrs)}
	if err := enc.EncodeToken(hdr); err != nil {
		return nil, err
	}
	if err := enc.EncodeToken(hdr.End()); err != nil {
		return nil, err
	}

	for _, item := range gs.Items {
		ie := xml.StartElement{Name: xml.Name{Local: "ITEM"}, Attr: xmlAttrs(item.Attrs)}
		if err := enc.EncodeToken(ie); err != nil {
			return nil, err
		}
		for _, g := range item.Geos {
			pe := xml.StartElement{Name: xml.Name{Local: "POLY"}, Attr: xmlAttrs(g.Attrs)}
			if err := enc.EncodeToken(pe); err != nil {
				return nil, err
			}
			if g.Geom != nil {
				s, err := wkt.Encode(g.Geom)
				if err != nil {
					return nil, err
				}
				if err := enc.EncodeToken(xml.CharData(s)); err != nil {
					return nil, err
				}
			}
			if err := enc.EncodeToken(pe.End()); err != nil {
				return nil, err
			}
		}
		if err := enc.EncodeToken(ie.End()); err != nil {
			return nil, err
		}
	}

	if err := enc.EncodeToken(root.End()); err != nil {
		return nil, err
	}
	if err := enc.Flush(); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Unmarshal parses polylist XML into a tree.
func Unmarshal(b []byte) (*geoset.Geoset, error) {
	x := &polylistXML{}
	if err := xml.Unmarshal(b, x); err != nil {
		return nil, fmt.Errorf("polylistxml: %w", err)
	}
	gs := geoset.NewGeoset(geosetAttrs(x.Attrs), nil)
	if hdrAttrs := geosetAttrs(x.Header.Attrs); hdrAttrs != nil {
		cards := make([]fits.Card, len(hdrAttrs))
		for i, at := range hdrAttrs {
			cards[i] = fits.Card{Key: at.Key, Value: at.Value}
		}
		gs.Hdr = fits.New(cards...)
	}
	for _, ix := range x.Items {
		item := geoset.NewItem(geosetAttrs(ix.Attrs))
		for _, px := range ix.Polys {
			g := &geoset.Geo{Attrs: geosetAttrs(px.Attrs)}
			if s := strings.TrimSpace(px.WKT); s != "" {
				var err error
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

// Read creates a tree from the polylist XML file at filename.
func Read(filename string) (*geoset.Geoset, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	gs, err := Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("polylistxml: reading %s: %w", filename, err)
	}
	Log.WithFields(logrus.Fields{"file": filename, "items": len(gs.Items)}).
		Debug("polylistxml: read")
	return gs, nil
}

// Write writes gs to the file at filename in polylist XML format, UTF-8
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
		Debug("polylistxml: wrote")
	return nil
}
