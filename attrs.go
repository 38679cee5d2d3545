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
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// An Attr is a single key-value attribute. Values are restricted to the
// scalar types int, float64, string and bool; the file format backends
// only know how to encode those.
type Attr struct {
	Key   string
	Value interface{}
}

// Attrs is an ordered attribute map. Unlike a Go map it preserves
// insertion order, which the geoset XML format relies on. A nil Attrs
// means "no attributes", which the format backends treat differently
// from an empty one.
type Attrs []Attr

// Get returns the value stored under key and whether it was found. If the
// key appears more than once the first occurrence wins.
func (a Attrs) Get(key string) (interface{}, bool) {
	for _, at := range a {
		if at.Key == key {
			return at.Value, true
		}
	}
	return nil, false
}

// Set replaces the value stored under key, or appends a new attribute if
// the key is not yet present.
func (a *Attrs) Set(key string, value interface{}) {
	for i, at := range *a {
		if at.Key == key {
			(*a)[i].Value = value
			return
		}
	}
	*a = append(*a, Attr{Key: key, Value: value})
}

// Copy returns an independent copy of a, or nil if a is nil.
func (a Attrs) Copy() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	copy(out, a)
	return out
}

// MarshalJSON encodes a as an array of [key, value] pairs rather than as
// a JSON object, so that attribute order survives a round trip.
func (a Attrs) MarshalJSON() ([]byte, error) {
	pairs := make([][2]interface{}, len(a))
	for i, at := range a {
		pairs[i] = [2]interface{}{at.Key, at.Value}
	}
	return json.Marshal(pairs)
}

// UnmarshalJSON decodes an array of [key, value] pairs. Numbers without a
// fractional part or exponent decode as int, all other numbers as float64.
func (a *Attrs) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var pairs [][2]interface{}
	if err := dec.Decode(&pairs); err != nil {
		return err
	}
	out := make(Attrs, 0, len(pairs))
	for _, p := range pairs {
		key, ok := p[0].(string)
		if !ok {
			return fmt.Errorf("geoset: attribute key %v is not a string", p[0])
		}
		out = append(out, Attr{Key: key, Value: fromJSONValue(p[1])})
	}
	*a = out
	return nil
}

func fromJSONValue(v interface{}) interface{} {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := strconv.ParseInt(string(n), 10, 64); err == nil {
		return int(i)
	}
	f, _ := n.Float64()
	return f
}
