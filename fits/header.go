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

// Package fits implements the small subset of FITS header handling that
// the geoset tree needs: an ordered list of keyword cards, the canonical
// fixed-width string serialization, and linear WCS transforms between
// pixel and world coordinates.
//
// Card values are restricted to the scalar types int, float64, string and
// bool. Each card serializes to one 80-character record; a header
// serializes to its records concatenated without separators, closed by an
// END record and padded with spaces to a multiple of 2880 characters.
package fits

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	cardLen  = 80
	blockLen = 2880
)

// A Card is a single header keyword with its value.
type Card struct {
	Key   string
	Value interface{}
}

// A Header is an ordered list of keyword cards.
type Header struct {
	cards []Card
}

// New creates a header from the given cards, in order.
func New(cards ...Card) *Header {
	h := &Header{cards: make([]Card, len(cards))}
	copy(h.cards, cards)
	return h
}

// Len returns the number of cards in the header.
func (h *Header) Len() int {
	if h == nil {
		return 0
	}
	return len(h.cards)
}

// Get returns the value stored under key and whether it was found.
func (h *Header) Get(key string) (interface{}, bool) {
	if h == nil {
		return nil, false
	}
	key = strings.ToUpper(key)
	for _, c := range h.cards {
		if c.Key == key {
			return c.Value, true
		}
	}
	return nil, false
}

// Set replaces the value stored under key, or appends a new card if the
// key is not yet present. Keys are folded to upper case.
func (h *Header) Set(key string, value interface{}) {
	key = strings.ToUpper(key)
	for i, c := range h.cards {
		if c.Key == key {
			h.cards[i].Value = value
			return
		}
	}
	h.cards = append(h.cards, Card{Key: key, Value: value})
}

// Cards returns a copy of the header's cards, in order.
func (h *Header) Cards() []Card {
	if h == nil {
		return nil
	}
	out := make([]Card, len(h.cards))
	copy(out, h.cards)
	return out
}

// Copy returns an independent copy of the header, or nil if h is nil.
func (h *Header) Copy() *Header {
	if h == nil {
		return nil
	}
	return New(h.cards...)
}

// float returns the value of key as a float64 if it holds an int or a
// float.
func (h *Header) float(key string) (float64, bool) {
	v, ok := h.Get(key)
	if !ok {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return float64(val), true
	case float64:
		return val, true
	}
	return 0, false
}

// String serializes the header to its canonical single-string form:
// one 80-character record per card, concatenated without separators,
// followed by an END record and space padding to a 2880 multiple.
func (h *Header) String() string {
	var b strings.Builder
	for _, c := range h.cards {
		b.WriteString(formatCard(c))
	}
	b.WriteString(pad("END", cardLen))
	if rem := b.Len() % blockLen; rem != 0 {
		b.WriteString(strings.Repeat(" ", blockLen-rem))
	}
	return b.String()
}

func formatCard(c Card) string {
	key := strings.ToUpper(c.Key)
	if len(key) > 8 {
		key = key[:8]
	}
	var val string
	switch v := c.Value.(type) {
	case string:
		// Single quotes inside the value are doubled, per the FITS
		// standard.
		val = fmt.Sprintf("'%s'", strings.Replace(v, "'", "''", -1))
	case bool:
		s := "F"
		if v {
			s = "T"
		}
		val = fmt.Sprintf("%20s", s)
	case int:
		val = fmt.Sprintf("%20d", v)
	case float64:
		val = fmt.Sprintf("%20s", strconv.FormatFloat(v, 'E', -1, 64))
	default:
		val = fmt.Sprintf("'%s'", fmt.Sprint(v))
	}
	return pad(fmt.Sprintf("%-8s= %s", key, val), cardLen)
}

func pad(s string, n int) string {
	if len(s) >= n {
		return s[:n]
	}
	return s + strings.Repeat(" ", n-len(s))
}

// Parse inverts String: it splits s into 80-character records and parses
// one card from each, stopping at the END record. Records without a value
// indicator ("= " in columns 9-10) are ignored, as are blank records.
func Parse(s string) (*Header, error) {
	h := &Header{}
	for i := 0; i < len(s); i += cardLen {
		end := i + cardLen
		if end > len(s) {
			end = len(s)
		}
		rec := s[i:end]
		key := strings.TrimSpace(rec[:min(8, len(rec))])
		if key == "END" {
			break
		}
		if key == "" || len(rec) < 10 || rec[8:10] != "= " {
			continue
		}
		val, err := parseValue(strings.TrimSpace(rec[10:]))
		if err != nil {
			return nil, fmt.Errorf("fits: card %q: %w", strings.TrimRight(rec, " "), err)
		}
		h.cards = append(h.cards, Card{Key: key, Value: val})
	}
	return h, nil
}

func parseValue(s string) (interface{}, error) {
	// Strip any inline comment, except inside a quoted string.
	if !strings.HasPrefix(s, "'") {
		if i := strings.Index(s, "/"); i >= 0 {
			s = strings.TrimSpace(s[:i])
		}
	}
	switch {
	case strings.HasPrefix(s, "'"):
		end := len(s)
		for i := 1; i < len(s); i++ {
			if s[i] != '\'' {
				continue
			}
			if i+1 < len(s) && s[i+1] == '\'' {
				i++ // doubled quote, part of the value
				continue
			}
			end = i
			break
		}
		if end == len(s) {
			return nil, fmt.Errorf("unterminated string value")
		}
		return strings.Replace(s[1:end], "''", "'", -1), nil
	case s == "T":
		return true, nil
	case s == "F":
		return false, nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		return i, nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}
	return nil, fmt.Errorf("unparseable value %q", s)
}
