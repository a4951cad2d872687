// Package shape defines the five particle silhouettes and their geometry.
package shape

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// ID identifies a silhouette. IDs form a fixed cycle that wraps.
type ID int

const (
	Earth ID = iota
	Heart
	Gada
	HanumanFigure
	DivineAura
)

// Count is the number of shapes in the cycle.
const Count = 5

var names = [Count]string{"EARTH", "HEART", "GADA", "HANUMAN_FIGURE", "DIVINE_AURA"}

var titles = [Count]string{"MOTHER EARTH", "SACRED HEART", "SACRED GADA", "HANUMAN", "DIVINE AURA"}

var colors = [Count]colorful.Color{
	{R: 0.2, G: 0.5, B: 1.0},  // earth blue
	{R: 1.0, G: 0.2, B: 0.4},  // heart pink-red
	{R: 1.0, G: 0.65, B: 0.1}, // gada gold
	{R: 1.0, G: 0.35, B: 0.0}, // hanuman saffron
	{R: 1.0, G: 0.9, B: 0.5},  // aura pale gold
}

// Land is the green that speckles the Earth.
var Land = colorful.Color{R: 0.2, G: 0.8, B: 0.3}

// All returns every shape in cycle order.
func All() []ID {
	return []ID{Earth, Heart, Gada, HanumanFigure, DivineAura}
}

// Next returns the shape that follows id in the cycle.
func (id ID) Next() ID {
	return (id.normalize() + 1) % Count
}

// Valid reports whether id is one of the five shapes.
func (id ID) Valid() bool {
	return id >= 0 && id < Count
}

func (id ID) normalize() ID {
	return ((id % Count) + Count) % Count
}

// String returns the shape's identifier name, e.g. "HANUMAN_FIGURE".
func (id ID) String() string {
	if !id.Valid() {
		return fmt.Sprintf("ID(%d)", int(id))
	}
	return names[id]
}

// Title returns the display name shown in the overlay.
func (id ID) Title() string {
	return titles[id.normalize()]
}

// Color returns the shape's base particle color.
func (id ID) Color() colorful.Color {
	return colors[id.normalize()]
}

// Parse converts an identifier name (case-insensitive) back into an ID.
func Parse(s string) (ID, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range names {
		if n == upper {
			return ID(i), nil
		}
	}
	return 0, fmt.Errorf("unknown shape %q", s)
}

// MarshalText encodes the ID as its name.
func (id ID) MarshalText() ([]byte, error) {
	if !id.Valid() {
		return nil, fmt.Errorf("invalid shape %d", int(id))
	}
	return []byte(id.String()), nil
}

// UnmarshalText decodes a shape name.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
