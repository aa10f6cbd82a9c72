package figure

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Palette is a sequential color scale given by evenly spaced stops
type Palette []string

// Palettes are the named sequential scales accepted on the command line
var Palettes = map[string]Palette{
	"Greens":  {"#f7fcf5", "#c7e9c0", "#74c476", "#238b45", "#00441b"},
	"Reds":    {"#fff5f0", "#fcbba1", "#fb6a4a", "#cb181d", "#67000d"},
	"Blues":   {"#f7fbff", "#c6dbef", "#6baed6", "#2171b5", "#08306b"},
	"Purples": {"#fcfbfd", "#dadaeb", "#9e9ac8", "#6a51a3", "#3f007d"},
	"Oranges": {"#fff5eb", "#fdd0a2", "#fd8d3c", "#d94801", "#7f2704"},
	"Greys":   {"#ffffff", "#d9d9d9", "#969696", "#525252", "#000000"},
	"RdBu":    {"#67001f", "#d6604d", "#f7f7f7", "#4393c3", "#053061"},
	"Viridis": {"#440154", "#3b528b", "#21918c", "#5ec962", "#fde725"},
}

// PaletteNames lists the registered palettes alphabetically
func PaletteNames() []string {
	names := make([]string, 0, len(Palettes))
	for n := range Palettes {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LookupPalette finds a palette by case-insensitive name. A trailing "_r" reverses it.
func LookupPalette(name string) (Palette, error) {
	reverse := strings.HasSuffix(name, "_r")
	base := strings.TrimSuffix(name, "_r")
	for n, p := range Palettes {
		if strings.EqualFold(n, base) {
			if reverse {
				return p.Reversed(), nil
			}
			return p, nil
		}
	}
	return nil, fmt.Errorf("unknown palette %q (available: %s)", name, strings.Join(PaletteNames(), ", "))
}

// Reversed returns the stops in reverse order
func (p Palette) Reversed() Palette {
	out := make(Palette, len(p))
	for i, c := range p {
		out[len(p)-1-i] = c
	}
	return out
}

// At interpolates the palette at t in [0, 1]. Values outside are clamped; NaN maps to the first stop.
func (p Palette) At(t float64) string {
	if len(p) == 0 {
		return "#808080"
	}
	if math.IsNaN(t) || t <= 0 || len(p) == 1 {
		return p[0]
	}
	if t >= 1 {
		return p[len(p)-1]
	}
	pos := t * float64(len(p)-1)
	i := int(pos)
	frac := pos - float64(i)
	a, b := parseHex(p[i]), parseHex(p[i+1])
	var mixed [3]uint8
	for k := range mixed {
		mixed[k] = uint8(math.Round(float64(a[k]) + frac*(float64(b[k])-float64(a[k]))))
	}
	return fmt.Sprintf("#%02x%02x%02x", mixed[0], mixed[1], mixed[2])
}

// Scale maps v from [lo, hi] onto the palette
func (p Palette) Scale(v, lo, hi float64) string {
	if hi <= lo {
		return p.At(1)
	}
	return p.At((v - lo) / (hi - lo))
}

func parseHex(hex string) [3]uint8 {
	hex = strings.TrimPrefix(hex, "#")
	var out [3]uint8
	if len(hex) != 6 {
		return out
	}
	for k := 0; k < 3; k++ {
		v, err := strconv.ParseUint(hex[2*k:2*k+2], 16, 8)
		if err == nil {
			out[k] = uint8(v)
		}
	}
	return out
}
