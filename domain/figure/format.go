package figure

import (
	"path/filepath"
	"strings"
)

// Format is an output encoding for figures
type Format string

const (
	FormatHTML Format = "html"
	FormatSVG  Format = "svg"
	FormatPNG  Format = "png"
)

// FormatFor chooses the output format from a file extension, defaulting to HTML
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return FormatPNG
	case ".svg":
		return FormatSVG
	default:
		return FormatHTML
	}
}
