package render

import (
	"fmt"
	"strings"
)

// Format is the closed set of output kinds a diagram can be rendered to.
type Format int

const (
	Raster Format = iota + 1
	Vector
	Text
)

// ParseFormat accepts the user-facing aliases case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PNG", "RASTER":
		return Raster, nil
	case "SVG", "VECTOR":
		return Vector, nil
	case "ASCII", "TXT", "TEXT":
		return Text, nil
	default:
		return 0, fmt.Errorf("unsupported format %q", s)
	}
}

func (f Format) String() string {
	switch f {
	case Raster:
		return "RASTER"
	case Vector:
		return "VECTOR"
	case Text:
		return "TEXT"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

func (f Format) ContentType() string {
	switch f {
	case Raster:
		return "image/png"
	case Vector:
		return "image/svg+xml"
	case Text:
		return "text/plain; charset=utf-8"
	default:
		return "application/octet-stream"
	}
}

func (f Format) Extension() string {
	switch f {
	case Raster:
		return ".png"
	case Vector:
		return ".svg"
	case Text:
		return ".txt"
	default:
		return ".bin"
	}
}
