package preview

import (
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	"github.com/ftrvxmtrx/tga"
)

// ErrFormat is returned for output paths with an unknown extension.
var ErrFormat = errors.New("unsupported image format")

// Format is an output encoding.
type Format uint8

// Output formats.
const (
	FormatWebP Format = iota
	FormatTGA
)

func (f Format) String() string {
	switch f {
	case FormatWebP:
		return "webp"
	case FormatTGA:
		return "tga"
	}
	return fmt.Sprintf("Format(%d)", uint8(f))
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		return FormatWebP, nil
	case ".tga":
		return FormatTGA, nil
	}
	return 0, fmt.Errorf("%s: %w", path, ErrFormat)
}

// Encode writes img in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatWebP:
		return nativewebp.Encode(w, img, nil)
	case FormatTGA:
		return tga.Encode(w, img)
	}
	return fmt.Errorf("%v: %w", f, ErrFormat)
}

// Save encodes img to path, creating parent directories.
func Save(path string, img image.Image) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(out, img, f); err != nil {
		out.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return out.Close()
}
