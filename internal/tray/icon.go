package tray

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrMissingIcon reports that no application icon was bundled.
	ErrMissingIcon = errors.New("application icon is missing")
	// ErrInvalidIcon reports that the bundled icon cannot be decoded.
	ErrInvalidIcon = errors.New("application icon is not a decodable image")
)

// IconInfo describes a validated icon.
type IconInfo struct {
	Format string
	Width  int
	Height int
}

// ValidateIcon checks that icon is a non-empty PNG, BMP, TIFF or WebP image.
func ValidateIcon(icon []byte) (IconInfo, error) {
	if len(icon) == 0 {
		return IconInfo{}, ErrMissingIcon
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(icon))
	if err != nil {
		return IconInfo{}, fmt.Errorf("%w: %w", ErrInvalidIcon, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return IconInfo{}, fmt.Errorf("%w: %s image has size %dx%d", ErrInvalidIcon, format, cfg.Width, cfg.Height)
	}
	return IconInfo{Format: format, Width: cfg.Width, Height: cfg.Height}, nil
}
