// Package debug saves frames from the desktop viewer.
package debug

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Screenshots writes timestamped PNG files into a directory.
type Screenshots struct {
	Dir    string
	Prefix string
}

// Filename returns the path a frame captured at t would be written to.
func (s Screenshots) Filename(t time.Time) string {
	name := fmt.Sprintf("%s_%s.png", s.Prefix, t.Format("2006-01-02_15-04-05.000"))
	return filepath.Join(s.Dir, name)
}

// Save writes bottom-up RGBA pixels, as returned by glReadPixels, as a
// top-down PNG and returns its path.
func (s Screenshots) Save(pixels []byte, width, height int, t time.Time) (string, error) {
	img, err := FlipRGBA(pixels, width, height)
	if err != nil {
		return "", err
	}

	if s.Dir != "" {
		if err := os.MkdirAll(s.Dir, 0755); err != nil {
			return "", fmt.Errorf("creating screenshot dir: %w", err)
		}
	}

	path := s.Filename(t)
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating screenshot: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("encoding screenshot: %w", err)
	}
	return path, nil
}

// FlipRGBA copies bottom-up RGBA rows into a top-down image.
func FlipRGBA(pixels []byte, width, height int) (*image.RGBA, error) {
	if width <= 0 || height <= 0 || len(pixels) != width*height*4 {
		return nil, fmt.Errorf("pixel data size mismatch: %dx%d needs %d bytes, got %d",
			width, height, width*height*4, len(pixels))
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	row := width * 4
	for y := 0; y < height; y++ {
		src := (height - 1 - y) * row
		copy(img.Pix[y*img.Stride:y*img.Stride+row], pixels[src:src+row])
	}
	return img, nil
}
