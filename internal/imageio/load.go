// Package imageio turns image files into target pixel arrays.
package imageio

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/config"
	"github.com/Keegz-dz/Genetic-Optimisation-Framework-for-Pixel-Precise-Image-Reconstruction/internal/pixel"
)

// Options controls how a file becomes a target
type Options struct {
	Channels int
	MaxWidth int // downscale wider images, keeping the aspect ratio; 0 disables
}

// OptionsFromConfig reads the image section of cfg
func OptionsFromConfig(cfg config.ImageConfig) Options {
	return Options{Channels: cfg.Channels, MaxWidth: cfg.MaxWidth}
}

// Load decodes the image at path into a target pixel array
func Load(path string, opts Options) (pixel.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return pixel.Image{}, "", err
	}
	defer f.Close()
	return Decode(f, opts)
}

// Decode reads any registered image format from r and returns the pixel array and format name
func Decode(r io.Reader, opts Options) (pixel.Image, string, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return pixel.Image{}, "", fmt.Errorf("decode image: %w", err)
	}
	src = Fit(src, opts.MaxWidth)
	img, err := pixel.FromImage(src, opts.Channels)
	if err != nil {
		return pixel.Image{}, format, err
	}
	return img, format, nil
}

// Fit scales src down so its width does not exceed maxWidth. Smaller images are returned as is.
func Fit(src image.Image, maxWidth int) image.Image {
	b := src.Bounds()
	if maxWidth <= 0 || b.Dx() <= maxWidth {
		return src
	}
	ratio := float64(maxWidth) / float64(b.Dx())
	h := int(float64(b.Dy()) * ratio)
	if h < 1 {
		h = 1
	}
	dst := image.NewNRGBA(image.Rect(0, 0, maxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
