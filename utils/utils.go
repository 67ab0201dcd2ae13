package utils

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "golang.org/x/image/webp"

	"github.com/setanarut/pixlato/palette"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// ReadImage decodes the image at path. PNG, JPEG, GIF, BMP, TIFF and WebP
// are supported.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open image %q: %w", path, err)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("could not decode image %q: %w", path, err)
	}
	return img, nil
}

// SaveImage encodes img to filename. The format follows the extension and
// defaults to PNG.
func SaveImage(img image.Image, filename string) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("could not create %q: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("could not close %q: %w", filename, cerr)
		}
	}()

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".gif":
		err = gif.Encode(f, img, nil)
	case ".jpg", ".jpeg":
		err = jpeg.Encode(f, img, &jpeg.Options{Quality: 100})
	case ".bmp":
		err = bmp.Encode(f, img)
	case ".tif", ".tiff":
		err = tiff.Encode(f, img, nil)
	default:
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		err = enc.Encode(f, img)
	}
	if err != nil {
		return fmt.Errorf("could not encode %q: %w", filename, err)
	}
	return nil
}

// PaletteImage renders p as a strip of tileSize x tileSize swatches.
func PaletteImage(p palette.Palette, tileSize int) (*image.NRGBA, error) {
	if p.Len() == 0 {
		return nil, fmt.Errorf("empty palette")
	}
	if tileSize <= 0 {
		tileSize = 64
	}

	w := tileSize * p.Len()
	h := tileSize
	img := image.NewNRGBA(image.Rect(0, 0, w, h))

	for i, c := range p.Colors() {
		x0 := i * tileSize
		x1 := x0 + tileSize
		for y := range h {
			for x := x0; x < x1; x++ {
				img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255})
			}
		}
	}
	return img, nil
}

// SavePalette writes the swatch strip of p to filename.
func SavePalette(p palette.Palette, tileSize int, filename string) error {
	img, err := PaletteImage(p, tileSize)
	if err != nil {
		return err
	}
	return SaveImage(img, filename)
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
