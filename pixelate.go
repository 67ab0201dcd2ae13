package pixlato

import (
	"fmt"
	"image"
	"strings"

	"github.com/disintegration/gift"
	"github.com/setanarut/pixlato/downsample"
)

// DownsampleMethod selects how Pixelate reduces resolution.
type DownsampleMethod int

const (
	// DownsampleBox averages each block.
	DownsampleBox DownsampleMethod = iota
	// DownsampleAdaptive keeps edge contrast in busy blocks.
	DownsampleAdaptive
)

func (m DownsampleMethod) String() string {
	switch m {
	case DownsampleBox:
		return "box"
	case DownsampleAdaptive:
		return "adaptive"
	default:
		return fmt.Sprintf("DownsampleMethod(%d)", int(m))
	}
}

// ParseDownsampleMethod parses a downsample method name.
func ParseDownsampleMethod(s string) (DownsampleMethod, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "box", "standard", "":
		return DownsampleBox, nil
	case "adaptive", "kmeans", "k-means":
		return DownsampleAdaptive, nil
	}
	return 0, fmt.Errorf("downsample method %q: %w", s, ErrUnknownPolicy)
}

type PixelateOptions struct {
	// Side of one output pixel in source pixels. Values < 1 are treated
	// as 1.
	PixelSize int
	// Output width. When > 0 it overrides PixelSize and the height follows
	// the source aspect ratio.
	TargetWidth int
	Method      DownsampleMethod
	// Unsharp-mask the source before reducing so small features survive.
	EdgeEnhance bool
	// Edge enhancement strength, 0 to 2.
	EdgeSensitivity float64
}

func DefaultPixelateOptions() PixelateOptions {
	return PixelateOptions{
		PixelSize:       4,
		Method:          DownsampleAdaptive,
		EdgeSensitivity: 1.0,
	}
}

// PixelateOptionsFromSize picks a pixel size that brings the longer side
// of an image of the given size to roughly 128 pixels.
func PixelateOptionsFromSize(size image.Point) PixelateOptions {
	opt := DefaultPixelateOptions()
	if size.X <= 0 || size.Y <= 0 {
		return opt
	}
	opt.PixelSize = max(1, max(size.X, size.Y)/128)
	return opt
}

// Pixelate reduces img to one pixel per block.
func (e *Engine) Pixelate(img image.Image, opt PixelateOptions) (*image.NRGBA, error) {
	if img == nil {
		return nil, ErrNilImage
	}
	src := FromImage(img)
	w, h := src.Rect.Dx(), src.Rect.Dy()
	if w == 0 || h == 0 {
		return src, nil
	}

	bs := max(opt.PixelSize, 1)
	outW, outH := downsample.Dims(w, h, bs)
	if opt.TargetWidth > 0 {
		outW = min(opt.TargetWidth, w)
		outH = max(1, outW*h/w)
		bs = max(1, w/outW)
	}

	if opt.EdgeEnhance && opt.EdgeSensitivity > 0 {
		src = enhanceEdges(src, min(opt.EdgeSensitivity, 2))
	}

	Logger().Debug("pixlato: pixelate", "from", src.Rect.Size(), "to", image.Pt(outW, outH),
		"block", bs, "method", opt.Method)
	switch opt.Method {
	case DownsampleBox:
		return downsample.Box(src, outW, outH), nil
	case DownsampleAdaptive:
		return e.sampler.Adaptive(src, bs, outW, outH), nil
	}
	return nil, fmt.Errorf("could not pixelate: %v: %w", opt.Method, ErrUnknownPolicy)
}

// enhanceEdges applies an unsharp mask whose radius, amount and threshold
// scale with sensitivity.
func enhanceEdges(img *image.NRGBA, sensitivity float64) *image.NRGBA {
	sigma := 0.5 + sensitivity*0.75
	amount := 1 + sensitivity*0.75
	threshold := max(1, int(5-sensitivity*2))
	g := gift.New(gift.UnsharpMask(float32(sigma), float32(amount), float32(threshold)/255))
	dst := image.NewNRGBA(g.Bounds(img.Bounds()))
	g.Draw(dst, img)
	return dst
}
