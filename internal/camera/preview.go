package camera

import (
	"image"
	"image/color"
	"strings"
	"sync"

	"github.com/nfnt/resize"
)

const previewRamp = " .:-=+*#%@"

// cachedSource serves a recent frame without touching the device.
type cachedSource interface {
	Latest() image.Image
}

// Preview is a Surface that renders the bound stream as ASCII art.
type Preview struct {
	mu  sync.Mutex
	src FrameSource
}

// Bind implements Surface.
func (p *Preview) Bind(src FrameSource) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.src = src
}

// Unbind implements Surface.
func (p *Preview) Unbind() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.src = nil
}

// Bound reports whether a stream is attached.
func (p *Preview) Bound() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.src != nil
}

// Render draws the current frame mirrored into width x height cells.
func (p *Preview) Render(width, height int) string {
	p.mu.Lock()
	src := p.src
	p.mu.Unlock()
	if src == nil || width <= 0 || height <= 0 {
		return ""
	}
	var frame image.Image
	if cached, ok := src.(cachedSource); ok {
		frame = cached.Latest()
	} else {
		var err error
		if frame, err = src.Frame(); err != nil {
			return ""
		}
	}
	if frame == nil || frame.Bounds().Empty() {
		return ""
	}
	return RenderASCII(Mirror(frame), width, height)
}

// RenderASCII maps luminance of img onto a character ramp.
func RenderASCII(img image.Image, width, height int) string {
	small := resize.Resize(uint(width), uint(height), img, resize.Bilinear)
	b := small.Bounds()
	var sb strings.Builder
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			gray := color.GrayModel.Convert(small.At(x, y)).(color.Gray)
			idx := int(gray.Y) * (len(previewRamp) - 1) / 255
			sb.WriteByte(previewRamp[idx])
		}
		if y < b.Max.Y-1 {
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
