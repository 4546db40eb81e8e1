// Package preprocess normalizes schedule photos into binarized grayscale
// images tuned for OCR. Photos arrive with wildly varying lighting, noise
// and resolution, so the pipeline upscales small images, removes speckle
// noise, stretches contrast and binarizes with an adaptive threshold.
package preprocess

import (
	"fmt"
	"image"

	"github.com/disintegration/imaging"
)

// MinDimension is the smallest acceptable larger-dimension before the image
// is upscaled. OCR engines degrade noticeably below ~300 DPI equivalent.
const MinDimension = 1500

// Prepare loads the image at path and runs the full OCR preprocessing
// pipeline. An unreadable path propagates as an error, no silent fallback.
func Prepare(path string) (*image.Gray, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("preprocess: open %s: %w", path, err)
	}
	return ForOCR(img), nil
}

// ForOCR converts an arbitrary image into a single-channel binarized image
// ready for character recognition.
func ForOCR(img image.Image) *image.Gray {
	// Grayscale first; every later step operates on a single channel.
	gray := toGray(imaging.Grayscale(img))

	// Upscale small photos so character strokes survive binarization.
	bounds := gray.Bounds()
	if max(bounds.Dx(), bounds.Dy()) < MinDimension {
		resized := imaging.Resize(gray, bounds.Dx()*2, bounds.Dy()*2, imaging.Lanczos)
		gray = toGray(resized)
	}

	// Median filter removes isolated noise pixels without eating strokes.
	gray = medianFilter3(gray)

	// Stretch the histogram to full dynamic range, clipping 1% outliers.
	gray = autoContrast(gray, 0.01)

	// Restore edge crispness lost to the median filter.
	gray = toGray(imaging.Sharpen(gray, 1.0))

	// Adaptive binarization; a fixed midpoint fails on uneven lighting.
	return binarize(gray, OtsuThreshold(gray))
}

// toGray flattens any image into an 8-bit single-channel image.
func toGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	bounds := img.Bounds()
	gray := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			gray.Set(x, y, img.At(x, y))
		}
	}
	return gray
}

// binarize maps every pixel to black (<= threshold) or white (> threshold).
func binarize(img *image.Gray, threshold int) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if int(img.GrayAt(x, y).Y) > threshold {
				out.Pix[out.PixOffset(x, y)] = 255
			}
		}
	}
	return out
}
