package preprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformGray(w, h int, v uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// bimodalGray fills the left half with dark and the right half with light
// pixels, the cleanest possible separable histogram.
func bimodalGray(w, h int, dark, light uint8) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := dark
			if x >= w/2 {
				v = light
			}
			img.SetGray(x, y, color.Gray{Y: v})
		}
	}
	return img
}

func TestOtsuThreshold_BimodalImage(t *testing.T) {
	img := bimodalGray(100, 100, 50, 200)

	threshold := OtsuThreshold(img)

	assert.Greater(t, threshold, 50)
	assert.Less(t, threshold, 200)
}

func TestOtsuThreshold_FlatImage(t *testing.T) {
	// A single-intensity image has no foreground class to separate.
	assert.Equal(t, 128, OtsuThreshold(uniformGray(10, 10, 77)))
}

func TestOtsuThreshold_EmptyImage(t *testing.T) {
	assert.Equal(t, 128, OtsuThreshold(image.NewGray(image.Rect(0, 0, 0, 0))))
}

func TestMedianFilter3_RemovesIsolatedNoise(t *testing.T) {
	img := uniformGray(9, 9, 200)
	img.SetGray(4, 4, color.Gray{Y: 0})

	out := medianFilter3(img)

	assert.Equal(t, uint8(200), out.GrayAt(4, 4).Y)
	assert.Equal(t, img.Bounds(), out.Bounds())
}

func TestAutoContrast_StretchesRange(t *testing.T) {
	img := bimodalGray(100, 100, 100, 150)

	out := autoContrast(img, 0.01)

	assert.Equal(t, uint8(0), out.GrayAt(0, 0).Y)
	assert.Equal(t, uint8(255), out.GrayAt(99, 0).Y)
}

func TestForOCR_ProducesBinaryImage(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 120, 80))
	for y := 0; y < 80; y++ {
		for x := 0; x < 120; x++ {
			c := color.RGBA{R: 240, G: 240, B: 240, A: 255}
			if x%10 < 3 {
				c = color.RGBA{R: 20, G: 20, B: 20, A: 255}
			}
			src.Set(x, y, c)
		}
	}

	out := ForOCR(src)
	require.NotNil(t, out)

	// Small input is upscaled 2x.
	assert.Equal(t, 240, out.Bounds().Dx())
	assert.Equal(t, 160, out.Bounds().Dy())

	for _, v := range out.Pix {
		if v != 0 && v != 255 {
			t.Fatalf("pixel value %d is not binary", v)
		}
	}
}
