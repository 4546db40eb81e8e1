package preprocess

import (
	"image"
	"sort"
)

// OtsuThreshold computes a binarization threshold from the grayscale
// histogram by maximizing the between-class variance over all candidate
// thresholds. Returns 128 when no candidate improves on zero variance
// (a flat or empty image).
func OtsuThreshold(img *image.Gray) int {
	var hist [256]int
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[img.GrayAt(x, y).Y]++
		}
	}
	if total == 0 {
		return 128
	}

	var sumAll int64
	for v, count := range hist {
		sumAll += int64(v) * int64(count)
	}

	best := 128
	bestVariance := -1.0
	var countBg, sumBg int64

	for t := 0; t < 256; t++ {
		countBg += int64(hist[t])
		if countBg == 0 {
			continue
		}
		countFg := int64(total) - countBg
		if countFg == 0 {
			// Everything is background from here on.
			break
		}
		sumBg += int64(t) * int64(hist[t])

		meanBg := float64(sumBg) / float64(countBg)
		meanFg := float64(sumAll-sumBg) / float64(countFg)
		diff := meanBg - meanFg
		variance := float64(countBg) * float64(countFg) * diff * diff

		if variance > bestVariance {
			bestVariance = variance
			best = t
		}
	}
	return best
}

// medianFilter3 applies a 3x3 median filter. Border pixels use the clamped
// neighborhood, so the output keeps the input dimensions.
func medianFilter3(img *image.Gray) *image.Gray {
	bounds := img.Bounds()
	out := image.NewGray(bounds)
	window := make([]int, 0, 9)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			window = window[:0]
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					nx := clamp(x+dx, bounds.Min.X, bounds.Max.X-1)
					ny := clamp(y+dy, bounds.Min.Y, bounds.Max.Y-1)
					window = append(window, int(img.GrayAt(nx, ny).Y))
				}
			}
			sort.Ints(window)
			out.Pix[out.PixOffset(x, y)] = uint8(window[4])
		}
	}
	return out
}

// autoContrast stretches the intensity histogram to the full 0..255 range,
// ignoring the clipped fraction of extreme pixels at each end so a handful
// of outliers cannot compress the useful range.
func autoContrast(img *image.Gray, clip float64) *image.Gray {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return img
	}

	var hist [256]int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			hist[img.GrayAt(x, y).Y]++
		}
	}

	cut := int(float64(total) * clip)
	low, high := 0, 255
	for accum := 0; low < 255; low++ {
		accum += hist[low]
		if accum > cut {
			break
		}
	}
	for accum := 0; high > 0; high-- {
		accum += hist[high]
		if accum > cut {
			break
		}
	}
	if high <= low {
		return img
	}

	scale := 255.0 / float64(high-low)
	out := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := float64(clamp(int(img.GrayAt(x, y).Y), low, high)-low) * scale
			out.Pix[out.PixOffset(x, y)] = uint8(v + 0.5)
		}
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
