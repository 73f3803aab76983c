package engine

import (
	"image"
	"math"
)

const histBins = 8

// HistogramSize is the number of bins in a face histogram (8 per channel).
const HistogramSize = histBins * histBins * histBins

// Histogram computes an 8x8x8 RGB colour histogram over the part of img
// inside box, L2-normalised. Bins are laid out red-major: r*64 + g*8 + b.
func Histogram(img image.Image, box image.Rectangle) []float32 {
	hist := make([]float32, HistogramSize)
	region := box.Intersect(img.Bounds())
	if region.Empty() {
		return hist
	}

	for y := region.Min.Y; y < region.Max.Y; y++ {
		for x := region.Min.X; x < region.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// 16-bit channel -> 8-bit -> bin (256 / 8 = 32 values per bin)
			ri := (r >> 8) >> 5
			gi := (g >> 8) >> 5
			bi := (b >> 8) >> 5
			hist[ri*histBins*histBins+gi*histBins+bi]++
		}
	}

	var sum float64
	for _, v := range hist {
		sum += float64(v) * float64(v)
	}
	if sum == 0 {
		return hist
	}
	norm := float32(math.Sqrt(sum))
	for i := range hist {
		hist[i] /= norm
	}
	return hist
}
