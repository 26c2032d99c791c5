package extract

import (
	"image"
	"math/bits"
)

// meanLuma returns the average BT.601 luma (0-255) of the image, sampled on
// a grid of at most 64x64 points so the cost is independent of frame size.
func meanLuma(img image.Image) float64 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	stepX, stepY := w/64, h/64
	if stepX < 1 {
		stepX = 1
	}
	if stepY < 1 {
		stepY = 1
	}

	var sum float64
	var n int
	for y := b.Min.Y; y < b.Max.Y; y += stepY {
		for x := b.Min.X; x < b.Max.X; x += stepX {
			sum += lumaAt(img, x, y)
			n++
		}
	}
	return sum / float64(n)
}

// dHash computes a 64-bit difference hash: the image is sampled to a 9x8
// luma grid and each bit records whether a cell is brighter than its right
// neighbor. Near-identical frames produce hashes within a small Hamming
// distance.
func dHash(img image.Image) uint64 {
	const gw, gh = 9, 8
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return 0
	}

	var grid [gh][gw]float64
	for gy := 0; gy < gh; gy++ {
		for gx := 0; gx < gw; gx++ {
			x := b.Min.X + (2*gx+1)*w/(2*gw)
			y := b.Min.Y + (2*gy+1)*h/(2*gh)
			grid[gy][gx] = lumaAt(img, x, y)
		}
	}

	var hash uint64
	for gy := 0; gy < gh; gy++ {
		for gx := 0; gx < gw-1; gx++ {
			hash <<= 1
			if grid[gy][gx] > grid[gy][gx+1] {
				hash |= 1
			}
		}
	}
	return hash
}

// hamming returns the number of differing bits between two hashes.
func hamming(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

// lumaAt returns the BT.601 luma of the pixel at (x, y) on a 0-255 scale.
func lumaAt(img image.Image, x, y int) float64 {
	r, g, b, _ := img.At(x, y).RGBA()
	return (0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)) / 257.0
}
