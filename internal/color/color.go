// Package color extracts a dominant color from encoded image bytes, the
// in-process stand-in for the original ColorThief collaborator.
package color

import (
	"bytes"
	"errors"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// DefaultQuality is the pixel sampling stride: every Nth pixel is counted.
const DefaultQuality = 5

var ErrNoOpaquePixels = errors.New("image has no countable pixels")

// RGB is one extracted color triple.
type RGB struct {
	R, G, B uint8
}

// Dominant decodes data (jpeg/png/gif) and returns the most frequent color,
// quantized to 5 bits per channel. Pixels that are mostly transparent or
// near-white are skipped, matching ColorThief's sampling rules. quality <= 0
// falls back to DefaultQuality.
func Dominant(data []byte, quality int) (RGB, error) {
	if quality <= 0 {
		quality = DefaultQuality
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return RGB{}, err
	}

	type bucket struct {
		count            int
		sumR, sumG, sumB uint64
	}
	buckets := make(map[uint32]*bucket)

	bounds := img.Bounds()
	idx := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if idx%quality != 0 {
				idx++
				continue
			}
			idx++
			r16, g16, b16, a16 := img.At(x, y).RGBA()
			r, g, b, a := uint8(r16>>8), uint8(g16>>8), uint8(b16>>8), uint8(a16>>8)
			if a < 125 {
				continue
			}
			if r > 250 && g > 250 && b > 250 {
				continue
			}
			key := uint32(r>>3)<<10 | uint32(g>>3)<<5 | uint32(b>>3)
			bk, ok := buckets[key]
			if !ok {
				bk = &bucket{}
				buckets[key] = bk
			}
			bk.count++
			bk.sumR += uint64(r)
			bk.sumG += uint64(g)
			bk.sumB += uint64(b)
		}
	}

	var best *bucket
	for _, bk := range buckets {
		if best == nil || bk.count > best.count {
			best = bk
		}
	}
	if best == nil {
		return RGB{}, ErrNoOpaquePixels
	}
	n := uint64(best.count)
	return RGB{
		R: uint8(best.sumR / n),
		G: uint8(best.sumG / n),
		B: uint8(best.sumB / n),
	}, nil
}
