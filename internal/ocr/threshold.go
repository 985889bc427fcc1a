package ocr

import (
	"image"

	"golang.org/x/image/draw"
)

// minOCRWidth is the width below which photos are upscaled before recognition.
const minOCRWidth = 1200

// Grayscale converts img to 8-bit luminance.
func Grayscale(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(b)
	draw.Draw(g, b, img, b.Min, draw.Src)
	return g
}

func upscale(img image.Image) image.Image {
	b := img.Bounds()
	if b.Dx() == 0 || b.Dx() >= minOCRWidth {
		return img
	}
	scale := float64(minOCRWidth) / float64(b.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, minOCRWidth, int(float64(b.Dy())*scale)))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// OtsuThreshold returns the gray level that maximizes between-class variance.
func OtsuThreshold(g *image.Gray) uint8 {
	var hist [256]float64
	b := g.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := g.Pix[g.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			hist[row[x]]++
		}
	}

	total := float64(b.Dx() * b.Dy())
	var sum float64
	for i, n := range hist {
		sum += float64(i) * n
	}

	var sumB, wB, best float64
	var threshold uint8
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * hist[t]
		mB := sumB / wB
		mF := (sum - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			threshold = uint8(t)
		}
	}
	return threshold
}

// Binarize maps pixels above t to white and the rest to black.
func Binarize(g *image.Gray, t uint8) *image.Gray {
	b := g.Bounds()
	out := image.NewGray(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		src := g.Pix[g.PixOffset(b.Min.X, y):]
		dst := out.Pix[out.PixOffset(b.Min.X, y):]
		for x := 0; x < b.Dx(); x++ {
			if src[x] > t {
				dst[x] = 255
			}
		}
	}
	return out
}
