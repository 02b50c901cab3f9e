// Package ocr wraps image binarization and Tesseract text recognition for
// receipt images.
package ocr

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Method selects the thresholding strategy applied after grayscale
// conversion.
type Method string

const (
	// MethodOtsu picks one global threshold from the image histogram.
	MethodOtsu Method = "otsu"
	// MethodAdaptive thresholds each pixel against its local mean, which
	// copes with uneven lighting across the receipt.
	MethodAdaptive Method = "adaptive"
)

// ParseMethod validates a user-supplied method name.
func ParseMethod(s string) (Method, error) {
	switch Method(s) {
	case MethodOtsu, MethodAdaptive:
		return Method(s), nil
	}
	return "", fmt.Errorf("unknown threshold method %q (want %q or %q)", s, MethodOtsu, MethodAdaptive)
}

// Options controls preprocessing of a receipt image before OCR.
type Options struct {
	Method  Method
	Denoise bool // morphological open pass after thresholding
}

// Preprocess decodes the image at path and returns a binarized copy ready
// for OCR. Decode failures are reported as ErrUnreadableImage.
func Preprocess(path string, opts Options) (*image.NRGBA, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnreadableImage, path, err)
	}
	gray := imaging.Grayscale(img)
	var bin *image.NRGBA
	if opts.Method == MethodAdaptive {
		bin = adaptiveThreshold(gray, 11, 2)
	} else {
		bin = binarize(gray, otsuThreshold(gray))
	}
	if opts.Denoise {
		bin = erode(bin, 1)
		bin = dilate(bin, 1)
	}
	return bin, nil
}

// otsuThreshold computes the global threshold that maximizes between-class
// variance of the luminance histogram.
func otsuThreshold(img image.Image) uint8 {
	var hist [256]int64
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			hist[uint8((r+g+bb)/3>>8)]++
		}
	}
	total := int64(b.Dx()) * int64(b.Dy())
	if total == 0 {
		return 128
	}
	var sumAll int64
	for i, c := range hist {
		sumAll += int64(i) * c
	}
	var sumBg, wBg int64
	var best float64
	var threshold uint8
	for t := 0; t < 256; t++ {
		wBg += hist[t]
		if wBg == 0 {
			continue
		}
		wFg := total - wBg
		if wFg == 0 {
			break
		}
		sumBg += int64(t) * hist[t]
		meanBg := float64(sumBg) / float64(wBg)
		meanFg := float64(sumAll-sumBg) / float64(wFg)
		diff := meanBg - meanFg
		between := float64(wBg) * float64(wFg) * diff * diff
		if between > best {
			best = between
			threshold = uint8(t)
		}
	}
	return threshold
}

// binarize applies a global threshold to a grayscale image. Pixels at or
// below the threshold become black.
func binarize(img image.Image, threshold uint8) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bb, _ := img.At(x, y).RGBA()
			gray := uint8((r + g + bb) / 3 >> 8)
			var v uint8 = 255
			if gray <= threshold {
				v = 0
			}
			out.Set(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return out
}

// adaptiveThreshold performs a mean adaptive threshold using an integral
// image so each pixel costs O(1).
func adaptiveThreshold(img image.Image, window int, bias int) *image.NRGBA {
	if window < 3 {
		window = 3
	}
	if window%2 == 0 {
		window++
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	out := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
	half := window / 2
	ints := make([]int, w*h)
	for y := 0; y < h; y++ {
		rowSum := 0
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			v := int((r + g + b) / 3 >> 8)
			rowSum += v
			idx := y*w + x
			if y == 0 {
				ints[idx] = rowSum
			} else {
				ints[idx] = ints[(y-1)*w+x] + rowSum
			}
		}
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, y0 := x-half, y-half
			x1, y1 := x+half, y+half
			if x0 < 0 {
				x0 = 0
			}
			if y0 < 0 {
				y0 = 0
			}
			if x1 >= w {
				x1 = w - 1
			}
			if y1 >= h {
				y1 = h - 1
			}
			a := ints[y0*w+x0]
			b := ints[y0*w+x1]
			c := ints[y1*w+x0]
			d := ints[y1*w+x1]
			sum := d - b - c + a
			mean := sum / ((x1 - x0 + 1) * (y1 - y0 + 1))
			rv, gv, bv, _ := img.At(x, y).RGBA()
			pix := int((rv + gv + bv) / 3 >> 8)
			th := mean - bias
			if th < 0 {
				th = 0
			}
			var col color.NRGBA
			if pix < th {
				col = color.NRGBA{0, 0, 0, 255}
			} else {
				col = color.NRGBA{255, 255, 255, 255}
			}
			out.Set(x, y, col)
		}
	}
	return out
}

var neighborhood = [][2]int{{0, 0}, {1, 0}, {-1, 0}, {0, 1}, {0, -1}}

// erode keeps a pixel black only when its whole 4-neighborhood is black,
// removing isolated specks.
func erode(img *image.NRGBA, radius int) *image.NRGBA {
	if radius <= 0 {
		return img
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	cur := img
	for r := 0; r < radius; r++ {
		next := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				all := true
				for _, d := range neighborhood {
					x2 := x + d[0]
					y2 := y + d[1]
					if x2 < 0 || y2 < 0 || x2 >= w || y2 >= h {
						all = false
						break
					}
					rv, gv, bv, _ := cur.At(x2, y2).RGBA()
					if rv+gv+bv != 0 {
						all = false
						break
					}
				}
				if all {
					next.Set(x, y, color.NRGBA{0, 0, 0, 255})
				}
			}
		}
		cur = next
	}
	return cur
}

// dilate grows black regions by the 4-neighborhood radius times, restoring
// stroke weight after erosion.
func dilate(img *image.NRGBA, radius int) *image.NRGBA {
	if radius <= 0 {
		return img
	}
	w := img.Bounds().Dx()
	h := img.Bounds().Dy()
	cur := img
	for r := 0; r < radius; r++ {
		next := imaging.New(w, h, color.NRGBA{255, 255, 255, 255})
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				black := false
				for _, d := range neighborhood {
					x2 := x + d[0]
					y2 := y + d[1]
					if x2 < 0 || y2 < 0 || x2 >= w || y2 >= h {
						continue
					}
					rv, gv, bv, _ := cur.At(x2, y2).RGBA()
					if rv+gv+bv == 0 {
						black = true
						break
					}
				}
				if black {
					next.Set(x, y, color.NRGBA{0, 0, 0, 255})
				}
			}
		}
		cur = next
	}
	return cur
}
