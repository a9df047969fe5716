package main

import "math"

// Rect is a destination rectangle in viewport pixels.
type Rect struct {
	X, Y int
	W, H int
}

// Empty reports whether the rectangle has no drawable area.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Fit places a srcW x srcH image inside a dstW x dstH viewport.
// The image keeps its aspect ratio, is centred, and is only ever scaled down.
// Degenerate inputs yield a zero Rect.
func Fit(srcW, srcH, dstW, dstH int) Rect {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return Rect{}
	}

	w, h := srcW, srcH
	if srcW > srcH {
		// Landscape: the width decides.
		if srcW > dstW {
			w = dstW
			h = scaleDim(srcH, srcW, dstW)
		}
	} else if srcH > dstH {
		// Portrait or square: the height decides.
		h = dstH
		w = scaleDim(srcW, srcH, dstH)
	}

	// Scaling by one axis can still overflow the other one,
	// e.g. a wide panorama in a short, wide window.
	if h > dstH {
		h = dstH
		w = scaleDim(srcW, srcH, dstH)
	}
	if w > dstW {
		w = dstW
		h = scaleDim(srcH, srcW, dstW)
	}

	return Rect{
		X: centre(dstW, w),
		Y: centre(dstH, h),
		W: w,
		H: h,
	}
}

// scaleDim returns round(num/den * target).
func scaleDim(num, den, target int) int {
	return int(math.Round(float64(num) / float64(den) * float64(target)))
}

func centre(outer, inner int) int {
	return int(math.Round(float64(outer-inner) / 2))
}
