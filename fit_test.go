package main

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFit(t *testing.T) {
	tests := []struct {
		name       string
		srcW, srcH int
		dstW, dstH int
		expected   Rect
	}{
		{"Wide image scaled to width", 200, 100, 100, 100, Rect{X: 0, Y: 25, W: 100, H: 50}},
		{"Tall image scaled to height", 100, 200, 100, 100, Rect{X: 25, Y: 0, W: 50, H: 100}},
		{"Tall non-square keeps aspect", 300, 600, 1000, 300, Rect{X: 425, Y: 0, W: 150, H: 300}},
		{"Square image scaled to height", 1000, 1000, 800, 600, Rect{X: 100, Y: 0, W: 600, H: 600}},
		{"Small image centred", 50, 30, 100, 100, Rect{X: 25, Y: 35, W: 50, H: 30}},
		{"Native size fits exactly", 1920, 1080, 1920, 1080, Rect{X: 0, Y: 0, W: 1920, H: 1080}},
		{"Smaller than viewport is never upscaled", 1600, 900, 1920, 1080, Rect{X: 160, Y: 90, W: 1600, H: 900}},
		{"Rounded height and offset", 300, 100, 100, 1000, Rect{X: 0, Y: 484, W: 100, H: 33}},
		{"Wide image in short viewport", 200, 100, 100, 10, Rect{X: 40, Y: 0, W: 20, H: 10}},
		{"Tall image in narrow viewport", 100, 300, 50, 1000, Rect{X: 0, Y: 425, W: 50, H: 150}},
		{"Zero width source", 0, 100, 100, 100, Rect{}},
		{"Zero height source", 100, 0, 100, 100, Rect{}},
		{"Zero viewport", 100, 100, 0, 0, Rect{}},
		{"Negative viewport", 100, 100, -5, 100, Rect{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Fit(tt.srcW, tt.srcH, tt.dstW, tt.dstH))
		})
	}
}

func TestFitDegenerateIsEmpty(t *testing.T) {
	assert.True(t, Fit(0, 0, 0, 0).Empty())
	assert.True(t, Fit(10, 10, 0, 10).Empty())
	assert.False(t, Fit(10, 10, 10, 10).Empty())
}

func TestFitProperties(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 5000; i++ {
		srcW, srcH := rng.IntN(5000)+1, rng.IntN(5000)+1
		dstW, dstH := rng.IntN(3000)+1, rng.IntN(3000)+1
		r := Fit(srcW, srcH, dstW, dstH)

		// Always inside the viewport.
		require.GreaterOrEqual(t, r.X, 0, "%dx%d in %dx%d: %+v", srcW, srcH, dstW, dstH, r)
		require.GreaterOrEqual(t, r.Y, 0, "%dx%d in %dx%d: %+v", srcW, srcH, dstW, dstH, r)
		require.LessOrEqual(t, r.X+r.W, dstW, "%dx%d in %dx%d: %+v", srcW, srcH, dstW, dstH, r)
		require.LessOrEqual(t, r.Y+r.H, dstH, "%dx%d in %dx%d: %+v", srcW, srcH, dstW, dstH, r)

		// Never upscaled.
		require.LessOrEqual(t, r.W, srcW)
		require.LessOrEqual(t, r.H, srcH)

		if srcW <= dstW && srcH <= dstH {
			require.Equal(t, Rect{
				X: int(math.Round(float64(dstW-srcW) / 2)),
				Y: int(math.Round(float64(dstH-srcH) / 2)),
				W: srcW,
				H: srcH,
			}, r)
			continue
		}

		wantH := int(math.Round(float64(srcH) / float64(srcW) * float64(dstW)))
		if srcW > srcH && srcW > dstW && wantH <= dstH {
			require.Equal(t, dstW, r.W)
			require.Equal(t, wantH, r.H)
			require.Equal(t, 0, r.X)
			require.Equal(t, int(math.Round(float64(dstH-wantH)/2)), r.Y)
		}
	}
}
