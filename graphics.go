package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/dustin/go-humanize"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

const (
	errorImageWidth  = 400
	errorImageHeight = 300
)

var (
	colorWhite   = color.RGBA{255, 255, 255, 255}
	colorErrorBg = color.RGBA{120, 30, 30, 255} // Dark red background
)

var (
	errorFaceOnce sync.Once
	errorFace     font.Face
)

// loadErrorFace parses goregular once. A nil face means text is skipped.
func loadErrorFace() font.Face {
	errorFaceOnce.Do(func() {
		f, err := opentype.Parse(goregular.TTF)
		if err != nil {
			return
		}
		face, err := opentype.NewFace(f, &opentype.FaceOptions{Size: 20, DPI: 72, Hinting: font.HintingFull})
		if err != nil {
			return
		}
		errorFace = face
	})
	return errorFace
}

func fillRect(dst draw.Image, r image.Rectangle, c color.Color) {
	draw.Draw(dst, r, image.NewUniform(c), image.Point{}, draw.Src)
}

func drawString(dst draw.Image, face font.Face, s string, x, y int, c color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// CreateErrorImage creates an error placeholder image with filename and error message
func CreateErrorImage(width, height int, filename, errorMsg string) *image.RGBA {
	if width <= 0 || height <= 0 {
		width, height = errorImageWidth, errorImageHeight
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fillRect(img, img.Bounds(), colorErrorBg)

	// White border
	fillRect(img, image.Rect(0, 0, width, 3), colorWhite)
	fillRect(img, image.Rect(0, height-3, width, height), colorWhite)
	fillRect(img, image.Rect(0, 0, 3, height), colorWhite)
	fillRect(img, image.Rect(width-3, 0, width, height), colorWhite)

	face := loadErrorFace()
	if face == nil {
		return img
	}

	fileText := "File: " + filename
	reasonText := "Reason: " + errorMsg

	// Rough estimate: 10px per character
	maxChars := (width - 20) / 10
	fileText = truncateText(fileText, maxChars)
	reasonText = truncateText(reasonText, maxChars)

	drawString(img, face, "ERROR", 10, 30, colorWhite)
	drawString(img, face, fileText, 10, 60, colorWhite)
	drawString(img, face, reasonText, 10, 90, colorWhite)

	return img
}

func truncateText(s string, maxChars int) string {
	r := []rune(s)
	if maxChars < 4 || len(r) <= maxChars {
		return s
	}
	return string(r[:maxChars-3]) + "..."
}

// errorFrame stands in for an image that failed to decode.
func errorFrame(path ImagePath, err error) *Frame {
	img := CreateErrorImage(errorImageWidth, errorImageHeight, path.Name(), err.Error())
	return newFrame(path, img, 0)
}

// formatCaption builds the status line for the current image,
// e.g. "[3/120] beach.jpg  1920x1080  2.1 MB".
func formatCaption(frame *Frame, index, total int) string {
	caption := fmt.Sprintf("[%d/%d] %s  %dx%d", index+1, total, frame.Path.Name(), frame.Width, frame.Height)
	if frame.Size > 0 {
		caption += "  " + humanize.Bytes(uint64(frame.Size))
	}
	return caption
}
