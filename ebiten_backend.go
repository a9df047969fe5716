package main

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"log/slog"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	windowTitle  = "keepview"
	infoFontSize = 18.0
)

var bgColorLight = color.RGBA{0, 0, 0, 128} // Light semi-transparent

// ebitenKeys maps binding key names to Ebiten keys.
var ebitenKeys = map[string]ebiten.Key{
	// Letters
	"KeyA": ebiten.KeyA, "KeyB": ebiten.KeyB, "KeyC": ebiten.KeyC, "KeyD": ebiten.KeyD,
	"KeyE": ebiten.KeyE, "KeyF": ebiten.KeyF, "KeyG": ebiten.KeyG, "KeyH": ebiten.KeyH,
	"KeyI": ebiten.KeyI, "KeyJ": ebiten.KeyJ, "KeyK": ebiten.KeyK, "KeyL": ebiten.KeyL,
	"KeyM": ebiten.KeyM, "KeyN": ebiten.KeyN, "KeyO": ebiten.KeyO, "KeyP": ebiten.KeyP,
	"KeyQ": ebiten.KeyQ, "KeyR": ebiten.KeyR, "KeyS": ebiten.KeyS, "KeyT": ebiten.KeyT,
	"KeyU": ebiten.KeyU, "KeyV": ebiten.KeyV, "KeyW": ebiten.KeyW, "KeyX": ebiten.KeyX,
	"KeyY": ebiten.KeyY, "KeyZ": ebiten.KeyZ,

	// Numbers
	"Key0": ebiten.Key0, "Key1": ebiten.Key1, "Key2": ebiten.Key2, "Key3": ebiten.Key3,
	"Key4": ebiten.Key4, "Key5": ebiten.Key5, "Key6": ebiten.Key6, "Key7": ebiten.Key7,
	"Key8": ebiten.Key8, "Key9": ebiten.Key9,

	// Special keys
	"Space":      ebiten.KeySpace,
	"Backspace":  ebiten.KeyBackspace,
	"Enter":      ebiten.KeyEnter,
	"Escape":     ebiten.KeyEscape,
	"Tab":        ebiten.KeyTab,
	"Home":       ebiten.KeyHome,
	"End":        ebiten.KeyEnd,
	"PageUp":     ebiten.KeyPageUp,
	"PageDown":   ebiten.KeyPageDown,
	"ArrowUp":    ebiten.KeyArrowUp,
	"ArrowDown":  ebiten.KeyArrowDown,
	"ArrowLeft":  ebiten.KeyArrowLeft,
	"ArrowRight": ebiten.KeyArrowRight,

	// Punctuation
	"Comma":     ebiten.KeyComma,
	"Period":    ebiten.KeyPeriod,
	"Slash":     ebiten.KeySlash,
	"Semicolon": ebiten.KeySemicolon,
	"Quote":     ebiten.KeyQuote,
	"Minus":     ebiten.KeyMinus,
	"Equal":     ebiten.KeyEqual,
}

var ebitenKeyNames = func() map[ebiten.Key]string {
	names := make(map[ebiten.Key]string, len(ebitenKeys))
	for name, key := range ebitenKeys {
		names[key] = name
	}
	return names
}()

// ebitenBackend shows images in a desktop window driven by Ebiten's game loop.
type ebitenBackend struct {
	fullscreen bool
	showInfo   bool
	fontSource *text.GoTextFaceSource

	// Texture for the frame currently on screen.
	tex      *ebiten.Image
	texFrame *Frame
	caption  string
}

func newEbitenBackend(cfg Config) (*ebitenBackend, error) {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return nil, errors.Join(err, errBackend)
	}

	return &ebitenBackend{
		fullscreen: cfg.Fullscreen,
		showInfo:   cfg.ShowInfo,
		fontSource: s,
	}, nil
}

func (b *ebitenBackend) Name() string { return BackendEbiten }

func (b *ebitenBackend) Run(ctx context.Context, loop *Loop) error {
	w, h := ebiten.Monitor().Size()
	ebiten.SetWindowTitle(windowTitle)
	ebiten.SetWindowSize(w, h)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetFullscreen(b.fullscreen)
	ebiten.SetWindowClosingHandled(true)
	// Only redraw when the viewer asks for it.
	ebiten.SetScreenClearedEveryFrame(false)

	slog.Info("Starting window", slog.Int("width", w), slog.Int("height", h),
		slog.Bool("fullscreen", b.fullscreen))

	g := &game{ctx: ctx, loop: loop, backend: b}
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}

func (b *ebitenBackend) Close() error {
	if b.tex != nil {
		b.tex.Deallocate()
		b.tex = nil
		b.texFrame = nil
	}
	return nil
}

// texture returns the GPU image for frame, replacing the previous one.
func (b *ebitenBackend) texture(frame *Frame) *ebiten.Image {
	if b.texFrame == frame && b.tex != nil {
		return b.tex
	}
	if b.tex != nil {
		b.tex.Deallocate()
	}
	b.tex = ebiten.NewImageFromImage(frame.Image)
	b.texFrame = frame
	return b.tex
}

// game adapts the Loop to ebiten.Game. Update is the poll tick.
type game struct {
	ctx     context.Context
	loop    *Loop
	backend *ebitenBackend

	keys    []ebiten.Key
	width   int
	height  int
	drawErr error
}

func (g *game) Update() error {
	if g.drawErr != nil {
		return g.drawErr
	}
	if err := g.ctx.Err(); err != nil {
		return err
	}

	quit, err := g.loop.HandleEvents(g.pollEvents(), nil)
	if err != nil {
		return err
	}
	if quit {
		return ebiten.Termination
	}
	return nil
}

func (g *game) pollEvents() []Event {
	var events []Event
	if ebiten.IsWindowBeingClosed() {
		events = append(events, Event{Kind: EventQuit})
	}

	shift := ebiten.IsKeyPressed(ebiten.KeyShift)
	ctrl := ebiten.IsKeyPressed(ebiten.KeyControl)
	alt := ebiten.IsKeyPressed(ebiten.KeyAlt)

	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, key := range g.keys {
		name, ok := ebitenKeyNames[key]
		if !ok {
			name = key.String()
		}
		events = append(events, Event{Kind: EventKey, Key: name, Shift: shift, Ctrl: ctrl, Alt: alt})
	}
	return events
}

func (g *game) Draw(screen *ebiten.Image) {
	if !g.loop.Viewer().Dirty() || g.drawErr != nil {
		return
	}
	s := &ebitenSurface{backend: g.backend, screen: screen}
	if err := g.loop.Viewer().Render(s); err != nil {
		g.drawErr = err
	}
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if outsideWidth != g.width || outsideHeight != g.height {
		g.width, g.height = outsideWidth, outsideHeight
		g.loop.Viewer().RequestRedraw()
	}
	return outsideWidth, outsideHeight
}

// ebitenSurface draws onto the screen image handed to Draw.
type ebitenSurface struct {
	backend *ebitenBackend
	screen  *ebiten.Image
}

func (s *ebitenSurface) Size() (int, int) {
	b := s.screen.Bounds()
	return b.Dx(), b.Dy()
}

func (s *ebitenSurface) Clear() {
	s.screen.Clear()
}

func (s *ebitenSurface) Draw(frame *Frame, dst Rect) error {
	if dst.Empty() || frame.Width == 0 || frame.Height == 0 {
		return nil
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(dst.W)/float64(frame.Width), float64(dst.H)/float64(frame.Height))
	op.GeoM.Translate(float64(dst.X), float64(dst.Y))
	op.Filter = ebiten.FilterLinear
	s.screen.DrawImage(s.backend.texture(frame), op)
	return nil
}

func (s *ebitenSurface) Caption(caption string) {
	s.backend.caption = caption
	ebiten.SetWindowTitle(windowTitle + " - " + caption)
}

// Present draws the info bar. Ebiten itself shows the screen after Draw.
func (s *ebitenSurface) Present() error {
	if s.backend.showInfo && s.backend.caption != "" {
		s.drawInfoDisplay()
	}
	return nil
}

func (s *ebitenSurface) drawInfoDisplay() {
	infoFont := &text.GoTextFace{
		Source: s.backend.fontSource,
		Size:   infoFontSize,
	}

	textWidth, textHeight := text.Measure(s.backend.caption, infoFont, 0)

	// Bottom right corner
	padding := 10.0
	textX := float64(s.screen.Bounds().Dx()) - textWidth - padding
	textY := float64(s.screen.Bounds().Dy()) - textHeight - padding

	bgPadding := 5.0
	vector.DrawFilledRect(s.screen,
		float32(textX-bgPadding), float32(textY-bgPadding),
		float32(textWidth+bgPadding*2), float32(textHeight+bgPadding*2),
		bgColorLight, false)

	op := &text.DrawOptions{}
	op.GeoM.Translate(textX, textY)
	op.ColorScale.ScaleWithColor(colorWhite)
	text.Draw(s.screen, s.backend.caption, infoFont, op)
}
