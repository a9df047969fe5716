package main

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/disintegration/imaging"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/nwaples/rardecode"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const defaultCacheSize = 8

var (
	errDecode       = errors.New("failed to decode image")
	errEntryMissing = errors.New("archive entry not found")
)

type ImagePath struct {
	Path        string // Local file path or archive:entry format
	ArchivePath string // Empty for regular files, path to archive for entries
	EntryPath   string // Empty for regular files, path within archive for entries
}

// IsArchiveEntry reports whether the image lives inside an archive.
func (p ImagePath) IsArchiveEntry() bool {
	return p.ArchivePath != ""
}

// Name is the base file name used for captions and keep destinations.
func (p ImagePath) Name() string {
	if p.IsArchiveEntry() {
		return filepath.Base(filepath.FromSlash(p.EntryPath))
	}
	return filepath.Base(p.Path)
}

func fileImagePath(path string) ImagePath {
	return ImagePath{Path: path}
}

func entryImagePath(archivePath, entryPath string) ImagePath {
	return ImagePath{
		Path:        archivePath + ":" + entryPath,
		ArchivePath: archivePath,
		EntryPath:   entryPath,
	}
}

func isArchiveExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".zip", ".rar", ".7z":
		return true
	default:
		return false
	}
}

func isSupportedExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".webp", ".bmp", ".gif":
		return true
	default:
		return false
	}
}

func isJPEGExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return true
	default:
		return false
	}
}

// Frame is a decoded image ready to be drawn.
type Frame struct {
	Path   ImagePath
	Image  image.Image
	Width  int
	Height int
	Size   int64 // encoded size in bytes
}

func newFrame(path ImagePath, img image.Image, size int64) *Frame {
	b := img.Bounds()
	return &Frame{
		Path:   path,
		Image:  img,
		Width:  b.Dx(),
		Height: b.Dy(),
		Size:   size,
	}
}

// ImageLoader decodes images for the viewer.
type ImageLoader interface {
	Load(path ImagePath) (*Frame, error)
	Forget(path ImagePath)
}

// ImageManager decodes images on demand and keeps the most recent frames
// in an LRU cache keyed by path.
type ImageManager struct {
	cache *lru.Cache[string, *Frame]
	load  func(ImagePath) (*Frame, error)
}

// NewImageManager creates an ImageManager holding at most cacheSize frames.
func NewImageManager(cacheSize int) *ImageManager {
	cache, err := lru.New[string, *Frame](cacheSize)
	if err != nil {
		slog.Warn("Invalid image cache size, using default",
			slog.Int("size", cacheSize), slog.String("error", err.Error()))
		cache, _ = lru.New[string, *Frame](defaultCacheSize)
	}

	return &ImageManager{
		cache: cache,
		load:  loadImage,
	}
}

func (m *ImageManager) Load(path ImagePath) (*Frame, error) {
	if frame, ok := m.cache.Get(path.Path); ok {
		slog.Debug("Cache hit", slog.String("path", path.Path), slog.Int("cached", m.cache.Len()))
		return frame, nil
	}

	frame, err := m.load(path)
	if err != nil {
		return nil, err
	}

	m.cache.Add(path.Path, frame)
	slog.Debug("Cache miss", slog.String("path", path.Path),
		slog.Int("width", frame.Width), slog.Int("height", frame.Height),
		slog.Int("cached", m.cache.Len()))

	return frame, nil
}

// Forget drops a cached frame, used once a path leaves the image set.
func (m *ImageManager) Forget(path ImagePath) {
	m.cache.Remove(path.Path)
}

// Len returns the number of cached frames.
func (m *ImageManager) Len() int {
	return m.cache.Len()
}

// Image loading functions

func loadImage(path ImagePath) (*Frame, error) {
	var (
		data []byte
		err  error
	)
	if path.IsArchiveEntry() {
		data, err = readArchiveEntry(path)
	} else {
		data, err = os.ReadFile(path.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errDecode, path.Path, err)
	}

	return decodeImageBytes(data, path)
}

func decodeImageBytes(data []byte, path ImagePath) (*Frame, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errDecode, path.Path, err)
	}

	name := path.Path
	if path.IsArchiveEntry() {
		name = path.EntryPath
	}
	if isJPEGExt(name) {
		img = applyOrientation(img, readOrientation(data))
	}

	return newFrame(path, img, int64(len(data))), nil
}

// readOrientation returns the EXIF orientation tag, or 1 when absent.
func readOrientation(data []byte) int {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return 1
	}
	tag, err := x.Get(exif.Orientation)
	if err != nil {
		return 1
	}
	orientation, err := tag.Int(0)
	if err != nil {
		return 1
	}
	return orientation
}

func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return imaging.FlipH(img)
	case 3:
		return imaging.Rotate180(img)
	case 4:
		return imaging.FlipV(img)
	case 5:
		return imaging.Transpose(img)
	case 6:
		return imaging.Rotate270(img)
	case 7:
		return imaging.Transverse(img)
	case 8:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// openArchiveEntry opens an entry for reading. The returned closer releases
// both the entry and its archive.
func openArchiveEntry(path ImagePath) (io.ReadCloser, error) {
	switch ext := strings.ToLower(filepath.Ext(path.ArchivePath)); ext {
	case ".zip":
		return openZipEntry(path.ArchivePath, path.EntryPath)
	case ".rar":
		return openRarEntry(path.ArchivePath, path.EntryPath)
	case ".7z":
		return open7zEntry(path.ArchivePath, path.EntryPath)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", ext)
	}
}

func readArchiveEntry(path ImagePath) ([]byte, error) {
	rc, err := openArchiveEntry(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	return io.ReadAll(rc)
}

type entryReader struct {
	io.Reader
	closers []io.Closer
}

func (e *entryReader) Close() error {
	var errs []error
	for _, c := range e.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func openZipEntry(archivePath, entryPath string) (io.ReadCloser, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}

	for _, f := range r.File {
		if f.Name == entryPath {
			rc, err := f.Open()
			if err != nil {
				r.Close()
				return nil, err
			}
			return &entryReader{Reader: rc, closers: []io.Closer{rc, r}}, nil
		}
	}
	r.Close()
	return nil, fmt.Errorf("%w: %s in %s", errEntryMissing, entryPath, archivePath)
}

func openRarEntry(archivePath, entryPath string) (io.ReadCloser, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		f.Close()
		return nil, err
	}

	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			f.Close()
			return nil, err
		}

		if header.Name == entryPath {
			return &entryReader{Reader: r, closers: []io.Closer{f}}, nil
		}
	}
	f.Close()
	return nil, fmt.Errorf("%w: %s in %s", errEntryMissing, entryPath, archivePath)
}

func open7zEntry(archivePath, entryPath string) (io.ReadCloser, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}

	for _, f := range r.File {
		if f.Name == entryPath {
			rc, err := f.Open()
			if err != nil {
				r.Close()
				return nil, err
			}
			return &entryReader{Reader: rc, closers: []io.Closer{rc, r}}, nil
		}
	}
	r.Close()
	return nil, fmt.Errorf("%w: %s in %s", errEntryMissing, entryPath, archivePath)
}

// File collection functions

func extractImagesFromZip(archivePath string) ([]ImagePath, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var images []ImagePath
	for _, f := range r.File {
		if !f.FileInfo().IsDir() && isSupportedExt(f.Name) {
			images = append(images, entryImagePath(archivePath, f.Name))
		}
	}
	return images, nil
}

func extractImagesFromRar(archivePath string) ([]ImagePath, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}

	var images []ImagePath
	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		if !header.IsDir && isSupportedExt(header.Name) {
			images = append(images, entryImagePath(archivePath, header.Name))
		}
	}
	return images, nil
}

func extractImagesFrom7z(archivePath string) ([]ImagePath, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	var images []ImagePath
	for _, f := range r.File {
		if !f.FileInfo().IsDir() && isSupportedExt(f.Name) {
			images = append(images, entryImagePath(archivePath, f.Name))
		}
	}
	return images, nil
}

func processArchive(archivePath string) ([]ImagePath, error) {
	switch ext := strings.ToLower(filepath.Ext(archivePath)); ext {
	case ".zip":
		return extractImagesFromZip(archivePath)
	case ".rar":
		return extractImagesFromRar(archivePath)
	case ".7z":
		return extractImagesFrom7z(archivePath)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", ext)
	}
}

// collectArchive lists an archive's images in sorted order. Broken archives
// are skipped with a warning rather than aborting discovery.
func collectArchive(archivePath string, strategy SortStrategy) []ImagePath {
	images, err := processArchive(archivePath)
	if err != nil {
		slog.Warn("Skipping problematic archive",
			slog.String("path", archivePath), slog.String("error", err.Error()))
		return nil
	}
	return strategy.Sort(images)
}

// collectImages expands the command line arguments into the ordered image list.
// Directories are walked recursively, skipping skipDir (the keep directory).
// Each argument's images are sorted on their own and appended in argument order.
func collectImages(args []string, strategy SortStrategy, skipDir string) ([]ImagePath, error) {
	skipAbs := ""
	if skipDir != "" {
		if abs, err := filepath.Abs(skipDir); err == nil {
			skipAbs = abs
		}
	}

	var list []ImagePath
	for _, p := range args {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}

		if !info.IsDir() {
			switch {
			case isSupportedExt(p):
				list = append(list, fileImagePath(p))
			case isArchiveExt(p):
				list = append(list, collectArchive(p, strategy)...)
			}
			continue
		}

		var dirImages []ImagePath
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if skipAbs != "" {
					if abs, err := filepath.Abs(path); err == nil && abs == skipAbs {
						return filepath.SkipDir
					}
				}
				return nil
			}
			switch {
			case isSupportedExt(path):
				dirImages = append(dirImages, fileImagePath(path))
			case isArchiveExt(path):
				dirImages = append(dirImages, collectArchive(path, strategy)...)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		list = append(list, strategy.Sort(dirImages)...)
	}

	slog.Info("Collected images", slog.Int("count", len(list)), slog.String("sort", strategy.Name()))
	return list, nil
}
