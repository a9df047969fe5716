package main

import (
	"errors"
	"log/slog"
	"slices"
)

// Direction of a step through the image set.
type Direction int

const (
	Forward Direction = iota
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// ImageSet is the ordered list of images being browsed plus the cursor.
// The list only ever shrinks, one keep at a time. While it is non-empty the
// cursor is always a valid index; once empty every operation is a no-op.
type ImageSet struct {
	paths []ImagePath
	index int
}

func NewImageSet(paths []ImagePath) *ImageSet {
	return &ImageSet{paths: slices.Clone(paths)}
}

func (s *ImageSet) Len() int { return len(s.paths) }

func (s *ImageSet) Empty() bool { return len(s.paths) == 0 }

// Index returns the cursor. It is meaningless when the set is empty.
func (s *ImageSet) Index() int { return s.index }

// Paths returns a copy of the remaining paths in display order.
func (s *ImageSet) Paths() []ImagePath {
	return slices.Clone(s.paths)
}

// Current returns the image under the cursor.
func (s *ImageSet) Current() (ImagePath, bool) {
	if s.Empty() {
		return ImagePath{}, false
	}
	return s.paths[s.index], true
}

// Step moves the cursor by magnitude and reports whether it moved.
// Forward steps that would run past the end are rejected outright rather
// than clamped. Backward steps larger than the cursor are rejected too.
func (s *ImageSet) Step(dir Direction, magnitude int) bool {
	if magnitude <= 0 || s.Empty() {
		return false
	}

	switch dir {
	case Forward:
		if len(s.paths) < 2 || s.index >= len(s.paths)-magnitude {
			return false
		}
		s.index += magnitude
	case Backward:
		if s.index < magnitude {
			return false
		}
		s.index -= magnitude
	default:
		return false
	}
	return true
}

// KeepResult describes a completed keep.
type KeepResult struct {
	Kept        bool
	Path        ImagePath
	Destination string
}

// Keep relocates the current image into k and removes it from the set.
// The set is only modified after the file has been relocated, so a failed
// keep leaves both the list and the file where they were.
func (s *ImageSet) Keep(k *KeepDir) (KeepResult, error) {
	current, ok := s.Current()
	if !ok {
		return KeepResult{}, nil
	}

	if err := k.Ensure(); err != nil {
		return KeepResult{}, errors.Join(err, errKeep)
	}

	dest, err := k.Relocate(current)
	if err != nil {
		return KeepResult{}, errors.Join(err, errKeep)
	}

	s.paths = slices.Delete(s.paths, s.index, s.index+1)
	if s.index == len(s.paths) && len(s.paths) > 0 {
		s.index--
	}
	if len(s.paths) == 0 {
		s.index = 0
	}

	slog.Info("Kept image", slog.String("path", current.Path),
		slog.String("destination", dest), slog.Int("remaining", len(s.paths)))

	return KeepResult{Kept: true, Path: current, Destination: dest}, nil
}
