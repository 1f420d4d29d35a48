package domain

import (
	"fmt"
	"image"
	"strings"
)

// SlideUnit is the canonical per-slide record produced by ingestion.
// Instances are immutable once created and live only for the duration
// of a single analysis request.
type SlideUnit struct {
	SlideNumber int
	Text        string
	WordCount   int
	Image       image.Image // nil when no rendering backend is available
}

// NewSlideUnit creates a SlideUnit, deriving WordCount from the text.
func NewSlideUnit(slideNumber int, text string, img image.Image) *SlideUnit {
	return &SlideUnit{
		SlideNumber: slideNumber,
		Text:        text,
		WordCount:   len(strings.Fields(text)),
		Image:       img,
	}
}

// ValidateSlideUnit validates a SlideUnit instance
func ValidateSlideUnit(s *SlideUnit) error {
	if s == nil {
		return fmt.Errorf("slide unit cannot be nil")
	}
	if s.SlideNumber < 1 {
		return fmt.Errorf("slide number must be positive, got %d", s.SlideNumber)
	}
	if s.WordCount < 0 {
		return fmt.Errorf("word count cannot be negative")
	}
	return nil
}

// ValidateSlideOrder checks that slide numbers are unique and strictly increasing.
func ValidateSlideOrder(slides []*SlideUnit) error {
	prev := 0
	for _, s := range slides {
		if err := ValidateSlideUnit(s); err != nil {
			return err
		}
		if s.SlideNumber <= prev {
			return fmt.Errorf("slide numbers must be strictly increasing, got %d after %d", s.SlideNumber, prev)
		}
		prev = s.SlideNumber
	}
	return nil
}

// VisualFeatures holds the per-slide measurements derived from a rendered
// slide image. Caption may be empty when captioning failed; the density
// figures are a deterministic heuristic, not a true text detector.
type VisualFeatures struct {
	SlideNumber  int     `json:"slide_number"`
	Caption      string  `json:"caption"`
	TextDensity  float64 `json:"text_density"`
	TextCoverage float64 `json:"text_coverage"`
}
