package service

import (
	"context"
	"image"
	"math"

	"github.com/cloo-solutions/deckray/internal/domain"
)

// Captioner produces a short natural-language description of an image.
// Implementations must degrade to an empty string on failure.
type Captioner interface {
	Caption(ctx context.Context, img image.Image, model string) string
}

const (
	// darkThreshold is the exclusive upper bound of the luminance buckets
	// counted as "dark". Fixed for reproducibility of the density heuristic.
	darkThreshold = 70
	// coverageFactor scales density into an estimated coverage fraction
	coverageFactor = 1.8
)

// VisualFeatureExtractor derives a caption and quantitative density and
// coverage measurements from a slide image. Pure with respect to the image;
// captioning is the only external call and never fails the extraction.
type VisualFeatureExtractor struct {
	captioner    Captioner
	captionModel string
}

func NewVisualFeatureExtractor(captioner Captioner, captionModel string) *VisualFeatureExtractor {
	return &VisualFeatureExtractor{captioner: captioner, captionModel: captionModel}
}

// Extract computes the VisualFeatures for one slide. A nil image yields
// zero measurements and an empty caption.
func (e *VisualFeatureExtractor) Extract(ctx context.Context, slide *domain.SlideUnit) *domain.VisualFeatures {
	features := &domain.VisualFeatures{SlideNumber: slide.SlideNumber}
	if slide.Image == nil {
		return features
	}

	if e.captioner != nil {
		features.Caption = e.captioner.Caption(ctx, slide.Image, e.captionModel)
	}

	density, coverage := estimateTextDensity(slide.Image)
	features.TextDensity = density
	features.TextCoverage = coverage
	return features
}

// estimateTextDensity builds a 256-bucket luminance histogram and treats the
// fraction of dark pixels as a proxy for text amount. This is a heuristic,
// not a text detector; the thresholds are part of the contract.
func estimateTextDensity(img image.Image) (density, coverage float64) {
	bounds := img.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0, 0
	}

	var hist [256]int
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			// ITU-R BT.601 luma, components scaled from 16 to 8 bits
			luma := (299*(r>>8) + 587*(g>>8) + 114*(b>>8)) / 1000
			hist[luma]++
		}
	}

	dark := 0
	for i := 0; i < darkThreshold; i++ {
		dark += hist[i]
	}

	density = round4(float64(dark) / float64(total))
	coverage = round4(math.Min(1.0, density*coverageFactor))
	return density, coverage
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
