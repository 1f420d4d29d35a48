package service

import (
	"context"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloo-solutions/deckray/internal/domain"
)

type stubCaptioner struct {
	caption string
	calls   int
}

func (s *stubCaptioner) Caption(_ context.Context, _ image.Image, _ string) string {
	s.calls++
	return s.caption
}

func uniformImage(c color.Color, w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestExtract_NilImage(t *testing.T) {
	captioner := &stubCaptioner{caption: "should not be called"}
	extractor := NewVisualFeatureExtractor(captioner, "gpt-4o-mini")

	features := extractor.Extract(context.Background(), &domain.SlideUnit{SlideNumber: 3})

	assert.Equal(t, 3, features.SlideNumber)
	assert.Empty(t, features.Caption)
	assert.Equal(t, 0.0, features.TextDensity)
	assert.Equal(t, 0.0, features.TextCoverage)
	assert.Equal(t, 0, captioner.calls)
}

func TestExtract_BlackImage(t *testing.T) {
	extractor := NewVisualFeatureExtractor(&stubCaptioner{caption: "a dark slide"}, "gpt-4o-mini")
	slide := &domain.SlideUnit{SlideNumber: 1, Image: uniformImage(color.Black, 8, 8)}

	features := extractor.Extract(context.Background(), slide)

	assert.Equal(t, 1.0, features.TextDensity)
	// coverage is clamped at 1.0 even though density*1.8 exceeds it
	assert.Equal(t, 1.0, features.TextCoverage)
	assert.Equal(t, "a dark slide", features.Caption)
}

func TestExtract_WhiteImage(t *testing.T) {
	extractor := NewVisualFeatureExtractor(&stubCaptioner{}, "gpt-4o-mini")
	slide := &domain.SlideUnit{SlideNumber: 1, Image: uniformImage(color.White, 8, 8)}

	features := extractor.Extract(context.Background(), slide)

	assert.Equal(t, 0.0, features.TextDensity)
	assert.Equal(t, 0.0, features.TextCoverage)
}

func TestExtract_MixedImage(t *testing.T) {
	// left half black, right half white: density 0.5, coverage 0.9
	img := image.NewRGBA(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			if x < 5 {
				img.Set(x, y, color.Black)
			} else {
				img.Set(x, y, color.White)
			}
		}
	}
	extractor := NewVisualFeatureExtractor(&stubCaptioner{}, "gpt-4o-mini")

	features := extractor.Extract(context.Background(), &domain.SlideUnit{SlideNumber: 1, Image: img})

	assert.Equal(t, 0.5, features.TextDensity)
	assert.Equal(t, 0.9, features.TextCoverage)
}

func TestExtract_NilCaptioner(t *testing.T) {
	extractor := NewVisualFeatureExtractor(nil, "")
	slide := &domain.SlideUnit{SlideNumber: 1, Image: uniformImage(color.White, 4, 4)}

	features := extractor.Extract(context.Background(), slide)

	assert.Empty(t, features.Caption)
}

func TestEstimateTextDensity_EmptyBounds(t *testing.T) {
	density, coverage := estimateTextDensity(image.NewRGBA(image.Rect(0, 0, 0, 0)))

	assert.Equal(t, 0.0, density)
	assert.Equal(t, 0.0, coverage)
}
