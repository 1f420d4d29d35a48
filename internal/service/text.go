package service

import (
	"fmt"
	"strings"

	"github.com/cloo-solutions/deckray/internal/domain"
)

const (
	// neutralScore is the default sub-score when an analysis is unavailable
	neutralScore = 5.0

	denseSlideWords  = 120
	sparseSlideWords = 15
	longSentenceAvg  = 25
)

// analyzeSlideText scores clarity and structure of one slide's text with a
// deterministic heuristic. It backs the content analysis endpoint and the
// fallback path when LLM output cannot be parsed.
func analyzeSlideText(slide *domain.SlideUnit) (map[string]interface{}, float64) {
	issues := []string{}
	recommendations := []string{}
	score := 7.0

	switch {
	case slide.WordCount == 0:
		score = 3.0
		issues = append(issues, fmt.Sprintf("Slide %d has no readable text", slide.SlideNumber))
		recommendations = append(recommendations, fmt.Sprintf("Slide %d: add a headline or key message", slide.SlideNumber))
	case slide.WordCount > denseSlideWords:
		score = 4.0
		issues = append(issues, fmt.Sprintf("Slide %d is overloaded with text (%d words)", slide.SlideNumber, slide.WordCount))
		recommendations = append(recommendations, fmt.Sprintf("Slide %d: split the content across slides or cut to key points", slide.SlideNumber))
	case slide.WordCount < sparseSlideWords:
		score = 6.0
		recommendations = append(recommendations, fmt.Sprintf("Slide %d: consider a supporting point or two", slide.SlideNumber))
	}

	if avg := averageSentenceLength(slide.Text); avg > longSentenceAvg {
		score -= 1
		issues = append(issues, fmt.Sprintf("Slide %d uses long sentences, hard to scan", slide.SlideNumber))
		recommendations = append(recommendations, fmt.Sprintf("Slide %d: shorten sentences into bullet points", slide.SlideNumber))
	}
	if score < 1 {
		score = 1
	}

	return map[string]interface{}{
		"score":           score,
		"word_count":      slide.WordCount,
		"clarity":         clarityLabel(score),
		"issues":          issues,
		"recommendations": recommendations,
	}, score
}

// analyzeSlideVisual turns the extracted features into a scored visual
// sub-analysis. Missing features degrade to the neutral default.
func analyzeSlideVisual(features *domain.VisualFeatures) (map[string]interface{}, float64) {
	if features == nil {
		return map[string]interface{}{"score": neutralScore}, neutralScore
	}

	issues := []string{}
	recommendations := []string{}
	score := 7.0

	if features.TextCoverage > 0.5 {
		score = 4.0
		issues = append(issues, fmt.Sprintf("Slide %d: text covers most of the slide", features.SlideNumber))
		recommendations = append(recommendations, fmt.Sprintf("Slide %d: free up whitespace, move detail to notes", features.SlideNumber))
	} else if features.TextDensity == 0 && features.Caption == "" {
		// no rendering or captioning available for this slide
		score = neutralScore
	}

	return map[string]interface{}{
		"score":           score,
		"caption":         features.Caption,
		"text_density":    features.TextDensity,
		"text_coverage":   features.TextCoverage,
		"issues":          issues,
		"recommendations": recommendations,
	}, score
}

func averageSentenceLength(text string) float64 {
	words := len(strings.Fields(text))
	if words == 0 {
		return 0
	}
	sentences := 0
	for _, r := range text {
		if r == '.' || r == '!' || r == '?' {
			sentences++
		}
	}
	if sentences == 0 {
		sentences = 1
	}
	return float64(words) / float64(sentences)
}

func clarityLabel(score float64) string {
	switch {
	case score >= 7:
		return "clear"
	case score >= 5:
		return "acceptable"
	default:
		return "hard to follow"
	}
}
