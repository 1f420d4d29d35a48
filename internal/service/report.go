package service

import (
	"math"

	"github.com/samber/lo"

	"github.com/cloo-solutions/deckray/internal/domain"
)

const (
	// minIssueLength filters out noise strings from issue and
	// recommendation lists; anything this short is discarded
	minIssueLength = 5
	// maxReportedItems caps the issue and recommendation lists
	maxReportedItems = 3

	noIssuesPlaceholder          = "No significant issues found"
	noRecommendationsPlaceholder = "The presentation is in good shape"
)

// ReportAggregator combines per-slide analyses into a deck-level report.
type ReportAggregator struct{}

func NewReportAggregator() *ReportAggregator {
	return &ReportAggregator{}
}

// Aggregate builds the PresentationReport. Zero slides yields the fixed
// empty report rather than dividing by zero.
func (a *ReportAggregator) Aggregate(results []*domain.SlideAnalysisResult) *domain.PresentationReport {
	if len(results) == 0 {
		return domain.EmptyPresentationReport()
	}

	var sum float64
	for _, r := range results {
		sum += r.OverallScore
	}
	score := round1(sum / float64(len(results)))

	issues := collectStrings(results, "issues")
	recommendations := collectStrings(results, "recommendations")

	return &domain.PresentationReport{
		PresentationScore:       score,
		TotalSlidesAnalyzed:     len(results),
		KeyStrengths:            strengthsForScore(score),
		CriticalIssues:          capItems(issues, noIssuesPlaceholder),
		PriorityRecommendations: capItems(recommendations, noRecommendationsPlaceholder),
		TargetAudience:          audienceForScore(score),
		OverallVerdict:          verdictForScore(score),
		Statistics:              deckStatistics(results, score),
	}
}

// deckStatistics derives the quantitative deck summary from the per-slide
// word counts already measured during text analysis.
func deckStatistics(results []*domain.SlideAnalysisResult, score float64) *domain.DeckStatistics {
	totalWords := 0
	for _, r := range results {
		totalWords += slideWordCount(r.TextAnalysis)
	}

	return &domain.DeckStatistics{
		AverageScore:      score,
		TotalWords:        totalWords,
		WordsPerSlide:     round1(float64(totalWords) / float64(len(results))),
		QualityAssessment: qualityForScore(score),
	}
}

// slideWordCount reads the word_count field tolerant of both the in-process
// int and the float64 a JSON round trip produces.
func slideWordCount(m map[string]interface{}) int {
	switch v := m["word_count"].(type) {
	case int:
		return v
	case float64:
		return int(v)
	}
	return 0
}

// collectStrings gathers the named string-list field from every slide's
// text and visual analyses, preserving first-seen order.
func collectStrings(results []*domain.SlideAnalysisResult, key string) []string {
	var all []string
	for _, r := range results {
		all = append(all, stringList(r.TextAnalysis, key)...)
		all = append(all, stringList(r.VisualAnalysis, key)...)
	}
	return all
}

func stringList(m map[string]interface{}, key string) []string {
	if m == nil {
		return nil
	}
	switch v := m[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// capItems deduplicates in first-seen order, drops noise strings, and caps
// the list. An empty result is replaced by the fixed placeholder.
func capItems(items []string, placeholder string) []string {
	deduped := lo.Uniq(items)
	filtered := lo.Filter(deduped, func(s string, _ int) bool {
		return len(s) > minIssueLength
	})
	if len(filtered) > maxReportedItems {
		filtered = filtered[:maxReportedItems]
	}
	if len(filtered) == 0 {
		return []string{placeholder}
	}
	return filtered
}

// strengthsForScore maps the deck score to fixed strength statements.
// Thresholds 7 and 5 are policy constants.
func strengthsForScore(score float64) []string {
	switch {
	case score >= 7:
		return []string{"Clear and well-structured content", "Good balance of text and visuals"}
	case score >= 5:
		return []string{"Covers the core message", "Consistent slide structure"}
	default:
		return []string{"Has a foundation to build on"}
	}
}

// audienceForScore and verdictForScore use fixed 8/6/4 bands.
func audienceForScore(score float64) string {
	switch {
	case score >= 8:
		return "Ready for senior and external audiences"
	case score >= 6:
		return "Suitable for a general professional audience"
	case score >= 4:
		return "Best suited for an internal working session"
	default:
		return "Needs rework before presenting to any audience"
	}
}

// qualityForScore labels overall quality on the same 8/6/4 bands.
func qualityForScore(score float64) string {
	switch {
	case score >= 8:
		return "excellent"
	case score >= 6:
		return "good"
	case score >= 4:
		return "satisfactory"
	default:
		return "needs improvement"
	}
}

func verdictForScore(score float64) string {
	switch {
	case score >= 8:
		return "Excellent presentation"
	case score >= 6:
		return "Good presentation"
	case score >= 4:
		return "Satisfactory, with room for improvement"
	default:
		return "Requires substantial improvement"
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
