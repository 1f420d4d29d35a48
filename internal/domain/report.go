package domain

// SlideAnalysisResult combines the text and visual sub-analyses of a single
// slide. OverallScore is the mean of the two sub-scores rounded to one
// decimal; an unavailable sub-analysis contributes the neutral default of 5.
type SlideAnalysisResult struct {
	SlideNumber    int                    `json:"slide_number"`
	TextAnalysis   map[string]interface{} `json:"text_analysis"`
	VisualAnalysis map[string]interface{} `json:"visual_analysis"`
	OverallScore   float64                `json:"overall_score"`
}

// PresentationReport is the deck-level report produced by aggregating
// per-slide results. CriticalIssues and PriorityRecommendations never exceed
// three entries and never contain strings of length five or less.
type PresentationReport struct {
	PresentationScore       float64         `json:"presentation_score"`
	TotalSlidesAnalyzed     int             `json:"total_slides_analyzed"`
	KeyStrengths            []string        `json:"key_strengths"`
	CriticalIssues          []string        `json:"critical_issues"`
	PriorityRecommendations []string        `json:"priority_recommendations"`
	TargetAudience          string          `json:"target_audience"`
	OverallVerdict          string          `json:"overall_verdict"`
	Statistics              *DeckStatistics `json:"statistics,omitempty"`
}

// DeckStatistics carries quantitative measurements across the analyzed
// slides. Nil when no slides were analyzed.
type DeckStatistics struct {
	AverageScore      float64 `json:"average_score"`
	TotalWords        int     `json:"total_words"`
	WordsPerSlide     float64 `json:"words_per_slide"`
	QualityAssessment string  `json:"quality_assessment"`
}

// VisualReport matches the fixed schema the visual-aggregate prompt asks the
// model to return.
type VisualReport struct {
	VisualStrengths    []string `json:"visual_strengths"`
	VisualWeaknesses   []string `json:"visual_weaknesses"`
	Recommendations    []string `json:"recommendations"`
	DesignStyle        string   `json:"design_style"`
	VisualQualityScore int      `json:"visual_quality_score"`
	FinalVerdict       string   `json:"final_verdict"`
}

// FallbackVisualReport is returned whenever model invocation or output
// parsing fails. It is a fixed, non-model-generated structure.
func FallbackVisualReport() *VisualReport {
	return &VisualReport{
		VisualStrengths:    []string{"Analysis could not be performed"},
		VisualWeaknesses:   []string{"Technical failure"},
		Recommendations:    []string{"Please try again later"},
		DesignStyle:        "undetermined",
		VisualQualityScore: 5,
		FinalVerdict:       "Fallback",
	}
}

// EmptyPresentationReport is the fixed report returned for a deck with zero
// analyzed slides.
func EmptyPresentationReport() *PresentationReport {
	return &PresentationReport{
		PresentationScore:       0,
		TotalSlidesAnalyzed:     0,
		KeyStrengths:            []string{},
		CriticalIssues:          []string{"No slides were analyzed"},
		PriorityRecommendations: []string{"Provide a non-empty presentation"},
		TargetAudience:          "Unknown",
		OverallVerdict:          "No content to assess",
	}
}
