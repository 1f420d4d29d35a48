package service

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/cloo-solutions/deckray/internal/domain"
)

// visualRubric is the fixed instruction for the visual-aggregate prompt.
// The wording is deliberately constant across calls: a stable rubric
// maximizes schema compliance even though model output itself is not
// deterministic. Do not reword casually.
const visualRubric = `You are an expert in presentation design.
You are given the visual characteristics of every slide:
- caption (a short description of the rendered slide)
- text_density (an estimate of the amount of text)
- text_coverage (the fraction of the slide occupied by text)

Important: analyze only the visual composition. Do not analyze the meaning of the text.

Using the per-slide data, determine:
- which slides carry too much text
- which slides carry too many images
- which slides lack visual structure
- where proportions, contrast, or balance are poor
- where visual problems repeat across slides

Mandatory requirement:
INCLUDE SLIDE NUMBERS IN EVERY ITEM of weaknesses and recommendations.
For example: "Slides 3, 5: content overload".
Also list the visual strengths of the presentation (2-3 items).
Do not write abstract recommendations.

Return strictly one JSON object:
{
  "visual_strengths": [string, ...],
  "visual_weaknesses": [string, ...],
  "recommendations": [string, ...],
  "design_style": string,
  "visual_quality_score": int,
  "final_verdict": string
}

Here is the data for all slides:
`

// BuildVisualPrompt serializes the ordered per-slide features into the
// fixed visual rubric.
func BuildVisualPrompt(features []*domain.VisualFeatures) string {
	data, err := json.Marshal(features)
	if err != nil {
		data = []byte("[]")
	}
	return visualRubric + string(data)
}

// SlideTextBlock is the composite text block of a deck together with the
// slide numbers excluded from it.
type SlideTextBlock struct {
	Text           string
	IncludedSlides int
	ExcludedSlides []int
}

// BuildSlideTextBlock concatenates per-slide text into one block, optionally
// excluding the first and/or last slide. Excluded slide numbers are always
// reported back, never silently dropped.
func BuildSlideTextBlock(slides []*domain.SlideUnit, includeFirst, includeLast bool) *SlideTextBlock {
	block := &SlideTextBlock{ExcludedSlides: []int{}}
	if len(slides) == 0 {
		return block
	}

	var sb strings.Builder
	for i, slide := range slides {
		excluded := (i == 0 && !includeFirst) || (i == len(slides)-1 && !includeLast)
		if excluded {
			block.ExcludedSlides = append(block.ExcludedSlides, slide.SlideNumber)
			continue
		}
		fmt.Fprintf(&sb, "Slide %d:\n%s\n\n", slide.SlideNumber, slide.Text)
		block.IncludedSlides++
	}

	sort.Ints(block.ExcludedSlides)
	block.Text = strings.TrimSpace(sb.String())
	return block
}

// BuildStructurePrompt assembles the instruction for structure analysis.
// When retrieved passages are present they precede the slide text block,
// grounding the model in the rule corpus.
func BuildStructurePrompt(block *SlideTextBlock, passages []*domain.RetrievedPassage, userContext string) string {
	var sb strings.Builder

	sb.WriteString("You are an expert presentation reviewer. Assess the structure and clarity of the presentation below.\n\n")

	if len(passages) > 0 {
		sb.WriteString("Relevant presentation guidelines:\n")
		for _, p := range passages {
			sb.WriteString("- ")
			sb.WriteString(p.Text)
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}

	if userContext != "" {
		sb.WriteString("Context from the author: ")
		sb.WriteString(userContext)
		sb.WriteString("\n\n")
	}

	sb.WriteString("Return strictly one JSON object:\n")
	sb.WriteString(`{
  "presentation_score": number,
  "key_strengths": [string, ...],
  "critical_issues": [string, ...],
  "priority_recommendations": [string, ...],
  "target_audience": string,
  "overall_verdict": string
}`)
	sb.WriteString("\n\nPresentation text:\n")
	sb.WriteString(block.Text)

	return sb.String()
}
