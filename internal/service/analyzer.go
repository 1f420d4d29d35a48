package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/cloo-solutions/deckray/internal/domain"
	"github.com/cloo-solutions/deckray/internal/ingest"
	"github.com/cloo-solutions/deckray/internal/telemetry"
)

// ChatCompleter issues one request to a chat-style reasoning service and
// returns the raw textual payload. Implementations recover transport
// failures into an empty string.
type ChatCompleter interface {
	Complete(ctx context.Context, prompt, model string, maxTokens int, temperature float32) string
}

// Retriever is the capability the analyzer needs from the retrieval layer.
type Retriever interface {
	Query(ctx context.Context, text string, topK int) ([]*domain.RetrievedPassage, error)
}

const (
	defaultMaxTokens = 900
	defaultTopK      = 3
	slideWorkers     = 4
)

// Analyzer orchestrates feature extraction, prompt construction, inference
// and parsing for one slide or a whole deck, and aggregates the per-slide
// results into a presentation-level report.
//
// One Analyzer instance is shared by concurrent requests; initialization is
// a one-shot transition guarded against concurrent first use. A failed
// initialization leaves the analyzer usable: every analysis then takes its
// deterministic fallback path instead of raising.
type Analyzer struct {
	converter  ingest.Converter
	extractor  *VisualFeatureExtractor
	completer  ChatCompleter
	retriever  Retriever
	aggregator *ReportAggregator

	reasoningModel string

	initOnce sync.Once
	ready    bool
}

type AnalyzerConfig struct {
	Converter      ingest.Converter
	Extractor      *VisualFeatureExtractor
	Completer      ChatCompleter
	Retriever      Retriever
	ReasoningModel string
}

func NewAnalyzer(cfg AnalyzerConfig) *Analyzer {
	return &Analyzer{
		converter:      cfg.Converter,
		extractor:      cfg.Extractor,
		completer:      cfg.Completer,
		retriever:      cfg.Retriever,
		aggregator:     NewReportAggregator(),
		reasoningModel: cfg.ReasoningModel,
	}
}

// Initialize performs the one-time model readiness transition. Subsequent
// calls are no-ops; concurrent first calls observe exactly one transition.
func (a *Analyzer) Initialize() {
	a.initOnce.Do(func() {
		a.ready = a.completer != nil
		if !a.ready {
			log.Println("analyzer: no inference backend configured, model analyses will fall back")
		}
	})
}

// StructureOptions carries the caller-selected knobs for structure analysis.
type StructureOptions struct {
	ModelID      int
	UseRAG       bool
	UserContext  string
	IncludeFirst bool
	IncludeLast  bool
	MaxTokens    int
	Temperature  float32
}

// RAGInfo reports whether and how retrieval grounded the analysis.
type RAGInfo struct {
	Requested    bool   `json:"requested"`
	Used         bool   `json:"used"`
	PassageCount int    `json:"passage_count"`
	Detail       string `json:"detail,omitempty"`
}

// SummaryReport is a tagged result decided once at the parse boundary:
// either the model's schema-parsed output or the deterministic fallback.
// Downstream code switches on Source, never inspects the payload ad hoc.
type SummaryReport struct {
	Source   string                     `json:"source"` // "model" or "fallback"
	Parsed   map[string]interface{}     `json:"parsed,omitempty"`
	Fallback *domain.PresentationReport `json:"fallback,omitempty"`
}

// StructureResult is the boundary payload of AnalyzeStructure.
type StructureResult struct {
	Filename       string         `json:"filename"`
	GeneratedAt    time.Time      `json:"generated_at"`
	TotalSlides    int            `json:"total_slides"`
	ExcludedSlides []int          `json:"excluded_slides"`
	SummaryReport  *SummaryReport `json:"summary_report"`
	RAGInfo        *RAGInfo       `json:"rag_info"`
}

// AnalyzeStructure runs the retrieval-augmented structure assessment of a
// deck. Ingestion and unknown-model errors surface; inference and parse
// failures degrade to the deterministic fallback report.
func (a *Analyzer) AnalyzeStructure(ctx context.Context, document []byte, filename string, opts StructureOptions) (*StructureResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "analyzer.structure", telemetry.SpanAttributes{Filename: filename, Operation: "structure"})
	defer span.End()

	a.Initialize()

	model := a.reasoningModel
	if opts.ModelID != 0 {
		entry, err := domain.GetModel(opts.ModelID)
		if err != nil {
			return nil, err
		}
		model = entry.ModelName
	}

	slides, err := a.converter.Convert(document, filename)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	block := BuildSlideTextBlock(slides, opts.IncludeFirst, opts.IncludeLast)

	ragInfo := &RAGInfo{Requested: opts.UseRAG}
	var passages []*domain.RetrievedPassage
	if opts.UseRAG && opts.UserContext != "" {
		if a.retriever == nil {
			return nil, domain.ErrStoreNotInitialized
		}
		passages, err = a.retriever.Query(ctx, opts.UserContext, defaultTopK)
		if err != nil {
			if de, ok := err.(*domain.DomainError); ok && de.Code == domain.ErrCodeNotInit {
				return nil, err
			}
			// degraded retrieval grounds nothing but does not abort
			log.Printf("analyzer: retrieval degraded: %v", err)
			ragInfo.Detail = "retrieval unavailable, analysis ran ungrounded"
			passages = nil
		} else {
			ragInfo.Used = len(passages) > 0
			ragInfo.PassageCount = len(passages)
		}
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultMaxTokens
	}

	summary := a.summarizeStructure(ctx, slides, block, passages, opts, model, maxTokens)

	return &StructureResult{
		Filename:       filename,
		GeneratedAt:    time.Now().UTC(),
		TotalSlides:    len(slides),
		ExcludedSlides: block.ExcludedSlides,
		SummaryReport:  summary,
		RAGInfo:        ragInfo,
	}, nil
}

// summarizeStructure invokes the reasoning model and decides the tagged
// result at the parse boundary. The fallback is the heuristic per-slide
// analysis aggregated into a report.
func (a *Analyzer) summarizeStructure(ctx context.Context, slides []*domain.SlideUnit, block *SlideTextBlock, passages []*domain.RetrievedPassage, opts StructureOptions, model string, maxTokens int) *SummaryReport {
	if a.ready {
		prompt := BuildStructurePrompt(block, passages, opts.UserContext)
		raw := a.completer.Complete(ctx, prompt, model, maxTokens, opts.Temperature)
		if parsed, ok := ParseModelJSON(raw); ok {
			return &SummaryReport{Source: "model", Parsed: parsed}
		}
		log.Println("analyzer: structure response unparseable, using fallback report")
	}

	results := a.analyzeSlides(ctx, includedSlides(slides, block))
	return &SummaryReport{Source: "fallback", Fallback: a.aggregator.Aggregate(results)}
}

// ContentResult is the boundary payload of AnalyzeContent.
type ContentResult struct {
	Filename        string           `json:"filename"`
	GeneratedAt     time.Time        `json:"generated_at"`
	TotalSlides     int              `json:"total_slides"`
	ExcludedSlides  []int            `json:"excluded_slides"`
	ContentAnalysis *ContentAnalysis `json:"content_analysis"`
}

// ContentAnalysis carries the per-slide results and their aggregation.
type ContentAnalysis struct {
	Slides  []*domain.SlideAnalysisResult `json:"slides"`
	Summary *domain.PresentationReport    `json:"summary"`
}

// AnalyzeContent runs the heuristic per-slide content assessment of a deck.
func (a *Analyzer) AnalyzeContent(ctx context.Context, document []byte, filename string, includeFirst, includeLast bool) (*ContentResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "analyzer.content", telemetry.SpanAttributes{Filename: filename, Operation: "content"})
	defer span.End()

	a.Initialize()

	slides, err := a.converter.Convert(document, filename)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	block := BuildSlideTextBlock(slides, includeFirst, includeLast)
	results := a.analyzeSlides(ctx, includedSlides(slides, block))

	return &ContentResult{
		Filename:       filename,
		GeneratedAt:    time.Now().UTC(),
		TotalSlides:    len(slides),
		ExcludedSlides: block.ExcludedSlides,
		ContentAnalysis: &ContentAnalysis{
			Slides:  results,
			Summary: a.aggregator.Aggregate(results),
		},
	}, nil
}

// VisualResult is the boundary payload of AnalyzeVisual.
type VisualResult struct {
	Filename     string               `json:"filename"`
	GeneratedAt  time.Time            `json:"generated_at"`
	TotalSlides  int                  `json:"total_slides"`
	VisualReport *domain.VisualReport `json:"visual_report"`
}

// AnalyzeVisual extracts per-slide visual features and asks the reasoning
// model for a deck-level visual assessment. Any model or parse failure
// yields the fixed fallback visual report; a single slide's caption failure
// never aborts the deck.
func (a *Analyzer) AnalyzeVisual(ctx context.Context, document []byte, filename string) (*VisualResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "analyzer.visual", telemetry.SpanAttributes{Filename: filename, Operation: "visual"})
	defer span.End()

	a.Initialize()

	slides, err := a.converter.Convert(document, filename)
	if err != nil {
		span.SetError(err)
		return nil, err
	}

	features := a.extractFeatures(ctx, slides)

	report := domain.FallbackVisualReport()
	if a.ready {
		raw := a.completer.Complete(ctx, BuildVisualPrompt(features), a.reasoningModel, defaultMaxTokens, 0)
		var parsed domain.VisualReport
		if ParseModelJSONInto(raw, &parsed) {
			report = &parsed
		} else {
			log.Println("analyzer: visual response unparseable, using fallback report")
		}
	}

	return &VisualResult{
		Filename:     filename,
		GeneratedAt:  time.Now().UTC(),
		TotalSlides:  len(slides),
		VisualReport: report,
	}, nil
}

// analyzeSlides fans slides out to a bounded pool and reassembles results
// in original slide order. A single slide failing any sub-analysis degrades
// that slide to neutral defaults rather than aborting the deck.
func (a *Analyzer) analyzeSlides(ctx context.Context, slides []*domain.SlideUnit) []*domain.SlideAnalysisResult {
	results := make([]*domain.SlideAnalysisResult, len(slides))

	var wg sync.WaitGroup
	sem := make(chan struct{}, slideWorkers)
	for i, slide := range slides {
		wg.Add(1)
		go func(i int, slide *domain.SlideUnit) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = a.analyzeOneSlide(ctx, slide)
		}(i, slide)
	}
	wg.Wait()

	return results
}

func (a *Analyzer) analyzeOneSlide(ctx context.Context, slide *domain.SlideUnit) *domain.SlideAnalysisResult {
	textAnalysis, textScore := analyzeSlideText(slide)

	var features *domain.VisualFeatures
	if a.extractor != nil {
		features = a.extractor.Extract(ctx, slide)
	}
	visualAnalysis, visualScore := analyzeSlideVisual(features)

	return &domain.SlideAnalysisResult{
		SlideNumber:    slide.SlideNumber,
		TextAnalysis:   textAnalysis,
		VisualAnalysis: visualAnalysis,
		OverallScore:   round1((textScore + visualScore) / 2),
	}
}

// extractFeatures runs visual feature extraction for every slide through
// the bounded pool, preserving slide order.
func (a *Analyzer) extractFeatures(ctx context.Context, slides []*domain.SlideUnit) []*domain.VisualFeatures {
	features := make([]*domain.VisualFeatures, len(slides))

	var wg sync.WaitGroup
	sem := make(chan struct{}, slideWorkers)
	for i, slide := range slides {
		wg.Add(1)
		go func(i int, slide *domain.SlideUnit) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if a.extractor != nil {
				features[i] = a.extractor.Extract(ctx, slide)
			} else {
				features[i] = &domain.VisualFeatures{SlideNumber: slide.SlideNumber}
			}
		}(i, slide)
	}
	wg.Wait()

	return features
}

// includedSlides filters the deck down to the slides that made it into the
// composite block.
func includedSlides(slides []*domain.SlideUnit, block *SlideTextBlock) []*domain.SlideUnit {
	excluded := make(map[int]bool, len(block.ExcludedSlides))
	for _, n := range block.ExcludedSlides {
		excluded[n] = true
	}

	out := make([]*domain.SlideUnit, 0, len(slides))
	for _, s := range slides {
		if !excluded[s.SlideNumber] {
			out = append(out, s)
		}
	}
	return out
}
