//go:build e2e

package e2e

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestE2E_Rules tests seeding and the retrieval store over HTTP
func TestE2E_Rules(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("add documents", func(t *testing.T) {
		resp, err := env.PostJSON("/rules/documents", map[string]interface{}{
			"documents": []string{"One idea per slide.", "Keep text under thirty words."},
		})
		require.NoError(t, err)

		var result struct {
			Status string `json:"status"`
			Added  int    `json:"added"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))
		assert.Equal(t, "ok", result.Status)
		assert.Equal(t, 2, result.Added)
	})

	t.Run("add documents with explicit ids is idempotent", func(t *testing.T) {
		body := map[string]interface{}{
			"documents": []string{"End with a clear call to action."},
			"ids":       []int64{100},
		}

		_, err := env.PostJSON("/rules/documents", body)
		require.NoError(t, err)
		_, err = env.PostJSON("/rules/documents", body)
		require.NoError(t, err)

		var count int64
		require.NoError(t, env.Pool.QueryRow(env.Ctx,
			"SELECT COUNT(*) FROM presentation_rules WHERE id = 100").Scan(&count))
		assert.Equal(t, int64(1), count)
	})

	t.Run("empty documents rejected", func(t *testing.T) {
		_, err := env.PostJSON("/rules/documents", map[string]interface{}{"documents": []string{}})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 400")
	})
}

// TestE2E_Analyze tests the analysis endpoints over HTTP
func TestE2E_Analyze(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("content analysis", func(t *testing.T) {
		resp, err := env.PostUpload("/analyze/content", "deck.pdf", []byte("fixture"), nil)
		require.NoError(t, err)

		var result struct {
			Filename        string `json:"filename"`
			TotalSlides     int    `json:"total_slides"`
			ExcludedSlides  []int  `json:"excluded_slides"`
			ContentAnalysis struct {
				Slides []struct {
					SlideNumber  int     `json:"slide_number"`
					OverallScore float64 `json:"overall_score"`
				} `json:"slides"`
				Summary struct {
					PresentationScore   float64 `json:"presentation_score"`
					TotalSlidesAnalyzed int     `json:"total_slides_analyzed"`
				} `json:"summary"`
			} `json:"content_analysis"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))

		assert.Equal(t, "deck.pdf", result.Filename)
		assert.Equal(t, 3, result.TotalSlides)
		assert.Empty(t, result.ExcludedSlides)
		require.Len(t, result.ContentAnalysis.Slides, 3)
		assert.Equal(t, 1, result.ContentAnalysis.Slides[0].SlideNumber)
		assert.Equal(t, 3, result.ContentAnalysis.Summary.TotalSlidesAnalyzed)
		assert.Greater(t, result.ContentAnalysis.Summary.PresentationScore, 0.0)
	})

	t.Run("content analysis excluding boundary slides", func(t *testing.T) {
		resp, err := env.PostUpload("/analyze/content", "deck.pdf", []byte("fixture"), map[string]string{
			"include_first_slide": "false",
			"include_last_slide":  "false",
		})
		require.NoError(t, err)

		var result struct {
			ExcludedSlides  []int `json:"excluded_slides"`
			ContentAnalysis struct {
				Summary struct {
					TotalSlidesAnalyzed int `json:"total_slides_analyzed"`
				} `json:"summary"`
			} `json:"content_analysis"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))

		assert.Equal(t, []int{1, 3}, result.ExcludedSlides)
		assert.Equal(t, 1, result.ContentAnalysis.Summary.TotalSlidesAnalyzed)
	})

	t.Run("structure analysis falls back without inference backend", func(t *testing.T) {
		resp, err := env.PostUpload("/analyze/structure", "deck.pdf", []byte("fixture"), nil)
		require.NoError(t, err)

		var result struct {
			SummaryReport struct {
				Source string `json:"source"`
			} `json:"summary_report"`
			RAGInfo struct {
				Requested bool `json:"requested"`
			} `json:"rag_info"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))

		assert.Equal(t, "fallback", result.SummaryReport.Source)
		assert.False(t, result.RAGInfo.Requested)
	})

	t.Run("visual analysis returns fallback report", func(t *testing.T) {
		resp, err := env.PostUpload("/analyze/visual", "deck.pdf", []byte("fixture"), nil)
		require.NoError(t, err)

		var result struct {
			TotalSlides  int `json:"total_slides"`
			VisualReport struct {
				FinalVerdict string `json:"final_verdict"`
			} `json:"visual_report"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &result))

		assert.Equal(t, 3, result.TotalSlides)
		assert.Equal(t, "Fallback", result.VisualReport.FinalVerdict)
	})

	t.Run("unknown model id", func(t *testing.T) {
		_, err := env.PostUpload("/analyze/structure", "deck.pdf", []byte("fixture"), map[string]string{
			"model_id": "99",
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "HTTP 404")
	})
}

// TestE2E_Models tests the model catalog endpoints
func TestE2E_Models(t *testing.T) {
	env := SetupE2EEnv(t)
	defer env.Cleanup()

	t.Run("list models", func(t *testing.T) {
		resp, err := env.Get("/models/")
		require.NoError(t, err)

		var models []struct {
			ID        int    `json:"id"`
			ModelName string `json:"model_name"`
			DevLevel  string `json:"dev_level"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &models))
		require.Len(t, models, 4)
		assert.Equal(t, "gpt-4o-mini", models[0].ModelName)
	})

	t.Run("get model", func(t *testing.T) {
		resp, err := env.Get("/models/3")
		require.NoError(t, err)

		var model struct {
			ModelName string `json:"model_name"`
			DevLevel  string `json:"dev_level"`
		}
		require.NoError(t, json.Unmarshal(resp.Data, &model))
		assert.Equal(t, "gpt-4.1", model.ModelName)
		assert.Equal(t, "preview", model.DevLevel)
	})
}
