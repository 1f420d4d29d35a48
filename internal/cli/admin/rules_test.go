package admin

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitParagraphs(t *testing.T) {
	text := "One idea per slide.\n\nKeep text under 30 words.\nUse bullets.\n\n\n\nEnd with a call to action.\n"

	docs := splitParagraphs(text)

	assert.Equal(t, []string{
		"One idea per slide.",
		"Keep text under 30 words.\nUse bullets.",
		"End with a call to action.",
	}, docs)
}

func TestSplitParagraphs_WindowsLineEndings(t *testing.T) {
	docs := splitParagraphs("first rule\r\n\r\nsecond rule")

	assert.Equal(t, []string{"first rule", "second rule"}, docs)
}

func TestSplitParagraphs_Empty(t *testing.T) {
	assert.Empty(t, splitParagraphs("   \n\n  \n"))
}
