package ingest

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cloo-solutions/deckray/internal/domain"
)

func TestConvert_EmptyInput(t *testing.T) {
	converter := NewPDFConverter("")

	_, err := converter.Convert(nil, "deck.pdf")
	assert.ErrorIs(t, err, domain.ErrUnreadableInput)
}

func TestConvert_RejectsNonPDF(t *testing.T) {
	converter := NewPDFConverter("")

	cases := map[string][]byte{
		"plain text":  []byte("just some text, definitely not a pdf"),
		"png magic":   {0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A},
		"html":        []byte("<!DOCTYPE html><html></html>"),
		"renamed zip": {'P', 'K', 0x03, 0x04, 0, 0, 0, 0},
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := converter.Convert(content, "deck.pdf")
			assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)
		})
	}
}

func TestConvert_TruncatedPDF(t *testing.T) {
	converter := NewPDFConverter("")

	// correct magic but no document body
	_, err := converter.Convert([]byte("%PDF-1.7\n"), "deck.pdf")
	assert.Error(t, err)
}

func TestRenderPages_DisabledWithoutBinary(t *testing.T) {
	converter := NewPDFConverter("")

	assert.Nil(t, converter.renderPages([]byte("%PDF-1.7"), 3))
}

func TestRenderPages_MissingBinary(t *testing.T) {
	converter := NewPDFConverter("definitely-not-a-real-binary-name")

	assert.Nil(t, converter.renderPages([]byte("%PDF-1.7"), 3))
}
