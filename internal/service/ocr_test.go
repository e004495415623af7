package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubAnnotator struct {
	fragments []TextFragment
	err       error
}

func (s *stubAnnotator) DetectTexts(ctx context.Context, image []byte) ([]TextFragment, error) {
	return s.fragments, s.err
}

func TestExtractTextFiltersByConfidence(t *testing.T) {
	svc := &OCRService{annotator: &stubAnnotator{fragments: []TextFragment{
		{Text: "2x", Confidence: 0.5},
		{Text: "noise", Confidence: 0.2},
		{Text: "=10", Confidence: 0.9},
	}}}

	got := svc.ExtractText(context.Background(), []byte("img"))
	assert.Equal(t, "2x =10", got)
}

func TestExtractTextNormalizesResult(t *testing.T) {
	svc := &OCRService{annotator: &stubAnnotator{fragments: []TextFragment{
		{Text: "X²", Confidence: 0.8},
		{Text: "×", Confidence: 0.7},
		{Text: "4", Confidence: 0.9},
	}}}

	got := svc.ExtractText(context.Background(), []byte("img"))
	assert.Equal(t, "x^2 * 4", got)
}

func TestExtractTextUnavailable(t *testing.T) {
	svc := &OCRService{}

	assert.False(t, svc.Available())
	assert.Equal(t, OCRUnavailableText, svc.ExtractText(context.Background(), []byte("img")))
}

func TestExtractTextNoDetections(t *testing.T) {
	svc := &OCRService{annotator: &stubAnnotator{}}

	assert.Equal(t, OCRNoTextFound, svc.ExtractText(context.Background(), []byte("img")))
}

func TestExtractTextNothingConfident(t *testing.T) {
	svc := &OCRService{annotator: &stubAnnotator{fragments: []TextFragment{
		{Text: "blur", Confidence: 0.1},
		{Text: "   ", Confidence: 0.9},
	}}}

	assert.Equal(t, OCRNoConfidentText, svc.ExtractText(context.Background(), []byte("img")))
}

func TestExtractTextAnnotatorError(t *testing.T) {
	svc := &OCRService{annotator: &stubAnnotator{err: errors.New("boom")}}

	assert.Equal(t, OCRProcessingFailed, svc.ExtractText(context.Background(), []byte("img")))
}
