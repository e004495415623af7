package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	vision "cloud.google.com/go/vision/v2/apiv1"
	visionpb "cloud.google.com/go/vision/v2/apiv1/visionpb"

	"github.com/mindan-edu/mathtutor/internal/config"
)

// Placeholder texts substituted when extraction yields no usable result.
// A failed extraction never fails the chat turn: the sentinel goes to the
// provider, which asks the student for clarification in natural language.
const (
	OCRUnavailableText  = "OCR 기능을 사용할 수 없습니다. 텍스트로 문제를 입력해주세요."
	OCRNoTextFound      = "이미지에서 텍스트를 찾을 수 없습니다. 더 선명한 이미지를 업로드하거나 텍스트로 문제를 입력해주세요."
	OCRNoConfidentText  = "이미지에서 명확한 텍스트를 찾을 수 없습니다. 더 선명한 이미지를 업로드해주세요."
	OCRProcessingFailed = "이미지 처리 중 오류가 발생했습니다. 텍스트로 문제를 입력해주세요."
)

// TextFragment is one recognized piece of text with its confidence.
type TextFragment struct {
	Text       string
	Confidence float64
}

type imageAnnotator interface {
	DetectTexts(ctx context.Context, image []byte) ([]TextFragment, error)
}

// OCRService extracts problem text from uploaded images. The capability
// is fixed at construction: when the Vision client could not be created
// the handle stays in the unavailable state for the process lifetime.
type OCRService struct {
	annotator imageAnnotator
}

// NewOCRService builds the extraction handle. Initialization failure is
// not fatal; the service degrades to the unavailable sentinel.
func NewOCRService(ctx context.Context) *OCRService {
	annotator, err := newVisionAnnotator(ctx)
	if err != nil {
		slog.Error("OCR 리더 초기화 실패", "error", err)
		slog.Warn("이미지 업로드 기능이 제한됩니다")
		return &OCRService{}
	}
	slog.Info("OCR 리더 초기화 성공")
	return &OCRService{annotator: annotator}
}

func (s *OCRService) Available() bool {
	return s.annotator != nil
}

// ExtractText joins recognized fragments whose confidence exceeds the
// threshold, in the extractor's own detection order, and canonicalizes
// the result. Always returns usable text; never an error.
func (s *OCRService) ExtractText(ctx context.Context, image []byte) string {
	if s.annotator == nil {
		return OCRUnavailableText
	}

	fragments, err := s.annotator.DetectTexts(ctx, image)
	if err != nil {
		slog.Error("OCR 텍스트 추출 실패", "error", err)
		return OCRProcessingFailed
	}
	if len(fragments) == 0 {
		return OCRNoTextFound
	}

	texts := make([]string, 0, len(fragments))
	for _, f := range fragments {
		text := strings.TrimSpace(f.Text)
		if f.Confidence > config.OCRMinConfidence && text != "" {
			texts = append(texts, text)
		}
	}
	if len(texts) == 0 {
		return OCRNoConfidentText
	}

	extracted := NormalizeMathText(strings.Join(texts, " "))
	slog.Info("OCR 텍스트 추출 성공", "text", snippet(extracted, config.OCRStoredSnippetLen))
	return extracted
}

func snippet(s string, n int) string {
	t := truncateRunes(s, n)
	if t != s {
		t += "..."
	}
	return t
}

type visionAnnotator struct {
	client *vision.ImageAnnotatorClient
}

func newVisionAnnotator(ctx context.Context) (*visionAnnotator, error) {
	client, err := vision.NewImageAnnotatorClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("vision client: %w", err)
	}
	return &visionAnnotator{client: client}, nil
}

func (a *visionAnnotator) DetectTexts(ctx context.Context, image []byte) ([]TextFragment, error) {
	req := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image: &visionpb.Image{Content: image},
				Features: []*visionpb.Feature{
					{Type: visionpb.Feature_TEXT_DETECTION},
				},
			},
		},
	}

	resp, err := a.client.BatchAnnotateImages(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("vision BatchAnnotateImages: %w", err)
	}
	if resp == nil || len(resp.Responses) == 0 || resp.Responses[0] == nil {
		return nil, nil
	}

	r0 := resp.Responses[0]
	if r0.Error != nil && r0.Error.Message != "" {
		return nil, fmt.Errorf("vision annotate error: %s", r0.Error.Message)
	}

	anns := r0.TextAnnotations
	if len(anns) <= 1 {
		return nil, nil
	}

	// anns[0] aggregates the whole image; the rest are the fragments.
	fragments := make([]TextFragment, 0, len(anns)-1)
	for _, ann := range anns[1:] {
		if ann == nil {
			continue
		}
		conf := float64(ann.Confidence)
		if conf == 0 {
			conf = float64(ann.Score)
		}
		fragments = append(fragments, TextFragment{
			Text:       ann.Description,
			Confidence: conf,
		})
	}
	return fragments, nil
}

func (a *visionAnnotator) Close() error {
	return a.client.Close()
}
