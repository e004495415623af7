package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mindan-edu/mathtutor/internal/config"
	"github.com/mindan-edu/mathtutor/internal/domain"
)

// systemDirective pins the provider to short Socratic tutoring replies.
// Prepended to every outbound request, never persisted.
const systemDirective = `당신은 AI 수학 튜터입니다. 다음 규칙을 반드시 지켜주세요.

**절대 규칙:**
1. 한 번에 최대 2-3문장만 말하세요
2. 설명 후 반드시 "이해했나요?" 또는 "여기까지 괜찮나요?" 물어보세요
3. 학생이 "네" 또는 "이해했어요"라고 답할 때까지 다음 단계로 넘어가지 마세요
4. 절대 여러 단계를 한 번에 설명하지 마세요
5. LaTeX 수식을 사용하지 마세요 (\(, \[, $ 등 금지)
6. # 기호로 제목을 만들지 마세요
7. 수학 기호는 일반 텍스트로 작성하세요 (예: x^2, 1/2, sqrt(x))

**응답 패턴:**
- 첫 질문: "이 문제에서 가장 먼저 무엇을 파악해야 할까요?"
- 설명 후: "[2-3문장 설명]. 이해했나요?"
- 이해함: "좋습니다! 다음으로 [한 가지만] 생각해보세요."
- 이해 못함: "어떤 부분이 어려운가요? 다시 설명해드릴게요."

**수학 표현 예시:**
- 올바름: "2x - 4 = 0", "x^2 + 3x + 2", "(1/2)^16"
- 금지: "\( 2x - 4 = 0 \)", "$2x - 4 = 0$", "\[ x^2 \]"

**금지사항:**
- LaTeX 수식 표현 절대 금지
- 긴 설명 금지 (3문장 초과)
- 여러 단계 동시 설명 금지
- ### 1단계, # 제목 같은 마크다운 제목 금지
- 이해도 확인 없이 계속 설명하기 금지

예시: "이 방정식은 2x - 4 = 0 이네요. 여기서 x의 값을 찾는 것이 목표입니다. 이해했나요?"

이렇게 짧게, 한 번에 하나씩만 확인하며 진행하세요.`

type sessionResolver interface {
	ResolveActive(ctx context.Context, userID uuid.UUID) (*domain.ChatSession, error)
}

type turnStore interface {
	RecentMessages(ctx context.Context, sessionID uuid.UUID, limit int) ([]domain.ChatMessage, error)
	AppendTurn(ctx context.Context, sessionID uuid.UUID, userContent, assistantContent string) error
}

type textExtractor interface {
	ExtractText(ctx context.Context, image []byte) string
}

type completer interface {
	Complete(ctx context.Context, messages []ChatMessage) (*CompletionResult, error)
}

// TutorService orchestrates one chat turn: extract problem text from an
// uploaded image if present, resolve the active session, assemble the
// bounded context window, dispatch a single provider request, and record
// both halves of the exchange atomically.
type TutorService struct {
	sessions  sessionResolver
	store     turnStore
	extractor textExtractor
	completer completer
}

func NewTutorService(sessions sessionResolver, store turnStore, extractor textExtractor, completer completer) *TutorService {
	return &TutorService{
		sessions:  sessions,
		store:     store,
		extractor: extractor,
		completer: completer,
	}
}

// TurnResult is a successful chat turn outcome.
type TurnResult struct {
	Reply string
	Usage *domain.Usage
}

// Chat runs one turn. A dispatch failure is returned as-is and leaves
// the session untouched; a persistence failure after a successful
// dispatch is wrapped in ErrPersistence and surfaced, never swallowed.
func (s *TutorService) Chat(ctx context.Context, userID uuid.UUID, message string, image []byte) (*TurnResult, error) {
	providerContent, storedContent := s.composeUserContent(ctx, message, image)

	session, err := s.sessions.ResolveActive(ctx, userID)
	if err != nil {
		return nil, err
	}

	messages, err := s.assembleContext(ctx, session.ID, providerContent)
	if err != nil {
		return nil, err
	}

	slog.Info("API 요청", "session_id", session.ID, "messages", len(messages))

	result, err := s.completer.Complete(ctx, messages)
	if err != nil {
		return nil, err
	}

	if err := s.store.AppendTurn(ctx, session.ID, storedContent, result.Content); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrPersistence, err)
	}

	return &TurnResult{Reply: result.Content, Usage: result.Usage}, nil
}

// composeUserContent builds the outbound user turn and the content that
// gets persisted. With an image, the extracted text is annotated into
// both; extraction never fails the turn, it degrades to sentinel text.
func (s *TutorService) composeUserContent(ctx context.Context, message string, image []byte) (provider, stored string) {
	if len(image) == 0 {
		return message, message
	}

	extracted := s.extractor.ExtractText(ctx, image)

	if message != "" {
		provider = fmt.Sprintf("%s\n\n[이미지에서 추출된 수학 문제: %s]", message, extracted)
	} else {
		provider = fmt.Sprintf("다음 수학 문제를 단계별로 풀이해주세요:\n\n%s", extracted)
	}

	label := message
	if label == "" {
		label = "이미지 업로드"
	}
	// The stored annotation always ends in the ellipsis marker, even
	// when the extraction fits the snippet length.
	stored = fmt.Sprintf("%s [OCR 추출: %s...]", label, truncateRunes(extracted, config.OCRStoredSnippetLen))
	return provider, stored
}

// assembleContext returns the system directive, up to ContextWindow
// prior messages in chronological order, and the new user turn. Hard
// cap: never more than ContextWindow+2 entries. Older turns stay
// persisted; they are only omitted from this one outbound request.
func (s *TutorService) assembleContext(ctx context.Context, sessionID uuid.UUID, newContent string) ([]ChatMessage, error) {
	recent, err := s.store.RecentMessages(ctx, sessionID, config.ContextWindow)
	if err != nil {
		return nil, err
	}

	messages := make([]ChatMessage, 0, len(recent)+2)
	messages = append(messages, ChatMessage{Role: domain.RoleSystem, Content: systemDirective})
	for i := len(recent) - 1; i >= 0; i-- {
		messages = append(messages, ChatMessage{Role: recent[i].Role, Content: recent[i].Content})
	}
	messages = append(messages, ChatMessage{Role: domain.RoleUser, Content: newContent})

	return messages, nil
}
