package service

import (
	"context"
	"log/slog"

	"github.com/mindan-edu/mathtutor/internal/config"
	"github.com/mindan-edu/mathtutor/internal/domain"
)

type questionStore interface {
	GetByNumber(ctx context.Context, number int) (*domain.ExamQuestion, error)
}

// CatalogService serves the fixed exam-question catalog.
type CatalogService struct {
	questions questionStore
}

func NewCatalogService(questions questionStore) *CatalogService {
	return &CatalogService{questions: questions}
}

// Get returns the catalog entry for a question number. Numbers outside
// the fixed catalog bounds look the same as missing entries.
func (s *CatalogService) Get(ctx context.Context, number int) (*domain.ExamQuestion, error) {
	if number < config.ExamQuestionMin || number > config.ExamQuestionMax {
		return nil, domain.ErrQuestionNotFound
	}

	question, err := s.questions.GetByNumber(ctx, number)
	if err != nil {
		return nil, err
	}
	slog.Info("수능 문제 조회", "question_number", number)
	return question, nil
}
