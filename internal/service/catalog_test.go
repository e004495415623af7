package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindan-edu/mathtutor/internal/domain"
)

type stubQuestionStore struct {
	question *domain.ExamQuestion
	err      error
	calls    int
}

func (s *stubQuestionStore) GetByNumber(ctx context.Context, number int) (*domain.ExamQuestion, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.question, nil
}

func TestCatalogGetReturnsQuestion(t *testing.T) {
	store := &stubQuestionStore{question: &domain.ExamQuestion{QuestionNumber: 7, Topic: "확률"}}
	svc := NewCatalogService(store)

	q, err := svc.Get(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, q.QuestionNumber)
	assert.Equal(t, "확률", q.Topic)
}

func TestCatalogGetRejectsOutOfRangeNumbers(t *testing.T) {
	store := &stubQuestionStore{question: &domain.ExamQuestion{}}
	svc := NewCatalogService(store)

	for _, number := range []int{0, -1, 31, 100} {
		_, err := svc.Get(context.Background(), number)
		assert.ErrorIs(t, err, domain.ErrQuestionNotFound, "number %d", number)
	}
	assert.Zero(t, store.calls, "out-of-range numbers never reach the store")
}

func TestCatalogGetMissingQuestion(t *testing.T) {
	store := &stubQuestionStore{err: domain.ErrQuestionNotFound}
	svc := NewCatalogService(store)

	_, err := svc.Get(context.Background(), 12)
	assert.ErrorIs(t, err, domain.ErrQuestionNotFound)
}
