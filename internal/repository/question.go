package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mindan-edu/mathtutor/internal/config"
	"github.com/mindan-edu/mathtutor/internal/domain"
)

type QuestionRepo struct {
	db *pgxpool.Pool
}

func NewQuestionRepo(db *pgxpool.Pool) *QuestionRepo {
	return &QuestionRepo{db: db}
}

func (r *QuestionRepo) GetByNumber(ctx context.Context, number int) (*domain.ExamQuestion, error) {
	q := &domain.ExamQuestion{QuestionNumber: number}

	err := r.db.QueryRow(ctx,
		`SELECT id, question_text, question_image, difficulty, topic, created_at
		 FROM exam_questions WHERE question_number = $1`,
		number,
	).Scan(&q.ID, &q.QuestionText, &q.QuestionImage, &q.Difficulty, &q.Topic, &q.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuestionNotFound
		}
		return nil, fmt.Errorf("get question: %w", err)
	}

	return q, nil
}

func (r *QuestionRepo) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM exam_questions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count questions: %w", err)
	}
	return count, nil
}

// seedTemplates are cycled to fill the 30-question catalog.
var seedTemplates = []struct {
	text       string
	difficulty int
	topic      string
}{
	{"다음 방정식을 풀어보세요: 2x + 3 = 11", 1, "일차방정식"},
	{"다음 이차방정식의 해를 구하세요: x² - 5x + 6 = 0", 2, "이차방정식"},
	{"삼각형 ABC에서 AB = 3, BC = 4, 각 B = 90°일 때, AC의 길이를 구하세요.", 2, "기하"},
	{"주사위를 두 번 던질 때, 나온 수의 합이 7이 될 확률을 구하세요.", 3, "확률"},
	{"함수 f(x) = x² - 2x + 1의 최솟값을 구하세요.", 3, "함수"},
}

// Seed loads the fixed exam-question catalog when the table is empty.
func (r *QuestionRepo) Seed(ctx context.Context) error {
	count, err := r.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		slog.Info("exam questions already seeded", "count", count)
		return nil
	}

	for i := 0; i < config.ExamQuestionCount; i++ {
		t := seedTemplates[i%len(seedTemplates)]
		_, err := r.db.Exec(ctx,
			`INSERT INTO exam_questions (question_number, question_text, difficulty, topic)
			 VALUES ($1, $2, $3, $4)`,
			i+1, fmt.Sprintf("%d번. %s", i+1, t.text), t.difficulty, t.topic,
		)
		if err != nil {
			return fmt.Errorf("seed question %d: %w", i+1, err)
		}
	}

	slog.Info("exam question catalog seeded", "count", config.ExamQuestionCount)
	return nil
}
