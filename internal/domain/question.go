package domain

import "time"

type ExamQuestion struct {
	ID             int64
	QuestionNumber int
	QuestionText   string
	QuestionImage  []byte
	Difficulty     int
	Topic          string
	CreatedAt      time.Time
}
