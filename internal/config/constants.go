package config

import "time"

const (
	// Context window: prior turns sent to the provider per request
	ContextWindow = 10

	// Completion provider request timeout
	ProviderTimeout = 30 * time.Second

	// OCR fragments below this confidence are discarded
	OCRMinConfidence = 0.3

	// Stored OCR annotation keeps at most this many runes
	OCRStoredSnippetLen = 50

	// Exam question catalog bounds
	ExamQuestionMin   = 1
	ExamQuestionMax   = 30
	ExamQuestionCount = 30

	// Database pool sizing for the request-scoped query load
	DBMaxConns = 10
	DBMinConns = 2
)
