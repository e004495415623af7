package handler

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mindan-edu/mathtutor/internal/domain"
	"github.com/mindan-edu/mathtutor/internal/middleware"
)

type examQuestionRequest struct {
	QuestionNumber int `json:"question_number" binding:"required,min=1,max=30"`
}

type examQuestionResponse struct {
	QuestionNumber int    `json:"question_number"`
	QuestionText   string `json:"question_text"`
	QuestionImage  string `json:"question_image,omitempty"`
	Difficulty     int    `json:"difficulty"`
	Topic          string `json:"topic"`
	Message        string `json:"message"`
}

func (h *Handler) ExamQuestion(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req examQuestionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	slog.Info("수능 문제 요청", "username", user.Username, "question_number", req.QuestionNumber)

	question, err := h.catalogService.Get(c.Request.Context(), req.QuestionNumber)
	if err != nil {
		if errors.Is(err, domain.ErrQuestionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": fmt.Sprintf("%d번 문제를 찾을 수 없습니다", req.QuestionNumber)})
			return
		}
		slog.Error("exam question failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "서버 오류"})
		return
	}

	resp := examQuestionResponse{
		QuestionNumber: question.QuestionNumber,
		QuestionText:   question.QuestionText,
		Difficulty:     question.Difficulty,
		Topic:          question.Topic,
		Message:        "문제를 확인하신 후, 어떤 부분부터 시작하면 좋을지 물어보세요!",
	}
	if len(question.QuestionImage) > 0 {
		resp.QuestionImage = base64.StdEncoding.EncodeToString(question.QuestionImage)
	}

	c.JSON(http.StatusOK, resp)
}
