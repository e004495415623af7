package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mindan-edu/mathtutor/internal/domain"
	"github.com/mindan-edu/mathtutor/internal/middleware"
)

type historyMessage struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type historySession struct {
	SessionID uuid.UUID        `json:"session_id"`
	CreatedAt time.Time        `json:"created_at"`
	Messages  []historyMessage `json:"messages"`
}

func (h *Handler) ChatHistory(c *gin.Context) {
	user := middleware.CurrentUser(c)

	slog.Info("채팅 기록 조회", "username", user.Username)

	history, err := h.sessionService.History(c.Request.Context(), user.ID)
	if err != nil {
		slog.Error("chat history failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "서버 오류"})
		return
	}

	sessions := make([]historySession, 0, len(history))
	for _, sh := range history {
		messages := make([]historyMessage, 0, len(sh.Messages))
		for _, m := range sh.Messages {
			messages = append(messages, historyMessage{
				Role:      m.Role,
				Content:   m.Content,
				Timestamp: m.CreatedAt,
			})
		}
		sessions = append(sessions, historySession{
			SessionID: sh.Session.ID,
			CreatedAt: sh.Session.CreatedAt,
			Messages:  messages,
		})
	}

	c.JSON(http.StatusOK, gin.H{"chat_history": sessions})
}

func (h *Handler) DeleteSession(c *gin.Context) {
	user := middleware.CurrentUser(c)

	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "잘못된 세션 ID입니다"})
		return
	}

	slog.Info("채팅 세션 삭제 요청", "username", user.Username, "session_id", sessionID)

	if err := h.sessionService.Delete(c.Request.Context(), user.ID, sessionID); err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "채팅 세션을 찾을 수 없습니다"})
			return
		}
		slog.Error("delete session failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "서버 오류"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "채팅 세션이 삭제되었습니다"})
}
