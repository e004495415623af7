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

type chatRequest struct {
	Message   string `json:"message" binding:"max=2000"`
	ImageData string `json:"image_data"`
}

type chatResponse struct {
	Response string        `json:"response"`
	Usage    *domain.Usage `json:"usage,omitempty"`
}

func (h *Handler) Chat(c *gin.Context) {
	user := middleware.CurrentUser(c)

	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	slog.Info("채팅 요청", "username", user.Username, "has_image", req.ImageData != "")

	var image []byte
	if req.ImageData != "" {
		decoded, err := base64.StdEncoding.DecodeString(req.ImageData)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"detail": "잘못된 이미지 데이터입니다"})
			return
		}
		image = decoded
	}

	result, err := h.tutorService.Chat(c.Request.Context(), user.ID, req.Message, image)
	if err != nil {
		h.respondChatError(c, err)
		return
	}

	slog.Info("채팅 응답 성공", "username", user.Username)
	c.JSON(http.StatusOK, chatResponse{Response: result.Reply, Usage: result.Usage})
}

// respondChatError maps the dispatch/persistence taxonomy onto HTTP.
// A timeout stays distinguishable from a generic server error so the
// client can offer a retry.
func (h *Handler) respondChatError(c *gin.Context, err error) {
	var transportErr *domain.ProviderTransportError
	var logicalErr *domain.ProviderLogicalError

	switch {
	case errors.Is(err, domain.ErrProviderTimeout):
		slog.Error("API 요청 시간 초과")
		c.JSON(http.StatusRequestTimeout, gin.H{"detail": "AI 응답 시간이 초과되었습니다"})
	case errors.As(err, &transportErr):
		slog.Error("API HTTP 오류", "status", transportErr.Status)
		c.JSON(transportErr.Status, gin.H{"detail": fmt.Sprintf("AI 서비스 오류: %v", err)})
	case errors.As(err, &logicalErr):
		slog.Error("API 에러", "message", logicalErr.Message)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": fmt.Sprintf("AI 서비스 오류: %s", logicalErr.Message)})
	default:
		slog.Error("채팅 처리 중 오류", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": fmt.Sprintf("서버 오류: %v", err)})
	}
}
