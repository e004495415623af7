package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (h *Handler) Health(c *gin.Context) {
	ocrStatus := "사용 불가"
	if h.ocrService.Available() {
		ocrStatus = "사용 가능"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    "AI 수학 튜터 서버가 실행 중입니다",
		"ocr_status": ocrStatus,
	})
}
