package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
)

func (h *Handler) HealthCheck(ctx *gin.Context) {
	ctx.JSON(200, gin.H{
		"status":    "ok",
		"message":   "Shiftline is running",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
